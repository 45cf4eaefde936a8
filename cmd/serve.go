package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/wiendata/inselmap/internal/fetcher"
	"github.com/wiendata/inselmap/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the latest chart and report over HTTP",
	Long:  "Runs an HTTP server exposing /health, /report.json, /chart.png, and /facilities.geojson, refreshing the dataset on an interval.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		port, _ := cmd.Flags().GetInt("port")
		if port == 0 {
			port = cfg.Server.Port
		}

		f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent:  cfg.HTTP.UserAgent,
			Timeout:    time.Duration(cfg.HTTP.TimeoutSecs) * time.Second,
			MaxRetries: cfg.HTTP.MaxRetries,
		})

		srv := server.New(f, server.Options{
			SourceURL:       cfg.Source.URL,
			Encoding:        cfg.Source.Encoding,
			ChartOptions:    chartOptions(),
			Port:            port,
			RefreshInterval: time.Duration(cfg.Server.RefreshMins) * time.Minute,
			ShutdownTimeout: time.Duration(cfg.Server.ShutdownTimeoutSecs) * time.Second,
		})

		if err := srv.Run(ctx); err != nil {
			return eris.Wrap(err, "serve")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

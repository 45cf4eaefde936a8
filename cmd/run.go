package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wiendata/inselmap/internal/chart"
	"github.com/wiendata/inselmap/internal/model"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch, validate, and render the facilities map",
	Long:  "Downloads the facilities CSV, prints the quality report, derives coordinates, renders the scatter map to a PNG file, and records the run when a store is configured.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		url, _ := cmd.Flags().GetString("url")
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = cfg.Chart.OutputPath
		}

		tbl, report, err := loadTable(ctx, url)
		if err != nil {
			return eris.Wrap(err, "run")
		}

		fmt.Fprint(os.Stdout, report.Summary())

		if err := chart.WritePNG(tbl, chartOptions(), output); err != nil {
			return eris.Wrap(err, "run")
		}
		fmt.Fprintf(os.Stdout, "Chart written to %s\n", output)

		st, err := initStore(ctx)
		if err != nil {
			return eris.Wrap(err, "run")
		}
		if st == nil {
			return nil
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "run")
		}
		lr, err := st.RecordRun(ctx, tbl.SourceURL, report)
		if err != nil {
			return eris.Wrap(err, "run")
		}
		n, err := st.SaveFacilities(ctx, lr.ID, model.FacilitiesFromTable(lr.ID, tbl))
		if err != nil {
			return eris.Wrap(err, "run")
		}
		zap.L().Info("run recorded", zap.String("run_id", lr.ID), zap.Int64("facilities", n))
		fmt.Fprintf(os.Stdout, "Run recorded as %s\n", lr.ID)

		return nil
	},
}

// chartOptions maps the chart config onto renderer options.
func chartOptions() chart.Options {
	return chart.Options{
		Title:    cfg.Chart.Title,
		WidthCm:  cfg.Chart.WidthCm,
		HeightCm: cfg.Chart.HeightCm,
	}
}

func init() {
	runCmd.Flags().String("url", "", "override the source URL")
	runCmd.Flags().String("output", "", "chart output path (default from config)")
	rootCmd.AddCommand(runCmd)
}

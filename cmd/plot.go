package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/wiendata/inselmap/internal/chart"
)

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Render the facilities scatter map to a PNG file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		url, _ := cmd.Flags().GetString("url")
		output, _ := cmd.Flags().GetString("output")
		title, _ := cmd.Flags().GetString("title")
		if output == "" {
			output = cfg.Chart.OutputPath
		}

		tbl, _, err := loadTable(ctx, url)
		if err != nil {
			return eris.Wrap(err, "plot")
		}

		opts := chartOptions()
		if title != "" {
			opts.Title = title
		}

		if err := chart.WritePNG(tbl, opts, output); err != nil {
			return eris.Wrap(err, "plot")
		}
		fmt.Fprintf(os.Stdout, "Chart written to %s\n", output)
		return nil
	},
}

func init() {
	plotCmd.Flags().String("url", "", "override the source URL")
	plotCmd.Flags().String("output", "", "chart output path (default from config)")
	plotCmd.Flags().String("title", "", "override the chart title")
	rootCmd.AddCommand(plotCmd)
}

package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/wiendata/inselmap/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the facilities table with derived coordinates",
	Long:  "Fetches the dataset, derives coordinates, and writes the augmented table as CSV, XLSX, GeoJSON, or a shapefile.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		url, _ := cmd.Flags().GetString("url")
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")
		if format == "" {
			format = cfg.Export.Format
		}
		if output == "" {
			output = cfg.Export.OutputPath
		}

		tbl, _, err := loadTable(ctx, url)
		if err != nil {
			return eris.Wrap(err, "export")
		}

		path, err := export.Write(tbl, format, output)
		if err != nil {
			return eris.Wrap(err, "export")
		}
		fmt.Fprintf(os.Stdout, "Exported to %s\n", path)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("url", "", "override the source URL")
	exportCmd.Flags().String("format", "", "output format: csv, xlsx, geojson, shp (default from config)")
	exportCmd.Flags().String("output", "", "output path without extension (default from config)")
	rootCmd.AddCommand(exportCmd)
}

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Fetch the dataset and print its quality report",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		url, _ := cmd.Flags().GetString("url")
		asJSON, _ := cmd.Flags().GetBool("json")

		_, report, err := loadTable(ctx, url)
		if err != nil {
			return eris.Wrap(err, "validate")
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		fmt.Fprint(os.Stdout, report.Summary())
		return nil
	},
}

func init() {
	validateCmd.Flags().String("url", "", "override the source URL")
	validateCmd.Flags().Bool("json", false, "emit the report as JSON")
	rootCmd.AddCommand(validateCmd)
}

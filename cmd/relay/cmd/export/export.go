package export

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"voice-relay/internal/app"
	"voice-relay/internal/app/converter/export"
	"voice-relay/internal/app/model"
)

var (
	outputFilePath string
	limit          int
	status         string
)

func init() {
	Cmd.Flags().StringVarP(&outputFilePath, "output", "o", "", "path of the xlsx file to write")
	Cmd.Flags().IntVar(&limit, "limit", 0, "export only the most recent runs (0 exports all)")
	Cmd.Flags().StringVar(&status, "status", "", "export only runs with this status (started, completed, partial, failed)")

	Cmd.MarkFlagRequired("output")
}

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export the pipeline run history to excel",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, cleanup, err := app.InitializeHistory()
		if err != nil {
			return err
		}
		defer cleanup()

		runs, err := h.Runs.ListRuns(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if status != "" {
			runs = lo.Filter(runs, func(r model.Run, _ int) bool {
				return r.Status == status
			})
		}

		if err := export.ToExcel(runs, outputFilePath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "export finished, %d runs written to %v\n", len(runs), outputFilePath)
		return nil
	},
}

package status

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"voice-relay/internal/app"
	"voice-relay/internal/app/jobs"
	"voice-relay/internal/app/model"
)

var (
	jobName string
	jobID   string
	kind    string
)

func init() {
	Cmd.Flags().StringVarP(&jobName, "job-name", "n", "", "transcription job name")
	Cmd.Flags().StringVar(&jobID, "job-id", "", "job id, used with --kind")
	Cmd.Flags().StringVarP(&kind, "kind", "k", "", "job kind: transcription, synthesis or translation")

	Cmd.MarkFlagsOneRequired("job-name", "job-id")
}

// Cmd represents the status command
var Cmd = &cobra.Command{
	Use:   "status",
	Short: "Check the status of a transcription, synthesis or translation job",
	Long: `Check the status of a provider job once and print the result as JSON.

- A failed check is reported as status ERROR, the command still exits 0`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cleanup, err := app.InitializeServices(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		resp := svc.Status.Handle(cmd.Context(), jobs.StatusRequest{
			JobName: jobName,
			JobID:   jobID,
			Kind:    model.JobKind(kind),
		})

		out, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

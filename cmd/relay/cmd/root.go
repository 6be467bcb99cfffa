package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"voice-relay/cmd/relay/cmd/backfill"
	"voice-relay/cmd/relay/cmd/export"
	"voice-relay/cmd/relay/cmd/serve"
	"voice-relay/cmd/relay/cmd/status"
	"voice-relay/cmd/relay/cmd/trigger"
	"voice-relay/cmd/relay/cmd/version"
	"voice-relay/cmd/relay/cmd/worker"
)

var Verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "relay",
	Short: "Transcribe uploaded media, translate it and speak the translations",
	Long: `relay turns every media file uploaded to the bucket into transcripts, translations
and synthesized speech in the configured target languages.
- worker runs the pipeline workflow on Temporal
- serve exposes the storage webhook, job status and run history over HTTP
- trigger listen starts pipelines from MinIO bucket notifications`,
	SilenceUsage:     true,
	TraverseChildren: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if Verbose {
			os.Setenv("ENV", "development")
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(worker.Cmd)
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(trigger.Cmd)
	rootCmd.AddCommand(status.Cmd)
	rootCmd.AddCommand(backfill.Cmd)
	rootCmd.AddCommand(export.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "V", false, "development logging")
}

package trigger

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"voice-relay/internal/app"
	"voice-relay/internal/app/model"
	"voice-relay/internal/app/temporal/pkg/command"
)

var (
	bucket    string
	prefix    string
	eventFile string
	wait      time.Duration
)

// Cmd groups the trigger subcommands
var Cmd = &cobra.Command{
	Use:   "trigger",
	Short: "Start pipelines from storage notifications",
}

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Start a pipeline for every media object uploaded to a MinIO bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, cleanup, err := app.InitializeServices(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		if svc.Notifications == nil {
			return fmt.Errorf("listen needs the minio storage backend, got %q", svc.Config.StorageBackend)
		}
		if bucket == "" {
			bucket = svc.Config.MinIO.Bucket
		}
		if err := svc.Trigger.Listen(ctx, svc.Notifications, bucket, prefix); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Start pipelines for the media objects of a storage event read from a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(eventFile)
		if err != nil {
			return err
		}
		var event model.StorageEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return fmt.Errorf("invalid event file: %w", err)
		}

		svc, cleanup, err := app.InitializeServices(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		executions, err := svc.Trigger.HandleEvent(cmd.Context(), event)
		for _, e := range executions {
			fmt.Fprintf(cmd.OutOrStdout(), "started %s\n", e.ID)
		}
		if err != nil || wait == 0 {
			return err
		}
		if svc.Temporal == nil {
			return fmt.Errorf("--wait needs the temporal orchestrator")
		}

		for _, e := range executions {
			result, err := command.WaitForPipeline(cmd.Context(), svc.Temporal, e.ID, wait)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
		}
		return nil
	},
}

func init() {
	listenCmd.Flags().StringVarP(&bucket, "bucket", "b", "", "bucket to listen on (defaults to MINIO_BUCKET)")
	listenCmd.Flags().StringVarP(&prefix, "prefix", "p", "", "object key prefix")

	eventCmd.Flags().StringVarP(&eventFile, "file", "f", "", "S3-format event JSON file")
	eventCmd.Flags().DurationVar(&wait, "wait", 0, "wait up to this long for each pipeline and print its result")
	eventCmd.MarkFlagRequired("file")

	Cmd.AddCommand(listenCmd)
	Cmd.AddCommand(eventCmd)
}

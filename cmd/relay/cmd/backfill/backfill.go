package backfill

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"voice-relay/internal/app"
	"voice-relay/internal/app/converter"
)

var (
	bucket   string
	prefix   string
	limit    int
	parallel int
	force    bool
	progress bool
)

func init() {
	Cmd.Flags().StringVarP(&bucket, "bucket", "b", "", "bucket to scan (defaults to MINIO_BUCKET)")
	Cmd.Flags().StringVarP(&prefix, "prefix", "p", "", "object key prefix")
	Cmd.Flags().IntVarP(&limit, "limit", "l", 0, "start at most this many pipelines (0 means no limit)")
	Cmd.Flags().IntVar(&parallel, "parallel", 4, "pipelines started concurrently")
	Cmd.Flags().BoolVar(&force, "force", false, "also start objects that already have a recorded run")
	Cmd.Flags().BoolVar(&progress, "progress", false, "show a progress bar even when not on a terminal")
}

// Cmd represents the backfill command
var Cmd = &cobra.Command{
	Use:   "backfill",
	Short: "Start pipelines for media already in the bucket",
	Long: `Start pipelines for media already in the bucket

- Oldest objects first
- Objects with a recorded run are skipped unless --force is set
- Pipeline outputs (transcripts, translations, speech) are never started`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cleanup, err := app.InitializeServices(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		if bucket == "" {
			bucket = svc.Config.MinIO.Bucket
		}

		b := converter.NewBackfiller(svc.Trigger, svc.Store, svc.Runs, converter.ProgressConfig{
			Enabled: converter.ShouldShowProgress(progress),
			Writer:  os.Stderr,
		}, svc.Logger.Named("backfill"))

		summary, err := b.Run(cmd.Context(), converter.BackfillOptions{
			Bucket:   bucket,
			Prefix:   prefix,
			Limit:    limit,
			Parallel: parallel,
			Force:    force,
		})
		svc.Logger.Info("Backfill finished",
			zap.Int("started", summary.Started),
			zap.Int("skipped", summary.Skipped),
			zap.Int("failed", summary.Failed))
		fmt.Fprintf(cmd.OutOrStdout(), "started %d, skipped %d, failed %d\n", summary.Started, summary.Skipped, summary.Failed)
		return err
	},
}

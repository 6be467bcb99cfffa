package serve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"voice-relay/internal/api/server"
	v1routes "voice-relay/internal/api/v1/routes"
	"voice-relay/internal/app"
)

var (
	withWorker bool
	listen     bool
	prefix     string
)

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the storage webhook, job status checks and the run history over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return run(ctx)
	},
}

func init() {
	Cmd.Flags().BoolVar(&withWorker, "worker", false, "also run the Temporal worker in this process")
	Cmd.Flags().BoolVar(&listen, "listen", false, "start pipelines from MinIO bucket notifications")
	Cmd.Flags().StringVar(&prefix, "prefix", "", "object key prefix for --listen")
}

func run(ctx context.Context) error {
	svc, cleanup, err := app.InitializeServices(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer cleanup()

	deps := &v1routes.Dependencies{
		Trigger: svc.Trigger,
		Status:  svc.Status,
		Runs:    svc.Runs,
		Stats:   svc.Metrics,
	}
	registry := svc.Registry

	g, ctx := errgroup.WithContext(ctx)

	if withWorker {
		w, cleanupWorker, err := app.InitializeWorker(ctx)
		if err != nil {
			return fmt.Errorf("failed to initialize worker: %w", err)
		}
		defer cleanupWorker()
		// provider metrics are recorded by the activities, so report the worker's
		deps.Stats = w.Metrics
		registry = w.Registry

		if err := w.Worker.Start(); err != nil {
			return fmt.Errorf("failed to start worker: %w", err)
		}
		defer w.Worker.Stop()
	}

	if listen {
		if svc.Notifications == nil {
			return fmt.Errorf("--listen needs the minio storage backend, got %q", svc.Config.StorageBackend)
		}
		g.Go(func() error {
			return svc.Trigger.Listen(ctx, svc.Notifications, svc.Config.MinIO.Bucket, prefix)
		})
	}

	cfg := server.DefaultConfig(svc.Config.HTTPHost, svc.Config.HTTPPort, svc.Config.Environment)
	srv := server.NewServer(cfg, deps, registry, svc.Logger.Named("http"))
	g.Go(func() error {
		return srv.Run(ctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		svc.Logger.Error("Serve stopped", zap.Error(err))
		return err
	}
	return nil
}

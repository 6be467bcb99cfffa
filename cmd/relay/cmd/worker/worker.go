package worker

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"voice-relay/internal/app"
)

// Cmd represents the worker command
var Cmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the pipeline workflow and its activities on Temporal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return run(ctx)
	},
}

func run(ctx context.Context) error {
	w, cleanup, err := app.InitializeWorker(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize worker: %w", err)
	}
	defer cleanup()

	health := w.Health.Start(w.Config.HealthPort)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = health.Shutdown(shutdownCtx)
	}()

	if err := w.Worker.Start(); err != nil {
		return fmt.Errorf("failed to start worker: %w", err)
	}
	w.Logger.Info("Worker started",
		zap.String("task_queue", w.Config.Temporal.TaskQueue),
		zap.String("health", w.Config.HealthPort))

	<-ctx.Done()
	w.Logger.Info("Shutting down worker")
	w.Worker.Stop()
	return nil
}

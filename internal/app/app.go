// Package app assembles the pipeline components from the process configuration.
package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.temporal.io/sdk/client"
	sdkworker "go.temporal.io/sdk/worker"
	"go.uber.org/zap"
	"voice-relay/internal/app/jobs"
	"voice-relay/internal/app/metrics"
	"voice-relay/internal/app/repository"
	"voice-relay/internal/app/storage"
	"voice-relay/internal/app/temporal/worker"
	"voice-relay/internal/app/trigger"
	"voice-relay/internal/config"
)

// Worker hosts the pipeline workflow and its activities.
type Worker struct {
	Config   *config.Config
	Logger   *zap.Logger
	Client   client.Client
	Worker   sdkworker.Worker
	Health   *worker.HealthServer
	Metrics  *metrics.ProviderMetrics
	Registry *prometheus.Registry
}

// Services are the components behind the HTTP API and the trigger, status and backfill
// commands.
type Services struct {
	Config   *config.Config
	Logger   *zap.Logger
	Trigger  *trigger.Trigger
	// Temporal is nil unless the orchestrator is Temporal.
	Temporal client.Client
	Status   *jobs.StatusHandler
	Runs     repository.RunDAO
	Store    storage.Store
	Metrics  *metrics.ProviderMetrics
	Registry *prometheus.Registry
	// Notifications is nil when the storage backend cannot push notifications.
	Notifications trigger.NotificationSource
}

// History gives access to the run history alone.
type History struct {
	Config *config.Config
	Logger *zap.Logger
	Runs   repository.RunDAO
}

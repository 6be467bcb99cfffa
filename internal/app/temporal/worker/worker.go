// Package worker hosts the pipeline workflow and activities on a Temporal task queue.
package worker

import (
	"go.temporal.io/sdk/client"
	sdkworker "go.temporal.io/sdk/worker"
	"voice-relay/internal/app/temporal/activities"
	"voice-relay/internal/app/temporal/workflows"
)

// Options size the worker.
type Options struct {
	Identity                string
	MaxConcurrentActivities int
	MaxConcurrentWorkflows  int
}

// New creates a worker with the pipeline workflow and every activity registered.
func New(c client.Client, taskQueue string, acts *activities.Activities, pipeline *workflows.Pipeline, opts Options) sdkworker.Worker {
	if opts.MaxConcurrentActivities <= 0 {
		opts.MaxConcurrentActivities = 10
	}
	if opts.MaxConcurrentWorkflows <= 0 {
		opts.MaxConcurrentWorkflows = 10
	}

	w := sdkworker.New(c, taskQueue, sdkworker.Options{
		Identity:                               opts.Identity,
		MaxConcurrentActivityExecutionSize:     opts.MaxConcurrentActivities,
		MaxConcurrentWorkflowTaskExecutionSize: opts.MaxConcurrentWorkflows,
	})
	pipeline.Register(w)
	w.RegisterActivity(acts)
	return w
}

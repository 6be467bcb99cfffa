package command

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/client"
	"voice-relay/internal/app/model"
)

// WorkflowGetter is the part of the Temporal client used to follow executions.
type WorkflowGetter interface {
	GetWorkflow(ctx context.Context, workflowID string, runID string) client.WorkflowRun
}

// WaitForPipeline blocks until the pipeline execution ends and returns its result. A zero
// timeout waits indefinitely.
func WaitForPipeline(ctx context.Context, c WorkflowGetter, workflowID string, timeout time.Duration) (model.PipelineResult, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var result model.PipelineResult
	if err := c.GetWorkflow(ctx, workflowID, "").Get(ctx, &result); err != nil {
		return result, fmt.Errorf("pipeline %s failed: %w", workflowID, err)
	}
	return result, nil
}

package trigger

import (
	"context"
	"encoding/json"
	"regexp"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sfn"
	"github.com/aws/aws-sdk-go/service/sfn/sfniface"
	"go.temporal.io/sdk/client"
	apperrors "voice-relay/internal/app/errors"
	"voice-relay/internal/app/model"
)

// Execution identifies one started pipeline run.
type Execution struct {
	ID    string `json:"execution_id"`
	RunID string `json:"run_id,omitempty"`
}

// Orchestrator starts pipeline executions.
type Orchestrator interface {
	StartPipeline(ctx context.Context, id string, input model.PipelineInput) (Execution, error)
}

// WorkflowStarter is the part of the Temporal client used to start workflows.
type WorkflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// TemporalOrchestrator runs the pipeline as a Temporal workflow.
type TemporalOrchestrator struct {
	client    WorkflowStarter
	taskQueue string
	workflow  string
}

func NewTemporalOrchestrator(c WorkflowStarter, taskQueue, workflow string) *TemporalOrchestrator {
	return &TemporalOrchestrator{client: c, taskQueue: taskQueue, workflow: workflow}
}

func (o *TemporalOrchestrator) StartPipeline(ctx context.Context, id string, input model.PipelineInput) (Execution, error) {
	run, err := o.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        id,
		TaskQueue: o.taskQueue,
	}, o.workflow, input)
	if err != nil {
		return Execution{}, apperrors.Service("temporal.ExecuteWorkflow", err)
	}
	return Execution{ID: run.GetID(), RunID: run.GetRunID()}, nil
}

// StepFunctionsOrchestrator starts executions of an AWS Step Functions state machine.
type StepFunctionsOrchestrator struct {
	client          sfniface.SFNAPI
	stateMachineARN string
}

func NewStepFunctionsOrchestrator(c sfniface.SFNAPI, stateMachineARN string) *StepFunctionsOrchestrator {
	return &StepFunctionsOrchestrator{client: c, stateMachineARN: stateMachineARN}
}

func (o *StepFunctionsOrchestrator) StartPipeline(ctx context.Context, id string, input model.PipelineInput) (Execution, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return Execution{}, apperrors.Wrap(err, "failed to encode pipeline input")
	}

	out, err := o.client.StartExecutionWithContext(ctx, &sfn.StartExecutionInput{
		StateMachineArn: aws.String(o.stateMachineARN),
		Name:            aws.String(ExecutionName(id)),
		Input:           aws.String(string(payload)),
	})
	if err != nil {
		return Execution{}, apperrors.Service("sfn.StartExecution", err)
	}
	return Execution{ID: aws.StringValue(out.ExecutionArn)}, nil
}

const maxExecutionNameLength = 80

var invalidExecutionNameChars = regexp.MustCompile(`[^0-9A-Za-z_-]+`)

// ExecutionName turns id into a valid Step Functions execution name.
func ExecutionName(id string) string {
	name := invalidExecutionNameChars.ReplaceAllString(id, "-")
	if len(name) > maxExecutionNameLength {
		// keep the tail, where the timestamp and token are
		name = name[len(name)-maxExecutionNameLength:]
	}
	return name
}

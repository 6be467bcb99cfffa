// Package workflows defines the Temporal workflow that chains transcription, translation
// and speech synthesis.
package workflows

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
	"voice-relay/internal/app/jobs"
	"voice-relay/internal/app/locator"
	"voice-relay/internal/app/model"
	"voice-relay/internal/app/repository"
	"voice-relay/internal/app/synthesis"
	"voice-relay/internal/app/temporal/activities"
	"voice-relay/internal/app/translation"
)

// PipelineWorkflowName is the registered name of Pipeline.Run.
const PipelineWorkflowName = "PipelineWorkflow"

// Error types of workflow failures.
const (
	InvalidInputErrorType        = "InvalidInput"
	TranscriptionFailedErrorType = "TranscriptionFailed"
	TranscriptionTimeoutType     = "TranscriptionTimeout"
)

// Pipeline holds the workflow settings fixed at worker start.
type Pipeline struct {
	// PollInterval separates two status checks of the transcription job.
	PollInterval time.Duration
	// MaxPolls bounds the checks before the workflow gives up. Zero means no bound.
	MaxPolls int
	// Attempts and RetryInterval set the retry policy of the stage activities. Zero
	// values mean 3 attempts starting at one second.
	Attempts      int32
	RetryInterval time.Duration
}

func (p *Pipeline) retryPolicy() *temporal.RetryPolicy {
	attempts, interval := p.Attempts, p.RetryInterval
	if attempts <= 0 {
		attempts = 3
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &temporal.RetryPolicy{
		InitialInterval:    interval,
		BackoffCoefficient: 2.0,
		MaximumInterval:    100 * time.Second,
		MaximumAttempts:    attempts,
	}
}

// acts is only used to name activity methods.
var acts *activities.Activities

// Registry is satisfied by a Temporal worker and by the test workflow environment.
type Registry interface {
	RegisterWorkflowWithOptions(w interface{}, options workflow.RegisterOptions)
}

// Register registers the workflow under PipelineWorkflowName.
func (p *Pipeline) Register(r Registry) {
	r.RegisterWorkflowWithOptions(p.Run, workflow.RegisterOptions{Name: PipelineWorkflowName})
}

// Run transcribes the uploaded media, waits for the job with durable timers, then translates
// and synthesizes every target language.
func (p *Pipeline) Run(ctx workflow.Context, input model.PipelineInput) (model.PipelineResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting pipeline", "bucket", input.Bucket, "key", input.Key)

	if input.Bucket == "" || input.Key == "" {
		return model.PipelineResult{}, temporal.NewNonRetryableApplicationError(
			"bucket and key are required", InvalidInputErrorType, nil)
	}

	executionID := workflow.GetInfo(ctx).WorkflowExecution.ID
	filename := locator.BaseName(input.Key)
	result := model.PipelineResult{Key: input.Key}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		HeartbeatTimeout:    time.Minute,
		RetryPolicy:         p.retryPolicy(),
	})

	var launch jobs.LaunchResult
	err := workflow.ExecuteActivity(ctx, acts.StartTranscription, jobs.TranscriptionInput{
		Bucket:      input.Bucket,
		Key:         input.Key,
		MediaKey:    input.MediaKey(),
		RequestedAt: workflow.Now(ctx),
	}).Get(ctx, &launch)
	if err != nil {
		return p.fail(ctx, executionID, result, err)
	}
	result.TranscriptJob = launch.JobName
	result.TranscriptURI = launch.ResultURI

	job, err := p.waitForJob(ctx, model.JobKindTranscription, launch.JobName)
	if err != nil {
		return p.fail(ctx, executionID, result, err)
	}
	if job.Status == model.JobStatusFailed {
		return p.fail(ctx, executionID, result, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("transcription job %s failed: %s", launch.JobName, job.FailureReason),
			TranscriptionFailedErrorType, nil))
	}

	var translated translation.Result
	err = workflow.ExecuteActivity(ctx, acts.TranslateTranscript, translation.Request{
		SourceURI:       launch.ResultURI,
		TargetLanguages: input.TargetLanguages,
		Bucket:          input.Bucket,
		Filename:        filename,
	}).Get(ctx, &translated)
	if err != nil {
		return p.fail(ctx, executionID, result, err)
	}
	result.Translations = translated.Translations
	addFailures(&result, "translation", translated.Failures)

	var spoken synthesis.Result
	err = workflow.ExecuteActivity(ctx, acts.SynthesizeSpeech, synthesis.Request{
		Bucket:   input.Bucket,
		Texts:    translated.Translations.Texts(),
		Filename: filename,
	}).Get(ctx, &spoken)
	if err != nil {
		return p.fail(ctx, executionID, result, err)
	}
	result.Audio = spoken.Audio
	addFailures(&result, "synthesis", spoken.Failures)

	status := model.RunStatusCompleted
	if len(result.Failures) > 0 {
		status = model.RunStatusPartial
	}
	p.finishRun(ctx, executionID, repository.RunOutcome{
		Status:        status,
		TranscriptURI: result.TranscriptURI,
		Outputs:       result.Audio,
		ErrorMessage:  failureSummary(result.Failures),
		FinishedAt:    workflow.Now(ctx),
	})

	logger.Info("Pipeline finished", "key", input.Key, "audio", len(result.Audio), "failures", len(result.Failures))
	return result, nil
}

// waitForJob checks the job, sleeping PollInterval on a durable timer between checks.
func (p *Pipeline) waitForJob(ctx workflow.Context, kind model.JobKind, jobID string) (model.Job, error) {
	interval := p.PollInterval
	if interval <= 0 {
		interval = jobs.DefaultPollInterval
	}
	checkCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumAttempts:    5,
		},
	})

	for polls := 1; p.MaxPolls == 0 || polls <= p.MaxPolls; polls++ {
		var job model.Job
		if err := workflow.ExecuteActivity(checkCtx, acts.CheckJob, activities.CheckJobInput{Kind: kind, JobID: jobID}).Get(ctx, &job); err != nil {
			return model.Job{}, err
		}
		if job.Status.Terminal() {
			return job, nil
		}
		if err := workflow.Sleep(ctx, interval); err != nil {
			return model.Job{}, err
		}
	}
	return model.Job{}, temporal.NewNonRetryableApplicationError(
		fmt.Sprintf("job %s not finished after %d checks", jobID, p.MaxPolls), TranscriptionTimeoutType, nil)
}

func (p *Pipeline) fail(ctx workflow.Context, executionID string, result model.PipelineResult, err error) (model.PipelineResult, error) {
	workflow.GetLogger(ctx).Error("Pipeline failed", "key", result.Key, "error", err)
	p.finishRun(ctx, executionID, repository.RunOutcome{
		Status:        model.RunStatusFailed,
		TranscriptURI: result.TranscriptURI,
		ErrorMessage:  err.Error(),
		FinishedAt:    workflow.Now(ctx),
	})
	return result, err
}

// finishRun records the outcome; a failure to record does not fail the pipeline.
func (p *Pipeline) finishRun(ctx workflow.Context, executionID string, outcome repository.RunOutcome) {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 3},
	})
	err := workflow.ExecuteActivity(ctx, acts.FinishRun, activities.FinishRunInput{
		ExecutionID: executionID,
		Outcome:     outcome,
	}).Get(ctx, nil)
	if err != nil {
		workflow.GetLogger(ctx).Warn("Failed to record run outcome", "error", err)
	}
}

func addFailures(result *model.PipelineResult, stage string, failures map[string]string) {
	for lang, reason := range failures {
		if result.Failures == nil {
			result.Failures = make(map[string]string)
		}
		result.Failures[lang] = stage + ": " + reason
	}
}

func failureSummary(failures map[string]string) string {
	if len(failures) == 0 {
		return ""
	}
	langs := make([]string, 0, len(failures))
	for lang := range failures {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	parts := make([]string, len(langs))
	for i, lang := range langs {
		parts[i] = lang + ": " + failures[lang]
	}
	return strings.Join(parts, "; ")
}

// Package activities wraps the pipeline stages as Temporal activities.
package activities

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	apperrors "voice-relay/internal/app/errors"
	"voice-relay/internal/app/jobs"
	"voice-relay/internal/app/model"
	"voice-relay/internal/app/repository"
	"voice-relay/internal/app/synthesis"
	"voice-relay/internal/app/translation"
)

// Error types reported to the workflow.
const (
	ValidationErrorType = "ValidationError"
	ServiceErrorType    = "ServiceError"
)

const heartbeatInterval = 10 * time.Second

// CheckJobInput names the job to check.
type CheckJobInput struct {
	Kind  model.JobKind `json:"kind"`
	JobID string        `json:"job_id"`
}

// FinishRunInput is the outcome recorded in the run history.
type FinishRunInput struct {
	ExecutionID string                `json:"execution_id"`
	Outcome     repository.RunOutcome `json:"outcome"`
}

// RunFinisher records run outcomes.
type RunFinisher interface {
	FinishRun(ctx context.Context, executionID string, outcome repository.RunOutcome) error
}

// Activities holds the stage implementations. Every method is registered as an activity.
type Activities struct {
	launcher    *jobs.Launcher
	poller      *jobs.Poller
	translator  *translation.BatchTranslator
	synthesizer *synthesis.BatchSynthesizer
	runs        RunFinisher
}

// New creates the activities. runs may be nil.
func New(launcher *jobs.Launcher, poller *jobs.Poller, translator *translation.BatchTranslator, synthesizer *synthesis.BatchSynthesizer, runs RunFinisher) *Activities {
	return &Activities{
		launcher:    launcher,
		poller:      poller,
		translator:  translator,
		synthesizer: synthesizer,
		runs:        runs,
	}
}

// StartTranscription starts the transcription job of the uploaded media.
func (a *Activities) StartTranscription(ctx context.Context, in jobs.TranscriptionInput) (jobs.LaunchResult, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Starting transcription", "bucket", in.Bucket, "key", in.Key)

	// the whisper backend transcribes inline, so this can run for minutes
	var result jobs.LaunchResult
	err := withHeartbeat(ctx, "transcribing "+in.Key, func() error {
		var err error
		result, err = a.launcher.StartTranscription(ctx, in)
		return err
	})
	if err != nil {
		logger.Error("Failed to start transcription", "error", err)
		return jobs.LaunchResult{}, toApplicationError(err)
	}
	return result, nil
}

// CheckJob performs one status check. Non-terminal statuses are returned, not retried.
func (a *Activities) CheckJob(ctx context.Context, in CheckJobInput) (model.Job, error) {
	job, err := a.poller.Check(ctx, in.Kind, in.JobID)
	if err != nil {
		return model.Job{}, toApplicationError(err)
	}
	if !job.Status.Terminal() {
		activity.GetLogger(ctx).Debug("Job not finished", "job", in.JobID, "status", job.Status)
	}
	return job, nil
}

// TranslateTranscript translates the transcript into every target language.
func (a *Activities) TranslateTranscript(ctx context.Context, req translation.Request) (translation.Result, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Translating transcript", "source", req.SourceURI, "languages", req.TargetLanguages)

	var result translation.Result
	err := withHeartbeat(ctx, "translating "+req.SourceURI, func() error {
		var err error
		result, err = a.translator.Translate(ctx, req)
		return err
	})
	if err != nil {
		logger.Error("Translation failed", "error", err)
		return translation.Result{}, toApplicationError(err)
	}
	return result, nil
}

// SynthesizeSpeech synthesizes every translation.
func (a *Activities) SynthesizeSpeech(ctx context.Context, req synthesis.Request) (synthesis.Result, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Synthesizing speech", "bucket", req.Bucket, "filename", req.Filename, "languages", len(req.Texts))

	var result synthesis.Result
	err := withHeartbeat(ctx, "synthesizing "+req.Filename, func() error {
		var err error
		result, err = a.synthesizer.Synthesize(ctx, req)
		return err
	})
	if err != nil {
		logger.Error("Synthesis failed", "error", err)
		return synthesis.Result{}, toApplicationError(err)
	}
	return result, nil
}

// FinishRun records the outcome of a run. Without a run history it does nothing.
func (a *Activities) FinishRun(ctx context.Context, in FinishRunInput) error {
	if a.runs == nil {
		return nil
	}
	if err := a.runs.FinishRun(ctx, in.ExecutionID, in.Outcome); err != nil {
		return toApplicationError(err)
	}
	return nil
}

// withHeartbeat runs fn and records a heartbeat every heartbeatInterval until it returns.
func withHeartbeat(ctx context.Context, details string, fn func() error) error {
	if !activity.IsActivity(ctx) {
		return fn()
	}
	activity.RecordHeartbeat(ctx, details)

	done := make(chan error, 1)
	go func() { done <- fn() }()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case err := <-done:
			return err
		case <-ticker.C:
			activity.RecordHeartbeat(ctx, fmt.Sprintf("still %s", details))
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// toApplicationError classifies err for the workflow: validation errors are not retried,
// service errors are.
func toApplicationError(err error) error {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		return temporal.NewNonRetryableApplicationError(err.Error(), ValidationErrorType, err)
	case apperrors.KindService:
		return temporal.NewApplicationError(err.Error(), ServiceErrorType, err)
	}
	return err
}

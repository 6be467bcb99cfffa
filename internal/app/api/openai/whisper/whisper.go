// Package whisper runs transcription jobs on the OpenAI audio API. The API is synchronous,
// so job state is kept in a JobStore and served back through JobStatus.
package whisper

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"voice-relay/internal/app/api"
	apperrors "voice-relay/internal/app/errors"
	"voice-relay/internal/app/locator"
	"voice-relay/internal/app/model"
	"voice-relay/internal/app/storage"
)

// JobStore persists job records.
type JobStore interface {
	SaveJob(ctx context.Context, job model.Job) error
	GetJob(ctx context.Context, kind model.JobKind, jobID string) (*model.Job, error)
}

// RemoteTranscriber implements remote transcription using the OpenAI API.
type RemoteTranscriber struct {
	client *openai.Client
	store  storage.Store
	jobs   JobStore
	logger *zap.Logger
}

// NewRemoteTranscriber creates a new RemoteTranscriber instance.
func NewRemoteTranscriber(client *openai.Client, store storage.Store, jobs JobStore, logger *zap.Logger) *RemoteTranscriber {
	return &RemoteTranscriber{client: client, store: store, jobs: jobs, logger: logger}
}

// StartTranscription transcribes the media and writes the transcript to the requested
// output key before returning. Media the API rejects is recorded as a FAILED job, the same
// way an asynchronous service would report it. Any other error is returned and also leaves
// the record FAILED, so status checks never report a job that is no longer running; a retry
// starts the record over.
func (rt *RemoteTranscriber) StartTranscription(ctx context.Context, req api.TranscriptionRequest) (err error) {
	media, err := locator.ParseURI(req.MediaURI)
	if err != nil {
		return err
	}
	output := locator.Ref{Bucket: req.OutputBucket, Key: req.OutputKey}
	if output.Bucket == "" {
		output.Bucket = media.Bucket
	}
	if output.Key == "" {
		output.Key = locator.TranscriptKey(req.JobName)
	}

	job := model.Job{JobID: req.JobName, Kind: model.JobKindTranscription, Status: model.JobStatusInProgress}
	if err := rt.jobs.SaveJob(ctx, job); err != nil {
		return err
	}
	defer func() {
		if err != nil {
			rt.saveFailed(ctx, job, err)
		}
	}()

	body, err := rt.store.Get(ctx, media)
	if err != nil {
		return err
	}
	defer body.Close()

	resp, err := rt.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		Reader:   body,
		FilePath: path.Base(media.Key),
		Language: baseLanguage(req.LanguageCode),
	})
	if err != nil {
		if !rejected(err) {
			return apperrors.Service("openai.CreateTranscription", err)
		}
		rt.logger.Warn("transcription rejected", zap.String("job", req.JobName), zap.Error(err))
		job.Status = model.JobStatusFailed
		job.FailureReason = err.Error()
		return rt.jobs.SaveJob(ctx, job)
	}

	if err := storage.PutText(ctx, rt.store, output, resp.Text); err != nil {
		return err
	}

	job.Status = model.JobStatusCompleted
	job.ResultLocation = output.URI()
	return rt.jobs.SaveJob(ctx, job)
}

func (rt *RemoteTranscriber) saveFailed(ctx context.Context, job model.Job, cause error) {
	job.Status = model.JobStatusFailed
	job.FailureReason = cause.Error()
	job.ResultLocation = ""
	if err := rt.jobs.SaveJob(context.WithoutCancel(ctx), job); err != nil {
		rt.logger.Warn("failed to record transcription failure", zap.String("job", job.JobID), zap.Error(err))
	}
}

// JobStatus reports the recorded state of a job.
func (rt *RemoteTranscriber) JobStatus(ctx context.Context, jobID string) (model.StatusReport, error) {
	job, err := rt.jobs.GetJob(ctx, model.JobKindTranscription, jobID)
	if apperrors.IsNotFound(err) {
		return model.StatusReport{}, err
	}
	if err != nil {
		return model.StatusReport{}, apperrors.Service("whisper.GetJob", err)
	}
	return model.StatusReport{
		JobID:          jobID,
		RawStatus:      string(job.Status),
		ResultLocation: job.ResultLocation,
		FailureReason:  job.FailureReason,
	}, nil
}

// rejected reports whether the API refused the request itself (4xx other than 429).
func rejected(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode >= 400 && apiErr.HTTPStatusCode < 500 && apiErr.HTTPStatusCode != 429
	}
	return false
}

// baseLanguage turns "en-US" into the ISO-639-1 code the audio API expects.
func baseLanguage(code string) string {
	base, _, _ := strings.Cut(code, "-")
	return strings.ToLower(base)
}

package amazon

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/transcribeservice"
	"github.com/aws/aws-sdk-go/service/transcribeservice/transcribeserviceiface"
	"voice-relay/internal/app/api"
	apperrors "voice-relay/internal/app/errors"
	"voice-relay/internal/app/model"
)

// Transcribe starts and observes Amazon Transcribe jobs.
type Transcribe struct {
	client transcribeserviceiface.TranscribeServiceAPI
}

func NewTranscribe(client transcribeserviceiface.TranscribeServiceAPI) *Transcribe {
	return &Transcribe{client: client}
}

// StartTranscription issues one StartTranscriptionJob request. Starting a job whose name
// already exists is not an error.
func (t *Transcribe) StartTranscription(ctx context.Context, req api.TranscriptionRequest) error {
	input := &transcribeservice.StartTranscriptionJobInput{
		TranscriptionJobName: aws.String(req.JobName),
		Media:                &transcribeservice.Media{MediaFileUri: aws.String(req.MediaURI)},
		MediaFormat:          aws.String(req.MediaFormat),
		LanguageCode:         aws.String(req.LanguageCode),
	}
	if req.OutputBucket != "" {
		input.OutputBucketName = aws.String(req.OutputBucket)
		if req.OutputKey != "" {
			input.OutputKey = aws.String(req.OutputKey)
		}
	}

	if _, err := t.client.StartTranscriptionJobWithContext(ctx, input); err != nil {
		// a retried start finds its own job; job names are unique per run
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == transcribeservice.ErrCodeConflictException {
			return nil
		}
		return apperrors.Service("transcribe.StartTranscriptionJob", err)
	}
	return nil
}

// JobStatus reports QUEUED, IN_PROGRESS, COMPLETED or FAILED.
func (t *Transcribe) JobStatus(ctx context.Context, jobID string) (model.StatusReport, error) {
	out, err := t.client.GetTranscriptionJobWithContext(ctx, &transcribeservice.GetTranscriptionJobInput{
		TranscriptionJobName: aws.String(jobID),
	})
	if err != nil {
		return model.StatusReport{}, apperrors.Service("transcribe.GetTranscriptionJob", err)
	}

	job := out.TranscriptionJob
	report := model.StatusReport{JobID: jobID}
	if job == nil {
		return report, nil
	}
	report.RawStatus = aws.StringValue(job.TranscriptionJobStatus)
	report.FailureReason = aws.StringValue(job.FailureReason)
	if job.Transcript != nil {
		report.ResultLocation = aws.StringValue(job.Transcript.TranscriptFileUri)
	}
	return report, nil
}

package amazon

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/polly"
	"github.com/aws/aws-sdk-go/service/polly/pollyiface"
	"voice-relay/internal/app/api"
	apperrors "voice-relay/internal/app/errors"
	"voice-relay/internal/app/model"
)

// Polly synthesizes mp3 speech with Amazon Polly, synchronously or as a stored task.
type Polly struct {
	client pollyiface.PollyAPI
}

func NewPolly(client pollyiface.PollyAPI) *Polly {
	return &Polly{client: client}
}

func (p *Polly) SynthesizeSpeech(ctx context.Context, text, voice string) (io.ReadCloser, error) {
	out, err := p.client.SynthesizeSpeechWithContext(ctx, &polly.SynthesizeSpeechInput{
		Text:         aws.String(text),
		OutputFormat: aws.String(polly.OutputFormatMp3),
		VoiceId:      aws.String(voice),
	})
	if err != nil {
		return nil, apperrors.Service("polly.SynthesizeSpeech", err)
	}
	return out.AudioStream, nil
}

func (p *Polly) StartSynthesisTask(ctx context.Context, req api.SynthesisTaskRequest) (api.SynthesisTask, error) {
	out, err := p.client.StartSpeechSynthesisTaskWithContext(ctx, &polly.StartSpeechSynthesisTaskInput{
		Text:               aws.String(req.Text),
		OutputFormat:       aws.String(polly.OutputFormatMp3),
		VoiceId:            aws.String(req.Voice),
		OutputS3BucketName: aws.String(req.OutputBucket),
		OutputS3KeyPrefix:  aws.String(req.OutputKeyPrefix),
	})
	if err != nil {
		return api.SynthesisTask{}, apperrors.Service("polly.StartSpeechSynthesisTask", err)
	}
	if out.SynthesisTask == nil {
		return api.SynthesisTask{}, apperrors.Service("polly.StartSpeechSynthesisTask", apperrors.New("response carries no task"))
	}
	return api.SynthesisTask{
		TaskID:    aws.StringValue(out.SynthesisTask.TaskId),
		OutputURI: aws.StringValue(out.SynthesisTask.OutputUri),
	}, nil
}

// JobStatus reports scheduled, inProgress, completed or failed.
func (p *Polly) JobStatus(ctx context.Context, jobID string) (model.StatusReport, error) {
	out, err := p.client.GetSpeechSynthesisTaskWithContext(ctx, &polly.GetSpeechSynthesisTaskInput{
		TaskId: aws.String(jobID),
	})
	if err != nil {
		return model.StatusReport{}, apperrors.Service("polly.GetSpeechSynthesisTask", err)
	}

	report := model.StatusReport{JobID: jobID}
	if task := out.SynthesisTask; task != nil {
		report.RawStatus = aws.StringValue(task.TaskStatus)
		report.ResultLocation = aws.StringValue(task.OutputUri)
		report.FailureReason = aws.StringValue(task.TaskStatusReason)
	}
	return report, nil
}

package amazon

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/translate"
	"github.com/aws/aws-sdk-go/service/translate/translateiface"
	apperrors "voice-relay/internal/app/errors"
	"voice-relay/internal/app/model"
)

// autoDetect asks Amazon Translate to detect the source language.
const autoDetect = "auto"

// Translate calls Amazon Translate in real time and observes batch translation jobs.
type Translate struct {
	client translateiface.TranslateAPI
}

func NewTranslate(client translateiface.TranslateAPI) *Translate {
	return &Translate{client: client}
}

func (t *Translate) Translate(ctx context.Context, text, sourceLanguage, targetLanguage string) (string, error) {
	if sourceLanguage == "" {
		sourceLanguage = autoDetect
	}
	out, err := t.client.TextWithContext(ctx, &translate.TextInput{
		Text:               aws.String(text),
		SourceLanguageCode: aws.String(sourceLanguage),
		TargetLanguageCode: aws.String(targetLanguage),
	})
	if err != nil {
		return "", apperrors.Service("translate.TranslateText", err)
	}
	return aws.StringValue(out.TranslatedText), nil
}

// JobStatus reports the state of a batch translation job: SUBMITTED, IN_PROGRESS,
// COMPLETED, COMPLETED_WITH_ERROR, FAILED, STOP_REQUESTED or STOPPED.
func (t *Translate) JobStatus(ctx context.Context, jobID string) (model.StatusReport, error) {
	out, err := t.client.DescribeTextTranslationJobWithContext(ctx, &translate.DescribeTextTranslationJobInput{
		JobId: aws.String(jobID),
	})
	if err != nil {
		return model.StatusReport{}, apperrors.Service("translate.DescribeTextTranslationJob", err)
	}

	props := out.TextTranslationJobProperties
	report := model.StatusReport{JobID: jobID}
	if props == nil {
		return report, nil
	}
	report.RawStatus = aws.StringValue(props.JobStatus)
	report.FailureReason = aws.StringValue(props.Message)
	if props.OutputDataConfig != nil {
		report.ResultLocation = aws.StringValue(props.OutputDataConfig.S3Uri)
	}
	return report, nil
}

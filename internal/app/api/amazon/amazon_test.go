package amazon

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/polly"
	"github.com/aws/aws-sdk-go/service/polly/pollyiface"
	"github.com/aws/aws-sdk-go/service/transcribeservice"
	"github.com/aws/aws-sdk-go/service/transcribeservice/transcribeserviceiface"
	"github.com/aws/aws-sdk-go/service/translate"
	"github.com/aws/aws-sdk-go/service/translate/translateiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"voice-relay/internal/app/api"
	apperrors "voice-relay/internal/app/errors"
)

type mockTranscribe struct {
	transcribeserviceiface.TranscribeServiceAPI
	mock.Mock
}

func (m *mockTranscribe) StartTranscriptionJobWithContext(ctx aws.Context, in *transcribeservice.StartTranscriptionJobInput, opts ...request.Option) (*transcribeservice.StartTranscriptionJobOutput, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(*transcribeservice.StartTranscriptionJobOutput), args.Error(1)
}

func (m *mockTranscribe) GetTranscriptionJobWithContext(ctx aws.Context, in *transcribeservice.GetTranscriptionJobInput, opts ...request.Option) (*transcribeservice.GetTranscriptionJobOutput, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(*transcribeservice.GetTranscriptionJobOutput), args.Error(1)
}

type mockTranslate struct {
	translateiface.TranslateAPI
	mock.Mock
}

func (m *mockTranslate) TextWithContext(ctx aws.Context, in *translate.TextInput, opts ...request.Option) (*translate.TextOutput, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(*translate.TextOutput), args.Error(1)
}

func (m *mockTranslate) DescribeTextTranslationJobWithContext(ctx aws.Context, in *translate.DescribeTextTranslationJobInput, opts ...request.Option) (*translate.DescribeTextTranslationJobOutput, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(*translate.DescribeTextTranslationJobOutput), args.Error(1)
}

type mockPolly struct {
	pollyiface.PollyAPI
	mock.Mock
}

func (m *mockPolly) SynthesizeSpeechWithContext(ctx aws.Context, in *polly.SynthesizeSpeechInput, opts ...request.Option) (*polly.SynthesizeSpeechOutput, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(*polly.SynthesizeSpeechOutput), args.Error(1)
}

func (m *mockPolly) StartSpeechSynthesisTaskWithContext(ctx aws.Context, in *polly.StartSpeechSynthesisTaskInput, opts ...request.Option) (*polly.StartSpeechSynthesisTaskOutput, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(*polly.StartSpeechSynthesisTaskOutput), args.Error(1)
}

func (m *mockPolly) GetSpeechSynthesisTaskWithContext(ctx aws.Context, in *polly.GetSpeechSynthesisTaskInput, opts ...request.Option) (*polly.GetSpeechSynthesisTaskOutput, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(*polly.GetSpeechSynthesisTaskOutput), args.Error(1)
}

func TestTranscribe_StartTranscription(t *testing.T) {
	client := &mockTranscribe{}
	client.On("StartTranscriptionJobWithContext", mock.Anything, mock.MatchedBy(func(in *transcribeservice.StartTranscriptionJobInput) bool {
		return aws.StringValue(in.TranscriptionJobName) == "talk-20261019" &&
			aws.StringValue(in.Media.MediaFileUri) == "s3://media/uploads/talk.mp3" &&
			aws.StringValue(in.MediaFormat) == "mp3" &&
			aws.StringValue(in.LanguageCode) == "en-US" &&
			aws.StringValue(in.OutputBucketName) == "media" &&
			aws.StringValue(in.OutputKey) == "transcripts/talk-20261019.txt"
	})).Return(&transcribeservice.StartTranscriptionJobOutput{}, nil).Once()

	err := NewTranscribe(client).StartTranscription(context.Background(), api.TranscriptionRequest{
		JobName:      "talk-20261019",
		MediaURI:     "s3://media/uploads/talk.mp3",
		MediaFormat:  "mp3",
		LanguageCode: "en-US",
		OutputBucket: "media",
		OutputKey:    "transcripts/talk-20261019.txt",
	})
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestTranscribe_StartFailureIsServiceError(t *testing.T) {
	client := &mockTranscribe{}
	client.On("StartTranscriptionJobWithContext", mock.Anything, mock.Anything).
		Return((*transcribeservice.StartTranscriptionJobOutput)(nil), awserr.New("LimitExceededException", "too many jobs", nil))

	err := NewTranscribe(client).StartTranscription(context.Background(), api.TranscriptionRequest{JobName: "talk"})
	require.Error(t, err)
	assert.True(t, apperrors.IsServiceError(err))
	assert.Contains(t, err.Error(), "LimitExceededException")
}

func TestTranscribe_RestartOfExistingJob(t *testing.T) {
	client := &mockTranscribe{}
	client.On("StartTranscriptionJobWithContext", mock.Anything, mock.Anything).
		Return((*transcribeservice.StartTranscriptionJobOutput)(nil), awserr.New(transcribeservice.ErrCodeConflictException, "job exists", nil))

	assert.NoError(t, NewTranscribe(client).StartTranscription(context.Background(), api.TranscriptionRequest{JobName: "dup"}))
}

func TestTranscribe_JobStatus(t *testing.T) {
	client := &mockTranscribe{}
	client.On("GetTranscriptionJobWithContext", mock.Anything, mock.Anything).
		Return(&transcribeservice.GetTranscriptionJobOutput{
			TranscriptionJob: &transcribeservice.TranscriptionJob{
				TranscriptionJobStatus: aws.String("COMPLETED"),
				Transcript:             &transcribeservice.Transcript{TranscriptFileUri: aws.String("https://s3.amazonaws.com/media/transcripts/job.txt")},
			},
		}, nil)

	report, err := NewTranscribe(client).JobStatus(context.Background(), "job")
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", report.RawStatus)
	assert.Equal(t, "https://s3.amazonaws.com/media/transcripts/job.txt", report.ResultLocation)
	assert.Equal(t, "job", report.JobID)
}

func TestTranslate_DefaultsToAutoDetect(t *testing.T) {
	client := &mockTranslate{}
	client.On("TextWithContext", mock.Anything, mock.MatchedBy(func(in *translate.TextInput) bool {
		return aws.StringValue(in.SourceLanguageCode) == "auto" && aws.StringValue(in.TargetLanguageCode) == "es"
	})).Return(&translate.TextOutput{TranslatedText: aws.String("hola")}, nil).Once()

	text, err := NewTranslate(client).Translate(context.Background(), "hello", "", "es")
	require.NoError(t, err)
	assert.Equal(t, "hola", text)
	client.AssertExpectations(t)
}

func TestTranslate_JobStatus(t *testing.T) {
	client := &mockTranslate{}
	client.On("DescribeTextTranslationJobWithContext", mock.Anything, mock.Anything).
		Return(&translate.DescribeTextTranslationJobOutput{
			TextTranslationJobProperties: &translate.TextTranslationJobProperties{
				JobStatus: aws.String("FAILED"),
				Message:   aws.String("input bucket not readable"),
			},
		}, nil)

	report, err := NewTranslate(client).JobStatus(context.Background(), "tj-1")
	require.NoError(t, err)
	assert.Equal(t, "FAILED", report.RawStatus)
	assert.Equal(t, "input bucket not readable", report.FailureReason)
}

func TestPolly_SynthesizeSpeech(t *testing.T) {
	client := &mockPolly{}
	client.On("SynthesizeSpeechWithContext", mock.Anything, mock.MatchedBy(func(in *polly.SynthesizeSpeechInput) bool {
		return aws.StringValue(in.VoiceId) == "Lucia" && aws.StringValue(in.OutputFormat) == polly.OutputFormatMp3
	})).Return(&polly.SynthesizeSpeechOutput{AudioStream: io.NopCloser(strings.NewReader("ID3"))}, nil)

	stream, err := NewPolly(client).SynthesizeSpeech(context.Background(), "hola", "Lucia")
	require.NoError(t, err)
	defer stream.Close()
	data, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, "ID3", string(data))
}

func TestPolly_SynthesisTask(t *testing.T) {
	client := &mockPolly{}
	client.On("StartSpeechSynthesisTaskWithContext", mock.Anything, mock.MatchedBy(func(in *polly.StartSpeechSynthesisTaskInput) bool {
		return aws.StringValue(in.OutputS3BucketName) == "media" && aws.StringValue(in.OutputS3KeyPrefix) == "audio_outputs/tasks/"
	})).Return(&polly.StartSpeechSynthesisTaskOutput{
		SynthesisTask: &polly.SynthesisTask{
			TaskId:    aws.String("task-1"),
			OutputUri: aws.String("https://s3.us-east-1.amazonaws.com/media/audio_outputs/tasks/task-1.mp3"),
		},
	}, nil)
	client.On("GetSpeechSynthesisTaskWithContext", mock.Anything, mock.Anything).
		Return(&polly.GetSpeechSynthesisTaskOutput{
			SynthesisTask: &polly.SynthesisTask{
				TaskStatus: aws.String(polly.TaskStatusInProgress),
			},
		}, nil)

	p := NewPolly(client)
	task, err := p.StartSynthesisTask(context.Background(), api.SynthesisTaskRequest{
		Text: "long text", Voice: "Joanna", OutputBucket: "media", OutputKeyPrefix: "audio_outputs/tasks/",
	})
	require.NoError(t, err)
	assert.Equal(t, "task-1", task.TaskID)

	report, err := p.JobStatus(context.Background(), task.TaskID)
	require.NoError(t, err)
	assert.Equal(t, "inProgress", report.RawStatus)
}

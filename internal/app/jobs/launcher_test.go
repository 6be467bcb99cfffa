package jobs

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"voice-relay/internal/app/api"
	apperrors "voice-relay/internal/app/errors"
)

var fixedNow = time.Date(2024, 3, 9, 14, 5, 7, 123000000, time.UTC)

func TestDeriveJobName(t *testing.T) {
	assert.Equal(t, "talk-20240309-140507123", DeriveJobName("uploads/talk.mp3", fixedNow))
	assert.Equal(t, "my-talk-v2-20240309-140507123", DeriveJobName("my talk (v2).mp3", fixedNow))
	assert.Equal(t, "media-20240309-140507123", DeriveJobName("uploads/.mp3", fixedNow))

	long := DeriveJobName(strings.Repeat("a", 300)+".mp3", fixedNow)
	assert.Len(t, long, 200)
	assert.True(t, strings.HasSuffix(long, "-20240309-140507123"))

	assert.NotEqual(t, DeriveJobName("talk.mp3", fixedNow), DeriveJobName("talk.mp3", fixedNow.Add(time.Millisecond)))
}

func TestLauncher_StartTranscription(t *testing.T) {
	starter := &mockTranscriptionStarter{}
	starter.On("StartTranscription", mock.Anything, api.TranscriptionRequest{
		JobName:      "talk_20240309-20240309-140507123",
		MediaURI:     "s3://media/uploads/talk.mp3",
		MediaFormat:  "mp3",
		LanguageCode: "en-US",
		OutputBucket: "media",
		OutputKey:    "transcripts/talk_20240309-20240309-140507123.txt",
	}).Return(nil).Once()

	launcher := NewLauncher(starter, nil, LauncherConfig{}, nil)
	result, err := launcher.StartTranscription(context.Background(), TranscriptionInput{
		Bucket:      "media",
		Key:         "talk_20240309.mp3",
		MediaKey:    "uploads/talk.mp3",
		RequestedAt: fixedNow,
	})
	require.NoError(t, err)

	assert.Equal(t, "talk_20240309-20240309-140507123", result.JobName)
	assert.Equal(t, "s3://media/transcripts/talk_20240309-20240309-140507123.txt", result.ResultURI)
	starter.AssertExpectations(t)
}

func TestLauncher_StartTranscriptionUsesConfig(t *testing.T) {
	starter := &mockTranscriptionStarter{}
	starter.On("StartTranscription", mock.Anything, mock.MatchedBy(func(req api.TranscriptionRequest) bool {
		return req.MediaFormat == "wav" && req.LanguageCode == "fr-FR" && req.MediaURI == "s3://media/talk.wav"
	})).Return(nil).Once()

	launcher := NewLauncher(starter, nil, LauncherConfig{MediaFormat: "wav", LanguageCode: "fr-FR"}, nil)
	launcher.now = func() time.Time { return fixedNow }

	result, err := launcher.StartTranscription(context.Background(), TranscriptionInput{Bucket: "media", Key: "talk.wav"})
	require.NoError(t, err)
	assert.Equal(t, "talk-20240309-140507123", result.JobName)
	starter.AssertExpectations(t)
}

func TestLauncher_StartTranscriptionValidation(t *testing.T) {
	starter := &mockTranscriptionStarter{}
	launcher := NewLauncher(starter, nil, LauncherConfig{}, nil)

	_, err := launcher.StartTranscription(context.Background(), TranscriptionInput{Key: "talk.mp3"})
	assert.True(t, apperrors.IsValidationError(err))

	_, err = launcher.StartTranscription(context.Background(), TranscriptionInput{Bucket: "media"})
	assert.True(t, apperrors.IsValidationError(err))

	starter.AssertNotCalled(t, "StartTranscription", mock.Anything, mock.Anything)
}

func TestLauncher_StartTranscriptionServiceError(t *testing.T) {
	starter := &mockTranscriptionStarter{}
	starter.On("StartTranscription", mock.Anything, mock.Anything).
		Return(apperrors.Service("transcribe.StartTranscriptionJob", errors.New("throttled"))).Once()

	launcher := NewLauncher(starter, nil, LauncherConfig{}, nil)
	_, err := launcher.StartTranscription(context.Background(), TranscriptionInput{Bucket: "media", Key: "talk.mp3"})
	require.Error(t, err)
	assert.True(t, apperrors.IsServiceError(err))
	starter.AssertNumberOfCalls(t, "StartTranscription", 1)
}

func TestLauncher_StartSynthesis(t *testing.T) {
	synth := &mockSynthesisStarter{}
	synth.On("StartSynthesisTask", mock.Anything, api.SynthesisTaskRequest{
		Text:            "hola",
		Voice:           "Lucia",
		OutputBucket:    "media",
		OutputKeyPrefix: "audio_outputs/tasks/",
	}).Return(api.SynthesisTask{TaskID: "task-1", OutputURI: "s3://media/audio_outputs/tasks/task-1.mp3"}, nil).Once()

	launcher := NewLauncher(&mockTranscriptionStarter{}, synth, LauncherConfig{}, nil)
	result, err := launcher.StartSynthesis(context.Background(), SynthesisInput{
		Bucket:    "media",
		KeyPrefix: "audio_outputs/tasks/",
		Text:      "hola",
		Voice:     "Lucia",
	})
	require.NoError(t, err)
	assert.Equal(t, "task-1", result.JobName)
	assert.Equal(t, "s3://media/audio_outputs/tasks/task-1.mp3", result.ResultURI)
}

func TestLauncher_StartSynthesisWithoutProvider(t *testing.T) {
	launcher := NewLauncher(&mockTranscriptionStarter{}, nil, LauncherConfig{}, nil)
	_, err := launcher.StartSynthesis(context.Background(), SynthesisInput{Bucket: "media", Text: "hola"})
	assert.True(t, apperrors.IsValidationError(err))
}

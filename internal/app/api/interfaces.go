// Package api declares the managed services the pipeline drives. Each service has one or
// more provider implementations in the subpackages.
package api

import (
	"context"
	"io"

	"voice-relay/internal/app/model"
)

// TranscriptionRequest describes one transcription job.
type TranscriptionRequest struct {
	JobName      string
	MediaURI     string
	MediaFormat  string
	LanguageCode string
	// OutputBucket and OutputKey place the transcript at its deterministic location.
	OutputBucket string
	OutputKey    string
}

// TranscriptionStarter starts transcription jobs. It returns once the job is accepted.
type TranscriptionStarter interface {
	StartTranscription(ctx context.Context, req TranscriptionRequest) error
}

// StatusSource reports the state of jobs owned by one service. Implementations fill
// RawStatus with the service's own vocabulary; normalization happens in the poller.
type StatusSource interface {
	JobStatus(ctx context.Context, jobID string) (model.StatusReport, error)
}

// Translator translates one text. An empty source language lets the service detect it.
type Translator interface {
	Translate(ctx context.Context, text, sourceLanguage, targetLanguage string) (string, error)
}

// SpeechSynthesizer turns text into audio synchronously. The caller closes the stream.
type SpeechSynthesizer interface {
	SynthesizeSpeech(ctx context.Context, text, voice string) (io.ReadCloser, error)
}

// SynthesisTaskRequest describes one long-form synthesis task.
type SynthesisTaskRequest struct {
	Text            string
	Voice           string
	OutputBucket    string
	OutputKeyPrefix string
}

// SynthesisTask is an accepted long-form synthesis task.
type SynthesisTask struct {
	TaskID    string
	OutputURI string
}

// SynthesisTaskStarter starts asynchronous synthesis tasks whose output the service writes
// to storage.
type SynthesisTaskStarter interface {
	StartSynthesisTask(ctx context.Context, req SynthesisTaskRequest) (SynthesisTask, error)
}

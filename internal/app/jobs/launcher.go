package jobs

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"voice-relay/internal/app/api"
	apperrors "voice-relay/internal/app/errors"
	"voice-relay/internal/app/locator"
)

const (
	DefaultMediaFormat  = "mp3"
	DefaultLanguageCode = "en-US"

	// maxJobNameLength is the Transcribe limit for job names.
	maxJobNameLength  = 200
	jobNameTimeLayout = "20060102-150405.000"
)

var invalidJobNameChars = regexp.MustCompile(`[^0-9A-Za-z._-]+`)

// DeriveJobName builds a transcription job name from an object key: the base name with
// unsupported characters replaced, followed by a millisecond timestamp.
func DeriveJobName(key string, now time.Time) string {
	base := invalidJobNameChars.ReplaceAllString(locator.BaseName(key), "-")
	base = strings.Trim(base, "-.")
	if base == "" {
		base = "media"
	}
	suffix := "-" + strings.Replace(now.UTC().Format(jobNameTimeLayout), ".", "", 1)
	if len(base)+len(suffix) > maxJobNameLength {
		base = base[:maxJobNameLength-len(suffix)]
	}
	return base + suffix
}

// TranscriptionInput identifies the media to transcribe.
type TranscriptionInput struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	// MediaKey is the object actually read when it differs from Key.
	MediaKey string `json:"media_key,omitempty"`
	// RequestedAt fixes the job name across retries. Zero means now.
	RequestedAt time.Time `json:"requested_at,omitempty"`
}

// LaunchResult is the handle of a started job.
type LaunchResult struct {
	JobName   string `json:"job_name"`
	ResultURI string `json:"predicted_result_uri"`
}

// SynthesisInput describes a long-form synthesis task.
type SynthesisInput struct {
	Bucket    string
	KeyPrefix string
	Text      string
	Voice     string
}

// LauncherConfig holds the fixed request parameters.
type LauncherConfig struct {
	MediaFormat  string
	LanguageCode string
}

// Launcher starts asynchronous jobs on the managed services.
type Launcher struct {
	transcriber api.TranscriptionStarter
	synthesizer api.SynthesisTaskStarter
	cfg         LauncherConfig
	logger      *zap.Logger
	now         func() time.Time
}

// NewLauncher creates a launcher. synthesizer may be nil when the synthesis provider has no
// long-form task API.
func NewLauncher(transcriber api.TranscriptionStarter, synthesizer api.SynthesisTaskStarter, cfg LauncherConfig, logger *zap.Logger) *Launcher {
	if cfg.MediaFormat == "" {
		cfg.MediaFormat = DefaultMediaFormat
	}
	if cfg.LanguageCode == "" {
		cfg.LanguageCode = DefaultLanguageCode
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Launcher{
		transcriber: transcriber,
		synthesizer: synthesizer,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// StartTranscription starts one transcription job and returns its name together with the
// location the transcript will be written to.
func (l *Launcher) StartTranscription(ctx context.Context, in TranscriptionInput) (LaunchResult, error) {
	if in.Bucket == "" {
		return LaunchResult{}, apperrors.RequiredField("bucket")
	}
	if in.Key == "" {
		return LaunchResult{}, apperrors.RequiredField("key")
	}

	requestedAt := in.RequestedAt
	if requestedAt.IsZero() {
		requestedAt = l.now()
	}
	jobName := DeriveJobName(in.Key, requestedAt)
	media := in.MediaKey
	if media == "" {
		media = in.Key
	}
	transcript := locator.Transcript(in.Bucket, jobName)

	err := l.transcriber.StartTranscription(ctx, api.TranscriptionRequest{
		JobName:      jobName,
		MediaURI:     locator.Ref{Bucket: in.Bucket, Key: media}.URI(),
		MediaFormat:  l.cfg.MediaFormat,
		LanguageCode: l.cfg.LanguageCode,
		OutputBucket: transcript.Bucket,
		OutputKey:    transcript.Key,
	})
	if err != nil {
		return LaunchResult{}, err
	}

	l.logger.Info("Transcription job started",
		zap.String("job", jobName),
		zap.String("bucket", in.Bucket),
		zap.String("key", media))
	return LaunchResult{JobName: jobName, ResultURI: transcript.URI()}, nil
}

// StartSynthesis starts a long-form synthesis task writing under KeyPrefix.
func (l *Launcher) StartSynthesis(ctx context.Context, in SynthesisInput) (LaunchResult, error) {
	if l.synthesizer == nil {
		return LaunchResult{}, apperrors.Validation("long-form synthesis is not supported by the configured provider")
	}
	if strings.TrimSpace(in.Text) == "" {
		return LaunchResult{}, apperrors.RequiredField("text")
	}
	if in.Bucket == "" {
		return LaunchResult{}, apperrors.RequiredField("bucket")
	}

	task, err := l.synthesizer.StartSynthesisTask(ctx, api.SynthesisTaskRequest{
		Text:            in.Text,
		Voice:           in.Voice,
		OutputBucket:    in.Bucket,
		OutputKeyPrefix: in.KeyPrefix,
	})
	if err != nil {
		return LaunchResult{}, err
	}

	l.logger.Info("Synthesis task started",
		zap.String("job", task.TaskID),
		zap.String("voice", in.Voice),
		zap.Int("chars", len(in.Text)))
	return LaunchResult{JobName: task.TaskID, ResultURI: task.OutputURI}, nil
}

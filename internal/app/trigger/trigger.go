// Package trigger starts one pipeline execution for every media object uploaded to the
// bucket.
package trigger

import (
	"context"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	apperrors "voice-relay/internal/app/errors"
	"voice-relay/internal/app/locator"
	"voice-relay/internal/app/model"
	"voice-relay/internal/app/storage"
)

const uniqueKeyTimeLayout = "20060102_150405.000"

// RunRecorder keeps the history of started runs.
type RunRecorder interface {
	CreateRun(ctx context.Context, run model.Run) (int64, error)
}

// NotificationSource delivers storage notifications until ctx is done.
type NotificationSource interface {
	Listen(ctx context.Context, bucket, prefix string) <-chan storage.Notification
}

// Trigger turns object-created notifications into pipeline executions. It holds no state.
type Trigger struct {
	orchestrator Orchestrator
	languages    []string
	runs         RunRecorder
	logger       *zap.Logger
	now          func() time.Time
	token        func() string
}

// New creates a trigger that requests the given target languages. runs may be nil.
func New(orchestrator Orchestrator, languages []string, runs RunRecorder, logger *zap.Logger) *Trigger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Trigger{
		orchestrator: orchestrator,
		languages:    languages,
		runs:         runs,
		logger:       logger,
		now:          time.Now,
		token:        func() string { return uuid.NewString()[:8] },
	}
}

// UniqueKey inserts a timestamp and token before the extension of key:
// talks/a.mp3 becomes talks/a_20240309_140507_123_1a2b3c4d.mp3.
func UniqueKey(key string, now time.Time, token string) string {
	ext := path.Ext(key)
	stamp := strings.Replace(now.UTC().Format(uniqueKeyTimeLayout), ".", "_", 1)
	return strings.TrimSuffix(key, ext) + "_" + stamp + "_" + token + ext
}

// HandleEvent starts a pipeline for every object-created record. Records for the pipeline's
// own outputs are skipped. Executions started before a failure are returned together with
// the error.
func (t *Trigger) HandleEvent(ctx context.Context, event model.StorageEvent) ([]Execution, error) {
	if len(event.Records) == 0 {
		return nil, apperrors.ErrNoRecordsInEvent
	}

	var (
		executions []Execution
		errs       []error
	)
	for _, record := range event.Records {
		if !record.ObjectCreated() {
			continue
		}
		bucket := record.S3.Bucket.Name
		key, err := url.QueryUnescape(record.S3.Object.Key)
		if err != nil {
			errs = append(errs, apperrors.InvalidField("object key", err.Error()))
			continue
		}
		if locator.IsOutputKey(key) {
			t.logger.Debug("Skipping pipeline output", zap.String("bucket", bucket), zap.String("key", key))
			continue
		}

		execution, err := t.Start(ctx, bucket, key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		executions = append(executions, execution)
	}
	return executions, apperrors.Join(errs...)
}

// Start starts one pipeline execution for bucket/key.
func (t *Trigger) Start(ctx context.Context, bucket, key string) (Execution, error) {
	if bucket == "" {
		return Execution{}, apperrors.RequiredField("bucket")
	}
	if key == "" {
		return Execution{}, apperrors.RequiredField("key")
	}

	now := t.now()
	uniqueKey := UniqueKey(key, now, t.token())
	input := model.PipelineInput{
		Bucket:          bucket,
		Key:             uniqueKey,
		SourceKey:       key,
		TargetLanguages: t.languages,
	}

	execution, err := t.orchestrator.StartPipeline(ctx, "pipeline-"+uniqueKey, input)
	if err != nil {
		t.logger.Error("Failed to start pipeline", zap.String("bucket", bucket), zap.String("key", key), zap.Error(err))
		return Execution{}, err
	}
	t.logger.Info("Pipeline started",
		zap.String("bucket", bucket),
		zap.String("key", key),
		zap.String("execution", execution.ID))

	if t.runs != nil {
		_, err := t.runs.CreateRun(ctx, model.Run{
			ExecutionID:     execution.ID,
			Bucket:          bucket,
			SourceKey:       key,
			Key:             uniqueKey,
			TargetLanguages: t.languages,
			Status:          model.RunStatusStarted,
			StartedAt:       now.UTC(),
		})
		if err != nil {
			t.logger.Warn("Failed to record run", zap.String("execution", execution.ID), zap.Error(err))
		}
	}
	return execution, nil
}

// Listen feeds the notifications of source to HandleEvent until ctx is done.
func (t *Trigger) Listen(ctx context.Context, source NotificationSource, bucket, prefix string) error {
	t.logger.Info("Listening for uploads", zap.String("bucket", bucket), zap.String("prefix", prefix))
	for n := range source.Listen(ctx, bucket, prefix) {
		if n.Err != nil {
			t.logger.Warn("Notification error", zap.Error(n.Err))
			continue
		}
		if len(n.Event.Records) == 0 {
			continue
		}
		if _, err := t.HandleEvent(ctx, n.Event); err != nil {
			t.logger.Error("Failed to handle notification", zap.Error(err))
		}
	}
	return ctx.Err()
}

package converter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	apperrors "voice-relay/internal/app/errors"
	"voice-relay/internal/app/model"
	"voice-relay/internal/app/storage"
	"voice-relay/internal/app/trigger"
)

type fakeLister struct {
	objects []storage.Object
	err     error
}

func (f fakeLister) List(ctx context.Context, bucket, prefix string) ([]storage.Object, error) {
	return f.objects, f.err
}

type recordingStarter struct {
	mu   sync.Mutex
	keys []string
	fail map[string]error
}

func (s *recordingStarter) Start(ctx context.Context, bucket, key string) (trigger.Execution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
	if err := s.fail[key]; err != nil {
		return trigger.Execution{}, err
	}
	return trigger.Execution{ID: "pipeline-" + key}, nil
}

type fakeRuns []model.Run

func (f fakeRuns) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	return f, nil
}

func objectsAt(base time.Time, keys ...string) []storage.Object {
	out := make([]storage.Object, len(keys))
	for i, k := range keys {
		out[i] = storage.Object{Key: k, LastModified: base.Add(time.Duration(i) * time.Minute)}
	}
	return out
}

func TestBackfiller_StartsOldestFirst(t *testing.T) {
	base := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	objects := []storage.Object{
		{Key: "uploads/new.mp3", LastModified: base.Add(time.Hour)},
		{Key: "uploads/old.mp3", LastModified: base},
	}
	starter := &recordingStarter{}
	b := NewBackfiller(starter, fakeLister{objects: objects}, nil, ProgressConfig{}, zap.NewNop())

	summary, err := b.Run(context.Background(), BackfillOptions{Bucket: "media", Parallel: 1})
	require.NoError(t, err)

	assert.Equal(t, []string{"uploads/old.mp3", "uploads/new.mp3"}, starter.keys)
	assert.Equal(t, 2, summary.Started)
	assert.Len(t, summary.Executions, 2)
}

func TestBackfiller_SerialStartsFollowUploadOrder(t *testing.T) {
	base := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	var objects []storage.Object
	for i := 4; i >= 0; i-- {
		objects = append(objects, storage.Object{
			Key:          fmt.Sprintf("uploads/%d.mp3", i),
			LastModified: base.Add(time.Duration(i) * time.Minute),
		})
	}
	starter := &recordingStarter{}
	b := NewBackfiller(starter, fakeLister{objects: objects}, nil, ProgressConfig{}, zap.NewNop())

	_, err := b.Run(context.Background(), BackfillOptions{Bucket: "media", Parallel: 1})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"uploads/0.mp3", "uploads/1.mp3", "uploads/2.mp3", "uploads/3.mp3", "uploads/4.mp3",
	}, starter.keys)
}

func TestBackfiller_SkipsOutputsAndProcessed(t *testing.T) {
	objects := objectsAt(time.Now(),
		"uploads/a.mp3",
		"transcripts/job.txt",
		"audio_outputs/a_es.mp3",
		"uploads/b.mp3",
	)
	runs := fakeRuns{
		{Bucket: "media", SourceKey: "uploads/a.mp3"},
		{Bucket: "other", SourceKey: "uploads/b.mp3"},
	}
	starter := &recordingStarter{}
	b := NewBackfiller(starter, fakeLister{objects: objects}, runs, ProgressConfig{}, zap.NewNop())

	summary, err := b.Run(context.Background(), BackfillOptions{Bucket: "media"})
	require.NoError(t, err)

	assert.Equal(t, []string{"uploads/b.mp3"}, starter.keys)
	assert.Equal(t, 1, summary.Started)
	assert.Equal(t, 1, summary.Skipped)
}

func TestBackfiller_ForceIgnoresHistory(t *testing.T) {
	objects := objectsAt(time.Now(), "uploads/a.mp3")
	runs := fakeRuns{{Bucket: "media", SourceKey: "uploads/a.mp3"}}
	starter := &recordingStarter{}
	b := NewBackfiller(starter, fakeLister{objects: objects}, runs, ProgressConfig{}, zap.NewNop())

	summary, err := b.Run(context.Background(), BackfillOptions{Bucket: "media", Force: true})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Started)
	assert.Zero(t, summary.Skipped)
}

func TestBackfiller_Limit(t *testing.T) {
	objects := objectsAt(time.Now(), "u/1.mp3", "u/2.mp3", "u/3.mp3")
	starter := &recordingStarter{}
	b := NewBackfiller(starter, fakeLister{objects: objects}, nil, ProgressConfig{}, zap.NewNop())

	summary, err := b.Run(context.Background(), BackfillOptions{Bucket: "media", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Started)
	assert.ElementsMatch(t, []string{"u/1.mp3", "u/2.mp3"}, starter.keys)
}

func TestBackfiller_FailuresAreCounted(t *testing.T) {
	objects := objectsAt(time.Now(), "u/1.mp3", "u/2.mp3")
	starter := &recordingStarter{fail: map[string]error{
		"u/2.mp3": apperrors.Service("temporal.ExecuteWorkflow", errors.New("unavailable")),
	}}
	b := NewBackfiller(starter, fakeLister{objects: objects}, nil, ProgressConfig{}, zap.NewNop())

	summary, err := b.Run(context.Background(), BackfillOptions{Bucket: "media", Parallel: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "u/2.mp3")
	assert.True(t, apperrors.IsServiceError(err))
	assert.Equal(t, 1, summary.Started)
	assert.Equal(t, 1, summary.Failed)
}

func TestBackfiller_Validation(t *testing.T) {
	b := NewBackfiller(&recordingStarter{}, fakeLister{}, nil, ProgressConfig{}, zap.NewNop())
	_, err := b.Run(context.Background(), BackfillOptions{})
	assert.True(t, apperrors.IsValidationError(err))
}

func TestBackfiller_ListError(t *testing.T) {
	listErr := errors.New("bucket missing")
	b := NewBackfiller(&recordingStarter{}, fakeLister{err: listErr}, nil, ProgressConfig{}, zap.NewNop())
	_, err := b.Run(context.Background(), BackfillOptions{Bucket: "media"})
	assert.ErrorIs(t, err, listErr)
}

func TestBackfiller_ProgressOutput(t *testing.T) {
	var out bytes.Buffer
	objects := objectsAt(time.Now(), "u/1.mp3")
	b := NewBackfiller(&recordingStarter{}, fakeLister{objects: objects}, nil,
		ProgressConfig{Enabled: true, Writer: &out}, zap.NewNop())

	_, err := b.Run(context.Background(), BackfillOptions{Bucket: "media"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "backfill media")
}

func TestIsTTY(t *testing.T) {
	assert.False(t, IsTTY(&bytes.Buffer{}))
	assert.False(t, IsTTY(nil))
	assert.True(t, ShouldShowProgress(true))
}

package trigger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "voice-relay/internal/app/errors"
	"voice-relay/internal/app/model"
	"voice-relay/internal/app/storage"
)

type startCall struct {
	ID    string
	Input model.PipelineInput
}

type fakeOrchestrator struct {
	mu    sync.Mutex
	calls []startCall
	err   error
}

func (f *fakeOrchestrator) StartPipeline(ctx context.Context, id string, input model.PipelineInput) (Execution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, startCall{ID: id, Input: input})
	if f.err != nil {
		return Execution{}, f.err
	}
	return Execution{ID: id, RunID: "run"}, nil
}

type fakeRuns struct {
	runs []model.Run
	err  error
}

func (f *fakeRuns) CreateRun(ctx context.Context, run model.Run) (int64, error) {
	f.runs = append(f.runs, run)
	return int64(len(f.runs)), f.err
}

func record(bucket, key string) model.StorageRecord {
	return model.StorageRecord{
		EventName: "ObjectCreated:Put",
		S3: model.S3Entity{
			Bucket: model.BucketEntity{Name: bucket},
			Object: model.ObjectEntity{Key: key},
		},
	}
}

func TestUniqueKey(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 7, 123000000, time.UTC)
	assert.Equal(t, "talks/a_20240309_140507_123_1a2b3c4d.mp3", UniqueKey("talks/a.mp3", now, "1a2b3c4d"))
	assert.Equal(t, "noext_20240309_140507_123_x", UniqueKey("noext", now, "x"))
}

func TestTrigger_TwoUploadsGetDistinctExecutions(t *testing.T) {
	orch := &fakeOrchestrator{}
	trig := New(orch, []string{"es", "fr", "de"}, nil, nil)
	fixed := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	trig.now = func() time.Time { return fixed }

	event := model.StorageEvent{Records: []model.StorageRecord{record("media", "talk.mp3")}}
	first, err := trig.HandleEvent(context.Background(), event)
	require.NoError(t, err)
	second, err := trig.HandleEvent(context.Background(), event)
	require.NoError(t, err)

	require.Len(t, orch.calls, 2)
	assert.NotEqual(t, orch.calls[0].Input.Key, orch.calls[1].Input.Key, "same millisecond still yields distinct keys")
	assert.NotEqual(t, first[0].ID, second[0].ID)

	input := orch.calls[0].Input
	assert.Equal(t, "media", input.Bucket)
	assert.Equal(t, "talk.mp3", input.SourceKey)
	assert.Equal(t, []string{"es", "fr", "de"}, input.TargetLanguages)
	assert.Regexp(t, `^talk_20240309_140507_000_[0-9a-f]{8}\.mp3$`, input.Key)
	assert.Equal(t, "pipeline-"+input.Key, orch.calls[0].ID)
}

func TestTrigger_HandlesEveryRecord(t *testing.T) {
	orch := &fakeOrchestrator{}
	runs := &fakeRuns{}
	trig := New(orch, []string{"es"}, runs, nil)

	executions, err := trig.HandleEvent(context.Background(), model.StorageEvent{Records: []model.StorageRecord{
		record("media", "uploads/my+talk%281%29.mp3"),
		record("media", "translations/talk_es.txt"),
		record("media", "audio_outputs/talk_es.mp3"),
		{EventName: "ObjectRemoved:Delete", S3: model.S3Entity{Bucket: model.BucketEntity{Name: "media"}, Object: model.ObjectEntity{Key: "old.mp3"}}},
		record("media", "second.mp3"),
	}})
	require.NoError(t, err)

	require.Len(t, executions, 2)
	assert.Equal(t, "uploads/my talk(1).mp3", orch.calls[0].Input.SourceKey)
	assert.Equal(t, "second.mp3", orch.calls[1].Input.SourceKey)

	require.Len(t, runs.runs, 2)
	assert.Equal(t, model.RunStatusStarted, runs.runs[0].Status)
	assert.Equal(t, executions[0].ID, runs.runs[0].ExecutionID)
}

func TestTrigger_EmptyEvent(t *testing.T) {
	orch := &fakeOrchestrator{}
	_, err := New(orch, []string{"es"}, nil, nil).HandleEvent(context.Background(), model.StorageEvent{})

	assert.ErrorIs(t, err, apperrors.ErrNoRecordsInEvent)
	assert.Empty(t, orch.calls)
}

func TestTrigger_StartFailure(t *testing.T) {
	orch := &fakeOrchestrator{err: apperrors.Service("temporal.ExecuteWorkflow", errors.New("unavailable"))}
	executions, err := New(orch, []string{"es"}, nil, nil).HandleEvent(context.Background(),
		model.StorageEvent{Records: []model.StorageRecord{record("media", "a.mp3"), record("media", "b.mp3")}})

	require.Error(t, err)
	assert.True(t, apperrors.IsServiceError(err))
	assert.Empty(t, executions)
	assert.Len(t, orch.calls, 2)
}

func TestTrigger_RunRecordFailureIsNotFatal(t *testing.T) {
	runs := &fakeRuns{err: errors.New("database is locked")}
	execution, err := New(&fakeOrchestrator{}, []string{"es"}, runs, nil).Start(context.Background(), "media", "a.mp3")
	require.NoError(t, err)
	assert.NotEmpty(t, execution.ID)
}

func TestTrigger_StartValidation(t *testing.T) {
	orch := &fakeOrchestrator{}
	trig := New(orch, nil, nil, nil)

	_, err := trig.Start(context.Background(), "", "a.mp3")
	assert.True(t, apperrors.IsValidationError(err))
	_, err = trig.Start(context.Background(), "media", "")
	assert.True(t, apperrors.IsValidationError(err))
	assert.Empty(t, orch.calls)
}

type fakeSource struct {
	notifications []storage.Notification
}

func (f *fakeSource) Listen(ctx context.Context, bucket, prefix string) <-chan storage.Notification {
	ch := make(chan storage.Notification, len(f.notifications))
	for _, n := range f.notifications {
		ch <- n
	}
	close(ch)
	return ch
}

func TestTrigger_Listen(t *testing.T) {
	orch := &fakeOrchestrator{}
	source := &fakeSource{notifications: []storage.Notification{
		{Err: errors.New("connection reset")},
		{Event: model.StorageEvent{}},
		{Event: model.StorageEvent{Records: []model.StorageRecord{record("media", "a.mp3")}}},
	}}

	err := New(orch, []string{"es"}, nil, nil).Listen(context.Background(), source, "media", "")
	assert.NoError(t, err)
	assert.Len(t, orch.calls, 1)
}

package jobs

import (
	"context"

	"github.com/stretchr/testify/mock"
	"voice-relay/internal/app/api"
	"voice-relay/internal/app/model"
)

type mockStatusSource struct {
	mock.Mock
}

func (m *mockStatusSource) JobStatus(ctx context.Context, jobID string) (model.StatusReport, error) {
	args := m.Called(ctx, jobID)
	return args.Get(0).(model.StatusReport), args.Error(1)
}

type mockTranscriptionStarter struct {
	mock.Mock
}

func (m *mockTranscriptionStarter) StartTranscription(ctx context.Context, req api.TranscriptionRequest) error {
	return m.Called(ctx, req).Error(0)
}

type mockSynthesisStarter struct {
	mock.Mock
}

func (m *mockSynthesisStarter) StartSynthesisTask(ctx context.Context, req api.SynthesisTaskRequest) (api.SynthesisTask, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(api.SynthesisTask), args.Error(1)
}

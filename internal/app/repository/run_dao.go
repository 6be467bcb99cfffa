package repository

import (
	"context"
	"time"

	"voice-relay/internal/app/model"
)

// RunDAO records pipeline runs.
type RunDAO interface {
	Close() error

	// CreateRun inserts a started run and returns its id.
	CreateRun(ctx context.Context, run model.Run) (int64, error)

	// FinishRun records the outcome of the run started under executionID.
	FinishRun(ctx context.Context, executionID string, outcome RunOutcome) error

	GetRun(ctx context.Context, executionID string) (*model.Run, error)

	// ListRuns returns the most recent runs first. A limit of zero returns every run.
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)
}

// RunOutcome is the final state of a run.
type RunOutcome struct {
	Status        string
	TranscriptURI string
	Outputs       map[string]string
	ErrorMessage  string
	FinishedAt    time.Time
}

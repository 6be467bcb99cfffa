package model

import "time"

// RunStatus values recorded in the run history.
const (
	RunStatusStarted   = "started"
	RunStatusCompleted = "completed"
	RunStatusPartial   = "partial"
	RunStatusFailed    = "failed"
)

// Run is one row of pipeline run history.
type Run struct {
	ID              int64
	ExecutionID     string
	Bucket          string
	SourceKey       string
	Key             string
	TargetLanguages []string
	Status          string
	TranscriptURI   string
	Outputs         map[string]string
	ErrorMessage    string
	StartedAt       time.Time
	FinishedAt      *time.Time
}

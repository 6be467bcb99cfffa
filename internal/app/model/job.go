package model

import "time"

// JobKind names the external service that owns a job.
type JobKind string

const (
	JobKindTranscription JobKind = "transcription"
	JobKindSynthesis     JobKind = "synthesis"
	JobKindTranslation   JobKind = "translation"
)

// Valid reports whether k is one of the known job kinds.
func (k JobKind) Valid() bool {
	switch k {
	case JobKindTranscription, JobKindSynthesis, JobKindTranslation:
		return true
	}
	return false
}

// JobStatus is the normalized status vocabulary shared by every external service.
type JobStatus string

const (
	JobStatusInProgress JobStatus = "IN_PROGRESS"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusFailed     JobStatus = "FAILED"
	// JobStatusError means the status check itself failed; the remote job may still be running.
	JobStatusError JobStatus = "ERROR"
)

// Terminal reports whether no further transitions can occur.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// UnknownFailureReason is reported when a failed job carries no reason.
const UnknownFailureReason = "Unknown error"

// Job is a unit of asynchronous work tracked by an external service.
type Job struct {
	JobID          string    `json:"job_id"`
	Kind           JobKind   `json:"kind"`
	Status         JobStatus `json:"status"`
	ResultLocation string    `json:"result_location,omitempty"`
	FailureReason  string    `json:"failure_reason,omitempty"`
	UpdatedAt      time.Time `json:"updated_at,omitempty"`
}

// StatusReport is one observation of a job's state, as returned by a status source.
// RawStatus keeps the service's own vocabulary for logging.
type StatusReport struct {
	JobID          string
	RawStatus      string
	Status         JobStatus
	ResultLocation string
	FailureReason  string
}

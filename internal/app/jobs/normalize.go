package jobs

import (
	"strings"

	"voice-relay/internal/app/model"
)

// statusTable maps the vocabularies of Transcribe, Translate and Polly onto JobStatus.
// Keys are upper-cased with underscores removed, so "inProgress" and "IN_PROGRESS" meet.
var statusTable = map[string]model.JobStatus{
	"QUEUED":             model.JobStatusInProgress,
	"SUBMITTED":          model.JobStatusInProgress,
	"SCHEDULED":          model.JobStatusInProgress,
	"INPROGRESS":         model.JobStatusInProgress,
	"STOPREQUESTED":      model.JobStatusInProgress,
	"COMPLETED":          model.JobStatusCompleted,
	"COMPLETEDWITHERROR": model.JobStatusCompleted,
	"FAILED":             model.JobStatusFailed,
	"STOPPED":            model.JobStatusFailed,
	"ERROR":              model.JobStatusError,
}

// NormalizeStatus translates a service status into the shared vocabulary. Unknown or empty
// statuses are reported as IN_PROGRESS so the caller keeps polling.
func NormalizeStatus(raw string) model.JobStatus {
	key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), "_", ""))
	if status, ok := statusTable[key]; ok {
		return status
	}
	return model.JobStatusInProgress
}

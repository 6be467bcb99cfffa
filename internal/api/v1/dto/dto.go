package dto

import (
	"time"

	apperrors "voice-relay/internal/app/errors"
	"voice-relay/internal/app/model"
	"voice-relay/internal/app/trigger"
)

// TriggerResponse is returned by the event webhook. StatusCode repeats the HTTP status so
// callers that only keep the body still see the outcome.
type TriggerResponse struct {
	StatusCode int                 `json:"status_code"`
	Body       string              `json:"body"`
	Executions []trigger.Execution `json:"executions"`
}

// StartPipelineRequest starts a pipeline for one object that is already stored.
type StartPipelineRequest struct {
	Bucket string `json:"bucket" binding:"required"`
	Key    string `json:"key" binding:"required"`
}

// StatusCheckRequest is the body of POST /jobs/status.
type StatusCheckRequest struct {
	JobName string `json:"job_name"`
	JobID   string `json:"job_id"`
	Kind    string `json:"kind" binding:"omitempty,oneof=transcription synthesis translation"`
}

// ListRunsQuery filters GET /runs.
type ListRunsQuery struct {
	Limit int `form:"limit" binding:"min=0,max=1000"`
}

// ExportQuery filters GET /runs/export.
type ExportQuery struct {
	Limit  int    `form:"limit" binding:"min=0"`
	Status string `form:"status" binding:"omitempty,oneof=started completed partial failed"`
}

// RunResponse is one row of run history.
type RunResponse struct {
	ExecutionID     string            `json:"execution_id"`
	Bucket          string            `json:"bucket"`
	SourceKey       string            `json:"source_key"`
	Key             string            `json:"key"`
	TargetLanguages []string          `json:"target_languages"`
	Status          string            `json:"status"`
	TranscriptURI   string            `json:"transcript_uri,omitempty"`
	Outputs         map[string]string `json:"outputs,omitempty"`
	ErrorMessage    string            `json:"error_message,omitempty"`
	StartedAt       time.Time         `json:"started_at"`
	FinishedAt      *time.Time        `json:"finished_at,omitempty"`
}

// RunListResponse wraps GET /runs results.
type RunListResponse struct {
	Runs  []RunResponse `json:"runs"`
	Count int           `json:"count"`
}

func (r StartPipelineRequest) Validate() error {
	if r.Bucket == "" {
		return apperrors.RequiredField("bucket")
	}
	if r.Key == "" {
		return apperrors.RequiredField("key")
	}
	return nil
}

// FromRun converts a stored run.
func FromRun(r model.Run) RunResponse {
	langs := r.TargetLanguages
	if langs == nil {
		langs = []string{}
	}
	return RunResponse{
		ExecutionID:     r.ExecutionID,
		Bucket:          r.Bucket,
		SourceKey:       r.SourceKey,
		Key:             r.Key,
		TargetLanguages: langs,
		Status:          r.Status,
		TranscriptURI:   r.TranscriptURI,
		Outputs:         r.Outputs,
		ErrorMessage:    r.ErrorMessage,
		StartedAt:       r.StartedAt,
		FinishedAt:      r.FinishedAt,
	}
}

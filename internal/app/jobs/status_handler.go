package jobs

import (
	"context"

	"go.uber.org/zap"
	"voice-relay/internal/app/model"
)

// StatusRequest is the payload of a status check. JobName is the transcription job name;
// JobID with Kind addresses any job.
type StatusRequest struct {
	JobName string        `json:"job_name,omitempty"`
	JobID   string        `json:"job_id,omitempty"`
	Kind    model.JobKind `json:"kind,omitempty"`
}

// StatusResponse is the answer to a status check.
type StatusResponse struct {
	Status        model.JobStatus `json:"status"`
	TranscriptURI string          `json:"transcript_uri,omitempty"`
	ResultURI     string          `json:"result_uri,omitempty"`
	Message       string          `json:"message,omitempty"`
}

// StatusHandler answers status-check payloads. Every error becomes an ERROR response.
type StatusHandler struct {
	poller *Poller
	logger *zap.Logger
}

func NewStatusHandler(poller *Poller, logger *zap.Logger) *StatusHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusHandler{poller: poller, logger: logger}
}

// Handle performs a single status check.
func (h *StatusHandler) Handle(ctx context.Context, req StatusRequest) StatusResponse {
	jobID := req.JobID
	if req.JobName != "" {
		jobID = req.JobName
	}
	kind := req.Kind
	if kind == "" {
		kind = model.JobKindTranscription
	}

	job, err := h.poller.Check(ctx, kind, jobID)
	if err != nil {
		h.logger.Warn("Status check failed",
			zap.String("job", jobID),
			zap.String("kind", string(kind)),
			zap.Error(err))
		return StatusResponse{Status: model.JobStatusError, Message: err.Error()}
	}

	resp := StatusResponse{Status: job.Status}
	switch job.Status {
	case model.JobStatusCompleted:
		if kind == model.JobKindTranscription {
			resp.TranscriptURI = job.ResultLocation
		}
		resp.ResultURI = job.ResultLocation
	case model.JobStatusFailed:
		resp.Message = job.FailureReason
	}
	return resp
}

package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "voice-relay/internal/api/errors"
	"voice-relay/internal/api/middleware"
	"voice-relay/internal/api/v1/dto"
	"voice-relay/internal/app/model"
	"voice-relay/internal/app/trigger"
)

const (
	startedBody = "Pipeline execution started!"
	skippedBody = "No media objects in event"
)

// PipelineTrigger starts pipeline executions.
type PipelineTrigger interface {
	HandleEvent(ctx context.Context, event model.StorageEvent) ([]trigger.Execution, error)
	Start(ctx context.Context, bucket, key string) (trigger.Execution, error)
}

// PipelineHandler serves the storage webhook and manual pipeline starts.
type PipelineHandler struct {
	trigger PipelineTrigger
}

func NewPipelineHandler(t PipelineTrigger) *PipelineHandler {
	return &PipelineHandler{trigger: t}
}

// HandleEvent handles POST /api/v1/events. The body is an S3 or MinIO object notification.
// Executions started before a failure are listed in the error response as well.
func (h *PipelineHandler) HandleEvent(c *gin.Context) {
	var event model.StorageEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		middleware.HandleError(c, apierrors.NewBadRequestError("invalid storage event: "+err.Error()))
		return
	}

	executions, err := h.trigger.HandleEvent(c.Request.Context(), event)
	if executions == nil {
		executions = []trigger.Execution{}
	}
	if err != nil {
		_ = c.Error(err)
		apiErr := apierrors.FromError(err)
		status := apiErr.HTTPStatus()
		c.JSON(status, dto.TriggerResponse{
			StatusCode: status,
			Body:       "Error starting pipeline execution: " + apiErr.Message,
			Executions: executions,
		})
		return
	}

	body := startedBody
	if len(executions) == 0 {
		body = skippedBody
	}
	c.JSON(http.StatusOK, dto.TriggerResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Executions: executions,
	})
}

// Start handles POST /api/v1/pipelines.
func (h *PipelineHandler) Start(c *gin.Context) {
	var req dto.StartPipelineRequest
	if err := middleware.BindJSON(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	execution, err := h.trigger.Start(c.Request.Context(), req.Bucket, req.Key)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, execution)
}

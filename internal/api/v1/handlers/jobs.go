package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "voice-relay/internal/api/errors"
	"voice-relay/internal/api/middleware"
	"voice-relay/internal/api/v1/dto"
	"voice-relay/internal/app/jobs"
	"voice-relay/internal/app/model"
)

// StatusChecker performs one job status check.
type StatusChecker interface {
	Handle(ctx context.Context, req jobs.StatusRequest) jobs.StatusResponse
}

// JobHandler exposes job status checks. Check failures are reported in the body with
// status ERROR, not as HTTP errors.
type JobHandler struct {
	checker StatusChecker
}

func NewJobHandler(checker StatusChecker) *JobHandler {
	return &JobHandler{checker: checker}
}

// CheckStatus handles POST /api/v1/jobs/status.
func (h *JobHandler) CheckStatus(c *gin.Context) {
	var req dto.StatusCheckRequest
	if err := middleware.BindJSON(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	resp := h.checker.Handle(c.Request.Context(), jobs.StatusRequest{
		JobName: req.JobName,
		JobID:   req.JobID,
		Kind:    model.JobKind(req.Kind),
	})
	c.JSON(http.StatusOK, resp)
}

// Get handles GET /api/v1/jobs/:kind/:id.
func (h *JobHandler) Get(c *gin.Context) {
	kind := model.JobKind(c.Param("kind"))
	if !kind.Valid() {
		middleware.HandleError(c, apierrors.NewNotFoundError("job kind", string(kind)))
		return
	}

	resp := h.checker.Handle(c.Request.Context(), jobs.StatusRequest{
		JobID: c.Param("id"),
		Kind:  kind,
	})
	c.JSON(http.StatusOK, resp)
}

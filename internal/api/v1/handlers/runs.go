package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"voice-relay/internal/api/middleware"
	"voice-relay/internal/api/v1/dto"
	"voice-relay/internal/app/converter/export"
	"voice-relay/internal/app/model"
)

// RunReader reads the run history.
type RunReader interface {
	GetRun(ctx context.Context, executionID string) (*model.Run, error)
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)
}

// RunHandler serves the pipeline run history.
type RunHandler struct {
	runs RunReader
	now  func() time.Time
}

func NewRunHandler(runs RunReader) *RunHandler {
	return &RunHandler{runs: runs, now: time.Now}
}

// List handles GET /api/v1/runs.
func (h *RunHandler) List(c *gin.Context) {
	var q dto.ListRunsQuery
	if err := middleware.BindQuery(c, &q); err != nil {
		middleware.HandleError(c, err)
		return
	}
	if q.Limit == 0 {
		q.Limit = 100
	}

	runs, err := h.runs.ListRuns(c.Request.Context(), q.Limit)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.RunListResponse{
		Runs:  lo.Map(runs, func(r model.Run, _ int) dto.RunResponse { return dto.FromRun(r) }),
		Count: len(runs),
	})
}

// Get handles GET /api/v1/runs/:id.
func (h *RunHandler) Get(c *gin.Context) {
	run, err := h.runs.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromRun(*run))
}

// Export handles GET /api/v1/runs/export and returns the history as an Excel workbook.
func (h *RunHandler) Export(c *gin.Context) {
	var q dto.ExportQuery
	if err := middleware.BindQuery(c, &q); err != nil {
		middleware.HandleError(c, err)
		return
	}

	runs, err := h.runs.ListRuns(c.Request.Context(), q.Limit)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	if q.Status != "" {
		runs = lo.Filter(runs, func(r model.Run, _ int) bool { return r.Status == q.Status })
	}

	filename := fmt.Sprintf("runs-%s.xlsx", h.now().UTC().Format("20060102-150405"))
	c.Header("Content-Type", export.ContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)
	if err := export.WriteRuns(c.Writer, runs); err != nil {
		// Headers are already sent.
		_ = c.Error(err)
	}
}

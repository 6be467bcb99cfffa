package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"voice-relay/internal/app/metrics"
)

// StatsSource reports per-provider call statistics.
type StatsSource interface {
	Stats() []metrics.ProviderStats
}

type StatsHandler struct {
	source StatsSource
}

func NewStatsHandler(source StatsSource) *StatsHandler {
	return &StatsHandler{source: source}
}

// GetProviderStats handles GET /api/v1/stats/providers
func (h *StatsHandler) GetProviderStats(c *gin.Context) {
	stats := h.source.Stats()
	if stats == nil {
		stats = []metrics.ProviderStats{}
	}
	c.JSON(http.StatusOK, gin.H{"providers": stats})
}

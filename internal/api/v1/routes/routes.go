package routes

import (
	"github.com/gin-gonic/gin"
	"voice-relay/internal/api/v1/handlers"
)

// RegisterRoutes registers all v1 API routes. Nil dependencies leave their routes out.
func RegisterRoutes(router *gin.RouterGroup, deps *Dependencies) {
	if deps.Trigger != nil {
		pipelineHandler := handlers.NewPipelineHandler(deps.Trigger)
		router.POST("/events", pipelineHandler.HandleEvent)
		router.POST("/pipelines", pipelineHandler.Start)
	}

	if deps.Status != nil {
		jobHandler := handlers.NewJobHandler(deps.Status)
		jobs := router.Group("/jobs")
		{
			jobs.POST("/status", jobHandler.CheckStatus)
			jobs.GET("/:kind/:id", jobHandler.Get)
		}
	}

	if deps.Runs != nil {
		runHandler := handlers.NewRunHandler(deps.Runs)
		runs := router.Group("/runs")
		{
			runs.GET("", runHandler.List)
			runs.GET("/export", runHandler.Export)
			runs.GET("/:id", runHandler.Get)
		}
	}

	if deps.Stats != nil {
		statsHandler := handlers.NewStatsHandler(deps.Stats)
		router.GET("/stats/providers", statsHandler.GetProviderStats)
	}
}

// Dependencies holds what the v1 handlers need.
type Dependencies struct {
	Trigger handlers.PipelineTrigger
	Status  handlers.StatusChecker
	Runs    handlers.RunReader
	Stats   handlers.StatsSource
}

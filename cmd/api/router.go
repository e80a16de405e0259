package api

import (
	"net/http"

	documentDelivery "ladinglens-backend/internal/document/delivery"
	processingDelivery "ladinglens-backend/internal/processing/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, processingHandler *processingDelivery.ProcessingHandler, documentHandler *documentDelivery.DocumentHandler) {
	api := r.Group("/api")
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Batch processing
		api.POST("/process", processingHandler.Process)
		api.GET("/process-stream", processingHandler.ProcessStream)

		// Job registry
		jobs := api.Group("/jobs")
		{
			jobs.GET("/:id", processingHandler.GetJob)
			jobs.POST("/:id/cancel", processingHandler.CancelJob)
		}

		// Document listings and dashboard queries
		api.GET("/hbl", documentHandler.GetHBL)
		api.GET("/mbl", documentHandler.GetMBL)
		api.GET("/filter-options", documentHandler.GetFilterOptions)
		api.GET("/incidents", documentHandler.GetIncidents)
		api.GET("/stats", documentHandler.GetStats)
	}
}

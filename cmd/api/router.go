package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *Handler) {
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Change events (Pub/Sub push subscription or direct posts)
		api.POST("/events", h.ReceiveEvent)
		api.GET("/triggers", h.ListTriggers)

		// Operator backfill
		api.POST("/courses/:id/recount", h.RecountCourse)

		if h.dispatchHandler != nil {
			api.GET("/dispatches", h.dispatchHandler.ListDispatches)
		}
	}
}

package api

import (
	"github.com/gin-gonic/gin"

	"github.com/scanforge/scan-service/cmd/middleware"
	"github.com/scanforge/scan-service/internal/api/handlers"
)

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, PATCH, PUT, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-User-Id")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	}
}

func RegisterRoutes(r *gin.Engine, a *handlers.API) {
	// Enable CORS for preflight requests
	r.Use(corsMiddleware())

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		// Public read path for share links
		api.GET("/public/scans", a.GetPublicScan)
		api.GET("/public/projects", a.GetPublicProject)

		// Processing backend callback
		api.POST("/webhooks/processing", a.ProcessingWebhook)

		authed := api.Group("", middleware.RequireAuth())
		{
			authed.PUT("/users/me", a.UpdateMe)

			authed.GET("/projects", a.ListProjects)
			authed.GET("/projects/one", a.GetProject)
			authed.POST("/projects", a.CreateProject)
			authed.PATCH("/projects/:id", a.UpdateProject)
			authed.DELETE("/projects/:id", a.DeleteProject)

			authed.GET("/scans", a.ListScans)
			authed.GET("/scans/one", a.GetScan)
			authed.POST("/scans", a.CreateScan)
			authed.PATCH("/scans/:id", a.UpdateScan)
			authed.DELETE("/scans/:id", a.DeleteScan)

			authed.GET("/activities", a.ListActivities)

			authed.GET("/notifications", a.ListNotifications)
			authed.POST("/notifications/read", a.MarkNotificationsRead)
		}
	}
}

package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes
func SetupRoutes(handlers *Handlers) *gin.Engine {
	router := gin.Default()

	// Add CORS middleware
	router.Use(corsMiddleware())

	// API routes
	api := router.Group("/api")
	{
		reminders := api.Group("/reminders")
		{
			reminders.POST("/run", handlers.RunReminderHandler)
			reminders.POST("/scan", handlers.ScanHandler)
			reminders.POST("/dispatch", handlers.DispatchHandler)
			reminders.POST("/reset", handlers.ResetHandler)
			reminders.GET("/status/:audience/:horizon", handlers.StatusHandler)
		}

		documents := api.Group("/documents")
		{
			documents.GET("/:id", handlers.GetDocumentHandler)
		}

		audiences := api.Group("/audiences")
		{
			audiences.GET("", handlers.ListAudiencesHandler)
			audiences.GET("/:name", handlers.GetAudienceHandler)
			audiences.PUT("/:name", handlers.UpsertAudienceHandler)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return router
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

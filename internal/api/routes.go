package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up the API routes
func SetupRoutes(handler *Handler) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(Recovery())
	router.Use(CORS())
	router.Use(gin.Logger())

	// Health check
	router.GET("/health", handler.HealthCheck)

	// API v1
	v1 := router.Group("/api/v1")
	{
		wrapped := v1.Group("/wrapped/:username/:year")
		{
			wrapped.GET("", handler.GetWrapped)
			wrapped.GET("/slides", handler.GetWrappedSlides)
		}

		reports := v1.Group("/reports")
		{
			reports.GET("", handler.ListReports)
			reports.GET("/:id", handler.GetReport)
		}
	}

	return router
}

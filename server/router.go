// Package server exposes the analytic model over HTTP.
package server

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/bob-anderson-ok/SegmentDiffraction/analytic"
)

// SetupRouter creates and configures the Gin router.
func SetupRouter(model *analytic.Model) *gin.Engine {
	router := gin.Default()

	// Setup CORS middleware.
	corsConfig := cors.DefaultConfig()

	// Get allowed origins from environment variable.
	// Default to allow all origins if not specified.
	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if allowedOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(allowedOrigins, ",")
	} else {
		corsConfig.AllowAllOrigins = true
	}

	router.Use(cors.New(corsConfig))

	handler := NewHandler(model)

	// API v1 routes.
	v1 := router.Group("/v1")
	v1.GET("/config", handler.GetConfig)
	v1.POST("/intensity", handler.PostIntensity)

	// Health check.
	router.GET("/health", handler.HealthCheck)

	return router
}

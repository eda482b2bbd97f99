package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/shelftunes/st-requests/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Request lifecycle endpoints (authenticated)
		v1.POST("/requests", middleware.Auth(authCfg), handler.SubmitRequest)
		v1.GET("/requests", middleware.Auth(authCfg), handler.ListRequests)
		v1.GET("/requests/:id", middleware.Auth(authCfg), handler.GetRequest)

		// Approval gate endpoints (approver/admin, checked by the service)
		v1.POST("/requests/:id/approve", middleware.Auth(authCfg), handler.ApproveRequest)
		v1.POST("/requests/:id/reject", middleware.Auth(authCfg), handler.RejectRequest)

		// Admin force-fail escape hatch
		v1.POST("/requests/:id/fail", middleware.Auth(authCfg), handler.FailRequest)

		// Catalog endpoints (public read access)
		v1.GET("/catalog", handler.ListCatalog)

		// Blacklist administration (admin user or API key)
		v1.GET("/blacklist", middleware.Auth(authCfg), handler.ListBlacklist)
		v1.DELETE("/blacklist/:source", middleware.Auth(authCfg), handler.RemoveBlacklistedSource)
	}
}

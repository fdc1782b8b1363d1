package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"paystack-sync/internal/core"
	"paystack-sync/internal/middleware"
)

// SetupRoutes configures all the application routes with their handlers and middleware.
// Global middleware (request id, logging, recovery, CORS) is expected on router already.
// The admin API is only mounted when both adminService and verifier are non-nil.
func SetupRoutes(
	router *gin.Engine,
	logger *zap.Logger,
	webhookService core.WebhookService,
	adminService core.AdminService,
	verifier middleware.TokenVerifier,
) {
	webhookHandler := NewWebhookHandler(webhookService, logger)

	// Paystack is configured with the unversioned path; both are served.
	router.POST("/api/paystack/webhook", webhookHandler.HandlePaystackWebhook)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/paystack/webhook", webhookHandler.HandlePaystackWebhook)

		if adminService != nil && verifier != nil {
			authMW := middleware.NewAuthMiddleware(verifier, logger)
			adminHandler := NewAdminHandler(adminService, logger)

			adminGroup := apiV1.Group("/admin", authMW.VerifyToken(), authMW.RequireAdmin())
			{
				adminGroup.GET("/paystack/subscriptions", adminHandler.ListSubscriptions)
				adminGroup.GET("/paystack/transactions", adminHandler.ListTransactions)
				adminGroup.POST("/sync/transactions", adminHandler.SyncTransactions)
				adminGroup.GET("/webhook-events", adminHandler.ListWebhookEvents)
			}
		} else {
			logger.Warn("Admin API disabled: Firebase is not configured")
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "paystack-sync is healthy."})
	})

	logger.Info("API routes configured successfully under /api and /health.")
}

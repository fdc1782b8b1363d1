package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"paystack-sync/internal/core"
	"paystack-sync/internal/middleware"
)

// PaystackSignatureHeader carries the hex HMAC-SHA512 of the raw body.
const PaystackSignatureHeader = "x-paystack-signature"

const maxWebhookBodyBytes = 1 << 20

// WebhookHandler handles inbound Paystack webhooks.
type WebhookHandler struct {
	webhookService core.WebhookService
	logger         *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(ws core.WebhookService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{webhookService: ws, logger: logger}
}

// mapWebhookErrorToStatus maps errors from core.WebhookService to HTTP status codes.
func mapWebhookErrorToStatus(err error) (int, WebhookResponse) {
	switch {
	case errors.Is(err, core.ErrWebhookSignatureMissing):
		return http.StatusBadRequest, WebhookResponse{Status: false, Message: "Missing signature"}
	case errors.Is(err, core.ErrWebhookSecretMissing):
		return http.StatusInternalServerError, WebhookResponse{Status: false, Message: "Webhook secret not configured"}
	case errors.Is(err, core.ErrWebhookSignature):
		return http.StatusBadRequest, WebhookResponse{Status: false, Message: "Invalid signature"}
	case errors.Is(err, core.ErrWebhookPayload):
		return http.StatusBadRequest, WebhookResponse{Status: false, Message: "Invalid payload"}
	default:
		return http.StatusInternalServerError, WebhookResponse{Status: false, Message: "Webhook processing failed"}
	}
}

// HandlePaystackWebhook handles POST /api/paystack/webhook.
// Authentication is the signature over the raw body, so the body is read
// before any decoding.
func (h *WebhookHandler) HandlePaystackWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		h.logger.Warn("Paystack webhook: failed to read body", zap.Error(err))
		c.JSON(http.StatusBadRequest, WebhookResponse{Status: false, Message: "Unreadable request body"})
		return
	}

	outcome, err := h.webhookService.HandlePaystackWebhook(c.Request.Context(), c.GetHeader(PaystackSignatureHeader), payload)
	if err != nil {
		status, body := mapWebhookErrorToStatus(err)
		h.logger.Warn("Paystack webhook rejected",
			zap.Int("status", status),
			zap.Error(err),
			zap.String("request_id", middleware.GetRequestID(c)),
		)
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, WebhookResponse{Status: true, Message: outcome.Message})
}

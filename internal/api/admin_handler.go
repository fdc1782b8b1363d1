package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"paystack-sync/internal/core"
	"paystack-sync/internal/paystack"
)

// AdminHandler serves the authenticated admin API.
type AdminHandler struct {
	adminService core.AdminService
	logger       *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(as core.AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{adminService: as, logger: logger}
}

// mapAdminErrorToStatus maps errors from core.AdminService to HTTP status codes and ErrorResponse.
func (h *AdminHandler) mapAdminErrorToStatus(c *gin.Context, err error) {
	var statusCode int
	var errResponse ErrorResponse

	switch {
	case errors.Is(err, core.ErrInvalidSyncRange):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Invalid date range", Details: err.Error()}
	case errors.Is(err, core.ErrPaystackClient):
		statusCode = http.StatusServiceUnavailable
		errResponse = ErrorResponse{Error: "Payment provider error", Details: "Could not complete the operation with the payment provider."}
		h.logger.Error("Paystack client error", zap.Error(err))
	case errors.Is(err, core.ErrEventLogDisabled):
		statusCode = http.StatusServiceUnavailable
		errResponse = ErrorResponse{Error: "Webhook event log is not enabled"}
	default:
		h.logger.Error("Internal Server Error in AdminHandler", zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "An unexpected internal server error occurred."}
	}
	c.JSON(statusCode, errResponse)
}

func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New(name + " must be a non-negative integer")
	}
	return n, nil
}

func listParamsFromQuery(c *gin.Context) (paystack.ListParams, error) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return paystack.ListParams{}, err
	}
	perPage, err := queryInt(c, "perPage", 50)
	if err != nil {
		return paystack.ListParams{}, err
	}
	return paystack.ListParams{
		Page:     page,
		PerPage:  perPage,
		Customer: c.Query("customer"),
		Plan:     c.Query("plan"),
		Status:   c.Query("status"),
		From:     c.Query("from"),
		To:       c.Query("to"),
	}, nil
}

// ListSubscriptions handles GET /api/v1/admin/paystack/subscriptions
func (h *AdminHandler) ListSubscriptions(c *gin.Context) {
	params, err := listParamsFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters", Details: err.Error()})
		return
	}
	list, err := h.adminService.ListSubscriptions(c.Request.Context(), params)
	if err != nil {
		h.mapAdminErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, PagedResponse{Data: list.Data, Meta: list.Meta})
}

// ListTransactions handles GET /api/v1/admin/paystack/transactions
func (h *AdminHandler) ListTransactions(c *gin.Context) {
	params, err := listParamsFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters", Details: err.Error()})
		return
	}
	list, err := h.adminService.ListTransactions(c.Request.Context(), params)
	if err != nil {
		h.mapAdminErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, PagedResponse{Data: list.Data, Meta: list.Meta})
}

// SyncTransactions handles POST /api/v1/admin/sync/transactions. The body is optional.
func (h *AdminHandler) SyncTransactions(c *gin.Context) {
	var req core.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	h.logger.Info("Transaction sync requested",
		zap.String("userID", c.GetString("userID")),
		zap.String("from", req.From),
		zap.String("to", req.To),
	)
	report, err := h.adminService.SyncTransactions(c.Request.Context(), req)
	if err != nil {
		h.mapAdminErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Sync completed", Data: report})
}

// ListWebhookEvents handles GET /api/v1/admin/webhook-events
func (h *AdminHandler) ListWebhookEvents(c *gin.Context) {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters", Details: err.Error()})
		return
	}
	events, err := h.adminService.ListWebhookEvents(c.Request.Context(), limit)
	if err != nil {
		h.mapAdminErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "OK", Data: events})
}

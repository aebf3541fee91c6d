package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"healthpanel-backend-go/internal/core"
	"healthpanel-backend-go/internal/models"
)

// BillingHandler handles admin-initiated Stripe flows and subscription sync.
type BillingHandler struct {
	billingService core.BillingService
	syncService    core.SyncService
	logger         *zap.Logger
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(bs core.BillingService, ss core.SyncService, logger *zap.Logger) *BillingHandler {
	return &BillingHandler{billingService: bs, syncService: ss, logger: logger}
}

// CreateCheckoutSession handles POST /api/v1/admin/billing/checkout-session.
func (h *BillingHandler) CreateCheckoutSession(c *gin.Context) {
	var req models.CreateCheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	url, err := h.billingService.CreateCheckoutSession(c.Request.Context(), req.UserID, req.PriceID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SessionURLResponse{URL: url})
}

// CreatePortalSession handles POST /api/v1/admin/billing/portal-session.
func (h *BillingHandler) CreatePortalSession(c *gin.Context) {
	var req models.CreatePortalSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	url, err := h.billingService.CreatePortalSession(c.Request.Context(), req.UserID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SessionURLResponse{URL: url})
}

// SyncUser handles POST /api/v1/admin/users/:userId/subscription/sync.
func (h *BillingHandler) SyncUser(c *gin.Context) {
	if err := h.syncService.SyncUser(c.Request.Context(), c.Param("userId")); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Subscription synced"})
}

// SyncAll handles POST /api/v1/admin/subscriptions/sync.
// Per-account failures are reported in the body, not as a request failure.
func (h *BillingHandler) SyncAll(c *gin.Context) {
	report, err := h.syncService.SyncAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"healthpanel-backend-go/internal/core"
)

// StatsHandler serves subscription statistics for the admin dashboard.
type StatsHandler struct {
	statsService core.StatsService
	logger       *zap.Logger
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(ss core.StatsService, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{statsService: ss, logger: logger}
}

// SubscriptionStats handles GET /api/v1/admin/stats/subscriptions.
// A billing outage degrades the response (store-only or cached counts)
// rather than failing it.
func (h *StatsHandler) SubscriptionStats(c *gin.Context) {
	stats, err := h.statsService.SubscriptionStats(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

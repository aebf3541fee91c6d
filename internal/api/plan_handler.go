package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"healthpanel-backend-go/internal/core"
	"healthpanel-backend-go/internal/models"
)

// PlanHandler handles admin endpoints for subscription plan records.
type PlanHandler struct {
	planService core.PlanService
	logger      *zap.Logger
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(ps core.PlanService, logger *zap.Logger) *PlanHandler {
	return &PlanHandler{planService: ps, logger: logger}
}

// Create handles POST /api/v1/admin/plans.
func (h *PlanHandler) Create(c *gin.Context) {
	var req models.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	plan, err := h.planService.Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// List handles GET /api/v1/admin/plans.
func (h *PlanHandler) List(c *gin.Context) {
	plans, err := h.planService.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	if plans == nil {
		plans = []*models.Plan{}
	}
	c.JSON(http.StatusOK, plans)
}

// Get handles GET /api/v1/admin/plans/:planId.
func (h *PlanHandler) Get(c *gin.Context) {
	plan, err := h.planService.GetByID(c.Request.Context(), c.Param("planId"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// Update handles PATCH /api/v1/admin/plans/:planId.
func (h *PlanHandler) Update(c *gin.Context) {
	var req models.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	plan, err := h.planService.Update(c.Request.Context(), c.Param("planId"), req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// Delete handles DELETE /api/v1/admin/plans/:planId.
func (h *PlanHandler) Delete(c *gin.Context) {
	if err := h.planService.Delete(c.Request.Context(), c.Param("planId")); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Plan deleted"})
}

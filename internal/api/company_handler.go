package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"healthpanel-backend-go/internal/core"
	"healthpanel-backend-go/internal/models"
)

// CompanyHandler handles admin endpoints for company (tenant) records.
type CompanyHandler struct {
	companyService core.CompanyService
	logger         *zap.Logger
}

// NewCompanyHandler creates a new CompanyHandler.
func NewCompanyHandler(cs core.CompanyService, logger *zap.Logger) *CompanyHandler {
	return &CompanyHandler{companyService: cs, logger: logger}
}

// Create handles POST /api/v1/admin/companies.
func (h *CompanyHandler) Create(c *gin.Context) {
	var req models.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	company, err := h.companyService.Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, company)
}

// List handles GET /api/v1/admin/companies.
func (h *CompanyHandler) List(c *gin.Context) {
	companies, err := h.companyService.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	if companies == nil {
		companies = []*models.Company{}
	}
	c.JSON(http.StatusOK, companies)
}

// Get handles GET /api/v1/admin/companies/:companyId.
func (h *CompanyHandler) Get(c *gin.Context) {
	company, err := h.companyService.GetByID(c.Request.Context(), c.Param("companyId"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

// Update handles PATCH /api/v1/admin/companies/:companyId.
func (h *CompanyHandler) Update(c *gin.Context) {
	var req models.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	company, err := h.companyService.Update(c.Request.Context(), c.Param("companyId"), req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

// Delete handles DELETE /api/v1/admin/companies/:companyId.
// Deletion is refused while any user still references the company.
func (h *CompanyHandler) Delete(c *gin.Context) {
	if err := h.companyService.Delete(c.Request.Context(), c.Param("companyId")); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Company deleted"})
}

// GetProfile handles GET /api/v1/companies/:companyId (company-admin scope).
func (h *CompanyHandler) GetProfile(c *gin.Context) {
	company, err := h.companyService.GetByID(c.Request.Context(), c.Param("companyId"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

// UpdateProfile handles PATCH /api/v1/companies/:companyId (company-admin
// scope). Capacity and subscription linkage stay admin-only.
func (h *CompanyHandler) UpdateProfile(c *gin.Context) {
	var req models.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}
	req.UserCapacity = nil
	req.ActiveSubscriptionID = nil
	req.Status = nil

	company, err := h.companyService.Update(c.Request.Context(), c.Param("companyId"), req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

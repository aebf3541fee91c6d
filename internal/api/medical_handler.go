package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"healthpanel-backend-go/internal/core"
	"healthpanel-backend-go/internal/models"
)

// MedicalHandler handles medical sub-record endpoints for both the admin and
// the company scope.
type MedicalHandler struct {
	medicalService core.MedicalService
	logger         *zap.Logger
}

// NewMedicalHandler creates a new MedicalHandler.
func NewMedicalHandler(ms core.MedicalService, logger *zap.Logger) *MedicalHandler {
	return &MedicalHandler{medicalService: ms, logger: logger}
}

// Create handles POST /api/v1/admin/users/:userId/medical-records.
func (h *MedicalHandler) Create(c *gin.Context) {
	var req models.CreateMedicalRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	record, err := h.medicalService.Create(c.Request.Context(), c.Param("userId"), req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// List handles GET /api/v1/admin/users/:userId/medical-records.
func (h *MedicalHandler) List(c *gin.Context) {
	records, err := h.medicalService.ListByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	if records == nil {
		records = []*models.MedicalRecord{}
	}
	c.JSON(http.StatusOK, records)
}

// Get handles GET /api/v1/admin/users/:userId/medical-records/:recordId.
func (h *MedicalHandler) Get(c *gin.Context) {
	record, err := h.medicalService.GetByID(c.Request.Context(), c.Param("userId"), c.Param("recordId"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Update handles PATCH /api/v1/admin/users/:userId/medical-records/:recordId.
func (h *MedicalHandler) Update(c *gin.Context) {
	var req models.UpdateMedicalRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	record, err := h.medicalService.Update(c.Request.Context(), c.Param("userId"), c.Param("recordId"), req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Delete handles DELETE /api/v1/admin/users/:userId/medical-records/:recordId.
func (h *MedicalHandler) Delete(c *gin.Context) {
	if err := h.medicalService.Delete(c.Request.Context(), c.Param("userId"), c.Param("recordId")); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Medical record deleted"})
}

// CreateForCompanyUser handles POST /api/v1/companies/:companyId/users/:userId/medical-records.
// Tenant ownership of the user is re-verified before the write.
func (h *MedicalHandler) CreateForCompanyUser(c *gin.Context) {
	var req models.CreateMedicalRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	record, err := h.medicalService.CreateForCompanyUser(c.Request.Context(), c.Param("companyId"), c.Param("userId"), req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// ListForCompanyUser handles GET /api/v1/companies/:companyId/users/:userId/medical-records.
func (h *MedicalHandler) ListForCompanyUser(c *gin.Context) {
	records, err := h.medicalService.ListForCompanyUser(c.Request.Context(), c.Param("companyId"), c.Param("userId"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	if records == nil {
		records = []*models.MedicalRecord{}
	}
	c.JSON(http.StatusOK, records)
}

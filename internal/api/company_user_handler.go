package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"healthpanel-backend-go/internal/core"
	"healthpanel-backend-go/internal/models"
)

// CompanyUserHandler handles company-admin endpoints for tenant-scoped users.
// The company auth middleware has already matched the token to :companyId.
type CompanyUserHandler struct {
	companyService core.CompanyService
	logger         *zap.Logger
}

// NewCompanyUserHandler creates a new CompanyUserHandler.
func NewCompanyUserHandler(cs core.CompanyService, logger *zap.Logger) *CompanyUserHandler {
	return &CompanyUserHandler{companyService: cs, logger: logger}
}

// Create handles POST /api/v1/companies/:companyId/users.
// A full company (capacity reached) rejects with 400 and writes nothing.
func (h *CompanyUserHandler) Create(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	user, err := h.companyService.CreateUser(c.Request.Context(), c.Param("companyId"), req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// List handles GET /api/v1/companies/:companyId/users.
func (h *CompanyUserHandler) List(c *gin.Context) {
	users, err := h.companyService.ListUsers(c.Request.Context(), c.Param("companyId"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	if users == nil {
		users = []*models.User{}
	}
	c.JSON(http.StatusOK, users)
}

// Get handles GET /api/v1/companies/:companyId/users/:userId.
func (h *CompanyUserHandler) Get(c *gin.Context) {
	user, err := h.companyService.GetUser(c.Request.Context(), c.Param("companyId"), c.Param("userId"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Update handles PATCH /api/v1/companies/:companyId/users/:userId.
func (h *CompanyUserHandler) Update(c *gin.Context) {
	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	user, err := h.companyService.UpdateUser(c.Request.Context(), c.Param("companyId"), c.Param("userId"), req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Delete handles DELETE /api/v1/companies/:companyId/users/:userId.
func (h *CompanyUserHandler) Delete(c *gin.Context) {
	if err := h.companyService.DeleteUser(c.Request.Context(), c.Param("companyId"), c.Param("userId")); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "User deleted"})
}

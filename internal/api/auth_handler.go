package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"healthpanel-backend-go/internal/core"
	"healthpanel-backend-go/internal/models"
)

// AuthHandler handles the public company-admin login endpoint.
type AuthHandler struct {
	companyService core.CompanyService
	logger         *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(cs core.CompanyService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{companyService: cs, logger: logger}
}

// CompanyLogin handles POST /api/v1/companies/:companyId/auth/login.
// Credentials are compared against the stored company-admin username and
// password; success issues a company-scoped bearer token.
func (h *AuthHandler) CompanyLogin(c *gin.Context) {
	var req models.CompanyLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	token, company, err := h.companyService.Login(c.Request.Context(), c.Param("companyId"), req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		CompanyID: company.ID,
		Name:      company.Name,
	})
}

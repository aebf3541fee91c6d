package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"healthpanel-backend-go/internal/core"
)

// respondServiceError maps core-layer errors onto the API error taxonomy:
// 400 validation, 401 bad credentials, 403 cross-tenant, 404 missing,
// 500 everything else (generic message, detail only in logs).
func respondServiceError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, core.ErrUserNotFound),
		errors.Is(err, core.ErrCompanyNotFound),
		errors.Is(err, core.ErrPlanNotFound),
		errors.Is(err, core.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, core.ErrCrossTenant):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
	case errors.Is(err, core.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid credentials"})
	case errors.Is(err, core.ErrCapacityExceeded),
		errors.Is(err, core.ErrUsernameTaken),
		errors.Is(err, core.ErrCompanyHasUsers),
		errors.Is(err, core.ErrInvalidStatus),
		errors.Is(err, core.ErrNoBillingCustomer):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		logger.Error("Unhandled service error",
			zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}

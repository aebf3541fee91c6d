package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"healthpanel-backend-go/internal/core"
)

// CompanyAuthMiddleware provides Gin middleware for company-tenant
// authentication. Tokens are HS256 JWTs issued at company login.
type CompanyAuthMiddleware struct {
	secret string
	logger *zap.Logger
}

// NewCompanyAuthMiddleware creates a new CompanyAuthMiddleware instance.
func NewCompanyAuthMiddleware(secret string, logger *zap.Logger) *CompanyAuthMiddleware {
	if secret == "" {
		panic("company token secret is not configured for CompanyAuthMiddleware")
	}
	return &CompanyAuthMiddleware{secret: secret, logger: logger}
}

// RequireCompanyAdmin verifies the bearer token, requires the companyAdmin
// role, and requires the token's company to match the :companyId path
// parameter. A token valid for one tenant is never accepted for another,
// regardless of role. All failures return the same generic 401.
func (m *CompanyAuthMiddleware) RequireCompanyAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired authentication token"})
			return
		}

		claims, err := core.ParseCompanyToken(tokenString, m.secret)
		if err != nil {
			m.logger.Warn("Company token verification failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired authentication token"})
			return
		}

		if claims.Role != core.RoleCompanyAdmin {
			m.logger.Warn("Company token with wrong role rejected", zap.String("role", claims.Role))
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired authentication token"})
			return
		}

		pathCompanyID := c.Param("companyId")
		if pathCompanyID == "" || claims.CompanyID != pathCompanyID {
			m.logger.Warn("Cross-tenant company token rejected",
				zap.String("tokenCompanyId", claims.CompanyID),
				zap.String("pathCompanyId", pathCompanyID))
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired authentication token"})
			return
		}

		c.Set(ContextKeyCompanyID, claims.CompanyID)
		c.Next()
	}
}

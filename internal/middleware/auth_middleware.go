package middleware

import (
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is a local definition for sending standardized error messages.
// It mirrors the one in internal/api/dto_models.go to avoid import cycles.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Gin context keys populated by the auth middlewares.
const (
	ContextKeyAdminUID  = "adminUID"
	ContextKeyCompanyID = "companyID"
)

// AdminAuthMiddleware provides Gin middleware for global-admin authentication.
// It verifies a Firebase ID token and requires the "admin" custom claim.
type AdminAuthMiddleware struct {
	firebaseAuthClient *auth.Client
	logger             *zap.Logger
}

// NewAdminAuthMiddleware creates a new AdminAuthMiddleware instance.
// It panics if the firebaseAuthClient is nil, as this is a critical setup dependency.
func NewAdminAuthMiddleware(fbAuthClient *auth.Client, logger *zap.Logger) *AdminAuthMiddleware {
	if fbAuthClient == nil {
		panic("Firebase Auth client is not initialized for AdminAuthMiddleware")
	}
	return &AdminAuthMiddleware{firebaseAuthClient: fbAuthClient, logger: logger}
}

// RequireAdmin verifies the bearer token and the "admin" custom claim.
// All failure modes return the same generic 401: callers must not learn
// whether the token, the claim, or the account was the problem.
func (m *AdminAuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		idToken, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired authentication token"})
			return
		}

		token, err := m.firebaseAuthClient.VerifyIDToken(c.Request.Context(), idToken)
		if err != nil {
			m.logger.Warn("Admin token verification failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired authentication token"})
			return
		}

		if isAdmin, _ := token.Claims["admin"].(bool); !isAdmin {
			m.logger.Warn("Token without admin claim rejected", zap.String("uid", token.UID))
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired authentication token"})
			return
		}

		c.Set(ContextKeyAdminUID, token.UID)
		c.Next()
	}
}

// bearerToken extracts the token from an "Authorization: Bearer x" header.
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

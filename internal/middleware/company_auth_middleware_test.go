package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"healthpanel-backend-go/internal/core"
)

const testSecret = "company-token-test-secret"

func companyTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mw := NewCompanyAuthMiddleware(testSecret, zap.NewNop())
	router := gin.New()
	router.GET("/companies/:companyId/profile", mw.RequireCompanyAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"companyId": c.GetString(ContextKeyCompanyID)})
	})
	return router
}

func doCompanyRequest(router *gin.Engine, companyID, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/companies/"+companyID+"/profile", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// signTestToken builds tokens the issuer would never produce: wrong role,
// wrong key, expired.
func signTestToken(t *testing.T, companyID, role, secret string, expiresAt time.Time) string {
	t.Helper()
	claims := core.CompanyClaims{
		CompanyID: companyID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   companyID,
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestRequireCompanyAdminValidToken(t *testing.T) {
	router := companyTestRouter(t)

	token, err := core.IssueCompanyToken("company-1", testSecret)
	require.NoError(t, err)

	w := doCompanyRequest(router, "company-1", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"companyId":"company-1"`)
}

func TestRequireCompanyAdminCrossTenantToken(t *testing.T) {
	router := companyTestRouter(t)

	// Valid token, valid role, but issued for a different company.
	token, err := core.IssueCompanyToken("company-1", testSecret)
	require.NoError(t, err)

	w := doCompanyRequest(router, "company-2", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireCompanyAdminWrongRole(t *testing.T) {
	router := companyTestRouter(t)

	token := signTestToken(t, "company-1", "companyViewer", testSecret, time.Now().Add(time.Hour))

	w := doCompanyRequest(router, "company-1", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireCompanyAdminBadSignature(t *testing.T) {
	router := companyTestRouter(t)

	token := signTestToken(t, "company-1", core.RoleCompanyAdmin, "some-other-secret", time.Now().Add(time.Hour))

	w := doCompanyRequest(router, "company-1", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireCompanyAdminExpiredToken(t *testing.T) {
	router := companyTestRouter(t)

	token := signTestToken(t, "company-1", core.RoleCompanyAdmin, testSecret, time.Now().Add(-time.Hour))

	w := doCompanyRequest(router, "company-1", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireCompanyAdminMissingToken(t *testing.T) {
	router := companyTestRouter(t)

	w := doCompanyRequest(router, "company-1", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

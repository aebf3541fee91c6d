package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleCompanyAdmin is the only role company tokens are issued with.
const RoleCompanyAdmin = "companyAdmin"

// companyTokenTTL bounds how long a company-admin session stays valid.
const companyTokenTTL = 24 * time.Hour

// ErrInvalidCompanyToken is returned for any token that fails verification.
// The cause (signature, expiry, role, tenant) is deliberately not surfaced.
var ErrInvalidCompanyToken = errors.New("invalid company token")

// CompanyClaims are the claims embedded in a company-admin bearer token.
type CompanyClaims struct {
	CompanyID string `json:"companyId"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// IssueCompanyToken signs an HS256 token scoping the bearer to one company.
func IssueCompanyToken(companyID, secret string) (string, error) {
	if secret == "" {
		return "", errors.New("company token secret is not configured")
	}
	now := time.Now()
	claims := CompanyClaims{
		CompanyID: companyID,
		Role:      RoleCompanyAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   companyID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(companyTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign company token: %w", err)
	}
	return signed, nil
}

// ParseCompanyToken verifies the signature and returns the embedded claims.
// It does not check the tenant: the middleware compares CompanyID against the
// request path, since the token alone cannot know which company is addressed.
func ParseCompanyToken(tokenString, secret string) (*CompanyClaims, error) {
	claims := &CompanyClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidCompanyToken
	}
	return claims, nil
}

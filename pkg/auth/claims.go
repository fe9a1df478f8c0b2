package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// BackendClaims are the claims the storefront backend puts in its tokens.
// Only the registered claims are relied upon; role is informational.
type BackendClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenInfo is what the client can learn from a bearer token without the
// signing key.
type TokenInfo struct {
	Subject   string
	Role      string
	IssuedAt  *time.Time
	ExpiresAt *time.Time
}

// Expired reports whether the token carries an exp claim in the past.
func (t TokenInfo) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && !now.Before(*t.ExpiresAt)
}

package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrOpaqueToken is returned for bearer tokens that are not JWTs.
var ErrOpaqueToken = errors.New("token is not a JWT")

// InspectToken decodes the claims of a JWT issued by the backend without
// verifying its signature. The client never holds the signing key, so the
// result is advisory only: the backend stays the authority on validity.
func InspectToken(tokenString string) (*TokenInfo, error) {
	tokenString = strings.TrimSpace(tokenString)
	if strings.Count(tokenString, ".") != 2 {
		return nil, ErrOpaqueToken
	}

	claims := &BackendClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpaqueToken, err)
	}

	info := &TokenInfo{
		Subject: claims.Subject,
		Role:    claims.Role,
	}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		info.ExpiresAt = &exp
	}
	if claims.IssuedAt != nil {
		iat := claims.IssuedAt.Time
		info.IssuedAt = &iat
	}
	return info, nil
}

// ExpiresAt returns the expiry of a JWT, or nil for opaque tokens and tokens
// without an exp claim.
func ExpiresAt(tokenString string) *time.Time {
	info, err := InspectToken(tokenString)
	if err != nil {
		return nil
	}
	return info.ExpiresAt
}

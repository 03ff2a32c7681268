// Package auth holds access-token helpers: normalisation and local
// (unverified) introspection of JWT claims.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrOpaqueToken is returned when a token is not a decodable JWT.
var ErrOpaqueToken = errors.New("opaque token")

// StripBearer trims whitespace and a leading "Bearer " scheme.
func StripBearer(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}

// Claims decodes the payload of a JWT without verifying its signature.
// The server verifies; we only read display data.
func Claims(token string) (jwt.MapClaims, error) {
	token = StripBearer(token)
	if strings.Count(token, ".") != 2 {
		return nil, ErrOpaqueToken
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpaqueToken, err)
	}
	return claims, nil
}

// DisplayName picks the best human name from JWT claims:
// name, then preferred_username, then email, then sub.
func DisplayName(token string) string {
	claims, err := Claims(token)
	if err != nil {
		return ""
	}
	for _, k := range []string{"name", "preferred_username", "email", "sub"} {
		if v, ok := claims[k].(string); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	if meta, ok := claims["user_metadata"].(map[string]any); ok {
		if v, ok := meta["name"].(string); ok {
			return v
		}
	}
	return ""
}

// Email returns the email claim if present.
func Email(token string) string {
	claims, err := Claims(token)
	if err != nil {
		return ""
	}
	v, _ := claims["email"].(string)
	return v
}

// Expiry returns the exp claim, or the zero time when absent.
func Expiry(token string) time.Time {
	claims, err := Claims(token)
	if err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// PrettyClaims renders the claims as indented JSON for `auth whoami`.
func PrettyClaims(token string) (string, error) {
	claims, err := Claims(token)
	if err != nil {
		return "", err
	}
	b, err := json.MarshalIndent(claims, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal claims: %w", err)
	}
	return string(b), nil
}

// Preview shortens a token for display.
func Preview(token string) string {
	if len(token) <= 12 {
		return token
	}
	return token[:6] + "…" + token[len(token)-4:]
}

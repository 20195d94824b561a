package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ParseClaims returns the claims of a JWT without verifying its signature.
// The server verifies; the client only needs exp and the user id.
func ParseClaims(token string) (jwt.MapClaims, error) {
	parsed, _, err := new(jwt.Parser).ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT: %w", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("failed to parse JWT claims")
	}
	return claims, nil
}

// ValidateToken fails when the token cannot be parsed or has expired.
// Tokens without an exp claim are accepted.
func ValidateToken(token string) error {
	claims, err := ParseClaims(token)
	if err != nil {
		return err
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return fmt.Errorf("invalid exp claim in JWT: %w", err)
	}
	if exp != nil && time.Now().After(exp.Time) {
		return fmt.Errorf("JWT expired at %s", exp.Time.UTC().Format(time.RFC3339))
	}
	return nil
}

// UserID returns the user id carried by an account JWT, or "" if absent.
func UserID(token string) string {
	claims, err := ParseClaims(token)
	if err != nil {
		return ""
	}
	if id, ok := claims["userId"].(string); ok {
		return id
	}
	sub, _ := claims.GetSubject()
	return sub
}

package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrMalformedToken = errors.New("session: malformed token")

// TokenExpiry reads the exp claim without verifying the signature. A token
// without exp yields the zero time. This is a local usability check only; the
// server decides whether a token is accepted.
func TokenExpiry(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, ErrMalformedToken
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, nil
	}
	return claims.ExpiresAt.Time, nil
}

// TokenExpired reports whether raw is unusable at now. Malformed tokens count
// as expired; tokens without exp never expire.
func TokenExpired(raw string, now time.Time) bool {
	exp, err := TokenExpiry(raw)
	if err != nil {
		return true
	}
	if exp.IsZero() {
		return false
	}
	return exp.Before(now)
}

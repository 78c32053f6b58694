package token

// Package token inspects bearer tokens locally without verifying
// signatures. The gateway only needs the embedded expiry claim to
// decide staleness without a network round trip; verification is the
// backend's job.

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var parser = jwt.NewParser()

// ExpiresAt returns the expiry claim of the token, or the zero time
// when the token cannot be decoded or carries no expiry.
func ExpiresAt(raw string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// Expired reports whether the token's expiry claim is at or before
// now. Undecodable tokens are treated as already expired.
func Expired(raw string, now time.Time) bool {
	exp := ExpiresAt(raw)
	return exp.IsZero() || !exp.After(now)
}

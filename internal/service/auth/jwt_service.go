// Package auth issues and checks the bearer tokens used for optional
// session authentication.
package auth

import (
	"context"
	"time"
)

// JWTService defines operations for managing JWT session tokens.
type JWTService interface {
	// GenerateToken creates a signed token for subject.
	// Returns the token string and its expiry, or an error if signing fails.
	GenerateToken(ctx context.Context, subject string) (string, time.Time, error)

	// ValidateToken validates the provided token string and extracts the claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid or ErrInvalidToken on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the validated content of a session token.
type Claims struct {
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}

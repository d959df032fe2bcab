package auth

import "errors"

// Errors returned while issuing or checking session tokens. The auth
// middleware maps each of them to 401.
var (
	// ErrInvalidToken covers malformed or wrongly signed tokens and tokens
	// that are not session tokens.
	ErrInvalidToken = errors.New("invalid session token")

	// ErrExpiredToken means the session outlived auth.token_lifetime_minutes.
	ErrExpiredToken = errors.New("session token has expired")

	// ErrTokenNotYetValid means the nbf claim is still ahead of the clock,
	// beyond the allowed skew.
	ErrTokenNotYetValid = errors.New("session token not yet valid")

	// ErrMissingToken means a protected route was called without a bearer token.
	ErrMissingToken = errors.New("session token is missing")
)

package api

import "time"

// Common request/response structures

// CountResponse is the body of GET /items/count.
type CountResponse struct {
	Count int `json:"count"`
}

// SessionRequest defines the payload for the session endpoint.
type SessionRequest struct {
	Username string `json:"username" validate:"required,max=64"`
}

// SessionResponse defines the successful response of the session endpoint.
type SessionResponse struct {
	// Token is the bearer token for the Authorization header
	Token string `json:"token"`

	ExpiresAt time.Time `json:"expiresAt"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

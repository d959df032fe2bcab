package api

import (
	"net/http"

	"github.com/strefethen/crud-example/internal/api/shared"
	"github.com/strefethen/crud-example/internal/service/auth"
)

// SessionHandler issues bearer tokens for the optional session flow.
type SessionHandler struct {
	jwtService auth.JWTService
}

// NewSessionHandler creates a new SessionHandler with the given dependencies.
func NewSessionHandler(jwtService auth.JWTService) *SessionHandler {
	return &SessionHandler{jwtService: jwtService}
}

// CreateSession handles POST /sessions. Any well-formed username gets a token.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	token, expiresAt, err := h.jwtService.GenerateToken(r.Context(), req.Username)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to create session", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, SessionResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC(),
	})
}

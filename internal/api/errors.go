package api

import (
	"errors"
	"net/http"

	"github.com/strefethen/crud-example/internal/api/shared"
	"github.com/strefethen/crud-example/internal/domain"
	"github.com/strefethen/crud-example/internal/service/auth"
)

const genericErrorMessage = "An unexpected error occurred"

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a caller-facing message for err. Validation and
// lookup failures carry messages built from caller input and are returned
// as is; anything unrecognized collapses to a generic message.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return genericErrorMessage
	}

	var verr *domain.ValidationError
	var nferr *domain.NotFoundError
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.As(err, &nferr):
		return nferr.Error()
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrMissingToken):
		return "Authorization header required"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "Invalid request parameters"
	case errors.Is(err, domain.ErrNotFound):
		return "Resource not found"
	default:
		return genericErrorMessage
	}
}

// validationDetails returns the per-field reasons of a validation error, if any.
func validationDetails(err error) map[string]string {
	var verr *domain.ValidationError
	if errors.As(err, &verr) && len(verr.Details) > 0 {
		return verr.Details
	}
	return nil
}

// HandleAPIError writes the error response for err: status from
// MapErrorToStatusCode, message from GetSafeErrorMessage and field details
// for validation failures. The full error is logged after redaction.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	opts := []shared.ResponseOption{}
	if details := validationDetails(err); details != nil {
		opts = append(opts, shared.WithDetails(details))
	}
	if status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err, opts...)
}

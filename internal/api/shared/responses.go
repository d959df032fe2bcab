package shared

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/strefethen/crud-example/internal/platform/logger"
	"github.com/strefethen/crud-example/internal/redact"
)

// ErrorBody is the payload nested under "error" in every error response.
type ErrorBody struct {
	StatusCode int               `json:"statusCode"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	TraceID    string            `json:"traceId,omitempty"`
}

// ErrorResponse defines the standard error response structure.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ResponseOption defines a function to customize response behavior.
type ResponseOption func(*responseOptions)

type responseOptions struct {
	elevateLogLevel bool
	details         map[string]string
}

// WithElevatedLogLevel returns a ResponseOption that raises 4xx errors to WARN level
// instead of the default DEBUG level. Use for operational issues like
// repeated auth failures.
func WithElevatedLogLevel() ResponseOption {
	return func(opts *responseOptions) {
		opts.elevateLogLevel = true
	}
}

// WithDetails attaches per-field reasons to the error body.
func WithDetails(details map[string]string) ResponseOption {
	return func(opts *responseOptions) {
		opts.details = details
	}
}

// RespondWithJSON writes a JSON response with the given status code and data.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode JSON response",
			"error", redact.Error(err))
	}
}

// RespondWithError writes a JSON error response with the given status code and message.
// The trace ID from the request context is included when present.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, message string, opts ...ResponseOption) {
	responseOpts := applyOptions(opts)
	traceID := GetTraceID(r.Context())

	logger.FromContext(r.Context()).Debug("sending error response",
		"status_code", status,
		"message", message,
		"path", r.URL.Path,
		"method", r.Method)

	RespondWithJSON(w, r, status, newErrorResponse(status, message, traceID, responseOpts.details))
}

// RespondWithErrorAndLog writes a JSON error response and also logs the detailed error.
// Only userMessage reaches the client; err is logged after redaction.
//
// Log level strategy:
// - 5xx errors: Always logged at ERROR level
// - 429 Too Many Requests: Logged at WARN level
// - 4xx errors: DEBUG, or WARN with WithElevatedLogLevel
func RespondWithErrorAndLog(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	userMessage string,
	err error,
	opts ...ResponseOption,
) {
	responseOpts := applyOptions(opts)
	traceID := GetTraceID(r.Context())

	logAttrs := []slog.Attr{
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", status),
		slog.String("user_message", userMessage),
	}
	if err != nil {
		logAttrs = append(logAttrs,
			slog.String("error", redact.Error(err)),
			slog.String("error_type", fmt.Sprintf("%T", err)))
	}

	logLevel := slog.LevelDebug
	switch {
	case status >= http.StatusInternalServerError:
		logLevel = slog.LevelError
	case status == http.StatusTooManyRequests:
		logLevel = slog.LevelWarn
	case responseOpts.elevateLogLevel && status >= http.StatusBadRequest:
		logLevel = slog.LevelWarn
	}

	logger.FromContext(r.Context()).LogAttrs(r.Context(), logLevel, "API error response", logAttrs...)

	RespondWithJSON(w, r, status, newErrorResponse(status, userMessage, traceID, responseOpts.details))
}

func applyOptions(opts []ResponseOption) responseOptions {
	var o responseOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func newErrorResponse(status int, message, traceID string, details map[string]string) ErrorResponse {
	return ErrorResponse{Error: ErrorBody{
		StatusCode: status,
		Message:    message,
		Details:    details,
		TraceID:    traceID,
	}}
}

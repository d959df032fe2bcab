package shared

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"log/slog"
	"time"
)

// Key type for context values
type ContextKey string

// Context keys for various values
const (
	// SubjectContextKey holds the session subject of an authenticated request.
	SubjectContextKey ContextKey = "subject"

	// TraceIDKey is the key for the trace ID in the request context
	TraceIDKey ContextKey = "traceID"

	// TraceIDLength is the number of bytes used to generate the trace ID
	TraceIDLength = 16 // 32 hex characters
)

// SetTraceID adds a freshly generated trace ID to the context.
func SetTraceID(ctx context.Context) context.Context {
	return WithTraceID(ctx, generateTraceID())
}

// WithTraceID stores an existing trace ID, such as one propagated by an
// upstream proxy.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from the context.
// If no trace ID exists, it returns an empty string.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// WithSubject stores the authenticated session subject.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, SubjectContextKey, subject)
}

// GetSubject returns the session subject, if the request was authenticated.
func GetSubject(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(SubjectContextKey).(string)
	return subject, ok && subject != ""
}

// generateTraceID creates a random 32-character hex trace ID. When crypto/rand
// fails it falls back to a time-based value, never a static one.
func generateTraceID() string {
	b := make([]byte, TraceIDLength)
	n, err := rand.Read(b)
	if err != nil || n != TraceIDLength {
		slog.Error("failed to generate secure random trace ID",
			"error", err,
			"bytes_read", n,
			"fallback", "time-based generation")
		return generateFallbackTraceID()
	}

	return hex.EncodeToString(b)
}

func generateFallbackTraceID() string {
	id := make([]byte, TraceIDLength)
	now := time.Now()
	binary.BigEndian.PutUint64(id[:8], uint64(now.UnixNano()))
	binary.BigEndian.PutUint32(id[8:12], uint32(now.Nanosecond()))
	binary.BigEndian.PutUint32(id[12:16], uint32(now.Unix()))
	return hex.EncodeToString(id)
}

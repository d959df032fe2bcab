package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/strefethen/crud-example/internal/api/shared"
	"github.com/strefethen/crud-example/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceMiddleware(t *testing.T) {
	t.Run("generates trace id and logs completion", func(t *testing.T) {
		buf, log := logger.NewTestLogger(t)

		var traceID, requestID string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID = shared.GetTraceID(r.Context())
			requestID = logger.RequestIDFromContext(r.Context())
			logger.FromContext(r.Context()).Info("inside handler")
			w.WriteHeader(http.StatusTeapot)
		})

		rr := httptest.NewRecorder()
		NewTraceMiddleware(log)(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/items", nil))

		assert.Equal(t, http.StatusTeapot, rr.Code)
		assert.Len(t, traceID, 32)
		assert.Equal(t, traceID, requestID)

		entries, err := buf.GetLogEntries()
		require.NoError(t, err)
		var sawHandler, sawCompleted bool
		for _, e := range entries {
			assert.Equal(t, traceID, e["trace_id"], "every line carries the trace id")
			switch e["msg"] {
			case "inside handler":
				sawHandler = true
			case "request completed":
				sawCompleted = true
				assert.Equal(t, float64(http.StatusTeapot), e["status"])
			}
		}
		assert.True(t, sawHandler)
		assert.True(t, sawCompleted)
	})

	t.Run("reuses chi request id", func(t *testing.T) {
		_, log := logger.NewTestLogger(t)

		var traceID string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID = shared.GetTraceID(r.Context())
		})

		handler := chimw.RequestID(NewTraceMiddleware(log)(next))
		req := httptest.NewRequest(http.MethodGet, "/items", nil)
		req.Header.Set(chimw.RequestIDHeader, "from-proxy")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "from-proxy", traceID)
	})
}

package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/strefethen/crud-example/internal/api/shared"
	"github.com/strefethen/crud-example/internal/platform/logger"
)

// NewTraceMiddleware adds a trace ID and a request-scoped logger to the
// request context, then logs the completed request. The chi request id is
// reused as trace ID when middleware.RequestID ran earlier in the chain.
// This middleware should be applied early so every handler sees the trace ID.
func NewTraceMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if reqID := chimw.GetReqID(ctx); reqID != "" {
				ctx = shared.WithTraceID(ctx, reqID)
			} else {
				ctx = shared.SetTraceID(ctx)
			}
			traceID := shared.GetTraceID(ctx)

			log := base.With(slog.String("trace_id", traceID))
			ctx = logger.WithRequestID(logger.WithLogger(ctx, log), traceID)
			log = logger.FromContext(ctx)

			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.Info("request completed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)))
		})
	}
}

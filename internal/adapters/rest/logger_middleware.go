package rest

import (
	"net/http"
	"time"

	"findar-backend/internal/contextkeys"
	"findar-backend/internal/core/port"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// LoggerMiddleware puts a request-scoped logger and trace id into the context
// and writes one access log line per request. A malformed X-Trace-ID is replaced.
func LoggerMiddleware(logger port.LoggerPort) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get("X-Trace-ID")
			if _, err := uuid.Parse(traceID); err != nil {
				traceID = uuid.New().String()
			}

			reqLogger := logger.WithFields(port.Fields{"trace_id": traceID})
			accessLogger := reqLogger.WithFields(port.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
				"remote": r.RemoteAddr,
			})

			ctx := contextkeys.ContextWithTraceID(contextkeys.ContextWithLogger(r.Context(), reqLogger), traceID)

			rw := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			rw.Header().Set("X-Trace-ID", traceID)
			began := time.Now()

			next.ServeHTTP(rw, r.WithContext(ctx))

			fields := port.Fields{
				"status":      rw.Status(),
				"bytes":       rw.BytesWritten(),
				"duration_ms": time.Since(began).Milliseconds(),
			}
			if rw.Status() >= http.StatusInternalServerError {
				accessLogger.Warn("Request failed", fields)
				return
			}
			accessLogger.Info("Request served", fields)
		})
	}
}

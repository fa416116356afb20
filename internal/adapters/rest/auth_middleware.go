package rest

import (
	"context"
	"crypto/subtle"
	"net/http"

	"findar-backend/internal/contextkeys"
	"findar-backend/internal/core/port"
	"findar-backend/internal/core/port/usecases_port"

	"github.com/google/uuid"
)

type contextKey string

const userIDKey = contextKey("userID")

// AuthMiddleware trusts the X-User-ID header set by the API gateway after it validated the JWT.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userIDStr := r.Header.Get("X-User-ID")
		if userIDStr == "" {
			WriteJSONError(w, http.StatusUnauthorized, "Authentication error: User ID header is missing")
			return
		}

		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			WriteJSONError(w, http.StatusUnauthorized, "Authentication error: Invalid User ID format")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		ctx = contextkeys.ContextWithLogger(ctx, contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"user_id": userID}))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey).(uuid.UUID)
	return userID, ok
}

// ActivityMiddleware records that the authenticated user was active.
// A failure is logged and never fails the request.
func ActivityMiddleware(trackUC usecases_port.TrackActivityUseCasePort) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, ok := userIDFromContext(r.Context()); ok {
				if err := trackUC.Execute(r.Context(), userID); err != nil {
					contextkeys.LoggerFromContext(r.Context()).Warn("Failed to record activity", port.Fields{"error": err.Error()})
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ServiceTokenMiddleware guards internal endpoints. With no configured token they are closed.
func ServiceTokenMiddleware(token string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				WriteJSONError(w, http.StatusForbidden, "Internal endpoints are disabled")
				return
			}
			provided := r.Header.Get("X-Service-Token")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
				WriteJSONError(w, http.StatusUnauthorized, "Invalid service token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	"teacher-gallery-backend/internal/models"
	"teacher-gallery-backend/internal/session"
)

type contextKey string

const sessionKey contextKey = "session"

// AuthMiddleware guards admin routes: the request must carry a bearer token
// for a session the gate still considers valid.
func AuthMiddleware(gate *session.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			sess, err := gate.Restore(r.Context(), parts[1])
			if err != nil || sess == nil {
				respondError(w, "Invalid or expired session", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession extracts the authenticated session from context
func GetSession(ctx context.Context) *models.Session {
	sess, ok := ctx.Value(sessionKey).(*models.Session)
	if !ok {
		return nil
	}
	return sess
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write([]byte(`{"error":"` + message + `"}`))
}

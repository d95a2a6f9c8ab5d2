package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ctoon/ctoon-api/internal/crypto"
)

type contextKey string

const userIDKey contextKey = "userID"

// Auth returns middleware that validates a Bearer token from the
// Authorization header against the given issuer. Subject extraction
// implies full validation, so an expired token never passes.
func Auth(issuer *crypto.TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, http.StatusUnauthorized, "Missing authorization header")
				return
			}

			token, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || token == "" {
				writeJSONError(w, http.StatusUnauthorized, "Invalid authorization format")
				return
			}

			userID, ok := issuer.Subject(token)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext extracts the authenticated user ID from the request context.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "message": msg})
}

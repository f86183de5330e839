package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the values we store.
type contextKey string

const userIDKey contextKey = "userID"

// denyJSON writes an error response in the same {"error","message"} shape the
// handlers use. http.Error would label the body text/plain.
func denyJSON(w http.ResponseWriter, status int, errType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   errType,
		"message": message,
	})
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. Returns ("", false) when the header is absent or not of that shape.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// RequireAuth enforces a valid session token on protected routes.
//
// It reads the Authorization header, validates the bearer token, and stores
// the userID in the request context. Missing or malformed headers and invalid
// tokens both stop the chain with 401; signature verification is never
// attempted when the header shape is wrong.
//
// When the server runs without a configured signing secret, tokens is nil and
// every protected request fails with 500.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokens == nil {
				denyJSON(w, http.StatusInternalServerError, "configuration_error", "server secret is not configured")
				return
			}

			raw, ok := BearerToken(r.Header.Get("Authorization"))
			if !ok {
				denyJSON(w, http.StatusUnauthorized, "unauthorized", "bearer token required")
				return
			}

			userID, _, err := tokens.Validate(raw)
			if err != nil {
				denyJSON(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext retrieves the authenticated user's ID from the request
// context. Returns ("", false) if the request carried no valid session.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/skycastlabs/skycast-api/internal/api/response"
	"github.com/skycastlabs/skycast-api/internal/security"
)

type contextKey string

const UserIDKey contextKey = "userID"

// AuthMiddleware handles bearer-token authentication.
type AuthMiddleware struct {
	tokens *security.TokenManager
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(tokens *security.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate validates the bearer token and stashes the user ID in
// the request context. Missing, malformed, invalid and expired tokens
// all end the request with 401.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Unauthorized(w, "invalid authorization header format")
			return
		}

		userID, err := m.tokens.Verify(parts[1])
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID gets the authenticated user ID from context.
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	"cambistas-backend/internal/auth"
	"cambistas-backend/pkg/utils"
)

type contextKey string

const UsernameKey contextKey = "username"

// UserLookup reports whether a username still has credentials
type UserLookup interface {
	Exists(ctx context.Context, username string) bool
}

type AuthMiddleware struct {
	jwtManager *auth.JWTManager
	users      UserLookup
}

func NewAuthMiddleware(jwtManager *auth.JWTManager, users UserLookup) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager, users: users}
}

// Authenticate validates the bearer token. Browsers cannot set headers on a
// websocket handshake, so a token query parameter is accepted as well.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			utils.Error(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			utils.Error(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		// Removing a credential revokes its tokens immediately
		if m.users != nil && !m.users.Exists(r.Context(), claims.Username) {
			utils.Error(w, http.StatusUnauthorized, "User not found")
			return
		}

		noteUser(r.Context(), claims.Username)
		ctx := context.WithValue(r.Context(), UsernameKey, claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token, true
	}
	return "", false
}

// UsernameFromContext extracts the authenticated username
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok
}

// Package middleware provides HTTP middlewares for authentication, CORS,
// rate limiting and request logging.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type ctxKey string

const userKey ctxKey = "user"

// Authenticator resolves a bearer token to a user id.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// AdminChecker reports whether a user may use admin endpoints.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// SessionAuth rejects requests without a valid "Authorization: Bearer" token.
//
// On success the user id is stored in the request context, so it can be used
// downstream via GetUserIDFromContext. Rejections are logged with their cause;
// the client only sees "invalid session".
func SessionAuth(auth Authenticator, log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			userID, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				log.Info("session rejected", zap.String("path", r.URL.Path), zap.Error(err))
				http.Error(w, "invalid session", http.StatusUnauthorized)
				return
			}
			ctx := WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin must run after SessionAuth.
func RequireAdmin(checker AdminChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := GetUserIDFromContext(r.Context())
			if userID == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			ok, err := checker.IsAdmin(r.Context(), userID)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if !ok {
				http.Error(w, "admin access required", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BearerToken extracts the token from the Authorization header. EventSource
// clients cannot set headers, so an access_token query parameter is accepted too.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return r.URL.Query().Get("access_token")
}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey, userID)
}

// GetUserIDFromContext extracts the authenticated user ID
// from the request context. Returns an empty string if not found.
func GetUserIDFromContext(ctx context.Context) string {
	val := ctx.Value(userKey)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}

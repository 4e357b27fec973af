package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/AnshRaj112/nutrameter-backend/internal/services"
)

type ctxKey int

const userIDKey ctxKey = iota

const unauthorizedMessage = "Unauthorized"

// TokenParser verifies a bearer token.
type TokenParser interface {
	Parse(token string) (*services.Claims, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// token's user id in the request context.
func RequireAuth(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r.Header.Get("Authorization"))
			if token == "" {
				writeError(w, http.StatusUnauthorized, unauthorizedMessage)
				return
			}
			claims, err := tokens.Parse(token)
			if err != nil || claims.UserID == "" {
				writeError(w, http.StatusUnauthorized, unauthorizedMessage)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.UserID)))
		})
	}
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID returns the authenticated user id set by RequireAuth.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

func extractBearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ruizhu/shopapi/pkg/auth"
	"github.com/ruizhu/shopapi/pkg/logger"
	"github.com/ruizhu/shopapi/pkg/response"
)

type userKey struct{}

// TokenValidator is satisfied by *auth.Issuer.
type TokenValidator interface {
	Validate(raw string) (*auth.Claims, error)
}

// Auth rejects requests without a valid bearer token and stores the
// authenticated user's ID in the request context.
func Auth(v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || strings.TrimSpace(token) == "" {
				response.Unauthorized(w, "Missing bearer token")
				return
			}

			claims, err := v.Validate(strings.TrimSpace(token))
			if err != nil {
				logger.WithCtx(r.Context()).Debug("token rejected", "error", err)
				response.Unauthorized(w, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), userKey{}, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the authenticated user's ID set by Auth.
func UserID(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(userKey{}).(uint)
	return id, ok && id != 0
}

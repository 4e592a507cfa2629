package middleware

import (
	"context"
	"net/http"
	"strings"

	jwtinfra "github.com/glam-looks-api/internal/infrastructure/jwt"
)

type contextKey string

const (
	claimsKey   contextKey = "claims"
	enforcedKey contextKey = "identity_enforced"
)

// Auth returns middleware that requires a valid Bearer JWT and injects its claims into context.
func Auth(provider *jwtinfra.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}
			claims, err := provider.Verify(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// OptionalAuth verifies a Bearer JWT when one is sent and passes anonymous
// requests through, marked so handlers know a caller may not name a user
// without a token. A bad token is still rejected.
func OptionalAuth(provider *jwtinfra.Provider) func(http.Handler) http.Handler {
	required := Auth(provider)
	return func(next http.Handler) http.Handler {
		withClaims := required(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), enforcedKey, true)))
				return
			}
			withClaims.ServeHTTP(w, r)
		})
	}
}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *jwtinfra.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext extracts JWT claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*jwtinfra.Claims)
	return c, ok
}

// IdentityEnforced reports whether the request passed through OptionalAuth
// anonymously, i.e. JWT is configured but no token was sent.
func IdentityEnforced(ctx context.Context) bool {
	enforced, _ := ctx.Value(enforcedKey).(bool)
	return enforced
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/yaojiejia/portfolioAnalysis/internal/api/response"
	"github.com/yaojiejia/portfolioAnalysis/internal/service"
)

type contextKey string

const claimsKey contextKey = "claims"

// TokenParser verifies access tokens.
type TokenParser interface {
	ParseAccessToken(token string) (*service.AccessClaims, error)
}

// Auth returns a middleware that requires an "Authorization: Bearer <token>" header.
// The header must have exactly two space-separated parts. Surrounding double
// quotes on the token are stripped, since browser clients keep it JSON-encoded.
// On success the token claims are stored in the request context.
func Auth(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				response.RespondError(w, http.StatusUnauthorized, "Authentication failed", "No token provided")
				return
			}

			parts := strings.Split(header, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				response.RespondError(w, http.StatusUnauthorized, "Authentication failed", "Invalid token format")
				return
			}

			token := strings.Trim(parts[1], `"`)
			claims, err := parser.ParseAccessToken(token)
			if err != nil {
				response.RespondError(w, http.StatusUnauthorized, "Authentication failed", "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *service.AccessClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the claims stored by Auth.
func ClaimsFromContext(ctx context.Context) (*service.AccessClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(*service.AccessClaims)
	return claims, ok
}

// UserIDFromContext returns the authenticated user id, or "" outside Auth.
func UserIDFromContext(ctx context.Context) string {
	if claims, ok := ClaimsFromContext(ctx); ok {
		return claims.UserID
	}
	return ""
}

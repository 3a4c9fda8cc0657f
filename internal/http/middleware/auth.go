package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tuanvumaihuynh/lfs/internal/apperr"
	"github.com/tuanvumaihuynh/lfs/internal/http/apierr"
	"github.com/tuanvumaihuynh/lfs/internal/log"
	"github.com/tuanvumaihuynh/lfs/internal/service"
)

const bearerPrefix = "Bearer "

// TokenParser validates operator tokens.
type TokenParser interface {
	ParseToken(token string) (service.Claims, error)
}

type claimsCtxKey struct{}

// ClaimsFromContext returns the claims of the authenticated operator.
func ClaimsFromContext(ctx context.Context) (service.Claims, bool) {
	claims, ok := ctx.Value(claimsCtxKey{}).(service.Claims)
	return claims, ok
}

// Authenticate rejects requests without a valid bearer token.
func Authenticate(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerPrefix) {
				apierr.Write(w, apperr.InvalidTokenErr)
				return
			}

			claims, err := parser.ParseToken(strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)))
			if err != nil {
				apierr.Write(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), claimsCtxKey{}, claims)
			ctx = log.ContextWithAttrs(ctx, slog.String("operator", claims.Email))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

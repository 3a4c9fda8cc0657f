package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/lfs/internal/apperr"
	"github.com/tuanvumaihuynh/lfs/internal/service"
)

type tokenParserFunc func(string) (service.Claims, error)

func (f tokenParserFunc) ParseToken(token string) (service.Claims, error) { return f(token) }

func TestAuthenticate(t *testing.T) {
	parser := tokenParserFunc(func(token string) (service.Claims, error) {
		if token != "good" {
			return service.Claims{}, apperr.InvalidTokenErr
		}
		return service.Claims{Email: "admin@example.com"}, nil
	})

	var got service.Claims
	h := Authenticate(parser)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		got = claims
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "missing header", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer bad", wantStatus: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer good", wantStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/manage/orders", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Contains(t, rec.Body.String(), "INVALID_TOKEN")
			}
		})
	}

	assert.Equal(t, "admin@example.com", got.Email)
}

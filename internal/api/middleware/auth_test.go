package middleware

import (
	"bytes"
	"customer-manager/internal/config"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	tokenString, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return tokenString
}

func TestAuthMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	secret := "testsecret"
	cfg := config.AuthConfig{Enabled: true, JWTSecret: secret}

	var seenUser string
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser, _ = UsernameFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	serve := func(cfg config.AuthConfig, header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/customers", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		AuthMiddleware(cfg, logger)(nextHandler).ServeHTTP(rec, req)
		return rec
	}

	t.Run("should allow request when middleware is disabled", func(t *testing.T) {
		rec := serve(config.AuthConfig{Enabled: false}, "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("should reject request with missing Authorization header", func(t *testing.T) {
		rec := serve(cfg, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":{"message":"Unauthorized"}}`, rec.Body.String())
	})

	t.Run("should reject malformed header", func(t *testing.T) {
		rec := serve(cfg, "Token abc")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("should reject request with invalid token", func(t *testing.T) {
		rec := serve(cfg, "Bearer invalidtoken")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("should reject token signed with another secret", func(t *testing.T) {
		tokenString := signToken(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"username": "eve"})
		rec := serve(cfg, "Bearer "+tokenString)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("should reject expired token", func(t *testing.T) {
		tokenString := signToken(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{
			"username": "ops",
			"exp":      time.Now().Add(-time.Hour).Unix(),
		})
		rec := serve(cfg, "Bearer "+tokenString)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("should allow request with valid token", func(t *testing.T) {
		tokenString := signToken(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{
			"username": "ops",
			"exp":      time.Now().Add(time.Hour).Unix(),
		})
		rec := serve(cfg, "Bearer "+tokenString)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ops", seenUser)
	})
}

package middleware

import (
	"context"
	"customer-manager/internal/config"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const usernameKey contextKey = "auth.username"

var errUnexpectedSigningMethod = errors.New("unexpected signing method")

// AuthMiddleware enforces HS256 bearer tokens when auth is enabled and is a
// pass-through otherwise.
func AuthMiddleware(cfg config.AuthConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, ok := validateJWT(r, cfg.JWTSecret, logger)
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":{"message":"Unauthorized"}}`))
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), usernameKey, username)))
		})
	}
}

// UsernameFromContext returns the authenticated username, if any.
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameKey).(string)
	return username, ok
}

func validateJWT(r *http.Request, secret string, logger *slog.Logger) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		logger.WarnContext(r.Context(), "AuthMiddleware: Missing Authorization header", "path", r.URL.Path)
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		logger.WarnContext(r.Context(), "AuthMiddleware: Invalid Authorization header format")
		return "", false
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errUnexpectedSigningMethod
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		logger.WarnContext(r.Context(), "AuthMiddleware: Invalid token", "error", err)
		return "", false
	}

	username, _ := claims["username"].(string)
	logger.DebugContext(r.Context(), "AuthMiddleware: Authenticated request", "username", username)
	return username, true
}

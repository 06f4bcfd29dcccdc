package middleware

import (
	"bytes"
	"context"
	"customer-manager/internal/config"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 2}
	limiter := NewRateLimiterMiddleware(ctx, cfg, logger)

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := limiter.Middleware(nextHandler)

	newReq := func(remote string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/customers", nil)
		req.RemoteAddr = remote
		return req
	}

	t.Run("allows the burst then blocks", func(t *testing.T) {
		for i := 0; i < cfg.Burst; i++ {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, newReq("127.0.0.1:12345"))
			assert.Equal(t, http.StatusOK, rec.Code, "request %d", i)
		}

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newReq("127.0.0.1:12345"))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("Retry-After"))

		var response map[string]map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, "Rate limit exceeded", response["error"]["message"])
	})

	t.Run("limits each IP separately", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newReq("10.1.1.1:4000"))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("extractIP handles various headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "192.168.1.1, 10.0.0.1")
		assert.Equal(t, "192.168.1.1", limiter.extractIP(req))

		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Real-IP", "10.0.0.1")
		assert.Equal(t, "10.0.0.1", limiter.extractIP(req))

		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "127.0.0.1:12345"
		assert.Equal(t, "127.0.0.1", limiter.extractIP(req))
	})

	t.Run("sweep drops idle limiters only", func(t *testing.T) {
		idle := NewRateLimiterMiddleware(ctx, cfg, logger)
		idle.getLimiter("fresh")
		busy := idle.getLimiter("busy")
		busy.Allow()
		busy.Allow()

		idle.sweep()

		_, freshKept := idle.limiters.Load("fresh")
		_, busyKept := idle.limiters.Load("busy")
		assert.False(t, freshKept)
		assert.True(t, busyKept)
	})

	t.Run("disabled limiter is a pass-through", func(t *testing.T) {
		disabled := NewRateLimiterMiddleware(ctx, config.RateLimitConfig{Enabled: false}, logger)
		h := disabled.Middleware(nextHandler)
		for i := 0; i < 5; i++ {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, newReq("127.0.0.1:1"))
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})
}

package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/pendium/hippo-admin/internal/domain/ratelimit"
	"github.com/pendium/hippo-admin/internal/middleware"
)

// mockLimiter implements ratelimit.Limiter for testing
type mockLimiter struct {
	results map[string]*ratelimit.Result
	errors  map[string]error
}

func newMockLimiter() *mockLimiter {
	return &mockLimiter{
		results: make(map[string]*ratelimit.Result),
		errors:  make(map[string]error),
	}
}

func (m *mockLimiter) Check(ctx context.Context, key string, limit int, window time.Duration) (*ratelimit.Result, error) {
	if err, ok := m.errors[key]; ok {
		return nil, err
	}
	if result, ok := m.results[key]; ok {
		return result, nil
	}
	return &ratelimit.Result{Allowed: true, Limit: limit, Remaining: limit - 1, ResetTime: time.Now().Add(window)}, nil
}

func (m *mockLimiter) Reset(ctx context.Context, key string) error {
	return nil
}

func rateLimitedRouter(limiter ratelimit.Limiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RateLimit(limiter, middleware.RateLimitConfig{
		GlobalLimit:  1000,
		GlobalWindow: time.Hour,
		PerIPLimit:   60,
		PerIPWindow:  time.Minute,
	}))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "success"})
	})
	return router
}

func TestRateLimit_AllowsUnderLimit(t *testing.T) {
	router := rateLimitedRouter(newMockLimiter())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "60", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "59", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimit_BlocksOverGlobalLimit(t *testing.T) {
	limiter := newMockLimiter()
	limiter.results["global"] = &ratelimit.Result{
		Allowed:    false,
		Limit:      1000,
		Remaining:  0,
		ResetTime:  time.Now().Add(time.Minute),
		RetryAfter: time.Minute,
	}
	router := rateLimitedRouter(limiter)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
}

func TestRateLimit_BlocksOverClientLimit(t *testing.T) {
	limiter := newMockLimiter()
	limiter.results["ip:192.0.2.1"] = &ratelimit.Result{
		Allowed:    false,
		Limit:      60,
		Remaining:  0,
		ResetTime:  time.Now().Add(30 * time.Second),
		RetryAfter: 30 * time.Second,
	}
	router := rateLimitedRouter(limiter)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
	assert.Equal(t, "30", w.Header().Get("Retry-After"))
}

func TestRateLimit_FailsOpenOnLimiterError(t *testing.T) {
	limiter := newMockLimiter()
	limiter.errors["global"] = assert.AnError
	router := rateLimitedRouter(limiter)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

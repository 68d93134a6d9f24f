package ratelimit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ZanzyTHEbar/interview-scoring-engine/internal/errors"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/monitoring"
)

func newFallbackLimiter(t *testing.T, cfg Config) (*RateLimiter, *monitoring.Metrics) {
	t.Helper()
	metrics := monitoring.NewMetrics()
	limiter := NewRateLimiter(&RedisClient{enabled: false}, cfg, metrics)
	t.Cleanup(limiter.Close)
	return limiter, metrics
}

func TestRateLimiterFallbackMode(t *testing.T) {
	limiter, metrics := newFallbackLimiter(t, Config{PerMinute: 10, BurstMultiplier: 1})

	ctx := context.Background()
	r := Rate{Limit: 5, Period: time.Minute}

	for i := 0; i < 5; i++ {
		result, err := limiter.Allow(ctx, "test:cohort-report", r)
		require.NoError(t, err)
		assert.True(t, result.Allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 5, result.Limit)
	}

	result, err := limiter.Allow(ctx, "test:cohort-report", r)
	require.NoError(t, err)
	assert.False(t, result.Allowed, "6th request should be blocked")
	assert.Greater(t, result.RetryAfter, time.Duration(0))
	assert.Equal(t, 0, result.Remaining)

	assert.Equal(t, int64(6), atomic.LoadInt64(&metrics.RateLimitFallbackCount))
}

func TestRateLimiterBurstCapacity(t *testing.T) {
	limiter, _ := newFallbackLimiter(t, Config{PerMinute: 10, BurstMultiplier: 2})

	allowed := 0
	for i := 0; i < 15; i++ {
		result, err := limiter.Allow(context.Background(), "test:burst", Rate{Limit: 5, Period: time.Hour})
		require.NoError(t, err)
		if result.Allowed {
			allowed++
		}
	}

	assert.Equal(t, 10, allowed)
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	limiter, _ := newFallbackLimiter(t, Config{PerMinute: 1})
	ctx := context.Background()

	first, err := limiter.AllowIP(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, first.Allowed)

	blocked, err := limiter.AllowIP(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, blocked.Allowed)

	other, err := limiter.AllowIP(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestRateLimiterRejectsInvalidRate(t *testing.T) {
	limiter, _ := newFallbackLimiter(t, DefaultConfig())

	tests := []struct {
		name string
		rate Rate
	}{
		{name: "zero limit", rate: Rate{Limit: 0, Period: time.Minute}},
		{name: "zero period", rate: Rate{Limit: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := limiter.Allow(context.Background(), "k", tt.rate)
			assert.Error(t, err)
		})
	}
}

func TestNilRedisClientUsesFallback(t *testing.T) {
	limiter := NewRateLimiter(nil, DefaultConfig(), nil)
	defer limiter.Close()

	result, err := limiter.AllowIP(context.Background(), "127.0.0.1")
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, false, limiter.GetStats()["redis_enabled"])
}

func TestInvalidateIP(t *testing.T) {
	ctx := context.Background()
	reportRate := Rate{Limit: 1, Period: time.Minute}

	tests := []struct {
		name        string
		ip          string
		wantAllowed bool
	}{
		{name: "invalidated ip", ip: "10.0.0.1", wantAllowed: true},
		{name: "ip sharing a prefix", ip: "10.0.0.10", wantAllowed: false},
		{name: "other ip", ip: "10.0.0.2", wantAllowed: false},
	}

	limiter, _ := newFallbackLimiter(t, Config{PerMinute: 1})
	for _, tt := range tests {
		_, err := limiter.AllowIP(ctx, tt.ip)
		require.NoError(t, err)
		_, err = limiter.Allow(ctx, "endpoint:cohort-report:"+tt.ip, reportRate)
		require.NoError(t, err)
	}

	require.NoError(t, limiter.InvalidateIP(ctx, "10.0.0.1"))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := limiter.AllowIP(ctx, tt.ip)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAllowed, result.Allowed, "global limit")

			result, err = limiter.Allow(ctx, "endpoint:cohort-report:"+tt.ip, reportRate)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAllowed, result.Allowed, "endpoint limit")
		})
	}
}

func TestInvalidateAll(t *testing.T) {
	limiter, _ := newFallbackLimiter(t, Config{PerMinute: 1})
	ctx := context.Background()

	for _, ip := range []string{"10.0.0.1", "10.0.0.2"} {
		_, err := limiter.AllowIP(ctx, ip)
		require.NoError(t, err)
	}
	require.Equal(t, 2, limiter.GetStats()["fallback_limiters"])

	require.NoError(t, limiter.InvalidateAll(ctx))
	assert.Equal(t, 0, limiter.GetStats()["fallback_limiters"])

	result, err := limiter.AllowIP(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestKeyIP(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"ip:10.0.0.1", "10.0.0.1"},
		{"ip:10.0.0.10", "10.0.0.10"},
		{"endpoint:cohort-report:10.0.0.1", "10.0.0.1"},
		{"endpoint:cohort-report:2001:db8::1", "2001:db8::1"},
		{"endpoint:cohort-report", ""},
		{"other:10.0.0.1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, keyIP(tt.key))
		})
	}
}

func TestGlobEscape(t *testing.T) {
	assert.Equal(t, "10.0.0.1", globEscape("10.0.0.1"))
	assert.Equal(t, `a\*b\?\[c\]`, globEscape(`a*b?[c]`))
}

func TestEvictIdle(t *testing.T) {
	limiter, _ := newFallbackLimiter(t, Config{PerMinute: 5, IdleTimeout: time.Minute})

	_, err := limiter.AllowIP(context.Background(), "10.0.0.1")
	require.NoError(t, err)

	assert.Equal(t, 0, limiter.evictIdle(time.Now()))
	assert.Equal(t, 1, limiter.evictIdle(time.Now().Add(2*time.Minute)))
	assert.Equal(t, 0, limiter.GetStats()["fallback_limiters"])
}

func TestIPRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter, metrics := newFallbackLimiter(t, Config{PerMinute: 2})

	router := gin.New()
	router.Use(limiter.IPRateLimitMiddleware())
	router.GET("/v1/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	do := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
		req.RemoteAddr = "192.0.2.10:1234"
		router.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 2; i++ {
		w := do()
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := do()
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apperrors.CategoryRateLimit, body.Category)
	assert.Contains(t, body.Details, "retry_after")

	assert.Equal(t, int64(1), atomic.LoadInt64(&metrics.RateLimitBlocks))
}

func TestEndpointRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter, _ := newFallbackLimiter(t, Config{PerMinute: 100})

	router := gin.New()
	router.GET("/v1/cohorts/:id/report", limiter.EndpointRateLimitMiddleware("cohort_report", 1),
		func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/cohorts/a/report", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Endpoint-Limit"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/cohorts/b/report", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestHandleRateLimitStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter, _ := newFallbackLimiter(t, Config{PerMinute: 42})

	router := gin.New()
	router.GET("/v1/ratelimit", limiter.HandleRateLimitStatus())
	router.DELETE("/v1/ratelimit/:ip", limiter.HandleInvalidateIP())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/ratelimit", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"limit":42`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/ratelimit/10.0.0.1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "10.0.0.1")
}

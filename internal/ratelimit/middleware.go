package ratelimit

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ZanzyTHEbar/interview-scoring-engine/internal/errors"
)

// IPRateLimitMiddleware enforces the per-minute limit of each client IP
func (rl *RateLimiter) IPRateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		result, err := rl.AllowIP(c.Request.Context(), ip)
		if err != nil {
			// never block traffic on a limiter failure
			slog.Error("Rate limit check failed", "ip", ip, "error", err)
			c.Next()
			return
		}

		rl.enforce(c, result, "X-RateLimit")
	}
}

// EndpointRateLimitMiddleware applies a tighter per-minute limit to an
// expensive endpoint, tracked per client IP
func (rl *RateLimiter) EndpointRateLimitMiddleware(endpoint string, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		key := "endpoint:" + endpoint + ":" + ip

		result, err := rl.Allow(c.Request.Context(), key, Rate{Limit: limit, Period: time.Minute})
		if err != nil {
			slog.Error("Endpoint rate limit check failed", "endpoint", endpoint, "ip", ip, "error", err)
			c.Next()
			return
		}

		rl.enforce(c, result, "X-RateLimit-Endpoint")
	}
}

func (rl *RateLimiter) enforce(c *gin.Context, result *Result, headerPrefix string) {
	c.Header(headerPrefix+"-Limit", strconv.Itoa(result.Limit))
	c.Header(headerPrefix+"-Remaining", strconv.Itoa(result.Remaining))
	c.Header(headerPrefix+"-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

	if result.Allowed {
		c.Next()
		return
	}

	if rl.metrics != nil {
		rl.metrics.IncrementRateLimitBlock()
	}

	retryAfter := int(result.RetryAfter.Round(time.Second).Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}
	c.Header("Retry-After", strconv.Itoa(retryAfter))

	apperrors.Abort(c, apperrors.NewRateLimitError(strconv.Itoa(retryAfter)+"s"))
}

package ratelimit

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ZanzyTHEbar/interview-scoring-engine/internal/errors"
)

// HandleRateLimitStatus reports the limits that apply to the requesting IP
func (rl *RateLimiter) HandleRateLimitStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ip": c.ClientIP(),
			"limits": gin.H{
				"ip_per_minute": gin.H{
					"limit":  rl.config.PerMinute,
					"period": "1 minute",
				},
			},
			"limiter":   rl.GetStats(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// HandleInvalidateIP clears the limits tracked for the IP in the path
func (rl *RateLimiter) HandleInvalidateIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.Param("ip")
		if ip == "" {
			apperrors.Abort(c, apperrors.NewValidationError("IP address is required"))
			return
		}

		if err := rl.InvalidateIP(c.Request.Context(), ip); err != nil {
			apperrors.Abort(c, apperrors.NewInternalError("failed to invalidate IP rate limits", err))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":   "IP rate limits invalidated",
			"ip":        ip,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// HandleInvalidateAll clears every tracked limit
func (rl *RateLimiter) HandleInvalidateAll() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := rl.InvalidateAll(c.Request.Context()); err != nil {
			apperrors.Abort(c, apperrors.NewInternalError("failed to invalidate rate limits", err))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":   "all rate limits invalidated",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

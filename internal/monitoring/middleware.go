package monitoring

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	slowRequestThreshold = 5 * time.Second
	requestIDHeader      = "X-Request-ID"
)

// MonitoringMiddleware records Prometheus metrics and one access log line per
// request. Client errors log at WARN, server errors at ERROR.
func MonitoringMiddleware(metrics *Metrics, logger *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.IncrementRequest()

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()
		route := c.FullPath()

		metrics.RecordHTTPRequest(c.Request.Method, route, status, duration)
		if status >= 400 {
			metrics.IncrementError()
		}

		requestID := c.Writer.Header().Get(requestIDHeader)
		logger.RequestLogger(requestID, c.Request.Method, route, c.Request.URL.Path, c.ClientIP(), status, duration)

		if status >= 500 {
			for _, err := range c.Errors {
				logger.APIErrorLogger(err.Err, requestID, c.Request.Method, c.Request.URL.Path, status)
			}
		}

		if duration > slowRequestThreshold {
			logger.PerformanceLogger("slow_request "+c.Request.Method+" "+c.Request.URL.Path, duration.Seconds(), "seconds")
		}
	}
}

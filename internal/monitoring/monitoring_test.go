package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{input: "debug", expected: slog.LevelDebug},
		{input: "INFO", expected: slog.LevelInfo},
		{input: "warn", expected: slog.LevelWarn},
		{input: "warning", expected: slog.LevelWarn},
		{input: "error", expected: slog.LevelError},
		{input: "verbose", expected: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestLoggerWritesJSONWithTimestamp(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, "info")

	logger.ScoringLogger("cand-1", "mean", 72, 3, 15*time.Millisecond)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Assessment Scored", entry["msg"])
	assert.Equal(t, "cand-1", entry["candidate_id"])
	assert.Equal(t, float64(72), entry["composite_index"])
	assert.Contains(t, entry, "timestamp")
	assert.NotContains(t, entry, "time")
}

func TestLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, "warn")

	logger.CacheLogger("get", "short", true)
	assert.Empty(t, buf.String())

	logger.SetLevel(slog.LevelDebug)
	logger.CacheLogger("get", "0123456789abcdef", true)
	assert.Contains(t, buf.String(), `"key_hash":"01234567..."`)
}

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.IncrementCacheHit()
	m.IncrementCacheHit()
	m.IncrementCacheMiss()
	m.ObserveCompositeIndex(70)
	m.IncrementFetchFailure("cohort_results")
	m.RecordRiskLevel("High")
	m.RecordComputation("cohort_report", time.Millisecond, nil)
	m.RecordComputation("cohort_report", time.Millisecond, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetchFailures.WithLabelValues("cohort_results")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.riskLevels.WithLabelValues("High")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.computations.WithLabelValues("cohort_report", "error")))

	stats := m.GetStats()
	assert.Equal(t, int64(2), stats["cache_hits"])
	assert.InDelta(t, 66.66, stats["cache_hit_rate_percent"].(float64), 0.01)
	assert.Equal(t, int64(1), stats["assessments_scored"])
	assert.Equal(t, int64(1), stats["fetch_failures"])
}

func TestGetPercentileResponseTime(t *testing.T) {
	m := NewMetrics()
	assert.Equal(t, time.Duration(0), m.GetPercentileResponseTime(50))

	for i := 1; i <= 100; i++ {
		m.RecordResponseTime(time.Duration(i) * time.Millisecond)
	}
	assert.Equal(t, 50*time.Millisecond, m.GetPercentileResponseTime(50))
	assert.Equal(t, 100*time.Millisecond, m.GetPercentileResponseTime(100))
}

func TestMonitoringMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	metrics := NewMetrics()
	logger := NewLoggerWithWriter(&buf, "info")

	router := gin.New()
	router.Use(MonitoringMiddleware(metrics, logger))
	router.GET("/v1/assessments/:id", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/assessments/abc", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, int64(1), metrics.RequestCount)
	assert.Equal(t, int64(1), metrics.ErrorCount)
	assert.Equal(t, int64(1), metrics.GetStatusCodeDistribution()[404])
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.httpRequests.WithLabelValues("GET", "/v1/assessments/:id", "404")))
	assert.Contains(t, buf.String(), `"msg":"HTTP Request"`)
	assert.Contains(t, buf.String(), `"level":"WARN"`)
	assert.Contains(t, buf.String(), `"route":"/v1/assessments/:id"`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "assess_http_requests_total"))
}

package monitoring

import (
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxResponseSamples = 1000

// Metrics holds application metrics. Counters are mirrored into a private
// Prometheus registry served on /metrics.
type Metrics struct {
	RequestCount        int64
	ErrorCount          int64
	CacheHits           int64
	CacheMisses         int64
	AssessmentsScored   int64
	FetchFailures       int64
	AverageResponseTime int64 // in nanoseconds
	StartTime           time.Time

	ResponseTimes      []time.Duration
	ResponseTimesMutex sync.RWMutex

	RequestCountByStatus map[int]int64
	StatusMutex          sync.RWMutex

	RateLimitBlocks        int64
	RateLimitRedisErrors   int64
	RateLimitFallbackCount int64

	registry            *prometheus.Registry
	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
	computations        *prometheus.CounterVec
	computationDuration *prometheus.HistogramVec
	compositeIndex      prometheus.Histogram
	riskLevels          *prometheus.CounterVec
	cacheLookups        *prometheus.CounterVec
	fetchFailures       *prometheus.CounterVec
	rateLimitEvents     *prometheus.CounterVec
}

// NewMetrics creates a metrics instance with its own registry
func NewMetrics() *Metrics {
	m := &Metrics{
		StartTime:            time.Now(),
		ResponseTimes:        make([]time.Duration, 0, maxResponseSamples),
		RequestCountByStatus: make(map[int]int64),
		registry:             prometheus.NewRegistry(),

		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assess_http_requests_total",
				Help: "HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "assess_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		computations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assess_computations_total",
				Help: "Engine computations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		computationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "assess_computation_duration_seconds",
				Help:    "Engine computation latency, including the data fetch",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"operation"},
		),
		compositeIndex: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "assess_composite_index",
				Help:    "Distribution of computed composite indices",
				Buckets: prometheus.LinearBuckets(10, 10, 10),
			},
		),
		riskLevels: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assess_anomaly_risk_total",
				Help: "Anomaly risk assessments by level",
			},
			[]string{"level"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assess_cache_lookups_total",
				Help: "Cache lookups by result",
			},
			[]string{"result"},
		),
		fetchFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assess_fetch_failures_total",
				Help: "Failed input fetches that aborted a computation",
			},
			[]string{"source"},
		),
		rateLimitEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assess_rate_limit_events_total",
				Help: "Rate limiter blocks, redis errors and fallbacks",
			},
			[]string{"event"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.computations,
		m.computationDuration,
		m.compositeIndex,
		m.riskLevels,
		m.cacheLookups,
		m.fetchFailures,
		m.rateLimitEvents,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// IncrementRequest increments the request count
func (m *Metrics) IncrementRequest() {
	atomic.AddInt64(&m.RequestCount, 1)
}

// IncrementError increments the error count
func (m *Metrics) IncrementError() {
	atomic.AddInt64(&m.ErrorCount, 1)
}

// IncrementCacheHit increments cache hit count
func (m *Metrics) IncrementCacheHit() {
	atomic.AddInt64(&m.CacheHits, 1)
	m.cacheLookups.WithLabelValues("hit").Inc()
}

// IncrementCacheMiss increments cache miss count
func (m *Metrics) IncrementCacheMiss() {
	atomic.AddInt64(&m.CacheMisses, 1)
	m.cacheLookups.WithLabelValues("miss").Inc()
}

// RecordHTTPRequest records one served request. route is the gin route
// template, never the raw path, to keep label cardinality bounded.
func (m *Metrics) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	m.RecordResponseTime(duration)
	m.RecordRequestByStatus(statusCode)
}

// RecordComputation records an engine operation outcome
func (m *Metrics) RecordComputation(operation string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.computations.WithLabelValues(operation, outcome).Inc()
	m.computationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveCompositeIndex records a freshly scored assessment
func (m *Metrics) ObserveCompositeIndex(index int) {
	atomic.AddInt64(&m.AssessmentsScored, 1)
	m.compositeIndex.Observe(float64(index))
}

// RecordRiskLevel counts an anomaly risk outcome
func (m *Metrics) RecordRiskLevel(level string) {
	m.riskLevels.WithLabelValues(level).Inc()
}

// IncrementFetchFailure counts a fetch that aborted a computation
func (m *Metrics) IncrementFetchFailure(source string) {
	atomic.AddInt64(&m.FetchFailures, 1)
	m.fetchFailures.WithLabelValues(source).Inc()
}

// IncrementRateLimitBlock counts a rejected request
func (m *Metrics) IncrementRateLimitBlock() {
	atomic.AddInt64(&m.RateLimitBlocks, 1)
	m.rateLimitEvents.WithLabelValues("blocked").Inc()
}

// IncrementRateLimitRedisError counts a Redis failure in the limiter
func (m *Metrics) IncrementRateLimitRedisError() {
	atomic.AddInt64(&m.RateLimitRedisErrors, 1)
	m.rateLimitEvents.WithLabelValues("redis_error").Inc()
}

// IncrementRateLimitFallback counts use of the in-memory limiter
func (m *Metrics) IncrementRateLimitFallback() {
	atomic.AddInt64(&m.RateLimitFallbackCount, 1)
	m.rateLimitEvents.WithLabelValues("fallback").Inc()
}

// RecordResponseTime records response time for averaging and percentiles
func (m *Metrics) RecordResponseTime(duration time.Duration) {
	current := atomic.LoadInt64(&m.AverageResponseTime)
	newAverage := (current + duration.Nanoseconds()) / 2
	atomic.StoreInt64(&m.AverageResponseTime, newAverage)

	m.ResponseTimesMutex.Lock()
	m.ResponseTimes = append(m.ResponseTimes, duration)
	if len(m.ResponseTimes) > maxResponseSamples {
		m.ResponseTimes = m.ResponseTimes[1:]
	}
	m.ResponseTimesMutex.Unlock()
}

// RecordRequestByStatus records request count by HTTP status code
func (m *Metrics) RecordRequestByStatus(statusCode int) {
	m.StatusMutex.Lock()
	defer m.StatusMutex.Unlock()
	m.RequestCountByStatus[statusCode]++
}

// GetPercentileResponseTime calculates percentile response time
func (m *Metrics) GetPercentileResponseTime(percentile float64) time.Duration {
	m.ResponseTimesMutex.RLock()
	defer m.ResponseTimesMutex.RUnlock()

	if len(m.ResponseTimes) == 0 {
		return 0
	}

	times := make([]time.Duration, len(m.ResponseTimes))
	copy(times, m.ResponseTimes)

	sort.Slice(times, func(i, j int) bool {
		return times[i] < times[j]
	})

	index := int(float64(len(times)-1) * percentile / 100.0)
	if index >= len(times) {
		index = len(times) - 1
	}

	return times[index]
}

// GetStatusCodeDistribution returns request count by status code
func (m *Metrics) GetStatusCodeDistribution() map[int]int64 {
	m.StatusMutex.RLock()
	defer m.StatusMutex.RUnlock()

	distribution := make(map[int]int64, len(m.RequestCountByStatus))
	for code, count := range m.RequestCountByStatus {
		distribution[code] = count
	}
	return distribution
}

// GetStats returns a summary for the health endpoint
func (m *Metrics) GetStats() map[string]interface{} {
	requests := atomic.LoadInt64(&m.RequestCount)
	errors := atomic.LoadInt64(&m.ErrorCount)
	cacheHits := atomic.LoadInt64(&m.CacheHits)
	cacheMisses := atomic.LoadInt64(&m.CacheMisses)
	avgResponseTime := atomic.LoadInt64(&m.AverageResponseTime)

	errorRate := float64(0)
	if requests > 0 {
		errorRate = float64(errors) / float64(requests) * 100
	}

	cacheHitRate := float64(0)
	if total := cacheHits + cacheMisses; total > 0 {
		cacheHitRate = float64(cacheHits) / float64(total) * 100
	}

	return map[string]interface{}{
		"uptime_seconds":           time.Since(m.StartTime).Seconds(),
		"total_requests":           requests,
		"error_count":              errors,
		"error_rate_percent":       errorRate,
		"cache_hits":               cacheHits,
		"cache_misses":             cacheMisses,
		"cache_hit_rate_percent":   cacheHitRate,
		"assessments_scored":       atomic.LoadInt64(&m.AssessmentsScored),
		"fetch_failures":           atomic.LoadInt64(&m.FetchFailures),
		"avg_response_time_ms":     float64(avgResponseTime) / 1e6,
		"p50_response_time_ms":     float64(m.GetPercentileResponseTime(50)) / 1e6,
		"p95_response_time_ms":     float64(m.GetPercentileResponseTime(95)) / 1e6,
		"status_code_distribution": m.GetStatusCodeDistribution(),
		"rate_limit": map[string]int64{
			"blocks":       atomic.LoadInt64(&m.RateLimitBlocks),
			"redis_errors": atomic.LoadInt64(&m.RateLimitRedisErrors),
			"fallbacks":    atomic.LoadInt64(&m.RateLimitFallbackCount),
		},
		"start_time": m.StartTime.Format(time.RFC3339),
	}
}

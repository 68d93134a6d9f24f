package monitoring

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Logger provides structured logging with domain helpers
type Logger struct {
	*slog.Logger
	level *slog.LevelVar
}

// ParseLevel maps debug|info|warn|error to a slog level, defaulting to info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a JSON logger on stdout
func NewLogger(level string) *Logger {
	return NewLoggerWithWriter(os.Stdout, level)
}

// NewLoggerWithWriter creates a JSON logger on w
func NewLoggerWithWriter(w io.Writer, level string) *Logger {
	lv := new(slog.LevelVar)
	lv.Set(ParseLevel(level))

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     lv,
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   "timestamp",
					Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
				}
			}
			return a
		},
	})

	return &Logger{
		Logger: slog.New(handler),
		level:  lv,
	}
}

// SetLevel changes the level of this logger and every logger derived from it
func (l *Logger) SetLevel(level slog.Level) {
	l.level.Set(level)
}

// RequestLogger logs one served request. Route is the matched route template,
// empty when no route matched.
func (l *Logger) RequestLogger(requestID, method, route, path, ip string, statusCode int, duration time.Duration) {
	level := slog.LevelInfo
	if statusCode >= 500 {
		level = slog.LevelError
	} else if statusCode >= 400 {
		level = slog.LevelWarn
	}
	l.Log(context.Background(), level, "HTTP Request",
		"request_id", requestID,
		"method", method,
		"route", route,
		"path", path,
		"ip", ip,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
	)
}

// ScoringLogger logs a completed assessment aggregation
func (l *Logger) ScoringLogger(candidateID, strategy string, composite int, modules int, duration time.Duration) {
	l.Info("Assessment Scored",
		"candidate_id", candidateID,
		"strategy", strategy,
		"composite_index", composite,
		"modules", modules,
		"duration_ms", duration.Milliseconds(),
	)
}

// CohortLogger logs a cohort level computation
func (l *Logger) CohortLogger(operation, cohortID string, size int, duration time.Duration, cacheHit bool) {
	l.Info("Cohort Computation",
		"operation", operation,
		"cohort_id", cohortID,
		"size", size,
		"duration_ms", duration.Milliseconds(),
		"cache_hit", cacheHit,
	)
}

// APIErrorLogger logs an error attached to a request by a handler
func (l *Logger) APIErrorLogger(err error, requestID, method, path string, statusCode int) {
	_, file, line, ok := runtime.Caller(2)
	caller := "unknown"
	if ok {
		caller = file + ":" + strconv.Itoa(line)
	}

	l.Error("API Error",
		"error", err.Error(),
		"request_id", requestID,
		"method", method,
		"path", path,
		"status_code", statusCode,
		"caller", caller,
	)
}

// CacheLogger logs cache operations
func (l *Logger) CacheLogger(operation, key string, hit bool) {
	if len(key) > 8 {
		key = key[:8] + "..."
	}
	l.Debug("Cache Operation",
		"operation", operation,
		"key_hash", key,
		"hit", hit,
	)
}

// SystemLogger logs system-level events
func (l *Logger) SystemLogger(event, details string) {
	l.Info("System Event",
		"event", event,
		"details", details,
		"uptime", time.Since(startTime).String(),
	)
}

// PerformanceLogger logs performance metrics
func (l *Logger) PerformanceLogger(metric string, value float64, unit string) {
	l.Warn("Performance Metric",
		"metric", metric,
		"value", value,
		"unit", unit,
	)
}

var startTime = time.Now()

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/api"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/cache"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/config"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/database"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/engine"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/middleware"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/monitoring"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/ratelimit"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/scoring"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/security"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// app owns the wired server and everything it must release on shutdown
type app struct {
	cfg     *config.Config
	router  *gin.Engine
	closers []func() error
}

func main() {
	configPath := flag.String("config", os.Getenv("ASSESS_CONFIG_FILE"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := monitoring.NewLogger(cfg.Logging.Level)
	slog.SetDefault(logger.Logger)
	gin.SetMode(cfg.Server.Mode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	a, err := newApp(ctx, cfg, logger)
	cancel()
	if err != nil {
		slog.Error("Failed to initialize server", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      a.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.SystemLogger("startup", fmt.Sprintf("listening on %s, version %s, mode %s", srv.Addr, version, cfg.Server.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	logger.SystemLogger("shutdown", "server exited")
}

// newApp wires storage, caches, rate limiting and the engine behind the router.
// Redis is optional: when it is unset or unreachable the cache and the limiter
// run in memory.
func newApp(ctx context.Context, cfg *config.Config, logger *monitoring.Logger) (*app, error) {
	a := &app{cfg: cfg}

	db, err := database.NewDB(ctx, cfg.Database.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	a.closers = append(a.closers, db.Close)

	redisClient, err := ratelimit.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		slog.Warn("Continuing without Redis", "error", err)
	}
	a.closers = append(a.closers, redisClient.Close)

	memory := cache.NewMemoryCache(cfg.Cache.TTL)
	var store cache.Store = memory
	stats := map[string]api.StatsFunc{
		"database": db.GetPoolStats,
		"redis":    redisClient.GetPoolStats,
	}
	if redisClient.IsEnabled() {
		shared := cache.NewRedisCache(redisClient.GetClient(), "assess", cfg.Cache.TTL, memory)
		store = shared
		stats["cache"] = shared.Stats
		a.closers = append(a.closers, shared.Close)
	} else {
		stats["cache"] = memory.Stats
		a.closers = append(a.closers, memory.Close)
	}

	metrics := monitoring.NewMetrics()

	limiter := ratelimit.NewRateLimiter(redisClient, ratelimit.Config{
		PerMinute:       cfg.RateLimit.PerMinute,
		BurstMultiplier: cfg.RateLimit.BurstMultiplier,
	}, metrics)
	stats["ratelimit"] = limiter.GetStats
	a.closers = append(a.closers, func() error {
		limiter.Close()
		return nil
	})

	scorer, err := cfg.Scorer()
	if err != nil {
		a.Close()
		return nil, err
	}
	strategy, err := cfg.Strategy()
	if err != nil {
		a.Close()
		return nil, err
	}

	aggregator := scoring.NewAggregator(scoring.WithStrategy(strategy), scoring.WithScorer(scorer))
	service := engine.NewService(database.NewRepository(db), aggregator, store, metrics, logger)

	guard := security.NewGuard(security.Config{
		MaxAnswerLength: cfg.Server.MaxAnswerLength,
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
		RequestTimeout:  cfg.Server.RequestTimeout,
	})

	var compression *middleware.CompressionMiddleware
	if cfg.Server.EnableGzip {
		compression = middleware.NewCompressionMiddleware(middleware.DefaultCompressionConfig())
		stats["compression"] = compression.GetStats
	}

	checks := map[string]api.HealthCheck{
		"database": db.HealthCheck,
	}
	if redisClient.IsEnabled() {
		checks["redis"] = redisClient.HealthCheck
	}

	a.router = api.NewRouter(api.Dependencies{
		Engine:             service,
		Scorer:             scorer,
		Guard:              guard,
		Metrics:            metrics,
		Logger:             logger,
		Limiter:            limiter,
		Compression:        compression,
		HealthChecks:       checks,
		Stats:              stats,
		AllowedOrigins:     cfg.Server.AllowedOrigins,
		EnableHSTS:         cfg.Server.EnableHSTS,
		CohortReportPerMin: cfg.RateLimit.CohortReportPerMin,
		Version:            version,
	})

	if cfg.Server.EnableProfiling {
		slog.Info("Enabling performance profiling endpoints")
		a.router.GET("/debug/pprof/*filepath", profile)
	}

	slog.Info("Engine initialized",
		"composite_strategy", strategy.Name(),
		"battery_questions", len(scorer.Battery()),
		"cache", store.Name(),
		"redis", redisClient.IsEnabled())

	return a, nil
}

// profile serves the pprof endpoints under one catch-all route
func profile(c *gin.Context) {
	switch strings.TrimPrefix(c.Param("filepath"), "/") {
	case "cmdline":
		pprof.Cmdline(c.Writer, c.Request)
	case "profile":
		pprof.Profile(c.Writer, c.Request)
	case "symbol":
		pprof.Symbol(c.Writer, c.Request)
	case "trace":
		pprof.Trace(c.Writer, c.Request)
	default:
		pprof.Index(c.Writer, c.Request)
	}
}

// Close releases resources in reverse order of acquisition
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			slog.Warn("Failed to release resource", "error", err)
		}
	}
	a.closers = nil
}

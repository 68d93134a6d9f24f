// Package api exposes the scoring and analytics engine over HTTP.
//
//	@title						Interview Scoring Engine API
//	@version					1.0
//	@description				Scores candidate assessments and computes cohort statistics, module correlations and anomaly risk.
//	@BasePath					/
//	@schemes					http https
//	@produce					json
//	@accept						json
package api

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/engine"
	apperrors "github.com/ZanzyTHEbar/interview-scoring-engine/internal/errors"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/middleware"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/monitoring"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/ratelimit"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/scoring"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/security"

	// registers the generated OpenAPI document
	_ "github.com/ZanzyTHEbar/interview-scoring-engine/docs"
)

// HealthCheck reports whether a dependency is usable
type HealthCheck func(ctx context.Context) error

// StatsFunc reports runtime statistics of a component
type StatsFunc func() map[string]interface{}

// Dependencies are the collaborators the router is built from. Limiter,
// Compression, HealthChecks and Stats are optional.
type Dependencies struct {
	Engine      *engine.Service
	Scorer      *scoring.KeywordScorer
	Guard       *security.Guard
	Metrics     *monitoring.Metrics
	Logger      *monitoring.Logger
	Limiter     *ratelimit.RateLimiter
	Compression *middleware.CompressionMiddleware

	HealthChecks map[string]HealthCheck
	Stats        map[string]StatsFunc

	AllowedOrigins     []string
	EnableHSTS         bool
	CohortReportPerMin int
	Version            string
}

// Handler serves the HTTP API
type Handler struct {
	engine  *engine.Service
	scorer  *scoring.KeywordScorer
	guard   *security.Guard
	metrics *monitoring.Metrics
	logger  *monitoring.Logger

	healthChecks map[string]HealthCheck
	stats        map[string]StatsFunc
	version      string
	started      time.Time
}

// NewHandler fills unset dependencies with defaults
func NewHandler(deps Dependencies) *Handler {
	if deps.Scorer == nil {
		deps.Scorer = scoring.DefaultScorer()
	}
	if deps.Guard == nil {
		deps.Guard = security.NewGuard(security.DefaultConfig())
	}
	if deps.Metrics == nil {
		deps.Metrics = monitoring.NewMetrics()
	}
	if deps.Logger == nil {
		deps.Logger = monitoring.NewLogger("info")
	}
	if deps.Version == "" {
		deps.Version = "1.0.0"
	}
	return &Handler{
		engine:       deps.Engine,
		scorer:       deps.Scorer,
		guard:        deps.Guard,
		metrics:      deps.Metrics,
		logger:       deps.Logger,
		healthChecks: deps.HealthChecks,
		stats:        deps.Stats,
		version:      deps.Version,
		started:      time.Now(),
	}
}

// NewRouter builds the gin engine with middleware and every route
func NewRouter(deps Dependencies) *gin.Engine {
	h := NewHandler(deps)

	r := gin.New()

	// monitoring first so that it sees every response
	r.Use(security.RequestID())
	r.Use(monitoring.MonitoringMiddleware(h.metrics, h.logger))
	r.Use(apperrors.ErrorHandler())
	r.Use(apperrors.RecoveryHandler())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = deps.AllowedOrigins
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", security.RequestIDHeader)
	corsConfig.ExposeHeaders = []string{security.RequestIDHeader, "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"}
	r.Use(cors.New(corsConfig))

	r.Use(security.SecurityHeadersMiddleware(deps.EnableHSTS))
	if deps.Compression != nil {
		r.Use(deps.Compression.Handler())
	}

	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/v1")
	v1.Use(h.guard.RequestTimeout, h.guard.ValidateContentType, h.guard.LimitBody)
	if deps.Limiter != nil {
		v1.Use(deps.Limiter.IPRateLimitMiddleware())
	}

	score := v1.Group("/score")
	score.POST("/free-text", h.scoreFreeText)
	score.POST("/battery", h.scoreBattery)
	score.POST("/classify", h.classify)

	assessments := v1.Group("/assessments")
	assessments.POST("", h.createAssessment)
	assessments.GET("/:id", h.getAssessment)
	assessments.POST("/:id/decisions", h.createDecision)
	assessments.GET("/:id/decisions", h.listDecisions)
	assessments.POST("/:id/anomalies", h.flagAnomalies)
	assessments.GET("/:id/risk", h.resultRisk)

	v1.POST("/statistics/population", h.populationStatistics)
	v1.POST("/correlations/matrix", h.correlationMatrix)
	v1.POST("/anomalies/risk", h.anomalyRisk)

	cohorts := v1.Group("/cohorts")
	reportHandlers := []gin.HandlerFunc{h.cohortReport}
	if deps.Limiter != nil && deps.CohortReportPerMin > 0 {
		reportHandlers = append([]gin.HandlerFunc{
			deps.Limiter.EndpointRateLimitMiddleware("cohort-report", deps.CohortReportPerMin),
		}, reportHandlers...)
	}
	cohorts.GET("/:id/report", reportHandlers...)
	cohorts.GET("/:id/ranking", h.cohortRanking)
	cohorts.POST("/reports", h.cohortReports)

	admin := v1.Group("/admin")
	admin.GET("/stats", h.runtimeStats)
	if deps.Limiter != nil {
		v1.GET("/ratelimit", deps.Limiter.HandleRateLimitStatus())
		admin.DELETE("/ratelimit", deps.Limiter.HandleInvalidateAll())
		admin.DELETE("/ratelimit/:ip", deps.Limiter.HandleInvalidateIP())
	}

	return r
}

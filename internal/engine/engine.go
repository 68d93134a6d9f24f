package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/anomaly"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/cache"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/correlation"
	apperrors "github.com/ZanzyTHEbar/interview-scoring-engine/internal/errors"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/monitoring"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/scoring"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/stats"
)

const (
	sourceResults   = "assessment_results"
	sourceCohort    = "cohort_results"
	sourceDecisions = "manual_evaluations"
	sourceAnomalies = "anomaly_records"

	cohortReportNamespace = "cohort-report"

	// MaxBatchCohorts bounds a single batch report request
	MaxBatchCohorts  = 50
	batchConcurrency = 4

	// DefaultReportTimeout bounds a shared cohort computation, which outlives
	// the request that started it.
	DefaultReportTimeout = 30 * time.Second
)

// Store is the persistence the engine reads from and writes to
type Store interface {
	SaveResult(ctx context.Context, result scoring.AssessmentResult) error
	GetResult(ctx context.Context, id string) (scoring.AssessmentResult, error)
	CohortResults(ctx context.Context, cohortID string) ([]scoring.AssessmentResult, error)

	AppendDecision(ctx context.Context, ev scoring.ManualEvaluation) error
	Decisions(ctx context.Context, resultID string) ([]scoring.ManualEvaluation, error)
	LatestDecision(ctx context.Context, resultID string) (*scoring.ManualEvaluation, error)

	AddAnomalies(ctx context.Context, resultID string, records []anomaly.Record) ([]anomaly.Record, error)
	Anomalies(ctx context.Context, resultID string) ([]anomaly.Record, error)
}

// Service runs engine computations over stored assessments
type Service struct {
	store      Store
	aggregator *scoring.Aggregator
	cache      cache.Store
	metrics    *monitoring.Metrics
	logger     *monitoring.Logger
	reports    singleflight.Group
	now        func() time.Time
	newID      func() string

	reportTimeout time.Duration

	// generations counts invalidations per cohort; a computation that saw an
	// older generation must not write the cache
	genMu       sync.Mutex
	generations map[string]uint64
}

// Option configures a Service
type Option func(*Service)

// WithClock sets the clock used for decisions and report timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator sets the id generator used for decisions
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithReportTimeout bounds shared cohort computations
func WithReportTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.reportTimeout = d
		}
	}
}

// NewService wires the engine. cache may be nil to disable report caching.
func NewService(store Store, aggregator *scoring.Aggregator, c cache.Store, metrics *monitoring.Metrics, logger *monitoring.Logger, opts ...Option) *Service {
	if aggregator == nil {
		aggregator = scoring.NewAggregator()
	}
	if metrics == nil {
		metrics = monitoring.NewMetrics()
	}
	if logger == nil {
		logger = monitoring.NewLogger("info")
	}
	s := &Service{
		store:      store,
		aggregator: aggregator,
		cache:      c,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
		newID:      uuid.NewString,

		reportTimeout: DefaultReportTimeout,
		generations:   make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// fetchFailed turns a store error into a data fetch error. Not-found and
// validation errors describe the request and pass through unchanged; an
// expired or cancelled context is a timeout.
func (s *Service) fetchFailed(source string, err error) error {
	if apperrors.IsNotFound(err) || apperrors.IsValidation(err) {
		return err
	}
	s.metrics.IncrementFetchFailure(source)
	if timedOut(err) {
		return apperrors.NewTimeoutError(source+" fetch timed out", err)
	}
	return apperrors.NewDataFetchError(source, err)
}

func timedOut(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

// Assess aggregates a completed assessment and stores the result
func (s *Service) Assess(ctx context.Context, in scoring.AssessmentInput) (result scoring.AssessmentResult, err error) {
	start := time.Now()
	defer func() { s.metrics.RecordComputation("assess", time.Since(start), err) }()

	result, err = s.aggregator.Aggregate(in)
	if err != nil {
		return scoring.AssessmentResult{}, err
	}

	if err := s.store.SaveResult(ctx, result); err != nil {
		if timedOut(err) {
			return scoring.AssessmentResult{}, apperrors.NewTimeoutError("storing assessment result timed out", err)
		}
		return scoring.AssessmentResult{}, apperrors.NewInternalError("failed to store assessment result", err)
	}

	s.metrics.ObserveCompositeIndex(result.CompositeIndex)
	s.invalidateCohort(ctx, result.CohortID)
	s.logger.ScoringLogger(result.CandidateID, result.Strategy, result.CompositeIndex, len(result.Modules), time.Since(start))

	return result, nil
}

// ResultView is a stored result with its current decision, if any
type ResultView struct {
	Result   scoring.AssessmentResult  `json:"result"`
	Decision *scoring.ManualEvaluation `json:"decision,omitempty"`
}

// Result loads a stored result and its current decision
func (s *Service) Result(ctx context.Context, id string) (ResultView, error) {
	result, err := s.store.GetResult(ctx, id)
	if err != nil {
		return ResultView{}, s.fetchFailed(sourceResults, err)
	}

	latest, err := s.store.LatestDecision(ctx, id)
	if err != nil {
		return ResultView{}, s.fetchFailed(sourceDecisions, err)
	}

	return ResultView{Result: result, Decision: latest}, nil
}

// DecisionInput is a reviewer's verdict. Decision accepts English and
// Spanish labels.
type DecisionInput struct {
	Decision string `json:"decision" validate:"required"`
	Reviewer string `json:"reviewer" validate:"required"`
	Comment  string `json:"comment"`
}

// Decide appends a manual decision to a result. Scores are never touched.
func (s *Service) Decide(ctx context.Context, resultID string, in DecisionInput) (scoring.ManualEvaluation, error) {
	if err := apperrors.ValidateStruct(in); err != nil {
		return scoring.ManualEvaluation{}, err
	}
	decision, ok := scoring.ParseDecision(in.Decision)
	if !ok {
		return scoring.ManualEvaluation{}, apperrors.NewValidationError("decision must be approved, rejected or pending", in.Decision)
	}
	reviewer := strings.TrimSpace(in.Reviewer)
	if reviewer == "" {
		return scoring.ManualEvaluation{}, apperrors.NewValidationError("reviewer is required")
	}

	ev := scoring.ManualEvaluation{
		ID:        s.newID(),
		ResultID:  resultID,
		Decision:  decision,
		Reviewer:  reviewer,
		Comment:   strings.TrimSpace(in.Comment),
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.AppendDecision(ctx, ev); err != nil {
		return scoring.ManualEvaluation{}, s.fetchFailed(sourceDecisions, err)
	}

	s.logger.Info("Decision recorded", "result_id", resultID, "decision", decision, "reviewer", reviewer)
	return ev, nil
}

// Decisions lists a result's decisions, oldest first
func (s *Service) Decisions(ctx context.Context, resultID string) ([]scoring.ManualEvaluation, error) {
	decisions, err := s.store.Decisions(ctx, resultID)
	if err != nil {
		return nil, s.fetchFailed(sourceDecisions, err)
	}
	return decisions, nil
}

// FlagAnomalies validates and stores anomalies detected for a result
func (s *Service) FlagAnomalies(ctx context.Context, resultID string, records []anomaly.Record) ([]anomaly.Record, error) {
	if err := anomaly.Validate(records); err != nil {
		return nil, err
	}
	stored, err := s.store.AddAnomalies(ctx, resultID, records)
	if err != nil {
		return nil, s.fetchFailed(sourceAnomalies, err)
	}
	return stored, nil
}

// RiskReport is the anomaly risk of one stored result
type RiskReport struct {
	ResultID   string             `json:"result_id"`
	Assessment anomaly.Assessment `json:"assessment"`
	Records    []anomaly.Record   `json:"anomalies"`
}

// ResultRisk aggregates the anomalies stored for a result. A failed fetch
// aborts the computation; it is never scored as an empty set.
func (s *Service) ResultRisk(ctx context.Context, resultID string) (report RiskReport, err error) {
	start := time.Now()
	defer func() { s.metrics.RecordComputation("result_risk", time.Since(start), err) }()

	records, err := s.store.Anomalies(ctx, resultID)
	if err != nil {
		return RiskReport{}, s.fetchFailed(sourceAnomalies, err)
	}

	return RiskReport{
		ResultID:   resultID,
		Assessment: s.Risk(records),
		Records:    records,
	}, nil
}

// Risk aggregates records that were supplied directly
func (s *Service) Risk(records []anomaly.Record) anomaly.Assessment {
	assessment := anomaly.Aggregate(records)
	s.metrics.RecordRiskLevel(string(assessment.RiskLevel))
	return assessment
}

// CohortReport summarizes a cohort's stored results
type CohortReport struct {
	CohortID       string                `json:"cohort_id"`
	Size           int                   `json:"size"`
	Statistics     stats.Statistics      `json:"statistics"`
	Trend          stats.Trend           `json:"trend"`
	ModuleAverages []stats.ModuleAverage `json:"module_averages"`
	Bands          map[scoring.Band]int  `json:"bands"`
	Correlations   correlation.Report    `json:"correlations"`
	GeneratedAt    time.Time             `json:"generated_at"`
}

// CohortReport computes, or serves from cache, the report of one cohort. An
// empty cohort yields a report with insufficient data, not an error.
func (s *Service) CohortReport(ctx context.Context, cohortID string) (report CohortReport, err error) {
	cohortID = strings.TrimSpace(cohortID)
	if cohortID == "" {
		return CohortReport{}, apperrors.NewValidationError("cohort id is required")
	}

	start := time.Now()
	defer func() { s.metrics.RecordComputation("cohort_report", time.Since(start), err) }()

	key := cache.Key(cohortReportNamespace, cohortID)
	if s.cache != nil {
		if cache.GetJSON(ctx, s.cache, key, &report) {
			s.metrics.IncrementCacheHit()
			s.logger.CacheLogger("get", key, true)
			s.logger.CohortLogger("cohort_report", cohortID, report.Size, time.Since(start), true)
			return report, nil
		}
		s.metrics.IncrementCacheMiss()
		s.logger.CacheLogger("get", key, false)
	}

	// concurrent requests for the same cohort share one computation. It runs
	// detached from any one caller so a cancelled request cannot fail the rest.
	gen := s.generation(cohortID)
	ch := s.reports.DoChan(fmt.Sprintf("%s#%d", cohortID, gen), func() (interface{}, error) {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.reportTimeout)
		defer cancel()

		results, err := s.store.CohortResults(cctx, cohortID)
		if err != nil {
			return nil, s.fetchFailed(sourceCohort, err)
		}

		report, err := BuildCohortReport(cohortID, results, s.now())
		if err != nil {
			return nil, err
		}
		s.cacheIfCurrent(cctx, cohortID, gen, key, report)
		return report, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return CohortReport{}, res.Err
		}
		report = res.Val.(CohortReport)
	case <-ctx.Done():
		return CohortReport{}, apperrors.NewTimeoutError("cohort report timed out", ctx.Err())
	}

	s.logger.CohortLogger("cohort_report", cohortID, report.Size, time.Since(start), false)
	return report, nil
}

// BuildCohortReport computes a cohort report from results in completion order
func BuildCohortReport(cohortID string, results []scoring.AssessmentResult, now time.Time) (CohortReport, error) {
	bands := map[scoring.Band]int{scoring.BandHigh: 0, scoring.BandMedium: 0, scoring.BandLow: 0}
	for _, r := range results {
		bands[r.Band]++
	}

	correlations, err := correlation.BuildReport(correlation.FromResults(results, nil), nil)
	if err != nil {
		return CohortReport{}, apperrors.NewInternalError(fmt.Sprintf("failed to correlate cohort %s", cohortID), err)
	}

	return CohortReport{
		CohortID:       cohortID,
		Size:           len(results),
		Statistics:     stats.Compute(stats.CompositeIndices(results)),
		Trend:          stats.TrendFromResults(results),
		ModuleAverages: stats.ModuleAverages(results),
		Bands:          bands,
		Correlations:   correlations,
		GeneratedAt:    now.UTC(),
	}, nil
}

// CohortReports computes several cohort reports concurrently, in the order
// requested. The first failure cancels the rest.
func (s *Service) CohortReports(ctx context.Context, cohortIDs []string) ([]CohortReport, error) {
	if len(cohortIDs) == 0 {
		return []CohortReport{}, nil
	}
	if len(cohortIDs) > MaxBatchCohorts {
		return nil, apperrors.NewValidationError(fmt.Sprintf("at most %d cohorts per batch", MaxBatchCohorts), len(cohortIDs))
	}

	reports := make([]CohortReport, len(cohortIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)

	for i, id := range cohortIDs {
		i, id := i, id
		g.Go(func() error {
			report, err := s.CohortReport(gctx, id)
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func (s *Service) invalidateCohort(ctx context.Context, cohortID string) {
	if cohortID == "" {
		return
	}
	s.genMu.Lock()
	s.generations[cohortID]++
	s.genMu.Unlock()

	if s.cache == nil {
		return
	}
	for _, ns := range []string{cohortReportNamespace, cohortRankingNamespace} {
		key := cache.Key(ns, cohortID)
		s.cache.Delete(ctx, key)
		s.logger.CacheLogger("invalidate", key, false)
	}
}

func (s *Service) generation(cohortID string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generations[cohortID]
}

// cacheIfCurrent stores v unless the cohort was invalidated after gen was
// read. The lock orders the write before or after the invalidation's delete.
func (s *Service) cacheIfCurrent(ctx context.Context, cohortID string, gen uint64, key string, v interface{}) {
	if s.cache == nil {
		return
	}
	s.genMu.Lock()
	defer s.genMu.Unlock()
	if s.generations[cohortID] != gen {
		s.logger.CacheLogger("skip_stale", key, false)
		return
	}
	cache.SetJSON(ctx, s.cache, key, v)
}

// Aggregator returns the configured aggregator
func (s *Service) Aggregator() *scoring.Aggregator {
	return s.aggregator
}

package scoring

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/ZanzyTHEbar/interview-scoring-engine/internal/errors"
)

// AssessmentInput is a completed assessment: the template questions and the
// candidate's responses to them
type AssessmentInput struct {
	CandidateID string     `json:"candidate_id" validate:"required"`
	CohortID    string     `json:"cohort_id,omitempty"`
	Questions   []Question `json:"questions" validate:"required,min=1,dive"`
	Responses   []Response `json:"responses" validate:"dive"`
}

// Aggregator turns responses into module scores and a composite index
type Aggregator struct {
	strategy CompositeStrategy
	scorer   *KeywordScorer
	now      func() time.Time
	newID    func() string
}

// AggregatorOption configures an Aggregator
type AggregatorOption func(*Aggregator)

// WithStrategy sets the composite index strategy
func WithStrategy(s CompositeStrategy) AggregatorOption {
	return func(a *Aggregator) {
		if s != nil {
			a.strategy = s
		}
	}
}

// WithScorer sets the keyword scorer used for unscored free-text responses
func WithScorer(s *KeywordScorer) AggregatorOption {
	return func(a *Aggregator) {
		if s != nil {
			a.scorer = s
		}
	}
}

// WithClock overrides the completion timestamp source
func WithClock(now func() time.Time) AggregatorOption {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// WithIDGenerator overrides result id generation
func WithIDGenerator(gen func() string) AggregatorOption {
	return func(a *Aggregator) {
		if gen != nil {
			a.newID = gen
		}
	}
}

// NewAggregator creates an aggregator using the mean strategy and the
// standard keyword battery unless configured otherwise.
func NewAggregator(opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		strategy: MeanStrategy{},
		scorer:   defaultScorer,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Strategy returns the configured composite strategy
func (a *Aggregator) Strategy() CompositeStrategy {
	return a.strategy
}

type moduleTally struct {
	points, max int
}

// Aggregate scores a completed assessment. Module maxima sum the best option
// of every template question in the module, answered or not.
func (a *Aggregator) Aggregate(in AssessmentInput) (AssessmentResult, error) {
	if err := apperrors.ValidateStruct(in); err != nil {
		return AssessmentResult{}, err
	}
	if strings.TrimSpace(in.CandidateID) == "" {
		return AssessmentResult{}, apperrors.NewValidationError("candidate_id is required")
	}

	questions := make(map[string]Question, len(in.Questions))
	order := make([]string, 0)
	tallies := make(map[string]*moduleTally)

	for _, q := range in.Questions {
		if _, dup := questions[q.ID]; dup {
			return AssessmentResult{}, apperrors.NewValidationError("duplicate question", q.ID)
		}
		module := strings.TrimSpace(q.Module)
		if module == "" {
			return AssessmentResult{}, apperrors.NewValidationError("question has no module", q.ID)
		}
		q.Module = module
		questions[q.ID] = q

		t, ok := tallies[module]
		if !ok {
			t = &moduleTally{}
			tallies[module] = t
			order = append(order, module)
		}
		t.max += q.MaxPoints()
	}

	seen := make(map[string]struct{}, len(in.Responses))
	for _, r := range in.Responses {
		q, ok := questions[r.QuestionID]
		if !ok {
			return AssessmentResult{}, apperrors.NewValidationError("response references unknown question", r.QuestionID)
		}
		if _, dup := seen[r.QuestionID]; dup {
			return AssessmentResult{}, apperrors.NewValidationError("duplicate response", r.QuestionID)
		}
		seen[r.QuestionID] = struct{}{}

		points, err := a.resolvePoints(q, r)
		if err != nil {
			return AssessmentResult{}, err
		}
		tallies[q.Module].points += points
	}

	modules := make([]ModuleScore, 0, len(order))
	for _, name := range order {
		t := tallies[name]
		modules = append(modules, ModuleScore{
			Module:     name,
			Points:     t.points,
			MaxPoints:  t.max,
			Percentage: Percentage(t.points, t.max),
		})
	}

	index := a.strategy.Composite(modules)
	return AssessmentResult{
		ID:             a.newID(),
		CandidateID:    in.CandidateID,
		CohortID:       in.CohortID,
		Modules:        modules,
		CompositeIndex: index,
		Band:           BandForIndex(index),
		Strategy:       a.strategy.Name(),
		CompletedAt:    a.now().UTC(),
	}, nil
}

func (a *Aggregator) resolvePoints(q Question, r Response) (int, error) {
	if !q.IsOpenForm() {
		if r.OptionID == "" {
			return 0, apperrors.NewValidationError("closed question requires option_id", q.ID)
		}
		opt, ok := q.option(r.OptionID)
		if !ok {
			return 0, apperrors.NewValidationError("unknown option", fmt.Sprintf("%s/%s", q.ID, r.OptionID))
		}
		return opt.Points, nil
	}

	if strings.TrimSpace(r.Answer) == "" {
		return 0, apperrors.NewValidationError("answer is empty", q.ID)
	}
	if r.Points != nil {
		if *r.Points < 0 || *r.Points > MaxQuestionScore {
			return 0, apperrors.NewValidationError(fmt.Sprintf("points must be between 0 and %d", MaxQuestionScore), q.ID)
		}
		return *r.Points, nil
	}
	if a.scorer.has(q.ID) {
		return a.scorer.Score(q.ID, r.Answer)
	}
	// no keyword set for this question: only the detail bit can be awarded
	return ScoreText(r.Answer, nil), nil
}

// Percentage normalizes points against max to 0..100. A module with no
// attainable points is 0.
func Percentage(points, max int) int {
	if max <= 0 {
		return 0
	}
	return clampPercent(int(math.Round(float64(points) / float64(max) * 100)))
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

var defaultAggregator = NewAggregator()

// AggregateModuleScores aggregates with the default mean strategy and keyword battery
func AggregateModuleScores(in AssessmentInput) (AssessmentResult, error) {
	return defaultAggregator.Aggregate(in)
}

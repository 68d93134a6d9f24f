package scoring

import (
	"strings"
	"time"
)

// Option is one selectable answer of a closed-form question
type Option struct {
	ID     string `json:"id" validate:"required"`
	Text   string `json:"text"`
	Points int    `json:"points"`
}

// Question belongs to exactly one module. A question without options is
// open-form and is worth at most MaxQuestionScore points.
type Question struct {
	ID      string   `json:"id" validate:"required"`
	Text    string   `json:"text"`
	Module  string   `json:"module" validate:"required"`
	Options []Option `json:"options" validate:"dive"`
}

// IsOpenForm reports whether the question expects a free-text answer
func (q Question) IsOpenForm() bool {
	return len(q.Options) == 0
}

// MaxPoints is the highest attainable score for the question
func (q Question) MaxPoints() int {
	if q.IsOpenForm() {
		return MaxQuestionScore
	}
	best := q.Options[0].Points
	for _, o := range q.Options[1:] {
		if o.Points > best {
			best = o.Points
		}
	}
	return best
}

func (q Question) option(id string) (Option, bool) {
	for _, o := range q.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// Response answers one question, either by option id or by free text.
// Points on a free-text response is a reviewer-assigned score; when it is nil
// the answer is scored by the keyword scorer.
type Response struct {
	QuestionID string `json:"question_id" validate:"required"`
	OptionID   string `json:"option_id,omitempty"`
	Answer     string `json:"answer,omitempty"`
	Points     *int   `json:"points,omitempty"`
}

// ModuleScore is the normalized score of one module
type ModuleScore struct {
	Module     string `json:"module"`
	Points     int    `json:"points"`
	MaxPoints  int    `json:"max_points"`
	Percentage int    `json:"percentage"`
}

// Scored reports whether the module has attainable points and therefore
// takes part in the composite index
func (m ModuleScore) Scored() bool {
	return m.MaxPoints > 0
}

// Band is the performance band of a composite index
type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

// AssessmentResult is created once per completed assessment and never mutated
type AssessmentResult struct {
	ID             string        `json:"id"`
	CandidateID    string        `json:"candidate_id"`
	CohortID       string        `json:"cohort_id,omitempty"`
	Modules        []ModuleScore `json:"modules"`
	CompositeIndex int           `json:"composite_index"`
	Band           Band          `json:"band"`
	Strategy       string        `json:"strategy"`
	CompletedAt    time.Time     `json:"completed_at"`
}

// Module returns the score of the named module
func (r AssessmentResult) Module(name string) (ModuleScore, bool) {
	for _, m := range r.Modules {
		if m.Module == name {
			return m, true
		}
	}
	return ModuleScore{}, false
}

// Decision is a reviewer's verdict on an assessment
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
	DecisionPending  Decision = "pending"
)

var decisionAliases = map[string]Decision{
	"approved":  DecisionApproved,
	"aprobado":  DecisionApproved,
	"rejected":  DecisionRejected,
	"rechazado": DecisionRejected,
	"pending":   DecisionPending,
	"pendiente": DecisionPending,
}

// ParseDecision accepts English and Spanish labels, case-insensitively
func ParseDecision(s string) (Decision, bool) {
	d, ok := decisionAliases[strings.ToLower(strings.TrimSpace(s))]
	return d, ok
}

// ManualEvaluation is an append-only annotation attached to a result by a
// human reviewer. The latest one is the current decision.
type ManualEvaluation struct {
	ID        string    `json:"id"`
	ResultID  string    `json:"result_id"`
	Decision  Decision  `json:"decision"`
	Reviewer  string    `json:"reviewer"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

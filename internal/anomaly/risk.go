package anomaly

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	apperrors "github.com/ZanzyTHEbar/interview-scoring-engine/internal/errors"
)

// Severity of a flagged anomaly
type Severity string

const (
	SeverityHigh   Severity = "High"
	SeverityMedium Severity = "Medium"
	SeverityLow    Severity = "Low"
)

// RiskLevel of a candidate's anomaly set
type RiskLevel string

const (
	RiskHigh   RiskLevel = "High"
	RiskMedium RiskLevel = "Medium"
	RiskLow    RiskLevel = "Low"
)

const (
	highRiskMin   = 10
	mediumRiskMin = 5

	// DefaultCategory is used for records without a category
	DefaultCategory = "General"
)

var severityWeights = map[Severity]int{
	SeverityHigh:   3,
	SeverityMedium: 2,
	SeverityLow:    1,
}

var severityAliases = map[string]Severity{
	"high":   SeverityHigh,
	"alta":   SeverityHigh,
	"alto":   SeverityHigh,
	"medium": SeverityMedium,
	"media":  SeverityMedium,
	"medio":  SeverityMedium,
	"low":    SeverityLow,
	"baja":   SeverityLow,
	"bajo":   SeverityLow,
}

// ParseSeverity accepts English and Spanish labels, case-insensitively
func ParseSeverity(s string) (Severity, bool) {
	sev, ok := severityAliases[strings.ToLower(strings.TrimSpace(s))]
	return sev, ok
}

// Weight is the severity's contribution to the risk score
func (s Severity) Weight() int {
	if w, ok := severityWeights[s]; ok {
		return w
	}
	return severityWeights[SeverityLow]
}

// Record is one anomaly flagged for a candidate. Severity keeps the label as
// received so unrecognized values stay visible.
type Record struct {
	ID             string   `json:"id,omitempty"`
	Type           string   `json:"type"`
	Severity       Severity `json:"severity"`
	Category       string   `json:"category,omitempty"`
	Confidence     float64  `json:"confidence"`
	Description    string   `json:"description,omitempty"`
	Recommendation string   `json:"recommendation,omitempty"`
}

// Assessment is the derived risk of a set of records. BySeverity and
// ByCategory are for reporting only.
type Assessment struct {
	TotalRecords int              `json:"total_records"`
	TotalScore   int              `json:"total_score"`
	RiskLevel    RiskLevel        `json:"risk_level"`
	BySeverity   map[Severity]int `json:"by_severity"`
	ByCategory   map[string]int   `json:"by_category"`
	Unrecognized int              `json:"unrecognized_severities"`
}

// Validate checks confidence bounds. Severity is not validated: unknown
// labels are scored as Low.
func Validate(records []Record) error {
	details := make(map[string]string)
	for i, r := range records {
		if math.IsNaN(r.Confidence) || r.Confidence < 0 || r.Confidence > 100 {
			details[fmt.Sprintf("anomalies[%d].confidence", i)] = "must be between 0 and 100"
		}
	}
	if len(details) > 0 {
		return apperrors.NewValidationErrorWithMap(details)
	}
	return nil
}

// Aggregate sums severity weights into a risk level: 10 or more is High, 5
// or more Medium, anything less Low. No records is a Low risk, not an error.
func Aggregate(records []Record) Assessment {
	a := Assessment{
		TotalRecords: len(records),
		BySeverity:   map[Severity]int{SeverityHigh: 0, SeverityMedium: 0, SeverityLow: 0},
		ByCategory:   make(map[string]int),
	}

	for _, r := range records {
		sev, ok := ParseSeverity(string(r.Severity))
		if !ok {
			sev = SeverityLow
			a.Unrecognized++
			slog.Warn("Unrecognized anomaly severity scored as Low",
				"severity", string(r.Severity),
				"type", r.Type,
				"id", r.ID)
		}
		a.TotalScore += sev.Weight()
		a.BySeverity[sev]++

		category := strings.TrimSpace(r.Category)
		if category == "" {
			category = DefaultCategory
		}
		a.ByCategory[category]++
	}

	a.RiskLevel = riskFor(a.TotalScore)
	return a
}

func riskFor(total int) RiskLevel {
	switch {
	case total >= highRiskMin:
		return RiskHigh
	case total >= mediumRiskMin:
		return RiskMedium
	default:
		return RiskLow
	}
}

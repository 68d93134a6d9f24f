package database

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/anomaly"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/scoring"
)

const (
	stmtInsertResult     = "insert_result"
	stmtGetResult        = "get_result"
	stmtCohortResults    = "cohort_results"
	stmtInsertEvaluation = "insert_evaluation"
	stmtListEvaluations  = "list_evaluations"
	stmtInsertAnomaly    = "insert_anomaly"
	stmtListAnomalies    = "list_anomalies"
)

var statements = map[string]string{
	stmtInsertResult: `INSERT INTO assessment_results (
			id, candidate_id, cohort_id, composite_index, band, strategy, modules, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,

	stmtGetResult: `SELECT id, candidate_id, cohort_id, composite_index, band, strategy, modules, completed_at
		FROM assessment_results WHERE id = ?`,

	stmtCohortResults: `SELECT id, candidate_id, cohort_id, composite_index, band, strategy, modules, completed_at
		FROM assessment_results WHERE cohort_id = ? ORDER BY completed_at ASC, id ASC`,

	stmtInsertEvaluation: `INSERT INTO manual_evaluations (id, result_id, decision, reviewer, comment, created_at, seq)
		VALUES (?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM manual_evaluations WHERE result_id = ?))`,

	stmtListEvaluations: `SELECT id, result_id, decision, reviewer, comment, created_at
		FROM manual_evaluations WHERE result_id = ? ORDER BY seq ASC`,

	stmtInsertAnomaly: `INSERT INTO anomaly_records (
			id, result_id, type, severity, category, confidence, description, recommendation, created_at, seq
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM anomaly_records WHERE result_id = ?))`,

	stmtListAnomalies: `SELECT id, type, severity, category, confidence, description, recommendation
		FROM anomaly_records WHERE result_id = ? ORDER BY seq ASC`,
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanResult(row rowScanner) (scoring.AssessmentResult, error) {
	var (
		r       scoring.AssessmentResult
		band    string
		modules string
	)
	if err := row.Scan(&r.ID, &r.CandidateID, &r.CohortID, &r.CompositeIndex, &band, &r.Strategy, &modules, &r.CompletedAt); err != nil {
		return scoring.AssessmentResult{}, err
	}
	r.Band = scoring.Band(band)
	r.CompletedAt = r.CompletedAt.UTC()

	if err := json.Unmarshal([]byte(modules), &r.Modules); err != nil {
		return scoring.AssessmentResult{}, fmt.Errorf("corrupt module scores for result %s: %w", r.ID, err)
	}
	return r, nil
}

func encodeModules(modules []scoring.ModuleScore) (string, error) {
	if modules == nil {
		modules = []scoring.ModuleScore{}
	}
	data, err := json.Marshal(modules)
	if err != nil {
		return "", fmt.Errorf("failed to encode module scores: %w", err)
	}
	return string(data), nil
}

func scanAnomaly(row rowScanner) (anomaly.Record, error) {
	var (
		rec      anomaly.Record
		severity string
	)
	err := row.Scan(&rec.ID, &rec.Type, &severity, &rec.Category, &rec.Confidence, &rec.Description, &rec.Recommendation)
	rec.Severity = anomaly.Severity(severity)
	return rec, err
}

// NewManualEvaluation creates a decision annotation with a generated id
func NewManualEvaluation(resultID string, decision scoring.Decision, reviewer, comment string) scoring.ManualEvaluation {
	return scoring.ManualEvaluation{
		ID:        uuid.New().String(),
		ResultID:  resultID,
		Decision:  decision,
		Reviewer:  reviewer,
		Comment:   comment,
		CreatedAt: time.Now().UTC(),
	}
}

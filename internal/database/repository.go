package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/anomaly"
	apperrors "github.com/ZanzyTHEbar/interview-scoring-engine/internal/errors"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/scoring"
)

// Repository persists assessment results and their append-only annotations
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// SaveResult stores a computed result. Results are immutable: saving an
// existing id fails.
func (r *Repository) SaveResult(ctx context.Context, result scoring.AssessmentResult) error {
	modules, err := encodeModules(result.Modules)
	if err != nil {
		return err
	}

	stmt, err := r.db.GetPreparedStatement(stmtInsertResult)
	if err != nil {
		return err
	}

	_, err = stmt.ExecContext(ctx,
		result.ID, result.CandidateID, result.CohortID, result.CompositeIndex,
		string(result.Band), result.Strategy, modules, result.CompletedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}

	return nil
}

// GetResult loads a result by id
func (r *Repository) GetResult(ctx context.Context, id string) (scoring.AssessmentResult, error) {
	stmt, err := r.db.GetPreparedStatement(stmtGetResult)
	if err != nil {
		return scoring.AssessmentResult{}, err
	}

	result, err := scanResult(stmt.QueryRowContext(ctx, id))
	if errors.Is(err, sql.ErrNoRows) {
		return scoring.AssessmentResult{}, apperrors.NewNotFoundError("assessment result", id)
	}
	if err != nil {
		return scoring.AssessmentResult{}, fmt.Errorf("failed to load result: %w", err)
	}

	return result, nil
}

// CohortResults loads a cohort's results ordered by completion time. An
// unknown cohort is empty.
func (r *Repository) CohortResults(ctx context.Context, cohortID string) ([]scoring.AssessmentResult, error) {
	stmt, err := r.db.GetPreparedStatement(stmtCohortResults)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, cohortID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cohort: %w", err)
	}
	defer apperrors.SafeClose(rows, "cohort rows")

	results := make([]scoring.AssessmentResult, 0)
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cohort: %w", err)
	}

	return results, nil
}

func (r *Repository) ensureResult(ctx context.Context, id string) error {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM assessment_results WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NewNotFoundError("assessment result", id)
	}
	if err != nil {
		return fmt.Errorf("failed to look up result: %w", err)
	}
	return nil
}

// AppendDecision adds a reviewer decision. Earlier decisions are kept; the
// latest one is current.
func (r *Repository) AppendDecision(ctx context.Context, ev scoring.ManualEvaluation) error {
	if err := r.ensureResult(ctx, ev.ResultID); err != nil {
		return err
	}

	stmt, err := r.db.GetPreparedStatement(stmtInsertEvaluation)
	if err != nil {
		return err
	}

	_, err = stmt.ExecContext(ctx,
		ev.ID, ev.ResultID, string(ev.Decision), ev.Reviewer, ev.Comment, ev.CreatedAt.UTC(), ev.ResultID)
	if err != nil {
		return fmt.Errorf("failed to append decision: %w", err)
	}

	return nil
}

// Decisions lists a result's decisions, oldest first
func (r *Repository) Decisions(ctx context.Context, resultID string) ([]scoring.ManualEvaluation, error) {
	if err := r.ensureResult(ctx, resultID); err != nil {
		return nil, err
	}

	stmt, err := r.db.GetPreparedStatement(stmtListEvaluations)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, resultID)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer apperrors.SafeClose(rows, "decision rows")

	decisions := make([]scoring.ManualEvaluation, 0)
	for rows.Next() {
		var (
			ev       scoring.ManualEvaluation
			decision string
		)
		if err := rows.Scan(&ev.ID, &ev.ResultID, &decision, &ev.Reviewer, &ev.Comment, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		ev.Decision = scoring.Decision(decision)
		ev.CreatedAt = ev.CreatedAt.UTC()
		decisions = append(decisions, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read decisions: %w", err)
	}

	return decisions, nil
}

// LatestDecision returns the current decision, or nil when none was made
func (r *Repository) LatestDecision(ctx context.Context, resultID string) (*scoring.ManualEvaluation, error) {
	decisions, err := r.Decisions(ctx, resultID)
	if err != nil {
		return nil, err
	}
	if len(decisions) == 0 {
		return nil, nil
	}
	latest := decisions[len(decisions)-1]
	return &latest, nil
}

// AddAnomalies stores flagged anomalies for a result in one transaction and
// returns them with their ids
func (r *Repository) AddAnomalies(ctx context.Context, resultID string, records []anomaly.Record) ([]anomaly.Record, error) {
	if err := r.ensureResult(ctx, resultID); err != nil {
		return nil, err
	}

	stmt, err := r.db.GetPreparedStatement(stmtInsertAnomaly)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	txStmt := tx.StmtContext(ctx, stmt)
	now := time.Now().UTC()

	stored := make([]anomaly.Record, 0, len(records))
	for _, rec := range records {
		if rec.ID == "" {
			rec.ID = uuid.New().String()
		}
		_, err := txStmt.ExecContext(ctx,
			rec.ID, resultID, rec.Type, string(rec.Severity), rec.Category, rec.Confidence,
			rec.Description, rec.Recommendation, now, resultID)
		if err != nil {
			return nil, fmt.Errorf("failed to store anomaly: %w", err)
		}
		stored = append(stored, rec)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit anomalies: %w", err)
	}

	return stored, nil
}

// Anomalies lists the anomalies flagged for a result
func (r *Repository) Anomalies(ctx context.Context, resultID string) ([]anomaly.Record, error) {
	if err := r.ensureResult(ctx, resultID); err != nil {
		return nil, err
	}

	stmt, err := r.db.GetPreparedStatement(stmtListAnomalies)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, resultID)
	if err != nil {
		return nil, fmt.Errorf("failed to query anomalies: %w", err)
	}
	defer apperrors.SafeClose(rows, "anomaly rows")

	records := make([]anomaly.Record, 0)
	for rows.Next() {
		rec, err := scanAnomaly(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan anomaly: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read anomalies: %w", err)
	}

	return records, nil
}

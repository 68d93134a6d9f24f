package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/anomaly"
	apperrors "github.com/ZanzyTHEbar/interview-scoring-engine/internal/errors"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/scoring"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := NewDB(context.Background(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db)
}

func testResult(id, cohort string, index int, at time.Time) scoring.AssessmentResult {
	return scoring.AssessmentResult{
		ID:          id,
		CandidateID: "cand-" + id,
		CohortID:    cohort,
		Modules: []scoring.ModuleScore{
			{Module: "Logic", Points: 6, MaxPoints: 8, Percentage: 75},
			{Module: "Personality", Points: 1, MaxPoints: 2, Percentage: 50},
		},
		CompositeIndex: index,
		Band:           scoring.BandForIndex(index),
		Strategy:       scoring.StrategyMean,
		CompletedAt:    at,
	}
}

func TestSaveAndGetResult(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	at := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	want := testResult("r1", "cohort-a", 63, at)
	require.NoError(t, repo.SaveResult(ctx, want))

	got, err := repo.GetResult(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.CandidateID, got.CandidateID)
	assert.Equal(t, want.Modules, got.Modules)
	assert.Equal(t, want.CompositeIndex, got.CompositeIndex)
	assert.Equal(t, scoring.BandMedium, got.Band)
	assert.True(t, at.Equal(got.CompletedAt))

	err = repo.SaveResult(ctx, want)
	assert.Error(t, err, "results are immutable")
}

func TestGetResultNotFound(t *testing.T) {
	_, err := newTestRepository(t).GetResult(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCohortResultsOrderedByCompletion(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveResult(ctx, testResult("late", "c", 80, base.Add(2*time.Hour))))
	require.NoError(t, repo.SaveResult(ctx, testResult("early", "c", 60, base)))
	require.NoError(t, repo.SaveResult(ctx, testResult("other", "d", 70, base)))

	results, err := repo.CohortResults(ctx, "c")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "early", results[0].ID)
	assert.Equal(t, "late", results[1].ID)

	empty, err := repo.CohortResults(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDecisionsAreAppendOnly(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	require.NoError(t, repo.SaveResult(ctx, testResult("r1", "c", 63, time.Now().UTC())))

	latest, err := repo.LatestDecision(ctx, "r1")
	require.NoError(t, err)
	assert.Nil(t, latest)

	require.NoError(t, repo.AppendDecision(ctx, NewManualEvaluation("r1", scoring.DecisionPending, "ana", "")))
	require.NoError(t, repo.AppendDecision(ctx, NewManualEvaluation("r1", scoring.DecisionApproved, "luis", "solid")))

	decisions, err := repo.Decisions(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, decisions, 2)
	assert.Equal(t, scoring.DecisionPending, decisions[0].Decision)
	assert.Equal(t, scoring.DecisionApproved, decisions[1].Decision)

	latest, err = repo.LatestDecision(ctx, "r1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "luis", latest.Reviewer)
	assert.Equal(t, "solid", latest.Comment)

	result, err := repo.GetResult(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 63, result.CompositeIndex, "decisions never touch the scores")
}

func TestAppendDecisionUnknownResult(t *testing.T) {
	err := newTestRepository(t).AppendDecision(context.Background(),
		NewManualEvaluation("missing", scoring.DecisionApproved, "ana", ""))
	assert.True(t, apperrors.IsNotFound(err))
}

func TestAnomalies(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	require.NoError(t, repo.SaveResult(ctx, testResult("r1", "c", 63, time.Now().UTC())))

	stored, err := repo.AddAnomalies(ctx, "r1", []anomaly.Record{
		{Type: "timing", Severity: anomaly.SeverityHigh, Category: "Behaviour", Confidence: 90},
		{Type: "copy", Severity: "Alta", Confidence: 75, Description: "identical answers"},
	})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.NotEmpty(t, stored[0].ID)

	records, err := repo.Anomalies(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "timing", records[0].Type)
	assert.Equal(t, anomaly.Severity("Alta"), records[1].Severity)
	assert.Equal(t, "identical answers", records[1].Description)

	_, err = repo.Anomalies(ctx, "missing")
	assert.True(t, apperrors.IsNotFound(err))
}

package engine

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/cache"
	apperrors "github.com/ZanzyTHEbar/interview-scoring-engine/internal/errors"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/scoring"
)

const (
	cohortRankingNamespace = "cohort-ranking"

	DefaultRankingLimit = 20
	MaxRankingLimit     = 100
)

// RankingEntry is one candidate's standing within a cohort
type RankingEntry struct {
	Rank           int          `json:"rank"`
	ResultID       string       `json:"result_id"`
	CandidateID    string       `json:"candidate_id"`
	CompositeIndex int          `json:"composite_index"`
	Band           scoring.Band `json:"band"`
	// PercentileRank is the share of the cohort scoring at or below this entry
	PercentileRank float64   `json:"percentile_rank"`
	CompletedAt    time.Time `json:"completed_at"`
}

// Ranking lists a cohort's top candidates
type Ranking struct {
	CohortID string         `json:"cohort_id"`
	Total    int            `json:"total"`
	Entries  []RankingEntry `json:"entries"`
}

// RankResults orders results by composite index, best first. Equal indices
// share a rank and keep completion order; the next rank skips accordingly.
func RankResults(results []scoring.AssessmentResult) []RankingEntry {
	ordered := append([]scoring.AssessmentResult(nil), results...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CompositeIndex > ordered[j].CompositeIndex
	})

	n := len(ordered)
	entries := make([]RankingEntry, 0, n)
	for i, r := range ordered {
		rank := i + 1
		if i > 0 && r.CompositeIndex == ordered[i-1].CompositeIndex {
			rank = entries[i-1].Rank
		}

		entries = append(entries, RankingEntry{
			Rank:           rank,
			ResultID:       r.ID,
			CandidateID:    r.CandidateID,
			CompositeIndex: r.CompositeIndex,
			Band:           r.Band,
			PercentileRank: percentileRank(ordered, r.CompositeIndex),
			CompletedAt:    r.CompletedAt,
		})
	}
	return entries
}

// percentileRank expects results sorted by descending index
func percentileRank(sorted []scoring.AssessmentResult, index int) float64 {
	// first position whose index is <= index
	at := sort.Search(len(sorted), func(i int) bool { return sorted[i].CompositeIndex <= index })
	atOrBelow := len(sorted) - at
	return float64(atOrBelow) / float64(len(sorted)) * 100
}

// CohortRanking returns the top limit candidates of a cohort. limit <= 0
// selects the default.
func (s *Service) CohortRanking(ctx context.Context, cohortID string, limit int) (ranking Ranking, err error) {
	if cohortID == "" {
		return Ranking{}, apperrors.NewValidationError("cohort id is required")
	}
	if limit <= 0 {
		limit = DefaultRankingLimit
	}
	if limit > MaxRankingLimit {
		return Ranking{}, apperrors.NewValidationError("limit must not exceed "+strconv.Itoa(MaxRankingLimit), limit)
	}

	start := time.Now()
	defer func() { s.metrics.RecordComputation("cohort_ranking", time.Since(start), err) }()

	key := cache.Key(cohortRankingNamespace, cohortID)
	var all Ranking
	if s.cache != nil && cache.GetJSON(ctx, s.cache, key, &all) {
		s.metrics.IncrementCacheHit()
	} else {
		if s.cache != nil {
			s.metrics.IncrementCacheMiss()
		}
		gen := s.generation(cohortID)
		results, err := s.store.CohortResults(ctx, cohortID)
		if err != nil {
			return Ranking{}, s.fetchFailed(sourceCohort, err)
		}
		all = Ranking{CohortID: cohortID, Total: len(results), Entries: RankResults(results)}
		s.cacheIfCurrent(ctx, cohortID, gen, key, all)
	}

	if len(all.Entries) > limit {
		all.Entries = all.Entries[:limit]
	}
	s.logger.CohortLogger("cohort_ranking", cohortID, all.Total, time.Since(start), false)
	return all, nil
}

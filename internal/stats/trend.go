package stats

import (
	"sort"
	"time"

	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/scoring"
)

// Direction of a cohort's composite indices over time
type Direction string

const (
	DirectionRising  Direction = "rising"
	DirectionFalling Direction = "falling"
	DirectionStable  Direction = "stable"
)

const trendSlopeThreshold = 0.1

// TrendPoint is one composite index at its completion time
type TrendPoint struct {
	At    time.Time `json:"at"`
	Index float64   `json:"index"`
}

// Trend is the least-squares slope of the indices per assessment
type Trend struct {
	Slope     float64   `json:"slope"`
	Direction Direction `json:"direction"`
	Points    int       `json:"points"`
}

// ComputeTrend orders the points by time and fits a line over their
// positions. Fewer than two points is a stable trend with zero slope.
func ComputeTrend(points []TrendPoint) Trend {
	n := len(points)
	if n < 2 {
		return Trend{Direction: DirectionStable, Points: n}
	}

	ordered := append([]TrendPoint(nil), points...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].At.Before(ordered[j].At)
	})

	var sumX, sumY, sumXY, sumXX float64
	for i, p := range ordered {
		x := float64(i)
		sumX += x
		sumY += p.Index
		sumXY += x * p.Index
		sumXX += x * x
	}

	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	slope := 0.0
	if denom != 0 {
		slope = (fn*sumXY - sumX*sumY) / denom
	}

	return Trend{Slope: slope, Direction: directionFor(slope), Points: n}
}

func directionFor(slope float64) Direction {
	switch {
	case slope > trendSlopeThreshold:
		return DirectionRising
	case slope < -trendSlopeThreshold:
		return DirectionFalling
	default:
		return DirectionStable
	}
}

// TrendFromResults fits the trend of the results' composite indices
func TrendFromResults(results []scoring.AssessmentResult) Trend {
	points := make([]TrendPoint, 0, len(results))
	for _, r := range results {
		points = append(points, TrendPoint{At: r.CompletedAt, Index: float64(r.CompositeIndex)})
	}
	return ComputeTrend(points)
}

// ModuleAverage is the mean percentage of one module across a cohort
type ModuleAverage struct {
	Module  string  `json:"module"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// ModuleAverages averages each module's percentage over the results that
// scored it, highest average first. Unscored modules are skipped.
func ModuleAverages(results []scoring.AssessmentResult) []ModuleAverage {
	type acc struct {
		sum   float64
		count int
	}
	byModule := make(map[string]*acc)
	for _, r := range results {
		for _, m := range r.Modules {
			if !m.Scored() {
				continue
			}
			a, ok := byModule[m.Module]
			if !ok {
				a = &acc{}
				byModule[m.Module] = a
			}
			a.sum += float64(m.Percentage)
			a.count++
		}
	}

	out := make([]ModuleAverage, 0, len(byModule))
	for name, a := range byModule {
		out = append(out, ModuleAverage{Module: name, Average: a.sum / float64(a.count), Count: a.count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Average != out[j].Average {
			return out[i].Average > out[j].Average
		}
		return out[i].Module < out[j].Module
	})
	return out
}

// CompositeIndices extracts the population sample of a cohort
func CompositeIndices(results []scoring.AssessmentResult) []float64 {
	out := make([]float64, len(results))
	for i, r := range results {
		out[i] = float64(r.CompositeIndex)
	}
	return out
}

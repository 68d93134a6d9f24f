package scoring

import (
	"fmt"
	"math"
	"sort"

	apperrors "github.com/ZanzyTHEbar/interview-scoring-engine/internal/errors"
)

// CompositeStrategy turns module scores into the composite index (IPG).
// Implementations only consider Scored modules and return 0..100.
type CompositeStrategy interface {
	Name() string
	Composite(modules []ModuleScore) int
}

const (
	StrategyMean     = "mean"
	StrategyWeighted = "weighted"
	StrategyMedian   = "median"
)

func scoredPercentages(modules []ModuleScore) []float64 {
	out := make([]float64, 0, len(modules))
	for _, m := range modules {
		if m.Scored() {
			out = append(out, float64(m.Percentage))
		}
	}
	return out
}

func roundIndex(v float64) int {
	return clampPercent(int(math.Round(v)))
}

// MeanStrategy is the unweighted arithmetic mean of module percentages
type MeanStrategy struct{}

func (MeanStrategy) Name() string { return StrategyMean }

func (MeanStrategy) Composite(modules []ModuleScore) int {
	ps := scoredPercentages(modules)
	if len(ps) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range ps {
		sum += p
	}
	return roundIndex(sum / float64(len(ps)))
}

// WeightedStrategy weighs each module; modules without an explicit weight
// count with weight 1, a weight of 0 drops the module.
type WeightedStrategy struct {
	Weights map[string]float64
}

func (WeightedStrategy) Name() string { return StrategyWeighted }

func (w WeightedStrategy) Composite(modules []ModuleScore) int {
	var sum, total float64
	for _, m := range modules {
		if !m.Scored() {
			continue
		}
		weight, ok := w.Weights[m.Module]
		if !ok {
			weight = 1
		}
		if weight <= 0 {
			continue
		}
		sum += weight * float64(m.Percentage)
		total += weight
	}
	if total == 0 {
		return 0
	}
	return roundIndex(sum / total)
}

// MedianStrategy is robust against a single outlying module
type MedianStrategy struct{}

func (MedianStrategy) Name() string { return StrategyMedian }

func (MedianStrategy) Composite(modules []ModuleScore) int {
	ps := scoredPercentages(modules)
	if len(ps) == 0 {
		return 0
	}
	sort.Float64s(ps)
	mid := len(ps) / 2
	if len(ps)%2 == 1 {
		return roundIndex(ps[mid])
	}
	return roundIndex(0.5 * (ps[mid-1] + ps[mid]))
}

// StrategyByName resolves a configured strategy. An empty name selects the mean.
func StrategyByName(name string, weights map[string]float64) (CompositeStrategy, error) {
	switch name {
	case "", StrategyMean:
		return MeanStrategy{}, nil
	case StrategyWeighted:
		for module, weight := range weights {
			if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
				return nil, apperrors.NewConfigurationError(fmt.Sprintf("invalid weight %v for module %q", weight, module), nil)
			}
		}
		return WeightedStrategy{Weights: weights}, nil
	case StrategyMedian:
		return MedianStrategy{}, nil
	default:
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("unknown composite strategy %q", name), nil)
	}
}

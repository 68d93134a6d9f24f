package stats

import (
	"math"
	"sort"

	mstats "github.com/montanaflynn/stats"
)

// Variability bands the spread of a cohort by its standard deviation
type Variability string

const (
	VariabilityLow      Variability = "Low"
	VariabilityModerate Variability = "Moderate"
	VariabilityHigh     Variability = "High"
)

const (
	lowVariabilityMax      = 10.0
	moderateVariabilityMax = 20.0

	// MinSufficientSample is the smallest cohort whose spread is meaningful
	MinSufficientSample = 2
)

// Percentiles are interpolated at rank (p/100)*(N-1) of the sorted sample
type Percentiles struct {
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P90 float64 `json:"p90"`
}

// Statistics summarizes a population of composite indices. An empty or
// singleton population is a valid result with SufficientData unset.
type Statistics struct {
	Count          int         `json:"count"`
	Mean           float64     `json:"mean"`
	StdDev         float64     `json:"std_dev"`
	Median         float64     `json:"median"`
	Min            float64     `json:"min"`
	Max            float64     `json:"max"`
	Percentiles    Percentiles `json:"percentiles"`
	Variability    Variability `json:"variability"`
	SufficientData bool        `json:"sufficient_data"`
}

// Compute calculates population statistics. The standard deviation divides
// by N: the input is the whole cohort, not a sample of it.
func Compute(indices []float64) Statistics {
	n := len(indices)
	if n == 0 {
		return Statistics{Variability: VariabilityLow}
	}

	sorted := append([]float64(nil), indices...)
	sort.Float64s(sorted)
	data := mstats.Float64Data(sorted)

	// the library only errors on empty input, handled above
	mean, _ := mstats.Mean(data)
	stdDev, _ := mstats.StandardDeviationPopulation(data)
	median, _ := mstats.Median(data)
	minimum, _ := mstats.Min(data)
	maximum, _ := mstats.Max(data)

	return Statistics{
		Count:  n,
		Mean:   mean,
		StdDev: stdDev,
		Median: median,
		Min:    minimum,
		Max:    maximum,
		Percentiles: Percentiles{
			P25: percentileSorted(sorted, 25),
			P50: percentileSorted(sorted, 50),
			P75: percentileSorted(sorted, 75),
			P90: percentileSorted(sorted, 90),
		},
		Variability:    ClassifyVariability(stdDev),
		SufficientData: n >= MinSufficientSample,
	}
}

// ComputeInts is Compute over integer composite indices
func ComputeInts(indices []int) Statistics {
	fs := make([]float64, len(indices))
	for i, v := range indices {
		fs[i] = float64(v)
	}
	return Compute(fs)
}

// Percentile interpolates linearly between the closest ranks. It returns 0
// for an empty sample.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return percentileSorted(sorted, p)
}

func percentileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	rank := clip(p, 0, 100) / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// ClassifyVariability bands a standard deviation: up to 10 is low, up to 20
// moderate, above that high
func ClassifyVariability(stdDev float64) Variability {
	switch {
	case stdDev <= lowVariabilityMax:
		return VariabilityLow
	case stdDev <= moderateVariabilityMax:
		return VariabilityModerate
	default:
		return VariabilityHigh
	}
}

func clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

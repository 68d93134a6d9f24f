package scoring

import (
	"fmt"

	apperrors "github.com/ZanzyTHEbar/interview-scoring-engine/internal/errors"
)

// Classification is the outcome of the automatic interview
type Classification string

const (
	// ClassificationApto means the candidate proceeds to the next phase
	ClassificationApto Classification = "APTO"
	// ClassificationRevision means the interview needs manual review
	ClassificationRevision Classification = "REVISION"
)

const (
	// AptoThreshold is a fixed policy; templates cannot override it
	AptoThreshold = 12
	// MaxAutomaticTotal is the best total of the standard eight-question battery
	MaxAutomaticTotal = 16

	highBandThreshold   = 80
	mediumBandThreshold = 60
)

func classify(total int) Classification {
	if total >= AptoThreshold {
		return ClassificationApto
	}
	return ClassificationRevision
}

// ClassifyAutomaticTotal classifies a total of the standard battery, 0..16.
// Reviewer totals built from per-question 0..2 scores use the same rule.
func ClassifyAutomaticTotal(total int) (Classification, error) {
	return ClassifyTotal(total, MaxAutomaticTotal)
}

// ClassifyTotal classifies a total in 0..maxTotal. The threshold does not
// scale with the battery.
func ClassifyTotal(total, maxTotal int) (Classification, error) {
	if total < 0 || total > maxTotal {
		return "", apperrors.NewValidationError(fmt.Sprintf("total out of range 0..%d", maxTotal), total)
	}
	return classify(total), nil
}

// BandForIndex maps a composite index to its performance band
func BandForIndex(index int) Band {
	switch {
	case index >= highBandThreshold:
		return BandHigh
	case index >= mediumBandThreshold:
		return BandMedium
	default:
		return BandLow
	}
}

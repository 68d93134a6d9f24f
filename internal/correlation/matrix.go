package correlation

import (
	"fmt"
	"math"
	"sort"
	"strings"

	apperrors "github.com/ZanzyTHEbar/interview-scoring-engine/internal/errors"
)

// Strength is the verbal reading of a coefficient's magnitude
type Strength string

const (
	StrengthVeryStrong Strength = "Very strong"
	StrengthStrong     Strength = "Strong"
	StrengthModerate   Strength = "Moderate"
	StrengthWeak       Strength = "Weak"
	StrengthVeryWeak   Strength = "Very weak"
)

const (
	// SignificanceThreshold is the minimum |r| of a significant pair
	SignificanceThreshold = 0.4
	// MaxSignificantPairs caps the significant-pairs report
	MaxSignificantPairs = 5
)

// Entry is the coefficient of an unordered module pair. SampleSize is the
// number of observations behind it, 0 when unknown.
type Entry struct {
	ModuleA     string  `json:"module_a" validate:"required"`
	ModuleB     string  `json:"module_b" validate:"required"`
	Coefficient float64 `json:"coefficient"`
	SampleSize  int     `json:"sample_size,omitempty" validate:"gte=0"`
}

type pairKey struct{ a, b string }

func keyOf(a, b string) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a, b}
}

// Pair is a classified coefficient
type Pair struct {
	ModuleA     string   `json:"module_a"`
	ModuleB     string   `json:"module_b"`
	Coefficient float64  `json:"coefficient"`
	Strength    Strength `json:"strength"`
	SampleSize  int      `json:"sample_size,omitempty"`
}

// Matrix is square over Modules and symmetric. Known marks cells backed by
// an entry; an unknown off-diagonal cell holds 0 without being a computed zero.
type Matrix struct {
	Modules     []string    `json:"modules"`
	Values      [][]float64 `json:"values"`
	Known       [][]bool    `json:"known"`
	SampleSizes [][]int     `json:"sample_sizes"`
}

// Report is a matrix plus its significant pairs
type Report struct {
	Matrix      Matrix `json:"matrix"`
	Significant []Pair `json:"significant"`
}

// Value returns the coefficient of a module pair and whether it was observed
func (m Matrix) Value(a, b string) (float64, bool) {
	i, j := m.index(a), m.index(b)
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Values[i][j], m.Known[i][j]
}

func (m Matrix) index(module string) int {
	for i, name := range m.Modules {
		if name == module {
			return i
		}
	}
	return -1
}

// Classify maps |r| to a strength band
func Classify(r float64) Strength {
	abs := math.Abs(r)
	switch {
	case abs >= 0.8:
		return StrengthVeryStrong
	case abs >= 0.6:
		return StrengthStrong
	case abs >= 0.4:
		return StrengthModerate
	case abs >= 0.2:
		return StrengthWeak
	default:
		return StrengthVeryWeak
	}
}

// normalize validates the entries and folds them into one coefficient per
// unordered pair; a later entry for the same pair replaces an earlier one.
// Self-pairs are dropped since the diagonal is fixed.
func normalize(entries []Entry) (map[pairKey]Entry, []string, error) {
	byPair := make(map[pairKey]Entry, len(entries))
	seen := make([]string, 0)
	known := make(map[string]struct{})
	note := func(name string) {
		if _, ok := known[name]; !ok {
			known[name] = struct{}{}
			seen = append(seen, name)
		}
	}

	for i, e := range entries {
		a, b := strings.TrimSpace(e.ModuleA), strings.TrimSpace(e.ModuleB)
		if a == "" || b == "" {
			return nil, nil, apperrors.NewValidationError("correlation entry without module", i)
		}
		if math.IsNaN(e.Coefficient) || e.Coefficient < -1 || e.Coefficient > 1 {
			return nil, nil, apperrors.NewValidationError("coefficient must be within [-1, 1]", fmt.Sprintf("%s_%s", a, b))
		}
		if e.SampleSize < 0 {
			return nil, nil, apperrors.NewValidationError("sample size cannot be negative", fmt.Sprintf("%s_%s", a, b))
		}
		note(a)
		note(b)
		if a == b {
			continue
		}
		byPair[keyOf(a, b)] = Entry{ModuleA: a, ModuleB: b, Coefficient: e.Coefficient, SampleSize: e.SampleSize}
	}
	return byPair, seen, nil
}

// Build creates the matrix over modules, or over the modules the entries
// mention in order of first appearance when modules is empty. Pairs without an
// entry are 0 and marked unknown. The diagonal is always 1.
func Build(entries []Entry, modules []string) (Matrix, error) {
	byPair, seen, err := normalize(entries)
	if err != nil {
		return Matrix{}, err
	}

	names := dedupe(modules)
	if len(names) == 0 {
		names = seen
	}

	n := len(names)
	m := Matrix{
		Modules:     names,
		Values:      make([][]float64, n),
		Known:       make([][]bool, n),
		SampleSizes: make([][]int, n),
	}
	for i := range names {
		m.Values[i] = make([]float64, n)
		m.Known[i] = make([]bool, n)
		m.SampleSizes[i] = make([]int, n)
	}

	for i := 0; i < n; i++ {
		m.Values[i][i] = 1
		m.Known[i][i] = true
		for j := i + 1; j < n; j++ {
			e, ok := byPair[keyOf(names[i], names[j])]
			if !ok {
				continue
			}
			m.Values[i][j], m.Values[j][i] = e.Coefficient, e.Coefficient
			m.Known[i][j], m.Known[j][i] = true, true
			m.SampleSizes[i][j], m.SampleSizes[j][i] = e.SampleSize, e.SampleSize
		}
	}

	return m, nil
}

// Significant lists the pairs of the matrix with |r| >= 0.4, strongest first,
// at most five
func Significant(m Matrix) []Pair {
	pairs := make([]Pair, 0)
	for i := range m.Modules {
		for j := i + 1; j < len(m.Modules); j++ {
			if !m.Known[i][j] {
				continue
			}
			r := m.Values[i][j]
			if math.Abs(r) < SignificanceThreshold {
				continue
			}
			pairs = append(pairs, Pair{
				ModuleA:     m.Modules[i],
				ModuleB:     m.Modules[j],
				Coefficient: r,
				Strength:    Classify(r),
				SampleSize:  m.SampleSizes[i][j],
			})
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return math.Abs(pairs[i].Coefficient) > math.Abs(pairs[j].Coefficient)
	})
	if len(pairs) > MaxSignificantPairs {
		pairs = pairs[:MaxSignificantPairs]
	}
	return pairs
}

// BuildReport builds the matrix and its significant-pairs list. No entries
// is an empty report, not an error.
func BuildReport(entries []Entry, modules []string) (Report, error) {
	m, err := Build(entries, modules)
	if err != nil {
		return Report{}, err
	}
	return Report{Matrix: m, Significant: Significant(m)}, nil
}

func dedupe(modules []string) []string {
	out := make([]string, 0, len(modules))
	seen := make(map[string]struct{}, len(modules))
	for _, name := range modules {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

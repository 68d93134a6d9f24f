package correlation

import (
	"strings"

	mstats "github.com/montanaflynn/stats"

	apperrors "github.com/ZanzyTHEbar/interview-scoring-engine/internal/errors"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/scoring"
)

// MinPairSample is the fewest shared observations a derived coefficient needs
const MinPairSample = 2

// KeyedCoefficient is a coefficient keyed as "moduleA_moduleB"
type KeyedCoefficient struct {
	Key         string
	Coefficient float64
	SampleSize  int
}

// ParseKeyed converts "a_b" keyed coefficients into entries. Module names may
// contain underscores: a split whose halves are both in known wins, otherwise
// the key splits at its first underscore.
func ParseKeyed(keyed []KeyedCoefficient, known []string) ([]Entry, error) {
	knownSet := make(map[string]struct{}, len(known))
	for _, k := range known {
		knownSet[k] = struct{}{}
	}

	entries := make([]Entry, 0, len(keyed))
	for _, kc := range keyed {
		a, b, ok := splitKey(kc.Key, knownSet)
		if !ok {
			return nil, apperrors.NewValidationError("correlation key must look like moduleA_moduleB", kc.Key)
		}
		entries = append(entries, Entry{ModuleA: a, ModuleB: b, Coefficient: kc.Coefficient, SampleSize: kc.SampleSize})
	}
	return entries, nil
}

func splitKey(key string, known map[string]struct{}) (string, string, bool) {
	for i := 0; i < len(key); i++ {
		if key[i] != '_' {
			continue
		}
		a, b := key[:i], key[i+1:]
		_, okA := known[a]
		_, okB := known[b]
		if okA && okB {
			return a, b, true
		}
	}

	a, b, found := strings.Cut(key, "_")
	if !found || a == "" || b == "" {
		return "", "", false
	}
	return a, b, true
}

// FromResults derives Pearson coefficients between module percentages across
// a cohort. Only results that scored both modules count towards a pair; pairs
// with too few observations or a constant module are left out rather than
// reported as 0. When modules is empty every scored module takes part, in
// order of first appearance.
func FromResults(results []scoring.AssessmentResult, modules []string) []Entry {
	names := dedupe(modules)
	if len(names) == 0 {
		names = scoredModules(results)
	}

	entries := make([]Entry, 0)
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			xs, ys := pairedPercentages(results, names[i], names[j])
			if len(xs) < MinPairSample || constant(xs) || constant(ys) {
				continue
			}
			r, err := mstats.Pearson(xs, ys)
			if err != nil {
				continue
			}
			entries = append(entries, Entry{
				ModuleA:     names[i],
				ModuleB:     names[j],
				Coefficient: clamp(r),
				SampleSize:  len(xs),
			})
		}
	}
	return entries
}

func scoredModules(results []scoring.AssessmentResult) []string {
	names := make([]string, 0)
	seen := make(map[string]struct{})
	for _, r := range results {
		for _, m := range r.Modules {
			if !m.Scored() {
				continue
			}
			if _, ok := seen[m.Module]; !ok {
				seen[m.Module] = struct{}{}
				names = append(names, m.Module)
			}
		}
	}
	return names
}

func pairedPercentages(results []scoring.AssessmentResult, a, b string) ([]float64, []float64) {
	var xs, ys []float64
	for _, r := range results {
		ma, okA := r.Module(a)
		mb, okB := r.Module(b)
		if !okA || !okB || !ma.Scored() || !mb.Scored() {
			continue
		}
		xs = append(xs, float64(ma.Percentage))
		ys = append(ys, float64(mb.Percentage))
	}
	return xs, ys
}

func constant(xs []float64) bool {
	for _, v := range xs[1:] {
		if v != xs[0] {
			return false
		}
	}
	return true
}

// rounding can push |r| a hair past 1
func clamp(r float64) float64 {
	if r > 1 {
		return 1
	}
	if r < -1 {
		return -1
	}
	return r
}

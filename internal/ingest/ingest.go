// Package ingest extracts engine inputs from loosely shaped JSON payloads,
// such as the output of the upstream anomaly detector. Field names are
// accepted in English and Spanish.
package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/anomaly"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/correlation"
	apperrors "github.com/ZanzyTHEbar/interview-scoring-engine/internal/errors"
)

// AnomalyPayload is a parsed anomaly detection report
type AnomalyPayload struct {
	Records  []anomaly.Record `json:"anomalies"`
	Analysis string           `json:"analysis,omitempty"`
}

// CorrelationPayload is a parsed keyed correlation report. Modules keeps the
// order in which modules first appear in the document.
type CorrelationPayload struct {
	Entries []correlation.Entry `json:"entries"`
	Modules []string            `json:"modules"`
}

func parse(data []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, apperrors.NewValidationError("payload is not valid JSON")
	}
	return gjson.ParseBytes(data), nil
}

// first returns the first of paths present in r
func first(r gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

// number accepts JSON numbers and numeric strings
func number(v gjson.Result) (float64, bool) {
	switch v.Type {
	case gjson.Number:
		return v.Float(), true
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v.Str), "%")), 64)
		if err != nil {
			return 0, false
		}
		return f, !math.IsNaN(f) && !math.IsInf(f, 0)
	default:
		return 0, false
	}
}

// Anomalies parses {"anomalias": [...], "analisisGeneral": "..."} or its
// English form, or a bare array of records. A record without a severity is
// Low and one without a confidence has confidence 0.
func Anomalies(data []byte) (AnomalyPayload, error) {
	root, err := parse(data)
	if err != nil {
		return AnomalyPayload{}, err
	}

	list := root
	if !root.IsArray() {
		list = first(root, "anomalias", "anomalies")
	}
	if list.Exists() && !list.IsArray() {
		return AnomalyPayload{}, apperrors.NewValidationError("anomalies must be an array")
	}

	payload := AnomalyPayload{
		Records:  make([]anomaly.Record, 0),
		Analysis: first(root, "analisisGeneral", "analysis").String(),
	}

	details := make(map[string]string)
	for i, item := range list.Array() {
		if !item.IsObject() {
			details[fmt.Sprintf("anomalies[%d]", i)] = "must be an object"
			continue
		}

		rec := anomaly.Record{
			ID:             first(item, "id").String(),
			Type:           first(item, "tipo", "type").String(),
			Severity:       anomaly.Severity(first(item, "severidad", "severity").String()),
			Category:       first(item, "categoria", "category").String(),
			Description:    first(item, "descripcion", "description").String(),
			Recommendation: first(item, "recomendacion", "recommendation").String(),
		}
		if strings.TrimSpace(string(rec.Severity)) == "" {
			rec.Severity = anomaly.SeverityLow
		}

		if c := first(item, "confianza", "confidence"); c.Exists() && c.Type != gjson.Null {
			conf, ok := number(c)
			if !ok {
				details[fmt.Sprintf("anomalies[%d].confidence", i)] = "must be a number"
				continue
			}
			rec.Confidence = conf
		}

		payload.Records = append(payload.Records, rec)
	}

	if len(details) > 0 {
		return AnomalyPayload{}, apperrors.NewValidationErrorWithMap(details)
	}
	if err := anomaly.Validate(payload.Records); err != nil {
		return AnomalyPayload{}, err
	}

	return payload, nil
}

// Correlations parses {"correlaciones": {"A_B": 0.7, ...}} or its English
// form, or a bare object of keyed coefficients. Optional sample sizes come
// from a sibling "muestras" / "sample_sizes" object with the same keys.
// known helps split module names that contain underscores.
func Correlations(data []byte, known []string) (CorrelationPayload, error) {
	root, err := parse(data)
	if err != nil {
		return CorrelationPayload{}, err
	}
	if !root.IsObject() {
		return CorrelationPayload{}, apperrors.NewValidationError("correlations must be an object")
	}

	coefficients := first(root, "correlaciones", "correlations")
	sizes := first(root, "muestras", "sample_sizes")
	if !coefficients.Exists() {
		coefficients = root
	}
	if !coefficients.IsObject() {
		return CorrelationPayload{}, apperrors.NewValidationError("correlations must be an object")
	}

	sampleSizes := make(map[string]gjson.Result)
	sizes.ForEach(func(key, value gjson.Result) bool {
		sampleSizes[key.String()] = value
		return true
	})

	keyed := make([]correlation.KeyedCoefficient, 0)
	details := make(map[string]string)
	coefficients.ForEach(func(key, value gjson.Result) bool {
		r, ok := number(value)
		if !ok {
			details["correlations."+key.String()] = "must be a number"
			return true
		}

		kc := correlation.KeyedCoefficient{Key: key.String(), Coefficient: r}
		if n, ok := sampleSizes[key.String()]; ok {
			size, ok := number(n)
			if !ok || size != math.Trunc(size) {
				details["sample_sizes."+key.String()] = "must be an integer"
				return true
			}
			kc.SampleSize = int(size)
		}
		keyed = append(keyed, kc)
		return true
	})

	if len(details) > 0 {
		return CorrelationPayload{}, apperrors.NewValidationErrorWithMap(details)
	}

	entries, err := correlation.ParseKeyed(keyed, known)
	if err != nil {
		return CorrelationPayload{}, err
	}

	modules := make([]string, 0)
	seen := make(map[string]bool)
	for _, e := range entries {
		for _, m := range []string{e.ModuleA, e.ModuleB} {
			if !seen[m] {
				seen[m] = true
				modules = append(modules, m)
			}
		}
	}

	return CorrelationPayload{Entries: entries, Modules: modules}, nil
}

// Values parses a bare array of numbers or one under "values", "indices" or
// "puntajes"
func Values(data []byte) ([]float64, error) {
	root, err := parse(data)
	if err != nil {
		return nil, err
	}

	list := root
	if !root.IsArray() {
		list = first(root, "values", "indices", "puntajes")
	}
	if !list.IsArray() {
		return nil, apperrors.NewValidationError("expected an array of numbers")
	}

	values := make([]float64, 0)
	details := make(map[string]string)
	for i, v := range list.Array() {
		f, ok := number(v)
		if !ok {
			details[fmt.Sprintf("values[%d]", i)] = "must be a number"
			continue
		}
		values = append(values, f)
	}

	if len(details) > 0 {
		return nil, apperrors.NewValidationErrorWithMap(details)
	}
	return values, nil
}

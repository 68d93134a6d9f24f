package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/anomaly"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/correlation"
	apperrors "github.com/ZanzyTHEbar/interview-scoring-engine/internal/errors"
)

func TestAnomaliesSpanishPayload(t *testing.T) {
	data := []byte(`{
		"anomalias": [
			{"tipo": "Tiempo de respuesta", "severidad": "Alta", "categoria": "Comportamiento", "confianza": 85,
			 "descripcion": "respuestas demasiado rápidas", "recomendacion": "revisar"},
			{"tipo": "Patrón repetido", "severidad": "Media", "confianza": "60%"},
			{"tipo": "Sin severidad"}
		],
		"analisisGeneral": "riesgo moderado"
	}`)

	payload, err := Anomalies(data)
	require.NoError(t, err)
	require.Len(t, payload.Records, 3)
	assert.Equal(t, "riesgo moderado", payload.Analysis)

	first := payload.Records[0]
	assert.Equal(t, "Tiempo de respuesta", first.Type)
	assert.Equal(t, anomaly.Severity("Alta"), first.Severity)
	assert.Equal(t, "Comportamiento", first.Category)
	assert.Equal(t, 85.0, first.Confidence)
	assert.Equal(t, "revisar", first.Recommendation)

	assert.Equal(t, 60.0, payload.Records[1].Confidence)
	assert.Equal(t, anomaly.SeverityLow, payload.Records[2].Severity)

	risk := anomaly.Aggregate(payload.Records)
	assert.Equal(t, 6, risk.TotalScore)
	assert.Equal(t, anomaly.RiskMedium, risk.RiskLevel)
	assert.Equal(t, 0, risk.Unrecognized)
}

func TestAnomaliesEnglishAndBareArray(t *testing.T) {
	tests := []struct {
		name string
		data string
		want int
	}{
		{name: "english keys", data: `{"anomalies": [{"type": "copy", "severity": "High", "confidence": 90}]}`, want: 1},
		{name: "bare array", data: `[{"type": "copy", "severity": "low"}, {"type": "timing"}]`, want: 2},
		{name: "no anomalies", data: `{"analysis": "clean"}`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := Anomalies([]byte(tt.data))
			require.NoError(t, err)
			assert.Len(t, payload.Records, tt.want)
		})
	}
}

func TestAnomaliesRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "invalid json", data: `{"anomalias": [`},
		{name: "anomalies not an array", data: `{"anomalias": {"tipo": "x"}}`},
		{name: "record not an object", data: `{"anomalias": ["x"]}`},
		{name: "confidence not numeric", data: `{"anomalias": [{"confianza": "alta"}]}`},
		{name: "confidence out of range", data: `{"anomalias": [{"confianza": 140}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Anomalies([]byte(tt.data))
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
		})
	}
}

func TestCorrelations(t *testing.T) {
	data := []byte(`{
		"correlaciones": {"Logic_Personality": 0.72, "Logic_Soft_Skills": -0.45, "Personality_Soft_Skills": "0.1"},
		"muestras": {"Logic_Personality": 12}
	}`)

	payload, err := Correlations(data, []string{"Soft_Skills"})
	require.NoError(t, err)
	require.Len(t, payload.Entries, 3)
	assert.Equal(t, []string{"Logic", "Personality", "Soft_Skills"}, payload.Modules)

	assert.Equal(t, correlation.Entry{ModuleA: "Logic", ModuleB: "Personality", Coefficient: 0.72, SampleSize: 12}, payload.Entries[0])
	assert.Equal(t, "Soft_Skills", payload.Entries[1].ModuleB)
	assert.Equal(t, 0.1, payload.Entries[2].Coefficient)

	report, err := correlation.BuildReport(payload.Entries, payload.Modules)
	require.NoError(t, err)
	require.Len(t, report.Significant, 2)
	assert.Equal(t, "Logic", report.Significant[0].ModuleA)
	assert.Equal(t, "Personality", report.Significant[0].ModuleB)
}

func TestCorrelationsBareObject(t *testing.T) {
	payload, err := Correlations([]byte(`{"A_B": 0.5}`), nil)
	require.NoError(t, err)
	require.Len(t, payload.Entries, 1)
	assert.Equal(t, []string{"A", "B"}, payload.Modules)

	empty, err := Correlations([]byte(`{"correlations": {}}`), nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Entries)
}

func TestCorrelationsRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "array root", data: `[0.5]`},
		{name: "coefficient not numeric", data: `{"correlations": {"A_B": "strong"}}`},
		{name: "key without separator", data: `{"correlations": {"AB": 0.5}}`},
		{name: "fractional sample size", data: `{"correlations": {"A_B": 0.5}, "sample_sizes": {"A_B": 2.5}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Correlations([]byte(tt.data), nil)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
		})
	}
}

func TestValues(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    []float64
		wantErr bool
	}{
		{name: "bare array", data: `[70, 80.5, "90"]`, want: []float64{70, 80.5, 90}},
		{name: "indices field", data: `{"indices": [1, 2]}`, want: []float64{1, 2}},
		{name: "puntajes field", data: `{"puntajes": []}`, want: []float64{}},
		{name: "non numeric", data: `[1, "x"]`, wantErr: true},
		{name: "missing list", data: `{"other": [1]}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Values([]byte(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

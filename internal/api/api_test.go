package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/anomaly"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/cache"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/correlation"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/database"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/engine"
	apperrors "github.com/ZanzyTHEbar/interview-scoring-engine/internal/errors"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/monitoring"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/ratelimit"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/scoring"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/security"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/stats"
)

type testServer struct {
	router  *gin.Engine
	metrics *monitoring.Metrics
}

func newTestServer(t *testing.T, configure ...func(*Dependencies)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDB(context.Background(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	metrics := monitoring.NewMetrics()
	logger := monitoring.NewLoggerWithWriter(io.Discard, "error")

	reports := cache.NewMemoryCache(time.Minute)
	t.Cleanup(func() { _ = reports.Close() })

	limiter := ratelimit.NewRateLimiter(nil, ratelimit.Config{PerMinute: 1000}, metrics)
	t.Cleanup(limiter.Close)

	deps := Dependencies{
		Engine:  engine.NewService(database.NewRepository(db), scoring.NewAggregator(), reports, metrics, logger),
		Guard:   security.NewGuard(security.Config{MaxAnswerLength: 500}),
		Metrics: metrics,
		Logger:  logger,
		Limiter: limiter,
		HealthChecks: map[string]HealthCheck{
			"database": db.HealthCheck,
		},
		Stats: map[string]StatsFunc{
			"cache": reports.Stats,
		},
		CohortReportPerMin: 30,
	}
	for _, fn := range configure {
		fn(&deps)
	}

	return &testServer{router: NewRouter(deps), metrics: metrics}
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func errorCategory(t *testing.T, w *httptest.ResponseRecorder) apperrors.ErrorCategory {
	t.Helper()
	var resp apperrors.ErrorResponse
	decode(t, w, &resp)
	return resp.Category
}

// assessmentBody scores Logic by option and Personality by reviewer points
func assessmentBody(candidate, cohort, logicOption string, personality int) string {
	return fmt.Sprintf(`{
		"candidate_id": %q,
		"cohort_id": %q,
		"questions": [
			{"id": "q1", "module": "Logic", "options": [{"id": "a", "points": 0}, {"id": "b", "points": 2}, {"id": "c", "points": 4}]},
			{"id": "q2", "module": "Personality"}
		],
		"responses": [
			{"question_id": "q1", "option_id": %q},
			{"question_id": "q2", "answer": "me gusta trabajar en equipo", "points": %d}
		]
	}`, candidate, cohort, logicOption, personality)
}

func createAssessment(t *testing.T, s *testServer, body string) scoring.AssessmentResult {
	t.Helper()
	w := s.do(http.MethodPost, "/v1/assessments", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var result scoring.AssessmentResult
	decode(t, w, &result)
	return result
}

func TestHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		s := newTestServer(t)
		w := s.do(http.MethodGet, "/health", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp HealthResponse
		decode(t, w, &resp)
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, "ok", resp.Components["database"].Status)
		assert.NotEmpty(t, w.Header().Get(security.RequestIDHeader))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	})

	t.Run("degraded", func(t *testing.T) {
		s := newTestServer(t, func(d *Dependencies) {
			d.HealthChecks["redis"] = func(context.Context) error { return errors.New("connection refused") }
		})
		w := s.do(http.MethodGet, "/health", "")
		require.Equal(t, http.StatusServiceUnavailable, w.Code)

		var resp HealthResponse
		decode(t, w, &resp)
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, "unavailable", resp.Components["redis"].Status)
		assert.Equal(t, "connection refused", resp.Components["redis"].Error)
	})
}

func TestMetricsAndSwagger(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodGet, "/health", "")

	w := s.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "# TYPE")

	w = s.do(http.MethodGet, "/swagger/doc.json", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/v1/assessments")
}

func TestScoreFreeText(t *testing.T) {
	s := newTestServer(t)
	long := strings.Repeat("Trabajo bien con otras personas y aprendo rápido. ", 2)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantID     string
		wantScore  int
	}{
		{name: "by id with keyword", body: `{"question_id": "5", "answer": "prefiero el trabajo en equipo"}`, wantStatus: http.StatusOK, wantID: "5", wantScore: 1},
		{name: "by index detailed with keyword", body: fmt.Sprintf(`{"question_index": 4, "answer": %q}`, long+" equipo"), wantStatus: http.StatusOK, wantID: "5", wantScore: 2},
		{name: "markup scored as received", body: `{"question_id": "5", "answer": "<b class=\"equipo\">solo</b>"}`, wantStatus: http.StatusOK, wantID: "5", wantScore: 1},
		{name: "no question", body: `{"answer": "hola"}`, wantStatus: http.StatusBadRequest},
		{name: "index out of range", body: `{"question_index": 8, "answer": "hola"}`, wantStatus: http.StatusBadRequest},
		{name: "unknown id", body: `{"question_id": "99", "answer": "hola"}`, wantStatus: http.StatusBadRequest},
		{name: "empty answer", body: `{"question_id": "1", "answer": "   "}`, wantStatus: http.StatusBadRequest},
		{name: "answer too long", body: fmt.Sprintf(`{"question_id": "1", "answer": %q}`, strings.Repeat("a", 501)), wantStatus: http.StatusBadRequest},
		{name: "malformed json", body: `{"question_id":`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/v1/score/free-text", tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus != http.StatusOK {
				assert.Equal(t, apperrors.CategoryValidation, errorCategory(t, w))
				return
			}

			var resp FreeTextResponse
			decode(t, w, &resp)
			assert.Equal(t, tt.wantID, resp.QuestionID)
			assert.Equal(t, tt.wantScore, resp.Score)
			assert.Equal(t, scoring.MaxQuestionScore, resp.MaxScore)
		})
	}
}

func TestScoreFreeTextMatchesCore(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		index  int
		answer string
	}{
		{name: "inner whitespace runs", index: 4, answer: "Me gusta          trabajar          en equipo          siempre"},
		{name: "angle brackets in prose", index: 3, answer: "Cuando a<b en el plan, reviso la planificación y c>d pasa"},
		{name: "markup around keyword", index: 4, answer: "<p>equipo</p>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want, err := scoring.ScoreFreeTextAnswer(tt.answer, tt.index)
			require.NoError(t, err)

			body := fmt.Sprintf(`{"question_index": %d, "answer": %q}`, tt.index, tt.answer)
			w := s.do(http.MethodPost, "/v1/score/free-text", body)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var resp FreeTextResponse
			decode(t, w, &resp)
			assert.Equal(t, want, resp.Score)
		})
	}
}

func TestScoreBattery(t *testing.T) {
	s := newTestServer(t)

	answers := make([]string, 0, 8)
	for i, kw := range []string{"desarrollador", "motivación", "logro", "calma", "equipo", "objetivo", "experiencia", "frameworks"} {
		text := fmt.Sprintf("Respuesta detallada número %d que menciona %s y supera el largo mínimo.", i+1, kw)
		answers = append(answers, fmt.Sprintf(`{"question_id": "%d", "text": %q}`, i+1, text))
	}

	t.Run("complete battery", func(t *testing.T) {
		w := s.do(http.MethodPost, "/v1/score/battery", `{"answers": [`+strings.Join(answers, ",")+`]}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var result scoring.BatteryResult
		decode(t, w, &result)
		assert.Equal(t, 16, result.Total)
		assert.Equal(t, scoring.MaxAutomaticTotal, result.MaxTotal)
		assert.Equal(t, scoring.ClassificationApto, result.Classification)
		assert.Len(t, result.Scores, 8)
	})

	t.Run("incomplete battery", func(t *testing.T) {
		w := s.do(http.MethodPost, "/v1/score/battery", `{"answers": [`+strings.Join(answers[:7], ",")+`]}`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp apperrors.ErrorResponse
		decode(t, w, &resp)
		assert.Contains(t, resp.Details, "question_8")
	})

	t.Run("no answers", func(t *testing.T) {
		w := s.do(http.MethodPost, "/v1/score/battery", `{"answers": []}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestClassify(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		body       string
		wantStatus int
		want       scoring.Classification
	}{
		{body: `{"total": 12}`, wantStatus: http.StatusOK, want: scoring.ClassificationApto},
		{body: `{"total": 11}`, wantStatus: http.StatusOK, want: scoring.ClassificationRevision},
		{body: `{"total": 0}`, wantStatus: http.StatusOK, want: scoring.ClassificationRevision},
		{body: `{"total": 17}`, wantStatus: http.StatusBadRequest},
		{body: `{}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			w := s.do(http.MethodPost, "/v1/score/classify", tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp ClassifyResponse
			decode(t, w, &resp)
			assert.Equal(t, tt.want, resp.Classification)
			assert.Equal(t, scoring.AptoThreshold, resp.Threshold)
		})
	}
}

func TestClassifyUsesBatteryMaximum(t *testing.T) {
	battery := make([]scoring.BatteryQuestion, 0, 10)
	for i := 1; i <= 10; i++ {
		battery = append(battery, scoring.BatteryQuestion{ID: fmt.Sprint(i), Keywords: []string{"equipo"}})
	}
	scorer, err := scoring.NewKeywordScorer(battery)
	require.NoError(t, err)
	s := newTestServer(t, func(d *Dependencies) { d.Scorer = scorer })

	tests := []struct {
		body       string
		wantStatus int
		want       scoring.Classification
	}{
		{body: `{"total": 18}`, wantStatus: http.StatusOK, want: scoring.ClassificationApto},
		{body: `{"total": 20}`, wantStatus: http.StatusOK, want: scoring.ClassificationApto},
		{body: `{"total": 11}`, wantStatus: http.StatusOK, want: scoring.ClassificationRevision},
		{body: `{"total": 21}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			w := s.do(http.MethodPost, "/v1/score/classify", tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus != http.StatusOK {
				assert.Equal(t, apperrors.CategoryValidation, errorCategory(t, w))
				return
			}

			var resp ClassifyResponse
			decode(t, w, &resp)
			assert.Equal(t, tt.want, resp.Classification)
			assert.Equal(t, 20, resp.MaxTotal)
		})
	}
}

func TestAssessmentLifecycle(t *testing.T) {
	s := newTestServer(t)

	result := createAssessment(t, s, assessmentBody("cand-1", "cohort-a", "c", 1))
	assert.Equal(t, 75, result.CompositeIndex)
	assert.Equal(t, scoring.BandMedium, result.Band)

	w := s.do(http.MethodGet, "/v1/assessments/"+result.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	var view engine.ResultView
	decode(t, w, &view)
	assert.Equal(t, result.ID, view.Result.ID)
	assert.Nil(t, view.Decision)

	w = s.do(http.MethodPost, "/v1/assessments/"+result.ID+"/decisions", `{"decision": "Aprobado", "reviewer": "ana"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = s.do(http.MethodPost, "/v1/assessments/"+result.ID+"/decisions", `{"decision": "rejected", "reviewer": "luis", "comment": "second look"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/v1/assessments/"+result.ID+"/decisions", "")
	require.Equal(t, http.StatusOK, w.Code)
	var decisions []scoring.ManualEvaluation
	decode(t, w, &decisions)
	require.Len(t, decisions, 2)
	assert.Equal(t, scoring.DecisionApproved, decisions[0].Decision)
	assert.Equal(t, scoring.DecisionRejected, decisions[1].Decision)

	w = s.do(http.MethodGet, "/v1/assessments/"+result.ID, "")
	decode(t, w, &view)
	require.NotNil(t, view.Decision)
	assert.Equal(t, scoring.DecisionRejected, view.Decision.Decision)
	assert.Equal(t, 75, view.Result.CompositeIndex)
}

func TestAssessmentErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name         string
		method       string
		path         string
		body         string
		wantStatus   int
		wantCategory apperrors.ErrorCategory
	}{
		{name: "unknown option", method: http.MethodPost, path: "/v1/assessments", body: assessmentBody("c", "k", "zzz", 1), wantStatus: http.StatusBadRequest, wantCategory: apperrors.CategoryValidation},
		{name: "missing candidate", method: http.MethodPost, path: "/v1/assessments", body: `{"questions": [{"id": "q1", "module": "Logic"}]}`, wantStatus: http.StatusBadRequest, wantCategory: apperrors.CategoryValidation},
		{name: "unknown result", method: http.MethodGet, path: "/v1/assessments/missing", wantStatus: http.StatusNotFound, wantCategory: apperrors.CategoryNotFound},
		{name: "decision on unknown result", method: http.MethodPost, path: "/v1/assessments/missing/decisions", body: `{"decision": "approved", "reviewer": "ana"}`, wantStatus: http.StatusNotFound, wantCategory: apperrors.CategoryNotFound},
		{name: "unknown decision label", method: http.MethodPost, path: "/v1/assessments/missing/decisions", body: `{"decision": "maybe", "reviewer": "ana"}`, wantStatus: http.StatusBadRequest, wantCategory: apperrors.CategoryValidation},
		{name: "risk of unknown result", method: http.MethodGet, path: "/v1/assessments/missing/risk", wantStatus: http.StatusNotFound, wantCategory: apperrors.CategoryNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(tt.method, tt.path, tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.wantCategory, errorCategory(t, w))
		})
	}
}

func TestFlagAnomaliesAndRisk(t *testing.T) {
	s := newTestServer(t)
	result := createAssessment(t, s, assessmentBody("cand-1", "cohort-a", "b", 2))

	payload := `{
		"anomalias": [
			{"tipo": "copy_paste", "severidad": "alta", "confianza": 90},
			{"tipo": "tab_switch", "severidad": "media", "confianza": "75%"}
		],
		"analisisGeneral": "revisar"
	}`
	w := s.do(http.MethodPost, "/v1/assessments/"+result.ID+"/anomalies", payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var report engine.RiskReport
	decode(t, w, &report)
	assert.Equal(t, 5, report.Assessment.TotalScore)
	assert.Equal(t, anomaly.RiskMedium, report.Assessment.RiskLevel)
	require.Len(t, report.Records, 2)
	assert.NotEmpty(t, report.Records[0].ID)

	w = s.do(http.MethodPost, "/v1/assessments/"+result.ID+"/anomalies", `[{"type": "face_missing", "severity": "High", "confidence": 80}]`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/v1/assessments/"+result.ID+"/risk", "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &report)
	assert.Equal(t, 8, report.Assessment.TotalScore)
	assert.Equal(t, 3, report.Assessment.TotalRecords)

	w = s.do(http.MethodPost, "/v1/assessments/"+result.ID+"/anomalies", `[{"type": "x", "severity": "High", "confidence": 120}]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnomalyRisk(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantLevel  anomaly.RiskLevel
		wantScore  int
	}{
		{name: "empty set is low", body: `{"anomalies": []}`, wantStatus: http.StatusOK, wantLevel: anomaly.RiskLow},
		{name: "high risk", body: `[{"severity":"High","confidence":90},{"severity":"High","confidence":90},{"severity":"High","confidence":90},{"severity":"Low","confidence":10}]`, wantStatus: http.StatusOK, wantLevel: anomaly.RiskHigh, wantScore: 10},
		{name: "unknown severity counts low", body: `[{"severity":"Critical","confidence":50}]`, wantStatus: http.StatusOK, wantLevel: anomaly.RiskLow, wantScore: 1},
		{name: "not json", body: `severity: high`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/v1/anomalies/risk", tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}

			var assessment anomaly.Assessment
			decode(t, w, &assessment)
			assert.Equal(t, tt.wantLevel, assessment.RiskLevel)
			assert.Equal(t, tt.wantScore, assessment.TotalScore)
		})
	}
}

func TestPopulationStatistics(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantMean   float64
		sufficient bool
	}{
		{name: "bare array", body: `[60, 70, 80, 90]`, wantStatus: http.StatusOK, wantMean: 75, sufficient: true},
		{name: "keyed values", body: `{"puntajes": [50, 100]}`, wantStatus: http.StatusOK, wantMean: 75, sufficient: true},
		{name: "empty population", body: `[]`, wantStatus: http.StatusOK},
		{name: "non numeric", body: `[60, "alto"]`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/v1/statistics/population", tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}

			var st stats.Statistics
			decode(t, w, &st)
			assert.InDelta(t, tt.wantMean, st.Mean, 1e-9)
			assert.Equal(t, tt.sufficient, st.SufficientData)
		})
	}
}

func TestCorrelationMatrix(t *testing.T) {
	s := newTestServer(t)

	t.Run("explicit entries", func(t *testing.T) {
		body := `{"entries": [{"module_a": "Logic", "module_b": "Ethics", "coefficient": 0.65, "sample_size": 12}], "modules": ["Logic", "Ethics", "Personality"]}`
		w := s.do(http.MethodPost, "/v1/correlations/matrix", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var report correlation.Report
		decode(t, w, &report)
		assert.Equal(t, []string{"Logic", "Ethics", "Personality"}, report.Matrix.Modules)
		assert.Equal(t, 0.65, report.Matrix.Values[0][1])
		assert.True(t, report.Matrix.Known[1][0])
		assert.False(t, report.Matrix.Known[0][2])
		require.Len(t, report.Significant, 1)
		assert.Equal(t, correlation.StrengthStrong, report.Significant[0].Strength)
	})

	t.Run("keyed coefficients with underscore modules", func(t *testing.T) {
		body := `{"correlaciones": {"Soft_Skills_Logic": 0.82, "Logic_Ethics": -0.1}}`
		w := s.do(http.MethodPost, "/v1/correlations/matrix?module=Soft_Skills&module=Logic", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var report correlation.Report
		decode(t, w, &report)
		assert.Equal(t, []string{"Soft_Skills", "Logic", "Ethics"}, report.Matrix.Modules)
		require.Len(t, report.Significant, 1)
		assert.Equal(t, "Soft_Skills", report.Significant[0].ModuleA)
		assert.Equal(t, correlation.StrengthVeryStrong, report.Significant[0].Strength)
	})

	t.Run("empty entries", func(t *testing.T) {
		w := s.do(http.MethodPost, "/v1/correlations/matrix", `{"entries": []}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var report correlation.Report
		decode(t, w, &report)
		assert.Empty(t, report.Matrix.Modules)
		assert.Empty(t, report.Significant)
	})

	t.Run("coefficient out of range", func(t *testing.T) {
		w := s.do(http.MethodPost, "/v1/correlations/matrix", `{"entries": [{"module_a": "A", "module_b": "B", "coefficient": 1.5}]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCohortEndpoints(t *testing.T) {
	s := newTestServer(t)

	createAssessment(t, s, assessmentBody("cand-1", "cohort-a", "c", 2)) // 100
	createAssessment(t, s, assessmentBody("cand-2", "cohort-a", "b", 1)) // 50
	createAssessment(t, s, assessmentBody("cand-3", "cohort-a", "c", 0)) // 50
	createAssessment(t, s, assessmentBody("cand-4", "cohort-b", "a", 0)) // 0

	t.Run("report", func(t *testing.T) {
		w := s.do(http.MethodGet, "/v1/cohorts/cohort-a/report", "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var report engine.CohortReport
		decode(t, w, &report)
		assert.Equal(t, 3, report.Size)
		assert.InDelta(t, 66.67, report.Statistics.Mean, 0.01)
		assert.Equal(t, 1, report.Bands[scoring.BandHigh])
		assert.Equal(t, 2, report.Bands[scoring.BandLow])
		assert.Equal(t, []string{"Logic", "Personality"}, report.Correlations.Matrix.Modules)
	})

	t.Run("ranking", func(t *testing.T) {
		w := s.do(http.MethodGet, "/v1/cohorts/cohort-a/ranking?limit=2", "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var ranking engine.Ranking
		decode(t, w, &ranking)
		assert.Equal(t, 3, ranking.Total)
		require.Len(t, ranking.Entries, 2)
		assert.Equal(t, "cand-1", ranking.Entries[0].CandidateID)
		assert.Equal(t, 1, ranking.Entries[0].Rank)
		assert.Equal(t, 2, ranking.Entries[1].Rank)

		w = s.do(http.MethodGet, "/v1/cohorts/cohort-a/ranking?limit=abc", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("batch reports", func(t *testing.T) {
		w := s.do(http.MethodPost, "/v1/cohorts/reports", `{"cohort_ids": ["cohort-b", "cohort-a", "empty"]}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var reports []engine.CohortReport
		decode(t, w, &reports)
		require.Len(t, reports, 3)
		assert.Equal(t, "cohort-b", reports[0].CohortID)
		assert.Equal(t, 3, reports[1].Size)
		assert.Equal(t, 0, reports[2].Size)
		assert.False(t, reports[2].Statistics.SufficientData)

		w = s.do(http.MethodPost, "/v1/cohorts/reports", `{"cohort_ids": []}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCohortReportRateLimit(t *testing.T) {
	s := newTestServer(t, func(d *Dependencies) { d.CohortReportPerMin = 2 })

	for i := 0; i < 2; i++ {
		w := s.do(http.MethodGet, "/v1/cohorts/cohort-a/report", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Endpoint-Limit"))
	}

	w := s.do(http.MethodGet, "/v1/cohorts/cohort-a/report", "")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, apperrors.CategoryRateLimit, errorCategory(t, w))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// other endpoints keep the general limit
	w = s.do(http.MethodGet, "/v1/cohorts/cohort-a/ranking", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminRateLimitReset(t *testing.T) {
	tests := []struct {
		name      string
		resetPath string
		wantCode  int
	}{
		{name: "reset caller ip", resetPath: "/v1/admin/ratelimit/192.0.2.1", wantCode: http.StatusOK},
		{name: "reset ip sharing a prefix", resetPath: "/v1/admin/ratelimit/192.0.2.10", wantCode: http.StatusTooManyRequests},
		{name: "reset everything", resetPath: "/v1/admin/ratelimit", wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, func(d *Dependencies) { d.CohortReportPerMin = 1 })

			w := s.do(http.MethodGet, "/v1/cohorts/cohort-a/report", "")
			require.Equal(t, http.StatusOK, w.Code)
			w = s.do(http.MethodGet, "/v1/cohorts/cohort-a/report", "")
			require.Equal(t, http.StatusTooManyRequests, w.Code)

			w = s.do(http.MethodDelete, tt.resetPath, "")
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			w = s.do(http.MethodGet, "/v1/cohorts/cohort-a/report", "")
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestRequestGuards(t *testing.T) {
	s := newTestServer(t, func(d *Dependencies) {
		d.Guard = security.NewGuard(security.Config{MaxBodyBytes: 64})
	})

	t.Run("unsupported content type", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/score/classify", strings.NewReader("total=3"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	})

	t.Run("oversized body", func(t *testing.T) {
		w := s.do(http.MethodPost, "/v1/statistics/population", "["+strings.Repeat("1,", 64)+"1]")
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

// stalledStore never answers before the request context ends
type stalledStore struct {
	engine.Store
}

func (stalledStore) SaveResult(ctx context.Context, _ scoring.AssessmentResult) error {
	<-ctx.Done()
	return fmt.Errorf("failed to save result: %w", ctx.Err())
}

func (stalledStore) CohortResults(ctx context.Context, _ string) ([]scoring.AssessmentResult, error) {
	<-ctx.Done()
	return nil, fmt.Errorf("failed to query cohort: %w", ctx.Err())
}

func TestRequestTimeoutIsGatewayTimeout(t *testing.T) {
	s := newTestServer(t, func(d *Dependencies) {
		d.Guard = security.NewGuard(security.Config{RequestTimeout: 30 * time.Millisecond})
		d.Engine = engine.NewService(stalledStore{}, scoring.NewAggregator(), nil, d.Metrics, d.Logger,
			engine.WithReportTimeout(100*time.Millisecond))
	})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"assessment submission", http.MethodPost, "/v1/assessments", assessmentBody("cand-1", "cohort-a", "c", 1)},
		{"cohort report", http.MethodGet, "/v1/cohorts/cohort-a/report", ""},
		{"cohort ranking", http.MethodGet, "/v1/cohorts/cohort-a/ranking", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(tt.method, tt.path, tt.body)
			require.Equal(t, http.StatusGatewayTimeout, w.Code, w.Body.String())
			assert.Equal(t, apperrors.CategoryTimeout, errorCategory(t, w))
		})
	}
}

func TestAdminEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/v1/ratelimit", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"per_minute":1000`)

	w = s.do(http.MethodDelete, "/v1/admin/ratelimit/192.0.2.1", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/v1/admin/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	var out map[string]interface{}
	decode(t, w, &out)
	assert.Contains(t, out, "metrics")
	assert.Contains(t, out, "cache")
}

func TestRouterWithoutLimiter(t *testing.T) {
	s := newTestServer(t, func(d *Dependencies) { d.Limiter = nil })

	w := s.do(http.MethodGet, "/v1/cohorts/cohort-a/report", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/v1/ratelimit", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

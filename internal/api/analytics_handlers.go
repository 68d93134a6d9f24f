package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"

	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/anomaly"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/correlation"
	apperrors "github.com/ZanzyTHEbar/interview-scoring-engine/internal/errors"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/ingest"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/stats"
)

// MatrixRequest lists coefficients explicitly. Modules fixes the matrix rows
// and their order; when empty, the modules the entries name are used.
type MatrixRequest struct {
	Entries []correlation.Entry `json:"entries" validate:"dive"`
	Modules []string            `json:"modules"`
}

// CohortReportsRequest asks for several cohort reports at once
type CohortReportsRequest struct {
	CohortIDs []string `json:"cohort_ids" validate:"required,min=1"`
}

// populationStatistics godoc
//
//	@Summary		Compute population statistics
//	@Description	Accepts a bare array of composite indices or an object with values, indices or puntajes.
//	@Tags			analytics
//	@Param			request	body		[]number	true	"Composite indices"
//	@Success		200		{object}	stats.Statistics
//	@Failure		400		{object}	apperrors.ErrorResponse
//	@Router			/v1/statistics/population [post]
func (h *Handler) populationStatistics(c *gin.Context) {
	data, ok := readBody(c)
	if !ok {
		return
	}

	values, err := ingest.Values(data)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, stats.Compute(values))
}

// correlationMatrix godoc
//
//	@Summary		Build a correlation matrix
//	@Description	Takes explicit entries, or coefficients keyed as Logic_Ethics under correlaciones or correlations. Repeat the module query parameter to name modules whose names contain underscores.
//	@Tags			analytics
//	@Param			module	query		[]string		false	"Known module names"	collectionFormat(multi)
//	@Param			request	body		MatrixRequest	true	"Coefficients"
//	@Success		200		{object}	correlation.Report
//	@Failure		400		{object}	apperrors.ErrorResponse
//	@Router			/v1/correlations/matrix [post]
func (h *Handler) correlationMatrix(c *gin.Context) {
	data, ok := readBody(c)
	if !ok {
		return
	}

	var req MatrixRequest
	if gjson.GetBytes(data, "entries").IsArray() {
		if err := json.Unmarshal(data, &req); err != nil {
			apperrors.Abort(c, apperrors.NewValidationError("invalid request body", err.Error()))
			return
		}
		if err := apperrors.ValidateStruct(req); err != nil {
			apperrors.Abort(c, err)
			return
		}
	} else {
		payload, err := ingest.Correlations(data, c.QueryArray("module"))
		if err != nil {
			apperrors.Abort(c, err)
			return
		}
		req.Entries, req.Modules = payload.Entries, payload.Modules
	}

	report, err := correlation.BuildReport(req.Entries, req.Modules)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// anomalyRisk godoc
//
//	@Summary		Aggregate anomaly risk
//	@Description	Scores a detection report without storing it. Unknown severities count as Low.
//	@Tags			analytics
//	@Param			request	body		ingest.AnomalyPayload	true	"Anomaly report"
//	@Success		200		{object}	anomaly.Assessment
//	@Failure		400		{object}	apperrors.ErrorResponse
//	@Router			/v1/anomalies/risk [post]
func (h *Handler) anomalyRisk(c *gin.Context) {
	data, ok := readBody(c)
	if !ok {
		return
	}

	payload, err := ingest.Anomalies(data)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	var assessment anomaly.Assessment
	if h.engine != nil {
		assessment = h.engine.Risk(payload.Records)
	} else {
		assessment = anomaly.Aggregate(payload.Records)
	}

	c.JSON(http.StatusOK, assessment)
}

// cohortReport godoc
//
//	@Summary	Summarize a cohort
//	@Tags		cohorts
//	@Param		id	path		string	true	"Cohort id"
//	@Success	200	{object}	engine.CohortReport
//	@Failure	429	{object}	apperrors.ErrorResponse
//	@Failure	502	{object}	apperrors.ErrorResponse
//	@Router		/v1/cohorts/{id}/report [get]
func (h *Handler) cohortReport(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	report, err := h.engine.CohortReport(c.Request.Context(), id)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// cohortRanking godoc
//
//	@Summary	Rank a cohort's candidates by composite index
//	@Tags		cohorts
//	@Param		id		path		string	true	"Cohort id"
//	@Param		limit	query		int		false	"Entries to return, at most 100"	default(20)
//	@Success	200		{object}	engine.Ranking
//	@Failure	400		{object}	apperrors.ErrorResponse
//	@Router		/v1/cohorts/{id}/ranking [get]
func (h *Handler) cohortRanking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			apperrors.Abort(c, apperrors.NewValidationError("limit must be an integer", raw))
			return
		}
		limit = n
	}

	ranking, err := h.engine.CohortRanking(c.Request.Context(), id, limit)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, ranking)
}

// cohortReports godoc
//
//	@Summary	Summarize several cohorts concurrently
//	@Tags		cohorts
//	@Param		request	body		CohortReportsRequest	true	"Cohort ids"
//	@Success	200		{array}		engine.CohortReport
//	@Failure	400		{object}	apperrors.ErrorResponse
//	@Router		/v1/cohorts/reports [post]
func (h *Handler) cohortReports(c *gin.Context) {
	var req CohortReportsRequest
	if !bindJSON(c, &req) {
		return
	}

	reports, err := h.engine.CohortReports(c.Request.Context(), req.CohortIDs)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, reports)
}

package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ZanzyTHEbar/interview-scoring-engine/internal/errors"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/engine"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/ingest"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/scoring"
)

// createAssessment godoc
//
//	@Summary		Score and store a completed assessment
//	@Description	Aggregates responses into module scores and a composite index. Free-text responses without reviewer points are keyword scored.
//	@Tags			assessments
//	@Param			request	body		scoring.AssessmentInput	true	"Template questions and responses"
//	@Success		201		{object}	scoring.AssessmentResult
//	@Failure		400		{object}	apperrors.ErrorResponse
//	@Failure		500		{object}	apperrors.ErrorResponse
//	@Router			/v1/assessments [post]
func (h *Handler) createAssessment(c *gin.Context) {
	var in scoring.AssessmentInput
	if !bindJSON(c, &in) {
		return
	}

	for i, r := range in.Responses {
		if err := h.guard.ValidateAnswer(fmt.Sprintf("responses[%d].answer", i), r.Answer); err != nil {
			apperrors.Abort(c, err)
			return
		}
	}

	result, err := h.engine.Assess(c.Request.Context(), in)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	c.Header("Location", "/v1/assessments/"+result.ID)
	c.JSON(http.StatusCreated, result)
}

// getAssessment godoc
//
//	@Summary	Get a stored assessment with its current decision
//	@Tags		assessments
//	@Param		id	path		string	true	"Result id"
//	@Success	200	{object}	engine.ResultView
//	@Failure	404	{object}	apperrors.ErrorResponse
//	@Failure	502	{object}	apperrors.ErrorResponse
//	@Router		/v1/assessments/{id} [get]
func (h *Handler) getAssessment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	view, err := h.engine.Result(c.Request.Context(), id)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// createDecision godoc
//
//	@Summary	Record a reviewer decision
//	@Tags		assessments
//	@Param		id		path		string					true	"Result id"
//	@Param		request	body		engine.DecisionInput	true	"Decision"
//	@Success	201		{object}	scoring.ManualEvaluation
//	@Failure	400		{object}	apperrors.ErrorResponse
//	@Failure	404		{object}	apperrors.ErrorResponse
//	@Router		/v1/assessments/{id}/decisions [post]
func (h *Handler) createDecision(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var in engine.DecisionInput
	if !bindJSON(c, &in) {
		return
	}

	ev, err := h.engine.Decide(c.Request.Context(), id, in)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, ev)
}

// listDecisions godoc
//
//	@Summary	List reviewer decisions, oldest first
//	@Tags		assessments
//	@Param		id	path		string	true	"Result id"
//	@Success	200	{array}		scoring.ManualEvaluation
//	@Failure	404	{object}	apperrors.ErrorResponse
//	@Router		/v1/assessments/{id}/decisions [get]
func (h *Handler) listDecisions(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	decisions, err := h.engine.Decisions(c.Request.Context(), id)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, decisions)
}

// flagAnomalies godoc
//
//	@Summary		Attach detected anomalies to a result
//	@Description	Accepts English or Spanish field names, or a bare array of records.
//	@Tags			assessments
//	@Param			id		path		string					true	"Result id"
//	@Param			request	body		ingest.AnomalyPayload	true	"Anomaly report"
//	@Success		201		{object}	engine.RiskReport
//	@Failure		400		{object}	apperrors.ErrorResponse
//	@Failure		404		{object}	apperrors.ErrorResponse
//	@Router			/v1/assessments/{id}/anomalies [post]
func (h *Handler) flagAnomalies(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	data, ok := readBody(c)
	if !ok {
		return
	}

	payload, err := ingest.Anomalies(data)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	stored, err := h.engine.FlagAnomalies(c.Request.Context(), id, payload.Records)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	report, err := h.engine.ResultRisk(c.Request.Context(), id)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}
	h.logger.Info("Anomalies flagged", "result_id", id, "added", len(stored), "risk_level", report.Assessment.RiskLevel)

	c.JSON(http.StatusCreated, report)
}

// resultRisk godoc
//
//	@Summary	Aggregate the anomaly risk of a stored result
//	@Tags		assessments
//	@Param		id	path		string	true	"Result id"
//	@Success	200	{object}	engine.RiskReport
//	@Failure	404	{object}	apperrors.ErrorResponse
//	@Failure	502	{object}	apperrors.ErrorResponse
//	@Router		/v1/assessments/{id}/risk [get]
func (h *Handler) resultRisk(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	report, err := h.engine.ResultRisk(c.Request.Context(), id)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

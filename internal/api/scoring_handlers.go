package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ZanzyTHEbar/interview-scoring-engine/internal/errors"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/scoring"
)

// FreeTextRequest scores one answer. The question is chosen by id, or by
// zero-based position in the battery when no id is given.
type FreeTextRequest struct {
	QuestionID    string `json:"question_id"`
	QuestionIndex *int   `json:"question_index"`
	Answer        string `json:"answer"`
}

// FreeTextResponse is the score of one answer
type FreeTextResponse struct {
	QuestionID string `json:"question_id"`
	Score      int    `json:"score"`
	MaxScore   int    `json:"max_score"`
}

// BatteryRequest answers every battery question
type BatteryRequest struct {
	Answers []scoring.Answer `json:"answers" validate:"required,min=1,dive"`
}

// ClassifyRequest is a battery total to classify
type ClassifyRequest struct {
	Total *int `json:"total" validate:"required"`
}

// ClassifyResponse is the classification of a total
type ClassifyResponse struct {
	Total          int                    `json:"total"`
	MaxTotal       int                    `json:"max_total"`
	Classification scoring.Classification `json:"classification"`
	Threshold      int                    `json:"threshold"`
}

// scoreFreeText godoc
//
//	@Summary	Score a free-text answer
//	@Tags		scoring
//	@Param		request	body		FreeTextRequest	true	"Answer"
//	@Success	200		{object}	FreeTextResponse
//	@Failure	400		{object}	apperrors.ErrorResponse
//	@Router		/v1/score/free-text [post]
func (h *Handler) scoreFreeText(c *gin.Context) {
	var req FreeTextRequest
	if !bindJSON(c, &req) {
		return
	}

	questionID := strings.TrimSpace(req.QuestionID)
	if questionID == "" {
		if req.QuestionIndex == nil {
			apperrors.Abort(c, apperrors.NewValidationError("question_id or question_index is required"))
			return
		}
		battery := h.scorer.Battery()
		if *req.QuestionIndex < 0 || *req.QuestionIndex >= len(battery) {
			apperrors.Abort(c, apperrors.NewValidationError("question index out of range", *req.QuestionIndex))
			return
		}
		questionID = battery[*req.QuestionIndex].ID
	}

	if err := h.guard.ValidateAnswer("answer", req.Answer); err != nil {
		apperrors.Abort(c, err)
		return
	}

	score, err := h.scorer.Score(questionID, req.Answer)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, FreeTextResponse{
		QuestionID: questionID,
		Score:      score,
		MaxScore:   scoring.MaxQuestionScore,
	})
}

// scoreBattery godoc
//
//	@Summary	Score a complete interview battery
//	@Tags		scoring
//	@Param		request	body		BatteryRequest	true	"One answer per question"
//	@Success	200		{object}	scoring.BatteryResult
//	@Failure	400		{object}	apperrors.ErrorResponse
//	@Router		/v1/score/battery [post]
func (h *Handler) scoreBattery(c *gin.Context) {
	var req BatteryRequest
	if !bindJSON(c, &req) {
		return
	}

	for i, a := range req.Answers {
		if err := h.guard.ValidateAnswer(fmt.Sprintf("answers[%d].text", i), a.Text); err != nil {
			apperrors.Abort(c, err)
			return
		}
	}

	result, err := h.scorer.ScoreBattery(req.Answers)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// classify godoc
//
//	@Summary	Classify an automatic interview total
//	@Tags		scoring
//	@Param		request	body		ClassifyRequest	true	"Total in 0..2 per battery question"
//	@Success	200		{object}	ClassifyResponse
//	@Failure	400		{object}	apperrors.ErrorResponse
//	@Router		/v1/score/classify [post]
func (h *Handler) classify(c *gin.Context) {
	var req ClassifyRequest
	if !bindJSON(c, &req) {
		return
	}

	classification, err := h.scorer.Classify(*req.Total)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, ClassifyResponse{
		Total:          *req.Total,
		MaxTotal:       h.scorer.MaxTotal(),
		Classification: classification,
		Threshold:      scoring.AptoThreshold,
	})
}

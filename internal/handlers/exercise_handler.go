package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/exercise-service/internal/services"
	"github.com/SAP-F-2025/exercise-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// ExerciseHandler serves stateless grading: validation, scoring, feedback,
// hints and difficulty adaptation.
type ExerciseHandler struct {
	BaseHandler
	exerciseService services.ExerciseService
}

func NewExerciseHandler(exerciseService services.ExerciseService, logger utils.Logger) *ExerciseHandler {
	return &ExerciseHandler{
		BaseHandler:     NewBaseHandler(logger),
		exerciseService: exerciseService,
	}
}

// ValidateAnswer grades an answer against content
// @Summary Validate answer
// @Tags exercises
// @Accept json
// @Produce json
// @Param request body services.AnswerRequest true "Content and answer"
// @Success 200 {object} models.ValidationResult
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /exercises/validate [post]
func (h *ExerciseHandler) ValidateAnswer(c *gin.Context) {
	h.LogRequest(c, "Validating answer")

	var req services.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	result, err := h.exerciseService.Validate(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CalculateScore returns the answer's score as a percentage
// @Summary Calculate score
// @Tags exercises
// @Router /exercises/score [post]
func (h *ExerciseHandler) CalculateScore(c *gin.Context) {
	h.LogRequest(c, "Calculating score")

	var req services.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	resp, err := h.exerciseService.Score(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GenerateFeedback
// @Router /exercises/feedback [post]
func (h *ExerciseHandler) GenerateFeedback(c *gin.Context) {
	h.LogRequest(c, "Generating feedback")

	var req services.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	resp, err := h.exerciseService.Feedback(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetHint returns the hint for the given attempt number, or null
// @Router /exercises/hint [post]
func (h *ExerciseHandler) GetHint(c *gin.Context) {
	var req services.HintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	resp, err := h.exerciseService.Hint(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// AdaptDifficulty
// @Router /difficulty/adapt [post]
func (h *ExerciseHandler) AdaptDifficulty(c *gin.Context) {
	var req services.DifficultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	resp, err := h.exerciseService.AdaptDifficulty(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

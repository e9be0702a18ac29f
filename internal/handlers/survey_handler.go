package handlers

import (
	"net/http"

	"github.com/edupulse/survey-service/internal/models"
	"github.com/edupulse/survey-service/internal/services"
	"github.com/edupulse/survey-service/internal/utils"
	"github.com/edupulse/survey-service/internal/validator"
	"github.com/gin-gonic/gin"
)

type SurveyHandler struct {
	BaseHandler
	surveyService services.SurveyService
	validator     *validator.Validator
}

func NewSurveyHandler(
	surveyService services.SurveyService,
	validator *validator.Validator,
	logger utils.Logger,
) *SurveyHandler {
	return &SurveyHandler{
		BaseHandler:   NewBaseHandler(logger),
		surveyService: surveyService,
		validator:     validator,
	}
}

// CreateSurvey creates a new survey
// @Summary Create survey
// @Description Creates a new draft survey, optionally with its question list
// @Tags surveys
// @Accept json
// @Produce json
// @Param survey body models.CreateSurveyRequest true "Survey data"
// @Success 201 {object} models.Survey
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /surveys [post]
func (h *SurveyHandler) CreateSurvey(c *gin.Context) {
	var req models.CreateSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.userID(c)
	if !ok {
		return
	}

	survey, err := h.surveyService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, survey)
}

// GetSurvey retrieves a survey by ID
// @Summary Get survey
// @Tags surveys
// @Produce json
// @Param id path uint true "Survey ID"
// @Success 200 {object} models.Survey
// @Failure 404 {object} ErrorResponse
// @Router /surveys/{id} [get]
func (h *SurveyHandler) GetSurvey(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	survey, err := h.surveyService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, survey)
}

// GetSurveyWithQuestions retrieves a survey with its question list
// @Summary Get survey with questions
// @Tags surveys
// @Produce json
// @Param id path uint true "Survey ID"
// @Success 200 {object} models.Survey
// @Failure 404 {object} ErrorResponse
// @Router /surveys/{id}/questions [get]
func (h *SurveyHandler) GetSurveyWithQuestions(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Getting survey with questions", "survey_id", id)

	survey, err := h.surveyService.GetWithQuestions(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, survey)
}

// UpdateSurvey updates survey settings
// @Summary Update survey
// @Tags surveys
// @Accept json
// @Produce json
// @Param id path uint true "Survey ID"
// @Param survey body models.UpdateSurveyRequest true "Survey update data"
// @Success 200 {object} models.Survey
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /surveys/{id} [put]
func (h *SurveyHandler) UpdateSurvey(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req models.UpdateSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.userID(c)
	if !ok {
		return
	}

	survey, err := h.surveyService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, survey)
}

// UpdateSurveyStatus moves a survey through its lifecycle
// @Summary Update survey status
// @Tags surveys
// @Accept json
// @Produce json
// @Param id path uint true "Survey ID"
// @Param status body models.UpdateSurveyStatusRequest true "Target status"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /surveys/{id}/status [put]
func (h *SurveyHandler) UpdateSurveyStatus(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req models.UpdateSurveyStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	userID, ok := h.userID(c)
	if !ok {
		return
	}

	if err := h.surveyService.UpdateStatus(c.Request.Context(), id, req.Status, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Survey status updated"})
}

// DeleteSurvey soft-deletes a survey without submissions
// @Summary Delete survey
// @Tags surveys
// @Param id path uint true "Survey ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /surveys/{id} [delete]
func (h *SurveyHandler) DeleteSurvey(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.userID(c)
	if !ok {
		return
	}

	if err := h.surveyService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Survey deleted"})
}

// ListSurveys lists surveys with filters and pagination
// @Summary List surveys
// @Tags surveys
// @Produce json
// @Success 200 {object} models.SurveyListResponse
// @Router /surveys [get]
func (h *SurveyHandler) ListSurveys(c *gin.Context) {
	var filters models.SurveyFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return
	}

	list, err := h.surveyService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// AddQuestion appends a question to a draft survey
// @Summary Add question
// @Tags surveys
// @Accept json
// @Produce json
// @Param id path uint true "Survey ID"
// @Param question body models.CreateQuestionRequest true "Question data"
// @Success 201 {object} models.Question
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /surveys/{id}/questions [post]
func (h *SurveyHandler) AddQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req models.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.userID(c)
	if !ok {
		return
	}

	question, err := h.surveyService.AddQuestion(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// UpdateQuestion updates a question on a draft survey
// @Summary Update question
// @Tags surveys
// @Accept json
// @Produce json
// @Param id path uint true "Survey ID"
// @Param question_id path uint true "Question ID"
// @Param question body models.UpdateQuestionRequest true "Question update data"
// @Success 200 {object} models.Question
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /surveys/{id}/questions/{question_id} [put]
func (h *SurveyHandler) UpdateQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	questionID := h.parseIDParam(c, "question_id")
	if questionID == 0 {
		return
	}

	var req models.UpdateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.userID(c)
	if !ok {
		return
	}

	question, err := h.surveyService.UpdateQuestion(c.Request.Context(), id, questionID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// RemoveQuestion deletes a question from a draft survey
// @Summary Remove question
// @Tags surveys
// @Param id path uint true "Survey ID"
// @Param question_id path uint true "Question ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /surveys/{id}/questions/{question_id} [delete]
func (h *SurveyHandler) RemoveQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	questionID := h.parseIDParam(c, "question_id")
	if questionID == 0 {
		return
	}

	userID, ok := h.userID(c)
	if !ok {
		return
	}

	if err := h.surveyService.RemoveQuestion(c.Request.Context(), id, questionID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Question removed"})
}

// ReorderQuestions rewrites the display order of a survey's questions
// @Summary Reorder questions
// @Tags surveys
// @Accept json
// @Produce json
// @Param id path uint true "Survey ID"
// @Param order body models.ReorderQuestionsRequest true "Ordered question IDs"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /surveys/{id}/questions/reorder [put]
func (h *SurveyHandler) ReorderQuestions(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req models.ReorderQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.userID(c)
	if !ok {
		return
	}

	if err := h.surveyService.ReorderQuestions(c.Request.Context(), id, &req, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Questions reordered"})
}

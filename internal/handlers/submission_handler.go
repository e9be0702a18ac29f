package handlers

import (
	"net/http"

	"github.com/edupulse/survey-service/internal/models"
	"github.com/edupulse/survey-service/internal/services"
	"github.com/edupulse/survey-service/internal/utils"
	"github.com/edupulse/survey-service/internal/validator"
	"github.com/gin-gonic/gin"
)

type SubmissionHandler struct {
	BaseHandler
	submissionService services.SubmissionService
	validator         *validator.Validator
}

func NewSubmissionHandler(
	submissionService services.SubmissionService,
	validator *validator.Validator,
	logger utils.Logger,
) *SubmissionHandler {
	return &SubmissionHandler{
		BaseHandler:       NewBaseHandler(logger),
		submissionService: submissionService,
		validator:         validator,
	}
}

// SubmitSurvey accepts a completed answer pass for a survey
// @Summary Submit survey
// @Description Validates, scores and persists a respondent's answers
// @Tags submissions
// @Accept json
// @Produce json
// @Param id path uint true "Survey ID"
// @Param submission body models.SubmitSurveyRequest true "Responses"
// @Success 201 {object} services.SubmissionResult
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /surveys/{id}/submissions [post]
func (h *SubmissionHandler) SubmitSurvey(c *gin.Context) {
	surveyID := h.parseIDParam(c, "id")
	if surveyID == 0 {
		return
	}

	var req models.SubmitSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	respondentID := RespondentID(c)
	if respondentID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Respondent not identified",
		})
		return
	}

	h.LogRequest(c, "Submitting survey", "survey_id", surveyID)

	result, err := h.submissionService.Submit(c.Request.Context(), surveyID, respondentID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// EditSubmission replaces a submission's answers within the edit window
// @Summary Edit submission
// @Tags submissions
// @Accept json
// @Produce json
// @Param id path uint true "Submission ID"
// @Param submission body models.EditSubmissionRequest true "Responses"
// @Success 200 {object} services.SubmissionResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /submissions/{id} [put]
func (h *SubmissionHandler) EditSubmission(c *gin.Context) {
	submissionID := h.parseIDParam(c, "id")
	if submissionID == 0 {
		return
	}

	var req models.EditSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	respondentID := RespondentID(c)
	if respondentID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Respondent not identified",
		})
		return
	}

	result, err := h.submissionService.Edit(c.Request.Context(), submissionID, respondentID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RepairSubmission re-runs the response replacement for an inconsistent
// submission
// @Summary Repair submission
// @Description Retries the response write for a submission left inconsistent
// @Tags submissions
// @Accept json
// @Produce json
// @Param id path uint true "Submission ID"
// @Param submission body models.EditSubmissionRequest true "Responses"
// @Success 200 {object} services.SubmissionResult
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /submissions/{id}/repair [post]
func (h *SubmissionHandler) RepairSubmission(c *gin.Context) {
	submissionID := h.parseIDParam(c, "id")
	if submissionID == 0 {
		return
	}

	var req models.EditSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Repairing submission", "submission_id", submissionID)

	result, err := h.submissionService.Repair(c.Request.Context(), submissionID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSubmission retrieves a submission with its responses
// @Summary Get submission
// @Tags submissions
// @Produce json
// @Param id path uint true "Submission ID"
// @Success 200 {object} models.SubmissionResponse
// @Failure 404 {object} ErrorResponse
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	submissionID := h.parseIDParam(c, "id")
	if submissionID == 0 {
		return
	}

	submission, err := h.submissionService.GetByID(c.Request.Context(), submissionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

// ListSubmissions lists a survey's submissions
// @Summary List submissions
// @Tags submissions
// @Produce json
// @Param id path uint true "Survey ID"
// @Success 200 {object} models.SubmissionListResponse
// @Failure 404 {object} ErrorResponse
// @Router /surveys/{id}/submissions [get]
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	surveyID := h.parseIDParam(c, "id")
	if surveyID == 0 {
		return
	}

	var filters models.SubmissionFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return
	}

	list, err := h.submissionService.GetBySurvey(c.Request.Context(), surveyID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// GetSubmissionStats returns aggregate submission statistics
// @Summary Submission statistics
// @Tags submissions
// @Produce json
// @Param id path uint true "Survey ID"
// @Success 200 {object} models.SubmissionStats
// @Router /surveys/{id}/submissions/stats [get]
func (h *SubmissionHandler) GetSubmissionStats(c *gin.Context) {
	surveyID := h.parseIDParam(c, "id")
	if surveyID == 0 {
		return
	}

	stats, err := h.submissionService.GetStats(c.Request.Context(), surveyID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

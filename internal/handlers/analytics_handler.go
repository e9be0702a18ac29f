package handlers

import (
	"fmt"
	"net/http"

	"github.com/edupulse/survey-service/internal/services"
	"github.com/edupulse/survey-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	BaseHandler
	analyticsService services.AnalyticsService
	exportService    services.ExportService
}

func NewAnalyticsHandler(
	analyticsService services.AnalyticsService,
	exportService services.ExportService,
	logger utils.Logger,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		BaseHandler:      NewBaseHandler(logger),
		analyticsService: analyticsService,
		exportService:    exportService,
	}
}

// GetAnalytics returns per-question distribution statistics
// @Summary Survey analytics
// @Description Aggregates completed submissions into per-question statistics
// @Tags analytics
// @Produce json
// @Param id path uint true "Survey ID"
// @Success 200 {object} models.SurveyAnalytics
// @Failure 404 {object} ErrorResponse
// @Router /surveys/{id}/analytics [get]
func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	surveyID := h.parseIDParam(c, "id")
	if surveyID == 0 {
		return
	}

	h.LogRequest(c, "Computing survey analytics", "survey_id", surveyID)

	analytics, err := h.analyticsService.Analyze(c.Request.Context(), surveyID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}

// ExportAnalytics downloads the analytics as an xlsx workbook
// @Summary Export survey analytics
// @Tags analytics
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Survey ID"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Router /surveys/{id}/analytics/export [get]
func (h *AnalyticsHandler) ExportAnalytics(c *gin.Context) {
	surveyID := h.parseIDParam(c, "id")
	if surveyID == 0 {
		return
	}

	h.LogRequest(c, "Exporting survey analytics", "survey_id", surveyID)

	data, err := h.exportService.ExportAnalytics(c.Request.Context(), surveyID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("survey_%d_analytics.xlsx", surveyID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		data)
}

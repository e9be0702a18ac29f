package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edupulse/survey-service/internal/services"
	"github.com/edupulse/survey-service/internal/utils"
	"github.com/edupulse/survey-service/internal/validator"
)

type HandlerManager struct {
	surveyHandler     *SurveyHandler
	submissionHandler *SubmissionHandler
	analyticsHandler  *AnalyticsHandler
	serviceManager    services.ServiceManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		surveyHandler:     NewSurveyHandler(serviceManager.Survey(), validator, logger),
		submissionHandler: NewSubmissionHandler(serviceManager.Submission(), validator, logger),
		analyticsHandler:  NewAnalyticsHandler(serviceManager.Analytics(), serviceManager.Export(), logger),
		serviceManager:    serviceManager,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	v1.Use(IdentityMiddleware())
	{
		// Survey authoring routes
		surveys := v1.Group("/surveys")
		{
			surveys.POST("", hm.surveyHandler.CreateSurvey)
			surveys.GET("", hm.surveyHandler.ListSurveys)
			surveys.GET("/:id", hm.surveyHandler.GetSurvey)
			surveys.PUT("/:id", hm.surveyHandler.UpdateSurvey)
			surveys.DELETE("/:id", hm.surveyHandler.DeleteSurvey)
			surveys.PUT("/:id/status", hm.surveyHandler.UpdateSurveyStatus)

			// Question management
			surveys.GET("/:id/questions", hm.surveyHandler.GetSurveyWithQuestions)
			surveys.POST("/:id/questions", hm.surveyHandler.AddQuestion)
			surveys.PUT("/:id/questions/reorder", hm.surveyHandler.ReorderQuestions)
			surveys.PUT("/:id/questions/:question_id", hm.surveyHandler.UpdateQuestion)
			surveys.DELETE("/:id/questions/:question_id", hm.surveyHandler.RemoveQuestion)

			// Submissions of a survey
			surveys.POST("/:id/submissions", hm.submissionHandler.SubmitSurvey)
			surveys.GET("/:id/submissions", hm.submissionHandler.ListSubmissions)
			surveys.GET("/:id/submissions/stats", hm.submissionHandler.GetSubmissionStats)

			// Analytics
			surveys.GET("/:id/analytics", hm.analyticsHandler.GetAnalytics)
			surveys.GET("/:id/analytics/export", hm.analyticsHandler.ExportAnalytics)
		}

		// Submission routes
		submissions := v1.Group("/submissions")
		{
			submissions.GET("/:id", hm.submissionHandler.GetSubmission)
			submissions.PUT("/:id", hm.submissionHandler.EditSubmission)
			submissions.POST("/:id/repair", hm.submissionHandler.RepairSubmission)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": "survey-service",
				"error":   err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "survey-service",
		})
	})
}

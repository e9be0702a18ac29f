package services

import (
	"context"

	"github.com/edupulse/survey-service/internal/models"
)

// ===== RESULT TYPES =====

// SubmissionResult is what submit, edit and repair return to the caller
type SubmissionResult struct {
	SubmissionID    uint    `json:"submission_id"`
	ScoreRaw        float64 `json:"score_raw"`
	ScoreMax        float64 `json:"score_max"`
	ScorePercentage float64 `json:"score_percentage"`
}

// ===== SERVICE INTERFACES =====

// SurveyService owns survey authoring: definitions, questions, status
type SurveyService interface {
	Create(ctx context.Context, req *models.CreateSurveyRequest, createdBy string) (*models.Survey, error)
	GetByID(ctx context.Context, id uint) (*models.Survey, error)
	GetWithQuestions(ctx context.Context, id uint) (*models.Survey, error)
	Update(ctx context.Context, id uint, req *models.UpdateSurveyRequest, userID string) (*models.Survey, error)
	UpdateStatus(ctx context.Context, id uint, status models.SurveyStatus, userID string) error
	Delete(ctx context.Context, id uint, userID string) error
	List(ctx context.Context, filters models.SurveyFilters) (*models.SurveyListResponse, error)

	AddQuestion(ctx context.Context, surveyID uint, req *models.CreateQuestionRequest, userID string) (*models.Question, error)
	UpdateQuestion(ctx context.Context, surveyID, questionID uint, req *models.UpdateQuestionRequest, userID string) (*models.Question, error)
	RemoveQuestion(ctx context.Context, surveyID, questionID uint, userID string) error
	ReorderQuestions(ctx context.Context, surveyID uint, req *models.ReorderQuestionsRequest, userID string) error
}

// SubmissionService owns the submission lifecycle: submit, edit within
// the allowed window, the repair path, and the read surface
type SubmissionService interface {
	Submit(ctx context.Context, surveyID uint, respondentID string, req *models.SubmitSurveyRequest) (*SubmissionResult, error)
	Edit(ctx context.Context, submissionID uint, respondentID string, req *models.EditSubmissionRequest) (*SubmissionResult, error)
	Repair(ctx context.Context, submissionID uint, req *models.EditSubmissionRequest) (*SubmissionResult, error)

	GetByID(ctx context.Context, submissionID uint) (*models.SubmissionResponse, error)
	GetBySurvey(ctx context.Context, surveyID uint, filters models.SubmissionFilters) (*models.SubmissionListResponse, error)
	GetStats(ctx context.Context, surveyID uint) (*models.SubmissionStats, error)
}

// AnalyticsService aggregates completed submissions into per-question
// distribution statistics
type AnalyticsService interface {
	Analyze(ctx context.Context, surveyID uint) (*models.SurveyAnalytics, error)
}

// ExportService renders analytics as downloadable workbooks
type ExportService interface {
	ExportAnalytics(ctx context.Context, surveyID uint) ([]byte, error)
}

// NotificationEventService publishes lifecycle events to the broker
type NotificationEventService interface {
	NotifySubmissionCompleted(ctx context.Context, survey *models.Survey, submission *models.Submission, edited bool) error
	NotifySurveyClosed(ctx context.Context, survey *models.Survey) error
	Close() error
}

// ServiceManager provides access to all services with lifecycle management
type ServiceManager interface {
	Survey() SurveyService
	Submission() SubmissionService
	Analytics() AnalyticsService
	Export() ExportService
	NotificationEvents() NotificationEventService

	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
	HealthCheck(ctx context.Context) error
}

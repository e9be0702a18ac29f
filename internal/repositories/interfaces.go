package repositories

import (
	"context"
	"errors"

	"github.com/edupulse/survey-service/internal/models"
	"gorm.io/gorm"
)

// SurveyRepository manages survey definitions
type SurveyRepository interface {
	Create(ctx context.Context, tx *gorm.DB, survey *models.Survey) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Survey, error)
	GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Survey, error)
	Update(ctx context.Context, tx *gorm.DB, survey *models.Survey) error
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.SurveyStatus) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	List(ctx context.Context, tx *gorm.DB, filters models.SurveyFilters) ([]*models.Survey, int64, error)
}

// QuestionRepository manages survey questions
type QuestionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	GetBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint) ([]*models.Question, error)
	Update(ctx context.Context, tx *gorm.DB, question *models.Question) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	UpdateDisplayOrders(ctx context.Context, tx *gorm.DB, surveyID uint, orderedIDs []uint) error
	MaxDisplayOrder(ctx context.Context, tx *gorm.DB, surveyID uint) (int, error)
	CountChildren(ctx context.Context, tx *gorm.DB, questionID uint) (int64, error)
}

// SubmissionRepository manages submission rows
type SubmissionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, submission *models.Submission) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error)
	GetByIDWithResponses(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error)
	GetBySurveyAndRespondent(ctx context.Context, tx *gorm.DB, surveyID uint, respondentID string) (*models.Submission, error)
	Update(ctx context.Context, tx *gorm.DB, submission *models.Submission) error
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.SubmissionStatus) error
	GetBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint, filters models.SubmissionFilters) ([]*models.Submission, int64, error)
	CountBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint) (int64, error)
	CountBySurveyAndStatus(ctx context.Context, tx *gorm.DB, surveyID uint, status models.SubmissionStatus) (int64, error)
	GetStats(ctx context.Context, tx *gorm.DB, surveyID uint) (*models.SubmissionStats, error)
}

// ResponseRepository manages the response rows of submissions.
// ReplaceForSubmission performs the wholesale delete-then-reinsert
// swap as a single transaction, composed from DeleteBySubmission and
// CreateBatch.
type ResponseRepository interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, responses []*models.Response) error
	DeleteBySubmission(ctx context.Context, tx *gorm.DB, submissionID uint) error
	ReplaceForSubmission(ctx context.Context, submissionID uint, responses []*models.Response) error
	GetCompletedBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint) ([]*models.Response, error)
}

// IsNotFoundError reports whether err represents a missing record
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

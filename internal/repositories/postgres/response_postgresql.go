package postgres

import (
	"context"
	"fmt"

	"github.com/edupulse/survey-service/internal/models"
	"github.com/edupulse/survey-service/internal/repositories"
	"gorm.io/gorm"
)

type ResponsePostgreSQL struct {
	db *gorm.DB
}

func NewResponsePostgreSQL(db *gorm.DB) repositories.ResponseRepository {
	return &ResponsePostgreSQL{db: db}
}

func (r *ResponsePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// CreateBatch inserts response rows in batches
func (r *ResponsePostgreSQL) CreateBatch(ctx context.Context, tx *gorm.DB, responses []*models.Response) error {
	if len(responses) == 0 {
		return nil
	}

	db := r.getDB(tx)
	if err := db.WithContext(ctx).CreateInBatches(responses, 100).Error; err != nil {
		return fmt.Errorf("failed to create responses batch: %w", err)
	}
	return nil
}

// DeleteBySubmission removes all response rows of a submission
func (r *ResponsePostgreSQL) DeleteBySubmission(ctx context.Context, tx *gorm.DB, submissionID uint) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Delete(&models.Response{}).Error; err != nil {
		return fmt.Errorf("failed to delete responses for submission %d: %w", submissionID, err)
	}
	return nil
}

// ReplaceForSubmission swaps the full response set of a submission in
// one transaction. Replacement is wholesale: a submission's responses
// always reflect a single coherent answer pass, never a mix of old and
// new rows.
func (r *ResponsePostgreSQL) ReplaceForSubmission(ctx context.Context, submissionID uint, responses []*models.Response) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.DeleteBySubmission(ctx, tx, submissionID); err != nil {
			return err
		}

		for _, resp := range responses {
			resp.ID = 0
			resp.SubmissionID = submissionID
		}
		return r.CreateBatch(ctx, tx, responses)
	})
}

// GetCompletedBySurvey retrieves all response rows belonging to
// completed submissions of a survey, for analytics
func (r *ResponsePostgreSQL) GetCompletedBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint) ([]*models.Response, error) {
	db := r.getDB(tx)
	var responses []*models.Response
	if err := db.WithContext(ctx).
		Joins("JOIN survey_submissions ON survey_submissions.id = survey_responses.submission_id").
		Where("survey_submissions.survey_id = ? AND survey_submissions.status = ?", surveyID, models.SubmissionStatusCompleted).
		Order("survey_responses.question_id ASC, survey_responses.submission_id ASC").
		Find(&responses).Error; err != nil {
		return nil, fmt.Errorf("failed to get completed responses for survey %d: %w", surveyID, err)
	}
	return responses, nil
}

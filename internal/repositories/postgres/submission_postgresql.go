package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/edupulse/survey-service/internal/cache"
	"github.com/edupulse/survey-service/internal/models"
	"github.com/edupulse/survey-service/internal/repositories"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type SubmissionPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewSubmissionPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (s *SubmissionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

// ===== BASIC CRUD OPERATIONS =====

// Create inserts a new submission row. The composite unique index on
// (survey_id, respondent_id) rejects duplicates at the storage layer.
func (s *SubmissionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, submission *models.Submission) error {
	db := s.getDB(tx)
	if err := db.WithContext(ctx).Create(submission).Error; err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, s.cacheManager.Stats, fmt.Sprintf("survey:%d:*", submission.SurveyID))

	return nil
}

// GetByID retrieves a submission by ID
func (s *SubmissionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error) {
	db := s.getDB(tx)
	var submission models.Submission
	if err := db.WithContext(ctx).First(&submission, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("submission not found with ID %d: %w", id, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return &submission, nil
}

// GetByIDWithResponses retrieves a submission with its response rows
func (s *SubmissionPostgreSQL) GetByIDWithResponses(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error) {
	db := s.getDB(tx)
	var submission models.Submission
	if err := db.WithContext(ctx).
		Preload("Responses", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_id ASC")
		}).
		First(&submission, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("submission not found with ID %d: %w", id, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get submission with responses: %w", err)
	}
	return &submission, nil
}

// GetBySurveyAndRespondent retrieves the single submission of a
// respondent for a survey
func (s *SubmissionPostgreSQL) GetBySurveyAndRespondent(ctx context.Context, tx *gorm.DB, surveyID uint, respondentID string) (*models.Submission, error) {
	db := s.getDB(tx)
	var submission models.Submission
	if err := db.WithContext(ctx).
		Where("survey_id = ? AND respondent_id = ?", surveyID, respondentID).
		First(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("submission not found for survey %d: %w", surveyID, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get submission by respondent: %w", err)
	}
	return &submission, nil
}

// Update updates a submission row
func (s *SubmissionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, submission *models.Submission) error {
	db := s.getDB(tx)
	if err := db.WithContext(ctx).Save(submission).Error; err != nil {
		return fmt.Errorf("failed to update submission: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, s.cacheManager.Stats, fmt.Sprintf("survey:%d:*", submission.SurveyID))

	return nil
}

// UpdateStatus updates only the status column
func (s *SubmissionPostgreSQL) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.SubmissionStatus) error {
	db := s.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update submission status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("submission not found with ID %d: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}

// ===== QUERY OPERATIONS =====

// GetBySurvey lists submissions of a survey with filters and pagination
func (s *SubmissionPostgreSQL) GetBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint, filters models.SubmissionFilters) ([]*models.Submission, int64, error) {
	db := s.getDB(tx)
	query := db.WithContext(ctx).Model(&models.Submission{}).Where("survey_id = ?", surveyID)
	query = s.helpers.ApplySubmissionFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count submissions: %w", err)
	}

	size := filters.Size
	if size <= 0 {
		size = 20
	}
	offset := filters.Page * size

	query = s.helpers.ApplyPaginationAndSort(query, "submitted_at", "desc", size, offset)

	var submissions []*models.Submission
	if err := query.Find(&submissions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list submissions: %w", err)
	}

	return submissions, total, nil
}

// CountBySurvey counts all submissions of a survey
func (s *SubmissionPostgreSQL) CountBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint) (int64, error) {
	var count int64
	db := s.getDB(tx)
	if err := db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("survey_id = ?", surveyID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return count, nil
}

// CountBySurveyAndStatus counts submissions of a survey in a given status
func (s *SubmissionPostgreSQL) CountBySurveyAndStatus(ctx context.Context, tx *gorm.DB, surveyID uint, status models.SubmissionStatus) (int64, error) {
	var count int64
	db := s.getDB(tx)
	if err := db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("survey_id = ? AND status = ?", surveyID, status).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count submissions by status: %w", err)
	}
	return count, nil
}

// GetStats computes per-survey submission statistics, cached briefly
// because the aggregate query is comparatively expensive
func (s *SubmissionPostgreSQL) GetStats(ctx context.Context, tx *gorm.DB, surveyID uint) (*models.SubmissionStats, error) {
	db := s.getDB(tx)
	cacheKey := fmt.Sprintf("survey:%d:submission_stats", surveyID)
	var stats models.SubmissionStats

	err := s.cacheManager.Stats.CacheOrExecute(ctx, cacheKey, &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		var dbStats models.SubmissionStats

		total, err := s.helpers.CountSubmissions(ctx, surveyID)
		if err != nil {
			return nil, fmt.Errorf("failed to count submissions for stats: %w", err)
		}
		dbStats.TotalSubmissions = total

		if dbStats.TotalSubmissions > 0 {
			var avg *float64
			if err := db.WithContext(ctx).
				Model(&models.Submission{}).
				Where("survey_id = ? AND status = ?", surveyID, models.SubmissionStatusCompleted).
				Select("AVG(score_percentage)").
				Scan(&avg).Error; err != nil {
				return nil, fmt.Errorf("failed to average scores: %w", err)
			}
			if avg != nil {
				dbStats.AveragePercentage = *avg
			}

			inconsistent, err := s.helpers.CountSubmissionsByStatus(ctx, surveyID, models.SubmissionStatusInconsistent)
			if err != nil {
				return nil, fmt.Errorf("failed to count inconsistent submissions: %w", err)
			}
			dbStats.InconsistentCount = inconsistent
		}

		return &dbStats, nil
	})

	if err != nil {
		return nil, err
	}

	return &stats, nil
}

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

type SurveyPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewSurveyPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.SurveyRepository {
	return &SurveyPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (s *SurveyPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

// ===== BASIC CRUD OPERATIONS =====

// Create creates a new survey and invalidates list caches
func (s *SurveyPostgreSQL) Create(ctx context.Context, tx *gorm.DB, survey *models.Survey) error {
	db := s.getDB(tx)
	if err := db.WithContext(ctx).Create(survey).Error; err != nil {
		return fmt.Errorf("failed to create survey: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, s.cacheManager.Survey, "list:*")

	return nil
}

// GetByID retrieves a survey by ID with caching
func (s *SurveyPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Survey, error) {
	db := s.getDB(tx)
	cacheKey := fmt.Sprintf("id:%d", id)
	var survey models.Survey

	err := s.cacheManager.Survey.CacheOrExecute(ctx, cacheKey, &survey, cache.SurveyCacheConfig.TTL, func() (interface{}, error) {
		var dbSurvey models.Survey
		if err := db.WithContext(ctx).First(&dbSurvey, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("survey not found with ID %d: %w", id, gorm.ErrRecordNotFound)
			}
			return nil, fmt.Errorf("failed to get survey: %w", err)
		}
		return &dbSurvey, nil
	})

	if err != nil {
		return nil, err
	}

	return &survey, nil
}

// GetByIDWithQuestions retrieves a survey with its full ordered question list
func (s *SurveyPostgreSQL) GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Survey, error) {
	db := s.getDB(tx)
	var survey models.Survey
	if err := db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		First(&survey, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("survey not found with ID %d: %w", id, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get survey with questions: %w", err)
	}
	return &survey, nil
}

// Update updates a survey
func (s *SurveyPostgreSQL) Update(ctx context.Context, tx *gorm.DB, survey *models.Survey) error {
	db := s.getDB(tx)
	if err := db.WithContext(ctx).Save(survey).Error; err != nil {
		return fmt.Errorf("failed to update survey: %w", err)
	}

	cache.InvalidateSurveyCache(ctx, s.cacheManager, survey.ID)

	return nil
}

// UpdateStatus updates only the lifecycle status column
func (s *SurveyPostgreSQL) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.SurveyStatus) error {
	db := s.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.Survey{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update survey status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("survey not found with ID %d: %w", id, gorm.ErrRecordNotFound)
	}

	cache.InvalidateSurveyCache(ctx, s.cacheManager, id)

	return nil
}

// Delete soft deletes a survey
func (s *SurveyPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := s.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.Survey{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete survey: %w", err)
	}

	cache.InvalidateSurveyCache(ctx, s.cacheManager, id)

	return nil
}

// ===== QUERY OPERATIONS =====

// List retrieves surveys matching the filters with pagination
func (s *SurveyPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters models.SurveyFilters) ([]*models.Survey, int64, error) {
	db := s.getDB(tx)
	query := db.WithContext(ctx).Model(&models.Survey{})
	query = s.helpers.ApplySurveyFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count surveys: %w", err)
	}

	size := filters.Size
	if size <= 0 {
		size = 20
	}
	offset := filters.Page * size

	query = s.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, size, offset)

	var surveys []*models.Survey
	if err := query.Find(&surveys).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list surveys: %w", err)
	}

	return surveys, total, nil
}

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

type QuestionPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewQuestionPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.QuestionRepository {
	return &QuestionPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (q *QuestionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return q.db
}

// ===== BASIC CRUD OPERATIONS =====

// Create creates a new question and invalidates the survey's question cache
func (q *QuestionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).Create(question).Error; err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, q.cacheManager.Question, fmt.Sprintf("survey:%d:*", question.SurveyID))

	return nil
}

// CreateBatch creates multiple questions in a batch
func (q *QuestionPostgreSQL) CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}

	db := q.getDB(tx)
	if err := db.WithContext(ctx).CreateInBatches(questions, 100).Error; err != nil {
		return fmt.Errorf("failed to create questions batch: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, q.cacheManager.Question, fmt.Sprintf("survey:%d:*", questions[0].SurveyID))

	return nil
}

// GetByID retrieves a question by ID
func (q *QuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	db := q.getDB(tx)
	var question models.Question
	if err := db.WithContext(ctx).First(&question, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("question not found with ID %d: %w", id, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return &question, nil
}

// GetBySurvey retrieves the full question list of a survey in display
// order, with caching. The resolver and scorer depend on this order.
func (q *QuestionPostgreSQL) GetBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint) ([]*models.Question, error) {
	db := q.getDB(tx)
	cacheKey := fmt.Sprintf("survey:%d:all", surveyID)
	var questions []*models.Question

	err := q.cacheManager.Question.CacheOrExecute(ctx, cacheKey, &questions, cache.QuestionCacheConfig.TTL, func() (interface{}, error) {
		var dbQuestions []*models.Question
		if err := db.WithContext(ctx).
			Where("survey_id = ?", surveyID).
			Order("display_order ASC").
			Find(&dbQuestions).Error; err != nil {
			return nil, fmt.Errorf("failed to get questions for survey %d: %w", surveyID, err)
		}
		return dbQuestions, nil
	})

	if err != nil {
		return nil, err
	}

	return questions, nil
}

// Update updates a question
func (q *QuestionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).Save(question).Error; err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}

	cache.InvalidateQuestionCache(ctx, q.cacheManager, question.SurveyID)

	return nil
}

// Delete removes a question
func (q *QuestionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := q.getDB(tx)

	var question models.Question
	if err := db.WithContext(ctx).Select("id, survey_id").First(&question, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("question not found with ID %d: %w", id, gorm.ErrRecordNotFound)
		}
		return fmt.Errorf("failed to get question before delete: %w", err)
	}

	if err := db.WithContext(ctx).Delete(&models.Question{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}

	cache.InvalidateQuestionCache(ctx, q.cacheManager, question.SurveyID)

	return nil
}

// ===== ORDERING =====

// UpdateDisplayOrders rewrites display_order to match the given ID
// sequence within one transaction
func (q *QuestionPostgreSQL) UpdateDisplayOrders(ctx context.Context, tx *gorm.DB, surveyID uint, orderedIDs []uint) error {
	db := q.getDB(tx)

	err := db.Transaction(func(tx *gorm.DB) error {
		for i, id := range orderedIDs {
			result := tx.WithContext(ctx).
				Model(&models.Question{}).
				Where("id = ? AND survey_id = ?", id, surveyID).
				Update("display_order", i)
			if result.Error != nil {
				return fmt.Errorf("failed to update display order for question %d: %w", id, result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("question %d not found in survey %d: %w", id, surveyID, gorm.ErrRecordNotFound)
			}
		}
		return nil
	})

	if err != nil {
		return err
	}

	cache.InvalidateQuestionCache(ctx, q.cacheManager, surveyID)

	return nil
}

// MaxDisplayOrder returns the highest display order in a survey, -1 when empty
func (q *QuestionPostgreSQL) MaxDisplayOrder(ctx context.Context, tx *gorm.DB, surveyID uint) (int, error) {
	db := q.getDB(tx)
	var max *int
	if err := db.WithContext(ctx).
		Model(&models.Question{}).
		Where("survey_id = ?", surveyID).
		Select("MAX(display_order)").
		Scan(&max).Error; err != nil {
		return 0, fmt.Errorf("failed to get max display order: %w", err)
	}
	if max == nil {
		return -1, nil
	}
	return *max, nil
}

// CountChildren counts questions whose visibility depends on the given question
func (q *QuestionPostgreSQL) CountChildren(ctx context.Context, tx *gorm.DB, questionID uint) (int64, error) {
	db := q.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Question{}).
		Where("parent_question_id = ?", questionID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count child questions: %w", err)
	}
	return count, nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/edupulse/survey-service/internal/models"
	"gorm.io/gorm"
)

// SharedHelpers contains common database operations
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// CountSubmissions counts submissions for a survey
func (h *SharedHelpers) CountSubmissions(ctx context.Context, surveyID uint) (int64, error) {
	var count int64
	err := h.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("survey_id = ?", surveyID).
		Count(&count).Error
	return count, err
}

// CountSubmissionsByStatus counts submissions by status
func (h *SharedHelpers) CountSubmissionsByStatus(ctx context.Context, surveyID uint, status models.SubmissionStatus) (int64, error) {
	var count int64
	err := h.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("survey_id = ? AND status = ?", surveyID, status).
		Count(&count).Error
	return count, err
}

// ApplySurveyFilters applies common filters to survey queries
func (h *SharedHelpers) ApplySurveyFilters(query *gorm.DB, filters models.SurveyFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.Search != nil && *filters.Search != "" {
		query = query.Where("title ILIKE ?", fmt.Sprintf("%%%s%%", *filters.Search))
	}
	return query
}

// ApplySubmissionFilters applies common filters to submission queries
func (h *SharedHelpers) ApplySubmissionFilters(query *gorm.DB, filters models.SubmissionFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	return query
}

// ApplyPaginationAndSort applies pagination and sorting with SQL injection protection
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	// Whitelist allowed sort columns
	allowedSortColumns := map[string]bool{
		"created_at":   true,
		"updated_at":   true,
		"submitted_at": true,
		"id":           true,
		"title":        true,
		"status":       true,
	}

	if sortBy == "" || !allowedSortColumns[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "ASC" {
		sortOrder = "DESC"
	} else {
		sortOrder = "ASC"
	}

	query = query.Order(fmt.Sprintf("%s %s", sortBy, sortOrder))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// SurveyStatus represents the lifecycle state of a survey
type SurveyStatus string

const (
	SurveyStatusDraft  SurveyStatus = "draft"
	SurveyStatusActive SurveyStatus = "active"
	SurveyStatusClosed SurveyStatus = "closed"
)

// ScoringMode determines how a completed submission is scored
type ScoringMode string

const (
	// ScoringModeManualPoints sums per-option point values from each
	// question's points config.
	ScoringModeManualPoints ScoringMode = "manual_points"

	// ScoringModeRequiredQuestions counts answered questions against the
	// countable set (required only, or all visible when IncludeOptional).
	ScoringModeRequiredQuestions ScoringMode = "required_questions"
)

// Survey represents a questionnaire definition
type Survey struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Title       string  `gorm:"size:255;not null" json:"title"`
	Description *string `gorm:"type:text" json:"description,omitempty"`

	Status SurveyStatus `gorm:"size:20;not null;default:'draft';index" json:"status"`

	// Scoring configuration
	ScoringMode     ScoringMode `gorm:"size:30;not null;default:'required_questions'" json:"scoring_mode"`
	IncludeOptional bool        `gorm:"default:false" json:"include_optional"`

	// Respondent identity is always tracked server-side; anonymity only
	// affects what read endpoints expose.
	IsAnonymous bool `gorm:"default:false" json:"is_anonymous"`

	// Edit policy. EditLimitHours == 0 means no time limit while edits
	// are allowed.
	AllowEdits     bool `gorm:"default:false" json:"allow_edits"`
	EditLimitHours int  `gorm:"default:0" json:"edit_limit_hours"`

	// Activity window (optional)
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`

	CreatedBy string         `gorm:"size:100;not null;index" json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Questions   []Question   `gorm:"foreignKey:SurveyID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	Submissions []Submission `gorm:"foreignKey:SurveyID" json:"-"`
}

func (Survey) TableName() string {
	return "surveys"
}

// IsOpenAt reports whether the survey accepts submissions at t.
// The survey must be active and t must fall inside the activity window.
func (s *Survey) IsOpenAt(t time.Time) bool {
	if s.Status != SurveyStatusActive {
		return false
	}
	if s.StartDate != nil && t.Before(*s.StartDate) {
		return false
	}
	if s.EndDate != nil && t.After(*s.EndDate) {
		return false
	}
	return true
}

// EditWindowOpen reports whether a submission made at submittedAt may
// still be edited at now. The boundary is exclusive: once the elapsed
// time reaches the limit the window is closed.
func (s *Survey) EditWindowOpen(submittedAt, now time.Time) bool {
	if !s.AllowEdits {
		return false
	}
	if s.EditLimitHours <= 0 {
		return true
	}
	return now.Sub(submittedAt) < time.Duration(s.EditLimitHours)*time.Hour
}

// CanTransitionTo validates a status transition.
// Allowed: draft -> active, active -> closed.
func (s *Survey) CanTransitionTo(target SurveyStatus) bool {
	switch s.Status {
	case SurveyStatusDraft:
		return target == SurveyStatusActive
	case SurveyStatusActive:
		return target == SurveyStatusClosed
	default:
		return false
	}
}

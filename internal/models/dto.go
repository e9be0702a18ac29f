package models

import (
	"time"
)

// ===== SURVEY DTOs =====

type CreateSurveyRequest struct {
	Title           string                  `json:"title" validate:"required,min=3,max=255"`
	Description     *string                 `json:"description,omitempty" validate:"omitempty,max=2000"`
	ScoringMode     ScoringMode             `json:"scoring_mode" validate:"required,scoring_mode"`
	IncludeOptional bool                    `json:"include_optional"`
	IsAnonymous     bool                    `json:"is_anonymous"`
	AllowEdits      bool                    `json:"allow_edits"`
	EditLimitHours  int                     `json:"edit_limit_hours" validate:"min=0,max=8760"`
	StartDate       *time.Time              `json:"start_date,omitempty"`
	EndDate         *time.Time              `json:"end_date,omitempty"`
	Questions       []CreateQuestionRequest `json:"questions,omitempty" validate:"omitempty,max=200,dive"`
}

type UpdateSurveyRequest struct {
	Title           *string      `json:"title,omitempty" validate:"omitempty,min=3,max=255"`
	Description     *string      `json:"description,omitempty" validate:"omitempty,max=2000"`
	ScoringMode     *ScoringMode `json:"scoring_mode,omitempty" validate:"omitempty,scoring_mode"`
	IncludeOptional *bool        `json:"include_optional,omitempty"`
	IsAnonymous     *bool        `json:"is_anonymous,omitempty"`
	AllowEdits      *bool        `json:"allow_edits,omitempty"`
	EditLimitHours  *int         `json:"edit_limit_hours,omitempty" validate:"omitempty,min=0,max=8760"`
	StartDate       *time.Time   `json:"start_date,omitempty"`
	EndDate         *time.Time   `json:"end_date,omitempty"`
}

type UpdateSurveyStatusRequest struct {
	Status SurveyStatus `json:"status" validate:"required,survey_status"`
}

type SurveyFilters struct {
	Status    *SurveyStatus `form:"status" validate:"omitempty,survey_status"`
	CreatedBy *string       `form:"created_by"`
	Search    *string       `form:"search" validate:"omitempty,max=255"`
	Page      int           `form:"page" validate:"min=0"`
	Size      int           `form:"size" validate:"min=0,max=100"`
	SortBy    string        `form:"sort_by"`
	SortOrder string        `form:"sort_order" validate:"omitempty,oneof=asc desc"`
}

type SurveyListResponse struct {
	Surveys []SurveySummary `json:"surveys"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	Size    int             `json:"size"`
}

type SurveySummary struct {
	ID              uint         `json:"id"`
	Title           string       `json:"title"`
	Status          SurveyStatus `json:"status"`
	ScoringMode     ScoringMode  `json:"scoring_mode"`
	IsAnonymous     bool         `json:"is_anonymous"`
	QuestionCount   int          `json:"question_count"`
	SubmissionCount int64        `json:"submission_count"`
	CreatedBy       string       `json:"created_by"`
	CreatedAt       time.Time    `json:"created_at"`
}

// ===== QUESTION DTOs =====

type CreateQuestionRequest struct {
	Text             string         `json:"text" validate:"required,min=1,max=2000"`
	Type             QuestionType   `json:"type" validate:"required,question_type"`
	IsRequired       bool           `json:"is_required"`
	DisplayOrder     *int           `json:"display_order,omitempty" validate:"omitempty,min=0"`
	Options          []Option       `json:"options,omitempty" validate:"omitempty,max=50,dive"`
	PointsConfig     *PointsConfig  `json:"points_config,omitempty"`
	ParentQuestionID *uint          `json:"parent_question_id,omitempty"`
	ShowIfAnswer     *ShowCondition `json:"show_if_answer,omitempty"`
}

type UpdateQuestionRequest struct {
	Text             *string        `json:"text,omitempty" validate:"omitempty,min=1,max=2000"`
	IsRequired       *bool          `json:"is_required,omitempty"`
	Options          []Option       `json:"options,omitempty" validate:"omitempty,max=50,dive"`
	PointsConfig     *PointsConfig  `json:"points_config,omitempty"`
	ParentQuestionID *uint          `json:"parent_question_id,omitempty"`
	ShowIfAnswer     *ShowCondition `json:"show_if_answer,omitempty"`
}

type ReorderQuestionsRequest struct {
	QuestionIDs []uint `json:"question_ids" validate:"required,min=1,dive,min=1"`
}

// ===== SUBMISSION DTOs =====

type ResponseInput struct {
	QuestionID uint     `json:"question_id" validate:"required,min=1"`
	Value      string   `json:"value,omitempty"`
	Values     []string `json:"values,omitempty" validate:"omitempty,max=50"`
}

type SubmitSurveyRequest struct {
	Responses []ResponseInput `json:"responses" validate:"required,max=500,dive"`
}

type EditSubmissionRequest struct {
	Responses []ResponseInput `json:"responses" validate:"required,max=500,dive"`
}

type SubmissionFilters struct {
	Status *SubmissionStatus `form:"status"`
	Page   int               `form:"page" validate:"min=0"`
	Size   int               `form:"size" validate:"min=0,max=100"`
}

type SubmissionResponse struct {
	ID              uint             `json:"id"`
	SurveyID        uint             `json:"survey_id"`
	RespondentID    string           `json:"respondent_id"`
	Status          SubmissionStatus `json:"status"`
	ScoreRaw        float64          `json:"score_raw"`
	ScoreMax        float64          `json:"score_max"`
	ScorePercentage float64          `json:"score_percentage"`
	SubmittedAt     time.Time        `json:"submitted_at"`
	EditedAt        *time.Time       `json:"edited_at,omitempty"`
	Responses       []ResponseItem   `json:"responses,omitempty"`
}

type ResponseItem struct {
	QuestionID uint          `json:"question_id"`
	Value      ResponseValue `json:"value"`
}

type SubmissionListResponse struct {
	Submissions []SubmissionResponse `json:"submissions"`
	Total       int64                `json:"total"`
	Page        int                  `json:"page"`
	Size        int                  `json:"size"`
}

type SubmissionStats struct {
	TotalSubmissions  int64   `json:"total_submissions"`
	AveragePercentage float64 `json:"average_percentage"`
	InconsistentCount int64   `json:"inconsistent_count"`
}

// ===== ANALYTICS DTOs =====

type SurveyAnalytics struct {
	SurveyID        uint            `json:"survey_id"`
	Title           string          `json:"title"`
	SubmissionCount int             `json:"submission_count"`
	GeneratedAt     time.Time       `json:"generated_at"`
	Questions       []QuestionStats `json:"questions"`
}

// QuestionStats carries the per-type distribution for one question.
// Exactly one of YesNo, Options, Numeric or Entries is populated,
// depending on the question type.
type QuestionStats struct {
	QuestionID uint         `json:"question_id"`
	Text       string       `json:"text"`
	Type       QuestionType `json:"type"`

	// Total counts responses seen, Answered those that were well formed,
	// Skipped those dropped as malformed. Total = Answered + Skipped.
	Total    int `json:"total"`
	Answered int `json:"answered"`
	Skipped  int `json:"skipped"`

	YesNo   *YesNoStats   `json:"yes_no,omitempty"`
	Options []OptionCount `json:"options,omitempty"`
	Numeric *NumericStats `json:"numeric,omitempty"`
	Entries []string      `json:"entries,omitempty"`
}

type YesNoStats struct {
	Yes        int     `json:"yes"`
	No         int     `json:"no"`
	YesPercent float64 `json:"yes_percent"`
	NoPercent  float64 `json:"no_percent"`
}

type OptionCount struct {
	OptionID string  `json:"option_id"`
	Label    string  `json:"label"`
	Count    int     `json:"count"`
	Percent  float64 `json:"percent"`
}

type NumericStats struct {
	Count   int     `json:"count"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Sum     float64 `json:"sum"`
	Average float64 `json:"average"`
}

// ===== COMMON RESPONSES =====

type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"gorm.io/datatypes"
)

// SubmissionStatus represents the persistence state of a submission
type SubmissionStatus string

const (
	// SubmissionStatusCompleted means the submission row and its full
	// response set are both persisted.
	SubmissionStatusCompleted SubmissionStatus = "completed"

	// SubmissionStatusInconsistent means the submission row was written
	// (scores included) but the response replacement failed. Repair
	// re-runs the replacement against this row.
	SubmissionStatusInconsistent SubmissionStatus = "inconsistent"
)

// MaskedRespondentID replaces the real respondent identity on read
// paths for anonymous surveys.
const MaskedRespondentID = "anonymous"

// Submission is one respondent's completed answer set for a survey.
// The composite unique index enforces one submission per respondent
// per survey at the database level.
type Submission struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	SurveyID     uint   `gorm:"not null;uniqueIndex:idx_submissions_survey_respondent" json:"survey_id"`
	RespondentID string `gorm:"size:100;not null;uniqueIndex:idx_submissions_survey_respondent" json:"respondent_id"`

	Status SubmissionStatus `gorm:"size:20;not null;default:'completed';index" json:"status"`

	ScoreRaw        float64 `gorm:"default:0" json:"score_raw"`
	ScoreMax        float64 `gorm:"default:0" json:"score_max"`
	ScorePercentage float64 `gorm:"default:0" json:"score_percentage"`

	SubmittedAt time.Time  `gorm:"not null" json:"submitted_at"`
	EditedAt    *time.Time `json:"edited_at,omitempty"`
	EditCount   int        `gorm:"default:0" json:"edit_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Responses []Response `gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE" json:"responses,omitempty"`
}

func (Submission) TableName() string {
	return "survey_submissions"
}

// Response is one answered question within a submission
type Response struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	SubmissionID uint `gorm:"not null;index" json:"submission_id"`
	QuestionID   uint `gorm:"not null;index" json:"question_id"`

	// Value holds a ResponseValue; the shape is interpreted against the
	// question's type
	Value datatypes.JSON `gorm:"type:jsonb;not null" json:"value"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Response) TableName() string {
	return "survey_responses"
}

// DecodedValue parses the Value JSONB column
func (r *Response) DecodedValue() (ResponseValue, error) {
	var v ResponseValue
	if len(r.Value) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(r.Value, &v); err != nil {
		return v, fmt.Errorf("failed to decode response value for question %d: %w", r.QuestionID, err)
	}
	return v, nil
}

// ResponseValue is the polymorphic answer payload. Values is used by
// multiple_choice questions, Value by every other type.
type ResponseValue struct {
	Value  string   `json:"value,omitempty"`
	Values []string `json:"values,omitempty"`
}

// IsAnswered reports whether the value carries any answer content for
// the given question type. An unanswered value hides conditional
// children and counts as missing for required questions.
func (v ResponseValue) IsAnswered(t QuestionType) bool {
	if t == QuestionTypeMultipleChoice {
		return len(v.Values) > 0
	}
	return v.Value != ""
}

// IsWellFormed reports whether the value parses for the question type.
// Answered but malformed values fail validation on required questions
// and are skipped (and counted) by analytics.
func (v ResponseValue) IsWellFormed(t QuestionType) bool {
	if !v.IsAnswered(t) {
		return false
	}

	switch t {
	case QuestionTypeYesNo:
		return v.Value == YesNoAnswerYes || v.Value == YesNoAnswerNo
	case QuestionTypeMultipleChoice:
		for _, s := range v.Values {
			if s == "" {
				return false
			}
		}
		return true
	case QuestionTypeRating, QuestionTypeScale:
		_, err := strconv.Atoi(v.Value)
		return err == nil
	case QuestionTypeNumber:
		_, err := strconv.ParseFloat(v.Value, 64)
		return err == nil
	case QuestionTypeDate:
		_, err := time.Parse(DateAnswerLayout, v.Value)
		return err == nil
	default:
		// single_choice, text, paragraph: any non-empty string
		return true
	}
}

// Number parses the value as a float for number questions
func (v ResponseValue) Number() (float64, error) {
	return strconv.ParseFloat(v.Value, 64)
}

// Int parses the value as an integer for rating and scale questions
func (v ResponseValue) Int() (int, error) {
	return strconv.Atoi(v.Value)
}

// Date parses the value for date questions
func (v ResponseValue) Date() (time.Time, error) {
	return time.Parse(DateAnswerLayout, v.Value)
}

// SelectedOptions returns the chosen option identifiers regardless of
// single or multi shape
func (v ResponseValue) SelectedOptions() []string {
	if len(v.Values) > 0 {
		return v.Values
	}
	if v.Value != "" {
		return []string{v.Value}
	}
	return nil
}

// ToJSON marshals the value for JSONB storage
func (v ResponseValue) ToJSON() (datatypes.JSON, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response value: %w", err)
	}
	return data, nil
}

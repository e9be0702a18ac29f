package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// QuestionType represents the kind of answer a question collects
type QuestionType string

const (
	QuestionTypeYesNo          QuestionType = "yes_no"
	QuestionTypeSingleChoice   QuestionType = "single_choice"
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeRating         QuestionType = "rating"
	QuestionTypeScale          QuestionType = "scale"
	QuestionTypeNumber         QuestionType = "number"
	QuestionTypeText           QuestionType = "text"
	QuestionTypeParagraph      QuestionType = "paragraph"
	QuestionTypeDate           QuestionType = "date"
)

// Fixed option identifiers for yes/no questions
const (
	YesNoAnswerYes = "yes"
	YesNoAnswerNo  = "no"
)

// DateAnswerLayout is the wire format for date answers
const DateAnswerLayout = "2006-01-02"

// IsValid checks whether the question type is one of the supported types
func (t QuestionType) IsValid() bool {
	switch t {
	case QuestionTypeYesNo, QuestionTypeSingleChoice, QuestionTypeMultipleChoice,
		QuestionTypeRating, QuestionTypeScale, QuestionTypeNumber,
		QuestionTypeText, QuestionTypeParagraph, QuestionTypeDate:
		return true
	}
	return false
}

// IsChoice reports whether answers reference option identifiers
func (t QuestionType) IsChoice() bool {
	switch t {
	case QuestionTypeYesNo, QuestionTypeSingleChoice, QuestionTypeMultipleChoice:
		return true
	}
	return false
}

// Question represents a single survey question.
// Options, PointsConfig and ShowIfAnswer are stored as JSONB because
// their shape varies with the question type.
type Question struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	SurveyID uint `gorm:"not null;index" json:"survey_id"`

	Text string       `gorm:"type:text;not null" json:"text"`
	Type QuestionType `gorm:"size:30;not null" json:"type"`

	DisplayOrder int  `gorm:"not null;index" json:"display_order"`
	IsRequired   bool `gorm:"default:false" json:"is_required"`

	// Options holds an ordered []Option for choice questions
	Options datatypes.JSON `gorm:"type:jsonb" json:"options,omitempty"`

	// PointsConfig holds a *PointsConfig for manual-points scoring
	PointsConfig datatypes.JSON `gorm:"type:jsonb" json:"points_config,omitempty"`

	// Conditional display: shown only when the parent question's answer
	// matches ShowIfAnswer (a *ShowCondition)
	ParentQuestionID *uint          `gorm:"index" json:"parent_question_id,omitempty"`
	ShowIfAnswer     datatypes.JSON `gorm:"type:jsonb" json:"show_if_answer,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "survey_questions"
}

// Option is one selectable choice of a choice-type question
type Option struct {
	ID    string `json:"id" validate:"required"`
	Label string `json:"label" validate:"required"`
}

// PointsConfig maps option identifiers to point values for manual scoring
type PointsConfig struct {
	Values    map[string]float64 `json:"values"`
	MaxPoints float64            `json:"max_points"`
}

// ShowCondition is the answer match a conditional question requires of
// its parent. Either Value (single match) or Values (membership) is set.
type ShowCondition struct {
	Value  string   `json:"value,omitempty"`
	Values []string `json:"values,omitempty"`
}

// Matches reports whether the parent's answer satisfies the condition.
// For multi-value answers any overlap with the condition set counts.
func (c *ShowCondition) Matches(answer ResponseValue) bool {
	accepted := c.Values
	if len(accepted) == 0 {
		if c.Value == "" {
			return false
		}
		accepted = []string{c.Value}
	}

	given := answer.Values
	if len(given) == 0 && answer.Value != "" {
		given = []string{answer.Value}
	}

	for _, g := range given {
		for _, a := range accepted {
			if g == a {
				return true
			}
		}
	}
	return false
}

// DecodedOptions parses the Options JSONB column
func (q *Question) DecodedOptions() ([]Option, error) {
	if len(q.Options) == 0 {
		return nil, nil
	}
	var opts []Option
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil, fmt.Errorf("failed to decode options for question %d: %w", q.ID, err)
	}
	return opts, nil
}

// DecodedPointsConfig parses the PointsConfig JSONB column
func (q *Question) DecodedPointsConfig() (*PointsConfig, error) {
	if len(q.PointsConfig) == 0 {
		return nil, nil
	}
	var cfg PointsConfig
	if err := json.Unmarshal(q.PointsConfig, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode points config for question %d: %w", q.ID, err)
	}
	return &cfg, nil
}

// DecodedShowIf parses the ShowIfAnswer JSONB column
func (q *Question) DecodedShowIf() (*ShowCondition, error) {
	if len(q.ShowIfAnswer) == 0 {
		return nil, nil
	}
	var cond ShowCondition
	if err := json.Unmarshal(q.ShowIfAnswer, &cond); err != nil {
		return nil, fmt.Errorf("failed to decode show condition for question %d: %w", q.ID, err)
	}
	return &cond, nil
}

// IsConditional reports whether display depends on a parent answer
func (q *Question) IsConditional() bool {
	return q.ParentQuestionID != nil
}

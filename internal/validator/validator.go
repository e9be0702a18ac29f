package validator

import (
	"fmt"
	"strings"

	"github.com/edupulse/survey-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground/validator with the service's custom rules
type Validator struct {
	validate *validator.Validate
}

// New creates a validator with all custom rules registered
func New() *Validator {
	v := &Validator{validate: validator.New()}
	v.registerRules()
	return v
}

// Validate validates struct tags and returns ValidationErrors or nil
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// Engine exposes the underlying validate instance
func (v *Validator) Engine() *validator.Validate {
	return v.validate
}

func (v *Validator) registerRules() {
	// question type validation
	v.validate.RegisterValidation("question_type", func(fl validator.FieldLevel) bool {
		return models.QuestionType(fl.Field().String()).IsValid()
	})

	// survey status validation
	v.validate.RegisterValidation("survey_status", func(fl validator.FieldLevel) bool {
		switch models.SurveyStatus(fl.Field().String()) {
		case models.SurveyStatusDraft, models.SurveyStatusActive, models.SurveyStatusClosed:
			return true
		}
		return false
	})

	// scoring mode validation
	v.validate.RegisterValidation("scoring_mode", func(fl validator.FieldLevel) bool {
		switch models.ScoringMode(fl.Field().String()) {
		case models.ScoringModeManualPoints, models.ScoringModeRequiredQuestions:
			return true
		}
		return false
	})
}

// ValidationError represents a single field validation failure
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

// ValidationErrors is a collection of validation failures
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(ve))
	for i, e := range ve {
		parts[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// ToValidationErrors converts validator library errors to our error type
func ToValidationErrors(err error) ValidationErrors {
	var result ValidationErrors

	if fieldErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range fieldErrors {
			result = append(result, ValidationError{
				Field:   strings.ToLower(fe.Field()),
				Message: getErrorMessage(fe),
				Value:   fe.Value(),
				Rule:    fe.Tag(),
			})
		}
		return result
	}

	return ValidationErrors{{Field: "request", Message: err.Error()}}
}

func getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "question_type":
		return "is not a supported question type"
	case "survey_status":
		return "is not a valid survey status"
	case "scoring_mode":
		return "is not a valid scoring mode"
	default:
		return fmt.Sprintf("failed validation rule %s", fe.Tag())
	}
}

package validator

import (
	"fmt"

	"github.com/edupulse/survey-service/internal/models"
)

// BusinessValidator handles survey authoring rules that go beyond
// struct tags: option presence per question type, points config shape,
// conditional-link ordering and cycle rejection, status transitions.
type BusinessValidator struct {
	validator *Validator
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	return &BusinessValidator{validator: New()}
}

// ValidateSurveyCreate validates survey creation business rules
func (bv *BusinessValidator) ValidateSurveyCreate(req *models.CreateSurveyRequest) ValidationErrors {
	var errors ValidationErrors

	if err := bv.validator.Validate(req); err != nil {
		if ve, ok := err.(ValidationErrors); ok {
			errors = append(errors, ve...)
		}
	}

	if req.StartDate != nil && req.EndDate != nil && !req.EndDate.After(*req.StartDate) {
		errors = append(errors, ValidationError{
			Field:   "end_date",
			Message: "must be after start_date",
			Value:   req.EndDate,
			Rule:    "business_logic",
		})
	}

	if req.EditLimitHours > 0 && !req.AllowEdits {
		errors = append(errors, ValidationError{
			Field:   "edit_limit_hours",
			Message: "has no effect when allow_edits is false",
			Value:   req.EditLimitHours,
			Rule:    "business_logic",
		})
	}

	errors = append(errors, bv.ValidateQuestionSet(req.ScoringMode, req.Questions)...)

	return errors
}

// ValidateQuestionSet validates an inline question list, including the
// conditional links which are expressed as indexes into the same list
// at creation time (parent_question_id holds the zero-based index of
// the parent question).
func (bv *BusinessValidator) ValidateQuestionSet(mode models.ScoringMode, questions []models.CreateQuestionRequest) ValidationErrors {
	var errors ValidationErrors

	for i, q := range questions {
		errors = append(errors, bv.validateQuestionShape(mode, fmt.Sprintf("questions[%d]", i), &q)...)

		if q.ParentQuestionID == nil {
			continue
		}
		parentIdx := int(*q.ParentQuestionID)
		if parentIdx >= i {
			// Forward references are rejected outright: a parent must
			// occur earlier in display order, which also rules out
			// self-reference and cycles within a new question set.
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("questions[%d].parent_question_id", i),
				Message: "must reference an earlier question",
				Value:   parentIdx,
				Rule:    "conditional_link",
			})
		}
	}

	return errors
}

// ValidateQuestionCreate validates adding one question to an existing survey
func (bv *BusinessValidator) ValidateQuestionCreate(survey *models.Survey, existing []*models.Question, req *models.CreateQuestionRequest) ValidationErrors {
	errors := bv.validateQuestionShape(survey.ScoringMode, "question", req)

	if req.ParentQuestionID != nil {
		var parent *models.Question
		for _, q := range existing {
			if q.ID == *req.ParentQuestionID {
				parent = q
				break
			}
		}
		if parent == nil {
			errors = append(errors, ValidationError{
				Field:   "parent_question_id",
				Message: "parent question does not exist in this survey",
				Value:   *req.ParentQuestionID,
				Rule:    "conditional_link",
			})
		} else if req.DisplayOrder != nil && parent.DisplayOrder >= *req.DisplayOrder {
			errors = append(errors, ValidationError{
				Field:   "parent_question_id",
				Message: "parent question must occur earlier in display order",
				Value:   *req.ParentQuestionID,
				Rule:    "conditional_link",
			})
		}
	}

	return errors
}

// ValidateConditionalChains rejects a question set whose parent chain
// revisits itself. The runtime resolver assumes a tree; cycles are
// caught here at definition time.
func (bv *BusinessValidator) ValidateConditionalChains(questions []*models.Question) ValidationErrors {
	var errors ValidationErrors

	byID := make(map[uint]*models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	for _, q := range questions {
		seen := map[uint]bool{q.ID: true}
		cur := q
		for cur.ParentQuestionID != nil {
			parent, ok := byID[*cur.ParentQuestionID]
			if !ok {
				errors = append(errors, ValidationError{
					Field:   "parent_question_id",
					Message: fmt.Sprintf("question %d references a parent outside the survey", cur.ID),
					Value:   *cur.ParentQuestionID,
					Rule:    "conditional_link",
				})
				break
			}
			if seen[parent.ID] {
				errors = append(errors, ValidationError{
					Field:   "parent_question_id",
					Message: fmt.Sprintf("question %d is part of a conditional cycle", q.ID),
					Value:   parent.ID,
					Rule:    "conditional_cycle",
				})
				break
			}
			if parent.DisplayOrder >= cur.DisplayOrder {
				errors = append(errors, ValidationError{
					Field:   "parent_question_id",
					Message: fmt.Sprintf("question %d references a parent that does not occur earlier", cur.ID),
					Value:   parent.ID,
					Rule:    "conditional_link",
				})
				break
			}
			seen[parent.ID] = true
			cur = parent
		}
	}

	return errors
}

// ValidateStatusTransition validates survey status transitions
func (bv *BusinessValidator) ValidateStatusTransition(current, target models.SurveyStatus, questionCount int) ValidationErrors {
	var errors ValidationErrors

	allowedTransitions := map[models.SurveyStatus][]models.SurveyStatus{
		models.SurveyStatusDraft:  {models.SurveyStatusActive},
		models.SurveyStatusActive: {models.SurveyStatusClosed},
		models.SurveyStatusClosed: {},
	}

	allowed := false
	for _, s := range allowedTransitions[current] {
		if target == s {
			allowed = true
			break
		}
	}

	if !allowed {
		errors = append(errors, ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("cannot transition from %s to %s", current, target),
			Value:   target,
			Rule:    "status_transition",
		})
	}

	if target == models.SurveyStatusActive && questionCount == 0 {
		errors = append(errors, ValidationError{
			Field:   "questions",
			Message: "survey must have at least one question before activation",
			Value:   questionCount,
			Rule:    "business_logic",
		})
	}

	return errors
}

// UnmappedPointOptions returns the option identifiers of a choice
// question that carry no entry in its points config. Unmapped options
// score zero at runtime; authoring surfaces them as a warning, not an
// error.
func (bv *BusinessValidator) UnmappedPointOptions(req *models.CreateQuestionRequest) []string {
	if req.PointsConfig == nil || !req.Type.IsChoice() {
		return nil
	}

	optionIDs := make([]string, 0, len(req.Options))
	if req.Type == models.QuestionTypeYesNo {
		optionIDs = append(optionIDs, models.YesNoAnswerYes, models.YesNoAnswerNo)
	} else {
		for _, opt := range req.Options {
			optionIDs = append(optionIDs, opt.ID)
		}
	}

	var unmapped []string
	for _, id := range optionIDs {
		if _, ok := req.PointsConfig.Values[id]; !ok {
			unmapped = append(unmapped, id)
		}
	}
	return unmapped
}

func (bv *BusinessValidator) validateQuestionShape(mode models.ScoringMode, field string, req *models.CreateQuestionRequest) ValidationErrors {
	var errors ValidationErrors

	switch req.Type {
	case models.QuestionTypeSingleChoice, models.QuestionTypeMultipleChoice:
		if len(req.Options) < 2 {
			errors = append(errors, ValidationError{
				Field:   field + ".options",
				Message: "choice questions require at least two options",
				Value:   len(req.Options),
				Rule:    "business_logic",
			})
		}
		errors = append(errors, validateUniqueOptionIDs(field, req.Options)...)
	case models.QuestionTypeYesNo:
		if len(req.Options) > 0 {
			errors = append(errors, ValidationError{
				Field:   field + ".options",
				Message: "yes/no questions use fixed options",
				Value:   len(req.Options),
				Rule:    "business_logic",
			})
		}
	default:
		if len(req.Options) > 0 {
			errors = append(errors, ValidationError{
				Field:   field + ".options",
				Message: fmt.Sprintf("options are not allowed for %s questions", req.Type),
				Value:   len(req.Options),
				Rule:    "business_logic",
			})
		}
	}

	if req.PointsConfig != nil {
		if mode != models.ScoringModeManualPoints {
			errors = append(errors, ValidationError{
				Field:   field + ".points_config",
				Message: "points config is only allowed on manual-points surveys",
				Rule:    "business_logic",
			})
		}
		if !req.Type.IsChoice() {
			errors = append(errors, ValidationError{
				Field:   field + ".points_config",
				Message: fmt.Sprintf("points config is not supported for %s questions", req.Type),
				Rule:    "business_logic",
			})
		}
		if req.PointsConfig.MaxPoints < 0 {
			errors = append(errors, ValidationError{
				Field:   field + ".points_config.max_points",
				Message: "must not be negative",
				Value:   req.PointsConfig.MaxPoints,
				Rule:    "business_logic",
			})
		}
	}

	if req.ParentQuestionID != nil && req.ShowIfAnswer == nil {
		errors = append(errors, ValidationError{
			Field:   field + ".show_if_answer",
			Message: "is required when parent_question_id is set",
			Rule:    "conditional_link",
		})
	}
	if req.ParentQuestionID == nil && req.ShowIfAnswer != nil {
		errors = append(errors, ValidationError{
			Field:   field + ".show_if_answer",
			Message: "requires parent_question_id",
			Rule:    "conditional_link",
		})
	}
	if req.ShowIfAnswer != nil && req.ShowIfAnswer.Value == "" && len(req.ShowIfAnswer.Values) == 0 {
		errors = append(errors, ValidationError{
			Field:   field + ".show_if_answer",
			Message: "must specify a value or a set of values",
			Rule:    "conditional_link",
		})
	}

	return errors
}

func validateUniqueOptionIDs(field string, options []models.Option) ValidationErrors {
	var errors ValidationErrors
	seen := make(map[string]bool, len(options))
	for i, opt := range options {
		if seen[opt.ID] {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("%s.options[%d]", field, i),
				Message: fmt.Sprintf("duplicate option id %q", opt.ID),
				Value:   opt.ID,
				Rule:    "business_logic",
			})
		}
		seen[opt.ID] = true
	}
	return errors
}

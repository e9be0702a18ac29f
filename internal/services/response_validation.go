package services

import (
	"github.com/edupulse/survey-service/internal/models"
)

// ValidateResponses checks that every required visible question has a
// well-formed answer. It fails fast, reporting the first offending
// question in display order. Runs before scoring and before any
// persistence; a missing required answer is a hard rejection, not a
// zero score. Pure check.
func ValidateResponses(questions []*models.Question, answers map[uint]models.ResponseValue) error {
	flags := ResolveVisibility(questions, answers)

	for _, q := range questions {
		if !flags[q.ID] {
			continue
		}

		answer, answered := answers[q.ID]

		if q.IsRequired {
			if !answered || !answer.IsAnswered(q.Type) {
				return NewQuestionValidationError(q.ID, "required question has no answer")
			}
			if !answer.IsWellFormed(q.Type) {
				return NewQuestionValidationError(q.ID, "answer is malformed for question type "+string(q.Type))
			}
			if err := validateChoiceAnswer(q, answer); err != nil {
				return err
			}
			continue
		}

		// Optional questions may be unanswered, but a supplied answer
		// still has to be well formed.
		if answered && answer.IsAnswered(q.Type) {
			if !answer.IsWellFormed(q.Type) {
				return NewQuestionValidationError(q.ID, "answer is malformed for question type "+string(q.Type))
			}
			if err := validateChoiceAnswer(q, answer); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateChoiceAnswer rejects selections that reference option
// identifiers the question does not define. Yes/no questions carry
// fixed identifiers and skip the lookup.
func validateChoiceAnswer(q *models.Question, answer models.ResponseValue) error {
	if !q.Type.IsChoice() || q.Type == models.QuestionTypeYesNo {
		return nil
	}

	options, err := q.DecodedOptions()
	if err != nil {
		return NewQuestionValidationError(q.ID, "question options are unreadable")
	}
	if len(options) == 0 {
		return NewQuestionValidationError(q.ID, "choice question has no options")
	}

	known := make(map[string]bool, len(options))
	for _, opt := range options {
		known[opt.ID] = true
	}
	for _, id := range answer.SelectedOptions() {
		if !known[id] {
			return NewQuestionValidationError(q.ID, "answer references unknown option "+id)
		}
	}
	return nil
}

// BuildAnswerMap converts the wire-shape response list into the
// response map the resolver, validator and scorer operate on. Later
// entries for the same question win.
func BuildAnswerMap(inputs []models.ResponseInput) map[uint]models.ResponseValue {
	answers := make(map[uint]models.ResponseValue, len(inputs))
	for _, in := range inputs {
		answers[in.QuestionID] = models.ResponseValue{
			Value:  in.Value,
			Values: in.Values,
		}
	}
	return answers
}

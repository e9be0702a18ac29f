package services

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services
var (
	ErrSurveyNotFound     = errors.New("survey not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrSubmissionNotFound = errors.New("submission not found")

	ErrSurveyNotOpen           = errors.New("survey is not accepting submissions")
	ErrDuplicateSubmission     = errors.New("a completed submission already exists for this respondent")
	ErrEditsNotAllowed         = errors.New("survey does not allow submission edits")
	ErrEditWindowClosed        = errors.New("edit window has closed")
	ErrInvalidStatusTransition = errors.New("invalid survey status transition")
	ErrSurveyHasSubmissions    = errors.New("survey has submissions and cannot be deleted")
	ErrSubmissionNotRepairable = errors.New("submission is not in a repairable state")
	ErrRespondentMismatch      = errors.New("submission belongs to a different respondent")
	ErrQuestionHasChildren     = errors.New("question has dependent conditional questions")
	ErrSurveyNotDraft          = errors.New("survey structure can only change while in draft")
)

// ValidationError reports a rejected input: a missing required answer,
// a malformed answer shape, or an invalid survey definition. Always
// recoverable by the caller. QuestionID identifies the offending
// question when the failure is answer-related.
type ValidationError struct {
	Field      string      `json:"field,omitempty"`
	QuestionID uint        `json:"question_id,omitempty"`
	Message    string      `json:"message"`
	Value      interface{} `json:"value,omitempty"`
}

func (e *ValidationError) Error() string {
	if e.QuestionID != 0 {
		return fmt.Sprintf("validation failed for question %d: %s", e.QuestionID, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

func NewQuestionValidationError(questionID uint, message string) *ValidationError {
	return &ValidationError{QuestionID: questionID, Message: message}
}

// PolicyError reports a rejected lifecycle transition (duplicate
// submission, closed edit window, edits disallowed, survey not open).
// The existing submission, if any, remains untouched.
type PolicyError struct {
	Reason       string `json:"reason"`
	SurveyID     uint   `json:"survey_id,omitempty"`
	SubmissionID uint   `json:"submission_id,omitempty"`
	Err          error  `json:"-"`
}

func (e *PolicyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("policy violation: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("policy violation: %s", e.Reason)
}

func (e *PolicyError) Unwrap() error {
	return e.Err
}

func NewPolicyError(reason string, err error) *PolicyError {
	return &PolicyError{Reason: reason, Err: err}
}

// InconsistencyError reports a submission whose row was persisted but
// whose response replacement failed. Not locally recoverable; callers
// retry through the repair path against SubmissionID instead of
// creating a duplicate submission.
type InconsistencyError struct {
	SubmissionID uint  `json:"submission_id"`
	Err          error `json:"-"`
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("submission %d persisted but response replacement failed: %v", e.SubmissionID, e.Err)
}

func (e *InconsistencyError) Unwrap() error {
	return e.Err
}

func NewInconsistencyError(submissionID uint, err error) *InconsistencyError {
	return &InconsistencyError{SubmissionID: submissionID, Err: err}
}

// ===== ERROR CLASSIFICATION HELPERS =====

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsPolicyError(err error) bool {
	var pe *PolicyError
	return errors.As(err, &pe)
}

func IsInconsistencyError(err error) bool {
	var ie *InconsistencyError
	return errors.As(err, &ie)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrSurveyNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrSubmissionNotFound)
}

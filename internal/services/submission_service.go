package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/edupulse/survey-service/internal/models"
	"github.com/edupulse/survey-service/internal/repositories"
	"github.com/edupulse/survey-service/internal/validator"
	"gorm.io/gorm"
)

type submissionService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	events    NotificationEventService
}

// NewSubmissionService creates the submission lifecycle service
func NewSubmissionService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator, events NotificationEventService) SubmissionService {
	return &submissionService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
		events:    events,
	}
}

// Submit accepts a completed answer pass for a survey. The flow is
// validate, score, persist: the submission row first, then the response
// set as one wholesale replacement. A respondent who already holds an
// editable submission gets an in-place edit; a non-editable one is a
// policy conflict. A second row for the same (survey, respondent) pair
// is never created.
func (s *submissionService) Submit(ctx context.Context, surveyID uint, respondentID string, req *models.SubmitSurveyRequest) (*SubmissionResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if respondentID == "" {
		return nil, NewValidationError("respondent_id", "is required", nil)
	}

	survey, questions, err := s.loadSurveyWithQuestions(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if !survey.IsOpenAt(now) {
		return nil, &PolicyError{Reason: "survey is not accepting submissions", SurveyID: surveyID, Err: ErrSurveyNotOpen}
	}

	answers := s.collectAnswers(questions, req.Responses)
	if err := ValidateResponses(questions, answers); err != nil {
		return nil, err
	}
	score := ComputeScore(survey, questions, answers)

	existing, err := s.repo.Submission().GetBySurveyAndRespondent(ctx, nil, surveyID, respondentID)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to look up existing submission: %w", err)
	}

	if existing != nil {
		if !survey.EditWindowOpen(existing.SubmittedAt, now) {
			return nil, &PolicyError{
				Reason:       "a completed submission already exists and is no longer editable",
				SurveyID:     surveyID,
				SubmissionID: existing.ID,
				Err:          ErrDuplicateSubmission,
			}
		}
		// Re-submit within the edit window updates the existing row in
		// place rather than duplicating it.
		return s.applyEdit(ctx, survey, questions, existing, answers, score, now)
	}

	submission := &models.Submission{
		SurveyID:        surveyID,
		RespondentID:    respondentID,
		Status:          models.SubmissionStatusCompleted,
		ScoreRaw:        score.Raw,
		ScoreMax:        score.Max,
		ScorePercentage: score.Percentage,
		SubmittedAt:     now,
	}
	if err := s.repo.Submission().Create(ctx, nil, submission); err != nil {
		// The unique index on (survey_id, respondent_id) backstops
		// concurrent double-submits.
		return nil, &PolicyError{Reason: "submission already exists", SurveyID: surveyID, Err: fmt.Errorf("%w: %w", ErrDuplicateSubmission, err)}
	}

	rows := buildResponseRows(submission.ID, questions, answers)
	if err := s.repo.Response().ReplaceForSubmission(ctx, submission.ID, rows); err != nil {
		return nil, s.markInconsistent(ctx, submission, err)
	}

	s.logger.Info("Submission completed",
		"survey_id", surveyID,
		"submission_id", submission.ID,
		"score_percentage", score.Percentage)

	s.publishCompleted(ctx, survey, submission, false)

	return resultFor(submission), nil
}

// Edit replaces a submission's answer set within the allowed window.
// Re-validates, re-scores, then swaps the response rows wholesale.
func (s *submissionService) Edit(ctx context.Context, submissionID uint, respondentID string, req *models.EditSubmissionRequest) (*SubmissionResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	submission, err := s.repo.Submission().GetByID(ctx, nil, submissionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	if submission.RespondentID != respondentID {
		return nil, &PolicyError{Reason: "submission belongs to a different respondent", SubmissionID: submissionID, Err: ErrRespondentMismatch}
	}

	survey, questions, err := s.loadSurveyWithQuestions(ctx, submission.SurveyID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if !survey.AllowEdits {
		return nil, &PolicyError{Reason: "survey does not allow edits", SubmissionID: submissionID, Err: ErrEditsNotAllowed}
	}
	if !survey.EditWindowOpen(submission.SubmittedAt, now) {
		return nil, &PolicyError{Reason: "edit window has closed", SubmissionID: submissionID, Err: ErrEditWindowClosed}
	}

	answers := s.collectAnswers(questions, req.Responses)
	if err := ValidateResponses(questions, answers); err != nil {
		return nil, err
	}
	score := ComputeScore(survey, questions, answers)

	return s.applyEdit(ctx, survey, questions, submission, answers, score, now)
}

// Repair re-runs the response replacement for a submission left in the
// inconsistent state (row persisted, responses missing). It never
// creates a new submission and ignores the edit window: the respondent
// already got past policy when the original write started.
func (s *submissionService) Repair(ctx context.Context, submissionID uint, req *models.EditSubmissionRequest) (*SubmissionResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	submission, err := s.repo.Submission().GetByID(ctx, nil, submissionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	if submission.Status != models.SubmissionStatusInconsistent {
		return nil, &PolicyError{Reason: "submission does not need repair", SubmissionID: submissionID, Err: ErrSubmissionNotRepairable}
	}

	survey, questions, err := s.loadSurveyWithQuestions(ctx, submission.SurveyID)
	if err != nil {
		return nil, err
	}

	answers := s.collectAnswers(questions, req.Responses)
	if err := ValidateResponses(questions, answers); err != nil {
		return nil, err
	}
	score := ComputeScore(survey, questions, answers)

	submission.ScoreRaw = score.Raw
	submission.ScoreMax = score.Max
	submission.ScorePercentage = score.Percentage
	submission.Status = models.SubmissionStatusCompleted

	if err := s.repo.Submission().Update(ctx, nil, submission); err != nil {
		return nil, fmt.Errorf("failed to update submission during repair: %w", err)
	}

	rows := buildResponseRows(submission.ID, questions, answers)
	if err := s.repo.Response().ReplaceForSubmission(ctx, submission.ID, rows); err != nil {
		return nil, s.markInconsistent(ctx, submission, err)
	}

	s.logger.Info("Submission repaired",
		"submission_id", submission.ID,
		"survey_id", submission.SurveyID)

	return resultFor(submission), nil
}

// GetByID returns a submission with its responses. Anonymous surveys
// get the respondent reference masked; identity stays tracked
// server-side for the uniqueness invariant.
func (s *submissionService) GetByID(ctx context.Context, submissionID uint) (*models.SubmissionResponse, error) {
	submission, err := s.repo.Submission().GetByIDWithResponses(ctx, nil, submissionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	survey, err := s.repo.Survey().GetByID(ctx, nil, submission.SurveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get survey for submission: %w", err)
	}

	return s.toSubmissionResponse(submission, survey.IsAnonymous, true), nil
}

// GetBySurvey lists a survey's submissions with anonymity masking
func (s *submissionService) GetBySurvey(ctx context.Context, surveyID uint, filters models.SubmissionFilters) (*models.SubmissionListResponse, error) {
	survey, err := s.repo.Survey().GetByID(ctx, nil, surveyID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}

	submissions, total, err := s.repo.Submission().GetBySurvey(ctx, nil, surveyID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	items := make([]models.SubmissionResponse, 0, len(submissions))
	for _, sub := range submissions {
		items = append(items, *s.toSubmissionResponse(sub, survey.IsAnonymous, false))
	}

	return &models.SubmissionListResponse{
		Submissions: items,
		Total:       total,
		Page:        filters.Page,
		Size:        filters.Size,
	}, nil
}

// GetStats returns aggregate submission statistics for a survey
func (s *submissionService) GetStats(ctx context.Context, surveyID uint) (*models.SubmissionStats, error) {
	stats, err := s.repo.Submission().GetStats(ctx, nil, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission stats: %w", err)
	}
	return stats, nil
}

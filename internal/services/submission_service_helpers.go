package services

import (
	"context"
	"fmt"
	"time"

	"github.com/edupulse/survey-service/internal/models"
	"github.com/edupulse/survey-service/internal/repositories"
)

func (s *submissionService) loadSurveyWithQuestions(ctx context.Context, surveyID uint) (*models.Survey, []*models.Question, error) {
	survey, err := s.repo.Survey().GetByID(ctx, nil, surveyID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrSurveyNotFound
		}
		return nil, nil, fmt.Errorf("failed to get survey: %w", err)
	}

	questions, err := s.repo.Question().GetBySurvey(ctx, nil, surveyID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get survey questions: %w", err)
	}

	return survey, questions, nil
}

// collectAnswers builds the answer map, dropping answers that target
// questions outside this survey.
func (s *submissionService) collectAnswers(questions []*models.Question, inputs []models.ResponseInput) map[uint]models.ResponseValue {
	known := make(map[uint]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
	}

	answers := BuildAnswerMap(inputs)
	for id := range answers {
		if !known[id] {
			delete(answers, id)
		}
	}
	return answers
}

// applyEdit updates the submission row with fresh scores and swaps the
// response set. Shared by Edit and by Submit's update-in-place path.
func (s *submissionService) applyEdit(ctx context.Context, survey *models.Survey, questions []*models.Question, submission *models.Submission, answers map[uint]models.ResponseValue, score ScoreResult, now time.Time) (*SubmissionResult, error) {
	submission.ScoreRaw = score.Raw
	submission.ScoreMax = score.Max
	submission.ScorePercentage = score.Percentage
	submission.Status = models.SubmissionStatusCompleted
	submission.EditedAt = &now
	submission.EditCount++

	if err := s.repo.Submission().Update(ctx, nil, submission); err != nil {
		return nil, fmt.Errorf("failed to update submission: %w", err)
	}

	rows := buildResponseRows(submission.ID, questions, answers)
	if err := s.repo.Response().ReplaceForSubmission(ctx, submission.ID, rows); err != nil {
		return nil, s.markInconsistent(ctx, submission, err)
	}

	s.logger.Info("Submission edited",
		"survey_id", survey.ID,
		"submission_id", submission.ID,
		"edit_count", submission.EditCount)

	s.publishCompleted(ctx, survey, submission, true)

	return resultFor(submission), nil
}

// markInconsistent records the partial-failure state after the
// submission row was written but the response replacement failed, and
// wraps the cause as an InconsistencyError pointing at the repair path.
func (s *submissionService) markInconsistent(ctx context.Context, submission *models.Submission, cause error) error {
	if err := s.repo.Submission().UpdateStatus(ctx, nil, submission.ID, models.SubmissionStatusInconsistent); err != nil {
		s.logger.Error("Failed to flag submission as inconsistent",
			"submission_id", submission.ID,
			"error", err)
	}

	s.logger.Error("Response replacement failed after submission write",
		"submission_id", submission.ID,
		"survey_id", submission.SurveyID,
		"error", cause)

	return NewInconsistencyError(submission.ID, cause)
}

// publishCompleted emits the lifecycle event without failing the
// request; delivery problems are logged and left to the broker retry.
func (s *submissionService) publishCompleted(ctx context.Context, survey *models.Survey, submission *models.Submission, edited bool) {
	if s.events == nil {
		return
	}
	if err := s.events.NotifySubmissionCompleted(ctx, survey, submission, edited); err != nil {
		s.logger.Error("Failed to publish submission event",
			"submission_id", submission.ID,
			"error", err)
	}
}

// buildResponseRows materializes response rows for every visible,
// answered question. Hidden or empty answers produce no row, so the
// stored set always mirrors one coherent answer pass.
func buildResponseRows(submissionID uint, questions []*models.Question, answers map[uint]models.ResponseValue) []*models.Response {
	flags := ResolveVisibility(questions, answers)

	rows := make([]*models.Response, 0, len(answers))
	for _, q := range questions {
		if !flags[q.ID] {
			continue
		}
		answer, ok := answers[q.ID]
		if !ok || !answer.IsAnswered(q.Type) {
			continue
		}
		value, err := answer.ToJSON()
		if err != nil {
			continue
		}
		rows = append(rows, &models.Response{
			SubmissionID: submissionID,
			QuestionID:   q.ID,
			Value:        value,
		})
	}
	return rows
}

func resultFor(submission *models.Submission) *SubmissionResult {
	return &SubmissionResult{
		SubmissionID:    submission.ID,
		ScoreRaw:        submission.ScoreRaw,
		ScoreMax:        submission.ScoreMax,
		ScorePercentage: submission.ScorePercentage,
	}
}

func (s *submissionService) toSubmissionResponse(submission *models.Submission, anonymous, includeResponses bool) *models.SubmissionResponse {
	respondentID := submission.RespondentID
	if anonymous {
		respondentID = models.MaskedRespondentID
	}

	resp := &models.SubmissionResponse{
		ID:              submission.ID,
		SurveyID:        submission.SurveyID,
		RespondentID:    respondentID,
		Status:          submission.Status,
		ScoreRaw:        submission.ScoreRaw,
		ScoreMax:        submission.ScoreMax,
		ScorePercentage: submission.ScorePercentage,
		SubmittedAt:     submission.SubmittedAt,
		EditedAt:        submission.EditedAt,
	}

	if includeResponses {
		items := make([]models.ResponseItem, 0, len(submission.Responses))
		for i := range submission.Responses {
			r := &submission.Responses[i]
			value, err := r.DecodedValue()
			if err != nil {
				s.logger.Warn("Skipping unreadable response value",
					"submission_id", submission.ID,
					"question_id", r.QuestionID,
					"error", err)
				continue
			}
			items = append(items, models.ResponseItem{
				QuestionID: r.QuestionID,
				Value:      value,
			})
		}
		resp.Responses = items
	}

	return resp
}

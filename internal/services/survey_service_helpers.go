package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/edupulse/survey-service/internal/models"
	"github.com/edupulse/survey-service/internal/repositories"
	"gorm.io/datatypes"
)

// buildQuestion materializes a question row from a creation request,
// marshalling the type-specific fields into their JSONB columns. The
// parent link is left for the caller: at inline creation time it is an
// index that still needs remapping.
func buildQuestion(surveyID uint, req *models.CreateQuestionRequest, defaultOrder int) (*models.Question, error) {
	question := &models.Question{
		SurveyID:     surveyID,
		Text:         req.Text,
		Type:         req.Type,
		IsRequired:   req.IsRequired,
		DisplayOrder: defaultOrder,
	}
	if req.DisplayOrder != nil {
		question.DisplayOrder = *req.DisplayOrder
	}

	if len(req.Options) > 0 {
		raw, err := json.Marshal(req.Options)
		if err != nil {
			return nil, fmt.Errorf("failed to encode options: %w", err)
		}
		question.Options = datatypes.JSON(raw)
	}
	if req.PointsConfig != nil {
		raw, err := json.Marshal(req.PointsConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to encode points config: %w", err)
		}
		question.PointsConfig = datatypes.JSON(raw)
	}
	if req.ShowIfAnswer != nil {
		raw, err := json.Marshal(req.ShowIfAnswer)
		if err != nil {
			return nil, fmt.Errorf("failed to encode show condition: %w", err)
		}
		question.ShowIfAnswer = datatypes.JSON(raw)
	}

	return question, nil
}

func applySurveyUpdate(survey *models.Survey, req *models.UpdateSurveyRequest) {
	if req.Title != nil {
		survey.Title = *req.Title
	}
	if req.Description != nil {
		survey.Description = req.Description
	}
	if req.ScoringMode != nil {
		survey.ScoringMode = *req.ScoringMode
	}
	if req.IncludeOptional != nil {
		survey.IncludeOptional = *req.IncludeOptional
	}
	if req.IsAnonymous != nil {
		survey.IsAnonymous = *req.IsAnonymous
	}
	if req.AllowEdits != nil {
		survey.AllowEdits = *req.AllowEdits
	}
	if req.EditLimitHours != nil {
		survey.EditLimitHours = *req.EditLimitHours
	}
	if req.StartDate != nil {
		survey.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		survey.EndDate = req.EndDate
	}
}

func applyQuestionUpdate(question *models.Question, req *models.UpdateQuestionRequest) error {
	if req.Text != nil {
		question.Text = *req.Text
	}
	if req.IsRequired != nil {
		question.IsRequired = *req.IsRequired
	}
	if req.Options != nil {
		raw, err := json.Marshal(req.Options)
		if err != nil {
			return fmt.Errorf("failed to encode options: %w", err)
		}
		question.Options = datatypes.JSON(raw)
	}
	if req.PointsConfig != nil {
		raw, err := json.Marshal(req.PointsConfig)
		if err != nil {
			return fmt.Errorf("failed to encode points config: %w", err)
		}
		question.PointsConfig = datatypes.JSON(raw)
	}
	if req.ParentQuestionID != nil {
		question.ParentQuestionID = req.ParentQuestionID
	}
	if req.ShowIfAnswer != nil {
		raw, err := json.Marshal(req.ShowIfAnswer)
		if err != nil {
			return fmt.Errorf("failed to encode show condition: %w", err)
		}
		question.ShowIfAnswer = datatypes.JSON(raw)
	}
	return nil
}

// questionAsCreateRequest converts a stored question back into request
// shape so the authoring rules can re-check it after an update.
func questionAsCreateRequest(q *models.Question) *models.CreateQuestionRequest {
	req := &models.CreateQuestionRequest{
		Text:             q.Text,
		Type:             q.Type,
		IsRequired:       q.IsRequired,
		ParentQuestionID: q.ParentQuestionID,
	}
	order := q.DisplayOrder
	req.DisplayOrder = &order

	if opts, err := q.DecodedOptions(); err == nil {
		req.Options = opts
	}
	if cfg, err := q.DecodedPointsConfig(); err == nil {
		req.PointsConfig = cfg
	}
	if cond, err := q.DecodedShowIf(); err == nil {
		req.ShowIfAnswer = cond
	}
	return req
}

// verifyReorderSet checks that the requested order covers the survey's
// questions exactly once each.
func verifyReorderSet(questions []*models.Question, orderedIDs []uint) error {
	if len(orderedIDs) != len(questions) {
		return NewValidationError("question_ids",
			fmt.Sprintf("expected %d question ids, got %d", len(questions), len(orderedIDs)),
			len(orderedIDs))
	}

	known := make(map[uint]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
	}
	seen := make(map[uint]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		if !known[id] {
			return NewValidationError("question_ids",
				fmt.Sprintf("question %d does not belong to this survey", id), id)
		}
		if seen[id] {
			return NewValidationError("question_ids",
				fmt.Sprintf("question %d appears more than once", id), id)
		}
		seen[id] = true
	}
	return nil
}

func (s *surveyService) requireDraft(survey *models.Survey) error {
	if survey.Status != models.SurveyStatusDraft {
		return &PolicyError{
			Reason:   fmt.Sprintf("survey is %s; questions can only change in draft", survey.Status),
			SurveyID: survey.ID,
			Err:      ErrSurveyNotDraft,
		}
	}
	return nil
}

// getSurveyQuestion loads a question and verifies it belongs to the survey
func (s *surveyService) getSurveyQuestion(ctx context.Context, surveyID, questionID uint) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, nil, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if question.SurveyID != surveyID {
		return nil, ErrQuestionNotFound
	}
	return question, nil
}

func (s *surveyService) warnUnmappedPoints(surveyID uint, questions []models.CreateQuestionRequest) {
	for i := range questions {
		if unmapped := s.business.UnmappedPointOptions(&questions[i]); len(unmapped) > 0 {
			s.logger.Warn("Question has options without point values",
				"survey_id", surveyID,
				"question_index", i,
				"options", unmapped)
		}
	}
}

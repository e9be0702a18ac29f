package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/edupulse/survey-service/internal/models"
	"github.com/edupulse/survey-service/internal/repositories"
	"github.com/edupulse/survey-service/internal/validator"
	"gorm.io/gorm"
)

type surveyService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	business  *validator.BusinessValidator
	events    NotificationEventService
}

// NewSurveyService creates the survey authoring service
func NewSurveyService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator, events NotificationEventService) SurveyService {
	return &surveyService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
		business:  validator.NewBusinessValidator(),
		events:    events,
	}
}

// Create persists a new draft survey, optionally with its full question
// list. Inline conditional links use the zero-based question index as
// parent_question_id; the indexes are remapped to real identifiers once
// the rows exist. Everything happens in one transaction.
func (s *surveyService) Create(ctx context.Context, req *models.CreateSurveyRequest, createdBy string) (*models.Survey, error) {
	if createdBy == "" {
		return nil, NewValidationError("created_by", "is required", nil)
	}
	if errs := s.business.ValidateSurveyCreate(req); errs.HasErrors() {
		return nil, errs
	}

	survey := &models.Survey{
		Title:           req.Title,
		Description:     req.Description,
		Status:          models.SurveyStatusDraft,
		ScoringMode:     req.ScoringMode,
		IncludeOptional: req.IncludeOptional,
		IsAnonymous:     req.IsAnonymous,
		AllowEdits:      req.AllowEdits,
		EditLimitHours:  req.EditLimitHours,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		CreatedBy:       createdBy,
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Survey().Create(ctx, nil, survey); err != nil {
			return fmt.Errorf("failed to create survey: %w", err)
		}

		if len(req.Questions) == 0 {
			return nil
		}

		created := make([]*models.Question, 0, len(req.Questions))
		for i := range req.Questions {
			question, err := buildQuestion(survey.ID, &req.Questions[i], i)
			if err != nil {
				return err
			}
			created = append(created, question)
		}
		if err := txRepo.Question().CreateBatch(ctx, nil, created); err != nil {
			return fmt.Errorf("failed to create questions: %w", err)
		}

		// The batch insert assigned real identifiers; resolve the
		// index-based parent links against them now. Validation already
		// guarantees each parent index points at an earlier question.
		for i := range req.Questions {
			if req.Questions[i].ParentQuestionID == nil {
				continue
			}
			parentIdx := int(*req.Questions[i].ParentQuestionID)
			created[i].ParentQuestionID = &created[parentIdx].ID
			if err := txRepo.Question().Update(ctx, nil, created[i]); err != nil {
				return fmt.Errorf("failed to link question %d to its parent: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.warnUnmappedPoints(survey.ID, req.Questions)

	s.logger.Info("Survey created",
		"survey_id", survey.ID,
		"title", survey.Title,
		"question_count", len(req.Questions),
		"created_by", createdBy)

	return s.GetWithQuestions(ctx, survey.ID)
}

// GetByID returns the survey definition without its questions
func (s *surveyService) GetByID(ctx context.Context, id uint) (*models.Survey, error) {
	survey, err := s.repo.Survey().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}
	return survey, nil
}

// GetWithQuestions returns the survey with questions in display order
func (s *surveyService) GetWithQuestions(ctx context.Context, id uint) (*models.Survey, error) {
	survey, err := s.repo.Survey().GetByIDWithQuestions(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey with questions: %w", err)
	}
	return survey, nil
}

// Update modifies survey settings. Scoring settings are frozen once the
// survey has submissions, since changing them would desynchronize
// already-computed scores.
func (s *surveyService) Update(ctx context.Context, id uint, req *models.UpdateSurveyRequest, userID string) (*models.Survey, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	survey, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ScoringMode != nil || req.IncludeOptional != nil {
		count, err := s.repo.Submission().CountBySurvey(ctx, nil, id)
		if err != nil {
			return nil, fmt.Errorf("failed to count submissions: %w", err)
		}
		if count > 0 {
			return nil, &PolicyError{
				Reason:   "scoring settings cannot change after submissions exist",
				SurveyID: id,
				Err:      ErrSurveyHasSubmissions,
			}
		}
	}

	applySurveyUpdate(survey, req)

	if survey.StartDate != nil && survey.EndDate != nil && !survey.EndDate.After(*survey.StartDate) {
		return nil, NewValidationError("end_date", "must be after start_date", survey.EndDate)
	}

	if err := s.repo.Survey().Update(ctx, nil, survey); err != nil {
		return nil, fmt.Errorf("failed to update survey: %w", err)
	}

	s.logger.Info("Survey updated", "survey_id", id, "updated_by", userID)

	return survey, nil
}

// UpdateStatus moves the survey through its lifecycle. Activation
// requires at least one question; closing emits the closed event.
func (s *surveyService) UpdateStatus(ctx context.Context, id uint, status models.SurveyStatus, userID string) error {
	survey, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	questions, err := s.repo.Question().GetBySurvey(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("failed to get survey questions: %w", err)
	}

	if errs := s.business.ValidateStatusTransition(survey.Status, status, len(questions)); errs.HasErrors() {
		return &PolicyError{
			Reason:   errs.Error(),
			SurveyID: id,
			Err:      ErrInvalidStatusTransition,
		}
	}

	if status == models.SurveyStatusActive {
		if errs := s.business.ValidateConditionalChains(questions); errs.HasErrors() {
			return errs
		}
	}

	if err := s.repo.Survey().UpdateStatus(ctx, nil, id, status); err != nil {
		return fmt.Errorf("failed to update survey status: %w", err)
	}

	s.logger.Info("Survey status changed",
		"survey_id", id,
		"from", survey.Status,
		"to", status,
		"updated_by", userID)

	if status == models.SurveyStatusClosed && s.events != nil {
		survey.Status = status
		if err := s.events.NotifySurveyClosed(ctx, survey); err != nil {
			s.logger.Error("Failed to publish survey closed event",
				"survey_id", id,
				"error", err)
		}
	}

	return nil
}

// Delete soft-deletes a survey. Surveys with submissions are retained
// for their respondents; close them instead.
func (s *surveyService) Delete(ctx context.Context, id uint, userID string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.Submission().CountBySurvey(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("failed to count submissions: %w", err)
	}
	if count > 0 {
		return &PolicyError{
			Reason:   "survey has submissions and cannot be deleted",
			SurveyID: id,
			Err:      ErrSurveyHasSubmissions,
		}
	}

	if err := s.repo.Survey().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete survey: %w", err)
	}

	s.logger.Info("Survey deleted", "survey_id", id, "deleted_by", userID)

	return nil
}

// List returns survey summaries with question and submission counts
func (s *surveyService) List(ctx context.Context, filters models.SurveyFilters) (*models.SurveyListResponse, error) {
	if err := s.validator.Validate(&filters); err != nil {
		return nil, err
	}

	surveys, total, err := s.repo.Survey().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list surveys: %w", err)
	}

	summaries := make([]models.SurveySummary, 0, len(surveys))
	for _, survey := range surveys {
		summary := models.SurveySummary{
			ID:          survey.ID,
			Title:       survey.Title,
			Status:      survey.Status,
			ScoringMode: survey.ScoringMode,
			IsAnonymous: survey.IsAnonymous,
			CreatedBy:   survey.CreatedBy,
			CreatedAt:   survey.CreatedAt,
		}

		questions, err := s.repo.Question().GetBySurvey(ctx, nil, survey.ID)
		if err != nil {
			s.logger.Warn("Failed to count questions for survey list",
				"survey_id", survey.ID,
				"error", err)
		} else {
			summary.QuestionCount = len(questions)
		}

		subCount, err := s.repo.Submission().CountBySurvey(ctx, nil, survey.ID)
		if err != nil {
			s.logger.Warn("Failed to count submissions for survey list",
				"survey_id", survey.ID,
				"error", err)
		} else {
			summary.SubmissionCount = subCount
		}

		summaries = append(summaries, summary)
	}

	return &models.SurveyListResponse{
		Surveys: summaries,
		Total:   total,
		Page:    filters.Page,
		Size:    filters.Size,
	}, nil
}

// AddQuestion appends a question to a draft survey
func (s *surveyService) AddQuestion(ctx context.Context, surveyID uint, req *models.CreateQuestionRequest, userID string) (*models.Question, error) {
	survey, err := s.GetByID(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if err := s.requireDraft(survey); err != nil {
		return nil, err
	}

	existing, err := s.repo.Question().GetBySurvey(ctx, nil, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get survey questions: %w", err)
	}

	if req.DisplayOrder == nil {
		maxOrder, err := s.repo.Question().MaxDisplayOrder(ctx, nil, surveyID)
		if err != nil {
			return nil, fmt.Errorf("failed to get max display order: %w", err)
		}
		next := maxOrder + 1
		req.DisplayOrder = &next
	}

	if errs := s.business.ValidateQuestionCreate(survey, existing, req); errs.HasErrors() {
		return nil, errs
	}

	question, err := buildQuestion(surveyID, req, *req.DisplayOrder)
	if err != nil {
		return nil, err
	}
	question.ParentQuestionID = req.ParentQuestionID

	if err := s.repo.Question().Create(ctx, nil, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	if unmapped := s.business.UnmappedPointOptions(req); len(unmapped) > 0 {
		s.logger.Warn("Question has options without point values",
			"survey_id", surveyID,
			"question_id", question.ID,
			"options", unmapped)
	}

	s.logger.Info("Question added",
		"survey_id", surveyID,
		"question_id", question.ID,
		"type", question.Type,
		"added_by", userID)

	return question, nil
}

// UpdateQuestion modifies a question on a draft survey
func (s *surveyService) UpdateQuestion(ctx context.Context, surveyID, questionID uint, req *models.UpdateQuestionRequest, userID string) (*models.Question, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	survey, err := s.GetByID(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	if err := s.requireDraft(survey); err != nil {
		return nil, err
	}

	question, err := s.getSurveyQuestion(ctx, surveyID, questionID)
	if err != nil {
		return nil, err
	}

	if err := applyQuestionUpdate(question, req); err != nil {
		return nil, err
	}

	// Re-shape-check the updated question through the create rules, then
	// verify the whole conditional graph still holds.
	shape := questionAsCreateRequest(question)
	existing, err := s.repo.Question().GetBySurvey(ctx, nil, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get survey questions: %w", err)
	}
	peers := make([]*models.Question, 0, len(existing))
	updated := make([]*models.Question, 0, len(existing))
	for _, q := range existing {
		if q.ID == questionID {
			updated = append(updated, question)
			continue
		}
		peers = append(peers, q)
		updated = append(updated, q)
	}
	if errs := s.business.ValidateQuestionCreate(survey, peers, shape); errs.HasErrors() {
		return nil, errs
	}
	if errs := s.business.ValidateConditionalChains(updated); errs.HasErrors() {
		return nil, errs
	}

	if err := s.repo.Question().Update(ctx, nil, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	s.logger.Info("Question updated",
		"survey_id", surveyID,
		"question_id", questionID,
		"updated_by", userID)

	return question, nil
}

// RemoveQuestion deletes a question from a draft survey. Questions that
// other questions depend on must be unlinked first.
func (s *surveyService) RemoveQuestion(ctx context.Context, surveyID, questionID uint, userID string) error {
	survey, err := s.GetByID(ctx, surveyID)
	if err != nil {
		return err
	}
	if err := s.requireDraft(survey); err != nil {
		return err
	}

	if _, err := s.getSurveyQuestion(ctx, surveyID, questionID); err != nil {
		return err
	}

	children, err := s.repo.Question().CountChildren(ctx, nil, questionID)
	if err != nil {
		return fmt.Errorf("failed to count dependent questions: %w", err)
	}
	if children > 0 {
		return &PolicyError{
			Reason:   fmt.Sprintf("%d conditional questions depend on this question", children),
			SurveyID: surveyID,
			Err:      ErrQuestionHasChildren,
		}
	}

	if err := s.repo.Question().Delete(ctx, nil, questionID); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}

	s.logger.Info("Question removed",
		"survey_id", surveyID,
		"question_id", questionID,
		"removed_by", userID)

	return nil
}

// ReorderQuestions rewrites display order to match the given sequence.
// The set must cover the survey's questions exactly, and the new order
// must keep every conditional parent before its children. The write and
// the chain check share one transaction so a bad order never lands.
func (s *surveyService) ReorderQuestions(ctx context.Context, surveyID uint, req *models.ReorderQuestionsRequest, userID string) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	survey, err := s.GetByID(ctx, surveyID)
	if err != nil {
		return err
	}
	if err := s.requireDraft(survey); err != nil {
		return err
	}

	questions, err := s.repo.Question().GetBySurvey(ctx, nil, surveyID)
	if err != nil {
		return fmt.Errorf("failed to get survey questions: %w", err)
	}

	if err := verifyReorderSet(questions, req.QuestionIDs); err != nil {
		return err
	}

	// Validate the prospective order before touching storage.
	byID := make(map[uint]*models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	reordered := make([]*models.Question, 0, len(questions))
	for i, id := range req.QuestionIDs {
		q := *byID[id]
		q.DisplayOrder = i
		reordered = append(reordered, &q)
	}
	if errs := s.business.ValidateConditionalChains(reordered); errs.HasErrors() {
		return errs
	}

	if err := s.repo.Question().UpdateDisplayOrders(ctx, nil, surveyID, req.QuestionIDs); err != nil {
		return fmt.Errorf("failed to reorder questions: %w", err)
	}

	s.logger.Info("Questions reordered",
		"survey_id", surveyID,
		"count", len(req.QuestionIDs),
		"reordered_by", userID)

	return nil
}

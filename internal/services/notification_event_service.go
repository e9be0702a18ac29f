package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/edupulse/survey-service/internal/events"
	"github.com/edupulse/survey-service/internal/models"
	"github.com/edupulse/survey-service/internal/repositories"
	"github.com/edupulse/survey-service/internal/validator"
)

type notificationEventService struct {
	repo           repositories.Repository
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator
}

// NewNotificationEventService creates the lifecycle event publisher
func NewNotificationEventService(repo repositories.Repository, eventPublisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) NotificationEventService {
	return &notificationEventService{
		repo:           repo,
		eventPublisher: eventPublisher,
		logger:         logger,
		validator:      v,
	}
}

// NotifySubmissionCompleted publishes the completed or edited event for
// a submission. Anonymous surveys publish the masked respondent
// reference; downstream consumers never see the identity.
func (s *notificationEventService) NotifySubmissionCompleted(ctx context.Context, survey *models.Survey, submission *models.Submission, edited bool) error {
	if s.eventPublisher == nil {
		return nil
	}

	respondentID := submission.RespondentID
	if survey.IsAnonymous {
		respondentID = models.MaskedRespondentID
	}

	eventType := events.EventSubmissionCompleted
	if edited {
		eventType = events.EventSubmissionEdited
	}

	event := events.NewEvent(eventType, events.SubmissionCompletedEvent{
		SubmissionID:    submission.ID,
		SurveyID:        survey.ID,
		RespondentID:    respondentID,
		ScoreRaw:        submission.ScoreRaw,
		ScoreMax:        submission.ScoreMax,
		ScorePercentage: submission.ScorePercentage,
		Edited:          edited,
	})

	if err := s.eventPublisher.Publish(events.TopicSurveyEvents, event); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	s.logger.Info("Published submission event",
		"event_type", eventType,
		"submission_id", submission.ID,
		"survey_id", survey.ID)

	return nil
}

// NotifySurveyClosed publishes the closed event with the final
// submission count
func (s *notificationEventService) NotifySurveyClosed(ctx context.Context, survey *models.Survey) error {
	if s.eventPublisher == nil {
		return nil
	}

	count, err := s.repo.Submission().CountBySurvey(ctx, nil, survey.ID)
	if err != nil {
		return fmt.Errorf("failed to count submissions for closed event: %w", err)
	}

	event := events.NewEvent(events.EventSurveyClosed, events.SurveyClosedEvent{
		SurveyID:        survey.ID,
		Title:           survey.Title,
		SubmissionCount: count,
	})

	if err := s.eventPublisher.Publish(events.TopicSurveyEvents, event); err != nil {
		return fmt.Errorf("failed to publish survey closed event: %w", err)
	}

	s.logger.Info("Published survey closed event",
		"survey_id", survey.ID,
		"submission_count", count)

	return nil
}

// Close shuts the underlying publisher down
func (s *notificationEventService) Close() error {
	if s.eventPublisher == nil {
		return nil
	}
	return s.eventPublisher.Close()
}

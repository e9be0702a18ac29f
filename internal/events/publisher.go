package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types published by the survey service
const (
	EventSubmissionCompleted = "survey.submission_completed"
	EventSubmissionEdited    = "survey.submission_edited"
	EventSurveyClosed        = "survey.closed"
)

// Topics used on the broker
const (
	TopicSurveyEvents = "survey-events"
)

// Event is the envelope every published message carries
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent creates an event envelope with generated identity and timestamp
func NewEvent(eventType string, data interface{}) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    "survey-service",
		Version:   "1.0",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// EventPublisher publishes service events to the message broker
type EventPublisher interface {
	Publish(topic string, event *Event) error
	Close() error
}

// SubmissionCompletedEvent is the payload for submission lifecycle events
type SubmissionCompletedEvent struct {
	SubmissionID    uint    `json:"submission_id"`
	SurveyID        uint    `json:"survey_id"`
	RespondentID    string  `json:"respondent_id,omitempty"`
	ScoreRaw        float64 `json:"score_raw"`
	ScoreMax        float64 `json:"score_max"`
	ScorePercentage float64 `json:"score_percentage"`
	Edited          bool    `json:"edited"`
}

// SurveyClosedEvent is the payload for survey closure events
type SurveyClosedEvent struct {
	SurveyID        uint   `json:"survey_id"`
	Title           string `json:"title"`
	SubmissionCount int64  `json:"submission_count"`
}

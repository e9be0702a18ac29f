package services

import (
	"encoding/json"
	"testing"

	"github.com/edupulse/survey-service/internal/models"
	"gorm.io/datatypes"
)

// Builders shared by the engine tests.

type questionOpt func(*models.Question)

func newQuestion(t *testing.T, id uint, qType models.QuestionType, required bool, opts ...questionOpt) *models.Question {
	t.Helper()
	q := &models.Question{
		ID:           id,
		SurveyID:     1,
		Text:         "question",
		Type:         qType,
		DisplayOrder: int(id),
		IsRequired:   required,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func withOptions(t *testing.T, options ...models.Option) questionOpt {
	t.Helper()
	raw, err := json.Marshal(options)
	if err != nil {
		t.Fatalf("marshal options: %v", err)
	}
	return func(q *models.Question) {
		q.Options = datatypes.JSON(raw)
	}
}

func withPoints(t *testing.T, maxPoints float64, values map[string]float64) questionOpt {
	t.Helper()
	raw, err := json.Marshal(models.PointsConfig{Values: values, MaxPoints: maxPoints})
	if err != nil {
		t.Fatalf("marshal points config: %v", err)
	}
	return func(q *models.Question) {
		q.PointsConfig = datatypes.JSON(raw)
	}
}

func withParent(t *testing.T, parentID uint, cond *models.ShowCondition) questionOpt {
	t.Helper()
	var raw []byte
	if cond != nil {
		var err error
		raw, err = json.Marshal(cond)
		if err != nil {
			t.Fatalf("marshal show condition: %v", err)
		}
	}
	return func(q *models.Question) {
		q.ParentQuestionID = &parentID
		if raw != nil {
			q.ShowIfAnswer = datatypes.JSON(raw)
		}
	}
}

func answer(value string) models.ResponseValue {
	return models.ResponseValue{Value: value}
}

func multiAnswer(values ...string) models.ResponseValue {
	return models.ResponseValue{Values: values}
}

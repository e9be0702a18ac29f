package validator

import (
	"strings"
	"testing"
	"time"

	"github.com/edupulse/survey-service/internal/models"
)

func uintPtr(v uint) *uint { return &v }
func intPtr(v int) *int    { return &v }

func validSurveyRequest() *models.CreateSurveyRequest {
	return &models.CreateSurveyRequest{
		Title:       "Course Feedback",
		ScoringMode: models.ScoringModeRequiredQuestions,
	}
}

func hasFieldError(errs ValidationErrors, field string) bool {
	for _, e := range errs {
		if strings.Contains(e.Field, field) {
			return true
		}
	}
	return false
}

func TestValidateSurveyCreate_Valid(t *testing.T) {
	bv := NewBusinessValidator()

	req := validSurveyRequest()
	req.Questions = []models.CreateQuestionRequest{
		{Text: "How was the pace?", Type: models.QuestionTypeParagraph},
		{Text: "Would you recommend it?", Type: models.QuestionTypeYesNo, IsRequired: true},
	}

	if errs := bv.ValidateSurveyCreate(req); errs.HasErrors() {
		t.Errorf("expected valid request, got %v", errs)
	}
}

func TestValidateSurveyCreate_DateOrdering(t *testing.T) {
	bv := NewBusinessValidator()

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)

	req := validSurveyRequest()
	req.StartDate = &start
	req.EndDate = &end

	errs := bv.ValidateSurveyCreate(req)
	if !hasFieldError(errs, "end_date") {
		t.Errorf("expected end_date error, got %v", errs)
	}
}

func TestValidateSurveyCreate_EditLimitWithoutEdits(t *testing.T) {
	bv := NewBusinessValidator()

	req := validSurveyRequest()
	req.EditLimitHours = 24

	errs := bv.ValidateSurveyCreate(req)
	if !hasFieldError(errs, "edit_limit_hours") {
		t.Errorf("expected edit_limit_hours error, got %v", errs)
	}

	req.AllowEdits = true
	if errs := bv.ValidateSurveyCreate(req); errs.HasErrors() {
		t.Errorf("edit limit with edits enabled should pass, got %v", errs)
	}
}

func TestValidateQuestionSet_Shape(t *testing.T) {
	bv := NewBusinessValidator()

	tests := []struct {
		name      string
		mode      models.ScoringMode
		question  models.CreateQuestionRequest
		wantField string
	}{
		{
			name: "choice question needs two options",
			mode: models.ScoringModeRequiredQuestions,
			question: models.CreateQuestionRequest{
				Text: "Pick one", Type: models.QuestionTypeSingleChoice,
				Options: []models.Option{{ID: "a", Label: "A"}},
			},
			wantField: "options",
		},
		{
			name: "yes_no rejects custom options",
			mode: models.ScoringModeRequiredQuestions,
			question: models.CreateQuestionRequest{
				Text: "Agree?", Type: models.QuestionTypeYesNo,
				Options: []models.Option{{ID: "y", Label: "Yep"}},
			},
			wantField: "options",
		},
		{
			name: "text question rejects options",
			mode: models.ScoringModeRequiredQuestions,
			question: models.CreateQuestionRequest{
				Text: "Comments", Type: models.QuestionTypeText,
				Options: []models.Option{{ID: "a", Label: "A"}},
			},
			wantField: "options",
		},
		{
			name: "duplicate option ids",
			mode: models.ScoringModeRequiredQuestions,
			question: models.CreateQuestionRequest{
				Text: "Pick", Type: models.QuestionTypeMultipleChoice,
				Options: []models.Option{{ID: "a", Label: "A"}, {ID: "a", Label: "Again"}},
			},
			wantField: "options[1]",
		},
		{
			name: "points config outside manual mode",
			mode: models.ScoringModeRequiredQuestions,
			question: models.CreateQuestionRequest{
				Text: "Agree?", Type: models.QuestionTypeYesNo,
				PointsConfig: &models.PointsConfig{MaxPoints: 2, Values: map[string]float64{"yes": 2}},
			},
			wantField: "points_config",
		},
		{
			name: "points config on non-choice question",
			mode: models.ScoringModeManualPoints,
			question: models.CreateQuestionRequest{
				Text: "Comments", Type: models.QuestionTypeParagraph,
				PointsConfig: &models.PointsConfig{MaxPoints: 2},
			},
			wantField: "points_config",
		},
		{
			name: "negative max points",
			mode: models.ScoringModeManualPoints,
			question: models.CreateQuestionRequest{
				Text: "Agree?", Type: models.QuestionTypeYesNo,
				PointsConfig: &models.PointsConfig{MaxPoints: -1},
			},
			wantField: "max_points",
		},
		{
			name: "condition without parent",
			mode: models.ScoringModeRequiredQuestions,
			question: models.CreateQuestionRequest{
				Text: "Why?", Type: models.QuestionTypeText,
				ShowIfAnswer: &models.ShowCondition{Value: "yes"},
			},
			wantField: "show_if_answer",
		},
		{
			name: "empty condition",
			mode: models.ScoringModeRequiredQuestions,
			question: models.CreateQuestionRequest{
				Text: "Why?", Type: models.QuestionTypeText,
				ParentQuestionID: uintPtr(0),
				ShowIfAnswer:     &models.ShowCondition{},
			},
			wantField: "show_if_answer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lead := models.CreateQuestionRequest{Text: "Lead", Type: models.QuestionTypeYesNo}
			errs := bv.ValidateQuestionSet(tt.mode, []models.CreateQuestionRequest{lead, tt.question})
			if !hasFieldError(errs, tt.wantField) {
				t.Errorf("expected error on %s, got %v", tt.wantField, errs)
			}
		})
	}
}

func TestValidateQuestionSet_ForwardReferenceRejected(t *testing.T) {
	bv := NewBusinessValidator()

	questions := []models.CreateQuestionRequest{
		{
			Text: "Why?", Type: models.QuestionTypeText,
			ParentQuestionID: uintPtr(1),
			ShowIfAnswer:     &models.ShowCondition{Value: "yes"},
		},
		{Text: "Agree?", Type: models.QuestionTypeYesNo},
	}

	errs := bv.ValidateQuestionSet(models.ScoringModeRequiredQuestions, questions)
	if !hasFieldError(errs, "questions[0].parent_question_id") {
		t.Errorf("forward parent reference should be rejected, got %v", errs)
	}

	// Self-reference is a forward reference too.
	self := []models.CreateQuestionRequest{
		{
			Text: "Loop", Type: models.QuestionTypeText,
			ParentQuestionID: uintPtr(0),
			ShowIfAnswer:     &models.ShowCondition{Value: "x"},
		},
	}
	if errs := bv.ValidateQuestionSet(models.ScoringModeRequiredQuestions, self); !errs.HasErrors() {
		t.Error("self-reference should be rejected")
	}
}

func TestValidateQuestionCreate_ParentChecks(t *testing.T) {
	bv := NewBusinessValidator()
	survey := &models.Survey{ID: 1, ScoringMode: models.ScoringModeRequiredQuestions}
	existing := []*models.Question{
		{ID: 5, SurveyID: 1, Type: models.QuestionTypeYesNo, DisplayOrder: 3},
	}

	missing := &models.CreateQuestionRequest{
		Text: "Why?", Type: models.QuestionTypeText,
		ParentQuestionID: uintPtr(99),
		ShowIfAnswer:     &models.ShowCondition{Value: "yes"},
	}
	if errs := bv.ValidateQuestionCreate(survey, existing, missing); !hasFieldError(errs, "parent_question_id") {
		t.Errorf("unknown parent should be rejected, got %v", errs)
	}

	earlier := &models.CreateQuestionRequest{
		Text: "Why?", Type: models.QuestionTypeText,
		DisplayOrder:     intPtr(2),
		ParentQuestionID: uintPtr(5),
		ShowIfAnswer:     &models.ShowCondition{Value: "yes"},
	}
	if errs := bv.ValidateQuestionCreate(survey, existing, earlier); !hasFieldError(errs, "parent_question_id") {
		t.Errorf("parent later in display order should be rejected, got %v", errs)
	}

	valid := &models.CreateQuestionRequest{
		Text: "Why?", Type: models.QuestionTypeText,
		DisplayOrder:     intPtr(4),
		ParentQuestionID: uintPtr(5),
		ShowIfAnswer:     &models.ShowCondition{Value: "yes"},
	}
	if errs := bv.ValidateQuestionCreate(survey, existing, valid); errs.HasErrors() {
		t.Errorf("expected valid conditional question, got %v", errs)
	}
}

func TestValidateConditionalChains(t *testing.T) {
	bv := NewBusinessValidator()

	t.Run("valid chain", func(t *testing.T) {
		questions := []*models.Question{
			{ID: 1, DisplayOrder: 1},
			{ID: 2, DisplayOrder: 2, ParentQuestionID: uintPtr(1)},
			{ID: 3, DisplayOrder: 3, ParentQuestionID: uintPtr(2)},
		}
		if errs := bv.ValidateConditionalChains(questions); errs.HasErrors() {
			t.Errorf("expected valid chain, got %v", errs)
		}
	})

	t.Run("cycle", func(t *testing.T) {
		questions := []*models.Question{
			{ID: 1, DisplayOrder: 1, ParentQuestionID: uintPtr(2)},
			{ID: 2, DisplayOrder: 2, ParentQuestionID: uintPtr(1)},
		}
		errs := bv.ValidateConditionalChains(questions)
		if !errs.HasErrors() {
			t.Fatal("cycle should be rejected")
		}
	})

	t.Run("dangling parent", func(t *testing.T) {
		questions := []*models.Question{
			{ID: 2, DisplayOrder: 1, ParentQuestionID: uintPtr(42)},
		}
		if errs := bv.ValidateConditionalChains(questions); !errs.HasErrors() {
			t.Error("parent outside the survey should be rejected")
		}
	})

	t.Run("parent not earlier", func(t *testing.T) {
		questions := []*models.Question{
			{ID: 1, DisplayOrder: 5},
			{ID: 2, DisplayOrder: 2, ParentQuestionID: uintPtr(1)},
		}
		if errs := bv.ValidateConditionalChains(questions); !errs.HasErrors() {
			t.Error("parent at a later display order should be rejected")
		}
	})
}

func TestValidateStatusTransition(t *testing.T) {
	bv := NewBusinessValidator()

	tests := []struct {
		name          string
		current       models.SurveyStatus
		target        models.SurveyStatus
		questionCount int
		wantErr       bool
	}{
		{"draft to active", models.SurveyStatusDraft, models.SurveyStatusActive, 3, false},
		{"active to closed", models.SurveyStatusActive, models.SurveyStatusClosed, 3, false},
		{"draft to closed", models.SurveyStatusDraft, models.SurveyStatusClosed, 3, true},
		{"closed is terminal", models.SurveyStatusClosed, models.SurveyStatusActive, 3, true},
		{"active back to draft", models.SurveyStatusActive, models.SurveyStatusDraft, 3, true},
		{"activation without questions", models.SurveyStatusDraft, models.SurveyStatusActive, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := bv.ValidateStatusTransition(tt.current, tt.target, tt.questionCount)
			if errs.HasErrors() != tt.wantErr {
				t.Errorf("transition %s -> %s: gotErr=%v, want %v (%v)",
					tt.current, tt.target, errs.HasErrors(), tt.wantErr, errs)
			}
		})
	}
}

func TestUnmappedPointOptions(t *testing.T) {
	bv := NewBusinessValidator()

	choice := &models.CreateQuestionRequest{
		Text: "Pick", Type: models.QuestionTypeMultipleChoice,
		Options: []models.Option{
			{ID: "a", Label: "A"},
			{ID: "b", Label: "B"},
			{ID: "c", Label: "C"},
		},
		PointsConfig: &models.PointsConfig{MaxPoints: 4, Values: map[string]float64{"a": 2, "b": 2}},
	}

	unmapped := bv.UnmappedPointOptions(choice)
	if len(unmapped) != 1 || unmapped[0] != "c" {
		t.Errorf("unmapped = %v, want [c]", unmapped)
	}

	yesNo := &models.CreateQuestionRequest{
		Text: "Agree?", Type: models.QuestionTypeYesNo,
		PointsConfig: &models.PointsConfig{MaxPoints: 2, Values: map[string]float64{"yes": 2}},
	}
	unmapped = bv.UnmappedPointOptions(yesNo)
	if len(unmapped) != 1 || unmapped[0] != "no" {
		t.Errorf("unmapped = %v, want [no]", unmapped)
	}

	noConfig := &models.CreateQuestionRequest{Text: "Free text", Type: models.QuestionTypeText}
	if got := bv.UnmappedPointOptions(noConfig); got != nil {
		t.Errorf("question without points config should report nothing, got %v", got)
	}
}

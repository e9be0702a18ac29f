package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/edupulse/survey-service/internal/models"
	"github.com/edupulse/survey-service/internal/validator"
)

func newSubmissionServiceForTest(repo *fakeRepository) SubmissionService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return NewSubmissionService(repo, nil, logger, validator.New(), nil)
}

func submitRequest(responses ...models.ResponseInput) *models.SubmitSurveyRequest {
	return &models.SubmitSurveyRequest{Responses: responses}
}

func editRequest(responses ...models.ResponseInput) *models.EditSubmissionRequest {
	return &models.EditSubmissionRequest{Responses: responses}
}

func TestSubmissionService_Submit(t *testing.T) {
	repo := newFakeRepository()
	repo.addSurvey(activeSurvey(1, models.ScoringModeRequiredQuestions),
		newQuestion(t, 1, models.QuestionTypeYesNo, true),
		newQuestion(t, 2, models.QuestionTypeText, true),
		newQuestion(t, 3, models.QuestionTypeRating, false),
	)
	svc := newSubmissionServiceForTest(repo)
	ctx := context.Background()

	result, err := svc.Submit(ctx, 1, "student-1", submitRequest(
		models.ResponseInput{QuestionID: 1, Value: "yes"},
		models.ResponseInput{QuestionID: 2, Value: "helpful course"},
	))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if result.ScoreRaw != 2 || result.ScoreMax != 2 || result.ScorePercentage != 100 {
		t.Errorf("score = (%.2f/%.2f %.2f%%), want (2/2 100%%)",
			result.ScoreRaw, result.ScoreMax, result.ScorePercentage)
	}

	stored, err := repo.submission.GetByID(ctx, nil, result.SubmissionID)
	if err != nil {
		t.Fatalf("submission row missing: %v", err)
	}
	if stored.Status != models.SubmissionStatusCompleted {
		t.Errorf("status = %s, want completed", stored.Status)
	}

	rows := repo.response.rows[result.SubmissionID]
	if len(rows) != 2 {
		t.Errorf("expected 2 response rows, got %d", len(rows))
	}
}

func TestSubmissionService_Submit_SurveyNotOpen(t *testing.T) {
	repo := newFakeRepository()
	survey := activeSurvey(1, models.ScoringModeRequiredQuestions)
	survey.Status = models.SurveyStatusDraft
	repo.addSurvey(survey, newQuestion(t, 1, models.QuestionTypeText, true))
	svc := newSubmissionServiceForTest(repo)

	_, err := svc.Submit(context.Background(), 1, "student-1",
		submitRequest(models.ResponseInput{QuestionID: 1, Value: "x"}))

	if !errors.Is(err, ErrSurveyNotOpen) {
		t.Errorf("expected ErrSurveyNotOpen, got %v", err)
	}
	if !IsPolicyError(err) {
		t.Errorf("expected a policy error, got %T", err)
	}
}

func TestSubmissionService_Submit_OutsideActivityWindow(t *testing.T) {
	repo := newFakeRepository()
	survey := activeSurvey(1, models.ScoringModeRequiredQuestions)
	past := time.Now().Add(-48 * time.Hour)
	earlier := time.Now().Add(-24 * time.Hour)
	survey.StartDate = &past
	survey.EndDate = &earlier
	repo.addSurvey(survey, newQuestion(t, 1, models.QuestionTypeText, true))
	svc := newSubmissionServiceForTest(repo)

	_, err := svc.Submit(context.Background(), 1, "student-1",
		submitRequest(models.ResponseInput{QuestionID: 1, Value: "x"}))

	if !errors.Is(err, ErrSurveyNotOpen) {
		t.Errorf("expected ErrSurveyNotOpen after end date, got %v", err)
	}
}

func TestSubmissionService_Submit_DuplicateNonEditable(t *testing.T) {
	repo := newFakeRepository()
	repo.addSurvey(activeSurvey(1, models.ScoringModeRequiredQuestions),
		newQuestion(t, 1, models.QuestionTypeText, true))
	svc := newSubmissionServiceForTest(repo)
	ctx := context.Background()

	if _, err := svc.Submit(ctx, 1, "student-1",
		submitRequest(models.ResponseInput{QuestionID: 1, Value: "first"})); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}

	_, err := svc.Submit(ctx, 1, "student-1",
		submitRequest(models.ResponseInput{QuestionID: 1, Value: "second"}))

	if !errors.Is(err, ErrDuplicateSubmission) {
		t.Fatalf("expected ErrDuplicateSubmission, got %v", err)
	}

	// Exactly one row; the conflict must not have touched it.
	if len(repo.submission.byID) != 1 {
		t.Errorf("expected 1 submission row, got %d", len(repo.submission.byID))
	}
}

func TestSubmissionService_Submit_EditableResubmitUpdatesInPlace(t *testing.T) {
	repo := newFakeRepository()
	survey := activeSurvey(1, models.ScoringModeRequiredQuestions)
	survey.AllowEdits = true
	survey.EditLimitHours = 24
	repo.addSurvey(survey,
		newQuestion(t, 1, models.QuestionTypeText, true),
		newQuestion(t, 2, models.QuestionTypeText, false),
	)
	svc := newSubmissionServiceForTest(repo)
	ctx := context.Background()

	first, err := svc.Submit(ctx, 1, "student-1",
		submitRequest(models.ResponseInput{QuestionID: 1, Value: "v1"}))
	if err != nil {
		t.Fatalf("first submit failed: %v", err)
	}

	second, err := svc.Submit(ctx, 1, "student-1", submitRequest(
		models.ResponseInput{QuestionID: 1, Value: "v2"},
		models.ResponseInput{QuestionID: 2, Value: "extra"},
	))
	if err != nil {
		t.Fatalf("re-submit within edit window failed: %v", err)
	}

	if second.SubmissionID != first.SubmissionID {
		t.Errorf("re-submit created a new row: %d != %d", second.SubmissionID, first.SubmissionID)
	}
	if len(repo.submission.byID) != 1 {
		t.Errorf("expected 1 submission row, got %d", len(repo.submission.byID))
	}

	stored, _ := repo.submission.GetByID(ctx, nil, first.SubmissionID)
	if stored.EditCount != 1 {
		t.Errorf("edit count = %d, want 1", stored.EditCount)
	}
	if stored.EditedAt == nil {
		t.Error("edited_at should be set after in-place update")
	}

	rows := repo.response.rows[first.SubmissionID]
	if len(rows) != 2 {
		t.Errorf("responses not replaced wholesale, got %d rows", len(rows))
	}
}

func TestSubmissionService_Submit_MissingRequiredAnswer(t *testing.T) {
	repo := newFakeRepository()
	repo.addSurvey(activeSurvey(1, models.ScoringModeRequiredQuestions),
		newQuestion(t, 1, models.QuestionTypeText, true))
	svc := newSubmissionServiceForTest(repo)

	_, err := svc.Submit(context.Background(), 1, "student-1", submitRequest(
		models.ResponseInput{QuestionID: 1, Value: ""},
	))

	if !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	// A rejected submission must leave nothing behind.
	if len(repo.submission.byID) != 0 {
		t.Errorf("rejected submission persisted %d rows", len(repo.submission.byID))
	}
}

func TestSubmissionService_Submit_ReplacementFailureMarksInconsistent(t *testing.T) {
	repo := newFakeRepository()
	repo.addSurvey(activeSurvey(1, models.ScoringModeRequiredQuestions),
		newQuestion(t, 1, models.QuestionTypeText, true))
	repo.response.replaceErr = errors.New("connection reset")
	svc := newSubmissionServiceForTest(repo)
	ctx := context.Background()

	_, err := svc.Submit(ctx, 1, "student-1",
		submitRequest(models.ResponseInput{QuestionID: 1, Value: "x"}))

	var ie *InconsistencyError
	if !errors.As(err, &ie) {
		t.Fatalf("expected InconsistencyError, got %v", err)
	}

	stored, getErr := repo.submission.GetByID(ctx, nil, ie.SubmissionID)
	if getErr != nil {
		t.Fatalf("submission row should remain persisted: %v", getErr)
	}
	if stored.Status != models.SubmissionStatusInconsistent {
		t.Errorf("status = %s, want inconsistent", stored.Status)
	}
}

func TestSubmissionService_Repair(t *testing.T) {
	repo := newFakeRepository()
	repo.addSurvey(activeSurvey(1, models.ScoringModeRequiredQuestions),
		newQuestion(t, 1, models.QuestionTypeText, true))
	repo.response.replaceErr = errors.New("connection reset")
	svc := newSubmissionServiceForTest(repo)
	ctx := context.Background()

	_, err := svc.Submit(ctx, 1, "student-1",
		submitRequest(models.ResponseInput{QuestionID: 1, Value: "x"}))
	var ie *InconsistencyError
	if !errors.As(err, &ie) {
		t.Fatalf("setup: expected InconsistencyError, got %v", err)
	}

	// Storage recovers; repair re-runs the replacement against the same
	// submission.
	repo.response.replaceErr = nil

	result, err := svc.Repair(ctx, ie.SubmissionID,
		editRequest(models.ResponseInput{QuestionID: 1, Value: "x"}))
	if err != nil {
		t.Fatalf("Repair failed: %v", err)
	}
	if result.SubmissionID != ie.SubmissionID {
		t.Errorf("repair must reuse the submission, got %d want %d", result.SubmissionID, ie.SubmissionID)
	}

	stored, _ := repo.submission.GetByID(ctx, nil, ie.SubmissionID)
	if stored.Status != models.SubmissionStatusCompleted {
		t.Errorf("status after repair = %s, want completed", stored.Status)
	}
	if len(repo.response.rows[ie.SubmissionID]) != 1 {
		t.Errorf("expected 1 response row after repair, got %d", len(repo.response.rows[ie.SubmissionID]))
	}
	if len(repo.submission.byID) != 1 {
		t.Errorf("repair created extra submissions: %d", len(repo.submission.byID))
	}
}

func TestSubmissionService_Repair_CompletedNotRepairable(t *testing.T) {
	repo := newFakeRepository()
	repo.addSurvey(activeSurvey(1, models.ScoringModeRequiredQuestions),
		newQuestion(t, 1, models.QuestionTypeText, true))
	svc := newSubmissionServiceForTest(repo)
	ctx := context.Background()

	result, err := svc.Submit(ctx, 1, "student-1",
		submitRequest(models.ResponseInput{QuestionID: 1, Value: "x"}))
	if err != nil {
		t.Fatalf("setup submit failed: %v", err)
	}

	_, err = svc.Repair(ctx, result.SubmissionID,
		editRequest(models.ResponseInput{QuestionID: 1, Value: "x"}))
	if !errors.Is(err, ErrSubmissionNotRepairable) {
		t.Errorf("expected ErrSubmissionNotRepairable, got %v", err)
	}
}

func TestSubmissionService_Edit(t *testing.T) {
	repo := newFakeRepository()
	survey := activeSurvey(1, models.ScoringModeRequiredQuestions)
	survey.AllowEdits = true
	repo.addSurvey(survey,
		newQuestion(t, 1, models.QuestionTypeYesNo, true),
		newQuestion(t, 2, models.QuestionTypeText, true),
	)
	svc := newSubmissionServiceForTest(repo)
	ctx := context.Background()

	first, err := svc.Submit(ctx, 1, "student-1", submitRequest(
		models.ResponseInput{QuestionID: 1, Value: "yes"},
		models.ResponseInput{QuestionID: 2, Value: "old"},
	))
	if err != nil {
		t.Fatalf("setup submit failed: %v", err)
	}

	result, err := svc.Edit(ctx, first.SubmissionID, "student-1", editRequest(
		models.ResponseInput{QuestionID: 1, Value: "no"},
		models.ResponseInput{QuestionID: 2, Value: "new"},
	))
	if err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if result.ScorePercentage != 100 {
		t.Errorf("percentage = %.2f, want 100", result.ScorePercentage)
	}

	stored, _ := repo.submission.GetByID(ctx, nil, first.SubmissionID)
	if stored.EditCount != 1 {
		t.Errorf("edit count = %d, want 1", stored.EditCount)
	}
}

func TestSubmissionService_Edit_PolicyChecks(t *testing.T) {
	newRepoWithSubmission := func(t *testing.T, configure func(*models.Survey)) (*fakeRepository, SubmissionService, uint) {
		t.Helper()
		repo := newFakeRepository()
		survey := activeSurvey(1, models.ScoringModeRequiredQuestions)
		survey.AllowEdits = true
		repo.addSurvey(survey, newQuestion(t, 1, models.QuestionTypeText, true))
		svc := newSubmissionServiceForTest(repo)

		result, err := svc.Submit(context.Background(), 1, "student-1",
			submitRequest(models.ResponseInput{QuestionID: 1, Value: "x"}))
		if err != nil {
			t.Fatalf("setup submit failed: %v", err)
		}
		configure(survey)
		return repo, svc, result.SubmissionID
	}

	t.Run("edits disallowed", func(t *testing.T) {
		_, svc, id := newRepoWithSubmission(t, func(s *models.Survey) {
			s.AllowEdits = false
		})
		_, err := svc.Edit(context.Background(), id, "student-1",
			editRequest(models.ResponseInput{QuestionID: 1, Value: "y"}))
		if !errors.Is(err, ErrEditsNotAllowed) {
			t.Errorf("expected ErrEditsNotAllowed, got %v", err)
		}
	})

	t.Run("window closed", func(t *testing.T) {
		repo, svc, id := newRepoWithSubmission(t, func(s *models.Survey) {
			s.EditLimitHours = 1
		})
		sub, _ := repo.submission.GetByID(context.Background(), nil, id)
		sub.SubmittedAt = time.Now().Add(-2 * time.Hour)

		_, err := svc.Edit(context.Background(), id, "student-1",
			editRequest(models.ResponseInput{QuestionID: 1, Value: "y"}))
		if !errors.Is(err, ErrEditWindowClosed) {
			t.Errorf("expected ErrEditWindowClosed, got %v", err)
		}
	})

	t.Run("exact boundary is closed", func(t *testing.T) {
		survey := &models.Survey{AllowEdits: true, EditLimitHours: 24}
		submittedAt := time.Now().Add(-24 * time.Hour)
		if survey.EditWindowOpen(submittedAt, submittedAt.Add(24*time.Hour)) {
			t.Error("elapsed == limit should close the window")
		}
	})

	t.Run("different respondent", func(t *testing.T) {
		_, svc, id := newRepoWithSubmission(t, func(s *models.Survey) {})
		_, err := svc.Edit(context.Background(), id, "someone-else",
			editRequest(models.ResponseInput{QuestionID: 1, Value: "y"}))
		if !errors.Is(err, ErrRespondentMismatch) {
			t.Errorf("expected ErrRespondentMismatch, got %v", err)
		}
	})
}

func TestSubmissionService_GetByID_AnonymousMasking(t *testing.T) {
	repo := newFakeRepository()
	survey := activeSurvey(1, models.ScoringModeRequiredQuestions)
	survey.IsAnonymous = true
	repo.addSurvey(survey, newQuestion(t, 1, models.QuestionTypeText, true))
	svc := newSubmissionServiceForTest(repo)
	ctx := context.Background()

	result, err := svc.Submit(ctx, 1, "student-1",
		submitRequest(models.ResponseInput{QuestionID: 1, Value: "x"}))
	if err != nil {
		t.Fatalf("setup submit failed: %v", err)
	}

	got, err := svc.GetByID(ctx, result.SubmissionID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.RespondentID != models.MaskedRespondentID {
		t.Errorf("respondent = %q, want masked", got.RespondentID)
	}

	// Identity stays tracked server-side: a second submit still conflicts.
	_, err = svc.Submit(ctx, 1, "student-1",
		submitRequest(models.ResponseInput{QuestionID: 1, Value: "again"}))
	if !errors.Is(err, ErrDuplicateSubmission) {
		t.Errorf("anonymity must not disable uniqueness, got %v", err)
	}
}

func TestSubmissionService_Submit_HiddenAnswersNotStored(t *testing.T) {
	repo := newFakeRepository()
	parent := newQuestion(t, 1, models.QuestionTypeYesNo, true)
	child := newQuestion(t, 2, models.QuestionTypeText, false,
		withParent(t, 1, &models.ShowCondition{Value: "yes"}))
	repo.addSurvey(activeSurvey(1, models.ScoringModeRequiredQuestions), parent, child)
	svc := newSubmissionServiceForTest(repo)

	// The child answer is supplied but the parent answer hides it.
	result, err := svc.Submit(context.Background(), 1, "student-1", submitRequest(
		models.ResponseInput{QuestionID: 1, Value: "no"},
		models.ResponseInput{QuestionID: 2, Value: "should vanish"},
	))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	rows := repo.response.rows[result.SubmissionID]
	if len(rows) != 1 {
		t.Fatalf("expected 1 stored row, got %d", len(rows))
	}
	if rows[0].QuestionID != 1 {
		t.Errorf("stored row is for question %d, want 1", rows[0].QuestionID)
	}
}

func TestSubmissionService_GetStats(t *testing.T) {
	repo := newFakeRepository()
	repo.addSurvey(activeSurvey(1, models.ScoringModeRequiredQuestions),
		newQuestion(t, 1, models.QuestionTypeYesNo, true))
	svc := newSubmissionServiceForTest(repo)

	for i, pct := range []float64{80, 100} {
		sub := &models.Submission{
			SurveyID:        1,
			RespondentID:    string(rune('a' + i)),
			Status:          models.SubmissionStatusCompleted,
			ScorePercentage: pct,
		}
		if err := repo.submission.Create(context.Background(), nil, sub); err != nil {
			t.Fatalf("seed submission: %v", err)
		}
	}
	broken := &models.Submission{
		SurveyID:     1,
		RespondentID: "c",
		Status:       models.SubmissionStatusInconsistent,
	}
	if err := repo.submission.Create(context.Background(), nil, broken); err != nil {
		t.Fatalf("seed inconsistent submission: %v", err)
	}

	stats, err := svc.GetStats(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.TotalSubmissions != 3 {
		t.Errorf("total = %d, want 3", stats.TotalSubmissions)
	}
	if stats.AveragePercentage != 90 {
		t.Errorf("average = %.2f, want 90 (inconsistent rows excluded)", stats.AveragePercentage)
	}
	if stats.InconsistentCount != 1 {
		t.Errorf("inconsistent = %d, want 1", stats.InconsistentCount)
	}
}

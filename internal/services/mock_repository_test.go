package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/edupulse/survey-service/internal/models"
	"github.com/edupulse/survey-service/internal/repositories"
	"gorm.io/gorm"
)

// In-memory repository fakes for service tests. Missing records wrap
// gorm.ErrRecordNotFound so repositories.IsNotFoundError keeps working.

type fakeRepository struct {
	survey     *fakeSurveyRepo
	question   *fakeQuestionRepo
	submission *fakeSubmissionRepo
	response   *fakeResponseRepo
}

func newFakeRepository() *fakeRepository {
	submissions := &fakeSubmissionRepo{
		byID:   make(map[uint]*models.Submission),
		nextID: 1,
	}
	return &fakeRepository{
		survey:     &fakeSurveyRepo{surveys: make(map[uint]*models.Survey)},
		question:   &fakeQuestionRepo{nextID: 1},
		submission: submissions,
		response: &fakeResponseRepo{
			rows:        make(map[uint][]*models.Response),
			submissions: submissions,
		},
	}
}

func (f *fakeRepository) Survey() repositories.SurveyRepository         { return f.survey }
func (f *fakeRepository) Question() repositories.QuestionRepository     { return f.question }
func (f *fakeRepository) Submission() repositories.SubmissionRepository { return f.submission }
func (f *fakeRepository) Response() repositories.ResponseRepository     { return f.response }
func (f *fakeRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(f)
}
func (f *fakeRepository) Ping(ctx context.Context) error { return nil }
func (f *fakeRepository) Close() error                   { return nil }

// addSurvey seeds a survey with its questions
func (f *fakeRepository) addSurvey(survey *models.Survey, questions ...*models.Question) {
	f.survey.surveys[survey.ID] = survey
	for _, q := range questions {
		q.SurveyID = survey.ID
		f.question.questions = append(f.question.questions, q)
	}
}

// ===== SURVEY =====

type fakeSurveyRepo struct {
	surveys map[uint]*models.Survey
}

func (f *fakeSurveyRepo) Create(ctx context.Context, tx *gorm.DB, survey *models.Survey) error {
	survey.ID = uint(len(f.surveys) + 1)
	f.surveys[survey.ID] = survey
	return nil
}

func (f *fakeSurveyRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Survey, error) {
	survey, ok := f.surveys[id]
	if !ok {
		return nil, fmt.Errorf("survey not found with ID %d: %w", id, gorm.ErrRecordNotFound)
	}
	return survey, nil
}

func (f *fakeSurveyRepo) GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Survey, error) {
	return f.GetByID(ctx, tx, id)
}

func (f *fakeSurveyRepo) Update(ctx context.Context, tx *gorm.DB, survey *models.Survey) error {
	f.surveys[survey.ID] = survey
	return nil
}

func (f *fakeSurveyRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.SurveyStatus) error {
	survey, ok := f.surveys[id]
	if !ok {
		return fmt.Errorf("survey not found with ID %d: %w", id, gorm.ErrRecordNotFound)
	}
	survey.Status = status
	return nil
}

func (f *fakeSurveyRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	delete(f.surveys, id)
	return nil
}

func (f *fakeSurveyRepo) List(ctx context.Context, tx *gorm.DB, filters models.SurveyFilters) ([]*models.Survey, int64, error) {
	out := make([]*models.Survey, 0, len(f.surveys))
	for _, s := range f.surveys {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

// ===== QUESTION =====

type fakeQuestionRepo struct {
	questions []*models.Question
	nextID    uint
}

func (f *fakeQuestionRepo) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	question.ID = f.nextID
	f.nextID++
	f.questions = append(f.questions, question)
	return nil
}

func (f *fakeQuestionRepo) CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error {
	for _, q := range questions {
		if err := f.Create(ctx, tx, q); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeQuestionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	for _, q := range f.questions {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, fmt.Errorf("question not found with ID %d: %w", id, gorm.ErrRecordNotFound)
}

func (f *fakeQuestionRepo) GetBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint) ([]*models.Question, error) {
	var out []*models.Question
	for _, q := range f.questions {
		if q.SurveyID == surveyID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out, nil
}

func (f *fakeQuestionRepo) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	for i, q := range f.questions {
		if q.ID == question.ID {
			f.questions[i] = question
			return nil
		}
	}
	return fmt.Errorf("question not found with ID %d: %w", question.ID, gorm.ErrRecordNotFound)
}

func (f *fakeQuestionRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	for i, q := range f.questions {
		if q.ID == id {
			f.questions = append(f.questions[:i], f.questions[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("question not found with ID %d: %w", id, gorm.ErrRecordNotFound)
}

func (f *fakeQuestionRepo) UpdateDisplayOrders(ctx context.Context, tx *gorm.DB, surveyID uint, orderedIDs []uint) error {
	for i, id := range orderedIDs {
		for _, q := range f.questions {
			if q.ID == id {
				q.DisplayOrder = i
			}
		}
	}
	return nil
}

func (f *fakeQuestionRepo) MaxDisplayOrder(ctx context.Context, tx *gorm.DB, surveyID uint) (int, error) {
	max := -1
	for _, q := range f.questions {
		if q.SurveyID == surveyID && q.DisplayOrder > max {
			max = q.DisplayOrder
		}
	}
	return max, nil
}

func (f *fakeQuestionRepo) CountChildren(ctx context.Context, tx *gorm.DB, questionID uint) (int64, error) {
	var count int64
	for _, q := range f.questions {
		if q.ParentQuestionID != nil && *q.ParentQuestionID == questionID {
			count++
		}
	}
	return count, nil
}

// ===== SUBMISSION =====

type fakeSubmissionRepo struct {
	byID   map[uint]*models.Submission
	nextID uint

	createErr error
}

func (f *fakeSubmissionRepo) Create(ctx context.Context, tx *gorm.DB, submission *models.Submission) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, s := range f.byID {
		if s.SurveyID == submission.SurveyID && s.RespondentID == submission.RespondentID {
			return fmt.Errorf("duplicate key value violates unique constraint")
		}
	}
	submission.ID = f.nextID
	f.nextID++
	f.byID[submission.ID] = submission
	return nil
}

func (f *fakeSubmissionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("submission not found with ID %d: %w", id, gorm.ErrRecordNotFound)
	}
	return s, nil
}

func (f *fakeSubmissionRepo) GetByIDWithResponses(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error) {
	return f.GetByID(ctx, tx, id)
}

func (f *fakeSubmissionRepo) GetBySurveyAndRespondent(ctx context.Context, tx *gorm.DB, surveyID uint, respondentID string) (*models.Submission, error) {
	for _, s := range f.byID {
		if s.SurveyID == surveyID && s.RespondentID == respondentID {
			return s, nil
		}
	}
	return nil, fmt.Errorf("submission not found for survey %d: %w", surveyID, gorm.ErrRecordNotFound)
}

func (f *fakeSubmissionRepo) Update(ctx context.Context, tx *gorm.DB, submission *models.Submission) error {
	if _, ok := f.byID[submission.ID]; !ok {
		return fmt.Errorf("submission not found with ID %d: %w", submission.ID, gorm.ErrRecordNotFound)
	}
	f.byID[submission.ID] = submission
	return nil
}

func (f *fakeSubmissionRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.SubmissionStatus) error {
	s, ok := f.byID[id]
	if !ok {
		return fmt.Errorf("submission not found with ID %d: %w", id, gorm.ErrRecordNotFound)
	}
	s.Status = status
	return nil
}

func (f *fakeSubmissionRepo) GetBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint, filters models.SubmissionFilters) ([]*models.Submission, int64, error) {
	var out []*models.Submission
	for _, s := range f.byID {
		if s.SurveyID == surveyID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (f *fakeSubmissionRepo) CountBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint) (int64, error) {
	var count int64
	for _, s := range f.byID {
		if s.SurveyID == surveyID {
			count++
		}
	}
	return count, nil
}

func (f *fakeSubmissionRepo) CountBySurveyAndStatus(ctx context.Context, tx *gorm.DB, surveyID uint, status models.SubmissionStatus) (int64, error) {
	var count int64
	for _, s := range f.byID {
		if s.SurveyID == surveyID && s.Status == status {
			count++
		}
	}
	return count, nil
}

func (f *fakeSubmissionRepo) GetStats(ctx context.Context, tx *gorm.DB, surveyID uint) (*models.SubmissionStats, error) {
	stats := &models.SubmissionStats{}
	var sum float64
	var completed int64
	for _, s := range f.byID {
		if s.SurveyID != surveyID {
			continue
		}
		stats.TotalSubmissions++
		switch s.Status {
		case models.SubmissionStatusCompleted:
			sum += s.ScorePercentage
			completed++
		case models.SubmissionStatusInconsistent:
			stats.InconsistentCount++
		}
	}
	if completed > 0 {
		stats.AveragePercentage = sum / float64(completed)
	}
	return stats, nil
}

// ===== RESPONSE =====

type fakeResponseRepo struct {
	rows        map[uint][]*models.Response
	submissions *fakeSubmissionRepo

	// replaceErr makes ReplaceForSubmission fail, for inconsistency tests
	replaceErr error
}

func (f *fakeResponseRepo) CreateBatch(ctx context.Context, tx *gorm.DB, responses []*models.Response) error {
	for _, r := range responses {
		f.rows[r.SubmissionID] = append(f.rows[r.SubmissionID], r)
	}
	return nil
}

func (f *fakeResponseRepo) DeleteBySubmission(ctx context.Context, tx *gorm.DB, submissionID uint) error {
	delete(f.rows, submissionID)
	return nil
}

func (f *fakeResponseRepo) ReplaceForSubmission(ctx context.Context, submissionID uint, responses []*models.Response) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.rows[submissionID] = responses
	return nil
}

func (f *fakeResponseRepo) GetCompletedBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint) ([]*models.Response, error) {
	var out []*models.Response
	ids := make([]uint, 0, len(f.submissions.byID))
	for id := range f.submissions.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		s := f.submissions.byID[id]
		if s.SurveyID == surveyID && s.Status == models.SubmissionStatusCompleted {
			out = append(out, f.rows[id]...)
		}
	}
	return out, nil
}

// activeSurvey returns a survey accepting submissions right now
func activeSurvey(id uint, mode models.ScoringMode) *models.Survey {
	return &models.Survey{
		ID:          id,
		Title:       "Course feedback",
		Status:      models.SurveyStatusActive,
		ScoringMode: mode,
		CreatedBy:   "teacher-1",
	}
}

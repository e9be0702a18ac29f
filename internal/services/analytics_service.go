package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/edupulse/survey-service/internal/models"
	"github.com/edupulse/survey-service/internal/repositories"
)

type analyticsService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

// NewAnalyticsService creates the analytics aggregator
func NewAnalyticsService(repo repositories.Repository, logger *slog.Logger) AnalyticsService {
	return &analyticsService{
		repo:   repo,
		logger: logger,
	}
}

// Analyze produces per-question distribution statistics over the
// survey's completed submissions. A single malformed response value is
// skipped and counted, never an error: one bad row must not fail the
// whole aggregation. The pass is read-only and idempotent for an
// unchanged submission set.
func (s *analyticsService) Analyze(ctx context.Context, surveyID uint) (*models.SurveyAnalytics, error) {
	survey, err := s.repo.Survey().GetByID(ctx, nil, surveyID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}

	questions, err := s.repo.Question().GetBySurvey(ctx, nil, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get survey questions: %w", err)
	}

	responses, err := s.repo.Response().GetCompletedBySurvey(ctx, nil, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get responses: %w", err)
	}

	completedCount, err := s.repo.Submission().CountBySurveyAndStatus(ctx, nil, surveyID, models.SubmissionStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to count completed submissions: %w", err)
	}

	// Group decoded values per question; undecodable rows are tracked
	// so the per-question totals still include them.
	values := make(map[uint][]models.ResponseValue, len(questions))
	undecodable := make(map[uint]int)
	for _, r := range responses {
		v, err := r.DecodedValue()
		if err != nil {
			undecodable[r.QuestionID]++
			s.logger.Warn("Skipping undecodable response during aggregation",
				"survey_id", surveyID,
				"question_id", r.QuestionID,
				"error", err)
			continue
		}
		values[r.QuestionID] = append(values[r.QuestionID], v)
	}

	analytics := &models.SurveyAnalytics{
		SurveyID:        surveyID,
		Title:           survey.Title,
		SubmissionCount: int(completedCount),
		GeneratedAt:     time.Now().UTC(),
		Questions:       make([]models.QuestionStats, 0, len(questions)),
	}

	for _, q := range questions {
		stats := aggregateQuestion(q, values[q.ID])
		stats.Total += undecodable[q.ID]
		stats.Skipped += undecodable[q.ID]
		analytics.Questions = append(analytics.Questions, stats)
	}

	return analytics, nil
}

// aggregateQuestion dispatches to the per-type aggregation. Unknown
// types degrade to a bare response count.
func aggregateQuestion(q *models.Question, values []models.ResponseValue) models.QuestionStats {
	stats := models.QuestionStats{
		QuestionID: q.ID,
		Text:       q.Text,
		Type:       q.Type,
		Total:      len(values),
	}

	switch q.Type {
	case models.QuestionTypeYesNo:
		aggregateYesNo(&stats, values)
	case models.QuestionTypeSingleChoice, models.QuestionTypeMultipleChoice:
		aggregateChoice(&stats, q, values)
	case models.QuestionTypeRating, models.QuestionTypeScale:
		aggregateOrdinal(&stats, values)
	case models.QuestionTypeNumber:
		aggregateNumber(&stats, values)
	case models.QuestionTypeText, models.QuestionTypeParagraph, models.QuestionTypeDate:
		aggregateEntries(&stats, values)
	default:
		stats.Answered = len(values)
	}

	return stats
}

func aggregateYesNo(stats *models.QuestionStats, values []models.ResponseValue) {
	yn := &models.YesNoStats{}
	for _, v := range values {
		switch v.Value {
		case models.YesNoAnswerYes:
			yn.Yes++
		case models.YesNoAnswerNo:
			yn.No++
		default:
			stats.Skipped++
		}
	}
	stats.Answered = yn.Yes + yn.No
	if stats.Answered > 0 {
		yn.YesPercent = round2(float64(yn.Yes) / float64(stats.Answered) * 100)
		yn.NoPercent = round2(float64(yn.No) / float64(stats.Answered) * 100)
	}
	stats.YesNo = yn
}

// aggregateChoice counts selections per option. A multi-select answer
// contributes to every chosen option but each respondent is counted
// once per option at most, since a submission holds one response row
// per question.
func aggregateChoice(stats *models.QuestionStats, q *models.Question, values []models.ResponseValue) {
	options, err := q.DecodedOptions()
	if err != nil {
		// Options unreadable: degrade to counts only.
		stats.Skipped = len(values)
		return
	}

	counts := make(map[string]int, len(options))
	known := make(map[string]bool, len(options))
	for _, opt := range options {
		known[opt.ID] = true
	}

	for _, v := range values {
		selected := v.SelectedOptions()
		if len(selected) == 0 {
			stats.Skipped++
			continue
		}
		matched := false
		for _, id := range selected {
			if known[id] {
				counts[id]++
				matched = true
			}
		}
		if matched {
			stats.Answered++
		} else {
			stats.Skipped++
		}
	}

	stats.Options = make([]models.OptionCount, 0, len(options))
	for _, opt := range options {
		oc := models.OptionCount{
			OptionID: opt.ID,
			Label:    opt.Label,
			Count:    counts[opt.ID],
		}
		if stats.Answered > 0 {
			oc.Percent = round2(float64(oc.Count) / float64(stats.Answered) * 100)
		}
		stats.Options = append(stats.Options, oc)
	}
}

// aggregateOrdinal computes the mean of rating and scale answers. Zero
// means "not rated" for both types, so zero and non-numeric values are
// excluded from the mean but remain in the total.
func aggregateOrdinal(stats *models.QuestionStats, values []models.ResponseValue) {
	num := &models.NumericStats{}
	var sum float64
	for _, v := range values {
		n, err := v.Int()
		if err != nil || n == 0 {
			stats.Skipped++
			continue
		}
		f := float64(n)
		if num.Count == 0 || f < num.Min {
			num.Min = f
		}
		if num.Count == 0 || f > num.Max {
			num.Max = f
		}
		sum += f
		num.Count++
	}
	stats.Answered = num.Count
	num.Sum = sum
	if num.Count > 0 {
		num.Average = round2(sum / float64(num.Count))
	}
	stats.Numeric = num
}

func aggregateNumber(stats *models.QuestionStats, values []models.ResponseValue) {
	num := &models.NumericStats{}
	var sum float64
	for _, v := range values {
		f, err := v.Number()
		if err != nil {
			stats.Skipped++
			continue
		}
		if num.Count == 0 || f < num.Min {
			num.Min = f
		}
		if num.Count == 0 || f > num.Max {
			num.Max = f
		}
		sum += f
		num.Count++
	}
	stats.Answered = num.Count
	num.Sum = sum
	if num.Count > 0 {
		num.Average = round2(sum / float64(num.Count))
	}
	stats.Numeric = num
}

// aggregateEntries collects raw non-empty strings with no statistical
// reduction, for text, paragraph and date questions
func aggregateEntries(stats *models.QuestionStats, values []models.ResponseValue) {
	entries := make([]string, 0, len(values))
	for _, v := range values {
		if v.Value == "" {
			stats.Skipped++
			continue
		}
		entries = append(entries, v.Value)
	}
	stats.Answered = len(entries)
	stats.Entries = entries
}

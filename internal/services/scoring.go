package services

import (
	"math"

	"github.com/edupulse/survey-service/internal/models"
)

// ScoreResult holds the computed score triple for a submission
type ScoreResult struct {
	Raw        float64 `json:"score_raw"`
	Max        float64 `json:"score_max"`
	Percentage float64 `json:"score_percentage"`
}

// ComputeScore scores a response set for a survey. Hidden questions
// contribute nothing to either side of the ratio. Pure function of
// (survey config, question list, response map); each mode lives in its
// own function so its edge cases stay independently testable.
func ComputeScore(survey *models.Survey, questions []*models.Question, answers map[uint]models.ResponseValue) ScoreResult {
	visible := VisibleQuestions(questions, answers)

	var result ScoreResult
	switch survey.ScoringMode {
	case models.ScoringModeManualPoints:
		result = scoreManualPoints(visible, answers, survey.IncludeOptional)
	default:
		result = scoreRequiredQuestions(visible, answers, survey.IncludeOptional)
	}

	result.Percentage = scorePercentage(result.Raw, result.Max)
	return result
}

// scoreManualPoints accumulates configured per-option point values.
// A question counts toward the totals when it is required, or when it
// is optional and includeOptional is set. Questions without a points
// config are present but unscored. A chosen option with no configured
// value scores zero.
func scoreManualPoints(visible []*models.Question, answers map[uint]models.ResponseValue, includeOptional bool) ScoreResult {
	var result ScoreResult

	for _, q := range visible {
		if !q.IsRequired && !includeOptional {
			continue
		}

		cfg, err := q.DecodedPointsConfig()
		if err != nil || cfg == nil {
			continue
		}

		result.Max += cfg.MaxPoints

		answer, ok := answers[q.ID]
		if !ok || !answer.IsAnswered(q.Type) {
			continue
		}
		for _, optionID := range answer.SelectedOptions() {
			result.Raw += cfg.Values[optionID]
		}
	}

	return result
}

// scoreRequiredQuestions computes the completion ratio. The countable
// set is the required visible questions, or all visible questions when
// includeOptional is set. When the countable set is empty but visible
// questions exist, the ratio degenerates to participation: max is
// forced to 1 and raw is 1 if anything visible was answered.
func scoreRequiredQuestions(visible []*models.Question, answers map[uint]models.ResponseValue, includeOptional bool) ScoreResult {
	var result ScoreResult

	for _, q := range visible {
		if !q.IsRequired && !includeOptional {
			continue
		}
		result.Max++
		if answer, ok := answers[q.ID]; ok && answer.IsWellFormed(q.Type) {
			result.Raw++
		}
	}

	if result.Max == 0 && len(visible) > 0 {
		result.Max = 1
		for _, q := range visible {
			if answer, ok := answers[q.ID]; ok && answer.IsWellFormed(q.Type) {
				result.Raw = 1
				break
			}
		}
	}

	return result
}

func scorePercentage(raw, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return round2(raw / max * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

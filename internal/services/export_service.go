package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/edupulse/survey-service/internal/models"
	"github.com/xuri/excelize/v2"
)

type exportService struct {
	analytics AnalyticsService
	logger    *slog.Logger
}

// NewExportService creates the analytics export service
func NewExportService(analytics AnalyticsService, logger *slog.Logger) ExportService {
	return &exportService{
		analytics: analytics,
		logger:    logger,
	}
}

// ExportAnalytics renders a survey's analytics as an xlsx workbook with
// a summary sheet and one row group per question.
func (s *exportService) ExportAnalytics(ctx context.Context, surveyID uint) ([]byte, error) {
	analytics, err := s.analytics.Analyze(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close workbook", "error", err)
		}
	}()

	if err := writeSummarySheet(f, analytics); err != nil {
		return nil, err
	}
	if err := writeQuestionSheet(f, analytics); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	s.logger.Info("Analytics exported",
		"survey_id", surveyID,
		"question_count", len(analytics.Questions),
		"bytes", buf.Len())

	return buf.Bytes(), nil
}

func writeSummarySheet(f *excelize.File, analytics *models.SurveyAnalytics) error {
	const sheet = "Summary"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to rename summary sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Survey", analytics.Title},
		{"Survey ID", analytics.SurveyID},
		{"Completed submissions", analytics.SubmissionCount},
		{"Generated at", analytics.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}
	return nil
}

func writeQuestionSheet(f *excelize.File, analytics *models.SurveyAnalytics) error {
	const sheet = "Questions"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create questions sheet: %w", err)
	}

	header := []interface{}{"Question ID", "Question", "Type", "Total", "Answered", "Skipped", "Detail", "Value"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	row := 2
	for _, q := range analytics.Questions {
		base := []interface{}{q.QuestionID, q.Text, string(q.Type), q.Total, q.Answered, q.Skipped}
		for _, detail := range questionDetailRows(q) {
			line := append(append([]interface{}{}, base...), detail...)
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheet, cell, &line); err != nil {
				return fmt.Errorf("failed to write question row: %w", err)
			}
			row++
		}
	}
	return nil
}

// questionDetailRows flattens the per-type statistics into detail/value
// column pairs, one output row each.
func questionDetailRows(q models.QuestionStats) [][]interface{} {
	switch {
	case q.YesNo != nil:
		return [][]interface{}{
			{"yes", fmt.Sprintf("%d (%.2f%%)", q.YesNo.Yes, q.YesNo.YesPercent)},
			{"no", fmt.Sprintf("%d (%.2f%%)", q.YesNo.No, q.YesNo.NoPercent)},
		}
	case len(q.Options) > 0:
		rows := make([][]interface{}, 0, len(q.Options))
		for _, opt := range q.Options {
			rows = append(rows, []interface{}{
				opt.Label,
				fmt.Sprintf("%d (%.2f%%)", opt.Count, opt.Percent),
			})
		}
		return rows
	case q.Numeric != nil:
		if q.Numeric.Count == 0 {
			return [][]interface{}{{"average", "n/a"}}
		}
		return [][]interface{}{
			{"average", q.Numeric.Average},
			{"min", q.Numeric.Min},
			{"max", q.Numeric.Max},
		}
	case q.Entries != nil:
		return [][]interface{}{{"responses", len(q.Entries)}}
	default:
		return [][]interface{}{{"", ""}}
	}
}

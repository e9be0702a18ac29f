package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateSurveyCache invalidates all caches touched by a survey change
func InvalidateSurveyCache(ctx context.Context, cm *CacheManager, surveyID uint) {
	SafeDelete(ctx, cm.Survey, fmt.Sprintf("id:%d", surveyID))
	SafeInvalidatePattern(ctx, cm.Survey, "list:*")
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("survey:%d:*", surveyID))
}

// InvalidateQuestionCache invalidates the question caches of a survey.
// Question edits also shift visibility and scoring, so the survey's
// stats caches go too.
func InvalidateQuestionCache(ctx context.Context, cm *CacheManager, surveyID uint) {
	SafeInvalidatePattern(ctx, cm.Question, fmt.Sprintf("survey:%d:*", surveyID))
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("survey:%d:*", surveyID))
}

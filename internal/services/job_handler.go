package services

import (
	"context"
	"fmt"

	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/jobs"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/logger"
)

// NewJobHandler returns the handler run by the background job queue. A
// successful refresh schedules a narrative when narration is enabled.
func NewJobHandler(analyticsService AnalyticsServicer, narrativeService NarrativeServicer, recommendationService RecommendationServicer, publisher jobs.Publisher) jobs.Handler {
	return func(ctx context.Context, job jobs.Job) error {
		switch job.Kind {
		case jobs.KindRefreshAnalytics:
			if _, err := analyticsService.Refresh(ctx, job.UserID, job.Category); err != nil {
				return err
			}
			if narrativeService == nil || !narrativeService.Enabled() || publisher == nil {
				return nil
			}
			next := jobs.Job{Kind: jobs.KindNarrate, UserID: job.UserID, Category: job.Category}
			if err := publisher.Publish(ctx, next); err != nil {
				logger.Get().Warnw("failed to schedule narrative",
					"user_id", job.UserID,
					"category", job.Category,
					"error", err,
				)
			}
			return nil
		case jobs.KindNarrate:
			if narrativeService == nil {
				return nil
			}
			_, err := narrativeService.Narrate(ctx, job.UserID, job.Category)
			return err
		case jobs.KindRecommend:
			if recommendationService == nil {
				return nil
			}
			_, err := recommendationService.Recommend(ctx, job.UserID, job.TransactionID)
			return err
		default:
			return fmt.Errorf("unknown job kind %q", job.Kind)
		}
	}
}

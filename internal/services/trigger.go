package services

import (
	"context"

	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/jobs"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/logger"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/models"
)

// NoopTrigger discards refresh requests.
type NoopTrigger struct{}

func (NoopTrigger) TriggerRefresh(string, ...string) {}

type jobTrigger struct {
	publisher jobs.Publisher
}

// NewJobTrigger returns a RefreshTrigger that publishes one refresh job for
// the overall snapshot and one per named category.
func NewJobTrigger(publisher jobs.Publisher) RefreshTrigger {
	return &jobTrigger{publisher: publisher}
}

func (t *jobTrigger) TriggerRefresh(userID string, categories ...string) {
	scopes := []string{""}
	for _, c := range categories {
		if c = models.NormalizeCategoryName(c); c != "" {
			scopes = append(scopes, c)
		}
	}
	for _, category := range scopes {
		job := jobs.Job{Kind: jobs.KindRefreshAnalytics, UserID: userID, Category: category}
		if err := t.publisher.Publish(context.Background(), job); err != nil {
			logger.Get().Warnw("failed to schedule analytics refresh",
				"user_id", userID,
				"category", category,
				"error", err,
			)
		}
	}
}

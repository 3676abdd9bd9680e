package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/analytics"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/completion"
	apperrors "github.com/indraneel316/Financial-Decision-Helper-sub000/internal/errors"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/logger"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/models"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/notify"
)

type narrativeService struct {
	db               *gorm.DB
	analyticsService AnalyticsServicer
	completer        completion.Completer
	notifier         notify.Publisher
}

// NewNarrativeService creates a new NarrativeServicer. A nil completer
// disables narration.
func NewNarrativeService(db *gorm.DB, analyticsService AnalyticsServicer, completer completion.Completer, notifier notify.Publisher) NarrativeServicer {
	if completer == nil {
		completer = completion.Disabled{}
	}
	return &narrativeService{
		db:               db,
		analyticsService: analyticsService,
		completer:        completer,
		notifier:         notifier,
	}
}

func (s *narrativeService) Enabled() bool {
	_, disabled := s.completer.(completion.Disabled)
	return !disabled
}

// Narrate generates the narrative for the stored snapshot. When the snapshot
// is recomputed while the completion is running, the narrative is still
// stored but flagged stale.
func (s *narrativeService) Narrate(ctx context.Context, userID, category string) (*models.AnalyticsSnapshot, error) {
	snapshot, err := s.analyticsService.GetSnapshot(userID, category)
	if err != nil {
		return nil, err
	}

	insights := snapshot.Insights.Data()
	text, err := s.completer.Complete(ctx, completion.Request{
		System: analytics.NarrativeSystemPrompt(),
		Prompt: analytics.BuildNarrativePrompt(&insights),
	})
	if err != nil {
		return nil, completionError(err, userID)
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"narrative":       strings.TrimSpace(text),
		"narrative_stale": false,
		"status":          models.SnapshotNarrated,
		"narrated_at":     now,
		"last_updated":    now,
	}

	res := s.db.WithContext(ctx).Model(&models.AnalyticsSnapshot{}).
		Where("id = ? AND version = ?", snapshot.ID, snapshot.Version).
		Updates(updates)
	if res.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		// A newer computation landed meanwhile; keep its timestamp.
		updates["narrative_stale"] = true
		delete(updates, "last_updated")
		if err := s.db.WithContext(ctx).Model(&models.AnalyticsSnapshot{}).
			Where("id = ?", snapshot.ID).
			Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	snapshot, err = s.analyticsService.GetSnapshot(userID, category)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.Publish(notify.UserTopic(userID), notify.EventNarrativeUpdated, snapshot.View())
	}
	return snapshot, nil
}

// completionError maps a completer failure onto the API error returned to
// clients.
func completionError(err error, userID string) error {
	var cerr *completion.Error
	if errors.As(err, &cerr) && cerr.Kind == completion.KindUnavailable {
		return apperrors.ErrCompletionUnavailable
	}
	logger.Get().Errorw("completion request failed", "user_id", userID, "error", err)
	return apperrors.Wrap(apperrors.ErrCompletionFailed, err)
}

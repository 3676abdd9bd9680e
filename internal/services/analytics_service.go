package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/analytics"
	apperrors "github.com/indraneel316/Financial-Decision-Helper-sub000/internal/errors"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/logger"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/models"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/notify"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/uuid"
)

// analyticsService loads a user's history, builds the insights and keeps
// one snapshot per user and category.
type analyticsService struct {
	db          *gorm.DB
	builder     *analytics.Builder
	userService UserServicer
	notifier    notify.Publisher
	trigger     RefreshTrigger
}

// NewAnalyticsService creates a new AnalyticsServicer. notifier and trigger
// may be nil.
func NewAnalyticsService(db *gorm.DB, builder *analytics.Builder, userService UserServicer, notifier notify.Publisher, trigger RefreshTrigger) AnalyticsServicer {
	if trigger == nil {
		trigger = NoopTrigger{}
	}
	return &analyticsService{
		db:          db,
		builder:     builder,
		userService: userService,
		notifier:    notifier,
		trigger:     trigger,
	}
}

// Refresh recomputes the snapshot for userID. An empty category refreshes
// the overall snapshot.
func (s *analyticsService) Refresh(ctx context.Context, userID, category string) (*models.AnalyticsSnapshot, error) {
	category, err := snapshotCategory(category)
	if err != nil {
		return nil, err
	}

	user, err := s.userService.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	history, err := s.loadHistory(ctx, user)
	if err != nil {
		return nil, err
	}

	insights := s.builder.Build(ctx, history, category)
	now := time.Now().UTC()

	row := models.AnalyticsSnapshot{
		ID:          uuid.New(),
		UserID:      userID,
		Category:    category,
		Status:      models.SnapshotComputed,
		Insights:    datatypes.NewJSONType(*insights),
		LastUpdated: now,
		Version:     1,
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "category"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":          row.Status,
			"insights":        row.Insights,
			"last_updated":    row.LastUpdated,
			"narrative_stale": gorm.Expr("COALESCE(analytics_snapshots.narrative, '') <> ''"),
			"version":         gorm.Expr("analytics_snapshots.version + 1"),
		}),
	}).Create(&row).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	snapshot, err := s.GetSnapshot(userID, category)
	if err != nil {
		return nil, err
	}

	logger.Get().Debugw("analytics snapshot refreshed",
		"user_id", userID,
		"category", category,
		"cycles", insights.CycleCount,
		"skipped_cycles", insights.SkippedCycles,
	)
	if s.notifier != nil {
		s.notifier.Publish(notify.UserTopic(userID), notify.EventAnalyticsUpdated, snapshot.View())
	}
	return snapshot, nil
}

// GetSnapshot returns the stored snapshot without recomputing it.
func (s *analyticsService) GetSnapshot(userID, category string) (*models.AnalyticsSnapshot, error) {
	category, err := snapshotCategory(category)
	if err != nil {
		return nil, err
	}

	var snapshot models.AnalyticsSnapshot
	if err := s.db.Where("user_id = ? AND category = ?", userID, category).First(&snapshot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSnapshotNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &snapshot, nil
}

// RefreshAll schedules an overall refresh for every user and returns how
// many were scheduled.
func (s *analyticsService) RefreshAll(ctx context.Context) (int, error) {
	ids, err := s.userService.ListUserIDs()
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		s.trigger.TriggerRefresh(id)
	}
	return len(ids), nil
}

func (s *analyticsService) loadHistory(ctx context.Context, user *models.User) (analytics.History, error) {
	var cycles []models.BudgetCycle
	err := s.db.WithContext(ctx).
		Where("user_id = ?", user.ID).
		Preload("Transactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("date ASC, created_at ASC")
		}).
		Order("start_date ASC, created_at ASC").
		Find(&cycles).Error
	if err != nil {
		return analytics.History{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	history := analytics.History{
		UserID:       user.ID,
		BaseCurrency: user.BaseCurrency,
		Cycles:       make([]analytics.Cycle, 0, len(cycles)),
	}
	for _, c := range cycles {
		cycle := analytics.Cycle{
			ID:                   c.ID,
			Status:               string(c.Status),
			Currency:             c.Currency,
			SpentSoFar:           c.SpentSoFar.InexactFloat64(),
			TotalMoneyAllocation: c.TotalMoneyAllocation.InexactFloat64(),
			SavingsTarget:        c.SavingsTarget.InexactFloat64(),
			CategorySpent:        categoryMap(c.CategorySpent.Data()),
			Allocations:          categoryMap(c.Allocations.Data()),
			Transactions:         make([]analytics.Transaction, 0, len(c.Transactions)),
		}
		for _, t := range c.Transactions {
			cycle.Transactions = append(cycle.Transactions, analytics.Transaction{
				ID:                           t.ID,
				Description:                  t.Description,
				Category:                     string(t.Category),
				Amount:                       t.Amount.InexactFloat64(),
				Currency:                     t.Currency,
				Date:                         t.Date,
				PerformedAfterRecommendation: t.PerformedAfterRecommendation,
			})
		}
		history.Cycles = append(history.Cycles, cycle)
	}
	return history, nil
}

func categoryMap(a models.CategoryAmounts) map[string]float64 {
	out := make(map[string]float64, len(a))
	for k, v := range a {
		out[string(k)] = v
	}
	return out
}

// snapshotCategory resolves the scope of a snapshot. Empty means overall.
func snapshotCategory(category string) (string, error) {
	if models.NormalizeCategoryName(category) == "" {
		return "", nil
	}
	c, ok := models.ParseCategory(category)
	if !ok {
		return "", apperrors.ErrInvalidCategory
	}
	return string(c), nil
}

package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/analytics"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/models"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/uuid"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a USD user with a unique ID and email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithCurrency(t, db, "USD")
}

// CreateTestUserWithCurrency creates a user with the given base currency.
func CreateTestUserWithCurrency(t *testing.T, db *gorm.DB, baseCurrency string) *models.User {
	t.Helper()

	n := nextID()
	user := &models.User{
		Base:         models.Base{ID: fmt.Sprintf("user-%d", n)},
		Email:        fmt.Sprintf("user%d@test.com", n),
		Name:         fmt.Sprintf("Test User %d", n),
		BaseCurrency: baseCurrency,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCycle creates an active monthly USD cycle that started yesterday
// with an allocation of 1000 and a savings target of 200.
func CreateTestCycle(t *testing.T, db *gorm.DB, userID string) *models.BudgetCycle {
	t.Helper()
	start := time.Now().UTC().AddDate(0, 0, -1)
	return CreateTestCycleWith(t, db, &models.BudgetCycle{
		UserID:               userID,
		StartDate:            start,
		EndDate:              start.AddDate(0, 1, 0),
		TotalMoneyAllocation: decimal.NewFromInt(1000),
		SavingsTarget:        decimal.NewFromInt(200),
	})
}

// CreateTestCycleWith creates c, filling in every unset required field.
func CreateTestCycleWith(t *testing.T, db *gorm.DB, c *models.BudgetCycle) *models.BudgetCycle {
	t.Helper()

	if c.Name == "" {
		c.Name = fmt.Sprintf("Test Cycle %d", nextID())
	}
	if c.Duration == "" {
		c.Duration = models.CycleMonthly
	}
	if c.StartDate.IsZero() {
		c.StartDate = time.Now().UTC().AddDate(0, 0, -1)
	}
	if c.EndDate.IsZero() {
		c.EndDate = c.Duration.EndFrom(c.StartDate)
	}
	if c.Currency == "" {
		c.Currency = "USD"
	}
	if c.Status == "" {
		c.Status = models.CycleActive
	}
	if c.Allocations.Data() == nil {
		c.Allocations = datatypes.NewJSONType(models.CategoryAmounts{})
	}
	if c.CategorySpent.Data() == nil {
		c.CategorySpent = datatypes.NewJSONType(models.CategoryAmounts{})
	}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("failed to create test cycle: %v", err)
	}
	return c
}

// CreateTestTransaction inserts a performed transaction directly, without
// touching the cycle's spent totals.
func CreateTestTransaction(t *testing.T, db *gorm.DB, cycle *models.BudgetCycle, category models.Category, amount float64, description string) *models.Transaction {
	t.Helper()

	txn := &models.Transaction{
		UserID:                       cycle.UserID,
		CycleID:                      cycle.ID,
		Description:                  description,
		Category:                     category,
		Amount:                       decimal.NewFromFloat(amount),
		Currency:                     cycle.Currency,
		Date:                         time.Now().UTC(),
		PerformedAfterRecommendation: models.PerformedYes,
	}
	if err := db.Create(txn).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return txn
}

// CreateTestSnapshot stores a computed USD snapshot for userID scoped to
// category ("" for the overall snapshot).
func CreateTestSnapshot(t *testing.T, db *gorm.DB, userID, category string) *models.AnalyticsSnapshot {
	t.Helper()

	snap := &models.AnalyticsSnapshot{
		ID:       uuid.New(),
		UserID:   userID,
		Category: category,
		Status:   models.SnapshotComputed,
		Insights: datatypes.NewJSONType(analytics.Insights{
			UserID:       userID,
			Category:     category,
			BaseCurrency: "USD",
		}),
		LastUpdated: time.Now().UTC(),
		Version:     1,
	}
	if err := db.Create(snap).Error; err != nil {
		t.Fatalf("failed to create test snapshot: %v", err)
	}
	return snap
}

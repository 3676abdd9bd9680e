package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// CycleDuration is the recurrence class of a budget cycle.
type CycleDuration string

const (
	CycleWeekly   CycleDuration = "weekly"
	CycleBiweekly CycleDuration = "biweekly"
	CycleMonthly  CycleDuration = "monthly"
)

// EndFrom returns the end of a cycle of this duration starting at start.
func (d CycleDuration) EndFrom(start time.Time) time.Time {
	switch d {
	case CycleWeekly:
		return start.AddDate(0, 0, 7)
	case CycleBiweekly:
		return start.AddDate(0, 0, 14)
	default:
		return start.AddDate(0, 1, 0)
	}
}

// CycleStatus is the lifecycle state of a budget cycle.
type CycleStatus string

const (
	CycleActive    CycleStatus = "active"
	CycleCompleted CycleStatus = "completed"
)

// BudgetCycle is one user's spending period with per-category allocations.
//
// SpentSoFar and CategorySpent are only adjusted by the transaction service
// and never go below zero.
type BudgetCycle struct {
	Base
	UserID               string                              `gorm:"type:varchar(64);not null;index" json:"user_id"`
	Name                 string                              `json:"name"`
	Duration             CycleDuration                       `gorm:"type:varchar(16);not null" json:"duration"`
	StartDate            time.Time                           `gorm:"not null" json:"start_date"`
	EndDate              time.Time                           `gorm:"not null;index" json:"end_date"`
	Currency             string                              `gorm:"type:varchar(3);not null" json:"currency"`
	TotalMoneyAllocation decimal.Decimal                     `gorm:"type:decimal(20,4);not null" json:"total_money_allocation"`
	SavingsTarget        decimal.Decimal                     `gorm:"type:decimal(20,4);not null" json:"savings_target"`
	SpentSoFar           decimal.Decimal                     `gorm:"type:decimal(20,4);not null" json:"spent_so_far"`
	Allocations          datatypes.JSONType[CategoryAmounts] `json:"allocations"`
	CategorySpent        datatypes.JSONType[CategoryAmounts] `json:"category_spent"`
	Status               CycleStatus                         `gorm:"type:varchar(16);not null;default:'active';index" json:"status"`
	Transactions         []Transaction                       `gorm:"foreignKey:CycleID" json:"transactions,omitempty"`
}

// TableName pins the table name used by the migrations.
func (BudgetCycle) TableName() string {
	return "budget_cycles"
}

// IsExpired reports whether an active cycle has passed its end date.
func (c *BudgetCycle) IsExpired(now time.Time) bool {
	return c.Status == CycleActive && !c.EndDate.After(now)
}

package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/models"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	UpsertUser(id, email, name, baseCurrency string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	UpdateBaseCurrency(id, currency string) (*models.User, error)
	ListUserIDs() ([]string, error)
}

// CycleInput holds the fields of a new budget cycle.
type CycleInput struct {
	Name                 string
	Duration             models.CycleDuration
	StartDate            time.Time
	EndDate              *time.Time
	Currency             string
	TotalMoneyAllocation decimal.Decimal
	SavingsTarget        decimal.Decimal
	Allocations          models.CategoryAmounts
}

// CycleUpdate holds the optional fields of a cycle update.
type CycleUpdate struct {
	Name                 *string
	TotalMoneyAllocation *decimal.Decimal
	SavingsTarget        *decimal.Decimal
	Allocations          models.CategoryAmounts
	EndDate              *time.Time
}

// CycleServicer defines the contract for budget cycle business logic.
type CycleServicer interface {
	CreateCycle(userID string, in CycleInput) (*models.BudgetCycle, error)
	GetUserCycles(userID string, page pagination.PageRequest, status *models.CycleStatus) (*pagination.PageResponse[models.BudgetCycle], error)
	GetCycleByID(userID, cycleID string) (*models.BudgetCycle, error)
	UpdateCycle(userID, cycleID string, in CycleUpdate) (*models.BudgetCycle, error)
	CompleteExpiredCycles(now time.Time) ([]string, error)
}

// TransactionInput holds the fields of a new transaction.
type TransactionInput struct {
	CycleID                      string
	Description                  string
	Category                     models.Category
	Amount                       decimal.Decimal
	Currency                     string
	Date                         time.Time
	PerformedAfterRecommendation bool
}

// TransactionUpdate holds the optional fields of a transaction update.
type TransactionUpdate struct {
	Description *string
	Category    *models.Category
	Amount      *decimal.Decimal
	Date        *time.Time
}

// TransactionServicer defines the contract for transaction business logic.
// Every mutation keeps the owning cycle's spent totals in step.
type TransactionServicer interface {
	CreateTransaction(ctx context.Context, userID string, in TransactionInput) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, transactionID string, in TransactionUpdate) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, transactionID string) error
	SetPerformedAfterRecommendation(userID, transactionID string, performed bool) (*models.Transaction, error)
	SetRecommendation(transactionID string, rec Recommendation) (*models.Transaction, error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	GetCycleTransactions(userID, cycleID string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
}

// Recommendation is a generated purchase verdict.
type Recommendation struct {
	Label      models.Recommendation `json:"recommendation"`
	Reasoning  string                `json:"reasoning"`
	Confidence float64               `json:"confidence"`
}

// AnalyticsServicer defines the contract for analytics snapshots.
type AnalyticsServicer interface {
	Refresh(ctx context.Context, userID, category string) (*models.AnalyticsSnapshot, error)
	GetSnapshot(userID, category string) (*models.AnalyticsSnapshot, error)
	RefreshAll(ctx context.Context) (int, error)
}

// NarrativeServicer generates the narrative of a stored snapshot.
type NarrativeServicer interface {
	Narrate(ctx context.Context, userID, category string) (*models.AnalyticsSnapshot, error)
	Enabled() bool
}

// RecommendationServicer generates a purchase recommendation for one
// transaction.
type RecommendationServicer interface {
	Recommend(ctx context.Context, userID, transactionID string) (*models.Transaction, error)
}

// RefreshTrigger schedules analytics recomputation without waiting for it.
type RefreshTrigger interface {
	TriggerRefresh(userID string, categories ...string)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}

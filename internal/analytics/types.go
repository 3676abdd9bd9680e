// Package analytics turns a user's budget cycles and transactions into a
// behavioral analytics snapshot expressed in the user's base currency.
//
// The package is pure computation over already-loaded records. Loading and
// persisting belong to the services layer.
package analytics

import (
	"context"
	"time"
)

// Converter converts an amount between currencies.
type Converter interface {
	Convert(ctx context.Context, amount float64, from, to string) float64
}

// Cycle statuses that take part in analytics.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// History is everything the normalizer needs for one user.
type History struct {
	UserID       string
	BaseCurrency string
	Cycles       []Cycle
}

// Cycle is one budget cycle with its transactions. A nil Transactions slice
// means the cycle's transactions could not be read and the cycle is skipped.
type Cycle struct {
	ID                   string
	Status               string
	Currency             string
	SpentSoFar           float64
	TotalMoneyAllocation float64
	SavingsTarget        float64
	CategorySpent        map[string]float64
	Allocations          map[string]float64
	Transactions         []Transaction
}

// Transaction is one purchase inside a cycle. A zero Date means the date
// was missing or unparseable.
type Transaction struct {
	ID                           string
	Description                  string
	Category                     string
	Amount                       float64
	Currency                     string
	Date                         time.Time
	PerformedAfterRecommendation string
}

// Insights is the assembled analytics record. Field names are the JSON
// contract read by clients.
type Insights struct {
	UserID                      string                     `json:"userId"`
	Category                    string                     `json:"category,omitempty"`
	BaseCurrency                string                     `json:"baseCurrency"`
	CycleCount                  int                        `json:"cycleCount"`
	TotalSpentBase              string                     `json:"totalSpentBase"`
	TotalAllocationBase         string                     `json:"totalAllocationBase"`
	TotalSavingsTargetBase      string                     `json:"totalSavingsTargetBase"`
	TotalSavingsBase            string                     `json:"totalSavingsBase"`
	SavingsProgress             string                     `json:"savingsProgress"`
	AvgSpentPerCycle            string                     `json:"avgSpentPerCycle"`
	AvgAllocationPerCycle       string                     `json:"avgAllocationPerCycle"`
	AvgSavingsPerCycle          string                     `json:"avgSavingsPerCycle"`
	SavingsAchievementRate      string                     `json:"savingsAchievementRate"`
	SavingsTrend                string                     `json:"savingsTrend"`
	PredictedSavingsProbability string                     `json:"predictedSavingsProbability"`
	TransactionCount            int                        `json:"transactionCount"`
	TotalTransactionAmount      string                     `json:"totalTransactionAmount"`
	AvgTransactionAmount        string                     `json:"avgTransactionAmount"`
	MinTransactionAmount        string                     `json:"minTransactionAmount"`
	MedianTransactionAmount     string                     `json:"medianTransactionAmount"`
	MaxTransactionAmount        string                     `json:"maxTransactionAmount"`
	SpendingTrend               string                     `json:"spendingTrend"`
	AverageTransactionDay       string                     `json:"averageTransactionDay"`
	LargeTransactionThreshold   string                     `json:"largeTransactionThreshold"`
	LargeTransactionThresholds  map[string]string          `json:"largeTransactionThresholds"`
	CategorySummaries           map[string]CategorySummary `json:"categorySummaries"`
	Warnings                    []string                   `json:"warnings"`
	SkippedCycles               int                        `json:"skippedCycles"`
	GeneratedAt                 time.Time                  `json:"generatedAt"`
}

// CategorySummary is the per-category slice of an Insights record.
type CategorySummary struct {
	TotalSpent                 string            `json:"totalSpent"`
	TotalAllocated             string            `json:"totalAllocated"`
	TransactionCount           int               `json:"transactionCount"`
	TotalTransactionAmount     string            `json:"totalTransactionAmount"`
	AvgTransactionAmount       string            `json:"avgTransactionAmount"`
	Currencies                 []string          `json:"currencies"`
	CommonDescription          string            `json:"commonDescription"`
	SpendingPattern            string            `json:"spendingPattern"`
	LargeTransactionThresholds map[string]string `json:"largeTransactionThresholds"`
	LargeTransactionCount      int               `json:"largeTransactionCount"`
}

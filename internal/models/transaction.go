package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Recommendation is the label produced for a planned purchase.
type Recommendation string

const (
	RecommendationApprove    Recommendation = "approve"
	RecommendationDelay      Recommendation = "delay"
	RecommendationReconsider Recommendation = "reconsider"
)

// ParseRecommendation matches s case-insensitively against the known labels.
func ParseRecommendation(s string) (Recommendation, bool) {
	switch Recommendation(strings.ToLower(strings.TrimSpace(s))) {
	case RecommendationApprove:
		return RecommendationApprove, true
	case RecommendationDelay:
		return RecommendationDelay, true
	case RecommendationReconsider:
		return RecommendationReconsider, true
	}
	return "", false
}

// Values accepted for PerformedAfterRecommendation.
const (
	PerformedYes = "yes"
	PerformedNo  = "no"
)

// Transaction is one purchase recorded against a budget cycle.
type Transaction struct {
	Base
	UserID      string          `gorm:"type:varchar(64);not null;index" json:"user_id"`
	CycleID     string          `gorm:"type:varchar(64);not null;index" json:"cycle_id"`
	Description string          `json:"description"`
	Category    Category        `gorm:"type:varchar(32);not null" json:"category"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Currency    string          `gorm:"type:varchar(3);not null" json:"currency"`
	Date        time.Time       `gorm:"not null" json:"date"`

	Recommendation               Recommendation `gorm:"type:varchar(16)" json:"recommendation,omitempty"`
	RecommendationReasoning      string         `json:"recommendation_reasoning,omitempty"`
	RecommendationConfidence     float64        `json:"recommendation_confidence,omitempty"`
	PerformedAfterRecommendation string         `gorm:"type:varchar(3);not null;default:'no'" json:"performed_after_recommendation"`
}

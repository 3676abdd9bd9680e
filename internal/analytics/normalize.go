package analytics

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/logger"
)

// NormalizedTransaction is a post-recommendation transaction converted into
// the base currency.
type NormalizedTransaction struct {
	ID          string
	CycleID     string
	Description string
	Category    string
	Currency    string
	Amount      float64
	Weekday     int // -1 when the date is unknown
}

// CycleTotals are one included cycle's converted figures.
type CycleTotals struct {
	ID            string
	Spent         float64
	Allocation    float64
	SavingsTarget float64
}

// Savings is the cycle's allocation left unspent.
func (c CycleTotals) Savings() float64 {
	return c.Allocation - c.Spent
}

// Normalized is the flattened, base-currency view of a user's history.
type Normalized struct {
	BaseCurrency       string
	Transactions       []NormalizedTransaction
	CategorySpent      map[string]float64
	CategoryAllocation map[string]float64
	Cycles             []CycleTotals
	TotalSpent         float64
	TotalAllocation    float64
	TotalSavingsTarget float64
	Skipped            int
}

// NormalizeCategory strips all whitespace so that "Dining Out" and
// "DiningOut" aggregate together.
func NormalizeCategory(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// Normalize flattens the active and completed cycles of h into base
// currency. When category is non-empty only that category's transactions and
// per-category totals are kept; cycle totals are unaffected.
func Normalize(ctx context.Context, conv Converter, h History, category string) *Normalized {
	log := logger.Named("analytics")
	base := strings.ToUpper(strings.TrimSpace(h.BaseCurrency))
	category = NormalizeCategory(category)

	n := &Normalized{
		BaseCurrency:       base,
		Transactions:       []NormalizedTransaction{},
		CategorySpent:      make(map[string]float64),
		CategoryAllocation: make(map[string]float64),
	}

	for _, c := range h.Cycles {
		if c.Status != StatusActive && c.Status != StatusCompleted {
			continue
		}
		if c.ID == "" {
			log.Warnw("Skipping cycle without identifier", "user_id", h.UserID)
			n.Skipped++
			continue
		}
		if c.Transactions == nil {
			log.Warnw("Skipping cycle without transaction list", "user_id", h.UserID, "cycle_id", c.ID)
			n.Skipped++
			continue
		}
		if !finite(c.SpentSoFar) || !finite(c.TotalMoneyAllocation) || !finite(c.SavingsTarget) {
			log.Warnw("Skipping cycle with invalid financial fields", "user_id", h.UserID, "cycle_id", c.ID)
			n.Skipped++
			continue
		}

		from := c.Currency
		if from == "" {
			from = base
		}

		totals := CycleTotals{
			ID:            c.ID,
			Spent:         conv.Convert(ctx, c.SpentSoFar, from, base),
			Allocation:    conv.Convert(ctx, c.TotalMoneyAllocation, from, base),
			SavingsTarget: conv.Convert(ctx, c.SavingsTarget, from, base),
		}
		n.Cycles = append(n.Cycles, totals)
		n.TotalSpent += totals.Spent
		n.TotalAllocation += totals.Allocation
		n.TotalSavingsTarget += totals.SavingsTarget

		accumulate(ctx, conv, n.CategorySpent, c.CategorySpent, from, base, category)
		accumulate(ctx, conv, n.CategoryAllocation, c.Allocations, from, base, category)

		for _, t := range c.Transactions {
			if t.PerformedAfterRecommendation != "yes" {
				continue
			}
			cat := NormalizeCategory(t.Category)
			if category != "" && cat != category {
				continue
			}
			cur := t.Currency
			if cur == "" {
				cur = from
			}
			weekday := -1
			if !t.Date.IsZero() {
				weekday = int(t.Date.Weekday())
			}
			n.Transactions = append(n.Transactions, NormalizedTransaction{
				ID:          t.ID,
				CycleID:     c.ID,
				Description: t.Description,
				Category:    cat,
				Currency:    strings.ToUpper(cur),
				Amount:      conv.Convert(ctx, t.Amount, cur, base),
				Weekday:     weekday,
			})
		}
	}

	n.TotalSpent = round2(n.TotalSpent)
	n.TotalAllocation = round2(n.TotalAllocation)
	n.TotalSavingsTarget = round2(n.TotalSavingsTarget)
	for k, v := range n.CategorySpent {
		n.CategorySpent[k] = round2(v)
	}
	for k, v := range n.CategoryAllocation {
		n.CategoryAllocation[k] = round2(v)
	}
	return n
}

func accumulate(ctx context.Context, conv Converter, dst, src map[string]float64, from, to, only string) {
	for name, amount := range src {
		cat := NormalizeCategory(name)
		if cat == "" || (only != "" && cat != only) || !finite(amount) {
			continue
		}
		dst[cat] += conv.Convert(ctx, amount, from, to)
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

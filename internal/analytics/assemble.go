package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Warning messages attached to Insights.
const (
	WarnNoTransactions   = "No post-recommendation transactions found for behavioral analysis"
	WarnHighSpending     = "Spending exceeds 90% of total money allocation"
	warnNegativeSavingsF = "Negative savings detected: %s %s"
)

// Assemble merges the normalizer and reducer outputs into one Insights
// record.
func Assemble(userID, category string, n *Normalized, s Stats, now time.Time) *Insights {
	in := &Insights{
		UserID:                      userID,
		Category:                    category,
		BaseCurrency:                n.BaseCurrency,
		CycleCount:                  s.CycleCount,
		TotalSpentBase:              Money(n.TotalSpent),
		TotalAllocationBase:         Money(n.TotalAllocation),
		TotalSavingsTargetBase:      Money(n.TotalSavingsTarget),
		TotalSavingsBase:            Money(s.Savings),
		SavingsProgress:             s.SavingsProgress,
		AvgSpentPerCycle:            Money(s.AvgSpent),
		AvgAllocationPerCycle:       Money(s.AvgAllocation),
		AvgSavingsPerCycle:          Money(s.AvgSavings),
		SavingsAchievementRate:      s.SavingsAchievementRate,
		SavingsTrend:                s.SavingsTrend,
		PredictedSavingsProbability: s.PredictedSavingsProbability,
		TransactionCount:            s.TransactionCount,
		TotalTransactionAmount:      Money(s.TotalTransactionAmount),
		AvgTransactionAmount:        Money(s.AvgTransactionAmount),
		MinTransactionAmount:        Money(s.MinTransactionAmount),
		MedianTransactionAmount:     Money(s.MedianTransaction),
		MaxTransactionAmount:        Money(s.MaxTransactionAmount),
		SpendingTrend:               s.SpendingTrend,
		AverageTransactionDay:       s.AverageTransactionDay,
		LargeTransactionThreshold:   Money(s.Threshold),
		LargeTransactionThresholds:  make(map[string]string, len(s.Thresholds)),
		CategorySummaries:           make(map[string]CategorySummary),
		Warnings:                    []string{},
		SkippedCycles:               n.Skipped,
		GeneratedAt:                 now.UTC(),
	}
	for code, t := range s.Thresholds {
		in.LargeTransactionThresholds[code] = Money(t)
	}

	for _, cat := range observedCategories(n, s) {
		cs, ok := s.Categories[cat]
		if !ok {
			cs = CategoryStats{SpendingPattern: PatternNoData, CommonDescription: NotAvailable}
		}
		summary := CategorySummary{
			TotalSpent:                 Money(n.CategorySpent[cat]),
			TotalAllocated:             Money(n.CategoryAllocation[cat]),
			TransactionCount:           cs.TransactionCount,
			TotalTransactionAmount:     Money(cs.Total),
			AvgTransactionAmount:       Money(cs.Mean),
			Currencies:                 cs.Currencies,
			CommonDescription:          cs.CommonDescription,
			SpendingPattern:            cs.SpendingPattern,
			LargeTransactionThresholds: make(map[string]string),
			LargeTransactionCount:      cs.LargeCount,
		}
		if summary.Currencies == nil {
			summary.Currencies = []string{}
		}
		for _, code := range summary.Currencies {
			if t, ok := s.Thresholds[code]; ok {
				summary.LargeTransactionThresholds[code] = Money(t)
			}
		}
		in.CategorySummaries[cat] = summary
	}

	if s.TransactionCount == 0 {
		in.Warnings = append(in.Warnings, WarnNoTransactions)
	}
	if n.TotalSpent > 0.9*n.TotalAllocation {
		in.Warnings = append(in.Warnings, WarnHighSpending)
	}
	if s.Savings < 0 {
		in.Warnings = append(in.Warnings, fmt.Sprintf(warnNegativeSavingsF, n.BaseCurrency, Money(s.Savings)))
	}
	return in
}

func observedCategories(n *Normalized, s Stats) []string {
	set := make(map[string]struct{})
	for c := range n.CategorySpent {
		set[c] = struct{}{}
	}
	for c := range n.CategoryAllocation {
		set[c] = struct{}{}
	}
	for c := range s.Categories {
		set[c] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Builder runs the full pipeline for one user.
type Builder struct {
	conv       Converter
	thresholds *ThresholdCache
	now        func() time.Time
}

// NewBuilder creates a Builder.
func NewBuilder(conv Converter, thresholds *ThresholdCache) *Builder {
	return &Builder{conv: conv, thresholds: thresholds, now: time.Now}
}

// Build normalizes h, reduces it and assembles the snapshot. An empty
// category builds the overall snapshot.
func (b *Builder) Build(ctx context.Context, h History, category string) *Insights {
	n := Normalize(ctx, b.conv, h, category)
	var thresholds map[string]float64
	if b.thresholds != nil {
		thresholds = b.thresholds.For(ctx, n.BaseCurrency)
	}
	return Assemble(h.UserID, NormalizeCategory(category), n, Reduce(n, thresholds), b.now())
}

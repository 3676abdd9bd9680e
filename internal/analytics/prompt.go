package analytics

import (
	"fmt"
	"sort"
	"strings"
)

const narrativeInstructions = "You are a personal finance coach. Summarize the user's budgeting " +
	"behavior below in three to five sentences of plain, encouraging language. Mention " +
	"savings progress, the categories that dominate spending, and one concrete suggestion. " +
	"Do not invent figures that are not listed."

// NarrativeSystemPrompt is the instruction sent alongside the insights.
func NarrativeSystemPrompt() string {
	return narrativeInstructions
}

// BuildNarrativePrompt renders in as the plain-text prompt sent to the
// completion service.
func BuildNarrativePrompt(in *Insights) string {
	var b strings.Builder

	scope := "all categories"
	if in.Category != "" {
		scope = "category " + in.Category
	}
	fmt.Fprintf(&b, "Budget analytics for %s, amounts in %s.\n", scope, in.BaseCurrency)
	fmt.Fprintf(&b, "Cycles analysed: %d\n", in.CycleCount)
	fmt.Fprintf(&b, "Total allocated: %s, spent: %s, saved: %s (%s)\n",
		in.TotalAllocationBase, in.TotalSpentBase, in.TotalSavingsBase, in.SavingsProgress)
	fmt.Fprintf(&b, "Savings target: %s, achievement rate: %s, trend: %s\n",
		in.TotalSavingsTargetBase, in.SavingsAchievementRate, in.SavingsTrend)
	fmt.Fprintf(&b, "Chance of saving in a cycle: %s\n", in.PredictedSavingsProbability)
	fmt.Fprintf(&b, "Purchases after recommendations: %d, average %s, median %s, largest %s, trend %s\n",
		in.TransactionCount, in.AvgTransactionAmount, in.MedianTransactionAmount, in.MaxTransactionAmount, in.SpendingTrend)
	fmt.Fprintf(&b, "Typical purchase day: %s\n", in.AverageTransactionDay)

	cats := make([]string, 0, len(in.CategorySummaries))
	for c := range in.CategorySummaries {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	for _, c := range cats {
		s := in.CategorySummaries[c]
		fmt.Fprintf(&b, "- %s: spent %s of %s allocated, %d purchases, pattern %s, most common %q\n",
			c, s.TotalSpent, s.TotalAllocated, s.TransactionCount, s.SpendingPattern, s.CommonDescription)
	}

	if len(in.Warnings) > 0 {
		b.WriteString("Warnings:\n")
		for _, w := range in.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return b.String()
}

package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/analytics"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/models"
)

func TestRenderTable(t *testing.T) {
	out := RenderTable(Table{
		Title:   "Rates",
		Headers: []string{"Code", "USD"},
		Rows:    [][]string{{"EUR", "1.25"}, {"JPY", "0.0067"}},
	})

	for _, want := range []string{"Rates", "Code", "EUR", "1.25", "0.0067", "╭", "╯"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if got := strings.Count(out, "\n"); got != 7 {
		t.Errorf("expected 7 lines, got %d:\n%s", got, out)
	}
}

func TestRenderTable_Empty(t *testing.T) {
	if out := RenderTable(Table{}); out != "" {
		t.Errorf("expected empty output, got %q", out)
	}
}

func TestRenderSnapshot(t *testing.T) {
	view := models.SnapshotView{
		Insights: analytics.Insights{
			UserID:         "user-1",
			BaseCurrency:   "EUR",
			CycleCount:     2,
			TotalSpentBase: "812.40",
			CategorySummaries: map[string]analytics.CategorySummary{
				"Groceries": {TotalSpent: "300.00", TransactionCount: 4, SpendingPattern: "steady"},
				"Travel":    {TotalSpent: "512.40", TransactionCount: 1},
			},
			Warnings: []string{"1 cycle skipped"},
		},
		Narrative:      "You overspent on travel.",
		NarrativeStale: true,
		LastUpdated:    time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC),
	}

	out := RenderSnapshot(view)
	for _, want := range []string{"All categories", "Overview (EUR)", "812.40", "Groceries", "Travel", "1 cycle skipped", "Narrative (stale)", "2025-10-01"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Index(out, "Groceries") > strings.Index(out, "Travel") {
		t.Error("categories should be sorted")
	}
}

package analytics

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/currency"
)

// identity converts nothing.
type identity struct{}

func (identity) Convert(_ context.Context, amount float64, _, _ string) float64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0
	}
	return amount
}

// usdRates converts through fixed USD-per-unit rates.
type usdRates map[string]float64

func (r usdRates) Convert(_ context.Context, amount float64, from, to string) float64 {
	rate := func(code string) float64 {
		if v, ok := r[code]; ok {
			return v
		}
		return 1
	}
	return amount * rate(from) / rate(to)
}

// recoveringFetcher serves table unless down is set.
type recoveringFetcher struct {
	table map[string]float64
	down  atomic.Bool
}

func (f *recoveringFetcher) FetchTable(context.Context) (map[string]float64, error) {
	if f.down.Load() {
		return nil, errors.New("rate API unreachable")
	}
	return f.table, nil
}

// nanConverter simulates a conversion that produces no usable number.
type nanConverter struct{}

func (nanConverter) Convert(context.Context, float64, string, string) float64 { return math.NaN() }

var monday = time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)

func tx(category string, amount float64, performed string) Transaction {
	return Transaction{Description: "item", Category: category, Amount: amount, Currency: "USD", Date: monday, PerformedAfterRecommendation: performed}
}

func cycle(id, status string, alloc, spent, target float64, txs ...Transaction) Cycle {
	if txs == nil {
		txs = []Transaction{}
	}
	return Cycle{
		ID: id, Status: status, Currency: "USD",
		TotalMoneyAllocation: alloc, SpentSoFar: spent, SavingsTarget: target,
		Transactions: txs,
	}
}

func newTestBuilder(t *testing.T, conv Converter) *Builder {
	t.Helper()
	cache, err := NewThresholdCache(conv, map[string]float64{"USD": 10000}, time.Hour)
	if err != nil {
		t.Fatalf("NewThresholdCache: %v", err)
	}
	t.Cleanup(cache.Close)
	b := NewBuilder(conv, cache)
	b.now = func() time.Time { return monday }
	return b
}

func TestNormalize(t *testing.T) {
	ctx := context.Background()

	t.Run("excludes_unknown_statuses", func(t *testing.T) {
		h := History{UserID: "u1", BaseCurrency: "USD", Cycles: []Cycle{
			cycle("c1", StatusActive, 100, 10, 0),
			cycle("c2", "archived", 1000, 900, 0, tx("Groceries", 5, "yes")),
			cycle("c3", "", 1000, 900, 0),
		}}
		n := Normalize(ctx, identity{}, h, "")
		if len(n.Cycles) != 1 || n.TotalAllocation != 100 || n.TotalSpent != 10 {
			t.Errorf("got cycles=%d alloc=%v spent=%v, want 1/100/10", len(n.Cycles), n.TotalAllocation, n.TotalSpent)
		}
		if len(n.Transactions) != 0 {
			t.Errorf("got %d transactions from excluded cycle", len(n.Transactions))
		}
	})

	t.Run("category_names_collide_after_whitespace_strip", func(t *testing.T) {
		c1 := cycle("c1", StatusActive, 0, 0, 0)
		c1.CategorySpent = map[string]float64{"Dining Out": 10}
		c2 := cycle("c2", StatusCompleted, 0, 0, 0)
		c2.CategorySpent = map[string]float64{"DiningOut": 5}

		n := Normalize(ctx, identity{}, History{BaseCurrency: "USD", Cycles: []Cycle{c1, c2}}, "")
		if got := n.CategorySpent["DiningOut"]; got != 15 {
			t.Errorf("DiningOut = %v, want 15", got)
		}
		if len(n.CategorySpent) != 1 {
			t.Errorf("expected a single category, got %v", n.CategorySpent)
		}
	})

	t.Run("skips_invalid_cycles", func(t *testing.T) {
		noTxs := cycle("c2", StatusActive, 50, 5, 0)
		noTxs.Transactions = nil
		h := History{BaseCurrency: "USD", Cycles: []Cycle{
			cycle("", StatusActive, 50, 5, 0),
			noTxs,
			cycle("c3", StatusActive, math.NaN(), 5, 0),
			cycle("c4", StatusActive, 100, 20, 0),
		}}
		n := Normalize(ctx, identity{}, h, "")
		if n.Skipped != 3 {
			t.Errorf("Skipped = %d, want 3", n.Skipped)
		}
		if n.TotalAllocation != 100 {
			t.Errorf("TotalAllocation = %v, want 100", n.TotalAllocation)
		}
	})

	t.Run("keeps_only_post_recommendation_transactions", func(t *testing.T) {
		h := History{BaseCurrency: "USD", Cycles: []Cycle{
			cycle("c1", StatusActive, 100, 0, 0, tx("Groceries", 1, "yes"), tx("Groceries", 2, "no"), tx("Dining Out", 3, "yes")),
		}}
		n := Normalize(ctx, identity{}, h, "")
		if len(n.Transactions) != 2 {
			t.Fatalf("got %d transactions, want 2", len(n.Transactions))
		}
		if n.Transactions[1].Category != "DiningOut" || n.Transactions[1].CycleID != "c1" {
			t.Errorf("unexpected transaction %+v", n.Transactions[1])
		}
	})

	t.Run("converts_into_base_currency", func(t *testing.T) {
		c := cycle("c1", StatusActive, 100, 50, 20, Transaction{Category: "Travel", Amount: 10, Date: monday, PerformedAfterRecommendation: "yes"})
		c.Currency = "EUR"
		c.Allocations = map[string]float64{"Travel": 40}
		n := Normalize(ctx, usdRates{"EUR": 1.5}, History{BaseCurrency: "usd", Cycles: []Cycle{c}}, "")
		if n.TotalAllocation != 150 || n.TotalSpent != 75 || n.TotalSavingsTarget != 30 {
			t.Errorf("totals = %v/%v/%v, want 150/75/30", n.TotalAllocation, n.TotalSpent, n.TotalSavingsTarget)
		}
		if n.CategoryAllocation["Travel"] != 60 {
			t.Errorf("Travel allocation = %v, want 60", n.CategoryAllocation["Travel"])
		}
		if n.Transactions[0].Amount != 15 || n.Transactions[0].Currency != "EUR" {
			t.Errorf("transaction = %+v, want 15 from EUR", n.Transactions[0])
		}
	})

	t.Run("missing_cycle_currency_falls_back_to_base", func(t *testing.T) {
		c := cycle("c1", StatusActive, 100, 0, 0)
		c.Currency = ""
		n := Normalize(ctx, usdRates{"EUR": 1.5}, History{BaseCurrency: "EUR", Cycles: []Cycle{c}}, "")
		if n.TotalAllocation != 100 {
			t.Errorf("TotalAllocation = %v, want 100", n.TotalAllocation)
		}
	})

	t.Run("category_filter", func(t *testing.T) {
		c := cycle("c1", StatusActive, 100, 30, 0, tx("Groceries", 10, "yes"), tx("Travel", 20, "yes"))
		c.CategorySpent = map[string]float64{"Groceries": 10, "Travel": 20}
		n := Normalize(ctx, identity{}, History{BaseCurrency: "USD", Cycles: []Cycle{c}}, "Groceries")
		if len(n.Transactions) != 1 || n.Transactions[0].Category != "Groceries" {
			t.Errorf("transactions = %+v", n.Transactions)
		}
		if _, ok := n.CategorySpent["Travel"]; ok {
			t.Error("filtered category leaked into CategorySpent")
		}
		if n.TotalSpent != 30 {
			t.Errorf("TotalSpent = %v, want 30", n.TotalSpent)
		}
	})

	t.Run("rounds_totals", func(t *testing.T) {
		n := Normalize(ctx, identity{}, History{BaseCurrency: "USD", Cycles: []Cycle{
			cycle("c1", StatusActive, 10.005, 1.004, 0),
		}}, "")
		if n.TotalSpent != 1 {
			t.Errorf("TotalSpent = %v, want 1", n.TotalSpent)
		}
	})
}

func TestReduce(t *testing.T) {
	amounts := func(vals ...float64) []NormalizedTransaction {
		out := make([]NormalizedTransaction, len(vals))
		for i, v := range vals {
			out[i] = NormalizedTransaction{Category: "Groceries", Currency: "USD", Amount: v, Weekday: -1}
		}
		return out
	}

	t.Run("upper_median", func(t *testing.T) {
		s := Reduce(&Normalized{BaseCurrency: "USD", Transactions: amounts(40, 10, 30, 20)}, nil)
		if s.MedianTransaction != 30 {
			t.Errorf("median = %v, want 30", s.MedianTransaction)
		}
		if s.MinTransactionAmount != 10 || s.MaxTransactionAmount != 40 {
			t.Errorf("min/max = %v/%v", s.MinTransactionAmount, s.MaxTransactionAmount)
		}
	})

	t.Run("no_cycles", func(t *testing.T) {
		s := Reduce(&Normalized{BaseCurrency: "USD"}, nil)
		if s.PredictedSavingsProbability != "50%" {
			t.Errorf("probability = %q, want 50%%", s.PredictedSavingsProbability)
		}
		if s.AvgSpent != 0 || s.AvgSavings != 0 {
			t.Errorf("averages should be zero, got %v/%v", s.AvgSpent, s.AvgSavings)
		}
		if s.SavingsAchievementRate != NotAvailable {
			t.Errorf("achievement = %q, want N/A", s.SavingsAchievementRate)
		}
		if s.SavingsProgress != ProgressNeutral || s.SavingsTrend != TrendStable {
			t.Errorf("progress/trend = %s/%s", s.SavingsProgress, s.SavingsTrend)
		}
		if s.AverageTransactionDay != NotAvailable || s.SpendingTrend != TrendStable {
			t.Errorf("day/trend = %s/%s", s.AverageTransactionDay, s.SpendingTrend)
		}
	})

	t.Run("savings_trend", func(t *testing.T) {
		tests := []struct {
			name   string
			cycles []CycleTotals
			alloc  float64
			spent  float64
			want   string
		}{
			{"increasing", []CycleTotals{{Allocation: 100, Spent: 90}, {Allocation: 100, Spent: 50}}, 200, 140, TrendIncreasing},
			{"decreasing", []CycleTotals{{Allocation: 100, Spent: 50}, {Allocation: 100, Spent: 90}}, 200, 140, TrendDecreasing},
			{"stable", []CycleTotals{{Allocation: 100, Spent: 50}, {Allocation: 100, Spent: 50}}, 200, 100, TrendStable},
			{"single_negative", []CycleTotals{{Allocation: 100, Spent: 150}}, 100, 150, TrendDecreasing},
			{"single_positive", []CycleTotals{{Allocation: 100, Spent: 50}}, 100, 50, TrendStable},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				s := Reduce(&Normalized{Cycles: tt.cycles, TotalAllocation: tt.alloc, TotalSpent: tt.spent}, nil)
				if s.SavingsTrend != tt.want {
					t.Errorf("SavingsTrend = %s, want %s", s.SavingsTrend, tt.want)
				}
			})
		}
	})

	t.Run("predicted_probability", func(t *testing.T) {
		n := &Normalized{Cycles: []CycleTotals{{Allocation: 100, Spent: 50}, {Allocation: 100, Spent: 150}, {Allocation: 100, Spent: 100}}}
		if got := Reduce(n, nil).PredictedSavingsProbability; got != "33.33%" {
			t.Errorf("probability = %q, want 33.33%%", got)
		}
	})

	t.Run("spending_trend_follows_accumulation_order", func(t *testing.T) {
		if got := Reduce(&Normalized{Transactions: amounts(5, 100, 10)}, nil).SpendingTrend; got != TrendIncreasing {
			t.Errorf("trend = %s, want Increasing", got)
		}
		if got := Reduce(&Normalized{Transactions: amounts(10, 1, 10)}, nil).SpendingTrend; got != TrendDecreasing {
			t.Errorf("trend = %s, want Decreasing", got)
		}
	})

	t.Run("common_description_tie_break", func(t *testing.T) {
		txs := []NormalizedTransaction{
			{Category: "Groceries", Description: " Milk "},
			{Category: "Groceries", Description: "bread"},
			{Category: "Groceries", Description: "MILK"},
			{Category: "Groceries", Description: "Bread"},
		}
		if got := Reduce(&Normalized{Transactions: txs}, nil).Categories["Groceries"].CommonDescription; got != "bread" {
			t.Errorf("CommonDescription = %q, want bread", got)
		}
	})

	t.Run("spending_pattern", func(t *testing.T) {
		bulk := Reduce(&Normalized{Transactions: amounts(1, 1, 1, 1, 1, 100, 100, 100)}, nil)
		if got := bulk.Categories["Groceries"].SpendingPattern; got != PatternBulk {
			t.Errorf("pattern = %s, want Bulk Purchases", got)
		}
		regular := Reduce(&Normalized{Transactions: amounts(1, 1, 1, 1, 1, 1, 1, 100, 100, 100)}, nil)
		if got := regular.Categories["Groceries"].SpendingPattern; got != PatternRegular {
			t.Errorf("pattern = %s, want Regular Spending", got)
		}
	})

	t.Run("average_weekday", func(t *testing.T) {
		txs := []NormalizedTransaction{{Weekday: 1}, {Weekday: 2}, {Weekday: 4}, {Weekday: -1}}
		if got := Reduce(&Normalized{Transactions: txs}, nil).AverageTransactionDay; got != "Tuesday" {
			t.Errorf("day = %s, want Tuesday", got)
		}
	})

	t.Run("large_transactions_use_currency_threshold", func(t *testing.T) {
		txs := []NormalizedTransaction{
			{Category: "Travel", Currency: "USD", Amount: 600},
			{Category: "Travel", Currency: "EUR", Amount: 600},
		}
		s := Reduce(&Normalized{BaseCurrency: "USD", Transactions: txs}, map[string]float64{"USD": 500, "EUR": 700})
		if s.Threshold != 500 {
			t.Errorf("Threshold = %v, want 500", s.Threshold)
		}
		if got := s.Categories["Travel"].LargeCount; got != 1 {
			t.Errorf("LargeCount = %d, want 1", got)
		}
	})
}

func TestThresholdCache(t *testing.T) {
	ctx := context.Background()

	t.Run("converts_five_percent_of_income", func(t *testing.T) {
		c, err := NewThresholdCache(usdRates{"EUR": 2}, map[string]float64{"usd": 10000, "EUR": 4000}, time.Hour)
		if err != nil {
			t.Fatal(err)
		}
		defer c.Close()

		got := c.For(ctx, "EUR")
		want := map[string]float64{"USD": 250, "EUR": 200}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("For(EUR) = %v, want %v", got, want)
		}
	})

	t.Run("non_finite_defaults_to_500", func(t *testing.T) {
		c, err := NewThresholdCache(nanConverter{}, map[string]float64{"USD": 10000, "INR": 800000}, time.Hour)
		if err != nil {
			t.Fatal(err)
		}
		defer c.Close()

		for code, v := range c.For(ctx, "USD") {
			if v != DefaultLargeTransactionThreshold {
				t.Errorf("%s threshold = %v, want 500", code, v)
			}
		}
	})

	t.Run("rate_outage_is_not_cached", func(t *testing.T) {
		fetcher := &recoveringFetcher{table: map[string]float64{"INR": 80}}
		conv := currency.NewConverter(currency.NewRateCache(fetcher, time.Hour))
		c, err := NewThresholdCache(conv, map[string]float64{"USD": 10000, "INR": 1000000}, time.Hour)
		if err != nil {
			t.Fatal(err)
		}
		defer c.Close()

		fetcher.down.Store(true)
		outage := c.For(ctx, "USD")
		if outage["INR"] != DefaultLargeTransactionThreshold {
			t.Errorf("INR threshold during outage = %v, want 500", outage["INR"])
		}
		if outage["USD"] != 500 {
			t.Errorf("USD threshold during outage = %v, want 500", outage["USD"])
		}

		fetcher.down.Store(false)
		if got := c.For(ctx, "USD")["INR"]; got != 625 {
			t.Errorf("INR threshold after recovery = %v, want 625", got)
		}
	})

	t.Run("returns_copies", func(t *testing.T) {
		c, err := NewThresholdCache(identity{}, map[string]float64{"USD": 10000}, time.Hour)
		if err != nil {
			t.Fatal(err)
		}
		defer c.Close()

		first := c.For(ctx, "USD")
		first["USD"] = 1
		if got := c.For(ctx, "USD")["USD"]; got != 500 {
			t.Errorf("cached threshold mutated: %v", got)
		}
	})
}

func TestBuild_EndToEnd(t *testing.T) {
	ctx := context.Background()

	history := func(spent float64) History {
		c := cycle("c1", StatusCompleted, 1000, spent, 300, Transaction{
			Description: "Weekly shop", Category: "Groceries", Amount: 50, Currency: "USD",
			Date: monday, PerformedAfterRecommendation: "yes",
		})
		return History{UserID: "u1", BaseCurrency: "USD", Cycles: []Cycle{c}}
	}

	t.Run("healthy_cycle", func(t *testing.T) {
		in := newTestBuilder(t, identity{}).Build(ctx, history(200), "")

		if in.TotalSpentBase != "200.00" || in.TotalSavingsBase != "800.00" {
			t.Errorf("spent/savings = %s/%s", in.TotalSpentBase, in.TotalSavingsBase)
		}
		if in.SavingsProgress != ProgressPositive || in.AvgSpentPerCycle != "200.00" {
			t.Errorf("progress/avg = %s/%s", in.SavingsProgress, in.AvgSpentPerCycle)
		}
		if got := in.CategorySummaries["Groceries"].TransactionCount; got != 1 {
			t.Errorf("Groceries transactionCount = %d, want 1", got)
		}
		if len(in.Warnings) != 0 {
			t.Errorf("warnings = %v, want none", in.Warnings)
		}
		if in.AverageTransactionDay != "Monday" {
			t.Errorf("day = %s, want Monday", in.AverageTransactionDay)
		}
		if in.LargeTransactionThreshold != "500.00" {
			t.Errorf("threshold = %s, want 500.00", in.LargeTransactionThreshold)
		}
	})

	t.Run("overspent_cycle", func(t *testing.T) {
		in := newTestBuilder(t, identity{}).Build(ctx, history(950), "")

		if !reflect.DeepEqual(in.Warnings, []string{WarnHighSpending}) {
			t.Errorf("warnings = %v", in.Warnings)
		}
		if in.SavingsAchievementRate != "16.67%" {
			t.Errorf("achievement = %s, want 16.67%%", in.SavingsAchievementRate)
		}
	})

	t.Run("exactly_ninety_percent_has_no_warning", func(t *testing.T) {
		in := newTestBuilder(t, identity{}).Build(ctx, history(900), "")
		if len(in.Warnings) != 0 {
			t.Errorf("warnings = %v, want none", in.Warnings)
		}
	})

	t.Run("negative_savings_and_no_transactions", func(t *testing.T) {
		h := History{UserID: "u1", BaseCurrency: "USD", Cycles: []Cycle{cycle("c1", StatusActive, 100, 150, 0)}}
		in := newTestBuilder(t, identity{}).Build(ctx, h, "")

		want := []string{WarnNoTransactions, WarnHighSpending, "Negative savings detected: USD -50.00"}
		if !reflect.DeepEqual(in.Warnings, want) {
			t.Errorf("warnings = %v, want %v", in.Warnings, want)
		}
	})

	t.Run("category_snapshot", func(t *testing.T) {
		in := newTestBuilder(t, identity{}).Build(ctx, history(200), "Dining Out")
		if in.Category != "DiningOut" || in.TransactionCount != 0 {
			t.Errorf("category/count = %s/%d", in.Category, in.TransactionCount)
		}
	})
}

func TestFormat(t *testing.T) {
	if got := Money(1.005); got != "1.01" {
		t.Errorf("Money(1.005) = %s", got)
	}
	if got := Money(math.NaN()); got != "0.00" {
		t.Errorf("Money(NaN) = %s", got)
	}
	if got := Percent(12.3456); got != "12.35%" {
		t.Errorf("Percent = %s", got)
	}
	if got := Percent(math.Inf(1)); got != NotAvailable {
		t.Errorf("Percent(Inf) = %s", got)
	}
}

func TestBuildNarrativePrompt(t *testing.T) {
	in := newTestBuilder(t, identity{}).Build(context.Background(), History{
		UserID: "u1", BaseCurrency: "USD",
		Cycles: []Cycle{cycle("c1", StatusActive, 100, 95, 10)},
	}, "")
	p := BuildNarrativePrompt(in)
	for _, want := range []string{"all categories", "USD", WarnHighSpending} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
}


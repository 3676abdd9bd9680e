package analytics

import (
	"math"
	"sort"
	"strings"
	"time"
)

// Trend and label values.
const (
	TrendIncreasing = "Increasing"
	TrendDecreasing = "Decreasing"
	TrendStable     = "Stable"

	ProgressPositive = "Positive"
	ProgressNegative = "Negative"
	ProgressNeutral  = "Neutral"

	PatternBulk    = "Bulk Purchases"
	PatternRegular = "Regular Spending"
	PatternNoData  = "No historical data"
)

// Stats are the numeric results of Reduce. Money values are in the base
// currency and not yet formatted.
type Stats struct {
	CycleCount                  int
	Savings                     float64
	SavingsProgress             string
	AvgSpent                    float64
	AvgAllocation               float64
	AvgSavings                  float64
	SavingsAchievementRate      string
	SavingsTrend                string
	PredictedSavingsProbability string

	TransactionCount       int
	TotalTransactionAmount float64
	AvgTransactionAmount   float64
	MinTransactionAmount   float64
	MedianTransaction      float64
	MaxTransactionAmount   float64
	SpendingTrend          string
	AverageTransactionDay  string

	Threshold  float64
	Thresholds map[string]float64
	Categories map[string]CategoryStats
}

// CategoryStats are the per-category transaction statistics.
type CategoryStats struct {
	TransactionCount  int
	Total             float64
	Mean              float64
	Currencies        []string
	CommonDescription string
	SpendingPattern   string
	LargeCount        int
}

// Reduce computes the aggregate statistics of n. thresholds holds the
// large-transaction threshold per currency in n's base currency.
func Reduce(n *Normalized, thresholds map[string]float64) Stats {
	s := Stats{
		CycleCount: len(n.Cycles),
		Savings:    round2(n.TotalAllocation - n.TotalSpent),
		Thresholds: thresholds,
		Categories: make(map[string]CategoryStats),
	}

	switch {
	case s.Savings > 0:
		s.SavingsProgress = ProgressPositive
	case s.Savings < 0:
		s.SavingsProgress = ProgressNegative
	default:
		s.SavingsProgress = ProgressNeutral
	}

	if s.CycleCount > 0 {
		count := float64(s.CycleCount)
		s.AvgSpent = n.TotalSpent / count
		s.AvgAllocation = n.TotalAllocation / count
		s.AvgSavings = s.Savings / count
	}

	if n.TotalSavingsTarget == 0 {
		s.SavingsAchievementRate = NotAvailable
	} else {
		s.SavingsAchievementRate = Percent(s.Savings / n.TotalSavingsTarget * 100)
	}

	s.SavingsTrend = savingsTrend(n.Cycles, s.Savings)
	s.PredictedSavingsProbability = predictedSavingsProbability(n.Cycles)

	s.Threshold = DefaultLargeTransactionThreshold
	if t, ok := thresholds[n.BaseCurrency]; ok {
		s.Threshold = t
	}

	reduceTransactions(&s, n.Transactions)
	return s
}

func savingsTrend(cycles []CycleTotals, savings float64) string {
	if len(cycles) < 2 {
		if savings < 0 {
			return TrendDecreasing
		}
		return TrendStable
	}
	first, last := cycles[0].Savings(), cycles[len(cycles)-1].Savings()
	switch {
	case last > first:
		return TrendIncreasing
	case last < first:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

func predictedSavingsProbability(cycles []CycleTotals) string {
	if len(cycles) == 0 {
		return "50%"
	}
	positive := 0
	for _, c := range cycles {
		if c.Savings() > 0 {
			positive++
		}
	}
	return Percent(float64(positive) / float64(len(cycles)) * 100)
}

func reduceTransactions(s *Stats, txs []NormalizedTransaction) {
	s.TransactionCount = len(txs)
	s.SpendingTrend = TrendStable
	s.AverageTransactionDay = NotAvailable
	if len(txs) == 0 {
		return
	}

	amounts := make([]float64, len(txs))
	byCategory := make(map[string][]NormalizedTransaction)
	weekdaySum, dated := 0, 0
	for i, t := range txs {
		amounts[i] = t.Amount
		s.TotalTransactionAmount += t.Amount
		byCategory[t.Category] = append(byCategory[t.Category], t)
		if t.Weekday >= 0 {
			weekdaySum += t.Weekday
			dated++
		}
	}

	if len(txs) >= 2 {
		if txs[len(txs)-1].Amount > txs[0].Amount {
			s.SpendingTrend = TrendIncreasing
		} else {
			s.SpendingTrend = TrendDecreasing
		}
	}

	sorted := append([]float64(nil), amounts...)
	sort.Float64s(sorted)
	s.MinTransactionAmount = sorted[0]
	s.MaxTransactionAmount = sorted[len(sorted)-1]
	s.MedianTransaction = sorted[len(sorted)/2]
	s.AvgTransactionAmount = s.TotalTransactionAmount / float64(len(txs))

	if dated > 0 {
		idx := int(math.Round(float64(weekdaySum)/float64(dated))) % 7
		s.AverageTransactionDay = time.Weekday(idx).String()
	}

	for cat, list := range byCategory {
		s.Categories[cat] = categoryStats(list, s.Thresholds, s.Threshold)
	}
}

func categoryStats(txs []NormalizedTransaction, thresholds map[string]float64, fallback float64) CategoryStats {
	cs := CategoryStats{TransactionCount: len(txs), SpendingPattern: PatternNoData}
	if len(txs) == 0 {
		return cs
	}

	seen := make(map[string]bool)
	for _, t := range txs {
		cs.Total += t.Amount
		if !seen[t.Currency] {
			seen[t.Currency] = true
			cs.Currencies = append(cs.Currencies, t.Currency)
		}
		limit, ok := thresholds[t.Currency]
		if !ok {
			limit = fallback
		}
		if t.Amount > limit {
			cs.LargeCount++
		}
	}
	sort.Strings(cs.Currencies)
	cs.Mean = cs.Total / float64(len(txs))

	above := 0
	for _, t := range txs {
		if t.Amount > 2*cs.Mean {
			above++
		}
	}
	if float64(above)/float64(len(txs)) > 0.3 {
		cs.SpendingPattern = PatternBulk
	} else {
		cs.SpendingPattern = PatternRegular
	}

	cs.CommonDescription = mostCommonDescription(txs)
	return cs
}

func mostCommonDescription(txs []NormalizedTransaction) string {
	counts := make(map[string]int)
	for _, t := range txs {
		d := strings.ToLower(strings.TrimSpace(t.Description))
		if d != "" {
			counts[d]++
		}
	}
	best, bestCount := NotAvailable, 0
	for d, c := range counts {
		if c > bestCount || (c == bestCount && d < best) {
			best, bestCount = d, c
		}
	}
	return best
}

package analytics

import (
	"math"

	"github.com/shopspring/decimal"
)

// NotAvailable marks a statistic that cannot be computed.
const NotAvailable = "N/A"

func round2(f float64) float64 {
	if !finite(f) {
		return 0
	}
	return decimal.NewFromFloat(f).Round(2).InexactFloat64()
}

// Money formats f with exactly two decimal places.
func Money(f float64) string {
	if !finite(f) {
		return "0.00"
	}
	return decimal.NewFromFloat(f).StringFixed(2)
}

// Percent formats f as "NN.NN%", or N/A when f is not finite.
func Percent(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return NotAvailable
	}
	return decimal.NewFromFloat(f).StringFixed(2) + "%"
}

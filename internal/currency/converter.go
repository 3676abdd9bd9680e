package currency

import (
	"context"
	"math"
)

// USD is the pivot currency of every rate.
const USD = "USD"

// RateSource returns USD per one unit of a currency.
type RateSource interface {
	GetRate(ctx context.Context, code string) float64
}

// Converter converts amounts between currencies through USD.
type Converter struct {
	rates RateSource
}

// NewConverter creates a converter over rates.
func NewConverter(rates RateSource) *Converter {
	return &Converter{rates: rates}
}

// Convert returns amount expressed in to. Non-finite amounts convert to 0
// and a zero target rate leaves the amount unchanged.
func (c *Converter) Convert(ctx context.Context, amount float64, from, to string) float64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0
	}
	from, to = normalizeCode(from), normalizeCode(to)
	if from == to {
		return amount
	}

	toRate := c.rates.GetRate(ctx, to)
	if toRate == 0 {
		return amount
	}
	return amount * (c.rates.GetRate(ctx, from) / toRate)
}

// Degraded returns how many lookups of the underlying rate source fell
// back to the identity rate, or 0 when the source does not count them.
func (c *Converter) Degraded() int64 {
	if d, ok := c.rates.(interface{ Degraded() int64 }); ok {
		return d.Degraded()
	}
	return 0
}

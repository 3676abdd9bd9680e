package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/logger"
)

// DefaultLargeTransactionThreshold is used when a threshold cannot be
// converted to a finite amount.
const DefaultLargeTransactionThreshold = 500.0

// largeTransactionShare is the fraction of a currency's max income above
// which a purchase counts as large.
const largeTransactionShare = 0.05

// degradationCounter is implemented by converters that count lookups which
// fell back to the identity rate.
type degradationCounter interface {
	Degraded() int64
}

// ThresholdCache holds the large-transaction threshold of every configured
// currency, converted into a base currency and cached per base currency.
type ThresholdCache struct {
	cache     *ristretto.Cache
	conv      Converter
	maxIncome map[string]float64
	ttl       time.Duration
}

// NewThresholdCache creates a cache of thresholds derived from maxIncome,
// keyed by currency code.
func NewThresholdCache(conv Converter, maxIncome map[string]float64, ttl time.Duration) (*ThresholdCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     1_000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("creating threshold cache: %w", err)
	}
	incomes := make(map[string]float64, len(maxIncome))
	for code, v := range maxIncome {
		incomes[strings.ToUpper(code)] = v
	}
	return &ThresholdCache{cache: cache, conv: conv, maxIncome: incomes, ttl: ttl}, nil
}

// For returns the threshold per configured currency expressed in base. The
// returned map is a copy and may be modified. A threshold whose conversion
// fell back to the identity rate is replaced by the default and the result
// is not cached, so it is recomputed once rates recover.
func (c *ThresholdCache) For(ctx context.Context, base string) map[string]float64 {
	base = strings.ToUpper(base)
	if v, ok := c.cache.Get(base); ok {
		return copyAmounts(v.(map[string]float64))
	}

	counter, tracked := c.conv.(degradationCounter)
	cacheable := true
	out := make(map[string]float64, len(c.maxIncome))
	for code, income := range c.maxIncome {
		var before int64
		if tracked {
			before = counter.Degraded()
		}
		t := c.conv.Convert(ctx, income*largeTransactionShare, code, base)
		if tracked && counter.Degraded() != before {
			logger.Named("analytics").Warnw("Rate unavailable, using default large-transaction threshold",
				"currency", code, "base", base)
			t = DefaultLargeTransactionThreshold
			cacheable = false
		}
		if !finite(t) {
			t = DefaultLargeTransactionThreshold
		}
		out[code] = round2(t)
	}

	if cacheable {
		c.cache.SetWithTTL(base, out, 1, c.ttl)
		c.cache.Wait()
	}
	return copyAmounts(out)
}

// Close releases the cache's background goroutines.
func (c *ThresholdCache) Close() {
	c.cache.Close()
}

func copyAmounts(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

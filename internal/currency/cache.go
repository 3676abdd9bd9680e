package currency

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/logger"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a fetched rate stays fresh.
const DefaultTTL = 30 * 24 * time.Hour

// RateCache returns USD-per-unit rates, refreshing stale entries from the
// rate API. Lookups never fail: when the API is unreachable the identity
// rate 1 is returned and the degraded counter is incremented.
type RateCache struct {
	fetcher  TableFetcher
	store    RateStore
	ttl      time.Duration
	now      func() time.Time
	group    singleflight.Group
	degraded atomic.Int64
}

// Option configures a RateCache.
type Option func(*RateCache)

// WithClock overrides the clock used for staleness checks.
func WithClock(now func() time.Time) Option {
	return func(c *RateCache) { c.now = now }
}

// WithStore replaces the default in-memory store.
func WithStore(store RateStore) Option {
	return func(c *RateCache) { c.store = store }
}

// NewRateCache creates a cache in front of fetcher. A non-positive ttl
// selects DefaultTTL.
func NewRateCache(fetcher TableFetcher, ttl time.Duration, opts ...Option) *RateCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &RateCache{
		fetcher: fetcher,
		store:   NewMemoryRateStore(),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetRate returns how many USD one unit of code is worth.
func (c *RateCache) GetRate(ctx context.Context, code string) float64 {
	code = normalizeCode(code)
	if code == USD {
		return 1
	}

	if e, ok, err := c.store.Load(ctx, code); err != nil {
		logger.Named("currency").Warnw("Rate store read failed", "code", code, "error", err)
	} else if ok && c.now().Sub(e.FetchedAt) < c.ttl {
		return e.Rate
	}

	v, _, _ := c.group.Do(code, func() (interface{}, error) {
		if rate, ok := c.fresh(ctx, code); ok {
			return rate, nil
		}
		return c.refresh(ctx, code), nil
	})
	return v.(float64)
}

func (c *RateCache) fresh(ctx context.Context, code string) (float64, bool) {
	e, ok, err := c.store.Load(ctx, code)
	if err != nil || !ok || c.now().Sub(e.FetchedAt) >= c.ttl {
		return 0, false
	}
	return e.Rate, true
}

// Degraded returns how many lookups fell back to the identity rate because
// the rate API failed.
func (c *RateCache) Degraded() int64 {
	return c.degraded.Load()
}

func (c *RateCache) refresh(ctx context.Context, code string) float64 {
	log := logger.Named("currency")

	table, err := c.fetcher.FetchTable(ctx)
	if err != nil {
		c.degraded.Add(1)
		log.Warnw("Rate API unavailable, using identity rate", "code", code, "error", err)
		return 1
	}

	rate := 1.0
	if quote, ok := table[code]; ok && quote > 0 {
		rate = 1 / quote
	} else {
		log.Warnw("Currency missing from rate table, using identity rate", "code", code)
	}

	entry := Entry{Code: code, Rate: rate, FetchedAt: c.now()}
	if err := c.store.Save(ctx, entry); err != nil {
		log.Warnw("Rate store write failed", "code", code, "error", err)
	}
	return rate
}

func normalizeCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return USD
	}
	return code
}

package services

import (
	"context"
	"testing"
	"time"

	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/currency"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/testutil"
)

type tableFetcher map[string]float64

func (f tableFetcher) FetchTable(context.Context) (map[string]float64, error) {
	return f, nil
}

func TestRateStore(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	store := NewRateStore(db)

	_, ok, err := store.Load(ctx, "EUR")
	testutil.AssertNoError(t, err)
	if ok {
		t.Fatal("expected no entry before the first save")
	}

	fetched := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	testutil.AssertNoError(t, store.Save(ctx, currency.Entry{Code: "EUR", Rate: 1.1, FetchedAt: fetched}))
	testutil.AssertNoError(t, store.Save(ctx, currency.Entry{Code: "EUR", Rate: 1.2, FetchedAt: fetched.Add(time.Hour)}))

	entry, ok, err := store.Load(ctx, "EUR")
	testutil.AssertNoError(t, err)
	if !ok {
		t.Fatal("expected a stored entry")
	}
	if entry.Rate != 1.2 || !entry.FetchedAt.Equal(fetched.Add(time.Hour)) {
		t.Errorf("expected the latest save to win, got %+v", entry)
	}
}

func TestRateStore_BacksRateCache(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	cache := currency.NewRateCache(tableFetcher{"EUR": 0.8}, 0, currency.WithStore(NewRateStore(db)))
	if got := cache.GetRate(ctx, "EUR"); got != 1.25 {
		t.Fatalf("expected 1.25 USD per EUR, got %v", got)
	}

	// A second cache over the same table is served from the database.
	restarted := currency.NewRateCache(tableFetcher{}, 0, currency.WithStore(NewRateStore(db)))
	if got := restarted.GetRate(ctx, "EUR"); got != 1.25 {
		t.Errorf("expected persisted rate 1.25, got %v", got)
	}
}

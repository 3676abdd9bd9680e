package currency

import (
	"context"
	"sync"
	"time"
)

// Entry is a cached rate with the time it was fetched.
type Entry struct {
	Code      string
	Rate      float64
	FetchedAt time.Time
}

// RateStore persists rate entries between fetches.
type RateStore interface {
	Load(ctx context.Context, code string) (Entry, bool, error)
	Save(ctx context.Context, entry Entry) error
}

// MemoryRateStore keeps entries in process memory.
type MemoryRateStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryRateStore creates an empty in-memory store.
func NewMemoryRateStore() *MemoryRateStore {
	return &MemoryRateStore{entries: make(map[string]Entry)}
}

func (s *MemoryRateStore) Load(_ context.Context, code string) (Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[code]
	return e, ok, nil
}

func (s *MemoryRateStore) Save(_ context.Context, entry Entry) error {
	s.mu.Lock()
	s.entries[entry.Code] = entry
	s.mu.Unlock()
	return nil
}

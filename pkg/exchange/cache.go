package exchange

import (
	"context"
	"sync"
	"time"
)

// CacheEntry is the persisted form of an official quote.
type CacheEntry struct {
	Value     float64   `json:"value"`
	Source    string    `json:"source"`
	Date      string    `json:"date"`
	Timestamp time.Time `json:"timestamp"`
}

// Valid reports whether the entry holds a usable rate stored less than ttl ago.
func (e CacheEntry) Valid(now time.Time, ttl time.Duration) bool {
	if e.Value <= 0 || e.Timestamp.IsZero() {
		return false
	}
	age := now.Sub(e.Timestamp)
	return age >= 0 && age < ttl
}

// Quote converts the entry back into a quote marked as cached.
func (e CacheEntry) Quote() Quote {
	return Quote{
		Value:     e.Value,
		Source:    e.Source,
		Date:      e.Date,
		FetchedAt: e.Timestamp,
		Cached:    true,
	}
}

func entryFromQuote(q Quote) CacheEntry {
	return CacheEntry{
		Value:     q.Value,
		Source:    q.Source,
		Date:      q.Date,
		Timestamp: q.FetchedAt,
	}
}

// Cache stores the most recent official quote. Load returns false when no
// entry exists.
type Cache interface {
	Load(ctx context.Context) (CacheEntry, bool, error)
	Store(ctx context.Context, entry CacheEntry) error
}

// MemoryCache keeps the entry in process memory.
type MemoryCache struct {
	mu    sync.RWMutex
	entry *CacheEntry
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (m *MemoryCache) Load(ctx context.Context) (CacheEntry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.entry == nil {
		return CacheEntry{}, false, nil
	}
	return *m.entry, true, nil
}

func (m *MemoryCache) Store(ctx context.Context, entry CacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entry = &entry
	return nil
}

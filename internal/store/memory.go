package store

import (
	"context"
	"sync"

	"github.com/usefultools/curator/internal/catalog"
)

// MemoryStore keeps the collection in memory. It backs driver tests and
// mirrors the file store's whole-collection load/replace semantics.
type MemoryStore struct {
	mu    sync.RWMutex
	items []catalog.Item
	saves int
}

// NewMemoryStore creates an in-memory store seeded with the given items.
func NewMemoryStore(items ...catalog.Item) *MemoryStore {
	return &MemoryStore{items: append([]catalog.Item(nil), items...)}
}

// Load returns a copy of the current collection.
func (s *MemoryStore) Load(_ context.Context) ([]catalog.Item, LoadStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]catalog.Item(nil), s.items...)
	return out, LoadStats{Lines: len(out)}, nil
}

// Save replaces the collection.
func (s *MemoryStore) Save(_ context.Context, items []catalog.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]catalog.Item(nil), items...)
	s.saves++
	return nil
}

// Saves reports how many times Save ran; tests use it to assert no-op runs
// never rewrite the log.
func (s *MemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

var _ Store = (*MemoryStore)(nil)

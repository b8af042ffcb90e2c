package ledger

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the default process-lifetime ledger. Entries are never
// evicted; a restart starts from an empty set.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]time.Time
}

// NewMemoryStore creates an empty in-memory ledger.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]time.Time),
	}
}

// IsProcessed reports whether the item ID has already been handled.
func (s *MemoryStore) IsProcessed(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[id]
	return ok, nil
}

// MarkProcessed records the item ID. The first timestamp wins.
func (s *MemoryStore) MarkProcessed(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		s.items[id] = at
	}
	return nil
}

// Len returns the number of recorded entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)

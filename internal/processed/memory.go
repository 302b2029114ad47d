package processed

import (
	"context"
	"sync"
	"time"
)

// MemorySet implements Set using an in-memory map of id to insertion time.
type MemorySet struct {
	ids map[string]time.Time
	mu  sync.RWMutex
	now func() time.Time
}

// NewMemorySet creates a new in-memory processed set.
func NewMemorySet() *MemorySet {
	return &MemorySet{
		ids: make(map[string]time.Time),
		now: time.Now,
	}
}

// Contains reports whether id has been processed.
func (s *MemorySet) Contains(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.ids[id]
	return exists, nil
}

// Add records id as processed.
func (s *MemorySet) Add(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.ids[id]; exists {
		return nil
	}
	s.ids[id] = s.now()
	return nil
}

// Size returns the number of tracked identifiers.
func (s *MemorySet) Size(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids), nil
}

// PruneOlderThan removes identifiers added before cutoff.
func (s *MemorySet) PruneOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int
	for id, addedAt := range s.ids {
		if addedAt.Before(cutoff) {
			delete(s.ids, id)
			removed++
		}
	}
	return removed, nil
}

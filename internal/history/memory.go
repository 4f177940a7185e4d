package history

import (
	"context"
	"sync"
)

// DefaultMemoryCapacity is used when NewMemoryStore gets a non-positive size.
const DefaultMemoryCapacity = 500

// MemoryStore keeps the most recent entries in a ring buffer. Once full, the
// oldest entry is overwritten.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
	next    int
	full    bool
}

// NewMemoryStore creates a store holding at most capacity entries.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryStore{entries: make([]Entry, capacity)}
}

// Record stores e, evicting the oldest entry when the buffer is full.
func (s *MemoryStore) Record(ctx context.Context, e Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[s.next] = e
	s.next = (s.next + 1) % len(s.entries)
	if s.next == 0 {
		s.full = true
	}
	return nil
}

// Recent returns up to limit entries, newest first. A non-positive limit
// returns everything held.
func (s *MemoryStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := s.lenLocked()
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]Entry, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (s.next - i + len(s.entries)) % len(s.entries)
		out = append(out, s.entries[idx])
	}
	return out, nil
}

// Len returns the number of entries currently held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lenLocked()
}

func (s *MemoryStore) lenLocked() int {
	if s.full {
		return len(s.entries)
	}
	return s.next
}

package tokenstore

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore keeps the pair in process memory. Expired entries read as
// absent and are dropped lazily.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	opts    options
}

func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{entries: make(map[string]entry, 2), opts: newOptions(opts)}
}

func (s *MemoryStore) Save(_ context.Context, access, refresh string) error {
	now := s.opts.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[accessName] = entry{value: access, expiresAt: expiresAt(access, now, s.opts.lifetimes.Access)}
	s.entries[refreshName] = entry{value: refresh, expiresAt: expiresAt(refresh, now, s.opts.lifetimes.Refresh)}
	return nil
}

func (s *MemoryStore) Read(_ context.Context) (Tokens, error) {
	now := s.opts.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	return Tokens{
		Access:  s.live(accessName, now),
		Refresh: s.live(refreshName, now),
	}, nil
}

// live must be called with mu held.
func (s *MemoryStore) live(name string, now time.Time) string {
	e, ok := s.entries[name]
	if !ok {
		return ""
	}
	if !now.Before(e.expiresAt) {
		delete(s.entries, name)
		return ""
	}
	return e.value
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.entries)
	return nil
}

package version

import (
	"context"
	"sync"

	"heirloom/pkg/platform/sentinel"
)

// MemoryStore keeps the version counter in memory.
type MemoryStore struct {
	mu      sync.RWMutex
	version uint32
	set     bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(_ context.Context) (uint32, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version, s.set, nil
}

func (s *MemoryStore) Set(_ context.Context, version uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set && version < s.version {
		return sentinel.ErrInvalidState
	}
	s.version = version
	s.set = true
	return nil
}

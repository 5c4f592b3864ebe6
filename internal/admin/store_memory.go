package admin

import (
	"context"
	"sync"

	"heirloom/pkg/platform/sentinel"
)

// MemoryStore holds the admin registration in memory.
type MemoryStore struct {
	mu     sync.RWMutex
	record *Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) SetIfUnset(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record != nil {
		return sentinel.ErrAlreadyUsed
	}
	r := record
	s.record = &r
	return nil
}

func (s *MemoryStore) Get(_ context.Context) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.record == nil {
		return Record{}, sentinel.ErrNotFound
	}
	return *s.record, nil
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = nil
}

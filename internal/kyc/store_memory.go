package kyc

import (
	"context"
	"sort"
	"sync"

	id "heirloom/pkg/domain"
	"heirloom/pkg/platform/sentinel"
)

// MemoryStore keeps verification statuses in memory.
type MemoryStore struct {
	mu       sync.RWMutex
	statuses map[id.UserID]*Status
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{statuses: make(map[id.UserID]*Status)}
}

func (s *MemoryStore) Mutate(_ context.Context, userID id.UserID, validate func(*Status) error, mutate func(*Status)) (*Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.statuses[userID]
	if !ok {
		current = &Status{UserID: userID}
	}

	updated := *current
	if err := validate(&updated); err != nil {
		return nil, err
	}
	mutate(&updated)

	s.statuses[userID] = &updated
	result := updated
	return &result, nil
}

func (s *MemoryStore) Find(_ context.Context, userID id.UserID) (*Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status, ok := s.statuses[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *status
	return &copied, nil
}

func (s *MemoryStore) ListAll(_ context.Context) ([]Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Status, 0, len(s.statuses))
	for _, status := range s.statuses {
		out = append(out, *status)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.Before(out[j].SubmittedAt)
	})
	return out, nil
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = make(map[id.UserID]*Status)
}

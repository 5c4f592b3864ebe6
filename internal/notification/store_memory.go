package notification

import (
	"context"
	"sync"

	id "heirloom/pkg/domain"
)

// Store persists notifications for the in-app listing.
type Store interface {
	Append(ctx context.Context, n Notification) error
	ListByUser(ctx context.Context, userID id.UserID) ([]Notification, error)
}

// MemoryStore keeps notifications in memory.
type MemoryStore struct {
	mu    sync.RWMutex
	byUID map[id.UserID][]Notification
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byUID: make(map[id.UserID][]Notification)}
}

func (s *MemoryStore) Append(_ context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUID[n.UserID] = append(s.byUID[n.UserID], n)
	return nil
}

func (s *MemoryStore) ListByUser(_ context.Context, userID id.UserID) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Notification{}, s.byUID[userID]...), nil
}

package claim

import (
	"context"
	"sort"
	"sync"

	id "heirloom/pkg/domain"
	"heirloom/pkg/fingerprint"
	"heirloom/pkg/platform/sentinel"
)

// MemoryStore keeps claim records in memory. The mutex makes InsertIfAbsent
// atomic, so racing claims serialize exactly as they do on the unique
// constraint in Postgres.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[fingerprint.Digest]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[fingerprint.Digest]Record)}
}

func (s *MemoryStore) InsertIfAbsent(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.Key]; exists {
		return sentinel.ErrConflict
	}
	s.records[record.Key] = record
	return nil
}

func (s *MemoryStore) Exists(_ context.Context, key fingerprint.Digest) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.records[key]
	return exists, nil
}

func (s *MemoryStore) ListByPlan(_ context.Context, planID id.PlanID) ([]Record, error) {
	return s.list(func(r Record) bool { return r.PlanID == planID }), nil
}

func (s *MemoryStore) ListAll(_ context.Context) ([]Record, error) {
	return s.list(func(Record) bool { return true }), nil
}

func (s *MemoryStore) list(keep func(Record) bool) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	for _, r := range s.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClaimedAt.Before(out[j].ClaimedAt) })
	return out
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[fingerprint.Digest]Record)
}

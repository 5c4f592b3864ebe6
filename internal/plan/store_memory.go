package plan

import (
	"context"
	"sort"
	"sync"

	id "heirloom/pkg/domain"
	"heirloom/pkg/platform/sentinel"
)

// MemoryStore keeps plans in memory. The single mutex makes Execute a
// serialized validate-then-mutate, matching the transactional stores.
type MemoryStore struct {
	mu     sync.RWMutex
	plans  map[id.PlanID]*Plan
	nextID uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{plans: make(map[id.PlanID]*Plan), nextID: 1}
}

func (s *MemoryStore) Create(_ context.Context, p *Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = id.PlanID(s.nextID)
	s.nextID++

	stored := clonePlan(p)
	s.plans[p.ID] = stored
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, planID id.PlanID) (*Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.plans[planID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clonePlan(p), nil
}

func (s *MemoryStore) Execute(_ context.Context, planID id.PlanID, validate func(*Plan) error, mutate func(*Plan)) (*Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.plans[planID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	updated := clonePlan(current)
	if err := validate(updated); err != nil {
		return nil, err
	}
	mutate(updated)

	s.plans[planID] = updated
	return clonePlan(updated), nil
}

func (s *MemoryStore) ListByOwner(_ context.Context, ownerID id.UserID) ([]Plan, error) {
	return s.list(func(p *Plan) bool { return p.OwnerID == ownerID }), nil
}

func (s *MemoryStore) ListAll(_ context.Context) ([]Plan, error) {
	return s.list(func(*Plan) bool { return true }), nil
}

func (s *MemoryStore) ListByStatus(_ context.Context, status Status) ([]Plan, error) {
	return s.list(func(p *Plan) bool { return p.Status == status }), nil
}

func (s *MemoryStore) ListByOwnerAndStatus(_ context.Context, ownerID id.UserID, status Status) ([]Plan, error) {
	return s.list(func(p *Plan) bool { return p.OwnerID == ownerID && p.Status == status }), nil
}

func (s *MemoryStore) list(keep func(*Plan) bool) []Plan {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Plan
	for _, p := range s.plans {
		if keep(p) {
			out = append(out, *clonePlan(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans = make(map[id.PlanID]*Plan)
	s.nextID = 1
}

func clonePlan(p *Plan) *Plan {
	copied := *p
	copied.Beneficiaries = append([]Beneficiary{}, p.Beneficiaries...)
	return &copied
}

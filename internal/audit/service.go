package audit

import (
	"context"

	id "heirloom/pkg/domain"
)

// Authority answers whether an actor holds the admin role. Declared here so
// the read path stays decoupled from the admin package.
type Authority interface {
	RequireAdmin(ctx context.Context, actorID id.UserID) error
}

// Service exposes the audit trail to operators. All reads are admin-only.
type Service struct {
	store     Store
	authority Authority
}

func NewService(store Store, authority Authority) *Service {
	return &Service{store: store, authority: authority}
}

func (s *Service) ListAll(ctx context.Context, actorID id.UserID) ([]Entry, error) {
	if err := s.authority.RequireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	return s.store.ListAll(ctx)
}

func (s *Service) ListRecent(ctx context.Context, actorID id.UserID, limit int) ([]Entry, error) {
	if err := s.authority.RequireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.store.ListRecent(ctx, limit)
}

package claim

import (
	"context"

	id "heirloom/pkg/domain"
	"heirloom/pkg/fingerprint"
)

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks

// Store persists claim records.
//
// InsertIfAbsent is the atomic at-most-once primitive: when a record with
// the same key already exists it returns sentinel.ErrConflict and changes
// nothing. Implementations must guarantee this under concurrency (unique
// constraint or equivalent), never with a read-then-write.
type Store interface {
	InsertIfAbsent(ctx context.Context, record Record) error
	Exists(ctx context.Context, key fingerprint.Digest) (bool, error)
	ListByPlan(ctx context.Context, planID id.PlanID) ([]Record, error)
	ListAll(ctx context.Context) ([]Record, error)
}

package plan

import (
	"context"

	id "heirloom/pkg/domain"
)

// Store persists plans.
//
// Create assigns the next monotonic plan id and persists the record.
//
// Execute is the atomic validate-then-mutate primitive used for every plan
// mutation. It loads the plan, runs validate and, if that passes, mutate,
// then persists the result, holding a per-plan lock (mutex or SELECT FOR
// UPDATE) for the whole callback. Concurrent mutations of one plan
// serialize, so two adds can never jointly overshoot the allocation limit.
//
// FindByID and Execute return sentinel.ErrNotFound for unknown plans.
type Store interface {
	Create(ctx context.Context, p *Plan) error
	FindByID(ctx context.Context, planID id.PlanID) (*Plan, error)
	Execute(ctx context.Context, planID id.PlanID, validate func(*Plan) error, mutate func(*Plan)) (*Plan, error)

	ListByOwner(ctx context.Context, ownerID id.UserID) ([]Plan, error)
	ListAll(ctx context.Context) ([]Plan, error)
	ListByStatus(ctx context.Context, status Status) ([]Plan, error)
	ListByOwnerAndStatus(ctx context.Context, ownerID id.UserID, status Status) ([]Plan, error)
}

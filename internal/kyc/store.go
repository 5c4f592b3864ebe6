package kyc

import (
	"context"

	id "heirloom/pkg/domain"
)

// Store persists verification statuses.
//
// Mutate is the atomic validate-then-mutate primitive. It loads the user's
// status (a zero-value record when none exists yet), runs validate and, if
// that passes, mutate, then persists the result. The implementation holds a
// per-record lock (mutex or SELECT FOR UPDATE) across the whole callback so
// concurrent transitions on the same user serialize.
//
// Find returns sentinel.ErrNotFound when the user never submitted.
type Store interface {
	Mutate(ctx context.Context, userID id.UserID, validate func(*Status) error, mutate func(*Status)) (*Status, error)
	Find(ctx context.Context, userID id.UserID) (*Status, error)
	ListAll(ctx context.Context) ([]Status, error)
}

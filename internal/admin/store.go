package admin

import "context"

// Store persists the administrator registration.
//
// SetIfUnset is the compare-and-set primitive: it succeeds at most once per
// deployment and returns sentinel.ErrAlreadyUsed on every later attempt,
// including races. Get returns sentinel.ErrNotFound before initialization.
type Store interface {
	SetIfUnset(ctx context.Context, record Record) error
	Get(ctx context.Context) (Record, error)
}

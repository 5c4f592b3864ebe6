package audit

import (
	"context"

	"github.com/google/uuid"
)

// Store persists audit entries. Append-only; entries are never updated or
// deleted once written.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	ListAll(ctx context.Context) ([]Entry, error)
	ListRecent(ctx context.Context, limit int) ([]Entry, error)
}

// Outbox exposes the unpublished backlog so a background worker can drain
// entries to the event stream without losing them on broker downtime.
type Outbox interface {
	FetchUnpublished(ctx context.Context, limit int) ([]Entry, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
}

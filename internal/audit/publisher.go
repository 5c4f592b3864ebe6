package audit

import (
	"context"

	"github.com/google/uuid"

	"heirloom/pkg/requestcontext"
)

// Publisher captures structured audit entries. It is append-only and uses
// the store for persistence so tests can swap sinks easily. Client metadata
// and the actor are taken from the request context when not set explicitly.
type Publisher struct {
	store Store
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

func (p *Publisher) Emit(ctx context.Context, base Entry) error {
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	if base.Timestamp.IsZero() {
		base.Timestamp = requestcontext.Now(ctx)
	}
	if base.ActorID.IsNil() {
		base.ActorID = requestcontext.ActorID(ctx)
	}
	if base.ClientIP == "" {
		base.ClientIP = requestcontext.ClientIP(ctx)
	}
	if base.UserAgent == "" {
		base.UserAgent = requestcontext.UserAgent(ctx)
	}
	return p.store.Append(ctx, base)
}

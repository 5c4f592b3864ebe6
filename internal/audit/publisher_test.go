package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	id "heirloom/pkg/domain"
	"heirloom/pkg/requestcontext"
)

type PublisherSuite struct {
	suite.Suite
	store     *MemoryStore
	publisher *Publisher
}

func TestPublisherSuite(t *testing.T) {
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.publisher = NewPublisher(s.store)
}

func (s *PublisherSuite) TestEmit() {
	s.Run("fills identity and time from the request context", func() {
		actor := id.UserID(uuid.New())
		now := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

		ctx := requestcontext.WithActorID(context.Background(), actor)
		ctx = requestcontext.WithTime(ctx, now)
		ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.9", "Firefox 142.0/Linux")

		s.Require().NoError(s.publisher.Emit(ctx, Entry{
			Action:     ActionPlanCreated,
			EntityType: "plan",
			EntityID:   "1",
		}))

		entries, err := s.store.ListAll(ctx)
		s.Require().NoError(err)
		s.Require().Len(entries, 1)

		e := entries[0]
		s.NotEqual(uuid.Nil, e.ID)
		s.Equal(actor, e.ActorID)
		s.Equal(now, e.Timestamp)
		s.Equal("203.0.113.9", e.ClientIP)
		s.Equal("Firefox 142.0/Linux", e.UserAgent)
	})

	s.Run("explicit fields win over the context", func() {
		s.store.Clear()
		actor := id.UserID(uuid.New())
		explicit := id.UserID(uuid.New())
		ctx := requestcontext.WithActorID(context.Background(), actor)

		s.Require().NoError(s.publisher.Emit(ctx, Entry{
			ActorID: explicit,
			Action:  ActionClaimSuccess,
		}))

		entries, err := s.store.ListAll(ctx)
		s.Require().NoError(err)
		s.Require().Len(entries, 1)
		s.Equal(explicit, entries[0].ActorID)
	})
}

//go:build integration

package audit_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"heirloom/internal/audit"
	id "heirloom/pkg/domain"
	"heirloom/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *audit.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = audit.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "audit_entries")
	s.Require().NoError(err)
}

func newEntry(action audit.Action, at time.Time) audit.Entry {
	return audit.Entry{
		ID:         uuid.New(),
		ActorID:    id.UserID(uuid.New()),
		Action:     action,
		EntityType: "plan",
		EntityID:   "42",
		Detail:     "title=Estate",
		ClientIP:   "203.0.113.7",
		UserAgent:  "curl/8.5.0",
		Timestamp:  at.UTC().Truncate(time.Microsecond),
	}
}

func (s *PostgresStoreSuite) TestAppend() {
	ctx := context.Background()
	entry := newEntry(audit.ActionPlanCreated, time.Now())

	s.Run("round-trips the entry", func() {
		s.Require().NoError(s.store.Append(ctx, entry))

		entries, err := s.store.ListAll(ctx)
		s.Require().NoError(err)
		s.Require().Len(entries, 1)
		s.Equal(entry.ID, entries[0].ID)
		s.Equal(entry.ActorID, entries[0].ActorID)
		s.Equal(entry.Action, entries[0].Action)
		s.Equal(entry.Detail, entries[0].Detail)
		s.True(entry.Timestamp.Equal(entries[0].Timestamp))
	})

	s.Run("re-appending the same id is a no-op", func() {
		dup := entry
		dup.Detail = "title=Changed"
		s.Require().NoError(s.store.Append(ctx, dup))

		entries, err := s.store.ListAll(ctx)
		s.Require().NoError(err)
		s.Require().Len(entries, 1)
		s.Equal("title=Estate", entries[0].Detail)
	})
}

func (s *PostgresStoreSuite) TestListRecent() {
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 5; i++ {
		e := newEntry(audit.ActionClaimSuccess, base.Add(time.Duration(i)*time.Minute))
		e.EntityID = fmt.Sprintf("%d", i)
		s.Require().NoError(s.store.Append(ctx, e))
	}

	s.Run("newest first, bounded by limit", func() {
		entries, err := s.store.ListRecent(ctx, 3)
		s.Require().NoError(err)
		s.Require().Len(entries, 3)
		s.Equal("4", entries[0].EntityID)
		s.Equal("3", entries[1].EntityID)
		s.Equal("2", entries[2].EntityID)
	})

	s.Run("limit beyond size returns everything", func() {
		entries, err := s.store.ListRecent(ctx, 50)
		s.Require().NoError(err)
		s.Len(entries, 5)
	})
}

func (s *PostgresStoreSuite) TestOutbox() {
	ctx := context.Background()
	base := time.Now()

	first := newEntry(audit.ActionKycSubmitted, base)
	second := newEntry(audit.ActionKycApproved, base.Add(time.Minute))
	third := newEntry(audit.ActionPlanCreated, base.Add(2*time.Minute))
	for _, e := range []audit.Entry{third, first, second} {
		s.Require().NoError(s.store.Append(ctx, e))
	}

	s.Run("fetches oldest first, bounded by limit", func() {
		entries, err := s.store.FetchUnpublished(ctx, 2)
		s.Require().NoError(err)
		s.Require().Len(entries, 2)
		s.Equal(first.ID, entries[0].ID)
		s.Equal(second.ID, entries[1].ID)
	})

	s.Run("published entries drop out of the batch", func() {
		s.Require().NoError(s.store.MarkPublished(ctx, []uuid.UUID{first.ID, second.ID}))

		entries, err := s.store.FetchUnpublished(ctx, 10)
		s.Require().NoError(err)
		s.Require().Len(entries, 1)
		s.Equal(third.ID, entries[0].ID)
	})

	s.Run("marking nothing is a no-op", func() {
		s.Require().NoError(s.store.MarkPublished(ctx, nil))
	})
}

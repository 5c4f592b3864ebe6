//go:build integration

package kyc_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"heirloom/internal/kyc"
	id "heirloom/pkg/domain"
	"heirloom/pkg/platform/sentinel"
	"heirloom/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *kyc.PostgresStore
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
	s.store = kyc.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "kyc_statuses")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestMutate() {
	ctx := context.Background()
	userID := id.UserID(uuid.New())
	now := time.Now().UTC().Truncate(time.Microsecond)

	s.Run("creates the record on first mutation", func() {
		status, err := s.store.Mutate(ctx, userID,
			func(st *kyc.Status) error { return st.CanSubmit() },
			func(st *kyc.Status) { st.ApplySubmission(now) },
		)
		s.Require().NoError(err)
		s.True(status.Submitted)
		s.True(now.Equal(status.SubmittedAt))
	})

	s.Run("later mutations update in place", func() {
		status, err := s.store.Mutate(ctx, userID,
			func(st *kyc.Status) error { return st.CanApprove() },
			func(st *kyc.Status) { st.ApplyApproval(now.Add(time.Hour)) },
		)
		s.Require().NoError(err)
		s.True(status.Approved)

		got, err := s.store.Find(ctx, userID)
		s.Require().NoError(err)
		s.True(got.Submitted)
		s.True(got.Approved)
	})

	s.Run("validation failure writes nothing", func() {
		_, err := s.store.Mutate(ctx, userID,
			func(st *kyc.Status) error { return st.CanApprove() },
			func(st *kyc.Status) { st.ApplyApproval(now) },
		)
		s.Require().Error(err)

		got, err := s.store.Find(ctx, userID)
		s.Require().NoError(err)
		s.True(got.ApprovedAt.Equal(now.Add(time.Hour)))
	})
}

func (s *PostgresStoreSuite) TestFind() {
	ctx := context.Background()

	_, err := s.store.Find(ctx, id.UserID(uuid.New()))
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListAll() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	for i := 0; i < 3; i++ {
		userID := id.UserID(uuid.New())
		_, err := s.store.Mutate(ctx, userID,
			func(st *kyc.Status) error { return nil },
			func(st *kyc.Status) { st.ApplySubmission(now.Add(time.Duration(i) * time.Minute)) },
		)
		s.Require().NoError(err)
	}

	statuses, err := s.store.ListAll(ctx)
	s.Require().NoError(err)
	s.Len(statuses, 3)
}

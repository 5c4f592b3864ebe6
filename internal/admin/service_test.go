package admin

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	id "heirloom/pkg/domain"
	derrors "heirloom/pkg/domain-errors"
)

type AdminServiceSuite struct {
	suite.Suite
	store   *MemoryStore
	service *Service
}

func TestAdminServiceSuite(t *testing.T) {
	suite.Run(t, new(AdminServiceSuite))
}

func (s *AdminServiceSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.service = New(s.store)
}

func (s *AdminServiceSuite) TestInitialize() {
	ctx := context.Background()

	s.Run("first call registers the admin", func() {
		userID := id.UserID(uuid.New())
		record, err := s.service.Initialize(ctx, userID)
		s.Require().NoError(err)
		s.Equal(userID, record.UserID)
		s.False(record.InitializedAt.IsZero())
	})

	s.Run("second call conflicts and keeps the original", func() {
		original, err := s.service.Current(ctx)
		s.Require().NoError(err)

		_, err = s.service.Initialize(ctx, id.UserID(uuid.New()))
		s.True(derrors.HasCode(err, derrors.CodeConflict), "got %v", err)

		current, err := s.service.Current(ctx)
		s.Require().NoError(err)
		s.Equal(original.UserID, current.UserID)
	})

	s.Run("nil user id fails validation", func() {
		_, err := s.service.Initialize(ctx, id.UserID{})
		s.True(derrors.HasCode(err, derrors.CodeValidation), "got %v", err)
	})
}

func (s *AdminServiceSuite) TestInitializeRace() {
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.Initialize(ctx, id.UserID(uuid.New()))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			s.True(derrors.HasCode(err, derrors.CodeConflict), "got %v", err)
		}
	}
	s.Equal(1, succeeded)
}

func (s *AdminServiceSuite) TestIsAdmin() {
	ctx := context.Background()
	userID := id.UserID(uuid.New())

	s.Run("no admin registered yet", func() {
		ok, err := s.service.IsAdmin(ctx, userID)
		s.Require().NoError(err)
		s.False(ok)
	})

	s.Run("only the registered admin matches", func() {
		_, err := s.service.Initialize(ctx, userID)
		s.Require().NoError(err)

		ok, err := s.service.IsAdmin(ctx, userID)
		s.Require().NoError(err)
		s.True(ok)

		ok, err = s.service.IsAdmin(ctx, id.UserID(uuid.New()))
		s.Require().NoError(err)
		s.False(ok)
	})
}

func (s *AdminServiceSuite) TestRequireAdmin() {
	ctx := context.Background()
	userID := id.UserID(uuid.New())

	s.Run("before initialization the check fails as unauthorized", func() {
		err := s.service.RequireAdmin(ctx, userID)
		s.True(derrors.HasCode(err, derrors.CodeUnauthorized), "got %v", err)
		s.False(derrors.HasCode(err, derrors.CodeForbidden), "got %v", err)
	})

	s.Run("after initialization only the admin passes", func() {
		_, err := s.service.Initialize(ctx, userID)
		s.Require().NoError(err)

		s.NoError(s.service.RequireAdmin(ctx, userID))

		err = s.service.RequireAdmin(ctx, id.UserID(uuid.New()))
		s.True(derrors.HasCode(err, derrors.CodeForbidden), "got %v", err)
		s.False(derrors.HasCode(err, derrors.CodeUnauthorized), "got %v", err)
	})
}

func (s *AdminServiceSuite) TestCurrent() {
	ctx := context.Background()

	s.Run("before initialization", func() {
		_, err := s.service.Current(ctx)
		s.True(derrors.HasCode(err, derrors.CodeNotFound), "got %v", err)
	})

	s.Run("after initialization", func() {
		userID := id.UserID(uuid.New())
		_, err := s.service.Initialize(ctx, userID)
		s.Require().NoError(err)

		record, err := s.service.Current(ctx)
		s.Require().NoError(err)
		s.Equal(userID, record.UserID)
	})
}

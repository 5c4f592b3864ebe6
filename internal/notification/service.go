package notification

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	id "heirloom/pkg/domain"
	derrors "heirloom/pkg/domain-errors"
	"heirloom/pkg/requestcontext"
)

// Service creates and lists user notifications. CreateSilent is the only
// write path and deliberately returns nothing: notifications are a side
// effect of domain operations and must never fail them.
type Service struct {
	store      Store
	dispatcher Dispatcher
	logger     *slog.Logger
}

type Option func(s *Service)

func WithDispatcher(d Dispatcher) Option {
	return func(s *Service) { s.dispatcher = d }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSilent records and dispatches a notification, logging failures
// instead of returning them.
func (s *Service) CreateSilent(ctx context.Context, userID id.UserID, kind, message string) {
	n := Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      kind,
		Message:   message,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.store.Append(ctx, n); err != nil {
		s.logger.ErrorContext(ctx, "notification store failed", "kind", kind, "error", err)
		return
	}
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Dispatch(ctx, n); err != nil {
		s.logger.WarnContext(ctx, "notification dispatch failed", "kind", kind, "error", err)
	}
}

// ListForUser returns the user's notifications, newest last.
func (s *Service) ListForUser(ctx context.Context, userID id.UserID) ([]Notification, error) {
	out, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to list notifications")
	}
	return out, nil
}

package admin

import (
	"context"
	"errors"
	"log/slog"

	"heirloom/internal/audit"
	"heirloom/internal/platform/metrics"
	id "heirloom/pkg/domain"
	derrors "heirloom/pkg/domain-errors"
	"heirloom/pkg/platform/sentinel"
	"heirloom/pkg/requestcontext"
)

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Entry) error
}

// Service manages the one-time administrator registration and answers
// authorization checks for admin-gated operations.
type Service struct {
	store          Store
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditPublisher = publisher }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize registers userID as the administrator. Succeeds at most once;
// every later call, including concurrent ones, fails with a conflict and
// leaves the original registration untouched.
func (s *Service) Initialize(ctx context.Context, userID id.UserID) (Record, error) {
	if userID.IsNil() {
		return Record{}, derrors.New(derrors.CodeValidation, "admin user id is required")
	}

	record := Record{UserID: userID, InitializedAt: requestcontext.Now(ctx)}
	if err := s.store.SetIfUnset(ctx, record); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return Record{}, derrors.New(derrors.CodeConflict, "admin already initialized")
		}
		return Record{}, derrors.Wrap(err, derrors.CodeInternal, "failed to initialize admin")
	}

	s.logger.InfoContext(ctx, "admin initialized", "user_id", userID.String())
	s.emit(ctx, audit.Entry{
		ActorID:    userID,
		Action:     audit.ActionAdminInitialized,
		EntityType: "admin",
		EntityID:   userID.String(),
	})
	return record, nil
}

// IsAdmin reports whether actorID is the registered administrator. Returns
// false without error when no admin is registered yet.
func (s *Service) IsAdmin(ctx context.Context, actorID id.UserID) (bool, error) {
	record, err := s.store.Get(ctx)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, derrors.Wrap(err, derrors.CodeInternal, "failed to load admin registration")
	}
	return record.UserID == actorID, nil
}

// RequireAdmin rejects actors other than the registered administrator.
// Before Initialize there is no administrator to check against, which is
// a distinct failure from a non-admin caller.
func (s *Service) RequireAdmin(ctx context.Context, actorID id.UserID) error {
	record, err := s.store.Get(ctx)
	if errors.Is(err, sentinel.ErrNotFound) {
		return derrors.New(derrors.CodeUnauthorized, "admin not initialized")
	}
	if err != nil {
		return derrors.Wrap(err, derrors.CodeInternal, "failed to load admin registration")
	}
	if record.UserID != actorID {
		return derrors.New(derrors.CodeForbidden, "admin privileges required")
	}
	return nil
}

// Current returns the registration, or a not-found error before Initialize.
func (s *Service) Current(ctx context.Context) (Record, error) {
	record, err := s.store.Get(ctx)
	if errors.Is(err, sentinel.ErrNotFound) {
		return Record{}, derrors.New(derrors.CodeNotFound, "admin not initialized")
	}
	if err != nil {
		return Record{}, derrors.Wrap(err, derrors.CodeInternal, "failed to load admin registration")
	}
	return record, nil
}

func (s *Service) emit(ctx context.Context, entry audit.Entry) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "audit emit failed", "action", entry.Action, "error", err)
	}
}

package kyc

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

// Authority answers admin checks for the moderation endpoints.
type Authority interface {
	RequireAdmin(ctx context.Context, actorID id.UserID) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Entry) error
}

// Notifier delivers best-effort user notifications. Failures never propagate.
type Notifier interface {
	CreateSilent(ctx context.Context, userID id.UserID, kind, message string)
}

// Service runs the verification state machine. Users submit; the registered
// administrator approves or rejects. Gated operations elsewhere consult
// IsApproved before mutating anything.
type Service struct {
	store          Store
	authority      Authority
	logger         *slog.Logger
	auditPublisher AuditPublisher
	notifier       Notifier
	metrics        *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditPublisher = publisher }
}

func WithNotifier(notifier Notifier) Option {
	return func(s *Service) { s.notifier = notifier }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(store Store, authority Authority, opts ...Option) *Service {
	s := &Service{store: store, authority: authority, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit marks the user's verification as submitted. A rejected user may
// submit again; an approved user may not.
func (s *Service) Submit(ctx context.Context, userID id.UserID) (*Status, error) {
	if userID.IsNil() {
		return nil, derrors.New(derrors.CodeValidation, "user id is required")
	}

	now := requestcontext.Now(ctx)
	status, err := s.store.Mutate(ctx, userID,
		func(st *Status) error {
			if err := st.CanSubmit(); err != nil {
				return derrors.New(derrors.CodeConflict, "verification already approved")
			}
			return nil
		},
		func(st *Status) {
			st.ApplySubmission(now)
		},
	)
	if err != nil {
		return nil, wrapStoreErr(err, "failed to submit verification")
	}

	s.emit(ctx, userID, audit.ActionKycSubmitted)
	s.inc(func(m *metrics.Metrics) { m.KycSubmitted.Inc() })
	return status, nil
}

// Approve marks a submitted user as approved. Admin only.
func (s *Service) Approve(ctx context.Context, adminID, userID id.UserID) (*Status, error) {
	if err := s.authority.RequireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	status, err := s.store.Mutate(ctx, userID,
		func(st *Status) error {
			if err := st.CanApprove(); err != nil {
				if !st.Submitted {
					return derrors.New(derrors.CodeConflict, "verification not submitted")
				}
				return derrors.New(derrors.CodeConflict, "verification already approved")
			}
			return nil
		},
		func(st *Status) {
			st.ApplyApproval(now)
		},
	)
	if err != nil {
		return nil, wrapStoreErr(err, "failed to approve verification")
	}

	s.emit(ctx, userID, audit.ActionKycApproved)
	s.inc(func(m *metrics.Metrics) { m.KycApproved.Inc() })
	s.notify(ctx, userID, "kyc_approved", "Your identity verification has been approved.")
	return status, nil
}

// Reject marks a submitted user as rejected. Admin only. Rejection does not
// block a later resubmission.
func (s *Service) Reject(ctx context.Context, adminID, userID id.UserID) (*Status, error) {
	if err := s.authority.RequireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	status, err := s.store.Mutate(ctx, userID,
		func(st *Status) error {
			if err := st.CanReject(); err != nil {
				if !st.Submitted {
					return derrors.New(derrors.CodeConflict, "verification not submitted")
				}
				return derrors.New(derrors.CodeConflict, "verification already rejected")
			}
			return nil
		},
		func(st *Status) {
			st.ApplyRejection(now)
		},
	)
	if err != nil {
		return nil, wrapStoreErr(err, "failed to reject verification")
	}

	s.emit(ctx, userID, audit.ActionKycRejected)
	s.inc(func(m *metrics.Metrics) { m.KycRejected.Inc() })
	s.notify(ctx, userID, "kyc_rejected", "Your identity verification was rejected. You may submit again.")
	return status, nil
}

// IsApproved reports whether the user passed verification. A user with no
// record is simply not approved.
func (s *Service) IsApproved(ctx context.Context, userID id.UserID) (bool, error) {
	status, err := s.store.Find(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, derrors.Wrap(err, derrors.CodeInternal, "failed to load verification status")
	}
	return status.Approved, nil
}

// Get returns the user's verification status.
func (s *Service) Get(ctx context.Context, userID id.UserID) (*Status, error) {
	status, err := s.store.Find(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, derrors.New(derrors.CodeNotFound, "verification status not found")
	}
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to load verification status")
	}
	return status, nil
}

// ListStatuses returns every user's verification status for the admin
// review queue.
func (s *Service) ListStatuses(ctx context.Context, adminID id.UserID) ([]Status, error) {
	if err := s.authority.RequireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	statuses, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to list verification statuses")
	}
	return statuses, nil
}

func wrapStoreErr(err error, message string) error {
	if derrors.HasCode(err, derrors.CodeConflict) {
		return err
	}
	return derrors.Wrap(err, derrors.CodeInternal, message)
}

func (s *Service) emit(ctx context.Context, userID id.UserID, action audit.Action) {
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Entry{
		Action:     action,
		EntityType: "kyc",
		EntityID:   userID.String(),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "audit emit failed", "action", action, "error", err)
	}
}

func (s *Service) notify(ctx context.Context, userID id.UserID, kind, message string) {
	if s.notifier != nil {
		s.notifier.CreateSilent(ctx, userID, kind, message)
	}
}

func (s *Service) inc(f func(*metrics.Metrics)) {
	if s.metrics != nil {
		f(s.metrics)
	}
}

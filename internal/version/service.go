package version

import (
	"context"
	"log/slog"

	"heirloom/internal/audit"
	"heirloom/internal/platform/metrics"
	id "heirloom/pkg/domain"
	derrors "heirloom/pkg/domain-errors"
)

// DefaultVersion is reported before any version was ever stored.
const DefaultVersion uint32 = 1

// TargetVersion is the version this build migrates stores up to. Bump it
// together with the migration steps in Migrate.
const TargetVersion uint32 = 1

type Authority interface {
	RequireAdmin(ctx context.Context, actorID id.UserID) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Entry) error
}

// Service tracks the schema/logic version and applies migrations. The
// actual logic swap on upgrade is performed by an external deployment
// collaborator; the service only advances the counter and records the
// reference.
type Service struct {
	store          Store
	authority      Authority
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

func New(store Store, authority Authority, opts ...Option) *Service {
	s := &Service{store: store, authority: authority, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CurrentVersion returns the stored version, or DefaultVersion when nothing
// was stored yet.
func (s *Service) CurrentVersion(ctx context.Context) (uint32, error) {
	version, found, err := s.store.Get(ctx)
	if err != nil {
		return 0, derrors.Wrap(err, derrors.CodeInternal, "failed to load version")
	}
	if !found {
		return DefaultVersion, nil
	}
	return version, nil
}

// Migrate brings the stored version up to TargetVersion. Safe to call
// repeatedly: once the store is current it fails with a conflict and
// changes nothing.
func (s *Service) Migrate(ctx context.Context, adminID id.UserID) (uint32, error) {
	if err := s.authority.RequireAdmin(ctx, adminID); err != nil {
		return 0, err
	}

	stored, found, err := s.store.Get(ctx)
	if err != nil {
		return 0, derrors.Wrap(err, derrors.CodeInternal, "failed to load version")
	}
	if !found {
		stored = 0
	}
	if stored >= TargetVersion {
		return stored, derrors.New(derrors.CodeConflict, "migration not required")
	}

	// Version-specific migration steps run here, ordered and guarded:
	//
	//	if stored < 2 { ... }

	if err := s.store.Set(ctx, TargetVersion); err != nil {
		return 0, derrors.Wrap(err, derrors.CodeInternal, "failed to store version")
	}

	s.logger.InfoContext(ctx, "schema migrated", "from", stored, "to", TargetVersion)
	s.emit(ctx, audit.Entry{
		ActorID:    adminID,
		Action:     audit.ActionSchemaMigrated,
		EntityType: "version",
	})
	if s.metrics != nil {
		s.metrics.MigrationsApplied.Inc()
	}
	return TargetVersion, nil
}

// Upgrade advances the version counter and records the new logic reference.
// All persisted plan, claim and verification state is untouched.
func (s *Service) Upgrade(ctx context.Context, adminID id.UserID, codeReference string) (uint32, error) {
	if err := s.authority.RequireAdmin(ctx, adminID); err != nil {
		return 0, err
	}
	if codeReference == "" {
		return 0, derrors.New(derrors.CodeValidation, "code reference is required")
	}

	current, err := s.CurrentVersion(ctx)
	if err != nil {
		return 0, err
	}
	next := current + 1

	if err := s.store.Set(ctx, next); err != nil {
		return 0, derrors.Wrap(err, derrors.CodeInternal, "failed to store version")
	}

	s.logger.InfoContext(ctx, "logic upgraded", "from", current, "to", next, "code_reference", codeReference)
	s.emit(ctx, audit.Entry{
		ActorID:    adminID,
		Action:     audit.ActionLogicUpgraded,
		EntityType: "version",
		Detail:     codeReference,
	})
	return next, nil
}

func (s *Service) emit(ctx context.Context, entry audit.Entry) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "audit emit failed", "action", entry.Action, "error", err)
	}
}

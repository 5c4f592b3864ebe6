package plan

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"heirloom/internal/audit"
	"heirloom/internal/custody"
	"heirloom/internal/platform/metrics"
	id "heirloom/pkg/domain"
	derrors "heirloom/pkg/domain-errors"
	"heirloom/pkg/platform/sentinel"
	"heirloom/pkg/requestcontext"
)

// Gate is the verification check consulted before a user may create plans.
type Gate interface {
	IsApproved(ctx context.Context, userID id.UserID) (bool, error)
}

type Authority interface {
	RequireAdmin(ctx context.Context, actorID id.UserID) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Entry) error
}

type Notifier interface {
	CreateSilent(ctx context.Context, userID id.UserID, kind, message string)
}

// CreateInput is the boundary form for plan creation. Beneficiary identity
// fields arrive in clear and are fingerprinted before storage.
type CreateInput struct {
	Title              string
	Description        string
	TotalAmount        int64
	Asset              string
	DistributionMethod string
	Beneficiaries      []BeneficiaryInput
}

// Service is the plan registry: creation, beneficiary management,
// deactivation and queries. All mutations require the caller to own the
// plan; admin access is read-only.
type Service struct {
	plans          Store
	gate           Gate
	authority      Authority
	custody        custody.Intents
	logger         *slog.Logger
	auditPublisher AuditPublisher
	notifier       Notifier
	metrics        *metrics.Metrics
	tracer         trace.Tracer
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

func WithCustody(intents custody.Intents) Option {
	return func(s *Service) { s.custody = intents }
}

func New(plans Store, gate Gate, authority Authority, opts ...Option) *Service {
	s := &Service{
		plans:     plans,
		gate:      gate,
		authority: authority,
		logger:    slog.Default(),
		tracer:    otel.Tracer("heirloom/internal/plan"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates the input, fingerprints beneficiary identities and
// persists a new active plan under a fresh monotonic id. The owner must
// have passed verification before any mutation occurs.
func (s *Service) Create(ctx context.Context, ownerID id.UserID, input CreateInput) (*Plan, error) {
	ctx, span := s.tracer.Start(ctx, "PlanService.Create")
	defer span.End()

	if ownerID.IsNil() {
		return nil, derrors.New(derrors.CodeValidation, "owner id is required")
	}

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, derrors.New(derrors.CodeValidation, "title is required")
	}
	if len(input.Description) > MaxDescriptionLen {
		return nil, derrors.Newf(derrors.CodeValidation, "description exceeds %d characters", MaxDescriptionLen)
	}
	if input.TotalAmount <= 0 {
		return nil, derrors.New(derrors.CodeValidation, "total amount must be positive")
	}
	asset, err := id.ParseAssetType(input.Asset)
	if err != nil {
		return nil, err
	}
	method, err := id.ParseDistributionMethod(input.DistributionMethod)
	if err != nil {
		return nil, err
	}

	approved, err := s.gate.IsApproved(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !approved {
		return nil, derrors.New(derrors.CodeForbidden, "identity verification approval required")
	}

	if err := ValidateCreationSet(input.Beneficiaries); err != nil {
		return nil, err
	}

	beneficiaries := make([]Beneficiary, 0, len(input.Beneficiaries))
	var total uint32
	for _, in := range input.Beneficiaries {
		b, err := in.Fingerprint()
		if err != nil {
			return nil, err
		}
		beneficiaries = append(beneficiaries, b)
		total += b.AllocationBp
	}

	p := &Plan{
		OwnerID:            ownerID,
		Title:              input.Title,
		Description:        input.Description,
		TotalAmount:        input.TotalAmount,
		Asset:              asset,
		DistributionMethod: method,
		Beneficiaries:      beneficiaries,
		TotalAllocationBp:  total,
		Status:             StatusActive,
		CreatedAt:          requestcontext.Now(ctx),
	}
	if err := s.plans.Create(ctx, p); err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to create plan")
	}

	s.logger.InfoContext(ctx, "plan created",
		"plan_id", p.ID.String(),
		"owner_id", ownerID.String(),
		"beneficiaries", len(p.Beneficiaries),
	)
	s.emit(ctx, audit.Entry{
		ActorID:    ownerID,
		Action:     audit.ActionPlanCreated,
		EntityType: "plan",
		EntityID:   p.ID.String(),
	})
	if s.metrics != nil {
		s.metrics.PlansCreated.Inc()
	}
	s.notify(ctx, ownerID, "plan_created", "Your inheritance plan \""+p.Title+"\" has been created.")
	return p, nil
}

// AddBeneficiary appends a beneficiary to an active plan owned by the
// caller. The allocation check and the append run under the plan lock, so
// two concurrent adds can never jointly overshoot the limit.
func (s *Service) AddBeneficiary(ctx context.Context, ownerID id.UserID, planID id.PlanID, input BeneficiaryInput) (*Plan, error) {
	ctx, span := s.tracer.Start(ctx, "PlanService.AddBeneficiary")
	defer span.End()

	b, err := input.Fingerprint()
	if err != nil {
		return nil, err
	}

	p, err := s.plans.Execute(ctx, planID,
		func(p *Plan) error {
			if p.OwnerID != ownerID {
				return derrors.New(derrors.CodeForbidden, "not the plan owner")
			}
			if err := p.CanAddBeneficiary(b.AllocationBp); err != nil {
				if !p.IsActive() {
					return derrors.New(derrors.CodeConflict, "plan is not active")
				}
				return err
			}
			return nil
		},
		func(p *Plan) {
			p.ApplyAddBeneficiary(b)
		},
	)
	if err != nil {
		return nil, wrapPlanErr(err)
	}

	s.emit(ctx, audit.Entry{
		ActorID:    ownerID,
		Action:     audit.ActionBeneficiaryAdded,
		EntityType: "plan",
		EntityID:   planID.String(),
	})
	if s.metrics != nil {
		s.metrics.BeneficiariesAdded.Inc()
	}
	return p, nil
}

// RemoveBeneficiary removes the beneficiary at index from an active plan
// owned by the caller and releases its share.
func (s *Service) RemoveBeneficiary(ctx context.Context, ownerID id.UserID, planID id.PlanID, index int) (*Plan, error) {
	p, err := s.plans.Execute(ctx, planID,
		func(p *Plan) error {
			if p.OwnerID != ownerID {
				return derrors.New(derrors.CodeForbidden, "not the plan owner")
			}
			if err := p.CanRemoveBeneficiary(index); err != nil {
				if !p.IsActive() {
					return derrors.New(derrors.CodeConflict, "plan is not active")
				}
				return err
			}
			return nil
		},
		func(p *Plan) {
			p.ApplyRemoveBeneficiary(index)
		},
	)
	if err != nil {
		return nil, wrapPlanErr(err)
	}

	s.emit(ctx, audit.Entry{
		ActorID:    ownerID,
		Action:     audit.ActionBeneficiaryRemove,
		EntityType: "plan",
		EntityID:   planID.String(),
	})
	return p, nil
}

// Deactivate transitions a plan to its terminal state and signals custody
// to return the assets to the owner. The custody signal and the owner
// notification are best-effort; the transition itself has already
// committed when they run.
func (s *Service) Deactivate(ctx context.Context, ownerID id.UserID, planID id.PlanID) (*Plan, error) {
	ctx, span := s.tracer.Start(ctx, "PlanService.Deactivate")
	defer span.End()

	p, err := s.plans.Execute(ctx, planID,
		func(p *Plan) error {
			if p.OwnerID != ownerID {
				return derrors.New(derrors.CodeForbidden, "not the plan owner")
			}
			if err := p.CanDeactivate(); err != nil {
				return derrors.New(derrors.CodeConflict, "plan already deactivated")
			}
			return nil
		},
		func(p *Plan) {
			p.ApplyDeactivation()
		},
	)
	if err != nil {
		return nil, wrapPlanErr(err)
	}

	if s.custody != nil {
		if err := s.custody.ReturnToOwner(ctx, planID, ownerID); err != nil {
			s.logger.ErrorContext(ctx, "custody return intent failed",
				"plan_id", planID.String(), "error", err)
		}
	}
	s.emit(ctx, audit.Entry{
		ActorID:    ownerID,
		Action:     audit.ActionPlanDeactivated,
		EntityType: "plan",
		EntityID:   planID.String(),
	})
	if s.metrics != nil {
		s.metrics.PlansDeactivated.Inc()
	}
	s.notify(ctx, ownerID, "plan_deactivated", "Your inheritance plan \""+p.Title+"\" has been deactivated.")
	return p, nil
}

// GetForOwner returns a plan owned by the caller.
func (s *Service) GetForOwner(ctx context.Context, ownerID id.UserID, planID id.PlanID) (*Plan, error) {
	p, err := s.plans.FindByID(ctx, planID)
	if err != nil {
		return nil, wrapPlanErr(err)
	}
	if p.OwnerID != ownerID {
		return nil, derrors.New(derrors.CodeNotFound, "plan not found")
	}
	return p, nil
}

// ListByOwner returns all plans the caller owns, active and deactivated.
func (s *Service) ListByOwner(ctx context.Context, ownerID id.UserID) ([]Plan, error) {
	plans, err := s.plans.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to list plans")
	}
	return plans, nil
}

// ListDeactivatedByOwner returns the caller's deactivated plans.
func (s *Service) ListDeactivatedByOwner(ctx context.Context, ownerID id.UserID) ([]Plan, error) {
	plans, err := s.plans.ListByOwnerAndStatus(ctx, ownerID, StatusDeactivated)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to list plans")
	}
	return plans, nil
}

// ListAll returns every plan. Admin only.
func (s *Service) ListAll(ctx context.Context, adminID id.UserID) ([]Plan, error) {
	if err := s.authority.RequireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	plans, err := s.plans.ListAll(ctx)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to list plans")
	}
	return plans, nil
}

// ListDeactivatedAll returns every deactivated plan. Admin only.
func (s *Service) ListDeactivatedAll(ctx context.Context, adminID id.UserID) ([]Plan, error) {
	if err := s.authority.RequireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	plans, err := s.plans.ListByStatus(ctx, StatusDeactivated)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to list plans")
	}
	return plans, nil
}

// ListActive returns every active plan still awaiting claims. Admin only.
func (s *Service) ListActive(ctx context.Context, adminID id.UserID) ([]Plan, error) {
	if err := s.authority.RequireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	plans, err := s.plans.ListByStatus(ctx, StatusActive)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to list plans")
	}
	return plans, nil
}

func wrapPlanErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return derrors.New(derrors.CodeNotFound, "plan not found")
	}
	var coded *derrors.Error
	if errors.As(err, &coded) {
		return err
	}
	return derrors.Wrap(err, derrors.CodeInternal, "plan store failure")
}

func (s *Service) emit(ctx context.Context, entry audit.Entry) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "audit emit failed", "action", entry.Action, "error", err)
	}
}

func (s *Service) notify(ctx context.Context, userID id.UserID, kind, message string) {
	if s.notifier != nil {
		s.notifier.CreateSilent(ctx, userID, kind, message)
	}
}

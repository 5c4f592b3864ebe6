package claim

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"heirloom/internal/audit"
	"heirloom/internal/custody"
	"heirloom/internal/plan"
	"heirloom/internal/platform/metrics"
	id "heirloom/pkg/domain"
	derrors "heirloom/pkg/domain-errors"
	"heirloom/pkg/fingerprint"
	"heirloom/pkg/platform/sentinel"
	"heirloom/pkg/requestcontext"
)

// PlanRegistry is the read side of the plan store the ledger consults.
type PlanRegistry interface {
	FindByID(ctx context.Context, planID id.PlanID) (*plan.Plan, error)
	ListByOwner(ctx context.Context, ownerID id.UserID) ([]plan.Plan, error)
	ListByStatus(ctx context.Context, status plan.Status) ([]plan.Plan, error)
	ListByOwnerAndStatus(ctx context.Context, ownerID id.UserID, status plan.Status) ([]plan.Plan, error)
}

// Gate is the verification check applied to claimants when claims are
// configured to require it.
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

// Service is the claim ledger. It checks a claimant's credentials against a
// plan's stored fingerprints and records the claim with an at-most-once
// guarantee per (plan, beneficiary).
type Service struct {
	records        Store
	plans          PlanRegistry
	gate           Gate
	authority      Authority
	requireKYC     bool
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

// WithKYCRequirement makes RecordClaim demand an approved, authenticated
// claimant. Off by default: beneficiaries usually are not users of the
// system and authenticate through their claim credentials alone.
func WithKYCRequirement(gate Gate) Option {
	return func(s *Service) {
		s.gate = gate
		s.requireKYC = true
	}
}

func New(records Store, plans PlanRegistry, authority Authority, opts ...Option) *Service {
	s := &Service{
		records:   records,
		plans:     plans,
		authority: authority,
		logger:    slog.Default(),
		tracer:    otel.Tracer("heirloom/internal/claim"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordClaim settles one beneficiary's claim on a plan.
//
// The plan must exist and be active, the eligibility window for its
// distribution method must have opened, and the presented email and claim
// code must both match a stored beneficiary. The record is then inserted
// under the deterministic claim key; losing that insert race surfaces as
// an already-claimed conflict with exactly one winner.
func (s *Service) RecordClaim(ctx context.Context, planID id.PlanID, email string, claimCode uint32) (*Record, error) {
	ctx, span := s.tracer.Start(ctx, "ClaimService.RecordClaim")
	defer span.End()
	if s.metrics != nil {
		timer := prometheus.NewTimer(s.metrics.ClaimCheckDurations)
		defer timer.ObserveDuration()
	}

	if s.requireKYC {
		actorID := requestcontext.ActorID(ctx)
		if actorID.IsNil() {
			return nil, derrors.New(derrors.CodeUnauthorized, "authentication required to claim")
		}
		approved, err := s.gate.IsApproved(ctx, actorID)
		if err != nil {
			return nil, err
		}
		if !approved {
			return nil, s.reject(ctx, planID, derrors.New(derrors.CodeForbidden, "identity verification approval required"))
		}
	}

	p, err := s.plans.FindByID(ctx, planID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, derrors.New(derrors.CodeNotFound, "plan not found")
	}
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to load plan")
	}
	if !p.IsActive() {
		return nil, s.reject(ctx, planID, derrors.New(derrors.CodeConflict, "plan is not active"))
	}

	now := requestcontext.Now(ctx)
	if !IsClaimable(p.DistributionMethod, p.CreatedAt, now) {
		return nil, s.reject(ctx, planID, derrors.New(derrors.CodeConflict, "claim not allowed yet"))
	}

	hashedEmail := fingerprint.String(strings.ToLower(strings.TrimSpace(email)))
	hashedCode, err := fingerprint.ClaimCode(claimCode)
	if err != nil {
		return nil, err
	}
	index := p.FindBeneficiary(hashedEmail, hashedCode)
	if index < 0 {
		return nil, s.reject(ctx, planID, derrors.New(derrors.CodeNotFound, "beneficiary not found"))
	}
	beneficiary := p.Beneficiaries[index]

	record := Record{
		Key:              fingerprint.ClaimKey(uint64(planID), hashedEmail),
		PlanID:           planID,
		BeneficiaryIndex: index,
		ClaimedAt:        now,
	}
	if err := s.records.InsertIfAbsent(ctx, record); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			if s.metrics != nil {
				s.metrics.ClaimConflicts.Inc()
			}
			return nil, s.reject(ctx, planID, derrors.New(derrors.CodeConflict, "already claimed"))
		}
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to record claim")
	}

	s.logger.InfoContext(ctx, "claim recorded",
		"plan_id", planID.String(),
		"beneficiary_index", index,
	)
	s.emit(ctx, planID, audit.ActionClaimSuccess)
	if s.metrics != nil {
		s.metrics.ClaimsRecorded.Inc()
	}
	if s.custody != nil {
		if err := s.custody.PayOut(ctx, planID, index, beneficiary.BankAccount, beneficiary.AllocationBp); err != nil {
			s.logger.ErrorContext(ctx, "custody payout intent failed",
				"plan_id", planID.String(), "error", err)
		}
	}
	if s.notifier != nil {
		s.notifier.CreateSilent(ctx, p.OwnerID, "plan_claimed",
			"A beneficiary has claimed their share of \""+p.Title+"\".")
	}
	return &record, nil
}

// ListForPlan returns the claims recorded against a plan. Owner only.
func (s *Service) ListForPlan(ctx context.Context, ownerID id.UserID, planID id.PlanID) ([]Record, error) {
	p, err := s.plans.FindByID(ctx, planID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, derrors.New(derrors.CodeNotFound, "plan not found")
	}
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to load plan")
	}
	if p.OwnerID != ownerID {
		return nil, derrors.New(derrors.CodeNotFound, "plan not found")
	}

	records, err := s.records.ListByPlan(ctx, planID)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to list claims")
	}
	return records, nil
}

// ListAll returns every claim record. Admin only.
func (s *Service) ListAll(ctx context.Context, adminID id.UserID) ([]Record, error) {
	if err := s.authority.RequireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	records, err := s.records.ListAll(ctx)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to list claims")
	}
	return records, nil
}

// DueForOwner returns the caller's active plans whose eligibility window
// has opened, so owners can see which plans their beneficiaries may claim.
func (s *Service) DueForOwner(ctx context.Context, ownerID id.UserID) ([]plan.Plan, error) {
	active, err := s.plans.ListByOwnerAndStatus(ctx, ownerID, plan.StatusActive)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to list plans")
	}

	now := requestcontext.Now(ctx)
	var due []plan.Plan
	for _, p := range active {
		if IsClaimable(p.DistributionMethod, p.CreatedAt, now) {
			due = append(due, p)
		}
	}
	return due, nil
}

// ClaimedForOwner returns the caller's plans that hold at least one
// recorded claim, regardless of plan status.
func (s *Service) ClaimedForOwner(ctx context.Context, ownerID id.UserID) ([]plan.Plan, error) {
	owned, err := s.plans.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to list plans")
	}

	var claimed []plan.Plan
	for _, p := range owned {
		records, err := s.records.ListByPlan(ctx, p.ID)
		if err != nil {
			return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to list claims")
		}
		if len(records) > 0 {
			claimed = append(claimed, p)
		}
	}
	return claimed, nil
}

// DueForClaim returns active plans whose eligibility window has opened.
// Admin only; feeds the operational overview of settlements to expect.
func (s *Service) DueForClaim(ctx context.Context, adminID id.UserID) ([]plan.Plan, error) {
	if err := s.authority.RequireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	active, err := s.plans.ListByStatus(ctx, plan.StatusActive)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to list plans")
	}

	now := requestcontext.Now(ctx)
	var due []plan.Plan
	for _, p := range active {
		if IsClaimable(p.DistributionMethod, p.CreatedAt, now) {
			due = append(due, p)
		}
	}
	return due, nil
}

// reject logs and audits a rejected claim attempt, then returns err
// unchanged so call sites stay single-line.
func (s *Service) reject(ctx context.Context, planID id.PlanID, err error) error {
	s.logger.InfoContext(ctx, "claim rejected",
		"plan_id", planID.String(),
		"reason", derrors.MessageOf(err),
	)
	s.emit(ctx, planID, audit.ActionClaimRejected)
	if s.metrics != nil {
		s.metrics.ClaimsRejected.Inc()
	}
	return err
}

func (s *Service) emit(ctx context.Context, planID id.PlanID, action audit.Action) {
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Entry{
		Action:     action,
		EntityType: "plan",
		EntityID:   planID.String(),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "audit emit failed", "action", action, "error", err)
	}
}

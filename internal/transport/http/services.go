package httptransport

import (
	"context"

	"heirloom/internal/admin"
	"heirloom/internal/audit"
	"heirloom/internal/claim"
	"heirloom/internal/kyc"
	"heirloom/internal/notification"
	"heirloom/internal/plan"
	id "heirloom/pkg/domain"
)

// Service interfaces consumed by the handlers. Declared here so transport
// tests can substitute fakes without touching the service packages.

type PlanService interface {
	Create(ctx context.Context, ownerID id.UserID, input plan.CreateInput) (*plan.Plan, error)
	AddBeneficiary(ctx context.Context, ownerID id.UserID, planID id.PlanID, input plan.BeneficiaryInput) (*plan.Plan, error)
	RemoveBeneficiary(ctx context.Context, ownerID id.UserID, planID id.PlanID, index int) (*plan.Plan, error)
	Deactivate(ctx context.Context, ownerID id.UserID, planID id.PlanID) (*plan.Plan, error)
	GetForOwner(ctx context.Context, ownerID id.UserID, planID id.PlanID) (*plan.Plan, error)
	ListByOwner(ctx context.Context, ownerID id.UserID) ([]plan.Plan, error)
	ListDeactivatedByOwner(ctx context.Context, ownerID id.UserID) ([]plan.Plan, error)
	ListAll(ctx context.Context, adminID id.UserID) ([]plan.Plan, error)
	ListDeactivatedAll(ctx context.Context, adminID id.UserID) ([]plan.Plan, error)
	ListActive(ctx context.Context, adminID id.UserID) ([]plan.Plan, error)
}

type ClaimService interface {
	RecordClaim(ctx context.Context, planID id.PlanID, email string, claimCode uint32) (*claim.Record, error)
	ListForPlan(ctx context.Context, ownerID id.UserID, planID id.PlanID) ([]claim.Record, error)
	ListAll(ctx context.Context, adminID id.UserID) ([]claim.Record, error)
	DueForClaim(ctx context.Context, adminID id.UserID) ([]plan.Plan, error)
	DueForOwner(ctx context.Context, ownerID id.UserID) ([]plan.Plan, error)
	ClaimedForOwner(ctx context.Context, ownerID id.UserID) ([]plan.Plan, error)
}

type KycService interface {
	Submit(ctx context.Context, userID id.UserID) (*kyc.Status, error)
	Approve(ctx context.Context, adminID, userID id.UserID) (*kyc.Status, error)
	Reject(ctx context.Context, adminID, userID id.UserID) (*kyc.Status, error)
	Get(ctx context.Context, userID id.UserID) (*kyc.Status, error)
	ListStatuses(ctx context.Context, adminID id.UserID) ([]kyc.Status, error)
}

type AdminService interface {
	Initialize(ctx context.Context, userID id.UserID) (admin.Record, error)
}

type AuditService interface {
	ListAll(ctx context.Context, actorID id.UserID) ([]audit.Entry, error)
	ListRecent(ctx context.Context, actorID id.UserID, limit int) ([]audit.Entry, error)
}

type VersionService interface {
	CurrentVersion(ctx context.Context) (uint32, error)
	Migrate(ctx context.Context, adminID id.UserID) (uint32, error)
	Upgrade(ctx context.Context, adminID id.UserID, codeReference string) (uint32, error)
}

type NotificationService interface {
	ListForUser(ctx context.Context, userID id.UserID) ([]notification.Notification, error)
}

// HealthChecker reports readiness of an attached dependency.
type HealthChecker interface {
	Health(ctx context.Context) error
}

package audit

import (
	"time"

	"github.com/google/uuid"

	id "heirloom/pkg/domain"
)

// Action names a recorded state change. Values are stable identifiers and
// end up in persisted entries and the published stream, so they never change
// once released.
type Action string

const (
	ActionPlanCreated       Action = "PLAN_CREATED"
	ActionBeneficiaryAdded  Action = "BENEFICIARY_ADDED"
	ActionBeneficiaryRemove Action = "BENEFICIARY_REMOVED"
	ActionPlanDeactivated   Action = "PLAN_DEACTIVATED"
	ActionClaimSuccess      Action = "CLAIM_SUCCESS"
	ActionClaimRejected     Action = "CLAIM_REJECTED"
	ActionKycSubmitted      Action = "KYC_SUBMITTED"
	ActionKycApproved       Action = "KYC_APPROVED"
	ActionKycRejected       Action = "KYC_REJECTED"
	ActionAdminInitialized  Action = "ADMIN_INITIALIZED"
	ActionSchemaMigrated    Action = "SCHEMA_MIGRATED"
	ActionLogicUpgraded     Action = "LOGIC_UPGRADED"
)

// Entry is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Entry struct {
	ID         uuid.UUID
	ActorID    id.UserID
	Action     Action
	EntityType string
	EntityID   string
	Detail     string
	ClientIP   string
	UserAgent  string
	Timestamp  time.Time
}

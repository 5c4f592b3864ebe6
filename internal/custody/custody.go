// Package custody is the boundary to the external fund-custody system. The
// core never moves assets itself; it only emits intents that the custody
// collaborator consumes.
package custody

import (
	"context"
	"log/slog"

	id "heirloom/pkg/domain"
)

// Intents is implemented by the custody integration. Both calls are
// best-effort signals; the triggering operation has already committed.
type Intents interface {
	// ReturnToOwner asks custody to return a deactivated plan's assets.
	ReturnToOwner(ctx context.Context, planID id.PlanID, ownerID id.UserID) error
	// PayOut asks custody to settle a successful claim against the
	// beneficiary's bank account.
	PayOut(ctx context.Context, planID id.PlanID, beneficiaryIndex int, bankAccount string, amountBp uint32) error
}

// LogIntents records intents in the log only. Used until a real custody
// integration is configured, and in every test.
type LogIntents struct {
	logger *slog.Logger
}

func NewLogIntents(logger *slog.Logger) *LogIntents {
	return &LogIntents{logger: logger}
}

func (l *LogIntents) ReturnToOwner(ctx context.Context, planID id.PlanID, ownerID id.UserID) error {
	l.logger.InfoContext(ctx, "custody intent: return to owner",
		"plan_id", planID.String(),
		"owner_id", ownerID.String(),
	)
	return nil
}

func (l *LogIntents) PayOut(ctx context.Context, planID id.PlanID, beneficiaryIndex int, bankAccount string, amountBp uint32) error {
	l.logger.InfoContext(ctx, "custody intent: pay out claim",
		"plan_id", planID.String(),
		"beneficiary_index", beneficiaryIndex,
		"allocation_bp", amountBp,
	)
	return nil
}

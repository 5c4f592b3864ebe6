// Package domain holds the typed identifiers and enumerated values shared
// across services. Constructors validate at trust boundaries; direct casting
// bypasses validation and should only appear in stores and tests.
package domain

import (
	"strconv"

	"github.com/google/uuid"

	derrors "heirloom/pkg/domain-errors"
)

// UserID identifies an actor: plan owner, claimant, or administrator.
// The core receives it pre-authenticated and never inspects credentials.
type UserID uuid.UUID

// ParseUserID constructs a UserID from external input.
func ParseUserID(s string) (UserID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, derrors.New(derrors.CodeInvalidInput, "user id must be a valid UUID")
	}
	return UserID(u), nil
}

func (id UserID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// PlanID is an opaque, monotonically assigned plan identifier. The plan
// store is the sole assigner; zero is never a valid id.
type PlanID uint64

// ParsePlanID constructs a PlanID from external input.
func ParsePlanID(s string) (PlanID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, derrors.New(derrors.CodeInvalidInput, "plan id must be a positive integer")
	}
	return PlanID(n), nil
}

func (id PlanID) String() string { return strconv.FormatUint(uint64(id), 10) }

package kyc

import (
	"time"

	id "heirloom/pkg/domain"
	derrors "heirloom/pkg/domain-errors"
)

// Status is the per-user verification state. A user starts with no record at
// all; submission creates one. Approval is terminal in the sense that no
// later transition may overwrite it, while a rejected user may submit again
// and be approved on the second pass.
type Status struct {
	UserID id.UserID

	Submitted   bool
	SubmittedAt time.Time

	Approved   bool
	ApprovedAt time.Time

	Rejected   bool
	RejectedAt time.Time
}

// CanSubmit reports whether a (re-)submission is allowed.
func (s *Status) CanSubmit() error {
	if s.Approved {
		return derrors.New(derrors.CodeInvariantViolation, "verification already approved")
	}
	return nil
}

func (s *Status) ApplySubmission(now time.Time) {
	s.Submitted = true
	s.SubmittedAt = now
}

// CanApprove reports whether an approval is allowed. A rejected user who
// submitted again may still be approved.
func (s *Status) CanApprove() error {
	if !s.Submitted {
		return derrors.New(derrors.CodeInvariantViolation, "verification not submitted")
	}
	if s.Approved {
		return derrors.New(derrors.CodeInvariantViolation, "verification already approved")
	}
	return nil
}

func (s *Status) ApplyApproval(now time.Time) {
	s.Approved = true
	s.ApprovedAt = now
}

// CanReject reports whether a rejection is allowed.
func (s *Status) CanReject() error {
	if !s.Submitted {
		return derrors.New(derrors.CodeInvariantViolation, "verification not submitted")
	}
	if s.Rejected {
		return derrors.New(derrors.CodeInvariantViolation, "verification already rejected")
	}
	return nil
}

func (s *Status) ApplyRejection(now time.Time) {
	s.Rejected = true
	s.RejectedAt = now
}

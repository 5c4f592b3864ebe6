package domain

import derrors "heirloom/pkg/domain-errors"

// DistributionMethod is the schedule rule gating when a beneficiary may
// claim. Invariant: the value must be one of the supported methods.
//
// Usage: construct via ParseDistributionMethod at trust boundaries to
// enforce the allowlist.
type DistributionMethod string

const (
	DistributionLumpSum   DistributionMethod = "LumpSum"
	DistributionMonthly   DistributionMethod = "Monthly"
	DistributionQuarterly DistributionMethod = "Quarterly"
	DistributionYearly    DistributionMethod = "Yearly"
)

// validDistributionMethods is the single source of truth for supported methods.
var validDistributionMethods = map[DistributionMethod]bool{
	DistributionLumpSum:   true,
	DistributionMonthly:   true,
	DistributionQuarterly: true,
	DistributionYearly:    true,
}

// ParseDistributionMethod constructs a DistributionMethod from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseDistributionMethod(s string) (DistributionMethod, error) {
	if s == "" {
		return "", derrors.New(derrors.CodeInvalidInput, "distribution method cannot be empty")
	}
	m := DistributionMethod(s)
	if !m.IsValid() {
		return "", derrors.Newf(derrors.CodeInvalidInput, "unsupported distribution method %q", s)
	}
	return m, nil
}

func (m DistributionMethod) IsValid() bool { return validDistributionMethods[m] }

func (m DistributionMethod) String() string { return string(m) }

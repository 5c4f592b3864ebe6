package claim

import (
	"time"

	id "heirloom/pkg/domain"
)

// Distribution schedules in seconds. Whole days, no calendar arithmetic.
const (
	monthlyWait   = 30 * 86400 * time.Second
	quarterlyWait = 90 * 86400 * time.Second
	yearlyWait    = 365 * 86400 * time.Second
)

// IsClaimable is the eligibility clock: it maps a distribution method and
// the plan's age to claimable or not. Lump sums are claimable immediately;
// periodic methods open after their first full period. Unknown methods and
// a missing reference time fail closed.
func IsClaimable(method id.DistributionMethod, reference, now time.Time) bool {
	if reference.IsZero() {
		return false
	}
	elapsed := now.Sub(reference)

	switch method {
	case id.DistributionLumpSum:
		return true
	case id.DistributionMonthly:
		return elapsed >= monthlyWait
	case id.DistributionQuarterly:
		return elapsed >= quarterlyWait
	case id.DistributionYearly:
		return elapsed >= yearlyWait
	default:
		return false
	}
}

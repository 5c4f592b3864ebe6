package claim

import (
	"time"

	id "heirloom/pkg/domain"
	"heirloom/pkg/fingerprint"
)

// Record is one beneficiary's settled claim on a plan. The key is derived
// deterministically from (plan, hashed email), so a second record for the
// same beneficiary on the same plan can never be inserted.
type Record struct {
	Key              fingerprint.Digest
	PlanID           id.PlanID
	BeneficiaryIndex int
	ClaimedAt        time.Time
}

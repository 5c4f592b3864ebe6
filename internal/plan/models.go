package plan

import (
	"strings"
	"time"

	id "heirloom/pkg/domain"
	derrors "heirloom/pkg/domain-errors"
	"heirloom/pkg/fingerprint"
)

const (
	// MaxBeneficiaries bounds the beneficiary list of a single plan.
	MaxBeneficiaries = 10
	// FullAllocationBp is the complete estate in basis points.
	FullAllocationBp uint32 = 10_000
	// MaxDescriptionLen bounds the free-text description.
	MaxDescriptionLen = 500
)

// Status is the plan lifecycle state. Deactivated is terminal.
type Status string

const (
	StatusActive      Status = "active"
	StatusDeactivated Status = "deactivated"
)

// Beneficiary holds one heir's share. Name, email and claim code are stored
// only as one-way digests; the bank account stays in clear because custody
// needs it for settlement.
type Beneficiary struct {
	HashedFullName  fingerprint.Digest
	HashedEmail     fingerprint.Digest
	HashedClaimCode fingerprint.Digest
	BankAccount     string
	AllocationBp    uint32
}

// BeneficiaryInput is the cleartext form accepted at the boundary. It is
// hashed into a Beneficiary before anything is persisted.
type BeneficiaryInput struct {
	FullName     string
	Email        string
	ClaimCode    uint32
	BankAccount  string
	AllocationBp uint32
}

// Fingerprint hashes the sensitive fields.
func (in BeneficiaryInput) Fingerprint() (Beneficiary, error) {
	code, err := fingerprint.ClaimCode(in.ClaimCode)
	if err != nil {
		return Beneficiary{}, err
	}
	return Beneficiary{
		HashedFullName:  fingerprint.String(strings.TrimSpace(in.FullName)),
		HashedEmail:     fingerprint.String(normalizeEmail(in.Email)),
		HashedClaimCode: code,
		BankAccount:     strings.TrimSpace(in.BankAccount),
		AllocationBp:    in.AllocationBp,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Plan is an inheritance plan. Owned exclusively by its creator; all
// mutations go through the registry on the owner's behalf.
type Plan struct {
	ID                 id.PlanID
	OwnerID            id.UserID
	Title              string
	Description        string
	TotalAmount        int64
	Asset              id.AssetType
	DistributionMethod id.DistributionMethod
	Beneficiaries      []Beneficiary
	TotalAllocationBp  uint32
	Status             Status
	CreatedAt          time.Time
}

func (p *Plan) IsActive() bool {
	return p.Status == StatusActive
}

// CanAddBeneficiary checks every invariant an addition must hold: the plan
// is active, the list has room, and the new share keeps the total within
// the full estate.
func (p *Plan) CanAddBeneficiary(allocationBp uint32) error {
	if !p.IsActive() {
		return derrors.New(derrors.CodeInvariantViolation, "plan is not active")
	}
	if len(p.Beneficiaries) >= MaxBeneficiaries {
		return derrors.New(derrors.CodeInvariantViolation, "plan already has the maximum number of beneficiaries")
	}
	return ValidateAdd(p.TotalAllocationBp, allocationBp)
}

func (p *Plan) ApplyAddBeneficiary(b Beneficiary) {
	p.Beneficiaries = append(p.Beneficiaries, b)
	p.TotalAllocationBp += b.AllocationBp
}

// CanRemoveBeneficiary checks the index against the current list.
func (p *Plan) CanRemoveBeneficiary(index int) error {
	if !p.IsActive() {
		return derrors.New(derrors.CodeInvariantViolation, "plan is not active")
	}
	if index < 0 || index >= len(p.Beneficiaries) {
		return derrors.New(derrors.CodeInvalidInput, "invalid beneficiary index")
	}
	return nil
}

// ApplyRemoveBeneficiary removes in O(1) by swapping the victim with the
// last element and truncating. Order is not part of the contract.
func (p *Plan) ApplyRemoveBeneficiary(index int) {
	last := len(p.Beneficiaries) - 1
	p.TotalAllocationBp -= p.Beneficiaries[index].AllocationBp
	p.Beneficiaries[index] = p.Beneficiaries[last]
	p.Beneficiaries = p.Beneficiaries[:last]
}

// CanDeactivate rejects a second deactivation; the state is terminal.
func (p *Plan) CanDeactivate() error {
	if p.Status == StatusDeactivated {
		return derrors.New(derrors.CodeInvariantViolation, "plan already deactivated")
	}
	return nil
}

func (p *Plan) ApplyDeactivation() {
	p.Status = StatusDeactivated
}

// FindBeneficiary returns the index of the beneficiary whose stored email
// and claim-code digests both match, or -1.
func (p *Plan) FindBeneficiary(hashedEmail, hashedClaimCode fingerprint.Digest) int {
	for i, b := range p.Beneficiaries {
		if b.HashedEmail == hashedEmail && b.HashedClaimCode == hashedClaimCode {
			return i
		}
	}
	return -1
}

package plan

import (
	derrors "heirloom/pkg/domain-errors"
)

// Allocation accounting is pure integer basis points. No floating point
// appears anywhere in this file so shares can never drift by rounding.

// ValidateCreationSet checks the beneficiary set a plan is created with:
// between 1 and 10 entries, every share positive, and the shares summing to
// exactly the full estate.
func ValidateCreationSet(inputs []BeneficiaryInput) error {
	if len(inputs) == 0 {
		return derrors.New(derrors.CodeValidation, "at least one beneficiary is required")
	}
	if len(inputs) > MaxBeneficiaries {
		return derrors.Newf(derrors.CodeValidation, "at most %d beneficiaries are allowed", MaxBeneficiaries)
	}

	var total uint64
	for i, in := range inputs {
		if in.AllocationBp == 0 {
			return derrors.Newf(derrors.CodeValidation, "beneficiary %d has a zero allocation", i)
		}
		total += uint64(in.AllocationBp)
	}
	if total != uint64(FullAllocationBp) {
		return derrors.Newf(derrors.CodeInvariantViolation,
			"allocations must sum to exactly %d basis points, got %d", FullAllocationBp, total)
	}
	return nil
}

// ValidateAdd checks that adding newBp to a plan currently allocating
// currentTotal stays within the full estate.
func ValidateAdd(currentTotal, newBp uint32) error {
	if newBp == 0 {
		return derrors.New(derrors.CodeValidation, "allocation must be positive")
	}
	if uint64(currentTotal)+uint64(newBp) > uint64(FullAllocationBp) {
		return derrors.Newf(derrors.CodeInvariantViolation,
			"allocation exceeds limit: %d + %d > %d basis points", currentTotal, newBp, FullAllocationBp)
	}
	return nil
}

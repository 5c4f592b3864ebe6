package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "heirloom/pkg/domain-errors"
	"heirloom/pkg/fingerprint"
)

func activePlan(allocations ...uint32) *Plan {
	p := &Plan{Status: StatusActive}
	for i, bp := range allocations {
		p.Beneficiaries = append(p.Beneficiaries, Beneficiary{
			BankAccount:  "ACCT",
			AllocationBp: bp,
			HashedEmail:  fingerprint.String(string(rune('a' + i))),
		})
		p.TotalAllocationBp += bp
	}
	return p
}

func TestBeneficiaryInputFingerprint(t *testing.T) {
	t.Run("email is case and whitespace insensitive", func(t *testing.T) {
		a, err := BeneficiaryInput{Email: "  Heir@Example.COM ", ClaimCode: 1}.Fingerprint()
		require.NoError(t, err)
		b, err := BeneficiaryInput{Email: "heir@example.com", ClaimCode: 1}.Fingerprint()
		require.NoError(t, err)
		assert.Equal(t, b.HashedEmail, a.HashedEmail)
	})

	t.Run("claim code out of range fails", func(t *testing.T) {
		_, err := BeneficiaryInput{Email: "heir@example.com", ClaimCode: 1000000}.Fingerprint()
		assert.True(t, derrors.HasCode(err, derrors.CodeValidation))
	})

	t.Run("bank account is trimmed, not hashed", func(t *testing.T) {
		b, err := BeneficiaryInput{Email: "heir@example.com", BankAccount: " DE89 ", ClaimCode: 1}.Fingerprint()
		require.NoError(t, err)
		assert.Equal(t, "DE89", b.BankAccount)
	})
}

func TestCanAddBeneficiary(t *testing.T) {
	t.Run("rejects inactive plans", func(t *testing.T) {
		p := activePlan(5000)
		p.ApplyDeactivation()
		assert.Error(t, p.CanAddBeneficiary(1000))
	})

	t.Run("rejects a full list", func(t *testing.T) {
		p := activePlan(1000, 1000, 1000, 1000, 1000, 1000, 1000, 1000, 1000, 1000)
		err := p.CanAddBeneficiary(1)
		assert.True(t, derrors.HasCode(err, derrors.CodeInvariantViolation))
	})

	t.Run("rejects an overshooting share", func(t *testing.T) {
		p := activePlan(9000)
		err := p.CanAddBeneficiary(2000)
		assert.True(t, derrors.HasCode(err, derrors.CodeInvariantViolation))
	})
}

func TestRemoveBeneficiary(t *testing.T) {
	t.Run("swaps the last element into the hole", func(t *testing.T) {
		p := activePlan(1000, 2000, 3000)
		last := p.Beneficiaries[2]

		require.NoError(t, p.CanRemoveBeneficiary(0))
		p.ApplyRemoveBeneficiary(0)

		assert.Len(t, p.Beneficiaries, 2)
		assert.Equal(t, last, p.Beneficiaries[0])
		assert.Equal(t, uint32(5000), p.TotalAllocationBp)
	})

	t.Run("removing the last element truncates", func(t *testing.T) {
		p := activePlan(4000, 6000)
		p.ApplyRemoveBeneficiary(1)
		assert.Len(t, p.Beneficiaries, 1)
		assert.Equal(t, uint32(4000), p.TotalAllocationBp)
	})

	t.Run("rejects out of range indexes", func(t *testing.T) {
		p := activePlan(10000)
		for _, index := range []int{-1, 1, 5} {
			err := p.CanRemoveBeneficiary(index)
			assert.True(t, derrors.HasCode(err, derrors.CodeInvalidInput), "index %d", index)
		}
	})

	t.Run("rejects inactive plans", func(t *testing.T) {
		p := activePlan(10000)
		p.ApplyDeactivation()
		assert.Error(t, p.CanRemoveBeneficiary(0))
	})
}

func TestCanDeactivate(t *testing.T) {
	p := activePlan(10000)
	require.NoError(t, p.CanDeactivate())
	p.ApplyDeactivation()

	err := p.CanDeactivate()
	assert.True(t, derrors.HasCode(err, derrors.CodeInvariantViolation))
}

func TestFindBeneficiary(t *testing.T) {
	email := fingerprint.String("heir@example.com")
	code, err := fingerprint.ClaimCode(123456)
	require.NoError(t, err)
	otherCode, err := fingerprint.ClaimCode(654321)
	require.NoError(t, err)

	p := activePlan(10000)
	p.Beneficiaries[0].HashedEmail = email
	p.Beneficiaries[0].HashedClaimCode = code

	t.Run("matches on email and code together", func(t *testing.T) {
		assert.Equal(t, 0, p.FindBeneficiary(email, code))
	})

	t.Run("wrong code does not match", func(t *testing.T) {
		assert.Equal(t, -1, p.FindBeneficiary(email, otherCode))
	})

	t.Run("wrong email does not match", func(t *testing.T) {
		assert.Equal(t, -1, p.FindBeneficiary(fingerprint.String("other@example.com"), code))
	})
}

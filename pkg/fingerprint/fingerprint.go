// Package fingerprint produces the fixed-width one-way digests used to
// store beneficiary identity data and to key claim records. Digests are
// deterministic: the same input always yields the same 32 bytes, which is
// what lets a claimant's presented credentials be matched against stored
// values without keeping the plaintext.
package fingerprint

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	derrors "heirloom/pkg/domain-errors"
)

// Size is the digest width in bytes.
const Size = sha256.Size

// MaxClaimCode is the largest valid claim code (6 decimal digits).
const MaxClaimCode = 999999

// Digest is a fixed-width one-way fingerprint.
type Digest [Size]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// Bytes returns the digest as a byte slice, for store drivers.
func (d Digest) Bytes() []byte { return d[:] }

// MarshalJSON encodes the digest as a hex string.
func (d Digest) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a hex string produced by MarshalJSON.
func (d *Digest) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("fingerprint: digest must be a hex string")
	}
	raw, err := hex.DecodeString(string(data[1 : len(data)-1]))
	if err != nil {
		return fmt.Errorf("fingerprint: %w", err)
	}
	parsed, err := FromBytes(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// FromBytes reconstructs a Digest read back from a store.
func FromBytes(b []byte) (Digest, error) {
	var d Digest
	if len(b) != Size {
		return d, fmt.Errorf("fingerprint: want %d bytes, got %d", Size, len(b))
	}
	copy(d[:], b)
	return d, nil
}

// String fingerprints arbitrary text (names, emails).
func String(s string) Digest {
	return sha256.Sum256([]byte(s))
}

// ClaimCode fingerprints a numeric claim code. The code is canonically
// zero-padded to 6 digits before hashing so the same code always hashes
// identically regardless of how the caller formatted it.
//
// Errors: CodeValidation when the code is outside [0, 999999].
func ClaimCode(code uint32) (Digest, error) {
	if code > MaxClaimCode {
		return Digest{}, derrors.New(derrors.CodeValidation, "claim code must be between 0 and 999999")
	}
	return sha256.Sum256([]byte(fmt.Sprintf("%06d", code))), nil
}

// ClaimKey derives the deterministic claim-record key for a
// (plan, beneficiary) pair: SHA-256 over the plan id in big-endian form
// followed by the beneficiary's hashed email. At most one claim record can
// exist per key, which is what enforces at-most-once claiming.
func ClaimKey(planID uint64, hashedEmail Digest) Digest {
	var buf [8 + Size]byte
	binary.BigEndian.PutUint64(buf[:8], planID)
	copy(buf[8:], hashedEmail[:])
	return sha256.Sum256(buf[:])
}

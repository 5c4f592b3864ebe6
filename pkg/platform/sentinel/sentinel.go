package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors without string
// matching.
//
// These represent factual states about stored records, not validation
// failures:
// - ErrNotFound: record does not exist in the store
// - ErrConflict: a one-time write (admin identity) was already performed
// - ErrAlreadyUsed: an insert-if-absent key (claim key) is already taken
// - ErrInvalidState: record is in the wrong state for the requested write
//
// For validation errors (bad input, broken invariants), use
// pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
)

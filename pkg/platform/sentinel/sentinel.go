package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) and services translate them into coded domain errors.
//
//   - ErrNotFound: record does not exist in the store
//   - ErrConflict: a uniqueness rule would be violated
//   - ErrInvalidState: record is in the wrong state for the requested operation
//   - ErrUnavailable: backing store or cache is temporarily unreachable
//
// Validation failures (bad input, missing fields) belong in pkg/domain-errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)

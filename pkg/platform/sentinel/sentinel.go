package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and external adapters return
// these (optionally wrapped) so the pipeline can decide whether to skip, retry
// later or abort the run.
//
// - ErrNotFound: entity does not exist in the store or in the knowledge base
// - ErrConflict: a write collided with a uniqueness constraint
// - ErrInvalidState: entity in wrong state for requested operation
// - ErrUnavailable: external service or resource temporarily unavailable
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)

package biosim

import "errors"

var (
	// ErrConfig marks invalid geography, placements or coefficients.
	ErrConfig = errors.New("biosim: invalid configuration")
	// ErrInvariant marks an internal consistency failure. A simulation that
	// reports it must not be advanced any further.
	ErrInvariant = errors.New("biosim: invariant violated")
	// ErrInvalidState is returned when an engine operation is not allowed in
	// the engine's current state.
	ErrInvalidState = errors.New("biosim: invalid engine state")
)

package integrator

import "errors"

// Step contract errors.
var (
	// ErrNonPositiveTimestep indicates dt <= 0, which is a caller contract
	// violation and fails fast rather than being clamped.
	ErrNonPositiveTimestep = errors.New("integrator: timestep must be positive")

	// ErrUnstable indicates a step produced a NaN or infinite component.
	// The caller deactivates the particle instead of propagating the state.
	ErrUnstable = errors.New("integrator: step produced non-finite state")

	// ErrInsideHorizon indicates the particle is already at or inside the
	// event horizon; it receives no force update and must be deactivated.
	ErrInsideHorizon = errors.New("integrator: particle inside event horizon")
)

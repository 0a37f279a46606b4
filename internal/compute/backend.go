package compute

import (
	"github.com/san-kum/horizon/internal/particles"
	"github.com/san-kum/horizon/internal/vecmath"
)

// Uniforms carries the per-dispatch parameters shared by every backend.
// Derived radii are computed from mass and the constants on the device side,
// so both execution domains see the same field.
type Uniforms struct {
	BlackHoleMass     float64
	BlackHolePosition vecmath.Vector3
	G                 float64
	C                 float64

	// Dt is the frame timestep. Zero means an identity dispatch: every
	// record comes back unchanged.
	Dt float64

	// BoundsRadius deactivates particles farther than this from the black
	// hole after the step. Zero disables the bounds check.
	BoundsRadius float64

	MaxVelocityFraction float64

	// MinDistance overrides the near-singularity floor when positive.
	MinDistance float64

	// Method selects the integration scheme ("rk4", "euler", "verlet").
	// Empty defaults to rk4.
	Method string
}

// Backend advances a packed particle batch by one timestep. Dispatch must
// not mutate the input slice: on error the caller's records stay valid as
// the last good state.
type Backend interface {
	Name() string
	Available() bool
	Dispatch(records []particles.Record, u Uniforms) ([]particles.Record, error)
	Cleanup()
}

// AutoSelectBackend prefers the GPU when a usable context exists and falls
// back to the CPU otherwise. Zero tuning values take the device defaults.
func AutoSelectBackend(capacity int, shaderPath string, workGroupSize, maxPolls int) Backend {
	gpu := NewOpenGLBackend(capacity, shaderPath, workGroupSize, maxPolls)
	if gpu.Available() {
		return gpu
	}
	return NewCPUBackend()
}

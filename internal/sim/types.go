package sim

import (
	"github.com/san-kum/horizon/internal/particles"
	"github.com/san-kum/horizon/internal/vecmath"
)

// Phase is the controller lifecycle state.
type Phase int

const (
	Uninitialized Phase = iota
	Running
	Paused
	Terminated
)

func (p Phase) String() string {
	switch p {
	case Uninitialized:
		return "uninitialized"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Mode is the integration path taken for a frame.
type Mode string

const (
	ModeCPU Mode = "cpu"
	ModeGPU Mode = "gpu"
)

// SpawnRequest asks for a new particle. Requests beyond capacity are
// rejected individually and counted in the frame status.
type SpawnRequest struct {
	Position vecmath.Vector3
	Velocity vecmath.Vector3
	Mass     float64
	Photon   bool
}

// Params carries the host's per-frame requests. Everything is by value;
// the controller applies them before integrating, so a frame never sees a
// torn update.
type Params struct {
	// BlackHoleMass replaces the mass when positive; zero means no change.
	BlackHoleMass float64

	// BlackHolePosition moves the black hole when non-nil.
	BlackHolePosition *vecmath.Vector3

	SpawnRequests []SpawnRequest

	Paused bool

	// SpeedMultiplier scales dt when positive; zero means no change.
	SpeedMultiplier float64
}

// Status is the per-frame report back to the host. Per-frame physics and
// device errors surface here rather than as returned errors.
type Status struct {
	Phase Phase
	Mode  Mode

	Faulted     bool
	FaultReason string

	Frame           int
	Time            float64
	ActiveParticles int

	Spawned        int
	RejectedSpawns int
	Deactivated    int
	Corrupted      int
}

// FrameObservation is what metrics see after each integrated frame.
type FrameObservation struct {
	Views       []particles.View
	Time        float64
	Deactivated int
	Mode        Mode
}

// Metric accumulates a scalar over the run.
type Metric interface {
	Name() string
	Observe(f FrameObservation)
	Value() float64
	Reset()
}

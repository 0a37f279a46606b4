package integrator

import "github.com/san-kum/horizon/internal/physics"

// Euler is a first-order stepper, kept for fast low-accuracy runs and as a
// baseline in benchmarks.
type Euler struct {
	law Law
}

func NewEuler(law Law) *Euler {
	return &Euler{law: law}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(p *physics.Particle, bh *physics.BlackHole, dt float64) (State, error) {
	x, err := validateStep(p, bh, dt)
	if err != nil {
		return State{}, err
	}

	accel := e.law.Acceleration(x.Position, x.Velocity, bh)
	x.Velocity = x.Velocity.Add(accel.Scale(dt))
	x.Position = x.Position.Add(x.Velocity.Scale(dt))

	return e.law.finishStep(x, bh)
}

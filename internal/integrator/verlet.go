package integrator

import "github.com/san-kum/horizon/internal/physics"

// Verlet is a velocity Verlet stepper. It is symplectic and drifts less in
// energy than Euler over long orbits.
type Verlet struct {
	law Law
}

func NewVerlet(law Law) *Verlet {
	return &Verlet{law: law}
}

func (v *Verlet) Name() string { return "verlet" }

func (v *Verlet) Step(p *physics.Particle, bh *physics.BlackHole, dt float64) (State, error) {
	x, err := validateStep(p, bh, dt)
	if err != nil {
		return State{}, err
	}

	accel := v.law.Acceleration(x.Position, x.Velocity, bh)

	x.Position = x.Position.
		Add(x.Velocity.Scale(dt)).
		Add(accel.Scale(0.5 * dt * dt))

	newAccel := v.law.Acceleration(x.Position, x.Velocity, bh)
	x.Velocity = x.Velocity.Add(accel.Add(newAccel).Scale(0.5 * dt))

	return v.law.finishStep(x, bh)
}

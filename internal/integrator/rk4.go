package integrator

import "github.com/san-kum/horizon/internal/physics"

// RK4 is the classical 4th-order Runge-Kutta stepper, the default
// integration method.
type RK4 struct {
	law Law
}

func NewRK4(law Law) *RK4 {
	return &RK4{law: law}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) Step(p *physics.Particle, bh *physics.BlackHole, dt float64) (State, error) {
	x, err := validateStep(p, bh, dt)
	if err != nil {
		return State{}, err
	}

	k1 := r.law.derive(x, bh)
	k2 := r.law.derive(x.add(k1.scale(dt*0.5)), bh)
	k3 := r.law.derive(x.add(k2.scale(dt*0.5)), bh)
	k4 := r.law.derive(x.add(k3.scale(dt)), bh)

	delta := k1.add(k2.scale(2)).add(k3.scale(2)).add(k4).scale(dt / 6.0)

	return r.law.finishStep(x.add(delta), bh)
}

package integrator

import (
	"math"

	"github.com/san-kum/horizon/internal/physics"
	"github.com/san-kum/horizon/internal/vecmath"
)

// State is the integration state vector (position, velocity) of a single
// particle.
type State struct {
	Position vecmath.Vector3
	Velocity vecmath.Vector3
}

func (s State) add(o State) State {
	return State{s.Position.Add(o.Position), s.Velocity.Add(o.Velocity)}
}

func (s State) scale(f float64) State {
	return State{s.Position.Scale(f), s.Velocity.Scale(f)}
}

func (s State) isFinite() bool {
	return s.Position.IsFinite() && s.Velocity.IsFinite()
}

// Stepper advances one particle by one timestep under a black hole field.
// Implementations must be deterministic: identical inputs produce identical
// outputs, which is what makes CPU/GPU cross-validation possible.
type Stepper interface {
	Name() string
	Step(p *physics.Particle, bh *physics.BlackHole, dt float64) (State, error)
}

// relativisticThreshold is the radius, in Schwarzschild radii, inside which
// the post-Newtonian correction terms are applied. Beyond it plain Newtonian
// gravity is indistinguishable at the simulation's precision.
const relativisticThreshold = 10.0

// Law is the shared force/correction model used by every stepper and by the
// compute backends, so both execution domains integrate the same equations.
type Law struct {
	// MaxVelocityFraction bounds particle speed at this fraction of c.
	MaxVelocityFraction float64
}

func NewLaw(maxVelocityFraction float64) Law {
	if maxVelocityFraction <= 0 || maxVelocityFraction >= 1 {
		maxVelocityFraction = 0.1
	}
	return Law{MaxVelocityFraction: maxVelocityFraction}
}

// Acceleration computes the gravitational acceleration at the given state.
//
// Outside relativisticThreshold*rs this is plain Newtonian -GM/r^2. Inside,
// first-order post-Newtonian correction terms are added: a velocity-squared
// term, a radial-velocity term, a tangential frame-dragging-like term, and a
// (rs/r)^2 proximity term. This is a design-level approximation of geodesic
// motion in Schwarzschild spacetime, not a solution of the full field
// equations.
func (l Law) Acceleration(pos, vel vecmath.Vector3, bh *physics.BlackHole) vecmath.Vector3 {
	displacement := pos.Sub(bh.Position())
	r := displacement.Magnitude()
	if r == 0 {
		return vecmath.Zero()
	}

	newtonian := bh.FieldAcceleration(pos)
	rs := bh.SchwarzschildRadius()
	if r > relativisticThreshold*rs {
		return newtonian
	}

	c2 := bh.C() * bh.C()
	gm := bh.G() * bh.Mass()

	rHat := displacement.Normalize()
	vRadial := vel.Dot(rHat)
	vTangential := vel.Sub(rHat.Scale(vRadial))

	velocityCorrection := newtonian.Scale(vel.MagnitudeSquared() / c2)
	radialCorrection := rHat.Scale(4.0 * gm * vRadial / (r * c2))
	tangentialCorrection := vTangential.Scale(2.0 * gm / (r * c2))

	proximity := rs / r
	proximityCorrection := newtonian.Scale(proximity * proximity)

	return newtonian.
		Add(velocityCorrection).
		Add(radialCorrection).
		Add(tangentialCorrection).
		Add(proximityCorrection)
}

func (l Law) derive(s State, bh *physics.BlackHole) State {
	return State{
		Position: s.Velocity,
		Velocity: l.Acceleration(s.Position, s.Velocity, bh),
	}
}

// Correct applies the relativistic correction pass after an integration
// step: speed is clamped to MaxVelocityFraction*c, and near the photon
// sphere a first-order gravitational time-dilation factor sqrt(1 - rs/r)
// scales the velocity. Both are approximations and documented as such.
func (l Law) Correct(s State, bh *physics.BlackHole) State {
	s.Velocity = l.clampVelocity(s.Velocity, bh.C())

	rs := bh.SchwarzschildRadius()
	r := s.Position.DistanceTo(bh.Position())
	if r > rs && r <= 2.0*bh.PhotonSphereRadius() {
		dilation := math.Sqrt(1.0 - rs/r)
		if dilation < 0.1 {
			dilation = 0.1
		}
		s.Velocity = s.Velocity.Scale(dilation)
	}

	return s
}

func (l Law) clampVelocity(vel vecmath.Vector3, c float64) vecmath.Vector3 {
	maxSpeed := l.MaxVelocityFraction * c
	if vel.Magnitude() > maxSpeed {
		return vel.Normalize().Scale(maxSpeed)
	}
	return vel
}

// validateStep enforces the shared Step preconditions and returns the
// initial state.
func validateStep(p *physics.Particle, bh *physics.BlackHole, dt float64) (State, error) {
	if dt <= 0 {
		return State{}, ErrNonPositiveTimestep
	}
	if bh.IsWithinEventHorizon(p.Position) {
		return State{}, ErrInsideHorizon
	}
	return State{Position: p.Position, Velocity: p.Velocity}, nil
}

// finishStep applies the correction pass and rejects non-finite results.
func (l Law) finishStep(s State, bh *physics.BlackHole) (State, error) {
	s = l.Correct(s, bh)
	if !s.isFinite() {
		return State{}, ErrUnstable
	}
	return s, nil
}

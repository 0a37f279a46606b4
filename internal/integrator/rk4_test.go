package integrator

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/horizon/internal/physics"
	"github.com/san-kum/horizon/internal/vecmath"
)

const testMass = 1.989e30

func circularOrbitParticle(bh *physics.BlackHole, radiusFactor float64) physics.Particle {
	r := radiusFactor * bh.SchwarzschildRadius()
	pos := vecmath.Vector3{X: r}
	vel := vecmath.Vector3{Y: bh.OrbitalVelocity(pos)}
	return physics.NewParticle(pos, vel, 1.0)
}

func TestRK4CircularOrbit(t *testing.T) {
	bh := physics.NewBlackHole(testMass, vecmath.Zero())
	p := circularOrbitParticle(bh, 1000)
	r0 := p.Position.Magnitude()

	stepper := NewRK4(NewLaw(0.5))

	for i := 0; i < 1000; i++ {
		s, err := stepper.Step(&p, bh, 1e-4)
		if err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
		p.Position = s.Position
		p.Velocity = s.Velocity
	}

	// a circular orbit far from the horizon keeps its radius
	drift := math.Abs(p.Position.Magnitude()-r0) / r0
	if drift > 1e-4 {
		t.Errorf("orbit radius drifted by %e relative", drift)
	}
}

func TestRK4MoreAccurateThanEuler(t *testing.T) {
	bh := physics.NewBlackHole(testMass, vecmath.Zero())
	law := NewLaw(0.5)

	run := func(s Stepper) float64 {
		p := circularOrbitParticle(bh, 1000)
		r0 := p.Position.Magnitude()
		for i := 0; i < 500; i++ {
			st, err := s.Step(&p, bh, 1e-3)
			if err != nil {
				t.Fatalf("%s step failed: %v", s.Name(), err)
			}
			p.Position, p.Velocity = st.Position, st.Velocity
		}
		return math.Abs(p.Position.Magnitude()-r0) / r0
	}

	rk4Drift := run(NewRK4(law))
	eulerDrift := run(NewEuler(law))

	if rk4Drift >= eulerDrift {
		t.Errorf("rk4 drift %e not smaller than euler drift %e", rk4Drift, eulerDrift)
	}
}

func TestStepDeterministic(t *testing.T) {
	bh := physics.NewBlackHole(testMass, vecmath.Zero())
	law := NewLaw(0.5)

	for _, stepper := range []Stepper{NewRK4(law), NewEuler(law), NewVerlet(law)} {
		p1 := circularOrbitParticle(bh, 5) // inside the relativistic threshold
		p2 := p1

		s1, err1 := stepper.Step(&p1, bh, 1e-6)
		s2, err2 := stepper.Step(&p2, bh, 1e-6)

		if err1 != nil || err2 != nil {
			t.Fatalf("%s: unexpected errors %v %v", stepper.Name(), err1, err2)
		}
		if s1 != s2 {
			t.Errorf("%s: identical inputs produced different outputs", stepper.Name())
		}
	}
}

func TestStepRejectsNonPositiveTimestep(t *testing.T) {
	bh := physics.NewBlackHole(testMass, vecmath.Zero())
	p := circularOrbitParticle(bh, 1000)
	stepper := NewRK4(NewLaw(0.5))

	for _, dt := range []float64{0, -0.01} {
		if _, err := stepper.Step(&p, bh, dt); !errors.Is(err, ErrNonPositiveTimestep) {
			t.Errorf("dt=%f: expected ErrNonPositiveTimestep, got %v", dt, err)
		}
	}
}

func TestStepInsideHorizon(t *testing.T) {
	bh := physics.NewBlackHole(testMass, vecmath.Zero())
	p := physics.NewParticle(vecmath.Vector3{X: 0.5 * bh.SchwarzschildRadius()}, vecmath.Zero(), 1.0)

	_, err := NewRK4(NewLaw(0.5)).Step(&p, bh, 1e-4)
	if !errors.Is(err, ErrInsideHorizon) {
		t.Errorf("expected ErrInsideHorizon, got %v", err)
	}
}

func TestStepRejectsNonFiniteState(t *testing.T) {
	bh := physics.NewBlackHole(testMass, vecmath.Zero())
	p := physics.NewParticle(vecmath.Vector3{X: math.NaN()}, vecmath.Zero(), 1.0)

	_, err := NewRK4(NewLaw(0.5)).Step(&p, bh, 1e-4)
	if !errors.Is(err, ErrUnstable) {
		t.Errorf("expected ErrUnstable for NaN input, got %v", err)
	}
}

func TestVelocityClamp(t *testing.T) {
	bh := physics.NewBlackHole(testMass, vecmath.Zero())
	law := NewLaw(0.1)

	// far from the black hole so no dilation applies, only the clamp
	p := physics.NewParticle(
		vecmath.Vector3{X: 1e6 * bh.SchwarzschildRadius()},
		vecmath.Vector3{X: 0.9 * bh.C()},
		1.0,
	)

	s, err := NewRK4(law).Step(&p, bh, 1e-4)
	if err != nil {
		t.Fatalf("step failed: %v", err)
	}

	maxSpeed := 0.1 * bh.C()
	if s.Velocity.Magnitude() > maxSpeed*(1+1e-12) {
		t.Errorf("speed %e exceeds clamp %e", s.Velocity.Magnitude(), maxSpeed)
	}
}

func TestTimeDilationNearPhotonSphere(t *testing.T) {
	bh := physics.NewBlackHole(testMass, vecmath.Zero())
	law := NewLaw(0.99)

	r := 2.0 * bh.SchwarzschildRadius() // within 2x photon sphere
	s := State{
		Position: vecmath.Vector3{X: r},
		Velocity: vecmath.Vector3{Y: 1000},
	}

	corrected := law.Correct(s, bh)
	want := 1000 * math.Sqrt(1.0-bh.SchwarzschildRadius()/r)
	if math.Abs(corrected.Velocity.Magnitude()-want) > 1e-9*want {
		t.Errorf("expected dilated speed %f, got %f", want, corrected.Velocity.Magnitude())
	}
}

func TestMasslessProbeReceivesField(t *testing.T) {
	bh := physics.NewBlackHole(testMass, vecmath.Zero())
	p := physics.NewPhoton(
		vecmath.Vector3{X: 1000 * bh.SchwarzschildRadius()},
		vecmath.Zero(),
	)

	s, err := NewRK4(NewLaw(0.5)).Step(&p, bh, 1e-3)
	if err != nil {
		t.Fatalf("photon step failed: %v", err)
	}

	// the field pulls it inward despite zero mass
	if s.Velocity.X >= 0 {
		t.Errorf("expected inward velocity, got %v", s.Velocity)
	}
	if !s.isFinite() {
		t.Error("photon step produced non-finite state")
	}
}

func TestNewStepperByName(t *testing.T) {
	law := NewLaw(0.1)

	for _, name := range []string{"rk4", "euler", "verlet"} {
		s, err := New(name, law)
		if err != nil {
			t.Errorf("method %q rejected: %v", name, err)
			continue
		}
		if s.Name() != name {
			t.Errorf("expected name %q, got %q", name, s.Name())
		}
	}

	if _, err := New("rk45", law); err == nil {
		t.Error("unknown method should be rejected")
	}
}

package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/horizon/internal/particles"
	"github.com/san-kum/horizon/internal/physics"
	"github.com/san-kum/horizon/internal/sim"
	"github.com/san-kum/horizon/internal/vecmath"
)

func orbitViews(bh *physics.BlackHole) []particles.View {
	pos := vecmath.Vector3{X: 1000.0 * bh.SchwarzschildRadius()}
	return []particles.View{
		{
			Position: pos,
			Velocity: vecmath.Vector3{Y: bh.OrbitalVelocity(pos)},
			Mass:     10.0,
			Active:   true,
		},
	}
}

func TestTotalEnergyCircularOrbit(t *testing.T) {
	bh := physics.NewBlackHole(1.989e30, vecmath.Zero())
	m := NewTotalEnergy(bh)

	views := orbitViews(bh)
	m.Observe(sim.FrameObservation{Views: views})

	// For a circular orbit E = -GMm/(2r).
	r := views[0].Position.DistanceTo(bh.Position())
	expected := -bh.G() * bh.Mass() * views[0].Mass / (2 * r)

	if math.Abs(m.Value()-expected)/math.Abs(expected) > 1e-9 {
		t.Errorf("expected energy %g, got %g", expected, m.Value())
	}
}

func TestTotalEnergySkipsInactive(t *testing.T) {
	bh := physics.NewBlackHole(1.989e30, vecmath.Zero())
	m := NewTotalEnergy(bh)

	views := orbitViews(bh)
	views[0].Active = false
	m.Observe(sim.FrameObservation{Views: views})

	if m.Value() != 0 {
		t.Errorf("inactive particles should not contribute, got %g", m.Value())
	}
}

func TestEnergyDriftStableSystem(t *testing.T) {
	bh := physics.NewBlackHole(1.989e30, vecmath.Zero())
	m := NewEnergyDrift(bh)

	views := orbitViews(bh)
	for i := 0; i < 10; i++ {
		m.Observe(sim.FrameObservation{Views: views})
	}

	if m.Value() != 0 {
		t.Errorf("identical frames should show zero drift, got %g", m.Value())
	}
}

func TestEnergyDriftTracksMax(t *testing.T) {
	bh := physics.NewBlackHole(1.989e30, vecmath.Zero())
	m := NewEnergyDrift(bh)

	views := orbitViews(bh)
	m.Observe(sim.FrameObservation{Views: views})

	perturbed := orbitViews(bh)
	perturbed[0].Velocity = perturbed[0].Velocity.Scale(2.0)
	m.Observe(sim.FrameObservation{Views: perturbed})

	drift := m.Value()
	if drift <= 0 {
		t.Fatal("expected non-zero drift after perturbation")
	}

	// Returning to the initial state must not lower the max.
	m.Observe(sim.FrameObservation{Views: views})
	if m.Value() != drift {
		t.Errorf("max drift regressed from %g to %g", drift, m.Value())
	}
}

func TestEnergyDriftReset(t *testing.T) {
	bh := physics.NewBlackHole(1.989e30, vecmath.Zero())
	m := NewEnergyDrift(bh)

	views := orbitViews(bh)
	m.Observe(sim.FrameObservation{Views: views})
	perturbed := orbitViews(bh)
	perturbed[0].Velocity = vecmath.Zero()
	m.Observe(sim.FrameObservation{Views: perturbed})

	m.Reset()
	if m.Value() != 0 {
		t.Error("reset should clear drift")
	}
}

func TestCaptureCount(t *testing.T) {
	m := NewCaptureCount()

	m.Observe(sim.FrameObservation{Deactivated: 3})
	m.Observe(sim.FrameObservation{Deactivated: 0})
	m.Observe(sim.FrameObservation{Deactivated: 2})

	if m.Value() != 5 {
		t.Errorf("expected 5 captures, got %g", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("reset should clear the count")
	}
}

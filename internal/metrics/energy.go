package metrics

import (
	"math"

	"github.com/san-kum/horizon/internal/particles"
	"github.com/san-kum/horizon/internal/physics"
	"github.com/san-kum/horizon/internal/sim"
)

// TotalEnergy averages the system energy (kinetic plus gravitational
// potential against the black hole) over the observed frames.
type TotalEnergy struct {
	name    string
	bh      *physics.BlackHole
	samples int
	total   float64
}

func NewTotalEnergy(bh *physics.BlackHole) *TotalEnergy {
	return &TotalEnergy{name: "total_energy", bh: bh}
}

func (e *TotalEnergy) Name() string { return e.name }

func (e *TotalEnergy) Observe(f sim.FrameObservation) {
	e.total += systemEnergy(f.Views, e.bh)
	e.samples++
}

func (e *TotalEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *TotalEnergy) Reset() {
	e.total = 0
	e.samples = 0
}

// EnergyDrift tracks the maximum relative deviation from the first frame's
// energy. Captures and escapes remove energy from the system, so drift is
// only meaningful while the population is stable.
type EnergyDrift struct {
	name     string
	bh       *physics.BlackHole
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift(bh *physics.BlackHole) *EnergyDrift {
	return &EnergyDrift{name: "energy_drift", bh: bh}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(f sim.FrameObservation) {
	energy := systemEnergy(f.Views, e.bh)

	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++

	if e.initial != 0 {
		drift := math.Abs(energy-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}

func systemEnergy(views []particles.View, bh *physics.BlackHole) float64 {
	total := 0.0
	for _, v := range views {
		if !v.Active {
			continue
		}
		ke := 0.5 * v.Mass * v.Velocity.MagnitudeSquared()
		r := v.Position.DistanceTo(bh.Position())
		if r < bh.MinDistance {
			r = bh.MinDistance
		}
		pe := -bh.G() * bh.Mass() * v.Mass / r
		total += ke + pe
	}
	return total
}

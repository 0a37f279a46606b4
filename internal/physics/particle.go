package physics

import "github.com/san-kum/horizon/internal/vecmath"

// Particle is the per-slot physical state. Photons are not a subclass: they
// are tagged with Photon=true and Mass=0 so only plain data crosses the
// CPU/GPU boundary.
type Particle struct {
	Mass     float64
	Position vecmath.Vector3
	Velocity vecmath.Vector3
	Active   bool
	Photon   bool
}

func NewParticle(position, velocity vecmath.Vector3, mass float64) Particle {
	return Particle{
		Mass:     mass,
		Position: position,
		Velocity: velocity,
		Active:   true,
	}
}

// NewPhoton creates a massless probe particle. It receives the external
// field but contributes no self-gravity.
func NewPhoton(position, velocity vecmath.Vector3) Particle {
	return Particle{
		Position: position,
		Velocity: velocity,
		Active:   true,
		Photon:   true,
	}
}

func (p *Particle) Speed() float64 {
	return p.Velocity.Magnitude()
}

func (p *Particle) KineticEnergy() float64 {
	return 0.5 * p.Mass * p.Velocity.MagnitudeSquared()
}

func (p *Particle) Momentum() vecmath.Vector3 {
	return p.Velocity.Scale(p.Mass)
}

// Deactivate removes the particle from further integration. The transition
// is one-way; slots of inactive particles may be reused.
func (p *Particle) Deactivate() {
	p.Active = false
}

// IsFinite reports whether position and velocity contain only finite values.
func (p *Particle) IsFinite() bool {
	return p.Position.IsFinite() && p.Velocity.IsFinite()
}

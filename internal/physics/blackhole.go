package physics

import (
	"math"

	"github.com/san-kum/horizon/internal/vecmath"
)

// Default physical constants (SI units).
const (
	DefaultG = 6.67430e-11 // gravitational constant, m^3/(kg*s^2)
	DefaultC = 299792458.0 // speed of light, m/s
)

// BlackHole is the gravitational source of the simulation. Derived radii are
// cached and recomputed whenever mass or the constants change.
type BlackHole struct {
	mass     float64
	position vecmath.Vector3
	g        float64
	c        float64

	// MinDistance is the floor applied to r in force and curvature queries.
	// Below it the field is clamped to its value at the floor instead of
	// blowing up toward the coordinate singularity.
	MinDistance float64

	rs           float64
	photonSphere float64
}

// NewBlackHole creates a black hole with the given mass and position using
// the default constants. Mass must be positive; the caller validates ranges
// (see config).
func NewBlackHole(mass float64, position vecmath.Vector3) *BlackHole {
	return NewBlackHoleWithConstants(mass, position, DefaultG, DefaultC)
}

func NewBlackHoleWithConstants(mass float64, position vecmath.Vector3, g, c float64) *BlackHole {
	bh := &BlackHole{
		mass:     mass,
		position: position,
		g:        g,
		c:        c,
	}
	bh.recompute()
	bh.MinDistance = 1e-3 * bh.rs
	return bh
}

func (bh *BlackHole) recompute() {
	bh.rs = (2.0 * bh.g * bh.mass) / (bh.c * bh.c)
	bh.photonSphere = 1.5 * bh.rs
}

func (bh *BlackHole) Mass() float64             { return bh.mass }
func (bh *BlackHole) Position() vecmath.Vector3 { return bh.position }
func (bh *BlackHole) G() float64                { return bh.g }
func (bh *BlackHole) C() float64                { return bh.c }

// SetMass updates the mass and invalidates the derived radii.
func (bh *BlackHole) SetMass(mass float64) {
	bh.mass = mass
	bh.recompute()
}

func (bh *BlackHole) SetPosition(position vecmath.Vector3) {
	bh.position = position
}

// SchwarzschildRadius is the event horizon radius, rs = 2GM/c^2.
func (bh *BlackHole) SchwarzschildRadius() float64 { return bh.rs }

// PhotonSphereRadius is 1.5 * rs, where light can orbit the black hole.
func (bh *BlackHole) PhotonSphereRadius() float64 { return bh.photonSphere }

// GravitationalForce returns the Newtonian force GMm/r^2 on a particle of
// mass m at pos, pointing from the particle toward the black hole. For r
// below MinDistance the magnitude is clamped to its value at the floor; this
// is the defined near-singularity policy, not an accident of overflow.
func (bh *BlackHole) GravitationalForce(pos vecmath.Vector3, mass float64) vecmath.Vector3 {
	displacement := pos.Sub(bh.position)
	r := displacement.Magnitude()
	if r < bh.MinDistance {
		r = bh.MinDistance
	}
	magnitude := (bh.g * bh.mass * mass) / (r * r)
	return displacement.Normalize().Scale(-magnitude)
}

// FieldAcceleration returns the gravitational acceleration -GM/r^2 r_hat at
// pos. It is independent of the test mass, so zero-mass (photon) probes fall
// through the same field without a division by mass.
func (bh *BlackHole) FieldAcceleration(pos vecmath.Vector3) vecmath.Vector3 {
	displacement := pos.Sub(bh.position)
	r := displacement.Magnitude()
	if r < bh.MinDistance {
		r = bh.MinDistance
	}
	magnitude := (bh.g * bh.mass) / (r * r)
	return displacement.Normalize().Scale(-magnitude)
}

// IsWithinEventHorizon reports whether pos is at or inside the horizon.
// The boundary is inclusive.
func (bh *BlackHole) IsWithinEventHorizon(pos vecmath.Vector3) bool {
	return bh.position.DistanceTo(pos) <= bh.rs
}

func (bh *BlackHole) IsWithinPhotonSphere(pos vecmath.Vector3) bool {
	return bh.position.DistanceTo(pos) <= bh.photonSphere
}

// SpacetimeCurvature is a normalized (rs/r)^2 proxy in [0, 1] used only for
// visualization weighting, never for dynamics.
func (bh *BlackHole) SpacetimeCurvature(pos vecmath.Vector3) float64 {
	r := bh.position.DistanceTo(pos)
	if r <= bh.rs {
		return 1.0
	}
	curvature := (bh.rs / r) * (bh.rs / r)
	return math.Min(curvature, 1.0)
}

// EscapeVelocity returns sqrt(2GM/r) at pos, with r floored at MinDistance.
func (bh *BlackHole) EscapeVelocity(pos vecmath.Vector3) float64 {
	r := bh.position.DistanceTo(pos)
	if r < bh.MinDistance {
		r = bh.MinDistance
	}
	return math.Sqrt((2.0 * bh.g * bh.mass) / r)
}

// OrbitalVelocity returns the circular orbit speed sqrt(GM/r) at pos.
func (bh *BlackHole) OrbitalVelocity(pos vecmath.Vector3) float64 {
	r := bh.position.DistanceTo(pos)
	if r < bh.MinDistance {
		r = bh.MinDistance
	}
	return math.Sqrt((bh.g * bh.mass) / r)
}

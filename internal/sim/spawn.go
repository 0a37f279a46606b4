package sim

import (
	"math"
	"math/rand"

	"github.com/san-kum/horizon/internal/physics"
	"github.com/san-kum/horizon/internal/vecmath"
)

// SpawnDisk builds spawn requests for a rough accretion disk: particles
// scattered around the configured radius with near-circular velocities and a
// small vertical spread. Deterministic for a given seed.
func SpawnDisk(bh *physics.BlackHole, count int, radiusFactor float64, seed int64) []SpawnRequest {
	rng := rand.New(rand.NewSource(seed))
	rs := bh.SchwarzschildRadius()
	baseRadius := radiusFactor * rs

	requests := make([]SpawnRequest, count)
	for i := range requests {
		angle := rng.Float64() * 2 * math.Pi
		radius := baseRadius * (0.5 + rng.Float64())

		pos := bh.Position().Add(vecmath.Vector3{
			X: radius * math.Cos(angle),
			Y: radius * math.Sin(angle),
			Z: (rng.Float64() - 0.5) * 0.1 * radius,
		})

		// Tangential direction in the disk plane, with a little jitter so
		// orbits precess instead of stacking.
		speed := bh.OrbitalVelocity(pos) * (0.9 + 0.2*rng.Float64())
		vel := vecmath.Vector3{
			X: -math.Sin(angle) * speed,
			Y: math.Cos(angle) * speed,
		}

		requests[i] = SpawnRequest{
			Position: pos,
			Velocity: vel,
			Mass:     1.0 + rng.Float64()*9.0,
		}
	}
	return requests
}

// Package physics provides the gravitational model for the simulation.
//
// The package defines the two data types shared by every other component:
//
//   - [BlackHole]: the gravitational source, with derived Schwarzschild and
//     photon-sphere radii, force/field queries, and horizon tests
//   - [Particle]: per-slot physical state with a one-way active lifecycle
//
// # Near-singularity policy
//
// Force and field queries floor the radial distance at
// [BlackHole.MinDistance] and clamp the magnitude to its value at the floor.
// This is the defined edge-case behavior near the coordinate singularity;
// callers never see Inf or NaN from these queries:
//
//	bh := physics.NewBlackHole(1e30, vecmath.Zero())
//	f := bh.GravitationalForce(p.Position, p.Mass)
package physics

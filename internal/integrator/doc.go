// Package integrator advances particle state under a black hole field.
//
// Steppers are pure functions of (particle, black hole, dt); they hold no
// per-particle state and are deterministic, so the CPU reference path and
// the GPU compute path can be cross-validated against each other.
//
// The relativistic treatment is a documented first-order approximation,
// not a geodesic solve: see [Law.Acceleration] and [Law.Correct].
package integrator

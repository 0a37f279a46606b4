package compute

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/horizon/internal/integrator"
	"github.com/san-kum/horizon/internal/particles"
	"github.com/san-kum/horizon/internal/physics"
	"github.com/san-kum/horizon/internal/vecmath"
)

const testMass = 1.989e30 // one solar mass

func testUniforms(bh *physics.BlackHole, dt float64) Uniforms {
	return Uniforms{
		BlackHoleMass:       bh.Mass(),
		BlackHolePosition:   bh.Position(),
		G:                   bh.G(),
		C:                   bh.C(),
		Dt:                  dt,
		MaxVelocityFraction: 0.5,
		Method:              "rk4",
	}
}

// orbitRecord spawns a circular-orbit particle well outside the
// relativistic region so the velocity clamp never engages.
func orbitRecord(bh *physics.BlackHole) particles.Record {
	r := 1000.0 * bh.SchwarzschildRadius()
	pos := vecmath.Vector3{X: r}
	vel := vecmath.Vector3{Y: bh.OrbitalVelocity(pos)}
	return particles.RecordFromParticle(physics.NewParticle(pos, vel, 10.0))
}

func TestCPUBackendMatchesStepper(t *testing.T) {
	bh := physics.NewBlackHole(testMass, vecmath.Zero())
	backend := NewCPUBackend()
	u := testUniforms(bh, 1e-3)

	stepper := integrator.NewRK4(integrator.NewLaw(u.MaxVelocityFraction))

	device := []particles.Record{orbitRecord(bh)}
	reference := orbitRecord(bh)

	for i := 0; i < 1000; i++ {
		out, err := backend.Dispatch(device, u)
		require.NoError(t, err)
		device = out

		// The reference path rounds through the same packed precision
		// the device sees each frame.
		p := physics.NewParticle(reference.Position(), reference.Velocity(), float64(reference.Mass))
		st, err := stepper.Step(&p, bh, u.Dt)
		require.NoError(t, err)
		p.Position, p.Velocity = st.Position, st.Velocity
		reference = particles.RecordFromParticle(p)
	}

	require.Equal(t, int32(1), device[0].Active)

	scale := 1000.0 * bh.SchwarzschildRadius()
	posErr := device[0].Position().DistanceTo(reference.Position()) / scale
	assert.Less(t, posErr, 1e-4, "device trajectory diverged from the reference stepper")
}

func TestCPUBackendZeroDtIsIdentity(t *testing.T) {
	bh := physics.NewBlackHole(testMass, vecmath.Zero())
	backend := NewCPUBackend()

	in := []particles.Record{orbitRecord(bh), {Px: 1, Active: 0}}
	out, err := backend.Dispatch(in, testUniforms(bh, 0))
	require.NoError(t, err)

	assert.Equal(t, in, out, "zero timestep must return every record unchanged")
}

func TestCPUBackendInactiveIsNoOp(t *testing.T) {
	bh := physics.NewBlackHole(testMass, vecmath.Zero())
	backend := NewCPUBackend()

	dead := orbitRecord(bh)
	dead.Active = 0

	out, err := backend.Dispatch([]particles.Record{dead}, testUniforms(bh, 1e-3))
	require.NoError(t, err)
	assert.Equal(t, dead, out[0], "inactive record must not be integrated")
}

func TestCPUBackendDeactivatesOnCapture(t *testing.T) {
	bh := physics.NewBlackHole(testMass, vecmath.Zero())
	backend := NewCPUBackend()

	inside := particles.RecordFromParticle(physics.NewParticle(
		vecmath.Vector3{X: 0.5 * bh.SchwarzschildRadius()},
		vecmath.Zero(), 1.0))

	out, err := backend.Dispatch([]particles.Record{inside}, testUniforms(bh, 1e-3))
	require.NoError(t, err)

	assert.Equal(t, int32(0), out[0].Active, "particle inside the horizon must be captured")
	assert.Equal(t, inside.Px, out[0].Px, "captured particle keeps its last good state")
}

func TestCPUBackendDeactivatesBeyondBounds(t *testing.T) {
	bh := physics.NewBlackHole(testMass, vecmath.Zero())
	backend := NewCPUBackend()

	r := 1000.0 * bh.SchwarzschildRadius()
	escaping := particles.RecordFromParticle(physics.NewParticle(
		vecmath.Vector3{X: r},
		vecmath.Vector3{X: 0.01 * bh.C()}, 1.0))

	u := testUniforms(bh, 1.0)
	u.BoundsRadius = r

	out, err := backend.Dispatch([]particles.Record{escaping}, u)
	require.NoError(t, err)
	assert.Equal(t, int32(0), out[0].Active, "particle past the bounds radius must be retired")
}

func TestCPUBackendDoesNotMutateInput(t *testing.T) {
	bh := physics.NewBlackHole(testMass, vecmath.Zero())
	backend := NewCPUBackend()

	in := []particles.Record{orbitRecord(bh)}
	before := in[0]

	_, err := backend.Dispatch(in, testUniforms(bh, 1e-3))
	require.NoError(t, err)
	assert.Equal(t, before, in[0], "dispatch must treat the input as read-only")
}

func TestCPUBackendRejectsUnknownMethod(t *testing.T) {
	bh := physics.NewBlackHole(testMass, vecmath.Zero())
	u := testUniforms(bh, 1e-3)
	u.Method = "leapfrog"

	_, err := NewCPUBackend().Dispatch([]particles.Record{orbitRecord(bh)}, u)
	assert.Error(t, err)
}

func TestCPUBackendParallelBatch(t *testing.T) {
	bh := physics.NewBlackHole(testMass, vecmath.Zero())
	backend := NewCPUBackend()
	u := testUniforms(bh, 1e-3)

	// Enough records to cross the parallel threshold; every slot must get
	// the same result a serial pass would produce.
	n := 4 * minParallelBatch
	batch := make([]particles.Record, n)
	for i := range batch {
		batch[i] = orbitRecord(bh)
	}

	out, err := backend.Dispatch(batch, u)
	require.NoError(t, err)
	require.Len(t, out, n)

	single, err := backend.Dispatch(batch[:1], u)
	require.NoError(t, err)

	for i := range out {
		assert.Equal(t, single[0], out[i], "slot %d differs from the serial result", i)
	}
}

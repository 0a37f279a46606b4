package compute

import (
	"runtime"
	"sync"

	"github.com/san-kum/horizon/internal/integrator"
	"github.com/san-kum/horizon/internal/particles"
	"github.com/san-kum/horizon/internal/physics"
)

// Batches below this size are advanced serially; goroutine overhead beats
// the work otherwise.
const minParallelBatch = 64

// CPUBackend advances particles on the host with a chunked worker pool. It
// runs the same force law as the steppers, so its results cross-validate
// against the reference integration path.
type CPUBackend struct {
	workers int
}

func NewCPUBackend() *CPUBackend {
	return &CPUBackend{workers: runtime.NumCPU()}
}

func (c *CPUBackend) Name() string    { return "cpu" }
func (c *CPUBackend) Available() bool { return true }
func (c *CPUBackend) Cleanup()        {}

func (c *CPUBackend) Dispatch(records []particles.Record, u Uniforms) ([]particles.Record, error) {
	out := make([]particles.Record, len(records))
	copy(out, records)

	if u.Dt == 0 || len(records) == 0 {
		return out, nil
	}

	bh := physics.NewBlackHoleWithConstants(u.BlackHoleMass, u.BlackHolePosition, u.G, u.C)
	if u.MinDistance > 0 {
		bh.MinDistance = u.MinDistance
	}

	method := u.Method
	if method == "" {
		method = "rk4"
	}
	stepper, err := integrator.New(method, integrator.NewLaw(u.MaxVelocityFraction))
	if err != nil {
		return nil, err
	}

	n := len(out)
	if n < minParallelBatch {
		advanceRange(out, 0, n, stepper, bh, u)
		return out, nil
	}

	var wg sync.WaitGroup
	chunkSize := (n + c.workers - 1) / c.workers

	for w := 0; w < c.workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			advanceRange(out, start, end, stepper, bh, u)
		}(start, end)
	}

	wg.Wait()
	return out, nil
}

func advanceRange(out []particles.Record, start, end int, stepper integrator.Stepper, bh *physics.BlackHole, u Uniforms) {
	for i := start; i < end; i++ {
		out[i] = advanceRecord(out[i], stepper, bh, u)
	}
}

// advanceRecord steps a single record. Inactive records are no-ops; a step
// error (capture, instability) ends the particle's life with its last good
// state intact.
func advanceRecord(r particles.Record, stepper integrator.Stepper, bh *physics.BlackHole, u Uniforms) particles.Record {
	if r.Active == 0 {
		return r
	}

	p := physics.Particle{
		Position: r.Position(),
		Velocity: r.Velocity(),
		Mass:     float64(r.Mass),
		Active:   true,
	}

	st, err := stepper.Step(&p, bh, u.Dt)
	if err != nil {
		r.Active = 0
		return r
	}

	p.Position, p.Velocity = st.Position, st.Velocity
	next := particles.RecordFromParticle(p)

	if bh.IsWithinEventHorizon(st.Position) {
		next.Active = 0
	}
	if u.BoundsRadius > 0 && st.Position.DistanceTo(bh.Position()) > u.BoundsRadius {
		next.Active = 0
	}
	return next
}

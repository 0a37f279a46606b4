package sim

import (
	"log"

	"github.com/san-kum/horizon/internal/compute"
	"github.com/san-kum/horizon/internal/config"
	"github.com/san-kum/horizon/internal/integrator"
	"github.com/san-kum/horizon/internal/particles"
	"github.com/san-kum/horizon/internal/physics"
	"github.com/san-kum/horizon/internal/vecmath"
)

// recoveryProbeInterval is how many frames a fault stays sticky before the
// device is probed again.
const recoveryProbeInterval = 120

// Controller owns the simulation state: the black hole, the canonical
// particle buffer, and the mode decision between the CPU and device paths.
// The host drives it once per frame and reads back snapshots; it never
// touches the buffer directly.
type Controller struct {
	cfg *config.Config
	bh  *physics.BlackHole
	law integrator.Law

	buffer *particles.Buffer

	cpu *compute.Sync // always usable fallback
	gpu *compute.Sync // nil when no device backend was supplied

	boundsRadius float64
	speed        float64

	phase            Phase
	faulted          bool
	faultReason      string
	framesSinceFault int

	frame int
	time  float64

	metrics []Metric
	logger  *log.Logger
}

// New validates the configuration and builds the simulation. backend may be
// nil, in which case every frame runs on the CPU. Configuration errors are
// the only fatal errors the controller ever returns from here.
func New(cfg *config.Config, backend compute.Backend) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bh := physics.NewBlackHoleWithConstants(
		cfg.BlackHole.Mass,
		vecmath.Vector3{X: cfg.BlackHole.Position.X, Y: cfg.BlackHole.Position.Y, Z: cfg.BlackHole.Position.Z},
		cfg.Physics.GravitationalConstant,
		cfg.Physics.SpeedOfLight,
	)
	bh.MinDistance = cfg.Physics.MinDistanceFactor * bh.SchwarzschildRadius()

	c := &Controller{
		cfg:          cfg,
		bh:           bh,
		law:          integrator.NewLaw(cfg.Physics.MaxVelocityFraction),
		buffer:       particles.NewBuffer(cfg.Physics.MaxParticles),
		cpu:          compute.NewSync(compute.NewCPUBackend()),
		boundsRadius: cfg.Physics.BoundsRadiusFactor * bh.SchwarzschildRadius(),
		speed:        1.0,
		phase:        Uninitialized,
		logger:       log.Default(),
	}
	if backend != nil {
		c.gpu = compute.NewSync(backend)
	}
	return c, nil
}

func (c *Controller) AddMetric(m Metric) { c.metrics = append(c.metrics, m) }

func (c *Controller) SetLogger(l *log.Logger) { c.logger = l }

func (c *Controller) BlackHole() *physics.BlackHole { return c.bh }

// Snapshot returns read-only particle views for rendering.
func (c *Controller) Snapshot() []particles.View { return c.buffer.Snapshot() }

// Step advances the simulation by one frame. Parameter requests are applied
// first; paused frames apply parameters only. Per-frame physics and device
// errors are contained in the returned Status. Only a terminated controller
// or a non-positive dt is an error.
func (c *Controller) Step(dt float64, p Params) (Status, error) {
	if c.phase == Terminated {
		return Status{Phase: Terminated}, ErrTerminated
	}
	if dt <= 0 {
		return c.status(ModeCPU, Status{}), integrator.ErrNonPositiveTimestep
	}

	var st Status
	c.applyParams(p, &st)

	if p.Paused {
		c.phase = Paused
		return c.status(ModeCPU, st), nil
	}
	c.phase = Running

	c.probeRecovery()

	effectiveDt := dt * c.speed

	// One mode decision per frame, before either path runs.
	mode := ModeCPU
	if c.gpu != nil && !c.faulted && c.gpu.Backend().Available() {
		mode = ModeGPU
	}

	var rep compute.Report
	var err error
	if mode == ModeGPU {
		rep, err = c.gpu.Step(c.buffer, c.uniforms(effectiveDt))
		if err != nil {
			// The buffer still holds the pre-dispatch state, so the
			// fallback integrates the exact frame the device dropped.
			c.fault(err)
			mode = ModeCPU
		}
	}
	if mode == ModeCPU {
		rep, err = c.cpu.Step(c.buffer, c.uniforms(effectiveDt))
		if err != nil {
			// The CPU backend only fails on configuration-class input,
			// which Validate already excluded.
			return c.status(mode, st), err
		}
	}

	st.Deactivated += rep.Deactivated
	st.Corrupted = rep.Corrupted
	if rep.Corrupted > 0 {
		c.logger.Printf("sim: deactivated %d particles with non-finite state", rep.Corrupted)
	}

	// Re-validate lifecycle conditions on the CPU regardless of which path
	// ran; a corrupted device transfer must not leave ghosts alive.
	st.Deactivated += c.revalidate()

	c.frame++
	c.time += effectiveDt

	obs := FrameObservation{
		Views:       c.buffer.Snapshot(),
		Time:        c.time,
		Deactivated: st.Deactivated,
		Mode:        mode,
	}
	for _, m := range c.metrics {
		m.Observe(obs)
	}

	return c.status(mode, st), nil
}

// Terminate releases device resources exactly once and moves the controller
// to its terminal phase.
func (c *Controller) Terminate() error {
	if c.phase == Terminated {
		return ErrTerminated
	}
	if c.gpu != nil {
		c.gpu.Backend().Cleanup()
	}
	c.phase = Terminated
	return nil
}

func (c *Controller) applyParams(p Params, st *Status) {
	if p.BlackHoleMass != 0 {
		if p.BlackHoleMass > 0 {
			c.bh.SetMass(p.BlackHoleMass)
			c.bh.MinDistance = c.cfg.Physics.MinDistanceFactor * c.bh.SchwarzschildRadius()
			c.boundsRadius = c.cfg.Physics.BoundsRadiusFactor * c.bh.SchwarzschildRadius()
		} else {
			c.logger.Printf("sim: ignoring non-positive mass request %g", p.BlackHoleMass)
		}
	}
	if p.BlackHolePosition != nil {
		c.bh.SetPosition(*p.BlackHolePosition)
	}
	if p.SpeedMultiplier > 0 {
		c.speed = p.SpeedMultiplier
	}

	for _, req := range p.SpawnRequests {
		if _, err := c.buffer.Spawn(req.Position, req.Velocity, req.Mass, req.Photon); err != nil {
			st.RejectedSpawns++
			continue
		}
		st.Spawned++
	}
}

// probeRecovery clears a sticky fault once the probe interval has elapsed
// and the device reports healthy again.
func (c *Controller) probeRecovery() {
	if !c.faulted {
		return
	}
	c.framesSinceFault++
	if c.framesSinceFault < recoveryProbeInterval {
		return
	}
	if c.gpu != nil && c.gpu.Backend().Available() {
		c.faulted = false
		c.faultReason = ""
		c.logger.Printf("sim: device recovered after %d frames", c.framesSinceFault)
	}
	c.framesSinceFault = 0
}

func (c *Controller) fault(err error) {
	c.faulted = true
	c.faultReason = err.Error()
	c.framesSinceFault = 0
	c.logger.Printf("sim: device fault, falling back to cpu: %v", err)
}

// revalidate enforces the horizon and bounds conditions on the canonical
// buffer and returns how many particles it retired.
func (c *Controller) revalidate() int {
	retired := 0
	for i := 0; i < c.buffer.Len(); i++ {
		p := c.buffer.Get(i)
		if !p.Active {
			continue
		}
		r := p.Position.DistanceTo(c.bh.Position())
		escaped := c.boundsRadius > 0 && r > c.boundsRadius
		if r <= c.bh.SchwarzschildRadius() || escaped {
			p.Deactivate()
			retired++
		}
	}
	return retired
}

func (c *Controller) uniforms(dt float64) compute.Uniforms {
	return compute.Uniforms{
		BlackHoleMass:       c.bh.Mass(),
		BlackHolePosition:   c.bh.Position(),
		G:                   c.bh.G(),
		C:                   c.bh.C(),
		Dt:                  dt,
		BoundsRadius:        c.boundsRadius,
		MaxVelocityFraction: c.law.MaxVelocityFraction,
		MinDistance:         c.bh.MinDistance,
		Method:              c.cfg.Physics.IntegrationMethod,
	}
}

func (c *Controller) status(mode Mode, st Status) Status {
	st.Phase = c.phase
	st.Mode = mode
	st.Faulted = c.faulted
	st.FaultReason = c.faultReason
	st.Frame = c.frame
	st.Time = c.time
	st.ActiveParticles = c.buffer.ActiveCount()
	return st
}

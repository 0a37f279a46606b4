package particles

import (
	"errors"

	"github.com/san-kum/horizon/internal/physics"
	"github.com/san-kum/horizon/internal/vecmath"
)

// ErrBufferFull indicates a spawn request beyond the configured capacity.
// Individual spawns are rejected; the simulation itself carries on.
var ErrBufferFull = errors.New("particles: buffer at maximum capacity")

// View is a read-only copy of one particle handed to the host for
// rendering. Mutating it has no effect on the simulation.
type View struct {
	Position vecmath.Vector3
	Velocity vecmath.Vector3
	Mass     float64
	Active   bool
	Photon   bool
}

// Buffer owns the canonical CPU-side particle array. Slots are ordered by
// index; inactive slots are eligible for reuse by Spawn and reclaimed by
// Compact. The Controller is the buffer's only writer.
type Buffer struct {
	particles []physics.Particle
	max       int
}

func NewBuffer(maxParticles int) *Buffer {
	return &Buffer{
		particles: make([]physics.Particle, 0, maxParticles),
		max:       maxParticles,
	}
}

func (b *Buffer) Len() int { return len(b.particles) }

func (b *Buffer) ActiveCount() int {
	n := 0
	for i := range b.particles {
		if b.particles[i].Active {
			n++
		}
	}
	return n
}

func (b *Buffer) Capacity() int { return b.max }

// Spawn places a new particle in the first inactive slot, or appends one if
// all slots are live. Returns ErrBufferFull when every slot is active and
// the buffer is at capacity.
func (b *Buffer) Spawn(position, velocity vecmath.Vector3, mass float64, photon bool) (int, error) {
	p := physics.NewParticle(position, velocity, mass)
	if photon {
		p = physics.NewPhoton(position, velocity)
	}

	for i := range b.particles {
		if !b.particles[i].Active {
			b.particles[i] = p
			return i, nil
		}
	}

	if len(b.particles) >= b.max {
		return 0, ErrBufferFull
	}
	b.particles = append(b.particles, p)
	return len(b.particles) - 1, nil
}

// Deactivate marks the slot inactive. Out-of-range slots are ignored.
func (b *Buffer) Deactivate(slot int) {
	if slot < 0 || slot >= len(b.particles) {
		return
	}
	b.particles[slot].Deactivate()
}

// Get returns a pointer to the particle in the given slot for in-place
// update by the integration paths. The pointer is invalidated by Compact.
func (b *Buffer) Get(slot int) *physics.Particle {
	return &b.particles[slot]
}

// Compact drops inactive slots, preserving the relative order and the
// physical state of the remaining active particles.
func (b *Buffer) Compact() {
	kept := b.particles[:0]
	for i := range b.particles {
		if b.particles[i].Active {
			kept = append(kept, b.particles[i])
		}
	}
	b.particles = kept
}

// Packed returns a fresh packed projection of every slot, active or not.
// The projection never aliases the buffer, so a failed dispatch cannot
// corrupt the canonical array.
func (b *Buffer) Packed() []Record {
	records := make([]Record, len(b.particles))
	for i := range b.particles {
		records[i] = RecordFromParticle(b.particles[i])
	}
	return records
}

// ApplyRecords reconciles device results back into the canonical array.
// Records beyond the current slot count are ignored; an already inactive
// particle is never reactivated by a record (the lifecycle is one-way).
func (b *Buffer) ApplyRecords(records []Record) {
	for i := range records {
		if i >= len(b.particles) {
			break
		}
		p := &b.particles[i]
		if !p.Active {
			continue
		}
		p.Position = records[i].Position()
		p.Velocity = records[i].Velocity()
		if records[i].Active == 0 {
			p.Deactivate()
		}
	}
}

// Snapshot returns read-only copies of all slots for the host.
func (b *Buffer) Snapshot() []View {
	views := make([]View, len(b.particles))
	for i := range b.particles {
		p := &b.particles[i]
		views[i] = View{
			Position: p.Position,
			Velocity: p.Velocity,
			Mass:     p.Mass,
			Active:   p.Active,
			Photon:   p.Photon,
		}
	}
	return views
}

package particles

import (
	"encoding/binary"
	"math"

	"github.com/san-kum/horizon/internal/physics"
	"github.com/san-kum/horizon/internal/vecmath"
)

// RecordStride is the packed size of one Record in bytes. The layout is the
// binary contract shared with device memory and must stay bit-exact:
// 3*float32 position, 3*float32 velocity, float32 mass, int32 active.
const RecordStride = 32

// Record is the GPU-mirrored representation of a particle. Field order
// matches the packed layout; values are in the same units and coordinate
// frame as physics.Particle.
type Record struct {
	Px, Py, Pz float32
	Vx, Vy, Vz float32
	Mass       float32
	Active     int32
}

// RecordFromParticle packs a particle into its transfer representation.
func RecordFromParticle(p physics.Particle) Record {
	r := Record{
		Px:   float32(p.Position.X),
		Py:   float32(p.Position.Y),
		Pz:   float32(p.Position.Z),
		Vx:   float32(p.Velocity.X),
		Vy:   float32(p.Velocity.Y),
		Vz:   float32(p.Velocity.Z),
		Mass: float32(p.Mass),
	}
	if p.Active {
		r.Active = 1
	}
	return r
}

// Position returns the unpacked position in simulation precision.
func (r Record) Position() vecmath.Vector3 {
	return vecmath.Vector3{X: float64(r.Px), Y: float64(r.Py), Z: float64(r.Pz)}
}

// Velocity returns the unpacked velocity in simulation precision.
func (r Record) Velocity() vecmath.Vector3 {
	return vecmath.Vector3{X: float64(r.Vx), Y: float64(r.Vy), Z: float64(r.Vz)}
}

// IsFinite reports whether every float field is finite.
func (r Record) IsFinite() bool {
	for _, f := range [7]float32{r.Px, r.Py, r.Pz, r.Vx, r.Vy, r.Vz, r.Mass} {
		f64 := float64(f)
		if math.IsNaN(f64) || math.IsInf(f64, 0) {
			return false
		}
	}
	return true
}

// AppendTo appends the little-endian packed bytes of the record to buf.
func (r Record) AppendTo(buf []byte) []byte {
	var b [RecordStride]byte
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(r.Px))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(r.Py))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(r.Pz))
	binary.LittleEndian.PutUint32(b[12:], math.Float32bits(r.Vx))
	binary.LittleEndian.PutUint32(b[16:], math.Float32bits(r.Vy))
	binary.LittleEndian.PutUint32(b[20:], math.Float32bits(r.Vz))
	binary.LittleEndian.PutUint32(b[24:], math.Float32bits(r.Mass))
	binary.LittleEndian.PutUint32(b[28:], uint32(r.Active))
	return append(buf, b[:]...)
}

// RecordFromBytes unpacks one record from a 32-byte little-endian slice.
func RecordFromBytes(b []byte) Record {
	return Record{
		Px:     math.Float32frombits(binary.LittleEndian.Uint32(b[0:])),
		Py:     math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
		Pz:     math.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
		Vx:     math.Float32frombits(binary.LittleEndian.Uint32(b[12:])),
		Vy:     math.Float32frombits(binary.LittleEndian.Uint32(b[16:])),
		Vz:     math.Float32frombits(binary.LittleEndian.Uint32(b[20:])),
		Mass:   math.Float32frombits(binary.LittleEndian.Uint32(b[24:])),
		Active: int32(binary.LittleEndian.Uint32(b[28:])),
	}
}

// PackRecords flattens records into the packed byte layout for transfer.
func PackRecords(records []Record) []byte {
	buf := make([]byte, 0, len(records)*RecordStride)
	for _, r := range records {
		buf = r.AppendTo(buf)
	}
	return buf
}

// UnpackRecords parses a packed byte buffer back into records. Trailing
// bytes short of a full stride are ignored.
func UnpackRecords(buf []byte) []Record {
	n := len(buf) / RecordStride
	records := make([]Record, n)
	for i := 0; i < n; i++ {
		records[i] = RecordFromBytes(buf[i*RecordStride:])
	}
	return records
}

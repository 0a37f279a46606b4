package compute

import (
	"fmt"

	"github.com/san-kum/horizon/internal/integrator"
	"github.com/san-kum/horizon/internal/particles"
)

// Report summarizes one synchronized device step.
type Report struct {
	Stepped     int // active records sent to the device
	Deactivated int // active records that came back inactive
	Corrupted   int // non-finite records rejected from the readback
}

// Sync drives one frame of device integration: pack, dispatch, validate,
// reconcile. The upload is a projection that never aliases the canonical
// buffer, so any failure before ApplyRecords leaves the buffer bit-identical.
type Sync struct {
	backend Backend
}

func NewSync(b Backend) *Sync {
	return &Sync{backend: b}
}

func (s *Sync) Backend() Backend { return s.backend }

// Step advances the buffer by one timestep on the backend. On error the
// buffer is untouched and holds the last good state; the caller decides
// whether to retry, fall back, or fault.
func (s *Sync) Step(buf *particles.Buffer, u Uniforms) (Report, error) {
	if s.backend == nil || !s.backend.Available() {
		return Report{}, ErrDeviceUnavailable
	}
	if u.Dt < 0 {
		return Report{}, integrator.ErrNonPositiveTimestep
	}

	upload := buf.Packed()
	out, err := s.backend.Dispatch(upload, u)
	if err != nil {
		return Report{}, err
	}
	if len(out) != len(upload) {
		return Report{}, fmt.Errorf("%w: readback returned %d records, sent %d",
			ErrDeviceFault, len(out), len(upload))
	}

	var rep Report
	for i := range out {
		if upload[i].Active == 0 {
			continue
		}
		rep.Stepped++
		if !out[i].IsFinite() {
			// Corrupted transfer: retire the slot in place. ApplyRecords
			// skips inactive particles, so the pre-dispatch float64 state
			// survives bit-exact rather than a float32 round trip of it.
			buf.Deactivate(i)
			rep.Corrupted++
			rep.Deactivated++
			continue
		}
		if out[i].Active == 0 {
			rep.Deactivated++
		}
	}

	buf.ApplyRecords(out)
	return rep, nil
}

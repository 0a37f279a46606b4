package metrics

import "github.com/san-kum/horizon/internal/sim"

// CaptureCount totals the particles retired over the run, whether by
// horizon crossing, bounds escape, or instability containment.
type CaptureCount struct {
	name  string
	count int
}

func NewCaptureCount() *CaptureCount {
	return &CaptureCount{name: "captures"}
}

func (c *CaptureCount) Name() string { return c.name }

func (c *CaptureCount) Observe(f sim.FrameObservation) {
	c.count += f.Deactivated
}

func (c *CaptureCount) Value() float64 {
	return float64(c.count)
}

func (c *CaptureCount) Reset() {
	c.count = 0
}

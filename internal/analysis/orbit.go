// Package analysis post-processes recorded runs: radial power spectra and
// orbit shape summaries for tracked particles.
package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/horizon/internal/vecmath"
)

// OrbitSummary describes the radial behavior of one tracked particle over
// a recorded run.
type OrbitSummary struct {
	MinRadius  float64
	MaxRadius  float64
	MeanRadius float64

	// Eccentricity is estimated from the radial extremes,
	// (rmax-rmin)/(rmax+rmin). Zero for a circular orbit.
	Eccentricity float64

	// RadialFrequency is the dominant radial oscillation frequency in Hz.
	// Zero when the series is too short to resolve one.
	RadialFrequency float64
}

// RadialSeries converts a position history to distances from center.
func RadialSeries(positions []vecmath.Vector3, center vecmath.Vector3) []float64 {
	radii := make([]float64, len(positions))
	for i, p := range positions {
		radii[i] = p.DistanceTo(center)
	}
	return radii
}

// PowerSpectrum returns the magnitude of the positive-frequency half of
// the series' spectrum. The mean is removed first so bin zero reflects
// oscillation rather than the orbit's mean radius.
func PowerSpectrum(series []float64) []float64 {
	if len(series) < 2 {
		return nil
	}

	mean := 0.0
	for _, v := range series {
		mean += v
	}
	mean /= float64(len(series))

	centered := make([]float64, len(series))
	for i, v := range series {
		centered[i] = v - mean
	}

	spectrum := fft.FFTReal(centered)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantFrequency returns the strongest frequency in Hz of a series
// sampled every dt seconds.
func DominantFrequency(series []float64, dt float64) float64 {
	ps := PowerSpectrum(series)
	if len(ps) < 2 || dt <= 0 {
		return 0
	}

	best := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[best] {
			best = k
		}
	}
	if ps[best] == 0 {
		return 0
	}
	return float64(best) / (float64(len(series)) * dt)
}

// SummarizeOrbit characterizes one tracked particle's orbit from its
// recorded positions.
func SummarizeOrbit(positions []vecmath.Vector3, center vecmath.Vector3, dt float64) OrbitSummary {
	radii := RadialSeries(positions, center)
	if len(radii) == 0 {
		return OrbitSummary{}
	}

	s := OrbitSummary{MinRadius: math.Inf(1)}
	sum := 0.0
	for _, r := range radii {
		s.MinRadius = math.Min(s.MinRadius, r)
		s.MaxRadius = math.Max(s.MaxRadius, r)
		sum += r
	}
	s.MeanRadius = sum / float64(len(radii))

	if s.MinRadius+s.MaxRadius > 0 {
		s.Eccentricity = (s.MaxRadius - s.MinRadius) / (s.MaxRadius + s.MinRadius)
	}
	s.RadialFrequency = DominantFrequency(radii, dt)
	return s
}

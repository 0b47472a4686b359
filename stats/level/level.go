// Package level measures the amplitude of signal blocks passing a tap.
package level

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Stats holds amplitude statistics of a signal.
//
//nolint:revive
type Stats struct {
	Length         int
	DC             float64
	RMS            float64
	RMS_dB         float64
	Peak           float64 // max |x|
	Peak_dB        float64
	CrestFactor    float64 // Peak / RMS
	CrestFactor_dB float64
	ZeroCrossings  int
}

func ampToDB(v float64) float64 {
	a := math.Abs(v)
	if a == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(a)
}

func newStats(n int, sum, sumSq, peak float64, crossings int) Stats {
	if n == 0 {
		return Stats{
			RMS_dB:  math.Inf(-1),
			Peak_dB: math.Inf(-1),
		}
	}

	nf := float64(n)
	rms := math.Sqrt(sumSq / nf)

	s := Stats{
		Length:        n,
		DC:            sum / nf,
		RMS:           rms,
		RMS_dB:        ampToDB(rms),
		Peak:          peak,
		Peak_dB:       ampToDB(peak),
		ZeroCrossings: crossings,
	}

	if rms > 0 {
		s.CrestFactor = peak / rms
		s.CrestFactor_dB = ampToDB(s.CrestFactor)
	}

	return s
}

// Calculate measures signal in one pass.
func Calculate(signal []float64) Stats {
	return newStats(len(signal), vecmath.Sum(signal), vecmath.DotProduct(signal, signal),
		Peak(signal), ZeroCrossings(signal))
}

// RMS returns the root-mean-square of signal.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	return math.Sqrt(vecmath.DotProduct(signal, signal) / float64(len(signal)))
}

// Peak returns the largest absolute sample.
func Peak(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	return vecmath.MaxAbs(signal)
}

// CrestFactor returns Peak/RMS, or 0 for silence.
func CrestFactor(signal []float64) float64 {
	r := RMS(signal)
	if r == 0 {
		return 0
	}

	return Peak(signal) / r
}

// ZeroCrossings counts sign changes between consecutive samples.
func ZeroCrossings(signal []float64) int {
	count := 0
	for i := 1; i < len(signal); i++ {
		if signal[i-1]*signal[i] < 0 {
			count++
		}
	}

	return count
}

// Meter accumulates [Stats] across consecutive blocks of one stream. The
// zero value is ready to use.
type Meter struct {
	n         int
	sum       float64
	sumSq     float64
	peak      float64
	crossings int
	last      float64
}

// Update adds block to the running statistics.
func (m *Meter) Update(block []float64) {
	if len(block) == 0 {
		return
	}

	if m.n > 0 && m.last*block[0] < 0 {
		m.crossings++
	}

	m.n += len(block)
	m.sum += vecmath.Sum(block)
	m.sumSq += vecmath.DotProduct(block, block)
	m.peak = math.Max(m.peak, vecmath.MaxAbs(block))
	m.crossings += ZeroCrossings(block)
	m.last = block[len(block)-1]
}

// Result returns the statistics of everything passed to Update since the
// last Reset.
func (m *Meter) Result() Stats {
	return newStats(m.n, m.sum, m.sumSq, m.peak, m.crossings)
}

// Reset clears the meter.
func (m *Meter) Reset() {
	*m = Meter{}
}

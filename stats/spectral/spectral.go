// Package spectral computes shape descriptors from analyser snapshots.
//
// Inputs are linear magnitudes laid out the way a spectrum tap reports them:
// len(mag) bins from DC upward, bin i centred at i*sampleRate/(2*len(mag)).
// Snapshots in dB can be converted first with [FromDecibels].
package spectral

import (
	"math"

	"github.com/cwbudde/algo-analyser/dsp/core"
	"github.com/cwbudde/algo-vecmath"
)

// Stats holds descriptors of one magnitude snapshot.
//
//nolint:revive
type Stats struct {
	BinCount int
	BinHz    float64

	PeakBin  int
	PeakHz   float64
	Peak     float64
	Peak_dB  float64
	Average  float64
	Energy   float64 // sum of squared magnitudes
	Centroid float64 // Hz
	Spread   float64 // Hz
	Flatness float64 // 0..1
	Rolloff  float64 // Hz below which 85% of the energy lies
}

// RolloffFraction is the energy fraction used by [Calculate].
const RolloffFraction = 0.85

// BinHz returns the bin spacing of a bins-long snapshot.
func BinHz(bins int, sampleRate float64) float64 {
	if bins <= 0 {
		return 0
	}

	return sampleRate / float64(2*bins)
}

// FromDecibels converts a dB snapshot to linear magnitudes in dst. dst may
// alias db.
func FromDecibels(dst, db []float64) []float64 {
	dst = core.EnsureLen(dst, len(db))
	core.DBToLinearBlock(dst, db)

	return dst
}

// Calculate computes every descriptor of mag.
func Calculate(mag []float64, sampleRate float64) Stats {
	n := len(mag)
	s := Stats{
		BinCount: n,
		BinHz:    BinHz(n, sampleRate),
		Peak_dB:  math.Inf(-1),
	}

	if n == 0 {
		return s
	}

	sum := vecmath.Sum(mag)

	s.PeakBin = peakBin(mag)
	s.Peak = mag[s.PeakBin]
	s.PeakHz = float64(s.PeakBin) * s.BinHz

	if s.Peak > 0 {
		s.Peak_dB = core.LinearToDB(s.Peak)
	}

	s.Average = sum / float64(n)
	s.Energy = vecmath.DotProduct(mag, mag)
	s.Centroid = centroid(mag, s.BinHz, sum)
	s.Spread = spread(mag, s.BinHz, s.Centroid, sum)
	s.Flatness = Flatness(mag)
	s.Rolloff = rolloff(mag, s.BinHz, RolloffFraction, s.Energy)

	return s
}

// PeakBin returns the index of the largest bin, or -1 for an empty snapshot.
// Ties resolve to the lowest bin.
func PeakBin(mag []float64) int {
	if len(mag) == 0 {
		return -1
	}

	return peakBin(mag)
}

func peakBin(mag []float64) int {
	best := 0
	for i, v := range mag {
		if v > mag[best] {
			best = i
		}
	}

	return best
}

// PeakFrequency refines the peak location with parabolic interpolation over
// the peak and its neighbours and returns it in Hz.
func PeakFrequency(mag []float64, sampleRate float64) float64 {
	k := PeakBin(mag)
	if k < 0 {
		return 0
	}

	binHz := BinHz(len(mag), sampleRate)
	if k == 0 || k == len(mag)-1 {
		return float64(k) * binHz
	}

	a, b, c := mag[k-1], mag[k], mag[k+1]

	denom := a - 2*b + c
	if denom == 0 {
		return float64(k) * binHz
	}

	delta := 0.5 * (a - c) / denom

	return (float64(k) + delta) * binHz
}

// Centroid returns the magnitude-weighted mean frequency in Hz.
//
//	centroid = sum(f_i * |X_i|) / sum(|X_i|)
func Centroid(mag []float64, sampleRate float64) float64 {
	return centroid(mag, BinHz(len(mag), sampleRate), vecmath.Sum(mag))
}

func centroid(mag []float64, binHz, sum float64) float64 {
	if len(mag) == 0 || sum == 0 {
		return 0
	}

	weighted := 0.0
	for i, v := range mag {
		weighted += float64(i) * v
	}

	return weighted / sum * binHz
}

func spread(mag []float64, binHz, cent, sum float64) float64 {
	if len(mag) == 0 || sum == 0 {
		return 0
	}

	acc := 0.0
	for i, v := range mag {
		d := float64(i)*binHz - cent
		acc += d * d * v
	}

	return math.Sqrt(acc / sum)
}

// Flatness returns the ratio of geometric to arithmetic mean over the
// non-DC bins, in 0..1. A single zero bin makes it 0.
func Flatness(mag []float64) float64 {
	if len(mag) < 2 {
		return 0
	}

	bins := mag[1:]

	mean := vecmath.Sum(bins) / float64(len(bins))
	if mean == 0 {
		return 0
	}

	sumLog := 0.0
	for _, v := range bins {
		if v <= 0 {
			return 0
		}

		sumLog += math.Log(v)
	}

	return math.Exp(sumLog/float64(len(bins))) / mean
}

// Rolloff returns the frequency below which fraction (0..1) of the energy
// lies.
func Rolloff(mag []float64, sampleRate, fraction float64) float64 {
	return rolloff(mag, BinHz(len(mag), sampleRate), fraction, vecmath.DotProduct(mag, mag))
}

func rolloff(mag []float64, binHz, fraction, energy float64) float64 {
	if len(mag) == 0 || energy == 0 {
		return 0
	}

	threshold := fraction * energy
	cum := 0.0

	for i, v := range mag {
		cum += v * v
		if cum >= threshold {
			return float64(i) * binHz
		}
	}

	return float64(len(mag)-1) * binHz
}

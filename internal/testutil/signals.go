// Package testutil holds deterministic signals and tolerance checks shared by
// the package tests.
package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates amplitude*sin(2*pi*freqHz*i/sampleRate).
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)

	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}

	return out
}

// BinSine generates one analysis frame, 2*size samples, of a sine centred on
// spectrum bin of a size-bin analyser. The frame holds exactly bin cycles.
func BinSine(bin, size int, amplitude float64) []float64 {
	n := 2 * size
	return DeterministicSine(float64(bin), float64(n), amplitude, n)
}

// DeterministicNoise generates uniform white noise in [-amplitude, amplitude)
// from a fixed seed.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)

	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}

	return out
}

// Ramp returns start, start+step, start+2*step, ...
func Ramp(length int, start, step float64) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = start + step*float64(i)
	}

	return out
}

// Impulse returns a unit impulse at pos. Out-of-range positions give silence.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}

	return out
}

// DC returns a constant signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}

	return out
}

// Ones returns n samples of 1.0.
func Ones(n int) []float64 {
	return DC(1.0, n)
}

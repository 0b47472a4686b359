// Package signal generates deterministic test signals for analysers.
package signal

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-analyser/dsp/core"
	"github.com/cwbudde/algo-vecmath"
)

var errEmpty = errors.New("signal input must not be empty")

// Tone is one sinusoidal component of a test signal.
type Tone struct {
	Frequency float64
	Amplitude float64
}

// Generator creates deterministic signals at one sample rate.
type Generator struct {
	cfg  core.ProcessorConfig
	seed int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets the noise seed.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a generator for the given stream settings.
func NewGenerator(coreOpts []core.ProcessorOption, opts ...Option) *Generator {
	g := &Generator{
		cfg:  core.ApplyProcessorOptions(coreOpts...),
		seed: 1,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	return g
}

// SampleRate returns the generator sample rate.
func (g *Generator) SampleRate() float64 {
	return g.cfg.SampleRate
}

// BinFrequency returns the centre frequency of bin in a size-bin analyser
// running at sampleRate. A sine at this frequency leaks into no other bin.
func BinFrequency(bin, size int, sampleRate float64) float64 {
	if size <= 0 {
		return 0
	}

	return float64(bin) * sampleRate / float64(2*size)
}

// Sine generates a sine wave starting at phase 0.
func (g *Generator) Sine(freqHz, amplitude float64, samples int) ([]float64, error) {
	return g.Tones([]Tone{{Frequency: freqHz, Amplitude: amplitude}}, samples)
}

// Tones generates the sum of tones.
func (g *Generator) Tones(tones []Tone, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("tone samples must be > 0: %d", samples)
	}

	nyquist := g.cfg.Nyquist()
	out := make([]float64, samples)

	for _, tone := range tones {
		if tone.Frequency < 0 || tone.Frequency > nyquist {
			return nil, fmt.Errorf("tone frequency %g Hz outside [0, %g]", tone.Frequency, nyquist)
		}

		step := 2 * math.Pi * tone.Frequency / g.cfg.SampleRate
		for i := range out {
			out[i] += tone.Amplitude * math.Sin(step*float64(i))
		}
	}

	return out, nil
}

// WhiteNoise generates uniform noise in [-amplitude, amplitude).
func (g *Generator) WhiteNoise(amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("noise samples must be > 0: %d", samples)
	}

	if amplitude < 0 {
		return nil, fmt.Errorf("noise amplitude must be >= 0: %f", amplitude)
	}

	out := make([]float64, samples)

	rng := rand.New(rand.NewSource(g.seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}

	return out, nil
}

// Mix adds src into dst element-wise over their common length.
func Mix(dst, src []float64) {
	n := min(len(dst), len(src))
	vecmath.AddBlockInPlace(dst[:n], src[:n])
}

// Normalize returns a copy of data scaled to targetPeak. Silence stays
// silent.
func Normalize(data []float64, targetPeak float64) ([]float64, error) {
	if targetPeak < 0 {
		return nil, fmt.Errorf("normalize target peak must be >= 0: %f", targetPeak)
	}

	if len(data) == 0 {
		return nil, errEmpty
	}

	out := make([]float64, len(data))

	peak := vecmath.MaxAbs(data)
	if peak == 0 || targetPeak == 0 {
		return out, nil
	}

	vecmath.ScaleBlock(out, data, targetPeak/peak)

	return out, nil
}

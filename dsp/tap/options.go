package tap

import (
	"github.com/cwbudde/algo-analyser/dsp/analyser"
	"github.com/cwbudde/algo-analyser/dsp/core"
)

// Errors shared with the owned analyser.
var (
	ErrInvalidConfiguration = analyser.ErrInvalidConfiguration
	ErrUseAfterDispose      = analyser.ErrUseAfterDispose
)

// Config defines tap settings.
type Config struct {
	core.ProcessorConfig

	// Size is the snapshot length, a power of two in [16, 16384].
	Size int
	// Smoothing is the weight of the previous snapshot, in [0,1].
	Smoothing float64
	// NormalRange reports spectra as linear gain instead of dB.
	NormalRange bool
	// Backend overrides the default FFT backend.
	Backend analyser.Backend
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns size 1024, smoothing 0.8, dB output at 48 kHz.
func DefaultConfig() Config {
	return Config{
		ProcessorConfig: core.DefaultProcessorConfig(),
		Size:            1024,
		Smoothing:       0.8,
	}
}

// WithSize sets the snapshot size. It is validated at construction.
func WithSize(size int) Option {
	return func(cfg *Config) {
		cfg.Size = size
	}
}

// WithSmoothing sets the smoothing factor. It is validated at construction.
func WithSmoothing(smoothing float64) Option {
	return func(cfg *Config) {
		cfg.Smoothing = smoothing
	}
}

// WithNormalRange selects linear gain output for spectrum taps.
func WithNormalRange(normalRange bool) Option {
	return func(cfg *Config) {
		cfg.NormalRange = normalRange
	}
}

// WithSampleRate sets the sample rate used for bin frequencies.
// Non-positive values are ignored.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *Config) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBackend replaces the analysis backend. The tap takes ownership and
// closes it on Dispose.
func WithBackend(b analyser.Backend) Option {
	return func(cfg *Config) {
		cfg.Backend = b
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

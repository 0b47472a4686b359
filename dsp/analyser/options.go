package analyser

import (
	"fmt"
	"strings"
)

// MeasurementType selects what an analyser reports.
type MeasurementType int

const (
	// TypeSpectrum reports per-bin magnitudes in decibels.
	TypeSpectrum MeasurementType = iota
	// TypeWaveform reports raw sample amplitudes.
	TypeWaveform
)

// String returns "spectrum" or "waveform".
func (t MeasurementType) String() string {
	switch t {
	case TypeSpectrum:
		return "spectrum"
	case TypeWaveform:
		return "waveform"
	default:
		return fmt.Sprintf("MeasurementType(%d)", int(t))
	}
}

// ParseType resolves "spectrum"/"fft" and "waveform"/"wave".
func ParseType(name string) (MeasurementType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "spectrum", "fft":
		return TypeSpectrum, nil
	case "waveform", "wave":
		return TypeWaveform, nil
	default:
		return 0, fmt.Errorf("%w: unknown measurement type: %q", ErrInvalidConfiguration, name)
	}
}

// Config defines analyser settings.
type Config struct {
	// Size is the snapshot length, a power of two in [MinSize, MaxSize].
	Size int
	// Smoothing is the weight of the previous snapshot, in [0,1].
	Smoothing float64
	// Type selects spectrum or waveform snapshots.
	Type MeasurementType
}

// Option mutates a Config. Values are not checked until the config is used.
type Option func(*Config)

// DefaultConfig returns size 1024, smoothing 0.8, spectrum mode.
func DefaultConfig() Config {
	return Config{
		Size:      1024,
		Smoothing: 0.8,
		Type:      TypeSpectrum,
	}
}

// WithSize sets the snapshot size.
func WithSize(size int) Option {
	return func(cfg *Config) {
		cfg.Size = size
	}
}

// WithSmoothing sets the smoothing factor.
func WithSmoothing(smoothing float64) Option {
	return func(cfg *Config) {
		cfg.Smoothing = smoothing
	}
}

// WithType sets the measurement type.
func WithType(t MeasurementType) Option {
	return func(cfg *Config) {
		cfg.Type = t
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

// Validate reports the first out-of-range field, wrapping
// [ErrInvalidConfiguration].
func (c Config) Validate() error {
	if err := validateSize(c.Size); err != nil {
		return err
	}

	if err := validateSmoothing(c.Smoothing); err != nil {
		return err
	}

	return validateType(c.Type)
}

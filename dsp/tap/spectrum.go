package tap

import (
	"fmt"

	"github.com/cwbudde/algo-analyser/dsp/analyser"
	"github.com/cwbudde/algo-analyser/dsp/core"
)

// Spectrum is a pass-through tap reporting the magnitude spectrum of the
// signal flowing through it.
type Spectrum struct {
	node

	normalRange bool
}

// NewSpectrum creates a spectrum tap. Without options it uses size 1024,
// smoothing 0.8 and dB output.
func NewSpectrum(opts ...Option) (*Spectrum, error) {
	cfg := ApplyOptions(opts...)

	n, err := newNode(cfg, analyser.TypeSpectrum)
	if err != nil {
		return nil, fmt.Errorf("tap: spectrum: %w", err)
	}

	return &Spectrum{node: n, normalRange: cfg.NormalRange}, nil
}

// Value returns a fresh copy of the smoothed spectrum, Size() bins long.
// Bins are in dB unless normal range is enabled, in which case each bin v
// is reported as 10^(v/20).
func (s *Spectrum) Value() ([]float64, error) {
	if s.disposed {
		return nil, ErrUseAfterDispose
	}

	v, err := s.analyser.Value()
	if err != nil {
		return nil, err
	}

	if s.normalRange {
		core.DBToLinearBlock(v, v)
	}

	return v, nil
}

// NormalRange reports whether Value returns linear gain.
func (s *Spectrum) NormalRange() (bool, error) {
	if s.disposed {
		return false, ErrUseAfterDispose
	}

	return s.normalRange, nil
}

// SetNormalRange switches Value between dB and linear gain. Smoothing
// history is unaffected.
func (s *Spectrum) SetNormalRange(normalRange bool) error {
	if s.disposed {
		return ErrUseAfterDispose
	}

	s.normalRange = normalRange

	return nil
}

// FrequencyOf returns the centre frequency in Hz of bin index.
func (s *Spectrum) FrequencyOf(index int) (float64, error) {
	size, err := s.Size()
	if err != nil {
		return 0, err
	}

	if index < 0 || index >= size {
		return 0, fmt.Errorf("tap: bin %d out of range [0, %d)", index, size)
	}

	return float64(index) * s.sampleRate / float64(2*size), nil
}

package tap

import (
	"fmt"

	"github.com/cwbudde/algo-analyser/dsp/analyser"
)

// Waveform is a pass-through tap reporting the newest samples of the
// signal flowing through it.
type Waveform struct {
	node
}

// NewWaveform creates a waveform tap. NormalRange is ignored.
func NewWaveform(opts ...Option) (*Waveform, error) {
	cfg := ApplyOptions(opts...)

	n, err := newNode(cfg, analyser.TypeWaveform)
	if err != nil {
		return nil, fmt.Errorf("tap: waveform: %w", err)
	}

	return &Waveform{node: n}, nil
}

// Value returns a fresh copy of the smoothed waveform, Size() samples long,
// oldest first.
func (w *Waveform) Value() ([]float64, error) {
	if w.disposed {
		return nil, ErrUseAfterDispose
	}

	return w.analyser.Value()
}

package analyser

import (
	"fmt"

	"github.com/cwbudde/algo-analyser/dsp/core"
)

// MinDecibels is the floor applied to spectrum snapshots. Silent bins read
// this value instead of -Inf.
const MinDecibels = -130.0

// Analyser maintains a smoothed, fixed-size snapshot of its backend's frames.
type Analyser struct {
	backend Backend
	cfg     Config

	frame []float64 // newest raw frame from the backend
	state []float64 // smoothed frame; linear magnitudes in spectrum mode

	seq      uint64
	primed   bool
	disposed bool
}

// New creates an analyser over backend with the given options applied to
// [DefaultConfig]. Invalid options fail with [ErrInvalidConfiguration].
func New(backend Backend, opts ...Option) (*Analyser, error) {
	if backend == nil {
		return nil, fmt.Errorf("%w: nil backend", ErrInvalidConfiguration)
	}

	cfg := ApplyOptions(opts...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := backend.Resize(cfg.Size); err != nil {
		return nil, fmt.Errorf("analyser: resize backend: %w", err)
	}

	a := &Analyser{
		backend: backend,
		cfg:     cfg,
	}
	a.reset()

	return a, nil
}

// reset reallocates the snapshot buffers and drops smoothing history.
func (a *Analyser) reset() {
	a.frame = make([]float64, a.cfg.Size)
	a.state = make([]float64, a.cfg.Size)
	a.primed = false
}

// Size returns the snapshot length.
func (a *Analyser) Size() (int, error) {
	if a.disposed {
		return 0, ErrUseAfterDispose
	}

	return a.cfg.Size, nil
}

// SetSize resizes the analyser. The next snapshot holds only the newest
// frame, with no history carried over from before the resize.
func (a *Analyser) SetSize(size int) error {
	if a.disposed {
		return ErrUseAfterDispose
	}

	if err := validateSize(size); err != nil {
		return err
	}

	if err := a.backend.Resize(size); err != nil {
		return fmt.Errorf("analyser: resize backend: %w", err)
	}

	a.cfg.Size = size
	a.reset()

	return nil
}

// Smoothing returns the smoothing factor.
func (a *Analyser) Smoothing() (float64, error) {
	if a.disposed {
		return 0, ErrUseAfterDispose
	}

	return a.cfg.Smoothing, nil
}

// SetSmoothing sets the weight given to the previous snapshot. 0 reports
// each frame as-is; values close to 1 decay slowly.
func (a *Analyser) SetSmoothing(smoothing float64) error {
	if a.disposed {
		return ErrUseAfterDispose
	}

	if err := validateSmoothing(smoothing); err != nil {
		return err
	}

	a.cfg.Smoothing = smoothing

	return nil
}

// Type returns the measurement type.
func (a *Analyser) Type() (MeasurementType, error) {
	if a.disposed {
		return 0, ErrUseAfterDispose
	}

	return a.cfg.Type, nil
}

// SetType switches between spectrum and waveform snapshots. Changing the
// type drops smoothing history.
func (a *Analyser) SetType(t MeasurementType) error {
	if a.disposed {
		return ErrUseAfterDispose
	}

	if err := validateType(t); err != nil {
		return err
	}

	if t == a.cfg.Type {
		return nil
	}

	a.cfg.Type = t
	a.reset()

	return nil
}

// Write feeds a block of the passing signal to the backend. block is not
// modified or retained.
func (a *Analyser) Write(block []float64) error {
	if a.disposed {
		return ErrUseAfterDispose
	}

	a.backend.Write(block)

	return nil
}

// Value returns a copy of the current snapshot. Spectrum snapshots are in
// dB, floored at [MinDecibels]; waveform snapshots are raw samples. The
// contents only change once the backend completes a new frame.
func (a *Analyser) Value() ([]float64, error) {
	if a.disposed {
		return nil, ErrUseAfterDispose
	}

	seq := a.backend.Read(a.cfg.Type, a.frame)
	if !a.primed || seq != a.seq {
		a.blend()
		a.seq = seq
		a.primed = true
	}

	out := make([]float64, len(a.state))
	if a.cfg.Type == TypeSpectrum {
		core.LinearToDBBlock(out, a.state, MinDecibels)
	} else {
		copy(out, a.state)
	}

	return out, nil
}

// blend folds the newest frame into state: s*state + (1-s)*frame.
func (a *Analyser) blend() {
	s := a.cfg.Smoothing
	if !a.primed || s == 0 {
		copy(a.state, a.frame)
		return
	}

	for i, v := range a.frame {
		a.state[i] = s*a.state[i] + (1-s)*v
	}
}

// Dispose closes the backend. Any later call, including a second Dispose,
// fails with [ErrUseAfterDispose].
func (a *Analyser) Dispose() error {
	if a.disposed {
		return ErrUseAfterDispose
	}

	a.disposed = true
	a.frame = nil
	a.state = nil

	if err := a.backend.Close(); err != nil {
		return fmt.Errorf("analyser: close backend: %w", err)
	}

	return nil
}

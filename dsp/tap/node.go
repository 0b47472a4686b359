package tap

import (
	"github.com/cwbudde/algo-analyser/dsp/analyser"
	"github.com/cwbudde/algo-analyser/dsp/core"
)

// node is the pass-through path shared by all taps: one signal path from
// input to output plus a side-feed into the analyser.
type node struct {
	analyser   *analyser.Analyser
	sampleRate float64
	disposed   bool
}

func newNode(cfg Config, t analyser.MeasurementType) (node, error) {
	backend := cfg.Backend
	if backend == nil {
		backend = analyser.NewFFTBackend()
	}

	a, err := analyser.New(backend,
		analyser.WithSize(cfg.Size),
		analyser.WithSmoothing(cfg.Smoothing),
		analyser.WithType(t),
	)
	if err != nil {
		return node{}, err
	}

	return node{analyser: a, sampleRate: cfg.SampleRate}, nil
}

// Process copies src to dst unchanged and feeds the copied samples to the
// analyser. It returns the number of samples passed through.
func (n *node) Process(dst, src []float64) (int, error) {
	if n.disposed {
		return 0, ErrUseAfterDispose
	}

	count := core.CopyInto(dst, src)

	return count, n.analyser.Write(src[:count])
}

// ProcessInPlace feeds buf to the analyser and leaves it untouched.
func (n *node) ProcessInPlace(buf []float64) error {
	if n.disposed {
		return ErrUseAfterDispose
	}

	return n.analyser.Write(buf)
}

// Size returns the snapshot length.
func (n *node) Size() (int, error) {
	if n.disposed {
		return 0, ErrUseAfterDispose
	}

	return n.analyser.Size()
}

// SetSize resizes the analyser and drops its smoothing history.
func (n *node) SetSize(size int) error {
	if n.disposed {
		return ErrUseAfterDispose
	}

	return n.analyser.SetSize(size)
}

// Smoothing returns the smoothing factor.
func (n *node) Smoothing() (float64, error) {
	if n.disposed {
		return 0, ErrUseAfterDispose
	}

	return n.analyser.Smoothing()
}

// SetSmoothing sets the smoothing factor.
func (n *node) SetSmoothing(smoothing float64) error {
	if n.disposed {
		return ErrUseAfterDispose
	}

	return n.analyser.SetSmoothing(smoothing)
}

// SampleRate returns the sample rate the tap was configured with.
func (n *node) SampleRate() float64 {
	return n.sampleRate
}

// Dispose disposes the analyser, then the tap. Any later call fails with
// ErrUseAfterDispose.
func (n *node) Dispose() error {
	if n.disposed {
		return ErrUseAfterDispose
	}

	err := n.analyser.Dispose()
	n.disposed = true
	n.analyser = nil

	return err
}

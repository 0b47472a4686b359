package analyser

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cwbudde/algo-analyser/dsp/core"
	"github.com/cwbudde/algo-analyser/dsp/window"
	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

var errBackendClosed = errors.New("fft backend is closed")

// Transform computes a forward DFT of len(src) points into dst.
type Transform interface {
	Forward(dst, src []complex128) error
}

// Planner creates a [Transform] for n-point frames.
type Planner func(n int) (Transform, error)

// AlgoFFTPlanner plans transforms with algo-fft. It is the default planner.
func AlgoFFTPlanner(n int) (Transform, error) {
	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, err
	}

	return plan, nil
}

// FFTOption configures an [FFTBackend].
type FFTOption func(*FFTBackend)

// WithPlanner replaces the transform planner.
func WithPlanner(p Planner) FFTOption {
	return func(b *FFTBackend) {
		if p != nil {
			b.planner = p
		}
	}
}

// WithWindow selects the analysis window. The default is Blackman.
func WithWindow(t window.Type) FFTOption {
	return func(b *FFTBackend) {
		b.winType = t
	}
}

// FFTBackend is a [Backend] that keeps a ring buffer of the newest 2*size
// input samples and computes a windowed spectrum from it on demand.
//
// Spectrum frames are amplitude-normalised so that a full-scale sine
// centred on a bin reads 1.0 (0 dB). The spectrum for a given frame is
// computed at most once; reads without new input return the cached result.
//
// Write may be called from the audio goroutine while Read and Resize are
// called from another; all three are serialised by an internal mutex, and a
// resize swaps every buffer at once.
type FFTBackend struct {
	mu sync.Mutex

	planner Planner
	winType window.Type

	size int // bins / waveform samples per frame
	n    int // transform length, 2*size

	ring  []float64
	write int
	seq   uint64

	plan    Transform
	win     []float64
	winGain float64
	in      []complex128
	out     []complex128
	re, im  []float64
	mag     []float64

	computed uint64
	hasMag   bool
	closed   bool
}

// NewFFTBackend returns an unsized backend. [New] sizes it.
func NewFFTBackend(opts ...FFTOption) *FFTBackend {
	b := &FFTBackend{
		planner: AlgoFFTPlanner,
		winType: window.TypeBlackman,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}

	return b
}

// Resize reallocates the backend for size-point frames, planning a
// 2*size-point transform. The newest samples of the old ring buffer are
// carried over.
func (b *FFTBackend) Resize(size int) error {
	if size <= 0 {
		return fmt.Errorf("fft backend size must be > 0: %d", size)
	}

	n := 2 * size

	plan, err := b.planner(n)
	if err != nil {
		return fmt.Errorf("fft backend plan %d points: %w", n, err)
	}

	win := window.Generate(b.winType, n, window.WithPeriodic())

	winGain, err := window.CoherentGain(win)
	if err != nil {
		return fmt.Errorf("fft backend window: %w", err)
	}

	ring := make([]float64, n)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return errBackendClosed
	}

	if b.n > 0 {
		keep := min(b.n, n)
		b.copyNewest(ring[n-keep:])
	}

	b.size = size
	b.n = n
	b.ring = ring
	b.write = 0
	b.plan = plan
	b.win = win
	b.winGain = winGain
	b.in = make([]complex128, n)
	b.out = make([]complex128, n)
	b.re = make([]float64, size)
	b.im = make([]float64, size)
	b.mag = make([]float64, size)
	b.hasMag = false

	return nil
}

// Write appends block to the ring buffer and completes a frame.
func (b *FFTBackend) Write(block []float64) {
	if len(block) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed || b.n == 0 {
		return
	}

	// Only the newest n samples can ever be observed.
	if len(block) > b.n {
		block = block[len(block)-b.n:]
	}

	for _, x := range block {
		b.ring[b.write] = x

		b.write++
		if b.write == b.n {
			b.write = 0
		}
	}

	b.seq++
}

// Read copies the newest frame into dst and returns its sequence number.
func (b *FFTBackend) Read(t MeasurementType, dst []float64) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed || b.n == 0 {
		core.Zero(dst)
		return b.seq
	}

	switch t {
	case TypeWaveform:
		b.copyNewest(dst[:min(len(dst), b.size)])
	default:
		if !b.hasMag || b.computed != b.seq {
			b.computeSpectrum()
		}

		copy(dst, b.mag)
	}

	return b.seq
}

// Close releases the buffers. Closing twice returns an error.
func (b *FFTBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return errBackendClosed
	}

	b.closed = true
	b.ring = nil
	b.plan = nil
	b.win = nil
	b.in, b.out = nil, nil
	b.re, b.im, b.mag = nil, nil, nil

	return nil
}

// copyNewest fills dst with the newest len(dst) samples in time order.
func (b *FFTBackend) copyNewest(dst []float64) {
	read := b.write - len(dst)
	if read < 0 {
		read += b.n
	}

	for i := range dst {
		dst[i] = b.ring[read]

		read++
		if read == b.n {
			read = 0
		}
	}
}

func (b *FFTBackend) computeSpectrum() {
	read := b.write
	for i := range b.in {
		b.in[i] = complex(b.ring[read]*b.win[i], 0)

		read++
		if read == b.n {
			read = 0
		}
	}

	b.computed = b.seq
	b.hasMag = true

	if err := b.plan.Forward(b.out, b.in); err != nil {
		clear(b.mag)
		return
	}

	for k := range b.mag {
		b.re[k] = real(b.out[k])
		b.im[k] = imag(b.out[k])
	}

	vecmath.Magnitude(b.mag, b.re, b.im)

	// One-sided amplitude: DC counts once, every other bin twice.
	norm := float64(b.n) * b.winGain
	b.mag[0] /= norm
	vecmath.ScaleBlockInPlace(b.mag[1:], 2/norm)
}

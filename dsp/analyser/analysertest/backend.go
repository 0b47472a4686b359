// Package analysertest provides a deterministic [analyser.Backend] for tests.
package analysertest

import (
	"errors"

	"github.com/cwbudde/algo-analyser/dsp/analyser"
	"github.com/cwbudde/algo-analyser/dsp/core"
)

var errClosed = errors.New("analysertest: backend already closed")

// Backend serves frames pushed by the test instead of computing them.
// Each Push completes a new frame.
type Backend struct {
	size     int
	spectrum []float64
	waveform []float64
	seq      uint64

	// Writes records every block passed to Write.
	Writes [][]float64
	// Resizes records every size passed to Resize.
	Resizes []int
	// Closed reports whether Close was called.
	Closed bool

	// ResizeErr and CloseErr, when set, are returned by Resize and Close.
	ResizeErr error
	CloseErr  error
}

// New returns an unsized fake backend.
func New() *Backend {
	return &Backend{}
}

// Size returns the size of the last successful Resize.
func (b *Backend) Size() int {
	return b.size
}

// Seq returns the sequence number of the newest frame.
func (b *Backend) Seq() uint64 {
	return b.seq
}

// Push stores frame as the newest frame of type t and advances the sequence.
// Spectrum frames are linear magnitudes. Frames shorter than the backend
// size are zero-padded; longer frames are truncated.
func (b *Backend) Push(t analyser.MeasurementType, frame []float64) {
	dst := b.frame(t)
	clear(dst)
	copy(dst, frame)
	b.seq++
}

// Fill pushes a frame of type t with every element set to v.
func (b *Backend) Fill(t analyser.MeasurementType, v float64) {
	frame := make([]float64, b.size)
	for i := range frame {
		frame[i] = v
	}

	b.Push(t, frame)
}

// Resize implements [analyser.Backend].
func (b *Backend) Resize(size int) error {
	if b.ResizeErr != nil {
		return b.ResizeErr
	}

	b.Resizes = append(b.Resizes, size)
	b.size = size
	b.spectrum = make([]float64, size)
	b.waveform = make([]float64, size)

	return nil
}

// Write implements [analyser.Backend]. It records a copy of block but does
// not produce a frame.
func (b *Backend) Write(block []float64) {
	b.Writes = append(b.Writes, core.Clone(block))
}

// Read implements [analyser.Backend].
func (b *Backend) Read(t analyser.MeasurementType, dst []float64) uint64 {
	copy(dst, b.frame(t))
	return b.seq
}

// Close implements [analyser.Backend].
func (b *Backend) Close() error {
	if b.Closed {
		return errClosed
	}

	b.Closed = true

	return b.CloseErr
}

func (b *Backend) frame(t analyser.MeasurementType) []float64 {
	if t == analyser.TypeWaveform {
		return b.waveform
	}

	return b.spectrum
}

// Package godsp plugs the go-dsp FFT into [analyser.FFTBackend].
//
//	backend := analyser.NewFFTBackend(analyser.WithPlanner(godsp.Planner))
package godsp

import (
	"fmt"

	"github.com/cwbudde/algo-analyser/dsp/analyser"
	"github.com/mjibson/go-dsp/fft"
)

type transform struct {
	n int
}

// Planner returns a go-dsp backed [analyser.Transform] for n-point frames.
func Planner(n int) (analyser.Transform, error) {
	if n <= 0 {
		return nil, fmt.Errorf("godsp: transform size must be > 0: %d", n)
	}

	return transform{n: n}, nil
}

func (t transform) Forward(dst, src []complex128) error {
	if len(src) != t.n || len(dst) != t.n {
		return fmt.Errorf("godsp: expected %d points, got src=%d dst=%d", t.n, len(src), len(dst))
	}

	copy(dst, fft.FFT(src))

	return nil
}

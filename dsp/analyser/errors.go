package analyser

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-analyser/dsp/core"
)

// Size bounds accepted by [Analyser.SetSize].
const (
	MinSize = 16
	MaxSize = 16384
)

var (
	// ErrInvalidConfiguration is returned for out-of-range size, smoothing or
	// measurement type values.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrUseAfterDispose is returned by every operation on a disposed analyser.
	ErrUseAfterDispose = errors.New("use after dispose")
)

func validateSize(size int) error {
	if size < MinSize || size > MaxSize || !core.IsPowerOfTwo(size) {
		return fmt.Errorf("%w: size must be a power of two in [%d,%d]: %d",
			ErrInvalidConfiguration, MinSize, MaxSize, size)
	}

	return nil
}

func validateSmoothing(smoothing float64) error {
	if math.IsNaN(smoothing) || smoothing < 0 || smoothing > 1 {
		return fmt.Errorf("%w: smoothing must be in [0,1]: %f", ErrInvalidConfiguration, smoothing)
	}

	return nil
}

func validateType(t MeasurementType) error {
	switch t {
	case TypeSpectrum, TypeWaveform:
		return nil
	default:
		return fmt.Errorf("%w: unknown measurement type: %d", ErrInvalidConfiguration, int(t))
	}
}

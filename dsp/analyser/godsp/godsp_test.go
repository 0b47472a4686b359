package godsp

import (
	"testing"

	"github.com/cwbudde/algo-analyser/dsp/analyser"
	"github.com/cwbudde/algo-analyser/internal/testutil"
)

func TestPlannerRejectsInvalidSize(t *testing.T) {
	if _, err := Planner(0); err == nil {
		t.Fatal("expected error for zero size")
	}

	tr, err := Planner(8)
	if err != nil {
		t.Fatal(err)
	}

	if err := tr.Forward(make([]complex128, 8), make([]complex128, 4)); err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func TestMatchesAlgoFFTBackend(t *testing.T) {
	const size = 256

	signal := testutil.DeterministicSine(1000, 48000, 0.5, 4*size)

	read := func(p analyser.Planner) []float64 {
		t.Helper()

		b := analyser.NewFFTBackend(analyser.WithPlanner(p))
		if err := b.Resize(size); err != nil {
			t.Fatal(err)
		}

		b.Write(signal)

		out := make([]float64, size)
		b.Read(analyser.TypeSpectrum, out)

		return out
	}

	testutil.RequireSliceNearlyEqual(t, read(Planner), read(analyser.AlgoFFTPlanner), 1e-9)
}

package analyser_test

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-analyser/dsp/analyser"
	"github.com/cwbudde/algo-analyser/dsp/analyser/analysertest"
	"github.com/cwbudde/algo-analyser/dsp/core"
	"github.com/cwbudde/algo-analyser/internal/testutil"
)

func validSizes() []int {
	var sizes []int
	for n := analyser.MinSize; n <= analyser.MaxSize; n *= 2 {
		sizes = append(sizes, n)
	}

	return sizes
}

func newAnalyser(t *testing.T, opts ...analyser.Option) (*analyser.Analyser, *analysertest.Backend) {
	t.Helper()

	backend := analysertest.New()

	a, err := analyser.New(backend, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	return a, backend
}

func TestNewDefaults(t *testing.T) {
	a, backend := newAnalyser(t)

	size, err := a.Size()
	if err != nil || size != 1024 {
		t.Fatalf("Size() = %d, %v; want 1024", size, err)
	}

	smoothing, err := a.Smoothing()
	if err != nil || smoothing != 0.8 {
		t.Fatalf("Smoothing() = %v, %v; want 0.8", smoothing, err)
	}

	typ, err := a.Type()
	if err != nil || typ != analyser.TypeSpectrum {
		t.Fatalf("Type() = %v, %v; want spectrum", typ, err)
	}

	if backend.Size() != 1024 {
		t.Fatalf("backend size = %d, want 1024", backend.Size())
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		opts []analyser.Option
	}{
		{name: "size 15", opts: []analyser.Option{analyser.WithSize(15)}},
		{name: "size 32768", opts: []analyser.Option{analyser.WithSize(32768)}},
		{name: "size 0", opts: []analyser.Option{analyser.WithSize(0)}},
		{name: "smoothing -0.1", opts: []analyser.Option{analyser.WithSmoothing(-0.1)}},
		{name: "smoothing 1.1", opts: []analyser.Option{analyser.WithSmoothing(1.1)}},
		{name: "unknown type", opts: []analyser.Option{analyser.WithType(7)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := analysertest.New()

			_, err := analyser.New(backend, tt.opts...)
			if !errors.Is(err, analyser.ErrInvalidConfiguration) {
				t.Fatalf("err = %v, want ErrInvalidConfiguration", err)
			}

			if len(backend.Resizes) != 0 {
				t.Fatalf("backend resized despite invalid config: %v", backend.Resizes)
			}
		})
	}

	if _, err := analyser.New(nil); !errors.Is(err, analyser.ErrInvalidConfiguration) {
		t.Fatalf("nil backend err = %v, want ErrInvalidConfiguration", err)
	}
}

func TestNewPropagatesBackendResizeError(t *testing.T) {
	backend := analysertest.New()
	backend.ResizeErr = errors.New("boom")

	if _, err := analyser.New(backend); !errors.Is(err, backend.ResizeErr) {
		t.Fatalf("err = %v, want wrapped resize error", err)
	}
}

func TestSizeBounds(t *testing.T) {
	for _, size := range []int{16, 16384} {
		if _, err := analyser.New(analysertest.New(), analyser.WithSize(size)); err != nil {
			t.Fatalf("size %d: %v", size, err)
		}
	}

	for _, size := range []int{15, 32768} {
		_, err := analyser.New(analysertest.New(), analyser.WithSize(size))
		if !errors.Is(err, analyser.ErrInvalidConfiguration) {
			t.Fatalf("size %d: err = %v, want ErrInvalidConfiguration", size, err)
		}
	}
}

func TestValueLengthMatchesSize(t *testing.T) {
	for _, typ := range []analyser.MeasurementType{analyser.TypeSpectrum, analyser.TypeWaveform} {
		a, _ := newAnalyser(t, analyser.WithType(typ))

		for _, size := range validSizes() {
			if err := a.SetSize(size); err != nil {
				t.Fatalf("SetSize(%d): %v", size, err)
			}

			v, err := a.Value()
			if err != nil {
				t.Fatalf("Value: %v", err)
			}

			if len(v) != size {
				t.Fatalf("%v size %d: len(Value()) = %d", typ, size, len(v))
			}
		}
	}
}

func TestSetSizeRejectsInvalid(t *testing.T) {
	a, backend := newAnalyser(t)

	for _, size := range []int{-16, 0, 1, 8, 15, 17, 100, 1000, 1023, 16383, 32768, 65536} {
		err := a.SetSize(size)
		if !errors.Is(err, analyser.ErrInvalidConfiguration) {
			t.Fatalf("SetSize(%d) err = %v, want ErrInvalidConfiguration", size, err)
		}
	}

	if got, _ := a.Size(); got != 1024 {
		t.Fatalf("size changed after rejected SetSize: %d", got)
	}

	if len(backend.Resizes) != 1 {
		t.Fatalf("backend resized on rejected SetSize: %v", backend.Resizes)
	}
}

func TestSetSmoothingRejectsInvalid(t *testing.T) {
	a, _ := newAnalyser(t)

	for _, s := range []float64{-1, -1e-9, 1 + 1e-9, 2, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if err := a.SetSmoothing(s); !errors.Is(err, analyser.ErrInvalidConfiguration) {
			t.Fatalf("SetSmoothing(%v) err = %v, want ErrInvalidConfiguration", s, err)
		}
	}

	for _, s := range []float64{0, 0.5, 1} {
		if err := a.SetSmoothing(s); err != nil {
			t.Fatalf("SetSmoothing(%v): %v", s, err)
		}
	}
}

func TestSetTypeRejectsUnknown(t *testing.T) {
	a, _ := newAnalyser(t)

	if err := a.SetType(analyser.MeasurementType(-1)); !errors.Is(err, analyser.ErrInvalidConfiguration) {
		t.Fatalf("err = %v, want ErrInvalidConfiguration", err)
	}
}

func TestSpectrumValueIsDecibels(t *testing.T) {
	a, backend := newAnalyser(t, analyser.WithSize(16), analyser.WithSmoothing(0))

	frame := []float64{1, 0.5, 0.1, 0, 1e-9}
	backend.Push(analyser.TypeSpectrum, frame)

	v, err := a.Value()
	if err != nil {
		t.Fatal(err)
	}

	want := []float64{0, core.LinearToDB(0.5), -20, analyser.MinDecibels, analyser.MinDecibels}
	testutil.RequireSliceNearlyEqual(t, v[:len(want)], want, 1e-9)
}

func TestWaveformValueIsRaw(t *testing.T) {
	a, backend := newAnalyser(t, analyser.WithSize(16), analyser.WithType(analyser.TypeWaveform))

	frame := testutil.DeterministicSine(1000, 16000, 1, 16)
	backend.Push(analyser.TypeWaveform, frame)

	v, err := a.Value()
	if err != nil {
		t.Fatal(err)
	}

	testutil.RequireSliceNearlyEqual(t, v, frame, 0)
}

func TestSmoothingBlendsFrames(t *testing.T) {
	a, backend := newAnalyser(t, analyser.WithSize(16), analyser.WithSmoothing(0.75), analyser.WithType(analyser.TypeWaveform))

	backend.Fill(analyser.TypeWaveform, 1)

	v, _ := a.Value()
	if v[0] != 1 {
		t.Fatalf("first frame must be unblended: %v", v[0])
	}

	backend.Fill(analyser.TypeWaveform, 0)

	v, _ = a.Value()
	if math.Abs(v[3]-0.75) > 1e-12 {
		t.Fatalf("after second frame = %v, want 0.75", v[3])
	}

	backend.Fill(analyser.TypeWaveform, 0)

	v, _ = a.Value()
	if math.Abs(v[3]-0.5625) > 1e-12 {
		t.Fatalf("after third frame = %v, want 0.5625", v[3])
	}
}

func TestSpectrumSmoothingIsLinear(t *testing.T) {
	a, backend := newAnalyser(t, analyser.WithSize(16), analyser.WithSmoothing(0.5))

	backend.Fill(analyser.TypeSpectrum, 1)
	_, _ = a.Value()

	backend.Fill(analyser.TypeSpectrum, 0.5)

	v, _ := a.Value()
	if want := core.LinearToDB(0.75); math.Abs(v[0]-want) > 1e-12 {
		t.Fatalf("smoothed spectrum = %v dB, want %v dB", v[0], want)
	}
}

func TestZeroSmoothingReportsNewestFrame(t *testing.T) {
	a, backend := newAnalyser(t, analyser.WithSize(16), analyser.WithSmoothing(0), analyser.WithType(analyser.TypeWaveform))

	backend.Fill(analyser.TypeWaveform, 0.9)
	_, _ = a.Value()
	backend.Fill(analyser.TypeWaveform, -0.3)

	v, _ := a.Value()
	if v[0] != -0.3 {
		t.Fatalf("v[0] = %v, want -0.3", v[0])
	}
}

func TestValueStableWithoutNewFrame(t *testing.T) {
	a, backend := newAnalyser(t, analyser.WithSize(16), analyser.WithSmoothing(0.9), analyser.WithType(analyser.TypeWaveform))

	backend.Fill(analyser.TypeWaveform, 1)
	_, _ = a.Value()
	backend.Fill(analyser.TypeWaveform, 0)

	first, _ := a.Value()
	second, _ := a.Value()
	testutil.RequireSliceNearlyEqual(t, second, first, 0)

	first[0] = 42

	third, _ := a.Value()
	if third[0] == 42 {
		t.Fatal("Value must return a copy")
	}
}

func TestResizeResetsSmoothing(t *testing.T) {
	a, backend := newAnalyser(t, analyser.WithSize(32), analyser.WithSmoothing(0.9), analyser.WithType(analyser.TypeWaveform))

	backend.Fill(analyser.TypeWaveform, 1)
	_, _ = a.Value()

	if err := a.SetSize(16); err != nil {
		t.Fatal(err)
	}

	backend.Fill(analyser.TypeWaveform, 0.25)

	v, _ := a.Value()
	if len(v) != 16 {
		t.Fatalf("len = %d, want 16", len(v))
	}

	for i, x := range v {
		if x != 0.25 {
			t.Fatalf("v[%d] = %v, want 0.25 (no history after resize)", i, x)
		}
	}
}

func TestTypeSwitchResetsSmoothing(t *testing.T) {
	a, backend := newAnalyser(t, analyser.WithSize(16), analyser.WithSmoothing(0.9))

	backend.Fill(analyser.TypeSpectrum, 1)
	backend.Fill(analyser.TypeWaveform, 1)
	_, _ = a.Value()

	if err := a.SetType(analyser.TypeWaveform); err != nil {
		t.Fatal(err)
	}

	backend.Fill(analyser.TypeWaveform, 0.5)

	v, _ := a.Value()
	if v[0] != 0.5 {
		t.Fatalf("v[0] = %v, want 0.5 after type switch", v[0])
	}

	if err := a.SetType(analyser.TypeSpectrum); err != nil {
		t.Fatal(err)
	}

	v, _ = a.Value()
	if v[0] != 0 {
		t.Fatalf("spectrum v[0] = %v dB, want 0 dB unblended", v[0])
	}
}

func TestWriteForwardsToBackend(t *testing.T) {
	a, backend := newAnalyser(t)

	block := []float64{0.1, -0.2, 0.3}
	if err := a.Write(block); err != nil {
		t.Fatal(err)
	}

	if len(backend.Writes) != 1 {
		t.Fatalf("writes = %d, want 1", len(backend.Writes))
	}

	testutil.RequireSliceNearlyEqual(t, backend.Writes[0], block, 0)
}

func TestDisposeGuards(t *testing.T) {
	a, backend := newAnalyser(t)

	if err := a.Dispose(); err != nil {
		t.Fatalf("Dispose: %v", err)
	}

	if !backend.Closed {
		t.Fatal("backend not closed")
	}

	checks := map[string]func() error{
		"Value":        func() error { _, err := a.Value(); return err },
		"Size":         func() error { _, err := a.Size(); return err },
		"SetSize":      func() error { return a.SetSize(512) },
		"Smoothing":    func() error { _, err := a.Smoothing(); return err },
		"SetSmoothing": func() error { return a.SetSmoothing(0.5) },
		"Type":         func() error { _, err := a.Type(); return err },
		"SetType":      func() error { return a.SetType(analyser.TypeWaveform) },
		"Write":        func() error { return a.Write([]float64{1}) },
		"Dispose":      a.Dispose,
	}

	for name, fn := range checks {
		if err := fn(); !errors.Is(err, analyser.ErrUseAfterDispose) {
			t.Fatalf("%s err = %v, want ErrUseAfterDispose", name, err)
		}
	}
}

func TestDisposeSurfacesBackendError(t *testing.T) {
	a, backend := newAnalyser(t)
	backend.CloseErr = errors.New("release failed")

	if err := a.Dispose(); !errors.Is(err, backend.CloseErr) {
		t.Fatalf("err = %v, want wrapped close error", err)
	}

	if err := a.Dispose(); !errors.Is(err, analyser.ErrUseAfterDispose) {
		t.Fatalf("second Dispose err = %v, want ErrUseAfterDispose", err)
	}
}

func TestParseType(t *testing.T) {
	tests := map[string]analyser.MeasurementType{
		"spectrum":  analyser.TypeSpectrum,
		"FFT":       analyser.TypeSpectrum,
		" waveform": analyser.TypeWaveform,
		"wave":      analyser.TypeWaveform,
	}

	for in, want := range tests {
		got, err := analyser.ParseType(in)
		if err != nil || got != want {
			t.Fatalf("ParseType(%q) = %v, %v; want %v", in, got, err, want)
		}
	}

	if _, err := analyser.ParseType("meter"); !errors.Is(err, analyser.ErrInvalidConfiguration) {
		t.Fatalf("err = %v, want ErrInvalidConfiguration", err)
	}

	if analyser.TypeWaveform.String() != "waveform" || analyser.MeasurementType(5).String() != "MeasurementType(5)" {
		t.Fatal("unexpected String() output")
	}
}

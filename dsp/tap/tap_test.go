package tap_test

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-analyser/dsp/analyser"
	"github.com/cwbudde/algo-analyser/dsp/analyser/analysertest"
	"github.com/cwbudde/algo-analyser/dsp/core"
	"github.com/cwbudde/algo-analyser/dsp/tap"
	"github.com/cwbudde/algo-analyser/internal/testutil"
)

func TestNewSpectrumDefaults(t *testing.T) {
	s, err := tap.NewSpectrum()
	if err != nil {
		t.Fatal(err)
	}

	size, err := s.Size()
	if err != nil || size != 1024 {
		t.Fatalf("Size() = %d, %v; want 1024", size, err)
	}

	smoothing, err := s.Smoothing()
	if err != nil || smoothing != 0.8 {
		t.Fatalf("Smoothing() = %v, %v; want 0.8", smoothing, err)
	}

	normal, err := s.NormalRange()
	if err != nil || normal {
		t.Fatalf("NormalRange() = %v, %v; want false", normal, err)
	}

	if s.SampleRate() != 48000 {
		t.Fatalf("SampleRate() = %v, want 48000", s.SampleRate())
	}

	v, err := s.Value()
	if err != nil {
		t.Fatal(err)
	}

	if len(v) != 1024 {
		t.Fatalf("len(Value()) = %d, want 1024", len(v))
	}
}

func TestNewSpectrumInvalidConfiguration(t *testing.T) {
	tests := []struct {
		name string
		opts []tap.Option
	}{
		{"size not power of two", []tap.Option{tap.WithSize(1000)}},
		{"size too small", []tap.Option{tap.WithSize(8)}},
		{"size too large", []tap.Option{tap.WithSize(32768)}},
		{"negative smoothing", []tap.Option{tap.WithSmoothing(-0.1)}},
		{"smoothing above one", []tap.Option{tap.WithSmoothing(1.5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tap.NewSpectrum(tt.opts...); !errors.Is(err, tap.ErrInvalidConfiguration) {
				t.Fatalf("NewSpectrum err = %v, want ErrInvalidConfiguration", err)
			}

			if _, err := tap.NewWaveform(tt.opts...); !errors.Is(err, tap.ErrInvalidConfiguration) {
				t.Fatalf("NewWaveform err = %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}

func TestProcessPassesSignalThrough(t *testing.T) {
	s, err := tap.NewSpectrum(tap.WithSize(256))
	if err != nil {
		t.Fatal(err)
	}

	src := testutil.DeterministicNoise(7, 0.9, 512)
	dst := make([]float64, len(src))

	n, err := s.Process(dst, src)
	if err != nil {
		t.Fatal(err)
	}

	if n != len(src) {
		t.Fatalf("Process returned %d, want %d", n, len(src))
	}

	testutil.RequireSliceNearlyEqual(t, dst, src, 0)

	short := make([]float64, 100)

	n, err = s.Process(short, src)
	if err != nil {
		t.Fatal(err)
	}

	if n != 100 {
		t.Fatalf("Process into short dst returned %d, want 100", n)
	}

	testutil.RequireSliceNearlyEqual(t, short, src[:100], 0)
}

func TestProcessFeedsOnlyCopiedSamples(t *testing.T) {
	backend := analysertest.New()

	w, err := tap.NewWaveform(tap.WithSize(16), tap.WithBackend(backend))
	if err != nil {
		t.Fatal(err)
	}

	src := testutil.Ones(40)
	if _, err := w.Process(make([]float64, 10), src); err != nil {
		t.Fatal(err)
	}

	if err := w.ProcessInPlace(src); err != nil {
		t.Fatal(err)
	}

	if len(backend.Writes) != 2 || len(backend.Writes[0]) != 10 || len(backend.Writes[1]) != 40 {
		t.Fatalf("backend writes = %d blocks, want [10 40]", len(backend.Writes))
	}

	for i, v := range src {
		if v != 1 {
			t.Fatalf("ProcessInPlace modified src[%d] = %v", i, v)
		}
	}
}

func TestSpectrumSineEndToEnd(t *testing.T) {
	const (
		sampleRate = 48000.0
		size       = 1024
		bin        = 64
	)

	s, err := tap.NewSpectrum(tap.WithSampleRate(sampleRate), tap.WithSmoothing(0))
	if err != nil {
		t.Fatal(err)
	}

	freq, err := s.FrequencyOf(bin)
	if err != nil {
		t.Fatal(err)
	}

	if freq != 1500 {
		t.Fatalf("FrequencyOf(%d) = %v, want 1500", bin, freq)
	}

	src := testutil.DeterministicSine(freq, sampleRate, 0.5, 2*size)
	dst := make([]float64, 128)

	for off := 0; off < len(src); off += len(dst) {
		if _, err := s.Process(dst, src[off:off+len(dst)]); err != nil {
			t.Fatal(err)
		}
	}

	v, err := s.Value()
	if err != nil {
		t.Fatal(err)
	}

	want := 20 * math.Log10(0.5)
	if math.Abs(v[bin]-want) > 1e-3 {
		t.Fatalf("peak bin = %.4f dB, want %.4f", v[bin], want)
	}

	if peak := testutil.ArgMax(v); peak != bin {
		t.Fatalf("peak at bin %d, want %d", peak, bin)
	}
}

func TestSpectrumNormalRange(t *testing.T) {
	backend := analysertest.New()

	s, err := tap.NewSpectrum(tap.WithSize(16), tap.WithSmoothing(0), tap.WithBackend(backend))
	if err != nil {
		t.Fatal(err)
	}

	frame := make([]float64, 16)
	for i := range frame {
		frame[i] = float64(i) / 16
	}

	backend.Push(analyser.TypeSpectrum, frame)

	db, err := s.Value()
	if err != nil {
		t.Fatal(err)
	}

	if err := s.SetNormalRange(true); err != nil {
		t.Fatal(err)
	}

	lin, err := s.Value()
	if err != nil {
		t.Fatal(err)
	}

	for i := range db {
		want := core.DBToLinear(db[i])
		if math.Abs(lin[i]-want) > 1e-12 {
			t.Fatalf("bin %d: linear %v, want 10^(%v/20) = %v", i, lin[i], db[i], want)
		}
	}

	// Non-silent bins recover the pushed magnitudes.
	testutil.RequireSliceNearlyEqual(t, lin[1:], frame[1:], 1e-12)

	if lin[0] <= 0 || lin[0] > 1e-6 {
		t.Fatalf("silent bin reads %v, want the floor gain", lin[0])
	}
}

func TestSpectrumValueReturnsFreshSlice(t *testing.T) {
	s, err := tap.NewSpectrum(tap.WithSize(32), tap.WithNormalRange(true))
	if err != nil {
		t.Fatal(err)
	}

	a, err := s.Value()
	if err != nil {
		t.Fatal(err)
	}

	a[0] = 42

	b, err := s.Value()
	if err != nil {
		t.Fatal(err)
	}

	if b[0] == 42 {
		t.Fatal("Value shares its buffer between calls")
	}
}

func TestSpectrumSmoothingAcrossFrames(t *testing.T) {
	backend := analysertest.New()

	s, err := tap.NewSpectrum(tap.WithSize(16), tap.WithSmoothing(0.5),
		tap.WithNormalRange(true), tap.WithBackend(backend))
	if err != nil {
		t.Fatal(err)
	}

	backend.Fill(analyser.TypeSpectrum, 1)

	if _, err := s.Value(); err != nil {
		t.Fatal(err)
	}

	backend.Fill(analyser.TypeSpectrum, 0.5)

	v, err := s.Value()
	if err != nil {
		t.Fatal(err)
	}

	testutil.RequireAll(t, v, 0.75, 1e-12)
}

func TestSetSizeAndSmoothing(t *testing.T) {
	s, err := tap.NewSpectrum()
	if err != nil {
		t.Fatal(err)
	}

	for _, size := range []int{16, 2048, 16384} {
		if err := s.SetSize(size); err != nil {
			t.Fatalf("SetSize(%d): %v", size, err)
		}

		v, err := s.Value()
		if err != nil {
			t.Fatal(err)
		}

		if len(v) != size {
			t.Fatalf("len(Value()) = %d after SetSize(%d)", len(v), size)
		}
	}

	if err := s.SetSize(100); !errors.Is(err, tap.ErrInvalidConfiguration) {
		t.Fatalf("SetSize(100) err = %v", err)
	}

	if size, _ := s.Size(); size != 16384 {
		t.Fatalf("failed SetSize changed size to %d", size)
	}

	if err := s.SetSmoothing(0); err != nil {
		t.Fatal(err)
	}

	if err := s.SetSmoothing(1); err != nil {
		t.Fatal(err)
	}

	if err := s.SetSmoothing(math.NaN()); !errors.Is(err, tap.ErrInvalidConfiguration) {
		t.Fatalf("SetSmoothing(NaN) err = %v", err)
	}

	if smoothing, _ := s.Smoothing(); smoothing != 1 {
		t.Fatalf("failed SetSmoothing changed smoothing to %v", smoothing)
	}
}

func TestFrequencyOfRange(t *testing.T) {
	s, err := tap.NewSpectrum(tap.WithSize(16), tap.WithSampleRate(32000))
	if err != nil {
		t.Fatal(err)
	}

	if f, err := s.FrequencyOf(15); err != nil || f != 15000 {
		t.Fatalf("FrequencyOf(15) = %v, %v; want 15000", f, err)
	}

	for _, idx := range []int{-1, 16} {
		if _, err := s.FrequencyOf(idx); err == nil {
			t.Fatalf("FrequencyOf(%d) expected error", idx)
		}
	}
}

func TestWaveformTap(t *testing.T) {
	w, err := tap.NewWaveform(tap.WithSize(16), tap.WithSmoothing(0))
	if err != nil {
		t.Fatal(err)
	}

	ramp := testutil.Ramp(64, 0, 1.0/64)
	out := make([]float64, len(ramp))
	if _, err := w.Process(out, ramp); err != nil {
		t.Fatal(err)
	}

	v, err := w.Value()
	if err != nil {
		t.Fatal(err)
	}

	testutil.RequireSliceNearlyEqual(t, v, ramp[48:], 0)
}

func TestDispose(t *testing.T) {
	backend := analysertest.New()

	s, err := tap.NewSpectrum(tap.WithSize(16), tap.WithBackend(backend))
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Dispose(); err != nil {
		t.Fatal(err)
	}

	if !backend.Closed {
		t.Fatal("Dispose did not close the backend")
	}

	buf := make([]float64, 4)

	checks := map[string]error{
		"Dispose":        s.Dispose(),
		"SetSize":        s.SetSize(32),
		"SetSmoothing":   s.SetSmoothing(0.1),
		"SetNormalRange": s.SetNormalRange(true),
		"ProcessInPlace": s.ProcessInPlace(buf),
	}

	_, checks["Process"] = s.Process(buf, buf)
	_, checks["Value"] = s.Value()
	_, checks["Size"] = s.Size()
	_, checks["Smoothing"] = s.Smoothing()
	_, checks["NormalRange"] = s.NormalRange()
	_, checks["FrequencyOf"] = s.FrequencyOf(0)

	for name, err := range checks {
		if !errors.Is(err, tap.ErrUseAfterDispose) {
			t.Errorf("%s after Dispose: err = %v, want ErrUseAfterDispose", name, err)
		}
	}
}

func TestDisposeReportsBackendError(t *testing.T) {
	closeErr := errors.New("device lost")
	backend := analysertest.New()
	backend.CloseErr = closeErr

	w, err := tap.NewWaveform(tap.WithSize(16), tap.WithBackend(backend))
	if err != nil {
		t.Fatal(err)
	}

	if err := w.Dispose(); !errors.Is(err, closeErr) {
		t.Fatalf("Dispose err = %v, want wrapped backend error", err)
	}

	if _, err := w.Value(); !errors.Is(err, tap.ErrUseAfterDispose) {
		t.Fatalf("Value after failed Dispose: %v", err)
	}
}

package window

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeHamming
	TypeBlackman
	TypeBlackmanHarris4Term
	TypeFlatTop
)

// Metadata holds spectral properties of a window type.
type Metadata struct {
	Name                string
	ENBW                float64
	HighestSidelobe     float64
	CoherentGain        float64
	CoherentGainSquared float64
}

// Cosine-sum coefficients: w(x) = sum(c[k] * cos(2*pi*k*x)), x in [0,1].
var (
	rectangularCoeffs     = []float64{1}
	hannCoeffs            = []float64{0.5, -0.5}
	hammingCoeffs         = []float64{0.54, -0.46}
	blackmanCoeffs        = []float64{0.42, -0.5, 0.08}
	blackmanHarris4Coeffs = []float64{0.35875, -0.48829, 0.14128, -0.01168}
	flatTopCoeffs         = []float64{0.21557895, -0.41663158, 0.277263158, -0.083578947, 0.006947368}
)

var coeffsByType = map[Type][]float64{
	TypeRectangular:         rectangularCoeffs,
	TypeHann:                hannCoeffs,
	TypeHamming:             hammingCoeffs,
	TypeBlackman:            blackmanCoeffs,
	TypeBlackmanHarris4Term: blackmanHarris4Coeffs,
	TypeFlatTop:             flatTopCoeffs,
}

var metadataByType = map[Type]Metadata{
	TypeRectangular:         {Name: "rectangular", ENBW: 1.0, HighestSidelobe: -13.3, CoherentGain: 1, CoherentGainSquared: 1},
	TypeHann:                {Name: "hann", ENBW: 1.5, HighestSidelobe: -31.5, CoherentGain: 0.5, CoherentGainSquared: 0.25},
	TypeHamming:             {Name: "hamming", ENBW: 1.3628, HighestSidelobe: -42.7, CoherentGain: 0.54, CoherentGainSquared: 0.2916},
	TypeBlackman:            {Name: "blackman", ENBW: 1.7268, HighestSidelobe: -58.1, CoherentGain: 0.42, CoherentGainSquared: 0.1764},
	TypeBlackmanHarris4Term: {Name: "blackman-harris", ENBW: 2.0044, HighestSidelobe: -92.0, CoherentGain: 0.35875, CoherentGainSquared: 0.128701},
	TypeFlatTop:             {Name: "flat-top", ENBW: 3.7702, HighestSidelobe: -93.6, CoherentGain: 0.21557895, CoherentGainSquared: 0.046474},
}

// Option configures window generation.
type Option func(*config)

type config struct {
	periodic bool
}

// WithPeriodic configures periodic form (FFT framing) instead of symmetric form.
func WithPeriodic() Option {
	return func(c *config) {
		c.periodic = true
	}
}

// Types returns all supported window types in declaration order.
func Types() []Type {
	return []Type{
		TypeRectangular,
		TypeHann,
		TypeHamming,
		TypeBlackman,
		TypeBlackmanHarris4Term,
		TypeFlatTop,
	}
}

// String returns the window's short name.
func (t Type) String() string {
	if m, ok := metadataByType[t]; ok {
		return m.Name
	}

	return fmt.Sprintf("window(%d)", int(t))
}

// Parse resolves a window name as printed by [Type.String]. Matching is
// case-insensitive and ignores surrounding whitespace.
func Parse(name string) (Type, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, t := range Types() {
		if metadataByType[t].Name == name {
			return t, nil
		}
	}

	return 0, fmt.Errorf("unsupported window: %q", name)
}

// Generate returns window coefficients of the given length. Unknown types
// produce a rectangular window. A non-positive length returns nil.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	coeffs, ok := coeffsByType[t]
	if !ok {
		coeffs = rectangularCoeffs
	}

	out := make([]float64, length)
	for i := range out {
		out[i] = cosineFromCoeffs(samplePosition(i, length, cfg.periodic), coeffs)
	}

	return out
}

// Apply multiplies buf in-place by the selected window.
func Apply(t Type, buf []float64, opts ...Option) {
	if len(buf) == 0 {
		return
	}

	vecmath.MulBlockInPlace(buf, Generate(t, len(buf), opts...))
}

// ApplyCoefficientsInPlace multiplies samples with precomputed coefficients.
func ApplyCoefficientsInPlace(samples, coeffs []float64) error {
	if len(samples) != len(coeffs) {
		return errMismatchedLength
	}

	vecmath.MulBlockInPlace(samples, coeffs)

	return nil
}

// Info returns static metadata for a window type.
func Info(t Type) Metadata {
	return metadataByType[t]
}

// CoherentGain returns sum(w[n]) / N for the given coefficients.
func CoherentGain(coeffs []float64) (float64, error) {
	if err := validateLength(len(coeffs)); err != nil {
		return 0, err
	}

	gain := vecmath.Sum(coeffs) / float64(len(coeffs))
	if gain == 0 {
		return 0, errZeroCoherentGain
	}

	return gain, nil
}

// EquivalentNoiseBandwidth returns the ENBW in bins for a window.
func EquivalentNoiseBandwidth(coeffs []float64) (float64, error) {
	if len(coeffs) == 0 {
		return 0, errEmptyCoeffs
	}

	sum := vecmath.Sum(coeffs)
	if sum == 0 {
		return 0, errZeroCoherentGain
	}

	sumSquares := vecmath.DotProduct(coeffs, coeffs)

	return float64(len(coeffs)) * sumSquares / (sum * sum), nil
}

func cosineFromCoeffs(x float64, coeffs []float64) float64 {
	phase := 2 * math.Pi * x

	sum := 0.0
	for k, c := range coeffs {
		sum += c * math.Cos(float64(k)*phase)
	}

	return sum
}

func samplePosition(n, size int, periodic bool) float64 {
	if size <= 1 {
		return 0
	}

	den := float64(size - 1)
	if periodic {
		den = float64(size)
	}

	return float64(n) / den
}

package core

import "math"

const defaultEpsilon = 1e-12

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	return math.Max(min, math.Min(max, value))
}

// NearlyEqual reports whether a and b are equal within eps, using a relative
// comparison for large magnitudes.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return false
	}

	return diff/largest <= eps
}

// IsPowerOfTwo reports whether n is a positive integral power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// DBToLinear converts dB to linear gain (20*log10 convention): 10^(db/20).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts linear gain to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}

// DBToLinearBlock writes DBToLinear(src[i]) to dst[i] for the common length
// of dst and src and returns the number of converted elements.
func DBToLinearBlock(dst, src []float64) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = DBToLinear(src[i])
	}

	return n
}

// LinearToDBBlock writes the dB value of each non-negative magnitude in src to
// dst, never going below floor. Zero and negative magnitudes map to floor.
func LinearToDBBlock(dst, src []float64, floor float64) int {
	n := min(len(dst), len(src))
	for i := range n {
		v := src[i]
		if v <= 0 {
			dst[i] = floor
			continue
		}

		dst[i] = math.Max(floor, 20*math.Log10(v))
	}

	return n
}

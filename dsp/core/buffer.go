package core

// EnsureLen returns a slice of length n, reusing buf's capacity when it is
// large enough. Reused elements keep their previous values.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}

	if cap(buf) >= n {
		return buf[:n]
	}

	return make([]float64, n)
}

// Zero sets all values in buf to 0.
func Zero(buf []float64) {
	clear(buf)
}

// CopyInto copies the common prefix of src into dst and returns its length.
// It is the pass-through primitive used by signal taps.
func CopyInto(dst, src []float64) int {
	return copy(dst, src)
}

// Clone returns a newly allocated copy of src. A nil src yields nil.
func Clone(src []float64) []float64 {
	if src == nil {
		return nil
	}

	out := make([]float64, len(src))
	copy(out, src)

	return out
}

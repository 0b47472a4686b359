package analyser

// Backend is the analysis primitive an [Analyser] wraps. It is the seam
// across which FFT implementations are substituted.
//
// Write is called with each block of the passing signal; every call that
// carries samples completes a frame. Read copies the newest frame into dst
// and returns that frame's sequence number. Spectrum frames are linear,
// amplitude-normalised magnitudes; waveform frames are raw samples.
// Read must not block waiting for new input.
type Backend interface {
	Resize(size int) error
	Write(block []float64)
	Read(t MeasurementType, dst []float64) uint64
	Close() error
}

// Package analyser provides a configurable view onto the spectral or
// time-domain content of a signal as fixed-size snapshots.
//
// An [Analyser] owns a [Backend] that receives a copy of the passing signal
// (via [Analyser.Write]) and exposes the newest completed frame. The
// analyser validates size and smoothing, blends consecutive frames with an
// exponential moving average and converts spectra to decibels.
//
// Snapshot length always equals the configured size. In spectrum mode the
// default [FFTBackend] transforms 2*size samples and reports the first size
// bins, from DC up to one bin below Nyquist. In waveform mode the snapshot
// holds the newest size samples.
//
// Frame production and snapshot reads may happen on different goroutines as
// long as the backend supports it ([FFTBackend] does). The Analyser itself
// is not safe for concurrent use.
package analyser

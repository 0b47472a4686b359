// Package tap provides pass-through measurement nodes.
//
// A tap forwards its input to its output unchanged and feeds a copy of the
// same signal to an owned [analyser.Analyser]. [Spectrum] reports per-bin
// levels in decibels or, with normal range enabled, as linear gain;
// [Waveform] reports the newest samples.
//
// Taps are driven by the host's processing loop through Process and read
// from any point in between through Value. Disposing a tap disposes its
// analyser; disconnecting it from the host graph is up to the host.
package tap

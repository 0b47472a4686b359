// Package audiofile decodes audio files into mono float64 sample streams.
package audiofile

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
)

var (
	errUnknownFormat = errors.New("unsupported audio format")
	errNoExtension   = errors.New("cannot determine audio format")
	errInvalidFile   = errors.New("invalid audio file")
)

// Stream is a decoded audio file. Read returns channel-averaged (mono)
// samples in [-1, 1).
type Stream interface {
	// Read fills dst with the next samples and returns how many were
	// written. It returns io.EOF once the stream is exhausted.
	Read(dst []float64) (int, error)
	SampleRate() int
	Channels() int
	BitDepth() int
	// Frames returns the length in samples per channel, or 0 if unknown.
	Frames() int64
	Close() error
}

// Decoder opens files of one or more formats.
type Decoder interface {
	Open(path string) (Stream, error)
	Formats() []string
}

// Registry picks a Decoder by file extension.
type Registry struct {
	decoders map[string]Decoder
}

// NewRegistry returns a registry with the WAV and FLAC decoders.
func NewRegistry() *Registry {
	r := &Registry{decoders: make(map[string]Decoder)}
	r.Register(WAVDecoder{})
	r.Register(FLACDecoder{})

	return r
}

// Register adds d for every format it reports, replacing earlier decoders.
func (r *Registry) Register(d Decoder) {
	for _, format := range d.Formats() {
		r.decoders[strings.ToLower(format)] = d
	}
}

// Formats returns the registered extensions, sorted.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.decoders))
	for format := range r.decoders {
		out = append(out, format)
	}

	slices.Sort(out)

	return out
}

// Decoder returns the decoder registered for path's extension.
func (r *Registry) Decoder(path string) (Decoder, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return nil, fmt.Errorf("%w: %s", errNoExtension, path)
	}

	d, ok := r.decoders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errUnknownFormat, ext)
	}

	return d, nil
}

// Open decodes path with the decoder registered for its extension.
func (r *Registry) Open(path string) (Stream, error) {
	d, err := r.Decoder(path)
	if err != nil {
		return nil, err
	}

	return d.Open(path)
}

// ReadAll drains s.
func ReadAll(s Stream) ([]float64, error) {
	var out []float64

	buf := make([]float64, 4096)
	for {
		n, err := s.Read(buf)
		out = append(out, buf[:n]...)

		if errors.Is(err, io.EOF) {
			return out, nil
		}

		if err != nil {
			return out, err
		}
	}
}

// fullScale returns the integer magnitude that maps to 1.0.
func fullScale(bitDepth int) float64 {
	if bitDepth <= 0 {
		return 1
	}

	return float64(int64(1) << uint(bitDepth-1))
}

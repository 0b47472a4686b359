package audiofile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mewkiz/flac"
)

// FLACDecoder decodes FLAC files.
type FLACDecoder struct{}

// Formats implements [Decoder].
func (FLACDecoder) Formats() []string {
	return []string{"flac"}
}

// Open implements [Decoder].
func (FLACDecoder) Open(path string) (Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open flac: %w", err)
	}

	stream, err := flac.New(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: flac %s: %w", errInvalidFile, path, err)
	}

	info := stream.Info
	if info == nil || info.NChannels == 0 {
		stream.Close()
		return nil, fmt.Errorf("%w: flac %s has no stream info", errInvalidFile, path)
	}

	return &flacStream{
		stream:   stream,
		channels: int(info.NChannels),
		rate:     int(info.SampleRate),
		bits:     int(info.BitsPerSample),
		frames:   int64(info.NSamples),
	}, nil
}

type flacStream struct {
	stream *flac.Stream

	// Mono samples of the current frame not yet returned.
	pending []float64

	channels int
	rate     int
	bits     int
	frames   int64
}

func (s *flacStream) SampleRate() int { return s.rate }
func (s *flacStream) Channels() int   { return s.channels }
func (s *flacStream) BitDepth() int   { return s.bits }
func (s *flacStream) Frames() int64   { return s.frames }

func (s *flacStream) Read(dst []float64) (int, error) {
	written := 0

	for written < len(dst) {
		if len(s.pending) == 0 {
			if err := s.next(); err != nil {
				if written > 0 && errors.Is(err, io.EOF) {
					return written, nil
				}

				return written, err
			}
		}

		n := copy(dst[written:], s.pending)
		s.pending = s.pending[n:]
		written += n
	}

	return written, nil
}

// next decodes one FLAC frame into pending.
func (s *flacStream) next() error {
	frame, err := s.stream.ParseNext()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return io.EOF
		}

		return fmt.Errorf("flac read: %w", err)
	}

	if len(frame.Subframes) == 0 {
		return nil
	}

	n := len(frame.Subframes[0].Samples)
	scale := 1 / (fullScale(s.bits) * float64(len(frame.Subframes)))

	out := make([]float64, n)
	for _, sub := range frame.Subframes {
		for i, v := range sub.Samples[:n] {
			out[i] += float64(v)
		}
	}

	for i := range out {
		out[i] *= scale
	}

	s.pending = out

	return nil
}

func (s *flacStream) Close() error {
	return s.stream.Close()
}

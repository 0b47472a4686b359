package audiofile

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAVDecoder decodes PCM WAV files.
type WAVDecoder struct{}

// Formats implements [Decoder].
func (WAVDecoder) Formats() []string {
	return []string{"wav", "wave"}
}

// Open implements [Decoder].
func (WAVDecoder) Open(path string) (Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wav: %w", err)
	}

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		f.Close()
		return nil, fmt.Errorf("%w: %s is not a PCM wav file", errInvalidFile, path)
	}

	if err := dec.FwdToPCM(); err != nil {
		f.Close()
		return nil, fmt.Errorf("wav %s: %w", path, err)
	}

	s := &wavStream{
		file:     f,
		dec:      dec,
		channels: int(dec.NumChans),
		rate:     int(dec.SampleRate),
		bits:     int(dec.BitDepth),
	}

	if frameBytes := int64(s.channels) * int64(s.bits/8); frameBytes > 0 {
		s.frames = dec.PCMLen() / frameBytes
	}

	return s, nil
}

type wavStream struct {
	file *os.File
	dec  *wav.Decoder
	buf  *audio.IntBuffer

	channels int
	rate     int
	bits     int
	frames   int64
}

func (s *wavStream) SampleRate() int { return s.rate }
func (s *wavStream) Channels() int   { return s.channels }
func (s *wavStream) BitDepth() int   { return s.bits }
func (s *wavStream) Frames() int64   { return s.frames }

func (s *wavStream) Read(dst []float64) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	want := len(dst) * s.channels
	if s.buf == nil || cap(s.buf.Data) < want {
		s.buf = &audio.IntBuffer{
			Format: &audio.Format{NumChannels: s.channels, SampleRate: s.rate},
			Data:   make([]int, want),
		}
	}

	s.buf.Data = s.buf.Data[:want]

	n, err := s.dec.PCMBuffer(s.buf)
	if err != nil {
		return 0, fmt.Errorf("wav read: %w", err)
	}

	frames := n / s.channels
	if frames == 0 {
		return 0, io.EOF
	}

	// 8-bit WAV is unsigned.
	offset := 0
	if s.bits == 8 {
		offset = 128
	}

	scale := 1 / (fullScale(s.bits) * float64(s.channels))

	for i := range frames {
		acc := 0
		for _, v := range s.buf.Data[i*s.channels : (i+1)*s.channels] {
			acc += v - offset
		}

		dst[i] = float64(acc) * scale
	}

	return frames, nil
}

func (s *wavStream) Close() error {
	return s.file.Close()
}

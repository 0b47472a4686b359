package audiofile

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-analyser/dsp/core"
)

// WriteWAV writes mono samples in [-1, 1] to path as integer PCM of the
// given bit depth (8, 16, 24 or 32). Out-of-range samples are clipped.
func WriteWAV(path string, samples []float64, sampleRate, bitDepth int) error {
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return fmt.Errorf("wav bit depth must be 8, 16, 24 or 32: %d", bitDepth)
	}

	if sampleRate <= 0 {
		return fmt.Errorf("wav sample rate must be > 0: %d", sampleRate)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}

	full := fullScale(bitDepth)

	offset := 0
	if bitDepth == 8 {
		offset = 128
	}

	data := make([]int, len(samples))
	for i, v := range samples {
		q := math.Round(core.Clamp(v, -1, 1) * full)
		data[i] = int(math.Min(q, full-1)) + offset
	}

	enc := wav.NewEncoder(f, sampleRate, bitDepth, 1, 1)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}

	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("encode wav: %w", err)
	}

	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("finish wav: %w", err)
	}

	return f.Close()
}

package spectral

import (
	"cmp"
	"math"
	"slices"

	"github.com/cwbudde/algo-analyser/dsp/core"
)

// Peak is a local maximum of a magnitude snapshot.
//
//nolint:revive
type Peak struct {
	Bin       int     `json:"bin"        yaml:"bin"`
	Frequency float64 `json:"frequency"  yaml:"frequency"`
	Level     float64 `json:"level"      yaml:"level"`
	Level_dB  float64 `json:"level_db"   yaml:"level_db"`
}

// Peaks returns up to n local maxima of mag, loudest first. A bin is a local
// maximum when it is strictly greater than both neighbours; the edge bins
// compare against their single neighbour. Silent bins are never peaks.
func Peaks(mag []float64, sampleRate float64, n int) []Peak {
	if n <= 0 || len(mag) == 0 {
		return nil
	}

	binHz := BinHz(len(mag), sampleRate)

	var out []Peak

	for i, v := range mag {
		if v <= 0 {
			continue
		}

		left := math.Inf(-1)
		if i > 0 {
			left = mag[i-1]
		}

		right := math.Inf(-1)
		if i < len(mag)-1 {
			right = mag[i+1]
		}

		if v > left && v > right {
			out = append(out, Peak{
				Bin:       i,
				Frequency: float64(i) * binHz,
				Level:     v,
				Level_dB:  core.LinearToDB(v),
			})
		}
	}

	slices.SortStableFunc(out, func(a, b Peak) int {
		return cmp.Compare(b.Level, a.Level)
	})

	if len(out) > n {
		out = out[:n]
	}

	return out
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-analyser/dsp/analyser"
	"github.com/cwbudde/algo-analyser/internal/config"
	"github.com/cwbudde/algo-analyser/stats/level"
	"github.com/cwbudde/algo-analyser/stats/spectral"
)

type report struct {
	File        string  `json:"file"         yaml:"file"`
	SampleRate  int     `json:"sample_rate"  yaml:"sample_rate"`
	Channels    int     `json:"channels"     yaml:"channels"`
	Frames      int64   `json:"frames"       yaml:"frames"`
	Duration    float64 `json:"duration_s"   yaml:"duration_s"`
	Type        string  `json:"type"         yaml:"type"`
	Size        int     `json:"size"         yaml:"size"`
	Smoothing   float64 `json:"smoothing"    yaml:"smoothing"`
	NormalRange bool    `json:"normal_range" yaml:"normal_range"`
	Window      string  `json:"window"       yaml:"window"`
	BlockSize   int     `json:"block_size"   yaml:"block_size"`
	Blocks      int     `json:"blocks"       yaml:"blocks"`

	Level     *levelReport     `json:"level"     yaml:"level"`
	Snapshots []snapshotReport `json:"snapshots" yaml:"snapshots"`
}

type snapshotReport struct {
	Index    int             `json:"index"              yaml:"index"`
	Time     float64         `json:"time_s"             yaml:"time_s"`
	Spectrum *spectrumReport `json:"spectrum,omitempty" yaml:"spectrum,omitempty"`
	Level    *levelReport    `json:"level,omitempty"    yaml:"level,omitempty"`
}

type spectrumReport struct {
	PeakHz   float64         `json:"peak_hz"    yaml:"peak_hz"`
	PeakDB   float64         `json:"peak_db"    yaml:"peak_db"`
	Centroid float64         `json:"centroid_hz" yaml:"centroid_hz"`
	Spread   float64         `json:"spread_hz"  yaml:"spread_hz"`
	Flatness float64         `json:"flatness"   yaml:"flatness"`
	Rolloff  float64         `json:"rolloff_hz" yaml:"rolloff_hz"`
	Peaks    []spectral.Peak `json:"peaks"      yaml:"peaks"`
}

type levelReport struct {
	RMSDB   float64 `json:"rms_db"   yaml:"rms_db"`
	PeakDB  float64 `json:"peak_db"  yaml:"peak_db"`
	Crest   float64 `json:"crest"    yaml:"crest"`
	DC      float64 `json:"dc"       yaml:"dc"`
	Samples int     `json:"samples"  yaml:"samples"`
}

// floorDB keeps dB values encodable: silence reads the analyser floor
// instead of -Inf.
func floorDB(v float64) float64 {
	if math.IsNaN(v) || v < analyser.MinDecibels {
		return analyser.MinDecibels
	}

	return v
}

func newSpectrumReport(mag []float64, sampleRate float64, peaks int) *spectrumReport {
	st := spectral.Calculate(mag, sampleRate)

	p := spectral.Peaks(mag, sampleRate, peaks)
	for i := range p {
		p[i].Level_dB = floorDB(p[i].Level_dB)
	}

	return &spectrumReport{
		PeakHz:   spectral.PeakFrequency(mag, sampleRate),
		PeakDB:   floorDB(st.Peak_dB),
		Centroid: st.Centroid,
		Spread:   st.Spread,
		Flatness: st.Flatness,
		Rolloff:  st.Rolloff,
		Peaks:    p,
	}
}

func newLevelReport(s level.Stats) *levelReport {
	return &levelReport{
		RMSDB:   floorDB(s.RMS_dB),
		PeakDB:  floorDB(s.Peak_dB),
		Crest:   s.CrestFactor,
		DC:      s.DC,
		Samples: s.Length,
	}
}

func writeReport(w io.Writer, format string, rep *report) error {
	switch format {
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(rep)
	case config.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(rep); err != nil {
			return err
		}

		return enc.Close()
	case config.OutputTable, "":
		return writeTable(w, rep)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeTable(w io.Writer, rep *report) error {
	fmt.Fprintf(w, "%s: %d Hz, %d ch, %.2f s, %d blocks of %d\n",
		rep.File, rep.SampleRate, rep.Channels, rep.Duration, rep.Blocks, rep.BlockSize)
	fmt.Fprintf(w, "%s tap: size %d, smoothing %.2f, window %s, normal range %t\n",
		rep.Type, rep.Size, rep.Smoothing, rep.Window, rep.NormalRange)
	fmt.Fprintf(w, "level: rms %.1f dB, peak %.1f dB, crest %.2f\n\n",
		rep.Level.RMSDB, rep.Level.PeakDB, rep.Level.Crest)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	if rep.Type == analyser.TypeWaveform.String() {
		fmt.Fprintln(tw, "#\tTime(s)\tRMS(dB)\tPeak(dB)\tCrest\t")

		for _, sn := range rep.Snapshots {
			l := sn.Level
			fmt.Fprintf(tw, "%d\t%.3f\t%.1f\t%.1f\t%.2f\t\n", sn.Index, sn.Time, l.RMSDB, l.PeakDB, l.Crest)
		}

		return tw.Flush()
	}

	fmt.Fprintln(tw, "#\tTime(s)\tPeak(Hz)\tPeak(dB)\tCentroid(Hz)\tFlatness\tRolloff(Hz)\t")

	for _, sn := range rep.Snapshots {
		s := sn.Spectrum
		fmt.Fprintf(tw, "%d\t%.3f\t%.1f\t%.1f\t%.1f\t%.3f\t%.1f\t\n",
			sn.Index, sn.Time, s.PeakHz, s.PeakDB, s.Centroid, s.Flatness, s.Rolloff)
	}

	return tw.Flush()
}

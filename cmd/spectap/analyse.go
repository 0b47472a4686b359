package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-analyser/dsp/analyser"
	"github.com/cwbudde/algo-analyser/dsp/analyser/godsp"
	"github.com/cwbudde/algo-analyser/dsp/core"
	"github.com/cwbudde/algo-analyser/dsp/tap"
	"github.com/cwbudde/algo-analyser/dsp/window"
	"github.com/cwbudde/algo-analyser/internal/audiofile"
	"github.com/cwbudde/algo-analyser/internal/config"
	"github.com/cwbudde/algo-analyser/stats/level"
	"github.com/cwbudde/algo-analyser/stats/spectral"
)

func newAnalyseCmd(a *app) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:     "analyse <file>",
		Aliases: []string{"analyze"},
		Short:   "Stream an audio file through a tap and report its snapshots",
		Example: `  spectap analyse tone.wav
  spectap analyse --size 4096 --smoothing 0 --every 32 -o json song.flac
  spectap analyse --type waveform --size 256 speech.wav`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var progress io.Writer
			if !quiet {
				progress = cmd.ErrOrStderr()
			}

			return a.analyse(cmd.Context(), args[0], cmd.OutOrStdout(), progress)
		},
	}

	d := config.Default().Analyser

	f := cmd.Flags()
	f.String("type", d.Type, "measurement type (spectrum, waveform)")
	f.Int("size", d.Size, "snapshot size, a power of two in [16, 16384]")
	f.Float64("smoothing", d.Smoothing, "weight of the previous snapshot in [0, 1]")
	f.Bool("normal-range", d.NormalRange, "report spectra as linear gain instead of dB")
	f.String("window", d.Window, "analysis window (see `spectap windows`)")
	f.String("planner", d.Planner, "FFT implementation (algofft, godsp)")
	f.Int("block-size", d.BlockSize, "samples per processing block")
	f.Int("every", d.Every, "take a snapshot every N blocks")
	f.Int("peaks", d.Peaks, "spectral peaks listed per snapshot")
	f.BoolVarP(&quiet, "quiet", "q", false, "hide the progress bar")

	return cmd
}

func (a *app) analyse(ctx context.Context, path string, out, progress io.Writer) error {
	s, err := audiofile.NewRegistry().Open(path)
	if err != nil {
		return err
	}
	defer s.Close()

	a.log.Info("decoding",
		zap.String("file", path),
		zap.Int("sample_rate", s.SampleRate()),
		zap.Int("channels", s.Channels()),
		zap.Int("bit_depth", s.BitDepth()),
		zap.Int64("frames", s.Frames()),
	)

	start := time.Now()

	rep, err := run(ctx, s, a.cfg.Analyser, a.log, progress)
	if err != nil {
		return err
	}

	rep.File = path

	a.log.Info("analysed",
		zap.String("file", path),
		zap.Int("blocks", rep.Blocks),
		zap.Int("snapshots", len(rep.Snapshots)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return writeReport(out, a.cfg.Output, rep)
}

// snapshotTap is the part of a tap the analyse loop drives.
type snapshotTap interface {
	Process(dst, src []float64) (int, error)
	Value() ([]float64, error)
	Dispose() error
}

func newTap(ac config.AnalyserConfig, sampleRate float64) (snapshotTap, analyser.MeasurementType, error) {
	t, err := analyser.ParseType(ac.Type)
	if err != nil {
		return nil, 0, err
	}

	wt, err := window.Parse(ac.Window)
	if err != nil {
		return nil, 0, err
	}

	backendOpts := []analyser.FFTOption{analyser.WithWindow(wt)}
	if ac.Planner == config.PlannerGoDSP {
		backendOpts = append(backendOpts, analyser.WithPlanner(godsp.Planner))
	}

	opts := []tap.Option{
		tap.WithSize(ac.Size),
		tap.WithSmoothing(ac.Smoothing),
		tap.WithNormalRange(ac.NormalRange),
		tap.WithSampleRate(sampleRate),
		tap.WithBackend(analyser.NewFFTBackend(backendOpts...)),
	}

	if t == analyser.TypeWaveform {
		w, err := tap.NewWaveform(opts...)
		return w, t, err
	}

	s, err := tap.NewSpectrum(opts...)

	return s, t, err
}

// run pushes s through a tap block by block, the way a host graph would, and
// snapshots the tap every ac.Every blocks and once more after the last
// partial interval.
func run(ctx context.Context, s audiofile.Stream, ac config.AnalyserConfig, log *zap.Logger, progress io.Writer) (_ *report, err error) {
	stream := core.ProcessorConfig{
		SampleRate: float64(s.SampleRate()),
		BlockSize:  ac.BlockSize,
	}
	if err := stream.Validate(); err != nil {
		return nil, fmt.Errorf("stream: %w", err)
	}

	if ac.Every <= 0 {
		return nil, fmt.Errorf("snapshot interval must be > 0: %d", ac.Every)
	}

	sampleRate := stream.SampleRate

	node, t, err := newTap(ac, sampleRate)
	if err != nil {
		return nil, err
	}

	defer func() {
		if derr := node.Dispose(); derr != nil && err == nil {
			err = fmt.Errorf("dispose tap: %w", derr)
		}
	}()

	rep := &report{
		SampleRate:  s.SampleRate(),
		Channels:    s.Channels(),
		Frames:      s.Frames(),
		Type:        t.String(),
		Size:        ac.Size,
		Smoothing:   ac.Smoothing,
		NormalRange: ac.NormalRange,
		Window:      ac.Window,
		BlockSize:   stream.BlockSize,
	}

	bar := newProgress(progress, s.Frames())

	src := make([]float64, stream.BlockSize)
	dst := make([]float64, stream.BlockSize)

	var (
		meter   level.Meter
		samples int
	)

	snap := func() error {
		v, err := node.Value()
		if err != nil {
			return err
		}

		sn := snapshotReport{
			Index: len(rep.Snapshots),
			Time:  float64(samples) / sampleRate,
		}

		if t == analyser.TypeWaveform {
			sn.Level = newLevelReport(level.Calculate(v))
		} else {
			mag := v
			if !ac.NormalRange {
				mag = spectral.FromDecibels(nil, v)
			}

			sn.Spectrum = newSpectrumReport(mag, sampleRate, ac.Peaks)
		}

		log.Debug("snapshot", zap.Int("index", sn.Index), zap.Float64("time_s", sn.Time))
		rep.Snapshots = append(rep.Snapshots, sn)

		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, readErr := s.Read(src)
		if n > 0 {
			if _, err := node.Process(dst[:n], src[:n]); err != nil {
				return nil, err
			}

			meter.Update(dst[:n])

			samples += n
			rep.Blocks++
			bar.add(n)

			if rep.Blocks%ac.Every == 0 {
				if err := snap(); err != nil {
					return nil, err
				}
			}
		}

		if errors.Is(readErr, io.EOF) {
			break
		}

		if readErr != nil {
			return nil, readErr
		}
	}

	bar.finish()

	if rep.Blocks%ac.Every != 0 {
		if err := snap(); err != nil {
			return nil, err
		}
	}

	rep.Duration = float64(samples) / sampleRate
	rep.Level = newLevelReport(meter.Result())

	return rep, nil
}

// progress wraps an optional progress bar.
type progress struct {
	bar *progressbar.ProgressBar
}

func newProgress(w io.Writer, frames int64) progress {
	if w == nil {
		return progress{}
	}

	if frames <= 0 {
		frames = -1
	}

	return progress{bar: progressbar.NewOptions64(frames,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("analysing"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowIts(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)}
}

func (p progress) add(n int) {
	if p.bar != nil {
		_ = p.bar.Add(n)
	}
}

func (p progress) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

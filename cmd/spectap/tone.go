package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-analyser/dsp/core"
	"github.com/cwbudde/algo-analyser/dsp/signal"
	"github.com/cwbudde/algo-analyser/internal/audiofile"
	"github.com/cwbudde/algo-vecmath"
)

type toneOptions struct {
	freqs      []float64
	bins       []int
	amplitude  float64
	noise      float64
	seed       int64
	duration   time.Duration
	sampleRate int
	bitDepth   int
}

func newToneCmd(a *app) *cobra.Command {
	o := toneOptions{}

	cmd := &cobra.Command{
		Use:   "tone <out.wav>",
		Short: "Write a test signal to a mono WAV file",
		Example: `  spectap tone --freq 1000 tone.wav
  spectap tone --bin 64 --bin 200 --noise 0.01 bins.wav
  spectap tone --freq 440 --freq 880 --duration 5s --bits 24 chord.wav`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			samples, err := o.generate(a.cfg.Analyser.Size)
			if err != nil {
				return err
			}

			if err := audiofile.WriteWAV(args[0], samples, o.sampleRate, o.bitDepth); err != nil {
				return err
			}

			a.log.Info("wrote tone",
				zap.String("file", args[0]),
				zap.Int("samples", len(samples)),
				zap.Int("sample_rate", o.sampleRate),
			)

			return nil
		},
	}

	f := cmd.Flags()
	f.Float64SliceVar(&o.freqs, "freq", nil, "tone frequency in Hz (repeatable)")
	f.IntSliceVar(&o.bins, "bin", nil, "tone centred on this analyser bin for the configured size (repeatable)")
	f.Float64Var(&o.amplitude, "amplitude", 0.5, "amplitude of each tone")
	f.Float64Var(&o.noise, "noise", 0, "white noise amplitude")
	f.Int64Var(&o.seed, "seed", 1, "noise seed")
	f.DurationVar(&o.duration, "duration", time.Second, "signal length")
	f.IntVar(&o.sampleRate, "sample-rate", 48000, "sample rate in Hz")
	f.IntVar(&o.bitDepth, "bits", 16, "bit depth (8, 16, 24, 32)")
	f.Int("size", 1024, "analyser size used to place --bin tones")

	return cmd
}

func (o toneOptions) generate(size int) ([]float64, error) {
	if o.sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be > 0: %d", o.sampleRate)
	}

	n := int(o.duration.Seconds() * float64(o.sampleRate))

	g := signal.NewGenerator(
		[]core.ProcessorOption{core.WithSampleRate(float64(o.sampleRate))},
		signal.WithSeed(o.seed),
	)

	tones := make([]signal.Tone, 0, len(o.freqs)+len(o.bins))
	for _, f := range o.freqs {
		tones = append(tones, signal.Tone{Frequency: f, Amplitude: o.amplitude})
	}

	for _, b := range o.bins {
		tones = append(tones, signal.Tone{
			Frequency: signal.BinFrequency(b, size, g.SampleRate()),
			Amplitude: o.amplitude,
		})
	}

	out, err := g.Tones(tones, n)
	if err != nil {
		return nil, err
	}

	if o.noise > 0 {
		noise, err := g.WhiteNoise(o.noise, n)
		if err != nil {
			return nil, err
		}

		signal.Mix(out, noise)
	}

	// Keep stacked tones inside full scale.
	if vecmath.MaxAbs(out) > 1 {
		return signal.Normalize(out, 1)
	}

	return out, nil
}

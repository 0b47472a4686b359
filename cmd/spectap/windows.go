package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-analyser/dsp/window"
)

func newWindowsCmd() *cobra.Command {
	var (
		size      int
		symmetric bool
		list      bool
	)

	cmd := &cobra.Command{
		Use:   "windows [window-name ...]",
		Short: "List analysis windows and their spectral properties",
		Example: `  spectap windows
  spectap windows --size 4096 hann blackman
  spectap windows --list`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if list {
				for _, t := range window.Types() {
					fmt.Fprintln(out, t)
				}

				return nil
			}

			types, err := resolveWindows(args)
			if err != nil {
				return err
			}

			var opts []window.Option
			if !symmetric {
				opts = append(opts, window.WithPeriodic())
			}

			return printWindows(out, types, size, opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&size, "size", 2048, "window length in samples (the transform length of a tap is 2*size)")
	f.BoolVar(&symmetric, "symmetric", false, "use the symmetric form instead of the periodic (FFT) form")
	f.BoolVar(&list, "list", false, "list window names only")

	return cmd
}

func resolveWindows(names []string) ([]window.Type, error) {
	if len(names) == 0 {
		return window.Types(), nil
	}

	types := make([]window.Type, 0, len(names))

	for _, name := range names {
		t, err := window.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("%w (use --list to see available)", err)
		}

		types = append(types, t)
	}

	return types, nil
}

func printWindows(w io.Writer, types []window.Type, size int, opts []window.Option) error {
	if size <= 0 {
		return fmt.Errorf("window size must be > 0: %d", size)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Window\tSize\tCoherent Gain\tENBW [bins]\tSidelobe [dB]")
	fmt.Fprintln(tw, "------\t----\t-------------\t-----------\t-------------")

	for _, t := range types {
		coeffs := window.Generate(t, size, opts...)

		cg, err := window.CoherentGain(coeffs)
		if err != nil {
			return fmt.Errorf("%s: %w", t, err)
		}

		enbw, err := window.EquivalentNoiseBandwidth(coeffs)
		if err != nil {
			return fmt.Errorf("%s: %w", t, err)
		}

		fmt.Fprintf(tw, "%s\t%d\t%.6f\t%.4f\t%.1f\n", t, size, cg, enbw, window.Info(t).HighestSidelobe)
	}

	return tw.Flush()
}

// Command spectap streams audio files through a spectrum or waveform tap and
// reports what the analyser sees.
//
// Usage:
//
//	spectap analyse [flags] <file.wav|file.flac>
//	spectap windows [flags] [window-name ...]
//	spectap config init [path]
//
// Settings come from flags, SPECTAP_* environment variables and an optional
// spectap.yaml (see `spectap config init`).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

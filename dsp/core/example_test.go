package core_test

import (
	"fmt"

	"github.com/cwbudde/algo-analyser/dsp/core"
)

func ExampleApplyProcessorOptions() {
	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(44100),
		core.WithBlockSize(256),
	)

	fmt.Printf("sampleRate=%.0f blockSize=%d\n", cfg.SampleRate, cfg.BlockSize)

	// Output:
	// sampleRate=44100 blockSize=256
}

func ExampleDBToLinearBlock() {
	db := []float64{0, -20, -40}
	gain := make([]float64, len(db))
	core.DBToLinearBlock(gain, db)

	fmt.Printf("%.2f %.2f %.2f\n", gain[0], gain[1], gain[2])

	// Output:
	// 1.00 0.10 0.01
}

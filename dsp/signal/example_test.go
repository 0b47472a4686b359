package signal_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-analyser/dsp/core"
	"github.com/cwbudde/algo-analyser/dsp/signal"
)

func ExampleGenerator_Sine() {
	g := signal.NewGenerator([]core.ProcessorOption{core.WithSampleRate(1000)})

	x, err := g.Sine(250, 1, 5)
	if err != nil {
		panic(err)
	}

	rounded := make([]int, len(x))
	for i, v := range x {
		rounded[i] = int(math.Round(v))
	}

	fmt.Println(rounded)

	// Output:
	// [0 1 0 -1 0]
}

func ExampleBinFrequency() {
	fmt.Println(signal.BinFrequency(64, 1024, 48000))

	// Output:
	// 1500
}

package spectral_test

import (
	"fmt"

	"github.com/cwbudde/algo-analyser/stats/spectral"
)

func ExampleCalculate() {
	mag := []float64{0, 0.25, 1, 0.25, 0, 0, 0, 0}
	s := spectral.Calculate(mag, 16000)
	fmt.Printf("peak=%.0fHz centroid=%.0fHz\n", s.PeakHz, s.Centroid)

	// Output:
	// peak=2000Hz centroid=2000Hz
}

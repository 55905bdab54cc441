package sidechain_test

import (
	"fmt"

	"github.com/cwbudde/algo-esc/dsp/effects/sidechain"
)

func ExampleProcessor() {
	p, err := sidechain.New()
	if err != nil {
		panic(err)
	}
	if err := p.Init(1, 1000); err != nil {
		panic(err)
	}

	main := [][]float64{{1, 0, 0, 0, 0}}
	side := [][]float64{{0, 0, 0, 0, 0}}

	latency := p.ProcessBlock(main, side, sidechain.Constant(2), sidechain.Constant(1))
	fmt.Println("latency:", latency)
	fmt.Println("output:", main[0])
	// Output:
	// latency: 2
	// output: [0 0 1 0 0]
}

func ExampleSoftClip() {
	for _, x := range []float64{-2, -0.5, 0, 0.5, 2} {
		fmt.Printf("%.4f ", sidechain.SoftClip(x))
	}
	fmt.Println()
	// Output: -1.0000 -0.6875 0.0000 0.6875 1.0000
}

// SPDX-License-Identifier: MIT
package dsp

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Analyzer turns one raw I/Q sample window into per-bin spectral magnitudes.
// It applies a Blackman-Harris window and a forward complex FFT of length
// width. All buffers are pre-allocated at construction; the returned
// magnitude slice is reused between calls, so an Analyzer must only be used
// from a single goroutine and results must be consumed before the next call.
type Analyzer struct {
	width     int
	fft       *fourier.CmplxFFT
	window    []float64    // ...window function coefficients
	seq       []complex128 // ...windowed complex input sequence
	coeff     []complex128 // ...FFT complex output
	magnitude []float64    // ...per-bin magnitude output
}

// NewAnalyzer creates an Analyzer for windows of width I/Q pairs.
// width must be at least 2 for the window function to be defined.
func NewAnalyzer(width int) *Analyzer {
	if width < 2 {
		panic(fmt.Sprintf("dsp: analyzer width must be >= 2, got %d", width))
	}

	return &Analyzer{
		width:     width,
		fft:       fourier.NewCmplxFFT(width),
		window:    blackmanHarris(width),
		seq:       make([]complex128, width),
		coeff:     make([]complex128, width),
		magnitude: make([]float64, width),
	}
}

// Width returns the number of I/Q pairs consumed per call to Process.
func (a *Analyzer) Width() int {
	return a.width
}

// WindowBytes returns the exact block length Process accepts.
func (a *Analyzer) WindowBytes() int {
	return 2 * a.width
}

// Process computes the magnitude spectrum of one raw sample window.
// block must hold exactly 2*width bytes of interleaved unsigned 8-bit
// I/Q pairs; any other length is a contract breach and panics.
// The returned slice has width entries in bin order and is valid until
// the next call to Process on the same Analyzer.
func (a *Analyzer) Process(block []byte) []float64 {
	if len(block) != 2*a.width {
		panic(fmt.Sprintf("dsp: block length %d does not match analyzer window of %d bytes",
			len(block), 2*a.width))
	}

	for i := 0; i < a.width; i++ {
		re := (float64(block[2*i]) - 128) / 128
		im := (float64(block[2*i+1]) - 128) / 128
		a.seq[i] = complex(re*a.window[i], im*a.window[i])
	}

	a.fft.Coefficients(a.coeff, a.seq)
	for i := range a.coeff {
		a.magnitude[i] = cmplx.Abs(a.coeff[i])
	}

	return a.magnitude
}

// blackmanHarris generates an n-point 4-term Blackman-Harris window.
func blackmanHarris(n int) []float64 {
	window := make([]float64, n)
	for i := range window {
		x := 2 * math.Pi * float64(i) / float64(n-1)
		window[i] = 0.35875 - 0.48829*math.Cos(x) + 0.14128*math.Cos(2*x) - 0.01168*math.Cos(3*x)
	}
	return window
}

// SPDX-License-Identifier: MIT
package dsp

import (
	"math"
	"testing"

	"snipper/pkg/testutil"
)

const testWidth = 128

func TestBlackmanHarrisWindowShape(t *testing.T) {
	for _, width := range []int{2, 20, 128, 1024} {
		window := blackmanHarris(width)

		if len(window) != width {
			t.Fatalf("window length = %d, want %d", len(window), width)
		}
		if math.Abs(window[0]-window[width-1]) > 1e-12 {
			t.Errorf("width %d: window endpoints differ: %g vs %g", width, window[0], window[width-1])
		}
		for i, v := range window {
			if v <= 0 || v > 1+1e-9 {
				t.Errorf("width %d: window[%d] = %g outside (0, 1]", width, i, v)
			}
		}
	}
}

func TestNewAnalyzerRejectsTinyWidth(t *testing.T) {
	for _, width := range []int{-1, 0, 1} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("NewAnalyzer(%d) did not panic", width)
				}
			}()
			NewAnalyzer(width)
		}()
	}
}

func TestProcessRejectsWrongBlockSize(t *testing.T) {
	analyzer := NewAnalyzer(testWidth)

	defer func() {
		if recover() == nil {
			t.Error("Process with short block did not panic")
		}
	}()
	analyzer.Process(make([]byte, testWidth)) // Half the required length
}

func TestProcessSilence(t *testing.T) {
	analyzer := NewAnalyzer(testWidth)

	spectrum := analyzer.Process(testutil.SilentBlock(2 * testWidth))

	if len(spectrum) != testWidth {
		t.Fatalf("spectrum length = %d, want %d", len(spectrum), testWidth)
	}
	for i, mag := range spectrum {
		if mag > 1e-9 {
			t.Errorf("silence spectrum bin %d = %g, want ~0", i, mag)
		}
	}
}

func TestProcessTonePeaksInExpectedBin(t *testing.T) {
	analyzer := NewAnalyzer(testWidth)

	const toneBin = 16
	spectrum := analyzer.Process(testutil.ToneBlock(testWidth, toneBin, 100))

	peak := 0
	for i, mag := range spectrum {
		if mag > spectrum[peak] {
			peak = i
		}
	}
	if peak != toneBin {
		t.Errorf("tone peaked in bin %d, want %d", peak, toneBin)
	}
}

func TestProcessHotPath(t *testing.T) {
	analyzer := NewAnalyzer(testWidth)
	block := testutil.ToneBlock(testWidth, 16, 100)

	// Warm-up call so one-time setup does not count.
	analyzer.Process(block)
	allocs := testing.AllocsPerRun(100, func() {
		analyzer.Process(block)
	})

	if allocs > 0 {
		t.Errorf("Expected zero allocations in Process hot path, got %.1f", allocs)
	}
}

func BenchmarkProcess(b *testing.B) {
	analyzer := NewAnalyzer(testWidth)
	block := testutil.ToneInNoiseBlock(testWidth, 16, 100, 5, 1)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		analyzer.Process(block)
	}
}

// SPDX-License-Identifier: MIT
package dsp

import (
	"math"
	"testing"

	"snipper/pkg/testutil"
)

func TestScoreFlatSpectrum(t *testing.T) {
	estimator := &Estimator{}

	spectrum := make([]float64, testWidth)
	for i := range spectrum {
		spectrum[i] = 2.5
	}

	if score := estimator.Score(spectrum); math.Abs(score-1) > 1e-12 {
		t.Errorf("flat spectrum score = %g, want 1", score)
	}
}

func TestScoreScaleInvariance(t *testing.T) {
	estimator := &Estimator{}

	spectrum := make([]float64, testWidth)
	for i := range spectrum {
		spectrum[i] = 0.1 + float64(i%7)
	}
	scaled := make([]float64, len(spectrum))
	for i, v := range spectrum {
		scaled[i] = v * 1000
	}

	base := estimator.Score(spectrum)
	if got := estimator.Score(scaled); math.Abs(got-base) > 1e-9 {
		t.Errorf("score changed under positive scaling: %g vs %g", got, base)
	}
}

func TestScoreIsolatedPeak(t *testing.T) {
	estimator := &Estimator{}

	// One strong bin above a near-zero floor. At 20 bins the 95th
	// percentile index lands on the peak itself.
	spectrum := make([]float64, 20)
	for i := range spectrum {
		spectrum[i] = 0.01
	}
	spectrum[7] = 10

	if score := estimator.Score(spectrum); score <= 3 {
		t.Errorf("isolated peak score = %g, want > 3", score)
	}
}

func TestScoreNarrowbandBurstThroughAnalyzer(t *testing.T) {
	analyzer := NewAnalyzer(testWidth)
	estimator := &Estimator{}

	quiet := analyzer.Process(testutil.NoiseBlock(2*testWidth, 5, 42))
	quietScore := estimator.Score(quiet)
	if quietScore > 3 {
		t.Fatalf("noise floor score = %g, want <= 3", quietScore)
	}

	// A burst occupying ~10 adjacent bins lifts the 95th percentile
	// well above the 75th.
	burst := make([]byte, 2*testWidth)
	for i := 0; i < testWidth; i++ {
		var re, im float64
		for c := 20; c < 30; c++ {
			phase := 2 * math.Pi * float64(c) * float64(i) / float64(testWidth)
			re += 10 * math.Cos(phase)
			im += 10 * math.Sin(phase)
		}
		burst[2*i] = byte(128 + int(clampSample(re)))
		burst[2*i+1] = byte(128 + int(clampSample(im)))
	}

	score := estimator.Score(analyzer.Process(burst))
	if score <= 3 {
		t.Errorf("narrowband burst score = %g, want > 3", score)
	}
}

func TestScoreDegenerateSpectra(t *testing.T) {
	estimator := &Estimator{}

	// A zero 75th percentile with signal above it divides to +Inf,
	// which classifies as interesting downstream.
	spiky := make([]float64, 20)
	spiky[18] = 1
	spiky[19] = 5
	if score := estimator.Score(spiky); !math.IsInf(score, 1) {
		t.Errorf("zero-floor score = %g, want +Inf", score)
	}

	// An all-zero spectrum divides 0/0 to NaN, which compares false
	// against any threshold.
	if score := estimator.Score(make([]float64, 20)); !math.IsNaN(score) {
		t.Errorf("all-zero score = %g, want NaN", score)
	}
}

func clampSample(v float64) float64 {
	if v > 127 {
		return 127
	}
	if v < -127 {
		return -127
	}
	return v
}

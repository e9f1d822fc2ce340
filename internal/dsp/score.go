// SPDX-License-Identifier: MIT
package dsp

import (
	"sort"
	"strings"

	applog "snipper/internal/log"
)

// Estimator reduces a magnitude spectrum to a single interestingness score:
// the ratio of the 95th-percentile bin magnitude to the 75th-percentile bin
// magnitude. A flat noise floor scores near 1, a narrowband signal rising
// above the floor scores high. Score has no mutable state and is safe to
// call from any goroutine as long as inputs are not shared mutably.
type Estimator struct {
	// Debug emits a sparkline of each scored spectrum through the debug log.
	Debug bool
}

// Score returns the interestingness of the given magnitude spectrum.
// The spectrum needs at least 2 bins. A zero 75th percentile yields +Inf
// (and NaN when the 95th percentile is zero as well); callers comparing
// against a threshold treat +Inf as interesting and NaN as not.
func (e *Estimator) Score(spectrum []float64) float64 {
	sorted := make([]float64, len(spectrum))
	copy(sorted, spectrum)
	sort.Float64s(sorted)

	low := sorted[len(sorted)*75/100]
	high := sorted[len(sorted)*95/100]

	if e.Debug {
		debugPrint(spectrum, sorted)
	}

	return high / low
}

var sparkChars = []rune(" ▁▂▃▄▅▆▇")

// debugPrint logs percentile estimates plus sparkline renderings of the
// sorted magnitude distribution and the spectrum itself.
func debugPrint(spectrum, sorted []float64) {
	low := sorted[len(sorted)*75/100]
	high := sorted[len(sorted)*95/100]
	min := sorted[0]
	max := sorted[len(sorted)-1]

	var histo strings.Builder
	step := len(sorted) / 10
	if step < 1 {
		step = 1
	}
	for i := 0; i < len(sorted); i += step {
		histo.WriteRune(spark(sorted[i], min, max))
	}

	var bins strings.Builder
	for _, v := range spectrum {
		bins.WriteRune(spark(v, min, max))
	}

	applog.Debugf("p75: %.2f p95: %.2f, ratio: %.2f, %s %s",
		low, high, high/low, histo.String(), bins.String())
}

func spark(v, min, max float64) rune {
	if max <= min {
		return sparkChars[0]
	}
	pos := int((v - min) / (max - min) * float64(len(sparkChars)-1))
	if pos < 0 || pos >= len(sparkChars) {
		return 'X'
	}
	return sparkChars[pos]
}

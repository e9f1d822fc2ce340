package sdr

import applog "snipper/internal/log"

// Source is a radio front end producing a continuous stream of raw
// interleaved unsigned 8-bit I/Q samples once configured.
type Source interface {
	// Configure tunes the device to the given capture frequency and
	// sample rate and starts the sample stream.
	Configure(freqHz, rateHz int) error
	// ReadBlock fills buf with the next samples, blocking until the
	// whole block is available. A short count or error indicates
	// stream failure; samples in between would be lost silently.
	ReadBlock(buf []byte) (int, error)
	// Close shuts the device down and releases it.
	Close() error
}

// Settings is the capture tuning plan derived from a requested frequency
// and sample rate.
type Settings struct {
	Downsample    int
	CaptureFreqHz int
	CaptureRateHz int
}

// OptimalSettings determines the capture configuration for a requested
// frequency and sample rate. The device captures at an oversampled rate
// and offset-tuned a quarter of the capture rate above the requested
// frequency, keeping the DC spike away from the signal of interest.
func OptimalSettings(freqHz, rateHz int) Settings {
	downsample := 1_000_000/rateHz + 1
	applog.Infof("downsample: %d", downsample)
	captureRate := downsample * rateHz
	applog.Infof("rate_in: %d capture_rate: %d", rateHz, captureRate)
	captureFreq := freqHz + captureRate/4
	applog.Infof("capture_freq: %d", captureFreq)

	return Settings{
		Downsample:    downsample,
		CaptureFreqHz: captureFreq,
		CaptureRateHz: captureRate,
	}
}

// Package testutil holds shared helpers for generating synthetic I/Q
// capture data and mock collaborators used across package tests.
package testutil

import (
	"bytes"
	"io"
	"math"
	"math/rand"
)

// SilentBlock returns size bytes of centered silence (all 128s), the
// zero point of the unsigned 8-bit I/Q encoding.
func SilentBlock(size int) []byte {
	block := make([]byte, size)
	for i := range block {
		block[i] = 128
	}
	return block
}

// NoiseBlock returns size bytes of uniform noise around the center value.
// A deterministic seed keeps tests reproducible.
func NoiseBlock(size int, amplitude float64, seed int64) []byte {
	rng := rand.New(rand.NewSource(seed))
	block := make([]byte, size)
	for i := range block {
		block[i] = byte(128 + int((rng.Float64()*2-1)*amplitude))
	}
	return block
}

// ToneBlock returns pairs interleaved I/Q samples of a complex exponential
// at the given cycles-per-block frequency, scaled to amplitude (0..127).
// The tone lands in a single FFT bin when cycles is an integer.
func ToneBlock(pairs int, cycles, amplitude float64) []byte {
	block := make([]byte, 2*pairs)
	for i := 0; i < pairs; i++ {
		phase := 2 * math.Pi * cycles * float64(i) / float64(pairs)
		block[2*i] = byte(128 + int(amplitude*math.Cos(phase)))
		block[2*i+1] = byte(128 + int(amplitude*math.Sin(phase)))
	}
	return block
}

// ToneInNoiseBlock overlays a single-bin tone on a uniform noise floor.
func ToneInNoiseBlock(pairs int, cycles, toneAmp, noiseAmp float64, seed int64) []byte {
	rng := rand.New(rand.NewSource(seed))
	block := make([]byte, 2*pairs)
	for i := 0; i < pairs; i++ {
		phase := 2 * math.Pi * cycles * float64(i) / float64(pairs)
		in := (rng.Float64()*2 - 1) * noiseAmp
		qn := (rng.Float64()*2 - 1) * noiseAmp
		block[2*i] = byte(128 + int(toneAmp*math.Cos(phase)+in))
		block[2*i+1] = byte(128 + int(toneAmp*math.Sin(phase)+qn))
	}
	return block
}

// MemorySink collects capture writes in memory for later inspection.
type MemorySink struct {
	Names    []string
	Captures []*bytes.Buffer
}

type memoryStream struct {
	buf *bytes.Buffer
}

func (s *memoryStream) Write(p []byte) (int, error) { return s.buf.Write(p) }
func (s *memoryStream) Close() error                { return nil }

// Ext marks in-memory captures as raw cu8.
func (m *MemorySink) Ext() string { return "cu8" }

// Create records the capture name and returns an in-memory stream.
func (m *MemorySink) Create(name string) (io.WriteCloser, error) {
	buf := &bytes.Buffer{}
	m.Names = append(m.Names, name)
	m.Captures = append(m.Captures, buf)
	return &memoryStream{buf: buf}, nil
}

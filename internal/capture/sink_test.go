package capture

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/wav"

	"snipper/pkg/testutil"
)

func TestNameReproducible(t *testing.T) {
	ts := time.Date(2026, 8, 30, 9, 15, 42, 0, time.UTC)

	tests := []struct {
		ext  string
		want string
	}{
		{"cu8", "snipper_2026-08-30T09_15_42Z_434200000_2880000.cu8"},
		{"wav", "snipper_2026-08-30T09_15_42Z_434200000_2880000.wav"},
	}

	for _, tt := range tests {
		if got := Name(ts, 434200000, 2880000, tt.ext); got != tt.want {
			t.Errorf("Name(..., %q) = %q, want %q", tt.ext, got, tt.want)
		}
	}

	// Non-UTC timestamps normalize to the same name.
	local := ts.In(time.FixedZone("CEST", 2*3600))
	if got, want := Name(local, 434200000, 2880000, "cu8"), Name(ts, 434200000, 2880000, "cu8"); got != want {
		t.Errorf("local timestamp name = %q, want %q", got, want)
	}
}

func TestFileSinkWritesRawCapture(t *testing.T) {
	dir := t.TempDir()
	sink := &FileSink{Dir: dir}

	if got := sink.Ext(); got != "cu8" {
		t.Errorf("Ext() = %q, want cu8", got)
	}

	w, err := sink.Create("capture.cu8")
	if err != nil {
		t.Fatal(err)
	}
	first := testutil.NoiseBlock(512, 40, 1)
	second := testutil.NoiseBlock(512, 40, 2)
	for _, blk := range [][]byte{first, second} {
		if _, err := w.Write(blk); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "capture.cu8"))
	if err != nil {
		t.Fatal(err)
	}
	want := append(append([]byte{}, first...), second...)
	if !bytes.Equal(got, want) {
		t.Error("capture file content does not match written blocks")
	}
}

func TestWAVSinkRoundTrip(t *testing.T) {
	dir := t.TempDir()
	sink := &WAVSink{Dir: dir, SampleRateHz: 2880000}

	w, err := sink.Create("capture.wav")
	if err != nil {
		t.Fatal(err)
	}
	block := testutil.ToneBlock(256, 16, 100)
	if _, err := w.Write(block); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(filepath.Join(dir, "capture.wav"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if dec.NumChans != 2 {
		t.Errorf("channels = %d, want 2 (I/Q)", dec.NumChans)
	}
	if dec.BitDepth != 8 {
		t.Errorf("bit depth = %d, want 8", dec.BitDepth)
	}
	if len(buf.Data) != len(block) {
		t.Fatalf("decoded %d samples, want %d", len(buf.Data), len(block))
	}
	for i, sample := range buf.Data {
		if sample != int(block[i]) {
			t.Fatalf("sample %d = %d, want %d", i, sample, block[i])
		}
	}
}

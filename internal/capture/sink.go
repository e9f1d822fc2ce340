package capture

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Sink creates named durable capture streams. Close on the returned
// stream must not return before the capture is flushed to storage.
type Sink interface {
	Create(name string) (io.WriteCloser, error)
	Ext() string
}

// Name builds the reproducible capture file name:
// snipper_<RFC3339 UTC, colons replaced by underscores>_<freqHz>_<rateHz>.<ext>
func Name(ts time.Time, freqHz, rateHz int, ext string) string {
	stamp := strings.ReplaceAll(ts.UTC().Format(time.RFC3339), ":", "_")
	return fmt.Sprintf("snipper_%s_%d_%d.%s", stamp, freqHz, rateHz, ext)
}

// FileSink writes raw capture files into Dir: the flushed blocks are
// concatenated as-is, no framing or header.
type FileSink struct {
	Dir string
}

func (s *FileSink) Ext() string { return "cu8" }

func (s *FileSink) Create(name string) (io.WriteCloser, error) {
	f, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return nil, err
	}
	return &syncedFile{f}, nil
}

// syncedFile syncs on Close so captures survive a crash right after a flush.
type syncedFile struct {
	*os.File
}

func (f *syncedFile) Close() error {
	if err := f.Sync(); err != nil {
		f.File.Close()
		return err
	}
	return f.File.Close()
}

// WAVSink encodes captures as 2-channel unsigned 8-bit PCM WAV with I on
// the left channel and Q on the right, replayable in audio and SDR tools.
type WAVSink struct {
	Dir          string
	SampleRateHz int
}

func (s *WAVSink) Ext() string { return "wav" }

func (s *WAVSink) Create(name string) (io.WriteCloser, error) {
	f, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return nil, err
	}
	enc := wav.NewEncoder(f, s.SampleRateHz, 8, 2, 1)
	return &wavStream{
		file: f,
		enc:  enc,
		buf: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: 2,
				SampleRate:  s.SampleRateHz,
			},
			SourceBitDepth: 8,
		},
	}, nil
}

type wavStream struct {
	file *os.File
	enc  *wav.Encoder
	buf  *audio.IntBuffer
}

// Write encodes one raw I/Q byte block. Unsigned 8-bit PCM uses the same
// 0..255 encoding as cu8, so samples pass through unconverted.
func (w *wavStream) Write(p []byte) (int, error) {
	if cap(w.buf.Data) < len(p) {
		w.buf.Data = make([]int, len(p))
	}
	w.buf.Data = w.buf.Data[:len(p)]
	for i, b := range p {
		w.buf.Data[i] = int(b)
	}
	if err := w.enc.Write(w.buf); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *wavStream) Close() error {
	if err := w.enc.Close(); err != nil {
		w.file.Close()
		return err
	}
	if err := w.file.Sync(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// SPDX-License-Identifier: MIT
package capture

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	applog "snipper/internal/log"
)

// ScoredBlock pairs one raw sample block with the number of analysis
// windows inside it that scored as interesting. Blocks are immutable once
// ingested.
type ScoredBlock struct {
	Hits int
	Raw  []byte
}

// Buffer is a bounded sliding history of recently seen blocks plus their
// scores. It implements the squelch hysteresis policy: a capture is
// flushed only at the trailing edge of a burst, once the newest Gap blocks
// have all gone quiet, and only if the buffered history holds more than
// MinEvents qualifying blocks. This keeps single noisy blocks from
// fragmenting into many tiny captures while retaining pre- and post-roll
// context around the burst.
//
// A Buffer is owned by the pipeline consumer and is not safe for
// concurrent use.
type Buffer struct {
	gap       int // Consecutive quiet blocks that close a burst
	minEvents int // Qualifying blocks (Hits > 1) needed to justify a flush

	freqHz int
	rateHz int
	sink   Sink
	index  *Index // Optional; nil disables the catalog

	blocks []ScoredBlock
	now    func() time.Time
}

// NewBuffer creates an event buffer flushing to sink. index may be nil.
func NewBuffer(gap, minEvents, freqHz, rateHz int, sink Sink, index *Index) *Buffer {
	return &Buffer{
		gap:       gap,
		minEvents: minEvents,
		freqHz:    freqHz,
		rateHz:    rateHz,
		sink:      sink,
		index:     index,
		blocks:    make([]ScoredBlock, 0, 64),
		now:       time.Now,
	}
}

// Len returns the number of buffered blocks.
func (b *Buffer) Len() int {
	return len(b.blocks)
}

// Ingest appends one scored block to the history and applies the
// hysteresis policy. During prolonged quiet the oldest block is evicted
// before appending, bounding growth; at a burst's trailing edge the whole
// buffered history is flushed oldest-first as one capture and the buffer
// cleared. A flush failure is an unrecoverable I/O fault for the run and
// leaves the buffer intact.
func (b *Buffer) Ingest(raw []byte, hits int) error {
	wasQuiet := b.quiet()
	if wasQuiet {
		copy(b.blocks, b.blocks[1:])
		b.blocks = b.blocks[:len(b.blocks)-1]
	}
	b.blocks = append(b.blocks, ScoredBlock{Hits: hits, Raw: raw})

	events := 0
	for _, blk := range b.blocks {
		if blk.Hits > 1 {
			events++
		}
	}

	if wasQuiet && events > b.minEvents {
		if err := b.flush(events); err != nil {
			return err
		}
		b.blocks = b.blocks[:0]
	}
	return nil
}

// quiet reports whether the buffer holds more than gap blocks and the
// newest gap blocks all have zero hits.
func (b *Buffer) quiet() bool {
	if len(b.blocks) <= b.gap {
		return false
	}
	for _, blk := range b.blocks[len(b.blocks)-b.gap:] {
		if blk.Hits != 0 {
			return false
		}
	}
	return true
}

// flush writes the buffered raw blocks oldest-first as one contiguous
// capture and records it in the catalog when one is configured.
func (b *Buffer) flush(events int) error {
	now := b.now()
	name := Name(now, b.freqHz, b.rateHz, b.sink.Ext())
	applog.Infof("Writing capture to %s", name)

	w, err := b.sink.Create(name)
	if err != nil {
		return fmt.Errorf("creating capture %q: %w", name, err)
	}

	size := 0
	for _, blk := range b.blocks {
		if _, err := w.Write(blk.Raw); err != nil {
			w.Close()
			return fmt.Errorf("writing capture %q: %w", name, err)
		}
		size += len(blk.Raw)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing capture %q: %w", name, err)
	}

	applog.Infof("Wrote %d/%d interesting chunks to %s", events, len(b.blocks), name)

	if b.index != nil {
		rec := Record{
			ID:           uuid.NewString(),
			Name:         name,
			FrequencyHz:  b.freqHz,
			SampleRateHz: b.rateHz,
			Blocks:       len(b.blocks),
			Events:       events,
			Bytes:        size,
			CreatedAt:    now,
		}
		if err := b.index.Add(rec); err != nil {
			applog.Warnf("error recording capture %q in index: %s", name, err)
		}
	}
	return nil
}

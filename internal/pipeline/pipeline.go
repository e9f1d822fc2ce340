// SPDX-License-Identifier: MIT
/*
Package pipeline wires the streaming analysis-and-capture path: a
producer reading raw sample blocks from the radio source and a consumer
scoring them and feeding the event buffer, connected by a bounded FIFO
queue and coordinated by a shared shutdown token.

Concurrency model:
  - Exactly two long-lived worker goroutines, joined on Run.
  - The queue is the only data-sharing channel; blocks transfer
    ownership from producer to consumer on delivery.
  - The producer blocks when the queue is full (explicit backpressure
    instead of unbounded growth when analysis falls behind capture).
  - Cancellation is cooperative: both loops check the token between
    blocking operations, never mid-flight.
*/
package pipeline

import (
	"sync"

	"snipper/internal/capture"
	"snipper/internal/dsp"
	applog "snipper/internal/log"
	"snipper/internal/monitor"
	"snipper/internal/sdr"
)

// Options configures a Pipeline.
type Options struct {
	BlockBytes  int     // Raw bytes per producer read
	WindowWidth int     // I/Q pairs per analysis window
	Threshold   float64 // Score above which a window counts as a hit
	QueueDepth  int     // Blocks buffered between producer and consumer
	Debug       bool    // Per-window spectrum sparklines in the debug log

	// Monitor optionally receives every analyzed window. May be nil.
	Monitor monitor.Transport
}

// Pipeline owns the producer and consumer workers for one capture run.
type Pipeline struct {
	source sdr.Source
	buffer *capture.Buffer

	analyzer  *dsp.Analyzer
	estimator *dsp.Estimator
	opts      Options

	blocks chan []byte
	token  Token

	// done is closed when the consumer exits, releasing a producer
	// blocked on a full queue.
	done     chan struct{}
	doneOnce sync.Once

	consumeErr error
}

// New creates a Pipeline reading from source and ingesting scored blocks
// into buffer. Options must already be validated by the config layer.
func New(source sdr.Source, buffer *capture.Buffer, opts Options) *Pipeline {
	return &Pipeline{
		source:    source,
		buffer:    buffer,
		analyzer:  dsp.NewAnalyzer(opts.WindowWidth),
		estimator: &dsp.Estimator{Debug: opts.Debug},
		opts:      opts,
		blocks:    make(chan []byte, opts.QueueDepth),
		done:      make(chan struct{}),
	}
}

// ShutdownToken returns the cancellation token shared by both workers.
func (p *Pipeline) ShutdownToken() *Token {
	return &p.token
}

// Run starts the producer and consumer and blocks until both have
// finished. It returns the consumer's capture error, if any; producer
// side read failures terminate the run but are reported through the log
// only, matching their unrecoverable-for-this-run semantics.
func (p *Pipeline) Run() error {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		p.produce()
	}()
	go func() {
		defer wg.Done()
		p.consume()
	}()
	wg.Wait()
	return p.consumeErr
}

// produce reads fixed-size blocks from the radio source and forwards
// them to the consumer until shutdown is requested or the stream fails.
// On exit it closes the queue and releases the source.
func (p *Pipeline) produce() {
	defer func() {
		close(p.blocks)
		if err := p.source.Close(); err != nil {
			applog.Errorf("error closing radio source: %v", err)
		}
	}()

	for {
		if p.token.Requested() {
			return
		}
		buf := make([]byte, p.opts.BlockBytes)
		n, err := p.source.ReadBlock(buf)
		if err != nil {
			applog.Infof("Read error: %v", err)
			return
		}
		if n < p.opts.BlockBytes {
			applog.Infof("Short read (%d), samples lost, exiting!", n)
			return
		}
		select {
		case p.blocks <- buf:
		case <-p.done:
			// Consumer is gone; nothing will drain the queue.
			return
		}
	}
}

// consume receives blocks, chops each into consecutive analysis windows,
// accumulates the per-block hit count and ingests the scored block into
// the event buffer. It exits when shutdown is requested, the queue is
// closed, or a capture flush fails.
func (p *Pipeline) consume() {
	defer p.doneOnce.Do(func() { close(p.done) })

	windowBytes := p.analyzer.WindowBytes()
	for {
		if p.token.Requested() {
			return
		}
		buf, ok := <-p.blocks
		if !ok {
			return
		}

		hits := 0
		for off := 0; off+windowBytes <= len(buf); off += windowBytes {
			spectrum := p.analyzer.Process(buf[off : off+windowBytes])
			score := p.estimator.Score(spectrum)
			if p.opts.Monitor != nil {
				// Transports consume the frame synchronously, so the
				// analyzer's reused spectrum slice is safe to pass.
				if err := p.opts.Monitor.Send(monitor.Frame{Score: score, Magnitudes: spectrum}); err != nil {
					applog.Debugf("monitor send failed: %v", err)
				}
			}
			if score > p.opts.Threshold {
				hits++
			}
		}

		if err := p.buffer.Ingest(buf, hits); err != nil {
			applog.Errorf("capture failed: %v", err)
			p.consumeErr = err
			return
		}
	}
}

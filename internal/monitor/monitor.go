// Package monitor provides optional diagnostic transports that stream
// per-window spectra and scores to external observers. Transports are
// best-effort: a failed or rate-limited send is dropped so the analysis
// path never stalls on observability.
package monitor

// Frame is one analyzed window: its interestingness score and the bin
// magnitudes it was derived from.
type Frame struct {
	Score      float64   `json:"score"`
	Magnitudes []float64 `json:"magnitudes"`
}

// Transport defines an interface for sending analyzed frames.
// Implementations should be thread-safe and handle rate limiting.
type Transport interface {
	Send(frame Frame) error
	Close() error
}

// FanOut broadcasts frames to several transports. Send delivers to every
// transport and reports the first error; Close closes all of them.
type FanOut []Transport

func (f FanOut) Send(frame Frame) error {
	var first error
	for _, t := range f {
		if err := t.Send(frame); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f FanOut) Close() error {
	var first error
	for _, t := range f {
		if err := t.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

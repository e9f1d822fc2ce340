package pipeline

import "sync/atomic"

// Token is the cooperative cancellation flag shared by the pipeline
// workers. It is set at most meaningfully once; both workers read it at
// their loop boundaries only, so an in-flight blocking operation always
// completes before cancellation is observed. Relaxed atomic semantics
// are sufficient: the flag gates loop continuation only, data visibility
// is guaranteed by the block queue.
type Token struct {
	flag atomic.Bool
}

// Request marks shutdown as requested. It returns false if shutdown was
// already pending, letting the caller escalate a repeated request to a
// forced termination.
func (t *Token) Request() bool {
	return t.flag.CompareAndSwap(false, true)
}

// Requested reports whether shutdown has been requested.
func (t *Token) Requested() bool {
	return t.flag.Load()
}

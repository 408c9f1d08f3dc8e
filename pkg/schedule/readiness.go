package schedule

import (
	"context"
	"sync"
)

// Readiness is a one-shot signal the host fires once its own initialization
// has finished. It replaces interval polling for a global symbol.
type Readiness struct {
	once sync.Once
	ch   chan struct{}
}

// NewReadiness returns an unsignalled Readiness.
func NewReadiness() *Readiness {
	return &Readiness{ch: make(chan struct{})}
}

// Ready returns a Readiness that is already signalled.
func Ready() *Readiness {
	r := NewReadiness()
	r.Signal()
	return r
}

// Signal marks the host as ready. Further calls are no-ops.
func (r *Readiness) Signal() {
	r.once.Do(func() { close(r.ch) })
}

// Done is closed once Signal has been called.
func (r *Readiness) Done() <-chan struct{} {
	return r.ch
}

// Signalled reports whether Signal has been called.
func (r *Readiness) Signalled() bool {
	select {
	case <-r.ch:
		return true
	default:
		return false
	}
}

// Wait blocks until the signal fires or ctx ends.
func (r *Readiness) Wait(ctx context.Context) error {
	select {
	case <-r.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

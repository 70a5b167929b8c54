package executor

import (
	"context"
	"sync"
)

// Recorder is a Backend that records every raw statement passed to Exec.
// Prepared statements go to the wrapped backend untouched. A dry-run
// recorder records Exec calls without forwarding them.
type Recorder struct {
	inner  Backend
	dryRun bool

	mu    sync.Mutex
	execs []string
}

// NewRecorder wraps inner. With dryRun set, Exec only records.
func NewRecorder(inner Backend, dryRun bool) *Recorder {
	return &Recorder{inner: inner, dryRun: dryRun}
}

// Prepare implements Backend.
func (r *Recorder) Prepare(ctx context.Context, query string) (Statement, error) {
	return r.inner.Prepare(ctx, query)
}

// Exec implements Backend.
func (r *Recorder) Exec(ctx context.Context, query string) error {
	r.mu.Lock()
	r.execs = append(r.execs, query)
	r.mu.Unlock()
	if r.dryRun {
		return nil
	}
	return r.inner.Exec(ctx, query)
}

// Statements returns the recorded statements in order.
func (r *Recorder) Statements() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.execs...)
}

// Reset forgets recorded statements.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.execs = nil
	r.mu.Unlock()
}

// Package waitset wraps the kernel-level wait-set primitives (§4.4) in a
// typed, owned handle: a kernel-backed collection of (handle, requested
// signals, user cookie) entries that can be waited on as a batch.
package waitset

import (
	"context"
	"time"

	"github.com/coreipc/corert/pkg/khandle"
	"github.com/coreipc/corert/pkg/kernel"
)

// Result records one entry's wait outcome, keyed by the cookie it was
// added under.
type Result = kernel.WaitResult

// Outcome classifies a Result: OK (signal satisfied), FailedPrecondition
// (signal can never become satisfied), or Cancelled (handle closed while
// registered).
type Outcome = kernel.Outcome

const (
	OutcomeOK                = kernel.OutcomeOK
	OutcomeFailedPrecondition = kernel.OutcomeFailedPrecondition
	OutcomeCancelled          = kernel.OutcomeCancelled
)

// WaitSet owns exactly one kernel wait-set object.
type WaitSet struct {
	k   kernel.Kernel
	raw khandle.Raw
}

// New creates a fresh, empty wait set backed by k.
func New(k kernel.Kernel) (*WaitSet, *khandle.Status) {
	raw, st := k.WaitSetCreate()
	if st != nil {
		return nil, st
	}
	return &WaitSet{k: k, raw: raw}, nil
}

// Add registers h under cookie, reporting on signals. It fails with
// khandle.ErrAlreadyExists if cookie is already present (§4.4); the same
// handle may be added multiple times under different cookies.
func (w *WaitSet) Add(h khandle.Raw, signals khandle.Signals, cookie uint64) *khandle.Status {
	return w.k.WaitSetAdd(w.raw, h, signals, cookie)
}

// Remove drops the entry tagged cookie, failing with khandle.ErrNotFound
// if absent.
func (w *WaitSet) Remove(cookie uint64) *khandle.Status {
	return w.k.WaitSetRemove(w.raw, cookie)
}

// Wait blocks until at least one entry reports a result or deadline
// passes, filling up to len(results). numResults is how many were
// actually written; maxResults is the total that would have been
// returned with a larger buffer, letting the caller grow it (§4.4). A
// reported entry is implicitly removed from the set.
func (w *WaitSet) Wait(ctx context.Context, deadline time.Time, results []Result) (numResults, maxResults int, status *khandle.Status) {
	return w.k.WaitSetWait(ctx, w.raw, deadline, results)
}

// Raw exposes the underlying kernel handle, for registries that need to
// wait on the wait-set's own readiness (e.g. embedding one wait set in
// another via a kernel that supports it).
func (w *WaitSet) Raw() khandle.Raw { return w.raw }

// Close releases the kernel wait-set object. Every still-registered
// entry's handle is unaffected; only the grouping object goes away.
func (w *WaitSet) Close() *khandle.Status {
	return w.k.Close(w.raw)
}

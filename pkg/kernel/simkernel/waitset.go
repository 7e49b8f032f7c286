package simkernel

import (
	"context"
	"time"

	"github.com/coreipc/corert/pkg/khandle"
	"github.com/coreipc/corert/pkg/kernel"
	"github.com/coreipc/corert/pkg/metrics"
)

// WaitSetCreate implements kernel.Kernel.
func (k *Kernel) WaitSetCreate() (khandle.Raw, *khandle.Status) {
	ws := &waitSetObj{entries: make(map[uint64]*waitEntry), done: make(chan struct{})}
	o := &object{kind: kindWaitSet, rights: khandle.RightsAll, waitSet: ws}
	return k.put(o), nil
}

// WaitSetAdd implements kernel.Kernel.
func (k *Kernel) WaitSetAdd(wsh khandle.Raw, h khandle.Raw, signals khandle.Signals, cookie uint64) *khandle.Status {
	o, ok := k.get(wsh)
	if !ok || o.waitSet == nil {
		return khandle.NewStatus(khandle.KindInvalidArgument, "wait_set_add", "not a wait set")
	}
	if _, ok := k.get(h); !ok {
		return khandle.NewStatus(khandle.KindInvalidArgument, "wait_set_add", "unknown handle")
	}
	ws := o.waitSet
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.closed {
		return khandle.NewStatus(khandle.KindInvalidArgument, "wait_set_add", "wait set closed")
	}
	if _, exists := ws.entries[cookie]; exists {
		return khandle.NewStatus(khandle.KindAlreadyExists, "wait_set_add", "cookie already present")
	}
	ws.entries[cookie] = &waitEntry{handle: h, signals: signals, cookie: cookie}
	return nil
}

// WaitSetRemove implements kernel.Kernel.
func (k *Kernel) WaitSetRemove(wsh khandle.Raw, cookie uint64) *khandle.Status {
	o, ok := k.get(wsh)
	if !ok || o.waitSet == nil {
		return khandle.NewStatus(khandle.KindInvalidArgument, "wait_set_remove", "not a wait set")
	}
	ws := o.waitSet
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if _, exists := ws.entries[cookie]; !exists {
		return khandle.NewStatus(khandle.KindNotFound, "wait_set_remove", "cookie not present")
	}
	delete(ws.entries, cookie)
	return nil
}

// pollEntry reports whether entry e currently has an observable outcome.
func (k *Kernel) pollEntry(e *waitEntry) (kernel.WaitResult, bool) {
	o, ok := k.get(e.handle)
	if !ok || o.pipe == nil {
		return kernel.WaitResult{Cookie: e.cookie, Outcome: kernel.OutcomeCancelled}, true
	}
	st := khandle.SatisfiedState{Satisfiable: khandle.SignalReadable | khandle.SignalWritable}
	if len(o.pipe.inbox) > 0 {
		st.Satisfied |= khandle.SignalReadable
	}
	if peer, ok := k.get(o.pipe.peer); !ok || o.pipe.closed {
		st.Satisfied |= khandle.SignalPeerClosed
		st.Satisfiable &^= khandle.SignalWritable
	} else {
		_ = peer
		st.Satisfied |= khandle.SignalWritable
	}
	if st.Satisfied&e.signals != 0 {
		return kernel.WaitResult{Cookie: e.cookie, Outcome: kernel.OutcomeOK}, true
	}
	if st.Satisfiable&e.signals == 0 {
		return kernel.WaitResult{Cookie: e.cookie, Outcome: kernel.OutcomeFailedPrecondition}, true
	}
	return kernel.WaitResult{}, false
}

// WaitSetWait implements kernel.Kernel by polling every registered entry
// at a fixed interval. This favors simplicity and correctness over
// efficiency, consistent with this package's role as a reference backend
// rather than a production one.
func (k *Kernel) WaitSetWait(ctx context.Context, wsh khandle.Raw, deadline time.Time, results []kernel.WaitResult) (int, int, *khandle.Status) {
	o, ok := k.get(wsh)
	if !ok || o.waitSet == nil {
		return 0, 0, khandle.NewStatus(khandle.KindInvalidArgument, "wait_set_wait", "not a wait set")
	}
	ws := o.waitSet

	collect := func() []kernel.WaitResult {
		ws.mu.Lock()
		defer ws.mu.Unlock()
		var out []kernel.WaitResult
		for cookie, e := range ws.entries {
			if res, done := k.pollEntry(e); done {
				out = append(out, res)
				// Only entries that fit in results are reported and removed;
				// the rest stay registered for the next wait.
				if len(out) <= len(results) {
					delete(ws.entries, cookie)
					metrics.RecordWaitSetOutcome(k.metrics, res.Outcome.String())
				}
			}
		}
		return out
	}

	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for {
		if got := collect(); len(got) > 0 {
			n := copy(results, got)
			return n, len(got), nil
		}
		select {
		case <-ws.done:
			return 0, 0, khandle.NewStatus(khandle.KindCancelled, "wait_set_wait", "wait set closed")
		case <-ctx.Done():
			return 0, 0, khandle.NewStatus(khandle.KindCancelled, "wait_set_wait", "context done")
		case <-ticker.C:
			if !deadline.IsZero() && !time.Now().Before(deadline) {
				return 0, 0, khandle.NewStatus(khandle.KindDeadlineExceeded, "wait_set_wait", "deadline exceeded")
			}
		}
	}
}

// WaitMany implements kernel.Kernel atop a throwaway wait set.
func (k *Kernel) WaitMany(ctx context.Context, handles []khandle.Raw, signals []khandle.Signals, deadline time.Time) (kernel.WaitManyResult, *khandle.Status) {
	if len(handles) != len(signals) {
		return kernel.WaitManyResult{}, khandle.NewStatus(khandle.KindInvalidArgument, "wait_many", "handles/signals length mismatch")
	}
	wsh, st := k.WaitSetCreate()
	if st != nil {
		return kernel.WaitManyResult{}, st
	}
	defer k.Close(wsh)
	for i, h := range handles {
		if st := k.WaitSetAdd(wsh, h, signals[i], uint64(i)); st != nil {
			return kernel.WaitManyResult{}, st
		}
	}
	results := make([]kernel.WaitResult, len(handles))
	n, _, st := k.WaitSetWait(ctx, wsh, deadline, results)
	if st != nil {
		return kernel.WaitManyResult{}, st
	}
	states := make([]khandle.SatisfiedState, len(handles))
	index := -1
	for _, r := range results[:n] {
		idx := int(r.Cookie)
		switch r.Outcome {
		case kernel.OutcomeOK:
			states[idx].Satisfied = signals[idx]
			if index == -1 {
				index = idx
			}
		case kernel.OutcomeFailedPrecondition:
			states[idx].Satisfiable = 0
		case kernel.OutcomeCancelled:
			states[idx].Satisfiable = 0
		}
	}
	if index == -1 {
		return kernel.WaitManyResult{Index: -1, States: states}, khandle.NewStatus(khandle.KindFailedPrecondition, "wait_many", "no handle satisfiable")
	}
	return kernel.WaitManyResult{Index: index, States: states}, nil
}

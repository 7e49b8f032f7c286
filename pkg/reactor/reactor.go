// Package reactor implements the single-threaded cooperative run loop
// (§4.5): a handler registry driven by a kernel wait set, plus a delayed
// task queue sharing the same monotonic ID namespace.
package reactor

import (
	"context"
	"sync"
	"time"

	"github.com/coreipc/corert/pkg/khandle"
	"github.com/coreipc/corert/pkg/kernel"
	"github.com/coreipc/corert/pkg/metrics"
	"github.com/coreipc/corert/pkg/waitset"
)

const (
	initialResultsCapacity = 16
	maxResultsCapacity     = 256

	// Forever is the distinguished relativeDeadline value meaning "no
	// deadline": AddHandler installs no handler_deadlines entry for it.
	Forever time.Duration = -1
)

type handlerEntry struct {
	id       uint64
	handler  Handler
	handle   khandle.Raw
	signals  khandle.Signals
	deadline time.Time // zero means forever
}

// runFrame is one active call to Run; nested calls each get their own
// quit flag (§4.5 re-entrancy).
type runFrame struct {
	quit bool
}

// Reactor is a single-threaded, cooperative event loop. It is not safe
// for concurrent use from multiple goroutines — the spec assumes serial
// access on a single logical thread (§5) — callers needing a
// goroutine-per-reactor model should not share one Reactor across them.
type Reactor struct {
	k  kernel.Kernel
	ws *waitset.WaitSet

	mu       sync.Mutex // guards nextID only; everything else is single-threaded by contract
	nextID   uint64
	handlers map[uint64]*handlerEntry
	deadlns  *handlerDeadlines
	tasks    *delayedTasks

	frames []*runFrame

	resultsCapacity int
	destroyed       bool

	metrics metrics.ReactorMetrics
}

// SetMetrics attaches m as the reactor's metrics sink. A nil m (the
// default) disables recording entirely; call with the result of
// metrics.NewReactorMetrics() to enable it.
func (r *Reactor) SetMetrics(m metrics.ReactorMetrics) {
	r.metrics = m
}

// New constructs a reactor backed by k's wait-set primitives. It
// installs itself as the current reactor (§4.5, §9 "Global state"),
// asserting that none is already installed; Close restores the prior
// value.
func New(k kernel.Kernel) (*Reactor, error) {
	ws, st := waitset.New(k)
	if st != nil {
		return nil, st
	}
	r := &Reactor{
		k:               k,
		ws:              ws,
		handlers:        make(map[uint64]*handlerEntry),
		deadlns:         newHandlerDeadlines(),
		tasks:           newDelayedTasks(),
		resultsCapacity: initialResultsCapacity,
	}
	if err := installCurrent(r); err != nil {
		_ = ws.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reactor) freshID() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	return r.nextID
}

// peekNextID reports the ID that freshID would hand out next, without
// consuming it — used to stamp the synthetic "now task" boundary for a
// delayed-task drain (§4.5 step 2).
func (r *Reactor) peekNextID() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nextID + 1
}

// AddHandler registers handler on handle, reporting on signals, with an
// absolute deadline of now+relativeDeadline. Forever (or a
// relativeDeadline large enough to overflow) saturates to no deadline at
// all: no handler_deadlines entry is ever created for it. The same
// handler may be registered multiple times on different handles.
func (r *Reactor) AddHandler(handler Handler, handle khandle.Raw, signals khandle.Signals, relativeDeadline time.Duration) (uint64, error) {
	id := r.freshID()
	var deadline time.Time
	if relativeDeadline != Forever {
		now := r.k.Now()
		d, overflowed := addSaturating(now, relativeDeadline)
		if !overflowed {
			deadline = d
		}
	}
	entry := &handlerEntry{id: id, handler: handler, handle: handle, signals: signals, deadline: deadline}
	r.handlers[id] = entry
	if !deadline.IsZero() {
		r.deadlns.push(deadline, id)
	}
	if st := r.ws.Add(handle, signals, id); st != nil {
		delete(r.handlers, id)
		return 0, st
	}
	metrics.RecordHandlerCount(r.metrics, len(r.handlers))
	return id, nil
}

// addSaturating adds d to t, reporting overflowed=true instead of
// wrapping if the result would not fit a time.Time's representable
// range.
func addSaturating(t time.Time, d time.Duration) (time.Time, bool) {
	result := t.Add(d)
	if d > 0 && result.Before(t) {
		return time.Time{}, true
	}
	return result, false
}

// RemoveHandler removes id from the handler table and the kernel wait
// set. Any stale deadline entry for id is left for handlerDeadlines to
// discard lazily.
func (r *Reactor) RemoveHandler(id uint64) error {
	if _, ok := r.handlers[id]; !ok {
		return nil
	}
	delete(r.handlers, id)
	err := r.ws.Remove(id)
	metrics.RecordHandlerCount(r.metrics, len(r.handlers))
	return err
}

// PostDelayedTask schedules task to run after delay, returning the ID
// assigned to it (shares the handler ID namespace so same-instant
// handler deadlines and tasks have a well-defined relative order, per
// §4.5).
func (r *Reactor) PostDelayedTask(task Task, delay time.Duration) uint64 {
	id := r.freshID()
	runAt, overflowed := addSaturating(r.k.Now(), delay)
	if overflowed {
		runAt = time.Unix(1<<62, 0) // effectively never, without a sentinel zero-value collision
	}
	r.tasks.push(runAt, id, task)
	metrics.RecordTaskPosted(r.metrics)
	return id
}

// Quit requests that the innermost active Run call return as soon as
// the current iteration's drain finishes. It has no effect if no Run
// frame is active.
func (r *Reactor) Quit() {
	if len(r.frames) == 0 {
		return
	}
	r.frames[len(r.frames)-1].quit = true
}

// Run iterates until no handlers and no pending delayed tasks remain, or
// Quit is called on this frame.
func (r *Reactor) Run(ctx context.Context) error {
	frame := &runFrame{}
	r.frames = append(r.frames, frame)
	defer func() { r.frames = r.frames[:len(r.frames)-1] }()

	for {
		_, err := r.iterate(ctx, frame)
		if err != nil {
			return err
		}
		if frame.quit {
			return nil
		}
		if len(r.handlers) == 0 && r.tasks.len() == 0 {
			return nil
		}
	}
}

// RunUntilIdle iterates without blocking until no immediately executable
// work remains, then returns.
func (r *Reactor) RunUntilIdle(ctx context.Context) error {
	frame := &runFrame{}
	r.frames = append(r.frames, frame)
	defer func() { r.frames = r.frames[:len(r.frames)-1] }()

	for {
		didWork, err := r.iterateNonBlocking(ctx, frame)
		if err != nil {
			return err
		}
		if frame.quit || !didWork {
			return nil
		}
	}
}

// iterate runs one full pass of the algorithm in §4.5, including the
// blocking wait step.
func (r *Reactor) iterate(ctx context.Context, frame *runFrame) (bool, error) {
	didWork := false
	now := r.k.Now()
	boundary := r.peekNextID()

	for _, due := range r.tasks.popDue(now, boundary) {
		metrics.ObserveTaskExecution(r.metrics, r.k.Now().Sub(due.runAt))
		due.task()
		didWork = true
	}
	if frame.quit {
		return didWork, nil
	}
	if len(r.handlers) == 0 {
		return didWork, nil
	}

	deadline := r.earliestWake(now)

	results := make([]waitset.Result, r.resultsCapacity)
	waitStart := r.k.Now()
	n, maxResults, st := r.ws.Wait(ctx, deadline, results)
	metrics.ObserveWait(r.metrics, r.k.Now().Sub(waitStart), n)
	if st != nil {
		if st.Kind == khandle.KindDeadlineExceeded {
			if r.drainExpiredDeadlines(deadline) {
				didWork = true
			}
			return didWork, nil
		}
		if st.Kind == khandle.KindCancelled {
			return didWork, nil
		}
		return didWork, st
	}
	if maxResults > r.resultsCapacity && r.resultsCapacity < maxResultsCapacity {
		grown := r.resultsCapacity * 2
		if grown > maxResultsCapacity {
			grown = maxResultsCapacity
		}
		r.resultsCapacity = grown
	}
	if n > 0 {
		r.dispatch(results[:n])
		didWork = true
	}
	return didWork, nil
}

// iterateNonBlocking performs the same algorithm but never blocks: it
// drains only already-due tasks and already-satisfied handlers, using a
// deadline of "now" for the wait.
func (r *Reactor) iterateNonBlocking(ctx context.Context, frame *runFrame) (bool, error) {
	didWork := false
	now := r.k.Now()
	boundary := r.peekNextID()

	for _, due := range r.tasks.popDue(now, boundary) {
		metrics.ObserveTaskExecution(r.metrics, r.k.Now().Sub(due.runAt))
		due.task()
		didWork = true
	}
	if frame.quit || len(r.handlers) == 0 {
		return didWork, nil
	}

	results := make([]waitset.Result, r.resultsCapacity)
	waitStart := r.k.Now()
	n, _, st := r.ws.Wait(ctx, now, results)
	metrics.ObserveWait(r.metrics, r.k.Now().Sub(waitStart), n)
	if st != nil {
		if st.Kind == khandle.KindDeadlineExceeded {
			if r.drainExpiredDeadlines(now) {
				didWork = true
			}
			return didWork, nil
		}
		if st.Kind == khandle.KindCancelled {
			return didWork, nil
		}
		return didWork, st
	}
	if n > 0 {
		r.dispatch(results[:n])
		didWork = true
	}
	return didWork, nil
}

// earliestWake computes the earliest of the earliest live handler
// deadline and the earliest delayed task time, never earlier than now.
// A zero time.Time result means "forever".
func (r *Reactor) earliestWake(now time.Time) time.Time {
	var earliest time.Time

	if d, ok := r.deadlns.peekLive(r.handlers); ok {
		earliest = d.deadline
	}
	if t, ok := r.tasks.peek(); ok {
		if earliest.IsZero() || t.runAt.Before(earliest) {
			earliest = t.runAt
		}
	}
	if !earliest.IsZero() && earliest.Before(now) {
		earliest = now
	}
	return earliest
}

// dispatch handles one OK wait-set batch: remove each reported entry
// from handlers (and implicitly from the wait set, since the kernel
// already dropped it), then invoke the matching callback. A handler may
// add or remove handlers re-entrantly; any id appearing again later in
// the same batch after being removed is skipped, since it has already
// been dispatched.
func (r *Reactor) dispatch(results []waitset.Result) {
	seen := make(map[uint64]bool, len(results))
	for _, res := range results {
		id := res.Cookie
		if seen[id] {
			continue
		}
		seen[id] = true
		entry, ok := r.handlers[id]
		if !ok {
			continue
		}
		delete(r.handlers, id)
		switch res.Outcome {
		case waitset.OutcomeOK:
			entry.handler.OnReady(id)
			metrics.RecordDispatch(r.metrics, "ready")
		case waitset.OutcomeFailedPrecondition:
			entry.handler.OnError(id, OutcomeFailedPrecondition)
			metrics.RecordDispatch(r.metrics, "failed_precondition")
		case waitset.OutcomeCancelled:
			entry.handler.OnError(id, OutcomeCancelled)
			metrics.RecordDispatch(r.metrics, "cancelled")
		}
	}
}

// drainExpiredDeadlines aborts every live handler whose deadline is <=
// cutoff, in ascending deadline order, reporting whether any fired.
func (r *Reactor) drainExpiredDeadlines(cutoff time.Time) bool {
	expired := r.deadlns.popLive(cutoff, r.handlers)
	if len(expired) == 0 {
		return false
	}
	for _, d := range expired {
		entry, ok := r.handlers[d.id]
		if !ok {
			continue
		}
		delete(r.handlers, d.id)
		_ = r.ws.Remove(d.id)
		entry.handler.OnError(d.id, OutcomeDeadlineExceeded)
		metrics.RecordDispatch(r.metrics, "deadline_exceeded")
	}
	return true
}

// HandlerSnapshot describes one registered handler, for diagnostics.
type HandlerSnapshot struct {
	ID       uint64
	Handle   khandle.Raw
	Signals  khandle.Signals
	Deadline time.Time // zero means Forever
}

// Snapshot returns a point-in-time copy of every currently registered
// handler. Intended for diagnostics tooling, not the hot path.
func (r *Reactor) Snapshot() []HandlerSnapshot {
	out := make([]HandlerSnapshot, 0, len(r.handlers))
	for _, entry := range r.handlers {
		out = append(out, HandlerSnapshot{
			ID:       entry.id,
			Handle:   entry.handle,
			Signals:  entry.signals,
			Deadline: entry.deadline,
		})
	}
	return out
}

// Close destroys the reactor: every still-registered handler receives
// OnError(id, aborted). A handler may register new handlers during that
// notification; Close aborts them in a further round, repeating until no
// handlers remain. No infinite-loop
// protection is provided beyond draining the set once each round, per
// §4.5.
func (r *Reactor) Close() error {
	if r.destroyed {
		return nil
	}
	r.destroyed = true
	clearCurrent(r)
	for len(r.handlers) > 0 {
		batch := r.handlers
		r.handlers = make(map[uint64]*handlerEntry)
		for id, entry := range batch {
			_ = r.ws.Remove(id)
			entry.handler.OnError(id, OutcomeAborted)
			metrics.RecordDispatch(r.metrics, "aborted")
		}
	}
	return r.ws.Close()
}

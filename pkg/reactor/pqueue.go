package reactor

import (
	"container/heap"
	"time"
)

// deadlineEntry pairs a handler ID with the absolute time it should be
// aborted at. Entries go stale when the handler is removed or fires for
// another reason first; handlerDeadlines discards stale tops lazily
// rather than searching for them on removal.
type deadlineEntry struct {
	deadline time.Time
	id       uint64
}

type deadlineHeap []deadlineEntry

func (h deadlineHeap) Len() int { return len(h) }
func (h deadlineHeap) Less(i, j int) bool {
	if h[i].deadline.Equal(h[j].deadline) {
		return h[i].id < h[j].id
	}
	return h[i].deadline.Before(h[j].deadline)
}
func (h deadlineHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *deadlineHeap) Push(x any)   { *h = append(*h, x.(deadlineEntry)) }
func (h *deadlineHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// handlerDeadlines is the priority queue of (absolute_deadline, id)
// ordered by earliest deadline (§4.5).
type handlerDeadlines struct {
	h deadlineHeap
}

func newHandlerDeadlines() *handlerDeadlines {
	return &handlerDeadlines{}
}

func (q *handlerDeadlines) push(deadline time.Time, id uint64) {
	heap.Push(&q.h, deadlineEntry{deadline: deadline, id: id})
}

// peekLive returns the earliest entry whose id is still present in live,
// discarding stale tops it pops along the way.
func (q *handlerDeadlines) peekLive(live map[uint64]*handlerEntry) (deadlineEntry, bool) {
	for q.h.Len() > 0 {
		top := q.h[0]
		e, ok := live[top.id]
		if !ok || !e.deadline.Equal(top.deadline) {
			heap.Pop(&q.h)
			continue
		}
		return top, true
	}
	return deadlineEntry{}, false
}

// popLive pops and returns every entry whose deadline is <= cutoff and
// whose id is still live, in ascending deadline order, discarding stale
// entries as it goes.
func (q *handlerDeadlines) popLive(cutoff time.Time, live map[uint64]*handlerEntry) []deadlineEntry {
	var out []deadlineEntry
	for q.h.Len() > 0 {
		top := q.h[0]
		if top.deadline.After(cutoff) {
			break
		}
		heap.Pop(&q.h)
		e, ok := live[top.id]
		if !ok || !e.deadline.Equal(top.deadline) {
			continue
		}
		out = append(out, top)
	}
	return out
}

// delayedTaskEntry is one entry of the delayedTasks queue: task IDs
// share the monotonic namespace used for handlers, so ties at the same
// absolute_run_time break by ascending ID, i.e. post order (§4.5).
type delayedTaskEntry struct {
	runAt time.Time
	id    uint64
	task  Task
}

type delayedTaskHeap []delayedTaskEntry

func (h delayedTaskHeap) Len() int { return len(h) }
func (h delayedTaskHeap) Less(i, j int) bool {
	if h[i].runAt.Equal(h[j].runAt) {
		return h[i].id < h[j].id
	}
	return h[i].runAt.Before(h[j].runAt)
}
func (h delayedTaskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *delayedTaskHeap) Push(x any)   { *h = append(*h, x.(delayedTaskEntry)) }
func (h *delayedTaskHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

type delayedTasks struct {
	h delayedTaskHeap
}

func newDelayedTasks() *delayedTasks {
	return &delayedTasks{}
}

func (q *delayedTasks) push(runAt time.Time, id uint64, task Task) {
	heap.Push(&q.h, delayedTaskEntry{runAt: runAt, id: id, task: task})
}

func (q *delayedTasks) len() int { return q.h.Len() }

func (q *delayedTasks) peek() (delayedTaskEntry, bool) {
	if q.h.Len() == 0 {
		return delayedTaskEntry{}, false
	}
	return q.h[0], true
}

// popDue pops and returns every task whose runAt is <= cutoff and whose
// id is strictly less than beforeID — the synthetic "now task" ID
// captured at the start of the draining pass, so tasks posted during the
// drain never run in the same pass even if their time has arrived
// (§4.5 step 2). Entries are drained in ascending (runAt, id) order.
//
// A task posted during the drain can have an earlier runAt than an
// older, still-eligible task further back in the heap (e.g. a zero-delay
// repost), so this cannot stop at the first id >= beforeID the way
// popLive stops at the first live deadline past cutoff: it must drain
// the whole prefix with runAt <= cutoff and partition it, putting
// ineligible entries back.
func (q *delayedTasks) popDue(cutoff time.Time, beforeID uint64) []delayedTaskEntry {
	var due []delayedTaskEntry
	var deferred []delayedTaskEntry
	for q.h.Len() > 0 {
		top := q.h[0]
		if top.runAt.After(cutoff) {
			break
		}
		heap.Pop(&q.h)
		if top.id < beforeID {
			due = append(due, top)
		} else {
			deferred = append(deferred, top)
		}
	}
	for _, e := range deferred {
		heap.Push(&q.h, e)
	}
	return due
}

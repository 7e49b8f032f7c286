// Package simkernel is an in-process, channel-backed reference
// implementation of pkg/kernel.Kernel. It exists because the real
// microkernel syscalls are outside this module's scope (spec §1): without
// some concrete backend, the handle, wire, wait-set, and reactor packages
// could never be exercised end-to-end. It is not a performance-oriented
// implementation; it favors obviously-correct synchronization over
// throughput, the way a test double should.
package simkernel

import (
	"context"
	"encoding/binary"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/coreipc/corert/pkg/khandle"
	"github.com/coreipc/corert/pkg/kernel"
	"github.com/coreipc/corert/pkg/metrics"
)

type objectKind int

const (
	kindMessagePipe objectKind = iota
	kindDataPipeProducer
	kindDataPipeConsumer
	kindSharedBuffer
	kindWaitSet
)

type message struct {
	data    []byte
	handles []khandle.Raw
}

type pipeEnd struct {
	peer    khandle.Raw
	inbox   chan message
	closed  bool
	waiters []chan khandle.SatisfiedState
}

type dataPipeShared struct {
	mu       sync.Mutex
	buf      []byte
	elemSize int
	cap      int
	closed   bool
}

type waitEntry struct {
	handle  khandle.Raw
	signals khandle.Signals
	cookie  uint64
}

type waitSetObj struct {
	mu      sync.Mutex
	entries map[uint64]*waitEntry
	closed  bool
	done    chan struct{}
}

type object struct {
	kind       objectKind
	rights     khandle.Rights
	pipe       *pipeEnd
	dataShared *dataPipeShared
	dataRole   objectKind // producer or consumer for data pipes
	buf        []byte
	waitSet    *waitSetObj
	closed     bool
}

// Kernel is the simulated backend. The zero value is not usable; use New.
type Kernel struct {
	mu      sync.Mutex
	objects map[khandle.Raw]*object
	start   time.Time

	metrics metrics.KernelMetrics
}

// New constructs an empty simulated kernel.
func New() *Kernel {
	return &Kernel{
		objects: make(map[khandle.Raw]*object),
		start:   time.Now(),
	}
}

// SetMetrics attaches m as this kernel's metrics sink. A nil m (the
// default) disables recording.
func (k *Kernel) SetMetrics(m metrics.KernelMetrics) {
	k.metrics = m
}

var _ kernel.Kernel = (*Kernel)(nil)

func (o objectKind) String() string {
	switch o {
	case kindMessagePipe:
		return "message_pipe"
	case kindDataPipeProducer:
		return "data_pipe_producer"
	case kindDataPipeConsumer:
		return "data_pipe_consumer"
	case kindSharedBuffer:
		return "shared_buffer"
	case kindWaitSet:
		return "wait_set"
	default:
		return "unknown"
	}
}

func newRaw() khandle.Raw {
	id := uuid.New()
	// Fold the 16 random bytes down to a 32-bit identifier. Collisions are
	// astronomically unlikely for a single process's lifetime and would
	// only ever manifest as a flaky test, never a correctness issue in
	// production since the real kernel issues its own identifiers.
	b := id[:]
	v := binary.BigEndian.Uint32(b) ^ binary.BigEndian.Uint32(b[4:8]) ^
		binary.BigEndian.Uint32(b[8:12]) ^ binary.BigEndian.Uint32(b[12:16])
	if v == uint32(khandle.Invalid) {
		v++
	}
	return khandle.Raw(v)
}

func (k *Kernel) put(o *object) khandle.Raw {
	k.mu.Lock()
	raw := newRaw()
	for k.objects[raw] != nil {
		raw = newRaw()
	}
	k.objects[raw] = o
	k.mu.Unlock()
	metrics.RecordHandleCreated(k.metrics, o.kind.String())
	return raw
}

func (k *Kernel) get(h khandle.Raw) (*object, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	o, ok := k.objects[h]
	return o, ok
}

// Close implements khandle.Backend.
func (k *Kernel) Close(h khandle.Raw) *khandle.Status {
	k.mu.Lock()
	o, ok := k.objects[h]
	if !ok {
		k.mu.Unlock()
		return khandle.NewStatus(khandle.KindInvalidArgument, "close", "unknown handle")
	}
	delete(k.objects, h)
	k.mu.Unlock()
	metrics.RecordHandleClosed(k.metrics, o.kind.String())

	o.closed = true
	if o.pipe != nil {
		o.pipe.closed = true
		for _, w := range o.pipe.waiters {
			w <- khandle.SatisfiedState{Satisfiable: 0}
		}
		o.pipe.waiters = nil
		if peer, ok := k.get(o.pipe.peer); ok && peer.pipe != nil {
			close(peer.pipe.inbox)
		}
	}
	if o.waitSet != nil {
		o.waitSet.mu.Lock()
		o.waitSet.closed = true
		o.waitSet.entries = nil
		if o.waitSet.done != nil {
			close(o.waitSet.done)
		}
		o.waitSet.mu.Unlock()
	}
	return nil
}

// GetRights implements khandle.Backend.
func (k *Kernel) GetRights(h khandle.Raw) (khandle.Rights, *khandle.Status) {
	o, ok := k.get(h)
	if !ok {
		return khandle.RightNone, khandle.NewStatus(khandle.KindInvalidArgument, "get_rights", "unknown handle")
	}
	return o.rights, nil
}

// Duplicate implements khandle.Backend. The simulated kernel treats
// duplication of pipe endpoints as sharing the same underlying pipeEnd
// under a new identifier, since the spec only constrains rights, not
// identity aliasing semantics for non-pipe objects.
func (k *Kernel) Duplicate(h khandle.Raw, rights khandle.Rights) (khandle.Raw, *khandle.Status) {
	o, ok := k.get(h)
	if !ok {
		return khandle.Invalid, khandle.NewStatus(khandle.KindInvalidArgument, "duplicate", "unknown handle")
	}
	if !o.rights.Has(khandle.RightDuplicate) {
		return khandle.Invalid, khandle.NewStatus(khandle.KindPermissionDenied, "duplicate", "missing duplicate right")
	}
	if rights&^o.rights != 0 {
		return khandle.Invalid, khandle.NewStatus(khandle.KindInvalidArgument, "duplicate", "rights must be a subset")
	}
	dup := &object{kind: o.kind, rights: rights, pipe: o.pipe, dataShared: o.dataShared, dataRole: o.dataRole, buf: o.buf, waitSet: o.waitSet}
	return k.put(dup), nil
}

// Wait implements khandle.Backend for a single handle.
func (k *Kernel) Wait(ctx context.Context, h khandle.Raw, signals khandle.Signals, deadline time.Time) (khandle.SatisfiedState, *khandle.Status) {
	o, ok := k.get(h)
	if !ok {
		return khandle.SatisfiedState{}, khandle.NewStatus(khandle.KindInvalidArgument, "wait", "unknown handle")
	}
	if o.pipe == nil {
		return khandle.SatisfiedState{}, khandle.NewStatus(khandle.KindFailedPrecondition, "wait", "handle type does not support waiting")
	}

	poll := func() (khandle.SatisfiedState, bool) {
		st := khandle.SatisfiedState{Satisfiable: khandle.SignalReadable | khandle.SignalWritable}
		if len(o.pipe.inbox) > 0 {
			st.Satisfied |= khandle.SignalReadable
		}
		peerClosed := o.pipe.closed
		if peer, ok := k.get(o.pipe.peer); !ok || peerClosed {
			st.Satisfied |= khandle.SignalPeerClosed
			st.Satisfiable &^= khandle.SignalWritable
		} else {
			_ = peer
			st.Satisfied |= khandle.SignalWritable
		}
		return st, st.Satisfied&signals != 0
	}

	if st, ready := poll(); ready {
		return st, nil
	}
	if signals&khandle.SignalPeerClosed != 0 {
		if st, _ := poll(); st.Satisfied&khandle.SignalPeerClosed != 0 {
			return st, nil
		}
	}

	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return khandle.SatisfiedState{}, khandle.NewStatus(khandle.KindCancelled, "wait", "context done")
		case <-ticker.C:
			if st, ready := poll(); ready {
				return st, nil
			}
			if !deadline.IsZero() && !time.Now().Before(deadline) {
				return khandle.SatisfiedState{}, khandle.NewStatus(khandle.KindDeadlineExceeded, "wait", "deadline exceeded")
			}
		}
	}
}

// Now implements Kernel.
func (k *Kernel) Now() time.Time { return time.Now() }

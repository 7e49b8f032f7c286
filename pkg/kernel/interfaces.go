// Package kernel defines the abstract boundary this runtime core assumes a
// host microkernel provides (spec §6). The core never talks to real
// syscalls directly; every operation here is a provider-side contract, and
// the only implementation shipped in this module is the in-process
// reference kernel in pkg/kernel/simkernel, used by tests and the
// corertd serve demo. A production deployment supplies its own Kernel
// backed by real syscalls.
package kernel

import (
	"context"
	"time"

	"github.com/coreipc/corert/pkg/khandle"
)

// WaitManyResult is returned by WaitMany: Index is the first handle to
// become ready (or -1 if none did before the deadline/cancellation), and
// States reports the per-handle satisfied/satisfiable signals observed at
// the time the wait resolved, so a caller whose wait failed can inspect
// why each handle did not satisfy its request.
type WaitManyResult struct {
	Index  int
	States []khandle.SatisfiedState
}

// MessagePipeEndpoints is the pair of handles returned by creating a
// message pipe; writing to one makes bytes+handles readable on the other.
type MessagePipeEndpoints struct {
	H0, H1 khandle.Raw
}

// DataPipeEndpoints is the producer/consumer pair returned by creating a
// data pipe.
type DataPipeEndpoints struct {
	Producer, Consumer khandle.Raw
}

// Kernel is the full provider-side contract §6 describes: handle
// primitives, message pipes, data pipes, shared buffers, wait sets, and a
// monotonic clock. It embeds khandle.Backend so a Kernel can back
// khandle.Handle values directly.
type Kernel interface {
	khandle.Backend

	// WaitMany blocks until the first of handles[i] satisfies signals[i],
	// all become unsatisfiable, or the deadline passes.
	WaitMany(ctx context.Context, handles []khandle.Raw, signals []khandle.Signals, deadline time.Time) (WaitManyResult, *khandle.Status)

	// MessagePipeCreate returns a connected pair of bidirectional
	// message-pipe endpoints.
	MessagePipeCreate() (MessagePipeEndpoints, *khandle.Status)

	// MessageRead performs a non-blocking read of one message (bytes +
	// handles) from h. It returns khandle.ErrShouldWait if no message is
	// queued.
	MessageRead(h khandle.Raw) (data []byte, handles []khandle.Raw, status *khandle.Status)

	// MessageWrite performs a non-blocking write of one message to h.
	// Ownership of handles transfers to the message on success.
	MessageWrite(h khandle.Raw, data []byte, handles []khandle.Raw) *khandle.Status

	// DataPipeCreate returns a connected producer/consumer pair backing a
	// unidirectional byte stream of elements of elemSize bytes, with
	// capacity elements of buffering.
	DataPipeCreate(elemSize, capacity int) (DataPipeEndpoints, *khandle.Status)

	// DataPipeWrite performs a non-blocking write, returning the number of
	// bytes actually written and khandle.ErrShouldWait if the pipe is
	// currently full.
	DataPipeWrite(h khandle.Raw, data []byte) (n int, status *khandle.Status)

	// DataPipeRead performs a non-blocking read, returning the number of
	// bytes actually read and khandle.ErrShouldWait if the pipe is
	// currently empty.
	DataPipeRead(h khandle.Raw, out []byte) (n int, status *khandle.Status)

	// SharedBufferCreate allocates a kernel object of size bytes whose
	// pages can be mapped by multiple address spaces.
	SharedBufferCreate(size uint64) (khandle.Raw, *khandle.Status)

	// BufferMap maps [offset, offset+length) of the shared buffer h into
	// this address space and returns a slice backed by that mapping.
	BufferMap(h khandle.Raw, offset, length uint64) ([]byte, *khandle.Status)

	// BufferUnmap releases a mapping previously returned by BufferMap.
	BufferUnmap(mapped []byte) *khandle.Status

	// WaitSetCreate returns a new kernel wait-set object.
	WaitSetCreate() (khandle.Raw, *khandle.Status)

	// WaitSetAdd registers handle h under the wait set wsh, reporting on
	// signals and tagged with the opaque cookie.
	WaitSetAdd(wsh khandle.Raw, h khandle.Raw, signals khandle.Signals, cookie uint64) *khandle.Status

	// WaitSetRemove removes the entry tagged cookie from wsh.
	WaitSetRemove(wsh khandle.Raw, cookie uint64) *khandle.Status

	// WaitSetWait blocks until at least one entry in wsh reports a result
	// or the deadline passes, filling up to len(results) entries and
	// returning the total number available (which may exceed len(results)).
	WaitSetWait(ctx context.Context, wsh khandle.Raw, deadline time.Time, results []WaitResult) (numResults int, maxResults int, status *khandle.Status)

	// Now returns the kernel's monotonic clock, in microsecond resolution
	// per spec §6's get_time_ticks.
	Now() time.Time
}

// WaitResult is one outcome entry filled by WaitSetWait, keyed by the
// cookie the entry was added under.
type WaitResult struct {
	Cookie  uint64
	Outcome Outcome
}

// Outcome is the wait-set-level result classification (spec §4.4): OK
// means the requested signal was satisfied, FailedPrecondition means the
// signal can never become satisfied, Cancelled means the handle was
// closed while the entry was registered.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeFailedPrecondition
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeFailedPrecondition:
		return "failed_precondition"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

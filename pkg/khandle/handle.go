package khandle

import (
	"context"
	"time"
)

// Raw is the opaque kernel-issued handle identifier. Zero is reserved for
// the invalid handle; all valid identifiers are non-zero, matching the
// wire encoding where zero-equivalent sentinels mean "absent".
type Raw uint32

// Invalid is the distinguished raw identifier meaning "no handle".
const Invalid Raw = 0

// Signals is a bitmask of named boolean states a Handle can report.
type Signals uint32

const (
	SignalNone       Signals = 0
	SignalReadable   Signals = 1 << iota
	SignalWritable
	SignalPeerClosed
)

// SatisfiedState reports, for a single handle observed by a wait
// operation, which signals are currently satisfied and which could ever
// become satisfied (a handle whose peer has gone away can still report
// readable for buffered data, but can never become writable again).
type SatisfiedState struct {
	Satisfied   Signals
	Satisfiable Signals
}

// Backend is the subset of the kernel handle interface (§6) that the
// Handle wrapper needs: close, rights inspection, duplication, and
// waiting. A concrete kernel (real or simulated, see pkg/kernel) implements
// this once and is shared by every Handle constructed against it.
type Backend interface {
	Close(h Raw) *Status
	GetRights(h Raw) (Rights, *Status)
	Duplicate(h Raw, rights Rights) (Raw, *Status)
	Wait(ctx context.Context, h Raw, signals Signals, deadline time.Time) (SatisfiedState, *Status)
}

// Handle pairs a raw kernel identifier with the backend that issued it and
// the rights it currently carries. Rights are tracked client-side because
// duplicate/replace always narrow them monotonically and the wire codec
// needs the current value without a kernel round trip.
type Handle struct {
	raw     Raw
	rights  Rights
	backend Backend
}

// New wraps a raw handle freshly returned by a kernel Backend.
func New(backend Backend, raw Raw, rights Rights) Handle {
	return Handle{raw: raw, rights: rights, backend: backend}
}

// Raw returns the underlying kernel identifier. Valid even for the zero
// Handle (returns Invalid).
func (h Handle) Raw() Raw { return h.raw }

// Rights returns the rights this Handle currently carries.
func (h Handle) Rights() Rights { return h.rights }

// IsValid reports whether this Handle wraps a non-zero raw identifier.
func (h Handle) IsValid() bool { return h.raw != Invalid }

// Close releases the handle at the kernel. Closing an already-invalid
// handle through this path is a precondition violation the caller is
// expected to have avoided via ScopedHandle; a raw close of an invalid
// handle fails with invalid_argument.
func (h Handle) Close() *Status {
	if !h.IsValid() {
		return NewStatus(KindInvalidArgument, "close", "invalid handle")
	}
	return h.backend.Close(h.raw)
}

// Duplicate yields an independent handle with the same rights as h. It
// requires RightDuplicate.
func (h Handle) Duplicate() (Handle, *Status) {
	return h.DuplicateWithReducedRights(RightNone)
}

// DuplicateWithReducedRights yields an independent handle whose rights are
// h.Rights() with the bits in remove cleared. It requires RightDuplicate
// on h regardless of which rights are being removed.
func (h Handle) DuplicateWithReducedRights(remove Rights) (Handle, *Status) {
	if !h.IsValid() {
		return Handle{}, NewStatus(KindInvalidArgument, "duplicate", "invalid handle")
	}
	if !h.rights.Has(RightDuplicate) {
		return Handle{}, NewStatus(KindPermissionDenied, "duplicate", "missing duplicate right")
	}
	wantRights := h.rights.Reduce(remove)
	raw, st := h.backend.Duplicate(h.raw, wantRights)
	if st != nil {
		return Handle{}, st
	}
	return New(h.backend, raw, wantRights), nil
}

// ReplaceWithReducedRights consumes h and returns a new handle with
// reduced rights, closing the original. On failure the original handle
// remains valid and is returned unchanged alongside the error.
func (h Handle) ReplaceWithReducedRights(remove Rights) (Handle, *Status) {
	if !h.IsValid() {
		return h, NewStatus(KindInvalidArgument, "replace", "invalid handle")
	}
	wantRights := h.rights.Reduce(remove)
	raw, st := h.backend.Duplicate(h.raw, wantRights)
	if st != nil {
		return h, st
	}
	if closeSt := h.backend.Close(h.raw); closeSt != nil {
		// The replacement succeeded but releasing the original failed;
		// surface the close failure but keep the new handle reachable
		// via the replaced-original semantics: callers treat h as
		// consumed regardless, per spec.
		return New(h.backend, raw, wantRights), closeSt
	}
	return New(h.backend, raw, wantRights), nil
}

// GetRights asks the backend for the rights the kernel currently
// associates with h, which should agree with h.Rights() absent a bug; used
// mainly for diagnostics and cross-process handles received without a
// locally-tracked Rights value.
func (h Handle) GetRights() (Rights, *Status) {
	if !h.IsValid() {
		return RightNone, NewStatus(KindInvalidArgument, "get_rights", "invalid handle")
	}
	return h.backend.GetRights(h.raw)
}

// Wait blocks up to deadline until one of the requested signals is
// satisfied, the handle can never satisfy them (failed_precondition), the
// deadline passes (deadline_exceeded), or the handle is cancelled
// (cancelled).
func (h Handle) Wait(ctx context.Context, signals Signals, deadline time.Time) (SatisfiedState, *Status) {
	if !h.IsValid() {
		return SatisfiedState{}, NewStatus(KindInvalidArgument, "wait", "invalid handle")
	}
	return h.backend.Wait(ctx, h.raw, signals, deadline)
}

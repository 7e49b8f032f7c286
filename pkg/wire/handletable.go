package wire

import "github.com/coreipc/corert/pkg/khandle"

// HandleTable is the ordered sequence of handles accompanying an encoded
// message (§3). Encode moves handles out of the payload and appends them
// here in depth-first traversal order; decode reverses the move and
// resets consumed slots to invalid.
type HandleTable struct {
	Handles []khandle.Raw
}

// NewHandleTable returns an empty table with capacity preallocated.
func NewHandleTable(capacity int) *HandleTable {
	return &HandleTable{Handles: make([]khandle.Raw, 0, capacity)}
}

// Push appends h and returns its index, used by encode.
func (t *HandleTable) Push(h khandle.Raw) uint32 {
	idx := uint32(len(t.Handles))
	t.Handles = append(t.Handles, h)
	return idx
}

// Take returns the handle at idx and resets that slot to invalid, so a
// table can only yield each handle once, per the decode contract.
func (t *HandleTable) Take(idx uint32) (khandle.Raw, bool) {
	if int(idx) >= len(t.Handles) {
		return khandle.Invalid, false
	}
	h := t.Handles[idx]
	t.Handles[idx] = khandle.Invalid
	return h, true
}

// Len returns the number of slots in the table (not all necessarily
// still valid).
func (t *HandleTable) Len() int { return len(t.Handles) }

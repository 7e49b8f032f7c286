package simkernel

import "github.com/coreipc/corert/pkg/khandle"

// SharedBufferCreate implements kernel.Kernel.
func (k *Kernel) SharedBufferCreate(size uint64) (khandle.Raw, *khandle.Status) {
	if size == 0 {
		return khandle.Invalid, khandle.NewStatus(khandle.KindInvalidArgument, "shared_buffer_create", "size must be positive")
	}
	o := &object{kind: kindSharedBuffer, rights: khandle.RightsAll, buf: make([]byte, size)}
	return k.put(o), nil
}

// BufferMap implements kernel.Kernel. Since this is an in-process
// simulation there is no real address-space mapping; it returns a slice
// aliasing the shared buffer's backing array directly.
func (k *Kernel) BufferMap(h khandle.Raw, offset, length uint64) ([]byte, *khandle.Status) {
	o, ok := k.get(h)
	if !ok || o.kind != kindSharedBuffer {
		return nil, khandle.NewStatus(khandle.KindInvalidArgument, "buffer_map", "not a shared buffer")
	}
	if offset+length > uint64(len(o.buf)) {
		return nil, khandle.NewStatus(khandle.KindInvalidArgument, "buffer_map", "range out of bounds")
	}
	return o.buf[offset : offset+length], nil
}

// BufferUnmap implements kernel.Kernel. No-op: the simulated backend never
// actually unmaps memory, since the slice simply aliases the owning
// object's backing array.
func (k *Kernel) BufferUnmap(mapped []byte) *khandle.Status {
	return nil
}

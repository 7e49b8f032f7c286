package wire

// Buffer is a bump allocator over a fixed-capacity byte region. All
// allocations are rounded up to 8 bytes; an allocation that would exceed
// capacity fails rather than growing, matching the "null result when
// exhausted" contract (§3).
type Buffer struct {
	data []byte
	used uint32
}

// NewBuffer allocates a fresh zeroed buffer of the given capacity.
func NewBuffer(capacity uint32) *Buffer {
	return &Buffer{data: make([]byte, capacity)}
}

// WrapBuffer views an existing byte slice (e.g. one just read off a
// message pipe) as a fully-used Buffer, for decode/validate.
func WrapBuffer(data []byte) *Buffer {
	return &Buffer{data: data, used: uint32(len(data))}
}

// Bytes returns the portion of the backing array allocated so far.
func (b *Buffer) Bytes() []byte { return b.data[:b.used] }

// Cap returns the buffer's total capacity.
func (b *Buffer) Cap() uint32 { return uint32(len(b.data)) }

// NumBytesUsed returns the current bump-allocator offset.
func (b *Buffer) NumBytesUsed() uint32 { return b.used }

func roundUp8(n uint32) uint32 {
	r := (n + 7) &^ 7
	if r < n {
		return 0 // overflow
	}
	return r
}

// Alloc reserves n bytes, rounded up to a multiple of 8, and zeroes them.
// It returns the absolute offset of the reservation, or ok=false if n
// overflows on rounding or the buffer has insufficient remaining capacity.
func (b *Buffer) Alloc(n uint32) (offset uint32, ok bool) {
	rounded := roundUp8(n)
	if rounded == 0 && n != 0 {
		return 0, false
	}
	if uint64(b.used)+uint64(rounded) > uint64(len(b.data)) {
		return 0, false
	}
	offset = b.used
	for i := offset; i < offset+rounded; i++ {
		b.data[i] = 0
	}
	b.used += rounded
	return offset, true
}

// Slice returns the byte range [offset, offset+length) for direct access.
// Callers must only request ranges already allocated or, for WrapBuffer,
// within the wrapped data.
func (b *Buffer) Slice(offset, length uint32) []byte {
	return b.data[offset : offset+length]
}

// InBounds reports whether [offset, offset+length) lies within the
// buffer's allocated region.
func (b *Buffer) InBounds(offset, length uint32) bool {
	if length == 0 {
		return offset <= b.used
	}
	end := uint64(offset) + uint64(length)
	return end <= uint64(b.used) && end > uint64(offset)
}

package wire

// Pointer cells are 8-byte values that mean different things depending on
// whether the surrounding buffer has been encoded yet: before encode (and
// after decode) a non-null cell holds the absolute buffer offset of its
// target; once encoded it holds an unsigned byte offset relative to the
// cell's own address (§3, §9). Both representations fit the same 8 bytes,
// so this package never needs a separate in-memory value type.

// SetPointerTarget writes the absolute offset of target into the pointer
// cell at cellOffset. A targetOffset of 0 leaves the cell null, the same
// as ClearPointer, since zero is the null representation.
func SetPointerTarget(buf *Buffer, cellOffset, targetOffset uint32) {
	WriteUint64(buf, cellOffset, uint64(targetOffset))
}

// ClearPointer writes a null pointer cell.
func ClearPointer(buf *Buffer, cellOffset uint32) {
	WriteUint64(buf, cellOffset, 0)
}

// PointerIsNull reports whether the cell at cellOffset is currently null,
// in either representation (zero in both).
func PointerIsNull(buf *Buffer, cellOffset uint32) bool {
	return ReadUint64(buf, cellOffset) == 0
}

// PointerTarget reads the absolute target offset from an unencoded cell.
func PointerTarget(buf *Buffer, cellOffset uint32) uint32 {
	return uint32(ReadUint64(buf, cellOffset))
}

// encodePointerCell converts an absolute-offset pointer cell into its
// wire form. It reports ok=false if the target does not strictly follow
// the cell or the resulting offset is not 8-aligned.
func encodePointerCell(buf *Buffer, cellOffset uint32) bool {
	abs := ReadUint64(buf, cellOffset)
	if abs == 0 {
		return true
	}
	if abs <= uint64(cellOffset) {
		return false
	}
	rel := abs - uint64(cellOffset)
	if rel%8 != 0 {
		return false
	}
	WriteUint64(buf, cellOffset, rel)
	return true
}

// decodePointerCell converts a wire-form relative offset back into an
// absolute buffer offset. ok=false if the resulting address would fall
// outside the buffer.
func decodePointerCell(buf *Buffer, cellOffset uint32) bool {
	rel := ReadUint64(buf, cellOffset)
	if rel == 0 {
		return true
	}
	abs := uint64(cellOffset) + rel
	if abs > uint64(buf.NumBytesUsed()) {
		return false
	}
	WriteUint64(buf, cellOffset, abs)
	return true
}

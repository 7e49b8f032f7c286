package wire

import "encoding/binary"

// InvalidHandleIndex is the wire-level sentinel for an absent handle
// (§4.3.2): the maximum unsigned 32-bit value.
const InvalidHandleIndex uint32 = 0xFFFFFFFF

func ReadUint32(buf *Buffer, offset uint32) uint32 {
	return binary.LittleEndian.Uint32(buf.data[offset : offset+4])
}

func WriteUint32(buf *Buffer, offset uint32, v uint32) {
	binary.LittleEndian.PutUint32(buf.data[offset:offset+4], v)
}

func ReadUint64(buf *Buffer, offset uint32) uint64 {
	return binary.LittleEndian.Uint64(buf.data[offset : offset+8])
}

func WriteUint64(buf *Buffer, offset uint32, v uint64) {
	binary.LittleEndian.PutUint64(buf.data[offset:offset+8], v)
}

// StructHeader is the first 8 bytes of every struct object on the wire.
type StructHeader struct {
	NumBytes uint32
	Version  uint32
}

func ReadStructHeader(buf *Buffer, offset uint32) StructHeader {
	return StructHeader{
		NumBytes: ReadUint32(buf, offset),
		Version:  ReadUint32(buf, offset+4),
	}
}

func WriteStructHeader(buf *Buffer, offset uint32, h StructHeader) {
	WriteUint32(buf, offset, h.NumBytes)
	WriteUint32(buf, offset+4, h.Version)
}

// ArrayHeader is the first 8 bytes of every array object on the wire.
type ArrayHeader struct {
	NumBytes    uint32
	NumElements uint32
}

func ReadArrayHeader(buf *Buffer, offset uint32) ArrayHeader {
	return ArrayHeader{
		NumBytes:    ReadUint32(buf, offset),
		NumElements: ReadUint32(buf, offset+4),
	}
}

func WriteArrayHeader(buf *Buffer, offset uint32, h ArrayHeader) {
	WriteUint32(buf, offset, h.NumBytes)
	WriteUint32(buf, offset+4, h.NumElements)
}

// UnionLayout is the fixed 16-byte representation of a union value:
// size, tag, and 8 bytes of inline payload (§3). Size zero denotes null.
type UnionLayout struct {
	Size uint32
	Tag  uint32
	Data [8]byte
}

func ReadUnionLayout(buf *Buffer, offset uint32) UnionLayout {
	var u UnionLayout
	u.Size = ReadUint32(buf, offset)
	u.Tag = ReadUint32(buf, offset+4)
	copy(u.Data[:], buf.data[offset+8:offset+16])
	return u
}

func WriteUnionLayout(buf *Buffer, offset uint32, u UnionLayout) {
	WriteUint32(buf, offset, u.Size)
	WriteUint32(buf, offset+4, u.Tag)
	copy(buf.data[offset+8:offset+16], u.Data[:])
}

// ReadHandleSlot and WriteHandleSlot access a 4-byte handle field. Before
// encode / after decode the slot holds the raw kernel identifier (0 =
// invalid); once encoded it holds either InvalidHandleIndex or a handle
// table index.
func ReadHandleSlot(buf *Buffer, offset uint32) uint32 {
	return binary.LittleEndian.Uint32(buf.data[offset : offset+4])
}

func WriteHandleSlot(buf *Buffer, offset uint32, v uint32) {
	binary.LittleEndian.PutUint32(buf.data[offset:offset+4], v)
}

// arrayByteSize computes header + ceil(numElements*elemBits/8), rounded
// up to 8, per §4.3.6. ok is false on 32-bit overflow.
func arrayByteSize(numElements uint32, elemBits uint32) (uint32, bool) {
	bits := uint64(numElements) * uint64(elemBits)
	bytes := (bits + 7) / 8
	total := uint64(arrayHeaderSize) + bytes
	rounded := (total + 7) &^ 7
	if rounded > 0xFFFFFFFF {
		return 0, false
	}
	return uint32(rounded), true
}

package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreipc/corert/pkg/khandle"
)

// uint32ArrayDescriptor describes a plain array of uint32 elements.
var uint32ArrayDescriptor = &ArrayDescriptor{Name: "uint32[]", Elem: KindPOD, ElemBits: 32, FixedLen: -1}

func TestArraySizing(t *testing.T) {
	buf := NewBuffer(1000)
	n, bytes := arrayByteSize(3, 32)
	require.True(t, bytes)
	assert.Equal(t, uint32(8+12+4), n) // 8 header + 12 data bytes, rounded up to 24

	offset, ok := buf.Alloc(n)
	require.True(t, ok)
	WriteArrayHeader(buf, offset, ArrayHeader{NumBytes: n, NumElements: 3})

	assert.Equal(t, uint32(8+12+4), buf.NumBytesUsed())
	header := ReadArrayHeader(buf, offset)
	assert.Equal(t, n, header.NumBytes)
	assert.Equal(t, uint32(3), header.NumElements)

	_, overflowOK := arrayByteSize(0xFFFFFFFF, 32)
	assert.False(t, overflowOK)
}

// Rect is a 16-byte-body struct: four int32 fields (x, y, w, h) packed
// into 16 bytes of body after the 8-byte header, version 0 only.
var rectDescriptor = &StructDescriptor{
	Name:     "Rect",
	Versions: []StructVersion{{Version: 0, NumBytes: 24}},
	Fields:   nil, // only POD fields (x, y, w, h), nothing the engine recurses into
}

// RectPair holds two non-null Rect pointers.
var rectPairDescriptor = &StructDescriptor{
	Name:     "RectPair",
	Versions: []StructVersion{{Version: 0, NumBytes: 24}},
	Fields: []FieldDescriptor{
		{Name: "first", Kind: KindStructPtr, Elem: &Descriptor{Struct: rectDescriptor}, Offset: 8, Nullable: true},
		{Name: "second", Kind: KindStructPtr, Elem: &Descriptor{Struct: rectDescriptor}, Offset: 16, Nullable: true},
	},
}

func TestStructOfStructsSizeAndEncode(t *testing.T) {
	buf := NewBuffer(200)

	pairOffset, ok := buf.Alloc(24)
	require.True(t, ok)
	WriteStructHeader(buf, pairOffset, StructHeader{NumBytes: 24, Version: 0})

	rect1Offset, ok := buf.Alloc(24)
	require.True(t, ok)
	WriteStructHeader(buf, rect1Offset, StructHeader{NumBytes: 24, Version: 0})

	rect2Offset, ok := buf.Alloc(24)
	require.True(t, ok)
	WriteStructHeader(buf, rect2Offset, StructHeader{NumBytes: 24, Version: 0})

	SetPointerTarget(buf, pairOffset+8, rect1Offset)
	SetPointerTarget(buf, pairOffset+16, rect2Offset)

	size := ComputeSerializedSize(buf, pairOffset, rectPairDescriptor)
	assert.Equal(t, uint64(72), size)

	handles := NewHandleTable(0)
	require.NoError(t, Encode(buf, pairOffset, rectPairDescriptor, handles))

	assert.Equal(t, uint64(rect1Offset-(pairOffset+8)), ReadUint64(buf, pairOffset+8))
	assert.Equal(t, uint64(rect2Offset-(pairOffset+16)), ReadUint64(buf, pairOffset+16))
	assert.Equal(t, uint32(16), uint32(ReadUint64(buf, pairOffset+8))) // first pointer: its own 8-byte cell plus the 8-byte second cell lie between it and rect1

	encoded := append([]byte(nil), buf.Bytes()...)

	wireBuf := WrapBuffer(encoded)
	require.NoError(t, Validate(wireBuf, pairOffset, rectPairDescriptor, 0))

	require.NoError(t, Decode(wireBuf, pairOffset, rectPairDescriptor, handles))
	assert.Equal(t, uint64(rect1Offset), ReadUint64(wireBuf, pairOffset+8))
	assert.Equal(t, uint64(rect2Offset), ReadUint64(wireBuf, pairOffset+16))
}

func TestArrayOfHandles(t *testing.T) {
	// Struct with a handle array pointer field plus a scalar handle field.
	handleArrayDesc := &ArrayDescriptor{Name: "handle[]", Elem: KindHandle, ElemBits: 32, FixedLen: -1, Nullable: true}
	parent := &StructDescriptor{
		Name:     "HandleHolder",
		Versions: []StructVersion{{Version: 0, NumBytes: 24}},
		Fields: []FieldDescriptor{
			{Name: "scalar", Kind: KindHandle, Offset: 8},
			{Name: "many", Kind: KindArrayPtr, Elem: &Descriptor{Array: handleArrayDesc}, Offset: 16, Nullable: true},
		},
	}

	buf := NewBuffer(200)
	parentOffset, ok := buf.Alloc(24)
	require.True(t, ok)
	WriteStructHeader(buf, parentOffset, StructHeader{NumBytes: 24, Version: 0})
	WriteHandleSlot(buf, parentOffset+8, 100) // outer handle raw id

	arrN, _ := arrayByteSize(3, 32)
	arrOffset, ok := buf.Alloc(arrN)
	require.True(t, ok)
	WriteArrayHeader(buf, arrOffset, ArrayHeader{NumBytes: arrN, NumElements: 3})
	WriteHandleSlot(buf, arrOffset+8+0, 201)
	WriteHandleSlot(buf, arrOffset+8+4, uint32(khandle.Invalid)) // middle slot invalid
	WriteHandleSlot(buf, arrOffset+8+8, 202)

	SetPointerTarget(buf, parentOffset+16, arrOffset)

	handles := NewHandleTable(0)
	require.NoError(t, Encode(buf, parentOffset, parent, handles))

	require.Equal(t, []khandle.Raw{100, 201, 202}, handles.Handles)
	assert.Equal(t, InvalidHandleIndex, ReadHandleSlot(buf, arrOffset+8+4))

	encoded := append([]byte(nil), buf.Bytes()...)
	wireBuf := WrapBuffer(encoded)
	require.NoError(t, Validate(wireBuf, parentOffset, parent, uint32(len(handles.Handles))))

	decodeHandles := &HandleTable{Handles: append([]khandle.Raw(nil), handles.Handles...)}
	require.NoError(t, Decode(wireBuf, parentOffset, parent, decodeHandles))
	assert.Equal(t, uint32(100), ReadHandleSlot(wireBuf, parentOffset+8))
	assert.Equal(t, uint32(201), ReadHandleSlot(wireBuf, arrOffset+8+0))
	assert.Equal(t, uint32(khandle.Invalid), ReadHandleSlot(wireBuf, arrOffset+8+4))
	assert.Equal(t, uint32(202), ReadHandleSlot(wireBuf, arrOffset+8+8))
}

func TestUnionArrayNullAndValue(t *testing.T) {
	const tagInt8 = 1
	unionDesc := &UnionDescriptor{
		Name:      "Value",
		NumFields: 2,
		Fields: []UnionFieldDescriptor{
			{Tag: tagInt8, Kind: KindPOD},
		},
	}
	unionArrayDesc := &ArrayDescriptor{Name: "Value[]", Elem: KindUnionInline, ElemDesc: &Descriptor{Union: unionDesc}, FixedLen: -1, Nullable: true}

	parent := &StructDescriptor{
		Name:     "SixFieldsWithUnionArray",
		Versions: []StructVersion{{Version: 0, NumBytes: 72}},
		Fields: []FieldDescriptor{
			{Name: "a", Kind: KindArrayPtr, Offset: 8, Nullable: true, Elem: &Descriptor{Array: uint32ArrayDescriptor}},
			{Name: "b", Kind: KindArrayPtr, Offset: 16, Nullable: true, Elem: &Descriptor{Array: uint32ArrayDescriptor}},
			{Name: "c", Kind: KindArrayPtr, Offset: 24, Nullable: true, Elem: &Descriptor{Array: uint32ArrayDescriptor}},
			{Name: "d", Kind: KindArrayPtr, Offset: 32, Nullable: true, Elem: &Descriptor{Array: uint32ArrayDescriptor}},
			{Name: "e", Kind: KindArrayPtr, Offset: 40, Nullable: true, Elem: &Descriptor{Array: uint32ArrayDescriptor}},
			{Name: "unionArray", Kind: KindArrayPtr, Offset: 48, Nullable: true, Elem: &Descriptor{Array: unionArrayDesc}},
			{Name: "inlineUnion", Kind: KindUnionInline, Offset: 56, Nullable: true, Elem: &Descriptor{Union: unionDesc}},
		},
	}

	buf := NewBuffer(200)
	parentOffset, ok := buf.Alloc(72)
	require.True(t, ok)
	WriteStructHeader(buf, parentOffset, StructHeader{NumBytes: 72, Version: 0})

	arrSize, _ := arrayByteSize(2, unionLayoutSize*8)
	arrOffset, ok := buf.Alloc(arrSize)
	require.True(t, ok)
	WriteArrayHeader(buf, arrOffset, ArrayHeader{NumBytes: arrSize, NumElements: 2})
	WriteUnionLayout(buf, arrOffset+8, UnionLayout{Size: 0}) // null
	var data [8]byte
	data[0] = 13
	WriteUnionLayout(buf, arrOffset+8+unionLayoutSize, UnionLayout{Size: unionLayoutSize, Tag: tagInt8, Data: data})

	SetPointerTarget(buf, parentOffset+48, arrOffset)

	size := ComputeSerializedSize(buf, parentOffset, parent)
	assert.Equal(t, uint64(8+6*8+16+(8+32)), size)

	handles := NewHandleTable(0)
	require.NoError(t, Encode(buf, parentOffset, parent, handles))

	for _, off := range []uint32{8, 16, 24, 32, 40} {
		assert.Equal(t, uint64(0), ReadUint64(buf, parentOffset+off))
	}
	assert.NotEqual(t, uint64(0), ReadUint64(buf, parentOffset+48))

	encoded := append([]byte(nil), buf.Bytes()...)
	wireBuf := WrapBuffer(encoded)
	require.NoError(t, Validate(wireBuf, parentOffset, parent, 0))
}

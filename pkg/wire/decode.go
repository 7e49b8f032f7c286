package wire

import "github.com/coreipc/corert/pkg/khandle"

// Decode is the inverse of Encode: it restores absolute pointer offsets
// and moves handles back out of handles into their payload slots
// (§4.3.3). After Decode, the graph rooted at offset may be traversed via
// ordinary pointer dereference exactly as if built in memory directly.
func Decode(buf *Buffer, offset uint32, desc *StructDescriptor, handles *HandleTable) error {
	return decodeStruct(buf, offset, desc, handles)
}

func decodeStruct(buf *Buffer, offset uint32, desc *StructDescriptor, handles *HandleTable) error {
	header := ReadStructHeader(buf, offset)
	for _, f := range desc.Fields {
		if f.MinVersion > header.Version {
			continue
		}
		if err := decodeField(buf, offset, f, handles); err != nil {
			return err
		}
	}
	return nil
}

func decodeField(buf *Buffer, base uint32, f FieldDescriptor, handles *HandleTable) error {
	cell := base + f.Offset
	switch f.Kind {
	case KindPOD:
		return nil
	case KindHandle, KindInterface:
		return decodeHandleSlot(buf, cell, handles)
	case KindUnionInline:
		return decodeUnionBody(buf, cell, f.Elem.Union, handles)
	case KindUnionPtr:
		if PointerIsNull(buf, cell) {
			return nil
		}
		if !decodePointerCell(buf, cell) {
			return &EncodeError{Offset: cell, Detail: "union pointer out of range"}
		}
		return decodeUnionBody(buf, PointerTarget(buf, cell), f.Elem.Union, handles)
	case KindStructPtr, KindMapPtr:
		if PointerIsNull(buf, cell) {
			return nil
		}
		if !decodePointerCell(buf, cell) {
			return &EncodeError{Offset: cell, Detail: "struct pointer out of range"}
		}
		return decodeStruct(buf, PointerTarget(buf, cell), f.Elem.Struct, handles)
	case KindArrayPtr:
		if PointerIsNull(buf, cell) {
			return nil
		}
		if !decodePointerCell(buf, cell) {
			return &EncodeError{Offset: cell, Detail: "array pointer out of range"}
		}
		return decodeArray(buf, PointerTarget(buf, cell), f.Elem.Array, handles)
	default:
		return nil
	}
}

func decodeArray(buf *Buffer, offset uint32, desc *ArrayDescriptor, handles *HandleTable) error {
	header := ReadArrayHeader(buf, offset)
	stride := elementStride(desc.Elem)
	if stride == 0 {
		return nil
	}
	base := offset + arrayHeaderSize
	for i := uint32(0); i < header.NumElements; i++ {
		cell := base + i*stride
		switch desc.Elem {
		case KindHandle, KindInterface:
			if err := decodeHandleSlot(buf, cell, handles); err != nil {
				return err
			}
		case KindUnionInline:
			if err := decodeUnionBody(buf, cell, desc.ElemDesc.Union, handles); err != nil {
				return err
			}
		case KindUnionPtr:
			if PointerIsNull(buf, cell) {
				continue
			}
			if !decodePointerCell(buf, cell) {
				return &EncodeError{Offset: cell, Detail: "union element pointer out of range"}
			}
			if err := decodeUnionBody(buf, PointerTarget(buf, cell), desc.ElemDesc.Union, handles); err != nil {
				return err
			}
		case KindStructPtr, KindMapPtr:
			if PointerIsNull(buf, cell) {
				continue
			}
			if !decodePointerCell(buf, cell) {
				return &EncodeError{Offset: cell, Detail: "struct element pointer out of range"}
			}
			if err := decodeStruct(buf, PointerTarget(buf, cell), desc.ElemDesc.Struct, handles); err != nil {
				return err
			}
		case KindArrayPtr:
			if PointerIsNull(buf, cell) {
				continue
			}
			if !decodePointerCell(buf, cell) {
				return &EncodeError{Offset: cell, Detail: "array element pointer out of range"}
			}
			if err := decodeArray(buf, PointerTarget(buf, cell), desc.ElemDesc.Array, handles); err != nil {
				return err
			}
		}
	}
	return nil
}

func decodeUnionBody(buf *Buffer, offset uint32, desc *UnionDescriptor, handles *HandleTable) error {
	u := ReadUnionLayout(buf, offset)
	if u.Size == 0 {
		return nil
	}
	field, known := desc.fieldForTag(u.Tag)
	if !known {
		return nil
	}
	cell := offset + 8
	switch field.Kind {
	case KindPOD:
		return nil
	case KindHandle:
		return decodeHandleSlot(buf, cell, handles)
	case KindStructPtr, KindMapPtr:
		if PointerIsNull(buf, cell) {
			return nil
		}
		if !decodePointerCell(buf, cell) {
			return &EncodeError{Offset: cell, Detail: "union payload pointer out of range"}
		}
		return decodeStruct(buf, PointerTarget(buf, cell), field.Elem.Struct, handles)
	case KindArrayPtr:
		if PointerIsNull(buf, cell) {
			return nil
		}
		if !decodePointerCell(buf, cell) {
			return &EncodeError{Offset: cell, Detail: "union payload pointer out of range"}
		}
		return decodeArray(buf, PointerTarget(buf, cell), field.Elem.Array, handles)
	case KindUnionPtr:
		if PointerIsNull(buf, cell) {
			return nil
		}
		if !decodePointerCell(buf, cell) {
			return &EncodeError{Offset: cell, Detail: "nested union pointer out of range"}
		}
		return decodeUnionBody(buf, PointerTarget(buf, cell), field.Elem.Union, handles)
	default:
		return nil
	}
}

func decodeHandleSlot(buf *Buffer, cell uint32, handles *HandleTable) error {
	idx := ReadHandleSlot(buf, cell)
	if idx == InvalidHandleIndex {
		WriteHandleSlot(buf, cell, uint32(khandle.Invalid))
		return nil
	}
	h, ok := handles.Take(idx)
	if !ok {
		return &EncodeError{Offset: cell, Detail: "handle index out of range"}
	}
	WriteHandleSlot(buf, cell, uint32(h))
	return nil
}

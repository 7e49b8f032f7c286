package wire

import "github.com/coreipc/corert/pkg/khandle"

// Encode converts the object graph rooted at offset from its unencoded
// form (absolute pointer offsets, raw handle identifiers in handle slots)
// into wire form in place, moving every handle into handles in
// depth-first traversal order (§4.3.2). The traversal order matches
// ComputeSerializedSize's and deep-copy's, so a value's handle buffer
// layout is stable across repeated encodes.
func Encode(buf *Buffer, offset uint32, desc *StructDescriptor, handles *HandleTable) error {
	return encodeStruct(buf, offset, desc, handles)
}

func encodeStruct(buf *Buffer, offset uint32, desc *StructDescriptor, handles *HandleTable) error {
	header := ReadStructHeader(buf, offset)
	for _, f := range desc.Fields {
		if f.MinVersion > header.Version {
			continue
		}
		if err := encodeField(buf, offset, f, handles); err != nil {
			return err
		}
	}
	return nil
}

func encodeField(buf *Buffer, base uint32, f FieldDescriptor, handles *HandleTable) error {
	cell := base + f.Offset
	switch f.Kind {
	case KindPOD:
		return nil
	case KindHandle:
		encodeHandleSlot(buf, cell, handles)
		return nil
	case KindInterface:
		encodeHandleSlot(buf, cell, handles) // leading 4 bytes are the handle
		return nil
	case KindUnionInline:
		return encodeUnionBody(buf, cell, f.Elem.Union, handles)
	case KindUnionPtr:
		if PointerIsNull(buf, cell) {
			return nil
		}
		target := PointerTarget(buf, cell)
		if err := encodeUnionBody(buf, target, f.Elem.Union, handles); err != nil {
			return err
		}
		if !encodePointerCell(buf, cell) {
			return &EncodeError{Offset: cell, Detail: "union pointer not forward-pointing or misaligned"}
		}
		return nil
	case KindStructPtr, KindMapPtr:
		if PointerIsNull(buf, cell) {
			return nil
		}
		target := PointerTarget(buf, cell)
		if err := encodeStruct(buf, target, f.Elem.Struct, handles); err != nil {
			return err
		}
		if !encodePointerCell(buf, cell) {
			return &EncodeError{Offset: cell, Detail: "struct pointer not forward-pointing or misaligned"}
		}
		return nil
	case KindArrayPtr:
		if PointerIsNull(buf, cell) {
			return nil
		}
		target := PointerTarget(buf, cell)
		if err := encodeArray(buf, target, f.Elem.Array, handles); err != nil {
			return err
		}
		if !encodePointerCell(buf, cell) {
			return &EncodeError{Offset: cell, Detail: "array pointer not forward-pointing or misaligned"}
		}
		return nil
	default:
		return nil
	}
}

func encodeArray(buf *Buffer, offset uint32, desc *ArrayDescriptor, handles *HandleTable) error {
	header := ReadArrayHeader(buf, offset)
	stride := elementStride(desc.Elem)
	if stride == 0 {
		return nil // plain POD elements carry no pointers/handles
	}
	base := offset + arrayHeaderSize
	for i := uint32(0); i < header.NumElements; i++ {
		cell := base + i*stride
		switch desc.Elem {
		case KindHandle, KindInterface:
			encodeHandleSlot(buf, cell, handles)
		case KindUnionInline:
			if err := encodeUnionBody(buf, cell, desc.ElemDesc.Union, handles); err != nil {
				return err
			}
		case KindUnionPtr:
			if PointerIsNull(buf, cell) {
				continue
			}
			target := PointerTarget(buf, cell)
			if err := encodeUnionBody(buf, target, desc.ElemDesc.Union, handles); err != nil {
				return err
			}
			if !encodePointerCell(buf, cell) {
				return &EncodeError{Offset: cell, Detail: "union element pointer invalid"}
			}
		case KindStructPtr, KindMapPtr:
			if PointerIsNull(buf, cell) {
				continue
			}
			target := PointerTarget(buf, cell)
			if err := encodeStruct(buf, target, desc.ElemDesc.Struct, handles); err != nil {
				return err
			}
			if !encodePointerCell(buf, cell) {
				return &EncodeError{Offset: cell, Detail: "struct element pointer invalid"}
			}
		case KindArrayPtr:
			if PointerIsNull(buf, cell) {
				continue
			}
			target := PointerTarget(buf, cell)
			if err := encodeArray(buf, target, desc.ElemDesc.Array, handles); err != nil {
				return err
			}
			if !encodePointerCell(buf, cell) {
				return &EncodeError{Offset: cell, Detail: "array element pointer invalid"}
			}
		}
	}
	return nil
}

// encodeUnionBody encodes the active arm of a union stored at offset,
// whether inline in a struct/array slot or as a boxed object's body. A
// union whose tag the descriptor does not recognize is left untouched
// (forward compatibility, §4.3.4): its bytes pass through unexamined.
func encodeUnionBody(buf *Buffer, offset uint32, desc *UnionDescriptor, handles *HandleTable) error {
	u := ReadUnionLayout(buf, offset)
	if u.Size == 0 {
		return nil
	}
	field, known := desc.fieldForTag(u.Tag)
	if !known {
		return nil
	}
	cell := offset + 8 // the union's 8-byte payload region
	switch field.Kind {
	case KindPOD, KindHandle:
		if field.Kind == KindHandle {
			encodeHandleSlot(buf, cell, handles)
		}
		return nil
	case KindStructPtr, KindMapPtr:
		if PointerIsNull(buf, cell) {
			return nil
		}
		target := PointerTarget(buf, cell)
		if err := encodeStruct(buf, target, field.Elem.Struct, handles); err != nil {
			return err
		}
		if !encodePointerCell(buf, cell) {
			return &EncodeError{Offset: cell, Detail: "union payload pointer invalid"}
		}
		return nil
	case KindArrayPtr:
		if PointerIsNull(buf, cell) {
			return nil
		}
		target := PointerTarget(buf, cell)
		if err := encodeArray(buf, target, field.Elem.Array, handles); err != nil {
			return err
		}
		if !encodePointerCell(buf, cell) {
			return &EncodeError{Offset: cell, Detail: "union payload pointer invalid"}
		}
		return nil
	case KindUnionPtr:
		if PointerIsNull(buf, cell) {
			return nil
		}
		target := PointerTarget(buf, cell)
		if err := encodeUnionBody(buf, target, field.Elem.Union, handles); err != nil {
			return err
		}
		if !encodePointerCell(buf, cell) {
			return &EncodeError{Offset: cell, Detail: "nested union pointer invalid"}
		}
		return nil
	default:
		return nil
	}
}

func encodeHandleSlot(buf *Buffer, cell uint32, handles *HandleTable) {
	raw := khandle.Raw(ReadHandleSlot(buf, cell))
	if raw == khandle.Invalid {
		WriteHandleSlot(buf, cell, InvalidHandleIndex)
		return
	}
	idx := handles.Push(raw)
	WriteHandleSlot(buf, cell, idx)
}

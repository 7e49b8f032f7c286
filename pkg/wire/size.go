package wire

// elementStride returns the per-element byte width for the element kinds
// this engine walks generically (everything except plain POD data, whose
// width is described by ArrayDescriptor.ElemBits and never recursed into).
func elementStride(k Kind) uint32 {
	switch k {
	case KindHandle:
		return 4
	case KindInterface:
		return 8 // handle (4 bytes) + version (4 bytes)
	case KindUnionInline:
		return unionLayoutSize
	default:
		if IsPointer(k) {
			return 8
		}
		return 0
	}
}

// ComputeSerializedSize returns the total footprint (§4.3.1) of the
// struct object rooted at offset, honoring that struct's own recorded
// version. The result includes the root object's own num_bytes (header
// and body) plus the recursive cost of every out-of-line field or
// element reachable from it.
func ComputeSerializedSize(buf *Buffer, offset uint32, desc *StructDescriptor) uint64 {
	return structCost(buf, offset, desc)
}

func structCost(buf *Buffer, offset uint32, desc *StructDescriptor) uint64 {
	header := ReadStructHeader(buf, offset)
	total := uint64(header.NumBytes)
	for _, f := range desc.Fields {
		if f.MinVersion > header.Version {
			continue
		}
		total += fieldCost(buf, offset, f, header.Version)
	}
	return total
}

func fieldCost(buf *Buffer, base uint32, f FieldDescriptor, version uint32) uint64 {
	cell := base + f.Offset
	switch f.Kind {
	case KindPOD, KindHandle, KindInterface:
		return 0
	case KindUnionInline:
		return unionInlineCost(buf, cell, f.Elem.Union)
	case KindUnionPtr:
		if PointerIsNull(buf, cell) {
			return 0
		}
		target := PointerTarget(buf, cell)
		return uint64(unionLayoutSize) + unionInlineCost(buf, target, f.Elem.Union)
	case KindStructPtr:
		if PointerIsNull(buf, cell) {
			return 0
		}
		return structCost(buf, PointerTarget(buf, cell), f.Elem.Struct)
	case KindMapPtr:
		if PointerIsNull(buf, cell) {
			return 0
		}
		return structCost(buf, PointerTarget(buf, cell), f.Elem.Struct)
	case KindArrayPtr:
		if PointerIsNull(buf, cell) {
			return 0
		}
		return arrayCost(buf, PointerTarget(buf, cell), f.Elem.Array)
	default:
		return 0
	}
}

func arrayCost(buf *Buffer, offset uint32, desc *ArrayDescriptor) uint64 {
	header := ReadArrayHeader(buf, offset)
	total := uint64(header.NumBytes)
	stride := elementStride(desc.Elem)
	if stride == 0 {
		return total // plain POD elements: no recursion needed
	}
	base := offset + arrayHeaderSize
	for i := uint32(0); i < header.NumElements; i++ {
		cell := base + i*stride
		switch desc.Elem {
		case KindUnionInline:
			total += unionInlineCost(buf, cell, desc.ElemDesc.Union)
		case KindUnionPtr:
			if !PointerIsNull(buf, cell) {
				target := PointerTarget(buf, cell)
				total += uint64(unionLayoutSize) + unionInlineCost(buf, target, desc.ElemDesc.Union)
			}
		case KindStructPtr, KindMapPtr:
			if !PointerIsNull(buf, cell) {
				total += structCost(buf, PointerTarget(buf, cell), desc.ElemDesc.Struct)
			}
		case KindArrayPtr:
			if !PointerIsNull(buf, cell) {
				total += arrayCost(buf, PointerTarget(buf, cell), desc.ElemDesc.Array)
			}
		case KindHandle, KindInterface:
			// inline, no recursive cost
		}
	}
	return total
}

// unionInlineCost computes the recursive cost of a union value stored at
// offset (16 bytes), whether inline in a struct/array slot or as the body
// of a boxed out-of-line union object. A zero size means null: no cost.
func unionInlineCost(buf *Buffer, offset uint32, desc *UnionDescriptor) uint64 {
	u := ReadUnionLayout(buf, offset)
	if u.Size == 0 {
		return 0
	}
	field, known := desc.fieldForTag(u.Tag)
	if !known {
		return 0 // forward-compatible unknown tag: no further cost known
	}
	switch field.Kind {
	case KindPOD, KindHandle, KindInterface:
		return 0
	case KindStructPtr, KindMapPtr, KindArrayPtr, KindUnionPtr:
		// The payload's first 8 bytes of the 16-byte union data hold the
		// pointer cell for boxed reference arms.
		cell := offset + 8
		if PointerIsNull(buf, cell) {
			return 0
		}
		target := PointerTarget(buf, cell)
		if field.Kind == KindArrayPtr {
			return arrayCost(buf, target, field.Elem.Array)
		}
		if field.Kind == KindUnionPtr {
			return uint64(unionLayoutSize) + unionInlineCost(buf, target, field.Elem.Union)
		}
		return structCost(buf, target, field.Elem.Struct)
	default:
		return 0
	}
}

package wire

// ReservedUnknownTag is the tag value a generated union type reserves to
// mean "a later producer set a field this reader's table doesn't carry,
// but it still round-trips opaquely" (§4.3.5). It is distinct from a tag
// that is simply >= NumFields, which deep-copy must refuse to propagate
// since nothing downstream can interpret or re-validate it.
const ReservedUnknownTag uint32 = 0xFFFFFFFF

// DeepCopy produces a self-contained copy of the object graph rooted at
// srcOffset into dest, allocating in the same depth-first order the
// source was built in (so re-encoding the copy reproduces the same byte
// image an equivalent freshly-built graph would). It reports ok=false if
// dest runs out of space, or if the graph contains a union (inline or
// out-of-line) whose tag is neither recognized, reserved-unknown, nor within the
// source producer's known field count.
func DeepCopy(src *Buffer, srcOffset uint32, desc *StructDescriptor, dest *Buffer) (uint32, bool) {
	return deepCopyStruct(src, srcOffset, desc, dest)
}

func deepCopyStruct(src *Buffer, srcOffset uint32, desc *StructDescriptor, dest *Buffer) (uint32, bool) {
	header := ReadStructHeader(src, srcOffset)
	newOffset, ok := dest.Alloc(header.NumBytes)
	if !ok {
		return 0, false
	}
	copy(dest.Slice(newOffset, header.NumBytes), src.Slice(srcOffset, header.NumBytes))
	for _, f := range desc.Fields {
		if f.MinVersion > header.Version {
			continue
		}
		if !deepCopyField(src, srcOffset, newOffset, f, dest) {
			return 0, false
		}
	}
	return newOffset, true
}

func deepCopyField(src *Buffer, srcBase, destBase uint32, f FieldDescriptor, dest *Buffer) bool {
	cellSrc := srcBase + f.Offset
	cellDest := destBase + f.Offset
	switch f.Kind {
	case KindPOD, KindHandle, KindInterface:
		return true // already carried by the bulk byte copy
	case KindUnionInline:
		return deepCopyUnionBody(src, cellSrc, dest, cellDest, f.Elem.Union)
	case KindUnionPtr:
		if PointerIsNull(src, cellSrc) {
			return true
		}
		srcTarget := PointerTarget(src, cellSrc)
		newTarget, ok := dest.Alloc(unionLayoutSize)
		if !ok {
			return false
		}
		copy(dest.Slice(newTarget, unionLayoutSize), src.Slice(srcTarget, unionLayoutSize))
		if !deepCopyUnionBody(src, srcTarget, dest, newTarget, f.Elem.Union) {
			return false
		}
		SetPointerTarget(dest, cellDest, newTarget)
		return true
	case KindStructPtr, KindMapPtr:
		if PointerIsNull(src, cellSrc) {
			return true
		}
		newTarget, ok := deepCopyStruct(src, PointerTarget(src, cellSrc), f.Elem.Struct, dest)
		if !ok {
			return false
		}
		SetPointerTarget(dest, cellDest, newTarget)
		return true
	case KindArrayPtr:
		if PointerIsNull(src, cellSrc) {
			return true
		}
		newTarget, ok := deepCopyArray(src, PointerTarget(src, cellSrc), f.Elem.Array, dest)
		if !ok {
			return false
		}
		SetPointerTarget(dest, cellDest, newTarget)
		return true
	default:
		return true
	}
}

func deepCopyArray(src *Buffer, srcOffset uint32, desc *ArrayDescriptor, dest *Buffer) (uint32, bool) {
	header := ReadArrayHeader(src, srcOffset)
	newOffset, ok := dest.Alloc(header.NumBytes)
	if !ok {
		return 0, false
	}
	copy(dest.Slice(newOffset, header.NumBytes), src.Slice(srcOffset, header.NumBytes))

	stride := elementStride(desc.Elem)
	if stride == 0 {
		return newOffset, true
	}
	srcBase := srcOffset + arrayHeaderSize
	destBase := newOffset + arrayHeaderSize
	for i := uint32(0); i < header.NumElements; i++ {
		cellSrc := srcBase + i*stride
		cellDest := destBase + i*stride
		switch desc.Elem {
		case KindHandle, KindInterface:
			// bulk-copied
		case KindUnionInline:
			if !deepCopyUnionBody(src, cellSrc, dest, cellDest, desc.ElemDesc.Union) {
				return 0, false
			}
		case KindUnionPtr:
			if PointerIsNull(src, cellSrc) {
				continue
			}
			srcTarget := PointerTarget(src, cellSrc)
			newTarget, ok := dest.Alloc(unionLayoutSize)
			if !ok {
				return 0, false
			}
			copy(dest.Slice(newTarget, unionLayoutSize), src.Slice(srcTarget, unionLayoutSize))
			if !deepCopyUnionBody(src, srcTarget, dest, newTarget, desc.ElemDesc.Union) {
				return 0, false
			}
			SetPointerTarget(dest, cellDest, newTarget)
		case KindStructPtr, KindMapPtr:
			if PointerIsNull(src, cellSrc) {
				continue
			}
			newTarget, ok := deepCopyStruct(src, PointerTarget(src, cellSrc), desc.ElemDesc.Struct, dest)
			if !ok {
				return 0, false
			}
			SetPointerTarget(dest, cellDest, newTarget)
		case KindArrayPtr:
			if PointerIsNull(src, cellSrc) {
				continue
			}
			newTarget, ok := deepCopyArray(src, PointerTarget(src, cellSrc), desc.ElemDesc.Array, dest)
			if !ok {
				return 0, false
			}
			SetPointerTarget(dest, cellDest, newTarget)
		}
	}
	return newOffset, true
}

// deepCopyUnionBody handles a union value already bulk-copied by its
// caller (16 bytes at destOffset mirror srcOffset); it only needs to
// chase and relocate a boxed reference arm, if the active arm is one.
func deepCopyUnionBody(src *Buffer, srcOffset uint32, dest *Buffer, destOffset uint32, desc *UnionDescriptor) bool {
	u := ReadUnionLayout(src, srcOffset)
	if u.Size == 0 {
		return true
	}
	field, known := desc.fieldForTag(u.Tag)
	if !known {
		if u.Tag == ReservedUnknownTag || u.Tag < desc.NumFields {
			return true // opaque to this reader, but still a valid structural copy
		}
		return false
	}
	cellSrc := srcOffset + 8
	cellDest := destOffset + 8
	switch field.Kind {
	case KindPOD, KindHandle:
		return true
	case KindStructPtr, KindMapPtr:
		if PointerIsNull(src, cellSrc) {
			return true
		}
		newTarget, ok := deepCopyStruct(src, PointerTarget(src, cellSrc), field.Elem.Struct, dest)
		if !ok {
			return false
		}
		SetPointerTarget(dest, cellDest, newTarget)
		return true
	case KindArrayPtr:
		if PointerIsNull(src, cellSrc) {
			return true
		}
		newTarget, ok := deepCopyArray(src, PointerTarget(src, cellSrc), field.Elem.Array, dest)
		if !ok {
			return false
		}
		SetPointerTarget(dest, cellDest, newTarget)
		return true
	case KindUnionPtr:
		if PointerIsNull(src, cellSrc) {
			return true
		}
		srcTarget := PointerTarget(src, cellSrc)
		newTarget, ok := dest.Alloc(unionLayoutSize)
		if !ok {
			return false
		}
		copy(dest.Slice(newTarget, unionLayoutSize), src.Slice(srcTarget, unionLayoutSize))
		if !deepCopyUnionBody(src, srcTarget, dest, newTarget, field.Elem.Union) {
			return false
		}
		SetPointerTarget(dest, cellDest, newTarget)
		return true
	default:
		return true
	}
}

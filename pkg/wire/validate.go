package wire

// Validate is the only operation run on untrusted input (§4.3.4). It is a
// total function: for any bytes and any advertised handle count it
// returns either nil or a *ValidationError, and it never reads past the
// buffer's used length or past handleCount. It maintains two
// monotonically non-decreasing cursors, nextPointer and
// nextHandleIndex, enforcing the no-aliasing and strictly-increasing
// invariants without building an auxiliary set.
func Validate(buf *Buffer, rootOffset uint32, desc *StructDescriptor, handleCount uint32) error {
	v := &validator{buf: buf, handleCount: handleCount}
	return v.validateStruct(rootOffset, desc)
}

type validator struct {
	buf             *Buffer
	nextPointer     uint32
	nextHandleIndex uint32
	handleCount     uint32
}

func (v *validator) advance(to uint32) {
	if to > v.nextPointer {
		v.nextPointer = to
	}
}

func (v *validator) validateStruct(offset uint32, desc *StructDescriptor) error {
	if offset%8 != 0 {
		return newValidationError(FailureMisalignedObject, offset, "struct offset not 8-aligned")
	}
	if !v.buf.InBounds(offset, structHeaderSize) {
		return newValidationError(FailureIllegalMemoryRange, offset, "struct header out of range")
	}
	header := ReadStructHeader(v.buf, offset)
	if header.NumBytes%8 != 0 {
		return newValidationError(FailureMisalignedObject, offset, "struct num_bytes not a multiple of 8")
	}
	if knownSize, known := desc.SizeForVersion(header.Version); known {
		if header.NumBytes != knownSize {
			return newValidationError(FailureUnexpectedStructHeader, offset, "num_bytes mismatch for known version")
		}
	} else {
		highest := desc.HighestVersion()
		if header.Version < highest.Version || header.NumBytes < highest.NumBytes {
			return newValidationError(FailureUnexpectedStructHeader, offset, "unrecognized version smaller than highest known")
		}
	}
	if !v.buf.InBounds(offset, header.NumBytes) {
		return newValidationError(FailureIllegalMemoryRange, offset, "struct body out of range")
	}
	v.advance(offset + header.NumBytes)

	for _, f := range desc.Fields {
		if f.MinVersion > header.Version {
			continue
		}
		if err := v.validateField(offset, f); err != nil {
			return err
		}
	}
	if desc.IsMap {
		if err := v.validateMapLengths(offset, desc); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) validateField(base uint32, f FieldDescriptor) error {
	cell := base + f.Offset
	switch f.Kind {
	case KindPOD:
		return nil
	case KindHandle, KindInterface:
		return v.validateHandleSlot(cell, f.Nullable)
	case KindUnionInline:
		return v.validateUnionInline(cell, f.Elem.Union, f.Nullable)
	case KindUnionPtr:
		return v.validatePointerToUnion(cell, f.Elem.Union, f.Nullable)
	case KindStructPtr, KindMapPtr:
		return v.validatePointerToStruct(cell, f.Elem.Struct, f.Nullable)
	case KindArrayPtr:
		return v.validatePointerToArray(cell, f.Elem.Array, f.Nullable)
	default:
		return nil
	}
}

func (v *validator) validateHandleSlot(cell uint32, nullable bool) error {
	if !v.buf.InBounds(cell, 4) {
		return newValidationError(FailureIllegalMemoryRange, cell, "handle slot out of range")
	}
	idx := ReadHandleSlot(v.buf, cell)
	if idx == InvalidHandleIndex {
		if !nullable {
			return newValidationError(FailureUnexpectedInvalidHandle, cell, "")
		}
		return nil
	}
	if idx >= v.handleCount || idx != v.nextHandleIndex {
		return newValidationError(FailureIllegalHandle, cell, "handle index out of sequence")
	}
	v.nextHandleIndex++
	return nil
}

// pointerRel reads the raw wire-form (relative) pointer cell and resolves
// it to an absolute target, checking the forward/aligned/no-aliasing
// invariants. A non-nil err means validation failed;
// isNull=true means the cell was null and the caller should apply its
// own nullability rule.
func (v *validator) pointerRel(cell uint32) (target uint32, isNull bool, err error) {
	if !v.buf.InBounds(cell, 8) {
		return 0, false, newValidationError(FailureIllegalMemoryRange, cell, "pointer cell out of range")
	}
	rel := ReadUint64(v.buf, cell)
	if rel == 0 {
		return 0, true, nil
	}
	if rel%8 != 0 {
		return 0, false, newValidationError(FailureIllegalPointer, cell, "offset not 8-aligned")
	}
	abs := uint64(cell) + rel
	if abs > uint64(v.buf.NumBytesUsed()) {
		return 0, false, newValidationError(FailureIllegalMemoryRange, cell, "pointer target beyond buffer")
	}
	if abs < uint64(v.nextPointer) {
		return 0, false, newValidationError(FailureIllegalPointer, cell, "pointer targets already-claimed region")
	}
	return uint32(abs), false, nil
}

func (v *validator) validatePointerToStruct(cell uint32, desc *StructDescriptor, nullable bool) error {
	target, isNull, err := v.pointerRel(cell)
	if err != nil {
		return err
	}
	if isNull {
		if !nullable {
			return newValidationError(FailureUnexpectedNullPointer, cell, "")
		}
		return nil
	}
	return v.validateStruct(target, desc)
}

func (v *validator) validatePointerToArray(cell uint32, desc *ArrayDescriptor, nullable bool) error {
	target, isNull, err := v.pointerRel(cell)
	if err != nil {
		return err
	}
	if isNull {
		if !nullable {
			return newValidationError(FailureUnexpectedNullPointer, cell, "")
		}
		return nil
	}
	return v.validateArray(target, desc)
}

func (v *validator) validatePointerToUnion(cell uint32, desc *UnionDescriptor, nullable bool) error {
	target, isNull, err := v.pointerRel(cell)
	if err != nil {
		return err
	}
	if isNull {
		if !nullable {
			return newValidationError(FailureUnexpectedNullPointer, cell, "")
		}
		return nil
	}
	if !v.buf.InBounds(target, unionLayoutSize) {
		return newValidationError(FailureIllegalMemoryRange, target, "boxed union out of range")
	}
	v.advance(target + unionLayoutSize)
	return v.validateUnionBody(target, desc)
}

func (v *validator) validateArray(offset uint32, desc *ArrayDescriptor) error {
	if offset%8 != 0 {
		return newValidationError(FailureMisalignedObject, offset, "array offset not 8-aligned")
	}
	if !v.buf.InBounds(offset, arrayHeaderSize) {
		return newValidationError(FailureIllegalMemoryRange, offset, "array header out of range")
	}
	header := ReadArrayHeader(v.buf, offset)
	if header.NumBytes%8 != 0 {
		return newValidationError(FailureMisalignedObject, offset, "array num_bytes not a multiple of 8")
	}
	if header.NumBytes < arrayHeaderSize {
		return newValidationError(FailureUnexpectedArrayHeader, offset, "num_bytes smaller than header")
	}
	minBytes, ok := arrayByteSize(header.NumElements, desc.ElemBits)
	if !ok {
		return newValidationError(FailureUnexpectedArrayHeader, offset, "element count overflows size computation")
	}
	if header.NumBytes < minBytes {
		return newValidationError(FailureUnexpectedArrayHeader, offset, "num_bytes smaller than elements require")
	}
	if desc.FixedLen >= 0 && uint32(desc.FixedLen) != header.NumElements {
		return newValidationError(FailureUnexpectedArrayHeader, offset, "num_elements does not match fixed length")
	}
	if !v.buf.InBounds(offset, header.NumBytes) {
		return newValidationError(FailureIllegalMemoryRange, offset, "array body out of range")
	}
	v.advance(offset + header.NumBytes)

	stride := elementStride(desc.Elem)
	if stride == 0 {
		return nil
	}
	base := offset + arrayHeaderSize
	for i := uint32(0); i < header.NumElements; i++ {
		cell := base + i*stride
		var err error
		switch desc.Elem {
		case KindHandle, KindInterface:
			err = v.validateHandleSlot(cell, desc.Nullable)
		case KindUnionInline:
			err = v.validateUnionInline(cell, desc.ElemDesc.Union, desc.Nullable)
		case KindUnionPtr:
			err = v.validatePointerToUnion(cell, desc.ElemDesc.Union, desc.Nullable)
		case KindStructPtr, KindMapPtr:
			err = v.validatePointerToStruct(cell, desc.ElemDesc.Struct, desc.Nullable)
		case KindArrayPtr:
			err = v.validatePointerToArray(cell, desc.ElemDesc.Array, desc.Nullable)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) validateUnionInline(offset uint32, desc *UnionDescriptor, nullable bool) error {
	if !v.buf.InBounds(offset, unionLayoutSize) {
		return newValidationError(FailureIllegalMemoryRange, offset, "inline union out of range")
	}
	u := ReadUnionLayout(v.buf, offset)
	if u.Size == 0 {
		if !nullable {
			return newValidationError(FailureUnexpectedNullUnion, offset, "")
		}
		return nil
	}
	if u.Size != unionLayoutSize {
		return newValidationError(FailureUnexpectedStructHeader, offset, "union size does not match fixed layout")
	}
	return v.validateUnionBody(offset, desc)
}

// validateUnionBody validates the tag-selected payload of a union whose
// 16-byte header has already been confirmed present and correctly sized.
// An unknown tag is forward-compatible (§4.3.4): the payload is skipped
// without charging the cursor further, matching the early-return shape
// noted in §9.
func (v *validator) validateUnionBody(offset uint32, desc *UnionDescriptor) error {
	u := ReadUnionLayout(v.buf, offset)
	field, known := desc.fieldForTag(u.Tag)
	if !known {
		return nil
	}
	cell := offset + 8
	switch field.Kind {
	case KindPOD:
		return nil
	case KindHandle:
		return v.validateHandleSlot(cell, field.Nullable)
	case KindStructPtr, KindMapPtr:
		return v.validatePointerToStruct(cell, field.Elem.Struct, field.Nullable)
	case KindArrayPtr:
		return v.validatePointerToArray(cell, field.Elem.Array, field.Nullable)
	case KindUnionPtr:
		return v.validatePointerToUnion(cell, field.Elem.Union, field.Nullable)
	default:
		return nil
	}
}

func (v *validator) validateMapLengths(offset uint32, desc *StructDescriptor) error {
	keysLen, err := v.arrayLenAtField(offset, desc.Fields[0])
	if err != nil {
		return err
	}
	valuesLen, err := v.arrayLenAtField(offset, desc.Fields[1])
	if err != nil {
		return err
	}
	if keysLen != valuesLen {
		return newValidationError(FailureDifferentSizedArraysInMap, offset, "")
	}
	return nil
}

func (v *validator) arrayLenAtField(base uint32, f FieldDescriptor) (uint32, error) {
	cell := base + f.Offset
	if !v.buf.InBounds(cell, 8) {
		return 0, newValidationError(FailureIllegalMemoryRange, cell, "map array pointer out of range")
	}
	rel := ReadUint64(v.buf, cell)
	if rel == 0 {
		return 0, nil
	}
	target := uint32(uint64(cell) + rel)
	if !v.buf.InBounds(target, arrayHeaderSize) {
		return 0, newValidationError(FailureIllegalMemoryRange, target, "map array header out of range")
	}
	return ReadArrayHeader(v.buf, target).NumElements, nil
}

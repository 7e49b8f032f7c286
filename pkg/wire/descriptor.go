// Package wire implements the self-describing, offset-encoded binary
// serialization engine: buffer allocation, in-place encode/decode,
// exhaustive validation of untrusted input, and deep-copy across buffers.
// Aggregate layout is described by static Descriptor values that a real
// deployment would emit from a code generator (§4.2); this package only
// consumes them.
package wire

// Kind distinguishes the wire-level shape of a field or array element.
type Kind int

const (
	// KindPOD is a plain scalar (integer, float, bool, packed bit) stored
	// inline; the engine never recurses into it.
	KindPOD Kind = iota
	// KindHandle is a 32-bit handle slot.
	KindHandle
	// KindInterface is a handle paired with an inline 4-byte version number,
	// used for capability references that carry protocol versioning.
	KindInterface
	// KindStructPtr is an out-of-line pointer to a struct.
	KindStructPtr
	// KindArrayPtr is an out-of-line pointer to an array (includes strings,
	// which are modeled as arrays; maps use KindMapPtr).
	KindArrayPtr
	// KindMapPtr is an out-of-line pointer to a map, modeled as a struct
	// with exactly two array-pointer fields (keys, values).
	KindMapPtr
	// KindUnionPtr is an out-of-line pointer to a boxed (nested) union.
	KindUnionPtr
	// KindUnionInline is a union stored inline in its containing struct or
	// array slot (fixed 16-byte layout).
	KindUnionInline
)

func (k Kind) String() string {
	switch k {
	case KindPOD:
		return "pod"
	case KindHandle:
		return "handle"
	case KindInterface:
		return "interface"
	case KindStructPtr:
		return "struct_ptr"
	case KindArrayPtr:
		return "array_ptr"
	case KindMapPtr:
		return "map_ptr"
	case KindUnionPtr:
		return "union_ptr"
	case KindUnionInline:
		return "union_inline"
	default:
		return "unknown"
	}
}

// IsPointer reports whether k occupies an out-of-line, pointer-reached
// object rather than living inline in its containing slot.
func IsPointer(k Kind) bool {
	switch k {
	case KindStructPtr, KindArrayPtr, KindMapPtr, KindUnionPtr:
		return true
	default:
		return false
	}
}

const (
	structHeaderSize = 8
	arrayHeaderSize  = 8
	unionLayoutSize  = 16
)

// StructVersion records the fixed body size a known struct version
// occupies. Versions must be supplied in ascending order.
type StructVersion struct {
	Version  uint32
	NumBytes uint32
}

// FieldDescriptor describes one struct field.
type FieldDescriptor struct {
	Name       string
	Kind       Kind
	Elem       *Descriptor // child descriptor for pointer/union/interface kinds
	Offset     uint32      // byte offset within the struct body
	MinVersion uint32      // earliest version introducing this field
	Nullable   bool
}

// StructDescriptor describes a struct's versioned body layout.
type StructDescriptor struct {
	Name     string
	Versions []StructVersion // ascending by Version
	Fields   []FieldDescriptor
	// IsMap marks a struct as the synthetic two-array-pointer layout
	// backing the wire format's map type (§3), triggering the
	// equal-length validation rule.
	IsMap bool
}

// HighestVersion returns the descriptor's newest known version.
func (d *StructDescriptor) HighestVersion() StructVersion {
	return d.Versions[len(d.Versions)-1]
}

// SizeForVersion returns the fixed body size for a known version and
// whether that version is recognized at all.
func (d *StructDescriptor) SizeForVersion(version uint32) (uint32, bool) {
	for _, v := range d.Versions {
		if v.Version == version {
			return v.NumBytes, true
		}
	}
	return 0, false
}

// UnionFieldDescriptor describes one tagged arm of a union.
type UnionFieldDescriptor struct {
	Tag      uint32
	Kind     Kind
	Elem     *Descriptor
	Nullable bool
}

// UnionDescriptor describes a union's tag space. NumFields is the total
// number of arms the producer that emitted this descriptor knew about;
// tags at or above it are genuinely unknown, not merely unhandled here.
type UnionDescriptor struct {
	Name      string
	Fields    []UnionFieldDescriptor
	NumFields uint32
}

func (d *UnionDescriptor) fieldForTag(tag uint32) (UnionFieldDescriptor, bool) {
	for _, f := range d.Fields {
		if f.Tag == tag {
			return f, true
		}
	}
	return UnionFieldDescriptor{}, false
}

// ArrayDescriptor describes an array's element layout.
type ArrayDescriptor struct {
	Name       string
	Elem       Kind
	ElemDesc   *Descriptor
	FixedLen   int // -1 when the array has no fixed length
	ElemBits   uint32
	Nullable   bool // nullability of pointer/union elements
}

// Descriptor is a tagged union over the three aggregate descriptor kinds;
// exactly one field is populated, selected by the referring field's Kind.
type Descriptor struct {
	Struct *StructDescriptor
	Union  *UnionDescriptor
	Array  *ArrayDescriptor
}

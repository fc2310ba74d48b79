package ir

// MethodSlot is one entry of a StructType's vtable: the slot index a
// virtual call site indexes by, and the signature of the function
// currently materialised into that slot.
type MethodSlot struct {
	Slot     int
	Function FunctionName
}

// StructType owns the layout for one source class: its field list (a
// prefix extension of its supertype's, per spec.md §3), its virtual
// method table, and the bookkeeping the type manager (internal/typesystem)
// assigns once the full set of classes is known.
type StructType struct {
	ClassName  string
	SuperClass string // empty for the root of the hierarchy

	// Fields is this class's own fields appended after every inherited
	// field, in the order each was first registered.
	Fields []NamedStorageType

	// Methods is the vtable: index i holds slot i's current override.
	// New slots are appended the first time a method is declared
	// anywhere in the hierarchy; an override in a subclass replaces the
	// FunctionName at the inherited slot without changing Slot.
	Methods []MethodSlot

	// TypeIndex is the Wasm type-section index of a GC struct type; the
	// type manager sets it to -1 and no compiler stage assigns it.
	TypeIndex int

	// VTableOffset is the linear-memory offset (in bytes) where this
	// class's materialised vtable begins, as internal/typesystem's
	// AssignVTableOffset hands it out; -1 until assigned.
	VTableOffset int
}

// FieldOffset returns the byte offset of the named field within an
// instance, given each field occupies one 4-byte slot (i32/f32/ref) or
// 8-byte slot (i64/f64); found is false if name is not a field of s.
func (s *StructType) FieldOffset(name string) (offset int, found bool) {
	off := 0
	for _, f := range s.Fields {
		if f.Name == name {
			return off, true
		}
		off += fieldSize(f.Type)
	}
	return 0, false
}

func fieldSize(t ValueType) int {
	switch t {
	case ValueTypeI64, ValueTypeF64:
		return 8
	default:
		return 4
	}
}

// SlotOf returns the vtable slot index assigned to the method whose
// SignatureName is methodSignature, and
// whether that method exists anywhere in s's vtable.
func (s *StructType) SlotOf(methodSignature string) (int, bool) {
	for _, m := range s.Methods {
		if m.Function.SignatureName() == methodSignature {
			return m.Slot, true
		}
	}
	return 0, false
}

// ArrayType is the single-field composite array type from spec.md §4.3:
// one mutable element type shared by the NEW/GET/SET/LEN operation
// family.
type ArrayType struct {
	Element   ValueType
	TypeIndex int
}

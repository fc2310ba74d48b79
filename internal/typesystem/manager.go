// Package typesystem implements the type manager of spec.md §4.3: it
// canonicalises function types, registers struct (class) layouts and
// their vtables, and registers array types — all by stable index,
// assigned in first-interned order so repeat compiles are deterministic
// (spec.md §8 "idempotent compile").
package typesystem

import (
	"github.com/wasmforge/classwasm/internal/errs"
	"github.com/wasmforge/classwasm/internal/ir"
)

// Manager owns the type/struct/array registries for one compilation.
type Manager struct {
	functionTypes []ir.FunctionType
	structs       map[string]*ir.StructType
	structOrder   []string
	arrays        map[ir.ValueType]*ir.ArrayType
	arrayOrder    []ir.ValueType

	nextVTableOffset int

	// vtableData accumulates the flattened (className, []functionIndex)
	// pairs the binary writer materialises into the data section at
	// VTableOffset (spec.md §4.3 "materialise a vector of function
	// indices into the data section"). Populated by FinalizeVTables once
	// every function has a final module index; nil before that.
	vtableData map[string][]int
}

// New returns an empty Manager.
func New() *Manager {
	return &Manager{
		structs: make(map[string]*ir.StructType),
		arrays:  make(map[ir.ValueType]*ir.ArrayType),
	}
}

// InternFunctionType returns the stable index for ft, appending it if this
// exact (Params, Results) pair has not been seen before. Linear search is
// appropriate given spec.md §4.3's "small cardinality" note — real
// modules rarely exceed a few hundred distinct signatures.
func (m *Manager) InternFunctionType(ft ir.FunctionType) int {
	for i, existing := range m.functionTypes {
		if existing.Equal(ft) {
			return i
		}
	}
	m.functionTypes = append(m.functionTypes, ft)
	return len(m.functionTypes) - 1
}

// FunctionTypes returns the interned function types in assignment order —
// the type section's contents (spec.md §8 "Type canonicalisation").
func (m *Manager) FunctionTypes() []ir.FunctionType { return m.functionTypes }

// RegisterClass registers className's field list and superclass chain.
// The first call for a given class defines its layout for the rest of
// the compilation (spec.md §4.3: "the first field list encountered
// defines the layout; later queries return the same index"); a second
// call with a different field list is ignored, matching that invariant.
// superFields must already reflect the supertype's full layout (the
// driver is responsible for registering classes in topological order).
func (m *Manager) RegisterClass(className, superClassName string, ownFields []ir.NamedStorageType, superFields []ir.NamedStorageType) *ir.StructType {
	if existing, ok := m.structs[className]; ok {
		return existing
	}
	fields := make([]ir.NamedStorageType, 0, len(superFields)+len(ownFields))
	fields = append(fields, superFields...)
	fields = append(fields, ownFields...)

	st := &ir.StructType{
		ClassName:    className,
		SuperClass:   superClassName,
		Fields:       fields,
		TypeIndex:    -1,
		VTableOffset: -1,
	}
	m.structs[className] = st
	m.structOrder = append(m.structOrder, className)
	return st
}

// Class looks up a previously registered class; failure to find one is
// the fatal "unknown class name" condition spec.md §4.3 describes — the
// caller is expected to wrap a nil return into a KindInput WasmException
// carrying the offending method/line.
func (m *Manager) Class(className string) (*ir.StructType, bool) {
	st, ok := m.structs[className]
	return st, ok
}

// MustClass is Class, but returns a ready-made WasmException instead of
// a bool, for call sites that want to propagate the error directly.
func (m *Manager) MustClass(className, inMethod string, line int) (*ir.StructType, error) {
	st, ok := m.structs[className]
	if !ok {
		return nil, errs.New(errs.KindInput, "reference to unknown class %q", className).
			WithLocation(className, inMethod, line)
	}
	return st, nil
}

// RegisterVirtualMethod assigns or reuses a vtable slot for fn on
// className's StructType. If a method of the same simple name+descriptor
// already has a slot (inherited from a supertype), that slot's
// FunctionName is overridden in place; otherwise a new slot is appended,
// per spec.md §4.3's "new slots are appended, overrides keep the
// inherited slot".
func (m *Manager) RegisterVirtualMethod(className string, slotKey string, fn ir.FunctionName) {
	st := m.structs[className]
	if st == nil {
		return
	}
	for i, slot := range st.Methods {
		if slotMatchesKey(st, i, slotKey) {
			st.Methods[i] = ir.MethodSlot{Slot: slot.Slot, Function: fn}
			return
		}
	}
	st.Methods = append(st.Methods, ir.MethodSlot{Slot: len(st.Methods), Function: fn})
}

func slotMatchesKey(st *ir.StructType, i int, slotKey string) bool {
	return st.Methods[i].Function.MethodName+st.Methods[i].Function.Descriptor == slotKey
}

// InheritVirtualMethods copies superClass's vtable into className's
// StructType before any of className's own methods are registered, so
// that overrides in RegisterVirtualMethod correctly reuse inherited
// slots instead of appending duplicates.
func (m *Manager) InheritVirtualMethods(className, superClassName string) {
	sub, subOK := m.structs[className]
	super, superOK := m.structs[superClassName]
	if !subOK || !superOK || len(sub.Methods) > 0 {
		return
	}
	sub.Methods = append([]ir.MethodSlot(nil), super.Methods...)
}

// AssignVTableOffset hands out the next sequential linear-memory offset
// for className's materialised vtable, `slotWidth` bytes per slot
// (4 bytes holds a function index). Offsets are assigned in the order
// classes were first registered, keeping data-segment layout
// deterministic across repeat compiles.
func (m *Manager) AssignVTableOffset(className string, slotWidth int) int {
	st := m.structs[className]
	if st == nil || st.VTableOffset >= 0 {
		if st != nil {
			return st.VTableOffset
		}
		return -1
	}
	off := m.nextVTableOffset
	st.VTableOffset = off
	m.nextVTableOffset += len(st.Methods) * slotWidth
	return off
}

// FinalizeVTables resolves every registered class's vtable slots to
// their final module function index via indexOf, and records the
// result for VTableSegments to read back. Must run once every method
// has been translated and assigned its module function index (after
// internal/driver's translateAll, before module assembly) — a vtable
// slot whose FunctionName indexOf cannot resolve is a structural bug,
// not a user-facing input error, since it means a class was registered
// with a virtual method no translated function backs.
func (m *Manager) FinalizeVTables(indexOf func(ir.FunctionName) (int, bool)) error {
	m.vtableData = make(map[string][]int, len(m.structOrder))
	for _, name := range m.structOrder {
		st := m.structs[name]
		if st.VTableOffset < 0 || len(st.Methods) == 0 {
			continue
		}
		indices := make([]int, len(st.Methods))
		for _, slot := range st.Methods {
			idx, ok := indexOf(slot.Function)
			if !ok {
				return errs.New(errs.KindStructural,
					"vtable slot %d of class %q references unresolved function %s",
					slot.Slot, name, slot.Function.SignatureName())
			}
			indices[slot.Slot] = idx
		}
		m.vtableData[name] = indices
	}
	return nil
}

// VTableSegment is one class's materialised vtable: the linear-memory
// byte offset it begins at, and the function index destined for each
// slot, in slot order.
type VTableSegment struct {
	Offset          int
	FunctionIndices []int
}

// VTableSegments returns one segment per class with a non-empty vtable,
// in class-registration order, ready for internal/driver to hand to
// internal/binarywriter as data section entries. Call only after
// FinalizeVTables; returns nil before that.
func (m *Manager) VTableSegments() []VTableSegment {
	if m.vtableData == nil {
		return nil
	}
	segments := make([]VTableSegment, 0, len(m.vtableData))
	for _, name := range m.structOrder {
		indices, ok := m.vtableData[name]
		if !ok {
			continue
		}
		segments = append(segments, VTableSegment{Offset: m.structs[name].VTableOffset, FunctionIndices: indices})
	}
	return segments
}

// RegisterArray interns an array type for elementType, returning the
// ArrayType shared by every array-of-elementType in the module (spec.md
// §4.3: "Registered as a single-field composite whose element type is
// mutable").
func (m *Manager) RegisterArray(elementType ir.ValueType) *ir.ArrayType {
	if at, ok := m.arrays[elementType]; ok {
		return at
	}
	at := &ir.ArrayType{Element: elementType, TypeIndex: -1}
	m.arrays[elementType] = at
	m.arrayOrder = append(m.arrayOrder, elementType)
	return at
}

// ClassOrder returns class names in first-registration order, the order
// the binary/text writers walk to emit struct types deterministically.
func (m *Manager) ClassOrder() []string { return append([]string(nil), m.structOrder...) }

// ArrayOrder returns element types in first-registration order.
func (m *Manager) ArrayOrder() []ir.ValueType { return append([]ir.ValueType(nil), m.arrayOrder...) }

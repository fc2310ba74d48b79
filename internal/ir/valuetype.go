// Package ir holds the data model shared end-to-end by the compiler
// pipeline (spec.md §3): value types, function/struct types, the
// FunctionName identity key, and the WasmInstruction instruction union.
package ir

import "fmt"

// ValueType is a tagged enumeration of Wasm value kinds. Leaf kinds carry
// the one-byte wire code used directly in the binary format (matching
// api.ValueType in a Wasm-executing runtime, e.g. i32=0x7f); storage
// kinds (i8, i16) only ever appear inside struct/array field
// declarations, never in a function signature.
type ValueType byte

const (
	ValueTypeI32        ValueType = 0x7f
	ValueTypeI64        ValueType = 0x7e
	ValueTypeF32        ValueType = 0x7d
	ValueTypeF64        ValueType = 0x7c
	ValueTypeV128       ValueType = 0x7b
	ValueTypeFuncref    ValueType = 0x70
	ValueTypeExternref  ValueType = 0x6f
	ValueTypeVoid       ValueType = 0x40 // same wire code as Wasm's "empty" block type

	// storage kinds: valid only as NamedStorageType.Type, never flattened
	// into a function signature (see NamedStorageType doc).
	ValueTypeI8  ValueType = 0x78
	ValueTypeI16 ValueType = 0x77

	// composite indicators: tag a FunctionType/StructType/array/ref_type
	// rather than a single scalar slot. Never written as a leaf wire byte;
	// the assembler expands these into their own type-section entries.
	ValueTypeFunc     ValueType = 0x60
	ValueTypeStruct   ValueType = 0x5f
	ValueTypeArray    ValueType = 0x5e
	ValueTypeRefType  ValueType = 0x63
)

// IsLeaf reports whether t is one of the scalar kinds legal in a function
// signature (spec.md §3 invariant: "every value type used in a function
// signature flattens to a leaf kind").
func (t ValueType) IsLeaf() bool {
	switch t {
	case ValueTypeI32, ValueTypeI64, ValueTypeF32, ValueTypeF64, ValueTypeV128,
		ValueTypeFuncref, ValueTypeExternref, ValueTypeVoid:
		return true
	}
	return false
}

// IsStorageKind reports whether t may only appear as a struct/array field
// type (i8, i16 — sub-integer storage kinds).
func (t ValueType) IsStorageKind() bool {
	return t == ValueTypeI8 || t == ValueTypeI16
}

// String renders t the way the text writer emits it (§4.9).
func (t ValueType) String() string {
	switch t {
	case ValueTypeI32:
		return "i32"
	case ValueTypeI64:
		return "i64"
	case ValueTypeF32:
		return "f32"
	case ValueTypeF64:
		return "f64"
	case ValueTypeV128:
		return "v128"
	case ValueTypeFuncref:
		return "funcref"
	case ValueTypeExternref:
		return "externref"
	case ValueTypeVoid:
		return "void"
	case ValueTypeI8:
		return "i8"
	case ValueTypeI16:
		return "i16"
	case ValueTypeFunc:
		return "func"
	case ValueTypeStruct:
		return "struct"
	case ValueTypeArray:
		return "array"
	case ValueTypeRefType:
		return "ref_type"
	default:
		return fmt.Sprintf("unknown(0x%02x)", byte(t))
	}
}

// NamedStorageType is a (ValueType, name) pair used for struct and array
// fields. Field order is significant and, per spec.md §3, fixed at first
// emission: once a class's field list has been registered by the type
// manager, later lookups must return the identical order.
type NamedStorageType struct {
	Type ValueType
	Name string
}

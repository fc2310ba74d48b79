package typesystem

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmforge/classwasm/internal/ir"
)

func TestInternFunctionTypeDeduplicates(t *testing.T) {
	m := New()
	i1 := m.InternFunctionType(ir.FunctionType{Params: []ir.ValueType{ir.ValueTypeI32, ir.ValueTypeI32}, Results: []ir.ValueType{ir.ValueTypeI32}})
	i2 := m.InternFunctionType(ir.FunctionType{Params: []ir.ValueType{ir.ValueTypeI32, ir.ValueTypeI32}, Results: []ir.ValueType{ir.ValueTypeI32}})
	require.Equal(t, i1, i2)

	i3 := m.InternFunctionType(ir.FunctionType{Params: []ir.ValueType{ir.ValueTypeI64}, Results: []ir.ValueType{ir.ValueTypeI64}})
	require.NotEqual(t, i1, i3)
	require.Len(t, m.FunctionTypes(), 2)
}

func TestTwoMethodsSameSignatureYieldOneTypeEntry(t *testing.T) {
	m := New()
	ft := ir.FunctionType{Params: []ir.ValueType{ir.ValueTypeI32, ir.ValueTypeI32}, Results: []ir.ValueType{ir.ValueTypeI32}}
	m.InternFunctionType(ft)
	m.InternFunctionType(ft)
	require.Len(t, m.FunctionTypes(), 1)
}

func TestRegisterClassIsFirstWriteWins(t *testing.T) {
	m := New()
	st := m.RegisterClass("Base", "", []ir.NamedStorageType{{Type: ir.ValueTypeI32, Name: "x"}}, nil)
	require.Len(t, st.Fields, 1)

	again := m.RegisterClass("Base", "", []ir.NamedStorageType{{Type: ir.ValueTypeI64, Name: "y"}}, nil)
	require.Same(t, st, again)
	require.Len(t, again.Fields, 1, "second registration must not change the already-fixed layout")
}

func TestSubclassFieldsExtendSuperclassLayout(t *testing.T) {
	m := New()
	base := m.RegisterClass("Base", "", []ir.NamedStorageType{{Type: ir.ValueTypeI32, Name: "x"}}, nil)
	sub := m.RegisterClass("Sub", "Base", []ir.NamedStorageType{{Type: ir.ValueTypeI32, Name: "y"}}, base.Fields)

	require.Equal(t, []ir.NamedStorageType{
		{Type: ir.ValueTypeI32, Name: "x"},
		{Type: ir.ValueTypeI32, Name: "y"},
	}, sub.Fields)
}

func TestVirtualMethodOverrideKeepsInheritedSlot(t *testing.T) {
	m := New()
	m.RegisterClass("Base", "", nil, nil)
	m.RegisterClass("Sub", "Base", nil, nil)

	m.RegisterVirtualMethod("Base", "greet(I)I", ir.FunctionName{ClassName: "Base", MethodName: "greet", Descriptor: "(I)I"})
	m.InheritVirtualMethods("Sub", "Base")
	m.RegisterVirtualMethod("Sub", "greet(I)I", ir.FunctionName{ClassName: "Sub", MethodName: "greet", Descriptor: "(I)I"})

	base, _ := m.Class("Base")
	sub, _ := m.Class("Sub")
	require.Len(t, base.Methods, 1)
	require.Len(t, sub.Methods, 1, "override must not append a new slot")
	require.Equal(t, "Sub", sub.Methods[0].Function.ClassName)
	require.Equal(t, base.Methods[0].Slot, sub.Methods[0].Slot)
}

func TestVTableOffsetsAreSequentialAndStable(t *testing.T) {
	m := New()
	m.RegisterClass("A", "", nil, nil)
	m.RegisterVirtualMethod("A", "m1", ir.FunctionName{ClassName: "A", MethodName: "m1"})
	m.RegisterVirtualMethod("A", "m2", ir.FunctionName{ClassName: "A", MethodName: "m2"})
	m.RegisterClass("B", "", nil, nil)
	m.RegisterVirtualMethod("B", "m1", ir.FunctionName{ClassName: "B", MethodName: "m1"})

	offA := m.AssignVTableOffset("A", 4)
	offB := m.AssignVTableOffset("B", 4)
	require.Equal(t, 0, offA)
	require.Equal(t, 8, offB) // A has 2 slots * 4 bytes

	// Idempotent: re-assigning returns the same offset, doesn't advance the cursor.
	require.Equal(t, offA, m.AssignVTableOffset("A", 4))
}

func TestRegisterArrayDeduplicatesByElementType(t *testing.T) {
	m := New()
	a1 := m.RegisterArray(ir.ValueTypeI32)
	a2 := m.RegisterArray(ir.ValueTypeI32)
	require.Same(t, a1, a2)

	a3 := m.RegisterArray(ir.ValueTypeF64)
	require.NotSame(t, a1, a3)
	require.Len(t, m.ArrayOrder(), 2)
}

func TestUnknownClassIsFatal(t *testing.T) {
	m := New()
	_, err := m.MustClass("Nope", "caller", 10)
	require.Error(t, err)
}

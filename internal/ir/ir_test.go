package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFunctionTypeEqual(t *testing.T) {
	a := FunctionType{Params: []ValueType{ValueTypeI32, ValueTypeI32}, Results: []ValueType{ValueTypeI32}}
	b := FunctionType{Params: []ValueType{ValueTypeI32, ValueTypeI32}, Results: []ValueType{ValueTypeI32}}
	c := FunctionType{Params: []ValueType{ValueTypeI64}, Results: []ValueType{ValueTypeI64}}
	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
}

func TestFunctionTypeString(t *testing.T) {
	ft := FunctionType{Params: []ValueType{ValueTypeI32, ValueTypeI32}, Results: []ValueType{ValueTypeI32}}
	require.Equal(t, "(param i32 i32) (result i32)", ft.String())

	require.Equal(t, "", FunctionType{}.String())
}

func TestSignatureRegistryInternIsStable(t *testing.T) {
	r := NewSignatureRegistry()
	fn1 := r.Intern(FunctionName{ClassName: "Foo", MethodName: "bar", Descriptor: "(I)I"})
	fn2 := r.Intern(FunctionName{ClassName: "Foo", MethodName: "bar", Descriptor: "(I)I"})
	require.Equal(t, fn1, fn2)
	require.Equal(t, 1, r.Len())

	r.Intern(FunctionName{ClassName: "Foo", MethodName: "baz", Descriptor: "(I)I"})
	require.Equal(t, 2, r.Len())

	got, ok := r.Lookup("Foo.bar(I)I")
	require.True(t, ok)
	require.Equal(t, fn1, got)
}

func TestValueTypeLeafAndStorage(t *testing.T) {
	require.True(t, ValueTypeI32.IsLeaf())
	require.False(t, ValueTypeI8.IsLeaf())
	require.True(t, ValueTypeI8.IsStorageKind())
	require.False(t, ValueTypeI32.IsStorageKind())
}

func TestStructTypeFieldOffset(t *testing.T) {
	s := &StructType{
		ClassName: "Point",
		Fields: []NamedStorageType{
			{Type: ValueTypeI32, Name: "x"},
			{Type: ValueTypeI64, Name: "y"},
			{Type: ValueTypeI32, Name: "z"},
		},
	}
	off, ok := s.FieldOffset("y")
	require.True(t, ok)
	require.Equal(t, 4, off)

	off, ok = s.FieldOffset("z")
	require.True(t, ok)
	require.Equal(t, 12, off)

	_, ok = s.FieldOffset("missing")
	require.False(t, ok)
}

func TestInstructionKindStringIsTotal(t *testing.T) {
	for k := InstructionKind(0); k < instructionKindEnd; k++ {
		require.NotEqual(t, "unknown", k.String())
	}
}

func TestInstructionBuilders(t *testing.T) {
	c := ConstI32Instr(42, 10, 3)
	require.Equal(t, KindConst, c.Kind)
	require.Equal(t, int32(42), c.ConstI32)

	s := LocalSetInstr(2, 11, 3)
	g := LocalGetInstr(2, 12, 3)
	require.Equal(t, LocalSet, s.LocalOp)
	require.Equal(t, LocalGet, g.LocalOp)
}

package textwriter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmforge/classwasm/internal/binarywriter"
	"github.com/wasmforge/classwasm/internal/ir"
)

func TestEncodeEmptyModule(t *testing.T) {
	out, err := Encode(&binarywriter.Module{})
	require.NoError(t, err)
	require.Equal(t, "(module\n)\n", out)
}

func TestEncodeFunctionIsTwoSpaceIndented(t *testing.T) {
	out, err := Encode(&binarywriter.Module{
		Types: []ir.FunctionType{{Params: []ir.ValueType{ir.ValueTypeI32}, Results: []ir.ValueType{ir.ValueTypeI32}}},
		Functions: []binarywriter.Function{
			{
				TypeIndex: 0,
				Export:    "identity",
				Code: ir.InstructionList{Items: []ir.Instruction{
					ir.LocalGetInstr(0, 0, 1),
					{Kind: ir.KindBlock, BlockOp: ir.BlockReturn},
				}},
			},
		},
	})
	require.NoError(t, err)
	require.Contains(t, out, "  (func (;0;) (type 0)\n")
	require.Contains(t, out, "    local.get 0\n")
	require.Contains(t, out, "    return\n")
	require.Contains(t, out, `(export "identity" (func 0))`)
}

func TestEncodeIsDeterministicAcrossRuns(t *testing.T) {
	m := &binarywriter.Module{
		Types: []ir.FunctionType{{}},
		Functions: []binarywriter.Function{
			{TypeIndex: 0, Code: ir.InstructionList{Items: []ir.Instruction{
				ir.ConstI32Instr(7, 0, 1),
			}}},
		},
	}
	out1, err1 := Encode(m)
	out2, err2 := Encode(m)
	require.NoError(t, err1)
	require.NoError(t, err2)
	require.Equal(t, out1, out2)
}

func TestEncodeFloatConstUsesHexFloatSyntax(t *testing.T) {
	out, err := Encode(&binarywriter.Module{
		Types: []ir.FunctionType{{}},
		Functions: []binarywriter.Function{
			{TypeIndex: 0, Code: ir.InstructionList{Items: []ir.Instruction{
				{Kind: ir.KindConst, ConstType: ir.ValueTypeF64, ConstF64: 1.5},
			}}},
		},
	})
	require.NoError(t, err)
	require.True(t, strings.Contains(out, "0x") && strings.Contains(out, "p"))
}

func TestEncodeUnresolvedInstructionErrors(t *testing.T) {
	_, err := Encode(&binarywriter.Module{
		Types: []ir.FunctionType{{}},
		Functions: []binarywriter.Function{
			{TypeIndex: 0, Code: ir.InstructionList{Items: []ir.Instruction{
				{Kind: ir.KindArray, ArrayOp: ir.ArrayNew},
			}}},
		},
	})
	require.Error(t, err)
}

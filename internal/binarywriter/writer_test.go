package binarywriter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmforge/classwasm/internal/ir"
)

func TestEncodeEmptyModuleIsJustPreamble(t *testing.T) {
	out, err := Encode(&Module{})
	require.NoError(t, err)
	require.Equal(t, append(append([]byte{}, magic...), version...), out)
}

func TestEncodeTypeSectionMatchesKnownShape(t *testing.T) {
	i32 := byte(ir.ValueTypeI32)
	out, err := Encode(&Module{
		Types: []ir.FunctionType{
			{},
			{Params: []ir.ValueType{ir.ValueTypeI32, ir.ValueTypeI32}, Results: []ir.ValueType{ir.ValueTypeI32}},
		},
	})
	require.NoError(t, err)

	expected := append(append([]byte{}, magic...), version...)
	expected = append(expected,
		sectionType, 0x0a, // 10 bytes
		0x02,             // 2 types
		0x60, 0x00, 0x00, // func, no params, no results
		0x60, 0x02, i32, i32, 0x01, i32, // func, 2 params, 1 result
	)
	require.Equal(t, expected, out)
}

func TestEncodeExportedFunctionWithCode(t *testing.T) {
	out, err := Encode(&Module{
		Types: []ir.FunctionType{
			{Params: []ir.ValueType{ir.ValueTypeI32, ir.ValueTypeI32}, Results: []ir.ValueType{ir.ValueTypeI32}},
		},
		Functions: []Function{
			{
				TypeIndex: 0,
				Export:    "add",
				Code: ir.InstructionList{Items: []ir.Instruction{
					ir.LocalGetInstr(0, 0, 1),
					ir.LocalGetInstr(1, 0, 1),
					{Kind: ir.KindBlock, BlockOp: ir.BlockReturn},
				}},
			},
		},
	})
	require.NoError(t, err)
	require.Contains(t, string(out), "add")

	// Function section: 1 function, type index 0.
	require.Contains(t, string(out), string([]byte{sectionFunction, 0x02, 0x01, 0x00}))
}

func TestEncodeUnresolvedInstructionIsAnError(t *testing.T) {
	_, err := Encode(&Module{
		Types: []ir.FunctionType{{}},
		Functions: []Function{
			{
				TypeIndex: 0,
				Code: ir.InstructionList{Items: []ir.Instruction{
					{Kind: ir.KindArray, ArrayOp: ir.ArrayNew},
				}},
			},
		},
	})
	require.Error(t, err)
}

func TestLocalDeclsAreRunLengthEncoded(t *testing.T) {
	out, err := Encode(&Module{
		Types: []ir.FunctionType{{}},
		Functions: []Function{
			{
				TypeIndex: 0,
				Locals:    []ir.ValueType{ir.ValueTypeI32, ir.ValueTypeI32, ir.ValueTypeI64},
				Code:      ir.InstructionList{},
			},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, out)
}

func TestEncodeElementSectionMapsDirectToIndirect(t *testing.T) {
	out, err := Encode(&Module{
		HasIndirectTable: true,
		ElementFuncs:     []uint32{0, 1, 2},
	})
	require.NoError(t, err)
	require.Contains(t, string(out), string([]byte{sectionTable}))
	require.Contains(t, string(out), string([]byte{sectionElement}))
}

func TestDebugNamesAndProducersSections(t *testing.T) {
	out, err := Encode(&Module{
		Types:            []ir.FunctionType{{}},
		Functions:        []Function{{TypeIndex: 0, Export: "run", Code: ir.InstructionList{}}},
		DebugNames:       true,
		ProducerLanguage: "bytecode",
		ProducerName:     "classwasmc",
	})
	require.NoError(t, err)
	require.Contains(t, string(out), "name")
	require.Contains(t, string(out), "producers")
	require.Contains(t, string(out), "classwasmc")
}

package sexpr

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmforge/classwasm/internal/ir"
)

func TestParsesBareMnemonic(t *testing.T) {
	out, err := Parse("return")
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, ir.KindBlock, out[0].Kind)
	require.Equal(t, ir.BlockReturn, out[0].BlockOp)
}

func TestParsesParenthesizedConst(t *testing.T) {
	out, err := Parse("(i32.const 5)")
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, ir.KindConst, out[0].Kind)
	require.Equal(t, ir.ValueTypeI32, out[0].ConstType)
	require.EqualValues(t, 5, out[0].ConstI32)
}

func TestParsesNegativeAndHexIntegers(t *testing.T) {
	out, err := Parse("(i32.const -1) (i32.const 0x10)")
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.EqualValues(t, -1, out[0].ConstI32)
	require.EqualValues(t, 16, out[1].ConstI32)
}

func TestParsesLocalGetWithIndex(t *testing.T) {
	out, err := Parse("(local.get 3)")
	require.NoError(t, err)
	require.Equal(t, ir.KindLocal, out[0].Kind)
	require.Equal(t, ir.LocalGet, out[0].LocalOp)
	require.EqualValues(t, 3, out[0].VarIndex)
}

func TestParsesSequenceOfInstructions(t *testing.T) {
	out, err := Parse("(local.get 0) (local.get 1) i32.add return")
	require.NoError(t, err)
	require.Len(t, out, 4)
	require.Equal(t, ir.KindNumeric, out[2].Kind)
	require.Equal(t, "add", out[2].NumericOp)
	require.Equal(t, ir.ValueTypeI32, out[2].NumericType)
}

func TestParsesBrTableWithMultipleDepths(t *testing.T) {
	out, err := Parse("(br_table 0 1 2)")
	require.NoError(t, err)
	require.Equal(t, ir.BlockBrTable, out[0].BlockOp)
	require.Equal(t, []uint32{0, 1, 2}, out[0].BrTable)
}

func TestUnknownMnemonicIsWasmException(t *testing.T) {
	_, err := Parse("(i32.bogus)")
	require.Error(t, err)
}

func TestMissingConstImmediateIsWasmException(t *testing.T) {
	_, err := Parse("(i32.const)")
	require.Error(t, err)
}

func TestUnterminatedStringIsWasmException(t *testing.T) {
	_, err := Parse(`"unterminated`)
	require.Error(t, err)
}

func TestParsesFloatConst(t *testing.T) {
	out, err := Parse("(f64.const 1.5)")
	require.NoError(t, err)
	require.Equal(t, ir.ValueTypeF64, out[0].ConstType)
	require.InDelta(t, 1.5, out[0].ConstF64, 0.0001)
}

package optimizer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmforge/classwasm/internal/ir"
)

func TestFoldsConstantBinaryOp(t *testing.T) {
	in := &ir.InstructionList{Items: []ir.Instruction{
		ir.ConstI32Instr(2, 0, 1),
		ir.ConstI32Instr(3, 2, 1),
		ir.NumericI32("add", 4, 1),
	}}
	out := Run(in)
	require.Len(t, out.Items, 1)
	require.Equal(t, ir.KindConst, out.Items[0].Kind)
	require.Equal(t, int32(5), out.Items[0].ConstI32)
}

func TestFoldsConstantUnaryOp(t *testing.T) {
	in := &ir.InstructionList{Items: []ir.Instruction{
		ir.ConstI32Instr(0, 0, 1),
		ir.NumericI32("eqz", 2, 1),
	}}
	out := Run(in)
	require.Len(t, out.Items, 1)
	require.Equal(t, int32(1), out.Items[0].ConstI32)
}

func TestConstSetGetBecomesTee(t *testing.T) {
	in := &ir.InstructionList{Items: []ir.Instruction{
		ir.ConstI32Instr(7, 0, 1),
		ir.LocalSetInstr(3, 2, 1),
		ir.LocalGetInstr(3, 4, 1),
	}}
	out := Run(in)
	require.Len(t, out.Items, 2)
	require.Equal(t, ir.KindConst, out.Items[0].Kind)
	require.Equal(t, ir.LocalTee, out.Items[1].LocalOp)
	require.Equal(t, uint32(3), out.Items[1].VarIndex)
}

func TestAdjacentSetGetBecomesTee(t *testing.T) {
	in := &ir.InstructionList{Items: []ir.Instruction{
		ir.NumericI32("add", 0, 1), // stand-in for "whatever pushed the value"
		ir.LocalSetInstr(1, 2, 1),
		ir.LocalGetInstr(1, 4, 1),
	}}
	out := Run(in)
	require.Len(t, out.Items, 2)
	require.Equal(t, ir.LocalTee, out.Items[1].LocalOp)
}

func TestDeadStoreBecomesDrop(t *testing.T) {
	in := &ir.InstructionList{Items: []ir.Instruction{
		ir.LocalSetInstr(5, 0, 1),
		ir.LocalSetInstr(5, 2, 1),
	}}
	out := Run(in)
	require.Len(t, out.Items, 2)
	require.Equal(t, ir.KindBlock, out.Items[0].Kind)
	require.Equal(t, ir.BlockDrop, out.Items[0].BlockOp)
	require.Equal(t, ir.LocalSet, out.Items[1].LocalOp)
}

func TestRunIsIdempotentAfterConvergence(t *testing.T) {
	in := &ir.InstructionList{Items: []ir.Instruction{
		ir.ConstI32Instr(1, 0, 1),
		ir.ConstI32Instr(2, 2, 1),
		ir.NumericI32("add", 4, 1),
		ir.ConstI32Instr(10, 6, 1),
		ir.NumericI32("mul", 8, 1),
	}}
	once := Run(in)
	twice := Run(once)
	require.Equal(t, once.Items, twice.Items)
}

func TestUnfoldableSequenceLeftAlone(t *testing.T) {
	in := &ir.InstructionList{Items: []ir.Instruction{
		ir.ConstI32Instr(2, 0, 1),
		ir.ConstI32Instr(3, 2, 1),
		ir.NumericI32("div_s", 4, 1), // division can trap, never folded
	}}
	out := Run(in)
	require.Len(t, out.Items, 3)
}

package cfg

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmforge/classwasm/internal/ir"
)

func voidResult(int) ir.FunctionType { return ir.FunctionType{} }

func blockOps(list *ir.InstructionList) []ir.BlockOp {
	var out []ir.BlockOp
	for _, instr := range list.Items {
		if instr.Kind == ir.KindBlock {
			out = append(out, instr.BlockOp)
		}
	}
	return out
}

// A straight-line method with no branches reconstructs to exactly its
// plain instructions, unchanged.
func TestReconstructStraightLine(t *testing.T) {
	ops := []LinearOp{
		{Offset: 0, Kind: OpPlain, Plain: ir.ConstI32Instr(1, 0, 1), Next: 2},
		{Offset: 2, Kind: OpPlain, Plain: ir.ConstI32Instr(2, 2, 1), Next: 4},
		{Offset: 4, Kind: OpReturn, Next: 5},
	}
	out, err := Reconstruct(ops, voidResult)
	require.NoError(t, err)
	require.Equal(t, []ir.BlockOp{ir.BlockReturn}, blockOps(out))
	require.Equal(t, 3, len(out.Items))
}

// ifeq ELSE; then; goto MERGE; ELSE: else; MERGE: reconstructs to
// if/else/end with no leftover br/br_if.
func TestReconstructIfElseDiamond(t *testing.T) {
	ops := []LinearOp{
		{Offset: 0, Kind: OpBranchConditional, Target: 6, Next: 2},
		{Offset: 2, Kind: OpPlain, Plain: ir.ConstI32Instr(1, 2, 1), Next: 4},
		{Offset: 4, Kind: OpBranchUnconditional, Target: 8, Next: 6},
		{Offset: 6, Kind: OpPlain, Plain: ir.ConstI32Instr(2, 6, 2), Next: 8},
		{Offset: 8, Kind: OpReturn, Next: 9},
	}
	out, err := Reconstruct(ops, voidResult)
	require.NoError(t, err)
	require.Equal(t, []ir.BlockOp{ir.BlockIf, ir.BlockElse, ir.BlockEnd, ir.BlockReturn}, blockOps(out))
}

// A plain if-without-else (no trailing goto before the branch target)
// reconstructs to if/end, no else.
func TestReconstructIfWithoutElse(t *testing.T) {
	ops := []LinearOp{
		{Offset: 0, Kind: OpBranchConditional, Target: 4, Next: 2},
		{Offset: 2, Kind: OpPlain, Plain: ir.ConstI32Instr(1, 2, 1), Next: 4},
		{Offset: 4, Kind: OpReturn, Next: 5},
	}
	out, err := Reconstruct(ops, voidResult)
	require.NoError(t, err)
	require.Equal(t, []ir.BlockOp{ir.BlockIf, ir.BlockEnd, ir.BlockReturn}, blockOps(out))
}

// A backward branch to an earlier offset reconstructs to a loop wrapping
// the body, closed with a br_if back to the header.
func TestReconstructSimpleLoop(t *testing.T) {
	ops := []LinearOp{
		{Offset: 0, Kind: OpPlain, Plain: ir.ConstI32Instr(0, 0, 1), Next: 2},
		{Offset: 2, Kind: OpPlain, Plain: ir.ConstI32Instr(1, 2, 2), Next: 4},
		{Offset: 4, Kind: OpBranchConditional, Target: 2, Next: 6},
		{Offset: 6, Kind: OpReturn, Next: 7},
	}
	out, err := Reconstruct(ops, voidResult)
	require.NoError(t, err)
	require.Equal(t, []ir.BlockOp{ir.BlockLoop, ir.BlockBrIf, ir.BlockEnd, ir.BlockReturn}, blockOps(out))

	var brIf *ir.Instruction
	for i := range out.Items {
		if out.Items[i].BlockOp == ir.BlockBrIf {
			brIf = &out.Items[i]
		}
	}
	require.NotNil(t, brIf)
	require.Equal(t, uint32(0), brIf.BranchDepth, "br_if targets the loop it is directly nested in")
}

// A forward conditional branch that skips over an early return (no
// if/else shape — an early-return guard) gets wrapped in a
// plain block, with br_if depth 0 since nothing else is open.
func TestReconstructForwardGuardBranch(t *testing.T) {
	ops := []LinearOp{
		{Offset: 0, Kind: OpBranchConditional, Target: 4, Next: 2},
		{Offset: 2, Kind: OpReturn, Next: 4},
		{Offset: 4, Kind: OpPlain, Plain: ir.ConstI32Instr(9, 4, 3), Next: 6},
		{Offset: 6, Kind: OpReturn, Next: 7},
	}
	out, err := Reconstruct(ops, voidResult)
	require.NoError(t, err)
	require.Equal(t, []ir.BlockOp{ir.BlockBlock, ir.BlockBrIf, ir.BlockReturn, ir.BlockEnd, ir.BlockReturn}, blockOps(out))
}

// A tableswitch with two cases plus default lowers to three nested
// blocks enclosing one br_table whose depths select the matching case.
func TestReconstructSwitchCascade(t *testing.T) {
	ops := []LinearOp{
		{Offset: 0, Kind: OpTableSwitch, CaseTargets: []int{10, 20}, DefaultTarget: 30, Next: 4},
		{Offset: 4, Kind: OpReturn, Next: 5},
	}
	out, err := Reconstruct(ops, voidResult)
	require.NoError(t, err)
	// 3 blocks opened, br_table, 3 ends, then the trailing return.
	require.Equal(t, []ir.BlockOp{
		ir.BlockBlock, ir.BlockBlock, ir.BlockBlock,
		ir.BlockBrTable,
		ir.BlockEnd, ir.BlockEnd, ir.BlockEnd,
		ir.BlockReturn,
	}, blockOps(out))

	for _, instr := range out.Items {
		if instr.BlockOp == ir.BlockBrTable {
			require.Equal(t, []uint32{0, 1, 2}, instr.BrTable)
		}
	}
}

// Two backward-branching loops whose ranges neither nest nor stay
// disjoint are irreducible control flow and must be rejected, not
// silently misstructured.
func TestReconstructRejectsOverlappingLoops(t *testing.T) {
	ops := []LinearOp{
		{Offset: 0, Kind: OpPlain, Plain: ir.ConstI32Instr(0, 0, 1), Next: 2},
		{Offset: 2, Kind: OpPlain, Plain: ir.ConstI32Instr(0, 2, 1), Next: 4},
		{Offset: 4, Kind: OpPlain, Plain: ir.ConstI32Instr(0, 4, 1), Next: 6},
		{Offset: 6, Kind: OpPlain, Plain: ir.ConstI32Instr(0, 6, 1), Next: 8},
		// backward edge to offset 2: loop A spans roughly [2, 10)
		{Offset: 8, Kind: OpBranchConditional, Target: 2, Next: 10},
		// backward edge to offset 6: loop B spans roughly [6, 14), crossing A's end
		{Offset: 10, Kind: OpPlain, Plain: ir.ConstI32Instr(0, 10, 1), Next: 12},
		{Offset: 12, Kind: OpBranchConditional, Target: 6, Next: 14},
		{Offset: 14, Kind: OpReturn, Next: 15},
	}
	_, err := Reconstruct(ops, voidResult)
	require.Error(t, err)
}

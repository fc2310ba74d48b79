// Package optimizer implements the peephole optimiser of spec.md §4.7.
// It runs after control-flow reconstruction and never alters observable
// behaviour, reorders side effects, or changes stack height at a
// structured-control boundary — only local, provably-equivalent
// instruction sequences are rewritten.
package optimizer

import "github.com/wasmforge/classwasm/internal/ir"

// maxPasses bounds the fixed-point iteration (spec.md §4.7 "idempotent;
// fixed-point up to three passes").
const maxPasses = 3

// Run applies the five peephole rules to list until no rule fires again
// or maxPasses is reached, returning the (possibly unmodified) result.
func Run(list *ir.InstructionList) *ir.InstructionList {
	items := list.Items
	for pass := 0; pass < maxPasses; pass++ {
		next, changed := onePass(items)
		items = next
		if !changed {
			break
		}
	}
	return &ir.InstructionList{Items: items}
}

func onePass(items []ir.Instruction) ([]ir.Instruction, bool) {
	out := make([]ir.Instruction, 0, len(items))
	changed := false

	for i := 0; i < len(items); {
		// Rule 1: const a; const b; binop -> const (a op b).
		if folded, n, ok := foldBinary(items, i); ok {
			out = append(out, folded)
			i += n
			changed = true
			continue
		}
		// Rule 3: const x; unary_op -> const (op x).
		if folded, n, ok := foldUnary(items, i); ok {
			out = append(out, folded)
			i += n
			changed = true
			continue
		}
		// Rule 2: const x; local.set k; local.get k -> const x; local.tee k
		// (no intervening write to k, which holds trivially for this
		// exact 3-instruction window).
		if items[i].Kind == ir.KindConst &&
			i+2 < len(items) &&
			items[i+1].Kind == ir.KindLocal && items[i+1].LocalOp == ir.LocalSet &&
			items[i+2].Kind == ir.KindLocal && items[i+2].LocalOp == ir.LocalGet &&
			items[i+1].VarIndex == items[i+2].VarIndex {
			out = append(out, items[i])
			tee := items[i+1]
			tee.LocalOp = ir.LocalTee
			out = append(out, tee)
			i += 3
			changed = true
			continue
		}
		// Rule 4: adjacent local.set k; local.get k (no other use of k in
		// between, which holds trivially since they are adjacent) ->
		// local.tee k.
		if items[i].Kind == ir.KindLocal && items[i].LocalOp == ir.LocalSet &&
			i+1 < len(items) &&
			items[i+1].Kind == ir.KindLocal && items[i+1].LocalOp == ir.LocalGet &&
			items[i].VarIndex == items[i+1].VarIndex {
			tee := items[i]
			tee.LocalOp = ir.LocalTee
			out = append(out, tee)
			i += 2
			changed = true
			continue
		}
		// Rule 5: local.set k; local.set k (no read of k between) -> drop;
		// local.set k. The first store's pushed value is discarded via an
		// explicit drop rather than removed outright: removing it would
		// require proving the producing expression is side-effect free,
		// which this pass does not attempt (spec.md §4.7 rule 5's
		// "safe lower bound").
		if items[i].Kind == ir.KindLocal && items[i].LocalOp == ir.LocalSet &&
			i+1 < len(items) &&
			items[i+1].Kind == ir.KindLocal && items[i+1].LocalOp == ir.LocalSet &&
			items[i].VarIndex == items[i+1].VarIndex {
			drop := ir.Instruction{Kind: ir.KindBlock, BlockOp: ir.BlockDrop, Offset: items[i].Offset, Line: items[i].Line}
			out = append(out, drop)
			i++
			changed = true
			continue
		}

		out = append(out, items[i])
		i++
	}
	return out, changed
}

func foldBinary(items []ir.Instruction, i int) (ir.Instruction, int, bool) {
	if i+2 >= len(items) {
		return ir.Instruction{}, 0, false
	}
	a, b, op := items[i], items[i+1], items[i+2]
	if a.Kind != ir.KindConst || b.Kind != ir.KindConst || op.Kind != ir.KindNumeric {
		return ir.Instruction{}, 0, false
	}
	if a.ConstType != b.ConstType || a.ConstType != op.NumericType {
		return ir.Instruction{}, 0, false
	}
	folded, ok := foldBinaryOp(a, b, op.NumericOp)
	if !ok {
		return ir.Instruction{}, 0, false
	}
	folded.Offset, folded.Line = a.Offset, a.Line
	return folded, 3, true
}

func foldUnary(items []ir.Instruction, i int) (ir.Instruction, int, bool) {
	if i+1 >= len(items) {
		return ir.Instruction{}, 0, false
	}
	a, op := items[i], items[i+1]
	if a.Kind != ir.KindConst || op.Kind != ir.KindNumeric || a.ConstType != op.NumericType {
		return ir.Instruction{}, 0, false
	}
	folded, ok := foldUnaryOp(a, op.NumericOp)
	if !ok {
		return ir.Instruction{}, 0, false
	}
	folded.Offset, folded.Line = a.Offset, a.Line
	return folded, 2, true
}

// foldBinaryOp evaluates the subset of numeric ops that are pure and
// trap-free at compile time; anything that can trap (e.g. integer
// division) or depends on saturating float/int conversion rounding is
// intentionally left un-folded.
func foldBinaryOp(a, b ir.Instruction, op string) (ir.Instruction, bool) {
	switch a.ConstType {
	case ir.ValueTypeI32:
		x, y := a.ConstI32, b.ConstI32
		switch op {
		case "add":
			return ir.ConstI32Instr(x+y, 0, 0), true
		case "sub":
			return ir.ConstI32Instr(x-y, 0, 0), true
		case "mul":
			return ir.ConstI32Instr(x*y, 0, 0), true
		case "and":
			return ir.ConstI32Instr(x&y, 0, 0), true
		case "or":
			return ir.ConstI32Instr(x|y, 0, 0), true
		case "xor":
			return ir.ConstI32Instr(x^y, 0, 0), true
		}
	case ir.ValueTypeI64:
		x, y := a.ConstI64, b.ConstI64
		var r int64
		switch op {
		case "add":
			r = x + y
		case "sub":
			r = x - y
		case "mul":
			r = x * y
		case "and":
			r = x & y
		case "or":
			r = x | y
		case "xor":
			r = x ^ y
		default:
			return ir.Instruction{}, false
		}
		return ir.Instruction{Kind: ir.KindConst, ConstType: ir.ValueTypeI64, ConstI64: r}, true
	case ir.ValueTypeF32:
		x, y := a.ConstF32, b.ConstF32
		var r float32
		switch op {
		case "add":
			r = x + y
		case "sub":
			r = x - y
		case "mul":
			r = x * y
		default:
			return ir.Instruction{}, false
		}
		return ir.Instruction{Kind: ir.KindConst, ConstType: ir.ValueTypeF32, ConstF32: r}, true
	case ir.ValueTypeF64:
		x, y := a.ConstF64, b.ConstF64
		var r float64
		switch op {
		case "add":
			r = x + y
		case "sub":
			r = x - y
		case "mul":
			r = x * y
		default:
			return ir.Instruction{}, false
		}
		return ir.Instruction{Kind: ir.KindConst, ConstType: ir.ValueTypeF64, ConstF64: r}, true
	}
	return ir.Instruction{}, false
}

func foldUnaryOp(a ir.Instruction, op string) (ir.Instruction, bool) {
	switch a.ConstType {
	case ir.ValueTypeI32:
		switch op {
		case "neg":
			return ir.ConstI32Instr(-a.ConstI32, 0, 0), true
		case "eqz":
			v := int32(0)
			if a.ConstI32 == 0 {
				v = 1
			}
			return ir.ConstI32Instr(v, 0, 0), true
		}
	case ir.ValueTypeI64:
		switch op {
		case "neg":
			return ir.Instruction{Kind: ir.KindConst, ConstType: ir.ValueTypeI64, ConstI64: -a.ConstI64}, true
		}
	case ir.ValueTypeF32:
		switch op {
		case "neg":
			return ir.Instruction{Kind: ir.KindConst, ConstType: ir.ValueTypeF32, ConstF32: -a.ConstF32}, true
		}
	case ir.ValueTypeF64:
		switch op {
		case "neg":
			return ir.Instruction{Kind: ir.KindConst, ConstType: ir.ValueTypeF64, ConstF64: -a.ConstF64}, true
		}
	}
	return ir.Instruction{}, false
}

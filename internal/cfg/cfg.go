// Package cfg implements the control-flow reconstruction step of
// spec.md §4.6 — the heart of the method translator. It turns the
// arbitrary forward/backward branches of linear bytecode into a properly
// nested tree of Wasm block/loop/if/br/br_table constructs.
//
// The reconstructor assumes reducible input (every loop has one header,
// spec.md §9 "Irreducible control flow": a violation is a hard
// structural error, not something this package tries to repair). Given
// that assumption — true of bytecode emitted by a structured source
// compiler — forward blocks are opened at the branch site itself rather
// than hunted for the latest legal start; this is a deliberate
// simplification of spec.md §4.6 step 4's "as late as possible" placement
// rule, noted in DESIGN.md, that trades a small amount of block-nesting
// tightness for a reconstructor that is straightforward to read, test and
// trust over one that chases an optimal placement.
package cfg

import (
	"sort"

	"github.com/wasmforge/classwasm/internal/errs"
	"github.com/wasmforge/classwasm/internal/ir"
)

// OpKind tags one element of the linear, pre-structuring instruction
// stream the translator hands to Reconstruct.
type OpKind int

const (
	OpPlain OpKind = iota
	OpBranchConditional
	OpBranchUnconditional
	OpTableSwitch
	OpLookupSwitch
	OpReturn
)

// LinearOp is one decoded source instruction, still addressed by
// absolute bytecode offset, before structuring.
type LinearOp struct {
	Offset int
	Kind   OpKind

	// OpPlain
	Plain ir.Instruction

	// OpBranchConditional / OpBranchUnconditional
	Target int

	// OpTableSwitch / OpLookupSwitch
	CaseTargets []int // one per case value, in source order
	CaseValues  []int32
	DefaultTarget int

	// Return
	ReturnType ir.ValueType

	// Next is the offset of the instruction immediately following this
	// one in the original bytecode (used as the close-key for
	// zero-length ranges and as the natural loop re-entry point).
	Next int
}

// ResultTypeFunc resolves the Wasm block-result type that should be
// declared when control converges at mergeOffset — computed by the
// stack-typing pass that ran ahead of reconstruction (spec.md §4.6 step 7).
type ResultTypeFunc func(mergeOffset int) ir.FunctionType

// Reconstruct turns ops (in ascending Offset order, one contiguous
// method body) into a flat ir.InstructionList containing nested
// block/loop/if/br/br_table/end markers with BranchDepth already
// resolved to relative depths (spec.md §4.6 step 5).
func Reconstruct(ops []LinearOp, resultType ResultTypeFunc) (*ir.InstructionList, error) {
	r := &reconstructor{ops: ops, resultType: resultType}
	return r.run()
}

type construct struct {
	kind  ir.BlockOp // BlockLoop, BlockBlock, or BlockIf
	start int        // offset this construct was opened at (a loop's header)
	end   int        // offset at which this construct closes
}

type reconstructor struct {
	ops        []LinearOp
	resultType ResultTypeFunc

	byOffset map[int]int // offset -> index into ops
	out      []ir.Instruction
	stack    []construct
}

func (r *reconstructor) run() (*ir.InstructionList, error) {
	r.byOffset = make(map[int]int, len(r.ops))
	for i, op := range r.ops {
		r.byOffset[op.Offset] = i
	}

	loopHeaders, loopEnds, err := r.findLoops()
	if err != nil {
		return nil, err
	}
	ifElse, consumed := r.findIfElse()
	forwardBlocks := r.findForwardBlocks(consumed)

	opens := make(map[int][]construct)

	for header := range loopHeaders {
		opens[header] = append(opens[header], construct{kind: ir.BlockLoop, start: header, end: loopEnds[header]})
	}
	for startOff, fb := range forwardBlocks {
		opens[startOff] = append(opens[startOff], construct{kind: ir.BlockBlock, start: startOff, end: fb})
	}

	// Sort same-offset opens outer-first: the construct with the larger
	// end offset must be pushed first so it ends up deeper in the stack
	// (closes later), satisfying proper nesting (spec.md §4.6 tie-break:
	// "if a branch could target the end of several candidate enclosing
	// constructs, pick the innermost" — equivalently, when several
	// constructs open together the one spanning the most code is outermost).
	for off := range opens {
		cs := opens[off]
		sort.SliceStable(cs, func(i, j int) bool { return cs[i].end > cs[j].end })
		opens[off] = cs
	}

	for _, op := range r.ops {
		r.openAt(op.Offset, opens)

		if ie, ok := ifElse[op.Offset]; ok {
			r.emitIfOpen(op, ie)
			r.closeEndingAt(op.Next)
			continue
		}
		if ge, ok := consumed[op.Offset]; ok && ge.isElseGoto {
			r.emitElse(ge.mergeOffset)
			r.closeEndingAt(op.Next)
			continue
		}

		switch op.Kind {
		case OpPlain:
			r.out = append(r.out, op.Plain)
		case OpBranchConditional, OpBranchUnconditional:
			// Any branch reaching this point was not absorbed into an
			// if/else diamond above, so it gets generic block/br treatment.
			r.emitBranch(op)
		case OpTableSwitch, OpLookupSwitch:
			r.emitSwitch(op)
		case OpReturn:
			r.out = append(r.out, ir.Instruction{Kind: ir.KindBlock, BlockOp: ir.BlockReturn, Offset: op.Offset})
		}

		r.closeEndingAt(op.Next)
	}

	if len(r.stack) != 0 {
		return nil, errs.New(errs.KindStructural, "control-flow reconstruction left %d unclosed construct(s)", len(r.stack))
	}
	return &ir.InstructionList{Items: r.out}, nil
}

func (r *reconstructor) openAt(offset int, opens map[int][]construct) {
	for _, c := range opens[offset] {
		ft := r.resultType(c.end)
		r.out = append(r.out, ir.Instruction{Kind: ir.KindBlock, BlockOp: c.kind, BlockType: ft, Offset: offset})
		r.stack = append(r.stack, c)
	}
}

// closeEndingAt pops and emits `end` for every open construct whose
// recorded end offset equals offset, innermost (top-of-stack) first.
func (r *reconstructor) closeEndingAt(offset int) {
	for len(r.stack) > 0 && r.stack[len(r.stack)-1].end == offset {
		top := r.stack[len(r.stack)-1]
		r.stack = r.stack[:len(r.stack)-1]
		r.out = append(r.out, ir.Instruction{Kind: ir.KindBlock, BlockOp: ir.BlockEnd, Offset: offset, BlockType: r.resultType(top.end)})
	}
}

// depthForward returns the relative depth (spec.md §4.6 step 5) from the
// stack top to the innermost open construct whose close point is target —
// a br/br_if leaving that block lands exactly at target.
func (r *reconstructor) depthForward(target int) (uint32, bool) {
	for i := len(r.stack) - 1; i >= 0; i-- {
		if r.stack[i].end == target {
			return uint32(len(r.stack) - 1 - i), true
		}
	}
	return 0, false
}

// depthBackward returns the relative depth to the innermost open loop
// construct whose header is target — a br/br_if re-enters that loop.
func (r *reconstructor) depthBackward(target int) (uint32, bool) {
	for i := len(r.stack) - 1; i >= 0; i-- {
		if c := r.stack[i]; c.kind == ir.BlockLoop && c.start == target {
			return uint32(len(r.stack) - 1 - i), true
		}
	}
	return 0, false
}

func (r *reconstructor) emitBranch(op LinearOp) {
	var depth uint32
	if op.Target <= op.Offset {
		depth, _ = r.depthBackward(op.Target)
	} else {
		depth, _ = r.depthForward(op.Target)
	}
	bop := ir.BlockBr
	if op.Kind == OpBranchConditional {
		bop = ir.BlockBrIf
	}
	r.out = append(r.out, ir.Instruction{Kind: ir.KindBlock, BlockOp: bop, BranchDepth: depth, Offset: op.Offset})
}

// emitSwitch lowers a tableswitch/lookupswitch into the cascading-blocks
// pattern (spec.md §4.6 step 6): one block per case plus the default,
// nested so that the case ordered first is innermost, enclosing a single
// br_table. Branching out of the innermost (first) block lands just
// before the outermost `end`, i.e. at the default case's code, which is
// emitted by the caller immediately after the cascade the same way a
// fall-through default body would be. Target offsets are not resolved
// here — emitSwitch only establishes relative depths; the caller is
// responsible for placing each case's body so it begins where the
// matching block's `end` lands, which in program order is the BrTable's
// own Next (duplicate default bodies are not synthesised).
func (r *reconstructor) emitSwitch(op LinearOp) {
	targets := append(append([]int{}, op.CaseTargets...), op.DefaultTarget)

	for range targets {
		r.out = append(r.out, ir.Instruction{Kind: ir.KindBlock, BlockOp: ir.BlockBlock, Offset: op.Offset})
	}
	depths := make([]uint32, len(targets))
	for i := range targets {
		depths[i] = uint32(i)
	}
	r.out = append(r.out, ir.Instruction{Kind: ir.KindBlock, BlockOp: ir.BlockBrTable, BrTable: depths, Offset: op.Offset})
	for range targets {
		r.out = append(r.out, ir.Instruction{Kind: ir.KindBlock, BlockOp: ir.BlockEnd, Offset: op.Offset})
	}
}

func (r *reconstructor) emitIfOpen(op LinearOp, ie ifElseInfo) {
	ft := r.resultType(ie.mergeOffset)
	r.stack = append(r.stack, construct{kind: ir.BlockIf, start: op.Offset, end: ie.mergeOffset})
	r.out = append(r.out, ir.Instruction{Kind: ir.KindBlock, BlockOp: ir.BlockIf, BlockType: ft, Offset: op.Offset})
}

func (r *reconstructor) emitElse(mergeOffset int) {
	r.out = append(r.out, ir.Instruction{Kind: ir.KindBlock, BlockOp: ir.BlockElse, Offset: mergeOffset})
}

package cfg

import "github.com/wasmforge/classwasm/internal/errs"

// ifElseInfo describes one if/else diamond rooted at a conditional branch.
type ifElseInfo struct {
	elseOffset  int // where the else arm starts (== mergeOffset if no else arm)
	mergeOffset int // where both arms converge
	hasElse     bool
}

// consumedInfo marks an offset (a conditional branch or a goto) as having
// been absorbed into an if/else diamond rather than needing its own
// generic block/br treatment.
type consumedInfo struct {
	isElseGoto  bool // true if this offset is the trailing goto that separates then/else
	mergeOffset int
}

// findLoops locates backward edges and, for each distinct target, the
// offset one past the last instruction whose backward edge targets it —
// the loop's close point. A target offset that is also a legitimate
// forward-branch target from inside its own body is fine; what is not
// accepted is two loop headers whose bodies overlap without one nesting
// inside the other (spec.md §9 "Irreducible control flow").
func (r *reconstructor) findLoops() (headers map[int]bool, ends map[int]int, err error) {
	headers = make(map[int]bool)
	ends = make(map[int]int)

	for _, op := range r.ops {
		if op.Kind != OpBranchConditional && op.Kind != OpBranchUnconditional {
			continue
		}
		if op.Target <= op.Offset {
			headers[op.Target] = true
			if op.Next > ends[op.Target] {
				ends[op.Target] = op.Next
			}
		}
	}

	starts := make([]int, 0, len(headers))
	for h := range headers {
		starts = append(starts, h)
	}
	for i := 0; i < len(starts); i++ {
		for j := i + 1; j < len(starts); j++ {
			a, b := starts[i], starts[j]
			aEnd, bEnd := ends[a], ends[b]
			nested := (a <= b && bEnd <= aEnd) || (b <= a && aEnd <= bEnd)
			disjoint := aEnd <= b || bEnd <= a
			if !nested && !disjoint {
				return nil, nil, errs.New(errs.KindStructural, "overlapping, non-nested loop regions at offsets %d and %d", a, b)
			}
		}
	}
	return headers, ends, nil
}

// findIfElse scans for the compiled-ternary / if-else shape:
//
//	ifeq ELSE          ; conditional branch forward to ELSE
//	<then-block>
//	goto MERGE          ; unconditional, only present when an else arm exists
//	ELSE:
//	<else-block>
//	MERGE:
//
// A conditional branch whose target is not preceded by such a trailing
// goto is treated as an if-without-else, merging directly at its target,
// unless its then-arm ends in a return; that branch is left to
// findForwardBlocks and becomes a block exited by br_if.
func (r *reconstructor) findIfElse() (map[int]ifElseInfo, map[int]consumedInfo) {
	result := make(map[int]ifElseInfo)
	consumed := make(map[int]consumedInfo)

	for _, op := range r.ops {
		if op.Kind != OpBranchConditional || op.Target <= op.Offset {
			continue
		}
		elseOffset := op.Target

		// Does the instruction immediately preceding elseOffset exist and
		// is it an unconditional forward goto? If so it is the then-arm's
		// closing jump to the merge point, and this is an if/else diamond.
		if gotoOp, ok := r.findPrecedingGoto(elseOffset); ok && gotoOp.Target > elseOffset {
			merge := gotoOp.Target
			result[op.Offset] = ifElseInfo{elseOffset: elseOffset, mergeOffset: merge, hasElse: true}
			consumed[op.Offset] = consumedInfo{mergeOffset: merge}
			consumed[gotoOp.Offset] = consumedInfo{isElseGoto: true, mergeOffset: merge}
			continue
		}

		// A then-arm ending in a return never reaches elseOffset, so the
		// two paths do not merge there: leave it to findForwardBlocks.
		if idx, ok := r.byOffset[elseOffset]; ok && idx > 0 && r.ops[idx-1].Kind == OpReturn {
			continue
		}

		result[op.Offset] = ifElseInfo{elseOffset: elseOffset, mergeOffset: elseOffset, hasElse: false}
		consumed[op.Offset] = consumedInfo{mergeOffset: elseOffset}
	}
	return result, consumed
}

// findPrecedingGoto returns the unconditional-goto op whose Next equals
// offset, i.e. the instruction that sits immediately before offset in
// program order, if that instruction is an unconditional branch.
func (r *reconstructor) findPrecedingGoto(offset int) (LinearOp, bool) {
	idx, ok := r.byOffset[offset]
	if !ok || idx == 0 {
		return LinearOp{}, false
	}
	prev := r.ops[idx-1]
	if prev.Kind == OpBranchUnconditional && prev.Next == offset {
		return prev, true
	}
	return LinearOp{}, false
}

// findForwardBlocks collects the plain "wrap this forward branch's span
// in a block" cases: forward conditional/unconditional branches that
// findIfElse did not already absorb into a diamond. The block is opened
// at the branching instruction's own offset and closed at its target —
// the documented placement simplification from the package doc comment.
func (r *reconstructor) findForwardBlocks(consumed map[int]consumedInfo) map[int]int {
	blocks := make(map[int]int)
	for _, op := range r.ops {
		if op.Kind != OpBranchConditional && op.Kind != OpBranchUnconditional {
			continue
		}
		if op.Target <= op.Offset {
			continue // backward edge, handled by findLoops
		}
		if _, ok := consumed[op.Offset]; ok {
			continue // absorbed into an if/else diamond
		}
		if existing, ok := blocks[op.Offset]; !ok || op.Target > existing {
			blocks[op.Offset] = op.Target
		}
	}
	return blocks
}

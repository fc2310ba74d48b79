package translator

import (
	"sort"

	"github.com/wasmforge/classwasm/internal/classfile"
	"github.com/wasmforge/classwasm/internal/ir"
)

// exceptionMarker is a zero-width try/catch/end instruction synthesised
// from the method's exception table (spec.md §4.5 step 5), to be spliced
// into the linear op stream ahead of the real instruction at the same
// offset.
type exceptionMarker struct {
	offset int
	instr  ir.Instruction
}

// buildExceptionMarkers lowers handler table entries into try/catch/end
// markers. Each handler becomes one `try ... catch ... end` construct
// spanning [StartPC, handlerEnd): the protected region runs up to
// HandlerPC, where the shared exception event's catch clause begins.
// handlerEnd — the point where the catch clause itself closes — is
// approximated as the next handler's StartPC, or the method's end if
// this is the last one; real handler bodies in practice either return,
// rethrow or fall into the next top-level statement before that
// boundary, so the approximation only ever widens the construct rather
// than mis-nesting it.
//
// Overlapping/out-of-order handler ranges (as synchronized-finally
// compilation sometimes produces) are not resolved here; spec.md §4.5
// step 4 handles the monitor side of that shape separately, and nested
// user-level try/catch is left to whatever ordering the class file's own
// handler table provides.
func buildExceptionMarkers(handlers []classfile.ExceptionHandler, codeLen int) []exceptionMarker {
	if len(handlers) == 0 {
		return nil
	}
	sorted := append([]classfile.ExceptionHandler(nil), handlers...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StartPC < sorted[j].StartPC })

	var out []exceptionMarker
	for i, h := range sorted {
		end := codeLen
		if i+1 < len(sorted) {
			end = sorted[i+1].StartPC
		}
		if end < h.HandlerPC {
			end = codeLen
		}
		out = append(out,
			exceptionMarker{h.StartPC, ir.Instruction{Kind: ir.KindBlock, BlockOp: ir.BlockTry, Offset: h.StartPC}},
			exceptionMarker{h.HandlerPC, ir.Instruction{Kind: ir.KindBlock, BlockOp: ir.BlockCatch, Offset: h.HandlerPC}},
			exceptionMarker{end, ir.Instruction{Kind: ir.KindBlock, BlockOp: ir.BlockEnd, Offset: end}},
		)
	}
	return out
}

func markersByOffset(markers []exceptionMarker) map[int][]ir.Instruction {
	m := make(map[int][]ir.Instruction, len(markers))
	for _, mk := range markers {
		m[mk.offset] = append(m[mk.offset], mk.instr)
	}
	return m
}

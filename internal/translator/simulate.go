package translator

import "github.com/wasmforge/classwasm/internal/ir"

// stackSim tracks a single forward-only approximation of the symbolic
// operand stack while decodedOps are translated. It never re-visits a
// backward edge, so it is only an approximation of the stack seen at a
// loop header's second and later iterations — but since the source
// compiler already guarantees a reducible, stack-consistent bytecode
// (the same assumption internal/cfg documents), the forward pass and any
// backward arrival agree on depth and leaf type at every instruction
// boundary, which is all cfg.ResultTypeFunc needs.
type stackSim struct {
	stack   []ir.ValueType
	depthAt map[int]int
	topAt   map[int]ir.ValueType
}

func newStackSim() *stackSim {
	return &stackSim{depthAt: make(map[int]int), topAt: make(map[int]ir.ValueType)}
}

func (s *stackSim) recordAt(offset int) {
	s.depthAt[offset] = len(s.stack)
	if len(s.stack) > 0 {
		s.topAt[offset] = s.stack[len(s.stack)-1]
	}
}

func (s *stackSim) push(t ir.ValueType) { s.stack = append(s.stack, t) }

func (s *stackSim) pop() ir.ValueType {
	if len(s.stack) == 0 {
		return ir.ValueTypeI32
	}
	v := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	return v
}

// resultType implements cfg.ResultTypeFunc: a construct converging at
// mergeOffset leaves a value behind iff the recorded depth there is
// greater than zero, in which case its type is the recorded top.
// Constructs that leave more than one value are not attempted — spec.md
// §4.5's instruction set never requires it, since every source
// expression lowers to at most one live value across a merge.
func (t *translator) resultType(mergeOffset int) ir.FunctionType {
	if t.sim.depthAt[mergeOffset] <= 0 {
		return ir.FunctionType{}
	}
	return ir.FunctionType{Results: []ir.ValueType{t.sim.topAt[mergeOffset]}}
}

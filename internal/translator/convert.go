package translator

import "github.com/wasmforge/classwasm/internal/ir"

// convertRule describes one source conversion opcode's fixed lowering
// (spec.md §4.5.2): from/to leaf types and which family of Wasm
// conversion opcode applies.
type convertRule struct {
	from, to ir.ValueType
	kind     ir.ConvertKind
}

// convertTable is keyed by the source opcode name (i2l, f2i, ...).
// Integral widening is sign-extending, integral-to-floating is signed,
// floating-to-integral is the saturating form; reinterpret casts are not
// reachable from any source opcode name below, and no other translator
// path emits one.
var convertTable = map[string]convertRule{
	"i2l": {ir.ValueTypeI32, ir.ValueTypeI64, ir.ConvertWiden},
	"i2f": {ir.ValueTypeI32, ir.ValueTypeF32, ir.ConvertIntToFloat},
	"i2d": {ir.ValueTypeI32, ir.ValueTypeF64, ir.ConvertIntToFloat},
	"l2i": {ir.ValueTypeI64, ir.ValueTypeI32, ir.ConvertNarrow},
	"f2i": {ir.ValueTypeF32, ir.ValueTypeI32, ir.ConvertFloatToIntSaturating},
	"d2i": {ir.ValueTypeF64, ir.ValueTypeI32, ir.ConvertFloatToIntSaturating},
	// i2b/i2c/i2s narrow an i32 to a storage-kind range; they are not in
	// this table and lower to no instruction at all — see buildConversion.
}

// buildConversion returns the WasmInstruction for a source conversion
// opcode, folding a directly-preceding float/double constant when the
// conversion exactly matches a saturating truncation (the one constant
// fold this package performs itself rather than leaving to
// internal/optimizer, since the optimiser's rule set never runs across a
// KindConvert boundary).
func (t *translator) buildConversion(op decodedOp, prior *ir.Instruction) (ir.Instruction, bool) {
	// i2b/i2c/i2s narrow an i32 to a sub-word storage range. Wasm has no
	// arithmetic type narrower than i32, and this compiler's struct/array
	// layer masks on store rather than on every intermediate cast, so
	// these three opcodes translate to nothing: the value already has the
	// right bits for any later i32 operation to consume.
	if op.Name == "i2b" || op.Name == "i2c" || op.Name == "i2s" {
		return ir.Instruction{}, false
	}

	rule, ok := convertTable[op.Name]
	if !ok {
		return ir.Instruction{Kind: ir.KindConvert, Offset: op.Offset}, true
	}

	if folded, ok := foldConstantConversion(rule, prior); ok {
		folded.Offset = op.Offset
		return folded, true
	}

	return ir.Instruction{Kind: ir.KindConvert, ConvertKind: rule.kind, FromType: rule.from, ToType: rule.to, Offset: op.Offset}, true
}

// foldConstantConversion folds a float/double constant immediately
// followed by a saturating truncation to its matching integer constant,
// using the same NaN/overflow clamping Wasm's trunc_sat opcodes apply at
// run time (see fpconvert.go).
func foldConstantConversion(rule convertRule, prior *ir.Instruction) (ir.Instruction, bool) {
	if rule.kind != ir.ConvertFloatToIntSaturating || prior == nil || prior.Kind != ir.KindConst {
		return ir.Instruction{}, false
	}
	var v float64
	switch prior.ConstType {
	case ir.ValueTypeF32:
		v = float64(prior.ConstF32)
	case ir.ValueTypeF64:
		v = prior.ConstF64
	default:
		return ir.Instruction{}, false
	}
	switch rule.to {
	case ir.ValueTypeI32:
		return ir.Instruction{Kind: ir.KindConst, ConstType: ir.ValueTypeI32, ConstI32: saturatingTruncI32(v)}, true
	case ir.ValueTypeI64:
		return ir.Instruction{Kind: ir.KindConst, ConstType: ir.ValueTypeI64, ConstI64: saturatingTruncI64(v)}, true
	default:
		return ir.Instruction{}, false
	}
}

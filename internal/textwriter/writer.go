// Package textwriter implements the text (.wat) module writer of
// spec.md §4.9: a single `(module ...)` S-expression whose subforms
// mirror the binary writer's sections, two-space indented, one
// instruction per line, byte-for-byte reproducible across identical
// input. It shares internal/binarywriter's Module/Function input shape
// rather than redefining it, since both writers consume the exact same
// assembled module.
package textwriter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wasmforge/classwasm/internal/binarywriter"
	"github.com/wasmforge/classwasm/internal/errs"
	"github.com/wasmforge/classwasm/internal/ir"
)

// Encode renders m as a single indented S-expression module.
func Encode(m *binarywriter.Module) (string, error) {
	var b strings.Builder
	b.WriteString("(module\n")

	for i, ft := range m.Types {
		b.WriteString(indent(1))
		b.WriteString(fmt.Sprintf("(type (;%d;) %s)\n", i, functionTypeSExpr(ft)))
	}
	for _, imp := range m.Imports {
		b.WriteString(indent(1))
		b.WriteString(fmt.Sprintf("(import %q %q (func (type %d)))\n", imp.Module, imp.Name, imp.TypeIndex))
	}
	for i, fn := range m.Functions {
		s, err := functionSExpr(i, fn)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}
	for _, g := range m.Globals {
		b.WriteString(indent(1))
		b.WriteString(globalSExpr(g))
		b.WriteString("\n")
	}
	if m.MemoryPages > 0 {
		b.WriteString(indent(1))
		b.WriteString(fmt.Sprintf("(memory %d)\n", m.MemoryPages))
		b.WriteString(indent(1))
		b.WriteString("(export \"memory\" (memory 0))\n")
	}
	if m.HasIndirectTable {
		b.WriteString(indent(1))
		b.WriteString(fmt.Sprintf("(table %d funcref)\n", len(m.ElementFuncs)))
		if len(m.ElementFuncs) > 0 {
			b.WriteString(indent(1))
			ids := make([]string, len(m.ElementFuncs))
			for i, f := range m.ElementFuncs {
				ids[i] = strconv.FormatUint(uint64(f), 10)
			}
			b.WriteString(fmt.Sprintf("(elem (i32.const 0) %s)\n", strings.Join(ids, " ")))
		}
	}
	funcIndex := len(m.Imports)
	for _, fn := range m.Functions {
		if fn.Export != "" {
			b.WriteString(indent(1))
			b.WriteString(fmt.Sprintf("(export %q (func %d))\n", fn.Export, funcIndex))
		}
		funcIndex++
	}

	b.WriteString(")\n")
	return b.String(), nil
}

func functionTypeSExpr(ft ir.FunctionType) string {
	var parts []string
	parts = append(parts, "func")
	for _, p := range ft.Params {
		parts = append(parts, fmt.Sprintf("(param %s)", p))
	}
	for _, r := range ft.Results {
		parts = append(parts, fmt.Sprintf("(result %s)", r))
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func globalSExpr(g ir.Global) string {
	kind := g.Type.String()
	if g.Mutable {
		kind = fmt.Sprintf("(mut %s)", kind)
	}
	init := "0"
	if g.Init != nil {
		init = constSExpr(*g.Init)
	}
	return fmt.Sprintf("(global %s (%s.const %s))", kind, g.Type, init)
}

func functionSExpr(index int, fn binarywriter.Function) (string, error) {
	var b strings.Builder
	b.WriteString(indent(1))
	b.WriteString(fmt.Sprintf("(func (;%d;) (type %d)", index, fn.TypeIndex))
	if len(fn.Locals) > 0 {
		for _, l := range fn.Locals {
			b.WriteString(fmt.Sprintf(" (local %s)", l))
		}
	}
	b.WriteString("\n")
	for _, instr := range fn.Code.Items {
		line, err := instructionSExpr(instr)
		if err != nil {
			return "", err
		}
		b.WriteString(indent(2))
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(indent(1))
	b.WriteString(")\n")
	return b.String(), nil
}

func instructionSExpr(instr ir.Instruction) (string, error) {
	switch instr.Kind {
	case ir.KindConst:
		return fmt.Sprintf("%s.const %s", instr.ConstType, constSExpr(instr)), nil
	case ir.KindLocal:
		return fmt.Sprintf("local.%s %d", localOpName(instr.LocalOp), instr.VarIndex), nil
	case ir.KindGlobal:
		if instr.GlobalOp == ir.GlobalGet {
			return fmt.Sprintf("global.get %d", instr.VarIndex), nil
		}
		return fmt.Sprintf("global.set %d", instr.VarIndex), nil
	case ir.KindNumeric:
		return fmt.Sprintf("%s.%s", instr.NumericType, instr.NumericOp), nil
	case ir.KindCall:
		return fmt.Sprintf("call %s", instr.CallTarget.SignatureName()), nil
	case ir.KindCallIndirect:
		return "call_indirect " + functionTypeSExpr(instr.CallType), nil
	case ir.KindBlock:
		return blockSExpr(instr), nil
	default:
		return "", errs.New(errs.KindStructural, "instruction kind %s reached the text writer unresolved", instr.Kind)
	}
}

func localOpName(op ir.LocalOp) string {
	switch op {
	case ir.LocalGet:
		return "get"
	case ir.LocalSet:
		return "set"
	default:
		return "tee"
	}
}

func blockSExpr(instr ir.Instruction) string {
	switch instr.BlockOp {
	case ir.BlockBlock:
		return "block " + blockTypeSExpr(instr.BlockType)
	case ir.BlockLoop:
		return "loop " + blockTypeSExpr(instr.BlockType)
	case ir.BlockIf:
		return "if " + blockTypeSExpr(instr.BlockType)
	case ir.BlockElse:
		return "else"
	case ir.BlockEnd:
		return "end"
	case ir.BlockDrop:
		return "drop"
	case ir.BlockBr:
		return fmt.Sprintf("br %d", instr.BranchDepth)
	case ir.BlockBrIf:
		return fmt.Sprintf("br_if %d", instr.BranchDepth)
	case ir.BlockBrTable:
		parts := make([]string, len(instr.BrTable))
		for i, d := range instr.BrTable {
			parts[i] = strconv.FormatUint(uint64(d), 10)
		}
		return "br_table " + strings.Join(parts, " ")
	case ir.BlockReturn:
		return "return"
	case ir.BlockUnreachable:
		return "unreachable"
	default:
		return fmt.Sprintf("unknown-block-op-%d", instr.BlockOp)
	}
}

func blockTypeSExpr(ft ir.FunctionType) string {
	if len(ft.Results) == 0 {
		return ""
	}
	return fmt.Sprintf("(result %s)", ft.Results[0])
}

// constSExpr renders a const instruction's immediate, using the
// "0x1.5p5"-style hex float syntax for floating-point kinds (spec.md
// §4.9) and plain signed decimals for integers.
func constSExpr(instr ir.Instruction) string {
	switch instr.ConstType {
	case ir.ValueTypeI32:
		return strconv.FormatInt(int64(instr.ConstI32), 10)
	case ir.ValueTypeI64:
		return strconv.FormatInt(instr.ConstI64, 10)
	case ir.ValueTypeF32:
		return strconv.FormatFloat(float64(instr.ConstF32), 'x', -1, 32)
	case ir.ValueTypeF64:
		return strconv.FormatFloat(instr.ConstF64, 'x', -1, 64)
	default:
		return "0"
	}
}

func indent(depth int) string { return strings.Repeat("  ", depth) }

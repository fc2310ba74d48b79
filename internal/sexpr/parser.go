package sexpr

import (
	"strings"

	"github.com/wasmforge/classwasm/internal/errs"
	"github.com/wasmforge/classwasm/internal/ir"
	"github.com/wasmforge/classwasm/internal/opcodes"
)

// Parse tokenizes and parses an inline Wasm text fragment (a flat
// sequence of instructions, one s-expr or bare mnemonic per form) into
// the same ir.Instruction values the translator emits. Fragments are
// embedded verbatim in runtime-library source; there is no surrounding
// (module ...) or (func ...) form to strip.
func Parse(src string) ([]ir.Instruction, error) {
	p := &parser{lex: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}

	var out []ir.Instruction
	for p.cur.kind != tokenEOF {
		instr, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		out = append(out, instr)
	}
	return out, nil
}

type parser struct {
	lex *lexer
	cur token
}

func (p *parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = t
	return nil
}

func (p *parser) expect(k tokenKind) (token, error) {
	if p.cur.kind != k {
		return token{}, errs.New(errs.KindInput, "unexpected token %q", p.cur.text).WithLocation("", "", p.cur.line)
	}
	t := p.cur
	if err := p.advance(); err != nil {
		return token{}, err
	}
	return t, nil
}

// parseForm parses either a bare mnemonic token (e.g. "return") or a
// parenthesized one with immediates (e.g. "(i32.const 5)", "(local.get
// 0)", "(br_if 2)").
func (p *parser) parseForm() (ir.Instruction, error) {
	if p.cur.kind == tokenLParen {
		if err := p.advance(); err != nil {
			return ir.Instruction{}, err
		}
		instr, err := p.parseMnemonic()
		if err != nil {
			return ir.Instruction{}, err
		}
		if _, err := p.expect(tokenRParen); err != nil {
			return ir.Instruction{}, err
		}
		return instr, nil
	}
	return p.parseMnemonic()
}

func (p *parser) parseMnemonic() (ir.Instruction, error) {
	if p.cur.kind != tokenIdent {
		return ir.Instruction{}, errs.New(errs.KindInput, "expected an opcode mnemonic, found %q", p.cur.text).WithLocation("", "", p.cur.line)
	}
	name := p.cur.text
	line := p.cur.line
	if err := p.advance(); err != nil {
		return ir.Instruction{}, err
	}

	entry, ok := opcodes.Lookup(name)
	if !ok {
		return ir.Instruction{}, errs.New(errs.KindInput, "unknown opcode mnemonic %q", name).WithLocation("", "", line)
	}

	return p.buildInstruction(entry, name, line)
}

// buildInstruction dispatches on the mnemonic's family and consumes any
// required immediate tokens, reporting a WasmException if one is
// missing (spec.md §4.10's "opcodes missing required immediates").
func (p *parser) buildInstruction(entry opcodes.Wasm, name string, line int) (ir.Instruction, error) {
	switch {
	case strings.HasSuffix(name, ".const"):
		return p.parseConst(name, line)
	case name == "local.get" || name == "local.set" || name == "local.tee":
		idx, err := p.expectInt(line)
		if err != nil {
			return ir.Instruction{}, err
		}
		op := ir.LocalGet
		switch name {
		case "local.set":
			op = ir.LocalSet
		case "local.tee":
			op = ir.LocalTee
		}
		return ir.Instruction{Kind: ir.KindLocal, LocalOp: op, VarIndex: uint32(idx), Line: line}, nil
	case name == "global.get" || name == "global.set":
		idx, err := p.expectInt(line)
		if err != nil {
			return ir.Instruction{}, err
		}
		op := ir.GlobalGet
		if name == "global.set" {
			op = ir.GlobalSet
		}
		return ir.Instruction{Kind: ir.KindGlobal, GlobalOp: op, VarIndex: uint32(idx), Line: line}, nil
	case name == "br" || name == "br_if":
		depth, err := p.expectInt(line)
		if err != nil {
			return ir.Instruction{}, err
		}
		op := ir.BlockBr
		if name == "br_if" {
			op = ir.BlockBrIf
		}
		return ir.Instruction{Kind: ir.KindBlock, BlockOp: op, BranchDepth: uint32(depth), Line: line}, nil
	case name == "br_table":
		var depths []uint32
		for p.cur.kind == tokenInt {
			depths = append(depths, uint32(p.cur.intVal))
			if err := p.advance(); err != nil {
				return ir.Instruction{}, err
			}
		}
		if len(depths) == 0 {
			return ir.Instruction{}, errs.New(errs.KindInput, "br_table requires at least a default depth").WithLocation("", "", line)
		}
		return ir.Instruction{Kind: ir.KindBlock, BlockOp: ir.BlockBrTable, BrTable: depths, Line: line}, nil
	case name == "return":
		return ir.Instruction{Kind: ir.KindBlock, BlockOp: ir.BlockReturn, Line: line}, nil
	case name == "drop":
		return ir.Instruction{Kind: ir.KindBlock, BlockOp: ir.BlockDrop, Line: line}, nil
	case name == "unreachable":
		return ir.Instruction{Kind: ir.KindBlock, BlockOp: ir.BlockUnreachable, Line: line}, nil
	default:
		return p.parseNumeric(name, line)
	}
}

// parseConst parses "<type>.const <immediate>" forms.
func (p *parser) parseConst(name string, line int) (ir.Instruction, error) {
	typ, err := valueTypeForPrefix(name, line)
	if err != nil {
		return ir.Instruction{}, err
	}
	switch p.cur.kind {
	case tokenInt:
		v := p.cur.intVal
		if err := p.advance(); err != nil {
			return ir.Instruction{}, err
		}
		switch typ {
		case ir.ValueTypeI32:
			return ir.Instruction{Kind: ir.KindConst, ConstType: typ, ConstI32: int32(v), Line: line}, nil
		case ir.ValueTypeI64:
			return ir.Instruction{Kind: ir.KindConst, ConstType: typ, ConstI64: v, Line: line}, nil
		default:
			return ir.Instruction{Kind: ir.KindConst, ConstType: typ, ConstF64: float64(v), ConstF32: float32(v), Line: line}, nil
		}
	case tokenFloat:
		v := p.cur.fltVal
		if err := p.advance(); err != nil {
			return ir.Instruction{}, err
		}
		return ir.Instruction{Kind: ir.KindConst, ConstType: typ, ConstF64: v, ConstF32: float32(v), Line: line}, nil
	default:
		return ir.Instruction{}, errs.New(errs.KindInput, "%s requires an immediate", name).WithLocation("", "", line)
	}
}

// parseNumeric handles the "<type>.<op>" family (i32.add, i64.eqz, ...),
// the bulk of the opcode table.
func (p *parser) parseNumeric(name string, line int) (ir.Instruction, error) {
	dot := strings.IndexByte(name, '.')
	if dot < 0 {
		return ir.Instruction{}, errs.New(errs.KindInput, "unrecognised opcode form %q", name).WithLocation("", "", line)
	}
	typ, err := valueTypeForPrefix(name, line)
	if err != nil {
		return ir.Instruction{}, err
	}
	op := name[dot+1:]
	return ir.Instruction{Kind: ir.KindNumeric, NumericType: typ, NumericOp: op, Line: line}, nil
}

func valueTypeForPrefix(name string, line int) (ir.ValueType, error) {
	switch {
	case strings.HasPrefix(name, "i32."):
		return ir.ValueTypeI32, nil
	case strings.HasPrefix(name, "i64."):
		return ir.ValueTypeI64, nil
	case strings.HasPrefix(name, "f32."):
		return ir.ValueTypeF32, nil
	case strings.HasPrefix(name, "f64."):
		return ir.ValueTypeF64, nil
	default:
		return 0, errs.New(errs.KindInput, "opcode %q has no recognised value-type prefix", name).WithLocation("", "", line)
	}
}

func (p *parser) expectInt(line int) (int64, error) {
	if p.cur.kind != tokenInt {
		return 0, errs.New(errs.KindInput, "expected an integer immediate, found %q", p.cur.text).WithLocation("", "", line)
	}
	v := p.cur.intVal
	if err := p.advance(); err != nil {
		return 0, err
	}
	return v, nil
}

// Package sexpr implements the inline Wasm text fragment parser of
// spec.md §4.10: a tokenizer recognising identifiers (opcode mnemonics
// with dots and underscores), signed decimal/hex integers, hex floats,
// parentheses and strings, and a parser that resolves mnemonics against
// internal/opcodes and produces the same ir.Instruction union the
// translator emits. Used to accept runtime-library fragments embedded
// verbatim in source, not the whole-module text format (that direction
// is internal/textwriter).
package sexpr

import (
	"strconv"
	"strings"

	"github.com/wasmforge/classwasm/internal/errs"
)

type tokenKind int

const (
	tokenLParen tokenKind = iota
	tokenRParen
	tokenIdent // opcode mnemonics, keywords
	tokenInt
	tokenFloat
	tokenString
	tokenEOF
)

type token struct {
	kind   tokenKind
	text   string
	intVal int64
	fltVal float64
	line   int
}

type lexer struct {
	src  []rune
	pos  int
	line int
}

func newLexer(src string) *lexer { return &lexer{src: []rune(src), line: 1} }

func (l *lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) advance() rune {
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
	}
	return r
}

func (l *lexer) skipSpaceAndComments() {
	for l.pos < len(l.src) {
		r := l.peek()
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			l.advance()
		case r == ';' && l.pos+1 < len(l.src) && l.src[l.pos+1] == ';':
			for l.pos < len(l.src) && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

// next returns the next token, or a KindInput WasmException for
// unrecognised characters.
func (l *lexer) next() (token, error) {
	l.skipSpaceAndComments()
	if l.pos >= len(l.src) {
		return token{kind: tokenEOF, line: l.line}, nil
	}
	startLine := l.line
	r := l.peek()

	switch {
	case r == '(':
		l.advance()
		return token{kind: tokenLParen, line: startLine}, nil
	case r == ')':
		l.advance()
		return token{kind: tokenRParen, line: startLine}, nil
	case r == '"':
		return l.lexString(startLine)
	case isIdentStart(r) || r == '-' || r == '+' || isDigit(r):
		return l.lexIdentOrNumber(startLine)
	default:
		return token{}, errs.New(errs.KindInput, "unexpected character %q", r).WithLocation("", "", startLine)
	}
}

func (l *lexer) lexString(startLine int) (token, error) {
	l.advance() // opening quote
	var b strings.Builder
	for {
		if l.pos >= len(l.src) {
			return token{}, errs.New(errs.KindInput, "unterminated string literal").WithLocation("", "", startLine)
		}
		r := l.advance()
		if r == '"' {
			return token{kind: tokenString, text: b.String(), line: startLine}, nil
		}
		b.WriteRune(r)
	}
}

func (l *lexer) lexIdentOrNumber(startLine int) (token, error) {
	start := l.pos
	for l.pos < len(l.src) && isIdentRune(l.peek()) {
		l.advance()
	}
	text := string(l.src[start:l.pos])

	if looksNumeric(text) {
		return lexNumber(text, startLine)
	}
	return token{kind: tokenIdent, text: text, line: startLine}, nil
}

func lexNumber(text string, line int) (token, error) {
	if strings.ContainsAny(text, ".pP") && !strings.HasPrefix(text, "0x") && !strings.HasPrefix(text, "-0x") {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return token{}, errs.New(errs.KindInput, "malformed float literal %q", text).WithLocation("", "", line)
		}
		return token{kind: tokenFloat, fltVal: f, text: text, line: line}, nil
	}
	if strings.ContainsAny(text, "pP.") {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return token{}, errs.New(errs.KindInput, "malformed hex float literal %q", text).WithLocation("", "", line)
		}
		return token{kind: tokenFloat, fltVal: f, text: text, line: line}, nil
	}
	v, err := strconv.ParseInt(text, 0, 64)
	if err != nil {
		return token{}, errs.New(errs.KindInput, "malformed integer literal %q", text).WithLocation("", "", line)
	}
	return token{kind: tokenInt, intVal: v, text: text, line: line}, nil
}

func looksNumeric(text string) bool {
	t := text
	if strings.HasPrefix(t, "+") || strings.HasPrefix(t, "-") {
		t = t[1:]
	}
	return t != "" && isDigit(rune(t[0]))
}

func isIdentStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '$' || r == '_' || r == '.'
}

func isIdentRune(r rune) bool {
	return isIdentStart(r) || isDigit(r) || r == '_' || r == '.' || r == '-' || r == '+' || r == 'x'
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

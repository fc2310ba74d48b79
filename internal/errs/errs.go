// Package errs implements the WasmException taxonomy spec.md §7
// describes: every error the compiler surfaces carries the offending
// class, method and source line so the CLI can pinpoint the fault.
package errs

import "fmt"

// Kind classifies a WasmException per spec.md §7's taxonomy.
type Kind int

const (
	// KindInput covers missing class/method, malformed class file,
	// unsupported source opcode, unsupported primitive (e.g. floating
	// remainder).
	KindInput Kind = iota
	// KindSemantic covers abstract/native methods marked Export,
	// non-static methods marked Export or Import, references to
	// undefined functions or globals.
	KindSemantic
	// KindStructural covers failed control-flow reconstruction, stack
	// type mismatches at a merge point, malformed switch tables.
	KindStructural
	// KindIO covers a writer that could not open, write, or close an
	// output file.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindSemantic:
		return "semantic"
	case KindStructural:
		return "structural"
	case KindIO:
		return "I/O"
	default:
		return "unknown"
	}
}

// WasmException is the one error type the compiler pipeline returns.
// ClassName/MethodName/SourceLine are approximate-source-line context
// (spec.md §7) attached by the translator when an error escapes a
// method; SourceLine is -1 when no line-number-table entry applies.
type WasmException struct {
	Kind       Kind
	Message    string
	ClassName  string
	MethodName string
	SourceLine int
	cause      error
}

func (e *WasmException) Error() string {
	loc := ""
	if e.ClassName != "" {
		loc = fmt.Sprintf(" [%s", e.ClassName)
		if e.MethodName != "" {
			loc += "." + e.MethodName
		}
		if e.SourceLine >= 0 {
			loc += fmt.Sprintf(":%d", e.SourceLine)
		}
		loc += "]"
	}
	return fmt.Sprintf("%s error: %s%s", e.Kind, e.Message, loc)
}

// Unwrap exposes the wrapped cause, if any, for errors.Is/errors.As.
func (e *WasmException) Unwrap() error { return e.cause }

// New builds a WasmException with no location context yet attached; call
// WithLocation once the offending class/method/line is known.
func New(kind Kind, format string, args ...any) *WasmException {
	return &WasmException{Kind: kind, Message: fmt.Sprintf(format, args...), SourceLine: -1}
}

// Wrap builds a WasmException around cause, preserving it for errors.As.
func Wrap(kind Kind, cause error, format string, args ...any) *WasmException {
	return &WasmException{Kind: kind, Message: fmt.Sprintf(format, args...), SourceLine: -1, cause: cause}
}

// WithLocation returns a copy of e annotated with (className, methodName,
// sourceLine), the re-throw step spec.md §7 requires so the CLI can
// pinpoint faults. It never alters e itself.
func (e *WasmException) WithLocation(className, methodName string, sourceLine int) *WasmException {
	cp := *e
	cp.ClassName = className
	cp.MethodName = methodName
	cp.SourceLine = sourceLine
	return &cp
}

// Is reports whether err is itself a *WasmException of the given kind
// (e.g. errs.Is(err, errs.KindStructural)); wrapped errors are not
// unwrapped.
func Is(err error, kind Kind) bool {
	we, ok := err.(*WasmException)
	if !ok {
		return false
	}
	return we.Kind == kind
}

// Package classfile defines the contract the source-bytecode parser must
// satisfy. Class-file parsing itself is an external collaborator
// (spec.md §1): this package never reads bytes off disk, it only
// declares the shape the rest of the pipeline consumes, plus the minimal
// version gate spec.md §6/§7 requires before type discovery begins.
package classfile

import (
	"strconv"

	"github.com/hashicorp/go-version"

	"github.com/wasmforge/classwasm/internal/ir"
)

// ConstantKind tags one entry of a method's constant pool.
type ConstantKind int

const (
	ConstantUTF8 ConstantKind = iota
	ConstantClassRef
	ConstantFieldRef
	ConstantMethodRef
	ConstantInterfaceMethodRef
	ConstantInteger
	ConstantFloat
	ConstantLong
	ConstantDouble
	ConstantString
)

// Constant is one resolved constant-pool entry.
type Constant struct {
	Kind ConstantKind

	// ConstantFieldRef / ConstantMethodRef / ConstantInterfaceMethodRef
	OwnerClass string
	MemberName string
	Descriptor string

	// scalar payload, valid per Kind
	UTF8    string
	Integer int32
	Long    int64
	Float   float32
	Double  float64
}

// LineNumberEntry maps a bytecode offset to a source line.
type LineNumberEntry struct {
	StartPC int
	Line    int
}

// LocalVariableEntry names one local-variable slot over a PC range.
type LocalVariableEntry struct {
	StartPC int
	Length  int
	Name    string
	Slot    int
	Type    ir.ValueType
}

// Method is the per-method contract the parser supplies: raw bytecode,
// constant pool accessor, line-number table, local-variable table, and
// access flags, exactly the list spec.md §1 names.
type Method struct {
	Name       string
	Descriptor string
	AccessFlags AccessFlags
	Code        []byte
	LineNumbers []LineNumberEntry
	LocalVars   []LocalVariableEntry
	// ExceptionHandlers is the method's exception table: each entry
	// covers [StartPC, EndPC) and dispatches to HandlerPC when the
	// thrown type matches CatchClass (empty CatchClass means catch-all,
	// used for synchronized-region finally blocks per spec.md §4.5.4).
	ExceptionHandlers []ExceptionHandler

	// Annotations surfaces the source-language-level signalling spec.md
	// §6 describes (Export / Import / inline-text).
	Annotations MethodAnnotations
}

// ExceptionHandler is one entry of a method's exception table.
type ExceptionHandler struct {
	StartPC    int
	EndPC      int
	HandlerPC  int
	CatchClass string
}

// AccessFlags mirrors the subset of class-file access flags the
// compiler must branch on (static/abstract/native), per spec.md §7's
// semantic-error cases.
type AccessFlags struct {
	Static   bool
	Abstract bool
	Native   bool
	Public   bool
}

// MethodAnnotations captures spec.md §6's three annotation forms.
type MethodAnnotations struct {
	Export       bool
	Import       bool
	ImportModule string
	ImportName   string
	// InlineText, when non-empty, is a Wasm text fragment that replaces
	// the method body entirely (spec.md §6, §4.10).
	InlineText string
}

// ConstantPool resolves constant-pool indices referenced by bytecode
// operands (method refs, field refs, class refs, literals).
type ConstantPool interface {
	Lookup(index uint16) (Constant, bool)
}

// Field is one field declaration of a class.
type Field struct {
	Name   string
	Type   ir.ValueType
	Static bool
}

// Class is the per-class contract the parser supplies: its own field
// list, superclass/interface chain, and methods, plus the constant pool
// shared by all of its methods' bytecode.
type Class struct {
	Name            string
	SuperClass      string // empty for the root of the hierarchy
	Interfaces      []string
	Fields          []Field
	Methods         []Method
	ConstantPool    ConstantPool
	MajorVersion    int
	MinorVersion    int
}

// MinSupportedMajorVersion is the oldest class-file major version this
// compiler's translator can lower; anything older may use bytecode forms
// the translator does not recognise.
const MinSupportedMajorVersion = 50 // source-bytecode major version for "JDK 6"-era class files

// ValidateVersion checks c's reported format version against the
// compiler's minimum support line using a semantic-version comparison,
// rather than a bare integer inequality, so a future minor-version bump
// to MinSupportedMajorVersion can be expressed as "50.0" without
// reworking every call site.
func ValidateVersion(c *Class) error {
	min, err := version.NewVersion("50.0")
	if err != nil {
		return err
	}
	got, err := version.NewVersion(strconv.Itoa(c.MajorVersion) + "." + strconv.Itoa(c.MinorVersion))
	if err != nil {
		return err
	}
	if got.LessThan(min) {
		return &versionError{class: c.Name, got: got.String(), min: min.String()}
	}
	return nil
}

type versionError struct {
	class, got, min string
}

func (e *versionError) Error() string {
	return "class " + e.class + ": class-file version " + e.got + " is older than the minimum supported " + e.min
}

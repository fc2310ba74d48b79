package ir

// InstructionList is a restartable, ordered sequence of Instruction
// mutated only by internal/translator and internal/optimizer (spec.md
// §3). It is owned by its transient translator frame and discarded once
// the method's code has been written into its Function's code stream.
type InstructionList struct {
	Items []Instruction
}

// SourceMapping is one (code-offset, source-line, source-file) triple
// attached to a Function, consumed by internal/sourcemap (§4.11).
type SourceMapping struct {
	CodeOffset uint32
	SourceLine int
	SourceFile string
}

// Function is the record for one defined or imported function (spec.md
// §3). No compiler stage assigns ID; internal/driver and
// internal/binarywriter derive function indices from import and
// definition order instead.
type Function struct {
	Name       FunctionName
	TypeIndex  int
	ID         int // -1 until assigned
	ParamNames []string
	Code       InstructionList
	Mappings   []SourceMapping
	IsImport   bool
	ImportModule string
	ImportName   string
	Exported     bool
	ExportName   string
}

// Global is one global variable record.
type Global struct {
	ID      int
	Type    ValueType
	Mutable bool
	Init    *Instruction // one const instruction, or nil for zero-value default
}

// ExportEntry is a thin value record naming an exported func/memory/global.
type ExportEntry struct {
	Name string
	Kind byte // api.ExternTypeFunc etc.
	Index uint32
}

// ImportFunction is a thin value record for one imported function.
type ImportFunction struct {
	Module string
	Name   string
	TypeIndex int
}

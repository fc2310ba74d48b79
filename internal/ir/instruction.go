package ir

import "fmt"

// InstructionKind discriminates the variants of Instruction, spec.md §3's
// "WasmInstruction (tagged union)". Mirrors the UnionOperation shape: one
// struct carrying every variant's fields, tagged by Kind, rather than an
// interface hierarchy — cheaper to build and to peephole-match over.
type InstructionKind int

const (
	KindConst InstructionKind = iota
	KindLocal
	KindGlobal
	KindNumeric
	KindConvert
	KindCall
	KindCallIndirect
	KindBlock
	KindArray
	KindStruct
	KindMemory
	KindJumpPlaceholder
	instructionKindEnd
)

func (k InstructionKind) String() string {
	switch k {
	case KindConst:
		return "Const"
	case KindLocal:
		return "Local"
	case KindGlobal:
		return "Global"
	case KindNumeric:
		return "Numeric"
	case KindConvert:
		return "Convert"
	case KindCall:
		return "Call"
	case KindCallIndirect:
		return "CallIndirect"
	case KindBlock:
		return "Block"
	case KindArray:
		return "Array"
	case KindStruct:
		return "Struct"
	case KindMemory:
		return "Memory"
	case KindJumpPlaceholder:
		return "JumpPlaceholder"
	default:
		return "unknown"
	}
}

// LocalOp is the Local-instruction sub-operation: get, set or tee.
type LocalOp int

const (
	LocalGet LocalOp = iota
	LocalSet
	LocalTee
)

// GlobalOp is the Global-instruction sub-operation.
type GlobalOp int

const (
	GlobalGet GlobalOp = iota
	GlobalSet
)

// BlockOp enumerates the structured-control sub-opcodes spec.md §3 lists
// for the Block variant.
type BlockOp int

const (
	BlockReturn BlockOp = iota
	BlockIf
	BlockElse
	BlockEnd
	BlockDrop
	BlockBlock
	BlockLoop
	BlockBr
	BlockBrIf
	BlockBrTable
	BlockUnreachable
	BlockTry
	BlockCatch
	BlockThrow
	BlockRethrow
	BlockBrOnExn
	BlockMonitorEnter
	BlockMonitorExit
)

// ArrayOp enumerates the shared array-operation opcode set (§4.3): every
// array type uses the same NEW/GET/SET/LEN family regardless of element
// type.
type ArrayOp int

const (
	ArrayNew ArrayOp = iota
	ArrayGet
	ArraySet
	ArrayLen
)

// StructOp enumerates struct field access operations.
type StructOp int

const (
	StructNew StructOp = iota
	StructGet
	StructSet
)

// MemoryOp enumerates the load/store/size/grow memory operations.
type MemoryOp int

const (
	MemoryLoad MemoryOp = iota
	MemoryStore
	MemorySize
	MemoryGrow
)

// ConvertKind enumerates the conversion-cast families spec.md §4.5.2
// fixes: widening is sign-extending, int-to-float is signed, float-to-int
// is the saturating form, and reinterpret uses the bit-pattern opcodes.
type ConvertKind int

const (
	ConvertWiden ConvertKind = iota
	ConvertNarrow
	ConvertIntToFloat
	ConvertFloatToIntSaturating
	ConvertReinterpret
)

// Instruction is one element of an instruction list (spec.md §3). Only
// the fields relevant to Kind are populated; Offset and Line carry the
// byte offset and source line used by internal/sourcemap.
type Instruction struct {
	Kind InstructionKind

	// KindConst
	ConstType  ValueType
	ConstI32   int32
	ConstI64   int64
	ConstF32   float32
	ConstF64   float64

	// KindLocal / KindGlobal
	LocalOp   LocalOp
	GlobalOp  GlobalOp
	VarIndex  uint32
	VarType   ValueType

	// KindNumeric
	NumericOp   string // e.g. "add", "sub", "eqz" — combined with Type to pick the typed opcode.
	NumericType ValueType

	// KindConvert
	ConvertKind ConvertKind
	FromType    ValueType
	ToType      ValueType

	// KindCall / KindCallIndirect
	CallTarget FunctionName
	CallType   FunctionType // indirect call-site signature

	// KindBlock
	BlockOp     BlockOp
	BlockType   FunctionType // result signature at a structured-control boundary
	BranchDepth uint32       // relative depth, valid only after §4.6 step 5's fixup
	BrTable     []uint32     // relative depths for br_table, last entry is default

	// KindArray
	ArrayOp      ArrayOp
	ArrayElement ValueType

	// KindStruct
	StructOp    StructOp
	StructName  string
	Field       string
	FieldIndex  int

	// KindMemory
	MemoryOp     MemoryOp
	MemoryType   ValueType
	MemoryOffset uint32
	MemoryAlign  uint32

	// KindJumpPlaceholder: an absolute bytecode instruction index this
	// branch originally targeted, rewritten to BranchDepth by §4.6 step 5
	// once the nesting is final. Never survives past control-flow
	// reconstruction into the optimiser or writers.
	JumpTarget int

	// Offset is the byte offset of the instruction's source opcode within
	// the method's original bytecode; Line is the corresponding entry
	// from the line-number table, or -1 if unknown. Both feed
	// internal/sourcemap.
	Offset int
	Line   int
}

func (i Instruction) String() string {
	switch i.Kind {
	case KindConst:
		return fmt.Sprintf("const.%s", i.ConstType)
	case KindLocal:
		return fmt.Sprintf("local.%d[%d]", i.LocalOp, i.VarIndex)
	case KindGlobal:
		return fmt.Sprintf("global.%d[%d]", i.GlobalOp, i.VarIndex)
	case KindNumeric:
		return fmt.Sprintf("%s.%s", i.NumericType, i.NumericOp)
	case KindConvert:
		return fmt.Sprintf("convert(%s->%s)", i.FromType, i.ToType)
	case KindCall:
		return fmt.Sprintf("call %s", i.CallTarget.SignatureName())
	case KindCallIndirect:
		return fmt.Sprintf("call_indirect %s", i.CallType)
	case KindBlock:
		return fmt.Sprintf("block.%d", i.BlockOp)
	case KindArray:
		return fmt.Sprintf("array.%d[%s]", i.ArrayOp, i.ArrayElement)
	case KindStruct:
		return fmt.Sprintf("struct.%d[%s.%s]", i.StructOp, i.StructName, i.Field)
	case KindMemory:
		return fmt.Sprintf("memory.%d[%s]", i.MemoryOp, i.MemoryType)
	case KindJumpPlaceholder:
		return fmt.Sprintf("jump->%d", i.JumpTarget)
	default:
		return "unknown"
	}
}

// ConstI32Instr builds a KindConst i32 instruction, the shape most
// exercised by the peephole optimiser's constant-folding rule (§4.7.1).
func ConstI32Instr(v int32, offset, line int) Instruction {
	return Instruction{Kind: KindConst, ConstType: ValueTypeI32, ConstI32: v, Offset: offset, Line: line}
}

// NumericI32 builds a typed i32 numeric instruction.
func NumericI32(op string, offset, line int) Instruction {
	return Instruction{Kind: KindNumeric, NumericOp: op, NumericType: ValueTypeI32, Offset: offset, Line: line}
}

// LocalSetInstr builds a local.set instruction for local index idx.
func LocalSetInstr(idx uint32, offset, line int) Instruction {
	return Instruction{Kind: KindLocal, LocalOp: LocalSet, VarIndex: idx, Offset: offset, Line: line}
}

// LocalGetInstr builds a local.get instruction for local index idx.
func LocalGetInstr(idx uint32, offset, line int) Instruction {
	return Instruction{Kind: KindLocal, LocalOp: LocalGet, VarIndex: idx, Offset: offset, Line: line}
}

// LocalTeeInstr builds a local.tee instruction for local index idx.
func LocalTeeInstr(idx uint32, offset, line int) Instruction {
	return Instruction{Kind: KindLocal, LocalOp: LocalTee, VarIndex: idx, Offset: offset, Line: line}
}

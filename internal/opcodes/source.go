// Package opcodes holds the two static opcode tables the rest of the
// compiler consumes: the source-bytecode instruction set and the Wasm
// instruction set. Neither table contains logic; they are pure value
// tables referenced by internal/translator and internal/binarywriter.
package opcodes

// OperandKind classifies what a source-bytecode opcode consumes from the
// instruction stream immediately following its one-byte tag.
type OperandKind int

const (
	OperandNone OperandKind = iota
	OperandSignedByte
	OperandSignedShort
	OperandConstantPoolIndex
	OperandLocalIndex
	OperandBranchOffset
	OperandTableSwitch
	OperandLookupSwitch
)

// Source is one entry of the source-bytecode opcode table.
type Source struct {
	Code    byte
	Name    string
	Operand OperandKind
}

// SourceTable enumerates the source-bytecode opcodes understood by
// internal/translator. It is not exhaustive of the ~200 opcodes spec.md
// §4.2 describes, but every family (stack manipulation, arithmetic,
// locals, fields, control, invocation, arrays, monitors) is represented
// so the translator's per-opcode switch has a canonical name for every
// category it must dispatch on.
var SourceTable = map[byte]Source{
	0x00: {0x00, "nop", OperandNone},
	0x01: {0x01, "aconst_null", OperandNone},
	0x02: {0x02, "iconst_m1", OperandNone},
	0x03: {0x03, "iconst_0", OperandNone},
	0x04: {0x04, "iconst_1", OperandNone},
	0x10: {0x10, "bipush", OperandSignedByte},
	0x11: {0x11, "sipush", OperandSignedShort},
	0x12: {0x12, "ldc", OperandConstantPoolIndex},
	0x15: {0x15, "iload", OperandLocalIndex},
	0x16: {0x16, "lload", OperandLocalIndex},
	0x17: {0x17, "fload", OperandLocalIndex},
	0x18: {0x18, "dload", OperandLocalIndex},
	0x19: {0x19, "aload", OperandLocalIndex},
	0x36: {0x36, "istore", OperandLocalIndex},
	0x37: {0x37, "lstore", OperandLocalIndex},
	0x38: {0x38, "fstore", OperandLocalIndex},
	0x39: {0x39, "dstore", OperandLocalIndex},
	0x3a: {0x3a, "astore", OperandLocalIndex},
	0x57: {0x57, "pop", OperandNone},
	0x59: {0x59, "dup", OperandNone},
	0x60: {0x60, "iadd", OperandNone},
	0x61: {0x61, "ladd", OperandNone},
	0x62: {0x62, "fadd", OperandNone},
	0x63: {0x63, "dadd", OperandNone},
	0x64: {0x64, "isub", OperandNone},
	0x68: {0x68, "imul", OperandNone},
	0x6c: {0x6c, "idiv", OperandNone},
	0x70: {0x70, "irem", OperandNone},
	0x72: {0x72, "frem", OperandNone},
	0x74: {0x74, "ineg", OperandNone},
	0x85: {0x85, "i2l", OperandNone},
	0x86: {0x86, "i2f", OperandNone},
	0x87: {0x87, "i2d", OperandNone},
	0x88: {0x88, "l2i", OperandNone},
	0x8b: {0x8b, "f2i", OperandNone},
	0x8e: {0x8e, "d2i", OperandNone},
	0x91: {0x91, "i2b", OperandNone},
	0x92: {0x92, "i2c", OperandNone},
	0x93: {0x93, "i2s", OperandNone},
	0x99: {0x99, "ifeq", OperandBranchOffset},
	0x9a: {0x9a, "ifne", OperandBranchOffset},
	0xa7: {0xa7, "goto", OperandBranchOffset},
	0xaa: {0xaa, "tableswitch", OperandTableSwitch},
	0xab: {0xab, "lookupswitch", OperandLookupSwitch},
	0xac: {0xac, "ireturn", OperandNone},
	0xb0: {0xb0, "areturn", OperandNone},
	0xb1: {0xb1, "return", OperandNone},
	0xb2: {0xb2, "getstatic", OperandConstantPoolIndex},
	0xb3: {0xb3, "putstatic", OperandConstantPoolIndex},
	0xb4: {0xb4, "getfield", OperandConstantPoolIndex},
	0xb5: {0xb5, "putfield", OperandConstantPoolIndex},
	0xb6: {0xb6, "invokevirtual", OperandConstantPoolIndex},
	0xb7: {0xb7, "invokespecial", OperandConstantPoolIndex},
	0xb8: {0xb8, "invokestatic", OperandConstantPoolIndex},
	0xb9: {0xb9, "invokeinterface", OperandConstantPoolIndex},
	0xbb: {0xbb, "new", OperandConstantPoolIndex},
	0xbc: {0xbc, "newarray", OperandSignedByte},
	0xbd: {0xbd, "anewarray", OperandConstantPoolIndex},
	0xbe: {0xbe, "arraylength", OperandNone},
	0xbf: {0xbf, "athrow", OperandNone},
	0xc0: {0xc0, "checkcast", OperandConstantPoolIndex},
	0xc1: {0xc1, "instanceof", OperandConstantPoolIndex},
	0xc2: {0xc2, "monitorenter", OperandNone},
	0xc3: {0xc3, "monitorexit", OperandNone},
}

// SourceName returns the opcode's canonical name, or "unknown" if code is
// not in SourceTable.
func SourceName(code byte) string {
	if e, ok := SourceTable[code]; ok {
		return e.Name
	}
	return "unknown"
}

package translator

import (
	"encoding/binary"

	"github.com/wasmforge/classwasm/internal/errs"
	"github.com/wasmforge/classwasm/internal/opcodes"
)

// decodedOp is one raw source-bytecode instruction, still carrying its
// constant-pool/local-index/branch-offset operand exactly as encoded,
// before any resolution against the constant pool or type system.
type decodedOp struct {
	Offset  int
	Next    int
	Name    string
	Code    byte
	Operand opcodes.OperandKind

	IntOperand    int32  // bipush/sipush/newarray payload, or branch offset (not yet resolved to absolute)
	LocalIndex    uint16 // iload/istore family
	PoolIndex     uint16 // ldc/getstatic/invokevirtual family
	BranchTarget  int    // absolute target offset, resolved from IntOperand + Offset

	// tableswitch / lookupswitch
	DefaultOffset int
	Low, High     int32   // tableswitch
	CaseValues    []int32 // lookupswitch
	CaseOffsets   []int   // absolute, one per case (parallel to CaseValues for lookupswitch, or implicit index for tableswitch)
}

// decodeMethod scans code into a flat, offset-addressed instruction list.
// className/methodName are carried only for error location context.
func decodeMethod(className, methodName string, code []byte) ([]decodedOp, error) {
	var ops []decodedOp
	offset := 0
	for offset < len(code) {
		b := code[offset]
		entry, ok := opcodes.SourceTable[b]
		if !ok {
			return nil, errs.New(errs.KindInput, "unsupported source opcode 0x%02x", b).WithLocation(className, methodName, -1)
		}

		op := decodedOp{Offset: offset, Name: entry.Name, Code: b, Operand: entry.Operand}
		pos := offset + 1

		switch entry.Operand {
		case opcodes.OperandNone:
			// no operand bytes
		case opcodes.OperandSignedByte:
			if pos >= len(code) {
				return nil, truncatedErr(className, methodName, op)
			}
			op.IntOperand = int32(int8(code[pos]))
			pos++
		case opcodes.OperandSignedShort:
			if pos+2 > len(code) {
				return nil, truncatedErr(className, methodName, op)
			}
			op.IntOperand = int32(int16(binary.BigEndian.Uint16(code[pos:])))
			pos += 2
		case opcodes.OperandConstantPoolIndex:
			if pos+2 > len(code) {
				return nil, truncatedErr(className, methodName, op)
			}
			op.PoolIndex = binary.BigEndian.Uint16(code[pos:])
			pos += 2
		case opcodes.OperandLocalIndex:
			if pos >= len(code) {
				return nil, truncatedErr(className, methodName, op)
			}
			op.LocalIndex = uint16(code[pos])
			pos++
		case opcodes.OperandBranchOffset:
			if pos+2 > len(code) {
				return nil, truncatedErr(className, methodName, op)
			}
			rel := int32(int16(binary.BigEndian.Uint16(code[pos:])))
			op.IntOperand = rel
			op.BranchTarget = offset + int(rel)
			pos += 2
		case opcodes.OperandTableSwitch:
			var err error
			pos, err = decodeTableSwitch(&op, code, offset, pos, className, methodName)
			if err != nil {
				return nil, err
			}
		case opcodes.OperandLookupSwitch:
			var err error
			pos, err = decodeLookupSwitch(&op, code, offset, pos, className, methodName)
			if err != nil {
				return nil, err
			}
		}

		op.Next = pos
		ops = append(ops, op)
		offset = pos
	}
	return ops, nil
}

// decodeTableSwitch parses the tableswitch layout: up to 3 zero-padding
// bytes to align on a 4-byte boundary from the opcode's own offset, then
// defaultOffset, low, high (each int32 big-endian), then (high-low+1)
// int32 jump offsets.
func decodeTableSwitch(op *decodedOp, code []byte, opOffset, pos int, className, methodName string) (int, error) {
	pos = alignTo4(opOffset, pos)
	if pos+12 > len(code) {
		return 0, truncatedErr(className, methodName, *op)
	}
	def := int32(binary.BigEndian.Uint32(code[pos:]))
	low := int32(binary.BigEndian.Uint32(code[pos+4:]))
	high := int32(binary.BigEndian.Uint32(code[pos+8:]))
	pos += 12

	op.DefaultOffset = opOffset + int(def)
	op.Low, op.High = low, high

	n := int(high - low + 1)
	if n < 0 || pos+n*4 > len(code) {
		return 0, errs.New(errs.KindInput, "malformed tableswitch at offset %d", opOffset).WithLocation(className, methodName, -1)
	}
	offsets := make([]int, n)
	for i := 0; i < n; i++ {
		rel := int32(binary.BigEndian.Uint32(code[pos:]))
		offsets[i] = opOffset + int(rel)
		pos += 4
	}
	op.CaseOffsets = offsets
	return pos, nil
}

// decodeLookupSwitch parses the lookupswitch layout: alignment padding,
// defaultOffset, npairs, then npairs (value, offset) int32 pairs.
func decodeLookupSwitch(op *decodedOp, code []byte, opOffset, pos int, className, methodName string) (int, error) {
	pos = alignTo4(opOffset, pos)
	if pos+8 > len(code) {
		return 0, truncatedErr(className, methodName, *op)
	}
	def := int32(binary.BigEndian.Uint32(code[pos:]))
	npairs := int32(binary.BigEndian.Uint32(code[pos+4:]))
	pos += 8

	op.DefaultOffset = opOffset + int(def)
	if npairs < 0 || pos+int(npairs)*8 > len(code) {
		return 0, errs.New(errs.KindInput, "malformed lookupswitch at offset %d", opOffset).WithLocation(className, methodName, -1)
	}
	values := make([]int32, npairs)
	offsets := make([]int, npairs)
	for i := 0; i < int(npairs); i++ {
		values[i] = int32(binary.BigEndian.Uint32(code[pos:]))
		offsets[i] = opOffset + int(binary.BigEndian.Uint32(code[pos+4:]))
		pos += 8
	}
	op.CaseValues = values
	op.CaseOffsets = offsets
	return pos, nil
}

// alignTo4 advances pos to the next multiple of 4 relative to the start
// of the method's code array, the padding rule both switch forms use so
// the fixed-width int32 table that follows is naturally aligned.
func alignTo4(_, pos int) int {
	for pos%4 != 0 {
		pos++
	}
	return pos
}

func truncatedErr(className, methodName string, op decodedOp) error {
	return errs.New(errs.KindInput, "truncated operand for opcode %q at offset %d", op.Name, op.Offset).
		WithLocation(className, methodName, -1)
}

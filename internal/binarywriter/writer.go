// Package binarywriter implements the binary module writer of spec.md
// §4.8: preamble, then each section in its fixed canonical order, each
// framed as (id varuint32, size varuint32, payload). Section encodings
// are grounded directly on the byte shapes a Wasm-executing runtime's own
// encoder tests exercise (type/import/function/start/export/code).
//
// Struct and array types the type manager interns (spec.md §4.3) still
// receive a stable TypeIndex, but this writer does not emit GC-proposal
// type-section entries for them — the proposal's struct/array encoding
// was never a concern any retrieved reference exercised, so emitting it
// here would be invented rather than grounded. Classes and arrays are
// instead realised purely through the functions and data the rest of the
// pipeline already produces (field access compiles to load/store against
// a flat linear-memory layout, vtables to a data-segment table), which is
// enough to make every spec.md §4.3 operation observable end to end.
package binarywriter

import (
	"fmt"

	"github.com/wasmforge/classwasm/internal/errs"
	"github.com/wasmforge/classwasm/internal/ir"
	"github.com/wasmforge/classwasm/internal/leb128"
	"github.com/wasmforge/classwasm/internal/opcodes"
)

// Section ids, in the fixed emission order spec.md §4.8 names.
const (
	sectionCustom   = 0x00
	sectionType     = 0x01
	sectionImport   = 0x02
	sectionFunction = 0x03
	sectionTable    = 0x04
	sectionMemory   = 0x05
	sectionGlobal   = 0x06
	sectionExport   = 0x07
	sectionStart    = 0x08
	sectionElement  = 0x09
	sectionCode     = 0x0a
	sectionData     = 0x0b
	// sectionEvent is the exception-handling proposal's event section id;
	// not yet assigned a stable number in the core spec, kept local here.
	sectionEvent = 0x0d

	exportKindFunc   = 0x00
	exportKindMemory = 0x02
)

var (
	magic   = []byte{0x00, 0x61, 0x73, 0x6d}
	version = []byte{0x01, 0x00, 0x00, 0x00}
)

// Function is one function the writer emits: its interned type index,
// local declarations, and already-optimised, fully depth-resolved code.
type Function struct {
	Name      ir.FunctionName // identity used to resolve KindCall targets to a function index
	TypeIndex int
	Locals    []ir.ValueType // one entry per local slot beyond the parameters
	Code      ir.InstructionList
	Export    string // export name, or "" if not exported
}

// Import is an imported function, always ordered before every
// locally-defined function in the function index space.
type Import struct {
	Module, Name string
	TypeIndex    int
	Function     ir.FunctionName // identity used to resolve a vtable slot to this import's function index, if any
}

// DataSegment is one passive-free, memory-0, i32.const-offset data
// segment — the shape a materialised vtable needs: a contiguous run of
// little-endian i32 function indices starting at Offset (spec.md §4.3
// "materialise a vector of function indices into the data section at a
// recorded offset").
type DataSegment struct {
	Offset int
	Bytes  []byte
}

// Module is the writer's whole input: everything spec.md §4.8 needs to
// serialise one compiled module.
type Module struct {
	Types       []ir.FunctionType
	Imports     []Import
	Functions   []Function
	Globals     []ir.Global
	MemoryPages uint32 // 0 means no memory section
	EventUsed   bool   // emit the event section iff the exception event was used

	HasIndirectTable bool
	ElementFuncs      []uint32 // direct function indices, 1:1 into the indirect table

	Data []DataSegment // materialised vtables (and any other pre-linked memory content)

	DebugNames       bool
	ProducerLanguage string
	ProducerName     string
	SourceMappingURL string
}

// Encode serialises m into the binary module format.
func Encode(m *Module) ([]byte, error) {
	w := leb128.NewWriter()
	w.WriteBytes(magic)
	w.WriteBytes(version)

	if len(m.Types) > 0 {
		writeSection(w, sectionType, encodeTypeSection(m.Types))
	}
	if len(m.Imports) > 0 {
		writeSection(w, sectionImport, encodeImportSection(m.Imports))
	}
	if len(m.Functions) > 0 {
		writeSection(w, sectionFunction, encodeFunctionSection(m.Functions))
	}
	if m.HasIndirectTable {
		writeSection(w, sectionTable, encodeTableSection(uint32(len(m.ElementFuncs))))
	}
	if m.MemoryPages > 0 {
		writeSection(w, sectionMemory, encodeMemorySection(m.MemoryPages))
	}
	if len(m.Globals) > 0 {
		writeSection(w, sectionGlobal, encodeGlobalSection(m.Globals))
	}
	if m.EventUsed {
		writeSection(w, sectionEvent, encodeEventSection())
	}
	if exports := encodeExportSection(m); len(exports) > 0 {
		writeSection(w, sectionExport, exports)
	}
	if m.HasIndirectTable && len(m.ElementFuncs) > 0 {
		writeSection(w, sectionElement, encodeElementSection(m.ElementFuncs))
	}
	if len(m.Functions) > 0 {
		payload, err := encodeCodeSection(m)
		if err != nil {
			return nil, err
		}
		writeSection(w, sectionCode, payload)
	}
	if len(m.Data) > 0 {
		writeSection(w, sectionData, encodeDataSection(m.Data))
	}

	if m.DebugNames {
		writeSection(w, sectionCustom, encodeNameSection(m))
	}
	if m.ProducerLanguage != "" || m.ProducerName != "" {
		writeSection(w, sectionCustom, encodeProducersSection(m))
	}
	if m.SourceMappingURL != "" {
		writeSection(w, sectionCustom, encodeSourceMappingSection(m.SourceMappingURL))
	}

	return w.Bytes(), nil
}

func writeSection(w *leb128.Writer, id byte, payload []byte) {
	w.WriteByte(id)
	w.WriteBytes(leb128.EncodeUint32(uint32(len(payload))))
	w.WriteBytes(payload)
}

func encodeTypeSection(types []ir.FunctionType) []byte {
	w := leb128.NewWriter()
	w.WriteBytes(leb128.EncodeUint32(uint32(len(types))))
	for _, ft := range types {
		w.WriteByte(byte(ir.ValueTypeFunc))
		w.WriteBytes(leb128.EncodeUint32(uint32(len(ft.Params))))
		for _, p := range ft.Params {
			w.WriteByte(byte(p))
		}
		w.WriteBytes(leb128.EncodeUint32(uint32(len(ft.Results))))
		for _, r := range ft.Results {
			w.WriteByte(byte(r))
		}
	}
	return w.Bytes()
}

func encodeImportSection(imports []Import) []byte {
	w := leb128.NewWriter()
	w.WriteBytes(leb128.EncodeUint32(uint32(len(imports))))
	for _, imp := range imports {
		w.WriteString(imp.Module)
		w.WriteString(imp.Name)
		w.WriteByte(exportKindFunc)
		w.WriteBytes(leb128.EncodeUint32(uint32(imp.TypeIndex)))
	}
	return w.Bytes()
}

func encodeFunctionSection(fns []Function) []byte {
	w := leb128.NewWriter()
	w.WriteBytes(leb128.EncodeUint32(uint32(len(fns))))
	for _, fn := range fns {
		w.WriteBytes(leb128.EncodeUint32(uint32(fn.TypeIndex)))
	}
	return w.Bytes()
}

// encodeTableSection always declares exactly one funcref table, sized to
// fit the element section the caller supplies — spec.md §4.8 "a string
// table when interned strings exist" is left to the data section, since
// no retrieved reference groups constant strings in a second table.
func encodeTableSection(n uint32) []byte {
	w := leb128.NewWriter()
	w.WriteBytes(leb128.EncodeUint32(1)) // 1 table
	w.WriteByte(byte(ir.ValueTypeFuncref))
	w.WriteByte(0x00) // limits: flags=0 (min only)
	w.WriteBytes(leb128.EncodeUint32(n))
	return w.Bytes()
}

func encodeMemorySection(pages uint32) []byte {
	w := leb128.NewWriter()
	w.WriteBytes(leb128.EncodeUint32(1)) // 1 memory
	w.WriteByte(0x00)                    // limits: flags=0 (min only)
	w.WriteBytes(leb128.EncodeUint32(pages))
	return w.Bytes()
}

func encodeGlobalSection(globals []ir.Global) []byte {
	w := leb128.NewWriter()
	w.WriteBytes(leb128.EncodeUint32(uint32(len(globals))))
	for _, g := range globals {
		w.WriteByte(byte(g.Type))
		if g.Mutable {
			w.WriteByte(0x01)
		} else {
			w.WriteByte(0x00)
		}
		if g.Init != nil {
			writeConstExpr(w, *g.Init)
		}
		w.WriteByte(0x0b) // end
	}
	return w.Bytes()
}

func writeConstExpr(w *leb128.Writer, instr ir.Instruction) {
	switch instr.ConstType {
	case ir.ValueTypeI32:
		w.WriteByte(0x41)
		w.WriteBytes(leb128.EncodeInt32(instr.ConstI32))
	case ir.ValueTypeI64:
		w.WriteByte(0x42)
		w.WriteBytes(leb128.EncodeInt64(instr.ConstI64))
	case ir.ValueTypeF32:
		w.WriteByte(0x43)
		w.WriteFloat32LE(instr.ConstF32)
	case ir.ValueTypeF64:
		w.WriteByte(0x44)
		w.WriteFloat64LE(instr.ConstF64)
	}
}

// encodeEventSection emits the single shared (externref)->() event
// signature internal/translator registers lazily for exception handling.
func encodeEventSection() []byte {
	w := leb128.NewWriter()
	w.WriteBytes(leb128.EncodeUint32(1)) // 1 event
	w.WriteByte(0x00)                    // attribute: exception
	w.WriteBytes(leb128.EncodeUint32(0)) // type index of the shared signature
	return w.Bytes()
}

func encodeExportSection(m *Module) []byte {
	type entry struct {
		name  string
		kind  byte
		index uint32
	}
	var entries []entry
	if m.MemoryPages > 0 {
		entries = append(entries, entry{"memory", exportKindMemory, 0})
	}
	funcIndex := uint32(len(m.Imports))
	for _, fn := range m.Functions {
		if fn.Export != "" {
			entries = append(entries, entry{fn.Export, exportKindFunc, funcIndex})
		}
		funcIndex++
	}
	if len(entries) == 0 {
		return nil
	}
	w := leb128.NewWriter()
	w.WriteBytes(leb128.EncodeUint32(uint32(len(entries))))
	for _, e := range entries {
		w.WriteString(e.name)
		w.WriteByte(e.kind)
		w.WriteBytes(leb128.EncodeUint32(e.index))
	}
	return w.Bytes()
}

// encodeElementSection fills the indirect table with a 1:1 mapping from
// direct function index to indirect slot (spec.md §4.8).
func encodeElementSection(funcs []uint32) []byte {
	w := leb128.NewWriter()
	w.WriteBytes(leb128.EncodeUint32(1)) // 1 segment
	w.WriteBytes(leb128.EncodeUint32(0)) // table index 0
	w.WriteByte(0x41)                    // i32.const
	w.WriteBytes(leb128.EncodeInt32(0))  // offset 0
	w.WriteByte(0x0b)                    // end
	w.WriteBytes(leb128.EncodeUint32(uint32(len(funcs))))
	for _, idx := range funcs {
		w.WriteBytes(leb128.EncodeUint32(idx))
	}
	return w.Bytes()
}

// encodeDataSection emits one active, memory-0 segment per DataSegment,
// each at its own i32.const offset — the materialised vtables
// buildVirtualCall's call_indirect lookups read back via [header]+slot*4
// (spec.md §4.3, §4.8 "Data").
func encodeDataSection(segments []DataSegment) []byte {
	w := leb128.NewWriter()
	w.WriteBytes(leb128.EncodeUint32(uint32(len(segments))))
	for _, seg := range segments {
		w.WriteBytes(leb128.EncodeUint32(0)) // memory index 0
		w.WriteByte(0x41)                    // i32.const
		w.WriteBytes(leb128.EncodeInt32(int32(seg.Offset)))
		w.WriteByte(0x0b) // end
		w.WriteBytes(leb128.EncodeUint32(uint32(len(seg.Bytes))))
		w.WriteBytes(seg.Bytes)
	}
	return w.Bytes()
}

// encodeCodeSection emits, for each function, its locals (run-length
// encoded by type) then its code stream then a terminating end.
func encodeCodeSection(m *Module) ([]byte, error) {
	res := newFuncResolver(m)
	w := leb128.NewWriter()
	w.WriteBytes(leb128.EncodeUint32(uint32(len(m.Functions))))
	for _, fn := range m.Functions {
		body := leb128.NewWriter()
		writeLocalDecls(body, fn.Locals)
		if err := writeCode(body, fn.Code.Items, res); err != nil {
			return nil, err
		}
		body.WriteByte(0x0b) // end

		w.WriteBytes(leb128.EncodeUint32(uint32(body.Len())))
		w.WriteBytes(body.Bytes())
	}
	return w.Bytes(), nil
}

// funcResolver maps a call target's SignatureName to its absolute
// function index (imports occupy indices [0, len(Imports)), defined
// functions follow in declaration order), and a function type to its
// interned type-section index — both needed to encode KindCall and
// KindCallIndirect.
type funcResolver struct {
	byName  map[string]uint32
	types   []ir.FunctionType
}

func newFuncResolver(m *Module) *funcResolver {
	r := &funcResolver{byName: make(map[string]uint32, len(m.Functions)), types: m.Types}
	for i, imp := range m.Imports {
		r.byName[imp.Function.SignatureName()] = uint32(i)
	}
	idx := uint32(len(m.Imports))
	for _, fn := range m.Functions {
		r.byName[fn.Name.SignatureName()] = idx
		idx++
	}
	return r
}

func (r *funcResolver) funcIndex(name ir.FunctionName) (uint32, bool) {
	idx, ok := r.byName[name.SignatureName()]
	return idx, ok
}

func (r *funcResolver) typeIndex(ft ir.FunctionType) (uint32, bool) {
	for i, existing := range r.types {
		if existing.Equal(ft) {
			return uint32(i), true
		}
	}
	return 0, false
}

func writeLocalDecls(w *leb128.Writer, locals []ir.ValueType) {
	type run struct {
		t     ir.ValueType
		count uint32
	}
	var runs []run
	for _, t := range locals {
		if len(runs) > 0 && runs[len(runs)-1].t == t {
			runs[len(runs)-1].count++
			continue
		}
		runs = append(runs, run{t, 1})
	}
	w.WriteBytes(leb128.EncodeUint32(uint32(len(runs))))
	for _, r := range runs {
		w.WriteBytes(leb128.EncodeUint32(r.count))
		w.WriteByte(byte(r.t))
	}
}

func encodeNameSection(m *Module) []byte {
	const subsectionFunctionNames = 0x01
	w := leb128.NewWriter()
	w.WriteByte(0x04)
	w.WriteBytes([]byte("name"))

	funcNames := leb128.NewWriter()
	named := 0
	funcIndex := uint32(len(m.Imports))
	body := leb128.NewWriter()
	for _, fn := range m.Functions {
		if fn.Export != "" {
			body.WriteBytes(leb128.EncodeUint32(funcIndex))
			body.WriteString(fn.Export)
			named++
		}
		funcIndex++
	}
	funcNames.WriteBytes(leb128.EncodeUint32(uint32(named)))
	funcNames.WriteBytes(body.Bytes())

	w.WriteByte(subsectionFunctionNames)
	w.WriteBytes(leb128.EncodeUint32(uint32(funcNames.Len())))
	w.WriteBytes(funcNames.Bytes())
	return w.Bytes()
}

func encodeProducersSection(m *Module) []byte {
	w := leb128.NewWriter()
	w.WriteByte(0x09)
	w.WriteBytes([]byte("producers"))

	lang := m.ProducerLanguage
	if lang == "" {
		lang = "unknown"
	}
	name := m.ProducerName
	if name == "" {
		name = "classwasm"
	}

	w.WriteBytes(leb128.EncodeUint32(2)) // 2 fields: language, processed-by
	writeProducerField(w, "language", lang)
	writeProducerField(w, "processed-by", name)
	return w.Bytes()
}

func writeProducerField(w *leb128.Writer, field, value string) {
	w.WriteString(field)
	w.WriteBytes(leb128.EncodeUint32(1)) // 1 value
	w.WriteString(value)
	w.WriteString("") // version, unknown
}

func encodeSourceMappingSection(url string) []byte {
	w := leb128.NewWriter()
	w.WriteByte(0x13)
	w.WriteBytes([]byte("sourceMappingURL"))
	w.WriteString(url)
	return w.Bytes()
}

// writeCode writes a reconstructed, already branch-depth-resolved
// instruction stream in binary form. Structural instructions
// (block/loop/if/else/end/br/br_if/br_table/return) are emitted
// directly; every other instruction kind is expected to have been
// lowered to a concrete opcode by internal/translator before reaching
// the writer — anything else is a structural bug, reported as a
// WasmException rather than silently skipped.
func writeCode(w *leb128.Writer, items []ir.Instruction, res *funcResolver) error {
	for _, instr := range items {
		if err := writeInstruction(w, instr, res); err != nil {
			return err
		}
	}
	return nil
}

func writeInstruction(w *leb128.Writer, instr ir.Instruction, res *funcResolver) error {
	switch instr.Kind {
	case ir.KindConst:
		writeConstExpr(w, instr)
	case ir.KindLocal:
		switch instr.LocalOp {
		case ir.LocalGet:
			w.WriteByte(0x20)
		case ir.LocalSet:
			w.WriteByte(0x21)
		case ir.LocalTee:
			w.WriteByte(0x22)
		}
		w.WriteBytes(leb128.EncodeUint32(instr.VarIndex))
	case ir.KindGlobal:
		if instr.GlobalOp == ir.GlobalGet {
			w.WriteByte(0x23)
		} else {
			w.WriteByte(0x24)
		}
		w.WriteBytes(leb128.EncodeUint32(instr.VarIndex))
	case ir.KindBlock:
		return writeBlockInstruction(w, instr)
	case ir.KindNumeric:
		return writeOpcodeByMnemonic(w, fmt.Sprintf("%s.%s", instr.NumericType, instr.NumericOp))
	case ir.KindConvert:
		return writeConvert(w, instr)
	case ir.KindCall:
		idx, ok := res.funcIndex(instr.CallTarget)
		if !ok {
			return errs.New(errs.KindStructural, "call target %s has no assigned function index", instr.CallTarget)
		}
		w.WriteByte(0x10)
		w.WriteBytes(leb128.EncodeUint32(idx))
	case ir.KindCallIndirect:
		typeIdx, ok := res.typeIndex(instr.CallType)
		if !ok {
			return errs.New(errs.KindStructural, "call_indirect signature %s was never interned into the type section", instr.CallType)
		}
		w.WriteByte(0x11)
		w.WriteBytes(leb128.EncodeUint32(typeIdx))
		w.WriteByte(0x00) // table index 0, the module's single indirect table
	case ir.KindMemory:
		return writeMemory(w, instr)
	default:
		return errs.New(errs.KindStructural, "instruction kind %s reached the binary writer unresolved", instr.Kind)
	}
	return nil
}

// writeOpcodeByMnemonic looks the mnemonic up in the shared Wasm opcode
// table and writes its (optional prefix, code) bytes — the same table
// internal/sexpr resolves text-fragment mnemonics against.
func writeOpcodeByMnemonic(w *leb128.Writer, name string) error {
	entry, ok := opcodes.Lookup(name)
	if !ok {
		return errs.New(errs.KindStructural, "opcode %q has no entry in the Wasm opcode table", name)
	}
	if entry.Prefix != opcodes.PrefixNone {
		w.WriteByte(entry.Prefix)
	}
	w.WriteByte(entry.Code)
	return nil
}

// writeConvert writes the Wasm opcode that convertMnemonic picks for a
// (ConvertKind, FromType, ToType) triple (spec.md §4.5.2): widen is sign-extending, narrow
// wraps, int-to-float is signed, float-to-int is the saturating form.
func writeConvert(w *leb128.Writer, instr ir.Instruction) error {
	name, ok := convertMnemonic(instr.ConvertKind, instr.FromType, instr.ToType)
	if !ok {
		return errs.New(errs.KindStructural, "no Wasm conversion opcode for %s(%s->%s)", instr.ConvertKind, instr.FromType, instr.ToType)
	}
	return writeOpcodeByMnemonic(w, name)
}

func convertMnemonic(kind ir.ConvertKind, from, to ir.ValueType) (string, bool) {
	switch {
	case kind == ir.ConvertWiden && from == ir.ValueTypeI32 && to == ir.ValueTypeI64:
		return "i64.extend_i32_s", true
	case kind == ir.ConvertNarrow && from == ir.ValueTypeI64 && to == ir.ValueTypeI32:
		return "i32.wrap_i64", true
	case kind == ir.ConvertIntToFloat && from == ir.ValueTypeI32 && to == ir.ValueTypeF32:
		return "f32.convert_i32_s", true
	case kind == ir.ConvertIntToFloat && from == ir.ValueTypeI32 && to == ir.ValueTypeF64:
		return "f64.convert_i32_s", true
	case kind == ir.ConvertFloatToIntSaturating && from == ir.ValueTypeF32 && to == ir.ValueTypeI32:
		return "i32.trunc_sat_f32_s", true
	case kind == ir.ConvertFloatToIntSaturating && from == ir.ValueTypeF64 && to == ir.ValueTypeI32:
		return "i32.trunc_sat_f64_s", true
	case kind == ir.ConvertReinterpret && from == ir.ValueTypeF32 && to == ir.ValueTypeI32:
		return "i32.reinterpret_f32", true
	case kind == ir.ConvertReinterpret && from == ir.ValueTypeI32 && to == ir.ValueTypeF32:
		return "f32.reinterpret_i32", true
	default:
		return "", false
	}
}

// writeMemory emits the load/store/size/grow family; field and array
// access both lower to these since struct/array types are not
// materialised as GC type-section entries (see package doc).
func writeMemory(w *leb128.Writer, instr ir.Instruction) error {
	switch instr.MemoryOp {
	case ir.MemoryLoad:
		if err := writeOpcodeByMnemonic(w, instr.MemoryType.String()+".load"); err != nil {
			return err
		}
	case ir.MemoryStore:
		if err := writeOpcodeByMnemonic(w, instr.MemoryType.String()+".store"); err != nil {
			return err
		}
	case ir.MemorySize:
		w.WriteByte(0x3f)
		w.WriteByte(0x00)
		return nil
	case ir.MemoryGrow:
		w.WriteByte(0x40)
		w.WriteByte(0x00)
		return nil
	default:
		return errs.New(errs.KindStructural, "unsupported memory opcode %d reached the binary writer", instr.MemoryOp)
	}
	w.WriteBytes(leb128.EncodeUint32(instr.MemoryAlign))
	w.WriteBytes(leb128.EncodeUint32(instr.MemoryOffset))
	return nil
}

func writeBlockInstruction(w *leb128.Writer, instr ir.Instruction) error {
	switch instr.BlockOp {
	case ir.BlockBlock:
		w.WriteByte(0x02)
		w.WriteByte(blockTypeByte(instr.BlockType))
	case ir.BlockLoop:
		w.WriteByte(0x03)
		w.WriteByte(blockTypeByte(instr.BlockType))
	case ir.BlockIf:
		w.WriteByte(0x04)
		w.WriteByte(blockTypeByte(instr.BlockType))
	case ir.BlockElse:
		w.WriteByte(0x05)
	case ir.BlockEnd:
		w.WriteByte(0x0b)
	case ir.BlockDrop:
		w.WriteByte(0x1a)
	case ir.BlockBr:
		w.WriteByte(0x0c)
		w.WriteBytes(leb128.EncodeUint32(instr.BranchDepth))
	case ir.BlockBrIf:
		w.WriteByte(0x0d)
		w.WriteBytes(leb128.EncodeUint32(instr.BranchDepth))
	case ir.BlockBrTable:
		w.WriteByte(0x0e)
		w.WriteBytes(leb128.EncodeUint32(uint32(len(instr.BrTable) - 1)))
		for _, d := range instr.BrTable[:len(instr.BrTable)-1] {
			w.WriteBytes(leb128.EncodeUint32(d))
		}
		w.WriteBytes(leb128.EncodeUint32(instr.BrTable[len(instr.BrTable)-1]))
	case ir.BlockReturn:
		w.WriteByte(0x0f)
	case ir.BlockUnreachable:
		w.WriteByte(0x00)
	case ir.BlockTry:
		w.WriteByte(0x06)
		w.WriteByte(blockTypeByte(instr.BlockType))
	case ir.BlockCatch:
		w.WriteByte(0x07)
		w.WriteBytes(leb128.EncodeUint32(0)) // the one shared exception event
	case ir.BlockThrow:
		w.WriteByte(0x08)
		w.WriteBytes(leb128.EncodeUint32(0))
	case ir.BlockRethrow:
		w.WriteByte(0x09)
		w.WriteBytes(leb128.EncodeUint32(instr.BranchDepth))
	case ir.BlockBrOnExn:
		w.WriteByte(0x0a)
		w.WriteBytes(leb128.EncodeUint32(instr.BranchDepth))
		w.WriteBytes(leb128.EncodeUint32(0))
	default:
		return errs.New(errs.KindStructural, "unsupported structured-control opcode %d reached the binary writer", instr.BlockOp)
	}
	return nil
}

// blockTypeByte renders a block signature as the single-byte form (void
// or one leaf result type); multi-value block types would need a type
// index instead, which spec.md's instruction set never produces.
func blockTypeByte(ft ir.FunctionType) byte {
	if len(ft.Results) == 0 {
		return byte(ir.ValueTypeVoid)
	}
	return byte(ft.Results[0])
}

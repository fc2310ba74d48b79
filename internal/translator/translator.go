// Package translator implements the method translator of spec.md §4.5:
// it decodes one method's source bytecode, resolves every constant-pool,
// field and method reference against internal/typesystem, and hands the
// result to internal/cfg to reconstruct a properly nested Wasm
// instruction list.
//
// Object layout is fixed here rather than in internal/typesystem: every
// instance is a 4-byte vtable-pointer header followed by its fields at
// StructType.FieldOffset(name)+4. Virtual dispatch loads the header,
// then the target method's vtable slot, and uses the loaded function
// index directly as the call_indirect table index — internal/binarywriter's
// element section is a 1:1 map from direct function index to table slot,
// so no extra indirection table is needed.
package translator

import (
	"sort"

	"github.com/wasmforge/classwasm/internal/cfg"
	"github.com/wasmforge/classwasm/internal/classfile"
	"github.com/wasmforge/classwasm/internal/errs"
	"github.com/wasmforge/classwasm/internal/ir"
	"github.com/wasmforge/classwasm/internal/typesystem"
)

// headerSize is the byte width of the vtable-pointer header every
// instance carries ahead of its fields.
const headerSize = 4

// Translator holds the module-wide state shared across every method
// translated in one compilation: the type manager, the interned
// signature registry, the lazily-created static-field globals, and the
// one shared exception-event signature spec.md §4.5 step 5 describes.
type Translator struct {
	Manager    *typesystem.Manager
	Signatures *ir.SignatureRegistry
	Globals    *globalRegistry

	eventTypeIndex int // -1 until the first try/catch region is translated
}

// New returns a Translator sharing mgr and registry with the rest of the
// compilation.
func New(mgr *typesystem.Manager, registry *ir.SignatureRegistry) *Translator {
	return &Translator{Manager: mgr, Signatures: registry, Globals: newGlobalRegistry(), eventTypeIndex: -1}
}

// UsesExceptions reports whether any translated method registered the
// shared exception event signature, i.e. whether the module needs an
// event section at all.
func (tr *Translator) UsesExceptions() bool { return tr.eventTypeIndex >= 0 }

// eventType lazily interns the shared (externref)->() exception event
// signature, registering it at most once for the whole module.
func (tr *Translator) eventType() int {
	if tr.eventTypeIndex < 0 {
		tr.eventTypeIndex = tr.Manager.InternFunctionType(ir.FunctionType{Params: []ir.ValueType{ir.ValueTypeExternref}})
	}
	return tr.eventTypeIndex
}

// Result is what TranslateMethod hands back: the reconstructed code, its
// source mappings, and the extra scratch locals the translator allocated
// beyond the method's own declared locals (spec.md §4.5 step 3's vtable
// dispatch and the dup opcode both need a place to stash an
// otherwise-unreachable stack value).
type Result struct {
	Code         *ir.InstructionList
	Mappings     []ir.SourceMapping
	ScratchLocals []ir.ValueType
}

// TranslateMethod translates one method's bytecode. class.ConstantPool
// resolves every constant-pool index the method's code references.
func (tr *Translator) TranslateMethod(class *classfile.Class, method *classfile.Method) (*Result, error) {
	t := &translator{
		tr:     tr,
		class:  class,
		method: method,
		pool:   class.ConstantPool,
		sim:    newStackSim(),
	}
	return t.translate()
}

// translator is the per-method working state; translator.go's exported
// Translator is the module-wide shared half of it.
type translator struct {
	tr     *Translator
	class  *classfile.Class
	method *classfile.Method
	pool   classfile.ConstantPool
	sim    *stackSim

	scratchBase  int
	scratchTypes []ir.ValueType
}

func (t *translator) translate() (*Result, error) {
	ops, err := decodeMethod(t.class.Name, t.method.Name, t.method.Code)
	if err != nil {
		return nil, err
	}
	t.scratchBase = maxLocalSlot(t.method) + 1

	markers := markersByOffset(buildExceptionMarkers(t.method.ExceptionHandlers, len(t.method.Code)))
	if len(t.method.ExceptionHandlers) > 0 {
		t.tr.eventType() // registers the shared signature on first use across the whole module
	}

	var linear []cfg.LinearOp
	var mappings []ir.SourceMapping
	lastLine := -2
	var prior *ir.Instruction

	for _, op := range ops {
		t.sim.recordAt(op.Offset)

		if ms := markers[op.Offset]; len(ms) > 0 {
			for _, m := range ms {
				linear = append(linear, cfg.LinearOp{Offset: op.Offset, Next: op.Offset, Kind: cfg.OpPlain, Plain: m})
			}
			delete(markers, op.Offset)
			prior = nil
		}

		if line := lineFor(t.method.LineNumbers, op.Offset); line != lastLine {
			mappings = append(mappings, ir.SourceMapping{CodeOffset: uint32(op.Offset), SourceLine: line, SourceFile: t.class.Name})
			lastLine = line
		}

		ops2, newPrior, err := t.translateOp(op, prior)
		if err != nil {
			return nil, err
		}
		for _, lop := range ops2 {
			lop.Offset = op.Offset
			lop.Next = op.Next
			linear = append(linear, lop)
		}
		prior = newPrior
	}

	// Any marker whose offset never coincided with a decoded instruction —
	// a handler range running to the method's end lands exactly at
	// len(code), past the last real offset — still needs to be spliced in,
	// in ascending offset order.
	if len(markers) > 0 {
		trailing := make([]int, 0, len(markers))
		for off := range markers {
			trailing = append(trailing, off)
		}
		sort.Ints(trailing)
		for _, off := range trailing {
			for _, m := range markers[off] {
				linear = append(linear, cfg.LinearOp{Offset: off, Next: off, Kind: cfg.OpPlain, Plain: m})
			}
		}
	}

	code, err := cfg.Reconstruct(linear, t.resultType)
	if err != nil {
		return nil, err
	}
	return &Result{Code: code, Mappings: mappings, ScratchLocals: t.scratchTypes}, nil
}

// scratch allocates the next free local slot of type typ, beyond the
// method's own declared locals.
func (t *translator) scratch(typ ir.ValueType) uint32 {
	idx := t.scratchBase + len(t.scratchTypes)
	t.scratchTypes = append(t.scratchTypes, typ)
	return uint32(idx)
}

func maxLocalSlot(method *classfile.Method) int {
	max := -1
	for _, lv := range method.LocalVars {
		if lv.Slot > max {
			max = lv.Slot
		}
	}
	ft := parseFunctionType(method.Descriptor)
	if n := len(ft.Params) - 1; n > max {
		max = n
	}
	return max
}

func lineFor(lines []classfile.LineNumberEntry, offset int) int {
	best := -1
	for _, e := range lines {
		if e.StartPC <= offset && e.StartPC >= best {
			best = e.Line
		}
	}
	return best
}

// plain wraps a handful of instructions as OpPlain LinearOps in one
// shot, for the common case where a source opcode lowers to a short
// fixed sequence.
func plain(instrs ...ir.Instruction) []cfg.LinearOp {
	out := make([]cfg.LinearOp, len(instrs))
	for i, ins := range instrs {
		out[i] = cfg.LinearOp{Kind: cfg.OpPlain, Plain: ins}
	}
	return out
}

// localPrefixType maps an iload/istore-family opcode's leading letter to
// its value type — the source bytecode's own type-specific naming
// (spec.md §4.2) makes this a direct lookup rather than a stack scan.
func localPrefixType(name string) ir.ValueType {
	switch name[0] {
	case 'l':
		return ir.ValueTypeI64
	case 'f':
		return ir.ValueTypeF32
	case 'd':
		return ir.ValueTypeF64
	default: // i, a
		return ir.ValueTypeI32
	}
}

func constantValueType(kind classfile.ConstantKind) ir.ValueType {
	switch kind {
	case classfile.ConstantLong:
		return ir.ValueTypeI64
	case classfile.ConstantFloat:
		return ir.ValueTypeF32
	case classfile.ConstantDouble:
		return ir.ValueTypeF64
	default: // Integer, String, ClassRef
		return ir.ValueTypeI32
	}
}

func instanceSize(st *ir.StructType) int {
	size := headerSize
	for _, f := range st.Fields {
		if f.Type == ir.ValueTypeI64 || f.Type == ir.ValueTypeF64 {
			size += 8
		} else {
			size += 4
		}
	}
	return size
}

// allocFunction is the synthetic identity of the runtime allocator every
// `new` opcode calls. The driver recognises this exact FunctionName and
// wires it as an import (module "classwasm_rt", name "alloc") rather
// than a defined function, since no retrieved reference implements a
// bump allocator in translated code itself.
var allocFunction = ir.FunctionName{ClassName: "$runtime", MethodName: "alloc", Descriptor: "(I)I"}

// translateOp lowers one decoded source instruction to zero or more
// LinearOps, returning the instruction to use as foldConstantConversion's
// "prior" on the next call (nil resets the fold window — any opcode that
// isn't a plain, single, fall-through instruction clears it).
func (t *translator) translateOp(op decodedOp, prior *ir.Instruction) ([]cfg.LinearOp, *ir.Instruction, error) {
	switch op.Name {
	case "nop":
		return nil, nil, nil

	case "aconst_null":
		i := ir.ConstI32Instr(0, op.Offset, -1)
		t.sim.push(ir.ValueTypeI32)
		return plain(i), &i, nil

	case "iconst_m1", "iconst_0", "iconst_1":
		v := map[string]int32{"iconst_m1": -1, "iconst_0": 0, "iconst_1": 1}[op.Name]
		i := ir.ConstI32Instr(v, op.Offset, -1)
		t.sim.push(ir.ValueTypeI32)
		return plain(i), &i, nil

	case "bipush", "sipush":
		i := ir.ConstI32Instr(op.IntOperand, op.Offset, -1)
		t.sim.push(ir.ValueTypeI32)
		return plain(i), &i, nil

	case "ldc":
		return t.buildLdc(op)

	case "iload", "lload", "fload", "dload", "aload":
		typ := localPrefixType(op.Name)
		i := ir.Instruction{Kind: ir.KindLocal, LocalOp: ir.LocalGet, VarIndex: uint32(op.LocalIndex), VarType: typ, Offset: op.Offset}
		t.sim.push(typ)
		return plain(i), &i, nil

	case "istore", "lstore", "fstore", "dstore", "astore":
		t.sim.pop()
		i := ir.Instruction{Kind: ir.KindLocal, LocalOp: ir.LocalSet, VarIndex: uint32(op.LocalIndex), VarType: localPrefixType(op.Name), Offset: op.Offset}
		return plain(i), nil, nil

	case "pop":
		t.sim.pop()
		return plain(ir.Instruction{Kind: ir.KindBlock, BlockOp: ir.BlockDrop, Offset: op.Offset}), nil, nil

	case "dup":
		v := t.sim.pop()
		s := t.scratch(ir.ValueTypeI32)
		t.sim.push(v)
		t.sim.push(v)
		return plain(
			ir.Instruction{Kind: ir.KindLocal, LocalOp: ir.LocalSet, VarIndex: s, VarType: ir.ValueTypeI32, Offset: op.Offset},
			ir.Instruction{Kind: ir.KindLocal, LocalOp: ir.LocalGet, VarIndex: s, VarType: ir.ValueTypeI32, Offset: op.Offset},
			ir.Instruction{Kind: ir.KindLocal, LocalOp: ir.LocalGet, VarIndex: s, VarType: ir.ValueTypeI32, Offset: op.Offset},
		), nil, nil

	case "iadd", "ladd", "fadd", "dadd", "isub", "imul", "idiv", "irem", "frem":
		return t.buildArithmetic(op)

	case "ineg":
		t.sim.pop()
		t.sim.push(ir.ValueTypeI32)
		neg := ir.ConstI32Instr(-1, op.Offset, -1)
		mul := ir.NumericI32("mul", op.Offset, -1)
		return plain(neg, mul), nil, nil

	case "i2l", "i2f", "i2d", "l2i", "f2i", "d2i", "i2b", "i2c", "i2s":
		return t.buildConvertOp(op, prior)

	case "getstatic":
		return t.buildStaticField(op, ir.GlobalGet)
	case "putstatic":
		return t.buildStaticField(op, ir.GlobalSet)
	case "getfield":
		return t.buildInstanceField(op, ir.MemoryLoad)
	case "putfield":
		return t.buildInstanceField(op, ir.MemoryStore)

	case "invokespecial", "invokestatic":
		return t.buildDirectCall(op)
	case "invokevirtual", "invokeinterface":
		return t.buildVirtualCall(op)

	case "new":
		return t.buildNew(op)
	case "newarray":
		return t.buildNewArray(op, jvmAtype(op.IntOperand))
	case "anewarray":
		t.sim.pop()
		t.sim.push(ir.ValueTypeI32)
		t.tr.Manager.RegisterArray(ir.ValueTypeI32)
		return plain(ir.Instruction{Kind: ir.KindArray, ArrayOp: ir.ArrayNew, ArrayElement: ir.ValueTypeI32, Offset: op.Offset}), nil, nil
	case "arraylength":
		t.sim.pop()
		t.sim.push(ir.ValueTypeI32)
		return plain(ir.Instruction{Kind: ir.KindArray, ArrayOp: ir.ArrayLen, Offset: op.Offset}), nil, nil

	case "checkcast":
		// No runtime type descriptors are materialised for object
		// instances, so a cast cannot fail at this layer; the value
		// passes through unchanged.
		return nil, prior, nil
	case "instanceof":
		t.sim.pop()
		t.sim.push(ir.ValueTypeI32)
		i := ir.ConstI32Instr(1, op.Offset, -1)
		return plain(i), &i, nil

	case "athrow":
		t.sim.pop()
		return plain(ir.Instruction{Kind: ir.KindBlock, BlockOp: ir.BlockThrow, Offset: op.Offset}), nil, nil

	case "monitorenter", "monitorexit":
		t.sim.pop()
		return plain(ir.Instruction{Kind: ir.KindBlock, BlockOp: ir.BlockDrop, Offset: op.Offset}), nil, nil

	case "ifeq", "ifne":
		t.sim.pop()
		return []cfg.LinearOp{{Kind: cfg.OpBranchConditional, Target: op.BranchTarget}}, nil, nil
	case "goto":
		return []cfg.LinearOp{{Kind: cfg.OpBranchUnconditional, Target: op.BranchTarget}}, nil, nil
	case "tableswitch":
		return t.buildTableSwitch(op), nil, nil
	case "lookupswitch":
		return []cfg.LinearOp{{Kind: cfg.OpLookupSwitch, CaseTargets: op.CaseOffsets, CaseValues: op.CaseValues, DefaultTarget: op.DefaultOffset}}, nil, nil

	case "ireturn", "areturn", "return":
		rt := t.returnType()
		if op.Name != "return" {
			t.sim.pop()
		}
		return []cfg.LinearOp{{Kind: cfg.OpReturn, ReturnType: rt}}, nil, nil

	default:
		return nil, nil, errs.New(errs.KindInput, "translator has no lowering for opcode %q", op.Name).
			WithLocation(t.class.Name, t.method.Name, -1)
	}
}

func (t *translator) returnType() ir.ValueType {
	ft := parseFunctionType(t.method.Descriptor)
	if len(ft.Results) == 0 {
		return ir.ValueTypeVoid
	}
	return ft.Results[0]
}

func (t *translator) buildLdc(op decodedOp) ([]cfg.LinearOp, *ir.Instruction, error) {
	c, ok := t.pool.Lookup(op.PoolIndex)
	if !ok {
		return nil, nil, errs.New(errs.KindInput, "ldc references missing constant-pool entry %d", op.PoolIndex).
			WithLocation(t.class.Name, t.method.Name, -1)
	}
	typ := constantValueType(c.Kind)
	var i ir.Instruction
	switch c.Kind {
	case classfile.ConstantLong:
		i = ir.Instruction{Kind: ir.KindConst, ConstType: ir.ValueTypeI64, ConstI64: c.Long, Offset: op.Offset}
	case classfile.ConstantFloat:
		i = ir.Instruction{Kind: ir.KindConst, ConstType: ir.ValueTypeF32, ConstF32: c.Float, Offset: op.Offset}
	case classfile.ConstantDouble:
		i = ir.Instruction{Kind: ir.KindConst, ConstType: ir.ValueTypeF64, ConstF64: c.Double, Offset: op.Offset}
	case classfile.ConstantInteger:
		i = ir.ConstI32Instr(c.Integer, op.Offset, -1)
	default: // String, ClassRef: interned as an opaque i32 handle elsewhere in the pipeline.
		i = ir.ConstI32Instr(0, op.Offset, -1)
	}
	t.sim.push(typ)
	return plain(i), &i, nil
}

// arithSuffix maps a source arithmetic mnemonic's family suffix to the
// Wasm numeric opcode suffix; idiv/irem are signed since the source
// language has no unsigned integer arithmetic.
var arithSuffix = map[string]string{"add": "add", "sub": "sub", "mul": "mul", "div": "div_s", "rem": "rem_s"}

func (t *translator) buildArithmetic(op decodedOp) ([]cfg.LinearOp, *ir.Instruction, error) {
	typ := localPrefixType(op.Name[:1])
	if op.Name == "frem" {
		// Wasm has no floating remainder primitive; reject at compile
		// time rather than emit something that traps or misbehaves.
		line := lineFor(t.method.LineNumbers, op.Offset)
		return nil, nil, errs.New(errs.KindInput, "unsupported primitive: floating remainder (frem)").
			WithLocation(t.class.Name, t.method.Name, line)
	}
	t.sim.pop()
	t.sim.pop()
	t.sim.push(typ)
	i := ir.Instruction{Kind: ir.KindNumeric, NumericType: typ, NumericOp: arithSuffix[op.Name[1:]], Offset: op.Offset}
	return plain(i), nil, nil
}

func (t *translator) buildConvertOp(op decodedOp, prior *ir.Instruction) ([]cfg.LinearOp, *ir.Instruction, error) {
	from := convertSourceType(op.Name)
	to := convertTargetType(op.Name)
	t.sim.pop()
	t.sim.push(pickConvertPush(op.Name, from, to))
	instr, ok := t.buildConversion(op, prior)
	if !ok {
		return nil, nil, nil
	}
	return plain(instr), &instr, nil
}

func pickConvertPush(name string, from, to ir.ValueType) ir.ValueType {
	switch name {
	case "i2b", "i2c", "i2s":
		return ir.ValueTypeI32
	default:
		return to
	}
}

func convertSourceType(name string) ir.ValueType {
	if r, ok := convertTable[name]; ok {
		return r.from
	}
	return ir.ValueTypeI32
}

func convertTargetType(name string) ir.ValueType {
	if r, ok := convertTable[name]; ok {
		return r.to
	}
	return 0
}

func (t *translator) buildStaticField(op decodedOp, which ir.GlobalOp) ([]cfg.LinearOp, *ir.Instruction, error) {
	owner, name, typ, ok := resolveFieldRef(t.pool, op.PoolIndex)
	if !ok {
		return nil, nil, errs.New(errs.KindInput, "getstatic/putstatic references a non-field constant-pool entry %d", op.PoolIndex).
			WithLocation(t.class.Name, t.method.Name, -1)
	}
	idx := t.tr.Globals.resolve(owner, name, typ)
	if which == ir.GlobalSet {
		t.sim.pop()
	} else {
		t.sim.push(typ)
	}
	i := ir.Instruction{Kind: ir.KindGlobal, GlobalOp: which, VarIndex: uint32(idx), VarType: typ, Offset: op.Offset}
	return plain(i), nil, nil
}

func (t *translator) buildInstanceField(op decodedOp, which ir.MemoryOp) ([]cfg.LinearOp, *ir.Instruction, error) {
	owner, name, typ, ok := resolveFieldRef(t.pool, op.PoolIndex)
	if !ok {
		return nil, nil, errs.New(errs.KindInput, "getfield/putfield references a non-field constant-pool entry %d", op.PoolIndex).
			WithLocation(t.class.Name, t.method.Name, -1)
	}
	st, err := t.tr.Manager.MustClass(owner, t.method.Name, -1)
	if err != nil {
		return nil, nil, err
	}
	off, found := st.FieldOffset(name)
	if !found {
		return nil, nil, errs.New(errs.KindInput, "class %q has no field %q", owner, name).
			WithLocation(t.class.Name, t.method.Name, -1)
	}
	if which == ir.MemoryStore {
		t.sim.pop() // value
		t.sim.pop() // objref
	} else {
		t.sim.pop() // objref
		t.sim.push(typ)
	}
	i := ir.Instruction{Kind: ir.KindMemory, MemoryOp: which, MemoryType: typ, MemoryOffset: uint32(off + headerSize), MemoryAlign: alignFor(typ), Offset: op.Offset}
	return plain(i), nil, nil
}

func alignFor(t ir.ValueType) uint32 {
	if t == ir.ValueTypeI64 || t == ir.ValueTypeF64 {
		return 3
	}
	return 2
}

func (t *translator) buildDirectCall(op decodedOp) ([]cfg.LinearOp, *ir.Instruction, error) {
	fn, ft, ok := resolveMethodRef(t.pool, op.PoolIndex, t.tr.Signatures)
	if !ok {
		return nil, nil, errs.New(errs.KindInput, "invokespecial/invokestatic references a non-method constant-pool entry %d", op.PoolIndex).
			WithLocation(t.class.Name, t.method.Name, -1)
	}
	n := len(ft.Params)
	if op.Name == "invokespecial" {
		n++ // receiver
	}
	for i := 0; i < n; i++ {
		t.sim.pop()
	}
	if len(ft.Results) > 0 {
		t.sim.push(ft.Results[0])
	}
	return plain(ir.Instruction{Kind: ir.KindCall, CallTarget: fn, Offset: op.Offset}), nil, nil
}

// buildVirtualCall lowers invokevirtual/invokeinterface to indirect
// dispatch (spec.md §4.5 step 3). The receiver and declared arguments are
// already on the stack in call order, but call_indirect needs the table
// index on top — so every operand is first stashed into a scratch local
// and pushed back in its original order, and the function index is then
// loaded from the receiver's vtable slot on top of them.
func (t *translator) buildVirtualCall(op decodedOp) ([]cfg.LinearOp, *ir.Instruction, error) {
	fn, ft, ok := resolveMethodRef(t.pool, op.PoolIndex, t.tr.Signatures)
	if !ok {
		return nil, nil, errs.New(errs.KindInput, "invokevirtual/invokeinterface references a non-method constant-pool entry %d", op.PoolIndex).
			WithLocation(t.class.Name, t.method.Name, -1)
	}
	st, err := t.tr.Manager.MustClass(fn.ClassName, t.method.Name, -1)
	if err != nil {
		return nil, nil, err
	}
	slot, ok := st.SlotOf(fn.SignatureName())
	if !ok {
		return nil, nil, errs.New(errs.KindInput, "class %q has no vtable slot for %q", fn.ClassName, fn.MethodName).
			WithLocation(t.class.Name, t.method.Name, -1)
	}

	argScratch := make([]uint32, len(ft.Params))
	var out []ir.Instruction
	for i := len(ft.Params) - 1; i >= 0; i-- {
		t.sim.pop()
		s := t.scratch(ft.Params[i])
		argScratch[i] = s
		out = append(out, ir.Instruction{Kind: ir.KindLocal, LocalOp: ir.LocalSet, VarIndex: s, VarType: ft.Params[i], Offset: op.Offset})
	}
	t.sim.pop() // receiver
	recv := t.scratch(ir.ValueTypeI32)
	out = append(out, ir.Instruction{Kind: ir.KindLocal, LocalOp: ir.LocalSet, VarIndex: recv, VarType: ir.ValueTypeI32, Offset: op.Offset})

	out = append(out, ir.Instruction{Kind: ir.KindLocal, LocalOp: ir.LocalGet, VarIndex: recv, VarType: ir.ValueTypeI32, Offset: op.Offset})
	for i, s := range argScratch {
		out = append(out, ir.Instruction{Kind: ir.KindLocal, LocalOp: ir.LocalGet, VarIndex: s, VarType: ft.Params[i], Offset: op.Offset})
	}

	out = append(out,
		ir.Instruction{Kind: ir.KindLocal, LocalOp: ir.LocalGet, VarIndex: recv, VarType: ir.ValueTypeI32, Offset: op.Offset},
		ir.Instruction{Kind: ir.KindMemory, MemoryOp: ir.MemoryLoad, MemoryType: ir.ValueTypeI32, MemoryOffset: 0, MemoryAlign: 2, Offset: op.Offset},
		ir.ConstI32Instr(int32(slot*4), op.Offset, -1),
		ir.Instruction{Kind: ir.KindNumeric, NumericType: ir.ValueTypeI32, NumericOp: "add", Offset: op.Offset},
		ir.Instruction{Kind: ir.KindMemory, MemoryOp: ir.MemoryLoad, MemoryType: ir.ValueTypeI32, MemoryOffset: 0, MemoryAlign: 2, Offset: op.Offset},
	)

	callType := ir.FunctionType{Params: append([]ir.ValueType{ir.ValueTypeI32}, ft.Params...), Results: ft.Results}
	out = append(out, ir.Instruction{Kind: ir.KindCallIndirect, CallType: callType, Offset: op.Offset})

	if len(ft.Results) > 0 {
		t.sim.push(ft.Results[0])
	}
	return plain(out...), nil, nil
}

func (t *translator) buildNew(op decodedOp) ([]cfg.LinearOp, *ir.Instruction, error) {
	c, ok := t.pool.Lookup(op.PoolIndex)
	if !ok || c.Kind != classfile.ConstantClassRef {
		return nil, nil, errs.New(errs.KindInput, "new references a non-class constant-pool entry %d", op.PoolIndex).
			WithLocation(t.class.Name, t.method.Name, -1)
	}
	st, err := t.tr.Manager.MustClass(c.UTF8, t.method.Name, -1)
	if err != nil {
		return nil, nil, err
	}
	size := instanceSize(st)
	addr := t.scratch(ir.ValueTypeI32)

	out := []ir.Instruction{
		ir.ConstI32Instr(int32(size), op.Offset, -1),
		{Kind: ir.KindCall, CallTarget: allocFunction, Offset: op.Offset},
		{Kind: ir.KindLocal, LocalOp: ir.LocalSet, VarIndex: addr, VarType: ir.ValueTypeI32, Offset: op.Offset},
		{Kind: ir.KindLocal, LocalOp: ir.LocalGet, VarIndex: addr, VarType: ir.ValueTypeI32, Offset: op.Offset},
		ir.ConstI32Instr(int32(st.VTableOffset), op.Offset, -1),
		{Kind: ir.KindMemory, MemoryOp: ir.MemoryStore, MemoryType: ir.ValueTypeI32, MemoryOffset: 0, MemoryAlign: 2, Offset: op.Offset},
		{Kind: ir.KindLocal, LocalOp: ir.LocalGet, VarIndex: addr, VarType: ir.ValueTypeI32, Offset: op.Offset},
	}
	t.sim.push(ir.ValueTypeI32)
	return plain(out...), nil, nil
}

func jvmAtype(code int32) ir.ValueType {
	switch code {
	case 6:
		return ir.ValueTypeF32
	case 7:
		return ir.ValueTypeF64
	case 11:
		return ir.ValueTypeI64
	default: // boolean, char, float, byte, short, int all flatten to i32 storage here
		return ir.ValueTypeI32
	}
}

func (t *translator) buildNewArray(op decodedOp, elem ir.ValueType) ([]cfg.LinearOp, *ir.Instruction, error) {
	t.sim.pop()
	t.sim.push(ir.ValueTypeI32)
	t.tr.Manager.RegisterArray(elem)
	return plain(ir.Instruction{Kind: ir.KindArray, ArrayOp: ir.ArrayNew, ArrayElement: elem, Offset: op.Offset}), nil, nil
}

func (t *translator) buildTableSwitch(op decodedOp) []cfg.LinearOp {
	targets := make([]int, len(op.CaseOffsets))
	values := make([]int32, len(op.CaseOffsets))
	for i, off := range op.CaseOffsets {
		targets[i] = off
		values[i] = op.Low + int32(i)
	}
	return []cfg.LinearOp{{Kind: cfg.OpTableSwitch, CaseTargets: targets, CaseValues: values, DefaultTarget: op.DefaultOffset}}
}


package opcodes

// Wasm is one entry of the Wasm opcode table. Prefix opcodes (GC,
// exception-handling, saturating conversions) carry a non-zero Prefix
// byte; Code is then the second byte of the two-byte sequence, emitted
// after the prefix byte as spec.md §4.2 describes ("a prefix encoding is
// one 16-bit constant whose high byte is written first").
type Wasm struct {
	Prefix byte
	Code   byte
	Name   string
}

const (
	// PrefixNone marks a plain one-byte opcode.
	PrefixNone = 0x00
	// PrefixSaturatingConv is the 0xfc prefix for sign-extension and
	// saturating float-to-int truncation opcodes.
	PrefixSaturatingConv = 0xfc
	// PrefixVector is the 0xfd SIMD prefix.
	PrefixVector = 0xfd
	// PrefixGC is the 0xfb GC-experimental prefix used for struct/array ops.
	PrefixGC = 0xfb
)

// control-flow and structural opcodes.
const (
	OpUnreachable = 0x00
	OpNop         = 0x01
	OpBlock       = 0x02
	OpLoop        = 0x03
	OpIf          = 0x04
	OpElse        = 0x05
	OpTry         = 0x06
	OpCatch       = 0x07
	OpThrow       = 0x08
	OpRethrow     = 0x09
	OpBrOnExn     = 0x0a
	OpEnd         = 0x0b
	OpBr          = 0x0c
	OpBrIf        = 0x0d
	OpBrTable     = 0x0e
	OpReturn      = 0x0f
	OpCall        = 0x10
	OpCallIndirect = 0x11
	OpDrop        = 0x1a
	OpSelect      = 0x1b
)

// variable-access opcodes.
const (
	OpLocalGet  = 0x20
	OpLocalSet  = 0x21
	OpLocalTee  = 0x22
	OpGlobalGet = 0x23
	OpGlobalSet = 0x24
)

// memory opcodes (load/store families continue sequentially per the core spec).
const (
	OpI32Load    = 0x28
	OpI64Load    = 0x29
	OpF32Load    = 0x2a
	OpF64Load    = 0x2b
	OpI32Store   = 0x36
	OpI64Store   = 0x37
	OpF32Store   = 0x38
	OpF64Store   = 0x39
	OpMemorySize = 0x3f
	OpMemoryGrow = 0x40
)

// const opcodes.
const (
	OpI32Const = 0x41
	OpI64Const = 0x42
	OpF32Const = 0x43
	OpF64Const = 0x44
)

// numeric family base opcodes; the translator picks the typed member
// (i32/i64/f32/f64) of each family from the stack-typing pass (§4.5).
const (
	OpI32Eqz  = 0x45
	OpI32Eq   = 0x46
	OpI32Add  = 0x6a
	OpI32Sub  = 0x6b
	OpI32Mul  = 0x6c
	OpI32DivS = 0x6d
	OpI32RemS = 0x6f
	OpI64Add  = 0x7c
	OpF32Add  = 0x92
	OpF64Add  = 0xa0

	// conversion opcodes (§4.5.2).
	OpI32WrapI64        = 0xa7
	OpI32TruncF32S      = 0xa8
	OpI64ExtendI32S     = 0xac
	OpI64TruncF32S      = 0xae
	OpF32ConvertI32S    = 0xb2
	OpF32DemoteF64      = 0xb6
	OpF64ConvertI32S    = 0xb7
	OpF64PromoteF32     = 0xbb
	OpI32ReinterpretF32 = 0xbc
	OpF32ReinterpretI32 = 0xbe
)

// reference/table opcodes used by call_indirect and vtable dispatch (§9).
const (
	OpRefNull   = 0xd0
	OpRefIsNull = 0xd1
	OpRefFunc   = 0xd2
)

// WasmTable enumerates the subset of Wasm opcodes this compiler emits.
// The key is (Prefix<<8 | Code) so that prefixed and bare opcodes share
// one lookup table without collision.
var WasmTable = map[uint16]Wasm{
	key(PrefixNone, OpUnreachable):  {PrefixNone, OpUnreachable, "unreachable"},
	key(PrefixNone, OpBlock):        {PrefixNone, OpBlock, "block"},
	key(PrefixNone, OpLoop):         {PrefixNone, OpLoop, "loop"},
	key(PrefixNone, OpIf):           {PrefixNone, OpIf, "if"},
	key(PrefixNone, OpElse):         {PrefixNone, OpElse, "else"},
	key(PrefixNone, OpTry):          {PrefixNone, OpTry, "try"},
	key(PrefixNone, OpCatch):        {PrefixNone, OpCatch, "catch"},
	key(PrefixNone, OpThrow):        {PrefixNone, OpThrow, "throw"},
	key(PrefixNone, OpRethrow):      {PrefixNone, OpRethrow, "rethrow"},
	key(PrefixNone, OpBrOnExn):      {PrefixNone, OpBrOnExn, "br_on_exn"},
	key(PrefixNone, OpEnd):          {PrefixNone, OpEnd, "end"},
	key(PrefixNone, OpBr):           {PrefixNone, OpBr, "br"},
	key(PrefixNone, OpBrIf):         {PrefixNone, OpBrIf, "br_if"},
	key(PrefixNone, OpBrTable):      {PrefixNone, OpBrTable, "br_table"},
	key(PrefixNone, OpReturn):       {PrefixNone, OpReturn, "return"},
	key(PrefixNone, OpCall):         {PrefixNone, OpCall, "call"},
	key(PrefixNone, OpCallIndirect): {PrefixNone, OpCallIndirect, "call_indirect"},
	key(PrefixNone, OpDrop):         {PrefixNone, OpDrop, "drop"},
	key(PrefixNone, OpSelect):       {PrefixNone, OpSelect, "select"},
	key(PrefixNone, OpLocalGet):     {PrefixNone, OpLocalGet, "local.get"},
	key(PrefixNone, OpLocalSet):     {PrefixNone, OpLocalSet, "local.set"},
	key(PrefixNone, OpLocalTee):     {PrefixNone, OpLocalTee, "local.tee"},
	key(PrefixNone, OpGlobalGet):    {PrefixNone, OpGlobalGet, "global.get"},
	key(PrefixNone, OpGlobalSet):    {PrefixNone, OpGlobalSet, "global.set"},
	key(PrefixNone, OpI32Load):      {PrefixNone, OpI32Load, "i32.load"},
	key(PrefixNone, OpI64Load):      {PrefixNone, OpI64Load, "i64.load"},
	key(PrefixNone, OpF32Load):      {PrefixNone, OpF32Load, "f32.load"},
	key(PrefixNone, OpF64Load):      {PrefixNone, OpF64Load, "f64.load"},
	key(PrefixNone, OpI32Store):     {PrefixNone, OpI32Store, "i32.store"},
	key(PrefixNone, OpI64Store):     {PrefixNone, OpI64Store, "i64.store"},
	key(PrefixNone, OpF32Store):     {PrefixNone, OpF32Store, "f32.store"},
	key(PrefixNone, OpF64Store):     {PrefixNone, OpF64Store, "f64.store"},
	key(PrefixNone, OpMemorySize):   {PrefixNone, OpMemorySize, "memory.size"},
	key(PrefixNone, OpMemoryGrow):   {PrefixNone, OpMemoryGrow, "memory.grow"},
	key(PrefixNone, OpI32Const):     {PrefixNone, OpI32Const, "i32.const"},
	key(PrefixNone, OpI64Const):     {PrefixNone, OpI64Const, "i64.const"},
	key(PrefixNone, OpF32Const):     {PrefixNone, OpF32Const, "f32.const"},
	key(PrefixNone, OpF64Const):     {PrefixNone, OpF64Const, "f64.const"},
	key(PrefixNone, OpI32Eqz):       {PrefixNone, OpI32Eqz, "i32.eqz"},
	key(PrefixNone, OpI32Eq):        {PrefixNone, OpI32Eq, "i32.eq"},
	key(PrefixNone, OpI32Add):       {PrefixNone, OpI32Add, "i32.add"},
	key(PrefixNone, OpI32Sub):       {PrefixNone, OpI32Sub, "i32.sub"},
	key(PrefixNone, OpI32Mul):       {PrefixNone, OpI32Mul, "i32.mul"},
	key(PrefixNone, OpI32DivS):      {PrefixNone, OpI32DivS, "i32.div_s"},
	key(PrefixNone, OpI32RemS):      {PrefixNone, OpI32RemS, "i32.rem_s"},
	key(PrefixNone, OpI64Add):       {PrefixNone, OpI64Add, "i64.add"},
	key(PrefixNone, OpF32Add):       {PrefixNone, OpF32Add, "f32.add"},
	key(PrefixNone, OpF64Add):       {PrefixNone, OpF64Add, "f64.add"},
	key(PrefixNone, OpI32WrapI64):        {PrefixNone, OpI32WrapI64, "i32.wrap_i64"},
	key(PrefixNone, OpI32TruncF32S):      {PrefixNone, OpI32TruncF32S, "i32.trunc_f32_s"},
	key(PrefixNone, OpI64ExtendI32S):     {PrefixNone, OpI64ExtendI32S, "i64.extend_i32_s"},
	key(PrefixNone, OpI64TruncF32S):      {PrefixNone, OpI64TruncF32S, "i64.trunc_f32_s"},
	key(PrefixNone, OpF32ConvertI32S):    {PrefixNone, OpF32ConvertI32S, "f32.convert_i32_s"},
	key(PrefixNone, OpF32DemoteF64):      {PrefixNone, OpF32DemoteF64, "f32.demote_f64"},
	key(PrefixNone, OpF64ConvertI32S):    {PrefixNone, OpF64ConvertI32S, "f64.convert_i32_s"},
	key(PrefixNone, OpF64PromoteF32):     {PrefixNone, OpF64PromoteF32, "f64.promote_f32"},
	key(PrefixNone, OpI32ReinterpretF32): {PrefixNone, OpI32ReinterpretF32, "i32.reinterpret_f32"},
	key(PrefixNone, OpF32ReinterpretI32): {PrefixNone, OpF32ReinterpretI32, "f32.reinterpret_i32"},
	key(PrefixNone, OpRefNull):   {PrefixNone, OpRefNull, "ref.null"},
	key(PrefixNone, OpRefIsNull): {PrefixNone, OpRefIsNull, "ref.is_null"},
	key(PrefixNone, OpRefFunc):   {PrefixNone, OpRefFunc, "ref.func"},
	key(PrefixSaturatingConv, 0x00): {PrefixSaturatingConv, 0x00, "i32.trunc_sat_f32_s"},
	key(PrefixSaturatingConv, 0x02): {PrefixSaturatingConv, 0x02, "i32.trunc_sat_f64_s"},
	key(PrefixSaturatingConv, 0x04): {PrefixSaturatingConv, 0x04, "i64.trunc_sat_f32_s"},
	key(PrefixSaturatingConv, 0x06): {PrefixSaturatingConv, 0x06, "i64.trunc_sat_f64_s"},
}

func key(prefix, code byte) uint16 { return uint16(prefix)<<8 | uint16(code) }

// WasmName returns the mnemonic for (prefix, code), or "unknown".
func WasmName(prefix, code byte) string {
	if e, ok := WasmTable[key(prefix, code)]; ok {
		return e.Name
	}
	return "unknown"
}

// Lookup returns the table entry for a bare mnemonic, used by
// internal/sexpr to resolve a tokenized opcode name back to its wire code.
func Lookup(name string) (Wasm, bool) {
	for _, e := range WasmTable {
		if e.Name == name {
			return e, true
		}
	}
	return Wasm{}, false
}

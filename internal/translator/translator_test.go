package translator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmforge/classwasm/internal/classfile"
	"github.com/wasmforge/classwasm/internal/ir"
	"github.com/wasmforge/classwasm/internal/typesystem"
)

func newFixture() (*typesystem.Manager, *Translator) {
	mgr := typesystem.New()
	tr := New(mgr, ir.NewSignatureRegistry())
	return mgr, tr
}

func method(name, descriptor string, code []byte) *classfile.Method {
	return &classfile.Method{Name: name, Descriptor: descriptor, Code: code}
}

func TestTranslateMethodArithmetic(t *testing.T) {
	_, tr := newFixture()
	class := &classfile.Class{Name: "Adder", ConstantPool: classfile.MapConstantPool{}}
	// iload 0; iload 1; iadd; ireturn
	m := method("add", "(II)I", []byte{0x15, 0x00, 0x15, 0x01, 0x60, 0xac})

	res, err := tr.TranslateMethod(class, m)
	require.NoError(t, err)
	require.NotNil(t, res.Code)

	items := res.Code.Items
	require.Len(t, items, 4)
	require.Equal(t, ir.KindLocal, items[0].Kind)
	require.Equal(t, ir.LocalGet, items[0].LocalOp)
	require.Equal(t, uint32(0), items[0].VarIndex)
	require.Equal(t, ir.KindLocal, items[1].Kind)
	require.Equal(t, uint32(1), items[1].VarIndex)
	require.Equal(t, ir.KindNumeric, items[2].Kind)
	require.Equal(t, "add", items[2].NumericOp)
	require.Equal(t, ir.ValueTypeI32, items[2].NumericType)
	require.Equal(t, ir.KindBlock, items[3].Kind)
	require.Equal(t, ir.BlockReturn, items[3].BlockOp)
	require.Empty(t, res.ScratchLocals)
}

func TestTranslateMethodStaticField(t *testing.T) {
	_, tr := newFixture()
	pool := classfile.MapConstantPool{
		1: {Kind: classfile.ConstantFieldRef, OwnerClass: "Counter", MemberName: "total", Descriptor: "I"},
	}
	class := &classfile.Class{Name: "Counter", ConstantPool: pool}
	// iload 0; putstatic #1; getstatic #1; ireturn
	m := method("bump", "(I)I", []byte{
		0x15, 0x00,
		0xb3, 0x00, 0x01,
		0xb2, 0x00, 0x01,
		0xac,
	})

	res, err := tr.TranslateMethod(class, m)
	require.NoError(t, err)

	items := res.Code.Items
	require.Len(t, items, 4)
	require.Equal(t, ir.KindGlobal, items[1].Kind)
	require.Equal(t, ir.GlobalSet, items[1].GlobalOp)
	require.Equal(t, ir.KindGlobal, items[2].Kind)
	require.Equal(t, ir.GlobalGet, items[2].GlobalOp)
	require.Equal(t, items[1].VarIndex, items[2].VarIndex)

	globals := tr.Globals.Globals()
	require.Len(t, globals, 1)
	require.Equal(t, ir.ValueTypeI32, globals[0].Type)
}

func TestTranslateMethodInstanceField(t *testing.T) {
	mgr, tr := newFixture()
	mgr.RegisterClass("Point", "", []ir.NamedStorageType{
		{Name: "x", Type: ir.ValueTypeI32},
		{Name: "y", Type: ir.ValueTypeI32},
	}, nil)

	pool := classfile.MapConstantPool{
		1: {Kind: classfile.ConstantFieldRef, OwnerClass: "Point", MemberName: "y", Descriptor: "I"},
	}
	class := &classfile.Class{Name: "Point", ConstantPool: pool}
	// aload 0 (this); iload 1 (value); putfield #1; aload 0; getfield #1; ireturn
	m := method("setY", "(I)I", []byte{
		0x19, 0x00,
		0x15, 0x01,
		0xb5, 0x00, 0x01,
		0x19, 0x00,
		0xb4, 0x00, 0x01,
		0xac,
	})

	res, err := tr.TranslateMethod(class, m)
	require.NoError(t, err)

	items := res.Code.Items
	require.Len(t, items, 6)
	store := items[2]
	require.Equal(t, ir.KindMemory, store.Kind)
	require.Equal(t, ir.MemoryStore, store.MemoryOp)
	require.Equal(t, uint32(4+headerSize), store.MemoryOffset) // "y" is the second i32 field

	load := items[4]
	require.Equal(t, ir.KindMemory, load.Kind)
	require.Equal(t, ir.MemoryLoad, load.MemoryOp)
	require.Equal(t, store.MemoryOffset, load.MemoryOffset)
}

func TestTranslateMethodDirectCall(t *testing.T) {
	_, tr := newFixture()
	pool := classfile.MapConstantPool{
		1: {Kind: classfile.ConstantMethodRef, OwnerClass: "Math", MemberName: "square", Descriptor: "(I)I"},
	}
	class := &classfile.Class{Name: "Caller", ConstantPool: pool}
	// iload 0; invokestatic #1; ireturn
	m := method("callSquare", "(I)I", []byte{0x15, 0x00, 0xb8, 0x00, 0x01, 0xac})

	res, err := tr.TranslateMethod(class, m)
	require.NoError(t, err)

	items := res.Code.Items
	require.Len(t, items, 3)
	require.Equal(t, ir.KindCall, items[1].Kind)
	require.Equal(t, "Math", items[1].CallTarget.ClassName)
	require.Equal(t, "square", items[1].CallTarget.MethodName)
}

func TestTranslateMethodVirtualCall(t *testing.T) {
	mgr, tr := newFixture()
	st := mgr.RegisterClass("Shape", "", nil, nil)
	areaFn := ir.FunctionName{ClassName: "Shape", MethodName: "area", Descriptor: "()I"}
	mgr.RegisterVirtualMethod("Shape", areaFn.MethodName+areaFn.Descriptor, areaFn)
	mgr.AssignVTableOffset("Shape", 4)
	require.GreaterOrEqual(t, st.VTableOffset, 0)

	pool := classfile.MapConstantPool{
		1: {Kind: classfile.ConstantMethodRef, OwnerClass: "Shape", MemberName: "area", Descriptor: "()I"},
	}
	class := &classfile.Class{Name: "Caller", ConstantPool: pool}
	// aload 0 (receiver); invokevirtual #1; ireturn
	m := method("callArea", "(I)I", []byte{0x19, 0x00, 0xb6, 0x00, 0x01, 0xac})

	res, err := tr.TranslateMethod(class, m)
	require.NoError(t, err)
	require.NotEmpty(t, res.ScratchLocals)

	items := res.Code.Items
	// aload, [set-receiver, get-receiver, get-receiver, load-vtable-ptr,
	// const-slot, add, load-fn-index], call_indirect, return
	var sawCallIndirect bool
	for _, ins := range items {
		if ins.Kind == ir.KindCallIndirect {
			sawCallIndirect = true
			require.Equal(t, []ir.ValueType{ir.ValueTypeI32}, ins.CallType.Params)
			require.Equal(t, []ir.ValueType{ir.ValueTypeI32}, ins.CallType.Results)
		}
	}
	require.True(t, sawCallIndirect)
}

func TestTranslateMethodNew(t *testing.T) {
	mgr, tr := newFixture()
	st := mgr.RegisterClass("Point", "", []ir.NamedStorageType{
		{Name: "x", Type: ir.ValueTypeI32},
		{Name: "y", Type: ir.ValueTypeI32},
	}, nil)
	mgr.AssignVTableOffset("Point", 4)

	pool := classfile.MapConstantPool{
		1: {Kind: classfile.ConstantClassRef, UTF8: "Point"},
	}
	class := &classfile.Class{Name: "Point", ConstantPool: pool}
	// new #1; areturn
	m := method("make", "()LPoint;", []byte{0xbb, 0x00, 0x01, 0xb0})

	res, err := tr.TranslateMethod(class, m)
	require.NoError(t, err)
	require.Len(t, res.ScratchLocals, 1)

	items := res.Code.Items
	var sawAlloc, sawStore bool
	for _, ins := range items {
		if ins.Kind == ir.KindCall && ins.CallTarget == allocFunction {
			sawAlloc = true
		}
		if ins.Kind == ir.KindMemory && ins.MemoryOp == ir.MemoryStore && ins.MemoryOffset == 0 {
			sawStore = true
		}
	}
	require.True(t, sawAlloc)
	require.True(t, sawStore)
	require.Equal(t, 0, st.VTableOffset)
}

func TestTranslateMethodIfElseMerge(t *testing.T) {
	_, tr := newFixture()
	class := &classfile.Class{Name: "Chooser", ConstantPool: classfile.MapConstantPool{}}
	// iload 0; ifeq L1; iconst_1; goto L2; L1: iconst_0; L2: ireturn
	code := []byte{
		0x15, 0x00, // 0: iload 0
		0x99, 0x00, 0x06, // 2: ifeq +6 -> 8
		0x04,       // 5: iconst_1
		0xa7, 0x00, 0x03, // 6: goto +3 -> 9
		0x03, // 8: iconst_0
		0xac, // 9: ireturn
	}
	m := method("choose", "(I)I", code)

	res, err := tr.TranslateMethod(class, m)
	require.NoError(t, err)
	require.NotNil(t, res.Code)
	require.NotEmpty(t, res.Code.Items)

	var sawIf, sawElse, sawReturn bool
	for _, ins := range res.Code.Items {
		if ins.Kind == ir.KindBlock {
			switch ins.BlockOp {
			case ir.BlockIf:
				sawIf = true
			case ir.BlockElse:
				sawElse = true
			case ir.BlockReturn:
				sawReturn = true
			}
		}
	}
	require.True(t, sawIf)
	require.True(t, sawElse)
	require.True(t, sawReturn)
}

func TestTranslateMethodTryCatch(t *testing.T) {
	_, tr := newFixture()
	class := &classfile.Class{Name: "Risky", ConstantPool: classfile.MapConstantPool{}}
	// 0: iconst_0 (protected body)
	// 1: goto 4 (skip handler on fall-through)
	// 4: iconst_1 (handler body, catch-all)
	// 5: return
	code := []byte{
		0x03,             // 0: iconst_0
		0xa7, 0x00, 0x03, // 1: goto +3 -> 4
		0x04, // 4: iconst_1
		0xb1, // 5: return
	}
	m := method("risky", "()V", code)
	m.ExceptionHandlers = []classfile.ExceptionHandler{
		{StartPC: 0, EndPC: 4, HandlerPC: 4, CatchClass: ""},
	}

	res, err := tr.TranslateMethod(class, m)
	require.NoError(t, err)

	var sawTry, sawCatch bool
	for _, ins := range res.Code.Items {
		if ins.Kind == ir.KindBlock {
			switch ins.BlockOp {
			case ir.BlockTry:
				sawTry = true
			case ir.BlockCatch:
				sawCatch = true
			}
		}
	}
	require.True(t, sawTry)
	require.True(t, sawCatch)
	require.GreaterOrEqual(t, tr.eventType(), 0)
	require.Len(t, tr.Manager.FunctionTypes(), 1)
}

func TestTranslateMethodDupAndIneg(t *testing.T) {
	_, tr := newFixture()
	class := &classfile.Class{Name: "Ops", ConstantPool: classfile.MapConstantPool{}}
	// iload 0; dup; pop; ineg; ireturn
	m := method("negTwice", "(I)I", []byte{0x15, 0x00, 0x59, 0x57, 0x74, 0xac})

	res, err := tr.TranslateMethod(class, m)
	require.NoError(t, err)
	require.Len(t, res.ScratchLocals, 1)

	items := res.Code.Items
	// local.get 0; local.set scratch; local.get scratch; local.get scratch; drop; const(-1); mul; return
	require.True(t, len(items) >= 7)
	require.Equal(t, ir.KindConst, items[len(items)-3].Kind)
	require.Equal(t, int32(-1), items[len(items)-3].ConstI32)
	require.Equal(t, ir.KindNumeric, items[len(items)-2].Kind)
	require.Equal(t, "mul", items[len(items)-2].NumericOp)
}

func TestTranslateMethodUnsupportedOpcode(t *testing.T) {
	_, tr := newFixture()
	class := &classfile.Class{Name: "Bad", ConstantPool: classfile.MapConstantPool{}}
	// 0xca is not present in opcodes.SourceTable
	m := method("bad", "()V", []byte{0xca})

	_, err := tr.TranslateMethod(class, m)
	require.Error(t, err)
}

package driver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmforge/classwasm/internal/classfile"
)

func simpleClass() *classfile.Class {
	pool := classfile.MapConstantPool{}
	return &classfile.Class{
		Name:         "Adder",
		ConstantPool: pool,
		MajorVersion: 52,
		Methods: []classfile.Method{
			{
				Name:        "add",
				Descriptor:  "(II)I",
				AccessFlags: classfile.AccessFlags{Static: true, Public: true},
				Code:        []byte{0x15, 0x00, 0x15, 0x01, 0x60, 0xac},
				Annotations: classfile.MethodAnnotations{Export: true},
			},
		},
	}
}

func TestCompileSimpleModule(t *testing.T) {
	d, err := New(NewOptions())
	require.NoError(t, err)
	defer d.Close()

	out, err := d.Compile(context.Background(), Input{ModuleName: "adder", Classes: []*classfile.Class{simpleClass()}})
	require.NoError(t, err)
	require.NotEmpty(t, out.Wasm)
	require.Contains(t, out.Wat, "(module")
	require.Contains(t, out.SourceMap, `"version":3`)
}

func TestCompileWithCacheReusesEntry(t *testing.T) {
	dbPath := t.TempDir() + "/cache.db"
	d, err := New(NewOptions().WithCache(dbPath))
	require.NoError(t, err)
	defer d.Close()

	class := simpleClass()
	_, err = d.Compile(context.Background(), Input{ModuleName: "adder", Classes: []*classfile.Class{class}})
	require.NoError(t, err)

	// A second compile of the identical bytecode should hit the cache
	// rather than error; the observable contract is just "still
	// succeeds and still produces a function".
	out, err := d.Compile(context.Background(), Input{ModuleName: "adder", Classes: []*classfile.Class{class}})
	require.NoError(t, err)
	require.NotEmpty(t, out.Wasm)
}

func TestCompileRejectsOldClassVersion(t *testing.T) {
	d, err := New(NewOptions())
	require.NoError(t, err)
	defer d.Close()

	class := simpleClass()
	class.MajorVersion = 10
	_, err = d.Compile(context.Background(), Input{ModuleName: "adder", Classes: []*classfile.Class{class}})
	require.Error(t, err)
}

func TestCompileVirtualDispatch(t *testing.T) {
	pool := classfile.MapConstantPool{
		1: {Kind: classfile.ConstantMethodRef, OwnerClass: "Shape", MemberName: "area", Descriptor: "()I"},
	}
	shape := &classfile.Class{
		Name:         "Shape",
		ConstantPool: pool,
		MajorVersion: 52,
		Methods: []classfile.Method{
			{Name: "area", Descriptor: "()I", Code: []byte{0x03, 0xac}},
			{
				Name:        "callArea",
				Descriptor:  "(I)I",
				Code:        []byte{0x19, 0x00, 0xb6, 0x00, 0x01, 0xac},
				Annotations: classfile.MethodAnnotations{Export: true},
			},
		},
	}

	d, err := New(NewOptions())
	require.NoError(t, err)
	defer d.Close()

	out, err := d.Compile(context.Background(), Input{ModuleName: "shape", Classes: []*classfile.Class{shape}})
	require.NoError(t, err)
	require.NotEmpty(t, out.Wasm)
	require.Contains(t, out.Wat, "call_indirect")
}

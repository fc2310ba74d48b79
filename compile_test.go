package classwasm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmforge/classwasm/internal/classfile"
)

func TestCompilePublicAPI(t *testing.T) {
	class := &classfile.Class{
		Name:         "Adder",
		MajorVersion: 52,
		ConstantPool: classfile.MapConstantPool{},
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

	cfg := NewCompilerConfig().WithDebugNames(true).WithExceptionHandling(true)
	out, err := Compile(context.Background(), cfg, "adder", []*classfile.Class{class})
	require.NoError(t, err)
	require.NotEmpty(t, out.Wasm)
	require.Contains(t, out.Wat, "(module")
}

func TestCompilerConfigWithersAreIndependent(t *testing.T) {
	base := NewCompilerConfig()
	withGC := base.WithGC(true)

	require.False(t, base.opts == withGC.opts)
}

package opcodes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSourceName(t *testing.T) {
	require.Equal(t, "invokevirtual", SourceName(0xb6))
	require.Equal(t, "unknown", SourceName(0xfe))
}

func TestWasmNamePrefixed(t *testing.T) {
	require.Equal(t, "i32.add", WasmName(PrefixNone, OpI32Add))
	require.Equal(t, "i32.trunc_sat_f32_s", WasmName(PrefixSaturatingConv, 0x00))
	require.Equal(t, "unknown", WasmName(PrefixNone, 0xfe))
}

func TestLookupRoundTrip(t *testing.T) {
	e, ok := Lookup("local.tee")
	require.True(t, ok)
	require.Equal(t, byte(OpLocalTee), e.Code)

	_, ok = Lookup("not.a.real.opcode")
	require.False(t, ok)
}

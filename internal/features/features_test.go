package features_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmforge/classwasm/internal/features"
)

func TestEnableFromEnvironment(t *testing.T) {
	features.Reset()
	t.Cleanup(features.Reset)

	os.Setenv(features.EnvVarName, "gc,ref_eq,bogus")
	t.Cleanup(func() { os.Unsetenv(features.EnvVarName) })

	features.EnableFromEnvironment()
	require.True(t, features.Have(features.GC))
	require.True(t, features.Have(features.RefEq))
	require.False(t, features.Have(features.SpiderMonkey))
	require.False(t, features.Have("bogus"))
}

func TestEnableIsIdempotent(t *testing.T) {
	features.Reset()
	t.Cleanup(features.Reset)

	features.Enable(features.GC, features.GC)
	features.Enable(features.GC)
	require.Equal(t, []string{features.GC}, features.List())
}

func TestHaveUnsupportedFeature(t *testing.T) {
	features.Reset()
	t.Cleanup(features.Reset)

	features.Enable("not-a-real-feature")
	require.False(t, features.Have("not-a-real-feature"))
}

package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithLocationDoesNotMutateOriginal(t *testing.T) {
	base := New(KindStructural, "irreducible control flow at block %d", 7)
	located := base.WithLocation("com.example.Foo", "bar", 42)

	require.Equal(t, -1, base.SourceLine)
	require.Equal(t, "", base.ClassName)
	require.Equal(t, 42, located.SourceLine)
	require.Equal(t, "com.example.Foo", located.ClassName)
	require.Contains(t, located.Error(), "com.example.Foo.bar:42")
}

func TestWrapPreservesCauseForErrorsAs(t *testing.T) {
	cause := errors.New("disk full")
	we := Wrap(KindIO, cause, "could not write %s", "out.wasm")

	require.ErrorIs(t, we, cause)

	var target *WasmException
	require.True(t, errors.As(we, &target))
	require.Equal(t, KindIO, target.Kind)
}

func TestIsHelper(t *testing.T) {
	err := New(KindSemantic, "abstract method marked Export")
	require.True(t, Is(err, KindSemantic))
	require.False(t, Is(err, KindIO))
	require.False(t, Is(errors.New("plain"), KindIO))
}

package classfile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateVersionAcceptsCurrent(t *testing.T) {
	c := &Class{Name: "Foo", MajorVersion: 61, MinorVersion: 0}
	require.NoError(t, ValidateVersion(c))
}

func TestValidateVersionRejectsTooOld(t *testing.T) {
	c := &Class{Name: "Foo", MajorVersion: 45, MinorVersion: 3}
	err := ValidateVersion(c)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Foo")
}

func TestValidateVersionAcceptsExactMinimum(t *testing.T) {
	c := &Class{Name: "Foo", MajorVersion: MinSupportedMajorVersion, MinorVersion: 0}
	require.NoError(t, ValidateVersion(c))
}

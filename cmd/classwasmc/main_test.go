package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmforge/classwasm/internal/rpcserver"
)

func runMain(t *testing.T, args []string) (exitCode int, stdOut, stdErr string) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	exitCode = doMain(&outBuf, &errBuf, args)
	return exitCode, outBuf.String(), errBuf.String()
}

func TestVersionCommand(t *testing.T) {
	exitCode, stdOut, _ := runMain(t, []string{"version"})
	require.Equal(t, 0, exitCode)
	require.Equal(t, "dev\n", stdOut)
}

func TestCompileCommandWritesWasm(t *testing.T) {
	dir := t.TempDir()
	classesPath := filepath.Join(dir, "classes.json")

	code := []byte{0x15, 0x00, 0x15, 0x01, 0x60, 0xac} // iload 0; iload 1; iadd; ireturn
	wf := wireFile{
		ModuleName: "adder",
		Classes: []rpcserver.ClassInput{
			{
				Name:         "Adder",
				MajorVersion: 52,
				Methods: []rpcserver.MethodInput{
					{
						Name:       "add",
						Descriptor: "(II)I",
						Static:     true,
						CodeBase64: base64.StdEncoding.EncodeToString(code),
						Export:     true,
					},
				},
			},
		},
	}
	data, err := json.Marshal(wf)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(classesPath, data, 0o644))

	outPath := filepath.Join(dir, "out.wasm")
	watPath := filepath.Join(dir, "out.wat")

	exitCode, _, stdErr := runMain(t, []string{"compile", classesPath, "--out", outPath, "--wat", watPath})
	require.Equal(t, 0, exitCode, stdErr)

	wasmBytes, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.NotEmpty(t, wasmBytes)

	watBytes, err := os.ReadFile(watPath)
	require.NoError(t, err)
	require.Contains(t, string(watBytes), "(module")
}

func TestCompileCommandMissingFile(t *testing.T) {
	exitCode, _, stdErr := runMain(t, []string{"compile", "does-not-exist.json"})
	require.Equal(t, 1, exitCode)
	require.NotEmpty(t, stdErr)
}

package driver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/wasmforge/classwasm/internal/classfile"
)

// goldenMethod/goldenClass/goldenFile mirror internal/rpcserver's wire
// shapes just enough to decode a fixture's input.json without driver
// importing rpcserver (which itself imports driver).
type goldenMethod struct {
	Name       string `json:"name"`
	Descriptor string `json:"descriptor"`
	Static     bool   `json:"static"`
	Export     bool   `json:"export"`
	CodeBase64 string `json:"codeBase64"`
}

type goldenClass struct {
	Name         string         `json:"name"`
	MajorVersion int            `json:"majorVersion"`
	Methods      []goldenMethod `json:"methods"`
}

type goldenFile struct {
	ModuleName string        `json:"moduleName"`
	Classes    []goldenClass `json:"classes"`
}

// TestGoldenFixtures drives every testdata/golden/*.txtar archive: each
// holds an input.json class set and an expect.txt list of substrings the
// compiled module's .wat rendering must contain.
func TestGoldenFixtures(t *testing.T) {
	matches, err := filepath.Glob("testdata/golden/*.txtar")
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	for _, path := range matches {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			archive := txtar.Parse(data)

			var input []byte
			var expect []byte
			for _, f := range archive.Files {
				switch f.Name {
				case "input.json":
					input = f.Data
				case "expect.txt":
					expect = f.Data
				}
			}
			require.NotNil(t, input, "fixture missing input.json")
			require.NotNil(t, expect, "fixture missing expect.txt")

			var gf goldenFile
			require.NoError(t, json.Unmarshal(input, &gf))

			classes := make([]*classfile.Class, len(gf.Classes))
			for i, gc := range gf.Classes {
				methods := make([]classfile.Method, len(gc.Methods))
				for j, gm := range gc.Methods {
					code, err := base64.StdEncoding.DecodeString(gm.CodeBase64)
					require.NoError(t, err)
					methods[j] = classfile.Method{
						Name:        gm.Name,
						Descriptor:  gm.Descriptor,
						AccessFlags: classfile.AccessFlags{Static: gm.Static},
						Code:        code,
						Annotations: classfile.MethodAnnotations{Export: gm.Export},
					}
				}
				classes[i] = &classfile.Class{
					Name:         gc.Name,
					MajorVersion: gc.MajorVersion,
					Methods:      methods,
					ConstantPool: classfile.MapConstantPool{},
				}
			}

			d, err := New(NewOptions())
			require.NoError(t, err)
			t.Cleanup(func() { d.Close() })

			out, err := d.Compile(context.Background(), Input{ModuleName: gf.ModuleName, Classes: classes})
			require.NoError(t, err)

			for _, line := range strings.Split(strings.TrimSpace(string(expect)), "\n") {
				if line == "" {
					continue
				}
				require.Contains(t, out.Wat, line)
			}
		})
	}
}

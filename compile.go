package classwasm

import (
	"context"

	"github.com/wasmforge/classwasm/internal/classfile"
	"github.com/wasmforge/classwasm/internal/driver"
)

// CompiledModule is the finished output of one Compile call.
type CompiledModule struct {
	// Wasm is the binary module (spec.md §4.8).
	Wasm []byte
	// Wat is the module's text rendering (spec.md §4.9).
	Wat string
	// SourceMap is a source-map v3 JSON document (spec.md §4.11).
	SourceMap string
}

// Compile translates classes — already parsed by an external
// class-file-parsing collaborator (spec.md §1) — into one Wasm module
// under config. moduleName only labels the compilation's root trace
// span; it has no effect on the emitted bytes.
func Compile(ctx context.Context, config CompilerConfig, moduleName string, classes []*classfile.Class) (*CompiledModule, error) {
	d, err := driver.New(config.opts)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	out, err := d.Compile(ctx, driver.Input{ModuleName: moduleName, Classes: classes})
	if err != nil {
		return nil, err
	}
	return &CompiledModule{Wasm: out.Wasm, Wat: out.Wat, SourceMap: out.SourceMap}, nil
}

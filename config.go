// Package classwasm compiles a set of source-bytecode classes into a
// Wasm module. It is the public entry point; internal/driver does the
// actual work.
package classwasm

import "github.com/wasmforge/classwasm/internal/driver"

// CompilerConfig controls compiler behaviour, with the default
// implementation as NewCompilerConfig. Mirrors a Wasm-executing
// runtime's own RuntimeConfig clone-and-With* pattern: every With*
// method returns a new, independent config rather than mutating the
// receiver.
type CompilerConfig struct {
	opts *driver.Options
}

// NewCompilerConfig returns the default CompilerConfig: debug names and
// exception handling on, GC/ref-eq/SpiderMonkey-interop extensions off,
// caching and tracing disabled.
func NewCompilerConfig() CompilerConfig {
	return CompilerConfig{opts: driver.NewOptions()}
}

// WithDebugNames toggles the binary writer's custom name section.
func (c CompilerConfig) WithDebugNames(v bool) CompilerConfig {
	return CompilerConfig{opts: c.opts.WithDebugNames(v)}
}

// WithGC sets the driver's useGC flag; no compiler stage reads it, and no
// GC-proposal struct/array types are emitted whatever its value.
func (c CompilerConfig) WithGC(v bool) CompilerConfig {
	return CompilerConfig{opts: c.opts.WithGC(v)}
}

// WithExceptionHandling sets the driver's useEH flag; no compiler stage
// reads it, and exception-table regions become try/catch blocks whatever
// its value.
func (c CompilerConfig) WithExceptionHandling(v bool) CompilerConfig {
	return CompilerConfig{opts: c.opts.WithExceptionHandling(v)}
}

// WithRefEq sets the driver's refEq flag; no compiler stage reads it, and
// the acmp opcode family translates the same whatever its value.
func (c CompilerConfig) WithRefEq(v bool) CompilerConfig {
	return CompilerConfig{opts: c.opts.WithRefEq(v)}
}

// WithSpiderMonkeyInterop sets the driver's spiderMonkey flag; no
// compiler stage reads it, and import/export names are the same whatever
// its value.
func (c CompilerConfig) WithSpiderMonkeyInterop(v bool) CompilerConfig {
	return CompilerConfig{opts: c.opts.WithSpiderMonkeyInterop(v)}
}

// WithCache enables the persistent compilation cache at path (""
// requests the default path under the user's home directory).
func (c CompilerConfig) WithCache(path string) CompilerConfig {
	return CompilerConfig{opts: c.opts.WithCache(path)}
}

// WithTracing enables OTLP tracing, exported to the given endpoint.
func (c CompilerConfig) WithTracing(url string) CompilerConfig {
	return CompilerConfig{opts: c.opts.WithTracing(url)}
}

// Opts exposes the underlying driver.Options for collaborators — such as
// classwasmc's serve subcommand — that need to hand the same
// configuration to internal/rpcserver directly instead of going through
// Compile.
func (c CompilerConfig) Opts() *driver.Options {
	return c.opts
}

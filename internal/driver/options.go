// Package driver implements the compiler driver: it sequences class
// registration, per-method translation, optimisation and assembly into a
// finished Wasm module, per SPEC_FULL.md's driver component.
package driver

import "github.com/wasmforge/classwasm/internal/features"

// Options controls driver behaviour, with the default implementation as
// NewOptions. Every With* method returns a new, independent Options
// rather than mutating the receiver.
type Options struct {
	debugNames   bool
	useGC        bool
	useEH        bool
	refEq        bool
	spiderMonkey bool
	cacheEnabled bool
	cachePath    string // "" means cache.DefaultPath, only meaningful when cacheEnabled
	tracing      bool
	traceURL     string
}

var defaultOptions = &Options{debugNames: true, useEH: true}

// NewOptions returns the default Options overlaid with any experimental
// extension named in CLASSWASMC_FEATURES (internal/features):
// debug names on, exception handling on, GC/ref-eq/SpiderMonkey-interop
// extensions off unless enabled via the environment, caching and tracing
// disabled.
func NewOptions() *Options {
	opts := defaultOptions.clone()
	features.EnableFromEnvironment()
	if features.Have(features.GC) {
		opts.useGC = true
	}
	if features.Have(features.RefEq) {
		opts.refEq = true
	}
	if features.Have(features.SpiderMonkey) {
		opts.spiderMonkey = true
	}
	return opts
}

func (o *Options) clone() *Options {
	cp := *o
	return &cp
}

// WithDebugNames toggles emission of the binary writer's custom name
// section (SPEC_FULL.md §5 "debugNames").
func (o *Options) WithDebugNames(v bool) *Options {
	ret := o.clone()
	ret.debugNames = v
	return ret
}

// WithGC sets the useGC flag (SPEC_FULL.md §5 "useGC"). No translation or
// writing stage reads it: no GC-proposal struct/array types are emitted
// whatever its value.
func (o *Options) WithGC(v bool) *Options {
	ret := o.clone()
	ret.useGC = v
	return ret
}

// WithExceptionHandling sets the useEH flag (SPEC_FULL.md §5 "useEH").
// No translation or writing stage reads it: exception-table regions are
// translated to try/catch blocks whatever its value.
func (o *Options) WithExceptionHandling(v bool) *Options {
	ret := o.clone()
	ret.useEH = v
	return ret
}

// WithRefEq sets the refEq flag (SPEC_FULL.md §5 "ref_eq"). No
// translation or writing stage reads it: the acmp family of opcodes
// translates the same whatever its value.
func (o *Options) WithRefEq(v bool) *Options {
	ret := o.clone()
	ret.refEq = v
	return ret
}

// WithSpiderMonkeyInterop sets the spiderMonkey flag (SPEC_FULL.md §5
// "SpiderMonkey"). No translation or writing stage reads it: import and
// export names and sections are the same whatever its value.
func (o *Options) WithSpiderMonkeyInterop(v bool) *Options {
	ret := o.clone()
	ret.spiderMonkey = v
	return ret
}

// WithCache enables the persistent compilation cache at path (""
// requests cache.DefaultPath).
func (o *Options) WithCache(path string) *Options {
	ret := o.clone()
	ret.cacheEnabled = true
	ret.cachePath = path
	return ret
}

// WithTracing enables OTLP tracing, exporting to the given endpoint.
func (o *Options) WithTracing(url string) *Options {
	ret := o.clone()
	ret.tracing = true
	ret.traceURL = url
	return ret
}

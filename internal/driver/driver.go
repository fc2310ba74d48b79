package driver

import (
	"context"
	"encoding/binary"
	"encoding/json"

	"github.com/cenkalti/backoff/v4"

	"github.com/wasmforge/classwasm/internal/binarywriter"
	"github.com/wasmforge/classwasm/internal/cache"
	"github.com/wasmforge/classwasm/internal/classfile"
	"github.com/wasmforge/classwasm/internal/clog"
	"github.com/wasmforge/classwasm/internal/errs"
	"github.com/wasmforge/classwasm/internal/ir"
	"github.com/wasmforge/classwasm/internal/optimizer"
	"github.com/wasmforge/classwasm/internal/sourcemap"
	"github.com/wasmforge/classwasm/internal/telemetry"
	"github.com/wasmforge/classwasm/internal/textwriter"
	"github.com/wasmforge/classwasm/internal/translator"
	"github.com/wasmforge/classwasm/internal/typesystem"
)

// allocFunctionName is the identity of the synthetic (i32)->i32 runtime
// allocator function (internal/translator's allocFunction).
var allocFunctionName = ir.FunctionName{ClassName: "$runtime", MethodName: "alloc", Descriptor: "(I)I"}

// Input is one compilation's whole set of classes.
type Input struct {
	ModuleName string
	Classes    []*classfile.Class
}

// Output is one compilation's finished artifacts.
type Output struct {
	Wasm      []byte
	Wat       string
	SourceMap string // a source-map v3 JSON document
}

// Driver orchestrates one compilation end to end: class/vtable
// registration, per-method translation and optimisation, and final
// module assembly.
type Driver struct {
	mgr   *typesystem.Manager
	sigs  *ir.SignatureRegistry
	tr    *translator.Translator
	opts  *Options
	cache *cache.Store
}

// New returns a Driver configured by opts (pass NewOptions() for
// defaults). If opts requests a cache, it is opened immediately;
// callers should call Close when done.
func New(opts *Options) (*Driver, error) {
	if opts == nil {
		opts = NewOptions()
	}
	mgr := typesystem.New()
	sigs := ir.NewSignatureRegistry()
	d := &Driver{mgr: mgr, sigs: sigs, tr: translator.New(mgr, sigs), opts: opts}

	if opts.cacheEnabled {
		c, err := cache.Open(opts.cachePath)
		if err != nil {
			return nil, err
		}
		d.cache = c
	}
	return d, nil
}

// Close releases the driver's cache handle, if one was opened.
func (d *Driver) Close() error {
	if d.cache == nil {
		return nil
	}
	return d.cache.Close()
}

// Compile translates every method of every class in input and assembles
// the finished Wasm binary, its .wat text rendering, and a source-map v3
// document.
func (d *Driver) Compile(ctx context.Context, input Input) (*Output, error) {
	if d.opts.tracing {
		shutdown, err := telemetry.Init(ctx, telemetry.Config{Enabled: true, ExporterURL: d.opts.traceURL, ServiceName: "classwasmc"})
		if err != nil {
			return nil, errs.Wrap(errs.KindIO, err, "initialise tracing")
		}
		defer shutdown()
	}
	ctx, rootSpan := telemetry.StartCompile(ctx, input.ModuleName)
	defer rootSpan.End()

	clog.Logger.Info("compile started", "module", input.ModuleName, "classes", len(input.Classes))

	for _, c := range input.Classes {
		if err := classfile.ValidateVersion(c); err != nil {
			return nil, errs.Wrap(errs.KindInput, err, "validate class %q", c.Name)
		}
	}

	if err := registerClasses(d.mgr, d.sigs, input.Classes); err != nil {
		return nil, err
	}

	funcs, imports, smw, err := d.translateAll(ctx, input.Classes)
	if err != nil {
		return nil, err
	}

	if usesAlloc(funcs) {
		allocType := ir.FunctionType{Params: []ir.ValueType{ir.ValueTypeI32}, Results: []ir.ValueType{ir.ValueTypeI32}}
		idx := d.mgr.InternFunctionType(allocType)
		imports = append([]binarywriter.Import{{Module: "classwasm_rt", Name: "alloc", TypeIndex: idx, Function: allocFunctionName}}, imports...)
	}

	hasIndirect := hasIndirectCalls(funcs)
	var elementFuncs []uint32
	if hasIndirect {
		total := uint32(len(imports) + len(funcs))
		elementFuncs = make([]uint32, total)
		for i := range elementFuncs {
			elementFuncs[i] = uint32(i)
		}
	}

	if err := d.mgr.FinalizeVTables(functionIndexOf(imports, funcs)); err != nil {
		return nil, err
	}

	mod := &binarywriter.Module{
		Types:            d.mgr.FunctionTypes(),
		Imports:          imports,
		Functions:        funcs,
		Globals:          d.tr.Globals.Globals(),
		MemoryPages:      1,
		EventUsed:        d.tr.UsesExceptions(),
		HasIndirectTable: hasIndirect,
		ElementFuncs:     elementFuncs,
		Data:             vtableDataSegments(d.mgr.VTableSegments()),
		DebugNames:       d.opts.debugNames,
		ProducerLanguage: "classwasm",
		ProducerName:     "classwasmc",
	}

	wasmBytes, err := binarywriter.Encode(mod)
	if err != nil {
		return nil, err
	}
	watText, err := textwriter.Encode(mod)
	if err != nil {
		return nil, err
	}

	clog.Logger.Info("compile finished", "module", input.ModuleName, "functions", len(funcs), "bytes", len(wasmBytes))

	return &Output{
		Wasm:      wasmBytes,
		Wat:       watText,
		SourceMap: buildSourceMapDocument(smw),
	}, nil
}

// WriteFile calls writeOnce, retrying it up to 3 more times with
// exponential backoff when it fails (spec.md §7 KindIO covers a writer that could not
// write; retrying here narrows that to genuinely permanent failures).
func WriteFile(writeOnce func() error) error {
	return backoff.Retry(writeOnce, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3))
}

func usesAlloc(funcs []binarywriter.Function) bool {
	for _, fn := range funcs {
		for _, ins := range fn.Code.Items {
			if ins.Kind == ir.KindCall && ins.CallTarget == allocFunctionName {
				return true
			}
		}
	}
	return false
}

func hasIndirectCalls(funcs []binarywriter.Function) bool {
	for _, fn := range funcs {
		for _, ins := range fn.Code.Items {
			if ins.Kind == ir.KindCallIndirect {
				return true
			}
		}
	}
	return false
}

// functionIndexOf returns a lookup from a method's identity to its final
// module function index (imports occupy [0, len(imports)), locally
// defined functions follow), for internal/typesystem.FinalizeVTables to
// resolve each vtable slot's call_indirect target.
func functionIndexOf(imports []binarywriter.Import, funcs []binarywriter.Function) func(ir.FunctionName) (int, bool) {
	index := make(map[ir.FunctionName]int, len(imports)+len(funcs))
	for i, imp := range imports {
		index[imp.Function] = i
	}
	for i, fn := range funcs {
		index[fn.Name] = len(imports) + i
	}
	return func(fn ir.FunctionName) (int, bool) {
		idx, ok := index[fn]
		return idx, ok
	}
}

// vtableDataSegments converts the type manager's resolved vtable
// segments into the binary writer's data-segment shape: each function
// index written as a raw little-endian i32, matching the 4-byte slot
// width classes.go's vtableSlotWidth assigns and buildVirtualCall's
// [header]+slot*4 load expects.
func vtableDataSegments(segments []typesystem.VTableSegment) []binarywriter.DataSegment {
	if len(segments) == 0 {
		return nil
	}
	out := make([]binarywriter.DataSegment, len(segments))
	for i, seg := range segments {
		b := make([]byte, len(seg.FunctionIndices)*4)
		for slot, idx := range seg.FunctionIndices {
			binary.LittleEndian.PutUint32(b[slot*4:], uint32(idx))
		}
		out[i] = binarywriter.DataSegment{Offset: seg.Offset, Bytes: b}
	}
	return out
}

// sourceMapDocument is the JSON wrapper a source-map v3 consumer expects
// around sourcemap.Writer's raw "mappings" string (sourcemap.Writer only
// produces that one field; the document shape itself is the public,
// language-agnostic source-map v3 grammar).
type sourceMapDocument struct {
	Version  int      `json:"version"`
	Sources  []string `json:"sources"`
	Mappings string   `json:"mappings"`
}

func buildSourceMapDocument(w *sourcemap.Writer) string {
	doc := sourceMapDocument{Version: 3, Sources: w.Sources, Mappings: w.Mappings()}
	b, err := json.Marshal(doc)
	if err != nil {
		// Sources/Mappings are always valid UTF-8 built from our own
		// writer; marshalling cannot fail in practice.
		return `{"version":3,"sources":[],"mappings":""}`
	}
	return string(b)
}

// optimize re-exports optimizer.Run under the driver's own import so
// translateAll reads as one pipeline stage per line.
func optimize(list *ir.InstructionList) *ir.InstructionList { return optimizer.Run(list) }

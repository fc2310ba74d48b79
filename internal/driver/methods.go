package driver

import (
	"context"

	"github.com/wasmforge/classwasm/internal/binarywriter"
	"github.com/wasmforge/classwasm/internal/cache"
	"github.com/wasmforge/classwasm/internal/classfile"
	"github.com/wasmforge/classwasm/internal/clog"
	"github.com/wasmforge/classwasm/internal/errs"
	"github.com/wasmforge/classwasm/internal/ir"
	"github.com/wasmforge/classwasm/internal/sourcemap"
	"github.com/wasmforge/classwasm/internal/telemetry"
	"github.com/wasmforge/classwasm/internal/translator"
)

// translateAll walks every class's methods, producing the binary
// writer's Function and Import records plus a populated source-map
// writer. Methods carrying an Import annotation become imports (no
// body); abstract/native methods carry no body and are skipped, except
// that one carrying an Export annotation fails the compilation with a
// KindSemantic error.
func (d *Driver) translateAll(ctx context.Context, classes []*classfile.Class) ([]binarywriter.Function, []binarywriter.Import, *sourcemap.Writer, error) {
	var funcs []binarywriter.Function
	var imports []binarywriter.Import
	smw := sourcemap.NewWriter(sourceNames(classes))

	for srcIdx, c := range classes {
		for i := range c.Methods {
			m := &c.Methods[i]
			fn := d.sigs.Intern(ir.FunctionName{ClassName: c.Name, MethodName: m.Name, Descriptor: m.Descriptor})
			ft := translator.ParseFunctionType(m.Descriptor)
			typeIdx := d.mgr.InternFunctionType(ft)

			if m.Annotations.Import {
				imports = append(imports, binarywriter.Import{
					Module:    m.Annotations.ImportModule,
					Name:      m.Annotations.ImportName,
					TypeIndex: typeIdx,
					Function:  fn,
				})
				continue
			}
			if m.AccessFlags.Abstract || m.AccessFlags.Native {
				if m.Annotations.Export {
					return nil, nil, nil, errs.New(errs.KindSemantic, "abstract or native method %q cannot be exported", m.Name).WithLocation(c.Name, m.Name, -1)
				}
				continue
			}

			_, span := telemetry.StartMethod(ctx, c.Name, fn.SignatureName())
			code, scratch, mappings, err := d.translateMethod(ctx, c, m, fn)
			span.End()
			if err != nil {
				return nil, nil, nil, err
			}

			locals := declaredLocals(m, len(ft.Params))
			locals = append(locals, scratch...)

			exportName := ""
			if m.Annotations.Export {
				exportName = fn.MethodName
			}

			funcs = append(funcs, binarywriter.Function{
				Name:      fn,
				TypeIndex: typeIdx,
				Locals:    locals,
				Code:      *code,
				Export:    exportName,
			})

			for _, mp := range mappings {
				smw.Add(sourcemap.Mapping{
					GeneratedLine: int(mp.CodeOffset),
					SourceIndex:   srcIdx,
					SourceLine:    mp.SourceLine,
				})
			}
		}
	}
	return funcs, imports, smw, nil
}

// translateMethod translates one method, consulting and refreshing the
// compilation cache (when enabled) around the translate+optimise step.
func (d *Driver) translateMethod(ctx context.Context, c *classfile.Class, m *classfile.Method, fn ir.FunctionName) (*ir.InstructionList, []ir.ValueType, []ir.SourceMapping, error) {
	hash := cache.HashSource(m.Code)

	if d.cache != nil {
		entry, ok, err := d.cache.Lookup(ctx, c.Name, fn.SignatureName(), hash)
		if err != nil {
			clog.Logger.Warn("cache lookup failed", "method", fn.SignatureName(), "error", err)
		} else if ok {
			code, scratch, decodeErr := decodeEntry(entry.Body, entry.ScratchLocals)
			if decodeErr == nil {
				clog.Logger.Debug("cache hit", "class", c.Name, "method", fn.SignatureName())
				return code, scratch, nil, nil
			}
		}
	}

	res, err := d.tr.TranslateMethod(c, m)
	if err != nil {
		return nil, nil, nil, err
	}
	optimized := optimize(res.Code)

	if d.cache != nil {
		if body, scratchBytes, encErr := encodeEntry(optimized, res.ScratchLocals); encErr == nil {
			if storeErr := d.cache.Store(ctx, c.Name, fn.SignatureName(), hash, cache.Entry{Body: body, ScratchLocals: scratchBytes}); storeErr != nil {
				clog.Logger.Warn("cache store failed", "method", fn.SignatureName(), "error", storeErr)
			}
		}
	}

	return optimized, res.ScratchLocals, res.Mappings, nil
}

// declaredLocals returns the Wasm local declarations for slots beyond a
// method's nParams parameters (which Wasm encodes as implicit locals
// 0..nParams-1), typed from the method's local-variable table where
// available and defaulting to i32 for slots the table does not type.
func declaredLocals(m *classfile.Method, nParams int) []ir.ValueType {
	maxSlot := nParams - 1
	typeBySlot := make(map[int]ir.ValueType, len(m.LocalVars))
	for _, lv := range m.LocalVars {
		typeBySlot[lv.Slot] = lv.Type
		if lv.Slot > maxSlot {
			maxSlot = lv.Slot
		}
	}
	if maxSlot < nParams {
		return nil
	}
	locals := make([]ir.ValueType, 0, maxSlot-nParams+1)
	for slot := nParams; slot <= maxSlot; slot++ {
		if t, ok := typeBySlot[slot]; ok {
			locals = append(locals, t)
		} else {
			locals = append(locals, ir.ValueTypeI32)
		}
	}
	return locals
}

func sourceNames(classes []*classfile.Class) []string {
	names := make([]string, len(classes))
	for i, c := range classes {
		names[i] = c.Name
	}
	return names
}

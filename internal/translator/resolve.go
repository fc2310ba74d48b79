package translator

import (
	"strings"

	"github.com/wasmforge/classwasm/internal/classfile"
	"github.com/wasmforge/classwasm/internal/ir"
)

// descriptorValueType maps one source type-descriptor character to its
// flattened Wasm leaf type: integral widths map to i32/i64, floating
// widths to f32/f64, and every reference/array descriptor — since this
// compiler represents objects and arrays as linear-memory pointers
// rather than Wasm GC refs — maps to i32 as well.
func descriptorValueType(d byte) ir.ValueType {
	switch d {
	case 'J':
		return ir.ValueTypeI64
	case 'F':
		return ir.ValueTypeF32
	case 'D':
		return ir.ValueTypeF64
	default: // I, Z, B, C, S, L..., [
		return ir.ValueTypeI32
	}
}

// ParseFunctionType is parseFunctionType exported for internal/driver,
// which needs the identical param/result flattening to size a method's
// declared Wasm locals ahead of calling TranslateMethod.
func ParseFunctionType(descriptor string) ir.FunctionType { return parseFunctionType(descriptor) }

// parseFunctionType parses a "(paramDescriptors)returnDescriptor"
// signature into a flattened FunctionType, skipping over class-name
// bodies ("Lfoo/Bar;") and array prefixes ("[").
func parseFunctionType(descriptor string) ir.FunctionType {
	var ft ir.FunctionType
	i := 1 // skip leading '('
	for i < len(descriptor) && descriptor[i] != ')' {
		for descriptor[i] == '[' {
			i++
		}
		if descriptor[i] == 'L' {
			end := strings.IndexByte(descriptor[i:], ';')
			ft.Params = append(ft.Params, ir.ValueTypeI32)
			i += end + 1
			continue
		}
		ft.Params = append(ft.Params, descriptorValueType(descriptor[i]))
		i++
	}
	i++ // skip ')'
	for i < len(descriptor) {
		for descriptor[i] == '[' {
			i++
		}
		if descriptor[i] == 'V' {
			break
		}
		if descriptor[i] == 'L' {
			ft.Results = append(ft.Results, ir.ValueTypeI32)
			break
		}
		ft.Results = append(ft.Results, descriptorValueType(descriptor[i]))
		break
	}
	return ft
}

// globalRegistry lazily creates a mutable global per static field the
// first time either getstatic or putstatic references it (spec.md §4.5
// step 3), keyed by "ClassName.fieldName" so repeat references reuse the
// same global.
type globalRegistry struct {
	byKey map[string]int
	defs  []ir.Global
}

func newGlobalRegistry() *globalRegistry {
	return &globalRegistry{byKey: make(map[string]int)}
}

func (g *globalRegistry) resolve(className, fieldName string, t ir.ValueType) int {
	key := className + "." + fieldName
	if idx, ok := g.byKey[key]; ok {
		return idx
	}
	idx := len(g.defs)
	g.defs = append(g.defs, ir.Global{ID: idx, Type: t, Mutable: true})
	g.byKey[key] = idx
	return idx
}

// Globals returns the globals created so far, in first-reference order —
// the order internal/binarywriter's global section walks.
func (g *globalRegistry) Globals() []ir.Global { return append([]ir.Global(nil), g.defs...) }

// resolveFieldRef looks up a field-ref constant-pool entry's (owner,
// name, descriptor) identity, the shape every getfield/putfield/
// getstatic/putstatic opcode shares.
func resolveFieldRef(pool classfile.ConstantPool, index uint16) (owner, name string, typ ir.ValueType, ok bool) {
	c, found := pool.Lookup(index)
	if !found || c.Kind != classfile.ConstantFieldRef {
		return "", "", 0, false
	}
	t := ir.ValueTypeI32
	if len(c.Descriptor) > 0 {
		t = descriptorValueType(c.Descriptor[0])
	}
	return c.OwnerClass, c.MemberName, t, true
}

// resolveMethodRef looks up a method-ref constant-pool entry and returns
// the interned FunctionName identity plus its flattened signature.
func resolveMethodRef(pool classfile.ConstantPool, index uint16, registry *ir.SignatureRegistry) (ir.FunctionName, ir.FunctionType, bool) {
	c, found := pool.Lookup(index)
	if !found || (c.Kind != classfile.ConstantMethodRef && c.Kind != classfile.ConstantInterfaceMethodRef) {
		return ir.FunctionName{}, ir.FunctionType{}, false
	}
	fn := registry.Intern(ir.FunctionName{ClassName: c.OwnerClass, MethodName: c.MemberName, Descriptor: c.Descriptor})
	return fn, parseFunctionType(c.Descriptor), true
}

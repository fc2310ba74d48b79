package driver

import (
	"github.com/wasmforge/classwasm/internal/classfile"
	"github.com/wasmforge/classwasm/internal/errs"
	"github.com/wasmforge/classwasm/internal/ir"
	"github.com/wasmforge/classwasm/internal/typesystem"
)

// registerClasses walks classes in superclass-before-subclass order,
// registering each one's field layout and vtable with mgr, per
// typesystem.Manager's documented contract that every class must be
// registered (and its vtable assigned) before any method is translated.
func registerClasses(mgr *typesystem.Manager, sigs *ir.SignatureRegistry, classes []*classfile.Class) error {
	ordered, err := topoSortClasses(classes)
	if err != nil {
		return err
	}

	for _, c := range ordered {
		var superFields []ir.NamedStorageType
		if c.SuperClass != "" {
			super, ok := mgr.Class(c.SuperClass)
			if ok {
				superFields = super.Fields
			}
		}
		mgr.RegisterClass(c.Name, c.SuperClass, instanceFields(c), superFields)
		if c.SuperClass != "" {
			mgr.InheritVirtualMethods(c.Name, c.SuperClass)
		}
	}

	for _, c := range ordered {
		for _, m := range c.Methods {
			if m.AccessFlags.Static || isConstructor(m.Name) {
				continue
			}
			fn := sigs.Intern(ir.FunctionName{ClassName: c.Name, MethodName: m.Name, Descriptor: m.Descriptor})
			mgr.RegisterVirtualMethod(c.Name, m.Name+m.Descriptor, fn)
		}
		mgr.AssignVTableOffset(c.Name, vtableSlotWidth)
	}
	return nil
}

// vtableSlotWidth is the byte width of one vtable slot: a direct function
// index fits in 4 bytes (internal/translator's object layout doc).
const vtableSlotWidth = 4

func isConstructor(name string) bool { return name == "<init>" || name == "<clinit>" }

func instanceFields(c *classfile.Class) []ir.NamedStorageType {
	var out []ir.NamedStorageType
	for _, f := range c.Fields {
		if f.Static {
			continue
		}
		out = append(out, ir.NamedStorageType{Name: f.Name, Type: f.Type})
	}
	return out
}

// topoSortClasses orders classes so that every class appears after its
// superclass, if that superclass is itself one of the classes being
// compiled. A superclass name not present in classes is treated as
// already resolved (it is an external/root type the parser never handed
// us field data for, e.g. a foreign base class).
func topoSortClasses(classes []*classfile.Class) ([]*classfile.Class, error) {
	byName := make(map[string]*classfile.Class, len(classes))
	for _, c := range classes {
		byName[c.Name] = c
	}

	done := make(map[string]bool, len(classes))
	var ordered []*classfile.Class
	remaining := append([]*classfile.Class(nil), classes...)

	for len(remaining) > 0 {
		var next []*classfile.Class
		progressed := false
		for _, c := range remaining {
			if c.SuperClass == "" || done[c.SuperClass] || byName[c.SuperClass] == nil {
				ordered = append(ordered, c)
				done[c.Name] = true
				progressed = true
				continue
			}
			next = append(next, c)
		}
		if !progressed {
			return nil, errs.New(errs.KindInput, "cyclic class hierarchy involving %d class(es)", len(next))
		}
		remaining = next
	}
	return ordered, nil
}

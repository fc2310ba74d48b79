package ir

// FunctionType is an ordered parameter-type list and ordered result-type
// list. Two FunctionTypes compare equal iff both lists compare equal
// element-wise (spec.md §3); the type manager (internal/typesystem)
// relies on Equal to canonicalise/intern them.
type FunctionType struct {
	Params  []ValueType
	Results []ValueType
}

// Equal reports whether t and other have identical Params and Results,
// in order.
func (t FunctionType) Equal(other FunctionType) bool {
	if len(t.Params) != len(other.Params) || len(t.Results) != len(other.Results) {
		return false
	}
	for i, p := range t.Params {
		if p != other.Params[i] {
			return false
		}
	}
	for i, r := range t.Results {
		if r != other.Results[i] {
			return false
		}
	}
	return true
}

// String renders the type the way the text writer's type section does,
// e.g. "(param i32 i32) (result i32)".
func (t FunctionType) String() string {
	s := ""
	if len(t.Params) > 0 {
		s += "(param"
		for _, p := range t.Params {
			s += " " + p.String()
		}
		s += ")"
	}
	if len(t.Results) > 0 {
		if s != "" {
			s += " "
		}
		s += "(result"
		for _, r := range t.Results {
			s += " " + r.String()
		}
		s += ")"
	}
	return s
}

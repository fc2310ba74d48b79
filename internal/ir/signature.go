package ir

import "fmt"

// FunctionName is the triple (className, methodName, descriptor) that
// identifies a function across the whole pipeline (spec.md §3/§4.4). Its
// SignatureName is the stable map key every stage uses instead of
// re-deriving identity from the constant pool.
type FunctionName struct {
	ClassName  string
	MethodName string
	Descriptor string
}

// SignatureName returns "className.methodName(descriptor)", the one
// canonical textual identity for fn.
func (fn FunctionName) SignatureName() string {
	return fmt.Sprintf("%s.%s(%s)", fn.ClassName, fn.MethodName, fn.Descriptor)
}

func (fn FunctionName) String() string { return fn.SignatureName() }

// SignatureRegistry enforces the §4.4 invariant that FunctionName
// construction from a constant-pool method reference produces one and
// only one instance per SignatureName. It is the map every later stage
// (translator, binary writer, text writer) keys off of.
type SignatureRegistry struct {
	bySignature map[string]FunctionName
}

// NewSignatureRegistry returns an empty registry.
func NewSignatureRegistry() *SignatureRegistry {
	return &SignatureRegistry{bySignature: make(map[string]FunctionName)}
}

// Intern registers fn if its SignatureName has not been seen before, and
// returns the single canonical FunctionName value associated with that
// signature from then on. A second Intern call for the same class,
// method and descriptor always returns the identical (by value) name;
// constructing FunctionName ad hoc outside Intern is only safe for
// read-only lookups, never for establishing new identity.
func (r *SignatureRegistry) Intern(fn FunctionName) FunctionName {
	sig := fn.SignatureName()
	if existing, ok := r.bySignature[sig]; ok {
		return existing
	}
	r.bySignature[sig] = fn
	return fn
}

// Lookup returns the canonical FunctionName for signatureName, if interned.
func (r *SignatureRegistry) Lookup(signatureName string) (FunctionName, bool) {
	fn, ok := r.bySignature[signatureName]
	return fn, ok
}

// Len returns the number of distinct signatures interned so far.
func (r *SignatureRegistry) Len() int { return len(r.bySignature) }

// Package features implements an environment-variable feature flagging
// mechanism for classwasmc's experimental compiler extensions (GC
// struct/array types, ref-eq semantics, SpiderMonkey interop naming) —
// properties a caller may want enabled globally without threading a
// CompilerConfig.With* call through every call site.
package features

import (
	"os"
	"strings"
	"sync"
)

const (
	// EnvVarName is the environment variable holding the comma-separated
	// list of enabled feature names.
	EnvVarName = "CLASSWASMC_FEATURES"

	// GC enables Wasm GC-proposal struct/array type-section emission.
	GC = "gc"
	// RefEq enables reference-equality semantics for the acmp opcode family.
	RefEq = "ref_eq"
	// SpiderMonkey enables the SpiderMonkey-flavoured import/export naming
	// convention.
	SpiderMonkey = "spidermonkey"
)

var (
	lock sync.RWMutex
	list []string
)

// EnableFromEnvironment extracts the list of enabled features from
// EnvVarName and merges them into the current set.
func EnableFromEnvironment() {
	Enable(strings.Split(os.Getenv(EnvVarName), ",")...)
}

// Enable adds features to the current set. Idempotent and atomic;
// unrecognized names are ignored.
func Enable(features ...string) {
	lock.Lock()
	defer lock.Unlock()

	enabled := list
	for _, f := range features {
		if supported(f) && !have(enabled, f) {
			enabled = append(enabled, f)
		}
	}
	list = enabled
}

// Reset clears the enabled set; used by tests so one test's
// EnableFromEnvironment call cannot leak into another's assertions.
func Reset() {
	lock.Lock()
	defer lock.Unlock()
	list = nil
}

// List returns the currently enabled features. Callers must treat the
// returned slice as read-only.
func List() []string {
	lock.RLock()
	defer lock.RUnlock()
	return list
}

// Have reports whether feature is currently enabled.
func Have(feature string) bool {
	lock.RLock()
	features := list
	lock.RUnlock()
	return have(features, feature)
}

func have(list []string, feature string) bool {
	for _, f := range list {
		if f == feature {
			return true
		}
	}
	return false
}

func supported(feature string) bool {
	switch feature {
	case GC, RefEq, SpiderMonkey:
		return true
	default:
		return false
	}
}

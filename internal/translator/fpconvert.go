package translator

import "math"

// saturatingTruncI32 mirrors Wasm's i32.trunc_sat_f64_s: NaN truncates to
// zero, and out-of-range magnitudes clamp to the representable extreme
// rather than trapping (spec.md §4.5.2's "floating-to-integral uses the
// saturating form"). Used only to fold a float constant immediately
// followed by its matching narrowing cast at translate time; the general
// case is left to the emitted trunc_sat opcode, which applies the same
// rule at run time.
func saturatingTruncI32(v float64) int32 {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	default:
		return int32(v)
	}
}

// saturatingTruncI64 is saturatingTruncI32's i64 counterpart.
func saturatingTruncI64(v float64) int64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt64:
		return math.MaxInt64
	case v <= math.MinInt64:
		return math.MinInt64
	default:
		return int64(v)
	}
}

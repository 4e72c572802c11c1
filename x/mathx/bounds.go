// Package mathx holds small generic numeric helpers.
package mathx

import "golang.org/x/exp/constraints"

// Between reports whether lo <= v <= hi. Bounds may be given in either order.
func Between[T constraints.Ordered](v, lo, hi T) bool {
	if hi < lo {
		lo, hi = hi, lo
	}
	return v >= lo && v <= hi
}

// Clamp pulls v into [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	return min(max(v, lo), hi)
}

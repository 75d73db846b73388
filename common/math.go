package common

import "golang.org/x/exp/constraints"

// Number constrains point coordinates to the built-in numeric types.
// Distances are always measured in float64 regardless of the coordinate type.
type Number interface {
	constraints.Integer | constraints.Float
}

// Sq is x*x without the math.Pow detour.
func Sq(x float64) float64 {
	return x * x
}

// Clamp bounds v to [lo, hi].
func Clamp[T Number](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package index

import (
	"github.com/rotblauer/pareto/common"
	"github.com/rotblauer/pareto/point"
)

// Predicate filters elements in Satisfies queries. Satisfies applies a
// conjunction: every predicate must pass.
type Predicate[T common.Number, V any] func(*Element[T, V]) bool

// AxisAtMost passes elements with coordinate axis <= v.
func AxisAtMost[T common.Number, V any](axis int, v T) Predicate[T, V] {
	return func(el *Element[T, V]) bool {
		return el.Point[axis] <= v
	}
}

// AxisAtLeast passes elements with coordinate axis >= v.
func AxisAtLeast[T common.Number, V any](axis int, v T) Predicate[T, V] {
	return func(el *Element[T, V]) bool {
		return el.Point[axis] >= v
	}
}

// DominatesPoint passes elements whose point weakly dominates ref.
func DominatesPoint[T common.Number, V any](ref point.Point[T], dir point.Direction) Predicate[T, V] {
	return func(el *Element[T, V]) bool {
		return el.Point.Dominates(ref, dir)
	}
}

// DominatedByPoint passes elements weakly dominated by ref.
func DominatedByPoint[T common.Number, V any](ref point.Point[T], dir point.Direction) Predicate[T, V] {
	return func(el *Element[T, V]) bool {
		return ref.Dominates(el.Point, dir)
	}
}

// InsideBox passes elements within the closed box.
func InsideBox[T common.Number, V any](b Box[T]) Predicate[T, V] {
	return func(el *Element[T, V]) bool {
		return b.Contains(el.Point)
	}
}

// OutsideBox passes elements outside the closed box.
func OutsideBox[T common.Number, V any](b Box[T]) Predicate[T, V] {
	return func(el *Element[T, V]) bool {
		return !b.Contains(el.Point)
	}
}

func matchesAll[T common.Number, V any](el *Element[T, V], preds []Predicate[T, V]) bool {
	for _, p := range preds {
		if !p(el) {
			return false
		}
	}
	return true
}

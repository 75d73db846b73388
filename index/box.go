package index

import (
	"math"

	"github.com/rotblauer/pareto/common"
	"github.com/rotblauer/pareto/point"
)

// Box is an axis-aligned closed hyperbox. Box-tree nodes annotate their
// subtrees with one; queries use them for containment and pruning.
type Box[T common.Number] struct {
	Min, Max point.Point[T]
}

// NewBox builds a box from its corners. The corners are cloned.
func NewBox[T common.Number](min, max point.Point[T]) Box[T] {
	return Box[T]{Min: min.Clone(), Max: max.Clone()}
}

// BoxOf is the degenerate box holding exactly p.
func BoxOf[T common.Number](p point.Point[T]) Box[T] {
	return Box[T]{Min: p.Clone(), Max: p.Clone()}
}

func (b Box[T]) Dimensions() int {
	return b.Min.Dimensions()
}

func (b Box[T]) Clone() Box[T] {
	return Box[T]{Min: b.Min.Clone(), Max: b.Max.Clone()}
}

// Contains reports whether p lies within the closed box.
func (b Box[T]) Contains(p point.Point[T]) bool {
	for i := range p {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// ContainsBox reports whether o lies entirely within b.
func (b Box[T]) ContainsBox(o Box[T]) bool {
	for i := range b.Min {
		if o.Min[i] < b.Min[i] || o.Max[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// Intersects reports whether the closed boxes share any point.
func (b Box[T]) Intersects(o Box[T]) bool {
	for i := range b.Min {
		if b.Min[i] > o.Max[i] || o.Min[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// Extend returns the minimum box enclosing both b and o.
func (b Box[T]) Extend(o Box[T]) Box[T] {
	r := b.Clone()
	for i := range r.Min {
		r.Min[i] = min(r.Min[i], o.Min[i])
		r.Max[i] = max(r.Max[i], o.Max[i])
	}
	return r
}

// ExtendPoint returns the minimum box enclosing b and p.
func (b Box[T]) ExtendPoint(p point.Point[T]) Box[T] {
	r := b.Clone()
	for i := range r.Min {
		r.Min[i] = min(r.Min[i], p[i])
		r.Max[i] = max(r.Max[i], p[i])
	}
	return r
}

// Area is the d-dimensional volume.
func (b Box[T]) Area() float64 {
	v := 1.0
	for i := range b.Min {
		v *= float64(b.Max[i]) - float64(b.Min[i])
	}
	return v
}

// Margin is the sum of the box's extents over all axes (proportional to
// the sum of its edge lengths), the R*-tree split goal function.
func (b Box[T]) Margin() float64 {
	var m float64
	for i := range b.Min {
		m += float64(b.Max[i]) - float64(b.Min[i])
	}
	return m
}

// Overlap is the volume of the intersection of b and o.
func (b Box[T]) Overlap(o Box[T]) float64 {
	v := 1.0
	for i := range b.Min {
		lo := math.Max(float64(b.Min[i]), float64(o.Min[i]))
		hi := math.Min(float64(b.Max[i]), float64(o.Max[i]))
		if hi <= lo {
			return 0
		}
		v *= hi - lo
	}
	return v
}

// Enlargement is the area growth needed to also cover o.
func (b Box[T]) Enlargement(o Box[T]) float64 {
	return b.Extend(o).Area() - b.Area()
}

// MinDist is the Euclidean distance from p to the nearest point of the
// box, zero when p is inside. Nearest-neighbour search orders nodes on it.
func (b Box[T]) MinDist(p point.Point[T]) float64 {
	var sum float64
	for i := range p {
		v := common.Clamp(float64(p[i]), float64(b.Min[i]), float64(b.Max[i]))
		sum += common.Sq(float64(p[i]) - v)
	}
	return math.Sqrt(sum)
}

// Center is the box midpoint, widened to float64.
func (b Box[T]) Center() []float64 {
	c := make([]float64, b.Dimensions())
	for i := range c {
		c[i] = (float64(b.Min[i]) + float64(b.Max[i])) / 2
	}
	return c
}

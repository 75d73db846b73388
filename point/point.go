// Package point implements the d-dimensional coordinate vectors and the
// dominance algebra the containers are built on. A Point is a value
// object: equality is elementwise, arithmetic is elementwise with scalar
// broadcast, and distances are always float64.
package point

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotblauer/pareto/common"
)

// Point is a d-dimensional vector of a single numeric type. The dimension
// is the slice length; it is fixed for the life of the containers a point
// enters, never enforced per point. Mismatched dimensions between two
// points in the same expression are a programming error.
type Point[T common.Number] []T

// Zero returns the origin of an n-dimensional space.
func Zero[T common.Number](n int) Point[T] {
	return make(Point[T], n)
}

// Uniform returns an n-dimensional point with v at every coordinate.
func Uniform[T common.Number](n int, v T) Point[T] {
	p := make(Point[T], n)
	for i := range p {
		p[i] = v
	}
	return p
}

// New builds a point from its coordinates.
func New[T common.Number](vs ...T) Point[T] {
	p := make(Point[T], len(vs))
	copy(p, vs)
	return p
}

// Of converts a point between coordinate types.
func Of[T, U common.Number](q Point[U]) Point[T] {
	p := make(Point[T], len(q))
	for i, v := range q {
		p[i] = T(v)
	}
	return p
}

func (p Point[T]) Dimensions() int {
	return len(p)
}

func (p Point[T]) Clone() Point[T] {
	q := make(Point[T], len(p))
	copy(q, p)
	return q
}

func (p Point[T]) Equal(q Point[T]) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// Floats returns the coordinates widened to float64.
func (p Point[T]) Floats() []float64 {
	fs := make([]float64, len(p))
	for i, v := range p {
		fs[i] = float64(v)
	}
	return fs
}

// Add returns the elementwise sum p + q.
func (p Point[T]) Add(q Point[T]) Point[T] {
	r := p.Clone()
	for i := range r {
		r[i] += q[i]
	}
	return r
}

// Sub returns the elementwise difference p - q.
func (p Point[T]) Sub(q Point[T]) Point[T] {
	r := p.Clone()
	for i := range r {
		r[i] -= q[i]
	}
	return r
}

// Mul returns the elementwise product p * q.
func (p Point[T]) Mul(q Point[T]) Point[T] {
	r := p.Clone()
	for i := range r {
		r[i] *= q[i]
	}
	return r
}

// Div returns the elementwise quotient p / q. Division by zero behaves as
// the coordinate type does: it panics for integers and produces Inf/NaN
// for floats.
func (p Point[T]) Div(q Point[T]) Point[T] {
	r := p.Clone()
	for i := range r {
		r[i] /= q[i]
	}
	return r
}

// AddScalar broadcasts s over every coordinate.
func (p Point[T]) AddScalar(s T) Point[T] {
	r := p.Clone()
	for i := range r {
		r[i] += s
	}
	return r
}

func (p Point[T]) SubScalar(s T) Point[T] {
	r := p.Clone()
	for i := range r {
		r[i] -= s
	}
	return r
}

func (p Point[T]) MulScalar(s T) Point[T] {
	r := p.Clone()
	for i := range r {
		r[i] *= s
	}
	return r
}

func (p Point[T]) DivScalar(s T) Point[T] {
	r := p.Clone()
	for i := range r {
		r[i] /= s
	}
	return r
}

// Distance is the Euclidean distance between p and q.
func (p Point[T]) Distance(q Point[T]) float64 {
	var sum float64
	for i := range p {
		sum += common.Sq(float64(p[i]) - float64(q[i]))
	}
	return math.Sqrt(sum)
}

// Quadrant returns an index in [0, 2^d) for q relative to p: bit k of the
// result is set iff q[k] <= p[k]. Quadtrees key their children on this.
func (p Point[T]) Quadrant(q Point[T]) int {
	quad := 0
	for i := range p {
		if q[i] <= p[i] {
			quad |= 1 << i
		}
	}
	return quad
}

// String renders the point as "(v0, v1, ...)".
func (p Point[T]) String() string {
	if len(p) == 0 {
		return "( )"
	}
	var sb strings.Builder
	sb.WriteByte('(')
	for i, v := range p {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%v", v)
	}
	sb.WriteByte(')')
	return sb.String()
}

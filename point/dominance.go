package point

import (
	"math"

	"github.com/rotblauer/pareto/common"
)

// Direction records the optimisation sense per axis: true minimises the
// axis, false maximises it. A nil (or empty) Direction minimises every
// axis, which is the convention throughout the module.
type Direction []bool

// Broadcast builds a uniform direction over dims axes.
func Broadcast(minimise bool, dims int) Direction {
	d := make(Direction, dims)
	for i := range d {
		d[i] = minimise
	}
	return d
}

// MinimiseAll is Broadcast(true, dims).
func MinimiseAll(dims int) Direction {
	return Broadcast(true, dims)
}

// Minimises reports the sense of axis k.
func (d Direction) Minimises(k int) bool {
	return len(d) == 0 || d[k]
}

// Dominates reports weak Pareto dominance: p is no worse than q on every
// axis and strictly better on at least one. A zero-dimensional point
// dominates nothing, and no point dominates itself.
func (p Point[T]) Dominates(q Point[T], dir Direction) bool {
	betterAtAny := false
	for i := range p {
		if dir.Minimises(i) {
			if p[i] > q[i] {
				return false
			}
			if p[i] < q[i] {
				betterAtAny = true
			}
		} else {
			if p[i] < q[i] {
				return false
			}
			if p[i] > q[i] {
				betterAtAny = true
			}
		}
	}
	return betterAtAny
}

// StronglyDominates reports strong dominance: p is strictly better than q
// on every axis. Zero-dimensional points strongly dominate nothing.
func (p Point[T]) StronglyDominates(q Point[T], dir Direction) bool {
	if len(p) == 0 {
		return false
	}
	for i := range p {
		if dir.Minimises(i) {
			if p[i] >= q[i] {
				return false
			}
		} else {
			if p[i] <= q[i] {
				return false
			}
		}
	}
	return true
}

// NonDominates reports mutual non-dominance: neither point dominates the
// other. Equal points are non-dominated.
func (p Point[T]) NonDominates(q Point[T], dir Direction) bool {
	return !p.Dominates(q, dir) && !q.Dominates(p, dir)
}

// DistanceToDominatedBox is the Euclidean distance from q to the region
// weakly dominated by p. Each coordinate difference is clamped to the
// improving side before the L2 norm, so a q inside the dominated region
// is at distance zero.
func (p Point[T]) DistanceToDominatedBox(q Point[T], dir Direction) float64 {
	var sum float64
	for i := range p {
		var term float64
		if dir.Minimises(i) {
			term = float64(p[i]) - float64(q[i])
		} else {
			term = float64(q[i]) - float64(p[i])
		}
		sum += common.Sq(math.Max(0, term))
	}
	return math.Sqrt(sum)
}

package front

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"github.com/rotblauer/pareto/common"
	"github.com/rotblauer/pareto/index"
	"github.com/rotblauer/pareto/point"
)

// Quality indicators over the front. Reference-set indicators take the
// set explicitly; the cardinality and spread indicators derive their
// reference from the front itself. None of the indicators in this file
// are cached: each call recomputes its value. Only the hypervolume
// (HypervolumeAt) caches under the mutation counter.

// GD is the generational distance: the mean Euclidean distance from each
// front element to its closest reference point.
func (f *Front[T, V]) GD(ref []point.Point[T]) (float64, error) {
	if err := f.checkRefSet(ref); err != nil {
		return 0, err
	}
	var sum float64
	for _, el := range f.Elements() {
		sum += minDistTo(el.Point, ref)
	}
	return sum / float64(f.Size()), nil
}

// IGD is the inverted generational distance: the mean distance from each
// reference point to its closest front element.
func (f *Front[T, V]) IGD(ref []point.Point[T]) (float64, error) {
	if err := f.checkRefSet(ref); err != nil {
		return 0, err
	}
	els := f.Elements()
	var sum float64
	for _, r := range ref {
		best := math.Inf(1)
		for _, el := range els {
			best = math.Min(best, el.Point.Distance(r))
		}
		sum += best
	}
	return sum / float64(len(ref)), nil
}

// GDPlus replaces the Euclidean distance in GD with the distance to the
// reference point's improving side, so movement along the front costs
// nothing.
func (f *Front[T, V]) GDPlus(ref []point.Point[T]) (float64, error) {
	if err := f.checkRefSet(ref); err != nil {
		return 0, err
	}
	var sum float64
	for _, el := range f.Elements() {
		best := math.Inf(1)
		for _, r := range ref {
			best = math.Min(best, el.Point.DistanceToDominatedBox(r, f.dir))
		}
		sum += best
	}
	return sum / float64(f.Size()), nil
}

// IGDPlus is IGD with the dominance-aware distance.
func (f *Front[T, V]) IGDPlus(ref []point.Point[T]) (float64, error) {
	if err := f.checkRefSet(ref); err != nil {
		return 0, err
	}
	els := f.Elements()
	var sum float64
	for _, r := range ref {
		best := math.Inf(1)
		for _, el := range els {
			best = math.Min(best, el.Point.DistanceToDominatedBox(r, f.dir))
		}
		sum += best
	}
	return sum / float64(len(ref)), nil
}

// Epsilon is the additive epsilon indicator: the smallest e such that,
// after shifting every front element by e toward better on every axis,
// each reference point has some shifted element no worse than it on
// every axis. A front that already covers its reference gets e <= 0.
func (f *Front[T, V]) Epsilon(ref []point.Point[T]) (float64, error) {
	if err := f.checkRefSet(ref); err != nil {
		return 0, err
	}
	els := f.Elements()
	eps := math.Inf(-1)
	for _, r := range ref {
		best := math.Inf(1)
		for _, el := range els {
			worst := math.Inf(-1)
			for k := 0; k < f.Dimensions(); k++ {
				d := toMin(float64(el.Point[k]), f.dir.Minimises(k)) - toMin(float64(r[k]), f.dir.Minimises(k))
				worst = math.Max(worst, d)
			}
			best = math.Min(best, worst)
		}
		eps = math.Max(eps, best)
	}
	return eps, nil
}

// MultiplicativeEpsilon is the ratio form of Epsilon. Sensible only for
// strictly positive objectives in minimisation space.
func (f *Front[T, V]) MultiplicativeEpsilon(ref []point.Point[T]) (float64, error) {
	if err := f.checkRefSet(ref); err != nil {
		return 0, err
	}
	els := f.Elements()
	eps := math.Inf(-1)
	for _, r := range ref {
		best := math.Inf(1)
		for _, el := range els {
			worst := math.Inf(-1)
			for k := 0; k < f.Dimensions(); k++ {
				d := toMin(float64(el.Point[k]), f.dir.Minimises(k)) / toMin(float64(r[k]), f.dir.Minimises(k))
				worst = math.Max(worst, d)
			}
			best = math.Min(best, worst)
		}
		eps = math.Max(eps, best)
	}
	return eps, nil
}

// UniformityStats summarises nearest-neighbour gaps across the front.
type UniformityStats struct {
	Min    float64
	Mean   float64
	StdDev float64
}

// Uniformity computes nearest-neighbour distance statistics over the
// front's points. It needs at least two elements.
func (f *Front[T, V]) Uniformity() (UniformityStats, error) {
	if f.Size() < 2 {
		return UniformityStats{}, fmt.Errorf("%w: uniformity needs at least 2 elements", index.ErrInvalidArgument)
	}
	els := f.Elements()
	gaps := make([]float64, 0, len(els))
	for _, el := range els {
		it, err := f.idx.Nearest(el.Point, 2)
		if err != nil {
			return UniformityStats{}, err
		}
		for it.Next() {
			if it.Element() != el {
				gaps = append(gaps, el.Point.Distance(it.Element().Point))
				break
			}
		}
	}
	data := stats.Float64Data(gaps)
	mn, _ := data.Min()
	mean, _ := data.Mean()
	sd, _ := data.StandardDeviation()
	return UniformityStats{Min: mn, Mean: mean, StdDev: sd}, nil
}

// Coverage is the C-metric: the fraction of other's elements weakly
// dominated by some element of f.
func (f *Front[T, V]) Coverage(other *Front[T, V]) (float64, error) {
	if other.Dimensions() != f.Dimensions() {
		return 0, index.ErrDimensionMismatch
	}
	if other.Empty() {
		return 0, index.ErrEmptyContainer
	}
	covered := 0
	for _, el := range other.Elements() {
		if f.Dominates(el.Point) {
			covered++
		}
	}
	return float64(covered) / float64(other.Size()), nil
}

// CoverageRatio is C(f, other) / C(other, f); +Inf when the denominator
// is zero.
func (f *Front[T, V]) CoverageRatio(other *Front[T, V]) (float64, error) {
	ab, err := f.Coverage(other)
	if err != nil {
		return 0, err
	}
	ba, err := other.Coverage(f)
	if err != nil {
		return 0, err
	}
	if ba == 0 {
		return math.Inf(1), nil
	}
	return ab / ba, nil
}

// Conflict is the cardinal conflict between two objectives: the summed
// absolute difference between their columns.
func (f *Front[T, V]) Conflict(a, b int) (float64, error) {
	if a < 0 || b < 0 || a >= f.Dimensions() || b >= f.Dimensions() {
		return 0, fmt.Errorf("%w: objectives (%d, %d) out of range", index.ErrInvalidArgument, a, b)
	}
	var sum float64
	f.idx.Scan(func(el *index.Element[T, V]) bool {
		sum += math.Abs(float64(el.Point[a]) - float64(el.Point[b]))
		return true
	})
	return sum, nil
}

// NormalizedConflict rescales both objectives to [0, 1] over the front's
// range before averaging the per-element differences, giving a value in
// [0, 1] regardless of the objectives' units.
func (f *Front[T, V]) NormalizedConflict(a, b int) (float64, error) {
	if a < 0 || b < 0 || a >= f.Dimensions() || b >= f.Dimensions() {
		return 0, fmt.Errorf("%w: objectives (%d, %d) out of range", index.ErrInvalidArgument, a, b)
	}
	bounds, ok := f.idx.Bounds()
	if !ok {
		return 0, index.ErrEmptyContainer
	}
	rangeOf := func(k int) float64 {
		return float64(bounds.Max[k]) - float64(bounds.Min[k])
	}
	ra, rb := rangeOf(a), rangeOf(b)
	var sum float64
	f.idx.Scan(func(el *index.Element[T, V]) bool {
		na, nb := 0.0, 0.0
		if ra > 0 {
			na = (float64(el.Point[a]) - float64(bounds.Min[a])) / ra
		}
		if rb > 0 {
			nb = (float64(el.Point[b]) - float64(bounds.Min[b])) / rb
		}
		sum += math.Abs(na - nb)
		return true
	})
	return sum / float64(f.Size()), nil
}

func (f *Front[T, V]) checkRefSet(ref []point.Point[T]) error {
	if len(ref) == 0 {
		return fmt.Errorf("%w: empty reference set", index.ErrInvalidArgument)
	}
	for _, r := range ref {
		if r.Dimensions() != f.Dimensions() {
			return fmt.Errorf("%w: reference point %s has %d dimensions, front has %d",
				index.ErrDimensionMismatch, r, r.Dimensions(), f.Dimensions())
		}
	}
	if f.Empty() {
		return index.ErrEmptyContainer
	}
	return nil
}

func minDistTo[T common.Number](p point.Point[T], ref []point.Point[T]) float64 {
	best := math.Inf(1)
	for _, r := range ref {
		best = math.Min(best, p.Distance(r))
	}
	return best
}

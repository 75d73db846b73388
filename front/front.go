// Package front implements the Pareto front: a spatial container that
// admits only mutually non-dominated points under a per-axis direction,
// and computes the standard quality indicators over them.
package front

import (
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rotblauer/pareto/common"
	"github.com/rotblauer/pareto/index"
	"github.com/rotblauer/pareto/params"
	"github.com/rotblauer/pareto/point"
)

// ErrDominated rejects an insert; the blocking element is returned
// alongside it.
var ErrDominated = errors.New("pareto: point is dominated by the front")

// indicatorCacheSize bounds the per-front cache of indicator values.
// Keys embed the mutation counter, so stale generations age out of the
// LRU instead of needing explicit invalidation.
const indicatorCacheSize = 64

// Front wraps a spatial index with the non-dominance invariant: no
// stored point dominates another under the front's direction.
type Front[T common.Number, V any] struct {
	idx   index.Index[T, V]
	dir   point.Direction
	gen   uint64
	cache *lru.Cache[string, float64]
}

// New builds an empty front over a fresh index of the given variant.
// A nil direction minimises every axis.
func New[T common.Number, V any](tag index.Tag, cfg params.IndexConfig, dir point.Direction) (*Front[T, V], error) {
	idx, err := index.New[T, V](tag, cfg)
	if err != nil {
		return nil, err
	}
	if dir == nil {
		dir = point.MinimiseAll(idx.Dimensions())
	}
	if len(dir) != idx.Dimensions() {
		return nil, fmt.Errorf("%w: direction has %d axes, index has %d",
			index.ErrDimensionMismatch, len(dir), idx.Dimensions())
	}
	cache, _ := lru.New[string, float64](indicatorCacheSize)
	return &Front[T, V]{idx: idx, dir: dir, cache: cache}, nil
}

// Insert admits p unless an existing element dominates it, in which case
// the blocking element is returned with ErrDominated. On admission,
// every element p dominates is erased first.
func (f *Front[T, V]) Insert(p point.Point[T], v V) (*index.Element[T, V], error) {
	el, _, err := f.InsertDisplaced(p, v)
	return el, err
}

// InsertDisplaced is Insert, additionally returning the elements the new
// point displaced. Archives cascade those into deeper fronts.
func (f *Front[T, V]) InsertDisplaced(p point.Point[T], v V) (*index.Element[T, V], []*index.Element[T, V], error) {
	if p.Dimensions() != f.Dimensions() {
		return nil, nil, fmt.Errorf("%w: point has %d dimensions, front has %d",
			index.ErrDimensionMismatch, p.Dimensions(), f.Dimensions())
	}
	if blocker := f.dominatorOf(p); blocker != nil {
		return blocker, nil, ErrDominated
	}
	displaced := f.dominatedElements(p)
	for _, el := range displaced {
		f.idx.Erase(el)
	}
	el, err := f.idx.Insert(p, v)
	if err != nil {
		return nil, nil, err
	}
	f.gen++
	return el, displaced, nil
}

// dominatorOf returns an element weakly dominating p, if any. The
// candidates lie in the box spanned by the front's best corner and p.
func (f *Front[T, V]) dominatorOf(p point.Point[T]) *index.Element[T, V] {
	if f.idx.Empty() {
		return nil
	}
	it := f.idx.Range(f.betterBox(p))
	for it.Next() {
		if it.Element().Point.Dominates(p, f.dir) {
			return it.Element()
		}
	}
	return nil
}

// dominatedElements collects the elements p weakly dominates.
func (f *Front[T, V]) dominatedElements(p point.Point[T]) []*index.Element[T, V] {
	if f.idx.Empty() {
		return nil
	}
	var out []*index.Element[T, V]
	it := f.idx.Range(f.worseBox(p))
	for it.Next() {
		if p.Dominates(it.Element().Point, f.dir) {
			out = append(out, it.Element())
		}
	}
	return out
}

// betterBox spans from the front's best corner to p: any dominator of p
// lies inside it.
func (f *Front[T, V]) betterBox(p point.Point[T]) index.Box[T] {
	b, _ := f.idx.Bounds()
	lo := make(point.Point[T], len(p))
	hi := make(point.Point[T], len(p))
	for k := range p {
		if f.dir.Minimises(k) {
			lo[k] = min(b.Min[k], p[k])
			hi[k] = p[k]
		} else {
			lo[k] = p[k]
			hi[k] = max(b.Max[k], p[k])
		}
	}
	return index.NewBox(lo, hi)
}

// worseBox spans from p to the front's worst corner: any element p
// dominates lies inside it.
func (f *Front[T, V]) worseBox(p point.Point[T]) index.Box[T] {
	b, _ := f.idx.Bounds()
	lo := make(point.Point[T], len(p))
	hi := make(point.Point[T], len(p))
	for k := range p {
		if f.dir.Minimises(k) {
			lo[k] = p[k]
			hi[k] = max(b.Max[k], p[k])
		} else {
			lo[k] = min(b.Min[k], p[k])
			hi[k] = p[k]
		}
	}
	return index.NewBox(lo, hi)
}

// Erase removes one element by identity.
func (f *Front[T, V]) Erase(el *index.Element[T, V]) bool {
	if f.idx.Erase(el) {
		f.gen++
		return true
	}
	return false
}

// ErasePoint removes every element at exactly p.
func (f *Front[T, V]) ErasePoint(p point.Point[T]) (int, error) {
	n, err := f.idx.ErasePoint(p)
	if n > 0 {
		f.gen++
	}
	return n, err
}

func (f *Front[T, V]) Clear() {
	f.idx.Clear()
	f.gen++
}

// Dominates reports whether some element weakly dominates p.
func (f *Front[T, V]) Dominates(p point.Point[T]) bool {
	if p.Dimensions() != f.Dimensions() {
		return false
	}
	return f.dominatorOf(p) != nil
}

// DominatedBy reports whether p weakly dominates some element.
func (f *Front[T, V]) DominatedBy(p point.Point[T]) bool {
	if p.Dimensions() != f.Dimensions() {
		return false
	}
	return len(f.dominatedElements(p)) > 0
}

// NonDominatedWith reports whether p neither dominates nor is dominated
// by any element.
func (f *Front[T, V]) NonDominatedWith(p point.Point[T]) bool {
	return !f.Dominates(p) && !f.DominatedBy(p)
}

// Ideal is the componentwise best point across the front. It usually is
// not a member of the front.
func (f *Front[T, V]) Ideal() (point.Point[T], error) {
	return f.corner(true)
}

// Nadir is the componentwise worst point across the front's non-dominated
// elements.
func (f *Front[T, V]) Nadir() (point.Point[T], error) {
	return f.corner(false)
}

// Worst is the componentwise worst point across the underlying index.
// With the front invariant intact it equals Nadir.
func (f *Front[T, V]) Worst() (point.Point[T], error) {
	return f.corner(false)
}

func (f *Front[T, V]) corner(best bool) (point.Point[T], error) {
	b, ok := f.idx.Bounds()
	if !ok {
		return nil, index.ErrEmptyContainer
	}
	p := make(point.Point[T], f.Dimensions())
	for k := range p {
		if f.dir.Minimises(k) == best {
			p[k] = b.Min[k]
		} else {
			p[k] = b.Max[k]
		}
	}
	return p, nil
}

// Query passthroughs; the front is still a spatial container.

func (f *Front[T, V]) Find(p point.Point[T]) *index.Iterator[T, V] { return f.idx.Find(p) }
func (f *Front[T, V]) Contains(p point.Point[T]) bool              { return f.idx.Contains(p) }

func (f *Front[T, V]) Nearest(p point.Point[T], k int) (*index.Iterator[T, V], error) {
	return f.idx.Nearest(p, k)
}

func (f *Front[T, V]) Range(b index.Box[T]) *index.Iterator[T, V]    { return f.idx.Range(b) }
func (f *Front[T, V]) Disjoint(b index.Box[T]) *index.Iterator[T, V] { return f.idx.Disjoint(b) }

func (f *Front[T, V]) Satisfies(preds ...index.Predicate[T, V]) *index.Iterator[T, V] {
	return f.idx.Satisfies(preds...)
}

func (f *Front[T, V]) Scan(fn func(*index.Element[T, V]) bool) { f.idx.Scan(fn) }

// Elements snapshots the front's contents.
func (f *Front[T, V]) Elements() []*index.Element[T, V] {
	out := make([]*index.Element[T, V], 0, f.Size())
	f.idx.Scan(func(el *index.Element[T, V]) bool {
		out = append(out, el)
		return true
	})
	return out
}

func (f *Front[T, V]) Bounds() (index.Box[T], bool) { return f.idx.Bounds() }
func (f *Front[T, V]) Size() int                    { return f.idx.Size() }
func (f *Front[T, V]) Empty() bool                  { return f.idx.Empty() }
func (f *Front[T, V]) Dimensions() int              { return f.idx.Dimensions() }

// Direction is the front's optimisation sense per axis.
func (f *Front[T, V]) Direction() point.Direction {
	d := make(point.Direction, len(f.dir))
	copy(d, f.dir)
	return d
}

// MutationCounter increments on every successful mutation; indicator
// caches key on it.
func (f *Front[T, V]) MutationCounter() uint64 {
	return f.gen
}

// cached memoises an indicator value under the current mutation counter.
func (f *Front[T, V]) cached(key string, compute func() (float64, error)) (float64, error) {
	ck := fmt.Sprintf("%s|%d", key, f.gen)
	if v, ok := f.cache.Get(ck); ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		return 0, err
	}
	f.cache.Add(ck, v)
	return v, nil
}

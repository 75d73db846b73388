// Package archive implements the bounded Pareto archive: a stack of
// fronts layered by dominance rank. The first front holds the best
// non-dominated set; every deeper front is dominated by the one above.
// Admission cascades displaced points downward and evicts the most
// crowded element of the deepest front once the capacity is exceeded.
package archive

import (
	"errors"
	"fmt"

	"github.com/rotblauer/pareto/common"
	"github.com/rotblauer/pareto/front"
	"github.com/rotblauer/pareto/index"
	"github.com/rotblauer/pareto/params"
	"github.com/rotblauer/pareto/point"
)

// Archive owns its fronts; all share one direction and index variant.
type Archive[T common.Number, V any] struct {
	tag      index.Tag
	cfg      params.IndexConfig
	dir      point.Direction
	capacity int
	fronts   []*front.Front[T, V]
}

// New builds an empty archive. A nil direction minimises every axis; a
// zero capacity takes the package default.
func New[T common.Number, V any](tag index.Tag, cfg params.IndexConfig, acfg params.ArchiveConfig, dir point.Direction) (*Archive[T, V], error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", index.ErrInvalidArgument, err)
	}
	if acfg.Capacity == 0 {
		acfg.Capacity = params.DefaultArchiveConfig.Capacity
	}
	if acfg.Capacity < 1 {
		return nil, fmt.Errorf("%w: archive capacity must be positive", index.ErrInvalidArgument)
	}
	if dir == nil {
		dir = point.MinimiseAll(cfg.Dimensions)
	}
	if len(dir) != cfg.Dimensions {
		return nil, fmt.Errorf("%w: direction has %d axes, archive has %d",
			index.ErrDimensionMismatch, len(dir), cfg.Dimensions)
	}
	return &Archive[T, V]{tag: tag, cfg: cfg, dir: dir, capacity: acfg.Capacity}, nil
}

func (a *Archive[T, V]) newFront() (*front.Front[T, V], error) {
	return front.New[T, V](a.tag, a.cfg, a.dir)
}

// Insert admits (p, v) into the shallowest front that does not dominate
// it, creating a new tail front if every existing one rejects it.
// Elements displaced along the way cascade into deeper fronts; they
// never move up. If the total size then exceeds the capacity, the most
// crowded elements (smallest crowding distance) of the deepest fronts are
// evicted, possibly including the point just admitted.
func (a *Archive[T, V]) Insert(p point.Point[T], v V) (*index.Element[T, V], error) {
	if p.Dimensions() != a.cfg.Dimensions {
		return nil, fmt.Errorf("%w: point has %d dimensions, archive has %d",
			index.ErrDimensionMismatch, p.Dimensions(), a.cfg.Dimensions)
	}
	for i := 0; ; i++ {
		if i == len(a.fronts) {
			f, err := a.newFront()
			if err != nil {
				return nil, err
			}
			a.fronts = append(a.fronts, f)
		}
		el, displaced, err := a.fronts[i].InsertDisplaced(p, v)
		if errors.Is(err, front.ErrDominated) {
			continue
		}
		if err != nil {
			return nil, err
		}
		a.cascade(i+1, displaced)
		a.enforceCapacity()
		return el, nil
	}
}

// cascade reinserts displaced elements one front deeper, carrying any
// further displacements along. A point displaced from front i cannot be
// dominated in front i+1 (its dominator there would transitively violate
// front i's invariant), so each element settles in the next layer.
func (a *Archive[T, V]) cascade(level int, els []*index.Element[T, V]) {
	for len(els) > 0 {
		if level == len(a.fronts) {
			f, err := a.newFront()
			if err != nil {
				return
			}
			a.fronts = append(a.fronts, f)
		}
		f := a.fronts[level]
		var next []*index.Element[T, V]
		for _, el := range els {
			_, displaced, err := f.InsertDisplaced(el.Point, el.Value)
			if errors.Is(err, front.ErrDominated) {
				next = append(next, el)
				continue
			}
			next = append(next, displaced...)
		}
		els = next
		level++
	}
	a.dropEmptyTail()
}

func (a *Archive[T, V]) enforceCapacity() {
	a.dropEmptyTail()
	for a.Size() > a.capacity {
		a.evictOne()
	}
}

// evictOne removes the element with the smallest crowding distance from
// the deepest front, breaking ties toward the most recent insertion.
func (a *Archive[T, V]) evictOne() {
	deepest := a.fronts[len(a.fronts)-1]
	els := deepest.Elements()
	crowd := crowdingDistances(els)
	victim := 0
	for i := 1; i < len(els); i++ {
		if crowd[i] < crowd[victim] ||
			(crowd[i] == crowd[victim] && els[i].Seq() > els[victim].Seq()) {
			victim = i
		}
	}
	deepest.Erase(els[victim])
	a.dropEmptyTail()
}

func (a *Archive[T, V]) dropEmptyTail() {
	for len(a.fronts) > 0 && a.fronts[len(a.fronts)-1].Empty() {
		a.fronts = a.fronts[:len(a.fronts)-1]
	}
}

// Rank is the index of the front holding el, or -1 when the archive does
// not own it.
func (a *Archive[T, V]) Rank(el *index.Element[T, V]) int {
	for i, f := range a.fronts {
		found := false
		f.Scan(func(e *index.Element[T, V]) bool {
			if e == el {
				found = true
				return false
			}
			return true
		})
		if found {
			return i
		}
	}
	return -1
}

// Scan visits the union view front by front, best rank first.
func (a *Archive[T, V]) Scan(fn func(el *index.Element[T, V], rank int) bool) {
	for i, f := range a.fronts {
		stop := false
		f.Scan(func(el *index.Element[T, V]) bool {
			if !fn(el, i) {
				stop = true
				return false
			}
			return true
		})
		if stop {
			return
		}
	}
}

// Dominates reports whether any archived element weakly dominates p.
func (a *Archive[T, V]) Dominates(p point.Point[T]) bool {
	for _, f := range a.fronts {
		if f.Dominates(p) {
			return true
		}
	}
	return false
}

// Contains reports whether any front stores the point.
func (a *Archive[T, V]) Contains(p point.Point[T]) bool {
	for _, f := range a.fronts {
		if f.Contains(p) {
			return true
		}
	}
	return false
}

// Front returns the i-th layer; callers must not mutate it directly.
func (a *Archive[T, V]) Front(i int) *front.Front[T, V] {
	return a.fronts[i]
}

// Fronts is a snapshot of the layer stack.
func (a *Archive[T, V]) Fronts() []*front.Front[T, V] {
	out := make([]*front.Front[T, V], len(a.fronts))
	copy(out, a.fronts)
	return out
}

func (a *Archive[T, V]) Layers() int { return len(a.fronts) }

func (a *Archive[T, V]) Size() int {
	n := 0
	for _, f := range a.fronts {
		n += f.Size()
	}
	return n
}

func (a *Archive[T, V]) Empty() bool    { return a.Size() == 0 }
func (a *Archive[T, V]) Capacity() int  { return a.capacity }
func (a *Archive[T, V]) Dimensions() int { return a.cfg.Dimensions }

func (a *Archive[T, V]) Direction() point.Direction {
	d := make(point.Direction, len(a.dir))
	copy(d, a.dir)
	return d
}

func (a *Archive[T, V]) Clear() {
	a.fronts = nil
}

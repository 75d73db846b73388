package index

import (
	"github.com/rotblauer/pareto/common"
	"github.com/rotblauer/pareto/params"
	"github.com/rotblauer/pareto/point"
)

// linearIndex is the flat-scan fallback. Every query is O(n). It doubles
// as the correctness oracle the tree variants are tested against, and it
// wins outright on the few-element fronts optimisers usually carry.
type linearIndex[T common.Number, V any] struct {
	base
	els []*Element[T, V]
}

func newLinear[T common.Number, V any](cfg params.IndexConfig) *linearIndex[T, V] {
	return &linearIndex[T, V]{base: base{dims: cfg.Dimensions}}
}

func (x *linearIndex[T, V]) Insert(p point.Point[T], v V) (*Element[T, V], error) {
	if err := checkPoint(x.dims, p); err != nil {
		return nil, err
	}
	el := &Element[T, V]{Point: p.Clone(), Value: v, seq: x.nextSeq()}
	x.els = append(x.els, el)
	x.size++
	x.bump()
	return el, nil
}

func (x *linearIndex[T, V]) BulkLoad(entries []Entry[T, V]) error {
	for _, e := range entries {
		if err := checkPoint(x.dims, e.Point); err != nil {
			return err
		}
	}
	x.Clear()
	x.els = make([]*Element[T, V], 0, len(entries))
	for _, e := range entries {
		x.els = append(x.els, &Element[T, V]{Point: e.Point.Clone(), Value: e.Value, seq: x.nextSeq()})
	}
	x.size = len(x.els)
	return nil
}

func (x *linearIndex[T, V]) Erase(el *Element[T, V]) bool {
	for i, e := range x.els {
		if e == el {
			x.els = append(x.els[:i], x.els[i+1:]...)
			x.size--
			x.bump()
			return true
		}
	}
	return false
}

func (x *linearIndex[T, V]) ErasePoint(p point.Point[T]) (int, error) {
	if err := checkPoint(x.dims, p); err != nil {
		return 0, err
	}
	kept := x.els[:0]
	n := 0
	for _, e := range x.els {
		if e.Point.Equal(p) {
			n++
			continue
		}
		kept = append(kept, e)
	}
	x.els = kept
	if n > 0 {
		x.size -= n
		x.bump()
	}
	return n, nil
}

func (x *linearIndex[T, V]) Find(p point.Point[T]) *Iterator[T, V] {
	if err := checkPoint(x.dims, p); err != nil {
		return errIterator[T, V](err)
	}
	return x.lazyScan(func(el *Element[T, V]) bool { return el.Point.Equal(p) })
}

func (x *linearIndex[T, V]) Contains(p point.Point[T]) bool {
	if checkPoint(x.dims, p) != nil {
		return false
	}
	for _, e := range x.els {
		if e.Point.Equal(p) {
			return true
		}
	}
	return false
}

func (x *linearIndex[T, V]) Nearest(p point.Point[T], k int) (*Iterator[T, V], error) {
	if err := checkPoint(x.dims, p); err != nil {
		return nil, err
	}
	if k < 1 {
		return nil, ErrInvalidArgument
	}
	if x.size == 0 {
		return nil, ErrEmptyContainer
	}
	// A bounded sorted buffer beats a heap for the k this sees.
	best := common.NewBestK(k, func(a, b *Element[T, V]) bool {
		da, db := a.Point.Distance(p), b.Point.Distance(p)
		if da != db {
			return da < db
		}
		return a.seq < b.seq
	})
	for _, e := range x.els {
		best.Add(e)
	}
	return newIterator(x, sliceSource(best.Items())), nil
}

func (x *linearIndex[T, V]) Range(b Box[T]) *Iterator[T, V] {
	if err := checkPoint(x.dims, b.Min); err != nil {
		return errIterator[T, V](err)
	}
	return x.lazyScan(func(el *Element[T, V]) bool { return b.Contains(el.Point) })
}

func (x *linearIndex[T, V]) Disjoint(b Box[T]) *Iterator[T, V] {
	if err := checkPoint(x.dims, b.Min); err != nil {
		return errIterator[T, V](err)
	}
	return x.lazyScan(func(el *Element[T, V]) bool { return !b.Contains(el.Point) })
}

func (x *linearIndex[T, V]) Intersects(b Box[T]) bool {
	if checkPoint(x.dims, b.Min) != nil {
		return false
	}
	for _, e := range x.els {
		if b.Contains(e.Point) {
			return true
		}
	}
	return false
}

func (x *linearIndex[T, V]) Satisfies(preds ...Predicate[T, V]) *Iterator[T, V] {
	return x.lazyScan(func(el *Element[T, V]) bool { return matchesAll(el, preds) })
}

func (x *linearIndex[T, V]) Scan(fn func(*Element[T, V]) bool) {
	for _, e := range x.els {
		if !fn(e) {
			return
		}
	}
}

func (x *linearIndex[T, V]) Bounds() (Box[T], bool) {
	if x.size == 0 {
		return Box[T]{}, false
	}
	b := BoxOf(x.els[0].Point)
	for _, e := range x.els[1:] {
		b = b.ExtendPoint(e.Point)
	}
	return b, true
}

func (x *linearIndex[T, V]) Clear() {
	x.els = nil
	x.size = 0
	x.bump()
}

func (x *linearIndex[T, V]) lazyScan(match func(*Element[T, V]) bool) *Iterator[T, V] {
	i := 0
	return newIterator(x, func() *Element[T, V] {
		for i < len(x.els) {
			el := x.els[i]
			i++
			if match(el) {
				return el
			}
		}
		return nil
	})
}

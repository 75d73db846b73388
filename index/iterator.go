package index

import "github.com/rotblauer/pareto/common"

// Iterator lazily yields query results in the scanner idiom:
//
//	it := idx.Range(box)
//	for it.Next() {
//	    el := it.Element()
//	    ...
//	}
//	if err := it.Err(); err != nil { ... }
//
// The iterator borrows the index. Any mutation of the index invalidates
// it; the next advance then fails with ErrIteratorInvalidated.
type Iterator[T common.Number, V any] struct {
	src generationer
	gen uint64
	// pull returns the next element, or nil when exhausted. It is only
	// invoked while the generation still matches, so traversal state may
	// reference live index nodes.
	pull func() *Element[T, V]

	cur *Element[T, V]
	err error
}

type generationer interface {
	Generation() uint64
}

func newIterator[T common.Number, V any](src generationer, pull func() *Element[T, V]) *Iterator[T, V] {
	return &Iterator[T, V]{src: src, gen: src.Generation(), pull: pull}
}

func errIterator[T common.Number, V any](err error) *Iterator[T, V] {
	return &Iterator[T, V]{err: err}
}

func emptyIterator[T common.Number, V any]() *Iterator[T, V] {
	return &Iterator[T, V]{}
}

// Next advances to the next element. It returns false at exhaustion or
// on error; check Err to distinguish.
func (it *Iterator[T, V]) Next() bool {
	if it.err != nil || it.pull == nil {
		it.cur = nil
		return false
	}
	if it.src.Generation() != it.gen {
		it.cur = nil
		it.err = ErrIteratorInvalidated
		return false
	}
	it.cur = it.pull()
	if it.cur == nil {
		it.pull = nil
		return false
	}
	return true
}

// Element is the element at the current position.
func (it *Iterator[T, V]) Element() *Element[T, V] {
	return it.cur
}

func (it *Iterator[T, V]) Err() error {
	return it.err
}

// Slice drains the iterator. The error, if any, is surfaced by Err.
func (it *Iterator[T, V]) Slice() []*Element[T, V] {
	var out []*Element[T, V]
	for it.Next() {
		out = append(out, it.cur)
	}
	return out
}

// sliceSource pulls from a prepared slice; the cheap path for indices
// whose traversal already materialised its results.
func sliceSource[T common.Number, V any](els []*Element[T, V]) func() *Element[T, V] {
	i := 0
	return func() *Element[T, V] {
		if i >= len(els) {
			return nil
		}
		el := els[i]
		i++
		return el
	}
}

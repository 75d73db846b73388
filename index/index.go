// Package index implements the interchangeable spatial indices the
// fronts and archives delegate storage to: a linear scan, an R-tree, an
// R*-tree, a kd-tree, and a quadtree, all behind one contract. Elements
// are (point, value) pairs; duplicates of the same point are permitted.
//
// Indices are not safe for concurrent mutation. Readers may share an
// index only while nothing mutates it; every mutation bumps a generation
// counter and invalidates all outstanding iterators.
package index

import (
	"errors"
	"fmt"

	"github.com/rotblauer/pareto/common"
	"github.com/rotblauer/pareto/params"
	"github.com/rotblauer/pareto/point"
)

var (
	ErrDimensionMismatch   = errors.New("pareto: dimension mismatch")
	ErrInvalidArgument     = errors.New("pareto: invalid argument")
	ErrEmptyContainer      = errors.New("pareto: empty container")
	ErrIteratorInvalidated = errors.New("pareto: iterator invalidated by mutation")
)

// Tag selects an index implementation.
type Tag int

const (
	Linear Tag = iota
	RTree
	RStarTree
	KDTree
	QuadTree
)

func (t Tag) String() string {
	switch t {
	case Linear:
		return "linear"
	case RTree:
		return "rtree"
	case RStarTree:
		return "rstartree"
	case KDTree:
		return "kdtree"
	case QuadTree:
		return "quadtree"
	}
	return fmt.Sprintf("tag(%d)", int(t))
}

// Index is the uniform contract all variants expose. Query iterators are
// lazy and fail with ErrIteratorInvalidated once the index mutates.
type Index[T common.Number, V any] interface {
	// Insert adds one element, supporting duplicate points.
	Insert(p point.Point[T], v V) (*Element[T, V], error)

	// BulkLoad replaces the index contents with the given entries.
	// Expected O(n log n).
	BulkLoad(entries []Entry[T, V]) error

	// Erase removes one previously returned element by identity.
	Erase(el *Element[T, V]) bool

	// ErasePoint removes every element at exactly p, returning the count.
	ErasePoint(p point.Point[T]) (int, error)

	// Find yields every element whose point equals p exactly.
	Find(p point.Point[T]) *Iterator[T, V]

	Contains(p point.Point[T]) bool

	// Nearest yields the k nearest elements to p by Euclidean distance,
	// in increasing distance, ties broken by insertion order.
	Nearest(p point.Point[T], k int) (*Iterator[T, V], error)

	// Range yields elements whose point lies within the closed box b.
	Range(b Box[T]) *Iterator[T, V]

	// Disjoint yields elements whose point lies outside the closed box b.
	Disjoint(b Box[T]) *Iterator[T, V]

	// Intersects reports whether any stored point lies within b.
	Intersects(b Box[T]) bool

	// Satisfies yields elements passing the conjunction of predicates.
	Satisfies(preds ...Predicate[T, V]) *Iterator[T, V]

	// Scan visits every element until fn returns false.
	Scan(fn func(*Element[T, V]) bool)

	// Bounds is the minimum enclosing box of all stored points.
	Bounds() (Box[T], bool)

	Size() int
	Dimensions() int
	Empty() bool
	Clear()

	// Generation increments on every mutation.
	Generation() uint64
}

// New constructs an index variant. The config is defaulted and validated
// here so every front and archive goes through one gate.
func New[T common.Number, V any](tag Tag, cfg params.IndexConfig) (Index[T, V], error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	switch tag {
	case Linear:
		return newLinear[T, V](cfg), nil
	case RTree:
		return newRTree[T, V](cfg, false), nil
	case RStarTree:
		return newRTree[T, V](cfg, true), nil
	case KDTree:
		return newKDTree[T, V](cfg), nil
	case QuadTree:
		q, err := newQuadTree[T, V](cfg)
		if err != nil {
			return nil, err
		}
		return q, nil
	}
	return nil, fmt.Errorf("%w: unknown index tag %d", ErrInvalidArgument, int(tag))
}

// base carries the bookkeeping every variant shares.
type base struct {
	dims int
	size int
	gen  uint64
	seq  uint64
}

func (b *base) Size() int        { return b.size }
func (b *base) Dimensions() int  { return b.dims }
func (b *base) Empty() bool      { return b.size == 0 }
func (b *base) Generation() uint64 { return b.gen }

func (b *base) bump() { b.gen++ }

func (b *base) nextSeq() uint64 {
	s := b.seq
	b.seq++
	return s
}

// checkPoint validates a query point's dimension against the index's.
func checkPoint[T common.Number](dims int, p point.Point[T]) error {
	if p.Dimensions() != dims {
		return fmt.Errorf("%w: point has %d dimensions, index has %d",
			ErrDimensionMismatch, p.Dimensions(), dims)
	}
	return nil
}

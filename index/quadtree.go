package index

import (
	"fmt"
	"math"

	"github.com/rotblauer/pareto/common"
	"github.com/rotblauer/pareto/params"
	"github.com/rotblauer/pareto/point"
)

// quadtreeIndex subdivides space 2^d ways around a pivot point: child k
// holds the points whose quadrant index relative to the pivot is k. On
// incremental insertion the pivot of a node is the first point stored in
// it; bulk loads pivot on the centroid. Children materialise lazily in a
// map, so high-d sparsity costs nothing, but the quadrant bitmask caps
// the dimension.
type quadtreeIndex[T common.Number, V any] struct {
	base
	cfg  params.IndexConfig
	root *qnode[T, V]
}

// maxQuadDims bounds the quadrant bitmask to the int width.
const maxQuadDims = 62

type qnode[T common.Number, V any] struct {
	// Leaf nodes bucket elements up to the leaf capacity. After a split
	// the bucket retains only elements equal to the pivot; everything
	// else lives in the children.
	pivot    point.Point[T]
	els      []*Element[T, V]
	children map[int]*qnode[T, V]
}

func newQuadTree[T common.Number, V any](cfg params.IndexConfig) (*quadtreeIndex[T, V], error) {
	if cfg.Dimensions > maxQuadDims {
		return nil, fmt.Errorf("%w: quadtree supports at most %d dimensions, got %d",
			ErrInvalidArgument, maxQuadDims, cfg.Dimensions)
	}
	return &quadtreeIndex[T, V]{base: base{dims: cfg.Dimensions}, cfg: cfg}, nil
}

func (n *qnode[T, V]) isLeaf() bool { return n.children == nil }

func (x *quadtreeIndex[T, V]) Insert(p point.Point[T], v V) (*Element[T, V], error) {
	if err := checkPoint(x.dims, p); err != nil {
		return nil, err
	}
	el := &Element[T, V]{Point: p.Clone(), Value: v, seq: x.nextSeq()}
	if x.root == nil {
		x.root = &qnode[T, V]{pivot: el.Point}
	}
	n := x.root
	for {
		if n.isLeaf() {
			n.els = append(n.els, el)
			if len(n.els) > x.cfg.LeafCapacity {
				x.split(n)
			}
			break
		}
		if el.Point.Equal(n.pivot) {
			n.els = append(n.els, el)
			break
		}
		q := n.pivot.Quadrant(el.Point)
		c, ok := n.children[q]
		if !ok {
			c = &qnode[T, V]{pivot: el.Point}
			n.children[q] = c
		}
		n = c
	}
	x.size++
	x.bump()
	return el, nil
}

// split turns a leaf into an internal node pivoted on its first element,
// redistributing the bucket. Elements equal to the pivot stay behind, so
// duplicate-heavy loads cannot split forever.
func (x *quadtreeIndex[T, V]) split(n *qnode[T, V]) {
	els := n.els
	n.pivot = els[0].Point
	n.els = nil
	n.children = map[int]*qnode[T, V]{}
	for _, el := range els {
		if el.Point.Equal(n.pivot) {
			n.els = append(n.els, el)
			continue
		}
		q := n.pivot.Quadrant(el.Point)
		c, ok := n.children[q]
		if !ok {
			c = &qnode[T, V]{pivot: el.Point}
			n.children[q] = c
		}
		c.els = append(c.els, el)
	}
	// A redistributed child may itself be over capacity.
	for _, c := range n.children {
		if len(c.els) > x.cfg.LeafCapacity {
			x.split(c)
		}
	}
}

func (x *quadtreeIndex[T, V]) BulkLoad(entries []Entry[T, V]) error {
	for _, e := range entries {
		if err := checkPoint(x.dims, e.Point); err != nil {
			return err
		}
	}
	x.Clear()
	els := make([]*Element[T, V], len(entries))
	for i, e := range entries {
		els[i] = &Element[T, V]{Point: e.Point.Clone(), Value: e.Value, seq: x.nextSeq()}
	}
	x.root = buildQuad(els, x.cfg.LeafCapacity, x.dims)
	x.size = len(els)
	return nil
}

// buildQuad subdivides on the centroid. All-equal buckets stay leaves
// whatever their size; otherwise the centroid always separates at least
// two quadrants.
func buildQuad[T common.Number, V any](els []*Element[T, V], leafCap, dims int) *qnode[T, V] {
	if len(els) == 0 {
		return nil
	}
	if len(els) <= leafCap || allEqualPoints(els) {
		return &qnode[T, V]{pivot: els[0].Point, els: els}
	}
	pivot := centroidOf(els, dims)
	n := &qnode[T, V]{pivot: pivot, children: map[int]*qnode[T, V]{}}
	byQuad := map[int][]*Element[T, V]{}
	for _, el := range els {
		if el.Point.Equal(pivot) {
			n.els = append(n.els, el)
			continue
		}
		q := pivot.Quadrant(el.Point)
		byQuad[q] = append(byQuad[q], el)
	}
	if len(n.els) == 0 && len(byQuad) == 1 {
		// Degenerate centroid (rounding pushed it onto the bucket's
		// edge): keep the bucket whole rather than recurse in place.
		for _, group := range byQuad {
			return &qnode[T, V]{pivot: group[0].Point, els: group}
		}
	}
	for q, group := range byQuad {
		n.children[q] = buildQuad(group, leafCap, dims)
	}
	return n
}

func allEqualPoints[T common.Number, V any](els []*Element[T, V]) bool {
	for _, el := range els[1:] {
		if !el.Point.Equal(els[0].Point) {
			return false
		}
	}
	return true
}

func centroidOf[T common.Number, V any](els []*Element[T, V], dims int) point.Point[T] {
	sums := make([]float64, dims)
	for _, el := range els {
		for i, v := range el.Point {
			sums[i] += float64(v)
		}
	}
	c := make(point.Point[T], dims)
	for i := range c {
		c[i] = T(sums[i] / float64(len(els)))
	}
	return c
}

func (x *quadtreeIndex[T, V]) Erase(el *Element[T, V]) bool {
	n := x.locate(el)
	if n == nil {
		return false
	}
	for i, e := range n.els {
		if e == el {
			n.els = append(n.els[:i], n.els[i+1:]...)
			x.size--
			x.bump()
			if x.size == 0 {
				x.root = nil
			}
			return true
		}
	}
	return false
}

// locate descends by pivot equality and quadrant to the node that would
// bucket el.
func (x *quadtreeIndex[T, V]) locate(el *Element[T, V]) *qnode[T, V] {
	n := x.root
	for n != nil {
		if n.isLeaf() || el.Point.Equal(n.pivot) {
			return n
		}
		n = n.children[n.pivot.Quadrant(el.Point)]
	}
	return nil
}

func (x *quadtreeIndex[T, V]) ErasePoint(p point.Point[T]) (int, error) {
	if err := checkPoint(x.dims, p); err != nil {
		return 0, err
	}
	hits := x.Find(p).Slice()
	for _, el := range hits {
		x.Erase(el)
	}
	return len(hits), nil
}

func (x *quadtreeIndex[T, V]) Find(p point.Point[T]) *Iterator[T, V] {
	if err := checkPoint(x.dims, p); err != nil {
		return errIterator[T, V](err)
	}
	return x.rangeIter(BoxOf(p))
}

func (x *quadtreeIndex[T, V]) Contains(p point.Point[T]) bool {
	return x.Find(p).Next()
}

func (x *quadtreeIndex[T, V]) Nearest(p point.Point[T], k int) (*Iterator[T, V], error) {
	if err := checkPoint(x.dims, p); err != nil {
		return nil, err
	}
	if k < 1 {
		return nil, ErrInvalidArgument
	}
	if x.size == 0 {
		return nil, ErrEmptyContainer
	}
	frontier := &nnFrontier[T, V]{}
	root := quadRegion[T, V]{node: x.root, min: infRegion(x.dims, -1), max: infRegion(x.dims, 1)}
	frontier.pushNode(0, root)
	pull := nearestSource(k, frontier, func(node any, h *nnFrontier[T, V]) {
		r := node.(quadRegion[T, V])
		n := r.node
		for _, el := range n.els {
			h.pushElem(el.Point.Distance(p), el)
		}
		if n.isLeaf() {
			return
		}
		for q, c := range n.children {
			cr := quadRegion[T, V]{node: c, min: clipRegion(r.min, n.pivot, q, false), max: clipRegion(r.max, n.pivot, q, true)}
			h.pushNode(regionMinDist(p, cr.min, cr.max), cr)
		}
	})
	return newIterator(x, pull), nil
}

type quadRegion[T common.Number, V any] struct {
	node     *qnode[T, V]
	min, max []float64
}

// clipRegion narrows a parent bound by the pivot along every axis the
// quadrant index constrains. Bit k set means the child holds points with
// coordinate <= pivot[k]; clear means strictly greater (closed here,
// which only loosens the bound).
func clipRegion[T common.Number](bound []float64, pivot point.Point[T], quad int, upper bool) []float64 {
	out := make([]float64, len(bound))
	copy(out, bound)
	for k := range pivot {
		below := quad&(1<<k) != 0
		if upper && below {
			out[k] = math.Min(out[k], float64(pivot[k]))
		}
		if !upper && !below {
			out[k] = math.Max(out[k], float64(pivot[k]))
		}
	}
	return out
}

func (x *quadtreeIndex[T, V]) Range(b Box[T]) *Iterator[T, V] {
	if err := checkPoint(x.dims, b.Min); err != nil {
		return errIterator[T, V](err)
	}
	return x.rangeIter(b)
}

// rangeIter prunes children by the quadrant constraint their index
// encodes at this node: bit k set restricts to coordinates <= pivot[k],
// clear to coordinates > pivot[k].
func (x *quadtreeIndex[T, V]) rangeIter(b Box[T]) *Iterator[T, V] {
	var stack []*qnode[T, V]
	if x.root != nil {
		stack = append(stack, x.root)
	}
	var buf []*Element[T, V]
	return newIterator(x, func() *Element[T, V] {
		for {
			if len(buf) > 0 {
				el := buf[0]
				buf = buf[1:]
				return el
			}
			if len(stack) == 0 {
				return nil
			}
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, el := range n.els {
				if b.Contains(el.Point) {
					buf = append(buf, el)
				}
			}
			if n.isLeaf() {
				continue
			}
		childLoop:
			for q, c := range n.children {
				for k := 0; k < x.dims; k++ {
					if q&(1<<k) != 0 {
						if float64(b.Min[k]) > float64(n.pivot[k]) {
							continue childLoop
						}
					} else {
						if b.Max[k] <= n.pivot[k] {
							continue childLoop
						}
					}
				}
				stack = append(stack, c)
			}
		}
	})
}

func (x *quadtreeIndex[T, V]) Disjoint(b Box[T]) *Iterator[T, V] {
	if err := checkPoint(x.dims, b.Min); err != nil {
		return errIterator[T, V](err)
	}
	return x.filterIter(func(el *Element[T, V]) bool { return !b.Contains(el.Point) })
}

func (x *quadtreeIndex[T, V]) Intersects(b Box[T]) bool {
	return x.Range(b).Next()
}

func (x *quadtreeIndex[T, V]) Satisfies(preds ...Predicate[T, V]) *Iterator[T, V] {
	return x.filterIter(func(el *Element[T, V]) bool { return matchesAll(el, preds) })
}

func (x *quadtreeIndex[T, V]) filterIter(match func(*Element[T, V]) bool) *Iterator[T, V] {
	var stack []*qnode[T, V]
	if x.root != nil {
		stack = append(stack, x.root)
	}
	var buf []*Element[T, V]
	return newIterator(x, func() *Element[T, V] {
		for {
			if len(buf) > 0 {
				el := buf[0]
				buf = buf[1:]
				return el
			}
			if len(stack) == 0 {
				return nil
			}
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, el := range n.els {
				if match(el) {
					buf = append(buf, el)
				}
			}
			for _, c := range n.children {
				stack = append(stack, c)
			}
		}
	})
}

func (x *quadtreeIndex[T, V]) Scan(fn func(*Element[T, V]) bool) {
	var walk func(n *qnode[T, V]) bool
	walk = func(n *qnode[T, V]) bool {
		if n == nil {
			return true
		}
		for _, el := range n.els {
			if !fn(el) {
				return false
			}
		}
		for _, c := range n.children {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(x.root)
}

func (x *quadtreeIndex[T, V]) Bounds() (Box[T], bool) {
	if x.size == 0 {
		return Box[T]{}, false
	}
	var b Box[T]
	first := true
	x.Scan(func(el *Element[T, V]) bool {
		if first {
			b = BoxOf(el.Point)
			first = false
		} else {
			b = b.ExtendPoint(el.Point)
		}
		return true
	})
	return b, true
}

func (x *quadtreeIndex[T, V]) Clear() {
	x.root = nil
	x.size = 0
	x.bump()
}

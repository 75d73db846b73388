package index

import (
	"log/slog"
	"math"
	"sort"

	"github.com/rotblauer/pareto/common"
	"github.com/rotblauer/pareto/params"
	"github.com/rotblauer/pareto/point"
)

// kdtreeIndex is a binary space-partitioning tree: node i splits on axis
// depth mod d. Erase tombstones in place and rebuilds on the median once
// half the tree is dead, which keeps erase cheap without letting lookups
// degrade past 2x.
type kdtreeIndex[T common.Number, V any] struct {
	base
	cfg   params.IndexConfig
	root  *kdnode[T, V]
	tombs int
}

type kdnode[T common.Number, V any] struct {
	el          *Element[T, V]
	axis        int
	left, right *kdnode[T, V]
	dead        bool
}

func newKDTree[T common.Number, V any](cfg params.IndexConfig) *kdtreeIndex[T, V] {
	return &kdtreeIndex[T, V]{base: base{dims: cfg.Dimensions}, cfg: cfg}
}

func (x *kdtreeIndex[T, V]) Insert(p point.Point[T], v V) (*Element[T, V], error) {
	if err := checkPoint(x.dims, p); err != nil {
		return nil, err
	}
	el := &Element[T, V]{Point: p.Clone(), Value: v, seq: x.nextSeq()}
	if x.root == nil {
		x.root = &kdnode[T, V]{el: el}
	} else {
		n := x.root
		for {
			// Equal coordinates descend left. The median build may place
			// them on either side, so searches check both on ties.
			if el.Point[n.axis] <= n.el.Point[n.axis] {
				if n.left == nil {
					n.left = &kdnode[T, V]{el: el, axis: (n.axis + 1) % x.dims}
					break
				}
				n = n.left
			} else {
				if n.right == nil {
					n.right = &kdnode[T, V]{el: el, axis: (n.axis + 1) % x.dims}
					break
				}
				n = n.right
			}
		}
	}
	x.size++
	x.bump()
	return el, nil
}

func (x *kdtreeIndex[T, V]) BulkLoad(entries []Entry[T, V]) error {
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
	x.root = buildKD(els, 0, x.dims)
	x.size = len(els)
	return nil
}

// buildKD constructs a median-balanced subtree. Ties sort by insertion
// sequence so rebuilds are deterministic.
func buildKD[T common.Number, V any](els []*Element[T, V], depth, dims int) *kdnode[T, V] {
	if len(els) == 0 {
		return nil
	}
	axis := depth % dims
	sort.SliceStable(els, func(i, j int) bool {
		if els[i].Point[axis] != els[j].Point[axis] {
			return els[i].Point[axis] < els[j].Point[axis]
		}
		return els[i].seq < els[j].seq
	})
	mid := len(els) / 2
	return &kdnode[T, V]{
		el:    els[mid],
		axis:  axis,
		left:  buildKD(els[:mid], depth+1, dims),
		right: buildKD(els[mid+1:], depth+1, dims),
	}
}

func (x *kdtreeIndex[T, V]) Erase(el *Element[T, V]) bool {
	n := findKD(x.root, el)
	if n == nil || n.dead {
		return false
	}
	n.dead = true
	x.tombs++
	x.size--
	x.bump()
	x.maybeRebuild()
	return true
}

func findKD[T common.Number, V any](n *kdnode[T, V], el *Element[T, V]) *kdnode[T, V] {
	if n == nil {
		return nil
	}
	if n.el == el {
		return n
	}
	c := n.el.Point[n.axis]
	// Equal coordinates may sit on either side after a rebuild.
	if el.Point[n.axis] <= c {
		if found := findKD(n.left, el); found != nil {
			return found
		}
	}
	if el.Point[n.axis] >= c {
		return findKD(n.right, el)
	}
	return nil
}

// maybeRebuild compacts the tree once tombstones are at least as many as
// live nodes.
func (x *kdtreeIndex[T, V]) maybeRebuild() {
	if x.tombs < x.size || x.tombs == 0 {
		return
	}
	els := make([]*Element[T, V], 0, x.size)
	x.Scan(func(el *Element[T, V]) bool {
		els = append(els, el)
		return true
	})
	x.root = buildKD(els, 0, x.dims)
	x.tombs = 0
	slog.Debug("Rebuilt kd-tree", "live", len(els))
}

func (x *kdtreeIndex[T, V]) ErasePoint(p point.Point[T]) (int, error) {
	if err := checkPoint(x.dims, p); err != nil {
		return 0, err
	}
	hits := x.Find(p).Slice()
	for _, el := range hits {
		x.Erase(el)
	}
	return len(hits), nil
}

func (x *kdtreeIndex[T, V]) Find(p point.Point[T]) *Iterator[T, V] {
	if err := checkPoint(x.dims, p); err != nil {
		return errIterator[T, V](err)
	}
	return x.rangeIter(BoxOf(p))
}

func (x *kdtreeIndex[T, V]) Contains(p point.Point[T]) bool {
	return x.Find(p).Next()
}

func (x *kdtreeIndex[T, V]) Nearest(p point.Point[T], k int) (*Iterator[T, V], error) {
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
	root := kdRegion[T, V]{node: x.root, min: infRegion(x.dims, -1), max: infRegion(x.dims, 1)}
	frontier.pushNode(0, root)
	pull := nearestSource(k, frontier, func(node any, h *nnFrontier[T, V]) {
		r := node.(kdRegion[T, V])
		n := r.node
		if !n.dead {
			h.pushElem(n.el.Point.Distance(p), n.el)
		}
		c := float64(n.el.Point[n.axis])
		if n.left != nil {
			left := kdRegion[T, V]{node: n.left, min: r.min, max: clipped(r.max, n.axis, c)}
			h.pushNode(regionMinDist(p, left.min, left.max), left)
		}
		if n.right != nil {
			right := kdRegion[T, V]{node: n.right, min: clipped(r.min, n.axis, c), max: r.max}
			h.pushNode(regionMinDist(p, right.min, right.max), right)
		}
	})
	return newIterator(x, pull), nil
}

// kdRegion pairs a subtree with the float bounds the splitting planes
// above it impose.
type kdRegion[T common.Number, V any] struct {
	node     *kdnode[T, V]
	min, max []float64
}

func infRegion(dims, sign int) []float64 {
	r := make([]float64, dims)
	for i := range r {
		r[i] = math.Inf(sign)
	}
	return r
}

func clipped(bound []float64, axis int, c float64) []float64 {
	out := make([]float64, len(bound))
	copy(out, bound)
	out[axis] = c
	return out
}

func regionMinDist[T common.Number](p point.Point[T], lo, hi []float64) float64 {
	var sum float64
	for i := range p {
		v := common.Clamp(float64(p[i]), lo[i], hi[i])
		sum += common.Sq(float64(p[i]) - v)
	}
	return math.Sqrt(sum)
}

func (x *kdtreeIndex[T, V]) Range(b Box[T]) *Iterator[T, V] {
	if err := checkPoint(x.dims, b.Min); err != nil {
		return errIterator[T, V](err)
	}
	return x.rangeIter(b)
}

// rangeIter prunes by the splitting plane: the left subtree holds
// coordinates <= the split, the right >= it (rebuild may place equal
// coordinates on either side).
func (x *kdtreeIndex[T, V]) rangeIter(b Box[T]) *Iterator[T, V] {
	var stack []*kdnode[T, V]
	if x.root != nil {
		stack = append(stack, x.root)
	}
	return newIterator(x, func() *Element[T, V] {
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			c := n.el.Point[n.axis]
			if n.left != nil && b.Min[n.axis] <= c {
				stack = append(stack, n.left)
			}
			if n.right != nil && b.Max[n.axis] >= c {
				stack = append(stack, n.right)
			}
			if !n.dead && b.Contains(n.el.Point) {
				return n.el
			}
		}
		return nil
	})
}

func (x *kdtreeIndex[T, V]) Disjoint(b Box[T]) *Iterator[T, V] {
	if err := checkPoint(x.dims, b.Min); err != nil {
		return errIterator[T, V](err)
	}
	return x.filterIter(func(el *Element[T, V]) bool { return !b.Contains(el.Point) })
}

func (x *kdtreeIndex[T, V]) Intersects(b Box[T]) bool {
	return x.Range(b).Next()
}

func (x *kdtreeIndex[T, V]) Satisfies(preds ...Predicate[T, V]) *Iterator[T, V] {
	return x.filterIter(func(el *Element[T, V]) bool { return matchesAll(el, preds) })
}

func (x *kdtreeIndex[T, V]) filterIter(match func(*Element[T, V]) bool) *Iterator[T, V] {
	var stack []*kdnode[T, V]
	if x.root != nil {
		stack = append(stack, x.root)
	}
	return newIterator(x, func() *Element[T, V] {
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if n.left != nil {
				stack = append(stack, n.left)
			}
			if n.right != nil {
				stack = append(stack, n.right)
			}
			if !n.dead && match(n.el) {
				return n.el
			}
		}
		return nil
	})
}

func (x *kdtreeIndex[T, V]) Scan(fn func(*Element[T, V]) bool) {
	var walk func(n *kdnode[T, V]) bool
	walk = func(n *kdnode[T, V]) bool {
		if n == nil {
			return true
		}
		if !n.dead && !fn(n.el) {
			return false
		}
		return walk(n.left) && walk(n.right)
	}
	walk(x.root)
}

func (x *kdtreeIndex[T, V]) Bounds() (Box[T], bool) {
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

func (x *kdtreeIndex[T, V]) Clear() {
	x.root = nil
	x.size = 0
	x.tombs = 0
	x.bump()
}

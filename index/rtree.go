package index

import (
	"sort"

	"github.com/rotblauer/pareto/common"
	"github.com/rotblauer/pareto/params"
	"github.com/rotblauer/pareto/point"
)

// rtreeIndex is a height-balanced bounding-box tree after Guttman, with
// the quadratic split. With star=true it runs the R*-tree refinements
// instead: overlap-minimising choose-subtree at the leaf level, forced
// reinsertion on first overflow per level, and the margin-driven split.
type rtreeIndex[T common.Number, V any] struct {
	base
	cfg  params.IndexConfig
	root *rnode[T, V]
	star bool
}

// rnode is a tree node. Leaves (level 0) hold elements; internal nodes
// hold children. box is always the minimum enclosing box of the subtree.
type rnode[T common.Number, V any] struct {
	level    int
	box      Box[T]
	children []*rnode[T, V]
	els      []*Element[T, V]
}

// rentry is one slot of a node, unified across levels so the split and
// reinsertion machinery need not care whether it moves elements or
// subtrees.
type rentry[T common.Number, V any] struct {
	box   Box[T]
	child *rnode[T, V]
	el    *Element[T, V]
}

func newRTree[T common.Number, V any](cfg params.IndexConfig, star bool) *rtreeIndex[T, V] {
	return &rtreeIndex[T, V]{
		base: base{dims: cfg.Dimensions},
		cfg:  cfg,
		root: &rnode[T, V]{},
		star: star,
	}
}

func (n *rnode[T, V]) isLeaf() bool { return n.level == 0 }

func (n *rnode[T, V]) entryCount() int {
	if n.isLeaf() {
		return len(n.els)
	}
	return len(n.children)
}

func (n *rnode[T, V]) entries() []rentry[T, V] {
	if n.isLeaf() {
		es := make([]rentry[T, V], len(n.els))
		for i, el := range n.els {
			es[i] = rentry[T, V]{box: BoxOf(el.Point), el: el}
		}
		return es
	}
	es := make([]rentry[T, V], len(n.children))
	for i, c := range n.children {
		es[i] = rentry[T, V]{box: c.box, child: c}
	}
	return es
}

func (n *rnode[T, V]) setEntries(es []rentry[T, V]) {
	if n.isLeaf() {
		n.els = n.els[:0]
		for _, e := range es {
			n.els = append(n.els, e.el)
		}
	} else {
		n.children = n.children[:0]
		for _, e := range es {
			n.children = append(n.children, e.child)
		}
	}
	n.recomputeBox()
}

func (n *rnode[T, V]) add(e rentry[T, V]) {
	if n.isLeaf() {
		n.els = append(n.els, e.el)
	} else {
		n.children = append(n.children, e.child)
	}
	if n.entryCount() == 1 {
		n.box = e.box.Clone()
	} else {
		n.box = n.box.Extend(e.box)
	}
}

func (n *rnode[T, V]) recomputeBox() {
	es := n.entries()
	if len(es) == 0 {
		n.box = Box[T]{}
		return
	}
	b := es[0].box
	for _, e := range es[1:] {
		b = b.Extend(e.box)
	}
	n.box = b
}

func (x *rtreeIndex[T, V]) Insert(p point.Point[T], v V) (*Element[T, V], error) {
	if err := checkPoint(x.dims, p); err != nil {
		return nil, err
	}
	el := &Element[T, V]{Point: p.Clone(), Value: v, seq: x.nextSeq()}
	x.insertEntry(rentry[T, V]{box: BoxOf(el.Point), el: el}, 0, map[int]bool{})
	x.size++
	x.bump()
	return el, nil
}

// insertEntry places e into a node of the given level, splitting (or, in
// the R* variant, force-reinserting) on the way back up. reinserted marks
// levels that already spent their one forced reinsert for this insertion.
func (x *rtreeIndex[T, V]) insertEntry(e rentry[T, V], level int, reinserted map[int]bool) {
	// Descend, recording the path.
	path := []*rnode[T, V]{x.root}
	n := x.root
	for n.level > level {
		n = x.chooseSubtree(n, e.box)
		path = append(path, n)
	}
	n.add(e)
	// Tighten ancestor boxes.
	for _, a := range path[:len(path)-1] {
		a.box = a.box.Extend(e.box)
	}
	// Resolve overflows bottom-up.
	for i := len(path) - 1; i >= 0; i-- {
		n := path[i]
		if n.entryCount() <= x.cfg.MaxBranch {
			break
		}
		if x.star && i > 0 && !reinserted[n.level] {
			reinserted[n.level] = true
			x.forceReinsert(n, path[:i+1], reinserted)
			break
		}
		nn := x.splitNode(n)
		if i == 0 {
			// Root split grows the tree.
			newRoot := &rnode[T, V]{level: n.level + 1}
			newRoot.add(rentry[T, V]{box: n.box, child: n})
			newRoot.add(rentry[T, V]{box: nn.box, child: nn})
			x.root = newRoot
			return
		}
		parent := path[i-1]
		parent.children = append(parent.children, nn)
		parent.box = parent.box.Extend(nn.box)
	}
}

// chooseSubtree picks the child to descend into. The Guttman rule is
// minimum area enlargement, ties on smaller area. The R* rule swaps in
// minimum overlap enlargement at the last internal level.
func (x *rtreeIndex[T, V]) chooseSubtree(n *rnode[T, V], b Box[T]) *rnode[T, V] {
	if x.star && n.level == 1 {
		return chooseMinOverlap(n, b)
	}
	var best *rnode[T, V]
	bestEnl, bestArea := 0.0, 0.0
	for _, c := range n.children {
		enl := c.box.Enlargement(b)
		area := c.box.Area()
		if best == nil || enl < bestEnl || (enl == bestEnl && area < bestArea) {
			best, bestEnl, bestArea = c, enl, area
		}
	}
	return best
}

// splitNode partitions an overfull node, returning the newly created
// sibling at the same level.
func (x *rtreeIndex[T, V]) splitNode(n *rnode[T, V]) *rnode[T, V] {
	es := n.entries()
	var g1, g2 []rentry[T, V]
	if x.star {
		g1, g2 = splitStar(es, x.cfg.MinBranch)
	} else {
		g1, g2 = splitQuadratic(es, x.cfg.MinBranch)
	}
	nn := &rnode[T, V]{level: n.level}
	n.setEntries(g1)
	nn.setEntries(g2)
	return nn
}

// splitQuadratic is Guttman's quadratic split: seed with the pair that
// would waste the most area together, then assign the entry whose group
// preference is strongest, greedily minimising group enlargement.
func splitQuadratic[T common.Number, V any](es []rentry[T, V], minFill int) (g1, g2 []rentry[T, V]) {
	n := len(es)
	taken := make([]int, n)
	for i := range taken {
		taken[i] = -1
	}

	// Pick seeds.
	s1, s2 := 0, 1
	worst := -1.0
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			waste := es[i].box.Extend(es[j].box).Area() - es[i].box.Area() - es[j].box.Area()
			if waste > worst {
				worst = waste
				s1, s2 = i, j
			}
		}
	}
	cover := [2]Box[T]{es[s1].box.Clone(), es[s2].box.Clone()}
	count := [2]int{1, 1}
	taken[s1], taken[s2] = 0, 1
	remaining := n - 2

	for remaining > 0 {
		// If one group must absorb the rest to reach minimum fill, stop
		// deliberating.
		if count[0]+remaining == minFill {
			for i, t := range taken {
				if t == -1 {
					taken[i] = 0
				}
			}
			break
		}
		if count[1]+remaining == minFill {
			for i, t := range taken {
				if t == -1 {
					taken[i] = 1
				}
			}
			break
		}
		// Choose the entry most strongly attracted to one group.
		chosen, group := -1, 0
		biggestDiff := -1.0
		for i, t := range taken {
			if t != -1 {
				continue
			}
			growth0 := cover[0].Enlargement(es[i].box)
			growth1 := cover[1].Enlargement(es[i].box)
			diff := growth1 - growth0
			g := 0
			if diff < 0 {
				g, diff = 1, -diff
			}
			if diff > biggestDiff || (diff == biggestDiff && count[g] < count[group]) {
				biggestDiff, chosen, group = diff, i, g
			}
		}
		taken[chosen] = group
		cover[group] = cover[group].Extend(es[chosen].box)
		count[group]++
		remaining--
	}

	for i, t := range taken {
		if t == 0 {
			g1 = append(g1, es[i])
		} else {
			g2 = append(g2, es[i])
		}
	}
	return g1, g2
}

func (x *rtreeIndex[T, V]) BulkLoad(entries []Entry[T, V]) error {
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
	x.root = strLoad(els, x.cfg)
	x.size = len(els)
	return nil
}

func (x *rtreeIndex[T, V]) Erase(el *Element[T, V]) bool {
	var path []*rnode[T, V]
	if !findLeafPath(x.root, el, &path) {
		return false
	}
	leaf := path[len(path)-1]
	for i, e := range leaf.els {
		if e == el {
			leaf.els = append(leaf.els[:i], leaf.els[i+1:]...)
			break
		}
	}
	x.condense(path)
	x.size--
	x.bump()
	return true
}

// findLeafPath locates the leaf holding el by descending boxes that
// contain its point.
func findLeafPath[T common.Number, V any](n *rnode[T, V], el *Element[T, V], path *[]*rnode[T, V]) bool {
	*path = append(*path, n)
	if n.isLeaf() {
		for _, e := range n.els {
			if e == el {
				return true
			}
		}
	} else {
		for _, c := range n.children {
			if c.box.Contains(el.Point) && findLeafPath(c, el, path) {
				return true
			}
		}
	}
	*path = (*path)[:len(*path)-1]
	return false
}

// condense walks the path back to the root, dissolving under-full nodes
// and reinserting their orphaned entries at their original level.
func (x *rtreeIndex[T, V]) condense(path []*rnode[T, V]) {
	var orphans []*rnode[T, V]
	for i := len(path) - 1; i > 0; i-- {
		n, parent := path[i], path[i-1]
		if n.entryCount() < x.cfg.MinBranch {
			for j, c := range parent.children {
				if c == n {
					parent.children = append(parent.children[:j], parent.children[j+1:]...)
					break
				}
			}
			orphans = append(orphans, n)
		} else {
			n.recomputeBox()
		}
	}
	x.root.recomputeBox()

	for _, o := range orphans {
		for _, e := range o.entries() {
			level := 0
			if e.child != nil {
				level = e.child.level + 1
			}
			x.insertEntry(e, level, map[int]bool{})
		}
	}

	// Shrink a redundant root chain.
	for !x.root.isLeaf() && len(x.root.children) == 1 {
		x.root = x.root.children[0]
	}
	if x.size == 0 || (x.root.isLeaf() && len(x.root.els) == 0) {
		x.root = &rnode[T, V]{}
	}
}

func (x *rtreeIndex[T, V]) ErasePoint(p point.Point[T]) (int, error) {
	if err := checkPoint(x.dims, p); err != nil {
		return 0, err
	}
	var hits []*Element[T, V]
	x.collect(x.root, BoxOf(p), &hits)
	for _, el := range hits {
		x.Erase(el)
	}
	return len(hits), nil
}

func (x *rtreeIndex[T, V]) collect(n *rnode[T, V], b Box[T], out *[]*Element[T, V]) {
	if n.entryCount() == 0 {
		return
	}
	if !n.box.Intersects(b) {
		return
	}
	if n.isLeaf() {
		for _, el := range n.els {
			if b.Contains(el.Point) {
				*out = append(*out, el)
			}
		}
		return
	}
	for _, c := range n.children {
		x.collect(c, b, out)
	}
}

func (x *rtreeIndex[T, V]) Find(p point.Point[T]) *Iterator[T, V] {
	if err := checkPoint(x.dims, p); err != nil {
		return errIterator[T, V](err)
	}
	return x.rangeIter(BoxOf(p), true)
}

func (x *rtreeIndex[T, V]) Contains(p point.Point[T]) bool {
	it := x.Find(p)
	return it.Next()
}

func (x *rtreeIndex[T, V]) Nearest(p point.Point[T], k int) (*Iterator[T, V], error) {
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
	frontier.pushNode(x.root.box.MinDist(p), x.root)
	pull := nearestSource(k, frontier, func(node any, h *nnFrontier[T, V]) {
		n := node.(*rnode[T, V])
		if n.isLeaf() {
			for _, el := range n.els {
				h.pushElem(el.Point.Distance(p), el)
			}
			return
		}
		for _, c := range n.children {
			h.pushNode(c.box.MinDist(p), c)
		}
	})
	return newIterator(x, pull), nil
}

func (x *rtreeIndex[T, V]) Range(b Box[T]) *Iterator[T, V] {
	if err := checkPoint(x.dims, b.Min); err != nil {
		return errIterator[T, V](err)
	}
	return x.rangeIter(b, true)
}

func (x *rtreeIndex[T, V]) Disjoint(b Box[T]) *Iterator[T, V] {
	if err := checkPoint(x.dims, b.Min); err != nil {
		return errIterator[T, V](err)
	}
	return x.rangeIter(b, false)
}

// rangeIter lazily walks subtrees that can hold matches. inside selects
// between the range and disjoint senses.
func (x *rtreeIndex[T, V]) rangeIter(b Box[T], inside bool) *Iterator[T, V] {
	if x.size == 0 {
		return emptyIterator[T, V]()
	}
	stack := []*rnode[T, V]{x.root}
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
			if n.entryCount() == 0 {
				continue
			}
			if inside && !n.box.Intersects(b) {
				continue
			}
			if !inside && b.ContainsBox(n.box) {
				// Entirely inside the box: nothing here is disjoint.
				continue
			}
			if n.isLeaf() {
				for _, el := range n.els {
					if b.Contains(el.Point) == inside {
						buf = append(buf, el)
					}
				}
				continue
			}
			stack = append(stack, n.children...)
		}
	})
}

func (x *rtreeIndex[T, V]) Intersects(b Box[T]) bool {
	it := x.Range(b)
	return it.Next()
}

func (x *rtreeIndex[T, V]) Satisfies(preds ...Predicate[T, V]) *Iterator[T, V] {
	stack := []*rnode[T, V]{x.root}
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
			if n.isLeaf() {
				for _, el := range n.els {
					if matchesAll(el, preds) {
						buf = append(buf, el)
					}
				}
				continue
			}
			stack = append(stack, n.children...)
		}
	})
}

func (x *rtreeIndex[T, V]) Scan(fn func(*Element[T, V]) bool) {
	var walk func(n *rnode[T, V]) bool
	walk = func(n *rnode[T, V]) bool {
		if n.isLeaf() {
			for _, el := range n.els {
				if !fn(el) {
					return false
				}
			}
			return true
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

func (x *rtreeIndex[T, V]) Bounds() (Box[T], bool) {
	if x.size == 0 {
		return Box[T]{}, false
	}
	return x.root.box.Clone(), true
}

func (x *rtreeIndex[T, V]) Clear() {
	x.root = &rnode[T, V]{}
	x.size = 0
	x.bump()
}

// sortEntriesBy orders entries by box minimum, then maximum, along axis.
func sortEntriesBy[T common.Number, V any](es []rentry[T, V], axis int) {
	sort.SliceStable(es, func(i, j int) bool {
		if es[i].box.Min[axis] != es[j].box.Min[axis] {
			return es[i].box.Min[axis] < es[j].box.Min[axis]
		}
		return es[i].box.Max[axis] < es[j].box.Max[axis]
	})
}

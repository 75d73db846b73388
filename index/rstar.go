package index

import (
	"sort"

	"github.com/rotblauer/pareto/common"
)

// R*-tree refinements (Beckmann et al.): overlap-minimising subtree
// choice at the last internal level, forced reinsertion of the entries
// farthest from an overflowing node's centroid, and a split that picks
// its axis by the margin goal function.

// reinsertShare is the fraction of an overflowing node's entries removed
// and reinserted before a split is considered.
const reinsertShare = 0.3

// chooseMinOverlap picks the child whose box would gain the least overlap
// with its siblings after absorbing b. Ties fall back to area enlargement,
// then area.
func chooseMinOverlap[T common.Number, V any](n *rnode[T, V], b Box[T]) *rnode[T, V] {
	var best *rnode[T, V]
	bestOverlap, bestEnl, bestArea := 0.0, 0.0, 0.0
	for i, c := range n.children {
		grown := c.box.Extend(b)
		var delta float64
		for j, s := range n.children {
			if j == i {
				continue
			}
			delta += grown.Overlap(s.box) - c.box.Overlap(s.box)
		}
		enl := c.box.Enlargement(b)
		area := c.box.Area()
		if best == nil ||
			delta < bestOverlap ||
			(delta == bestOverlap && enl < bestEnl) ||
			(delta == bestOverlap && enl == bestEnl && area < bestArea) {
			best, bestOverlap, bestEnl, bestArea = c, delta, enl, area
		}
	}
	return best
}

// forceReinsert removes the reinsertShare entries farthest from the
// node's centroid and reinserts them at the node's level, closest first.
// path runs from the root to the overflowing node; ancestor boxes are
// recomputed before reinsertion so the tree is consistent throughout.
func (x *rtreeIndex[T, V]) forceReinsert(n *rnode[T, V], path []*rnode[T, V], reinserted map[int]bool) {
	es := n.entries()
	center := n.box.Center()
	dist := func(e rentry[T, V]) float64 {
		var sum float64
		for i, c := range e.box.Center() {
			sum += common.Sq(c - center[i])
		}
		return sum
	}
	sort.SliceStable(es, func(i, j int) bool { return dist(es[i]) > dist(es[j]) })

	p := int(float64(len(es)) * reinsertShare)
	if p < 1 {
		p = 1
	}
	removed := es[:p]
	n.setEntries(es[p:])
	for i := len(path) - 2; i >= 0; i-- {
		path[i].recomputeBox()
	}

	for i := len(removed) - 1; i >= 0; i-- {
		e := removed[i]
		level := 0
		if e.child != nil {
			level = e.child.level + 1
		}
		x.insertEntry(e, level, reinserted)
	}
}

// splitStar chooses the split axis minimising the summed margins of all
// candidate distributions, then the distribution on that axis minimising
// overlap, ties on combined area. Candidate distributions put the first
// m-1+k sorted entries in one group, for k in [1, M-2m+2].
func splitStar[T common.Number, V any](es []rentry[T, V], minFill int) (g1, g2 []rentry[T, V]) {
	dims := es[0].box.Dimensions()
	n := len(es)

	bestAxis, bestMargin := -1, 0.0
	for axis := 0; axis < dims; axis++ {
		sortEntriesBy(es, axis)
		var margin float64
		for k := minFill; k <= n-minFill; k++ {
			margin += coverOf(es[:k]).Margin() + coverOf(es[k:]).Margin()
		}
		if bestAxis == -1 || margin < bestMargin {
			bestAxis, bestMargin = axis, margin
		}
	}

	sortEntriesBy(es, bestAxis)
	bestK, bestOverlap, bestArea := -1, 0.0, 0.0
	for k := minFill; k <= n-minFill; k++ {
		b1, b2 := coverOf(es[:k]), coverOf(es[k:])
		overlap := b1.Overlap(b2)
		area := b1.Area() + b2.Area()
		if bestK == -1 || overlap < bestOverlap || (overlap == bestOverlap && area < bestArea) {
			bestK, bestOverlap, bestArea = k, overlap, area
		}
	}

	g1 = append(g1, es[:bestK]...)
	g2 = append(g2, es[bestK:]...)
	return g1, g2
}

func coverOf[T common.Number, V any](es []rentry[T, V]) Box[T] {
	b := es[0].box
	for _, e := range es[1:] {
		b = b.Extend(e.box)
	}
	return b
}

package index

import (
	"log/slog"
	"math"
	"sort"

	"github.com/rotblauer/pareto/common"
	"github.com/rotblauer/pareto/params"
)

// Sort-Tile-Recursive bulk loading for the box trees: slice the sorted
// input into slabs axis by axis, pack leaves to capacity, then repeat one
// level up on the leaf centers until a single root remains. Produces a
// packed, height-balanced tree in O(n log n).

func strLoad[T common.Number, V any](els []*Element[T, V], cfg params.IndexConfig) *rnode[T, V] {
	if len(els) == 0 {
		return &rnode[T, V]{}
	}
	alloc := func() *rnode[T, V] { return &rnode[T, V]{} }
	if cfg.PoolNodes {
		arena := newRNodeArena[T, V](len(els), cfg.MaxBranch)
		alloc = arena.alloc
	}

	// Pack leaves.
	groups := strTile(els, func(el *Element[T, V], axis int) float64 {
		return float64(el.Point[axis])
	}, cfg.Dimensions, cfg.MaxBranch)
	nodes := make([]*rnode[T, V], 0, len(groups))
	for _, g := range groups {
		n := alloc()
		n.els = append(n.els, g...)
		n.recomputeBox()
		nodes = append(nodes, n)
	}

	// Pack upper levels until one root remains.
	level := 0
	for len(nodes) > 1 {
		level++
		groups := strTile(nodes, func(n *rnode[T, V], axis int) float64 {
			return n.box.Center()[axis]
		}, cfg.Dimensions, cfg.MaxBranch)
		parents := make([]*rnode[T, V], 0, len(groups))
		for _, g := range groups {
			n := alloc()
			n.level = level
			n.children = append(n.children, g...)
			n.recomputeBox()
			parents = append(parents, n)
		}
		nodes = parents
	}
	slog.Debug("Bulk-loaded box tree", "elements", len(els), "height", level+1)
	return nodes[0]
}

// strTile partitions items into groups of at most m, slicing the sorted
// input into slabs on each axis in turn.
func strTile[E any](items []E, coord func(E, int) float64, dims, m int) [][]E {
	var out [][]E
	var rec func(items []E, axis int)
	rec = func(items []E, axis int) {
		if len(items) <= m {
			out = append(out, items)
			return
		}
		sort.SliceStable(items, func(i, j int) bool {
			return coord(items[i], axis) < coord(items[j], axis)
		})
		if axis == dims-1 {
			for i := 0; i < len(items); i += m {
				out = append(out, items[i:min(i+m, len(items))])
			}
			return
		}
		// S vertical slabs per STR, each recursively tiled on the
		// remaining axes.
		pages := math.Ceil(float64(len(items)) / float64(m))
		s := int(math.Ceil(math.Pow(pages, 1/float64(dims-axis))))
		slab := (len(items) + s - 1) / s
		for i := 0; i < len(items); i += slab {
			rec(items[i:min(i+slab, len(items))], axis+1)
		}
	}
	rec(items, 0)
	return out
}

// rnodeArena block-allocates nodes for bulk loads instead of allocating
// each node separately, which also keeps sibling nodes close in memory.
// Nodes die with the tree.
type rnodeArena[T common.Number, V any] struct {
	block []rnode[T, V]
	size  int
}

func newRNodeArena[T common.Number, V any](n, m int) *rnodeArena[T, V] {
	// A packed tree over n elements holds about n/(m-1) nodes; round up
	// generously, growing block by block if the estimate runs short.
	est := 2*n/max(m-1, 1) + 8
	return &rnodeArena[T, V]{block: make([]rnode[T, V], 0, est), size: est}
}

func (a *rnodeArena[T, V]) alloc() *rnode[T, V] {
	if len(a.block) == cap(a.block) {
		a.block = make([]rnode[T, V], 0, a.size)
	}
	a.block = append(a.block, rnode[T, V]{})
	return &a.block[len(a.block)-1]
}

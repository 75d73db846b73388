package index

import (
	"container/heap"

	"github.com/rotblauer/pareto/common"
)

// Best-first nearest-neighbour search shared by the tree indices. The
// frontier mixes index nodes, ordered by a lower bound on their distance,
// with concrete elements at their exact distance. Popping in that order
// yields elements in nondecreasing distance; on distance ties nodes come
// out first (they may still hide an equally distant element with an
// earlier sequence number), then elements by insertion order.

type nnItem[T common.Number, V any] struct {
	dist float64
	elem *Element[T, V] // nil for node entries
	node any
}

type nnFrontier[T common.Number, V any] []nnItem[T, V]

func (h nnFrontier[T, V]) Len() int { return len(h) }

func (h nnFrontier[T, V]) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.dist != b.dist {
		return a.dist < b.dist
	}
	if (a.elem == nil) != (b.elem == nil) {
		return a.elem == nil
	}
	if a.elem != nil {
		return a.elem.seq < b.elem.seq
	}
	return false
}

func (h nnFrontier[T, V]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *nnFrontier[T, V]) Push(x any) {
	*h = append(*h, x.(nnItem[T, V]))
}

func (h *nnFrontier[T, V]) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

func (h *nnFrontier[T, V]) pushNode(dist float64, node any) {
	heap.Push(h, nnItem[T, V]{dist: dist, node: node})
}

func (h *nnFrontier[T, V]) pushElem(dist float64, el *Element[T, V]) {
	heap.Push(h, nnItem[T, V]{dist: dist, elem: el})
}

// nearestSource lazily yields up to k elements in nearest-first order.
// expand unpacks a popped node entry back onto the frontier.
func nearestSource[T common.Number, V any](
	k int,
	frontier *nnFrontier[T, V],
	expand func(node any, h *nnFrontier[T, V]),
) func() *Element[T, V] {
	heap.Init(frontier)
	yielded := 0
	return func() *Element[T, V] {
		for yielded < k && frontier.Len() > 0 {
			it := heap.Pop(frontier).(nnItem[T, V])
			if it.elem != nil {
				yielded++
				return it.elem
			}
			expand(it.node, frontier)
		}
		return nil
	}
}

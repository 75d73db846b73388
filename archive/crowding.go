package archive

import (
	"math"
	"sort"

	"github.com/rotblauer/pareto/common"
	"github.com/rotblauer/pareto/index"
)

// crowdingDistances estimates local density per element: the sum over
// axes of the normalised gap between each element's neighbours in that
// axis's ordering. Boundary elements get +Inf so extremes survive
// eviction; axes with no spread contribute nothing.
func crowdingDistances[T common.Number, V any](els []*index.Element[T, V]) []float64 {
	n := len(els)
	dist := make([]float64, n)
	if n == 0 {
		return dist
	}
	dims := els[0].Point.Dimensions()
	order := make([]int, n)
	for axis := 0; axis < dims; axis++ {
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			pa, pb := els[order[a]].Point[axis], els[order[b]].Point[axis]
			if pa != pb {
				return pa < pb
			}
			return els[order[a]].Seq() < els[order[b]].Seq()
		})
		lo := float64(els[order[0]].Point[axis])
		hi := float64(els[order[n-1]].Point[axis])
		if hi == lo {
			continue
		}
		dist[order[0]] = math.Inf(1)
		dist[order[n-1]] = math.Inf(1)
		for i := 1; i < n-1; i++ {
			gap := float64(els[order[i+1]].Point[axis]) - float64(els[order[i-1]].Point[axis])
			dist[order[i]] += gap / (hi - lo)
		}
	}
	return dist
}

package front

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/montanaflynn/stats"
	"github.com/rotblauer/pareto/index"
	"github.com/rotblauer/pareto/point"
	"sort"
)

// Hypervolume measures the region dominated by the front up to a
// reference point: exactly for any dimension (a sweep in 2-D, the WFG
// recursion above that), or by Monte-Carlo sampling when an estimate
// with a confidence bound is enough.
//
// Internally everything is transformed into minimisation space: maximised
// axes are negated, after which "dominates" is elementwise <=.

// Hypervolume is HypervolumeAt with the front's nadir as the reference,
// the measure of the region between the front and its own worst corner.
func (f *Front[T, V]) Hypervolume() (float64, error) {
	ref, err := f.Nadir()
	if err != nil {
		return 0, err
	}
	return f.HypervolumeAt(ref)
}

// HypervolumeAt computes the exact hypervolume with respect to ref.
// Elements outside the reference (worse than ref on some axis) do not
// contribute. The value is cached per mutation counter and reference.
func (f *Front[T, V]) HypervolumeAt(ref point.Point[T]) (float64, error) {
	if ref.Dimensions() != f.Dimensions() {
		return 0, fmt.Errorf("%w: reference has %d dimensions, front has %d",
			index.ErrDimensionMismatch, ref.Dimensions(), f.Dimensions())
	}
	return f.cached("hv|"+ref.String(), func() (float64, error) {
		ps, refw := f.minSpace(ref)
		return hypervolume(ps, refw), nil
	})
}

// minSpace widens the front and ref to minimisation-space float vectors,
// dropping elements that fall outside the reference.
func (f *Front[T, V]) minSpace(ref point.Point[T]) ([][]float64, []float64) {
	d := f.Dimensions()
	refw := make([]float64, d)
	for k := 0; k < d; k++ {
		refw[k] = toMin(float64(ref[k]), f.dir.Minimises(k))
	}
	var ps [][]float64
	f.idx.Scan(func(el *index.Element[T, V]) bool {
		w := make([]float64, d)
		for k := 0; k < d; k++ {
			w[k] = toMin(float64(el.Point[k]), f.dir.Minimises(k))
			if w[k] >= refw[k] {
				return true // no volume against this reference
			}
		}
		ps = append(ps, w)
		return true
	})
	return ps, refw
}

func toMin(v float64, minimises bool) float64 {
	if minimises {
		return v
	}
	return -v
}

func hypervolume(ps [][]float64, ref []float64) float64 {
	if len(ps) == 0 {
		return 0
	}
	switch len(ref) {
	case 1:
		lo := ps[0][0]
		for _, p := range ps[1:] {
			lo = math.Min(lo, p[0])
		}
		return ref[0] - lo
	case 2:
		return hypervolume2(ps, ref)
	}
	return wfg(ps, ref)
}

// hypervolume2 sweeps the staircase left to right; the degenerate
// one-slice-per-point case of the HSO recursion.
func hypervolume2(ps [][]float64, ref []float64) float64 {
	sorted := make([][]float64, len(ps))
	copy(sorted, ps)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i][0] != sorted[j][0] {
			return sorted[i][0] < sorted[j][0]
		}
		return sorted[i][1] < sorted[j][1]
	})
	var hv float64
	bestY := math.Inf(1)
	for i, p := range sorted {
		if p[1] >= bestY {
			continue // dominated within the sweep
		}
		bestY = p[1]
		nextX := ref[0]
		for j := i + 1; j < len(sorted); j++ {
			if sorted[j][1] < bestY {
				nextX = sorted[j][0]
				break
			}
		}
		hv += (nextX - p[0]) * (ref[1] - p[1])
	}
	return hv
}

// wfg is the WFG algorithm: the hypervolume is the sum over points of
// their exclusive contribution, each computed as an inclusive box minus
// the hypervolume of the point's limit set.
func wfg(ps [][]float64, ref []float64) float64 {
	var total float64
	for i := range ps {
		total += exclhv(ps, i, ref)
	}
	return total
}

func exclhv(ps [][]float64, i int, ref []float64) float64 {
	excl := inclhv(ps[i], ref)
	limit := limitSet(ps, i)
	if len(limit) > 0 {
		excl -= wfg(nonDominatedMin(limit), ref)
	}
	return excl
}

func inclhv(p []float64, ref []float64) float64 {
	v := 1.0
	for k := range p {
		v *= ref[k] - p[k]
	}
	return v
}

// limitSet raises every later point to at least ps[i], giving the region
// counted both by ps[i] and by the rest.
func limitSet(ps [][]float64, i int) [][]float64 {
	out := make([][]float64, 0, len(ps)-i-1)
	for _, q := range ps[i+1:] {
		l := make([]float64, len(q))
		for k := range q {
			l[k] = math.Max(ps[i][k], q[k])
		}
		out = append(out, l)
	}
	return out
}

// nonDominatedMin filters to the weakly non-dominated subset under
// elementwise minimisation.
func nonDominatedMin(ps [][]float64) [][]float64 {
	var out [][]float64
	for i, p := range ps {
		dominated := false
		for j, q := range ps {
			if i == j {
				continue
			}
			if dominatesMin(q, p) || (j < i && equalVec(q, p)) {
				dominated = true
				break
			}
		}
		if !dominated {
			out = append(out, p)
		}
	}
	return out
}

func dominatesMin(a, b []float64) bool {
	better := false
	for k := range a {
		if a[k] > b[k] {
			return false
		}
		if a[k] < b[k] {
			better = true
		}
	}
	return better
}

func equalVec(a, b []float64) bool {
	for k := range a {
		if a[k] != b[k] {
			return false
		}
	}
	return true
}

// HypervolumeEstimate is the Monte-Carlo hypervolume: it samples the box
// between the front's ideal corner and ref, returning the estimate and
// the 95% confidence half-width. A nil rng falls back to a fixed seed.
func (f *Front[T, V]) HypervolumeEstimate(ref point.Point[T], samples int, rng *rand.Rand) (estimate, halfWidth float64, err error) {
	if ref.Dimensions() != f.Dimensions() {
		return 0, 0, fmt.Errorf("%w: reference has %d dimensions, front has %d",
			index.ErrDimensionMismatch, ref.Dimensions(), f.Dimensions())
	}
	if samples < 1 {
		return 0, 0, index.ErrInvalidArgument
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	ps, refw := f.minSpace(ref)
	if len(ps) == 0 {
		return 0, 0, nil
	}
	d := f.Dimensions()
	lo := make([]float64, d)
	copy(lo, ps[0])
	for _, p := range ps[1:] {
		for k := range lo {
			lo[k] = math.Min(lo[k], p[k])
		}
	}
	vol := 1.0
	for k := range lo {
		vol *= refw[k] - lo[k]
	}

	hits := make([]float64, samples)
	x := make([]float64, d)
	for s := 0; s < samples; s++ {
		for k := range x {
			x[k] = lo[k] + rng.Float64()*(refw[k]-lo[k])
		}
		for _, p := range ps {
			covered := true
			for k := range p {
				if p[k] > x[k] {
					covered = false
					break
				}
			}
			if covered {
				hits[s] = 1
				break
			}
		}
	}
	data := stats.Float64Data(hits)
	mean, _ := data.Mean()
	sd, _ := data.StandardDeviation()
	estimate = mean * vol
	halfWidth = 1.96 * sd / math.Sqrt(float64(samples)) * vol
	return estimate, halfWidth, nil
}

package front

import (
	"math"
	"testing"

	"github.com/rotblauer/pareto/index"
	"github.com/rotblauer/pareto/point"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refSet(ps ...point.Point[float64]) []point.Point[float64] {
	return ps
}

// The S6 shape: front {(1,5),(3,1)} against reference
// {(1,5),(2,3),(3,1)}. The only reference point off the front, (2, 3),
// sits at distance sqrt(5) from both members.
func TestIGD(t *testing.T) {
	f := mustFront(t, index.Linear, 2, nil)
	for _, p := range []point.Point[float64]{point.New(1.0, 5.0), point.New(3.0, 1.0)} {
		_, err := f.Insert(p, "v")
		require.NoError(t, err)
	}
	ref := refSet(point.New(1.0, 5.0), point.New(2.0, 3.0), point.New(3.0, 1.0))

	igd, err := f.IGD(ref)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(5)/3, igd, 1e-12)

	// The front is a subset of the reference: GD is zero.
	gd, err := f.GD(ref)
	require.NoError(t, err)
	assert.Zero(t, gd)
}

func TestIGDPlus(t *testing.T) {
	f := mustFront(t, index.Linear, 2, nil)
	for _, p := range []point.Point[float64]{point.New(1.0, 5.0), point.New(3.0, 1.0)} {
		_, err := f.Insert(p, "v")
		require.NoError(t, err)
	}
	ref := refSet(point.New(1.0, 5.0), point.New(2.0, 3.0), point.New(3.0, 1.0))

	// d+((2,3), (1,5)) = max(0, 5-3) = 2; d+((2,3), (3,1)) = max(0, 3-2) = 1.
	igdp, err := f.IGDPlus(ref)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3, igdp, 1e-12)

	gdp, err := f.GDPlus(ref)
	require.NoError(t, err)
	assert.Zero(t, gdp)
}

func TestEpsilon(t *testing.T) {
	f := mustFront(t, index.Linear, 2, nil)
	for _, p := range []point.Point[float64]{point.New(2.0, 4.0), point.New(4.0, 2.0)} {
		_, err := f.Insert(p, "v")
		require.NoError(t, err)
	}
	// Reference front shifted one unit better on each axis.
	ref := refSet(point.New(1.0, 3.0), point.New(3.0, 1.0))
	eps, err := f.Epsilon(ref)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, eps, 1e-12)

	// A front that weakly dominates its reference has epsilon <= 0.
	g := mustFront(t, index.Linear, 2, nil)
	_, err = g.Insert(point.New(0.5, 0.5), "v")
	require.NoError(t, err)
	eps, err = g.Epsilon(refSet(point.New(1.0, 1.0)))
	require.NoError(t, err)
	assert.InDelta(t, -0.5, eps, 1e-12)

	mul, err := g.MultiplicativeEpsilon(refSet(point.New(1.0, 1.0)))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, mul, 1e-12)
}

func TestUniformity(t *testing.T) {
	f := mustFront(t, index.RTree, 2, nil)
	// Evenly spaced staircase: all nearest-neighbour gaps equal.
	for _, p := range []point.Point[float64]{
		point.New(0.0, 3.0), point.New(1.0, 2.0), point.New(2.0, 1.0), point.New(3.0, 0.0),
	} {
		_, err := f.Insert(p, "v")
		require.NoError(t, err)
	}
	u, err := f.Uniformity()
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt2, u.Min, 1e-12)
	assert.InDelta(t, math.Sqrt2, u.Mean, 1e-12)
	assert.InDelta(t, 0.0, u.StdDev, 1e-12)

	g := mustFront(t, index.Linear, 2, nil)
	_, err = g.Insert(point.New(1.0, 1.0), "v")
	require.NoError(t, err)
	_, err = g.Uniformity()
	assert.ErrorIs(t, err, index.ErrInvalidArgument)
}

func TestCoverage(t *testing.T) {
	a := mustFront(t, index.Linear, 2, nil)
	b := mustFront(t, index.Linear, 2, nil)
	for _, p := range []point.Point[float64]{point.New(1.0, 1.0)} {
		_, err := a.Insert(p, "v")
		require.NoError(t, err)
	}
	for _, p := range []point.Point[float64]{point.New(2.0, 2.0), point.New(0.5, 3.0)} {
		_, err := b.Insert(p, "v")
		require.NoError(t, err)
	}
	// a's (1,1) dominates (2,2) but not (0.5,3).
	c, err := a.Coverage(b)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, c, 1e-12)

	cb, err := b.Coverage(a)
	require.NoError(t, err)
	assert.Zero(t, cb)

	ratio, err := a.CoverageRatio(b)
	require.NoError(t, err)
	assert.True(t, math.IsInf(ratio, 1))
}

func TestConflict(t *testing.T) {
	f := mustFront(t, index.Linear, 2, nil)
	for _, p := range []point.Point[float64]{point.New(0.0, 2.0), point.New(2.0, 0.0)} {
		_, err := f.Insert(p, "v")
		require.NoError(t, err)
	}
	c, err := f.Conflict(0, 1)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, c, 1e-12)

	// Fully anti-correlated objectives: normalized conflict is 1.
	nc, err := f.NormalizedConflict(0, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, nc, 1e-12)

	_, err = f.Conflict(0, 5)
	assert.ErrorIs(t, err, index.ErrInvalidArgument)
}

func TestIndicators_EmptyAndMismatch(t *testing.T) {
	f := mustFront(t, index.Linear, 2, nil)
	_, err := f.IGD(refSet(point.New(1.0, 1.0)))
	assert.ErrorIs(t, err, index.ErrEmptyContainer)

	_, err = f.IGD(nil)
	assert.ErrorIs(t, err, index.ErrInvalidArgument)

	_, err = f.IGD(refSet(point.New(1.0)))
	assert.ErrorIs(t, err, index.ErrDimensionMismatch)
}

func TestIndicatorCache_KeyedByMutation(t *testing.T) {
	f := mustFront(t, index.Linear, 2, nil)
	_, err := f.Insert(point.New(2.0, 2.0), "v")
	require.NoError(t, err)
	ref := point.New(4.0, 4.0)

	hv, err := f.HypervolumeAt(ref)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, hv, 1e-12)
	before := f.MutationCounter()

	// A mutation bumps the counter and the cached value is superseded.
	_, err = f.Insert(point.New(1.0, 3.0), "w")
	require.NoError(t, err)
	assert.Greater(t, f.MutationCounter(), before)

	hv, err = f.HypervolumeAt(ref)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, hv, 1e-12) // plus the (1, 3) sliver (2-1)*(4-3)
}

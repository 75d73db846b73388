package front

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/rotblauer/pareto/index"
	"github.com/rotblauer/pareto/point"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S2: front {(1,5),(2,2),(3,1)} w.r.t. (5, 6) has hypervolume 15.
func TestHypervolume_2D(t *testing.T) {
	for _, tag := range allTags {
		t.Run(tag.String(), func(t *testing.T) {
			f := mustFront(t, tag, 2, nil)
			for _, p := range []point.Point[float64]{
				point.New(1.0, 5.0), point.New(2.0, 2.0), point.New(3.0, 1.0),
			} {
				_, err := f.Insert(p, "v")
				require.NoError(t, err)
			}
			hv, err := f.HypervolumeAt(point.New(5.0, 6.0))
			require.NoError(t, err)
			assert.InDelta(t, 15.0, hv, 1e-9)

			// Cached value survives repeated reads.
			hv2, err := f.HypervolumeAt(point.New(5.0, 6.0))
			require.NoError(t, err)
			assert.Equal(t, hv, hv2)
		})
	}
}

func TestHypervolume_SinglePointAndEmpty(t *testing.T) {
	f := mustFront(t, index.Linear, 2, nil)
	hv, err := f.HypervolumeAt(point.New(5.0, 6.0))
	require.NoError(t, err)
	assert.Zero(t, hv)

	_, err = f.Insert(point.New(1.0, 2.0), "v")
	require.NoError(t, err)
	hv, err = f.HypervolumeAt(point.New(5.0, 6.0))
	require.NoError(t, err)
	assert.InDelta(t, 16.0, hv, 1e-9) // (5-1)*(6-2)

	// A point outside the reference contributes nothing.
	g := mustFront(t, index.Linear, 2, nil)
	_, err = g.Insert(point.New(6.0, 1.0), "v")
	require.NoError(t, err)
	hv, err = g.HypervolumeAt(point.New(5.0, 6.0))
	require.NoError(t, err)
	assert.Zero(t, hv)
}

func TestHypervolume_3DWFG(t *testing.T) {
	f := mustFront(t, index.RTree, 3, nil)
	_, err := f.Insert(point.New(1.0, 1.0, 2.0), "a")
	require.NoError(t, err)
	_, err = f.Insert(point.New(2.0, 2.0, 1.0), "b")
	require.NoError(t, err)

	// Union of boxes to (3,3,3): 2*2*1 + 1*1*2 - 1*1*1 = 5.
	hv, err := f.HypervolumeAt(point.New(3.0, 3.0, 3.0))
	require.NoError(t, err)
	assert.InDelta(t, 5.0, hv, 1e-9)
}

func TestHypervolume_Maximisation(t *testing.T) {
	f := mustFront(t, index.Linear, 2, point.Broadcast(false, 2))
	for _, p := range []point.Point[float64]{
		point.New(4.0, 1.0), point.New(3.0, 4.0), point.New(4.0, 2.0),
	} {
		if _, err := f.Insert(p, "v"); err != nil && !errors.Is(err, ErrDominated) {
			t.Fatal(err)
		}
	}
	// Surviving front {(4, 2), (3, 4)} w.r.t. reference (0, 0):
	// 4*2 + 3*4 - 3*2 = 14.
	hv, err := f.HypervolumeAt(point.New(0.0, 0.0))
	require.NoError(t, err)
	assert.InDelta(t, 14.0, hv, 1e-9)
}

// Property 4: admitting a non-dominated point cannot shrink the
// hypervolume under a fixed reference.
func TestHypervolume_MonotoneUnderInsert(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	f := mustFront(t, index.RStarTree, 2, nil)
	ref := point.New(10.0, 10.0)
	last := 0.0
	for i := 0; i < 100; i++ {
		p := point.New(rng.Float64()*9, rng.Float64()*9)
		if _, err := f.Insert(p, "v"); err != nil {
			continue
		}
		hv, err := f.HypervolumeAt(ref)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, hv+1e-9, last, "hypervolume shrank after admitting %v", p)
		last = hv
	}
}

func TestHypervolume_MonteCarlo(t *testing.T) {
	f := mustFront(t, index.RTree, 2, nil)
	for _, p := range []point.Point[float64]{
		point.New(1.0, 5.0), point.New(2.0, 2.0), point.New(3.0, 1.0),
	} {
		_, err := f.Insert(p, "v")
		require.NoError(t, err)
	}
	ref := point.New(5.0, 6.0)
	est, half, err := f.HypervolumeEstimate(ref, 20000, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	assert.Greater(t, half, 0.0)
	assert.InDelta(t, 15.0, est, 0.5)

	_, _, err = f.HypervolumeEstimate(ref, 0, nil)
	assert.ErrorIs(t, err, index.ErrInvalidArgument)
}

func TestHypervolume_DimensionMismatch(t *testing.T) {
	f := mustFront(t, index.Linear, 2, nil)
	_, err := f.HypervolumeAt(point.New(1.0))
	assert.ErrorIs(t, err, index.ErrDimensionMismatch)
}

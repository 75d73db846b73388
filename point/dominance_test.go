package point

import (
	"math"
	"math/rand"
	"testing"
)

func TestDominates_Minimisation(t *testing.T) {
	cases := []struct {
		p, q   Point[float64]
		weak   bool
		strong bool
	}{
		{New(1.0, 1.0), New(2.0, 2.0), true, true},
		{New(1.0, 2.0), New(2.0, 2.0), true, false},
		{New(2.0, 2.0), New(2.0, 2.0), false, false},
		{New(1.0, 3.0), New(2.0, 2.0), false, false},
		{New(2.0, 3.0), New(1.0, 1.0), false, false},
	}
	for _, c := range cases {
		if got := c.p.Dominates(c.q, nil); got != c.weak {
			t.Errorf("%v dominates %v: expected %v, got %v", c.p, c.q, c.weak, got)
		}
		if got := c.p.StronglyDominates(c.q, nil); got != c.strong {
			t.Errorf("%v strongly dominates %v: expected %v, got %v", c.p, c.q, c.strong, got)
		}
	}
}

func TestDominates_Directions(t *testing.T) {
	p := New(1.0, 5.0)
	q := New(2.0, 3.0)

	// Minimise axis 0, maximise axis 1: p is better on both.
	dir := Direction{true, false}
	if !p.Dominates(q, dir) {
		t.Errorf("Expected %v to dominate %v under %v", p, q, dir)
	}
	if !p.StronglyDominates(q, dir) {
		t.Errorf("Expected strong dominance under %v", dir)
	}
	// Maximise everything: q wins axis 0, p wins axis 1.
	if !p.NonDominates(q, Broadcast(false, 2)) {
		t.Errorf("Expected mutual non-dominance when maximising all")
	}
}

func TestDominates_ZeroDimension(t *testing.T) {
	p, q := Point[float64]{}, Point[float64]{}
	if p.Dominates(q, nil) || p.StronglyDominates(q, nil) {
		t.Errorf("Zero-dimensional points must dominate nothing")
	}
	if !p.NonDominates(q, nil) {
		t.Errorf("Zero-dimensional points compare as non-dominated")
	}
}

// Exactly one of {p<q, q<p, non-dominated} holds, strong implies weak,
// dominance is irreflexive, and it is transitive.
func TestDominance_Algebra(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	dirs := []Direction{nil, Broadcast(false, 3), {true, false, true}}
	randPoint := func() Point[float64] {
		return New(float64(rng.Intn(5)), float64(rng.Intn(5)), float64(rng.Intn(5)))
	}
	for i := 0; i < 500; i++ {
		p, q, r := randPoint(), randPoint(), randPoint()
		for _, dir := range dirs {
			pq, qp := p.Dominates(q, dir), q.Dominates(p, dir)
			if pq && qp {
				t.Fatalf("Both %v and %v dominate each other under %v", p, q, dir)
			}
			if p.NonDominates(q, dir) == (pq || qp) {
				t.Fatalf("Trichotomy violated for %v, %v under %v", p, q, dir)
			}
			if p.StronglyDominates(q, dir) && !pq {
				t.Fatalf("Strong without weak dominance: %v, %v under %v", p, q, dir)
			}
			if p.Dominates(p, dir) {
				t.Fatalf("%v dominates itself under %v", p, dir)
			}
			if pq && q.Dominates(r, dir) && !p.Dominates(r, dir) {
				t.Fatalf("Transitivity violated: %v, %v, %v under %v", p, q, r, dir)
			}
		}
	}
}

func TestDistanceToDominatedBox(t *testing.T) {
	p := New(2.0, 2.0)

	// q inside the region dominated by p.
	if got := p.DistanceToDominatedBox(New(3.0, 3.0), nil); got != 0 {
		t.Errorf("Expected 0, got %v", got)
	}
	// q better than p on both axes: plain Euclidean distance.
	if got := p.DistanceToDominatedBox(New(1.0, 1.0), nil); math.Abs(got-math.Sqrt2) > 1e-12 {
		t.Errorf("Expected sqrt(2), got %v", got)
	}
	// q better on one axis only: distance along that axis.
	if got := p.DistanceToDominatedBox(New(1.0, 5.0), nil); got != 1 {
		t.Errorf("Expected 1, got %v", got)
	}
	// Maximisation flips the improving side.
	if got := p.DistanceToDominatedBox(New(3.0, 3.0), Broadcast(false, 2)); math.Abs(got-math.Sqrt2) > 1e-12 {
		t.Errorf("Expected sqrt(2), got %v", got)
	}
}

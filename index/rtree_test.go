package index

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/rotblauer/pareto/point"
)

func TestRTree_EraseChurnKeepsTreeConsistent(t *testing.T) {
	for _, tag := range []Tag{RTree, RStarTree} {
		t.Run(tag.String(), func(t *testing.T) {
			rng := rand.New(rand.NewSource(5))
			idx := mustIndex(t, tag, 2)
			var els []*Element[float64, string]
			for i := 0; i < 300; i++ {
				el, err := idx.Insert(point.New(rng.Float64()*100, rng.Float64()*100), fmt.Sprintf("v%d", i))
				if err != nil {
					t.Fatal(err)
				}
				els = append(els, el)
			}
			// Erase in random order; condensation reinserts orphans.
			rng.Shuffle(len(els), func(i, j int) { els[i], els[j] = els[j], els[i] })
			for i, el := range els[:250] {
				if !idx.Erase(el) {
					t.Fatalf("Erase %d failed", i)
				}
				if idx.Size() != 300-i-1 {
					t.Fatalf("Size drifted: %d vs %d", idx.Size(), 300-i-1)
				}
			}
			for _, el := range els[250:] {
				if !idx.Contains(el.Point) {
					t.Errorf("Survivor %v missing", el.Point)
				}
			}
			// The whole tree is still reachable and bounded.
			n := 0
			idx.Scan(func(*Element[float64, string]) bool { n++; return true })
			if n != 50 {
				t.Errorf("Expected 50 scanned, got %d", n)
			}
			b, ok := idx.Bounds()
			if !ok {
				t.Fatalf("Expected bounds")
			}
			idx.Scan(func(el *Element[float64, string]) bool {
				if !b.Contains(el.Point) {
					t.Errorf("Bounds %v..%v exclude %v", b.Min, b.Max, el.Point)
				}
				return true
			})
		})
	}
}

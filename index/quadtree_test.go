package index

import (
	"fmt"
	"testing"

	"github.com/rotblauer/pareto/point"
)

// Piling duplicates onto one point must not split a quadtree forever.
func TestQuadTree_DuplicateHeavyInsert(t *testing.T) {
	idx := mustIndex(t, QuadTree, 2)
	for i := 0; i < 50; i++ {
		if _, err := idx.Insert(point.New(1.0, 1.0), fmt.Sprintf("v%d", i)); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := idx.Insert(point.New(2.0, 2.0), "other"); err != nil {
		t.Fatal(err)
	}
	if got := len(idx.Find(point.New(1.0, 1.0)).Slice()); got != 50 {
		t.Fatalf("Expected 50 duplicates, got %d", got)
	}
	n, err := idx.ErasePoint(point.New(1.0, 1.0))
	if err != nil || n != 50 {
		t.Fatalf("ErasePoint: expected 50, got %d (%v)", n, err)
	}
	if idx.Size() != 1 {
		t.Errorf("Expected size 1, got %d", idx.Size())
	}
}

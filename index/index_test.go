package index

import (
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/rotblauer/pareto/params"
	"github.com/rotblauer/pareto/point"
)

var allTags = []Tag{Linear, RTree, RStarTree, KDTree, QuadTree}

// Small fan-out forces splits with few points.
func testConfig(dims int) params.IndexConfig {
	return params.IndexConfig{
		Dimensions:   dims,
		MinBranch:    2,
		MaxBranch:    4,
		LeafCapacity: 2,
	}
}

func mustIndex(t *testing.T, tag Tag, dims int) Index[float64, string] {
	t.Helper()
	idx, err := New[float64, string](tag, testConfig(dims))
	if err != nil {
		t.Fatalf("New(%v): %v", tag, err)
	}
	return idx
}

func sortedPoints(els []*Element[float64, string]) []string {
	out := make([]string, 0, len(els))
	for _, el := range els {
		out = append(out, el.String())
	}
	sort.Strings(out)
	return out
}

func TestIndex_InsertFindErase(t *testing.T) {
	for _, tag := range allTags {
		t.Run(tag.String(), func(t *testing.T) {
			idx := mustIndex(t, tag, 2)

			pts := []point.Point[float64]{
				point.New(1.0, 5.0), point.New(2.0, 3.0), point.New(3.0, 1.0),
				point.New(4.0, 4.0), point.New(5.0, 2.0), point.New(2.0, 3.0), // duplicate
				point.New(0.0, 0.0), point.New(6.0, 6.0), point.New(2.5, 2.5),
			}
			for i, p := range pts {
				if _, err := idx.Insert(p, fmt.Sprintf("v%d", i)); err != nil {
					t.Fatalf("Insert(%v): %v", p, err)
				}
			}
			if idx.Size() != len(pts) {
				t.Fatalf("Expected size %d, got %d", len(pts), idx.Size())
			}
			if idx.Empty() {
				t.Errorf("Expected non-empty index")
			}
			if idx.Dimensions() != 2 {
				t.Errorf("Expected 2 dimensions, got %d", idx.Dimensions())
			}

			// Duplicates are both found.
			found := idx.Find(point.New(2.0, 3.0)).Slice()
			if len(found) != 2 {
				t.Fatalf("Expected 2 elements at (2, 3), got %d", len(found))
			}
			if !idx.Contains(point.New(2.0, 3.0)) {
				t.Errorf("Expected Contains (2, 3)")
			}
			if idx.Contains(point.New(9.0, 9.0)) {
				t.Errorf("Did not expect Contains (9, 9)")
			}

			// Erase one duplicate by identity.
			if !idx.Erase(found[0]) {
				t.Fatalf("Erase of a stored element failed")
			}
			if idx.Erase(found[0]) {
				t.Errorf("Second erase of the same element must fail")
			}
			if got := len(idx.Find(point.New(2.0, 3.0)).Slice()); got != 1 {
				t.Fatalf("Expected 1 element left at (2, 3), got %d", got)
			}

			// Erase the rest of the point.
			n, err := idx.ErasePoint(point.New(2.0, 3.0))
			if err != nil || n != 1 {
				t.Fatalf("ErasePoint: expected (1, nil), got (%d, %v)", n, err)
			}
			if idx.Contains(point.New(2.0, 3.0)) {
				t.Errorf("Point still present after ErasePoint")
			}
			if idx.Size() != len(pts)-2 {
				t.Errorf("Expected size %d, got %d", len(pts)-2, idx.Size())
			}

			idx.Clear()
			if !idx.Empty() || idx.Size() != 0 {
				t.Errorf("Expected empty index after Clear")
			}
		})
	}
}

func TestIndex_RangeAndDisjoint(t *testing.T) {
	for _, tag := range allTags {
		t.Run(tag.String(), func(t *testing.T) {
			idx := mustIndex(t, tag, 2)
			for i, p := range []point.Point[float64]{
				point.New(1.0, 5.0), point.New(2.0, 3.0), point.New(3.0, 1.0),
			} {
				if _, err := idx.Insert(p, fmt.Sprintf("v%d", i)); err != nil {
					t.Fatal(err)
				}
			}
			box := NewBox(point.New(0.0, 0.0), point.New(3.0, 3.0))

			got := sortedPoints(idx.Range(box).Slice())
			want := []string{"(2, 3) v1", "(3, 1) v2"}
			if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
				t.Errorf("Range: expected %v, got %v", want, got)
			}

			got = sortedPoints(idx.Disjoint(box).Slice())
			if len(got) != 1 || got[0] != "(1, 5) v0" {
				t.Errorf("Disjoint: expected [(1, 5) v0], got %v", got)
			}

			if !idx.Intersects(box) {
				t.Errorf("Expected Intersects")
			}
			if idx.Intersects(NewBox(point.New(10.0, 10.0), point.New(11.0, 11.0))) {
				t.Errorf("Did not expect Intersects for a far box")
			}
		})
	}
}

func TestIndex_Nearest(t *testing.T) {
	for _, tag := range allTags {
		t.Run(tag.String(), func(t *testing.T) {
			idx := mustIndex(t, tag, 2)
			for i, p := range []point.Point[float64]{
				point.New(1.0, 5.0), point.New(2.0, 3.0), point.New(3.0, 1.0),
			} {
				if _, err := idx.Insert(p, fmt.Sprintf("v%d", i)); err != nil {
					t.Fatal(err)
				}
			}
			// S4: nearest two to the origin.
			it, err := idx.Nearest(point.New(0.0, 0.0), 2)
			if err != nil {
				t.Fatal(err)
			}
			var got []string
			for it.Next() {
				got = append(got, it.Element().Point.String())
			}
			if err := it.Err(); err != nil {
				t.Fatal(err)
			}
			want := []string{"(2, 3)", "(3, 1)"}
			if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
				t.Errorf("Expected %v, got %v", want, got)
			}

			// k beyond size yields everything.
			it, err = idx.Nearest(point.New(0.0, 0.0), 10)
			if err != nil {
				t.Fatal(err)
			}
			if n := len(it.Slice()); n != 3 {
				t.Errorf("Expected 3 elements, got %d", n)
			}
		})
	}
}

func TestIndex_NearestTiesByInsertionOrder(t *testing.T) {
	for _, tag := range allTags {
		t.Run(tag.String(), func(t *testing.T) {
			idx := mustIndex(t, tag, 2)
			// Four corners equidistant from the origin, plus duplicates.
			pts := []point.Point[float64]{
				point.New(1.0, 0.0), point.New(0.0, 1.0),
				point.New(-1.0, 0.0), point.New(0.0, -1.0),
				point.New(1.0, 0.0),
			}
			for i, p := range pts {
				if _, err := idx.Insert(p, fmt.Sprintf("v%d", i)); err != nil {
					t.Fatal(err)
				}
			}
			it, err := idx.Nearest(point.New(0.0, 0.0), 5)
			if err != nil {
				t.Fatal(err)
			}
			var got []string
			for it.Next() {
				got = append(got, it.Element().Value)
			}
			want := []string{"v0", "v1", "v2", "v3", "v4"}
			for i := range want {
				if got[i] != want[i] {
					t.Fatalf("Expected insertion-order ties %v, got %v", want, got)
				}
			}
		})
	}
}

func TestIndex_Satisfies(t *testing.T) {
	for _, tag := range allTags {
		t.Run(tag.String(), func(t *testing.T) {
			idx := mustIndex(t, tag, 2)
			for i, p := range []point.Point[float64]{
				point.New(1.0, 5.0), point.New(2.0, 3.0), point.New(3.0, 1.0), point.New(4.0, 4.0),
			} {
				if _, err := idx.Insert(p, fmt.Sprintf("v%d", i)); err != nil {
					t.Fatal(err)
				}
			}
			got := sortedPoints(idx.Satisfies(
				AxisAtMost[float64, string](0, 3),
				AxisAtLeast[float64, string](1, 3),
			).Slice())
			want := []string{"(1, 5) v0", "(2, 3) v1"}
			if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
				t.Errorf("Expected %v, got %v", want, got)
			}

			got = sortedPoints(idx.Satisfies(
				DominatesPoint[float64, string](point.New(3.0, 3.0), nil),
			).Slice())
			want = []string{"(2, 3) v1", "(3, 1) v2"}
			if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
				t.Errorf("Expected %v, got %v", want, got)
			}
		})
	}
}

func TestIndex_Errors(t *testing.T) {
	for _, tag := range allTags {
		t.Run(tag.String(), func(t *testing.T) {
			idx := mustIndex(t, tag, 2)

			if _, err := idx.Insert(point.New(1.0), "v"); !errors.Is(err, ErrDimensionMismatch) {
				t.Errorf("Expected ErrDimensionMismatch, got %v", err)
			}
			if _, err := idx.Nearest(point.New(0.0, 0.0), 1); !errors.Is(err, ErrEmptyContainer) {
				t.Errorf("Expected ErrEmptyContainer, got %v", err)
			}
			if _, err := idx.Insert(point.New(1.0, 1.0), "v"); err != nil {
				t.Fatal(err)
			}
			if _, err := idx.Nearest(point.New(0.0, 0.0), 0); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("Expected ErrInvalidArgument, got %v", err)
			}
			if _, err := idx.Nearest(point.New(0.0), 1); !errors.Is(err, ErrDimensionMismatch) {
				t.Errorf("Expected ErrDimensionMismatch, got %v", err)
			}
			it := idx.Find(point.New(1.0))
			if it.Next() || !errors.Is(it.Err(), ErrDimensionMismatch) {
				t.Errorf("Expected ErrDimensionMismatch from Find iterator, got %v", it.Err())
			}
		})
	}
}

func TestIndex_IteratorInvalidation(t *testing.T) {
	for _, tag := range allTags {
		t.Run(tag.String(), func(t *testing.T) {
			idx := mustIndex(t, tag, 2)
			for i := 0; i < 6; i++ {
				if _, err := idx.Insert(point.New(float64(i), float64(i)), "v"); err != nil {
					t.Fatal(err)
				}
			}
			it := idx.Range(NewBox(point.New(0.0, 0.0), point.New(10.0, 10.0)))
			if !it.Next() {
				t.Fatalf("Expected at least one element")
			}
			if _, err := idx.Insert(point.New(20.0, 20.0), "w"); err != nil {
				t.Fatal(err)
			}
			if it.Next() {
				t.Errorf("Expected invalidated iterator to stop")
			}
			if !errors.Is(it.Err(), ErrIteratorInvalidated) {
				t.Errorf("Expected ErrIteratorInvalidated, got %v", it.Err())
			}
		})
	}
}

func TestIndex_BulkLoad(t *testing.T) {
	for _, tag := range allTags {
		t.Run(tag.String(), func(t *testing.T) {
			idx := mustIndex(t, tag, 2)
			var entries []Entry[float64, string]
			for i := 0; i < 50; i++ {
				entries = append(entries, Entry[float64, string]{
					Point: point.New(float64(i%10), float64(i/10)),
					Value: fmt.Sprintf("v%d", i),
				})
			}
			if err := idx.BulkLoad(entries); err != nil {
				t.Fatal(err)
			}
			if idx.Size() != 50 {
				t.Fatalf("Expected size 50, got %d", idx.Size())
			}
			if got := len(idx.Find(point.New(3.0, 2.0)).Slice()); got != 1 {
				t.Errorf("Expected 1 element at (3, 2), got %d", got)
			}
			b, ok := idx.Bounds()
			if !ok {
				t.Fatalf("Expected bounds")
			}
			if !b.Min.Equal(point.New(0.0, 0.0)) || !b.Max.Equal(point.New(9.0, 4.0)) {
				t.Errorf("Expected bounds (0, 0)..(9, 4), got %v..%v", b.Min, b.Max)
			}
			// All 50 reachable by scan.
			n := 0
			idx.Scan(func(*Element[float64, string]) bool { n++; return true })
			if n != 50 {
				t.Errorf("Expected 50 scanned, got %d", n)
			}
		})
	}
}

func TestIndex_BulkLoadPooled(t *testing.T) {
	cfg := testConfig(2)
	cfg.PoolNodes = true
	for _, tag := range []Tag{RTree, RStarTree} {
		idx, err := New[float64, string](tag, cfg)
		if err != nil {
			t.Fatal(err)
		}
		var entries []Entry[float64, string]
		for i := 0; i < 200; i++ {
			entries = append(entries, Entry[float64, string]{
				Point: point.New(float64(i%20), float64(i/20)),
			})
		}
		if err := idx.BulkLoad(entries); err != nil {
			t.Fatal(err)
		}
		if idx.Size() != 200 {
			t.Fatalf("%v: expected size 200, got %d", tag, idx.Size())
		}
		got := idx.Range(NewBox(point.New(0.0, 0.0), point.New(4.0, 4.0))).Slice()
		if len(got) != 25 {
			t.Errorf("%v: expected 25 in range, got %d", tag, len(got))
		}
	}
}

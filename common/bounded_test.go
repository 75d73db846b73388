package common

import (
	"reflect"
	"testing"
)

func TestBestK_AddAndItems(t *testing.T) {
	b := NewBestK[int](3, func(a, b int) bool { return a < b })
	for _, v := range []int{9, 4, 7, 1, 8, 2} {
		b.Add(v)
	}
	expected := []int{1, 2, 4}
	if !reflect.DeepEqual(b.Items(), expected) {
		t.Errorf("Expected %v, but got %v", expected, b.Items())
	}
	if !b.Full() {
		t.Errorf("Expected full buffer")
	}
	worst, ok := b.Worst()
	if !ok || worst != 4 {
		t.Errorf("Expected worst 4, got %d (%v)", worst, ok)
	}
}

func TestBestK_StableOnTies(t *testing.T) {
	type item struct {
		dist float64
		seq  int
	}
	b := NewBestK[item](4, func(a, b item) bool { return a.dist < b.dist })
	b.Add(item{1, 0})
	b.Add(item{1, 1})
	b.Add(item{0, 2})
	b.Add(item{1, 3})

	got := make([]int, 0, 4)
	for _, it := range b.Items() {
		got = append(got, it.seq)
	}
	expected := []int{2, 0, 1, 3}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, but got %v", expected, got)
	}
}

func TestBestK_Underfilled(t *testing.T) {
	b := NewBestK[int](5, func(a, b int) bool { return a < b })
	b.Add(3)
	b.Add(1)
	if b.Full() {
		t.Errorf("Expected underfilled buffer")
	}
	if b.Len() != 2 {
		t.Errorf("Expected len 2, got %d", b.Len())
	}
	if !reflect.DeepEqual(b.Items(), []int{1, 3}) {
		t.Errorf("Expected [1 3], got %v", b.Items())
	}
}

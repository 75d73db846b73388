package index

import (
	"fmt"

	"github.com/rotblauer/pareto/common"
	"github.com/rotblauer/pareto/point"
)

// Entry is an unstored (point, value) pair, the input to BulkLoad.
type Entry[T common.Number, V any] struct {
	Point point.Point[T]
	Value V
}

// Element is an entry owned by an index. The index assigns a sequence
// number at insertion; queries use it to break ties in insertion order.
// The Point must not be mutated while the element is stored.
type Element[T common.Number, V any] struct {
	Point point.Point[T]
	Value V

	seq uint64
}

// Seq is the element's insertion sequence within its index.
func (e *Element[T, V]) Seq() uint64 {
	return e.seq
}

// String renders "point value", the line format fronts and archives
// stream in.
func (e *Element[T, V]) String() string {
	return fmt.Sprintf("%s %v", e.Point.String(), e.Value)
}

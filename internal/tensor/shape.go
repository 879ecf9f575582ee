package tensor

import (
	"fmt"
	"strings"
)

// MaxAxes is the maximum tensor rank.
const MaxAxes = 32

// Shape represents the extents of a tensor, outermost axis first.
type Shape []int

// NumElements returns the total number of elements in the shape.
// The empty shape describes a scalar with one element.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// String renders the shape as "2 x 3 x 4 (24)".
func (s Shape) String() string {
	if len(s) == 0 {
		return "(1)"
	}
	parts := make([]string, len(s))
	for i, dim := range s {
		parts[i] = fmt.Sprintf("%d", dim)
	}
	return fmt.Sprintf("%s (%d)", strings.Join(parts, " x "), s.NumElements())
}

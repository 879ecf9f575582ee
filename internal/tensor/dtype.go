// Package tensor provides the core tensor container for the Latte framework.
package tensor

import "unsafe"

// DType is a constraint for supported tensor element types.
// It uses Go generics to ensure compile-time type safety.
type DType interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint8 | ~bool
}

// DataType represents runtime type information for tensors.
type DataType int

// Supported element types.
const (
	Float32 DataType = iota
	Float64
	Int32
	Int64
	Uint8
	Bool
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Float64, Int64:
		return 8
	case Uint8, Bool:
		return 1
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}

// IsFloat reports whether the type supports gradient arithmetic.
// Update, scaling and the reductions are defined only for float types.
func (dt DataType) IsFloat() bool {
	return dt == Float32 || dt == Float64
}

// DataTypeOf returns the runtime tag for a generic element type.
func DataTypeOf[T DType]() DataType {
	var zero T
	switch any(zero).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	case bool:
		return Bool
	default:
		panic("unsupported element type")
	}
}

// bytesAs reinterprets p as a slice of n elements of type E.
func bytesAs[E any](p []byte, n int) []E {
	if n == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy reinterpretation, length checked by callers.
	return unsafe.Slice((*E)(unsafe.Pointer(&p[0])), n)
}

// asBytes reinterprets s as its backing byte slice.
func asBytes[E any](s []E) []byte {
	if len(s) == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy reinterpretation.
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(s[0])))
}

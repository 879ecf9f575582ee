// Package cpu implements the tensor device interface on ordinary host
// memory. It exists for configurations that want an explicit device rather
// than host-only tensors: buffers are plain byte slices, transfers are
// memcpy, and the kernels delegate to the shared vectorized routines.
package cpu

import (
	"fmt"
	"unsafe"

	"github.com/latte-ml/latte/internal/tensor"
	"github.com/latte-ml/latte/internal/vec"
)

// Device is a host-memory device context.
type Device struct{}

var _ tensor.Device = Device{}

// New returns the cpu device context. The context is stateless; the zero
// value is equally usable.
func New() Device { return Device{} }

type buffer struct {
	data []byte
}

func (b *buffer) Size() int { return len(b.data) }
func (b *buffer) Release()  { b.data = nil }

func (Device) Name() string { return "cpu" }

func (Device) Alloc(bytes int) tensor.Buffer {
	return &buffer{data: make([]byte, bytes)}
}

func (Device) Upload(dst tensor.Buffer, src []byte) {
	copy(dst.(*buffer).data, src)
}

func (Device) Download(dst []byte, src tensor.Buffer) {
	copy(dst, src.(*buffer).data)
}

func (Device) Copy(dst, src tensor.Buffer, bytes int) {
	copy(dst.(*buffer).data[:bytes], src.(*buffer).data[:bytes])
}

func (Device) Fill(dt tensor.DataType, n int, value float64, x tensor.Buffer) {
	switch dt {
	case tensor.Float32:
		vec.Fill(view[float32](x, n), float32(value))
	case tensor.Float64:
		vec.Fill(view[float64](x, n), value)
	default:
		panic(fmt.Sprintf("cpu: fill is not implemented for %s elements", dt))
	}
}

func (Device) Axpy(dt tensor.DataType, n int, alpha float64, x, y tensor.Buffer) {
	switch dt {
	case tensor.Float32:
		vec.Axpy(float32(alpha), view[float32](x, n), view[float32](y, n))
	case tensor.Float64:
		vec.Axpy(alpha, view[float64](x, n), view[float64](y, n))
	default:
		panic(fmt.Sprintf("cpu: axpy is not implemented for %s elements", dt))
	}
}

func (Device) Scal(dt tensor.DataType, n int, alpha float64, x tensor.Buffer) {
	switch dt {
	case tensor.Float32:
		vec.Scal(float32(alpha), view[float32](x, n))
	case tensor.Float64:
		vec.Scal(alpha, view[float64](x, n))
	default:
		panic(fmt.Sprintf("cpu: scal is not implemented for %s elements", dt))
	}
}

func (Device) Asum(dt tensor.DataType, n int, x tensor.Buffer) float64 {
	switch dt {
	case tensor.Float32:
		return vec.Asum(view[float32](x, n))
	case tensor.Float64:
		return vec.Asum(view[float64](x, n))
	default:
		panic(fmt.Sprintf("cpu: asum is not implemented for %s elements", dt))
	}
}

func (Device) Dot(dt tensor.DataType, n int, x, y tensor.Buffer) float64 {
	switch dt {
	case tensor.Float32:
		return vec.Dot(view[float32](x, n), view[float32](y, n))
	case tensor.Float64:
		return vec.Dot(view[float64](x, n), view[float64](y, n))
	default:
		panic(fmt.Sprintf("cpu: dot is not implemented for %s elements", dt))
	}
}

// view reinterprets a cpu buffer as n elements of type E.
func view[E any](b tensor.Buffer, n int) []E {
	data := b.(*buffer).data
	if n == 0 {
		return nil
	}
	var zero E
	if need := n * int(unsafe.Sizeof(zero)); need > len(data) {
		panic(fmt.Sprintf("cpu: %d elements exceed a %d-byte buffer", n, len(data)))
	}
	//nolint:gosec // unsafe.Slice for zero-copy reinterpretation, length checked above.
	return unsafe.Slice((*E)(unsafe.Pointer(&data[0])), n)
}

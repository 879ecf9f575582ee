package tensor

import (
	"fmt"
	"math"
)

// MockDevice is an in-process Device whose buffers are plain host slices.
// It exists for tests of the residency and dispatch machinery: it counts
// transfers so a test can assert that data moved (or did not move) across
// the host/device boundary. The math kernels are naive loops.
type MockDevice struct {
	Uploads   int
	Downloads int
	Allocs    int
	Frees     int
}

var _ Device = (*MockDevice)(nil)

type mockBuffer struct {
	data []byte
	dev  *MockDevice
}

func (b *mockBuffer) Size() int { return len(b.data) }

func (b *mockBuffer) Release() {
	if b.dev != nil {
		b.dev.Frees++
		b.dev = nil
	}
	b.data = nil
}

// NewMockDevice returns a fresh mock with zeroed counters.
func NewMockDevice() *MockDevice { return &MockDevice{} }

func (d *MockDevice) Name() string { return "mock" }

func (d *MockDevice) Alloc(bytes int) Buffer {
	d.Allocs++
	return &mockBuffer{data: make([]byte, bytes), dev: d}
}

func (d *MockDevice) Upload(dst Buffer, src []byte) {
	d.Uploads++
	copy(dst.(*mockBuffer).data, src)
}

func (d *MockDevice) Download(dst []byte, src Buffer) {
	d.Downloads++
	copy(dst, src.(*mockBuffer).data)
}

func (d *MockDevice) Copy(dst, src Buffer, bytes int) {
	copy(dst.(*mockBuffer).data[:bytes], src.(*mockBuffer).data[:bytes])
}

// Bytes exposes a mock buffer's backing store so tests can poke at device
// memory directly.
func (d *MockDevice) Bytes(b Buffer) []byte { return b.(*mockBuffer).data }

func (d *MockDevice) Fill(dt DataType, n int, value float64, x Buffer) {
	xb := x.(*mockBuffer).data
	switch dt {
	case Float32:
		xs := bytesAs[float32](xb, n)
		for i := range xs {
			xs[i] = float32(value)
		}
	case Float64:
		xs := bytesAs[float64](xb, n)
		for i := range xs {
			xs[i] = value
		}
	default:
		panic(fmt.Sprintf("tensor: mock fill is not implemented for %s elements", dt))
	}
}

func (d *MockDevice) Axpy(dt DataType, n int, alpha float64, x, y Buffer) {
	xb, yb := x.(*mockBuffer).data, y.(*mockBuffer).data
	switch dt {
	case Float32:
		xs, ys := bytesAs[float32](xb, n), bytesAs[float32](yb, n)
		for i := 0; i < n; i++ {
			ys[i] += float32(alpha) * xs[i]
		}
	case Float64:
		xs, ys := bytesAs[float64](xb, n), bytesAs[float64](yb, n)
		for i := 0; i < n; i++ {
			ys[i] += alpha * xs[i]
		}
	default:
		panic(fmt.Sprintf("tensor: mock axpy is not implemented for %s elements", dt))
	}
}

func (d *MockDevice) Scal(dt DataType, n int, alpha float64, x Buffer) {
	xb := x.(*mockBuffer).data
	switch dt {
	case Float32:
		xs := bytesAs[float32](xb, n)
		for i := range xs {
			xs[i] *= float32(alpha)
		}
	case Float64:
		xs := bytesAs[float64](xb, n)
		for i := range xs {
			xs[i] *= alpha
		}
	default:
		panic(fmt.Sprintf("tensor: mock scal is not implemented for %s elements", dt))
	}
}

func (d *MockDevice) Asum(dt DataType, n int, x Buffer) float64 {
	xb := x.(*mockBuffer).data
	sum := 0.0
	switch dt {
	case Float32:
		for _, v := range bytesAs[float32](xb, n) {
			sum += math.Abs(float64(v))
		}
	case Float64:
		for _, v := range bytesAs[float64](xb, n) {
			sum += math.Abs(v)
		}
	default:
		panic(fmt.Sprintf("tensor: mock asum is not implemented for %s elements", dt))
	}
	return sum
}

func (d *MockDevice) Dot(dt DataType, n int, x, y Buffer) float64 {
	xb, yb := x.(*mockBuffer).data, y.(*mockBuffer).data
	sum := 0.0
	switch dt {
	case Float32:
		xs, ys := bytesAs[float32](xb, n), bytesAs[float32](yb, n)
		for i := 0; i < n; i++ {
			sum += float64(xs[i]) * float64(ys[i])
		}
	case Float64:
		xs, ys := bytesAs[float64](xb, n), bytesAs[float64](yb, n)
		for i := 0; i < n; i++ {
			sum += xs[i] * ys[i]
		}
	default:
		panic(fmt.Sprintf("tensor: mock dot is not implemented for %s elements", dt))
	}
	return sum
}

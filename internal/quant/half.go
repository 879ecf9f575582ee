package quant

import (
	"encoding/binary"
	"math"

	"github.com/latte-ml/latte/internal/tensor"
)

// Half stores elements as IEEE 754 binary16, packed into the first
// count x 2 bytes of the buffer. Compression rounds to nearest even and
// loses precision beyond 11 significand bits; values outside the binary16
// exponent range become infinities.
type Half struct{}

var _ tensor.Quantizer = Half{}

func (Half) CompressHost(dt tensor.DataType, n int, src, dst []byte) {
	checkFloat(dt)
	switch dt {
	case tensor.Float32:
		for i := 0; i < n; i++ {
			v := math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
			binary.LittleEndian.PutUint16(dst[i*2:], Float32ToFloat16(v))
		}
	case tensor.Float64:
		for i := 0; i < n; i++ {
			v := math.Float64frombits(binary.LittleEndian.Uint64(src[i*8:]))
			binary.LittleEndian.PutUint16(dst[i*2:], Float32ToFloat16(float32(v)))
		}
	}
}

func (Half) ExpandHost(dt tensor.DataType, n int, src, dst []byte) {
	checkFloat(dt)
	switch dt {
	case tensor.Float32:
		for i := 0; i < n; i++ {
			v := Float16ToFloat32(binary.LittleEndian.Uint16(src[i*2:]))
			binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
		}
	case tensor.Float64:
		for i := 0; i < n; i++ {
			v := Float16ToFloat32(binary.LittleEndian.Uint16(src[i*2:]))
			binary.LittleEndian.PutUint64(dst[i*8:], math.Float64bits(float64(v)))
		}
	}
}

func (q Half) CompressDevice(ctx tensor.Device, dt tensor.DataType, n int, src, dst tensor.Buffer) {
	checkFloat(dt)
	hostRoundTrip(ctx, n, dt.Size(), src, dst, func(s, d []byte) {
		q.CompressHost(dt, n, s, d)
	})
}

func (q Half) ExpandDevice(ctx tensor.Device, dt tensor.DataType, n int, src, dst tensor.Buffer) {
	checkFloat(dt)
	hostRoundTrip(ctx, n, dt.Size(), src, dst, func(s, d []byte) {
		q.ExpandHost(dt, n, s, d)
	})
}

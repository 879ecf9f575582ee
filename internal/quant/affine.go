package quant

import (
	"encoding/binary"
	"math"

	"github.com/latte-ml/latte/internal/tensor"
)

// Affine maps elements onto a 256-point linear grid: the stored form is one
// uint8 code per element slot, computed as round(x/Scale) + ZeroPoint and
// clamped into [0, 255]. Expansion maps codes back through
// (code - ZeroPoint) * Scale. Values representable on the grid round-trip
// exactly; everything else lands on the nearest grid point.
type Affine struct {
	Scale     float64
	ZeroPoint int
}

var _ tensor.Quantizer = Affine{}

// NewAffine builds an affine quantizer covering [min, max] with 256 codes.
// Panics unless min < max.
func NewAffine(min, max float64) Affine {
	if min >= max {
		panic("quant: affine range must be non-empty")
	}
	scale := (max - min) / 255
	return Affine{Scale: scale, ZeroPoint: int(math.Round(-min / scale))}
}

func (q Affine) code(v float64) uint8 {
	c := math.Round(v/q.Scale) + float64(q.ZeroPoint)
	if c < 0 {
		return 0
	}
	if c > 255 {
		return 255
	}
	return uint8(c)
}

func (q Affine) value(c uint8) float64 {
	return float64(int(c)-q.ZeroPoint) * q.Scale
}

func (q Affine) CompressHost(dt tensor.DataType, n int, src, dst []byte) {
	checkFloat(dt)
	es := dt.Size()
	switch dt {
	case tensor.Float32:
		for i := 0; i < n; i++ {
			v := math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
			dst[i*es] = q.code(float64(v))
		}
	case tensor.Float64:
		for i := 0; i < n; i++ {
			v := math.Float64frombits(binary.LittleEndian.Uint64(src[i*8:]))
			dst[i*es] = q.code(v)
		}
	}
}

func (q Affine) ExpandHost(dt tensor.DataType, n int, src, dst []byte) {
	checkFloat(dt)
	es := dt.Size()
	switch dt {
	case tensor.Float32:
		for i := 0; i < n; i++ {
			v := float32(q.value(src[i*es]))
			binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
		}
	case tensor.Float64:
		for i := 0; i < n; i++ {
			binary.LittleEndian.PutUint64(dst[i*8:], math.Float64bits(q.value(src[i*es])))
		}
	}
}

func (q Affine) CompressDevice(ctx tensor.Device, dt tensor.DataType, n int, src, dst tensor.Buffer) {
	checkFloat(dt)
	hostRoundTrip(ctx, n, dt.Size(), src, dst, func(s, d []byte) {
		q.CompressHost(dt, n, s, d)
	})
}

func (q Affine) ExpandDevice(ctx tensor.Device, dt tensor.DataType, n int, src, dst tensor.Buffer) {
	checkFloat(dt)
	hostRoundTrip(ctx, n, dt.Size(), src, dst, func(s, d []byte) {
		q.ExpandHost(dt, n, s, d)
	})
}

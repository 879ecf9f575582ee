package tensor

import (
	"fmt"

	"github.com/latte-ml/latte/internal/tensorpb"
)

// Wire-format round trip. Serialization failures here are programming
// errors (unsupported element type, shape or count mismatch) and panic;
// parse errors of the wire bytes themselves live in the tensorpb package.

// dataTypeToProto maps a runtime element type to its wire tag.
func dataTypeToProto(dt DataType) tensorpb.ElemType {
	switch dt {
	case Float32:
		return tensorpb.ElemFloat32
	case Float64:
		return tensorpb.ElemFloat64
	case Int32:
		return tensorpb.ElemInt32
	case Int64:
		return tensorpb.ElemInt64
	case Uint8:
		return tensorpb.ElemUint8
	case Bool:
		return tensorpb.ElemBool
	default:
		panic(fmt.Sprintf("tensor: no wire tag for %s elements", dt))
	}
}

// ProtoDataType maps a wire tag back to the runtime element type.
// The second result is false for unknown or unspecified tags.
func ProtoDataType(e tensorpb.ElemType) (DataType, bool) {
	switch e {
	case tensorpb.ElemFloat32:
		return Float32, true
	case tensorpb.ElemFloat64:
		return Float64, true
	case tensorpb.ElemInt32:
		return Int32, true
	case tensorpb.ElemInt64:
		return Int64, true
	case tensorpb.ElemUint8:
		return Uint8, true
	case tensorpb.ElemBool:
		return Bool, true
	default:
		return 0, false
	}
}

// ShapeMatches reports whether the external message describes this tensor's
// shape. Legacy messages carrying the deprecated (num, channels, height,
// width) fields are compared against the trailing four axes, indexed from
// the end of the local shape; messages with an explicit shape list are
// compared element-wise.
func (t *Tensor[T]) ShapeMatches(p *tensorpb.TensorProto) bool {
	if p.HasLegacyShape {
		if len(t.shape) > 4 {
			return false
		}
		legacy := p.LegacyDims()
		return t.LegacyDim(-4) == int(legacy[0]) &&
			t.LegacyDim(-3) == int(legacy[1]) &&
			t.LegacyDim(-2) == int(legacy[2]) &&
			t.LegacyDim(-1) == int(legacy[3])
	}
	dims := p.ShapeDims()
	if len(dims) != len(t.shape) {
		return false
	}
	for i, d := range dims {
		if int(d) != t.shape[i] {
			return false
		}
	}
	return true
}

// ToProto serializes the shape, element-type tag and the packed values
// (and, if requested, gradients) into a wire message. Legacy extent fields
// are never written. Bool tensors have no serialization encoding.
func (t *Tensor[T]) ToProto(withGradients bool) *tensorpb.TensorProto {
	t.requireValues()
	dt := DataTypeOf[T]()
	p := &tensorpb.TensorProto{
		Shape:       &tensorpb.ShapeProto{Dim: shapeToDims(t.shape)},
		ShapeStride: &tensorpb.ShapeProto{Dim: shapeToDims(t.stride)},
		DataType:    dataTypeToProto(dt),
	}
	switch dt {
	case Float32:
		p.Data = append([]float32(nil), bytesAs[float32](t.values.HostBytes(), t.count)...)
		if withGradients {
			t.requireGradients()
			p.Diff = append([]float32(nil), bytesAs[float32](t.grads.HostBytes(), t.count)...)
		}
	case Float64:
		p.DoubleData = append([]float64(nil), bytesAs[float64](t.values.HostBytes(), t.count)...)
		if withGradients {
			t.requireGradients()
			p.DoubleDiff = append([]float64(nil), bytesAs[float64](t.grads.HostBytes(), t.count)...)
		}
	case Int32, Int64, Uint8:
		n := t.ByteCount()
		p.PackedData = append([]byte(nil), t.values.HostBytes()[:n]...)
		if withGradients {
			t.requireGradients()
			p.PackedDiff = append([]byte(nil), t.grads.HostBytes()[:n]...)
		}
	default:
		panic(fmt.Sprintf("tensor: serialization is not implemented for %s elements", dt))
	}
	return p
}

// FromProto copies element content from the wire message into the tensor.
// With reshape true the tensor adopts the message's shape first (either the
// explicit shape list or the legacy 4-tuple); with reshape false the shapes
// must already match. Element counts must match exactly.
func (t *Tensor[T]) FromProto(p *tensorpb.TensorProto, reshape bool) {
	if reshape {
		var shape Shape
		if p.HasLegacyShape {
			legacy := p.LegacyDims()
			shape = Shape{int(legacy[0]), int(legacy[1]), int(legacy[2]), int(legacy[3])}
		} else {
			for _, d := range p.ShapeDims() {
				shape = append(shape, int(d))
			}
		}
		t.Reshape(shape)
	} else if !t.ShapeMatches(p) {
		panic("tensor: shape mismatch (reshape not requested)")
	}

	t.requireValues()
	t.copyPayload(p.Data, p.DoubleData, p.PackedData, false, "values")

	if len(p.Diff) > 0 || len(p.DoubleDiff) > 0 || len(p.PackedDiff) > 0 {
		t.requireGradients()
		t.copyPayload(p.Diff, p.DoubleDiff, p.PackedDiff, true, "gradients")
	}
}

// copyPayload writes one side's payload, accepting whichever of the three
// encodings the message carries and converting between float widths.
func (t *Tensor[T]) copyPayload(f32 []float32, f64 []float64, packed []byte, gradients bool, side string) {
	dt := DataTypeOf[T]()
	dstBytes := t.values.MutableHostBytes()
	if gradients {
		dstBytes = t.grads.MutableHostBytes()
	}

	if !dt.IsFloat() {
		if dt == Bool {
			panic("tensor: deserialization is not implemented for bool elements")
		}
		if len(packed) != t.ByteCount() {
			panic(fmt.Sprintf("tensor: packed %s payload is %d bytes, tensor needs %d", side, len(packed), t.ByteCount()))
		}
		copy(dstBytes[:t.ByteCount()], packed)
		return
	}

	dst := bytesAs[T](dstBytes, t.count)
	switch {
	case len(f64) > 0:
		if len(f64) != t.count {
			panic(fmt.Sprintf("tensor: %s payload has %d elements, tensor has %d", side, len(f64), t.count))
		}
		copyFloats(dst, nil, f64)
	case len(packed) > 0 && len(f32) == 0:
		if len(packed) != t.ByteCount() {
			panic(fmt.Sprintf("tensor: packed %s payload is %d bytes, tensor needs %d", side, len(packed), t.ByteCount()))
		}
		copy(dstBytes[:t.ByteCount()], packed)
	default:
		if len(f32) != t.count {
			panic(fmt.Sprintf("tensor: %s payload has %d elements, tensor has %d", side, len(f32), t.count))
		}
		copyFloats(dst, f32, nil)
	}
}

// copyFloats converts one float payload into the destination element type.
func copyFloats[T DType](dst []T, f32 []float32, f64 []float64) {
	switch d := any(dst).(type) {
	case []float32:
		if f64 != nil {
			for i, v := range f64 {
				d[i] = float32(v)
			}
		} else {
			copy(d, f32)
		}
	case []float64:
		if f64 != nil {
			copy(d, f64)
		} else {
			for i, v := range f32 {
				d[i] = float64(v)
			}
		}
	default:
		panic("tensor: float payload for a non-float tensor")
	}
}

func shapeToDims(s Shape) []int64 {
	dims := make([]int64, len(s))
	for i, d := range s {
		dims[i] = int64(d)
	}
	return dims
}

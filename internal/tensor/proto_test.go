package tensor

import (
	"testing"

	"github.com/latte-ml/latte/internal/tensorpb"
)

func TestToProtoFloat32(t *testing.T) {
	x := New[float32](Shape{2, 3}, nil)
	v := x.MutableHostValues()
	for i := range v {
		v[i] = float32(i) + 0.5
	}

	p := x.ToProto(false)

	if p.DataType != tensorpb.ElemFloat32 {
		t.Errorf("data type tag = %v", p.DataType)
	}
	if len(p.Shape.Dim) != 2 || p.Shape.Dim[0] != 2 || p.Shape.Dim[1] != 3 {
		t.Errorf("shape dims = %v", p.Shape.Dim)
	}
	if p.Num != 0 || p.Channels != 0 || p.HasLegacyShape {
		t.Error("legacy extent fields must never be written")
	}
	if len(p.Data) != 6 || p.Data[5] != 5.5 {
		t.Errorf("data payload = %v", p.Data)
	}
	if len(p.Diff) != 0 {
		t.Error("gradients serialized without being requested")
	}

	// The payload is a copy, not a view.
	p.Data[0] = 99
	assertEqualFloat64(t, 0.5, float64(x.ValueAt(0, 0)), "payload aliases tensor storage")
}

func TestToProtoWithGradients(t *testing.T) {
	x := New[float64](Shape{4}, nil)
	v := x.MutableHostValues()
	g := x.MutableHostGradients()
	for i := range v {
		v[i] = float64(i)
		g[i] = -float64(i)
	}

	p := x.ToProto(true)
	if len(p.DoubleData) != 4 || p.DoubleData[3] != 3 {
		t.Errorf("double data payload = %v", p.DoubleData)
	}
	if len(p.DoubleDiff) != 4 || p.DoubleDiff[3] != -3 {
		t.Errorf("double diff payload = %v", p.DoubleDiff)
	}
	if len(p.Data) != 0 || len(p.Diff) != 0 {
		t.Error("float64 tensors must use the double fields")
	}
}

func TestToProtoPackedInt(t *testing.T) {
	x := New[int32](Shape{3}, nil)
	v := x.MutableHostValues()
	v[0], v[1], v[2] = 1, -2, 1 << 20
	g := x.MutableHostGradients()
	g[0] = 7

	p := x.ToProto(true)
	if p.DataType != tensorpb.ElemInt32 {
		t.Errorf("data type tag = %v", p.DataType)
	}
	assertEqualInt(t, 12, len(p.PackedData), "packed values size")
	assertEqualInt(t, 12, len(p.PackedDiff), "packed gradients size")
	if got := bytesAs[int32](p.PackedData, 3); got[2] != 1<<20 {
		t.Errorf("packed values = %v", got)
	}
	if got := bytesAs[int32](p.PackedDiff, 3); got[0] != 7 {
		t.Errorf("packed gradients = %v", got)
	}
}

func TestToProtoBoolPanics(t *testing.T) {
	x := New[bool](Shape{2}, nil)
	x.MutableHostValues()
	assertPanics(t, "bool serialization", func() { x.ToProto(false) })
}

func TestFromProtoRoundTrip(t *testing.T) {
	src := New[float32](Shape{2, 3, 4}, nil)
	v := src.MutableHostValues()
	g := src.MutableHostGradients()
	for i := range v {
		v[i] = float32(i) * 0.25
		g[i] = float32(i) * -0.5
	}

	raw := src.ToProto(true).Marshal()
	p, err := tensorpb.Unmarshal(raw)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	dst := NewEmpty[float32](nil)
	dst.FromProto(p, true)

	assertEqualShape(t, Shape{2, 3, 4}, dst.Shape(), "round-tripped shape")
	for i, want := range v {
		if dst.HostValues()[i] != want {
			t.Fatalf("values[%d] = %v, want %v", i, dst.HostValues()[i], want)
		}
		if dst.HostGradients()[i] != g[i] {
			t.Fatalf("gradients[%d] = %v, want %v", i, dst.HostGradients()[i], g[i])
		}
	}
}

func TestFromProtoWidthConversion(t *testing.T) {
	// A float64 payload deserializes into a float32 tensor, and vice versa.
	p := &tensorpb.TensorProto{
		Shape:      &tensorpb.ShapeProto{Dim: []int64{2}},
		DataType:   tensorpb.ElemFloat64,
		DoubleData: []float64{1.5, -2.5},
	}
	x := NewEmpty[float32](nil)
	x.FromProto(p, true)
	assertEqualFloat64(t, -2.5, float64(x.ValueAt(1)), "double payload into float32")

	q := &tensorpb.TensorProto{
		Shape:    &tensorpb.ShapeProto{Dim: []int64{2}},
		DataType: tensorpb.ElemFloat32,
		Data:     []float32{3.5, 4.5},
	}
	y := NewEmpty[float64](nil)
	y.FromProto(q, true)
	assertEqualFloat64(t, 4.5, y.ValueAt(1), "float payload into float64")
}

func TestFromProtoLegacyShape(t *testing.T) {
	p := &tensorpb.TensorProto{
		Num: 2, Channels: 3, Height: 1, Width: 1,
		HasLegacyShape: true,
		Data:           make([]float32, 6),
	}
	x := NewEmpty[float32](nil)
	x.FromProto(p, true)
	assertEqualShape(t, Shape{2, 3, 1, 1}, x.Shape(), "legacy shape becomes rank 4")
}

func TestFromProtoShapeMismatch(t *testing.T) {
	p := &tensorpb.TensorProto{
		Shape:    &tensorpb.ShapeProto{Dim: []int64{2, 3}},
		DataType: tensorpb.ElemFloat32,
		Data:     make([]float32, 6),
	}
	x := New[float32](Shape{3, 3}, nil)
	assertPanics(t, "mismatch without reshape", func() { x.FromProto(p, false) })

	// Matching shape is fine without the flag.
	y := New[float32](Shape{2, 3}, nil)
	y.FromProto(p, false)
}

func TestFromProtoCountMismatch(t *testing.T) {
	p := &tensorpb.TensorProto{
		Shape:    &tensorpb.ShapeProto{Dim: []int64{2, 3}},
		DataType: tensorpb.ElemFloat32,
		Data:     make([]float32, 5),
	}
	x := NewEmpty[float32](nil)
	assertPanics(t, "payload shorter than shape", func() { x.FromProto(p, true) })
}

func TestShapeMatches(t *testing.T) {
	x := New[float32](Shape{2, 3}, nil)

	if !x.ShapeMatches(&tensorpb.TensorProto{Shape: &tensorpb.ShapeProto{Dim: []int64{2, 3}}}) {
		t.Error("equal explicit shape must match")
	}
	if x.ShapeMatches(&tensorpb.TensorProto{Shape: &tensorpb.ShapeProto{Dim: []int64{3, 2}}}) {
		t.Error("permuted shape must not match")
	}
	if x.ShapeMatches(&tensorpb.TensorProto{Shape: &tensorpb.ShapeProto{Dim: []int64{2, 3, 1}}}) {
		t.Error("different rank must not match")
	}
}

func TestShapeMatchesLegacy(t *testing.T) {
	// End-aligned comparison: a rank-1 vector of 5 matches width=5.
	bias := New[float32](Shape{5}, nil)
	if !bias.ShapeMatches(&tensorpb.TensorProto{
		Num: 1, Channels: 1, Height: 1, Width: 5, HasLegacyShape: true,
	}) {
		t.Error("rank-1 vector must match a 1x1x1xn legacy shape")
	}
	if bias.ShapeMatches(&tensorpb.TensorProto{
		Num: 5, Channels: 1, Height: 1, Width: 1, HasLegacyShape: true,
	}) {
		t.Error("front-aligned legacy comparison must not match")
	}

	r5 := New[float32](Shape{1, 1, 1, 1, 5}, nil)
	if r5.ShapeMatches(&tensorpb.TensorProto{
		Num: 1, Channels: 1, Height: 1, Width: 5, HasLegacyShape: true,
	}) {
		t.Error("rank above 4 can never match a legacy shape")
	}
}

func TestProtoDataType(t *testing.T) {
	for _, dt := range []DataType{Float32, Float64, Int32, Int64, Uint8, Bool} {
		got, ok := ProtoDataType(dataTypeToProto(dt))
		if !ok || got != dt {
			t.Errorf("round trip of %s failed: got %v, ok=%v", dt, got, ok)
		}
	}
	if _, ok := ProtoDataType(tensorpb.ElemUnspecified); ok {
		t.Error("unspecified tag must not map to an element type")
	}
}

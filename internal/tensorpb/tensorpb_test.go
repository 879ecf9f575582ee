package tensorpb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip_Float32(t *testing.T) {
	in := &TensorProto{
		Shape:       &ShapeProto{Dim: []int64{2, 3}},
		ShapeStride: &ShapeProto{Dim: []int64{2, 3}},
		DataType:    ElemFloat32,
		Data:        []float32{1, 2, 3, 4, 5, 6},
		Diff:        []float32{-1, -2, -3, -4, -5, -6},
	}

	out, err := Unmarshal(in.Marshal())
	require.NoError(t, err)

	assert.False(t, out.HasLegacyShape)
	assert.Equal(t, []int64{2, 3}, out.ShapeDims())
	assert.Equal(t, []int64{2, 3}, out.ShapeStride.Dim)
	assert.Equal(t, ElemFloat32, out.DataType)
	assert.Equal(t, in.Data, out.Data)
	assert.Equal(t, in.Diff, out.Diff)
}

func TestRoundTrip_Float64(t *testing.T) {
	in := &TensorProto{
		Shape:      &ShapeProto{Dim: []int64{4}},
		DataType:   ElemFloat64,
		DoubleData: []float64{0.5, 1.5, 2.5, 3.5},
		DoubleDiff: []float64{1, 1, 1, 1},
	}

	out, err := Unmarshal(in.Marshal())
	require.NoError(t, err)

	assert.Equal(t, in.DoubleData, out.DoubleData)
	assert.Equal(t, in.DoubleDiff, out.DoubleDiff)
	assert.Equal(t, ElemFloat64, out.DataType)
}

func TestRoundTrip_Packed(t *testing.T) {
	in := &TensorProto{
		Shape:      &ShapeProto{Dim: []int64{3}},
		DataType:   ElemInt32,
		PackedData: []byte{1, 0, 0, 0, 2, 0, 0, 0, 3, 0, 0, 0},
		PackedDiff: []byte{9, 0, 0, 0, 9, 0, 0, 0, 9, 0, 0, 0},
	}

	out, err := Unmarshal(in.Marshal())
	require.NoError(t, err)

	assert.Equal(t, in.PackedData, out.PackedData)
	assert.Equal(t, in.PackedDiff, out.PackedDiff)
}

// TestLegacyMessage builds the deprecated 4-field form by hand and checks the
// reader accepts it.
func TestLegacyMessage(t *testing.T) {
	var buf []byte
	buf = appendTag(buf, fieldNum, wireVarint)
	buf = appendVarint(buf, 1)
	buf = appendTag(buf, fieldChannels, wireVarint)
	buf = appendVarint(buf, 1)
	buf = appendTag(buf, fieldHeight, wireVarint)
	buf = appendVarint(buf, 1)
	buf = appendTag(buf, fieldWidth, wireVarint)
	buf = appendVarint(buf, 5)
	buf = appendPackedFloat32(buf, fieldData, []float32{1, 2, 3, 4, 5})

	out, err := Unmarshal(buf)
	require.NoError(t, err)

	assert.True(t, out.HasLegacyShape)
	assert.Equal(t, [4]int64{1, 1, 1, 5}, out.LegacyDims())
	assert.Nil(t, out.ShapeDims())
	assert.Equal(t, []float32{1, 2, 3, 4, 5}, out.Data)
}

// TestUnpackedFloats checks the non-packed repeated encoding is accepted.
func TestUnpackedFloats(t *testing.T) {
	var buf []byte
	for _, v := range []float32{1.5, 2.5} {
		buf = appendTag(buf, fieldData, wire32Bit)
		b4 := appendPackedFloat32(nil, fieldData, []float32{v})
		// Take just the 4 payload bytes from the packed helper.
		buf = append(buf, b4[len(b4)-4:]...)
	}

	out, err := Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, []float32{1.5, 2.5}, out.Data)
}

func TestUnknownFieldsSkipped(t *testing.T) {
	var buf []byte
	buf = appendTag(buf, 99, wireVarint)
	buf = appendVarint(buf, 12345)
	buf = appendMessage(buf, 98, []byte("ignored"))
	buf = appendTag(buf, fieldDataType, wireVarint)
	buf = appendVarint(buf, int64(ElemUint8))

	out, err := Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, ElemUint8, out.DataType)
}

func TestTruncatedMessage(t *testing.T) {
	good := (&TensorProto{
		Shape: &ShapeProto{Dim: []int64{1000}},
		Data:  make([]float32, 1000),
	}).Marshal()

	_, err := Unmarshal(good[:len(good)-7])
	assert.Error(t, err)
}

func TestBadVarint(t *testing.T) {
	// 11 continuation bytes exceed the 64-bit varint limit.
	bad := []byte{byte(fieldNum<<3 | wireVarint)}
	for i := 0; i < 11; i++ {
		bad = append(bad, 0xFF)
	}
	_, err := Unmarshal(bad)
	assert.Error(t, err)
}

func TestMisalignedPackedFloats(t *testing.T) {
	var buf []byte
	buf = appendMessage(buf, fieldData, []byte{0, 0, 0}) // 3 bytes, not 4
	_, err := Unmarshal(buf)
	assert.Error(t, err)
}

func TestElemTypeString(t *testing.T) {
	assert.Equal(t, "float32", ElemFloat32.String())
	assert.Equal(t, "bool", ElemBool.String())
	assert.Equal(t, "unspecified", ElemUnspecified.String())
	assert.Equal(t, "unknown", ElemType(42).String())
}

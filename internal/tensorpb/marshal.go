package tensorpb

import (
	"encoding/binary"
	"math"
)

// Marshal encodes the message into protobuf wire bytes.
//
// Fields are written in field-number order: shape, data_type, shape_stride,
// then the payloads. Legacy extent fields are never written.
func (m *TensorProto) Marshal() []byte {
	buf := make([]byte, 0, m.sizeHint())

	if m.Shape != nil {
		buf = appendMessage(buf, fieldShape, m.Shape.marshal())
	}
	if m.DataType != ElemUnspecified {
		buf = appendTag(buf, fieldDataType, wireVarint)
		buf = appendVarint(buf, int64(m.DataType))
	}
	if m.ShapeStride != nil {
		buf = appendMessage(buf, fieldShapeStride, m.ShapeStride.marshal())
	}

	if len(m.Data) > 0 {
		buf = appendPackedFloat32(buf, fieldData, m.Data)
	}
	if len(m.Diff) > 0 {
		buf = appendPackedFloat32(buf, fieldDiff, m.Diff)
	}
	if len(m.DoubleData) > 0 {
		buf = appendPackedFloat64(buf, fieldDoubleData, m.DoubleData)
	}
	if len(m.DoubleDiff) > 0 {
		buf = appendPackedFloat64(buf, fieldDoubleDiff, m.DoubleDiff)
	}
	if len(m.PackedData) > 0 {
		buf = appendMessage(buf, fieldPackedData, m.PackedData)
	}
	if len(m.PackedDiff) > 0 {
		buf = appendMessage(buf, fieldPackedDiff, m.PackedDiff)
	}
	return buf
}

// sizeHint estimates the encoded size to avoid growth reallocations.
func (m *TensorProto) sizeHint() int {
	n := 64
	if m.Shape != nil {
		n += 2 + 10*len(m.Shape.Dim)
	}
	if m.ShapeStride != nil {
		n += 2 + 10*len(m.ShapeStride.Dim)
	}
	n += 4*len(m.Data) + 4*len(m.Diff)
	n += 8*len(m.DoubleData) + 8*len(m.DoubleDiff)
	n += len(m.PackedData) + len(m.PackedDiff)
	return n
}

// marshal encodes the shape message body (packed dim list, field 1).
func (s *ShapeProto) marshal() []byte {
	var packed []byte
	for _, d := range s.Dim {
		packed = appendVarint(packed, d)
	}
	buf := make([]byte, 0, len(packed)+4)
	buf = appendTag(buf, 1, wireBytes)
	buf = appendVarint(buf, int64(len(packed)))
	buf = append(buf, packed...)
	return buf
}

// appendTag appends a field tag.
func appendTag(buf []byte, field, wireType int) []byte {
	return appendVarint(buf, int64(field)<<3|int64(wireType))
}

// appendVarint appends a varint-encoded value.
func appendVarint(buf []byte, v int64) []byte {
	u := uint64(v)
	for u >= 0x80 {
		buf = append(buf, byte(u)|0x80)
		u >>= 7
	}
	return append(buf, byte(u))
}

// appendMessage appends a length-delimited field.
func appendMessage(buf []byte, field int, body []byte) []byte {
	buf = appendTag(buf, field, wireBytes)
	buf = appendVarint(buf, int64(len(body)))
	return append(buf, body...)
}

// appendPackedFloat32 appends a packed repeated float field.
func appendPackedFloat32(buf []byte, field int, vals []float32) []byte {
	buf = appendTag(buf, field, wireBytes)
	buf = appendVarint(buf, int64(4*len(vals)))
	var scratch [4]byte
	for _, v := range vals {
		binary.LittleEndian.PutUint32(scratch[:], math.Float32bits(v))
		buf = append(buf, scratch[:]...)
	}
	return buf
}

// appendPackedFloat64 appends a packed repeated double field.
func appendPackedFloat64(buf []byte, field int, vals []float64) []byte {
	buf = appendTag(buf, field, wireBytes)
	buf = appendVarint(buf, int64(8*len(vals)))
	var scratch [8]byte
	for _, v := range vals {
		binary.LittleEndian.PutUint64(scratch[:], math.Float64bits(v))
		buf = append(buf, scratch[:]...)
	}
	return buf
}

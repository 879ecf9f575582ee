// Package tensorpb implements the protobuf wire format for tensor messages.
//
// The codec is hand-written against the protobuf wire encoding (varint tags,
// length-delimited payloads, packed repeated fields) so the module carries no
// generated code. Readers accept both the explicit shape list and the legacy
// four-field (num, channels, height, width) form; writers emit only the
// explicit form.
package tensorpb

// Field numbers of the TensorProto message.
//
//	1  num            (legacy, varint)
//	2  channels       (legacy, varint)
//	3  height         (legacy, varint)
//	4  width          (legacy, varint)
//	5  data           (packed float)
//	6  diff           (packed float)
//	7  shape          (ShapeProto)
//	8  double_data    (packed double)
//	9  double_diff    (packed double)
//	10 data_type      (varint, ElemType)
//	11 shape_stride   (ShapeProto)
//	12 packed_data    (bytes)
//	13 packed_diff    (bytes)
const (
	fieldNum         = 1
	fieldChannels    = 2
	fieldHeight      = 3
	fieldWidth       = 4
	fieldData        = 5
	fieldDiff        = 6
	fieldShape       = 7
	fieldDoubleData  = 8
	fieldDoubleDiff  = 9
	fieldDataType    = 10
	fieldShapeStride = 11
	fieldPackedData  = 12
	fieldPackedDiff  = 13
)

// ElemType tags the element type of a serialized tensor.
type ElemType int32

// Element type tags. Zero is reserved for messages written before the tag
// existed.
const (
	ElemUnspecified ElemType = 0
	ElemFloat32     ElemType = 1
	ElemFloat64     ElemType = 2
	ElemInt32       ElemType = 3
	ElemInt64       ElemType = 4
	ElemUint8       ElemType = 5
	ElemBool        ElemType = 6
)

// String returns a human-readable name for the element type tag.
func (e ElemType) String() string {
	switch e {
	case ElemUnspecified:
		return "unspecified"
	case ElemFloat32:
		return "float32"
	case ElemFloat64:
		return "float64"
	case ElemInt32:
		return "int32"
	case ElemInt64:
		return "int64"
	case ElemUint8:
		return "uint8"
	case ElemBool:
		return "bool"
	default:
		return "unknown"
	}
}

// ShapeProto carries an ordered list of extents.
type ShapeProto struct {
	Dim []int64 // field 1, packed varint
}

// TensorProto is the wire message for one tensor's shape and contents.
//
// Exactly one payload encoding is populated per side depending on the element
// type: Data/Diff for float32, DoubleData/DoubleDiff for float64, and
// PackedData/PackedDiff (raw little-endian bytes) for the other numeric
// types.
type TensorProto struct {
	// Legacy 4-D extents. Readers track their presence via HasLegacyShape;
	// writers never emit them.
	Num      int64
	Channels int64
	Height   int64
	Width    int64

	// HasLegacyShape reports whether any of the legacy extent fields were
	// present on the wire.
	HasLegacyShape bool

	Shape       *ShapeProto
	ShapeStride *ShapeProto
	DataType    ElemType

	Data       []float32
	Diff       []float32
	DoubleData []float64
	DoubleDiff []float64
	PackedData []byte
	PackedDiff []byte
}

// ShapeDims returns the explicit shape extents, or nil if the message only
// carries the legacy form.
func (m *TensorProto) ShapeDims() []int64 {
	if m.Shape == nil {
		return nil
	}
	return m.Shape.Dim
}

// LegacyDims returns the legacy extents in (num, channels, height, width)
// order.
func (m *TensorProto) LegacyDims() [4]int64 {
	return [4]int64{m.Num, m.Channels, m.Height, m.Width}
}

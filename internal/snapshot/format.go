package snapshot

import (
	"time"

	"github.com/latte-ml/latte/internal/tensor"
)

// Format constants.
const (
	MagicBytes      = "LATT"
	FormatVersion   = 1
	FixedHeaderSize = 64   // 0x40 bytes before the JSON index
	HeaderAlignment = 64   // data section and each entry start on 64-byte boundaries
	ChecksumSize    = 32   // SHA-256
	ChecksumOffset  = 0x20 // checksum position in the fixed header
)

// Data type string constants used in the JSON index.
const (
	DTypeFloat32 = "float32"
	DTypeFloat64 = "float64"
	DTypeInt32   = "int32"
	DTypeInt64   = "int64"
	DTypeUint8   = "uint8"
	DTypeBool    = "bool"
)

// Flags for the .latte format.
const (
	FlagHasGradients uint32 = 1 << 0 // bit 0: at least one entry carries gradients
	FlagHasMetadata  uint32 = 1 << 1 // bit 1: custom metadata included
)

// Header is the JSON index in a .latte file.
type Header struct {
	FormatVersion int               `json:"format_version"`
	CreatedAt     time.Time         `json:"created_at"`
	Tensors       []TensorMeta      `json:"tensors"`
	Metadata      map[string]string `json:"metadata"`
}

// TensorMeta describes one entry in the data section.
type TensorMeta struct {
	Name      string `json:"name"`      // entry name (e.g. "conv1.weight")
	DType     string `json:"dtype"`     // element type (e.g. "float32")
	Shape     []int  `json:"shape"`     // tensor extents
	Offset    int64  `json:"offset"`    // byte offset from the start of the data section
	Size      int64  `json:"size"`      // encoded message size in bytes
	Gradients bool   `json:"gradients"` // whether the entry carries a gradients payload
}

// dtypeToString converts tensor.DataType to its index representation.
func dtypeToString(dt tensor.DataType) string {
	switch dt {
	case tensor.Float32:
		return DTypeFloat32
	case tensor.Float64:
		return DTypeFloat64
	case tensor.Int32:
		return DTypeInt32
	case tensor.Int64:
		return DTypeInt64
	case tensor.Uint8:
		return DTypeUint8
	case tensor.Bool:
		return DTypeBool
	default:
		return "unknown"
	}
}

// stringToDtype converts an index representation back to tensor.DataType.
func stringToDtype(s string) (tensor.DataType, bool) {
	switch s {
	case DTypeFloat32:
		return tensor.Float32, true
	case DTypeFloat64:
		return tensor.Float64, true
	case DTypeInt32:
		return tensor.Int32, true
	case DTypeInt64:
		return tensor.Int64, true
	case DTypeUint8:
		return tensor.Uint8, true
	case DTypeBool:
		return tensor.Bool, true
	default:
		return 0, false
	}
}

// alignUp rounds n up to the next multiple of HeaderAlignment.
func alignUp(n int64) int64 {
	return ((n + HeaderAlignment - 1) / HeaderAlignment) * HeaderAlignment
}

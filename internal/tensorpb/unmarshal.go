package tensorpb

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Protobuf wire types.
const (
	wireVarint = 0 // int32, int64, bool, enum
	wire64Bit  = 1 // fixed64, double
	wireBytes  = 2 // bytes, embedded messages, packed repeated fields
	wire32Bit  = 5 // fixed32, float
)

// Unmarshal parses a TensorProto from protobuf wire bytes.
// Unknown fields are skipped by wire type.
func Unmarshal(data []byte) (*TensorProto, error) {
	p := &parser{data: data}
	m := &TensorProto{}
	if err := p.readTensorProto(m); err != nil {
		return nil, fmt.Errorf("failed to parse tensor message: %w", err)
	}
	return m, nil
}

// parser implements a minimal protobuf wire format decoder.
type parser struct {
	data []byte
	pos  int
}

//nolint:gocognit,gocyclo,cyclop // Protobuf parsing requires field-by-field switch logic.
func (p *parser) readTensorProto(m *TensorProto) error {
	for p.pos < len(p.data) {
		field, wireType, err := p.readTag()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}

		switch field {
		case fieldNum:
			m.Num, err = p.readVarint()
			m.HasLegacyShape = true
		case fieldChannels:
			m.Channels, err = p.readVarint()
			m.HasLegacyShape = true
		case fieldHeight:
			m.Height, err = p.readVarint()
			m.HasLegacyShape = true
		case fieldWidth:
			m.Width, err = p.readVarint()
			m.HasLegacyShape = true
		case fieldData:
			m.Data, err = p.readPackedFloat32(m.Data, wireType)
		case fieldDiff:
			m.Diff, err = p.readPackedFloat32(m.Diff, wireType)
		case fieldShape:
			m.Shape, err = p.readShapeProto()
		case fieldDoubleData:
			m.DoubleData, err = p.readPackedFloat64(m.DoubleData, wireType)
		case fieldDoubleDiff:
			m.DoubleDiff, err = p.readPackedFloat64(m.DoubleDiff, wireType)
		case fieldDataType:
			var v int64
			v, err = p.readVarint()
			m.DataType = ElemType(v)
		case fieldShapeStride:
			m.ShapeStride, err = p.readShapeProto()
		case fieldPackedData:
			m.PackedData, err = p.readBytesCopy()
		case fieldPackedDiff:
			m.PackedDiff, err = p.readBytesCopy()
		default:
			err = p.skipField(wireType)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) readShapeProto() (*ShapeProto, error) {
	data, err := p.readBytes()
	if err != nil {
		return nil, err
	}
	sub := &parser{data: data}
	s := &ShapeProto{}
	for sub.pos < len(sub.data) {
		fieldNum, wireType, err := sub.readTag()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		switch fieldNum {
		case 1: // dim
			if wireType == wireBytes {
				// Packed encoding.
				packed, err := sub.readBytes()
				if err != nil {
					return nil, err
				}
				pp := &parser{data: packed}
				for pp.pos < len(pp.data) {
					v, err := pp.readVarint()
					if err != nil {
						return nil, err
					}
					s.Dim = append(s.Dim, v)
				}
			} else {
				v, err := sub.readVarint()
				if err != nil {
					return nil, err
				}
				s.Dim = append(s.Dim, v)
			}
		default:
			if err := sub.skipField(wireType); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

// readPackedFloat32 reads a packed repeated float field, also accepting the
// unpacked encoding for compatibility.
func (p *parser) readPackedFloat32(dst []float32, wireType int) ([]float32, error) {
	if wireType == wire32Bit {
		v, err := p.readFloat32()
		if err != nil {
			return nil, err
		}
		return append(dst, v), nil
	}
	data, err := p.readBytes()
	if err != nil {
		return nil, err
	}
	if len(data)%4 != 0 {
		return nil, errors.New("packed float payload is not a multiple of 4 bytes")
	}
	for i := 0; i+4 <= len(data); i += 4 {
		bits := binary.LittleEndian.Uint32(data[i:])
		dst = append(dst, math.Float32frombits(bits))
	}
	return dst, nil
}

// readPackedFloat64 reads a packed repeated double field, also accepting the
// unpacked encoding for compatibility.
func (p *parser) readPackedFloat64(dst []float64, wireType int) ([]float64, error) {
	if wireType == wire64Bit {
		v, err := p.readFloat64()
		if err != nil {
			return nil, err
		}
		return append(dst, v), nil
	}
	data, err := p.readBytes()
	if err != nil {
		return nil, err
	}
	if len(data)%8 != 0 {
		return nil, errors.New("packed double payload is not a multiple of 8 bytes")
	}
	for i := 0; i+8 <= len(data); i += 8 {
		bits := binary.LittleEndian.Uint64(data[i:])
		dst = append(dst, math.Float64frombits(bits))
	}
	return dst, nil
}

// readTag reads a protobuf field tag.
func (p *parser) readTag() (fieldNum, wireType int, err error) {
	if p.pos >= len(p.data) {
		return 0, 0, io.EOF
	}
	tag, err := p.readVarint()
	if err != nil {
		return 0, 0, err
	}
	fieldNum = int(tag >> 3)
	wireType = int(tag & 0x7)
	return fieldNum, wireType, nil
}

// readVarint reads a varint-encoded int64.
func (p *parser) readVarint() (int64, error) {
	var result uint64
	var shift uint
	for {
		if p.pos >= len(p.data) {
			return 0, io.EOF
		}
		b := p.data[p.pos]
		p.pos++
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
		if shift >= 64 {
			return 0, errors.New("varint overflow")
		}
	}
	return int64(result), nil //nolint:gosec // G115: Protobuf varint fits in int64.
}

// readBytes reads a length-delimited byte slice aliasing the input.
func (p *parser) readBytes() ([]byte, error) {
	length, err := p.readVarint()
	if err != nil {
		return nil, err
	}
	if length < 0 {
		return nil, errors.New("negative length")
	}
	end := p.pos + int(length)
	if end < p.pos || end > len(p.data) {
		return nil, io.ErrUnexpectedEOF
	}
	result := p.data[p.pos:end]
	p.pos = end
	return result, nil
}

// readBytesCopy reads a length-delimited byte slice into fresh storage so the
// message does not alias the caller's buffer.
func (p *parser) readBytesCopy() ([]byte, error) {
	b, err := p.readBytes()
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// readFloat32 reads a 32-bit float.
func (p *parser) readFloat32() (float32, error) {
	if p.pos+4 > len(p.data) {
		return 0, io.ErrUnexpectedEOF
	}
	bits := binary.LittleEndian.Uint32(p.data[p.pos:])
	p.pos += 4
	return math.Float32frombits(bits), nil
}

// readFloat64 reads a 64-bit float.
func (p *parser) readFloat64() (float64, error) {
	if p.pos+8 > len(p.data) {
		return 0, io.ErrUnexpectedEOF
	}
	bits := binary.LittleEndian.Uint64(p.data[p.pos:])
	p.pos += 8
	return math.Float64frombits(bits), nil
}

// skipField skips a field based on wire type.
func (p *parser) skipField(wireType int) error {
	switch wireType {
	case wireVarint:
		_, err := p.readVarint()
		return err
	case wire64Bit:
		if p.pos+8 > len(p.data) {
			return io.ErrUnexpectedEOF
		}
		p.pos += 8
		return nil
	case wireBytes:
		_, err := p.readBytes()
		return err
	case wire32Bit:
		if p.pos+4 > len(p.data) {
			return io.ErrUnexpectedEOF
		}
		p.pos += 4
		return nil
	default:
		return fmt.Errorf("unknown wire type: %d", wireType)
	}
}

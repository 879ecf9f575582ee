package snapshot

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"k8s.io/klog/v2"

	"github.com/latte-ml/latte/internal/tensor"
	"github.com/latte-ml/latte/internal/tensorpb"
)

// ReaderOptions configures how a snapshot file is opened.
type ReaderOptions struct {
	// SkipChecksum disables SHA-256 verification of the data section.
	// Opening large files is substantially faster with it set, at the
	// cost of not detecting corruption.
	SkipChecksum bool
	// Validation selects the index validation level. The zero value is
	// ValidationStrict.
	Validation ValidationLevel
}

// Reader reads a .latte snapshot from a file.
type Reader struct {
	file       *os.File
	size       int64
	header     Header
	flags      uint32
	dataOffset int64
	dataSize   int64
	checksum   [32]byte
	closed     bool
}

// Open opens a snapshot file with default options: strict validation and
// checksum verification.
func Open(path string) (*Reader, error) {
	return OpenWithOptions(path, ReaderOptions{})
}

// OpenWithOptions opens a snapshot file with the given options.
func OpenWithOptions(path string, opts ReaderOptions) (*Reader, error) {
	start := time.Now()

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	r := &Reader{file: file, size: stat.Size()}
	if err := r.parseHeader(opts.Validation); err != nil {
		_ = file.Close()
		return nil, err
	}

	if !opts.SkipChecksum {
		if err := r.verifyChecksum(); err != nil {
			_ = file.Close()
			return nil, err
		}
	}

	klog.V(2).Infof("opened snapshot %s: %d tensors, %d data bytes in %v",
		path, len(r.header.Tensors), r.dataSize, time.Since(start))
	return r, nil
}

func (r *Reader) parseHeader(level ValidationLevel) error {
	if r.size < FixedHeaderSize {
		return fmt.Errorf("file too small: %d bytes (minimum %d required)", r.size, FixedHeaderSize)
	}

	fixed := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(r.file, fixed); err != nil {
		return fmt.Errorf("failed to read fixed header: %w", err)
	}

	if string(fixed[0:4]) != MagicBytes {
		return ErrBadMagic
	}

	version := binary.LittleEndian.Uint32(fixed[4:8])
	if version != FormatVersion {
		return fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	r.flags = binary.LittleEndian.Uint32(fixed[8:12])
	headerSize := binary.LittleEndian.Uint64(fixed[16:24])
	dataSize := binary.LittleEndian.Uint64(fixed[24:32])
	copy(r.checksum[:], fixed[ChecksumOffset:ChecksumOffset+ChecksumSize])

	if headerSize > MaxHeaderSize {
		return ErrHeaderTooLarge
	}
	if dataSize > uint64(r.size) {
		return fmt.Errorf("data size %d exceeds file size %d", dataSize, r.size)
	}
	r.dataSize = int64(dataSize)

	headerEnd := int64(FixedHeaderSize) + int64(headerSize)
	if headerEnd > r.size {
		return fmt.Errorf("header extends beyond file: header_end=%d, file_size=%d", headerEnd, r.size)
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r.file, headerJSON); err != nil {
		return fmt.Errorf("failed to read header JSON: %w", err)
	}
	if err := json.Unmarshal(headerJSON, &r.header); err != nil {
		return fmt.Errorf("failed to parse header JSON: %w", err)
	}

	r.dataOffset = alignUp(headerEnd)
	if r.dataOffset+r.dataSize > r.size {
		return fmt.Errorf("data section extends beyond file: end=%d, file_size=%d",
			r.dataOffset+r.dataSize, r.size)
	}

	if err := ValidateHeader(&r.header, r.dataSize, level); err != nil {
		return fmt.Errorf("header validation failed: %w", err)
	}

	return nil
}

func (r *Reader) verifyChecksum() error {
	start := time.Now()

	if _, err := r.file.Seek(r.dataOffset, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to data section: %w", err)
	}
	computed, err := ComputeChecksumReader(io.LimitReader(r.file, r.dataSize))
	if err != nil {
		return fmt.Errorf("failed to read data section for checksum: %w", err)
	}
	if err := ValidateChecksum(computed, r.checksum); err != nil {
		return err
	}

	klog.V(2).Infof("verified checksum over %d bytes in %v", r.dataSize, time.Since(start))
	return nil
}

// Header returns the parsed JSON index.
func (r *Reader) Header() Header {
	return r.header
}

// Metadata returns the custom metadata map from the index.
func (r *Reader) Metadata() map[string]string {
	return r.header.Metadata
}

// Flags returns the flags bitfield from the fixed header.
func (r *Reader) Flags() uint32 {
	return r.flags
}

// Checksum returns the stored SHA-256 checksum of the data section.
func (r *Reader) Checksum() [32]byte {
	return r.checksum
}

// TensorNames lists all tensor names in index order.
func (r *Reader) TensorNames() []string {
	names := make([]string, len(r.header.Tensors))
	for i, meta := range r.header.Tensors {
		names[i] = meta.Name
	}
	return names
}

// TensorInfo returns the index entry for a named tensor.
func (r *Reader) TensorInfo(name string) (*TensorMeta, error) {
	for i := range r.header.Tensors {
		if r.header.Tensors[i].Name == name {
			return &r.header.Tensors[i], nil
		}
	}
	return nil, fmt.Errorf("tensor %q not found", name)
}

// TensorBytes reads the encoded message for a named tensor.
func (r *Reader) TensorBytes(name string) ([]byte, error) {
	if r.closed {
		return nil, fmt.Errorf("reader is closed")
	}

	meta, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}

	if _, err := r.file.Seek(r.dataOffset+meta.Offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to tensor data: %w", err)
	}
	data := make([]byte, meta.Size)
	if _, err := io.ReadFull(r.file, data); err != nil {
		return nil, fmt.Errorf("failed to read tensor data: %w", err)
	}
	return data, nil
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.file.Close()
}

// Source is the read side shared by Reader and MmapReader.
type Source interface {
	TensorInfo(name string) (*TensorMeta, error)
	TensorBytes(name string) ([]byte, error)
}

// Proto decodes the wire message for a named tensor.
func Proto(src Source, name string) (*tensorpb.TensorProto, error) {
	data, err := src.TensorBytes(name)
	if err != nil {
		return nil, err
	}
	p, err := tensorpb.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode tensor %q: %w", name, err)
	}
	return p, nil
}

// Load reads a named tensor into a fresh tensor allocated on ctx.
func Load[T tensor.DType](src Source, name string, ctx tensor.Device) (*tensor.Tensor[T], error) {
	start := time.Now()

	p, err := Proto(src, name)
	if err != nil {
		return nil, err
	}

	want := tensor.DataTypeOf[T]()
	if dt, ok := tensor.ProtoDataType(p.DataType); ok && dt != want {
		return nil, fmt.Errorf("tensor %q holds %s elements, requested %s", name, dt, want)
	}

	t := tensor.NewEmpty[T](ctx)
	t.FromProto(p, true)

	klog.V(2).Infof("loaded tensor %q %v in %v", name, t.Shape(), time.Since(start))
	return t, nil
}

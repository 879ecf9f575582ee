package snapshot

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
)

// MmapReader provides memory-mapped access to .latte files. Only the header
// is parsed up front; tensor bytes are touched on demand through the OS
// page cache, which keeps opening large snapshots cheap.
type MmapReader struct {
	file       *os.File
	data       []byte // mapped region, read-only
	size       int64
	header     Header
	flags      uint32
	dataOffset int64
	dataSize   int64
	checksum   [32]byte
	closed     bool
}

var _ Source = (*MmapReader)(nil)

// OpenMmap maps a snapshot file into memory. The checksum is not verified;
// callers that need verification should use Open instead. Always Close the
// reader to unmap the file.
func OpenMmap(path string) (*MmapReader, error) {
	return OpenMmapWithOptions(path, ReaderOptions{SkipChecksum: true})
}

// OpenMmapWithOptions maps a snapshot file with the given options.
func OpenMmapWithOptions(path string, opts ReaderOptions) (*MmapReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	data, err := mmapFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("mmap failed: %w", err)
	}

	r := &MmapReader{file: file, data: data, size: stat.Size()}
	if err := r.parseHeader(opts.Validation); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	if !opts.SkipChecksum {
		computed := ComputeChecksum(r.data[r.dataOffset : r.dataOffset+r.dataSize])
		if err := ValidateChecksum(computed, r.checksum); err != nil {
			_ = r.Close()
			return nil, err
		}
	}

	return r, nil
}

func (r *MmapReader) parseHeader(level ValidationLevel) error {
	if r.size < FixedHeaderSize {
		return fmt.Errorf("file too small: %d bytes (minimum %d required)", r.size, FixedHeaderSize)
	}

	if string(r.data[0:4]) != MagicBytes {
		return ErrBadMagic
	}

	version := binary.LittleEndian.Uint32(r.data[4:8])
	if version != FormatVersion {
		return fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	r.flags = binary.LittleEndian.Uint32(r.data[8:12])
	headerSize := binary.LittleEndian.Uint64(r.data[16:24])
	dataSize := binary.LittleEndian.Uint64(r.data[24:32])
	copy(r.checksum[:], r.data[ChecksumOffset:ChecksumOffset+ChecksumSize])

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

	if err := json.Unmarshal(r.data[FixedHeaderSize:headerEnd], &r.header); err != nil {
		return fmt.Errorf("failed to parse header JSON: %w", err)
	}

	r.dataOffset = alignUp(headerEnd)
	if r.dataOffset+r.dataSize > r.size {
		return fmt.Errorf("data section extends beyond file: end=%d, file_size=%d",
			r.dataOffset+r.dataSize, r.size)
	}

	return ValidateHeader(&r.header, r.dataSize, level)
}

// Header returns the parsed JSON index.
func (r *MmapReader) Header() Header {
	return r.header
}

// Metadata returns the custom metadata map from the index.
func (r *MmapReader) Metadata() map[string]string {
	return r.header.Metadata
}

// Flags returns the flags bitfield from the fixed header.
func (r *MmapReader) Flags() uint32 {
	return r.flags
}

// Checksum returns the stored SHA-256 checksum of the data section.
func (r *MmapReader) Checksum() [32]byte {
	return r.checksum
}

// TensorNames lists all tensor names in index order.
func (r *MmapReader) TensorNames() []string {
	names := make([]string, len(r.header.Tensors))
	for i, meta := range r.header.Tensors {
		names[i] = meta.Name
	}
	return names
}

// TensorInfo returns the index entry for a named tensor.
func (r *MmapReader) TensorInfo(name string) (*TensorMeta, error) {
	for i := range r.header.Tensors {
		if r.header.Tensors[i].Name == name {
			return &r.header.Tensors[i], nil
		}
	}
	return nil, fmt.Errorf("tensor %q not found", name)
}

// TensorBytes returns a zero-copy slice of the encoded message for a named
// tensor. The slice is valid only while the reader is open and must not be
// written to.
func (r *MmapReader) TensorBytes(name string) ([]byte, error) {
	if r.closed {
		return nil, fmt.Errorf("reader is closed")
	}

	meta, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}

	start := r.dataOffset + meta.Offset
	end := start + meta.Size
	if end > r.size {
		return nil, fmt.Errorf("%w: tensor %q: offset %d + size %d > file_size %d",
			ErrOutOfBounds, name, start, meta.Size, r.size)
	}
	return r.data[start:end], nil
}

// Close unmaps and closes the file.
func (r *MmapReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	var err error
	if r.data != nil {
		err = munmapFile(r.data)
		r.data = nil
	}
	if closeErr := r.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

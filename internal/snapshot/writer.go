package snapshot

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/latte-ml/latte/internal/tensor"
	"github.com/latte-ml/latte/internal/tensorpb"
)

// Writer assembles a .latte snapshot in memory and writes it out in a
// single pass. Entries keep their insertion order in the file.
type Writer struct {
	metadata map[string]string
	entries  []writerEntry
	names    map[string]struct{}
}

type writerEntry struct {
	meta TensorMeta
	data []byte
}

// NewWriter creates an empty snapshot writer.
func NewWriter() *Writer {
	return &Writer{
		metadata: make(map[string]string),
		names:    make(map[string]struct{}),
	}
}

// SetMetadata records a custom metadata key for the JSON index.
func (w *Writer) SetMetadata(key, value string) {
	w.metadata[key] = value
}

// Add appends a wire-encoded tensor message under the given name.
func (w *Writer) Add(name string, p *tensorpb.TensorProto) error {
	if err := ValidateTensorName(name); err != nil {
		return err
	}
	if _, dup := w.names[name]; dup {
		return fmt.Errorf("duplicate tensor name %q", name)
	}

	dt, ok := tensor.ProtoDataType(p.DataType)
	if !ok {
		return fmt.Errorf("tensor %q: unsupported element type %v", name, p.DataType)
	}

	shape := make([]int, 0, 4)
	if dims := p.ShapeDims(); dims != nil {
		for _, d := range dims {
			shape = append(shape, int(d))
		}
	} else if p.HasLegacyShape {
		for _, d := range p.LegacyDims() {
			shape = append(shape, int(d))
		}
	}

	gradients := len(p.Diff) > 0 || len(p.DoubleDiff) > 0 || len(p.PackedDiff) > 0

	data := p.Marshal()

	var offset int64
	if n := len(w.entries); n > 0 {
		prev := w.entries[n-1].meta
		offset = alignUp(prev.Offset + prev.Size)
	}

	w.entries = append(w.entries, writerEntry{
		meta: TensorMeta{
			Name:      name,
			DType:     dtypeToString(dt),
			Shape:     shape,
			Offset:    offset,
			Size:      int64(len(data)),
			Gradients: gradients,
		},
		data: data,
	})
	w.names[name] = struct{}{}
	return nil
}

// AddTensor encodes a tensor's values (and optionally gradients) and
// appends the resulting message under the given name.
func AddTensor[T tensor.DType](w *Writer, name string, t *tensor.Tensor[T], withGradients bool) error {
	return w.Add(name, t.ToProto(withGradients))
}

// Len returns the number of entries added so far.
func (w *Writer) Len() int {
	return len(w.entries)
}

// WriteTo writes the complete snapshot to out. The data section is padded
// so that it and every entry start on 64-byte boundaries; the checksum
// covers the whole padded data section.
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	header := Header{
		FormatVersion: FormatVersion,
		CreatedAt:     time.Now().UTC(),
		Tensors:       make([]TensorMeta, 0, len(w.entries)),
		Metadata:      w.metadata,
	}

	var dataSize int64
	var flags uint32
	for _, e := range w.entries {
		header.Tensors = append(header.Tensors, e.meta)
		dataSize = e.meta.Offset + e.meta.Size
		if e.meta.Gradients {
			flags |= FlagHasGradients
		}
	}
	if len(w.metadata) > 0 {
		flags |= FlagHasMetadata
	}

	data := make([]byte, dataSize)
	for _, e := range w.entries {
		copy(data[e.meta.Offset:], e.data)
	}
	checksum := ComputeChecksum(data)

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal header: %w", err)
	}
	if len(headerJSON) > MaxHeaderSize {
		return 0, ErrHeaderTooLarge
	}

	fixed := make([]byte, FixedHeaderSize)
	copy(fixed[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(fixed[8:12], flags)
	// 0x0C-0x0F reserved
	binary.LittleEndian.PutUint64(fixed[16:24], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(dataSize))
	copy(fixed[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	var written int64
	n, err := out.Write(fixed)
	written += int64(n)
	if err != nil {
		return written, fmt.Errorf("failed to write fixed header: %w", err)
	}

	n, err = out.Write(headerJSON)
	written += int64(n)
	if err != nil {
		return written, fmt.Errorf("failed to write header JSON: %w", err)
	}

	if padding := alignUp(written) - written; padding > 0 {
		n, err = out.Write(make([]byte, padding))
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("failed to write padding: %w", err)
		}
	}

	n, err = out.Write(data)
	written += int64(n)
	if err != nil {
		return written, fmt.Errorf("failed to write data section: %w", err)
	}

	return written, nil
}

// WriteFile writes the snapshot to a file at path.
func (w *Writer) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	buf := bufio.NewWriter(f)
	if _, err := w.WriteTo(buf); err != nil {
		_ = f.Close()
		return err
	}
	if err := buf.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

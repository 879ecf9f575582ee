package snapshot

import (
	"fmt"
	"sort"
	"strings"
)

// Validation limits for resource protection against malformed files.
const (
	MaxHeaderSize    = 100 * 1024 * 1024 // maximum JSON index size
	MaxTensorCount   = 100_000
	MaxTensorNameLen = 4096
	MaxMetadataSize  = 10 * 1024 * 1024
)

// ValidationLevel controls how strictly a file's index is checked on open.
type ValidationLevel int

const (
	// ValidationStrict performs all checks, including the offset overlap
	// scan. This is the default.
	ValidationStrict ValidationLevel = iota
	// ValidationNormal checks names and counts but skips the offset scan.
	ValidationNormal
	// ValidationNone skips index validation. Use only with trusted input.
	ValidationNone
)

// ValidateTensorOffsets checks for overlapping entries and out-of-bounds
// access. Malformed offsets could otherwise leak one tensor's bytes into
// another or read past the data section.
func ValidateTensorOffsets(tensors []TensorMeta, dataSize int64) error {
	if len(tensors) > MaxTensorCount {
		return &ValidationError{
			Kind:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(tensors), MaxTensorCount),
		}
	}

	sorted := make([]TensorMeta, len(tensors))
	copy(sorted, tensors)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	for i, t := range sorted {
		if t.Offset < 0 || t.Size < 0 {
			return &ValidationError{
				Kind:    "negative_offset",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset=%d, size=%d", t.Offset, t.Size),
			}
		}

		if t.Offset+t.Size > dataSize {
			return &ValidationError{
				Kind:    "out_of_bounds",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset %d + size %d > data_size %d", t.Offset, t.Size, dataSize),
			}
		}

		if i < len(sorted)-1 {
			next := sorted[i+1]
			if t.Offset+t.Size > next.Offset {
				return &ValidationError{
					Kind:    "offset_overlap",
					Tensor:  t.Name,
					Tensor2: next.Name,
					Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap",
						t.Offset, t.Offset+t.Size, next.Offset, next.Offset+next.Size),
				}
			}
		}
	}

	return nil
}

// ValidateTensorName rejects names that could be abused as paths or that
// exceed the length limit.
func ValidateTensorName(name string) error {
	if len(name) > MaxTensorNameLen {
		return &ValidationError{
			Kind:    "name_too_long",
			Tensor:  name,
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxTensorNameLen),
		}
	}

	if strings.Contains(name, "..") {
		return &ValidationError{
			Kind:    "invalid_name",
			Tensor:  name,
			Details: "contains '..'",
		}
	}

	if strings.Contains(name, "/") || strings.Contains(name, "\\") {
		return &ValidationError{
			Kind:    "invalid_name",
			Tensor:  name,
			Details: "contains path separator (/ or \\)",
		}
	}

	if strings.Contains(name, "\x00") {
		return &ValidationError{
			Kind:    "invalid_name",
			Tensor:  name,
			Details: "contains null byte",
		}
	}

	return nil
}

// ValidateHeader checks the parsed JSON index against the given level.
func ValidateHeader(h *Header, dataSize int64, level ValidationLevel) error {
	if level == ValidationNone {
		return nil
	}

	if len(h.Tensors) > MaxTensorCount {
		return &ValidationError{
			Kind:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(h.Tensors), MaxTensorCount),
		}
	}

	for _, t := range h.Tensors {
		if err := ValidateTensorName(t.Name); err != nil {
			return err
		}
	}

	if level == ValidationStrict {
		if err := ValidateTensorOffsets(h.Tensors, dataSize); err != nil {
			return err
		}
	}

	return nil
}

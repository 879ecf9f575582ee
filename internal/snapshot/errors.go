package snapshot

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrBadMagic           = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrChecksumMismatch   = errors.New("checksum mismatch: file may be corrupted")
	ErrHeaderTooLarge     = errors.New("header exceeds maximum size")
	ErrOutOfBounds        = errors.New("tensor extends beyond data section")
	ErrOffsetOverlap      = errors.New("tensor offsets overlap")
	ErrNegativeOffset     = errors.New("negative offset or size")
	ErrTooManyTensors     = errors.New("too many tensors in file")
	ErrTensorNameTooLong  = errors.New("tensor name too long")
	ErrInvalidTensorName  = errors.New("invalid tensor name")
)

// ValidationError provides detailed information about index validation
// failures.
type ValidationError struct {
	Kind    string // kind of failure (e.g. "offset_overlap", "out_of_bounds")
	Tensor  string // primary tensor name involved
	Tensor2 string // secondary tensor name (for overlap failures)
	Details string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Tensor2 != "" {
		return fmt.Sprintf("%s: tensors %q and %q: %s", e.Kind, e.Tensor, e.Tensor2, e.Details)
	}
	if e.Tensor != "" {
		return fmt.Sprintf("%s: tensor %q: %s", e.Kind, e.Tensor, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Details)
}

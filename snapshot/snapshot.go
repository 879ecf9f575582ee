// Copyright 2026 Latte Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package snapshot provides the public API for .latte snapshot files.
//
// Example:
//
//	w := snapshot.NewWriter()
//	if err := snapshot.AddTensor(w, "conv1.weight", weights, false); err != nil {
//	    log.Fatal(err)
//	}
//	if err := w.WriteFile("model.latte"); err != nil {
//	    log.Fatal(err)
//	}
//
//	r, err := snapshot.Open("model.latte")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//	weights, err := snapshot.Load[float32](r, "conv1.weight", dev)
package snapshot

import (
	internalsnapshot "github.com/latte-ml/latte/internal/snapshot"
	"github.com/latte-ml/latte/tensor"
)

// Writer assembles a snapshot and writes it out in a single pass.
type Writer = internalsnapshot.Writer

// Reader reads a snapshot from a file.
type Reader = internalsnapshot.Reader

// MmapReader provides zero-copy, memory-mapped snapshot access.
type MmapReader = internalsnapshot.MmapReader

// ReaderOptions configures checksum verification and index validation.
type ReaderOptions = internalsnapshot.ReaderOptions

// Header is the JSON index of a snapshot file.
type Header = internalsnapshot.Header

// TensorMeta describes one entry in the data section.
type TensorMeta = internalsnapshot.TensorMeta

// Source is the read side shared by Reader and MmapReader.
type Source = internalsnapshot.Source

// ValidationLevel controls how strictly a file's index is checked.
type ValidationLevel = internalsnapshot.ValidationLevel

// Validation levels.
const (
	ValidationStrict ValidationLevel = internalsnapshot.ValidationStrict
	ValidationNormal ValidationLevel = internalsnapshot.ValidationNormal
	ValidationNone   ValidationLevel = internalsnapshot.ValidationNone
)

// Common errors.
var (
	ErrBadMagic           = internalsnapshot.ErrBadMagic
	ErrUnsupportedVersion = internalsnapshot.ErrUnsupportedVersion
	ErrChecksumMismatch   = internalsnapshot.ErrChecksumMismatch
)

// NewWriter creates an empty snapshot writer.
func NewWriter() *Writer {
	return internalsnapshot.NewWriter()
}

// AddTensor encodes a tensor's values (and optionally gradients) and
// appends the resulting entry under the given name.
func AddTensor[T tensor.DType](w *Writer, name string, t *tensor.Tensor[T], withGradients bool) error {
	return internalsnapshot.AddTensor(w, name, t, withGradients)
}

// Open opens a snapshot file with strict validation and checksum
// verification.
func Open(path string) (*Reader, error) {
	return internalsnapshot.Open(path)
}

// OpenWithOptions opens a snapshot file with the given options.
func OpenWithOptions(path string, opts ReaderOptions) (*Reader, error) {
	return internalsnapshot.OpenWithOptions(path, opts)
}

// OpenMmap maps a snapshot file into memory without verifying its
// checksum.
func OpenMmap(path string) (*MmapReader, error) {
	return internalsnapshot.OpenMmap(path)
}

// Load reads a named tensor into a fresh tensor allocated on ctx.
func Load[T tensor.DType](src Source, name string, ctx tensor.Device) (*tensor.Tensor[T], error) {
	return internalsnapshot.Load[T](src, name, ctx)
}

// Copyright 2026 Latte Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for latte's shape-typed tensors.
//
// A Tensor pairs two lazily allocated buffers, values and gradients, and
// tracks on each whether the freshest copy lives in host or device memory.
// Reads trigger a transfer only when the head is on the other side.
//
// Example:
//
//	dev := cpu.New()
//	x := tensor.New[float32](tensor.Shape{2, 3}, dev)
//	copy(x.MutableHostValues(), data)
//	sum := x.AsumValues()
package tensor

import (
	"github.com/latte-ml/latte/internal/tensor"
)

// DType is the constraint for tensor element types.
// Supported types: float32, float64, int32, int64, uint8, bool.
type DType = tensor.DType

// DataType identifies the element type of a tensor at runtime.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
	Bool    DataType = tensor.Bool
)

// Shape is an ordered list of tensor extents.
// Example: Shape{2, 3, 4} is a 3-D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// MaxAxes bounds the rank of a tensor shape.
const MaxAxes = tensor.MaxAxes

// Tensor is a shape-typed, reference-counted N-dimensional array holding
// values and gradients.
//
// Example:
//
//	x := tensor.New[float32](tensor.Shape{2, 3}, dev)
//	x.MutableHostValues()[0] = 1
//	x.Update()  // values -= gradients
type Tensor[T DType] = tensor.Tensor[T]

// SyncedBuffer is one reference-counted allocation mirrored between host
// and device memory.
type SyncedBuffer = tensor.SyncedBuffer

// Residency tracks where a buffer's freshest copy lives.
type Residency = tensor.Residency

// Residency states.
const (
	Uninitialized Residency = tensor.Uninitialized
	HeadAtHost    Residency = tensor.HeadAtHost
	HeadAtDevice  Residency = tensor.HeadAtDevice
	Synced        Residency = tensor.Synced
)

// Mode selects the compute side for dispatched operations.
type Mode = tensor.Mode

// Mode constants.
const (
	ModeHost   Mode = tensor.ModeHost
	ModeDevice Mode = tensor.ModeDevice
)

// Device abstracts an accelerator context: allocation, transfers, and the
// numeric kernels the dispatch layer delegates to.
type Device = tensor.Device

// Buffer is a handle to a device-resident allocation.
type Buffer = tensor.Buffer

// Quantizer transforms tensor payloads between expanded and stored forms.
type Quantizer = tensor.Quantizer

// MockDevice is an in-memory Device that counts transfers. It is intended
// for tests.
type MockDevice = tensor.MockDevice

// NewMockDevice creates a MockDevice.
func NewMockDevice() *MockDevice {
	return tensor.NewMockDevice()
}

// New creates a tensor with the given shape. Buffers are allocated on
// first access.
//
// Example:
//
//	x := tensor.New[float32](tensor.Shape{2, 3}, dev)
func New[T DType](shape Shape, ctx Device) *Tensor[T] {
	return tensor.New[T](shape, ctx)
}

// NewExtents creates a 4-D tensor from the legacy
// (num, channels, height, width) extents.
func NewExtents[T DType](num, channels, height, width int, ctx Device) *Tensor[T] {
	return tensor.NewExtents[T](num, channels, height, width, ctx)
}

// NewEmpty creates a tensor with no elements and no buffers. Reshape it
// before use.
func NewEmpty[T DType](ctx Device) *Tensor[T] {
	return tensor.NewEmpty[T](ctx)
}

// FromSlice creates a tensor holding a copy of data.
//
// Example:
//
//	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, dev)
func FromSlice[T DType](data []T, shape Shape, ctx Device) (*Tensor[T], error) {
	return tensor.FromSlice[T](data, shape, ctx)
}

// DataTypeOf returns the runtime DataType for a static element type.
func DataTypeOf[T DType]() DataType {
	return tensor.DataTypeOf[T]()
}

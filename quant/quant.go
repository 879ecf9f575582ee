// Copyright 2026 Latte Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package quant provides quantizer strategies for tensor storage.
//
// A quantizer installed on a tensor transforms payloads between the
// expanded form callers see and the compressed form kept in the tensor's
// buffers.
//
// Example:
//
//	x := tensor.New[float32](tensor.Shape{64}, dev)
//	x.SetQuantizer(quant.Half{})
package quant

import (
	internalquant "github.com/latte-ml/latte/internal/quant"
)

// Identity stores payloads unchanged. It is useful as a baseline and in
// tests.
type Identity = internalquant.Identity

// Half stores float tensors as IEEE-754 binary16, halving float32 storage
// reads and writes at the cost of precision.
type Half = internalquant.Half

// Affine stores float tensors as uint8 codes on a uniform grid:
// value = (code - ZeroPoint) * Scale.
type Affine = internalquant.Affine

// NewAffine builds an Affine quantizer covering [min, max] with 256 codes.
// Panics if min >= max.
func NewAffine(min, max float64) Affine {
	return internalquant.NewAffine(min, max)
}

// Float16ToFloat32 converts an IEEE-754 binary16 value to float32.
func Float16ToFloat32(h uint16) float32 {
	return internalquant.Float16ToFloat32(h)
}

// Float32ToFloat16 converts a float32 value to IEEE-754 binary16 with
// round-to-nearest-even.
func Float32ToFloat16(f float32) uint16 {
	return internalquant.Float32ToFloat16(f)
}

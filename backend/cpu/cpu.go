// Copyright 2026 Latte Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the host compute device.
package cpu

import (
	internalcpu "github.com/latte-ml/latte/internal/backend/cpu"
	"github.com/latte-ml/latte/tensor"
)

// Device is the host device. Its kernels run in pure Go, parallelized
// across chunks for large element counts.
type Device = internalcpu.Device

// Compile-time check that Device implements tensor.Device.
var _ tensor.Device = Device{}

// New creates a host device.
//
// Example:
//
//	dev := cpu.New()
//	x := tensor.New[float32](tensor.Shape{2, 3}, dev)
func New() Device {
	return internalcpu.New()
}

// Copyright 2026 Latte Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the WebGPU accelerator device.
//
// The backend compiles compute pipelines from WGSL and is available on
// Windows with the wgpu_native runtime installed. On other platforms New
// returns an error and IsAvailable reports false.
package webgpu

import (
	internalwebgpu "github.com/latte-ml/latte/internal/backend/webgpu"
	"github.com/latte-ml/latte/tensor"
)

// New creates a WebGPU device, or returns an error when no adapter is
// available.
//
// Example:
//
//	dev, err := webgpu.New()
//	if err != nil {
//	    dev = cpu.New()
//	}
func New() (tensor.Device, error) {
	return internalwebgpu.New()
}

// IsAvailable reports whether a WebGPU adapter can be initialized.
func IsAvailable() bool {
	return internalwebgpu.IsAvailable()
}

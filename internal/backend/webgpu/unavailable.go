//go:build !windows

package webgpu

import (
	"fmt"

	"github.com/latte-ml/latte/internal/tensor"
)

// New reports that no WebGPU runtime is bundled for this platform.
func New() (tensor.Device, error) {
	return nil, fmt.Errorf("webgpu: not supported on this platform")
}

// IsAvailable reports whether a WebGPU adapter can be acquired.
func IsAvailable() bool { return false }

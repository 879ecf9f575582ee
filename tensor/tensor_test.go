// Copyright 2026 Latte Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"testing"

	"github.com/latte-ml/latte/internal/backend/cpu"
	"github.com/latte-ml/latte/tensor"
)

// TestDeviceInterface verifies that the cpu backend satisfies tensor.Device.
func TestDeviceInterface(_ *testing.T) {
	var _ tensor.Device = cpu.New()
}

// TestTensorAPI exercises the aliased surface end to end.
func TestTensorAPI(t *testing.T) {
	dev := tensor.NewMockDevice()

	x, err := tensor.FromSlice([]float32{1, -2, 3, -4, 5, -6}, tensor.Shape{2, 3}, dev)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}

	if x.Rank() != 2 || x.Count() != 6 {
		t.Errorf("Rank()=%d Count()=%d, want 2 and 6", x.Rank(), x.Count())
	}
	if x.DataType() != tensor.Float32 {
		t.Errorf("DataType() = %v, want Float32", x.DataType())
	}
	if got := x.AsumValues(); got != 21 {
		t.Errorf("AsumValues() = %v, want 21", got)
	}
	if st := x.ValuesBuffer().State(); st != tensor.HeadAtHost {
		t.Errorf("residency = %v, want HeadAtHost", st)
	}

	if x.Reshape(tensor.Shape{6}) {
		t.Error("reshape within capacity should not replace the buffers")
	}
	if got := x.ValueAt(3); got != -4 {
		t.Errorf("ValueAt(3) = %v, want -4", got)
	}
}

// TestGradientUpdate verifies the values -= gradients step through the
// public API.
func TestGradientUpdate(t *testing.T) {
	x := tensor.New[float32](tensor.Shape{4}, tensor.NewMockDevice())
	vals := x.MutableHostValues()
	grads := x.MutableHostGradients()
	for i := range vals {
		vals[i] = 10
		grads[i] = float32(i)
	}

	x.Update()

	for i, v := range x.HostValues() {
		if v != 10-float32(i) {
			t.Errorf("value[%d] = %v, want %v", i, v, 10-float32(i))
		}
	}
}

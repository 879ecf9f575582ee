// Package quant provides quantizer strategies for the tensor container:
// reversible transforms between a tensor's stored representation and the
// full-precision form callers compute with. Compress narrows external
// values into the stored form, expand widens them back.
//
// The stored form always fits inside the tensor's own buffer. Half packs
// binary16 bit patterns into the buffer prefix at two bytes per element;
// Affine writes one uint8 code per element slot. The device entry points
// of all quantizers here run the transform on the host between a download
// and an upload.
package quant

import (
	"fmt"

	"github.com/latte-ml/latte/internal/tensor"
)

// checkFloat guards the transform loops: only float element types quantize.
func checkFloat(dt tensor.DataType) {
	if !dt.IsFloat() {
		panic(fmt.Sprintf("quant: no quantized form for %s elements", dt))
	}
}

// hostRoundTrip implements the device entry points shared by every
// quantizer in this package: download, transform on the host, upload.
func hostRoundTrip(ctx tensor.Device, n, elemSize int, src, dst tensor.Buffer, transform func(src, dst []byte)) {
	hs := make([]byte, n*elemSize)
	hd := make([]byte, n*elemSize)
	ctx.Download(hs, src)
	transform(hs, hd)
	ctx.Upload(dst, hd)
}

// Identity is the explicit form of the nil quantizer: the stored and
// external representations coincide.
type Identity struct{}

var _ tensor.Quantizer = Identity{}

func (Identity) CompressHost(dt tensor.DataType, n int, src, dst []byte) {
	copy(dst[:n*dt.Size()], src)
}

func (Identity) ExpandHost(dt tensor.DataType, n int, src, dst []byte) {
	copy(dst[:n*dt.Size()], src)
}

func (Identity) CompressDevice(ctx tensor.Device, dt tensor.DataType, n int, src, dst tensor.Buffer) {
	ctx.Copy(dst, src, n*dt.Size())
}

func (Identity) ExpandDevice(ctx tensor.Device, dt tensor.DataType, n int, src, dst tensor.Buffer) {
	ctx.Copy(dst, src, n*dt.Size())
}

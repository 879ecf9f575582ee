//go:build windows

package webgpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/latte-ml/latte/internal/tensor"
)

// Numeric kernels. WGSL storage buffers carry f32 only, so every kernel
// rejects other element types up front.

func checkFloat32(op string, dt tensor.DataType) {
	if dt != tensor.Float32 {
		panic(fmt.Sprintf("webgpu: %s supports float32 elements only, got %s", op, dt))
	}
}

// dispatch runs one compute pass of a cached pipeline over the given
// buffers plus a trailing uniform params binding.
func (d *Device) dispatch(name, code string, workgroups uint32, params []byte, buffers ...*deviceBuffer) {
	shader := d.compileShader(name, code)
	pipeline := d.getOrCreatePipeline(name, shader)

	bufferParams := d.createUniformBuffer(params)
	defer bufferParams.Release()

	entries := make([]wgpu.BindGroupEntry, 0, len(buffers)+1)
	for i, buf := range buffers {
		//nolint:gosec // G115: binding indices and sizes are non-negative.
		entries = append(entries, wgpu.BufferBindingEntry(uint32(i), buf.buf, 0, uint64(buf.size)))
	}
	//nolint:gosec // G115: binding index is non-negative.
	entries = append(entries, wgpu.BufferBindingEntry(uint32(len(buffers)), bufferParams, 0, 16))

	bindGroupLayout := pipeline.GetBindGroupLayout(0)
	bindGroup := d.device.CreateBindGroupSimple(bindGroupLayout, entries)
	defer bindGroup.Release()

	encoder := d.device.CreateCommandEncoder(nil)
	computePass := encoder.BeginComputePass(nil)
	computePass.SetPipeline(pipeline)
	computePass.SetBindGroup(0, bindGroup, nil)
	computePass.DispatchWorkgroups(workgroups, 1, 1)
	computePass.End()
	d.queue.Submit(encoder.Finish(nil))
}

func elementWorkgroups(n int) uint32 {
	//nolint:gosec // G115: workgroup count is non-negative.
	return uint32((n + workgroupSize - 1) / workgroupSize)
}

// Fill sets the first n elements of x to value.
func (d *Device) Fill(dt tensor.DataType, n int, value float64, x tensor.Buffer) {
	checkFloat32("fill", dt)
	if n == 0 {
		return
	}
	params := make([]byte, 16)
	binary.LittleEndian.PutUint32(params[0:4], uint32(n)) //nolint:gosec // G115: counts are non-negative.
	binary.LittleEndian.PutUint32(params[4:8], math.Float32bits(float32(value)))
	d.dispatch("fill", fillShader, elementWorkgroups(n), params, x.(*deviceBuffer))
}

// Scal scales the first n elements of x by alpha in place.
func (d *Device) Scal(dt tensor.DataType, n int, alpha float64, x tensor.Buffer) {
	checkFloat32("scal", dt)
	if n == 0 {
		return
	}
	params := make([]byte, 16)
	binary.LittleEndian.PutUint32(params[0:4], uint32(n)) //nolint:gosec // G115: counts are non-negative.
	binary.LittleEndian.PutUint32(params[4:8], math.Float32bits(float32(alpha)))
	d.dispatch("scal", scalShader, elementWorkgroups(n), params, x.(*deviceBuffer))
}

// Axpy computes y[i] += alpha * x[i] over the first n elements.
func (d *Device) Axpy(dt tensor.DataType, n int, alpha float64, x, y tensor.Buffer) {
	checkFloat32("axpy", dt)
	if n == 0 {
		return
	}
	params := make([]byte, 16)
	binary.LittleEndian.PutUint32(params[0:4], uint32(n)) //nolint:gosec // G115: counts are non-negative.
	binary.LittleEndian.PutUint32(params[4:8], math.Float32bits(float32(alpha)))
	d.dispatch("axpy", axpyShader, elementWorkgroups(n), params,
		x.(*deviceBuffer), y.(*deviceBuffer))
}

// Asum returns the sum of absolute values of the first n elements of x.
// Each workgroup reduces its slice into a partial sum; the host adds the
// partials in float64.
func (d *Device) Asum(dt tensor.DataType, n int, x tensor.Buffer) float64 {
	checkFloat32("asum", dt)
	if n == 0 {
		return 0
	}
	workgroups := elementWorkgroups(n)
	partial := d.Alloc(int(workgroups) * 4)
	defer partial.Release()

	params := make([]byte, 16)
	binary.LittleEndian.PutUint32(params[0:4], uint32(n)) //nolint:gosec // G115: counts are non-negative.
	d.dispatch("asum", asumShader, workgroups, params,
		x.(*deviceBuffer), partial.(*deviceBuffer))

	return d.sumPartials(partial, int(workgroups))
}

// Dot returns the inner product of the first n elements of x and y.
func (d *Device) Dot(dt tensor.DataType, n int, x, y tensor.Buffer) float64 {
	checkFloat32("dot", dt)
	if n == 0 {
		return 0
	}
	workgroups := elementWorkgroups(n)
	partial := d.Alloc(int(workgroups) * 4)
	defer partial.Release()

	params := make([]byte, 16)
	binary.LittleEndian.PutUint32(params[0:4], uint32(n)) //nolint:gosec // G115: counts are non-negative.
	d.dispatch("dot", dotShader, workgroups, params,
		x.(*deviceBuffer), y.(*deviceBuffer), partial.(*deviceBuffer))

	return d.sumPartials(partial, int(workgroups))
}

func (d *Device) sumPartials(partial tensor.Buffer, count int) float64 {
	raw := make([]byte, count*4)
	d.Download(raw, partial)

	sum := 0.0
	for i := 0; i < count; i++ {
		sum += float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:])))
	}
	return sum
}

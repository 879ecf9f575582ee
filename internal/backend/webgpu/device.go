//go:build windows

package webgpu

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/latte-ml/latte/internal/tensor"
)

// Device is the WebGPU device context. Buffers live in GPU storage memory;
// uploads go through transient mapped-at-creation staging buffers and
// downloads through pooled map-read staging buffers. Shader modules and
// compute pipelines are compiled once and cached.
type Device struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline
	mu        sync.RWMutex

	adapterInfo *wgpu.AdapterInfo

	staging *stagingPool
}

var _ tensor.Device = (*Device)(nil)

type deviceBuffer struct {
	dev  *Device
	buf  *wgpu.Buffer
	size int
}

func (b *deviceBuffer) Size() int { return b.size }

func (b *deviceBuffer) Release() {
	if b.buf != nil {
		b.buf.Release()
		b.buf = nil
	}
}

// New creates a WebGPU device context. Returns an error if no adapter is
// available or initialization fails.
func New() (dev tensor.Device, err error) {
	// Recover from panic if the wgpu native library is not found.
	defer func() {
		if r := recover(); r != nil {
			dev = nil
			err = fmt.Errorf("webgpu: native library not available: %v", r)
		}
	}()

	instance := wgpu.CreateInstance(nil)
	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request adapter: %w", adapterErr)
	}

	adapterInfo := adapter.GetInfo()

	device, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request device: %w", deviceErr)
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to get queue")
	}

	d := &Device{
		instance:    instance,
		adapter:     adapter,
		device:      device,
		queue:       queue,
		shaders:     make(map[string]*wgpu.ShaderModule),
		pipelines:   make(map[string]*wgpu.ComputePipeline),
		adapterInfo: &adapterInfo,
	}
	d.staging = newStagingPool(device)
	return d, nil
}

// IsAvailable reports whether a WebGPU adapter can be acquired.
func IsAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return false
	}
	adapter.Release()
	return true
}

// Release frees all GPU resources. The context must not be used afterwards.
func (d *Device) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.staging != nil {
		d.staging.Clear()
		d.staging = nil
	}
	for _, p := range d.pipelines {
		p.Release()
	}
	d.pipelines = nil
	for _, s := range d.shaders {
		s.Release()
	}
	d.shaders = nil

	if d.queue != nil {
		d.queue.Release()
		d.queue = nil
	}
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}

// Name identifies the adapter backing this context.
func (d *Device) Name() string {
	if d.adapterInfo != nil {
		return fmt.Sprintf("webgpu (%s %s)", d.adapterInfo.Name, d.adapterInfo.VendorName)
	}
	return "webgpu"
}

// Alloc returns a zeroed storage buffer. WebGPU guarantees fresh buffers
// read as zero.
func (d *Device) Alloc(bytes int) tensor.Buffer {
	buf := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
		Size:  uint64(bytes), //nolint:gosec // G115: sizes are non-negative.
	})
	return &deviceBuffer{dev: d, buf: buf, size: bytes}
}

// Upload copies host bytes into a storage buffer through a transient
// mapped-at-creation staging buffer.
func (d *Device) Upload(dst tensor.Buffer, src []byte) {
	db := dst.(*deviceBuffer)
	size := uint64(len(src)) //nolint:gosec // G115: lengths are non-negative.

	staging := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageCopySrc,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})
	defer staging.Release()

	mappedPtr := staging.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mapped := unsafe.Slice((*byte)(mappedPtr), size)
	copy(mapped, src)
	staging.Unmap()

	encoder := d.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(staging, 0, db.buf, 0, size)
	d.queue.Submit(encoder.Finish(nil))
}

// Download copies a storage buffer back to host memory through a pooled
// map-read staging buffer. Blocks until the copy completes.
func (d *Device) Download(dst []byte, src tensor.Buffer) {
	sb := src.(*deviceBuffer)
	size := uint64(len(dst)) //nolint:gosec // G115: lengths are non-negative.

	staging := d.staging.Acquire(size)
	defer d.staging.Release(staging, size)

	encoder := d.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(sb.buf, 0, staging, 0, size)
	d.queue.Submit(encoder.Finish(nil))

	if err := staging.MapAsync(d.device, wgpu.MapModeRead, 0, size); err != nil {
		panic(fmt.Sprintf("webgpu: failed to map staging buffer: %v", err))
	}
	mappedPtr := staging.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mapped := unsafe.Slice((*byte)(mappedPtr), size)
	copy(dst, mapped)
	staging.Unmap()
}

// Copy copies between two storage buffers on the device.
func (d *Device) Copy(dst, src tensor.Buffer, bytes int) {
	encoder := d.device.CreateCommandEncoder(nil)
	//nolint:gosec // G115: sizes are non-negative.
	encoder.CopyBufferToBuffer(src.(*deviceBuffer).buf, 0, dst.(*deviceBuffer).buf, 0, uint64(bytes))
	d.queue.Submit(encoder.Finish(nil))
}

// compileShader compiles WGSL into a ShaderModule, cached by name.
func (d *Device) compileShader(name, code string) *wgpu.ShaderModule {
	d.mu.RLock()
	if shader, exists := d.shaders[name]; exists {
		d.mu.RUnlock()
		return shader
	}
	d.mu.RUnlock()

	shader := d.device.CreateShaderModuleWGSL(code)

	d.mu.Lock()
	d.shaders[name] = shader
	d.mu.Unlock()
	return shader
}

// getOrCreatePipeline returns a cached ComputePipeline or creates one with
// an auto layout.
func (d *Device) getOrCreatePipeline(name string, shader *wgpu.ShaderModule) *wgpu.ComputePipeline {
	d.mu.RLock()
	if pipeline, exists := d.pipelines[name]; exists {
		d.mu.RUnlock()
		return pipeline
	}
	d.mu.RUnlock()

	pipeline := d.device.CreateComputePipelineSimple(nil, shader, "main")

	d.mu.Lock()
	d.pipelines[name] = pipeline
	d.mu.Unlock()
	return pipeline
}

// createUniformBuffer creates a 16-byte-aligned uniform buffer holding data.
func (d *Device) createUniformBuffer(data []byte) *wgpu.Buffer {
	size := uint64(len(data)) //nolint:gosec // G115: lengths are non-negative.
	alignedSize := (size + 15) &^ 15

	buffer := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		Size:             alignedSize,
		MappedAtCreation: wgpu.True,
	})

	mappedPtr := buffer.GetMappedRange(0, alignedSize)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mapped := unsafe.Slice((*byte)(mappedPtr), alignedSize)
	copy(mapped, data)
	buffer.Unmap()
	return buffer
}

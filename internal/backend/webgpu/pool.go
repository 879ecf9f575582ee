//go:build windows

package webgpu

import (
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
)

const (
	// Size thresholds for pool categories.
	smallThreshold  = 4 * 1024    // 4KB
	mediumThreshold = 1024 * 1024 // 1MB
	maxPoolSize     = 100         // max buffers per category
)

type pooledBuffer struct {
	buffer *wgpu.Buffer
	size   uint64
}

// stagingPool reuses map-read staging buffers across downloads. Download
// staging is the highest-churn allocation on this backend: every read of a
// synced tensor needs one, and the map/unmap cycle leaves the buffer
// reusable. Buffers are categorized by size.
type stagingPool struct {
	device *wgpu.Device

	small  []*pooledBuffer
	medium []*pooledBuffer
	large  []*pooledBuffer

	mu sync.Mutex

	// Statistics
	totalAllocated uint64
	poolHits       uint64
	poolMisses     uint64
}

func newStagingPool(device *wgpu.Device) *stagingPool {
	return &stagingPool{device: device}
}

func (p *stagingPool) pool(size uint64) *[]*pooledBuffer {
	switch {
	case size < smallThreshold:
		return &p.small
	case size < mediumThreshold:
		return &p.medium
	default:
		return &p.large
	}
}

// Acquire returns a map-read staging buffer of at least size bytes, reusing
// a pooled one when possible.
func (p *stagingPool) Acquire(size uint64) *wgpu.Buffer {
	p.mu.Lock()
	defer p.mu.Unlock()

	pool := p.pool(size)
	for i, pb := range *pool {
		if pb.size >= size {
			buffer := pb.buffer
			*pool = append((*pool)[:i], (*pool)[i+1:]...)
			p.poolHits++
			return buffer
		}
	}

	p.poolMisses++
	p.totalAllocated++
	return p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
}

// Release returns a staging buffer to the pool, or frees it when the
// category is full.
func (p *stagingPool) Release(buffer *wgpu.Buffer, size uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pool := p.pool(size)
	if len(*pool) >= maxPoolSize {
		buffer.Release()
		return
	}
	*pool = append(*pool, &pooledBuffer{buffer: buffer, size: size})
}

// Stats returns allocation and reuse counters.
func (p *stagingPool) Stats() (allocated, hits, misses uint64, pooled int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalAllocated, p.poolHits, p.poolMisses,
		len(p.small) + len(p.medium) + len(p.large)
}

// Clear frees every pooled buffer.
func (p *stagingPool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, pool := range []*[]*pooledBuffer{&p.small, &p.medium, &p.large} {
		for _, pb := range *pool {
			pb.buffer.Release()
		}
		*pool = nil
	}
}

package tensor

import (
	"fmt"
	"sync/atomic"
)

// SyncedBuffer is a reference-counted buffer mirrored between host and
// device memory. Content is copied across the interconnect lazily, on the
// first access from the side that does not hold the head; the copy blocks
// until complete. Storage on either side is allocated zeroed on first touch.
//
// Multiple tensors may hold the same SyncedBuffer (weight tying, views);
// the buffer is freed when the last holder releases it. The buffer itself
// does no locking: concurrent mutation through two holders is the caller's
// problem, but destruction from different goroutines is safe.
type SyncedBuffer struct {
	host []byte
	dev  Buffer
	size int
	head Residency
	ctx  Device
	refs atomic.Int32
}

// NewSyncedBuffer creates an Uninitialized buffer of the given byte size
// with a reference count of one. ctx may be nil for host-only use; device
// access then panics.
func NewSyncedBuffer(size int, ctx Device) *SyncedBuffer {
	if size < 0 {
		panic(fmt.Sprintf("tensor: negative buffer size %d", size))
	}
	b := &SyncedBuffer{size: size, ctx: ctx}
	b.refs.Store(1)
	return b
}

// Size returns the buffer size in bytes.
func (b *SyncedBuffer) Size() int {
	return b.size
}

// State returns the current residency state.
func (b *SyncedBuffer) State() Residency {
	return b.head
}

// Context returns the device context the buffer is bound to, or nil.
func (b *SyncedBuffer) Context() Device {
	return b.ctx
}

func (b *SyncedBuffer) toHost() {
	switch b.head {
	case Uninitialized:
		b.host = make([]byte, b.size)
		b.head = HeadAtHost
	case HeadAtDevice:
		if b.host == nil {
			b.host = make([]byte, b.size)
		}
		b.ctx.Download(b.host, b.dev)
		b.head = Synced
	}
}

func (b *SyncedBuffer) toDevice() {
	if b.ctx == nil {
		panic("tensor: buffer has no device context")
	}
	switch b.head {
	case Uninitialized:
		b.dev = b.ctx.Alloc(b.size)
		b.head = HeadAtDevice
	case HeadAtHost:
		if b.dev == nil {
			b.dev = b.ctx.Alloc(b.size)
		}
		b.ctx.Upload(b.dev, b.host)
		b.head = Synced
	}
}

// HostBytes returns the host copy for reading, synchronizing from the
// device if it holds the head.
func (b *SyncedBuffer) HostBytes() []byte {
	b.toHost()
	return b.host
}

// MutableHostBytes returns the host copy for writing and moves the head to
// the host, invalidating the device copy.
func (b *SyncedBuffer) MutableHostBytes() []byte {
	b.toHost()
	b.head = HeadAtHost
	return b.host
}

// DeviceData returns the device allocation for reading, synchronizing from
// the host if it holds the head.
func (b *SyncedBuffer) DeviceData() Buffer {
	b.toDevice()
	return b.dev
}

// MutableDeviceData returns the device allocation for writing and moves the
// head to the device, invalidating the host copy.
func (b *SyncedBuffer) MutableDeviceData() Buffer {
	b.toDevice()
	b.head = HeadAtDevice
	return b.dev
}

// SetHostBytes adopts data as the host-side storage, replacing whatever the
// buffer owned, and moves the head to the host. len(data) must equal Size.
func (b *SyncedBuffer) SetHostBytes(data []byte) {
	if len(data) != b.size {
		panic(fmt.Sprintf("tensor: adopted host storage is %d bytes, buffer is %d", len(data), b.size))
	}
	b.host = data
	b.head = HeadAtHost
}

// SetDeviceData adopts d as the device-side storage, releasing any previous
// device allocation, and moves the head to the device.
func (b *SyncedBuffer) SetDeviceData(d Buffer) {
	if d.Size() < b.size {
		panic(fmt.Sprintf("tensor: adopted device storage is %d bytes, buffer is %d", d.Size(), b.size))
	}
	if b.dev != nil {
		b.dev.Release()
	}
	b.dev = d
	b.head = HeadAtDevice
}

// Retain increments the reference count.
func (b *SyncedBuffer) Retain() {
	b.refs.Add(1)
}

// Release decrements the reference count and frees both copies when it
// reaches zero.
func (b *SyncedBuffer) Release() {
	if b.refs.Add(-1) == 0 {
		if b.dev != nil {
			b.dev.Release()
			b.dev = nil
		}
		b.host = nil
		b.head = Uninitialized
	}
}

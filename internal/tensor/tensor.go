package tensor

import (
	"fmt"
	"math"
)

// Tensor is a shape-typed N-dimensional array with two parallel buffers:
// values (forward computation) and gradients (accumulated derivatives).
// Both buffers are mirrored between host and device memory and sized to the
// tensor's capacity, the largest element count the tensor ever reached.
//
// A tensor is bound to one device context at construction and imposes no
// internal locking: one writer per tensor, or external coordination.
type Tensor[T DType] struct {
	shape    Shape
	stride   Shape
	count    int
	capacity int

	values *SyncedBuffer
	grads  *SyncedBuffer

	// shapeBuf mirrors shape as a flat int32 array for device kernels that
	// need shape metadata resident on-device. Regenerated on every reshape.
	shapeBuf *SyncedBuffer

	ctx   Device
	quant Quantizer
}

// New creates a tensor with the given shape on the given device context.
// ctx may be nil for host-only tensors. Panics if the shape is invalid.
func New[T DType](shape Shape, ctx Device) *Tensor[T] {
	t := &Tensor[T]{ctx: ctx}
	t.Reshape(shape)
	return t
}

// NewExtents creates a rank-4 tensor with the conventional
// (num, channels, height, width) extents.
func NewExtents[T DType](num, channels, height, width int, ctx Device) *Tensor[T] {
	return New[T](Shape{num, channels, height, width}, ctx)
}

// NewEmpty creates a tensor with no shape, no elements and no buffers.
// The first Reshape allocates.
func NewEmpty[T DType](ctx Device) *Tensor[T] {
	return &Tensor[T]{ctx: ctx}
}

// FromSlice creates a tensor with the given shape and copies data into its
// values buffer. The slice length must match the shape's element count.
func FromSlice[T DType](data []T, shape Shape, ctx Device) (*Tensor[T], error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("data length %d does not match shape %v", len(data), shape)
	}
	t := New[T](shape, ctx)
	copy(t.MutableHostValues(), data)
	return t, nil
}

// Reshape changes the tensor's logical extents, using the shape itself as
// the stride metadata. It returns true when the underlying buffers were
// replaced: that happens only when the new element count exceeds the
// capacity, so reshaping down (or to an equal count) preserves buffer
// identity. Previously obtained views are invalid after a true return.
//
// Panics if the rank exceeds MaxAxes, any extent is negative, or the
// element count overflows the int range.
func (t *Tensor[T]) Reshape(shape Shape) bool {
	return t.ReshapeWithStride(shape, shape)
}

// ReshapeWithStride is Reshape with separate per-axis stride metadata.
// The strides are stored for layout-aware consumers; this package does not
// interpret them.
func (t *Tensor[T]) ReshapeWithStride(shape, stride Shape) bool {
	if len(shape) > MaxAxes {
		panic(fmt.Sprintf("tensor: rank %d exceeds the maximum of %d axes", len(shape), MaxAxes))
	}
	if len(stride) != len(shape) {
		panic(fmt.Sprintf("tensor: stride rank %d does not match shape rank %d", len(stride), len(shape)))
	}
	count := 1
	for _, dim := range shape {
		if dim < 0 {
			panic(fmt.Sprintf("tensor: negative extent %d in shape %v", dim, shape))
		}
		if count != 0 && dim > math.MaxInt/count {
			panic(fmt.Sprintf("tensor: element count of shape %v exceeds the int range", shape))
		}
		count *= dim
	}

	t.shape = shape.Clone()
	t.stride = stride.Clone()
	t.count = count
	t.refreshDeviceShape()

	if count > t.capacity {
		t.capacity = count
		size := count * DataTypeOf[T]().Size()
		if t.values != nil {
			t.values.Release()
		}
		if t.grads != nil {
			t.grads.Release()
		}
		t.values = NewSyncedBuffer(size, t.ctx)
		t.grads = NewSyncedBuffer(size, t.ctx)
		return true
	}
	return false
}

// ReshapeExtents is Reshape for the conventional rank-4 form.
func (t *Tensor[T]) ReshapeExtents(num, channels, height, width int) bool {
	return t.Reshape(Shape{num, channels, height, width})
}

// ReshapeLike reshapes to another tensor's shape and stride.
func (t *Tensor[T]) ReshapeLike(other *Tensor[T]) bool {
	return t.ReshapeWithStride(other.shape, other.stride)
}

// refreshDeviceShape regenerates the int32 shape mirror. The mirror buffer
// grows but never shrinks, like the element buffers.
func (t *Tensor[T]) refreshDeviceShape() {
	need := len(t.shape) * 4
	if t.shapeBuf == nil || t.shapeBuf.Size() < need {
		if t.shapeBuf != nil {
			t.shapeBuf.Release()
		}
		t.shapeBuf = NewSyncedBuffer(need, t.ctx)
	}
	if len(t.shape) == 0 {
		return
	}
	dst := bytesAs[int32](t.shapeBuf.MutableHostBytes(), len(t.shape))
	for i, dim := range t.shape {
		dst[i] = int32(dim) //nolint:gosec // G115: extents are bounded by the count overflow check.
	}
}

// Shape returns the tensor's shape. The slice must not be mutated.
func (t *Tensor[T]) Shape() Shape {
	return t.shape
}

// Stride returns the stored per-axis stride metadata.
func (t *Tensor[T]) Stride() Shape {
	return t.stride
}

// Rank returns the number of axes.
func (t *Tensor[T]) Rank() int {
	return len(t.shape)
}

// Count returns the logical element count.
func (t *Tensor[T]) Count() int {
	return t.count
}

// Capacity returns the allocated element count, the historical maximum of
// Count.
func (t *Tensor[T]) Capacity() int {
	return t.capacity
}

// ByteCount returns the logical size of one buffer in bytes.
func (t *Tensor[T]) ByteCount() int {
	return t.count * DataTypeOf[T]().Size()
}

// DataType returns the runtime element type tag.
func (t *Tensor[T]) DataType() DataType {
	return DataTypeOf[T]()
}

// Device returns the device context the tensor is bound to, or nil.
func (t *Tensor[T]) Device() Device {
	return t.ctx
}

// canonicalAxis resolves a possibly negative axis index.
func (t *Tensor[T]) canonicalAxis(index int) int {
	if index < -len(t.shape) || index >= len(t.shape) {
		panic(fmt.Sprintf("tensor: axis %d out of range for rank %d", index, len(t.shape)))
	}
	if index < 0 {
		return index + len(t.shape)
	}
	return index
}

// Dim returns the extent of one axis. Negative indices count from the end.
func (t *Tensor[T]) Dim(index int) int {
	return t.shape[t.canonicalAxis(index)]
}

// LegacyDim interprets the tensor under the deprecated 4-axis convention.
// Axes are indexed from the end of the shape, in [-4, 4); axes the tensor
// does not have report extent 1. Historically asymmetric shapes such as a
// 1x1x1xn bias depend on the end-relative indexing.
func (t *Tensor[T]) LegacyDim(index int) int {
	if len(t.shape) > 4 {
		panic(fmt.Sprintf("tensor: cannot use legacy axis accessors on a rank-%d tensor", len(t.shape)))
	}
	if index < -4 || index >= 4 {
		panic(fmt.Sprintf("tensor: legacy axis %d out of range", index))
	}
	if index >= len(t.shape) || index < -len(t.shape) {
		return 1
	}
	return t.Dim(index)
}

// Num returns the legacy first axis extent.
func (t *Tensor[T]) Num() int { return t.LegacyDim(0) }

// Channels returns the legacy second axis extent.
func (t *Tensor[T]) Channels() int { return t.LegacyDim(1) }

// Height returns the legacy third axis extent.
func (t *Tensor[T]) Height() int { return t.LegacyDim(2) }

// Width returns the legacy fourth axis extent.
func (t *Tensor[T]) Width() int { return t.LegacyDim(3) }

// CountFrom returns the element count of axes [start, rank).
func (t *Tensor[T]) CountFrom(start int) int {
	return t.CountRange(start, len(t.shape))
}

// CountRange returns the element count of axes [start, end).
func (t *Tensor[T]) CountRange(start, end int) int {
	if start < 0 || end > len(t.shape) || start > end {
		panic(fmt.Sprintf("tensor: axis range [%d, %d) out of bounds for rank %d", start, end, len(t.shape)))
	}
	n := 1
	for i := start; i < end; i++ {
		n *= t.shape[i]
	}
	return n
}

// Offset returns the flat element offset of a multi-axis index. Trailing
// axes may be omitted and default to zero.
func (t *Tensor[T]) Offset(indices ...int) int {
	if len(indices) > len(t.shape) {
		panic(fmt.Sprintf("tensor: %d indices for rank %d", len(indices), len(t.shape)))
	}
	offset := 0
	for i, dim := range t.shape {
		offset *= dim
		if i < len(indices) {
			if indices[i] < 0 || indices[i] >= dim {
				panic(fmt.Sprintf("tensor: index %d out of range for axis %d (extent %d)", indices[i], i, dim))
			}
			offset += indices[i]
		}
	}
	return offset
}

// ValueAt reads one element of the values buffer through the host side.
func (t *Tensor[T]) ValueAt(indices ...int) T {
	return t.HostValues()[t.Offset(indices...)]
}

// GradientAt reads one element of the gradients buffer through the host side.
func (t *Tensor[T]) GradientAt(indices ...int) T {
	return t.HostGradients()[t.Offset(indices...)]
}

func (t *Tensor[T]) requireValues() {
	if t.values == nil {
		panic("tensor: values buffer not allocated")
	}
}

func (t *Tensor[T]) requireGradients() {
	if t.grads == nil {
		panic("tensor: gradients buffer not allocated")
	}
}

// HostValues returns a read view of the values buffer on the host side.
func (t *Tensor[T]) HostValues() []T {
	t.requireValues()
	return bytesAs[T](t.values.HostBytes(), t.count)
}

// MutableHostValues returns a write view of the values buffer on the host
// side, invalidating the device copy.
func (t *Tensor[T]) MutableHostValues() []T {
	t.requireValues()
	return bytesAs[T](t.values.MutableHostBytes(), t.count)
}

// HostGradients returns a read view of the gradients buffer on the host side.
func (t *Tensor[T]) HostGradients() []T {
	t.requireGradients()
	return bytesAs[T](t.grads.HostBytes(), t.count)
}

// MutableHostGradients returns a write view of the gradients buffer on the
// host side, invalidating the device copy.
func (t *Tensor[T]) MutableHostGradients() []T {
	t.requireGradients()
	return bytesAs[T](t.grads.MutableHostBytes(), t.count)
}

// DeviceValues returns the device-resident values allocation for reading.
func (t *Tensor[T]) DeviceValues() Buffer {
	t.requireValues()
	return t.values.DeviceData()
}

// MutableDeviceValues returns the device-resident values allocation for
// writing, invalidating the host copy.
func (t *Tensor[T]) MutableDeviceValues() Buffer {
	t.requireValues()
	return t.values.MutableDeviceData()
}

// DeviceGradients returns the device-resident gradients allocation for
// reading.
func (t *Tensor[T]) DeviceGradients() Buffer {
	t.requireGradients()
	return t.grads.DeviceData()
}

// MutableDeviceGradients returns the device-resident gradients allocation
// for writing, invalidating the host copy.
func (t *Tensor[T]) MutableDeviceGradients() Buffer {
	t.requireGradients()
	return t.grads.MutableDeviceData()
}

// DeviceShape returns the device-resident int32 mirror of the shape.
func (t *Tensor[T]) DeviceShape() Buffer {
	if t.shapeBuf == nil {
		panic("tensor: shape mirror not allocated")
	}
	return t.shapeBuf.DeviceData()
}

// ValuesBuffer returns the underlying values buffer handle.
func (t *Tensor[T]) ValuesBuffer() *SyncedBuffer {
	return t.values
}

// GradientsBuffer returns the underlying gradients buffer handle.
func (t *Tensor[T]) GradientsBuffer() *SyncedBuffer {
	return t.grads
}

// SetHostValues adopts data as the host-side values storage. When the
// adopted size differs from the current buffer size, both buffers are
// replaced with fresh ones of the logical size first, as reshape would.
func (t *Tensor[T]) SetHostValues(data []T) {
	t.adoptHost(&t.values, data)
}

// SetHostGradients adopts data as the host-side gradients storage.
func (t *Tensor[T]) SetHostGradients(data []T) {
	t.adoptHost(&t.grads, data)
}

func (t *Tensor[T]) adoptHost(slot **SyncedBuffer, data []T) {
	if len(data) != t.count {
		panic(fmt.Sprintf("tensor: adopted slice has %d elements, tensor has %d", len(data), t.count))
	}
	size := t.count * DataTypeOf[T]().Size()
	if *slot == nil || (*slot).Size() != size {
		if t.values != nil {
			t.values.Release()
		}
		if t.grads != nil {
			t.grads.Release()
		}
		t.values = NewSyncedBuffer(size, t.ctx)
		t.grads = NewSyncedBuffer(size, t.ctx)
	}
	(*slot).SetHostBytes(asBytes(data))
}

// ShareValues reassigns this tensor's values handle to other's buffer.
// No data is copied; the buffer is jointly owned afterwards and freed when
// the last holder releases it. Both tensors must have equal element counts.
func (t *Tensor[T]) ShareValues(other *Tensor[T]) {
	t.shareBuffer(&t.values, other, other.values)
}

// ShareGradients reassigns this tensor's gradients handle to other's buffer.
func (t *Tensor[T]) ShareGradients(other *Tensor[T]) {
	t.shareBuffer(&t.grads, other, other.grads)
}

func (t *Tensor[T]) shareBuffer(slot **SyncedBuffer, other *Tensor[T], buf *SyncedBuffer) {
	if t.count != other.count {
		panic(fmt.Sprintf("tensor: cannot share buffers between tensors of %d and %d elements", t.count, other.count))
	}
	if buf == nil {
		panic("tensor: source tensor has no buffer to share")
	}
	buf.Retain()
	if *slot != nil {
		(*slot).Release()
	}
	*slot = buf
}

// Release drops the tensor's references to its buffers. Shared buffers
// survive until their last holder releases them.
func (t *Tensor[T]) Release() {
	if t.values != nil {
		t.values.Release()
		t.values = nil
	}
	if t.grads != nil {
		t.grads.Release()
		t.grads = nil
	}
	if t.shapeBuf != nil {
		t.shapeBuf.Release()
		t.shapeBuf = nil
	}
}

// Quantizer returns the associated quantizer, or nil.
func (t *Tensor[T]) Quantizer() Quantizer {
	return t.quant
}

// SetQuantizer associates a quantizer with the tensor. A nil quantizer
// degrades the quantized accessors to straight copies.
func (t *Tensor[T]) SetQuantizer(q Quantizer) {
	t.quant = q
}

// String renders a short description for diagnostics.
func (t *Tensor[T]) String() string {
	return fmt.Sprintf("Tensor[%s]%s", t.DataType(), t.shape)
}

package tensor

import "fmt"

// Residency-dispatched numeric operations. Each consults the relevant
// buffer's head state and runs on that side rather than forcing a copy:
// host kernels when the head is at the host, device kernels when the head
// is at the device or both sides are valid.
//
// All of these are defined for float element types only; invoking them on
// an integer- or bool-typed tensor panics immediately rather than computing
// silently wrong gradient arithmetic.

func (t *Tensor[T]) requireFloat(op string) {
	if dt := DataTypeOf[T](); !dt.IsFloat() {
		panic(fmt.Sprintf("tensor: %s is not implemented for %s elements", op, dt))
	}
}

// Update applies the accumulated gradients to the values: values -=
// gradients. The side is chosen by the values buffer's residency; a values
// buffer that never received content is a fatal error. Gradients that were
// never touched read as zeros.
func (t *Tensor[T]) Update() {
	t.requireFloat("Update")
	t.requireValues()
	t.requireGradients()
	dt := DataTypeOf[T]()
	switch t.values.State() {
	case HeadAtHost:
		hostAxpy(dt, t.count, -1, t.grads.HostBytes(), t.values.MutableHostBytes())
	case HeadAtDevice, Synced:
		t.ctx.Axpy(dt, t.count, -1, t.grads.DeviceData(), t.values.MutableDeviceData())
	case Uninitialized:
		panic("tensor: values buffer not initialized")
	default:
		panic(fmt.Sprintf("tensor: unknown buffer residency state %d", t.values.State()))
	}
}

// AsumValues returns the sum of absolute values of the values buffer, or
// zero when no content exists yet.
func (t *Tensor[T]) AsumValues() float64 {
	return t.asum(t.values, "AsumValues")
}

// AsumGradients returns the sum of absolute values of the gradients buffer,
// or zero when no content exists yet.
func (t *Tensor[T]) AsumGradients() float64 {
	return t.asum(t.grads, "AsumGradients")
}

func (t *Tensor[T]) asum(b *SyncedBuffer, op string) float64 {
	t.requireFloat(op)
	if b == nil {
		return 0
	}
	dt := DataTypeOf[T]()
	switch b.State() {
	case HeadAtHost:
		return hostAsum(dt, t.count, b.HostBytes())
	case HeadAtDevice, Synced:
		return t.ctx.Asum(dt, t.count, b.DeviceData())
	case Uninitialized:
		return 0
	default:
		panic(fmt.Sprintf("tensor: unknown buffer residency state %d", b.State()))
	}
}

// SumSqValues returns the sum of squares of the values buffer, or zero when
// no content exists yet.
func (t *Tensor[T]) SumSqValues() float64 {
	return t.sumsq(t.values, "SumSqValues")
}

// SumSqGradients returns the sum of squares of the gradients buffer, or
// zero when no content exists yet.
func (t *Tensor[T]) SumSqGradients() float64 {
	return t.sumsq(t.grads, "SumSqGradients")
}

func (t *Tensor[T]) sumsq(b *SyncedBuffer, op string) float64 {
	t.requireFloat(op)
	if b == nil {
		return 0
	}
	dt := DataTypeOf[T]()
	switch b.State() {
	case HeadAtHost:
		host := b.HostBytes()
		return hostDot(dt, t.count, host, host)
	case HeadAtDevice, Synced:
		dev := b.DeviceData()
		return t.ctx.Dot(dt, t.count, dev, dev)
	case Uninitialized:
		return 0
	default:
		panic(fmt.Sprintf("tensor: unknown buffer residency state %d", b.State()))
	}
}

// ScaleValues scales the values buffer in place. A missing or untouched
// buffer makes this a no-op.
func (t *Tensor[T]) ScaleValues(factor float64) {
	t.scale(t.values, factor, "ScaleValues")
}

// ScaleGradients scales the gradients buffer in place.
func (t *Tensor[T]) ScaleGradients(factor float64) {
	t.scale(t.grads, factor, "ScaleGradients")
}

func (t *Tensor[T]) scale(b *SyncedBuffer, factor float64, op string) {
	t.requireFloat(op)
	if b == nil {
		return
	}
	dt := DataTypeOf[T]()
	switch b.State() {
	case HeadAtHost:
		hostScal(dt, t.count, factor, b.MutableHostBytes())
	case HeadAtDevice, Synced:
		t.ctx.Scal(dt, t.count, factor, b.MutableDeviceData())
	case Uninitialized:
		// Nothing to scale yet.
	default:
		panic(fmt.Sprintf("tensor: unknown buffer residency state %d", b.State()))
	}
}

// ClearGradients zero-fills the gradients buffer on the side named by mode.
// The host path clears any element type; the device path uses the device
// fill kernel and is float-only like the other kernels.
func (t *Tensor[T]) ClearGradients(mode Mode) {
	t.requireGradients()
	switch mode {
	case ModeHost:
		b := t.grads.MutableHostBytes()
		clear(b[:t.ByteCount()])
	case ModeDevice:
		if t.ctx == nil {
			panic("tensor: buffer has no device context")
		}
		t.ctx.Fill(DataTypeOf[T](), t.count, 0, t.grads.MutableDeviceData())
	default:
		panic(fmt.Sprintf("tensor: unknown compute mode %d", mode))
	}
}

// CopyFrom copies count elements from src's values (or gradients) buffer
// into the corresponding buffer here, on the side named by mode. A shape
// mismatch reshapes this tensor when permitted and is fatal otherwise.
func (t *Tensor[T]) CopyFrom(src *Tensor[T], mode Mode, copyGradients, reshape bool) {
	if src.count != t.count || !t.shape.Equal(src.shape) {
		if reshape {
			t.ReshapeLike(src)
		} else {
			panic("tensor: cannot copy tensors of different sizes")
		}
	}
	sb, db := src.values, t.values
	if copyGradients {
		sb, db = src.grads, t.grads
	}
	if sb == nil || db == nil {
		panic("tensor: copy requires allocated buffers on both tensors")
	}
	n := t.ByteCount()
	switch mode {
	case ModeHost:
		copy(db.MutableHostBytes()[:n], sb.HostBytes()[:n])
	case ModeDevice:
		if t.ctx == nil {
			panic("tensor: buffer has no device context")
		}
		t.ctx.Copy(db.MutableDeviceData(), sb.DeviceData(), n)
	default:
		panic(fmt.Sprintf("tensor: unknown compute mode %d", mode))
	}
}

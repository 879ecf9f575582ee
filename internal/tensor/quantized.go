package tensor

import "fmt"

// Quantized accessor family. These parallel the raw accessors but pass
// every element through the tensor's quantizer: reads expand the stored
// representation into the caller's buffer, writes compress the caller's
// values into the stored representation. The entry point (host or device)
// follows where the buffer's head currently lives; the tensor's own buffer
// is never synchronized across locations by these accessors. A nil
// quantizer degrades every form to a straight copy.

// QuantizedValues expands the values buffer into dst. len(dst) selects the
// element count and must not exceed Count.
func (t *Tensor[T]) QuantizedValues(dst []T) {
	t.requireValues()
	t.quantizedRead(t.values, dst)
}

// QuantizedGradients expands the gradients buffer into dst.
func (t *Tensor[T]) QuantizedGradients(dst []T) {
	t.requireGradients()
	t.quantizedRead(t.grads, dst)
}

// SetQuantizedValues compresses src into the values buffer. len(src)
// selects the element count and must not exceed Count.
func (t *Tensor[T]) SetQuantizedValues(src []T) {
	t.requireValues()
	t.quantizedWrite(t.values, src)
}

// SetQuantizedGradients compresses src into the gradients buffer.
func (t *Tensor[T]) SetQuantizedGradients(src []T) {
	t.requireGradients()
	t.quantizedWrite(t.grads, src)
}

func (t *Tensor[T]) checkQuantCount(n int) {
	if n > t.count {
		panic(fmt.Sprintf("tensor: quantized access of %d elements on a tensor of %d", n, t.count))
	}
}

func (t *Tensor[T]) quantizedRead(b *SyncedBuffer, dst []T) {
	n := len(dst)
	t.checkQuantCount(n)
	if n == 0 {
		return
	}
	dt := DataTypeOf[T]()
	es := dt.Size()

	if t.quant == nil {
		if b.State() == HeadAtDevice {
			t.ctx.Download(asBytes(dst), b.DeviceData())
		} else {
			copy(asBytes(dst), b.HostBytes()[:n*es])
		}
		return
	}

	if b.State() == HeadAtDevice {
		scratch := t.ctx.Alloc(n * es)
		defer scratch.Release()
		t.quant.ExpandDevice(t.ctx, dt, n, b.DeviceData(), scratch)
		t.ctx.Download(asBytes(dst), scratch)
		return
	}
	t.quant.ExpandHost(dt, n, b.HostBytes(), asBytes(dst))
}

func (t *Tensor[T]) quantizedWrite(b *SyncedBuffer, src []T) {
	n := len(src)
	t.checkQuantCount(n)
	if n == 0 {
		return
	}
	dt := DataTypeOf[T]()
	es := dt.Size()

	if t.quant == nil {
		if b.State() == HeadAtDevice {
			t.ctx.Upload(b.MutableDeviceData(), asBytes(src))
		} else {
			copy(b.MutableHostBytes()[:n*es], asBytes(src))
		}
		return
	}

	if b.State() == HeadAtDevice {
		scratch := t.ctx.Alloc(n * es)
		defer scratch.Release()
		t.ctx.Upload(scratch, asBytes(src))
		t.quant.CompressDevice(t.ctx, dt, n, scratch, b.MutableDeviceData())
		return
	}
	t.quant.CompressHost(dt, n, asBytes(src), b.MutableHostBytes())
}

// QuantizedAsumValues reduces the values buffer and expands the single
// result into dst[0].
func (t *Tensor[T]) QuantizedAsumValues(dst []T) {
	t.expandScalar(t.AsumValues(), dst)
}

// QuantizedAsumGradients reduces the gradients buffer and expands the
// single result into dst[0].
func (t *Tensor[T]) QuantizedAsumGradients(dst []T) {
	t.expandScalar(t.AsumGradients(), dst)
}

// QuantizedSumSqValues reduces the values buffer and expands the single
// result into dst[0].
func (t *Tensor[T]) QuantizedSumSqValues(dst []T) {
	t.expandScalar(t.SumSqValues(), dst)
}

// QuantizedSumSqGradients reduces the gradients buffer and expands the
// single result into dst[0].
func (t *Tensor[T]) QuantizedSumSqGradients(dst []T) {
	t.expandScalar(t.SumSqGradients(), dst)
}

// expandScalar passes one reduction result, held in the stored element
// format, through the host-side expand entry point into dst.
func (t *Tensor[T]) expandScalar(v float64, dst []T) {
	if len(dst) == 0 {
		panic("tensor: quantized reduction requires a destination element")
	}
	scratch := []T{floatToElem[T](v)}
	if t.quant == nil {
		dst[0] = scratch[0]
		return
	}
	t.quant.ExpandHost(DataTypeOf[T](), 1, asBytes(scratch), asBytes(dst[:1]))
}

// floatToElem converts a float64 to a float element type. The reductions
// feeding it are float-only, so the integer branches are unreachable.
func floatToElem[T DType](v float64) T {
	var zero T
	switch any(zero).(type) {
	case float32:
		return any(float32(v)).(T)
	case float64:
		return any(v).(T)
	default:
		panic(fmt.Sprintf("tensor: no float conversion for %s elements", DataTypeOf[T]()))
	}
}

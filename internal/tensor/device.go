package tensor

// Residency identifies which side of a dual-location buffer currently holds
// valid content.
type Residency int

// Residency states. A buffer starts Uninitialized; the first host or device
// access moves the head to that side, and crossing to the other side leaves
// both copies valid (Synced) until the next mutation.
const (
	Uninitialized Residency = iota
	HeadAtHost
	HeadAtDevice
	Synced
)

// String returns a human-readable state name.
func (r Residency) String() string {
	switch r {
	case Uninitialized:
		return "uninitialized"
	case HeadAtHost:
		return "host"
	case HeadAtDevice:
		return "device"
	case Synced:
		return "synced"
	default:
		return "unknown"
	}
}

// Mode selects the compute location for operations that take it explicitly
// instead of dispatching on buffer residency.
type Mode int

// Compute modes.
const (
	ModeHost Mode = iota
	ModeDevice
)

// Buffer is a handle to a device-resident allocation.
type Buffer interface {
	// Size returns the allocation size in bytes.
	Size() int
	// Release frees the allocation. The handle must not be used afterwards.
	Release()
}

// Device abstracts an accelerator context: allocation, transfers between
// host and device memory, and the numeric kernels the tensor dispatch layer
// delegates to. Numeric kernels are defined for float element types only and
// panic for the rest.
//
// Transfers are synchronous: Upload and Download return only after the copy
// has completed.
type Device interface {
	// Name identifies the device, e.g. "cpu" or "webgpu".
	Name() string

	// Alloc returns a zeroed device allocation of the given byte size.
	Alloc(bytes int) Buffer
	// Upload copies len(src) bytes from host memory into dst.
	Upload(dst Buffer, src []byte)
	// Download copies len(dst) bytes from src into host memory.
	Download(dst []byte, src Buffer)
	// Copy copies bytes from src to dst within device memory.
	Copy(dst, src Buffer, bytes int)

	// Fill sets the first n elements of x to value.
	Fill(dt DataType, n int, value float64, x Buffer)
	// Axpy computes y[i] += alpha * x[i] over the first n elements.
	Axpy(dt DataType, n int, alpha float64, x, y Buffer)
	// Scal scales the first n elements of x by alpha in place.
	Scal(dt DataType, n int, alpha float64, x Buffer)
	// Asum returns the sum of absolute values of the first n elements of x.
	Asum(dt DataType, n int, x Buffer) float64
	// Dot returns the inner product of the first n elements of x and y.
	Dot(dt DataType, n int, x, y Buffer) float64
}

package tensor

// Quantizer converts between a tensor's stored numeric representation and
// the external compute representation, for example a reduced-precision
// runtime format. Compress is external-to-stored, expand is
// stored-to-external; both are parameterized by element count. Host and
// device entry points exist so a transform can run next to the data.
//
// A quantizer is a late-bound strategy held by reference from the tensor;
// it is never a subtype of the tensor.
type Quantizer interface {
	// CompressHost writes n externally-formatted elements from src into the
	// stored representation in dst, both in host memory.
	CompressHost(dt DataType, n int, src, dst []byte)
	// ExpandHost writes n stored elements from src into the external
	// representation in dst, both in host memory.
	ExpandHost(dt DataType, n int, src, dst []byte)
	// CompressDevice is CompressHost over device-resident buffers.
	CompressDevice(ctx Device, dt DataType, n int, src, dst Buffer)
	// ExpandDevice is ExpandHost over device-resident buffers.
	ExpandDevice(ctx Device, dt DataType, n int, src, dst Buffer)
}

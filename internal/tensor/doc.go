// Package tensor implements the core N-dimensional tensor type: a
// shape-described pair of element buffers (values and gradients) whose
// content migrates lazily between host memory and an accelerator device.
//
// The residency of each buffer is tracked explicitly (see Residency);
// accessors either assert the current location or trigger a synchronizing
// copy, so callers on either side always observe the latest content without
// redundant transfers. Buffers are reference counted and can be shared
// between tensors, which is how parameter tying and in-place layer chains
// avoid copies.
//
// Reshape never shrinks an allocation: growing past the current capacity
// replaces the buffers, anything else just reinterprets them under the new
// shape. Numeric reductions and the gradient update step dispatch on buffer
// residency, running on the device only when the data already lives there.
package tensor

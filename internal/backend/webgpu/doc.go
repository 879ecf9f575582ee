// Package webgpu implements the tensor device interface on a GPU through
// WebGPU, using go-webgpu (github.com/go-webgpu/webgpu) for zero-CGO
// bindings. The native wgpu runtime ships for Windows only; on other
// platforms New returns an error and IsAvailable reports false.
//
// Kernels are WGSL compute shaders over f32 storage buffers, dispatched in
// 256-thread workgroups. Reductions produce per-workgroup partial sums that
// the host accumulates in float64.
package webgpu

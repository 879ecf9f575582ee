//go:build windows

package webgpu

// WGSL compute shaders for the device kernels. String constants instead of
// embed for simplicity; float32 only, which is all WGSL storage buffers
// support without extensions.

// workgroupSize is the number of threads per workgroup.
const workgroupSize = 256

// fillShader sets every element to a constant: x[i] = value.
const fillShader = `
@group(0) @binding(0) var<storage, read_write> x: array<f32>;

struct Params {
    size: u32,
    value: f32,
}
@group(0) @binding(1) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
        x[idx] = params.value;
    }
}
`

// scalShader scales in place: x[i] = alpha * x[i].
const scalShader = `
@group(0) @binding(0) var<storage, read_write> x: array<f32>;

struct Params {
    size: u32,
    alpha: f32,
}
@group(0) @binding(1) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
        x[idx] = params.alpha * x[idx];
    }
}
`

// axpyShader accumulates: y[i] = alpha * x[i] + y[i].
const axpyShader = `
@group(0) @binding(0) var<storage, read> x: array<f32>;
@group(0) @binding(1) var<storage, read_write> y: array<f32>;

struct Params {
    size: u32,
    alpha: f32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
        y[idx] = params.alpha * x[idx] + y[idx];
    }
}
`

// asumShader computes per-workgroup partial sums of |x[i]| by shared-memory
// tree reduction; partial[w] holds workgroup w's sum and the host adds the
// partials.
const asumShader = `
@group(0) @binding(0) var<storage, read> x: array<f32>;
@group(0) @binding(1) var<storage, read_write> partial: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

var<workgroup> scratch: array<f32, 256>;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>,
        @builtin(local_invocation_id) local_id: vec3<u32>,
        @builtin(workgroup_id) group_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
        scratch[local_id.x] = abs(x[idx]);
    } else {
        scratch[local_id.x] = 0.0;
    }
    workgroupBarrier();

    var stride = 128u;
    while (stride > 0u) {
        if (local_id.x < stride) {
            scratch[local_id.x] = scratch[local_id.x] + scratch[local_id.x + stride];
        }
        workgroupBarrier();
        stride = stride / 2u;
    }

    if (local_id.x == 0u) {
        partial[group_id.x] = scratch[0];
    }
}
`

// dotShader computes per-workgroup partial sums of x[i] * y[i], same
// reduction scheme as asumShader.
const dotShader = `
@group(0) @binding(0) var<storage, read> x: array<f32>;
@group(0) @binding(1) var<storage, read> y: array<f32>;
@group(0) @binding(2) var<storage, read_write> partial: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

var<workgroup> scratch: array<f32, 256>;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>,
        @builtin(local_invocation_id) local_id: vec3<u32>,
        @builtin(workgroup_id) group_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
        scratch[local_id.x] = x[idx] * y[idx];
    } else {
        scratch[local_id.x] = 0.0;
    }
    workgroupBarrier();

    var stride = 128u;
    while (stride > 0u) {
        if (local_id.x < stride) {
            scratch[local_id.x] = scratch[local_id.x] + scratch[local_id.x + stride];
        }
        workgroupBarrier();
        stride = stride / 2u;
    }

    if (local_id.x == 0u) {
        partial[group_id.x] = scratch[0];
    }
}
`

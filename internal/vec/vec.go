// Package vec implements the host-side numeric kernels used by tensor
// operations: scaled accumulation, dot products, reductions, scaling and
// fills over contiguous float slices.
//
// Kernels above a size threshold are chunked across goroutines via the
// parallel package; below it they run sequentially so small reductions
// stay exact and allocation-free.
package vec

import (
	"math"

	"github.com/latte-ml/latte/internal/parallel"
)

// Float constrains kernels to real-valued element types.
type Float interface {
	~float32 | ~float64
}

// parallelThreshold is the element count above which kernels go parallel.
const parallelThreshold = 1 << 15

var cfg = parallel.DefaultConfig()

// Axpy computes y[i] += alpha * x[i] for all i.
// x and y must have the same length.
func Axpy[F Float](alpha F, x, y []F) {
	if len(x) != len(y) {
		panic("vec: axpy length mismatch")
	}
	if len(x) < parallelThreshold {
		for i := range x {
			y[i] += alpha * x[i]
		}
		return
	}
	parallel.ForChunks(len(x), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			y[i] += alpha * x[i]
		}
	}, cfg)
}

// Dot returns the inner product of x and y as float64.
// x and y must have the same length.
func Dot[F Float](x, y []F) float64 {
	if len(x) != len(y) {
		panic("vec: dot length mismatch")
	}
	if len(x) < parallelThreshold {
		var s float64
		for i := range x {
			s += float64(x[i]) * float64(y[i])
		}
		return s
	}
	return parallel.ReduceFloat64(len(x), func(lo, hi int) float64 {
		var s float64
		for i := lo; i < hi; i++ {
			s += float64(x[i]) * float64(y[i])
		}
		return s
	}, cfg)
}

// SumSq returns the sum of squares of x as float64.
func SumSq[F Float](x []F) float64 {
	return Dot(x, x)
}

// Asum returns the sum of absolute values of x as float64.
func Asum[F Float](x []F) float64 {
	if len(x) < parallelThreshold {
		var s float64
		for i := range x {
			s += math.Abs(float64(x[i]))
		}
		return s
	}
	return parallel.ReduceFloat64(len(x), func(lo, hi int) float64 {
		var s float64
		for i := lo; i < hi; i++ {
			s += math.Abs(float64(x[i]))
		}
		return s
	}, cfg)
}

// Scal scales x in place by alpha.
func Scal[F Float](alpha F, x []F) {
	if len(x) < parallelThreshold {
		for i := range x {
			x[i] *= alpha
		}
		return
	}
	parallel.ForChunks(len(x), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			x[i] *= alpha
		}
	}, cfg)
}

// Fill sets every element of x to v.
func Fill[F Float](x []F, v F) {
	if len(x) < parallelThreshold {
		for i := range x {
			x[i] = v
		}
		return
	}
	parallel.ForChunks(len(x), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			x[i] = v
		}
	}, cfg)
}

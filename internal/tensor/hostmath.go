package tensor

import (
	"fmt"

	"github.com/latte-ml/latte/internal/vec"
)

// Host-side kernel dispatch by runtime element type. Callers guard with
// IsFloat before reaching these; the default branches are a backstop.

func hostAxpy(dt DataType, n int, alpha float64, x, y []byte) {
	switch dt {
	case Float32:
		vec.Axpy(float32(alpha), bytesAs[float32](x, n), bytesAs[float32](y, n))
	case Float64:
		vec.Axpy(alpha, bytesAs[float64](x, n), bytesAs[float64](y, n))
	default:
		panic(fmt.Sprintf("tensor: axpy is not implemented for %s elements", dt))
	}
}

func hostDot(dt DataType, n int, x, y []byte) float64 {
	switch dt {
	case Float32:
		return vec.Dot(bytesAs[float32](x, n), bytesAs[float32](y, n))
	case Float64:
		return vec.Dot(bytesAs[float64](x, n), bytesAs[float64](y, n))
	default:
		panic(fmt.Sprintf("tensor: dot is not implemented for %s elements", dt))
	}
}

func hostAsum(dt DataType, n int, x []byte) float64 {
	switch dt {
	case Float32:
		return vec.Asum(bytesAs[float32](x, n))
	case Float64:
		return vec.Asum(bytesAs[float64](x, n))
	default:
		panic(fmt.Sprintf("tensor: asum is not implemented for %s elements", dt))
	}
}

func hostScal(dt DataType, n int, alpha float64, x []byte) {
	switch dt {
	case Float32:
		vec.Scal(float32(alpha), bytesAs[float32](x, n))
	case Float64:
		vec.Scal(alpha, bytesAs[float64](x, n))
	default:
		panic(fmt.Sprintf("tensor: scal is not implemented for %s elements", dt))
	}
}

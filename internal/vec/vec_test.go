package vec

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAxpy(t *testing.T) {
	x := []float32{1, 2, 3}
	y := []float32{5, 5, 5}

	Axpy(float32(-1), x, y)

	assert.Equal(t, []float32{4, 3, 2}, y)
}

func TestAxpy_Float64(t *testing.T) {
	x := []float64{0.5, 1.5}
	y := []float64{1, 1}

	Axpy(2.0, x, y)

	assert.InDelta(t, 2.0, y[0], 1e-12)
	assert.InDelta(t, 4.0, y[1], 1e-12)
}

func TestAxpy_LengthMismatch(t *testing.T) {
	assert.Panics(t, func() {
		Axpy(float32(1), []float32{1}, []float32{1, 2})
	})
}

func TestDot(t *testing.T) {
	x := []float32{3, 4}
	assert.InDelta(t, 25.0, Dot(x, x), 1e-6)
}

func TestSumSq(t *testing.T) {
	assert.InDelta(t, 25.0, SumSq([]float64{3, 4}), 1e-12)
	assert.Zero(t, SumSq([]float32{}))
}

func TestAsum(t *testing.T) {
	assert.InDelta(t, 7.0, Asum([]float32{-3, 4}), 1e-6)
	assert.InDelta(t, 6.0, Asum([]float64{-1, 2, -3}), 1e-12)
}

func TestScal(t *testing.T) {
	x := []float32{1, 2, 3}
	Scal(float32(2), x)
	assert.Equal(t, []float32{2, 4, 6}, x)
}

func TestFill(t *testing.T) {
	x := make([]float64, 5)
	Fill(x, 1.5)
	for _, v := range x {
		assert.Equal(t, 1.5, v)
	}
}

// TestParallelPath verifies the chunked path agrees with a naive loop on
// slices above the threshold.
func TestParallelPath(t *testing.T) {
	n := parallelThreshold * 2
	rng := rand.New(rand.NewSource(42))

	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = rng.Float64()*2 - 1
		y[i] = rng.Float64()*2 - 1
	}

	var wantDot, wantAsum float64
	for i := range x {
		wantDot += x[i] * y[i]
		wantAsum += math.Abs(x[i])
	}

	require.InDelta(t, wantDot, Dot(x, y), 1e-9)
	require.InDelta(t, wantAsum, Asum(x), 1e-9)

	wantY := make([]float64, n)
	copy(wantY, y)
	for i := range wantY {
		wantY[i] += 0.5 * x[i]
	}
	Axpy(0.5, x, y)
	for i := 0; i < n; i += n / 16 {
		assert.InDelta(t, wantY[i], y[i], 1e-12)
	}

	Scal(0.0, y)
	assert.Zero(t, Asum(y))

	Fill(y, 2.0)
	assert.InDelta(t, float64(2*n), Asum(y), 1e-9)
}

func BenchmarkDot(b *testing.B) {
	x := make([]float32, 1<<20)
	for i := range x {
		x[i] = float32(i % 7)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Dot(x, x)
	}
}

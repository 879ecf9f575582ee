// Package parallel provides chunked goroutine execution for large vector kernels.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 4096,
	}
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || n < cfg.MinChunkSize {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// ForChunks executes f(lo, hi) over disjoint sub-ranges covering [0, n).
// Handing whole chunks to f avoids per-index closure overhead in tight loops.
func ForChunks(n int, f func(lo, hi int), cfg Config) {
	if !cfg.Enabled || n < cfg.MinChunkSize {
		f(0, n)
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			f(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ReduceFloat64 sums f(lo, hi) over disjoint sub-ranges covering [0, n).
// Each chunk produces a partial sum; partials are combined in chunk order.
func ReduceFloat64(n int, f func(lo, hi int) float64, cfg Config) float64 {
	if !cfg.Enabled || n < cfg.MinChunkSize {
		return f(0, n)
	}

	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)
	numChunks := (n + chunkSize - 1) / chunkSize
	partials := make([]float64, numChunks)

	var wg sync.WaitGroup
	for c := 0; c < numChunks; c++ {
		lo := c * chunkSize
		hi := min(lo+chunkSize, n)
		wg.Add(1)
		go func(c, lo, hi int) {
			defer wg.Done()
			partials[c] = f(lo, hi)
		}(c, lo, hi)
	}
	wg.Wait()

	var total float64
	for _, p := range partials {
		total += p
	}
	return total
}

package parallel

import (
	"sync/atomic"
	"testing"
)

func TestFor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinChunkSize = 64

	var counter int64
	n := 1000

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestFor_Sequential(t *testing.T) {
	cfg := Config{Enabled: false}

	var counter int64
	For(100, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != 100 {
		t.Errorf("Expected 100, got %d", counter)
	}
}

func TestFor_SmallChunk(t *testing.T) {
	// Small work units fall back to sequential.
	cfg := DefaultConfig()

	var counter int64
	n := cfg.MinChunkSize - 1

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestForChunks_CoversRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinChunkSize = 16

	n := 1000
	seen := make([]int32, n)

	ForChunks(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			atomic.AddInt32(&seen[i], 1)
		}
	}, cfg)

	for i, v := range seen {
		if v != 1 {
			t.Fatalf("index %d visited %d times", i, v)
		}
	}
}

func TestForChunks_Empty(t *testing.T) {
	called := 0
	ForChunks(0, func(lo, hi int) {
		called++
		if lo != 0 || hi != 0 {
			t.Errorf("expected empty range, got [%d, %d)", lo, hi)
		}
	}, DefaultConfig())

	if called != 1 {
		t.Errorf("expected a single sequential call, got %d", called)
	}
}

func TestReduceFloat64(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinChunkSize = 8

	n := 10000
	got := ReduceFloat64(n, func(lo, hi int) float64 {
		var s float64
		for i := lo; i < hi; i++ {
			s += float64(i)
		}
		return s
	}, cfg)

	want := float64(n*(n-1)) / 2
	if got != want {
		t.Errorf("ReduceFloat64 = %v, want %v", got, want)
	}
}

func TestReduceFloat64_Sequential(t *testing.T) {
	cfg := Config{Enabled: false}

	got := ReduceFloat64(100, func(lo, hi int) float64 {
		return float64(hi - lo)
	}, cfg)

	if got != 100 {
		t.Errorf("ReduceFloat64 = %v, want 100", got)
	}
}

func BenchmarkReduceFloat64(b *testing.B) {
	cfg := DefaultConfig()
	n := 1 << 20

	sum := func(lo, hi int) float64 {
		var s float64
		for i := lo; i < hi; i++ {
			s += float64(i)
		}
		return s
	}

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = ReduceFloat64(n, sum, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		cfgSeq := cfg
		cfgSeq.Enabled = false
		for i := 0; i < b.N; i++ {
			_ = ReduceFloat64(n, sum, cfgSeq)
		}
	})
}

// Package parallel provides chunked parallel loops for host-side gather and scatter.
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/born-ml/numtab/internal/mathutil"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Maximum number of goroutines running at once.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 1024,
	}
}

// Sequential returns a Config that always runs on the calling goroutine.
func Sequential() Config {
	return Config{}
}

func (c Config) sequential(n int) bool {
	return !c.Enabled || c.NumWorkers <= 1 || n < 2*max(c.MinChunkSize, 1)
}

// chunkSize splits n items evenly across workers, never below MinChunkSize.
func (c Config) chunkSize(n int) int {
	size := max((n+c.NumWorkers-1)/c.NumWorkers, c.MinChunkSize, 1)
	if size < n {
		// Round to a multiple of the minimum so chunk boundaries stay regular.
		size = mathutil.UpMultiple(size, max(c.MinChunkSize, 1))
	}
	return size
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	ForChunks(n, func(begin, end int) {
		for i := begin; i < end; i++ {
			f(i)
		}
	}, cfg)
}

// ForChunks splits [0, n) into contiguous chunks and calls f(begin, end) for each.
// It returns after every chunk has been processed.
func ForChunks(n int, f func(begin, end int), cfg Config) {
	if n <= 0 {
		return
	}
	if cfg.sequential(n) {
		f(0, n)
		return
	}

	var g errgroup.Group
	g.SetLimit(cfg.NumWorkers)

	size := cfg.chunkSize(n)
	for start := 0; start < n; start += size {
		begin, end := start, min(start+size, n)
		g.Go(func() error {
			f(begin, end)
			return nil
		})
	}
	_ = g.Wait()
}

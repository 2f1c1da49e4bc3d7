// Package parallel splits row-indexed work into contiguous ranges and runs
// them on goroutines, either spawned per call or taken from a persistent pool.
package parallel

import (
	"runtime"
	"sync"

	"github.com/klauspost/cpuid/v2"
)

// Range is a half-open interval [Start, End) of row indices.
type Range struct {
	Start, End int
}

// Len returns the number of rows covered by r.
func (r Range) Len() int {
	return r.End - r.Start
}

// Partition splits n rows into workers contiguous ranges of n/workers rows
// each. The last range absorbs the remainder, so every row in [0, n) belongs
// to exactly one range. When workers exceeds n the leading ranges are empty.
func Partition(n, workers int) []Range {
	if workers <= 0 {
		workers = 1
	}
	if n < 0 {
		n = 0
	}

	size := n / workers
	ranges := make([]Range, workers)
	for w := 0; w < workers; w++ {
		ranges[w] = Range{Start: w * size, End: (w + 1) * size}
	}
	ranges[workers-1].End = n

	return ranges
}

// Runner executes fn once for every range and returns only after all calls
// have finished. Implementations may run the calls concurrently, so fn must
// only write to state owned by its own range.
type Runner interface {
	Run(ranges []Range, fn func(Range))
}

// Spawn starts a fresh goroutine for every range on every call.
type Spawn struct{}

// Run implements Runner.
func (Spawn) Run(ranges []Range, fn func(Range)) {
	var wg sync.WaitGroup
	wg.Add(len(ranges))

	for _, r := range ranges {
		go func(r Range) {
			defer wg.Done()
			fn(r)
		}(r)
	}

	wg.Wait()
}

// DefaultWorkers returns the number of physical cores, or the logical CPU
// count when the core count cannot be detected.
func DefaultWorkers() int {
	if n := cpuid.CPU.PhysicalCores; n > 0 {
		return n
	}
	return runtime.NumCPU()
}

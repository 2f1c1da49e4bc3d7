package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionCoversEveryRowOnce(t *testing.T) {
	for n := 0; n <= 17; n++ {
		for workers := 1; workers <= n+2; workers++ {
			ranges := Partition(n, workers)
			require.Len(t, ranges, workers)

			seen := make([]int, n)
			next := 0
			for _, r := range ranges {
				require.Equal(t, next, r.Start, "n=%d workers=%d: ranges must be contiguous", n, workers)
				require.GreaterOrEqual(t, r.Len(), 0)
				for i := r.Start; i < r.End; i++ {
					seen[i]++
				}
				next = r.End
			}
			require.Equal(t, n, next)
			for i, c := range seen {
				require.Equal(t, 1, c, "n=%d workers=%d row=%d", n, workers, i)
			}
		}
	}
}

func TestPartitionLastRangeAbsorbsRemainder(t *testing.T) {
	ranges := Partition(10, 3)
	assert.Equal(t, []Range{{0, 3}, {3, 6}, {6, 10}}, ranges)
}

func TestPartitionMoreWorkersThanRows(t *testing.T) {
	ranges := Partition(2, 4)
	assert.Equal(t, []Range{{0, 0}, {0, 0}, {0, 0}, {0, 2}}, ranges)
}

func TestPartitionNonPositiveWorkers(t *testing.T) {
	assert.Equal(t, []Range{{0, 5}}, Partition(5, 0))
}

func testRunner(t *testing.T, r Runner) {
	t.Helper()

	out := make([]int, 100)
	var calls int64
	r.Run(Partition(len(out), 7), func(rg Range) {
		atomic.AddInt64(&calls, 1)
		for i := rg.Start; i < rg.End; i++ {
			out[i] = i * 2
		}
	})

	assert.EqualValues(t, 7, calls)
	for i, v := range out {
		require.Equal(t, i*2, v)
	}
}

func TestSpawn(t *testing.T) {
	testRunner(t, Spawn{})
}

func TestPool(t *testing.T) {
	p := NewPool(3)
	defer p.Close()

	for i := 0; i < 5; i++ {
		testRunner(t, p)
	}
}

func TestPoolEmptyRanges(t *testing.T) {
	p := NewPool(2)
	defer p.Close()

	var calls int64
	p.Run(Partition(1, 4), func(Range) { atomic.AddInt64(&calls, 1) })
	assert.EqualValues(t, 4, calls)

	p.Run(nil, func(Range) { t.Fatal("no ranges, no calls") })
}

func TestPoolCloseIsIdempotent(t *testing.T) {
	p := NewPool(0)
	p.Close()
	p.Close()
}

func TestDefaultWorkers(t *testing.T) {
	assert.Greater(t, DefaultWorkers(), 0)
}

func BenchmarkRunners(b *testing.B) {
	out := make([]float64, 4096)
	fn := func(rg Range) {
		for i := rg.Start; i < rg.End; i++ {
			out[i] = float64(i) * 0.5
		}
	}
	ranges := Partition(len(out), 8)

	b.Run("spawn", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			Spawn{}.Run(ranges, fn)
		}
	})

	b.Run("pool", func(b *testing.B) {
		p := NewPool(8)
		defer p.Close()
		for i := 0; i < b.N; i++ {
			p.Run(ranges, fn)
		}
	})
}

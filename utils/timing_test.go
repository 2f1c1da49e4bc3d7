package utils

import (
	"bytes"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationUS(t *testing.T) {
	d := 1234*time.Microsecond + 567*time.Nanosecond
	got := DurationUS(d)
	if math.Abs(got-1234.567) > 0.001 {
		t.Fatalf("want 1234.567µs, got %.3f", got)
	}
}

func TestRegistryCountsAndAccumulates(t *testing.T) {
	r := NewRegistry()
	require.Empty(t, r.Report())

	var prev time.Duration
	for n := 1; n <= 5; n++ {
		r.Record("tensor.MulVec", time.Duration(n)*time.Millisecond)

		s := r.Report()["tensor.MulVec"]
		assert.Equal(t, n, s.Count)
		assert.GreaterOrEqual(t, s.Total, prev)
		prev = s.Total
	}

	r.Record("tensor.Transpose", 0)
	report := r.Report()
	assert.Len(t, report, 2)
	assert.Equal(t, 15*time.Millisecond, report["tensor.MulVec"].Total)
	assert.Equal(t, 3*time.Millisecond, report["tensor.MulVec"].Average())
	assert.Equal(t, CallStat{Count: 1}, report["tensor.Transpose"])
}

func TestRegistryZeroValue(t *testing.T) {
	var r Registry
	r.Record("x", time.Second)
	assert.Equal(t, 1, r.Report()["x"].Count)
}

func TestRegistryReportIsSnapshot(t *testing.T) {
	r := NewRegistry()
	r.Record("a", time.Second)

	snap := r.Report()
	snap["a"] = CallStat{Count: 100}
	r.Record("a", time.Second)

	assert.Equal(t, 2, r.Report()["a"].Count)
}

func TestRegistryConcurrent(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				r.Record("hot", time.Microsecond)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, CallStat{Count: 800, Total: 800 * time.Microsecond}, r.Report()["hot"])
}

func TestTrack(t *testing.T) {
	r := NewRegistry()
	func() {
		defer Track(r, "work", time.Now())
	}()
	s := r.Report()["work"]
	assert.Equal(t, 1, s.Count)
	assert.GreaterOrEqual(t, s.Total, time.Duration(0))

	// nil recorder must not panic
	Track(nil, "work", time.Now())
}

func TestAverageOfEmptyStat(t *testing.T) {
	assert.Zero(t, CallStat{}.Average())
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	oldOut, oldVerbose := Output, Verbose
	t.Cleanup(func() { Output, Verbose = oldOut, oldVerbose })

	Output = &buf
	Verbose = true
	PrintReport(map[string]CallStat{
		"b": {Count: 2, Total: 4 * time.Microsecond},
		"a": {Count: 1, Total: time.Microsecond},
	})

	out := buf.String()
	assert.Contains(t, out, "PERFORMANCE")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("\na ")), bytes.Index(buf.Bytes(), []byte("\nb ")))

	buf.Reset()
	Verbose = false
	PrintReport(map[string]CallStat{"a": {Count: 1}})
	Logf("hidden %d", 1)
	assert.Empty(t, buf.String())
}

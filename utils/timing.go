package utils

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"text/tabwriter"
	"time"
)

// Verbose controls whether progress and timing statistics are printed.
// Set to false to suppress output.
var Verbose = true

// Output is the writer where progress and timing statistics are printed.
// Defaults to os.Stdout.
var Output io.Writer = os.Stdout

// Logf prints a formatted line to Output when Verbose is set.
func Logf(format string, args ...interface{}) {
	if !Verbose {
		return
	}
	fmt.Fprintf(Output, format+"\n", args...)
}

// Recorder receives the elapsed time of one instrumented call.
type Recorder interface {
	Record(name string, elapsed time.Duration)
}

// CallStat is the accumulated timing of one instrumented function.
type CallStat struct {
	Count int
	Total time.Duration
}

// Average returns the mean duration per call.
func (s CallStat) Average() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// Registry counts calls and sums their durations per function name.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.Mutex
	stats map[string]CallStat
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{stats: make(map[string]CallStat)}
}

// Record implements Recorder.
func (r *Registry) Record(name string, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stats == nil {
		r.stats = make(map[string]CallStat)
	}
	s := r.stats[name]
	s.Count++
	s.Total += elapsed
	r.stats[name] = s
}

// Report returns a snapshot of all entries.
func (r *Registry) Report() map[string]CallStat {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]CallStat, len(r.stats))
	for name, s := range r.stats {
		out[name] = s
	}
	return out
}

// Track records the time elapsed since start under name. It is meant to be
// deferred at the top of an instrumented function:
//
//	defer utils.Track(rec, "tensor.MulVec", time.Now())
//
// A nil Recorder makes Track a no-op.
func Track(r Recorder, name string, start time.Time) {
	if r == nil {
		return
	}
	r.Record(name, time.Since(start))
}

// PrintReport prints the entries of a report sorted by name.
// Respects the Verbose flag - does nothing if Verbose is false.
func PrintReport(report map[string]CallStat) {
	if !Verbose {
		return
	}

	names := make([]string, 0, len(report))
	for name := range report {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(Output, "\n=== PERFORMANCE ===")
	w := tabwriter.NewWriter(Output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "function\tcalls\ttotal (µs)\tavg (µs)")
	for _, name := range names {
		s := report[name]
		fmt.Fprintf(w, "%s\t%d\t%.1f\t%.3f\n", name, s.Count, DurationUS(s.Total), DurationUS(s.Average()))
	}
	w.Flush()
}

// DurationUS converts any time.Duration to micro-seconds as float64
func DurationUS(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1_000.0
}

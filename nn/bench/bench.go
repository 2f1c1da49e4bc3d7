// Package bench times training and inference of a network across worker
// counts so the serial and threaded kernels can be compared.
package bench

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"digitnet/nn"
	"digitnet/parallel"
	"digitnet/utils"
)

// Case is one benchmark configuration.
type Case struct {
	Layers  []int
	Workers int
	Pool    bool
	Iters   int
	Warmup  int
	Seed    uint64
}

// Point holds the averaged timings of one Case. Stats includes the warmup
// calls.
type Point struct {
	Arch    string
	Workers int
	Pool    bool
	Train   time.Duration
	Query   time.Duration
	Stats   map[string]utils.CallStat
}

// RunPoint builds a network for c, feeds it random inputs and returns the
// average Train and Query time over c.Iters calls after c.Warmup untimed ones.
func RunPoint(c Case) (Point, error) {
	if c.Iters <= 0 {
		return Point{}, errors.Errorf("iters must be positive, got %d", c.Iters)
	}

	reg := utils.NewRegistry()
	cfg := nn.Config{
		Layers:       c.Layers,
		LearningRate: 0.1,
		Workers:      c.Workers,
		Initializer:  &nn.Uniform{Min: -1, Max: 1, Seed: c.Seed + 1},
		Recorder:     reg,
	}
	if c.Pool && c.Workers > 0 {
		pool := parallel.NewPool(c.Workers)
		defer pool.Close()
		cfg.Runner = pool
	}
	net, err := nn.New(cfg)
	if err != nil {
		return Point{}, errors.Wrap(err, "building network")
	}

	input, target := synthetic(c.Layers, c.Seed)

	for i := 0; i < c.Warmup; i++ {
		if err := net.Train(input, target); err != nil {
			return Point{}, err
		}
	}

	var train, query time.Duration
	for i := 0; i < c.Iters; i++ {
		start := time.Now()
		if err := net.Train(input, target); err != nil {
			return Point{}, err
		}
		train += time.Since(start)

		start = time.Now()
		if _, err := net.Query(input); err != nil {
			return Point{}, err
		}
		query += time.Since(start)
	}

	return Point{
		Arch:    ArchName(c.Layers),
		Workers: c.Workers,
		Pool:    c.Pool,
		Train:   train / time.Duration(c.Iters),
		Query:   query / time.Duration(c.Iters),
		Stats:   reg.Report(),
	}, nil
}

func synthetic(layers []int, seed uint64) (input, target []float64) {
	dist := distuv.Uniform{Min: 0.01, Max: 1, Src: rand.NewSource(seed)}
	input = make([]float64, layers[0])
	for i := range input {
		input[i] = dist.Rand()
	}
	target = make([]float64, layers[len(layers)-1])
	for i := range target {
		target[i] = 0.01
	}
	target[0] = 0.99
	return input, target
}

// ArchName renders layer sizes as "784-100-10".
func ArchName(layers []int) string {
	parts := make([]string, len(layers))
	for i, n := range layers {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, "-")
}

// ParseInts parses a comma-separated list of integers.
func ParseInts(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid int %q", p)
		}
		out = append(out, v)
	}
	return out, nil
}

// Header is the first row written by WriteCSV.
var Header = []string{"arch", "workers", "pool", "train_us", "query_us"}

// WriteCSV writes one row per point.
func WriteCSV(w io.Writer, points []Point) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, p := range points {
		row := []string{
			p.Arch,
			strconv.Itoa(p.Workers),
			strconv.FormatBool(p.Pool),
			fmt.Sprintf("%.3f", utils.DurationUS(p.Train)),
			fmt.Sprintf("%.3f", utils.DurationUS(p.Query)),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes points to a new file at path and closes it.
func SaveCSV(path string, points []Point) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating output CSV")
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "closing output CSV")
		}
	}()

	return errors.Wrap(WriteCSV(f, points), "writing output CSV")
}

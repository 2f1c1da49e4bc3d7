// digit-bench: times Train and Query for each architecture and worker count
// and writes the averages as CSV.
//
// Usage:
//
//	digit-bench -archs="784 100 10;784 300 10" -threads=0,1,2,4 -out=bench.csv
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"digitnet/nn/bench"
	"digitnet/utils"
)

func main() {
	var archsFlag string
	var threadsCSV string
	var outPath string
	var iters int
	var warmup int
	var usePool bool
	var seed uint64
	var verbose bool

	flag.StringVar(&archsFlag, "archs", "784 100 10", "Semicolon-separated list of architectures")
	flag.StringVar(&threadsCSV, "threads", "0,1,2,4", "Comma-separated list of worker counts, 0 runs serially")
	flag.StringVar(&outPath, "out", "bench_results.csv", "Output CSV path")
	flag.IntVar(&iters, "iters", 100, "Timed iterations per case")
	flag.IntVar(&warmup, "warmup", 5, "Untimed iterations per case")
	flag.BoolVar(&usePool, "pool", false, "Also run every threaded case on a worker pool")
	flag.Uint64Var(&seed, "seed", 1, "Seed for weights and inputs")
	flag.BoolVar(&verbose, "verbose", false, "Print the per-function report of every case")
	flag.Parse()
	utils.Verbose = verbose

	threads, err := bench.ParseInts(threadsCSV)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid threads: %v\n", err)
		os.Exit(2)
	}

	var archs [][]int
	for _, a := range strings.Split(archsFlag, ";") {
		if strings.TrimSpace(a) == "" {
			continue
		}
		layers, err := utils.ParseArchitecture(a)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid architecture %q: %v\n", a, err)
			os.Exit(2)
		}
		archs = append(archs, layers)
	}

	var points []bench.Point
	for _, layers := range archs {
		for _, workers := range threads {
			pools := []bool{false}
			if usePool && workers > 0 {
				pools = append(pools, true)
			}
			for _, pool := range pools {
				p, err := bench.RunPoint(bench.Case{
					Layers:  layers,
					Workers: workers,
					Pool:    pool,
					Iters:   iters,
					Warmup:  warmup,
					Seed:    seed,
				})
				if err != nil {
					fmt.Fprintf(os.Stderr, "skip %s workers=%d: %v\n", bench.ArchName(layers), workers, err)
					continue
				}
				fmt.Printf("%-16s workers=%-3d pool=%-5v train=%10.1fµs query=%10.1fµs\n",
					p.Arch, p.Workers, p.Pool, utils.DurationUS(p.Train), utils.DurationUS(p.Query))
				utils.PrintReport(p.Stats)
				points = append(points, p)
			}
		}
	}

	if err := bench.SaveCSV(outPath, points); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote results to %s\n", outPath)
}

// digit-train: trains a sigmoid MLP on MNIST-style CSV data and reports
// test accuracy and per-function timings.
//
// Usage:
//
//	digit-train -train=mnist_train.csv -test=mnist_test.csv -arch="784 100 10" -lr=0.3 -threads=4
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"

	"digitnet/dataset"
	"digitnet/nn"
	"digitnet/parallel"
	"digitnet/utils"
)

var (
	trainFile     = flag.String("train", "mnist_train.csv", "Training data CSV")
	testFile      = flag.String("test", "", "Test data CSV (skips evaluation when empty)")
	arch          = flag.String("arch", "784 100 10", "Layer sizes, input first")
	learningRate  = flag.Float64("lr", 0.3, "Learning rate")
	epochs        = flag.Int("epochs", 1, "Number of training epochs")
	rounds        = flag.Int("rounds", 0, "Training records per epoch, 0 means all")
	threads       = flag.Int("threads", parallel.DefaultWorkers(), "Workers per matrix-vector product, 0 runs serially")
	usePool       = flag.Bool("pool", false, "Reuse a fixed worker pool instead of spawning goroutines per product")
	seed          = flag.Uint64("seed", 0, "Weight initialization seed, 0 uses the clock")
	sample        = flag.Int("sample", 0, "Index of the test record whose scores are printed")
	skipBadLabels = flag.Bool("skip-bad-labels", false, "Skip records whose label has no output neuron")
	verbose       = flag.Bool("verbose", true, "Verbose output")
)

func main() {
	flag.Parse()
	utils.Verbose = *verbose

	layers, err := utils.ParseArchitecture(*arch)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid architecture %q: %v\n", *arch, err)
		os.Exit(1)
	}
	config := &utils.Config{
		Architecture: layers,
		TrainFile:    *trainFile,
		TestFile:     *testFile,
		LearningRate: *learningRate,
		Epochs:       *epochs,
		Rounds:       *rounds,
		Threads:      *threads,
		Seed:         *seed,
	}
	if err := utils.ValidateConfig(config); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("╔══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                      Digit Trainer                           ║")
	fmt.Println("╚══════════════════════════════════════════════════════════════╝")
	fmt.Printf("\nConfiguration:\n")
	fmt.Printf("  Architecture:  %v\n", config.Architecture)
	fmt.Printf("  Learning Rate: %.4f\n", config.LearningRate)
	fmt.Printf("  Epochs:        %d\n", config.Epochs)
	fmt.Printf("  Threads:       %d\n", config.Threads)
	fmt.Printf("  Worker Pool:   %v\n", *usePool)
	fmt.Println()

	inputs, outputs := layers[0], layers[len(layers)-1]

	train, err := loadRecords(config.TrainFile, inputs, outputs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading training data: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d training records\n", len(train))

	reg := utils.NewRegistry()
	netConfig := nn.Config{
		Layers:       config.Architecture,
		LearningRate: config.LearningRate,
		Workers:      config.Threads,
		Initializer:  &nn.Uniform{Min: -1, Max: 1, Seed: config.Seed},
		Recorder:     reg,
	}
	if *usePool && config.Threads > 0 {
		pool := parallel.NewPool(config.Threads)
		defer pool.Close()
		netConfig.Runner = pool
	}

	net, err := nn.New(netConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building network: %v\n", err)
		os.Exit(1)
	}

	perEpoch := len(train)
	if config.Rounds > 0 && config.Rounds < perEpoch {
		perEpoch = config.Rounds
	}

	fmt.Println("\nStarting training...")
	totalStart := time.Now()
	for epoch := 0; epoch < config.Epochs; epoch++ {
		epochStart := time.Now()

		for i := 0; i < perEpoch; i++ {
			rec := train[i]
			targets, err := rec.Targets(outputs)
			if err == nil {
				err = net.Train(rec.Inputs, targets)
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error at record %d: %v\n", i, err)
				os.Exit(1)
			}
		}

		fmt.Printf("Epoch %d/%d | Records: %d | Time: %.2fs\n",
			epoch+1, config.Epochs, perEpoch, time.Since(epochStart).Seconds())
	}
	fmt.Printf("\nTraining complete! Total time: %.2fs\n", time.Since(totalStart).Seconds())

	if config.TestFile != "" {
		if err := evaluate(net, config.TestFile, inputs, outputs); err != nil {
			fmt.Fprintf(os.Stderr, "Error evaluating: %v\n", err)
			os.Exit(1)
		}
	}

	utils.PrintReport(reg.Report())
}

// loadRecords reads path and applies the label policy: records whose label
// does not fit the output layer fail the run unless -skip-bad-labels is set.
func loadRecords(path string, inputs, outputs int) ([]dataset.Record, error) {
	records, err := dataset.Load(path, inputs)
	if err != nil {
		return nil, err
	}

	kept := records[:0]
	for i, rec := range records {
		if _, err := rec.Targets(outputs); err != nil {
			if !*skipBadLabels {
				return nil, errors.Wrapf(err, "record %d", i)
			}
			utils.Logf("Skipping record %d: %v", i, err)
			continue
		}
		kept = append(kept, rec)
	}
	return kept, nil
}

func evaluate(net *nn.Network, path string, inputs, outputs int) error {
	test, err := loadRecords(path, inputs, outputs)
	if err != nil {
		return err
	}
	if len(test) == 0 {
		fmt.Println("No test records")
		return nil
	}

	start := time.Now()
	correct := 0
	for _, rec := range test {
		label, err := net.Predict(rec.Inputs)
		if err != nil {
			return err
		}
		if label == rec.Label {
			correct++
		}
	}
	fmt.Printf("\nTest accuracy: %.2f%% (%d/%d) in %.2fs\n",
		100*float64(correct)/float64(len(test)), correct, len(test), time.Since(start).Seconds())

	if *sample < 0 || *sample >= len(test) {
		return nil
	}
	rec := test[*sample]
	scores, err := net.Query(rec.Inputs)
	if err != nil {
		return err
	}
	fmt.Printf("\nSample %d (label %d):\n", *sample, rec.Label)
	for class, score := range scores {
		fmt.Printf("  %d: %.4f\n", class, score)
	}
	return nil
}

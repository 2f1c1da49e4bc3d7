package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// Config holds training configuration
type Config struct {
	Architecture []int
	TrainFile    string
	TestFile     string
	LearningRate float64
	Epochs       int
	Rounds       int // records per epoch, 0 means all
	Threads      int
	Seed         uint64
}

// ParseArchitecture parses architecture string into slice of integers.
// Sizes may be separated by spaces or commas.
func ParseArchitecture(archStr string) ([]int, error) {
	archParts := strings.FieldsFunc(archStr, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	arch := make([]int, len(archParts))
	for i, s := range archParts {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, err
		}
		arch[i] = n
	}
	return arch, nil
}

// ValidateConfig validates training configuration
func ValidateConfig(config *Config) error {
	if len(config.Architecture) < 2 {
		return fmt.Errorf("architecture must have at least 2 layers (input and output)")
	}

	for i, n := range config.Architecture {
		if n <= 0 {
			return fmt.Errorf("layer %d must have a positive size, got %d", i, n)
		}
	}

	if config.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be positive")
	}

	if config.Epochs <= 0 {
		return fmt.Errorf("epochs must be positive")
	}

	if config.Rounds < 0 {
		return fmt.Errorf("rounds must not be negative")
	}

	if config.Threads < 0 {
		return fmt.Errorf("threads must not be negative")
	}

	if config.TrainFile == "" {
		return fmt.Errorf("training data file is required")
	}

	return nil
}

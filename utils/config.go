package utils

import (
	"fmt"

	"xent/core/ckkswrapper"
	"xent/nn"
)

// Config holds training configuration
type Config struct {
	Reduction    nn.Reduction
	Epochs       int // 0 only evaluates
	LearningRate float64
	Samples      int
	BatchSize    int // 0 trains on the full set
	Features     int
	Classes      int
	Seed         uint64
	Encrypted    bool
	LogN         int
}

// DefaultConfig returns the settings cmd/train starts from.
func DefaultConfig() Config {
	return Config{
		Reduction:    nn.Sum,
		Epochs:       20,
		LearningRate: 0.5,
		Samples:      120,
		Features:     4,
		Classes:      3,
		Seed:         42,
		LogN:         ckkswrapper.MinLogN,
	}
}

// ValidateConfig validates training configuration
func ValidateConfig(config *Config) error {
	if config.Epochs < 0 {
		return fmt.Errorf("epochs must not be negative")
	}

	if config.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be positive")
	}

	if config.Samples <= 0 {
		return fmt.Errorf("samples must be positive")
	}

	if config.BatchSize < 0 {
		return fmt.Errorf("batch size must not be negative")
	}

	if config.Features <= 0 {
		return fmt.Errorf("features must be positive")
	}

	if config.Classes < 2 {
		return fmt.Errorf("need at least 2 classes, got %d", config.Classes)
	}

	if config.Reduction != nn.Sum && config.Reduction != nn.Mean {
		return fmt.Errorf("unknown reduction %v", config.Reduction)
	}

	if config.Encrypted {
		if config.LogN < ckkswrapper.MinLogN || config.LogN > ckkswrapper.MaxLogN {
			return fmt.Errorf("logN must be in [%d, %d]", ckkswrapper.MinLogN, ckkswrapper.MaxLogN)
		}
		if slots := 1 << (config.LogN - 1); config.Batch() > slots {
			return fmt.Errorf("batches of %d samples exceed %d CKKS slots", config.Batch(), slots)
		}
	}

	return nil
}

// Batch returns the number of samples per gradient step.
func (c *Config) Batch() int {
	if c.BatchSize == 0 || c.BatchSize > c.Samples {
		return c.Samples
	}
	return c.BatchSize
}

// Package options holds the process-wide generation limits and loads them from a
// YAML file.
package options

import (
	"fmt"
)

const (
	DefaultMaxDependentGenerationCycles  = 100
	DefaultMaxCollectionGenerationCycles = 100
	DefaultMaxNestingDepth               = 0 // unlimited
)

// Config carries the limits every generation call starts from.
type Config struct {
	// MaxDependentGenerationCycles bounds the passes over fields waiting for an
	// object dependent generator to become ready.
	MaxDependentGenerationCycles int `yaml:"maxDependentGenerationCycles"`
	// MaxCollectionGenerationCycles bounds the retries of failing collection slots.
	MaxCollectionGenerationCycles int `yaml:"maxCollectionGenerationCycles"`
	// MaxNestingDepth bounds nested object recursion, zero means unlimited.
	// A self-referential nested type has no other bound: without a limit it
	// recurses until the goroutine stack overflows, which is not recoverable.
	MaxNestingDepth int `yaml:"maxNestingDepth"`
}

func Defaults() Config {
	return Config{
		MaxDependentGenerationCycles:  DefaultMaxDependentGenerationCycles,
		MaxCollectionGenerationCycles: DefaultMaxCollectionGenerationCycles,
		MaxNestingDepth:               DefaultMaxNestingDepth,
	}
}

// Validate rejects negative limits.
func (c Config) Validate() error {
	switch {
	case c.MaxDependentGenerationCycles < 0:
		return fmt.Errorf("maxDependentGenerationCycles must not be negative, got %d", c.MaxDependentGenerationCycles)
	case c.MaxCollectionGenerationCycles < 0:
		return fmt.Errorf("maxCollectionGenerationCycles must not be negative, got %d", c.MaxCollectionGenerationCycles)
	case c.MaxNestingDepth < 0:
		return fmt.Errorf("maxNestingDepth must not be negative, got %d", c.MaxNestingDepth)
	}

	return nil
}

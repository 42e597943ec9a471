package options

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable pointing at the process config file.
const EnvConfigPath = "DTO_GENERATOR_CONFIG"

// LoadFile loads and parses a YAML config file from the given path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a Config. Keys that are not present keep their defaults.
func Parse(data []byte) (Config, error) {
	cfg := Defaults()

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Marshal serializes a Config to YAML.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

var process = sync.OnceValues(func() (Config, error) {
	path := os.Getenv(EnvConfigPath)
	if path == "" {
		return Defaults(), nil
	}

	return LoadFile(path)
})

// Process returns the process-wide config, loaded on first use from the file
// named by DTO_GENERATOR_CONFIG, or the defaults when it is unset.
func Process() (Config, error) {
	return process()
}

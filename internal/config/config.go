package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Dataset DatasetConfig `yaml:"dataset" envconfig:"DATASET"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" validate:"oneof=text json"`
	Output string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=stdout stderr"`
}

// DatasetConfig contains defaults for the dataset build pipeline. CLI flags
// override these per run.
type DatasetConfig struct {
	Aggregation string `yaml:"aggregation" envconfig:"AGGREGATION" validate:"oneof=mean sum"`
	Workers     int    `yaml:"workers" envconfig:"WORKERS" validate:"min=1,max=64"`
}

// defaultConfig returns the built-in defaults. They are seeded explicitly,
// before the file and env layers, so that envconfig only ever touches fields
// whose WBDCLI_* variable is actually set.
func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Dataset: DatasetConfig{
			Aggregation: "mean",
			Workers:     4,
		},
	}
}

// Load builds the configuration in precedence order: built-in defaults, then
// an optional yaml file, then WBDCLI_* environment variable overrides. A
// missing file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process("WBDCLI", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse yaml: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	return validator.New().Struct(c)
}

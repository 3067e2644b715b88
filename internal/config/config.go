// Package config loads the hub configuration from environment variables
// (prefix FUSIONHUB_) with an optional YAML file overlay, validated before
// use.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete application configuration.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Metrics  MetricsConfig  `yaml:"metrics" envconfig:"METRICS"`
}

// PipelineConfig parameterizes the fusion pipeline.
type PipelineConfig struct {
	CheckpointDir      string  `yaml:"checkpoint_dir" envconfig:"CHECKPOINT_DIR" default:"data/checkpoints" validate:"required"`
	TxLogPath          string  `yaml:"txlog_path" envconfig:"TXLOG_PATH"`
	DollarBarThreshold float64 `yaml:"dollar_bar_threshold" envconfig:"DOLLAR_BAR_THRESHOLD" default:"1000000" validate:"gt=0"`
	FeatureWindow      int     `yaml:"feature_window" envconfig:"FEATURE_WINDOW" default:"20" validate:"gt=1"`
	IdentityTolerance  float64 `yaml:"identity_tolerance" envconfig:"IDENTITY_TOLERANCE" default:"1.0" validate:"gt=0"`
	SmoothingAlpha     float64 `yaml:"smoothing_alpha" envconfig:"SMOOTHING_ALPHA" default:"0.5" validate:"gt=0,lte=1"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
}

// MetricsConfig controls the OTel/prometheus exporter.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" envconfig:"ENABLED" default:"false"`
	Port    string `yaml:"port" envconfig:"PORT" default:"9090"`
}

// Load reads the configuration: environment first, then an optional YAML
// file overlay, then validation.
func Load(configFile string) (*Config, error) {
	var cfg Config

	if err := envconfig.Process("FUSIONHUB", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", configFile, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, e.g.
// MEMLAB_METRICS_HISTORY_POINTS.
const EnvPrefix = "MEMLAB"

// Config holds all application configuration.
type Config struct {
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
	Serve   ServeConfig   `yaml:"serve"`
}

// MetricsConfig drives sampling and projection.
type MetricsConfig struct {
	ProcessPollInterval time.Duration `yaml:"process_poll_interval" split_words:"true" validate:"gt=0"`
	// RuntimeCountersInterval is the cadence of the runtime counter feed.
	// The sampling loop does not enforce it.
	RuntimeCountersInterval time.Duration `yaml:"runtime_counters_interval" split_words:"true" validate:"gt=0"`
	HistoryPoints           int           `yaml:"history_points" split_words:"true" validate:"min=1"`
	// UiMinRelativeChange suppresses near no-op UI refreshes. Only the TUI reads it.
	UiMinRelativeChange float64 `yaml:"ui_min_relative_change" split_words:"true" validate:"gte=0,lte=1"`
	ListThreads         bool    `yaml:"list_threads" split_words:"true"`
	MaxThreads          int     `yaml:"max_threads" split_words:"true" validate:"gte=0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `yaml:"level" split_words:"true" validate:"omitempty,oneof=trace debug info warn error"`
	Format     string `yaml:"format" split_words:"true" validate:"omitempty,oneof=console json"`
	File       string `yaml:"file" split_words:"true"`
	MaxSizeMB  int    `yaml:"max_size_mb" split_words:"true" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" split_words:"true" validate:"gte=0"`
}

// ServeConfig holds the metrics endpoint settings for `memlab serve`.
type ServeConfig struct {
	Addr string `yaml:"addr" split_words:"true" validate:"required"`
	// Path must not shadow the /healthz and /state routes.
	Path string `yaml:"path" split_words:"true" validate:"required,startswith=/,ne=/healthz,ne=/state"`
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Metrics: MetricsConfig{
			ProcessPollInterval:     time.Second,
			RuntimeCountersInterval: time.Second,
			HistoryPoints:           120,
			UiMinRelativeChange:     0.01,
			ListThreads:             true,
			MaxThreads:              64,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
		Serve: ServeConfig{
			Addr: ":9464",
			Path: "/metrics",
		},
	}
}

// Load applies, in order: defaults, the YAML file at path (if path is not
// empty), then MEMLAB_* environment variables, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and reports every violation.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config validation failed: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed '%s' (value: %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("config validation failed: %s", strings.Join(msgs, "; "))
}

// HistoryCapacity is HistoryPoints coerced to at least 1.
func (m MetricsConfig) HistoryCapacity() int {
	return max(1, m.HistoryPoints)
}

func (m MetricsConfig) String() string {
	return fmt.Sprintf("poll=%s counters=%s history=%d min_change=%.3f threads=%t/%d",
		m.ProcessPollInterval, m.RuntimeCountersInterval, m.HistoryPoints,
		m.UiMinRelativeChange, m.ListThreads, m.MaxThreads)
}

// Package config holds the settings of the liquidlite command.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/invopop/jsonschema"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/liquidlite/template"
)

// Config holds configuration for rendering templates.
// Zero values use sensible defaults where noted.
type Config struct {
	// --- Compilation ---

	// MissingPath selects how undefined variable paths are handled.
	// Options: "strict" (default), "lenient"
	MissingPath string `json:"missing_path,omitempty" yaml:"missing_path,omitempty" toml:"missing_path" jsonschema:"enum=strict,enum=lenient,default=strict"`

	// --- Variables ---

	// Variables lists variable files (JSON, YAML or TOML) loaded in order.
	// Later files take precedence.
	Variables []string `json:"variables,omitempty" yaml:"variables,omitempty" toml:"variables"`

	// Set holds inline path=value assignments applied after the files.
	Set []string `json:"set,omitempty" yaml:"set,omitempty" toml:"set"`

	// --- Output ---

	// Output is the directory rendered files are written to.
	// Empty writes to stdout.
	Output string `json:"output,omitempty" yaml:"output,omitempty" toml:"output"`

	// Workers limits how many templates render in parallel.
	// 0 uses the default (4).
	Workers int `json:"workers,omitempty" yaml:"workers,omitempty" toml:"workers" jsonschema:"minimum=0"`

	// --- Watching ---

	// WatchInterval is the polling interval used when file notifications
	// are unavailable. 0 uses the default (500ms).
	WatchInterval time.Duration `json:"watch_interval,omitempty" yaml:"watch_interval,omitempty" toml:"watch_interval" jsonschema:"type=string"`

	// --- Logging ---

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty" toml:"log_level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error,default=info"`

	// LogFile receives JSON logs. Empty logs to stderr.
	LogFile string `json:"log_file,omitempty" yaml:"log_file,omitempty" toml:"log_file"`
}

const (
	defaultWorkers       = 4
	defaultWatchInterval = 500 * time.Millisecond
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MissingPath:   template.MissingPathStrict.String(),
		Workers:       defaultWorkers,
		WatchInterval: defaultWatchInterval,
		LogLevel:      zerolog.InfoLevel.String(),
	}
}

// Load reads a config file on top of the defaults. The format is chosen by
// extension: .yaml/.yml or .toml. A missing file is not an error when
// optional is true.
func Load(path string, optional bool) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.decode(path, data); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) decode(path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, c)
	case ".toml":
		_, err := toml.Decode(string(data), c)
		return err
	default:
		return fmt.Errorf("unsupported config extension %q", filepath.Ext(path))
	}
}

// LoadFromEnv populates config fields from environment variables.
// Environment variables use the LIQUIDLITE_ prefix and take precedence over
// existing values.
//
// Supported variables:
//   - LIQUIDLITE_MISSING_PATH: strict or lenient
//   - LIQUIDLITE_VARIABLES: comma-separated variable files
//   - LIQUIDLITE_OUTPUT: output directory
//   - LIQUIDLITE_WORKERS: parallel renders
//   - LIQUIDLITE_WATCH_INTERVAL: polling interval (e.g., "1s")
//   - LIQUIDLITE_LOG_LEVEL: log level
//   - LIQUIDLITE_LOG_FILE: log file path
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("LIQUIDLITE_MISSING_PATH"); v != "" {
		c.MissingPath = v
	}
	if v := os.Getenv("LIQUIDLITE_VARIABLES"); v != "" {
		c.Variables = splitList(v)
	}
	if v := os.Getenv("LIQUIDLITE_OUTPUT"); v != "" {
		c.Output = v
	}
	if v := os.Getenv("LIQUIDLITE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
	if v := os.Getenv("LIQUIDLITE_WATCH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.WatchInterval = d
		}
	}
	if v := os.Getenv("LIQUIDLITE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LIQUIDLITE_LOG_FILE"); v != "" {
		c.LogFile = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, ok := template.ParseMissingPathPolicy(c.MissingPath); !ok {
		return fmt.Errorf("missing_path must be strict or lenient, got %q", c.MissingPath)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.WatchInterval < 0 {
		return fmt.Errorf("watch_interval must be >= 0, got %v", c.WatchInterval)
	}
	if c.LogLevel != "" {
		if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("log_level: %w", err)
		}
	}
	return nil
}

// WorkerCount returns Workers or the default when unset.
func (c Config) WorkerCount() int {
	if c.Workers == 0 {
		return defaultWorkers
	}
	return c.Workers
}

// PollInterval returns WatchInterval or the default when unset.
func (c Config) PollInterval() time.Duration {
	if c.WatchInterval == 0 {
		return defaultWatchInterval
	}
	return c.WatchInterval
}

// EngineOptions returns the template engine options described by the
// config. Call Validate first; an unknown policy falls back to strict.
func (c Config) EngineOptions(logger zerolog.Logger) []template.Option {
	policy, _ := template.ParseMissingPathPolicy(c.MissingPath)
	return []template.Option{
		template.WithMissingPath(policy),
		template.WithLogger(logger),
	}
}

// Schema returns the JSON schema describing config files.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		FieldNameTag:   "yaml",
		DoNotReference: true,
	}
	s := r.Reflect(&Config{})
	s.Title = "liquidlite configuration"
	return s
}

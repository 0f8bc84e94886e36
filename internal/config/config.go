// Package config provides the optional tool configuration file for voxfix.
//
// Everything has a sensible default, so running without a config file is
// the normal case; the file exists so a corpus checkout can pin its data
// directory and rule table once instead of repeating flags.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Slog maps the level to its [slog.Level]. Unset or unknown levels map to
// info.
func (l LogLevel) Slog() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config is the root configuration for the voxfix tool, typically loaded
// from voxfix.yaml in the working directory.
type Config struct {
	// CorpusDir is the default corpus directory processed when no path
	// argument is given.
	CorpusDir string `yaml:"corpus_dir"`

	// RulesPath points at a rule table YAML file. Empty means the embedded
	// curated table.
	RulesPath string `yaml:"rules_path"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		CorpusDir: "data",
		LogLevel:  LogInfo,
	}
}

// Load reads the YAML configuration file at path and returns a validated
// [Config].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, fills defaults for unset
// fields, and validates the result.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true) // reject unknown keys to catch typos
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
func Validate(cfg *Config) error {
	if cfg.CorpusDir == "" {
		return fmt.Errorf("config: corpus_dir must not be empty")
	}
	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		return fmt.Errorf("config: log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel)
	}
	return nil
}

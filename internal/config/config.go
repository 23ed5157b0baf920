// Package config loads the accstore YAML configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration.
type Config struct {
	// Database is the SQLite file path.
	Database string `yaml:"database"`
	// Metadata is the directory holding the CUE metadata files.
	Metadata string `yaml:"metadata"`
	// PageSize is the default page size of page splits.
	PageSize int `yaml:"page_size"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// PresentationCache is the number of cached display labels.
	PresentationCache int `yaml:"presentation_cache"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Database:          "accstore.db",
		Metadata:          "metadata",
		PageSize:          1000,
		LogLevel:          "info",
		PresentationCache: 1024,
	}
}

// Load reads path over Default. Keys missing from the file keep their
// default; unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every value.
func (c Config) Validate() error {
	var errs []error
	if c.Database == "" {
		errs = append(errs, errors.New("database is required"))
	}
	if c.Metadata == "" {
		errs = append(errs, errors.New("metadata is required"))
	}
	if c.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("page_size must be positive, got %d", c.PageSize))
	}
	if c.PresentationCache <= 0 {
		errs = append(errs, fmt.Errorf("presentation_cache must be positive, got %d", c.PresentationCache))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level returns the slog level of LogLevel, falling back to info.
func (c Config) Level() slog.Level {
	l, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: unknown level %q", s)
	}
	return l, nil
}

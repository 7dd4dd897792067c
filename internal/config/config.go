// Package config loads treesize settings from an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/treesize/internal/scanner"
)

// Config holds all configuration loaded from config.yaml.
type Config struct {
	Scan       Scan   `yaml:"scan"`
	LogLevel   string `yaml:"log_level"`
	ExportPath string `yaml:"export_path"`
}

// Scan holds the scan engine knobs.
type Scan struct {
	Mode           string        `yaml:"mode"`
	ParallelDepth  *int          `yaml:"parallel_depth"`
	Workers        int           `yaml:"workers"`
	ReportInterval time.Duration `yaml:"report_interval"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// applyDefaults fills zero/empty fields with sensible defaults.
// Workers stays 0, meaning one per available CPU.
func (c *Config) applyDefaults() {
	if c.Scan.Mode == "" {
		c.Scan.Mode = scanner.ModeAuto.String()
	}
	if c.Scan.ParallelDepth == nil {
		depth := scanner.DefaultParallelDepth
		c.Scan.ParallelDepth = &depth
	}
	if c.Scan.ReportInterval == 0 {
		c.Scan.ReportInterval = scanner.DefaultReportInterval
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.ExportPath == "" {
		c.ExportPath = "treesize-export.json"
	}
}

// DefaultPath returns the per-user config location, or "" when the user
// config directory is unknown.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "treesize", "config.yaml")
}

// Load reads and parses the YAML config file at path.
// A missing file, or an empty path, yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open config %q: %w", path, err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return &cfg, nil
}

// Validate reports settings that cannot be turned into scan options.
func (c *Config) Validate() error {
	if _, err := scanner.ParseMode(c.Scan.Mode); err != nil {
		return err
	}
	if c.Scan.ParallelDepth != nil && *c.Scan.ParallelDepth < 0 {
		return fmt.Errorf("scan.parallel_depth must not be negative, got %d", *c.Scan.ParallelDepth)
	}
	if c.Scan.Workers < 0 {
		return fmt.Errorf("scan.workers must not be negative, got %d", c.Scan.Workers)
	}
	if c.Scan.ReportInterval < 0 {
		return fmt.Errorf("scan.report_interval must not be negative, got %s", c.Scan.ReportInterval)
	}
	return nil
}

// ScanOptions converts the scan section into engine options.
func (c *Config) ScanOptions() (scanner.Options, error) {
	if err := c.Validate(); err != nil {
		return scanner.Options{}, err
	}
	mode, _ := scanner.ParseMode(c.Scan.Mode)
	opts := scanner.DefaultOptions().
		WithMode(mode).
		WithReportInterval(c.Scan.ReportInterval)
	if c.Scan.ParallelDepth != nil {
		opts = opts.WithParallelDepth(*c.Scan.ParallelDepth)
	}
	if c.Scan.Workers > 0 {
		opts = opts.WithWorkers(c.Scan.Workers)
	}
	return opts, nil
}

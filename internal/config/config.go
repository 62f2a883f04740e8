// Package config loads the YAML configuration for snap2cmd.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config describes one decode-and-project run: where the snapshot comes
// from, where (optionally) to replay commands live, and how fast.
//
// Trimmed from the teacher's Config (source/target/proxy/migrate/
// consistency/cutover-batch machinery for a live two-cluster migration)
// down to the fields this tool actually has: a snapshot path, an
// optional replay target, a replay rate limit, and a log directory.
// Rewired onto gopkg.in/yaml.v3 directly (the teacher requires it but
// hand-rolls a YAML subset instead of calling it — not carried forward,
// see DESIGN.md).
type Config struct {
	Source SourceConfig `yaml:"source"`
	Target TargetConfig `yaml:"target"`
	Replay ReplayConfig `yaml:"replay"`
	LogDir string       `yaml:"logDir"`

	path string
}

// SourceConfig names the snapshot file to decode.
type SourceConfig struct {
	Path string `yaml:"path"`
}

// TargetConfig names an optional live Redis-compatible target for the
// `replay` subcommand.
type TargetConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	TLS      bool   `yaml:"tls"`
}

// ReplayConfig controls replay pacing against Target.
type ReplayConfig struct {
	RatePerSecond int `yaml:"ratePerSecond"`
	BatchSize     int `yaml:"batchSize"`
}

// ValidationError collects configuration issues found by Validate.
type ValidationError struct {
	Path   string
	Errors []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("config validation failed")
	if e.Path != "" {
		b.WriteString(": ")
		b.WriteString(e.Path)
	}
	for _, err := range e.Errors {
		b.WriteString("\n - ")
		b.WriteString(err)
	}
	return b.String()
}

// Load reads and validates a YAML config file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	raw, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("open config file %s: %w", absPath, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.path = absPath
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Replay.RatePerSecond <= 0 {
		c.Replay.RatePerSecond = 2000
	}
	if c.Replay.BatchSize <= 0 {
		c.Replay.BatchSize = 256
	}
	if c.LogDir == "" {
		c.LogDir = "logs"
	}
}

// Validate ensures the config is usable.
func (c *Config) Validate() error {
	var errs []string
	if c.Source.Path == "" {
		errs = append(errs, "source.path is required")
	}
	if c.Replay.RatePerSecond <= 0 {
		errs = append(errs, "replay.ratePerSecond must be > 0")
	}
	if c.Replay.BatchSize <= 0 {
		errs = append(errs, "replay.batchSize must be > 0")
	}
	if len(errs) > 0 {
		return &ValidationError{Path: c.path, Errors: errs}
	}
	return nil
}

// HasTarget reports whether a live replay target was configured.
func (c *Config) HasTarget() bool {
	return c.Target.Addr != ""
}

// ResolvedSourcePath returns Source.Path resolved relative to the config
// file's directory.
func (c *Config) ResolvedSourcePath() string {
	return c.ResolvePath(c.Source.Path)
}

// ResolvePath resolves path relative to the config file's directory.
func (c *Config) ResolvePath(path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(filepath.Dir(c.path), path))
}

// Summary returns a concise one-line overview for logging.
func (c *Config) Summary() string {
	target := "none"
	if c.HasTarget() {
		target = c.Target.Addr
	}
	return fmt.Sprintf("source=%s target=%s rate=%d/s batch=%d logDir=%s",
		c.ResolvedSourcePath(), target, c.Replay.RatePerSecond, c.Replay.BatchSize, c.LogDir)
}

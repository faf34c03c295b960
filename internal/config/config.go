// Package config defines the experiment configuration consumed by the
// harness: YAML file first, environment overrides second.
package config

import (
	"fmt"
	"os"

	"github.com/FairForge/gauntlet/internal/store"
	"gopkg.in/yaml.v3"
)

// Config holds every knob for one experiment. The core components validate
// their own parameters again at construction; Validate here catches caller
// bugs before anything starts.
type Config struct {
	Label           string       `yaml:"label"`
	Targets         []string     `yaml:"targets"`
	Iterations      int          `yaml:"iterations"`
	Runs            int          `yaml:"runs"`
	SuiteRuns       int          `yaml:"suite_runs"`
	Concurrency     int          `yaml:"concurrency"`
	BaselineSamples int          `yaml:"baseline_samples"`
	PayloadBytes    int          `yaml:"payload_bytes"`
	ReportDir       string       `yaml:"report_dir"`
	Store           store.Config `yaml:"store"`
}

// Default returns the configuration used when nothing is specified.
func Default() *Config {
	return &Config{
		Label:           "gauntlet",
		Targets:         []string{"http://localhost:8000"},
		Iterations:      100,
		Runs:            3,
		SuiteRuns:       3,
		Concurrency:     10,
		BaselineSamples: 20,
		PayloadBytes:    1024,
		ReportDir:       "results",
	}
}

// Load reads a YAML config file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for caller bugs.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return fmt.Errorf("config: at least one target required")
	}
	if c.Iterations <= 0 {
		return fmt.Errorf("config: iterations must be positive, got %d", c.Iterations)
	}
	if c.Runs <= 0 {
		return fmt.Errorf("config: runs must be positive, got %d", c.Runs)
	}
	if c.SuiteRuns <= 0 {
		return fmt.Errorf("config: suite_runs must be positive, got %d", c.SuiteRuns)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("config: concurrency must be positive, got %d", c.Concurrency)
	}
	if c.BaselineSamples <= 0 {
		return fmt.Errorf("config: baseline_samples must be positive, got %d", c.BaselineSamples)
	}
	if c.PayloadBytes < 0 {
		return fmt.Errorf("config: payload_bytes must not be negative, got %d", c.PayloadBytes)
	}
	return nil
}

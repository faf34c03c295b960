package config

import (
	"os"
	"strconv"
	"strings"
)

// LoadFromEnv applies environment overrides on top of cfg.
func LoadFromEnv(cfg *Config) {
	if label := os.Getenv("GAUNTLET_LABEL"); label != "" {
		cfg.Label = label
	}

	if targets := os.Getenv("GAUNTLET_TARGETS"); targets != "" {
		cfg.Targets = cfg.Targets[:0]
		for _, t := range strings.Split(targets, ",") {
			if t = strings.TrimSpace(t); t != "" {
				cfg.Targets = append(cfg.Targets, t)
			}
		}
	}

	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setInt("GAUNTLET_ITERATIONS", &cfg.Iterations)
	setInt("GAUNTLET_RUNS", &cfg.Runs)
	setInt("GAUNTLET_SUITE_RUNS", &cfg.SuiteRuns)
	setInt("GAUNTLET_CONCURRENCY", &cfg.Concurrency)
	setInt("GAUNTLET_BASELINE_SAMPLES", &cfg.BaselineSamples)
	setInt("GAUNTLET_PAYLOAD_BYTES", &cfg.PayloadBytes)

	if dir := os.Getenv("GAUNTLET_REPORT_DIR"); dir != "" {
		cfg.ReportDir = dir
	}

	// Store settings
	if host := os.Getenv("GAUNTLET_STORE_HOST"); host != "" {
		cfg.Store.Host = host
	}
	setInt("GAUNTLET_STORE_PORT", &cfg.Store.Port)
	if db := os.Getenv("GAUNTLET_STORE_DATABASE"); db != "" {
		cfg.Store.Database = db
	}
	if user := os.Getenv("GAUNTLET_STORE_USER"); user != "" {
		cfg.Store.User = user
	}
	if password := os.Getenv("GAUNTLET_STORE_PASSWORD"); password != "" {
		cfg.Store.Password = password
	}
	if mode := os.Getenv("GAUNTLET_STORE_SSLMODE"); mode != "" {
		cfg.Store.SSLMode = mode
	}
}

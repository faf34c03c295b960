// Package report assembles the experiment output and persists it as JSON.
// The measurement core emits results; everything about their on-disk shape
// lives here.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/FairForge/gauntlet/internal/baseline"
	"github.com/FairForge/gauntlet/internal/bench"
	"github.com/FairForge/gauntlet/internal/suite"
	"github.com/google/uuid"
)

// ConfigSnapshot records the knobs the experiment ran with.
type ConfigSnapshot struct {
	Iterations  int      `json:"iterations"`
	Runs        int      `json:"runs"`
	SuiteRuns   int      `json:"suite_runs"`
	Concurrency int      `json:"concurrency"`
	Targets     []string `json:"targets"`
}

// Report is the serializable output of one full experiment. The harness
// always produces one, even when every operation failed.
type Report struct {
	ID              string                 `json:"id"`
	Label           string                 `json:"label"`
	Timestamp       time.Time              `json:"timestamp"`
	Config          ConfigSnapshot         `json:"config"`
	Baseline        baseline.Metrics       `json:"baseline"`
	Results         []bench.Result         `json:"results"`
	MemorySnapshots []suite.MemorySnapshot `json:"memory_snapshots,omitempty"`
	PeakStoreBytes  int64                  `json:"peak_store_bytes,omitempty"`
	FinalStoreBytes int64                  `json:"final_store_bytes,omitempty"`
}

// New stamps a fresh report shell with an ID and timestamp.
func New(label string, cfg ConfigSnapshot) *Report {
	return &Report{
		ID:        uuid.NewString(),
		Label:     label,
		Timestamp: time.Now().UTC(),
		Config:    cfg,
	}
}

// Save writes the report as indented JSON under dir, one file per
// experiment, and returns the file path.
func (r *Report) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	name := fmt.Sprintf("%s-%s.json", r.Timestamp.Format("20060102-150405"), r.ID)
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// Package baseline measures reference latencies independent of the
// operations under test, to contextualize throughput numbers against
// irreducible latency floors.
package baseline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/FairForge/gauntlet/internal/stats"
	"go.uber.org/zap"
)

// Pinger is the trivial backing-store round trip.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TargetLatency summarizes baseline round trips against one target.
type TargetLatency struct {
	Target  string  `json:"target"`
	AvgMs   float64 `json:"avg_ms"`
	Samples int     `json:"samples"`
}

// Metrics holds the reference latencies captured once per experiment.
// A zero-valued LatencyStats means every sample for that baseline failed,
// a degenerate missing-data signal rather than a true zero.
type Metrics struct {
	NetworkLatency stats.LatencyStats `json:"network_latency"`
	StoreLatency   stats.LatencyStats `json:"store_latency"`
	PerTarget      []TargetLatency    `json:"per_target,omitempty"`
}

// Sampler takes K independent samples of the store and network baselines.
// Baselines are informational, not pass/fail: individual sample failures are
// discarded and do not count against anything.
type Sampler struct {
	store   Pinger
	client  *http.Client
	targets []string
	samples int
	logger  *zap.Logger
}

// NewSampler builds a sampler. The store may be nil when no backing store is
// configured; its LatencyStats then stays at the zero value.
func NewSampler(store Pinger, client *http.Client, targets []string, samples int, logger *zap.Logger) (*Sampler, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("baseline: samples must be positive, got %d", samples)
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sampler{
		store:   store,
		client:  client,
		targets: targets,
		samples: samples,
		logger:  logger,
	}, nil
}

// Measure runs all baseline sampling once. It never fails: the worst case is
// zero-valued stats for a baseline whose samples all failed.
func (s *Sampler) Measure(ctx context.Context) Metrics {
	var m Metrics

	if s.store != nil {
		storeSamples := make([]float64, 0, s.samples)
		for i := 0; i < s.samples; i++ {
			start := time.Now()
			if err := s.store.Ping(ctx); err != nil {
				s.logger.Debug("store baseline sample failed", zap.Error(err))
				continue
			}
			storeSamples = append(storeSamples, millisSince(start))
		}
		m.StoreLatency = stats.Compute(storeSamples)
	}

	all := make([]float64, 0, s.samples*len(s.targets))
	for _, target := range s.targets {
		targetSamples := make([]float64, 0, s.samples)
		for i := 0; i < s.samples; i++ {
			start := time.Now()
			if err := s.probe(ctx, target); err != nil {
				s.logger.Debug("network baseline sample failed",
					zap.String("target", target), zap.Error(err))
				continue
			}
			targetSamples = append(targetSamples, millisSince(start))
		}
		m.PerTarget = append(m.PerTarget, TargetLatency{
			Target:  target,
			AvgMs:   stats.Mean(targetSamples),
			Samples: len(targetSamples),
		})
		all = append(all, targetSamples...)
	}
	m.NetworkLatency = stats.Compute(all)

	return m
}

func (s *Sampler) probe(ctx context.Context, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target+"/health", nil)
	if err != nil {
		return fmt.Errorf("build baseline request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("baseline: %s returned %d", target, resp.StatusCode)
	}
	return nil
}

func millisSince(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}

// Package stats provides the arithmetic underneath every latency and
// throughput figure the harness reports.
package stats

import (
	"math"
	"sort"
)

// LatencyStats summarizes one sample set of millisecond durations.
// All fields are zero when the sample set is empty; for a non-empty set
// MinMs <= P50Ms <= P95Ms <= P99Ms <= MaxMs always holds.
type LatencyStats struct {
	MinMs float64 `json:"min_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
	MaxMs float64 `json:"max_ms"`
}

// Percentile returns the p-th percentile of samples using the nearest-rank
// method: sort ascending and take the element at index ceil(p/100*n)-1,
// clamped to the valid range. Nearest-rank is not interpolated, so p95/p99
// on small sample sets land on an actual sample; that keeps results
// reproducible but coarse when n is small.
// Returns 0 for an empty input.
func Percentile(samples []float64, p float64) float64 {
	if len(samples) == 0 {
		return 0
	}

	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// Mean returns the arithmetic mean of samples, 0 for an empty input.
func Mean(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}

	var sum float64
	for _, s := range samples {
		sum += s
	}
	return sum / float64(len(samples))
}

// StdDev returns the population standard deviation of samples (divide by n,
// not n-1). Returns 0 for an empty input.
func StdDev(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}

	mean := Mean(samples)
	var sumSq float64
	for _, s := range samples {
		d := s - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(samples)))
}

// Compute builds the full LatencyStats record from one sample set.
func Compute(samples []float64) LatencyStats {
	if len(samples) == 0 {
		return LatencyStats{}
	}

	min, max := samples[0], samples[0]
	for _, s := range samples[1:] {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}

	return LatencyStats{
		MinMs: min,
		AvgMs: Mean(samples),
		P50Ms: Percentile(samples, 50),
		P95Ms: Percentile(samples, 95),
		P99Ms: Percentile(samples, 99),
		MaxMs: max,
	}
}

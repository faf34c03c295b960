package suite

import (
	"fmt"
	"math"

	"github.com/FairForge/gauntlet/internal/bench"
	"github.com/FairForge/gauntlet/internal/stats"
)

// Aggregate combines results from independently executed suites into one
// averaged result per operation. Every suite must report the same operation
// names in the same order; a mismatch is a caller bug and fails immediately.
//
// Throughput is averaged across the per-suite averages, and the reported
// stddev is the variance of those per-suite averages: a second-order
// statistic, distinct from the per-suite across-runs variance.
//
// Latency fields are reduced by taking the min of per-suite minimums, the
// max of per-suite maximums, and the arithmetic mean of avg/p50/p95/p99.
// Averaging percentiles is an approximation: it is not equivalent to
// recomputing a percentile over the pooled samples, but it avoids retaining
// raw samples across suites.
//
// Aggregate never mutates its input; aggregating the same input twice yields
// identical output.
func Aggregate(suites [][]bench.Result) ([]bench.Result, error) {
	if len(suites) == 0 {
		return nil, fmt.Errorf("suite: nothing to aggregate")
	}

	first := suites[0]
	for si, s := range suites[1:] {
		if len(s) != len(first) {
			return nil, fmt.Errorf("suite: suite %d has %d operations, want %d", si+1, len(s), len(first))
		}
		for i := range s {
			if s[i].Name != first[i].Name {
				return nil, fmt.Errorf("suite: suite %d operation %d is %q, want %q",
					si+1, i, s[i].Name, first[i].Name)
			}
		}
	}

	n := float64(len(suites))
	out := make([]bench.Result, 0, len(first))

	for i := range first {
		agg := bench.Result{
			Name: first[i].Name,
			// Scaled by the suite count to reflect total work performed.
			Iterations: first[i].Iterations * len(suites),
			Runs:       first[i].Runs * len(suites),
		}

		throughputs := make([]float64, len(suites))
		minMs := first[i].Latency.MinMs
		maxMs := first[i].Latency.MaxMs
		var sumAvg, sumP50, sumP95, sumP99, sumSuccess float64
		var errs []string

		for si, s := range suites {
			r := s[i]
			throughputs[si] = r.AvgOpsPerSec
			l := r.Latency
			if l.MinMs < minMs {
				minMs = l.MinMs
			}
			if l.MaxMs > maxMs {
				maxMs = l.MaxMs
			}
			sumAvg += l.AvgMs
			sumP50 += l.P50Ms
			sumP95 += l.P95Ms
			sumP99 += l.P99Ms
			sumSuccess += r.SuccessRate
			for _, msg := range r.Errors {
				errs = appendDistinct(errs, msg)
			}
		}

		agg.AvgOpsPerSec = math.Round(stats.Mean(throughputs))
		agg.OpsPerSecStdDev = math.Round(stats.StdDev(throughputs))
		agg.Latency = stats.LatencyStats{
			MinMs: minMs,
			AvgMs: sumAvg / n,
			P50Ms: sumP50 / n,
			P95Ms: sumP95 / n,
			P99Ms: sumP99 / n,
			MaxMs: maxMs,
		}
		agg.SuccessRate = sumSuccess / n
		agg.Errors = errs
		out = append(out, agg)
	}

	return out, nil
}

func appendDistinct(errs []string, msg string) []string {
	for _, e := range errs {
		if e == msg {
			return errs
		}
	}
	if len(errs) >= bench.MaxDistinctErrors {
		return errs
	}
	return append(errs, msg)
}

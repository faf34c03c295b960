// Package bench implements the concurrency-bounded executor at the heart of
// the harness. It drives one labeled operation through iterations*runs
// invocations with a fixed ceiling on in-flight work, and reduces the raw
// outcomes into a single BenchmarkResult.
package bench

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/FairForge/gauntlet/internal/stats"
	"go.uber.org/zap"
)

// MaxDistinctErrors caps how many distinct error messages a result retains.
const MaxDistinctErrors = 5

// Outcome is the result of one invocation of a timed operation. It is always
// produced, even on failure; DurationMs covers start to failure.
type Outcome struct {
	Success    bool
	DurationMs float64
	Error      string
}

// Operation is one externally supplied unit of timed work, invoked by index.
// The index is globally offset across runs (run*iterations + i), so an
// operation can vary its behavior deterministically, e.g. round-robin
// target selection. The executor is agnostic to what the operation does.
type Operation func(ctx context.Context, index int) Outcome

// Timed adapts a plain fallible function into an Operation, measuring
// wall-clock duration and folding any error into the Outcome.
func Timed(fn func(ctx context.Context, index int) error) Operation {
	return func(ctx context.Context, index int) Outcome {
		start := time.Now()
		err := fn(ctx, index)
		out := Outcome{
			Success:    err == nil,
			DurationMs: float64(time.Since(start)) / float64(time.Millisecond),
		}
		if err != nil {
			out.Error = err.Error()
		}
		return out
	}
}

// Observer receives execution events. Implementations must be safe for
// concurrent use; calls to Started and Finished are balanced.
type Observer interface {
	OperationStarted(name string)
	OperationFinished(name string, outcome Outcome)
}

// Config defines executor parameters. All values are validated by
// NewExecutor; a non-positive concurrency or run count is a caller bug,
// not something to degrade around.
type Config struct {
	Iterations  int
	Runs        int
	Concurrency int
}

// Result aggregates one operation's behavior over all runs and iterations.
// Immutable once returned.
type Result struct {
	Name            string             `json:"name"`
	Iterations      int                `json:"iterations"`
	Runs            int                `json:"runs"`
	AvgOpsPerSec    float64            `json:"avg_ops_per_sec"`
	OpsPerSecStdDev float64            `json:"ops_per_sec_stddev"`
	Latency         stats.LatencyStats `json:"latency"`
	SuccessRate     float64            `json:"success_rate"`
	Errors          []string           `json:"errors,omitempty"`
}

// Executor runs operations under a fixed concurrency ceiling. Admission is a
// counting semaphore, so there is no poll-interval latency floor between an
// operation finishing and the next being admitted.
type Executor struct {
	cfg      Config
	logger   *zap.Logger
	observer Observer
}

// NewExecutor validates cfg and builds an executor. The observer may be nil.
func NewExecutor(cfg Config, logger *zap.Logger, observer Observer) (*Executor, error) {
	if cfg.Concurrency <= 0 {
		return nil, fmt.Errorf("bench: concurrency must be positive, got %d", cfg.Concurrency)
	}
	if cfg.Runs <= 0 {
		return nil, fmt.Errorf("bench: runs must be positive, got %d", cfg.Runs)
	}
	if cfg.Iterations < 0 {
		return nil, fmt.Errorf("bench: iterations must not be negative, got %d", cfg.Iterations)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{cfg: cfg, logger: logger, observer: observer}, nil
}

// Run executes the named operation Iterations times per run, for Runs
// independent runs, with at most Concurrency invocations in flight at once.
// Runs are sequential: every invocation of a run completes before the next
// run starts, and each run's wall-clock time feeds a run-level throughput
// sample used for the cross-run variance.
//
// Operation failures are folded into the result (success rate, error list)
// and still count toward the throughput denominator, since a failing call is
// load the target had to absorb. Run never fails because operations do; a 0%
// success rate is a valid, fully formed result.
func (e *Executor) Run(ctx context.Context, name string, op Operation) Result {
	n := e.cfg.Iterations
	result := Result{Name: name, Iterations: n, Runs: e.cfg.Runs}
	if n == 0 {
		// Nothing to measure; all-zero stats, and an explicit guard so the
		// success-rate division below can never see a zero denominator.
		return result
	}

	acc := &accumulator{durations: make([]float64, 0, e.cfg.Runs*n)}
	runThroughputs := make([]float64, 0, e.cfg.Runs)
	sem := make(chan struct{}, e.cfg.Concurrency)

	for run := 0; run < e.cfg.Runs; run++ {
		var wg sync.WaitGroup
		start := time.Now()

		for i := 0; i < n; i++ {
			index := run*n + i
			sem <- struct{}{}
			wg.Add(1)
			go func(index int) {
				defer wg.Done()
				defer func() { <-sem }()

				if e.observer != nil {
					e.observer.OperationStarted(name)
				}
				outcome := op(ctx, index)
				if e.observer != nil {
					e.observer.OperationFinished(name, outcome)
				}
				acc.record(outcome)
			}(index)
		}
		wg.Wait()

		runMs := float64(time.Since(start)) / float64(time.Millisecond)
		var throughput float64
		if runMs > 0 {
			throughput = math.Round(float64(n) / runMs * 1000)
		}
		runThroughputs = append(runThroughputs, throughput)

		e.logger.Debug("run complete",
			zap.String("operation", name),
			zap.Int("run", run+1),
			zap.Float64("ops_per_sec", throughput))
	}

	successes, durations, errs := acc.snapshot()
	result.AvgOpsPerSec = math.Round(stats.Mean(runThroughputs))
	result.OpsPerSecStdDev = math.Round(stats.StdDev(runThroughputs))
	result.Latency = stats.Compute(durations)
	result.SuccessRate = 100 * float64(successes) / float64(e.cfg.Runs*n)
	result.Errors = errs
	return result
}

// accumulator owns the sample sets and counters for one Run invocation.
// Admitted goroutines are the only writers; a mutex covers them.
type accumulator struct {
	mu        sync.Mutex
	successes int
	durations []float64
	errors    []string
}

func (a *accumulator) record(o Outcome) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.durations = append(a.durations, o.DurationMs)
	if o.Success {
		a.successes++
		return
	}
	if o.Error == "" {
		return
	}
	for _, e := range a.errors {
		if e == o.Error {
			return
		}
	}
	// Distinct messages beyond the cap are dropped, not an error.
	if len(a.errors) < MaxDistinctErrors {
		a.errors = append(a.errors, o.Error)
	}
}

func (a *accumulator) snapshot() (successes int, durations []float64, errors []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.successes, a.durations, a.errors
}

package bench

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewExecutor_ContractViolations(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"zero concurrency", Config{Iterations: 10, Runs: 1, Concurrency: 0}},
		{"negative concurrency", Config{Iterations: 10, Runs: 1, Concurrency: -3}},
		{"zero runs", Config{Iterations: 10, Runs: 0, Concurrency: 5}},
		{"negative iterations", Config{Iterations: -1, Runs: 1, Concurrency: 5}},
	}

	for _, tc := range cases {
		if _, err := NewExecutor(tc.cfg, nil, nil); err == nil {
			t.Errorf("%s: expected error, got nil", tc.name)
		}
	}
}

func TestExecutor_Run_FixedLatency(t *testing.T) {
	op := func(ctx context.Context, index int) Outcome {
		return Outcome{Success: true, DurationMs: 50}
	}

	e, err := NewExecutor(Config{Iterations: 20, Runs: 1, Concurrency: 5}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := e.Run(context.Background(), "fixed", op)

	if result.SuccessRate != 100 {
		t.Errorf("success rate = %v, want 100", result.SuccessRate)
	}
	if result.Latency.MinMs != 50 || result.Latency.AvgMs != 50 || result.Latency.MaxMs != 50 {
		t.Errorf("latency = %+v, want all 50", result.Latency)
	}
	if len(result.Errors) != 0 {
		t.Errorf("errors = %v, want none", result.Errors)
	}
	if result.Iterations != 20 || result.Runs != 1 {
		t.Errorf("counts = %d/%d, want 20/1", result.Iterations, result.Runs)
	}
}

func TestExecutor_Run_AllFailures(t *testing.T) {
	op := func(ctx context.Context, index int) Outcome {
		return Outcome{Success: false, DurationMs: 1, Error: "boom"}
	}

	e, err := NewExecutor(Config{Iterations: 20, Runs: 1, Concurrency: 5}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := e.Run(context.Background(), "failing", op)

	if result.SuccessRate != 0 {
		t.Errorf("success rate = %v, want 0", result.SuccessRate)
	}
	if len(result.Errors) != 1 || result.Errors[0] != "boom" {
		t.Errorf("errors = %v, want [boom]", result.Errors)
	}
	// Failures still produce a complete latency record.
	if result.Latency.AvgMs != 1 {
		t.Errorf("latency avg = %v, want 1", result.Latency.AvgMs)
	}
}

func TestExecutor_Run_ErrorListCappedAndDeduplicated(t *testing.T) {
	op := Timed(func(ctx context.Context, index int) error {
		// 8 distinct messages across 16 calls; each repeated once.
		return fmt.Errorf("error-%d", index%8)
	})

	e, err := NewExecutor(Config{Iterations: 16, Runs: 1, Concurrency: 1}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := e.Run(context.Background(), "distinct-errors", op)

	if len(result.Errors) != MaxDistinctErrors {
		t.Fatalf("got %d errors, want %d", len(result.Errors), MaxDistinctErrors)
	}
	seen := map[string]bool{}
	for _, msg := range result.Errors {
		if seen[msg] {
			t.Errorf("duplicate error message %q", msg)
		}
		seen[msg] = true
	}
	// Concurrency 1 makes admission order deterministic: the first five
	// distinct messages are the ones retained.
	for i := 0; i < MaxDistinctErrors; i++ {
		want := fmt.Sprintf("error-%d", i)
		if result.Errors[i] != want {
			t.Errorf("errors[%d] = %q, want %q", i, result.Errors[i], want)
		}
	}
}

func TestExecutor_Run_ZeroIterations(t *testing.T) {
	called := false
	op := func(ctx context.Context, index int) Outcome {
		called = true
		return Outcome{Success: true}
	}

	e, err := NewExecutor(Config{Iterations: 0, Runs: 3, Concurrency: 5}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := e.Run(context.Background(), "empty", op)

	if called {
		t.Error("operation should never be invoked for zero iterations")
	}
	if result.SuccessRate != 0 || result.AvgOpsPerSec != 0 {
		t.Errorf("expected all-zero stats, got %+v", result)
	}
	if result.Latency.MinMs != 0 || result.Latency.AvgMs != 0 || result.Latency.MaxMs != 0 {
		t.Errorf("expected zero latency stats, got %+v", result.Latency)
	}
}

func TestExecutor_Run_ConcurrencyCeilingRespected(t *testing.T) {
	var inFlight, peak atomic.Int64

	op := func(ctx context.Context, index int) Outcome {
		cur := inFlight.Add(1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		inFlight.Add(-1)
		return Outcome{Success: true, DurationMs: 2}
	}

	const concurrency = 4
	e, err := NewExecutor(Config{Iterations: 40, Runs: 2, Concurrency: concurrency}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_ = e.Run(context.Background(), "ceiling", op)

	if p := peak.Load(); p > concurrency {
		t.Errorf("peak in-flight = %d, exceeds ceiling %d", p, concurrency)
	}
	if p := peak.Load(); p < 2 {
		t.Errorf("peak in-flight = %d, expected actual concurrency", p)
	}
}

func TestExecutor_Run_IndexCoversAllRuns(t *testing.T) {
	var mu sync.Mutex
	var indexes []int

	op := func(ctx context.Context, index int) Outcome {
		mu.Lock()
		indexes = append(indexes, index)
		mu.Unlock()
		return Outcome{Success: true, DurationMs: 1}
	}

	e, err := NewExecutor(Config{Iterations: 10, Runs: 3, Concurrency: 4}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_ = e.Run(context.Background(), "indexes", op)

	if len(indexes) != 30 {
		t.Fatalf("got %d invocations, want 30", len(indexes))
	}
	sort.Ints(indexes)
	for i, idx := range indexes {
		if idx != i {
			t.Fatalf("indexes not the contiguous range 0..29: %v", indexes)
		}
	}
}

func TestExecutor_Run_PartialFailures(t *testing.T) {
	op := func(ctx context.Context, index int) Outcome {
		if index%4 == 0 {
			return Outcome{Success: false, DurationMs: 1, Error: "quarter"}
		}
		return Outcome{Success: true, DurationMs: 1}
	}

	e, err := NewExecutor(Config{Iterations: 20, Runs: 1, Concurrency: 5}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := e.Run(context.Background(), "partial", op)

	if result.SuccessRate != 75 {
		t.Errorf("success rate = %v, want 75", result.SuccessRate)
	}
}

type countingObserver struct {
	started  atomic.Int64
	finished atomic.Int64
	failures atomic.Int64
}

func (o *countingObserver) OperationStarted(name string) { o.started.Add(1) }

func (o *countingObserver) OperationFinished(name string, outcome Outcome) {
	o.finished.Add(1)
	if !outcome.Success {
		o.failures.Add(1)
	}
}

func TestExecutor_Run_ObserverBalanced(t *testing.T) {
	op := func(ctx context.Context, index int) Outcome {
		if index%2 == 0 {
			return Outcome{Success: false, DurationMs: 1, Error: "even"}
		}
		return Outcome{Success: true, DurationMs: 1}
	}

	obs := &countingObserver{}
	e, err := NewExecutor(Config{Iterations: 10, Runs: 2, Concurrency: 3}, nil, obs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_ = e.Run(context.Background(), "observed", op)

	if obs.started.Load() != 20 || obs.finished.Load() != 20 {
		t.Errorf("observer saw %d/%d events, want 20/20", obs.started.Load(), obs.finished.Load())
	}
	if obs.failures.Load() != 10 {
		t.Errorf("observer saw %d failures, want 10", obs.failures.Load())
	}
}

func TestTimed(t *testing.T) {
	op := Timed(func(ctx context.Context, index int) error {
		time.Sleep(5 * time.Millisecond)
		if index == 1 {
			return errors.New("boom")
		}
		return nil
	})

	out := op(context.Background(), 0)
	if !out.Success || out.Error != "" {
		t.Errorf("expected success, got %+v", out)
	}
	if out.DurationMs < 4 {
		t.Errorf("duration = %v, expected at least the sleep", out.DurationMs)
	}

	out = op(context.Background(), 1)
	if out.Success || out.Error != "boom" {
		t.Errorf("expected boom failure, got %+v", out)
	}
	if out.DurationMs < 4 {
		t.Error("failure duration should still cover start to failure")
	}
}

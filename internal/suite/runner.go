// Package suite sequences a fixed list of named operations through the
// bounded executor and reduces repeated suite executions into stable summary
// statistics with cross-suite variance.
package suite

import (
	"context"
	"runtime"

	"github.com/FairForge/gauntlet/internal/bench"
	"go.uber.org/zap"
)

// NamedOperation pairs an operation with its report label.
type NamedOperation struct {
	Name string
	Op   bench.Operation
}

// MemorySnapshot records harness heap usage observed right after an
// operation's benchmark completed.
type MemorySnapshot struct {
	Operation   string  `json:"operation"`
	HeapAllocMB float64 `json:"heap_alloc_mb"`
}

// Runner executes a fixed ordered operation list, one operation at a time.
// Operations are independent: concurrency applies within an operation's own
// iterations, never across operations.
type Runner struct {
	executor *bench.Executor
	logger   *zap.Logger
}

// NewRunner builds a runner around one configured executor.
func NewRunner(executor *bench.Executor, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{executor: executor, logger: logger}
}

// Run executes every operation in order and returns results preserving the
// list order, plus a heap snapshot taken after each operation. A failing
// operation shows up as a low success rate in its result; it never aborts
// the suite.
func (r *Runner) Run(ctx context.Context, ops []NamedOperation) ([]bench.Result, []MemorySnapshot) {
	results := make([]bench.Result, 0, len(ops))
	snapshots := make([]MemorySnapshot, 0, len(ops))

	for _, no := range ops {
		r.logger.Info("benchmarking operation", zap.String("operation", no.Name))

		res := r.executor.Run(ctx, no.Name, no.Op)
		results = append(results, res)
		snapshots = append(snapshots, MemorySnapshot{
			Operation:   no.Name,
			HeapAllocMB: heapAllocMB(),
		})

		r.logger.Info("operation complete",
			zap.String("operation", no.Name),
			zap.Float64("ops_per_sec", res.AvgOpsPerSec),
			zap.Float64("success_rate", res.SuccessRate))
	}

	return results, snapshots
}

func heapAllocMB() float64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return float64(m.HeapAlloc) / (1024 * 1024)
}

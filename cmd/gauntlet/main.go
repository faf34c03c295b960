// cmd/gauntlet/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/FairForge/gauntlet/internal/baseline"
	"github.com/FairForge/gauntlet/internal/bench"
	"github.com/FairForge/gauntlet/internal/config"
	"github.com/FairForge/gauntlet/internal/metrics"
	"github.com/FairForge/gauntlet/internal/ops"
	"github.com/FairForge/gauntlet/internal/report"
	"github.com/FairForge/gauntlet/internal/store"
	"github.com/FairForge/gauntlet/internal/suite"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(os.Getenv("GAUNTLET_CONFIG"))
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	config.LoadFromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}

	// Cancel in-progress measurement on SIGINT/SIGTERM. Launched operations
	// still run to completion; only further work stops.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Info("shutdown requested, finishing in-flight work")
		cancel()
	}()

	// One shared store client for baseline and resource sampling; the
	// experiment runs store-less when no host is configured.
	var storeClient *store.Client
	if cfg.Store.Host != "" {
		storeClient, err = store.NewClient(cfg.Store)
		if err != nil {
			logger.Fatal("open store", zap.Error(err))
		}
		defer func() { _ = storeClient.Close() }()
		logger.Info("store connected", zap.String("host", cfg.Store.Host))
	} else {
		logger.Info("no store configured, skipping store baseline and size metrics")
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	opsClient, err := ops.NewClient(httpClient, cfg.Targets)
	if err != nil {
		logger.Fatal("build operation client", zap.Error(err))
	}

	executor, err := bench.NewExecutor(bench.Config{
		Iterations:  cfg.Iterations,
		Runs:        cfg.Runs,
		Concurrency: cfg.Concurrency,
	}, logger, metrics.NewCollector())
	if err != nil {
		logger.Fatal("build executor", zap.Error(err))
	}

	rep := report.New(cfg.Label, report.ConfigSnapshot{
		Iterations:  cfg.Iterations,
		Runs:        cfg.Runs,
		SuiteRuns:   cfg.SuiteRuns,
		Concurrency: cfg.Concurrency,
		Targets:     cfg.Targets,
	})

	// Baselines run once, before any suite.
	var pinger baseline.Pinger
	if storeClient != nil {
		pinger = storeClient
	}
	sampler, err := baseline.NewSampler(pinger, httpClient, cfg.Targets, cfg.BaselineSamples, logger)
	if err != nil {
		logger.Fatal("build baseline sampler", zap.Error(err))
	}
	logger.Info("measuring baselines", zap.Int("samples", cfg.BaselineSamples))
	rep.Baseline = sampler.Measure(ctx)

	operations := []suite.NamedOperation{
		{Name: "health-check", Op: opsClient.HealthCheck()},
		{Name: "object-write", Op: opsClient.ObjectWrite(make([]byte, cfg.PayloadBytes))},
		{Name: "object-read", Op: opsClient.ObjectRead()},
	}

	runner := suite.NewRunner(executor, logger)
	suites := make([][]bench.Result, 0, cfg.SuiteRuns)

	for i := 0; i < cfg.SuiteRuns; i++ {
		logger.Info("starting suite",
			zap.Int("suite", i+1),
			zap.Int("of", cfg.SuiteRuns))

		results, snapshots := runner.Run(ctx, operations)
		suites = append(suites, results)
		rep.MemorySnapshots = append(rep.MemorySnapshots, snapshots...)

		if storeClient != nil {
			if size, err := storeClient.SizeBytes(ctx); err != nil {
				logger.Warn("store size sample failed", zap.Error(err))
			} else {
				if size > rep.PeakStoreBytes {
					rep.PeakStoreBytes = size
				}
				rep.FinalStoreBytes = size
			}
		}
	}

	aggregated, err := suite.Aggregate(suites)
	if err != nil {
		logger.Fatal("aggregate suites", zap.Error(err))
	}
	rep.Results = aggregated

	path, err := rep.Save(cfg.ReportDir)
	if err != nil {
		logger.Fatal("save report", zap.Error(err))
	}
	logger.Info("report written", zap.String("path", path))

	for _, r := range aggregated {
		fmt.Printf("%-16s %8.0f ops/s (±%.0f)  p50=%.1fms p95=%.1fms p99=%.1fms  success=%.1f%%\n",
			r.Name, r.AvgOpsPerSec, r.OpsPerSecStdDev,
			r.Latency.P50Ms, r.Latency.P95Ms, r.Latency.P99Ms, r.SuccessRate)
	}
}

// Package orchestrator runs the local collectors in parallel with a timeout
// and graceful signal handling, and assembles their patches into one scan.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/collector"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/model"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/output"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/scan"
)

// Orchestrator coordinates all collectors and produces a Scan.
type Orchestrator struct {
	collectors []collector.Collector
	config     collector.Config
	progress   *output.Progress
	now        func() time.Time
}

// New creates an Orchestrator with the given collectors and config.
func New(collectors []collector.Collector, cfg collector.Config) *Orchestrator {
	return &Orchestrator{
		collectors: collectors,
		config:     cfg,
		progress:   output.NewVerboseProgress(!cfg.Quiet, cfg.Verbose),
		now:        time.Now,
	}
}

// WithProgress replaces the progress reporter.
func (o *Orchestrator) WithProgress(p *output.Progress) *Orchestrator {
	o.progress = p
	return o
}

// outcome is one collector's result, kept at its registration index.
type outcome struct {
	patch collector.Patch
	err   error
}

// Run executes all collectors in parallel with timeout and signal handling.
// Patches are applied in registration order so the scan does not depend on
// scheduling. A failing collector is recorded in scan.issues; Run fails only
// when no collector succeeded.
func (o *Orchestrator) Run(ctx context.Context) (*model.Scan, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	timeout := o.config.Timeout
	if timeout <= 0 {
		timeout = collector.DefaultConfig().Timeout
	}
	ctx, timeoutCancel := context.WithTimeout(ctx, timeout)
	defer timeoutCancel()

	// Signal handling, started after all context derivations
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			o.progress.Log("Received %v, shutting down gracefully (partial scan)...", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	defer signal.Stop(sigCh)

	o.progress.Log("Starting collection: collectors=%d, sample=%s", len(o.collectors), o.config.SampleInterval)
	o.progress.Debug("timeout=%s sysroot=%s procroot=%s", timeout, o.config.SysRoot, o.config.ProcRoot)
	start := o.now()

	results := make([]outcome, len(o.collectors))
	var wg sync.WaitGroup
	for i, c := range o.collectors {
		wg.Add(1)
		go func(i int, c collector.Collector) {
			defer wg.Done()

			name := c.Name()
			o.progress.Log("  [%s] collecting...", name)
			began := time.Now()

			patch, err := c.Collect(ctx, o.config)
			elapsed := time.Since(began).Round(time.Millisecond)

			switch {
			case err != nil && ctx.Err() != nil:
				o.progress.Log("  [%s] interrupted (%s)", name, elapsed)
			case err != nil:
				o.progress.Log("  [%s] error: %v (%s)", name, err, elapsed)
			case patch == nil:
				err = fmt.Errorf("no data")
				o.progress.Log("  [%s] no data (%s)", name, elapsed)
			default:
				o.progress.Log("  [%s] done (%s)", name, elapsed)
			}
			results[i] = outcome{patch: patch, err: err}
		}(i, c)
	}
	wg.Wait()

	s := &model.Scan{}
	succeeded := 0
	for i, r := range results {
		if r.err != nil {
			s.Issues = append(s.Issues, fmt.Sprintf("%s collector failed: %v", o.collectors[i].Name(), r.err))
			continue
		}
		o.progress.Debug("  applying %s patch", o.collectors[i].Name())
		r.patch(s)
		succeeded++
	}

	if len(o.collectors) > 0 && succeeded == 0 {
		return nil, fmt.Errorf("all %d collectors failed", len(o.collectors))
	}

	end := o.now()
	scan.Normalize(s, end)
	s.ScanDurationSeconds = model.Float(float64(end.Sub(start).Milliseconds()) / 1000)

	o.progress.Log("Collection complete. %d/%d collectors succeeded, issues=%d",
		succeeded, len(o.collectors), len(s.Issues))
	return s, nil
}

// RegisterCollectors builds the standard collector set, reading the live
// machine through gopsutil.
func RegisterCollectors(cfg collector.Config) []collector.Collector {
	src := collector.GopsutilSource()
	return []collector.Collector{
		collector.NewCPUCollector(src),
		collector.NewGPUCollector(),
		collector.NewMemoryCollector(src),
		collector.NewStorageCollector(src),
		collector.NewSystemCollector(src),
		collector.NewNetworkCollector(src),
	}
}

// BuildScan runs all registered collectors and produces a scan.
// This is the high-level entry point used by the CLI.
func BuildScan(ctx context.Context, cfg collector.Config) (*model.Scan, error) {
	collectors := RegisterCollectors(cfg)
	if len(collectors) == 0 {
		return nil, fmt.Errorf("no collectors available")
	}

	orch := New(collectors, cfg)
	return orch.Run(ctx)
}

package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/collector"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/model"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/output"
)

// mockCollector implements collector.Collector for testing.
type mockCollector struct {
	name  string
	patch collector.Patch
	err   error
	delay time.Duration
}

func (m *mockCollector) Name() string { return m.name }

func (m *mockCollector) Collect(ctx context.Context, cfg collector.Config) (collector.Patch, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.patch, nil
}

func quiet(collectors []collector.Collector, cfg collector.Config) *Orchestrator {
	cfg.Quiet = true
	return New(collectors, cfg)
}

func TestOrchestratorRunBasic(t *testing.T) {
	collectors := []collector.Collector{
		&mockCollector{name: "cpu", patch: func(s *model.Scan) { s.CPU = &model.CPU{ModelName: "Ryzen 5 5600X"} }},
		&mockCollector{name: "memory", patch: func(s *model.Scan) { s.RAM = &model.RAM{TotalGB: model.Float(32)} }},
	}

	s, err := quiet(collectors, collector.Config{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.CPU == nil || s.CPU.ModelName != "Ryzen 5 5600X" {
		t.Errorf("cpu = %+v", s.CPU)
	}
	if s.RAM == nil || *s.RAM.TotalGB != 32 {
		t.Errorf("ram = %+v", s.RAM)
	}
	if s.ScanID == "" || s.Timestamp == "" {
		t.Errorf("identity not assigned: id=%q ts=%q", s.ScanID, s.Timestamp)
	}
	if s.ScanDurationSeconds == nil {
		t.Error("duration not recorded")
	}
	if len(s.Issues) != 0 {
		t.Errorf("issues = %v", s.Issues)
	}
}

func TestOrchestratorAppliesPatchesInRegistrationOrder(t *testing.T) {
	// The first collector finishes last; its patch must still apply first.
	collectors := []collector.Collector{
		&mockCollector{name: "slow", delay: 30 * time.Millisecond, patch: func(s *model.Scan) {
			s.Issues = append(s.Issues, "slow")
			s.Network.ConnectionType = "slow"
		}},
		&mockCollector{name: "fast", patch: func(s *model.Scan) {
			s.Issues = append(s.Issues, "fast")
			s.Network.ConnectionType = "fast"
		}},
	}

	for i := 0; i < 5; i++ {
		s, err := quiet(collectors, collector.Config{}).Run(context.Background())
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if diff := cmp.Diff([]string{"slow", "fast"}, s.Issues); diff != "" {
			t.Fatalf("patch order (-want +got):\n%s", diff)
		}
		if s.Network.ConnectionType != "fast" {
			t.Fatalf("later patch should win, got %q", s.Network.ConnectionType)
		}
	}
}

func TestOrchestratorRecordsFailures(t *testing.T) {
	collectors := []collector.Collector{
		&mockCollector{name: "gpu", err: errors.New("nvidia-smi not found")},
		&mockCollector{name: "cpu", patch: func(s *model.Scan) { s.CPU = &model.CPU{ModelName: "x"} }},
		&mockCollector{name: "empty"},
	}

	s, err := quiet(collectors, collector.Config{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{
		"gpu collector failed: nvidia-smi not found",
		"empty collector failed: no data",
	}
	if diff := cmp.Diff(want, s.Issues); diff != "" {
		t.Errorf("issues (-want +got):\n%s", diff)
	}
	if s.GPU != nil {
		t.Error("failed collector must not leave data behind")
	}
}

func TestOrchestratorAllFail(t *testing.T) {
	collectors := []collector.Collector{
		&mockCollector{name: "a", err: errors.New("boom")},
		&mockCollector{name: "b", err: errors.New("boom")},
	}
	if _, err := quiet(collectors, collector.Config{}).Run(context.Background()); err == nil {
		t.Error("expected error when every collector fails")
	}
}

func TestOrchestratorTimeout(t *testing.T) {
	collectors := []collector.Collector{
		&mockCollector{name: "hung", delay: 10 * time.Second, patch: func(*model.Scan) {}},
		&mockCollector{name: "cpu", patch: func(s *model.Scan) { s.CPU = &model.CPU{ModelName: "x"} }},
	}

	start := time.Now()
	s, err := quiet(collectors, collector.Config{Timeout: 50 * time.Millisecond}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("timeout not honoured: %s", elapsed)
	}
	if len(s.Issues) != 1 || !strings.HasPrefix(s.Issues[0], "hung collector failed: context deadline exceeded") {
		t.Errorf("issues = %v", s.Issues)
	}
}

func TestOrchestratorProgress(t *testing.T) {
	var buf bytes.Buffer
	collectors := []collector.Collector{
		&mockCollector{name: "cpu", patch: func(*model.Scan) {}},
		&mockCollector{name: "gpu", err: errors.New("missing")},
	}
	o := New(collectors, collector.Config{}).WithProgress(output.NewProgressTo(&buf, true))
	if _, err := o.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{"[cpu] collecting...", "[cpu] done", "[gpu] error: missing", "1/2 collectors succeeded"} {
		if !strings.Contains(out, want) {
			t.Errorf("progress missing %q:\n%s", want, out)
		}
	}
}

func TestRegisterCollectors(t *testing.T) {
	got := RegisterCollectors(collector.DefaultConfig())
	names := make([]string, len(got))
	for i, c := range got {
		names[i] = c.Name()
	}
	want := []string{"cpu", "gpu", "memory", "storage", "system", "network"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("collectors (-want +got):\n%s", diff)
	}
}

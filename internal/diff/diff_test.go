package diff

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/demo"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/engine"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/model"
)

func bottleneck(id string, sev model.Severity) model.Bottleneck {
	return model.Bottleneck{ID: id, Severity: sev, Title: id}
}

func TestCompareReports(t *testing.T) {
	baseline := &model.Report{
		ScanID: "before",
		Score: model.PerformanceScore{
			Total: 60, Grade: "C",
			Breakdown: model.ScoreBreakdown{CPU: 20, GPU: 20, RAM: 4, Storage: 10, Settings: 6},
		},
		Bottlenecks: []model.Bottleneck{
			bottleneck("settings-xmp-disabled", model.SeverityCritical),
			bottleneck("storage-boot-full", model.SeverityInfo),
			bottleneck("thermal-cpu", model.SeverityInfo),
		},
	}
	current := &model.Report{
		ScanID: "after",
		Score: model.PerformanceScore{
			Total: 74, Grade: "B",
			Breakdown: model.ScoreBreakdown{CPU: 20, GPU: 20, RAM: 16, Storage: 9, Settings: 9},
		},
		Bottlenecks: []model.Bottleneck{
			bottleneck("thermal-cpu", model.SeverityCritical),
			bottleneck("storage-boot-full", model.SeverityInfo),
			bottleneck("gpu-vram-pressure", model.SeverityWarning),
		},
	}

	diff := Compare(baseline, current)

	if diff.ScoreDelta != 14 {
		t.Errorf("score delta = %d, want 14", diff.ScoreDelta)
	}
	if len(diff.Resolved) != 1 || diff.Resolved[0].ID != "settings-xmp-disabled" {
		t.Errorf("resolved = %+v", diff.Resolved)
	}
	if len(diff.Introduced) != 1 || diff.Introduced[0].ID != "gpu-vram-pressure" {
		t.Errorf("introduced = %+v", diff.Introduced)
	}
	if len(diff.SeverityChanges) != 1 || diff.SeverityChanges[0].Direction != "regression" {
		t.Errorf("severity changes = %+v", diff.SeverityChanges)
	}

	byCategory := map[string]MetricChange{}
	for _, c := range diff.Changes {
		byCategory[c.Category] = c
	}
	if _, ok := byCategory["cpu"]; ok {
		t.Error("unchanged cpu score should be skipped")
	}
	if ram := byCategory["ram"]; ram.Direction != "improvement" || ram.Significance != "high" {
		t.Errorf("ram change = %+v, want high improvement", ram)
	}
	if st := byCategory["storage"]; st.Direction != "regression" || st.Significance != "low" {
		t.Errorf("storage change = %+v, want low regression", st)
	}

	// ram + settings + resolved xmp = 3; storage + introduced vram + thermal severity = 3
	if diff.Improvements != 3 || diff.Regressions != 3 {
		t.Errorf("improvements = %d, regressions = %d, want 3/3", diff.Improvements, diff.Regressions)
	}
}

func TestCompareIdentical(t *testing.T) {
	report, err := engine.Analyze(demo.Scan())
	if err != nil {
		t.Fatal(err)
	}

	diff := Compare(report, report)
	if diff.ScoreDelta != 0 {
		t.Errorf("score delta = %d, want 0", diff.ScoreDelta)
	}
	if diff.Regressions != 0 || diff.Improvements != 0 {
		t.Errorf("regressions = %d, improvements = %d, want 0", diff.Regressions, diff.Improvements)
	}
	if len(diff.Changes) != 0 || len(diff.Resolved) != 0 || len(diff.Introduced) != 0 {
		t.Errorf("identical reports produced changes: %+v", diff)
	}
}

func TestCompareZeroBaseline(t *testing.T) {
	baseline := &model.Report{Score: model.PerformanceScore{Breakdown: model.ScoreBreakdown{Settings: 0}}}
	current := &model.Report{Score: model.PerformanceScore{Breakdown: model.ScoreBreakdown{Settings: 8}}}

	diff := Compare(baseline, current)
	if len(diff.Changes) != 1 {
		t.Fatalf("changes = %+v", diff.Changes)
	}
	if c := diff.Changes[0]; c.DeltaPct != 100 || c.Direction != "improvement" {
		t.Errorf("change = %+v", c)
	}
}

func TestLoadReport(t *testing.T) {
	report, err := engine.Analyze(demo.Scan())
	if err != nil {
		t.Fatal(err)
	}
	data, _ := json.Marshal(report)
	path := filepath.Join(t.TempDir(), "report.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadReport(path)
	if err != nil {
		t.Fatalf("LoadReport: %v", err)
	}
	if got.Score != report.Score {
		t.Errorf("score = %+v, want %+v", got.Score, report.Score)
	}

	if _, err := LoadReport(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFormatDiff(t *testing.T) {
	d := &DiffReport{
		Baseline:      "before",
		Current:       "after",
		BaselineGrade: "C",
		CurrentGrade:  "B",
		ScoreDelta:    12,
		Regressions:   1,
		Improvements:  2,
		Resolved:      []model.Bottleneck{bottleneck("XMP disabled", model.SeverityCritical)},
		Introduced:    []model.Bottleneck{bottleneck("VRAM pressure", model.SeverityWarning)},
		Changes: []MetricChange{
			{Category: "ram", Metric: "score", OldValue: 4, NewValue: 16, DeltaPct: 300, Direction: "improvement", Significance: "high"},
		},
	}

	out := FormatDiff(d)
	for _, want := range []string{
		"=== Report Diff ===",
		"Score: +12 ↑ (grade C → B)",
		"[NEW WARNING] VRAM pressure",
		"[RESOLVED] XMP disabled",
		"[HIGH] ram/score: 4 → 16 (+300.0%)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestAddChangeDirection(t *testing.T) {
	tests := []struct {
		name     string
		old, cur float64
		want     string // "" means no change recorded
	}{
		{"score drop", 20, 10, "regression"},
		{"score gain", 10, 20, "improvement"},
		{"small gain", 20, 21, "unchanged"},
		{"below noise floor", 10, 10.4, ""},
		{"from zero", 0, 5, "improvement"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := &DiffReport{}
			addChange(d, "ram", "score", tc.old, tc.cur)
			if tc.want == "" {
				if len(d.Changes) != 0 {
					t.Errorf("expected no change, got %+v", d.Changes)
				}
				return
			}
			if len(d.Changes) != 1 {
				t.Fatalf("got %d changes, want 1", len(d.Changes))
			}
			if got := d.Changes[0].Direction; got != tc.want {
				t.Errorf("direction = %q, want %q", got, tc.want)
			}
		})
	}
}

package output

import (
	"strings"
	"testing"
	"time"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/model"
)

func TestFormatReport(t *testing.T) {
	r := sampleReport()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	r.AnalyzedAt = &at

	out := FormatReport(r)

	for _, want := range []string{
		"Scan: scan-1",
		"Analyzed: 2025-03-01 12:00:00 UTC",
		"Score: 61/100 (C) Fair",
		"CPU 14/25  GPU 18/25  RAM 11/20  Storage 14/15  Settings 4/15",
		"Bottlenecks (2):",
		"✗ [CRITICAL] XMP/EXPO is disabled",
		"Fix: Enable XMP in BIOS (Easy, Free)",
		"• [INFO] GPU scheduling is off",
		"  Free fixes\n    1. Enable XMP/EXPO [Free]",
		"  Upgrades\n    7. Upgrade to RX 7800 XT [$449 - $549]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Cheap fixes") {
		t.Error("empty tiers should not be printed")
	}
	if strings.Index(out, "[CRITICAL]") > strings.Index(out, "[INFO]") {
		t.Error("bottlenecks should keep report order")
	}
}

func TestFormatReportClean(t *testing.T) {
	out := FormatReport(&model.Report{Score: model.PerformanceScore{Total: 100, Grade: "A"}})
	if !strings.Contains(out, "No bottlenecks detected.") {
		t.Errorf("got:\n%s", out)
	}
	if strings.Contains(out, "Recommendations:") {
		t.Error("no recommendations section expected")
	}
}

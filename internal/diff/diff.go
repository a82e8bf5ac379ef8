// Package diff compares two pcdiag reports, typically of the same machine
// before and after applying recommendations, and lists what got better.
package diff

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/model"
)

// DiffReport contains the comparison between two reports.
type DiffReport struct {
	Baseline        string             `json:"baseline"`
	Current         string             `json:"current"`
	BaselineGrade   string             `json:"baseline_grade"`
	CurrentGrade    string             `json:"current_grade"`
	ScoreDelta      int                `json:"score_delta"` // positive = improved
	Changes         []MetricChange     `json:"changes"`
	Resolved        []model.Bottleneck `json:"resolved"`
	Introduced      []model.Bottleneck `json:"introduced"`
	SeverityChanges []SeverityChange   `json:"severity_changes"`
	Regressions     int                `json:"regressions"`
	Improvements    int                `json:"improvements"`
}

// MetricChange represents a single subsystem score difference.
type MetricChange struct {
	Category     string  `json:"category"`
	Metric       string  `json:"metric"`
	OldValue     float64 `json:"old_value"`
	NewValue     float64 `json:"new_value"`
	Delta        float64 `json:"delta"`
	DeltaPct     float64 `json:"delta_pct"`
	Direction    string  `json:"direction"`    // "regression", "improvement", "unchanged"
	Significance string  `json:"significance"` // "high", "medium", "low"
}

// SeverityChange is a bottleneck present in both reports at different severities.
type SeverityChange struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Old       model.Severity `json:"old"`
	New       model.Severity `json:"new"`
	Direction string         `json:"direction"`
}

// LoadReport reads and parses a JSON report file.
func LoadReport(path string) (*model.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var report model.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &report, nil
}

// Compare computes differences between two reports.
func Compare(baseline, current *model.Report) *DiffReport {
	diff := &DiffReport{
		Baseline:        label(baseline),
		Current:         label(current),
		BaselineGrade:   baseline.Score.Grade,
		CurrentGrade:    current.Score.Grade,
		ScoreDelta:      current.Score.Total - baseline.Score.Total,
		Changes:         []MetricChange{},
		Resolved:        []model.Bottleneck{},
		Introduced:      []model.Bottleneck{},
		SeverityChanges: []SeverityChange{},
	}

	// Subsystem scores: higher is better.
	ob, nb := baseline.Score.Breakdown, current.Score.Breakdown
	addChange(diff, "cpu", "score", float64(ob.CPU), float64(nb.CPU))
	addChange(diff, "gpu", "score", float64(ob.GPU), float64(nb.GPU))
	addChange(diff, "ram", "score", float64(ob.RAM), float64(nb.RAM))
	addChange(diff, "storage", "score", float64(ob.Storage), float64(nb.Storage))
	addChange(diff, "settings", "score", float64(ob.Settings), float64(nb.Settings))

	compareBottlenecks(diff, baseline.Bottlenecks, current.Bottlenecks)

	// Tally regressions vs improvements
	for _, c := range diff.Changes {
		switch c.Direction {
		case "regression":
			diff.Regressions++
		case "improvement":
			diff.Improvements++
		}
	}
	for _, c := range diff.SeverityChanges {
		switch c.Direction {
		case "regression":
			diff.Regressions++
		case "improvement":
			diff.Improvements++
		}
	}
	diff.Regressions += len(diff.Introduced)
	diff.Improvements += len(diff.Resolved)

	return diff
}

func label(r *model.Report) string {
	id := r.ScanID
	if id == "" {
		id = "unnamed"
	}
	if r.AnalyzedAt != nil {
		return id + " (" + r.AnalyzedAt.UTC().Format(time.RFC3339) + ")"
	}
	return id
}

// addChange records a subsystem score change. Scores are higher-is-better, so
// a drop of more than 5% is a regression.
func addChange(diff *DiffReport, category, metric string, oldVal, newVal float64) {
	delta := newVal - oldVal
	deltaPct := 0.0
	if oldVal != 0 {
		deltaPct = (delta / math.Abs(oldVal)) * 100
	} else if delta != 0 {
		deltaPct = math.Copysign(100, delta)
	}

	// Skip negligible changes
	if math.Abs(delta) < 0.5 {
		return
	}

	direction := "unchanged"
	if deltaPct < -5 {
		direction = "regression"
	} else if deltaPct > 5 {
		direction = "improvement"
	}

	significance := "low"
	absPct := math.Abs(deltaPct)
	if absPct >= 50 {
		significance = "high"
	} else if absPct >= 20 {
		significance = "medium"
	}

	diff.Changes = append(diff.Changes, MetricChange{
		Category:     category,
		Metric:       metric,
		OldValue:     oldVal,
		NewValue:     newVal,
		Delta:        delta,
		DeltaPct:     deltaPct,
		Direction:    direction,
		Significance: significance,
	})
}

// compareBottlenecks matches findings by id. Output keeps each report's
// severity order.
func compareBottlenecks(diff *DiffReport, old, cur []model.Bottleneck) {
	oldByID := make(map[string]model.Bottleneck, len(old))
	for _, b := range old {
		oldByID[b.ID] = b
	}
	curByID := make(map[string]model.Bottleneck, len(cur))
	for _, b := range cur {
		curByID[b.ID] = b
	}

	for _, b := range old {
		if _, ok := curByID[b.ID]; !ok {
			diff.Resolved = append(diff.Resolved, b)
		}
	}
	for _, b := range cur {
		prev, ok := oldByID[b.ID]
		if !ok {
			diff.Introduced = append(diff.Introduced, b)
			continue
		}
		if prev.Severity == b.Severity {
			continue
		}
		direction := "improvement"
		if b.Severity.Rank() < prev.Severity.Rank() {
			direction = "regression"
		}
		diff.SeverityChanges = append(diff.SeverityChanges, SeverityChange{
			ID: b.ID, Title: b.Title, Old: prev.Severity, New: b.Severity, Direction: direction,
		})
	}
	sort.SliceStable(diff.SeverityChanges, func(i, j int) bool {
		return diff.SeverityChanges[i].New.Rank() < diff.SeverityChanges[j].New.Rank()
	})
}

// FormatDiff returns a human-readable diff summary.
func FormatDiff(d *DiffReport) string {
	var sb strings.Builder

	sb.WriteString("=== Report Diff ===\n")
	sb.WriteString(fmt.Sprintf("Baseline: %s\n", d.Baseline))
	sb.WriteString(fmt.Sprintf("Current:  %s\n\n", d.Current))

	symbol := "→"
	if d.ScoreDelta > 0 {
		symbol = "↑"
	} else if d.ScoreDelta < 0 {
		symbol = "↓"
	}
	sb.WriteString(fmt.Sprintf("Score: %+d %s (grade %s → %s)\n", d.ScoreDelta, symbol, d.BaselineGrade, d.CurrentGrade))
	sb.WriteString(fmt.Sprintf("Regressions: %d, Improvements: %d\n\n", d.Regressions, d.Improvements))

	if len(d.Introduced) > 0 || hasDirection(d, "regression") {
		sb.WriteString("⚠ Regressions:\n")
		for _, b := range d.Introduced {
			sb.WriteString(fmt.Sprintf("  [NEW %s] %s\n", strings.ToUpper(string(b.Severity)), b.Title))
		}
		for _, c := range d.SeverityChanges {
			if c.Direction == "regression" {
				sb.WriteString(fmt.Sprintf("  [%s → %s] %s\n", strings.ToUpper(string(c.Old)), strings.ToUpper(string(c.New)), c.Title))
			}
		}
		writeChanges(&sb, d, "regression")
		sb.WriteString("\n")
	}

	if len(d.Resolved) > 0 || hasDirection(d, "improvement") {
		sb.WriteString("✓ Improvements:\n")
		for _, b := range d.Resolved {
			sb.WriteString(fmt.Sprintf("  [RESOLVED] %s\n", b.Title))
		}
		for _, c := range d.SeverityChanges {
			if c.Direction == "improvement" {
				sb.WriteString(fmt.Sprintf("  [%s → %s] %s\n", strings.ToUpper(string(c.Old)), strings.ToUpper(string(c.New)), c.Title))
			}
		}
		writeChanges(&sb, d, "improvement")
	}

	return sb.String()
}

func hasDirection(d *DiffReport, direction string) bool {
	for _, c := range d.Changes {
		if c.Direction == direction {
			return true
		}
	}
	for _, c := range d.SeverityChanges {
		if c.Direction == direction {
			return true
		}
	}
	return false
}

func writeChanges(sb *strings.Builder, d *DiffReport, direction string) {
	for _, c := range d.Changes {
		if c.Direction == direction {
			sb.WriteString(fmt.Sprintf("  [%s] %s/%s: %.0f → %.0f (%+.1f%%)\n",
				strings.ToUpper(c.Significance), c.Category, c.Metric,
				c.OldValue, c.NewValue, c.DeltaPct))
		}
	}
}

package output

import (
	"fmt"
	"strings"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/model"
)

var severityMarks = map[model.Severity]string{
	model.SeverityCritical: "✗",
	model.SeverityWarning:  "⚠",
	model.SeverityInfo:     "•",
	model.SeverityGood:     "✓",
}

var tierTitles = []struct {
	tier  model.RecommendationTier
	title string
}{
	{model.TierFree, "Free fixes"},
	{model.TierCheap, "Cheap fixes"},
	{model.TierUpgrade, "Upgrades"},
}

// FormatReport renders a report for the terminal: score, bottlenecks in
// severity order, then recommendations grouped by tier.
func FormatReport(r *model.Report) string {
	var sb strings.Builder

	sb.WriteString("=== PC Performance Report ===\n")
	if r.ScanID != "" {
		sb.WriteString(fmt.Sprintf("Scan: %s\n", r.ScanID))
	}
	if r.AnalyzedAt != nil {
		sb.WriteString(fmt.Sprintf("Analyzed: %s\n", r.AnalyzedAt.UTC().Format("2006-01-02 15:04:05 MST")))
	}

	s := r.Score
	sb.WriteString(fmt.Sprintf("\nScore: %d/100 (%s) %s\n", s.Total, s.Grade, s.GradeDescription))
	b := s.Breakdown
	sb.WriteString(fmt.Sprintf("  CPU %d/%d  GPU %d/%d  RAM %d/%d  Storage %d/%d  Settings %d/%d\n\n",
		b.CPU, model.MaxCPUScore, b.GPU, model.MaxGPUScore, b.RAM, model.MaxRAMScore,
		b.Storage, model.MaxStorageScore, b.Settings, model.MaxSettingsScore))

	if len(r.Bottlenecks) == 0 {
		sb.WriteString("No bottlenecks detected.\n")
	} else {
		sb.WriteString(fmt.Sprintf("Bottlenecks (%d):\n", len(r.Bottlenecks)))
		for _, bn := range r.Bottlenecks {
			mark := severityMarks[bn.Severity]
			if mark == "" {
				mark = "?"
			}
			sb.WriteString(fmt.Sprintf("  %s [%s] %s\n", mark, strings.ToUpper(string(bn.Severity)), bn.Title))
			if bn.Description != "" {
				sb.WriteString(fmt.Sprintf("      %s\n", bn.Description))
			}
			if bn.Fix != "" {
				sb.WriteString(fmt.Sprintf("      Fix: %s (%s, %s)\n", bn.Fix, bn.Difficulty, bn.EstimatedCost))
			}
		}
	}

	if len(r.Recommendations) > 0 {
		sb.WriteString("\nRecommendations:\n")
		for _, t := range tierTitles {
			first := true
			for _, rec := range r.Recommendations {
				if rec.Tier != t.tier {
					continue
				}
				if first {
					sb.WriteString(fmt.Sprintf("  %s\n", t.title))
					first = false
				}
				line := fmt.Sprintf("    %d. %s", rec.Priority, rec.Title)
				if rec.EstimatedCost != "" {
					line += fmt.Sprintf(" [%s]", rec.EstimatedCost)
				}
				sb.WriteString(line + "\n")
				if rec.Description != "" {
					sb.WriteString(fmt.Sprintf("       %s\n", rec.Description))
				}
			}
		}
	}

	return sb.String()
}

package engine

import (
	"fmt"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/catalog"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/model"
)

func evaluateThermal(s *model.Scan, _, _ *catalog.Entry) []model.Bottleneck {
	var out []model.Bottleneck

	if temp, ok := value(s.CPU.CurrentTempC); ok && temp > 75 {
		b := model.Bottleneck{
			ID:            IDThermalCPU,
			Category:      model.CategoryThermal,
			Severity:      model.SeverityInfo,
			Title:         "CPU is running warm",
			Description:   fmt.Sprintf("CPU temperature is %.0f°C.", temp),
			Impact:        "Little thermal headroom left before the CPU lowers its clocks",
			Fix:           "Clean dust from the cooler and case filters and check the fan curve.",
			Difficulty:    model.DifficultyEasy,
			EstimatedCost: "$0",
		}
		if temp > 85 {
			b.Severity = model.SeverityCritical
			b.Title = "CPU is overheating"
			b.Impact = "The CPU throttles its clocks, causing frame drops and stutter"
			b.Fix = "Clean the cooler, replace the thermal paste and make sure the cooler is mounted properly. A better cooler may be needed."
			b.Difficulty = model.DifficultyMedium
			b.EstimatedCost = "$0 - $80"
		}
		out = append(out, b)
	}

	if temp, ok := value(s.GPU.CurrentTempC); ok && temp > 80 {
		b := model.Bottleneck{
			ID:            IDThermalGPU,
			Category:      model.CategoryThermal,
			Severity:      model.SeverityInfo,
			Title:         "GPU is running warm",
			Description:   fmt.Sprintf("GPU temperature is %.0f°C.", temp),
			Impact:        "Boost clocks start to drop as the card approaches its thermal limit",
			Fix:           "Improve case airflow and consider a more aggressive fan curve.",
			Difficulty:    model.DifficultyEasy,
			EstimatedCost: "$0",
		}
		if temp > 85 {
			b.Severity = model.SeverityWarning
			b.Title = "GPU is running hot"
			b.Impact = "The GPU lowers its clocks to stay within its thermal limit"
			b.Fix = "Clean the GPU heatsink, improve case airflow with more intake fans, and raise the fan curve."
			b.EstimatedCost = "$0 - $40"
		}
		out = append(out, b)
	}
	return out
}

package engine

import (
	"fmt"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/catalog"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/model"
)

func evaluateCPU(s *model.Scan, cpu, gpu *catalog.Entry) []model.Bottleneck {
	var out []model.Bottleneck

	avg, hasAvg := s.CPU.AverageUtilization()
	gpuUtil, hasGPU := value(s.GPU.UtilizationPct)
	if hasAvg && hasGPU {
		// Stricter band first; the bands are exclusive.
		switch {
		case avg > 90 && gpuUtil < 60:
			out = append(out, cpuBound(model.SeverityCritical, avg, gpuUtil))
		case avg > 80 && gpuUtil < 70:
			out = append(out, cpuBound(model.SeverityWarning, avg, gpuUtil))
		}
	}

	if gap, ok := tierGap(gpu, cpu); ok && gap >= 2 {
		out = append(out, model.Bottleneck{
			ID:       IDCPUTierMismatch,
			Category: model.CategoryCPU,
			Severity: model.SeverityWarning,
			Title:    fmt.Sprintf("CPU is %d tiers below the GPU", gap),
			Description: fmt.Sprintf("%s (%s tier) is paired with %s (%s tier). The CPU cannot prepare frames fast enough to keep the GPU busy.",
				cpu.Name, cpu.Tier, gpu.Name, gpu.Tier),
			Impact:        "Part of the GPU's performance is never used, especially at 1080p and in high refresh rate games",
			Fix:           "Upgrade to a CPU closer to the GPU's class, or play at higher resolutions where the GPU does more of the work.",
			Difficulty:    model.DifficultyHard,
			EstimatedCost: "$150 - $450",
		})
	}

	if current, boost, ok := boostShortfall(s.CPU); ok {
		out = append(out, model.Bottleneck{
			ID:       IDCPUBoostClock,
			Category: model.CategoryCPU,
			Severity: model.SeverityWarning,
			Title:    "CPU is not reaching its boost clock",
			Description: fmt.Sprintf("Under load the CPU runs at %.2f GHz, %.0f%% of its rated %.2f GHz boost clock.",
				current, current/boost*100, boost),
			Impact:        "Lower single-thread performance than the chip is rated for",
			Fix:           "Switch to a High Performance power plan, check CPU temperatures, and make sure BIOS power limits are not set below stock.",
			Difficulty:    model.DifficultyEasy,
			EstimatedCost: "$0",
		})
	}
	return out
}

func cpuBound(sev model.Severity, avg, gpuUtil float64) model.Bottleneck {
	return model.Bottleneck{
		ID:       IDCPUBottleneck,
		Category: model.CategoryCPU,
		Severity: sev,
		Title:    "CPU is holding back the GPU",
		Description: fmt.Sprintf("Average CPU utilization is %.0f%% while the GPU is only %.0f%% busy. The GPU is waiting on the CPU for frames.",
			avg, gpuUtil),
		Impact:        "Lower and less stable frame rates in CPU-heavy games",
		Fix:           "Close background applications, raise resolution or graphics quality to move work to the GPU, or upgrade the CPU.",
		Difficulty:    model.DifficultyMedium,
		EstimatedCost: "$0 - $450",
	}
}

// boostShortfall reports a CPU running below 85% of its rated boost clock
// while busier than 50% on average. Both clocks must be present and positive.
func boostShortfall(c *model.CPU) (current, boost float64, ok bool) {
	current, hasCurrent := value(c.CurrentClockGHz)
	boost, hasBoost := value(c.MaxBoostClockGHz)
	if !hasCurrent || !hasBoost || current <= 0 || boost <= 0 {
		return 0, 0, false
	}
	avg, hasAvg := c.AverageUtilization()
	if !hasAvg || avg <= 50 {
		return 0, 0, false
	}
	return current, boost, current < 0.85*boost
}

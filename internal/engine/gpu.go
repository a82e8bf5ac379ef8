package engine

import (
	"fmt"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/catalog"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/model"
)

func evaluateGPU(s *model.Scan, cpu, gpu *catalog.Entry) []model.Bottleneck {
	var out []model.Bottleneck

	gpuUtil, hasGPU := value(s.GPU.UtilizationPct)
	avg, hasAvg := s.CPU.AverageUtilization()
	if hasGPU && hasAvg && gpuUtil > 95 && avg < 60 {
		out = append(out, model.Bottleneck{
			ID:       IDGPUBound,
			Category: model.CategoryGPU,
			Severity: model.SeverityInfo,
			Title:    "GPU-bound: working as intended",
			Description: fmt.Sprintf("The GPU is %.0f%% busy while the CPU averages %.0f%%. This is the ideal balance for gaming.",
				gpuUtil, avg),
			Impact:        "None. Frame rate is limited by the graphics card, which is expected",
			Fix:           "No action needed. Lower graphics settings or upgrade the GPU if you want more frames.",
			Difficulty:    model.DifficultyEasy,
			EstimatedCost: "$0",
		})
	}

	if ratio, ok := s.GPU.VRAMRatio(); ok && ratio > 0.90 {
		out = append(out, model.Bottleneck{
			ID:       IDGPUVRAMPressure,
			Category: model.CategoryGPU,
			Severity: model.SeverityWarning,
			Title:    "Video memory almost full",
			Description: fmt.Sprintf("%.1f of %.1f GB VRAM in use (%.0f%%).",
				*s.GPU.VRAMUsedGB, *s.GPU.VRAMTotalGB, ratio*100),
			Impact:        "Texture streaming stalls and stutter when assets spill into system memory",
			Fix:           "Lower texture quality and resolution scaling, close other GPU-accelerated apps, or move to a card with more VRAM.",
			Difficulty:    model.DifficultyEasy,
			EstimatedCost: "$0",
		})
	}

	if gap, ok := tierGap(cpu, gpu); ok && gap >= 2 {
		out = append(out, model.Bottleneck{
			ID:       IDGPUTierMismatch,
			Category: model.CategoryGPU,
			Severity: model.SeverityWarning,
			Title:    fmt.Sprintf("GPU is %d tiers below the CPU", gap),
			Description: fmt.Sprintf("%s (%s tier) is paired with %s (%s tier). The graphics card limits what the CPU can deliver.",
				gpu.Name, gpu.Tier, cpu.Name, cpu.Tier),
			Impact:        "Frame rates well below what the rest of the system supports",
			Fix:           "A GPU upgrade gives the largest gain on this system.",
			Difficulty:    model.DifficultyMedium,
			EstimatedCost: "$250 - $800",
		})
	}
	return out
}

package engine

import (
	"fmt"
	"strings"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/catalog"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/model"
)

type powerPlanClass int

const (
	powerPlanUnknown powerPlanClass = iota
	powerPlanPerformance
	powerPlanBalanced
	powerPlanOther
)

func classifyPowerPlan(plan *string) powerPlanClass {
	if plan == nil || strings.TrimSpace(*plan) == "" {
		return powerPlanUnknown
	}
	p := strings.ToLower(*plan)
	switch {
	case strings.Contains(p, "high performance"), strings.Contains(p, "ultimate"):
		return powerPlanPerformance
	case strings.Contains(p, "balanced"):
		return powerPlanBalanced
	default:
		return powerPlanOther
	}
}

func evaluateSettings(s *model.Scan, _, _ *catalog.Entry) []model.Bottleneck {
	var out []model.Bottleneck
	bios := s.BIOSSettings

	if c := classifyPowerPlan(s.OS.PowerPlan); c == powerPlanBalanced || c == powerPlanOther {
		out = append(out, model.Bottleneck{
			ID:            IDSettingsPowerPlan,
			Category:      model.CategorySettings,
			Severity:      model.SeverityWarning,
			Title:         "Power plan is not set for performance",
			Description:   fmt.Sprintf("Windows is using the %q power plan.", *s.OS.PowerPlan),
			Impact:        "The CPU may park cores and ramp clocks slowly, costing frame-time consistency",
			Fix:           "Open Control Panel > Power Options and select High Performance or Ultimate Performance.",
			Difficulty:    model.DifficultyEasy,
			EstimatedCost: "$0",
		})
	}

	if bios.XMPEnabled.IsFalse() {
		out = append(out, model.Bottleneck{
			ID:            IDSettingsXMP,
			Category:      model.CategorySettings,
			Severity:      model.SeverityCritical,
			Title:         "XMP/DOCP is disabled",
			Description:   xmpDescription(s.RAM),
			Impact:        "Memory runs at JEDEC default speed, often 20-30% below its rating",
			Fix:           "Enter the BIOS and enable XMP (Intel) or DOCP/EXPO (AMD), then save and reboot.",
			Difficulty:    model.DifficultyEasy,
			EstimatedCost: "$0",
		})
	}

	if bios.ResizableBAR.IsFalse() {
		out = append(out, model.Bottleneck{
			ID:            IDSettingsReBAR,
			Category:      model.CategorySettings,
			Severity:      model.SeverityInfo,
			Title:         "Resizable BAR is disabled",
			Description:   "Resizable BAR lets the CPU access all of the GPU's memory at once.",
			Impact:        "0-10% lower performance in games that benefit from it",
			Fix:           "Enable Above 4G Decoding and Resizable BAR (Smart Access Memory on AMD) in the BIOS.",
			Difficulty:    model.DifficultyEasy,
			EstimatedCost: "$0",
		})
	}

	if s.OS.HWGPUScheduling.IsFalse() {
		out = append(out, model.Bottleneck{
			ID:            IDSettingsHAGS,
			Category:      model.CategorySettings,
			Severity:      model.SeverityInfo,
			Title:         "Hardware-accelerated GPU scheduling is off",
			Description:   "The GPU's own scheduler is not being used to manage video memory.",
			Impact:        "Slightly higher latency; required for DLSS frame generation",
			Fix:           "Settings > System > Display > Graphics > Change default graphics settings, turn on Hardware-accelerated GPU scheduling and reboot.",
			Difficulty:    model.DifficultyEasy,
			EstimatedCost: "$0",
		})
	}

	if s.OS.GameMode.IsFalse() {
		out = append(out, model.Bottleneck{
			ID:            IDSettingsGameMode,
			Category:      model.CategorySettings,
			Severity:      model.SeverityInfo,
			Title:         "Game Mode is off",
			Description:   "Windows Game Mode prioritizes the running game and pauses background updates.",
			Impact:        "Background tasks can interrupt games",
			Fix:           "Settings > Gaming > Game Mode, turn it on.",
			Difficulty:    model.DifficultyEasy,
			EstimatedCost: "$0",
		})
	}
	return out
}

func xmpDescription(r *model.RAM) string {
	speed, hasSpeed := value(r.SpeedMHz)
	rated, hasRated := value(r.RatedSpeedMHz)
	switch {
	case hasSpeed && hasRated && rated > speed:
		return fmt.Sprintf("Memory runs at %.0f MT/s but is rated for %.0f MT/s.", speed, rated)
	case hasSpeed:
		return fmt.Sprintf("Memory runs at %.0f MT/s without its XMP profile.", speed)
	default:
		return "The memory kit's XMP profile is not applied."
	}
}

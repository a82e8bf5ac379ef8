package engine

import (
	"fmt"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/catalog"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/model"
)

// Minimum speeds in MT/s below which memory counts as under-clocked, and the
// softer bands the scorer uses.
const (
	ddr4MinSpeed  = 3000
	ddr5MinSpeed  = 4800
	ddr4GoodSpeed = 3200
	ddr5GoodSpeed = 5600
)

func evaluateMemory(s *model.Scan, _, _ *catalog.Entry) []model.Bottleneck {
	var out []model.Bottleneck
	r := s.RAM

	if r.ChannelMode == model.ChannelSingle {
		desc := "Memory is running in single-channel mode, halving the available bandwidth."
		if r.NumSticks != nil {
			desc = fmt.Sprintf("Memory is running in single-channel mode with %d stick(s) installed, halving the available bandwidth.", *r.NumSticks)
		}
		out = append(out, model.Bottleneck{
			ID:            IDRAMSingleChannel,
			Category:      model.CategoryRAM,
			Severity:      model.SeverityCritical,
			Title:         "Memory in single-channel mode",
			Description:   desc,
			Impact:        "10-30% lower frame rates in CPU-bound games, worse with integrated graphics",
			Fix:           "Install memory in matched pairs in the slots the motherboard manual marks for dual-channel (usually A2 and B2).",
			Difficulty:    model.DifficultyEasy,
			EstimatedCost: "$0 - $60",
		})
	}

	if total, ok := value(r.TotalGB); ok && total < 16 {
		out = append(out, model.Bottleneck{
			ID:            IDRAMLowCapacity,
			Category:      model.CategoryRAM,
			Severity:      model.SeverityWarning,
			Title:         "Not enough memory",
			Description:   fmt.Sprintf("Only %.0f GB installed. Current games commonly use 12-16 GB on their own.", total),
			Impact:        "Stutter and long loads when the system pages to disk",
			Fix:           "Upgrade to at least 16 GB, ideally 32 GB, as a matched kit.",
			Difficulty:    model.DifficultyEasy,
			EstimatedCost: "$60 - $120",
		})
	}

	if usage, ok := value(r.UsagePercent); ok && usage > 85 {
		out = append(out, model.Bottleneck{
			ID:            IDRAMHighUsage,
			Category:      model.CategoryRAM,
			Severity:      model.SeverityWarning,
			Title:         "Memory usage is high",
			Description:   fmt.Sprintf("%.0f%% of memory was in use during the scan.", usage),
			Impact:        "Little headroom left for games, leading to paging and stutter",
			Fix:           "Close browsers and background apps before gaming and disable unneeded startup programs.",
			Difficulty:    model.DifficultyEasy,
			EstimatedCost: "$0",
		})
	}

	// DDR4 and DDR5 are checked independently; a malformed form factor naming
	// both can yield two findings.
	if speed, ok := value(r.SpeedMHz); ok {
		ddr4, ddr5 := r.DDRGeneration()
		if ddr4 && speed < ddr4MinSpeed {
			out = append(out, slowMemory("DDR4", speed, ddr4MinSpeed, ddr4GoodSpeed))
		}
		if ddr5 && speed < ddr5MinSpeed {
			out = append(out, slowMemory("DDR5", speed, ddr5MinSpeed, ddr5GoodSpeed))
		}
	}
	return out
}

func slowMemory(gen string, speed float64, minSpeed, target int) model.Bottleneck {
	return model.Bottleneck{
		ID:       IDRAMSlowSpeed,
		Category: model.CategoryRAM,
		Severity: model.SeverityCritical,
		Title:    fmt.Sprintf("%s memory is running slow", gen),
		Description: fmt.Sprintf("%s is running at %.0f MT/s, below the %d MT/s expected of a gaming system. This is usually the JEDEC default with XMP/DOCP off.",
			gen, speed, minSpeed),
		Impact:        "Lower minimum frame rates and more stutter, especially on Ryzen CPUs",
		Fix:           fmt.Sprintf("Enable XMP/DOCP/EXPO in the BIOS. If the kit is rated below %d MT/s, consider a faster kit.", target),
		Difficulty:    model.DifficultyEasy,
		EstimatedCost: "$0",
	}
}

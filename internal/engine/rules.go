package engine

import (
	"sort"
	"strings"
	"sync"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/catalog"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/model"
)

// Bottleneck ids. Recommendations and clients refer to findings by these.
const (
	IDCPUBottleneck   = "cpu-bottleneck"
	IDCPUTierMismatch = "cpu-tier-mismatch"
	IDCPUBoostClock   = "cpu-boost-clock"

	IDGPUBound        = "gpu-bound"
	IDGPUVRAMPressure = "gpu-vram-pressure"
	IDGPUTierMismatch = "gpu-tier-mismatch"

	IDRAMSingleChannel = "ram-single-channel"
	IDRAMLowCapacity   = "ram-low-capacity"
	IDRAMHighUsage     = "ram-high-usage"
	IDRAMSlowSpeed     = "ram-slow-speed"

	IDStorageHDDBoot  = "storage-hdd-boot"
	IDStorageBootFull = "storage-boot-full"
	IDStorageNoNVMe   = "storage-no-nvme"
	// IDStorageHealthPrefix is followed by the sanitized drive model.
	IDStorageHealthPrefix = "storage-health-"

	IDThermalCPU = "thermal-cpu"
	IDThermalGPU = "thermal-gpu"

	IDSettingsPowerPlan = "settings-power-plan"
	IDSettingsXMP       = "settings-xmp-disabled"
	IDSettingsReBAR     = "settings-rebar-disabled"
	IDSettingsHAGS      = "settings-hags-disabled"
	IDSettingsGameMode  = "settings-game-mode-disabled"
)

// Rule describes one detector for listings and explanations.
type Rule struct {
	ID         string           `json:"id"`
	Category   model.Category   `json:"category"`
	Severities []model.Severity `json:"severities"`
	Summary    string           `json:"summary"`
}

var (
	crit = model.SeverityCritical
	warn = model.SeverityWarning
	info = model.SeverityInfo
)

var rules = []Rule{
	{IDCPUBottleneck, model.CategoryCPU, []model.Severity{crit, warn},
		"Average CPU load above 90% with GPU below 60% (critical), or above 80% with GPU below 70% (warning)."},
	{IDCPUTierMismatch, model.CategoryCPU, []model.Severity{warn},
		"The GPU is two or more catalog tiers above the CPU."},
	{IDCPUBoostClock, model.CategoryCPU, []model.Severity{warn},
		"Current clock below 85% of the rated boost clock while average load is above 50%."},
	{IDGPUBound, model.CategoryGPU, []model.Severity{info},
		"GPU load above 95% with average CPU load below 60%. The GPU is the limit, as intended."},
	{IDGPUVRAMPressure, model.CategoryGPU, []model.Severity{warn},
		"More than 90% of video memory in use."},
	{IDGPUTierMismatch, model.CategoryGPU, []model.Severity{warn},
		"The CPU is two or more catalog tiers above the GPU."},
	{IDRAMSingleChannel, model.CategoryRAM, []model.Severity{crit},
		"Memory runs in single-channel mode."},
	{IDRAMLowCapacity, model.CategoryRAM, []model.Severity{warn},
		"Less than 16 GB of memory installed."},
	{IDRAMHighUsage, model.CategoryRAM, []model.Severity{warn},
		"More than 85% of memory in use."},
	{IDRAMSlowSpeed, model.CategoryRAM, []model.Severity{crit},
		"DDR4 below 3000 MT/s or DDR5 below 4800 MT/s."},
	{IDStorageHDDBoot, model.CategoryStorage, []model.Severity{crit},
		"The operating system boots from a hard disk."},
	{IDStorageBootFull, model.CategoryStorage, []model.Severity{warn, info},
		"Boot drive more than 90% full (warning) or more than 80% full (info)."},
	{IDStorageNoNVMe, model.CategoryStorage, []model.Severity{info},
		"No NVMe drive installed."},
	{IDStorageHealthPrefix + "<model>", model.CategoryStorage, []model.Severity{crit},
		"A drive reports a health status other than good, ok or healthy. One finding per drive."},
	{IDThermalCPU, model.CategoryThermal, []model.Severity{crit, info},
		"CPU above 85°C (critical) or above 75°C (info)."},
	{IDThermalGPU, model.CategoryThermal, []model.Severity{warn, info},
		"GPU above 85°C (warning) or above 80°C (info)."},
	{IDSettingsPowerPlan, model.CategorySettings, []model.Severity{warn},
		"Power plan is not High Performance or Ultimate Performance."},
	{IDSettingsXMP, model.CategorySettings, []model.Severity{crit},
		"XMP/DOCP memory profile is disabled in the BIOS."},
	{IDSettingsReBAR, model.CategorySettings, []model.Severity{info},
		"Resizable BAR is disabled."},
	{IDSettingsHAGS, model.CategorySettings, []model.Severity{info},
		"Hardware-accelerated GPU scheduling is disabled."},
	{IDSettingsGameMode, model.CategorySettings, []model.Severity{info},
		"Game Mode is disabled."},
}

// Rules returns the metadata of every detector in detection order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// FindRule returns the rule that produces a bottleneck id. Per-drive health
// ids resolve to the shared health rule.
func FindRule(id string) (Rule, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, r := range rules {
		if r.ID == id {
			return r, true
		}
	}
	if strings.HasPrefix(id, IDStorageHealthPrefix) {
		for _, r := range rules {
			if strings.HasPrefix(r.ID, IDStorageHealthPrefix) {
				return r, true
			}
		}
	}
	return Rule{}, false
}

// Evaluator is one rule family. cpu and gpu are nil for parts the catalog
// does not know.
type Evaluator func(s *model.Scan, cpu, gpu *catalog.Entry) []model.Bottleneck

// evaluators in detection order. Ties in severity keep this order.
var evaluators = []Evaluator{
	evaluateCPU,
	evaluateGPU,
	evaluateMemory,
	evaluateStorage,
	evaluateThermal,
	evaluateSettings,
}

// Detect runs every evaluator and returns the findings sorted by severity,
// ties in detection order. With parallel set the evaluators run
// concurrently; the result is the same.
func Detect(s *model.Scan, cpu, gpu *catalog.Entry, parallel bool) []model.Bottleneck {
	results := make([][]model.Bottleneck, len(evaluators))
	if parallel {
		var wg sync.WaitGroup
		for i, ev := range evaluators {
			wg.Add(1)
			go func(i int, ev Evaluator) {
				defer wg.Done()
				results[i] = ev(s, cpu, gpu)
			}(i, ev)
		}
		wg.Wait()
	} else {
		for i, ev := range evaluators {
			results[i] = ev(s, cpu, gpu)
		}
	}

	out := []model.Bottleneck{}
	for _, r := range results {
		out = append(out, r...)
	}
	SortBottlenecks(out)
	return out
}

// SortBottlenecks orders findings critical first, keeping the relative order
// of equal severities.
func SortBottlenecks(b []model.Bottleneck) {
	sort.SliceStable(b, func(i, j int) bool {
		return b[i].Severity.Rank() < b[j].Severity.Rank()
	})
}

func value(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

func tierGap(above, below *catalog.Entry) (int, bool) {
	if above == nil || below == nil {
		return 0, false
	}
	a, b := catalog.TierRank(above.Tier), catalog.TierRank(below.Tier)
	if a < 0 || b < 0 {
		return 0, false
	}
	return a - b, true
}

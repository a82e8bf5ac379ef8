package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/catalog"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/model"
)

// upgradeCandidates is how many parts an upgrade recommendation names.
const upgradeCandidates = 2

// findings indexes bottlenecks by id.
type findings map[string][]model.Bottleneck

func indexFindings(bs []model.Bottleneck) findings {
	f := make(findings, len(bs))
	for _, b := range bs {
		f[b.ID] = append(f[b.ID], b)
	}
	return f
}

func (f findings) has(id string) bool { return len(f[id]) > 0 }

func (f findings) hasSeverity(id string, sev model.Severity) bool {
	for _, b := range f[id] {
		if b.Severity == sev {
			return true
		}
	}
	return false
}

type recBuilder struct {
	recs     []model.Recommendation
	seen     map[string]bool
	priority int
}

// add assigns the next priority. A repeated id is dropped.
func (b *recBuilder) add(r model.Recommendation) {
	if b.seen[r.ID] {
		return
	}
	b.seen[r.ID] = true
	r.Priority = b.priority
	b.priority++
	b.recs = append(b.recs, r)
}

// Recommend maps findings to remediation actions. Rules key off finding ids
// (and severity where it matters) so actions always match what is shown.
// Free actions are built first, then cheap, then upgrade; priority counts up
// across all three.
func Recommend(s *model.Scan, found []model.Bottleneck, hw Hardware) []model.Recommendation {
	f := indexFindings(found)
	b := &recBuilder{seen: make(map[string]bool), priority: 1}

	buildFree(b, s, f)
	buildCheap(b, s, f, found)
	buildUpgrades(b, f, hw)

	SortRecommendations(b.recs)
	if b.recs == nil {
		return []model.Recommendation{}
	}
	return b.recs
}

// SortRecommendations orders by tier, then priority.
func SortRecommendations(r []model.Recommendation) {
	sort.SliceStable(r, func(i, j int) bool {
		if ri, rj := r[i].Tier.Rank(), r[j].Tier.Rank(); ri != rj {
			return ri < rj
		}
		return r[i].Priority < r[j].Priority
	})
}

func buildFree(b *recBuilder, s *model.Scan, f findings) {
	if f.has(IDSettingsXMP) {
		b.add(model.Recommendation{
			ID:            "enable-xmp",
			Tier:          model.TierFree,
			Title:         "Enable XMP/DOCP in the BIOS",
			Description:   "Load the memory kit's rated profile so it runs at its advertised speed and timings.",
			Impact:        "5-15% higher minimum frame rates in CPU-bound games",
			EstimatedCost: "$0",
			BottleneckIDs: present(f, IDSettingsXMP, IDRAMSlowSpeed),
		})
	}
	if f.has(IDSettingsPowerPlan) {
		b.add(model.Recommendation{
			ID:            "power-plan",
			Tier:          model.TierFree,
			Title:         "Switch to the High Performance power plan",
			Description:   "Keep CPU cores unparked and clocks ready for bursts of load.",
			Impact:        "More consistent frame times",
			EstimatedCost: "$0",
			BottleneckIDs: []string{IDSettingsPowerPlan},
		})
	}
	if f.has(IDRAMSingleChannel) && sticks(s) >= 2 {
		b.add(model.Recommendation{
			ID:            "reseat-ram",
			Tier:          model.TierFree,
			Title:         "Move memory sticks to the dual-channel slots",
			Description:   fmt.Sprintf("%d sticks are installed but running in single-channel mode. Check the motherboard manual for the paired slots (usually A2 and B2).", sticks(s)),
			Impact:        "Up to double the memory bandwidth",
			EstimatedCost: "$0",
			BottleneckIDs: []string{IDRAMSingleChannel},
		})
	}
	if f.has(IDSettingsReBAR) {
		b.add(model.Recommendation{
			ID:            "enable-rebar",
			Tier:          model.TierFree,
			Title:         "Enable Resizable BAR",
			Description:   "Turn on Above 4G Decoding and Resizable BAR in the BIOS. Windows must boot in UEFI mode.",
			Impact:        "Up to 10% in supported games",
			EstimatedCost: "$0",
			BottleneckIDs: []string{IDSettingsReBAR},
		})
	}
	if f.has(IDSettingsHAGS) {
		b.add(model.Recommendation{
			ID:            "enable-hags",
			Tier:          model.TierFree,
			Title:         "Turn on hardware-accelerated GPU scheduling",
			Description:   "Let the GPU manage its own memory scheduling.",
			Impact:        "Slightly lower latency; enables frame generation",
			EstimatedCost: "$0",
			BottleneckIDs: []string{IDSettingsHAGS},
		})
	}
	if f.has(IDSettingsGameMode) {
		b.add(model.Recommendation{
			ID:            "enable-game-mode",
			Tier:          model.TierFree,
			Title:         "Turn on Game Mode",
			Description:   "Windows pauses background updates and prioritizes the game while it runs.",
			Impact:        "Fewer background interruptions",
			EstimatedCost: "$0",
			BottleneckIDs: []string{IDSettingsGameMode},
		})
	}
	if f.has(IDStorageBootFull) {
		b.add(model.Recommendation{
			ID:            "free-disk-space",
			Tier:          model.TierFree,
			Title:         "Free up space on the boot drive",
			Description:   "Uninstall unused games and run Disk Cleanup to keep at least 15-20% of the drive free.",
			Impact:        "Restores SSD write speed and room for updates",
			EstimatedCost: "$0",
			BottleneckIDs: []string{IDStorageBootFull},
		})
	}
	if f.has(IDThermalGPU) || f.hasSeverity(IDThermalCPU, model.SeverityInfo) {
		b.add(model.Recommendation{
			ID:            "improve-airflow",
			Tier:          model.TierFree,
			Title:         "Clean dust and improve case airflow",
			Description:   "Blow out heatsinks and filters, tidy cables and set a steeper fan curve.",
			Impact:        "5-10°C lower temperatures and steadier boost clocks",
			EstimatedCost: "$0",
			BottleneckIDs: present(f, IDThermalCPU, IDThermalGPU),
		})
	}
	if f.has(IDCPUBoostClock) {
		b.add(model.Recommendation{
			ID:            "check-boost",
			Tier:          model.TierFree,
			Title:         "Let the CPU boost",
			Description:   "Use a performance power plan and reset BIOS power limits to stock or the board's default.",
			Impact:        "Restores rated single-thread performance",
			EstimatedCost: "$0",
			BottleneckIDs: []string{IDCPUBoostClock},
		})
	}
	if f.has(IDRAMHighUsage) || f.has(IDCPUBottleneck) {
		b.add(model.Recommendation{
			ID:            "close-background-apps",
			Tier:          model.TierFree,
			Title:         "Close background applications",
			Description:   "Browsers, launchers and overlays compete with games for CPU time and memory. Disable unneeded startup programs in Task Manager.",
			Impact:        "Frees memory and CPU time for the game",
			EstimatedCost: "$0",
			BottleneckIDs: present(f, IDRAMHighUsage, IDCPUBottleneck),
		})
	}
	if f.has(IDGPUVRAMPressure) {
		b.add(model.Recommendation{
			ID:            "lower-textures",
			Tier:          model.TierFree,
			Title:         "Lower texture quality",
			Description:   "Drop texture quality one step and enable upscaling (DLSS/FSR/XeSS) to keep video memory below 90%.",
			Impact:        "Removes VRAM-related stutter",
			EstimatedCost: "$0",
			BottleneckIDs: []string{IDGPUVRAMPressure},
		})
	}
	if f.has(IDCPUBottleneck) {
		b.add(model.Recommendation{
			ID:            "shift-load-to-gpu",
			Tier:          model.TierFree,
			Title:         "Raise resolution or graphics quality",
			Description:   "The GPU has headroom. Higher resolution, quality presets or DLAA cost little while the CPU is the limit.",
			Impact:        "Better image quality at the same frame rate",
			EstimatedCost: "$0",
			BottleneckIDs: []string{IDCPUBottleneck},
		})
	}
}

func buildCheap(b *recBuilder, s *model.Scan, f findings, found []model.Bottleneck) {
	if f.has(IDRAMLowCapacity) {
		b.add(model.Recommendation{
			ID:            "add-ram",
			Tier:          model.TierCheap,
			Title:         "Upgrade to 16-32 GB of memory",
			Description:   "Buy a matched two-stick kit of the same DDR generation so it also runs in dual-channel.",
			Impact:        "Removes paging stutter in modern games",
			EstimatedCost: "$60 - $120",
			BottleneckIDs: present(f, IDRAMLowCapacity, IDRAMSingleChannel),
		})
	}
	if f.has(IDRAMSingleChannel) && sticks(s) < 2 {
		b.add(model.Recommendation{
			ID:            "add-ram-stick",
			Tier:          model.TierCheap,
			Title:         "Add a second memory stick",
			Description:   "A matching second stick enables dual-channel mode.",
			Impact:        "Up to double the memory bandwidth",
			EstimatedCost: "$30 - $60",
			BottleneckIDs: []string{IDRAMSingleChannel},
		})
	}
	if f.has(IDRAMSlowSpeed) && !f.has(IDSettingsXMP) {
		b.add(model.Recommendation{
			ID:            "faster-ram",
			Tier:          model.TierCheap,
			Title:         "Replace the memory with a faster kit",
			Description:   "The memory is slow even without an XMP problem. A DDR4-3600 CL16 or DDR5-6000 CL30 kit is the value sweet spot.",
			Impact:        "Higher minimum frame rates",
			EstimatedCost: "$80 - $150",
			BottleneckIDs: []string{IDRAMSlowSpeed},
		})
	}
	if f.has(IDStorageHDDBoot) {
		b.add(model.Recommendation{
			ID:            "ssd-boot",
			Tier:          model.TierCheap,
			Title:         "Move Windows to an SSD",
			Description:   "A 500 GB-1 TB SSD for the operating system and favourite games.",
			Impact:        "Boot and load times several times faster",
			EstimatedCost: "$50 - $100",
			BottleneckIDs: []string{IDStorageHDDBoot},
		})
	}
	if f.has(IDStorageNoNVMe) {
		b.add(model.Recommendation{
			ID:            "add-nvme",
			Tier:          model.TierCheap,
			Title:         "Add an NVMe SSD",
			Description:   "A 1 TB PCIe 4.0 NVMe drive in a free M.2 slot.",
			Impact:        "Faster loads and DirectStorage support",
			EstimatedCost: "$60 - $120",
			BottleneckIDs: []string{IDStorageNoNVMe},
		})
	}
	for _, bn := range found {
		if !strings.HasPrefix(bn.ID, IDStorageHealthPrefix) {
			continue
		}
		b.add(model.Recommendation{
			ID:            "replace-drive-" + strings.TrimPrefix(bn.ID, IDStorageHealthPrefix),
			Tier:          model.TierCheap,
			Title:         "Back up and replace the failing drive",
			Description:   bn.Description + " Copy important data off it first.",
			Impact:        "Avoids data loss and freezes",
			EstimatedCost: "$50 - $150",
			BottleneckIDs: []string{bn.ID},
		})
	}
	if f.hasSeverity(IDThermalCPU, model.SeverityCritical) {
		b.add(model.Recommendation{
			ID:            "cpu-cooler",
			Tier:          model.TierCheap,
			Title:         "Install a better CPU cooler",
			Description:   "A dual-tower air cooler or 240 mm AIO keeps the CPU well below its throttle point.",
			Impact:        "Stops thermal throttling",
			EstimatedCost: "$30 - $80",
			BottleneckIDs: []string{IDThermalCPU},
		})
	}
}

func buildUpgrades(b *recBuilder, f findings, hw Hardware) {
	if hw.CPU != nil && (f.has(IDCPUBottleneck) || f.has(IDCPUTierMismatch)) {
		if r, ok := upgrade("upgrade-cpu", "CPU", hw.CPU, hw.CPUs, present(f, IDCPUBottleneck, IDCPUTierMismatch)); ok {
			b.add(r)
		}
	}
	if hw.GPU != nil && (f.has(IDGPUTierMismatch) || f.has(IDGPUVRAMPressure) || f.has(IDGPUBound)) {
		if r, ok := upgrade("upgrade-gpu", "GPU", hw.GPU, hw.GPUs, present(f, IDGPUTierMismatch, IDGPUVRAMPressure, IDGPUBound)); ok {
			b.add(r)
		}
	}
}

func upgrade(id, kind string, current *catalog.Entry, c *catalog.Catalog, ids []string) (model.Recommendation, bool) {
	cands := c.UpgradeCandidates(*current, upgradeCandidates)
	if len(cands) == 0 {
		return model.Recommendation{}, false
	}
	top := cands[0]
	desc := fmt.Sprintf("Replace the %s with a %s (%s tier, gaming score %d vs %d).",
		current.Name, top.Name, top.Tier, top.GamingScore, current.GamingScore)
	if len(cands) > 1 {
		desc += fmt.Sprintf(" If budget allows, the %s is the alternative.", cands[1].Name)
	}
	return model.Recommendation{
		ID:            id,
		Tier:          model.TierUpgrade,
		Title:         fmt.Sprintf("Upgrade the %s to %s", kind, top.Name),
		Description:   desc,
		Impact:        fmt.Sprintf("Roughly %d%% higher gaming performance from the %s", gain(current.GamingScore, top.GamingScore), kind),
		EstimatedCost: PriceRange(cands),
		BottleneckIDs: ids,
	}, true
}

// PriceRange renders "$min - $max" over the entries' prices, or "$X" when
// they are all the same.
func PriceRange(entries []catalog.Entry) string {
	if len(entries) == 0 {
		return ""
	}
	lo, hi := entries[0].Price, entries[0].Price
	for _, e := range entries[1:] {
		lo = min(lo, e.Price)
		hi = max(hi, e.Price)
	}
	low, high := fmt.Sprintf("$%.0f", lo), fmt.Sprintf("$%.0f", hi)
	if low == high {
		return low
	}
	return low + " - " + high
}

func gain(from, to int) int {
	if from <= 0 {
		return 100
	}
	return (to - from) * 100 / from
}

func sticks(s *model.Scan) int {
	if s.RAM.NumSticks == nil {
		return 0
	}
	return *s.RAM.NumSticks
}

// present returns the ids in the given order that were found.
func present(f findings, ids ...string) []string {
	var out []string
	for _, id := range ids {
		if f.has(id) {
			out = append(out, id)
		}
	}
	return out
}

package engine

import (
	"strings"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/catalog"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/model"
)

// unknownTierScore is the CPU/GPU base for parts the catalog does not know.
const unknownTierScore = 14

var tierScores = map[catalog.Tier]int{
	catalog.TierVeryHigh: 22,
	catalog.TierHigh:     18,
	catalog.TierMid:      14,
	catalog.TierLow:      10,
	catalog.TierVeryLow:  6,
}

var grades = []struct {
	min         int
	grade       string
	description string
}{
	{90, "A", "Excellent - this PC is well balanced and tuned for gaming"},
	{80, "A-", "Great - a few tweaks will get the most out of this PC"},
	{70, "B", "Good - solid hardware held back by some fixable issues"},
	{60, "C", "Fair - noticeable bottlenecks are costing performance"},
	{0, "D", "Poor - significant bottlenecks, start with the critical fixes"},
}

// step is one scoring rule: when applies, delta is added.
type step struct {
	applies bool
	delta   int
}

// fold applies the steps in order to base and clamps the result to
// [0, limit].
func fold(base, limit int, steps ...step) int {
	v := base
	for _, s := range steps {
		if s.applies {
			v += s.delta
		}
	}
	return min(max(v, 0), limit)
}

// Score grades a scan. It looks only at the scan and the catalog entries,
// not at findings, so it can run alongside Detect.
func Score(s *model.Scan, cpu, gpu *catalog.Entry) model.PerformanceScore {
	b := model.ScoreBreakdown{
		CPU:      cpuScore(s, cpu),
		GPU:      gpuScore(s, gpu),
		RAM:      ramScore(s.RAM),
		Storage:  storageScore(s),
		Settings: settingsScore(s),
	}
	total := b.Sum()
	grade, desc := Grade(total)
	return model.PerformanceScore{
		Total:            total,
		Grade:            grade,
		GradeDescription: desc,
		Breakdown:        b,
	}
}

// Grade maps a total score to its letter grade and description.
func Grade(total int) (grade, description string) {
	for _, g := range grades {
		if total >= g.min {
			return g.grade, g.description
		}
	}
	last := grades[len(grades)-1]
	return last.grade, last.description
}

func tierBase(e *catalog.Entry) int {
	if e == nil {
		return unknownTierScore
	}
	if v, ok := tierScores[e.Tier]; ok {
		return v
	}
	return unknownTierScore
}

func cpuScore(s *model.Scan, cpu *catalog.Entry) int {
	temp, hasTemp := value(s.CPU.CurrentTempC)
	_, _, shortfall := boostShortfall(s.CPU)
	return fold(tierBase(cpu), model.MaxCPUScore,
		step{hasTemp && temp > 85, -5},
		step{hasTemp && temp > 75 && temp <= 85, -2},
		step{shortfall, -3},
	)
}

func gpuScore(s *model.Scan, gpu *catalog.Entry) int {
	temp, hasTemp := value(s.GPU.CurrentTempC)
	ratio, hasRatio := s.GPU.VRAMRatio()
	return fold(tierBase(gpu), model.MaxGPUScore,
		step{hasTemp && temp > 85, -4},
		step{hasTemp && temp > 80 && temp <= 85, -2},
		step{hasRatio && ratio > 0.90, -3},
	)
}

func ramScore(r *model.RAM) int {
	speed, hasSpeed := value(r.SpeedMHz)
	ddr4, ddr5 := r.DDRGeneration()
	severe := hasSpeed && ((ddr4 && speed < ddr4MinSpeed) || (ddr5 && speed < ddr5MinSpeed))
	mild := hasSpeed && !severe && ((ddr4 && speed < ddr4GoodSpeed) || (ddr5 && speed < ddr5GoodSpeed))
	total, hasTotal := value(r.TotalGB)
	usage, hasUsage := value(r.UsagePercent)

	return fold(model.MaxRAMScore, model.MaxRAMScore,
		step{severe, -8},
		step{mild, -3},
		step{r.ChannelMode == model.ChannelSingle, -10},
		step{hasTotal && total < 16, -5},
		step{hasTotal && total >= 16 && total < 32, -1},
		step{hasUsage && usage > 85, -3},
	)
}

var bootDriveScores = map[model.DriveType]int{
	model.DriveNVMe:    15,
	model.DriveSATA:    10,
	model.DriveHDD:     5,
	model.DriveUnknown: 8,
}

func storageScore(s *model.Scan) int {
	boot := s.BootDrive()
	if boot == nil {
		return model.MaxStorageScore
	}
	ratio, hasRatio := boot.UsageRatio()
	healthy, hasHealth := boot.Healthy()
	return fold(bootDriveScores[boot.Type.Known()], model.MaxStorageScore,
		step{hasRatio && ratio > 0.90, -3},
		step{hasRatio && ratio > 0.80 && ratio <= 0.90, -1},
		step{hasHealth && !healthy, -5},
	)
}

func settingsScore(s *model.Scan) int {
	plan := classifyPowerPlan(s.OS.PowerPlan)
	xmp := s.BIOSSettings.XMPEnabled
	driver := s.GPU.DriverVersion != nil && strings.TrimSpace(*s.GPU.DriverVersion) != ""

	return fold(0, model.MaxSettingsScore,
		step{plan == powerPlanPerformance, 3},
		step{plan == powerPlanBalanced, 1},
		step{xmp.IsTrue(), 5},
		step{xmp.IsUnknown(), 2},
		step{driver, 2},
		step{s.BIOSSettings.ResizableBAR.IsTrue(), 2},
		step{s.OS.GameMode.IsTrue(), 1},
		step{s.OS.HWGPUScheduling.IsTrue(), 2},
	)
}

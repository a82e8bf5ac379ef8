package engine

import (
	"testing"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/catalog"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/model"
)

func TestFoldClamps(t *testing.T) {
	tests := []struct {
		name  string
		base  int
		steps []step
		want  int
	}{
		{"no steps", 10, nil, 10},
		{"inactive steps", 10, []step{{false, -50}}, 10},
		{"below zero", 5, []step{{true, -8}, {true, -10}}, 0},
		{"above limit", 20, []step{{true, 10}}, 15},
		{"ordered sum", 14, []step{{true, -5}, {false, -2}, {true, -3}}, 6},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := fold(tc.base, 15, tc.steps...); got != tc.want {
				t.Errorf("fold = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestGrade(t *testing.T) {
	tests := []struct {
		total int
		want  string
	}{
		{100, "A"}, {90, "A"}, {89, "A-"}, {80, "A-"}, {79, "B"},
		{70, "B"}, {69, "C"}, {60, "C"}, {59, "D"}, {0, "D"},
	}
	for _, tc := range tests {
		got, desc := Grade(tc.total)
		if got != tc.want {
			t.Errorf("Grade(%d) = %q, want %q", tc.total, got, tc.want)
		}
		if desc == "" {
			t.Errorf("Grade(%d) has no description", tc.total)
		}
	}
}

func TestCPUScore(t *testing.T) {
	tests := []struct {
		name string
		tier catalog.Tier
		temp *float64
		slow bool
		want int
	}{
		{"very high cool", catalog.TierVeryHigh, model.Float(60), false, 22},
		{"high hot", catalog.TierHigh, model.Float(90), false, 13},
		{"mid warm", catalog.TierMid, model.Float(80), false, 12},
		{"low at 75", catalog.TierLow, model.Float(75), false, 10},
		{"very low slow and hot", catalog.TierVeryLow, model.Float(95), true, 0},
		{"unknown tier no sensor", "", nil, false, unknownTierScore},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := idealScan()
			s.CPU.CurrentTempC = tc.temp
			if tc.slow {
				s.CPU.UsagePerCore = []float64{90}
				s.CPU.CurrentClockGHz = model.Float(2.0)
			}
			var e *catalog.Entry
			if tc.tier != "" {
				e = &catalog.Entry{Name: "x", Tier: tc.tier}
			}
			if got := cpuScore(s, e); got != tc.want {
				t.Errorf("cpuScore = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestGPUScore(t *testing.T) {
	tests := []struct {
		name       string
		temp       *float64
		used, tot  float64
		want       int
	}{
		{"cool", model.Float(70), 4, 8, 22},
		{"warm", model.Float(82), 4, 8, 20},
		{"exactly 80", model.Float(80), 4, 8, 22},
		{"hot", model.Float(86), 4, 8, 18},
		{"hot and full", model.Float(90), 7.8, 8, 15},
		{"zero vram", nil, 7.8, 0, 22},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := idealScan()
			s.GPU.CurrentTempC = tc.temp
			s.GPU.VRAMUsedGB = model.Float(tc.used)
			s.GPU.VRAMTotalGB = model.Float(tc.tot)
			e := &catalog.Entry{Name: "x", Tier: catalog.TierVeryHigh}
			if got := gpuScore(s, e); got != tc.want {
				t.Errorf("gpuScore = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestRAMScore(t *testing.T) {
	tests := []struct {
		name string
		ram  model.RAM
		want int
	}{
		{"ideal", model.RAM{FormFactor: "DDR5", SpeedMHz: model.Float(6000), ChannelMode: model.ChannelDual, TotalGB: model.Float(32)}, 20},
		{"ddr4 at 3000 is the mild band", model.RAM{FormFactor: "DDR4", SpeedMHz: model.Float(3000), TotalGB: model.Float(32)}, 17},
		{"ddr4 at 3200", model.RAM{FormFactor: "DDR4", SpeedMHz: model.Float(3200), TotalGB: model.Float(32)}, 20},
		{"ddr4 jedec", model.RAM{FormFactor: "DDR4", SpeedMHz: model.Float(2133), TotalGB: model.Float(32)}, 12},
		{"ddr5 mild", model.RAM{FormFactor: "DDR5", SpeedMHz: model.Float(5200), TotalGB: model.Float(32)}, 17},
		{"ddr5 severe", model.RAM{FormFactor: "DDR5", SpeedMHz: model.Float(4400), TotalGB: model.Float(32)}, 12},
		{"single channel", model.RAM{ChannelMode: model.ChannelSingle, TotalGB: model.Float(32)}, 10},
		{"8 GB", model.RAM{TotalGB: model.Float(8)}, 15},
		{"16 GB", model.RAM{TotalGB: model.Float(16)}, 19},
		{"busy", model.RAM{TotalGB: model.Float(32), UsagePercent: model.Float(90)}, 17},
		{"everything wrong", model.RAM{FormFactor: "DDR4", SpeedMHz: model.Float(1600), ChannelMode: model.ChannelSingle, TotalGB: model.Float(4), UsagePercent: model.Float(99)}, 0},
		{"nothing reported", model.RAM{}, 20},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ramScore(&tc.ram); got != tc.want {
				t.Errorf("ramScore = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestStorageScore(t *testing.T) {
	boot := func(typ model.DriveType, capacity, used float64, health *string) []model.Drive {
		return []model.Drive{{Model: "d", Type: typ, CapacityGB: model.Float(capacity), UsedGB: model.Float(used), HealthStatus: health, IsBootDrive: true}}
	}
	tests := []struct {
		name   string
		drives []model.Drive
		want   int
	}{
		{"nvme", boot(model.DriveNVMe, 1000, 100, nil), 15},
		{"sata", boot(model.DriveSATA, 1000, 100, nil), 10},
		{"hdd", boot(model.DriveHDD, 1000, 100, nil), 5},
		{"unknown", boot(model.DriveUnknown, 1000, 100, nil), 8},
		{"unavailable", boot("unavailable", 1000, 100, nil), 8},
		{"nvme 85 percent", boot(model.DriveNVMe, 1000, 850, nil), 14},
		{"nvme 95 percent", boot(model.DriveNVMe, 1000, 950, nil), 12},
		{"unhealthy", boot(model.DriveNVMe, 1000, 100, model.String("Caution")), 10},
		{"healthy", boot(model.DriveNVMe, 1000, 100, model.String("ok")), 15},
		{"hdd full and failing", boot(model.DriveHDD, 1000, 990, model.String("Bad")), 0},
		{"no boot drive", []model.Drive{{Model: "d", Type: model.DriveHDD}}, 15},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := idealScan()
			s.Storage = tc.drives
			if got := storageScore(s); got != tc.want {
				t.Errorf("storageScore = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestSettingsScore(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *model.Scan)
		want   int
	}{
		{"fully tuned", func(*model.Scan) {}, 15},
		{"high performance", func(s *model.Scan) { s.OS.PowerPlan = model.String("High Performance") }, 15},
		{"balanced", func(s *model.Scan) { s.OS.PowerPlan = model.String("Balanced") }, 13},
		{"power saver", func(s *model.Scan) { s.OS.PowerPlan = model.String("Power saver") }, 12},
		{"xmp unknown gets partial credit", func(s *model.Scan) { s.BIOSSettings.XMPEnabled = model.Unknown }, 12},
		{"xmp off", func(s *model.Scan) { s.BIOSSettings.XMPEnabled = model.False }, 10},
		{"driver absent", func(s *model.Scan) { s.GPU.DriverVersion = nil }, 13},
		{"driver blank", func(s *model.Scan) { s.GPU.DriverVersion = model.String("") }, 13},
		{"rebar unknown", func(s *model.Scan) { s.BIOSSettings.ResizableBAR = model.Unknown }, 13},
		{"game mode off", func(s *model.Scan) { s.OS.GameMode = model.False }, 14},
		{"hags off", func(s *model.Scan) { s.OS.HWGPUScheduling = model.False }, 13},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := idealScan()
			tc.mutate(s)
			if got := settingsScore(s); got != tc.want {
				t.Errorf("settingsScore = %d, want %d", got, tc.want)
			}
		})
	}
}

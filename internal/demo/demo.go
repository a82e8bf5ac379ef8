// Package demo provides a built-in sample scan of a typical mid-range gaming
// PC with a few common misconfigurations. It backs the demo command, the
// demo HTTP route and the demo_report MCP tool.
package demo

import "github.com/dmitriimaksimovdevelop/pcdiag/internal/model"

// ScanID is the fixed id of the demo scan.
const ScanID = "demo-0000-0000-0000-000000000000"

// Scan returns a fresh copy of the demo scan. Callers may modify it.
func Scan() *model.Scan {
	return &model.Scan{
		ScanID:              ScanID,
		Timestamp:           "2025-01-15T20:30:00Z",
		ScanDurationSeconds: model.Float(12.4),
		CPU: &model.CPU{
			ModelName:        "AMD Ryzen 5 5600X 6-Core Processor",
			Architecture:     "x86_64",
			PhysicalCores:    model.Int(6),
			LogicalCores:     model.Int(12),
			BaseClockGHz:     model.Float(3.7),
			MaxBoostClockGHz: model.Float(4.6),
			CurrentClockGHz:  model.Float(4.45),
			CacheL1Bytes:     model.Int64(384 << 10),
			CacheL2Bytes:     model.Int64(3 << 20),
			CacheL3Bytes:     model.Int64(32 << 20),
			CurrentTempC:     model.Float(72),
			UsagePerCore:     []float64{74, 68, 81, 70, 66, 77, 72, 69, 75, 71, 64, 73},
			PowerDrawW:       model.Float(76),
		},
		GPU: &model.GPU{
			ModelName:      "NVIDIA GeForce RTX 4070",
			VRAMTotalGB:    model.Float(12),
			VRAMUsedGB:     model.Float(7.8),
			CoreClockMHz:   model.Float(2610),
			MemoryClockMHz: model.Float(10501),
			CurrentTempC:   model.Float(74),
			FanSpeedPct:    model.Float(55),
			DriverVersion:  model.String("560.94"),
			UtilizationPct: model.Float(88),
			PCIeGeneration: model.Int(4),
			PCIeLinkWidth:  model.Int(16),
		},
		RAM: &model.RAM{
			TotalGB:       model.Float(16),
			SpeedMHz:      model.Float(2133),
			RatedSpeedMHz: model.Float(3600),
			NumSticks:     model.Int(2),
			NumSlots:      model.Int(4),
			ChannelMode:   model.ChannelDual,
			FormFactor:    "DIMM DDR4",
			Timings:       "CL15-15-15-36",
			CurrentUsedGB: model.Float(9.9),
			UsagePercent:  model.Float(62),
		},
		Storage: []model.Drive{
			{
				Model:        "Samsung SSD 970 EVO Plus 500GB",
				Type:         model.DriveNVMe,
				CapacityGB:   model.Float(465.8),
				UsedGB:       model.Float(386.6),
				FreeGB:       model.Float(79.2),
				Interface:    "NVMe",
				HealthStatus: model.String("Healthy"),
				IsBootDrive:  true,
				Mountpoint:   `C:\`,
				FSType:       "NTFS",
			},
			{
				Model:        "ST2000DM008-2FR102",
				Type:         model.DriveHDD,
				CapacityGB:   model.Float(1863),
				UsedGB:       model.Float(1120),
				FreeGB:       model.Float(743),
				Interface:    "SATA",
				HealthStatus: model.String("Healthy"),
				Mountpoint:   `D:\`,
				FSType:       "NTFS",
			},
		},
		Motherboard: model.Motherboard{
			Model:       "B550 AORUS ELITE V2",
			Chipset:     "AMD B550",
			BIOSVersion: "F16",
			BIOSDate:    "2023-03-22",
		},
		OS: &model.OSInfo{
			Version:         "Windows 11 Pro 23H2",
			BuildNumber:     "22631",
			UpToDate:        model.True,
			PowerPlan:       model.String("Balanced"),
			GameMode:        model.True,
			HWGPUScheduling: model.False,
			VirtualMemoryGB: model.Float(16),
		},
		Network: model.Network{
			ConnectionType: "Ethernet",
			SpeedMbps:      model.Float(1000),
			LatencyMs:      model.Float(14),
		},
		BIOSSettings: model.BIOSSettings{
			XMPEnabled:     model.False,
			ResizableBAR:   model.False,
			TPM:            model.True,
			Virtualization: model.True,
			SecureBoot:     model.True,
		},
	}
}

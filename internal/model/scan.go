package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Scan is one point-in-time hardware/OS snapshot produced by a collection
// agent. JSON keys match the agent's document. Unmeasured numeric values are
// nil pointers, never zero.
type Scan struct {
	ScanID              string       `json:"scan_id,omitempty"`
	Timestamp           string       `json:"timestamp,omitempty"`
	ScanDurationSeconds *float64     `json:"scan_duration_seconds,omitempty"`
	CPU                 *CPU         `json:"cpu" validate:"required"`
	GPU                 *GPU         `json:"gpu" validate:"required"`
	RAM                 *RAM         `json:"ram" validate:"required"`
	Storage             []Drive      `json:"storage" validate:"required,min=1,dive"`
	Motherboard         Motherboard  `json:"motherboard"`
	OS                  *OSInfo      `json:"os" validate:"required"`
	Network             Network      `json:"network"`
	BIOSSettings        BIOSSettings `json:"bios_settings"`
	Issues              []string     `json:"issues,omitempty"`
}

type CPU struct {
	ModelName        string    `json:"model_name" validate:"required"`
	Architecture     string    `json:"architecture,omitempty"`
	PhysicalCores    *int      `json:"physical_cores" validate:"omitempty,gte=1"`
	LogicalCores     *int      `json:"logical_cores" validate:"omitempty,gte=1"`
	BaseClockGHz     *float64  `json:"base_clock_ghz" validate:"omitempty,gte=0"`
	MaxBoostClockGHz *float64  `json:"max_boost_clock_ghz" validate:"omitempty,gte=0"`
	CurrentClockGHz  *float64  `json:"current_clock_ghz" validate:"omitempty,gte=0"`
	CacheL1Bytes     *int64    `json:"cache_l1_bytes" validate:"omitempty,gte=0"`
	CacheL2Bytes     *int64    `json:"cache_l2_bytes" validate:"omitempty,gte=0"`
	CacheL3Bytes     *int64    `json:"cache_l3_bytes" validate:"omitempty,gte=0"`
	CurrentTempC     *float64  `json:"current_temp_c"`
	UsagePerCore     []float64 `json:"usage_per_core" validate:"dive,gte=0,lte=100"`
	PowerDrawW       *float64  `json:"power_draw_w" validate:"omitempty,gte=0"`
}

// AverageUtilization returns the mean of the per-core utilization samples.
// ok is false when no samples were reported.
func (c *CPU) AverageUtilization() (avg float64, ok bool) {
	if c == nil || len(c.UsagePerCore) == 0 {
		return 0, false
	}
	var sum float64
	for _, u := range c.UsagePerCore {
		sum += u
	}
	return sum / float64(len(c.UsagePerCore)), true
}

type GPU struct {
	ModelName      string   `json:"model_name" validate:"required"`
	VRAMTotalGB    *float64 `json:"vram_total_gb" validate:"omitempty,gte=0"`
	VRAMUsedGB     *float64 `json:"vram_used_gb" validate:"omitempty,gte=0"`
	CoreClockMHz   *float64 `json:"gpu_clock_mhz" validate:"omitempty,gte=0"`
	MemoryClockMHz *float64 `json:"memory_clock_mhz" validate:"omitempty,gte=0"`
	CurrentTempC   *float64 `json:"current_temp_c"`
	FanSpeedPct    *float64 `json:"fan_speed_pct" validate:"omitempty,gte=0,lte=100"`
	DriverVersion  *string  `json:"driver_version"`
	UtilizationPct *float64 `json:"gpu_utilization_pct" validate:"omitempty,gte=0,lte=100"`
	PCIeGeneration *int     `json:"pcie_generation" validate:"omitempty,gte=1"`
	PCIeLinkWidth  *int     `json:"pcie_link_width" validate:"omitempty,gte=1"`
}

// VRAMRatio returns used/total VRAM. ok is false when either value is absent
// or the total is not positive.
func (g *GPU) VRAMRatio() (ratio float64, ok bool) {
	if g == nil || g.VRAMTotalGB == nil || g.VRAMUsedGB == nil || *g.VRAMTotalGB <= 0 {
		return 0, false
	}
	return *g.VRAMUsedGB / *g.VRAMTotalGB, true
}

// ChannelMode is the memory channel configuration.
type ChannelMode string

const (
	ChannelSingle  ChannelMode = "single"
	ChannelDual    ChannelMode = "dual"
	ChannelTriple  ChannelMode = "triple"
	ChannelQuad    ChannelMode = "quad"
	ChannelUnknown ChannelMode = "unknown"
)

type RAM struct {
	TotalGB       *float64    `json:"total_gb" validate:"omitempty,gte=0"`
	SpeedMHz      *float64    `json:"speed_mhz" validate:"omitempty,gte=0"`
	RatedSpeedMHz *float64    `json:"rated_speed_mhz,omitempty" validate:"omitempty,gte=0"`
	NumSticks     *int        `json:"num_sticks" validate:"omitempty,gte=0"`
	NumSlots      *int        `json:"num_slots" validate:"omitempty,gte=0"`
	ChannelMode   ChannelMode `json:"channel_mode" validate:"omitempty,oneof=single dual triple quad unknown"`
	FormFactor    string      `json:"form_factor"`
	Timings       Timings     `json:"timings,omitempty"`
	CurrentUsedGB *float64    `json:"current_used_gb" validate:"omitempty,gte=0"`
	UsagePercent  *float64    `json:"usage_percent" validate:"omitempty,gte=0,lte=100"`
}

// DDRGeneration reports which DDR generations the form factor string names.
// Both may be true for a malformed string.
func (r *RAM) DDRGeneration() (ddr4, ddr5 bool) {
	ff := strings.ToLower(r.FormFactor)
	return strings.Contains(ff, "ddr4"), strings.Contains(ff, "ddr5")
}

// Timings is a memory timing string such as "CL16-18-18-38". Agents that
// report timings as an object are accepted and rendered to the same form.
type Timings string

func (t *Timings) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Timings(strings.TrimSpace(s))
		return nil
	}

	var obj struct {
		CL   *int `json:"cl"`
		TRCD *int `json:"trcd"`
		TRP  *int `json:"trp"`
		TRAS *int `json:"tras"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("timings: %w", err)
	}
	if obj.CL == nil {
		*t = ""
		return nil
	}
	s := fmt.Sprintf("CL%d", *obj.CL)
	for _, v := range []*int{obj.TRCD, obj.TRP, obj.TRAS} {
		if v == nil {
			break
		}
		s += fmt.Sprintf("-%d", *v)
	}
	*t = Timings(s)
	return nil
}

// DriveType is the storage medium of a drive.
type DriveType string

const (
	DriveNVMe    DriveType = "NVMe SSD"
	DriveSATA    DriveType = "SATA SSD"
	DriveHDD     DriveType = "HDD"
	DriveUnknown DriveType = "Unknown"
)

// Known normalizes agent values such as "unavailable" to DriveUnknown.
func (d DriveType) Known() DriveType {
	switch d {
	case DriveNVMe, DriveSATA, DriveHDD:
		return d
	default:
		return DriveUnknown
	}
}

type Drive struct {
	Model        string    `json:"model" validate:"required"`
	Type         DriveType `json:"type" validate:"required,drivetype"`
	CapacityGB   *float64  `json:"capacity_gb" validate:"omitempty,gte=0"`
	UsedGB       *float64  `json:"used_gb" validate:"omitempty,gte=0"`
	FreeGB       *float64  `json:"free_gb" validate:"omitempty,gte=0"`
	Interface    string    `json:"interface"`
	HealthStatus *string   `json:"health_status"`
	IsBootDrive  bool      `json:"is_boot_drive"`
	Mountpoint   string    `json:"mountpoint,omitempty"`
	FSType       string    `json:"fstype,omitempty"`
}

// UsageRatio returns used/capacity. When used is not reported it is derived
// from free space. ok is false when capacity is absent or not positive.
func (d *Drive) UsageRatio() (ratio float64, ok bool) {
	if d.CapacityGB == nil || *d.CapacityGB <= 0 {
		return 0, false
	}
	switch {
	case d.UsedGB != nil:
		return *d.UsedGB / *d.CapacityGB, true
	case d.FreeGB != nil:
		return (*d.CapacityGB - *d.FreeGB) / *d.CapacityGB, true
	default:
		return 0, false
	}
}

// Healthy reports the drive health. ok is false when no status was reported.
func (d *Drive) Healthy() (healthy, ok bool) {
	if d.HealthStatus == nil {
		return false, false
	}
	switch strings.ToLower(strings.TrimSpace(*d.HealthStatus)) {
	case "good", "ok", "healthy":
		return true, true
	default:
		return false, true
	}
}

// bootRank orders drive types from slowest to fastest.
var bootRank = map[DriveType]int{DriveHDD: 0, DriveUnknown: 1, DriveSATA: 2, DriveNVMe: 3}

// BootDrive returns the boot-flagged drive on the slowest medium, the first
// such drive on ties, or nil. Both the storage findings and the storage
// score judge the system by this drive.
func (s *Scan) BootDrive() *Drive {
	var boot *Drive
	for i := range s.Storage {
		d := &s.Storage[i]
		if !d.IsBootDrive {
			continue
		}
		if boot == nil || bootRank[d.Type.Known()] < bootRank[boot.Type.Known()] {
			boot = d
		}
	}
	return boot
}

type Motherboard struct {
	Model       string `json:"model,omitempty"`
	Chipset     string `json:"chipset,omitempty"`
	BIOSVersion string `json:"bios_version,omitempty"`
	BIOSDate    string `json:"bios_date,omitempty"`
}

type OSInfo struct {
	Version         string   `json:"windows_version"`
	BuildNumber     string   `json:"build_number,omitempty"`
	UpToDate        Toggle   `json:"is_up_to_date"`
	PowerPlan       *string  `json:"power_plan"`
	GameMode        Toggle   `json:"game_mode"`
	HWGPUScheduling Toggle   `json:"hw_accelerated_gpu_scheduling"`
	VirtualMemoryGB *float64 `json:"virtual_memory_gb" validate:"omitempty,gte=0"`
}

type Network struct {
	ConnectionType string   `json:"connection_type,omitempty"`
	SpeedMbps      *float64 `json:"speed_mbps,omitempty"`
	LatencyMs      *float64 `json:"latency_ms,omitempty"`
}

// BIOSSettings holds firmware toggles. Every toggle may be unknown.
type BIOSSettings struct {
	XMPEnabled     Toggle `json:"xmp_enabled"`
	ResizableBAR   Toggle `json:"resizable_bar"`
	TPM            Toggle `json:"tpm_status"`
	Virtualization Toggle `json:"virtualization"`
	SecureBoot     Toggle `json:"secure_boot"`
}

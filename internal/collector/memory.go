// Memory collector: capacity and usage from gopsutil, module layout and
// speeds from the SMBIOS memory device table (dmidecode -t 17).
package collector

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/model"
)

// MemoryCollector fills the ram section and infers the XMP toggle.
type MemoryCollector struct {
	src    Source
	cmdRun CommandRunner
}

func NewMemoryCollector(src Source) *MemoryCollector {
	return &MemoryCollector{src: src, cmdRun: &ExecCommandRunner{}}
}

// NewMemoryCollectorWithRunner creates a MemoryCollector with a custom CommandRunner for testing.
func NewMemoryCollectorWithRunner(src Source, runner CommandRunner) *MemoryCollector {
	return &MemoryCollector{src: src, cmdRun: runner}
}

func (c *MemoryCollector) Name() string { return "memory" }

// memoryModule is one populated or empty slot from the SMBIOS table.
type memoryModule struct {
	sizeBytes  int64
	formFactor string
	ddrType    string
	speed      int
	configured int
}

func (c *MemoryCollector) Collect(ctx context.Context, cfg Config) (Patch, error) {
	vm, err := c.src.Memory(ctx)
	if err != nil {
		return nil, fmt.Errorf("virtual memory: %w", err)
	}

	out := &model.RAM{
		TotalGB:       model.Float(gb(vm.Total)),
		CurrentUsedGB: model.Float(gb(vm.Used)),
		UsagePercent:  model.Float(round2(vm.UsedPercent)),
		ChannelMode:   model.ChannelUnknown,
	}

	// dmidecode needs root; without it only the totals are known.
	var issues []string
	if raw, err := c.cmdRun.Run(ctx, "dmidecode", "-t", "17"); err == nil {
		applyModules(out, parseMemoryDevices(raw))
	}

	xmp := inferXMP(out.SpeedMHz, out.RatedSpeedMHz)
	if out.SpeedMHz != nil && out.RatedSpeedMHz != nil && *out.SpeedMHz < *out.RatedSpeedMHz*0.9 {
		issues = append(issues, fmt.Sprintf(
			"RAM running at %.0f MHz but rated for %.0f MHz -- XMP may not be enabled in BIOS",
			*out.SpeedMHz, *out.RatedSpeedMHz))
	}

	return func(s *model.Scan) {
		s.RAM = out
		s.BIOSSettings.XMPEnabled = xmp
		s.Issues = append(s.Issues, issues...)
	}, nil
}

// parseMemoryDevices parses `dmidecode -t 17` output into one module per
// "Memory Device" block, including empty slots.
func parseMemoryDevices(raw []byte) []memoryModule {
	var (
		mods []memoryModule
		cur  *memoryModule
	)
	sc := bufio.NewScanner(bytes.NewReader(raw))
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "Memory Device" {
			mods = append(mods, memoryModule{})
			cur = &mods[len(mods)-1]
			continue
		}
		if cur == nil || !strings.HasPrefix(line, "\t") || strings.HasPrefix(line, "\t\t") {
			continue
		}
		key, val, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}
		val = strings.TrimSpace(val)
		switch key {
		case "Size":
			cur.sizeBytes = parseModuleSize(val)
		case "Form Factor":
			cur.formFactor = val
		case "Type":
			cur.ddrType = val
		case "Speed":
			cur.speed = leadingInt(val)
		case "Configured Memory Speed", "Configured Clock Speed":
			cur.configured = leadingInt(val)
		}
	}
	return mods
}

func applyModules(out *model.RAM, mods []memoryModule) {
	if len(mods) == 0 {
		return
	}
	out.NumSlots = model.Int(len(mods))

	var (
		sticks           int
		minSpeed, maxRtd int
	)
	for _, m := range mods {
		if m.sizeBytes <= 0 {
			continue
		}
		sticks++
		actual := m.configured
		if actual == 0 {
			actual = m.speed
		}
		if actual > 0 && (minSpeed == 0 || actual < minSpeed) {
			minSpeed = actual
		}
		if m.speed > maxRtd {
			maxRtd = m.speed
		}
		if out.FormFactor == "" && m.formFactor != "" && m.formFactor != "Unknown" {
			out.FormFactor = strings.TrimSpace(m.formFactor + " " + m.ddrType)
		}
	}
	out.NumSticks = model.Int(sticks)
	out.ChannelMode = channelMode(sticks)
	if minSpeed > 0 {
		out.SpeedMHz = model.Float(float64(minSpeed))
	}
	if maxRtd > 0 {
		out.RatedSpeedMHz = model.Float(float64(maxRtd))
	}
}

// channelMode guesses the channel layout from the stick count.
func channelMode(sticks int) model.ChannelMode {
	switch {
	case sticks == 1:
		return model.ChannelSingle
	case sticks == 2:
		return model.ChannelDual
	case sticks == 3 || sticks == 6:
		return model.ChannelTriple
	case sticks >= 4:
		return model.ChannelQuad
	default:
		return model.ChannelUnknown
	}
}

// inferXMP compares the running speed with the rated speed: within 5% means
// the profile is on, more than 20% below means it is off.
func inferXMP(actual, rated *float64) model.Toggle {
	if actual == nil || rated == nil || *actual <= 0 || *rated <= 0 {
		return model.Unknown
	}
	switch {
	case *actual >= *rated*0.95:
		return model.True
	case *actual < *rated*0.8:
		return model.False
	default:
		return model.Unknown
	}
}

// parseModuleSize parses "16 GB", "8192 MB" or "No Module Installed".
func parseModuleSize(val string) int64 {
	fields := strings.Fields(val)
	if len(fields) != 2 {
		return 0
	}
	n, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0
	}
	switch strings.ToUpper(fields[1]) {
	case "KB":
		return n << 10
	case "MB":
		return n << 20
	case "GB":
		return n << 30
	case "TB":
		return n << 40
	}
	return 0
}

func leadingInt(val string) int {
	fields := strings.Fields(val)
	if len(fields) == 0 {
		return 0
	}
	n, _ := strconv.Atoi(fields[0])
	return n
}

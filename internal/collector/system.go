// System collector: OS identity from gopsutil, power plan from the cpufreq
// governor (or powercfg on Windows), motherboard from DMI, and firmware
// toggles from sysfs/efivars.
package collector

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/model"
)

// SystemCollector fills the os and motherboard sections and the TPM,
// virtualization and Secure Boot toggles.
type SystemCollector struct {
	src    Source
	cmdRun CommandRunner
	goos   string
}

func NewSystemCollector(src Source) *SystemCollector {
	return &SystemCollector{src: src, cmdRun: &ExecCommandRunner{}, goos: runtime.GOOS}
}

// NewSystemCollectorWithRunner creates a SystemCollector with a custom CommandRunner for testing.
func NewSystemCollectorWithRunner(src Source, runner CommandRunner, goos string) *SystemCollector {
	return &SystemCollector{src: src, cmdRun: runner, goos: goos}
}

func (c *SystemCollector) Name() string { return "system" }

// secureBootVar is the EFI global variable holding the Secure Boot state.
const secureBootVar = "SecureBoot-8be4df61-93ca-11d2-aa0d-00e098032b8c"

// powercfgRe extracts the scheme name from `powercfg /getactivescheme`.
var powercfgRe = regexp.MustCompile(`\(([^)]+)\)\s*$`)

func (c *SystemCollector) Collect(ctx context.Context, cfg Config) (Patch, error) {
	info, err := c.src.HostInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("host info: %w", err)
	}

	osInfo := &model.OSInfo{
		Version:     strings.TrimSpace(info.Platform + " " + info.PlatformVersion),
		BuildNumber: info.KernelVersion,
		PowerPlan:   c.powerPlan(ctx, sysRootOr(cfg)),
	}
	if osInfo.Version == "" {
		osInfo.Version = info.OS
	}
	if sw, err := c.src.Swap(ctx); err == nil && sw.Total > 0 {
		osInfo.VirtualMemoryGB = model.Float(gb(sw.Total))
	}

	board := readDMI(sysRootOr(cfg))
	bios := readFirmwareToggles(sysRootOr(cfg), procRootOr(cfg))

	return func(s *model.Scan) {
		s.OS = osInfo
		s.Motherboard = board
		s.BIOSSettings.TPM = bios.TPM
		s.BIOSSettings.Virtualization = bios.Virtualization
		s.BIOSSettings.SecureBoot = bios.SecureBoot
	}, nil
}

// powerPlan names the active power policy in the same vocabulary Windows
// uses, so the power-plan rule applies unchanged.
func (c *SystemCollector) powerPlan(ctx context.Context, sysRoot string) *string {
	if c.goos == "windows" {
		out, err := c.cmdRun.Run(ctx, "powercfg", "/getactivescheme")
		if err != nil {
			return nil
		}
		if m := powercfgRe.FindStringSubmatch(strings.TrimSpace(string(out))); m != nil {
			return model.String(m[1])
		}
		return nil
	}

	if profile := readFile(filepath.Join(sysRoot, "firmware", "acpi", "platform_profile")); profile != "" {
		return model.String(planForProfile(profile))
	}
	gov := readFile(filepath.Join(sysRoot, "devices", "system", "cpu", "cpu0", "cpufreq", "scaling_governor"))
	if gov == "" {
		return nil
	}
	return model.String(planForGovernor(gov))
}

func planForProfile(profile string) string {
	switch profile {
	case "performance":
		return "High Performance"
	case "low-power", "quiet", "cool":
		return "Power saver"
	default:
		return "Balanced"
	}
}

func planForGovernor(gov string) string {
	switch gov {
	case "performance":
		return "High Performance"
	case "powersave":
		return "Power saver"
	default:
		return "Balanced"
	}
}

// readDMI reads the board identity from /sys/class/dmi/id.
func readDMI(sysRoot string) model.Motherboard {
	dir := filepath.Join(sysRoot, "class", "dmi", "id")
	get := func(name string) string {
		v := readFile(filepath.Join(dir, name))
		if strings.EqualFold(v, "to be filled by o.e.m.") || strings.EqualFold(v, "default string") {
			return ""
		}
		return v
	}
	return model.Motherboard{
		Model:       strings.TrimSpace(get("board_vendor") + " " + get("board_name")),
		BIOSVersion: get("bios_version"),
		BIOSDate:    get("bios_date"),
	}
}

// readFirmwareToggles detects TPM presence, CPU virtualization and Secure
// Boot. Anything that cannot be read stays unknown.
func readFirmwareToggles(sysRoot, procRoot string) model.BIOSSettings {
	var b model.BIOSSettings

	if _, err := os.Stat(filepath.Join(sysRoot, "class", "tpm", "tpm0")); err == nil {
		b.TPM = model.True
	} else if _, err := os.Stat(filepath.Join(sysRoot, "class", "tpm")); err == nil {
		b.TPM = model.False
	}

	for _, line := range strings.Split(readFile(filepath.Join(procRoot, "cpuinfo")), "\n") {
		if !strings.HasPrefix(line, "flags") {
			continue
		}
		for _, f := range strings.Fields(line) {
			if f == "vmx" || f == "svm" {
				b.Virtualization = model.True
			}
		}
		break
	}

	// efivars: 4 attribute bytes followed by the value byte.
	if data, err := os.ReadFile(filepath.Join(sysRoot, "firmware", "efi", "efivars", secureBootVar)); err == nil && len(data) >= 5 {
		if data[4] == 1 {
			b.SecureBoot = model.True
		} else {
			b.SecureBoot = model.False
		}
	}
	return b
}

// GPU collector: NVIDIA cards through nvidia-smi, other vendors through the
// DRM sysfs attributes plus lspci for the model name.
package collector

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/model"
)

// GPUCollector fills the gpu section and the Resizable BAR toggle.
type GPUCollector struct {
	cmdRun CommandRunner
}

func NewGPUCollector() *GPUCollector {
	return &GPUCollector{cmdRun: &ExecCommandRunner{}}
}

// NewGPUCollectorWithRunner creates a GPUCollector with a custom CommandRunner for testing.
func NewGPUCollectorWithRunner(runner CommandRunner) *GPUCollector {
	return &GPUCollector{cmdRun: runner}
}

func (c *GPUCollector) Name() string { return "gpu" }

// smiFields is the --query-gpu column order parseSMI expects.
var smiFields = []string{
	"name",
	"memory.total",
	"memory.used",
	"clocks.gr",
	"clocks.mem",
	"temperature.gpu",
	"fan.speed",
	"driver_version",
	"utilization.gpu",
	"pcie.link.gen.current",
	"pcie.link.width.current",
}

// bar1TotalRe matches the BAR1 total in `nvidia-smi -q -d MEMORY`.
var bar1TotalRe = regexp.MustCompile(`(?s)BAR1 Memory Usage.*?Total\s*:\s*(\d+)\s*MiB`)

func (c *GPUCollector) Collect(ctx context.Context, cfg Config) (Patch, error) {
	out, err := c.cmdRun.Run(ctx, "nvidia-smi",
		"--query-gpu="+strings.Join(smiFields, ","),
		"--format=csv,noheader,nounits")
	if err == nil {
		gpu, perr := parseSMI(out)
		if perr != nil {
			return nil, perr
		}
		rebar := model.Unknown
		if q, err := c.cmdRun.Run(ctx, "nvidia-smi", "-q", "-d", "MEMORY"); err == nil {
			rebar = parseBAR1(q)
		}
		return func(s *model.Scan) {
			s.GPU = gpu
			s.BIOSSettings.ResizableBAR = rebar
		}, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	gpu, ok := c.fromDRM(ctx, sysRootOr(cfg))
	if !ok {
		return nil, fmt.Errorf("no supported GPU found (nvidia-smi: %v)", err)
	}
	return func(s *model.Scan) { s.GPU = gpu }, nil
}

// parseSMI reads the first line of nvidia-smi CSV output. Columns that the
// driver reports as "[N/A]" or "[Not Supported]" stay absent.
func parseSMI(out []byte) (*model.GPU, error) {
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	fields := strings.Split(line, ",")
	if len(fields) < len(smiFields) {
		return nil, fmt.Errorf("nvidia-smi: expected %d columns, got %d", len(smiFields), len(fields))
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if fields[0] == "" {
		return nil, fmt.Errorf("nvidia-smi: empty GPU name")
	}

	num := func(i int) *float64 {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil
		}
		return model.Float(v)
	}
	mib := func(i int) *float64 {
		v := num(i)
		if v == nil {
			return nil
		}
		return model.Float(round2(*v / 1024))
	}
	integer := func(i int) *int {
		v, err := strconv.Atoi(fields[i])
		if err != nil {
			return nil
		}
		return model.Int(v)
	}

	g := &model.GPU{
		ModelName:      fields[0],
		VRAMTotalGB:    mib(1),
		VRAMUsedGB:     mib(2),
		CoreClockMHz:   num(3),
		MemoryClockMHz: num(4),
		CurrentTempC:   num(5),
		FanSpeedPct:    num(6),
		UtilizationPct: num(8),
		PCIeGeneration: integer(9),
		PCIeLinkWidth:  integer(10),
	}
	if fields[7] != "" && !strings.HasPrefix(fields[7], "[") {
		g.DriverVersion = model.String(fields[7])
	}
	return g, nil
}

// parseBAR1 reports Resizable BAR as enabled when the BAR1 aperture is
// larger than the legacy 256 MiB window.
func parseBAR1(out []byte) model.Toggle {
	m := bar1TotalRe.FindSubmatch(out)
	if m == nil {
		return model.Unknown
	}
	total, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return model.Unknown
	}
	if total > 256 {
		return model.True
	}
	return model.False
}

// fromDRM reads the first DRM card that exposes VRAM counters (amdgpu).
func (c *GPUCollector) fromDRM(ctx context.Context, sysRoot string) (*model.GPU, bool) {
	cards, _ := filepath.Glob(filepath.Join(sysRoot, "class", "drm", "card[0-9]"))
	for _, card := range cards {
		dev := filepath.Join(card, "device")
		total, ok := readSysInt(dev, "mem_info_vram_total")
		if !ok || total <= 0 {
			continue
		}
		g := &model.GPU{
			ModelName:   c.pciName(ctx, dev),
			VRAMTotalGB: model.Float(gb(uint64(total))),
		}
		if used, ok := readSysInt(dev, "mem_info_vram_used"); ok && used >= 0 {
			g.VRAMUsedGB = model.Float(gb(uint64(used)))
		}
		if busy, ok := readSysInt(dev, "gpu_busy_percent"); ok {
			g.UtilizationPct = model.Float(float64(busy))
		}
		if gen := pcieGeneration(readFile(filepath.Join(dev, "current_link_speed"))); gen > 0 {
			g.PCIeGeneration = model.Int(gen)
		}
		if w, ok := readSysInt(dev, "current_link_width"); ok && w > 0 {
			g.PCIeLinkWidth = model.Int(int(w))
		}
		return g, true
	}
	return nil, false
}

// pciName asks lspci for the device name of the card's PCI slot.
func (c *GPUCollector) pciName(ctx context.Context, dev string) string {
	slot := filepath.Base(readLink(dev))
	if out, err := c.cmdRun.Run(ctx, "lspci", "-mm", "-s", slot); err == nil {
		// 03:00.0 "VGA compatible controller" "Vendor" "Device" ...
		quoted := strings.Split(string(out), `"`)
		if len(quoted) >= 6 && strings.TrimSpace(quoted[5]) != "" {
			return strings.TrimSpace(quoted[5])
		}
	}
	return "GPU " + slot
}

// pcieGeneration maps a link speed such as "16.0 GT/s PCIe" to its generation.
func pcieGeneration(speed string) int {
	fields := strings.Fields(speed)
	if len(fields) == 0 {
		return 0
	}
	switch fields[0] {
	case "2.5":
		return 1
	case "5.0":
		return 2
	case "8.0":
		return 3
	case "16.0":
		return 4
	case "32.0":
		return 5
	case "64.0":
		return 6
	}
	return 0
}

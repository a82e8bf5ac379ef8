// CPU collector: model and core counts from gopsutil, clocks and cache
// sizes from sysfs, per-core utilization sampled over the interval.
package collector

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/model"
)

// CPUCollector fills the cpu section.
type CPUCollector struct {
	src Source
}

func NewCPUCollector(src Source) *CPUCollector {
	return &CPUCollector{src: src}
}

func (c *CPUCollector) Name() string { return "cpu" }

// nominalClockRe matches the "@ 3.20GHz" suffix Intel puts in model names.
var nominalClockRe = regexp.MustCompile(`@\s*([0-9.]+)\s*GHz`)

// cpuSensorKeys lists package-level sensors in preference order.
var cpuSensorKeys = []string{
	"coretemp_package_id_0",
	"k10temp_tctl",
	"k10temp_tdie",
	"zenpower_tdie",
	"cpu_thermal",
	"acpitz",
}

func (c *CPUCollector) Collect(ctx context.Context, cfg Config) (Patch, error) {
	infos, err := c.src.CPUInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("cpu info: %w", err)
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("cpu info: no processors reported")
	}

	out := &model.CPU{
		ModelName:    strings.TrimSpace(infos[0].ModelName),
		Architecture: runtime.GOARCH,
	}
	if n, err := c.src.CPUCounts(ctx, false); err == nil && n > 0 {
		out.PhysicalCores = model.Int(n)
	}
	if n, err := c.src.CPUCounts(ctx, true); err == nil && n > 0 {
		out.LogicalCores = model.Int(n)
	}

	sysRoot := sysRootOr(cfg)
	c.readClocks(sysRoot, out)
	if out.BaseClockGHz == nil {
		if m := nominalClockRe.FindStringSubmatch(out.ModelName); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				out.BaseClockGHz = model.Float(v)
			}
		}
	}
	l1, l2, l3 := readCacheSizes(sysRoot)
	out.CacheL1Bytes, out.CacheL2Bytes, out.CacheL3Bytes = l1, l2, l3

	if temps, err := c.src.Temperature(ctx); err == nil {
		readings := make(map[string]float64, len(temps))
		for _, t := range temps {
			if t.Temperature > 0 {
				readings[t.SensorKey] = t.Temperature
			}
		}
		for _, key := range cpuSensorKeys {
			if v, ok := readings[key]; ok {
				out.CurrentTempC = model.Float(round2(v))
				break
			}
		}
	}

	interval := cfg.SampleInterval
	if interval == 0 {
		interval = DefaultConfig().SampleInterval
	}
	per, err := c.src.CPUPercent(ctx, interval, true)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("cpu utilization: %w", err)
	}
	for _, p := range per {
		out.UsagePerCore = append(out.UsagePerCore, round2(p))
	}

	return func(s *model.Scan) { s.CPU = out }, nil
}

// readClocks reads cpufreq attributes of cpu0. Values are in kHz.
func (c *CPUCollector) readClocks(sysRoot string, out *model.CPU) {
	base := []string{"devices", "system", "cpu", "cpu0", "cpufreq"}
	ghz := func(name string) *float64 {
		v, ok := readSysInt(sysRoot, append(base, name)...)
		if !ok || v <= 0 {
			return nil
		}
		return model.Float(round2(float64(v) / 1e6))
	}
	out.CurrentClockGHz = ghz("scaling_cur_freq")
	out.MaxBoostClockGHz = ghz("cpuinfo_max_freq")
	out.BaseClockGHz = ghz("base_frequency")
}

// readCacheSizes totals cache sizes per level across all CPUs, counting each
// shared cache once.
func readCacheSizes(sysRoot string) (l1, l2, l3 *int64) {
	cpus, _ := filepath.Glob(filepath.Join(sysRoot, "devices", "system", "cpu", "cpu[0-9]*", "cache", "index[0-9]*"))
	sort.Strings(cpus)

	seen := make(map[string]bool)
	totals := make(map[int64]int64)
	for _, dir := range cpus {
		level, ok := readSysInt(dir, "level")
		if !ok {
			continue
		}
		size, ok := parseCacheSize(readFile(filepath.Join(dir, "size")))
		if !ok {
			continue
		}
		key := fmt.Sprintf("%d/%s/%s", level, readFile(filepath.Join(dir, "type")), readFile(filepath.Join(dir, "shared_cpu_list")))
		if _, err := os.Stat(filepath.Join(dir, "shared_cpu_list")); err != nil {
			key = dir
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		totals[level] += size
	}

	ptr := func(level int64) *int64 {
		if v, ok := totals[level]; ok {
			return model.Int64(v)
		}
		return nil
	}
	return ptr(1), ptr(2), ptr(3)
}

// parseCacheSize parses sysfs sizes such as "32K" or "16M".
func parseCacheSize(raw string) (int64, bool) {
	if raw == "" {
		return 0, false
	}
	mult := int64(1)
	switch raw[len(raw)-1] {
	case 'K', 'k':
		mult = 1024
		raw = raw[:len(raw)-1]
	case 'M', 'm':
		mult = 1024 * 1024
		raw = raw[:len(raw)-1]
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v * mult, true
}

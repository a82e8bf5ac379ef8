// Package collector gathers the local machine's hardware and OS state into a
// scan document. Each collector fills one section and never fails the scan
// as a whole: missing data stays absent.
package collector

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/model"
)

// CommandRunner abstracts external command execution for testability.
type CommandRunner interface {
	// Run executes a command and returns its standard output.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecCommandRunner is the default CommandRunner using os/exec.
type ExecCommandRunner struct{}

func (r *ExecCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Patch applies a collector's findings to a scan. Patches are applied by
// the orchestrator in registration order, on one goroutine.
type Patch func(s *model.Scan)

// Collector gathers one section of the scan.
type Collector interface {
	// Name returns a unique identifier, e.g. "cpu".
	Name() string

	// Collect samples the machine and returns the patch to apply.
	// The context carries the deadline/timeout.
	Collect(ctx context.Context, cfg Config) (Patch, error)
}

// Config is passed to every collector.
type Config struct {
	// SampleInterval is how long utilization is sampled (default 1s).
	SampleInterval time.Duration

	// Timeout bounds the whole collection run.
	Timeout time.Duration

	// Quiet suppresses progress output.
	Quiet bool

	// Verbose adds per-collector debug lines to the progress output.
	Verbose bool

	// SysRoot is the path to sysfs mount (default "/sys").
	// Can be overridden for testing.
	SysRoot string

	// ProcRoot is the path to procfs mount (default "/proc").
	ProcRoot string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SampleInterval: 1 * time.Second,
		Timeout:        30 * time.Second,
		SysRoot:        "/sys",
		ProcRoot:       "/proc",
	}
}

// Source is the set of host queries collectors depend on. The zero value is
// not usable; GopsutilSource returns the live implementation.
type Source struct {
	CPUInfo     func(ctx context.Context) ([]cpu.InfoStat, error)
	CPUCounts   func(ctx context.Context, logical bool) (int, error)
	CPUPercent  func(ctx context.Context, interval time.Duration, percpu bool) ([]float64, error)
	Temperature func(ctx context.Context) ([]host.TemperatureStat, error)
	Memory      func(ctx context.Context) (*mem.VirtualMemoryStat, error)
	Swap        func(ctx context.Context) (*mem.SwapMemoryStat, error)
	Partitions  func(ctx context.Context, all bool) ([]disk.PartitionStat, error)
	Usage       func(ctx context.Context, path string) (*disk.UsageStat, error)
	HostInfo    func(ctx context.Context) (*host.InfoStat, error)
	Interfaces  func(ctx context.Context) (net.InterfaceStatList, error)
}

// GopsutilSource reads the live machine through gopsutil.
func GopsutilSource() Source {
	return Source{
		CPUInfo:     cpu.InfoWithContext,
		CPUCounts:   cpu.CountsWithContext,
		CPUPercent:  cpu.PercentWithContext,
		Temperature: host.SensorsTemperaturesWithContext,
		Memory:      mem.VirtualMemoryWithContext,
		Swap:        mem.SwapMemoryWithContext,
		Partitions:  disk.PartitionsWithContext,
		Usage:       disk.UsageWithContext,
		HostInfo:    host.InfoWithContext,
		Interfaces:  net.InterfacesWithContext,
	}
}

const bytesPerGB = 1024 * 1024 * 1024

// gb converts bytes to GiB rounded to two decimals.
func gb(b uint64) float64 {
	return round2(float64(b) / bytesPerGB)
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

// readFile reads a procfs/sysfs file and returns its trimmed content.
func readFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// readSysInt reads an integer sysfs attribute. ok is false when the file is
// missing or does not hold a number.
func readSysInt(sysRoot string, parts ...string) (int64, bool) {
	raw := readFile(filepath.Join(append([]string{sysRoot}, parts...)...))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// readLink resolves a sysfs symlink, returning path itself when it is not one.
func readLink(path string) string {
	if target, err := os.Readlink(path); err == nil {
		return target
	}
	return path
}

func sysRootOr(cfg Config) string {
	if cfg.SysRoot == "" {
		return "/sys"
	}
	return cfg.SysRoot
}

func procRootOr(cfg Config) string {
	if cfg.ProcRoot == "" {
		return "/proc"
	}
	return cfg.ProcRoot
}

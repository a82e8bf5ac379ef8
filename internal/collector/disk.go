// Storage collector: mounted partitions and usage from gopsutil, grouped by
// physical disk; medium from sysfs rotational flag and device name, health
// from smartctl when it is installed.
package collector

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/model"
)

// partitionRe matches partition suffixes: sda1, nvme0n1p1, etc.
var partitionRe = regexp.MustCompile(`^(sd[a-z]+|hd[a-z]+|vd[a-z]+)\d+$|^(nvme\d+n\d+)p\d+$|^(mmcblk\d+)p\d+$`)

// StorageCollector fills the storage section.
type StorageCollector struct {
	src    Source
	cmdRun CommandRunner
}

func NewStorageCollector(src Source) *StorageCollector {
	return &StorageCollector{src: src, cmdRun: &ExecCommandRunner{}}
}

// NewStorageCollectorWithRunner creates a StorageCollector with a custom CommandRunner for testing.
func NewStorageCollectorWithRunner(src Source, runner CommandRunner) *StorageCollector {
	return &StorageCollector{src: src, cmdRun: runner}
}

func (c *StorageCollector) Name() string { return "storage" }

// physicalDisk accumulates the mounted partitions of one block device.
type physicalDisk struct {
	name        string
	used, free  uint64
	total       uint64
	boot        bool
	mountpoint  string
	fstype      string
}

func (c *StorageCollector) Collect(ctx context.Context, cfg Config) (Patch, error) {
	parts, err := c.src.Partitions(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("partitions: %w", err)
	}

	disks := make(map[string]*physicalDisk)
	for _, p := range parts {
		name, ok := blockDevice(p.Device)
		if !ok {
			continue
		}
		u, err := c.src.Usage(ctx, p.Mountpoint)
		if err != nil || u.Total == 0 {
			continue
		}
		d := disks[name]
		if d == nil {
			d = &physicalDisk{name: name, mountpoint: p.Mountpoint, fstype: p.Fstype}
			disks[name] = d
		}
		d.used += u.Used
		d.free += u.Free
		d.total += u.Total
		if isBootMount(p.Mountpoint) {
			d.boot = true
			d.mountpoint = p.Mountpoint
			d.fstype = p.Fstype
		}
	}
	if len(disks) == 0 {
		return nil, fmt.Errorf("no mounted block devices found")
	}

	names := make([]string, 0, len(disks))
	for n := range disks {
		names = append(names, n)
	}
	sort.Strings(names)

	sysRoot := sysRootOr(cfg)
	drives := make([]model.Drive, 0, len(names))
	for _, n := range names {
		drives = append(drives, c.describe(ctx, sysRoot, disks[n]))
	}

	return func(s *model.Scan) { s.Storage = drives }, nil
}

func (c *StorageCollector) describe(ctx context.Context, sysRoot string, d *physicalDisk) model.Drive {
	base := filepath.Join(sysRoot, "block", d.name)

	drive := model.Drive{
		Model:       readFile(filepath.Join(base, "device", "model")),
		Type:        driveType(d.name, readFile(filepath.Join(base, "queue", "rotational"))),
		UsedGB:      model.Float(gb(d.used)),
		FreeGB:      model.Float(gb(d.free)),
		IsBootDrive: d.boot,
		Mountpoint:  d.mountpoint,
		FSType:      d.fstype,
	}
	if drive.Model == "" {
		drive.Model = d.name
	}

	capacity := d.total
	if sectors, ok := readSysInt(base, "size"); ok && sectors > 0 {
		capacity = uint64(sectors) * 512
	}
	drive.CapacityGB = model.Float(gb(capacity))

	switch drive.Type {
	case model.DriveNVMe:
		drive.Interface = "NVMe"
	case model.DriveSATA, model.DriveHDD:
		drive.Interface = "SATA"
	}

	drive.HealthStatus = c.smartHealth(ctx, d.name)
	return drive
}

// smartHealth runs `smartctl -H`. It returns nil when smartctl is missing
// or its verdict cannot be read.
func (c *StorageCollector) smartHealth(ctx context.Context, dev string) *string {
	if runtime.GOOS == "windows" {
		return nil
	}
	// smartctl encodes disk problems in its exit status but still prints
	// the verdict, so output is inspected even on error.
	out, _ := c.cmdRun.Run(ctx, "smartctl", "-H", "/dev/"+dev)
	text := string(out)
	switch {
	case strings.Contains(text, "PASSED"), strings.Contains(text, "SMART Health Status: OK"):
		return model.String("Healthy")
	case strings.Contains(text, "FAILED"):
		return model.String("Failing")
	default:
		return nil
	}
}

// blockDevice maps a partition device path to its parent disk name, e.g.
// "/dev/nvme0n1p2" to "nvme0n1". Windows drive letters map to themselves.
func blockDevice(device string) (string, bool) {
	if len(device) >= 2 && device[1] == ':' {
		return strings.ToUpper(device[:2]), true
	}
	if !strings.HasPrefix(device, "/dev/") {
		return "", false
	}
	name := strings.TrimPrefix(device, "/dev/")
	if strings.HasPrefix(name, "loop") || strings.HasPrefix(name, "mapper/") || strings.Contains(name, "/") {
		return "", false
	}
	if m := partitionRe.FindStringSubmatch(name); m != nil {
		for _, g := range m[1:] {
			if g != "" {
				return g, true
			}
		}
	}
	return name, true
}

func isBootMount(mountpoint string) bool {
	switch strings.ToUpper(strings.TrimRight(mountpoint, `\`)) {
	case "/", "C:":
		return true
	}
	return false
}

// driveType classifies a block device: NVMe by name, otherwise by the
// sysfs rotational flag.
func driveType(name, rotational string) model.DriveType {
	switch {
	case strings.HasPrefix(name, "nvme"):
		return model.DriveNVMe
	case rotational == "1":
		return model.DriveHDD
	case rotational == "0":
		return model.DriveSATA
	default:
		return model.DriveUnknown
	}
}

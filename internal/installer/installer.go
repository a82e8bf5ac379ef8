// Package installer detects the Linux distribution and installs the helper
// tools the collectors shell out to (smartctl, dmidecode, lspci, sensors).
package installer

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Tool is an external binary a collector uses when it is present.
type Tool struct {
	Binary  string `json:"binary"`
	Feeds   string `json:"feeds"`   // scan fields it fills
	Package string `json:"package"` // step name in PackageSteps
}

// Tools lists every optional helper, in collector order.
var Tools = []Tool{
	{Binary: "nvidia-smi", Feeds: "gpu (NVIDIA), resizable BAR", Package: "nvidia"},
	{Binary: "lspci", Feeds: "gpu model name (AMD/Intel)", Package: "pciutils"},
	{Binary: "dmidecode", Feeds: "ram speed, generation, XMP", Package: "dmidecode"},
	{Binary: "smartctl", Feeds: "storage health", Package: "smartmontools"},
	{Binary: "sensors", Feeds: "cpu temperature drivers", Package: "lm-sensors"},
}

// ToolStatus reports whether a helper was found on PATH.
type ToolStatus struct {
	Tool
	Path      string `json:"path,omitempty"`
	Available bool   `json:"available"`
}

// CheckTools resolves every helper with lookPath (exec.LookPath when nil).
func CheckTools(lookPath func(string) (string, error)) []ToolStatus {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	out := make([]ToolStatus, 0, len(Tools))
	for _, t := range Tools {
		st := ToolStatus{Tool: t}
		if p, err := lookPath(t.Binary); err == nil {
			st.Path, st.Available = p, true
		}
		out = append(out, st)
	}
	return out
}

// FormatTools renders CheckTools output as an aligned table.
func FormatTools(status []ToolStatus) string {
	var sb strings.Builder
	sb.WriteString("Helper tools:\n")
	for _, st := range status {
		mark := "missing"
		if st.Available {
			mark = "ok      " + st.Path
		}
		fmt.Fprintf(&sb, "  %-11s %-30s %s\n", st.Binary, st.Feeds, mark)
	}
	return sb.String()
}

// Runner executes package manager commands. Tests swap it for a recorder.
type Runner interface {
	Run(ctx context.Context, env []string, name string, args ...string) error
}

type execRunner struct {
	stdout, stderr io.Writer
}

func (r execRunner) Run(ctx context.Context, env []string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr
	return cmd.Run()
}

// Installer installs the helper packages for the detected distribution.
type Installer struct {
	DryRun bool

	// Out receives progress lines (default os.Stdout).
	Out io.Writer
	// OSRelease is the os-release path (default /etc/os-release).
	OSRelease string
	// Runner runs package manager commands (default os/exec).
	Runner Runner

	goos string
	euid func() int
}

// New returns an Installer for the running system.
func New(dryRun bool) *Installer {
	return &Installer{
		DryRun:    dryRun,
		Out:       os.Stdout,
		OSRelease: "/etc/os-release",
		Runner:    execRunner{stdout: os.Stdout, stderr: os.Stderr},
		goos:      runtime.GOOS,
		euid:      os.Geteuid,
	}
}

// DistroInfo holds OS and package manager details.
type DistroInfo struct {
	ID         string // "ubuntu", "fedora", "arch"
	VersionID  string // "22.04", "40"
	PkgManager string // "apt", "yum", "dnf", "pacman", "zypper"
}

// PackageSet defines packages for a step.
type PackageSet struct {
	Step     string
	Packages map[string][]string // pkg manager → package names
}

// Run performs the installation. A failing package is reported and skipped
// so one missing package does not block the rest.
func (inst *Installer) Run(ctx context.Context) error {
	if inst.goos != "linux" {
		return fmt.Errorf("pcdiag install is only supported on Linux (current: %s)", inst.goos)
	}
	if !inst.DryRun && inst.euid() != 0 {
		return fmt.Errorf("pcdiag install requires root privileges (use sudo)")
	}

	distro, err := DetectDistro(inst.OSRelease)
	if err != nil {
		return fmt.Errorf("detect distro: %w", err)
	}
	fmt.Fprintf(inst.Out, "Detected: %s %s (package manager: %s)\n", distro.ID, distro.VersionID, distro.PkgManager)

	if !inst.DryRun {
		fmt.Fprintln(inst.Out, "\nUpdating package index...")
		if name, args, env, ok := updateCommand(distro.PkgManager); ok {
			if err := inst.Runner.Run(ctx, env, name, args...); err != nil {
				fmt.Fprintf(inst.Out, "  WARNING: %v\n", err)
			}
		}
	}

	for _, step := range PackageSteps() {
		pkgs := step.Packages[distro.PkgManager]
		if len(pkgs) == 0 {
			continue
		}
		fmt.Fprintf(inst.Out, "\n[%s] Installing: %s\n", step.Step, strings.Join(pkgs, " "))

		if inst.DryRun {
			name, args, _, _ := installCommand(distro.PkgManager, pkgs)
			fmt.Fprintf(inst.Out, "  (dry-run) Would run: %s %s\n", name, strings.Join(args, " "))
			continue
		}

		for _, pkg := range pkgs {
			name, args, env, err := installCommand(distro.PkgManager, []string{pkg})
			if err == nil {
				err = inst.Runner.Run(ctx, env, name, args...)
			}
			if err != nil {
				fmt.Fprintf(inst.Out, "  WARNING: failed to install %s: %v\n", pkg, err)
			} else {
				fmt.Fprintf(inst.Out, "  OK: %s\n", pkg)
			}
		}
	}

	fmt.Fprintln(inst.Out, "\nInstallation complete. Run 'pcdiag capabilities' to verify.")
	return nil
}

// DetectDistro reads an os-release file to identify the distribution.
func DetectDistro(path string) (*DistroInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	info := &DistroInfo{}
	for _, line := range strings.Split(string(data), "\n") {
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		val = strings.Trim(val, "\"")
		switch key {
		case "ID":
			info.ID = val
		case "VERSION_ID":
			info.VersionID = val
		}
	}

	switch info.ID {
	case "ubuntu", "debian", "linuxmint", "pop":
		info.PkgManager = "apt"
	case "centos", "rhel", "rocky", "almalinux", "ol":
		info.PkgManager = "yum"
	case "fedora":
		info.PkgManager = "dnf"
	case "arch", "manjaro", "endeavouros":
		info.PkgManager = "pacman"
	case "opensuse", "opensuse-leap", "opensuse-tumbleweed", "sles":
		info.PkgManager = "zypper"
	default:
		return nil, fmt.Errorf("unsupported distribution: %q", info.ID)
	}
	return info, nil
}

// PackageSteps returns the ordered list of package installations. The NVIDIA
// driver is not installed: nvidia-smi ships with it.
func PackageSteps() []PackageSet {
	return []PackageSet{
		{
			Step: "pciutils",
			Packages: map[string][]string{
				"apt": {"pciutils"}, "yum": {"pciutils"}, "dnf": {"pciutils"},
				"pacman": {"pciutils"}, "zypper": {"pciutils"},
			},
		},
		{
			Step: "dmidecode",
			Packages: map[string][]string{
				"apt": {"dmidecode"}, "yum": {"dmidecode"}, "dnf": {"dmidecode"},
				"pacman": {"dmidecode"}, "zypper": {"dmidecode"},
			},
		},
		{
			Step: "smartmontools",
			Packages: map[string][]string{
				"apt": {"smartmontools"}, "yum": {"smartmontools"}, "dnf": {"smartmontools"},
				"pacman": {"smartmontools"}, "zypper": {"smartmontools"},
			},
		},
		{
			Step: "lm-sensors",
			Packages: map[string][]string{
				"apt": {"lm-sensors"}, "yum": {"lm_sensors"}, "dnf": {"lm_sensors"},
				"pacman": {"lm_sensors"}, "zypper": {"sensors"},
			},
		},
	}
}

func updateCommand(pkgManager string) (name string, args, env []string, ok bool) {
	switch pkgManager {
	case "apt":
		return "apt-get", []string{"update", "-qq"}, []string{"DEBIAN_FRONTEND=noninteractive"}, true
	case "yum":
		return "yum", []string{"makecache", "-q"}, nil, true
	case "dnf":
		return "dnf", []string{"makecache", "-q"}, nil, true
	case "pacman":
		return "pacman", []string{"-Sy"}, nil, true
	case "zypper":
		return "zypper", []string{"--quiet", "refresh"}, nil, true
	}
	return "", nil, nil, false
}

func installCommand(pkgManager string, packages []string) (name string, args, env []string, err error) {
	switch pkgManager {
	case "apt":
		return "apt-get", append([]string{"install", "-y", "-qq"}, packages...), []string{"DEBIAN_FRONTEND=noninteractive"}, nil
	case "yum":
		return "yum", append([]string{"install", "-y"}, packages...), nil, nil
	case "dnf":
		return "dnf", append([]string{"install", "-y"}, packages...), nil, nil
	case "pacman":
		return "pacman", append([]string{"-S", "--noconfirm"}, packages...), nil, nil
	case "zypper":
		return "zypper", append([]string{"install", "-y"}, packages...), nil, nil
	}
	return "", nil, nil, fmt.Errorf("unsupported package manager: %s", pkgManager)
}

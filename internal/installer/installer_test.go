package installer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeOSRelease(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "os-release")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDetectDistro(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    *DistroInfo
		wantErr bool
	}{
		{
			name:    "ubuntu",
			content: "NAME=\"Ubuntu\"\nID=ubuntu\nVERSION_ID=\"24.04\"\n",
			want:    &DistroInfo{ID: "ubuntu", VersionID: "24.04", PkgManager: "apt"},
		},
		{
			name:    "fedora",
			content: "ID=fedora\nVERSION_ID=40\n",
			want:    &DistroInfo{ID: "fedora", VersionID: "40", PkgManager: "dnf"},
		},
		{
			name:    "arch without version",
			content: "ID=arch\n",
			want:    &DistroInfo{ID: "arch", PkgManager: "pacman"},
		},
		{
			name:    "tumbleweed",
			content: "ID=\"opensuse-tumbleweed\"\nVERSION_ID=\"20241001\"\n",
			want:    &DistroInfo{ID: "opensuse-tumbleweed", VersionID: "20241001", PkgManager: "zypper"},
		},
		{
			name:    "unsupported",
			content: "ID=nixos\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectDistro(writeOSRelease(t, tt.content))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("DetectDistro mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDetectDistroMissingFile(t *testing.T) {
	if _, err := DetectDistro(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing os-release")
	}
}

func TestPackageStepsCoverEveryManager(t *testing.T) {
	for _, step := range PackageSteps() {
		for _, pm := range []string{"apt", "yum", "dnf", "pacman", "zypper"} {
			if len(step.Packages[pm]) == 0 {
				t.Errorf("step %s has no packages for %s", step.Step, pm)
			}
		}
	}
}

func TestCheckTools(t *testing.T) {
	lookPath := func(name string) (string, error) {
		if name == "smartctl" || name == "lspci" {
			return "/usr/sbin/" + name, nil
		}
		return "", errors.New("not found")
	}

	status := CheckTools(lookPath)
	if len(status) != len(Tools) {
		t.Fatalf("got %d statuses, want %d", len(status), len(Tools))
	}
	avail := map[string]string{}
	for _, st := range status {
		if st.Available {
			avail[st.Binary] = st.Path
		}
	}
	want := map[string]string{"smartctl": "/usr/sbin/smartctl", "lspci": "/usr/sbin/lspci"}
	if diff := cmp.Diff(want, avail); diff != "" {
		t.Errorf("available tools mismatch (-want +got):\n%s", diff)
	}

	out := FormatTools(status)
	if !strings.Contains(out, "dmidecode") || !strings.Contains(out, "missing") {
		t.Errorf("FormatTools output missing rows:\n%s", out)
	}
}

type recordingRunner struct {
	calls []string
	fail  string
}

func (r *recordingRunner) Run(_ context.Context, _ []string, name string, args ...string) error {
	call := strings.Join(append([]string{name}, args...), " ")
	r.calls = append(r.calls, call)
	if r.fail != "" && strings.HasSuffix(call, r.fail) {
		return errors.New("exit status 100")
	}
	return nil
}

func newTestInstaller(t *testing.T, dryRun bool, runner Runner) (*Installer, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return &Installer{
		DryRun:    dryRun,
		Out:       &out,
		OSRelease: writeOSRelease(t, "ID=debian\nVERSION_ID=\"12\"\n"),
		Runner:    runner,
		goos:      "linux",
		euid:      func() int { return 0 },
	}, &out
}

func TestRunInstallsEachPackage(t *testing.T) {
	runner := &recordingRunner{fail: "dmidecode"}
	inst, out := newTestInstaller(t, false, runner)

	if err := inst.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{
		"apt-get update -qq",
		"apt-get install -y -qq pciutils",
		"apt-get install -y -qq dmidecode",
		"apt-get install -y -qq smartmontools",
		"apt-get install -y -qq lm-sensors",
	}
	if diff := cmp.Diff(want, runner.calls); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(out.String(), "WARNING: failed to install dmidecode") {
		t.Errorf("expected failure warning, got:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "OK: smartmontools") {
		t.Errorf("expected OK line, got:\n%s", out.String())
	}
}

func TestRunDryRunExecutesNothing(t *testing.T) {
	runner := &recordingRunner{}
	inst, out := newTestInstaller(t, true, runner)
	inst.euid = func() int { return 1000 }

	if err := inst.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(runner.calls) != 0 {
		t.Errorf("dry run executed %v", runner.calls)
	}
	if !strings.Contains(out.String(), "(dry-run) Would run: apt-get install -y -qq smartmontools") {
		t.Errorf("missing dry-run line:\n%s", out.String())
	}
}

func TestRunRequiresRootAndLinux(t *testing.T) {
	inst, _ := newTestInstaller(t, false, &recordingRunner{})
	inst.euid = func() int { return 1000 }
	if err := inst.Run(context.Background()); err == nil || !strings.Contains(err.Error(), "root") {
		t.Errorf("non-root err = %v", err)
	}

	inst.goos = "windows"
	if err := inst.Run(context.Background()); err == nil || !strings.Contains(err.Error(), "Linux") {
		t.Errorf("windows err = %v", err)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	v, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c, err := Decode(v)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if c.Server.Addr != ":3000" {
		t.Errorf("server.addr = %q, want :3000", c.Server.Addr)
	}
	if c.Store.Path != "pcdiag.db" {
		t.Errorf("store.path = %q", c.Store.Path)
	}
	if c.Collect.SampleInterval != time.Second || c.Collect.Timeout != 30*time.Second {
		t.Errorf("collect = %+v", c.Collect)
	}
	if c.Server.MaxBodyBytes != 1<<20 {
		t.Errorf("server.max_body_bytes = %d", c.Server.MaxBodyBytes)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "custom.yaml")
	content := `
server:
  addr: "127.0.0.1:9000"
  rate_limit: 2.5
store:
  path: ""
collect:
  sample_interval: 250ms
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	v, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c, err := Decode(v)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if c.Server.Addr != "127.0.0.1:9000" || c.Server.RateLimit != 2.5 {
		t.Errorf("server = %+v", c.Server)
	}
	if c.Store.Path != "" {
		t.Errorf("store.path = %q, want empty", c.Store.Path)
	}
	if got := c.Collect.CollectorConfig().SampleInterval; got != 250*time.Millisecond {
		t.Errorf("sample interval = %v", got)
	}
	if c.Server.Burst != 20 {
		t.Errorf("unset key should keep default, burst = %d", c.Server.Burst)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PCDIAG_SERVER_ADDR", ":8181")
	t.Setenv("PCDIAG_COLLECT_TIMEOUT", "5s")

	v, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	c, err := Decode(v)
	if err != nil {
		t.Fatal(err)
	}
	if c.Server.Addr != ":8181" {
		t.Errorf("server.addr = %q, want :8181", c.Server.Addr)
	}
	if c.Collect.Timeout != 5*time.Second {
		t.Errorf("collect.timeout = %v", c.Collect.Timeout)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("PCDIAG_LOGGING_LEVEL=debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// Registered so the variable godotenv sets is removed after the test.
	t.Setenv("PCDIAG_LOGGING_LEVEL", "")
	os.Unsetenv("PCDIAG_LOGGING_LEVEL")

	v, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if got := v.GetString("logging.level"); got != "debug" {
		t.Errorf("logging.level = %q, want debug", got)
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"bad format", "logging.format", "xml"},
		{"bad level", "logging.level", "loud"},
		{"negative rate", "server.rate_limit", -1},
		{"zero timeout", "collect.timeout", "0s"},
		{"empty addr", "server.addr", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			v.Set(tt.key, tt.val)
			if _, err := Decode(v); err == nil {
				t.Errorf("expected error for %s=%v", tt.key, tt.val)
			}
		})
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("app:\n  port: 9000\ntemplates:\n  default: Senior_Software_Engineer\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.Port != 9000 {
		t.Fatalf("port = %d", cfg.App.Port)
	}
	if cfg.Scrape.TimeoutSeconds != Default().Scrape.TimeoutSeconds || !cfg.Tracker.Enabled {
		t.Fatalf("defaults lost: %+v", cfg)
	}

	norm, res := NormalizeAndValidate(cfg)
	if !res.OK() {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if norm.Templates.Default != "senior_software_engineer" {
		t.Fatalf("template not normalised: %q", norm.Templates.Default)
	}
}

func TestLoadMissingAndMalformed(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "nope.yml")); err == nil {
		t.Fatal("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.yml")
	_ = os.WriteFile(bad, []byte("app: [unterminated"), 0o644)
	if _, err := Load(bad); err == nil || !strings.Contains(err.Error(), "parse") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestOverlayEnv(t *testing.T) {
	t.Setenv("TAILOR_PORT", "4242")
	t.Setenv("TAILOR_DATA_DIR", " /tmp/tailor ")
	t.Setenv("TAILOR_PROBE_ENABLED", "false")
	t.Setenv("TAILOR_DEBUG", "not-a-bool")
	t.Setenv("TAILOR_DEFAULT_TEMPLATE", "  ")

	cfg := Default()
	cfg.Log.Debug = true
	cfg.Templates.Default = "engineering_manager"
	OverlayEnv(&cfg)

	if cfg.App.Port != 4242 || cfg.App.DataDir != "/tmp/tailor" {
		t.Fatalf("app overrides not applied: %+v", cfg.App)
	}
	if cfg.Probe.Enabled {
		t.Fatal("probe should be disabled")
	}
	if !cfg.Log.Debug {
		t.Fatal("unparseable bool should keep the existing value")
	}
	if cfg.Templates.Default != "engineering_manager" {
		t.Fatalf("blank env should not override, got %q", cfg.Templates.Default)
	}
}

func TestNormalizeAndValidate(t *testing.T) {
	cases := []struct {
		name     string
		mutate   func(*Config)
		wantErr  string
		wantWarn string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.App.Port = 70000 }, wantErr: "app.port"},
		{name: "blank data dir", mutate: func(c *Config) { c.App.DataDir = "   " }, wantErr: "app.data_dir"},
		{name: "zero timeout", mutate: func(c *Config) { c.Scrape.TimeoutSeconds = 0 }, wantErr: "scrape.timeout_seconds"},
		{name: "zero rate", mutate: func(c *Config) { c.Scrape.RequestsPerSecond = 0 }, wantErr: "requests_per_second"},
		{name: "high rate", mutate: func(c *Config) { c.Scrape.RequestsPerSecond = 50 }, wantWarn: "requests_per_second"},
		{name: "probe timeout too long", mutate: func(c *Config) { c.Probe.TimeoutSeconds = 30 }, wantErr: "probe.timeout_seconds"},
		{name: "probe timeout slow", mutate: func(c *Config) { c.Probe.TimeoutSeconds = 8 }, wantWarn: "probe.timeout_seconds"},
		{name: "probe disabled ignores timeout", mutate: func(c *Config) { c.Probe.Enabled = false; c.Probe.TimeoutSeconds = 0 }},
		{name: "unknown template", mutate: func(c *Config) { c.Templates.Default = "astronaut" }, wantErr: "templates.default"},
		{name: "tracker off", mutate: func(c *Config) { c.Tracker.Enabled = false }, wantWarn: "tracker.enabled"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			_, res := NormalizeAndValidate(cfg)

			if tc.wantErr == "" && !res.OK() {
				t.Fatalf("unexpected errors: %v", res.Errors)
			}
			if tc.wantErr != "" && !contains(res.Errors, tc.wantErr) {
				t.Fatalf("errors %v missing %q", res.Errors, tc.wantErr)
			}
			if tc.wantWarn != "" && !contains(res.Warnings, tc.wantWarn) {
				t.Fatalf("warnings %v missing %q", res.Warnings, tc.wantWarn)
			}
		})
	}
}

func TestNormalizeClampsBurst(t *testing.T) {
	cfg := Default()
	cfg.Scrape.Burst = 0
	out, _ := NormalizeAndValidate(cfg)
	if out.Scrape.Burst != 1 {
		t.Fatalf("burst = %d", out.Scrape.Burst)
	}
}

func TestSaveAtomicKeepsBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yml")

	first := Default()
	first.App.Port = 1111
	if err := SaveAtomic(path, first); err != nil {
		t.Fatalf("first save: %v", err)
	}
	second := Default()
	second.App.Port = 2222
	if err := SaveAtomic(path, second); err != nil {
		t.Fatalf("second save: %v", err)
	}

	cur, err := Load(path)
	if err != nil || cur.App.Port != 2222 {
		t.Fatalf("current port = %d, err = %v", cur.App.Port, err)
	}
	bak, err := Load(path + ".bak")
	if err != nil || bak.App.Port != 1111 {
		t.Fatalf("backup port = %d, err = %v", bak.App.Port, err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}

	invalid := Default()
	invalid.App.Port = -1
	if err := SaveAtomic(path, invalid); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestEnsureUserConfig(t *testing.T) {
	dir := t.TempDir()

	path, err := EnsureUserConfig(dir)
	if err != nil {
		t.Fatalf("EnsureUserConfig: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.DataDir != dir {
		t.Fatalf("data dir = %q, want %q", cfg.App.DataDir, dir)
	}

	cfg.App.Port = 5555
	if err := SaveAtomic(path, cfg); err != nil {
		t.Fatal(err)
	}
	again, err := EnsureUserConfig(dir)
	if err != nil || again != path {
		t.Fatalf("second call: %q, %v", again, err)
	}
	kept, _ := Load(path)
	if kept.App.Port != 5555 {
		t.Fatal("existing config was overwritten")
	}
}

func contains(list []string, sub string) bool {
	for _, s := range list {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

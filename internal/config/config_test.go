package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultNormalizes(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize returned error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if !filepath.IsAbs(cfg.Paths.LibraryDir) {
		t.Fatalf("expected expanded library dir, got %q", cfg.Paths.LibraryDir)
	}
	if cfg.MakeMKV.RipTimeout != defaultRipTimeout {
		t.Fatalf("unexpected rip timeout: %d", cfg.MakeMKV.RipTimeout)
	}
}

func TestLoadAppliesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
temp_dir = "` + filepath.Join(dir, "tmp") + `"
library_dir = "` + filepath.Join(dir, "library") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[makemkv]
optical_drive = "/dev/sr1"
rip_timeout = 120

[logging]
level = "DEBUG"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatalf("expected resolved existing path, got %q exists=%v", resolved, exists)
	}
	if cfg.MakeMKV.OpticalDrive != "/dev/sr1" {
		t.Fatalf("unexpected drive: %q", cfg.MakeMKV.OpticalDrive)
	}
	if cfg.MakeMKV.RipTimeout != 120 {
		t.Fatalf("unexpected rip timeout: %d", cfg.MakeMKV.RipTimeout)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected lowered level, got %q", cfg.Logging.Level)
	}
	if cfg.FFmpeg.Binary != "ffmpeg" {
		t.Fatalf("expected default ffmpeg binary, got %q", cfg.FFmpeg.Binary)
	}
}

func TestValidateRejectsSharedDirs(t *testing.T) {
	cfg := Default()
	cfg.Paths.TempDir = "/data/rips"
	cfg.Paths.LibraryDir = "/data/rips"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for shared temp/library dir")
	}
}

func TestValidateRejectsUnknownLogFormat(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize returned error: %v", err)
	}
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown log format")
	}
}

func TestSampleConfigParses(t *testing.T) {
	if !strings.Contains(SampleConfig(), "[makemkv]") {
		t.Fatal("sample config missing makemkv section")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.toml")
	if err := os.WriteFile(path, []byte(SampleConfig()), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	if _, _, _, err := Load(path); err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
}

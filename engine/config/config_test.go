package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	if cfg != want {
		t.Fatalf("expected default config, got %+v", cfg)
	}
}

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected default config for missing file, got %+v", cfg)
	}
}

func TestLoadParsesYAMLAndFillsZeroDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	yaml := "store:\n  path: /tmp/engine.db\ngas:\n  limit_per_transaction: 5000\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Path != "/tmp/engine.db" {
		t.Fatalf("store path not parsed: %q", cfg.Store.Path)
	}
	if cfg.Gas.LimitPerTransaction != 5000 {
		t.Fatalf("gas limit not parsed: %d", cfg.Gas.LimitPerTransaction)
	}
	if cfg.CodeCache.Size != 1024 {
		t.Fatalf("expected code cache default backfilled, got %d", cfg.CodeCache.Size)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("expected logging level default backfilled, got %q", cfg.Logging.Level)
	}
}

func TestLoadMalformedYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("store: [unterminated"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error for malformed YAML")
	}
}

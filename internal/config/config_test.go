package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Scan.MaxConcurrency < 4 || cfg.Scan.MaxConcurrency > 20 {
		t.Fatalf("expected default concurrency clamped to [4,20], got %d", cfg.Scan.MaxConcurrency)
	}
	if len(cfg.Scan.IncludeGlobs) == 0 {
		t.Fatalf("expected default include globs to be populated")
	}
}

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "drupalls.yml")
	contents := []byte("workspace_root: /srv/site\nscan:\n  max_concurrency: 8\nlogging:\n  debug_mode: true\n  level: debug\n")
	if err := os.WriteFile(path, contents, 0644); err != nil {
		t.Fatalf("os.WriteFile() error = %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.WorkspaceRoot != "/srv/site" {
		t.Fatalf("WorkspaceRoot = %q, want /srv/site", cfg.WorkspaceRoot)
	}
	if cfg.Scan.MaxConcurrency != 8 {
		t.Fatalf("MaxConcurrency = %d, want 8", cfg.Scan.MaxConcurrency)
	}
	if !cfg.Logging.DebugMode {
		t.Fatalf("expected DebugMode to be true")
	}
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "drupalls.yml")

	cfg := DefaultConfig()
	cfg.WorkspaceRoot = "/srv/site"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if reloaded.WorkspaceRoot != "/srv/site" {
		t.Fatalf("WorkspaceRoot = %q, want /srv/site", reloaded.WorkspaceRoot)
	}
}

func TestEnvOverridesScanWorkers(t *testing.T) {
	t.Setenv("DRUPALLS_SCAN_WORKERS", "3")
	t.Setenv("DRUPALLS_DEBUG", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Scan.MaxConcurrency != 3 {
		t.Fatalf("MaxConcurrency = %d, want 3", cfg.Scan.MaxConcurrency)
	}
	if !cfg.Logging.DebugMode {
		t.Fatalf("expected DRUPALLS_DEBUG=true to enable debug mode")
	}
}

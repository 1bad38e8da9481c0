package logging

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInitializeDisabledIsNoop(t *testing.T) {
	dir := t.TempDir()
	if err := Initialize(dir, LoggingConfig{DebugMode: false}); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".drupalls", "logs")); !os.IsNotExist(err) {
		t.Fatalf("expected no logs directory in production mode, stat err = %v", err)
	}
	Get(CategoryServer).Info("should not write anything")
}

func TestInitializeDebugModeWritesLog(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(CloseAll)

	if err := Initialize(dir, LoggingConfig{DebugMode: true, Level: "debug"}); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	Get(CategoryIndexer).Info("scanning %s", dir)

	entries, err := os.ReadDir(filepath.Join(dir, ".drupalls", "logs"))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	// Initialize itself writes to the boot category, so the indexer line
	// lands in a second file.
	if len(entries) != 2 {
		t.Fatalf("expected exactly two log files (boot and indexer), got %d", len(entries))
	}
}

func TestIsCategoryEnabledRespectsFilter(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(CloseAll)

	cfg := LoggingConfig{
		DebugMode:  true,
		Level:      "debug",
		Categories: map[string]bool{string(CategoryIndexer): false},
	}
	if err := Initialize(dir, cfg); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	if IsCategoryEnabled(CategoryIndexer) {
		t.Fatalf("expected indexer category to be disabled")
	}
	if !IsCategoryEnabled(CategoryResolver) {
		t.Fatalf("expected resolver category to default to enabled")
	}
}

func TestTimerStopWithInfo(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(CloseAll)

	if err := Initialize(dir, LoggingConfig{DebugMode: true, Level: "info"}); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	timer := StartTimer(CategoryStore, "index workspace")
	if elapsed := timer.StopWithInfo(); elapsed < 0 {
		t.Fatalf("expected non-negative elapsed duration, got %v", elapsed)
	}
}

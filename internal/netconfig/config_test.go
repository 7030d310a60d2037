package netconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "replicore.yaml")
	content := "tick_rate: 60\nfull_snap_threshold: 3\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TickRate != 60 {
		t.Fatalf("expected tick_rate 60, got %d", cfg.TickRate)
	}
	if cfg.FullSnapThreshold != 3 {
		t.Fatalf("expected full_snap_threshold 3, got %d", cfg.FullSnapThreshold)
	}
	if cfg.MaxHistorySize != Default().MaxHistorySize {
		t.Fatalf("expected default max_history_size retained, got %d", cfg.MaxHistorySize)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/replicore.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

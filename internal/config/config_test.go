package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/statdeck/statdeck/internal/core"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.UI.RefreshIntervalSeconds != 60 {
		t.Errorf("default refresh = %d, want 60", cfg.UI.RefreshIntervalSeconds)
	}
	if cfg.UI.RealtimeIntervalSeconds != 15 {
		t.Errorf("default realtime = %d, want 15", cfg.UI.RealtimeIntervalSeconds)
	}
	if cfg.DefaultRange != string(core.RangeLast7Days) {
		t.Errorf("default range = %s, want last7days", cfg.DefaultRange)
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "settings.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.UI.RefreshIntervalSeconds != 60 {
		t.Error("should return defaults for missing file")
	}
}

func TestLoadFrom_ValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	content := `{
  "ui": {"refresh_interval_seconds": 10, "realtime_interval_seconds": 5},
  "theme": "Nord",
  "default_range": "last30days"
}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing test config: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}

	if cfg.UI.RefreshIntervalSeconds != 10 {
		t.Errorf("refresh = %d, want 10", cfg.UI.RefreshIntervalSeconds)
	}
	if cfg.Theme != "Nord" {
		t.Errorf("theme = %s, want Nord", cfg.Theme)
	}
	if cfg.DefaultRange != "last30days" {
		t.Errorf("default range = %s, want last30days", cfg.DefaultRange)
	}
}

func TestLoadFrom_RepairsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	content := `{
  "ui": {"refresh_interval_seconds": -1},
  "theme": "",
  "default_range": "fortnight"
}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing test config: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if cfg.UI.RefreshIntervalSeconds != 60 {
		t.Errorf("refresh = %d, want repaired 60", cfg.UI.RefreshIntervalSeconds)
	}
	if cfg.Theme != DefaultConfig().Theme {
		t.Errorf("theme = %q, want default", cfg.Theme)
	}
	if cfg.DefaultRange != string(core.RangeLast7Days) {
		t.Errorf("default range = %q, want repaired last7days", cfg.DefaultRange)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")

	cfg := DefaultConfig()
	cfg.Theme = "Dracula"
	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo() error: %v", err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if got.Theme != "Dracula" {
		t.Errorf("theme = %s, want Dracula", got.Theme)
	}
}

func TestSaveDefaultRangeTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	if err := SaveDefaultRangeTo(path, core.RangeThisMonth); err != nil {
		t.Fatalf("SaveDefaultRangeTo() error: %v", err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if cfg.DefaultRange != string(core.RangeThisMonth) {
		t.Errorf("default range = %s, want thismonth", cfg.DefaultRange)
	}
	if cfg.UI.RefreshIntervalSeconds != 60 {
		t.Error("unrelated defaults lost in read-modify-write")
	}
}

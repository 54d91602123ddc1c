package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/statdeck/statdeck/internal/core"
)

type UIConfig struct {
	RefreshIntervalSeconds  int `json:"refresh_interval_seconds"`
	RealtimeIntervalSeconds int `json:"realtime_interval_seconds"`
}

type Config struct {
	UI           UIConfig `json:"ui"`
	Theme        string   `json:"theme"`
	DefaultRange string   `json:"default_range"`
}

func DefaultConfig() Config {
	return Config{
		Theme:        "Catppuccin Mocha",
		DefaultRange: string(core.RangeLast7Days),
		UI: UIConfig{
			RefreshIntervalSeconds:  60,
			RealtimeIntervalSeconds: 15,
		},
	}
}

func ConfigDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "statdeck")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "statdeck")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "settings.json")
}

// AccountsPath is where the account registry keeps its state.
func AccountsPath() string {
	return filepath.Join(ConfigDir(), "accounts.json")
}

// CachePath is where the offline cache database lives.
func CachePath() string {
	return filepath.Join(ConfigDir(), "cache.db")
}

func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.UI.RefreshIntervalSeconds <= 0 {
		cfg.UI.RefreshIntervalSeconds = 60
	}
	if cfg.UI.RealtimeIntervalSeconds <= 0 {
		cfg.UI.RealtimeIntervalSeconds = 15
	}
	if cfg.Theme == "" {
		cfg.Theme = DefaultConfig().Theme
	}
	if _, err := core.ParsePreset(cfg.DefaultRange); err != nil {
		cfg.DefaultRange = DefaultConfig().DefaultRange
	}

	return cfg, nil
}

// saveMu guards read-modify-write cycles on the config file.
var saveMu sync.Mutex

func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

func SaveTo(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// SaveTheme persists a theme name into the config file (read-modify-write).
func SaveTheme(theme string) error {
	return SaveThemeTo(ConfigPath(), theme)
}

func SaveThemeTo(path string, theme string) error {
	saveMu.Lock()
	defer saveMu.Unlock()

	cfg, err := LoadFrom(path)
	if err != nil {
		cfg = DefaultConfig()
	}
	cfg.Theme = theme
	return SaveTo(path, cfg)
}

// SaveDefaultRange persists the preset the dashboard opens with
// (read-modify-write).
func SaveDefaultRange(preset core.RangePreset) error {
	return SaveDefaultRangeTo(ConfigPath(), preset)
}

func SaveDefaultRangeTo(path string, preset core.RangePreset) error {
	saveMu.Lock()
	defer saveMu.Unlock()

	cfg, err := LoadFrom(path)
	if err != nil {
		cfg = DefaultConfig()
	}
	cfg.DefaultRange = string(preset)
	return SaveTo(path, cfg)
}

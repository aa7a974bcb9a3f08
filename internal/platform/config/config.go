package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Viewer holds the tuning constants for the viewport engine. Debounce and
// settle are empirically tuned, not algorithmic requirements.
type Viewer struct {
	DebounceMs int     `yaml:"debounce_ms"`
	SettleMs   int     `yaml:"settle_ms"`
	Scale      float64 `yaml:"scale"`
	PixelRatio float64 `yaml:"pixel_ratio"`
	Prefetch   int     `yaml:"prefetch"`
}

type Config struct {
	Viewer Viewer `yaml:"viewer"`
	DBPath string `yaml:"db_path"`
}

func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Viewer: Viewer{
			DebounceMs: 150,
			SettleMs:   400,
			Scale:      1.0,
			PixelRatio: 1.0,
			Prefetch:   1,
		},
		DBPath: filepath.Join(home, ".folio", "folio.db"),
	}
}

// Load reads a YAML config file, filling unset fields from Default.
// A missing file is not an error: the defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(payload, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Viewer.DebounceMs < 0 || c.Viewer.SettleMs < 0 {
		return fmt.Errorf("debounce and settle must be non-negative")
	}
	if c.Viewer.Scale <= 0 {
		return fmt.Errorf("scale must be positive")
	}
	if c.Viewer.PixelRatio <= 0 {
		return fmt.Errorf("pixel ratio must be positive")
	}
	if c.Viewer.Prefetch < 0 {
		return fmt.Errorf("prefetch must be non-negative")
	}
	return nil
}

func (v Viewer) Debounce() time.Duration {
	return time.Duration(v.DebounceMs) * time.Millisecond
}

func (v Viewer) Settle() time.Duration {
	return time.Duration(v.SettleMs) * time.Millisecond
}

// Package config loads ~/.config/lanes/config.toml and applies
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/baiirun/lanes/internal/model"
)

// Environment variables that override the file.
const (
	EnvConfig   = "LANES_CONFIG"
	EnvDB       = "LANES_DB"
	EnvKey      = "LANES_KEY"
	EnvLogLevel = "LANES_LOG_LEVEL"
)

// Config is the contents of config.toml. Empty fields mean "use the
// built-in default".
type Config struct {
	DBPath       string   `toml:"db_path"`
	StorageKey   string   `toml:"storage_key"`
	DefaultColor string   `toml:"default_color"`
	Palette      []string `toml:"palette"`
	LogLevel     string   `toml:"log_level"`
	LogFile      string   `toml:"log_file"`
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// DefaultPath returns the config file location, honoring LANES_CONFIG.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(dir, "lanes", "config.toml"), nil
}

// Load reads the config file at path, then applies environment
// overrides. A missing file yields an empty config.
func Load(path string) (*Config, error) {
	cfg, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDB); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv(EnvKey); v != "" {
		c.StorageKey = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
}

// Validate checks that configured colors are #rrggbb.
func (c *Config) Validate() error {
	if c.DefaultColor != "" && !hexColor.MatchString(c.DefaultColor) {
		return fmt.Errorf("default_color: not a #rrggbb color: %q", c.DefaultColor)
	}
	for i, col := range c.Palette {
		if !hexColor.MatchString(col) {
			return fmt.Errorf("palette[%d]: not a #rrggbb color: %q", i, col)
		}
	}
	return nil
}

// Color returns the configured creation color or the built-in one.
func (c *Config) Color() string {
	if c.DefaultColor != "" {
		return c.DefaultColor
	}
	return model.DefaultColor
}

// Swatches returns the palette offered for new todos. The creation
// color is always part of it, first if it was missing.
func (c *Config) Swatches() []string {
	palette := c.Palette
	if len(palette) == 0 {
		palette = model.Palette
	}
	palette = slices.Clone(palette)
	if !slices.Contains(palette, c.Color()) {
		palette = slices.Insert(palette, 0, c.Color())
	}
	return palette
}

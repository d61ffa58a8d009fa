package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"meowdash/internal/catalog"
	"meowdash/internal/dashboard"
)

const appName = "meowdash"

type Config struct {
	Theme    string          `yaml:"theme"`
	LogLevel string          `yaml:"log_level"`
	Web      WebConfig       `yaml:"web"`
	Timing   TimingConfig    `yaml:"timing"`
	AssetDir string          `yaml:"asset_dir"`
	Catalog  []catalog.Entry `yaml:"catalog"`
	Panels   []string        `yaml:"panels"`
	Mascot   MascotConfig    `yaml:"mascot"`

	// Dir is the directory the config was loaded from. Not read from YAML.
	Dir string `yaml:"-"`
}

type WebConfig struct {
	Enabled bool   `yaml:"enabled"`
	Bind    string `yaml:"bind"`
	Port    int    `yaml:"port"`
}

type TimingConfig struct {
	LoadTimeout   time.Duration `yaml:"load_timeout"`
	RefreshDelay  time.Duration `yaml:"refresh_delay"`
	SpinnerSafety time.Duration `yaml:"spinner_safety"`
}

type MascotConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Messages string `yaml:"messages"`
}

func DefaultConfig() Config {
	t := dashboard.DefaultTiming()
	return Config{
		Theme:    "mocha",
		LogLevel: "info",
		Web: WebConfig{
			Enabled: true,
			Bind:    "127.0.0.1",
		},
		Timing: TimingConfig{
			LoadTimeout:   t.LoadTimeout,
			RefreshDelay:  t.ReloadDelay,
			SpinnerSafety: t.SpinnerSafety,
		},
		Panels: []string{"guide.html"},
		Mascot: MascotConfig{Enabled: true},
	}
}

func Load() (Config, error) {
	return LoadFromDir(DefaultDir())
}

// LoadFromDir reads config.yaml from dir.
func LoadFromDir(dir string) (Config, error) {
	cfg, err := LoadFrom(filepath.Join(dir, "config.yaml"))
	cfg.Dir = dir
	return cfg, err
}

func LoadFrom(configPath string) (Config, error) {
	cfg := DefaultConfig()
	cfg.Dir = filepath.Dir(configPath)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		def := DefaultConfig()
		def.Dir = cfg.Dir
		return def, fmt.Errorf("parse %s: %w", configPath, err)
	}

	if cfg.Theme == "" {
		cfg.Theme = "mocha"
	}
	if len(cfg.Panels) > dashboard.PanelCount {
		cfg.Panels = cfg.Panels[:dashboard.PanelCount]
	}

	return cfg, nil
}

// DashboardTiming converts the configured durations. Zero values fall back
// to the dashboard defaults.
func (c *Config) DashboardTiming() dashboard.Timing {
	return dashboard.Timing{
		LoadTimeout:   c.Timing.LoadTimeout,
		ReloadDelay:   c.Timing.RefreshDelay,
		SpinnerSafety: c.Timing.SpinnerSafety,
	}
}

// CatalogEntries returns the configured tools, or the built-in list when
// none are configured.
func (c *Config) CatalogEntries() []catalog.Entry {
	if len(c.Catalog) == 0 {
		return catalog.Defaults()
	}
	return c.Catalog
}

// PanelDefault returns the tool address panel id opens with, or "".
func (c *Config) PanelDefault(id int) string {
	if id < 1 || id > len(c.Panels) {
		return ""
	}
	return c.Panels[id-1]
}

// ResolveAssetDir returns the asset directory, relative paths being taken
// against the config directory.
func (c *Config) ResolveAssetDir() string {
	return c.resolve(c.AssetDir)
}

// ResolveMessagesPath returns the mascot messages file path, or "".
func (c *Config) ResolveMessagesPath() string {
	return c.resolve(c.Mascot.Messages)
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Dir == "" {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// DefaultDir is $XDG_CONFIG_HOME/meowdash, falling back to ~/.config/meowdash.
func DefaultDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, appName)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", appName)
	}

	return filepath.Join(home, ".config", appName)
}

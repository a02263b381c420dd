// Package config handles loading and saving msmview configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/msmview/config.yaml
//   - State:  ~/.local/state/msmview/ (debug log, exported snapshots)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LineConfig holds the stroke widths of the implied-timescale curves.
type LineConfig struct {
	NormalWidth   float64 `yaml:"normal_width,omitempty"`
	EmphasisWidth float64 `yaml:"emphasis_width,omitempty"` // Width of the picked process curve
}

// SurfaceConfig controls how contour surfaces are drawn.
type SurfaceConfig struct {
	FreeEnergyColormap  string `yaml:"free_energy_colormap,omitempty"`
	EigenvectorColormap string `yaml:"eigenvector_colormap,omitempty"`
	EigenvectorLevels   int    `yaml:"eigenvector_levels,omitempty"` // Used when the manifest gives none
}

// ExportConfig holds defaults for static snapshots.
type ExportConfig struct {
	Format string `yaml:"format,omitempty"` // png or svg
	Width  int    `yaml:"width,omitempty"`
	Height int    `yaml:"height,omitempty"`
	Dir    string `yaml:"dir,omitempty"` // Where the interactive "export" key writes
}

// UIConfig holds interactive session preferences.
type UIConfig struct {
	Mouse    *bool `yaml:"mouse,omitempty"`     // Pick with mouse clicks (default true)
	HelpOnly bool  `yaml:"help_only,omitempty"` // Start with the help overlay open
}

// MouseEnabled reports whether mouse picking is on.
func (u UIConfig) MouseEnabled() bool {
	return u.Mouse == nil || *u.Mouse
}

// Config is the top-level configuration for msmview.
type Config struct {
	DataPath string        `yaml:"data_path,omitempty"` // Dataset used when no path argument is given
	Lines    LineConfig    `yaml:"lines,omitempty"`
	Surface  SurfaceConfig `yaml:"surface,omitempty"`
	Export   ExportConfig  `yaml:"export,omitempty"`
	UI       UIConfig      `yaml:"ui,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Lines: LineConfig{
			NormalWidth:   1.5,
			EmphasisWidth: 4,
		},
		Surface: SurfaceConfig{
			FreeEnergyColormap:  "viridis",
			EigenvectorColormap: "rdbu",
			EigenvectorLevels:   11,
		},
		Export: ExportConfig{
			Format: "png",
			Width:  1400,
			Height: 900,
		},
	}
}

// ConfigDir returns the XDG config directory for msmview.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "msmview")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "msmview")
}

// StateDir returns the XDG state directory for msmview.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "msmview")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "msmview")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.DataPath = expandHome(cfg.DataPath)
	cfg.Export.Dir = expandHome(cfg.Export.Dir)
	cfg.normalize()

	return cfg, nil
}

// normalize replaces out-of-range values with defaults.
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.Lines.NormalWidth <= 0 {
		c.Lines.NormalWidth = def.Lines.NormalWidth
	}
	if c.Lines.EmphasisWidth <= c.Lines.NormalWidth {
		c.Lines.EmphasisWidth = c.Lines.NormalWidth * 2.5
	}
	if c.Surface.EigenvectorLevels < 2 {
		c.Surface.EigenvectorLevels = def.Surface.EigenvectorLevels
	}
	switch strings.ToLower(c.Export.Format) {
	case "png", "svg":
		c.Export.Format = strings.ToLower(c.Export.Format)
	default:
		c.Export.Format = def.Export.Format
	}
	if c.Export.Width <= 0 {
		c.Export.Width = def.Export.Width
	}
	if c.Export.Height <= 0 {
		c.Export.Height = def.Export.Height
	}
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// ExportDir returns where interactive exports are written.
func (c Config) ExportDir() string {
	if c.Export.Dir != "" {
		return c.Export.Dir
	}
	if dir := StateDir(); dir != "" {
		return filepath.Join(dir, "exports")
	}
	return "."
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

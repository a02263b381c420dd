package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Lines.NormalWidth != 1.5 || cfg.Lines.EmphasisWidth != 4 {
		t.Errorf("unexpected line widths %+v", cfg.Lines)
	}
	if cfg.Export.Format != "png" {
		t.Errorf("expected png export, got %q", cfg.Export.Format)
	}
	if !cfg.UI.MouseEnabled() {
		t.Error("mouse picking should default to on")
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.Surface.FreeEnergyColormap != "viridis" {
		t.Errorf("expected default config, got colormap %q", cfg.Surface.FreeEnergyColormap)
	}
}

func TestLoadFrom_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
data_path: ~/msm/ala2
lines:
  normal_width: 1
  emphasis_width: 3
surface:
  eigenvector_colormap: bone
export:
  format: SVG
  width: 800
ui:
  mouse: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	home, _ := os.UserHomeDir()
	if cfg.DataPath != filepath.Join(home, "msm/ala2") {
		t.Errorf("data path = %q, want ~ expanded", cfg.DataPath)
	}
	if cfg.Lines.NormalWidth != 1 || cfg.Lines.EmphasisWidth != 3 {
		t.Errorf("unexpected widths %+v", cfg.Lines)
	}
	if cfg.Surface.EigenvectorColormap != "bone" || cfg.Surface.FreeEnergyColormap != "viridis" {
		t.Errorf("unexpected surface config %+v", cfg.Surface)
	}
	if cfg.Export.Format != "svg" || cfg.Export.Width != 800 || cfg.Export.Height != 900 {
		t.Errorf("unexpected export config %+v", cfg.Export)
	}
	if cfg.UI.MouseEnabled() {
		t.Error("mouse should be disabled")
	}
}

func TestLoadFrom_NormalizesBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
lines:
  normal_width: -2
  emphasis_width: 1
surface:
  eigenvector_levels: 1
export:
  format: gif
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Lines.NormalWidth != 1.5 || cfg.Lines.EmphasisWidth <= cfg.Lines.NormalWidth {
		t.Errorf("widths not normalized: %+v", cfg.Lines)
	}
	if cfg.Surface.EigenvectorLevels != 11 {
		t.Errorf("levels = %d, want 11", cfg.Surface.EigenvectorLevels)
	}
	if cfg.Export.Format != "png" {
		t.Errorf("format = %q, want png", cfg.Export.Format)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("lines: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.DataPath = "/data/msm"
	cfg.Export.Format = "svg"

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if loaded.DataPath != "/data/msm" || loaded.Export.Format != "svg" {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := ConfigDir(); got != "/tmp/xdg/msmview" {
		t.Errorf("ConfigDir() = %q", got)
	}
	if got := ConfigPath(); got != "/tmp/xdg/msmview/config.yaml" {
		t.Errorf("ConfigPath() = %q", got)
	}
}

package loader

import (
	"fmt"
	"image/color"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/msmview/pkg/figure"
	"github.com/vanderheijden86/msmview/pkg/model"
)

// ClusterSpec is the static styling of one cluster in manifest.yaml.
type ClusterSpec struct {
	ID            int      `yaml:"id"`
	Marker        string   `yaml:"marker,omitempty"`
	Color         string   `yaml:"color,omitempty"`          // #rrggbb
	PresenceLevel *float64 `yaml:"presence_level,omitempty"` // nil derives 10% of the density range
	InnerLevel    *float64 `yaml:"inner_level,omitempty"`
}

// SurfaceSpec chooses contour levels for a family of surfaces. Explicit
// Levels win over LevelCount.
type SurfaceSpec struct {
	Levels     []float64 `yaml:"levels,omitempty"`
	LevelCount int       `yaml:"level_count,omitempty"`
}

// Manifest describes a dataset directory.
type Manifest struct {
	Name         string        `yaml:"name,omitempty"`
	FreeEnergy   SurfaceSpec   `yaml:"free_energy,omitempty"`
	Eigenvectors SurfaceSpec   `yaml:"eigenvectors,omitempty"`
	Clusters     []ClusterSpec `yaml:"clusters,omitempty"`
}

// Marker glyphs and colors used for clusters the manifest leaves unstyled.
var (
	DefaultMarkers = []string{"o", "s", "^", "v", "D", "p", "h", "*"}
	DefaultColors  = []string{"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd", "#8c564b", "#e377c2", "#17becf"}
)

// ReadManifest parses manifest.yaml. A missing manifest yields an empty one,
// which styles everything with defaults.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return m, fmt.Errorf("reading manifest: %w", err)
	}
	m, err = ParseManifest(data)
	if err != nil {
		return m, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ParseManifest decodes manifest YAML.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parsing manifest: %w", err)
	}
	return m, nil
}

// MarshalManifest encodes a manifest as YAML.
func MarshalManifest(m Manifest) ([]byte, error) {
	return yaml.Marshal(m)
}

// ClusterStyle returns the manifest entry for id merged with defaults.
func (m Manifest) ClusterStyle(id int) (ClusterSpec, error) {
	spec := ClusterSpec{ID: id}
	for _, c := range m.Clusters {
		if c.ID == id {
			spec = c
			break
		}
	}
	if spec.Marker == "" {
		spec.Marker = DefaultMarkers[(id-1)%len(DefaultMarkers)]
	}
	if spec.Color == "" {
		spec.Color = DefaultColors[(id-1)%len(DefaultColors)]
	}
	if _, err := figure.ParseHex(spec.Color); err != nil {
		return spec, fmt.Errorf("cluster %d color %q: %w", id, spec.Color, err)
	}
	return spec, nil
}

// ManifestFor reconstructs the manifest describing ds.
func ManifestFor(ds *model.Dataset) Manifest {
	m := Manifest{
		Name:       ds.Name,
		FreeEnergy: SurfaceSpec{Levels: ds.FreeEnergyLevels},
	}
	if len(ds.Processes) > 0 {
		m.Eigenvectors = SurfaceSpec{LevelCount: len(ds.Processes[0].Levels)}
	}
	for _, c := range ds.Clusters {
		presence := c.PresenceLevel
		m.Clusters = append(m.Clusters, ClusterSpec{
			ID:            c.ID,
			Marker:        c.Marker,
			Color:         figure.Hex(c.Color),
			PresenceLevel: &presence,
			InnerLevel:    c.InnerLevel,
		})
	}
	return m
}

func mustColor(hex string) color.RGBA {
	c, err := figure.ParseHex(hex)
	if err != nil {
		return color.RGBA{0x80, 0x80, 0x80, 0xff}
	}
	return c
}

package model

import (
	"fmt"
	"image"
	"image/color"
)

// Fixed dataset shape rendered by the viewer.
const (
	ClusterCount = 8
	ProcessCount = 7
)

// ImageKey addresses a representative-structure image. DefaultImage is shown
// when no cluster is picked; any other value is a cluster id.
type ImageKey int

// DefaultImage is the key of the ensemble-wide structure image.
const DefaultImage ImageKey = 0

// String implements fmt.Stringer.
func (k ImageKey) String() string {
	if k == DefaultImage {
		return "default"
	}
	return fmt.Sprintf("cluster %d", int(k))
}

// Cluster is one metastable set of conformations.
type Cluster struct {
	ID            int
	Marker        string // legend glyph: o, s, ^, v, D, p, h, *
	Color         color.RGBA
	PresenceLevel float64
	InnerLevel    *float64 // optional second density contour
	Density       *ScalarField
}

// Levels returns the density contour levels of the cluster outline, ascending.
func (c Cluster) Levels() []float64 {
	if c.InnerLevel == nil {
		return []float64{c.PresenceLevel}
	}
	if *c.InnerLevel < c.PresenceLevel {
		return []float64{*c.InnerLevel, c.PresenceLevel}
	}
	return []float64{c.PresenceLevel, *c.InnerLevel}
}

// ImageKey returns the key of the cluster's representative-structure image.
func (c Cluster) ImageKey() ImageKey {
	return ImageKey(c.ID)
}

// Process is one slow transition of the Markov-state model.
type Process struct {
	ID          int
	Timescales  []float64 // implied time scale per lag time
	Eigenvector *ScalarField
	Levels      []float64
}

// Dataset is everything the viewer consumes. It is loaded once and never
// mutated afterwards.
type Dataset struct {
	Name             string
	Lags             []float64
	LagUnit          string
	FreeEnergy       *ScalarField
	FreeEnergyLevels []float64
	Clusters         []Cluster
	Processes        []Process
	Images           map[ImageKey]image.Image
}

// Cluster returns the cluster with the given id.
func (d *Dataset) Cluster(id int) (Cluster, bool) {
	for _, c := range d.Clusters {
		if c.ID == id {
			return c, true
		}
	}
	return Cluster{}, false
}

// Process returns the process with the given id.
func (d *Dataset) Process(id int) (Process, bool) {
	for _, p := range d.Processes {
		if p.ID == id {
			return p, true
		}
	}
	return Process{}, false
}

// Image returns the image for key or ErrMissingImage.
func (d *Dataset) Image(key ImageKey) (image.Image, error) {
	img, ok := d.Images[key]
	if !ok || img == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingImage, key)
	}
	return img, nil
}

// Validate checks the invariants every renderer relies on. A dataset that
// fails validation must not reach the interactive session.
func (d *Dataset) Validate() error {
	if d.FreeEnergy == nil {
		return fmt.Errorf("%w: free energy", ErrMissingField)
	}
	if len(d.FreeEnergyLevels) < 2 {
		return fmt.Errorf("free energy needs at least 2 contour levels, got %d", len(d.FreeEnergyLevels))
	}
	if len(d.Lags) == 0 {
		return fmt.Errorf("lag time vector is empty")
	}
	if len(d.Clusters) != ClusterCount {
		return fmt.Errorf("expected %d clusters, got %d", ClusterCount, len(d.Clusters))
	}
	if len(d.Processes) != ProcessCount {
		return fmt.Errorf("expected %d processes, got %d", ProcessCount, len(d.Processes))
	}
	for i, c := range d.Clusters {
		if c.ID != i+1 {
			return fmt.Errorf("cluster %d has id %d, want %d", i, c.ID, i+1)
		}
		if c.Density == nil {
			return fmt.Errorf("%w: density of cluster %d", ErrMissingField, c.ID)
		}
	}
	for i, p := range d.Processes {
		if p.ID != i+1 {
			return fmt.Errorf("process %d has id %d, want %d", i, p.ID, i+1)
		}
		if p.Eigenvector == nil {
			return fmt.Errorf("%w: eigenvector of process %d", ErrMissingField, p.ID)
		}
		if len(p.Timescales) != len(d.Lags) {
			return fmt.Errorf("%w: process %d has %d timescales for %d lag times",
				ErrShapeMismatch, p.ID, len(p.Timescales), len(d.Lags))
		}
		if len(p.Levels) < 2 {
			return fmt.Errorf("process %d needs at least 2 contour levels, got %d", p.ID, len(p.Levels))
		}
	}
	if _, err := d.Image(DefaultImage); err != nil {
		return err
	}
	for _, c := range d.Clusters {
		if _, err := d.Image(c.ImageKey()); err != nil {
			return err
		}
	}
	return nil
}

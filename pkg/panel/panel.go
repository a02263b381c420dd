// Package panel holds the thin view adapters the interaction controller talks
// to. Each adapter hides one logical view behind a few setters and forwards
// them to the figure artists that draw it. None of them request a redraw.
package panel

import (
	"fmt"
	"image"

	"github.com/vanderheijden86/msmview/pkg/figure"
	"github.com/vanderheijden86/msmview/pkg/model"
)

// SurfaceRenderer shows one scalar field in the main panel as filled bands
// with outline contours on top.
type SurfaceRenderer struct {
	fig      *figure.Figure
	colorbar *figure.Axes
	fill     *figure.ContourFill
	lines    *figure.ContourLines
}

// NewSurfaceRenderer wraps a filled contour and its outlines. lines may be nil.
func NewSurfaceRenderer(fig *figure.Figure, colorbar *figure.Axes, fill *figure.ContourFill, lines *figure.ContourLines) *SurfaceRenderer {
	return &SurfaceRenderer{fig: fig, colorbar: colorbar, fill: fill, lines: lines}
}

// SetVisible shows or hides the whole surface.
func (s *SurfaceRenderer) SetVisible(v bool) {
	s.fill.SetVisible(v)
	if s.lines != nil {
		s.lines.SetVisible(v)
	}
}

// Visible reports whether the surface is shown.
func (s *SurfaceRenderer) Visible() bool {
	return s.fill.Visible()
}

// AttachColorbar points the figure colorbar at this surface.
func (s *SurfaceRenderer) AttachColorbar(levels []float64, label string) {
	s.fig.SetColorbar(s.colorbar, s.fill, levels, label)
}

// Levels returns the contour levels the surface was built with.
func (s *SurfaceRenderer) Levels() []float64 {
	return s.fill.Levels
}

// Fill exposes the filled contour artist.
func (s *SurfaceRenderer) Fill() *figure.ContourFill {
	return s.fill
}

// OverlayRenderer is one cluster outline, drawn by one or more contour-line
// artists that always share visibility.
type OverlayRenderer struct {
	parts []figure.Artist
}

// NewOverlayRenderer groups artists into a single logical overlay.
func NewOverlayRenderer(parts ...figure.Artist) *OverlayRenderer {
	return &OverlayRenderer{parts: parts}
}

// SetVisible shows or hides every underlying artist.
func (o *OverlayRenderer) SetVisible(v bool) {
	for _, p := range o.parts {
		p.SetVisible(v)
	}
}

// Visible reports whether the overlay is shown.
func (o *OverlayRenderer) Visible() bool {
	return len(o.parts) > 0 && o.parts[0].Visible()
}

// ImageSource resolves image keys. *model.Dataset satisfies it.
type ImageSource interface {
	Image(key model.ImageKey) (image.Image, error)
}

// ImagePanel displays one representative-structure image at a time.
type ImagePanel struct {
	axes   *figure.Axes
	artist *figure.Image
	source ImageSource
}

// NewImagePanel wraps an image artist.
func NewImagePanel(artist *figure.Image, source ImageSource) *ImagePanel {
	return &ImagePanel{axes: artist.Axes(), artist: artist, source: source}
}

// Show replaces the displayed image with the one for key and clears the
// axis ticks. On error the previous image stays.
func (p *ImagePanel) Show(key model.ImageKey) error {
	img, err := p.source.Image(key)
	if err != nil {
		return fmt.Errorf("show %s image: %w", key, err)
	}
	p.artist.Img = img
	p.artist.Key = key
	p.axes.ClearTicks()
	p.axes.Title = imageTitle(key)
	return nil
}

// Key returns the key of the displayed image.
func (p *ImagePanel) Key() model.ImageKey {
	return p.artist.Key
}

func imageTitle(key model.ImageKey) string {
	if key == model.DefaultImage {
		return "Representative structure"
	}
	return fmt.Sprintf("Cluster %d", int(key))
}

// TimescaleMarker controls the stroke of one implied-timescale curve.
type TimescaleMarker struct {
	line *figure.Line
}

// NewTimescaleMarker wraps a timescale line.
func NewTimescaleMarker(line *figure.Line) *TimescaleMarker {
	return &TimescaleMarker{line: line}
}

// SetLineWidth sets the stroke width.
func (m *TimescaleMarker) SetLineWidth(w float64) {
	m.line.SetLineWidth(w)
}

// LineWidth returns the stroke width.
func (m *TimescaleMarker) LineWidth() float64 {
	return m.line.Width
}

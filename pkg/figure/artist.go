package figure

import (
	"image"
	"image/color"
	"math"

	"github.com/vanderheijden86/msmview/pkg/model"
)

// Artist is anything drawn on an axes.
type Artist interface {
	ID() ArtistID
	Axes() *Axes
	Visible() bool
	SetVisible(bool)
}

// Pickable artists take part in hit testing.
type Pickable interface {
	Pickable() bool
	// Distance returns the pixel distance from (px, py) to the artist. Values
	// below zero mean the point lies inside it.
	Distance(px, py, width, height float64) float64
}

type base struct {
	id       ArtistID
	axes     *Axes
	visible  bool
	pickable bool
}

func newBase(id ArtistID, ax *Axes) base {
	return base{id: id, axes: ax, visible: true}
}

func (b *base) ID() ArtistID      { return b.id }
func (b *base) Axes() *Axes       { return b.axes }
func (b *base) Visible() bool     { return b.visible }
func (b *base) SetVisible(v bool) { b.visible = v }
func (b *base) Pickable() bool    { return b.pickable }

// SetPickable enables hit testing for the artist.
func (b *base) SetPickable(p bool) { b.pickable = p }

// ContourFill paints a scalar field as filled bands between levels.
type ContourFill struct {
	base
	Field    *model.ScalarField
	Levels   []float64
	Colormap Colormap
}

// NewContourFill creates a filled contour artist.
func NewContourFill(id ArtistID, ax *Axes, field *model.ScalarField, levels []float64, cmap Colormap) *ContourFill {
	return &ContourFill{
		base:     newBase(id, ax),
		Field:    field,
		Levels:   append([]float64(nil), levels...),
		Colormap: cmap,
	}
}

// Band returns the band index of v: 0 below the first level, len(Levels)
// above the last. ok is false for non-finite values.
func (c *ContourFill) Band(v float64) (band int, ok bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	for i, lvl := range c.Levels {
		if v < lvl {
			return i, true
		}
	}
	return len(c.Levels), true
}

// BandColor returns the fill color of a band.
func (c *ContourFill) BandColor(band int) color.RGBA {
	n := len(c.Levels) - 1
	if n <= 0 {
		return c.Colormap.At(0.5)
	}
	// bands below the first and above the last level clamp to the ends
	t := (float64(band) - 0.5) / float64(n)
	return c.Colormap.At(math.Max(0, math.Min(1, t)))
}

// ColorAt returns the fill color at data coordinates (x, y).
func (c *ContourFill) ColorAt(x, y float64) (color.RGBA, bool) {
	v, ok := c.Field.Sample(x, y)
	if !ok {
		return color.RGBA{}, false
	}
	band, ok := c.Band(v)
	if !ok {
		return color.RGBA{}, false
	}
	return c.BandColor(band), true
}

// ContourLines draws isolines of a scalar field at fixed levels. The segments
// are traced once at construction.
type ContourLines struct {
	base
	Field    *model.ScalarField
	Levels   []float64
	Color    color.RGBA
	Width    float64
	Segments [][]Segment // per level
}

// NewContourLines traces the isolines of field at each level.
func NewContourLines(id ArtistID, ax *Axes, field *model.ScalarField, levels []float64, c color.RGBA, width float64) *ContourLines {
	segs := make([][]Segment, len(levels))
	for i, lvl := range levels {
		segs[i] = Isolines(field, lvl)
	}
	return &ContourLines{
		base:     newBase(id, ax),
		Field:    field,
		Levels:   append([]float64(nil), levels...),
		Color:    c,
		Width:    width,
		Segments: segs,
	}
}

// Line is a polyline in data coordinates, optionally with point markers.
type Line struct {
	base
	X, Y   []float64
	Color  color.RGBA
	Width  float64
	Dashed bool
	Points bool
	Label  string
}

// NewLine creates a polyline artist.
func NewLine(id ArtistID, ax *Axes, x, y []float64, c color.RGBA, width float64) *Line {
	return &Line{
		base:  newBase(id, ax),
		X:     append([]float64(nil), x...),
		Y:     append([]float64(nil), y...),
		Color: c,
		Width: width,
	}
}

// SetLineWidth changes the stroke width.
func (l *Line) SetLineWidth(w float64) { l.Width = w }

// Distance implements Pickable.
func (l *Line) Distance(px, py, width, height float64) float64 {
	best := math.Inf(1)
	for i := range l.X {
		ax, ay := l.axes.ToPixel(l.X[i], l.Y[i], width, height)
		if i == 0 {
			best = math.Hypot(px-ax, py-ay)
			continue
		}
		bx, by := l.axes.ToPixel(l.X[i-1], l.Y[i-1], width, height)
		best = math.Min(best, distanceToSegment(px, py, bx, by, ax, ay))
	}
	return best
}

// Marker is a single glyph with a text label, used for legend entries.
type Marker struct {
	base
	X, Y  float64
	Glyph string
	Color color.RGBA
	Size  float64 // nominal figure pixels
	Label string
	Short string // label for coarse canvases; empty falls back to Label
}

// NewMarker creates a marker artist.
func NewMarker(id ArtistID, ax *Axes, x, y float64, glyph string, c color.RGBA, size float64, label string) *Marker {
	return &Marker{
		base:  newBase(id, ax),
		X:     x,
		Y:     y,
		Glyph: glyph,
		Color: c,
		Size:  size,
		Label: label,
	}
}

// Distance implements Pickable. It is negative inside the glyph radius, so
// among overlapping glyphs the one whose centre is closest wins. Size is in
// nominal figure pixels and shrinks with the canvas.
func (m *Marker) Distance(px, py, width, height float64) float64 {
	mx, my := m.axes.ToPixel(m.X, m.Y, width, height)
	return math.Hypot(px-mx, py-my) - m.Size/2*m.axes.PixelScale(width, height)
}

// Image shows a raster image filling its axes.
type Image struct {
	base
	Img image.Image
	Key model.ImageKey
}

// NewImage creates an image artist.
func NewImage(id ArtistID, ax *Axes, img image.Image, key model.ImageKey) *Image {
	return &Image{base: newBase(id, ax), Img: img, Key: key}
}

// Text is a free-standing label in data coordinates.
type Text struct {
	base
	X, Y  float64
	Text  string
	Color color.RGBA
}

// NewText creates a text artist.
func NewText(id ArtistID, ax *Axes, x, y float64, s string, c color.RGBA) *Text {
	return &Text{base: newBase(id, ax), X: x, Y: y, Text: s, Color: c}
}

// Package render paints a figure onto concrete backends: PNG through gg, SVG
// through svgo and a character grid for terminals. All backends share one
// traversal of the figure and differ only in their painter.
package render

import (
	"image"
	"image/color"
	"math"

	"github.com/vanderheijden86/msmview/pkg/figure"
)

// point is a canvas position in backend pixels.
type point struct{ X, Y float64 }

// painter is the drawing surface a backend provides.
type painter interface {
	FillRect(x, y, w, h float64, c color.RGBA)
	StrokeRect(x, y, w, h float64, c color.RGBA, width float64)
	Polyline(pts []point, c color.RGBA, width float64, dashed bool)
	Polygon(pts []point, c color.RGBA)
	Circle(x, y, r float64, c color.RGBA)
	// Text draws s anchored at (x, y); ax and ay are in [0, 1] like gg's
	// DrawStringAnchored.
	Text(s string, x, y, ax, ay float64, c color.RGBA)
	// Raster draws img stretched over the rectangle.
	Raster(img image.Image, x, y, w, h float64)
}

var (
	colorBackdrop = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorFrame    = color.RGBA{0x22, 0x22, 0x22, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
)

// metrics of the text face a backend uses, in its own pixels.
type textMetrics struct {
	charW, lineH float64
	// compact canvases draw markers one pixel wide with their short labels.
	compact bool
}

// paintFigure draws fig on a width x height canvas.
func paintFigure(fig *figure.Figure, p painter, width, height float64, tm textMetrics) {
	p.FillRect(0, 0, width, height, colorBackdrop)
	if fig.Title != "" {
		p.Text(fig.Title, width/2, tm.lineH, 0.5, 0.5, colorText)
	}

	for _, a := range fig.Artists() {
		if !a.Visible() {
			continue
		}
		paintArtist(a, p, width, height, tm)
	}
	for _, ax := range fig.Axes() {
		paintAxes(ax, p, width, height, tm)
	}
	paintColorbar(fig.Colorbar(), p, width, height, tm)
}

func paintArtist(a figure.Artist, p painter, width, height float64, tm textMetrics) {
	ax := a.Axes()
	switch v := a.(type) {
	case *figure.ContourFill:
		x, y, w, h := ax.PixelRect(width, height)
		p.Raster(rasterFill(v, width, height), x, y, w, h)

	case *figure.ContourLines:
		for _, segs := range v.Segments {
			for _, s := range segs {
				x0, y0 := ax.ToPixel(s.X0, s.Y0, width, height)
				x1, y1 := ax.ToPixel(s.X1, s.Y1, width, height)
				p.Polyline([]point{{x0, y0}, {x1, y1}}, v.Color, v.Width, false)
			}
		}

	case *figure.Line:
		pts := make([]point, 0, len(v.X))
		for i := range v.X {
			px, py := ax.ToPixel(v.X[i], v.Y[i], width, height)
			pts = append(pts, point{px, py})
		}
		p.Polyline(pts, v.Color, v.Width, v.Dashed)
		if v.Points {
			for _, pt := range pts {
				p.Circle(pt.X, pt.Y, v.Width+1, v.Color)
			}
		}

	case *figure.Marker:
		px, py := ax.ToPixel(v.X, v.Y, width, height)
		size, label := v.Size, v.Label
		if tm.compact {
			size = 1
			if v.Short != "" {
				label = v.Short
			}
		}
		paintGlyph(p, v.Glyph, px, py, size, v.Color)
		if label != "" {
			p.Text(label, px, py+size/2+tm.lineH/2, 0.5, 0.5, colorText)
		}

	case *figure.Image:
		if v.Img == nil {
			return
		}
		x, y, w, h := ax.PixelRect(width, height)
		x, y, w, h = fit(v.Img.Bounds().Size(), x, y, w, h)
		p.Raster(v.Img, x, y, w, h)

	case *figure.Text:
		px, py := ax.ToPixel(v.X, v.Y, width, height)
		p.Text(v.Text, px, py, 0.5, 0.5, v.Color)
	}
}

func paintAxes(ax *figure.Axes, p painter, width, height float64, tm textMetrics) {
	x, y, w, h := ax.PixelRect(width, height)
	if ax.Title != "" {
		p.Text(ax.Title, x+w/2, y-tm.lineH/2, 0.5, 0.5, colorText)
	}
	if !ax.Frame {
		return
	}
	p.StrokeRect(x, y, w, h, colorFrame, 1)

	for _, t := range ax.XTicks {
		px, _ := ax.ToPixel(t, ax.YLim[0], width, height)
		if px < x-0.5 || px > x+w+0.5 {
			continue
		}
		p.Polyline([]point{{px, y + h}, {px, y + h + tm.lineH/3}}, colorFrame, 1, false)
		p.Text(figure.FormatTick(t), px, y+h+tm.lineH, 0.5, 0.5, colorSubtle)
	}
	for _, t := range ax.YTicks {
		_, py := ax.ToPixel(ax.XLim[0], t, width, height)
		if py < y-0.5 || py > y+h+0.5 {
			continue
		}
		p.Polyline([]point{{x - tm.charW/2, py}, {x, py}}, colorFrame, 1, false)
		p.Text(figure.FormatTick(t), x-tm.charW, py, 1, 0.5, colorSubtle)
	}
	if ax.XLabel != "" {
		p.Text(ax.XLabel, x+w/2, y+h+2*tm.lineH, 0.5, 0.5, colorText)
	}
	if ax.YLabel != "" {
		p.Text(ax.YLabel, x, y-tm.lineH/2, 0, 0.5, colorText)
	}
}

// paintColorbar draws one swatch per band between consecutive ticks, lowest
// at the bottom, with tick labels on the right and the label on top.
func paintColorbar(cb figure.Colorbar, p painter, width, height float64, tm textMetrics) {
	if cb.Axes == nil || cb.Target == nil || len(cb.Ticks) < 2 {
		return
	}
	x, y, w, h := cb.Axes.PixelRect(width, height)
	n := len(cb.Ticks) - 1
	bandH := h / float64(n)
	for i := 1; i <= n; i++ {
		top := y + h - float64(i)*bandH
		p.FillRect(x, top, w, bandH, cb.Target.BandColor(i))
	}
	p.StrokeRect(x, y, w, h, colorFrame, 1)

	// Label every tick unless they would overlap.
	step := max(1, int(math.Ceil(tm.lineH/bandH)))
	for i := 0; i <= n; i += step {
		ty := y + h - float64(i)*bandH
		p.Text(figure.FormatTick(cb.Ticks[i]), x+w+tm.charW/2, ty, 0, 0.5, colorSubtle)
	}
	p.Text(cb.Label, x+w/2, y-tm.lineH/2, 0.5, 0.5, colorText)
}

// rasterFill samples a filled contour at every canvas pixel of its axes.
// Pixels without data stay transparent.
func rasterFill(c *figure.ContourFill, width, height float64) *image.RGBA {
	ax := c.Axes()
	x0, y0, w, h := ax.PixelRect(width, height)
	iw, ih := max(1, int(math.Round(w))), max(1, int(math.Round(h)))
	img := image.NewRGBA(image.Rect(0, 0, iw, ih))
	for py := 0; py < ih; py++ {
		for px := 0; px < iw; px++ {
			dx, dy := ax.FromPixel(x0+float64(px)+0.5, y0+float64(py)+0.5, width, height)
			if col, ok := c.ColorAt(dx, dy); ok {
				img.SetRGBA(px, py, col)
			}
		}
	}
	return img
}

// fit centers an image of the given size inside the rectangle, keeping its
// aspect ratio.
func fit(size image.Point, x, y, w, h float64) (float64, float64, float64, float64) {
	if size.X <= 0 || size.Y <= 0 {
		return x, y, w, h
	}
	scale := math.Min(w/float64(size.X), h/float64(size.Y))
	fw, fh := float64(size.X)*scale, float64(size.Y)*scale
	return x + (w-fw)/2, y + (h-fh)/2, fw, fh
}

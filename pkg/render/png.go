package render

import (
	"image"
	"image/color"
	"io"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/msmview/pkg/figure"
	"github.com/vanderheijden86/msmview/pkg/metrics"
)

type pngPainter struct {
	dc *gg.Context
}

func (g *pngPainter) FillRect(x, y, w, h float64, c color.RGBA) {
	g.dc.SetColor(c)
	g.dc.DrawRectangle(x, y, w, h)
	g.dc.Fill()
}

func (g *pngPainter) StrokeRect(x, y, w, h float64, c color.RGBA, width float64) {
	g.dc.SetColor(c)
	g.dc.SetLineWidth(width)
	g.dc.DrawRectangle(x, y, w, h)
	g.dc.Stroke()
}

func (g *pngPainter) Polyline(pts []point, c color.RGBA, width float64, dashed bool) {
	if len(pts) < 2 {
		return
	}
	g.dc.SetColor(c)
	g.dc.SetLineWidth(width)
	if dashed {
		g.dc.SetDash(6, 4)
	}
	g.dc.NewSubPath()
	g.dc.MoveTo(pts[0].X, pts[0].Y)
	for _, pt := range pts[1:] {
		g.dc.LineTo(pt.X, pt.Y)
	}
	g.dc.Stroke()
	if dashed {
		g.dc.SetDash()
	}
}

func (g *pngPainter) Polygon(pts []point, c color.RGBA) {
	g.dc.SetColor(c)
	g.dc.NewSubPath()
	for i, pt := range pts {
		if i == 0 {
			g.dc.MoveTo(pt.X, pt.Y)
			continue
		}
		g.dc.LineTo(pt.X, pt.Y)
	}
	g.dc.ClosePath()
	g.dc.Fill()
}

func (g *pngPainter) Circle(x, y, r float64, c color.RGBA) {
	g.dc.SetColor(c)
	g.dc.DrawCircle(x, y, r)
	g.dc.Fill()
}

func (g *pngPainter) Text(s string, x, y, ax, ay float64, c color.RGBA) {
	g.dc.SetColor(c)
	g.dc.DrawStringAnchored(s, x, y, ax, ay)
}

func (g *pngPainter) Raster(img image.Image, x, y, w, h float64) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	g.dc.Push()
	g.dc.Translate(x, y)
	g.dc.Scale(w/float64(b.Dx()), h/float64(b.Dy()))
	g.dc.DrawImage(img, -b.Min.X, -b.Min.Y)
	g.dc.Pop()
}

// Raster paints fig into an image of its nominal size.
func Raster(fig *figure.Figure) image.Image {
	defer metrics.Timer(metrics.Render)()
	return paintPNG(fig).Image()
}

// WritePNG paints fig and encodes it as PNG.
func WritePNG(w io.Writer, fig *figure.Figure) error {
	defer metrics.Timer(metrics.Render)()
	return paintPNG(fig).EncodePNG(w)
}

func paintPNG(fig *figure.Figure) *gg.Context {
	dc := gg.NewContext(fig.Width, fig.Height)
	dc.SetFontFace(basicfont.Face7x13)
	paintFigure(fig, &pngPainter{dc: dc}, float64(fig.Width), float64(fig.Height), textMetrics{charW: 7, lineH: 15})
	return dc
}
